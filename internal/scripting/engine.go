// Package scripting populates worlds from Lua build scripts.
package scripting

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"toyworld/internal/atlas"
	"toyworld/internal/core"
	"toyworld/internal/world"
)

// Engine wraps a single gopher-lua VM bound to one world.
// Single-goroutine access only.
type Engine struct {
	vm  *lua.LState
	w   *world.World
	log *zap.Logger
}

// NewEngine creates a Lua VM exposing the world build API:
//
//	place(kind, layer, x, y)
//	fill(kind, layer)
//	scatter(kind, layer, density) -> count
//	size() -> width, height
//	seed() -> seed
//	kinds_at(x, y [, layer]) -> {kind, ...}
//	step(n)
func NewEngine(w *world.World, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	vm := lua.NewState(lua.Options{SkipOpenLibs: false})
	vm.SetGlobal("API_VERSION", lua.LNumber(1))
	e := &Engine{vm: vm, w: w, log: log}
	e.register()
	return e
}

// Close releases the VM.
func (e *Engine) Close() { e.vm.Close() }

// BuildFile runs a build script from disk.
func (e *Engine) BuildFile(path string) error {
	if err := e.vm.DoFile(path); err != nil {
		return fmt.Errorf("run %s: %w", path, err)
	}
	e.log.Debug("ran lua script", zap.String("file", path))
	return nil
}

// BuildString runs a build script held in memory.
func (e *Engine) BuildString(src string) error {
	if err := e.vm.DoString(src); err != nil {
		return fmt.Errorf("run script: %w", err)
	}
	return nil
}

// CallHook calls a global Lua function with no arguments if the script
// defined one. Missing hooks are not an error.
func (e *Engine) CallHook(name string) error {
	fn := e.vm.GetGlobal(name)
	if fn == lua.LNil {
		return nil
	}
	if err := e.vm.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true}); err != nil {
		return fmt.Errorf("lua %s: %w", name, err)
	}
	return nil
}

func (e *Engine) register() {
	e.vm.SetGlobal("place", e.vm.NewFunction(e.luaPlace))
	e.vm.SetGlobal("fill", e.vm.NewFunction(e.luaFill))
	e.vm.SetGlobal("scatter", e.vm.NewFunction(e.luaScatter))
	e.vm.SetGlobal("size", e.vm.NewFunction(e.luaSize))
	e.vm.SetGlobal("seed", e.vm.NewFunction(e.luaSeed))
	e.vm.SetGlobal("kinds_at", e.vm.NewFunction(e.luaKindsAt))
	e.vm.SetGlobal("step", e.vm.NewFunction(e.luaStep))
}

func checkLayer(L *lua.LState, n int) atlas.LayerType {
	layer, err := atlas.ParseLayer(L.CheckString(n))
	if err != nil {
		L.ArgError(n, err.Error())
	}
	return layer
}

func (e *Engine) luaPlace(L *lua.LState) int {
	kind := L.CheckString(1)
	layer := checkLayer(L, 2)
	x, y := L.CheckInt(3), L.CheckInt(4)
	if err := e.w.Place(kind, layer, x, y); err != nil {
		L.RaiseError("place %s: %s", kind, err.Error())
	}
	return 0
}

func (e *Engine) luaFill(L *lua.LState) int {
	kind := L.CheckString(1)
	layer := checkLayer(L, 2)
	if err := e.w.Fill(kind, layer); err != nil {
		L.RaiseError("fill %s: %s", kind, err.Error())
	}
	return 0
}

func (e *Engine) luaScatter(L *lua.LState) int {
	kind := L.CheckString(1)
	layer := checkLayer(L, 2)
	density := float64(L.CheckNumber(3))
	if density < 0 || density > 1 {
		L.ArgError(3, "density outside [0,1]")
	}
	n, err := e.w.Scatter(kind, layer, density)
	if err != nil {
		L.RaiseError("scatter %s: %s", kind, err.Error())
	}
	L.Push(lua.LNumber(n))
	return 1
}

func (e *Engine) luaSize(L *lua.LState) int {
	b := e.w.Atlas().Bounds()
	L.Push(lua.LNumber(b.W))
	L.Push(lua.LNumber(b.H))
	return 2
}

func (e *Engine) luaSeed(L *lua.LState) int {
	L.Push(lua.LNumber(e.w.Config().Seed))
	return 1
}

func (e *Engine) luaKindsAt(L *lua.LState) int {
	p := core.Vector2I{X: L.CheckInt(1), Y: L.CheckInt(2)}
	layer := atlas.All
	if L.GetTop() >= 3 {
		layer = checkLayer(L, 3)
	}
	t := L.NewTable()
	for _, at := range e.w.Atlas().ActorsAt(p, layer) {
		t.Append(lua.LString(at.Actor.Kind()))
	}
	L.Push(t)
	return 1
}

func (e *Engine) luaStep(L *lua.LState) int {
	n := L.OptInt(1, 1)
	if err := e.w.Run(n); err != nil {
		L.RaiseError("step: %s", err.Error())
	}
	return 0
}
