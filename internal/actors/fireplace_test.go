package actors

import (
	"math"
	"testing"

	"toyworld/internal/atlas"
	"toyworld/internal/core"
	"toyworld/internal/schedule"
)

const heatTolerance = 1e-5

func placeFire(t *testing.T, a *atlas.Atlas, env *Env, x, y int) *FireplaceBurning {
	t.Helper()
	fire := NewFireplaceBurning(env, core.Vector2I{X: x, Y: y})
	if err := a.Add(fire, atlas.OnGroundInteractable); err != nil {
		t.Fatal(err)
	}
	return fire
}

func TestFireplaceBurningLifecycle(t *testing.T) {
	env := NewEnv(nil, DefaultFireParams())
	a := atlas.New(11, 11, nil)
	fire := placeFire(t, a, env, 5, 5)
	rng := core.NewRNG(1)

	if fire.Phase() != PhaseUnlit || fire.Heat() != unlitHeat {
		t.Fatalf("new fire should be unlit, got %s heat %f", fire.Phase(), fire.Heat())
	}

	if err := fire.Update(a, rng); err != nil {
		t.Fatal(err)
	}
	if math.Abs(float64(fire.Heat()-IgnitionHeat)) > heatTolerance {
		t.Fatalf("expected heat 0.2 after ignition, got %f", fire.Heat())
	}
	if !a.IsHeatSource(fire) {
		t.Fatal("ignited fire must register as heat source")
	}
	if fire.NextUpdateAfter() != IgnitedCadence || fire.Phase() != PhaseIgniting {
		t.Fatalf("ignited fire should slow down to %d, got %d (%s)", IgnitedCadence, fire.NextUpdateAfter(), fire.Phase())
	}

	prev := fire.Heat()
	growth := 0
	for fire.Heat() < MaxHeat {
		if err := fire.Update(a, rng); err != nil {
			t.Fatal(err)
		}
		growth++
		delta := fire.Heat() - prev
		if delta <= 0 {
			t.Fatalf("heat must strictly increase while growing, went %f -> %f", prev, fire.Heat())
		}
		if fire.Heat() < MaxHeat && math.Abs(float64(delta-HeatStep)) > heatTolerance {
			t.Fatalf("growth step should be 0.4, got %f", delta)
		}
		prev = fire.Heat()
		if growth > 20 {
			t.Fatal("fire never reached max heat")
		}
	}
	if growth != 10 {
		t.Fatalf("expected 10 growing updates from 0.2 to 4.0, got %d", growth)
	}
	if fire.Heat() != MaxHeat {
		t.Fatalf("heat must clamp to max without overshoot, got %f", fire.Heat())
	}
	if fire.Phase() != PhaseStable || fire.StableUpdates() != 1 {
		t.Fatalf("growth and first propagation share the final update, got %s with %d stable updates", fire.Phase(), fire.StableUpdates())
	}

	for fire.StableUpdates() <= StableThreshold {
		if err := fire.Update(a, rng); err != nil {
			t.Fatal(err)
		}
		if fire.Heat() != MaxHeat {
			t.Fatalf("stable fire must stay at max heat, got %f", fire.Heat())
		}
	}
	if fire.StableUpdates() != StableThreshold+1 {
		t.Fatalf("expected %d stable updates before extinguishing, got %d", StableThreshold+1, fire.StableUpdates())
	}
	if got := a.ActorsAt(fire.Position(), atlas.OnGroundInteractable); got[0].Actor != fire {
		t.Fatal("fire should still be burning right at the threshold")
	}

	if err := fire.Update(a, rng); err != nil {
		t.Fatal(err)
	}
	if fire.Phase() != PhaseExtinguished || fire.Heat() != 0 || fire.NextUpdateAfter() != 0 {
		t.Fatalf("fire should be out, got %s heat %f next %d", fire.Phase(), fire.Heat(), fire.NextUpdateAfter())
	}
	if a.IsHeatSource(fire) {
		t.Fatal("extinguished fire must unregister")
	}
	got := a.ActorsAt(fire.Position(), atlas.OnGroundInteractable)
	if len(got) != 1 {
		t.Fatalf("expected one actor after extinguishing, got %d", len(got))
	}
	if _, ok := got[0].Actor.(*Fireplace); !ok {
		t.Fatalf("expected a cold fireplace, got %T", got[0].Actor)
	}
}

func TestStableFireBurnsCombustiblesInRange(t *testing.T) {
	params := DefaultFireParams()
	params.HeatStep = MaxHeat
	env := NewEnv(nil, params)
	a := atlas.New(11, 11, nil)
	fire := placeFire(t, a, env, 5, 5)

	near := NewBush(env, core.Vector2I{X: 6, Y: 6})
	far := NewBush(env, core.Vector2I{X: 7, Y: 5})
	cold := NewFireplace(env, core.Vector2I{X: 4, Y: 5})
	wall := NewWall(env, core.Vector2I{X: 5, Y: 4})
	for _, placed := range []struct {
		actor atlas.GameActor
		layer atlas.LayerType
	}{
		{near, atlas.ObstacleInteractable},
		{far, atlas.ObstacleInteractable},
		{cold, atlas.OnGroundInteractable},
		{wall, atlas.Obstacle},
	} {
		if err := a.Add(placed.actor, placed.layer); err != nil {
			t.Fatal(err)
		}
	}

	rng := core.NewRNG(1)
	if err := fire.Update(a, rng); err != nil {
		t.Fatal(err)
	}
	if got := a.ActorsAt(near.Position(), atlas.All)[0].Actor; got != near {
		t.Fatal("igniting fire must not propagate")
	}
	if err := fire.Update(a, rng); err != nil {
		t.Fatal(err)
	}
	if fire.Phase() != PhaseStable {
		t.Fatalf("one big step should reach stable, got %s", fire.Phase())
	}

	if _, ok := a.ActorsAt(near.Position(), atlas.All)[0].Actor.(*Ash); !ok {
		t.Fatal("bush within 1.5 tiles should burn to ash")
	}
	if a.ActorsAt(far.Position(), atlas.All)[0].Actor != far {
		t.Fatal("bush 2 tiles away is out of range")
	}
	lit, ok := a.ActorsAt(cold.Position(), atlas.OnGroundInteractable)[0].Actor.(*FireplaceBurning)
	if !ok {
		t.Fatal("neighbouring fireplace should be lit")
	}
	if lit.Phase() != PhaseUnlit || lit.NextUpdateAfter() != 1 {
		t.Fatalf("newly lit fireplace should be due next step, got %s next %d", lit.Phase(), lit.NextUpdateAfter())
	}
	if a.ActorsAt(wall.Position(), atlas.Obstacle)[0].Actor != wall {
		t.Fatal("walls do not burn")
	}
}

func TestFireplaceScenarioUnderScheduler(t *testing.T) {
	env := NewEnv(nil, DefaultFireParams())
	a := atlas.New(11, 11, nil)
	sched := schedule.New(nil)
	a.AddObserver(sched)
	pos := core.Vector2I{X: 5, Y: 5}
	if err := a.Add(NewFloor(env, pos), atlas.Background); err != nil {
		t.Fatal(err)
	}
	fire := placeFire(t, a, env, pos.X, pos.Y)
	rng := core.NewRNG(7)

	step := func() {
		t.Helper()
		if err := sched.Step(a, rng); err != nil {
			t.Fatal(err)
		}
	}

	step()
	if fire.Phase() != PhaseIgniting {
		t.Fatalf("first step should ignite, got %s", fire.Phase())
	}
	if rem, _ := sched.Remaining(fire); rem != IgnitedCadence {
		t.Fatalf("expected countdown %d after ignition, got %d", IgnitedCadence, rem)
	}

	for i := 0; i < IgnitedCadence-1; i++ {
		step()
	}
	if math.Abs(float64(fire.Heat()-IgnitionHeat)) > heatTolerance {
		t.Fatalf("fire should not grow before its countdown expires, heat %f", fire.Heat())
	}
	step()
	if math.Abs(float64(fire.Heat()-(IgnitionHeat+HeatStep))) > heatTolerance {
		t.Fatalf("fire should grow on its due step, heat %f", fire.Heat())
	}

	for i := 0; i < 10_000_000 && fire.Phase() != PhaseExtinguished; i++ {
		step()
		if rem, ok := sched.Remaining(fire); ok && rem < 0 {
			t.Fatalf("negative countdown %d", rem)
		}
	}
	if fire.Phase() != PhaseExtinguished {
		t.Fatal("fire never went out")
	}
	// 1 ignition step, then 10 growth + 1001 stable + 1 extinguishing update at the ignited cadence.
	if want := uint64(1 + IgnitedCadence*(10+StableThreshold+1)); sched.Steps() != want {
		t.Fatalf("expected extinguishing at step %d, got %d", want, sched.Steps())
	}
	got := a.ActorsAt(pos, atlas.OnGroundInteractable)
	if len(got) != 1 {
		t.Fatalf("expected the cold fireplace, got %d actors", len(got))
	}
	if _, ok := got[0].Actor.(*Fireplace); !ok {
		t.Fatalf("expected *Fireplace, got %T", got[0].Actor)
	}
	if sched.Len() != 0 {
		t.Fatalf("cold fireplace is not schedulable, tracked %d", sched.Len())
	}
}

func TestFireStateRoundTrip(t *testing.T) {
	env := NewEnv(nil, DefaultFireParams())
	src := NewFireplaceBurning(env, core.Vector2I{X: 1, Y: 1})
	src.heat, src.stable, src.next = 3.4, 0, 17

	dst := NewFireplaceBurning(env, core.Vector2I{X: 1, Y: 1})
	if err := dst.SetState(src.State()); err != nil {
		t.Fatal(err)
	}
	if math.Abs(float64(dst.Heat()-3.4)) > heatTolerance || dst.NextUpdateAfter() != 17 || dst.Phase() != PhaseGrowing {
		t.Fatalf("state not restored: heat %f next %d phase %s", dst.Heat(), dst.NextUpdateAfter(), dst.Phase())
	}
	if err := dst.SetState(map[string]float64{"stable": 2}); err == nil {
		t.Fatal("state without heat should be rejected")
	}
}
