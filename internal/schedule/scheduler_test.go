package schedule

import (
	"errors"
	"testing"

	"toyworld/internal/atlas"
	"toyworld/internal/core"
)

// ticker records its updates into a shared log and follows a cadence list.
type ticker struct {
	name    string
	pos     core.Vector2I
	next    int
	cadence []int
	log     *[]string
	onTick  func(s atlas.Surface) error
}

func (t *ticker) Kind() string            { return t.name }
func (t *ticker) Position() core.Vector2I { return t.pos }
func (t *ticker) TilesetID() int          { return 1 }
func (t *ticker) NextUpdateAfter() int    { return t.next }

func (t *ticker) Update(s atlas.Surface, _ *core.RNG) error {
	*t.log = append(*t.log, t.name)
	if len(t.cadence) > 0 {
		t.next = t.cadence[0]
		t.cadence = t.cadence[1:]
	} else {
		t.next = 0
	}
	if t.onTick != nil {
		return t.onTick(s)
	}
	return nil
}

func newWorld(t *testing.T) (*atlas.Atlas, *Scheduler) {
	t.Helper()
	a := atlas.New(8, 8, nil)
	s := New(nil)
	a.AddObserver(s)
	return a, s
}

func TestStepRunsDueActorsInInsertionOrder(t *testing.T) {
	a, s := newWorld(t)
	var log []string
	for i, name := range []string{"c", "a", "b"} {
		actor := &ticker{name: name, pos: core.Vector2I{X: i}, next: 2, cadence: []int{2}, log: &log}
		if err := a.Add(actor, atlas.OnGroundInteractable); err != nil {
			t.Fatal(err)
		}
	}
	rng := core.NewRNG(1)

	if err := s.Step(a, rng); err != nil {
		t.Fatal(err)
	}
	if len(log) != 0 {
		t.Fatalf("nothing is due after one step, got %v", log)
	}
	if err := s.Step(a, rng); err != nil {
		t.Fatal(err)
	}
	if got := len(log); got != 3 || log[0] != "c" || log[1] != "a" || log[2] != "b" {
		t.Fatalf("expected insertion order [c a b], got %v", log)
	}
	if s.Steps() != 2 {
		t.Fatalf("expected 2 steps, got %d", s.Steps())
	}
}

func TestZeroCountdownIsDormantUntilRescheduled(t *testing.T) {
	a, s := newWorld(t)
	var log []string
	actor := &ticker{name: "once", next: 1, log: &log}
	_ = a.Add(actor, atlas.OnGroundInteractable)
	rng := core.NewRNG(1)

	for i := 0; i < 5; i++ {
		if err := s.Step(a, rng); err != nil {
			t.Fatal(err)
		}
	}
	if len(log) != 1 {
		t.Fatalf("expected a single update, got %d", len(log))
	}
	if rem, ok := s.Remaining(actor); !ok || rem != 0 {
		t.Fatalf("expected dormant tracked actor, got remaining=%d ok=%v", rem, ok)
	}
	if got := a.ActorsAt(actor.pos, atlas.All); len(got) != 1 {
		t.Fatal("dormant actor must stay in the atlas")
	}

	actor.next = 1
	if !s.Reschedule(actor) {
		t.Fatal("reschedule should find the actor")
	}
	if err := s.Step(a, rng); err != nil {
		t.Fatal(err)
	}
	if len(log) != 2 {
		t.Fatalf("rescheduled actor should update again, got %d", len(log))
	}
}

func TestCountdownNeverNegative(t *testing.T) {
	a, s := newWorld(t)
	var log []string
	actor := &ticker{name: "cadence", next: 1, cadence: []int{3, 1, 2}, log: &log}
	_ = a.Add(actor, atlas.OnGroundInteractable)
	rng := core.NewRNG(1)
	for i := 0; i < 12; i++ {
		if err := s.Step(a, rng); err != nil {
			t.Fatal(err)
		}
		if rem, _ := s.Remaining(actor); rem < 0 {
			t.Fatalf("step %d: negative countdown %d", i, rem)
		}
	}
	// Updates at steps 1, 4, 5, 7; then dormant.
	if len(log) != 4 {
		t.Fatalf("expected 4 updates, got %d", len(log))
	}
}

func TestNegativeScheduleIsInvalidState(t *testing.T) {
	a, s := newWorld(t)
	var log []string
	actor := &ticker{name: "bad", next: 1, cadence: []int{-3}, log: &log}
	_ = a.Add(actor, atlas.OnGroundInteractable)

	err := s.Step(a, core.NewRNG(1))
	var stateErr *atlas.InvalidActorStateError
	if !errors.As(err, &stateErr) {
		t.Fatalf("expected InvalidActorStateError, got %v", err)
	}
}

func TestReplacementDuringStep(t *testing.T) {
	a, s := newWorld(t)
	var log []string

	successor := &ticker{name: "successor", pos: core.Vector2I{X: 1}, next: 1, log: &log}
	victim := &ticker{name: "victim", pos: core.Vector2I{X: 2}, next: 1, log: &log}
	burner := &ticker{name: "burner", pos: core.Vector2I{X: 1}, next: 1, log: &log}
	burner.onTick = func(surface atlas.Surface) error {
		// Replace ourselves and remove a later actor in the same step.
		self, ok := surface.Locate(burner)
		if !ok {
			return errors.New("burner not placed")
		}
		if err := surface.ReplaceWith(self, successor); err != nil {
			return err
		}
		return surface.Remove(atlas.ActorPosition{Position: victim.pos, Layer: atlas.OnGroundInteractable})
	}
	_ = a.Add(burner, atlas.OnGroundInteractable)
	_ = a.Add(victim, atlas.OnGroundInteractable)

	rng := core.NewRNG(1)
	if err := s.Step(a, rng); err != nil {
		t.Fatal(err)
	}
	if len(log) != 1 || log[0] != "burner" {
		t.Fatalf("only the burner should run in the first step, got %v", log)
	}
	if _, ok := s.Remaining(burner); ok {
		t.Fatal("replaced actor should be untracked")
	}
	if _, ok := s.Remaining(victim); ok {
		t.Fatal("removed actor should be untracked")
	}
	if s.Len() != 1 {
		t.Fatalf("expected only the successor tracked, got %d", s.Len())
	}

	if err := s.Step(a, rng); err != nil {
		t.Fatal(err)
	}
	if len(log) != 2 || log[1] != "successor" {
		t.Fatalf("successor should run on the following step, got %v", log)
	}
}

func TestUpdateErrorAbortsStep(t *testing.T) {
	a, s := newWorld(t)
	var log []string
	boom := errors.New("boom")
	first := &ticker{name: "first", next: 1, log: &log, onTick: func(atlas.Surface) error { return boom }}
	second := &ticker{name: "second", pos: core.Vector2I{X: 1}, next: 1, log: &log}
	_ = a.Add(first, atlas.OnGroundInteractable)
	_ = a.Add(second, atlas.OnGroundInteractable)

	err := s.Step(a, core.NewRNG(1))
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped update error, got %v", err)
	}
	if len(log) != 1 {
		t.Fatalf("step should stop at the failing actor, got %v", log)
	}
}
