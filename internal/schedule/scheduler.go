// Package schedule advances self-scheduling actors one discrete step at a
// time.
//
// Every tracked actor carries a countdown loaded from its NextUpdateAfter
// value. A step decrements each live countdown and runs Update for those that
// hit zero, after which the actor's new NextUpdateAfter reloads the counter.
// A counter of zero is dormant until Reschedule is called. Actors are visited
// in the order they were tracked so runs are reproducible.
package schedule

import (
	"fmt"

	"go.uber.org/zap"

	"toyworld/internal/atlas"
	"toyworld/internal/core"
)

type entry struct {
	actor     atlas.Schedulable
	remaining int
	removed   bool
}

// Scheduler drives Schedulable actors. It implements atlas.Observer so the
// Atlas keeps it informed about placements and replacements.
type Scheduler struct {
	entries []*entry
	index   map[atlas.Schedulable]*entry
	steps   uint64
	log     *zap.Logger
}

// New returns an empty Scheduler.
func New(log *zap.Logger) *Scheduler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Scheduler{index: make(map[atlas.Schedulable]*entry), log: log}
}

// Track starts scheduling a. Tracking an actor twice is a no-op.
func (s *Scheduler) Track(a atlas.Schedulable) {
	if _, ok := s.index[a]; ok {
		return
	}
	remaining := a.NextUpdateAfter()
	if remaining < 0 {
		remaining = 0
	}
	e := &entry{actor: a, remaining: remaining}
	s.entries = append(s.entries, e)
	s.index[a] = e
}

// Untrack stops scheduling a. Unknown actors are ignored.
func (s *Scheduler) Untrack(a atlas.Schedulable) {
	e, ok := s.index[a]
	if !ok {
		return
	}
	e.removed = true
	delete(s.index, a)
}

// Reschedule reloads a's countdown from NextUpdateAfter, waking it up if it
// went dormant.
func (s *Scheduler) Reschedule(a atlas.Schedulable) bool {
	e, ok := s.index[a]
	if !ok {
		return false
	}
	e.remaining = max(a.NextUpdateAfter(), 0)
	return true
}

// SetRemaining overrides a's countdown, used when restoring snapshots.
func (s *Scheduler) SetRemaining(a atlas.Schedulable, n int) bool {
	e, ok := s.index[a]
	if !ok || n < 0 {
		return false
	}
	e.remaining = n
	return true
}

// Remaining reports the countdown of a.
func (s *Scheduler) Remaining(a atlas.Schedulable) (int, bool) {
	e, ok := s.index[a]
	if !ok {
		return 0, false
	}
	return e.remaining, true
}

// Each visits tracked actors in scheduling order.
func (s *Scheduler) Each(fn func(a atlas.Schedulable, remaining int)) {
	for _, e := range s.entries {
		if !e.removed {
			fn(e.actor, e.remaining)
		}
	}
}

// Len returns the number of tracked actors.
func (s *Scheduler) Len() int { return len(s.index) }

// Steps returns the number of completed steps.
func (s *Scheduler) Steps() uint64 { return s.steps }

// SetSteps overrides the completed step count, used when restoring.
func (s *Scheduler) SetSteps(n uint64) { s.steps = n }

// ActorAdded implements atlas.Observer.
func (s *Scheduler) ActorAdded(at atlas.ActorPosition) {
	if a, ok := at.Actor.(atlas.Schedulable); ok {
		s.Track(a)
	}
}

// ActorRemoved implements atlas.Observer.
func (s *Scheduler) ActorRemoved(at atlas.ActorPosition) {
	if a, ok := at.Actor.(atlas.Schedulable); ok {
		s.Untrack(a)
	}
}

// Step advances every tracked actor by one tick. Actors tracked during the
// step wait for the next one. An update error ends the step immediately.
func (s *Scheduler) Step(surface atlas.Surface, rng *core.RNG) error {
	n := len(s.entries)
	updated := 0
	for i := 0; i < n; i++ {
		e := s.entries[i]
		if e.removed || e.remaining == 0 {
			continue
		}
		e.remaining--
		if e.remaining > 0 {
			continue
		}

		if err := e.actor.Update(surface, rng); err != nil {
			return fmt.Errorf("update %s at (%d,%d): %w", e.actor.Kind(), e.actor.Position().X, e.actor.Position().Y, err)
		}
		updated++
		next := e.actor.NextUpdateAfter()
		if next < 0 {
			p := e.actor.Position()
			return &atlas.InvalidActorStateError{Position: p, Layer: atlas.All, Reason: fmt.Sprintf("%s scheduled %d steps ahead", e.actor.Kind(), next)}
		}
		// A replaced actor keeps its final counter for inspection but is no
		// longer visited.
		e.remaining = next
	}
	s.compact()
	s.steps++
	if updated > 0 {
		s.log.Debug("step", zap.Uint64("step", s.steps), zap.Int("updated", updated), zap.Int("tracked", len(s.index)))
	}
	return nil
}

func (s *Scheduler) compact() {
	live := s.entries[:0]
	for _, e := range s.entries {
		if !e.removed {
			live = append(live, e)
		}
	}
	for i := len(live); i < len(s.entries); i++ {
		s.entries[i] = nil
	}
	s.entries = live
}
