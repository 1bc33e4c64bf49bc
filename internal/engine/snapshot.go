package engine

import (
	"fmt"

	"github.com/talgya/continuum/internal/consequence"
	"github.com/talgya/continuum/internal/entropy"
	"github.com/talgya/continuum/internal/event"
	"github.com/talgya/continuum/internal/heat"
	"github.com/talgya/continuum/internal/narrative"
	"github.com/talgya/continuum/internal/story"
)

// Snapshot is the serializable session state. Thread membership is stored
// as indexes into the event list so the storage layer never has to
// round-trip shared pointers.
type Snapshot struct {
	Turn         int
	Events       []*event.Event
	Consequences []*consequence.Consequence
	Locations    []*heat.LocationRecord
	Actors       []*heat.ActorRecord
	Threads      []ThreadSnapshot
	SeenPatterns []string
}

// ThreadSnapshot pairs a thread's fields with the log positions of its
// member events.
type ThreadSnapshot struct {
	Thread       *narrative.Thread
	EventIndexes []int
}

// Snapshot captures the full session state for saving.
func (e *Engine) Snapshot() *Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	events := e.Log.All()
	position := make(map[*event.Event]int, len(events))
	for i, ev := range events {
		position[ev] = i
	}

	threads := e.Threads.All()
	ts := make([]ThreadSnapshot, 0, len(threads))
	for _, t := range threads {
		idx := make([]int, 0, len(t.Events))
		for _, ev := range t.Events {
			idx = append(idx, position[ev])
		}
		ts = append(ts, ThreadSnapshot{Thread: t, EventIndexes: idx})
	}

	return &Snapshot{
		Turn:         e.turn,
		Events:       events,
		Consequences: e.Scheduler.All(),
		Locations:    e.Heat.Locations(),
		Actors:       e.Heat.Actors(),
		Threads:      ts,
		SeenPatterns: e.Detector.SeenKeys(),
	}
}

// Restore rebuilds an engine from a saved snapshot. The story selection
// memory is deliberately not part of saved state; a loaded session starts
// with a clean anti-repeat slate.
func Restore(rng *entropy.Source, dir story.Directory, snap *Snapshot) (*Engine, error) {
	e := New(rng, dir)
	e.turn = snap.Turn

	for _, ev := range snap.Events {
		e.Log.Append(ev)
	}

	threads := make([]*narrative.Thread, 0, len(snap.Threads))
	for _, ts := range snap.Threads {
		t := ts.Thread
		t.Events = t.Events[:0]
		for _, i := range ts.EventIndexes {
			if i < 0 || i >= len(snap.Events) {
				return nil, fmt.Errorf("restore thread %s: event index %d out of range", t.ID, i)
			}
			t.Events = append(t.Events, snap.Events[i])
		}
		threads = append(threads, t)
	}
	e.Threads.Restore(threads, snap.Events)

	e.Scheduler.Restore(snap.Consequences)
	e.Heat.Restore(snap.Locations, snap.Actors)
	e.Detector.Restore(snap.SeenPatterns)
	return e, nil
}
