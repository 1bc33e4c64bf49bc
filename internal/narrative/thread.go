// Package narrative groups related events into ongoing storylines, tracks
// how intense each storyline is, and escalates the ones that keep getting
// fed into concrete consequences.
package narrative

import (
	"github.com/talgya/continuum/internal/event"
)

// ThreadStatus is the lifecycle state of a storyline. Transitions only
// move forward: active, then escalating, then resolved.
type ThreadStatus string

const (
	ThreadActive     ThreadStatus = "active"
	ThreadEscalating ThreadStatus = "escalating"
	ThreadResolved   ThreadStatus = "resolved"
)

// Thread is one ongoing storyline assembled from related events.
type Thread struct {
	ID          string         `json:"id"`
	Events      []*event.Event `json:"-"`
	Intensity   float64        `json:"intensity"`
	LastUpdate  int            `json:"last_update"`
	Status      ThreadStatus   `json:"status"`
	MainActors  []string       `json:"main_actors,omitempty"`
	Description string         `json:"description"`
	CreatedTurn int            `json:"created_turn"`
}

const (
	initialIntensity  = 0.1
	intensityPerEvent = 0.1
	decayPerIdleTurn  = 0.05
	resolveBelow      = 0.1
)

// attach adds a related event, bumping intensity toward its cap.
func (t *Thread) attach(e *event.Event) {
	t.Events = append(t.Events, e)
	t.LastUpdate = e.Turn
	t.Intensity += intensityPerEvent
	if t.Intensity > 1.0 {
		t.Intensity = 1.0
	}
	if e.ActorID != "" && !t.involves(e.ActorID) {
		t.MainActors = append(t.MainActors, e.ActorID)
	}
}

func (t *Thread) involves(actorID string) bool {
	for _, a := range t.MainActors {
		if a == actorID {
			return true
		}
	}
	return false
}

// decay drains intensity after idle turns. A thread that drops below the
// floor resolves and never reactivates.
func (t *Thread) decay(idleTurns int) {
	t.Intensity -= decayPerIdleTurn * float64(idleTurns)
	if t.Intensity < 0 {
		t.Intensity = 0
	}
	if t.Intensity < resolveBelow {
		t.Status = ThreadResolved
	}
}

// latest returns the most recent event in the thread.
func (t *Thread) latest() *event.Event {
	return t.Events[len(t.Events)-1]
}

// related reports whether a new event belongs to the storyline ending in
// last. Shared location, shared actor, an investigation following a failed
// mission, or anything touching an evidence trail all connect.
func related(e, last *event.Event) bool {
	if e.Location != "" && e.Location == last.Location {
		return true
	}
	if e.ActorID != "" && e.ActorID == last.ActorID {
		return true
	}
	if e.Category == event.MissionFailure && last.Category == event.GovernmentInvestigationStarted {
		return true
	}
	if e.Category == event.EvidenceDiscovered || last.Category == event.EvidenceDiscovered {
		return true
	}
	return false
}

// describe builds the reader-facing summary for a thread from its latest
// event.
func describe(e *event.Event) string {
	location := e.Location
	if location == "" {
		location = "unknown location"
	}
	actor := e.ActorID
	if actor == "" {
		actor = "Unknown"
	}
	switch e.Category {
	case event.MissionFailure, event.MissionCriticalFailure:
		return "Investigation intensifying at " + location
	case event.GovernmentInvestigationStarted:
		return "Federal agents pursuing leads at " + location
	case event.EvidenceDiscovered:
		return "Evidence trail building - " + actor + " making connections"
	case event.HostBodySuspicion:
		return "Family becoming suspicious of " + actor
	case event.CombatCasualties:
		return "Violent incident draws major attention"
	}
	return "Unknown investigation developing"
}
