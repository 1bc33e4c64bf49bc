package narrative

import (
	"strings"

	"github.com/google/uuid"

	"github.com/talgya/continuum/internal/consequence"
	"github.com/talgya/continuum/internal/event"
)

// significance scores how much an event matters to the unfolding story.
var significance = map[event.Category]float64{
	event.MissionFailure:                 0.7,
	event.MissionCriticalFailure:         1.0,
	event.MissionSuccess:                 0.3,
	event.CombatCasualties:               0.9,
	event.GovernmentInvestigationStarted: 0.6,
	event.GovernmentBreakthrough:         0.8,
	event.EvidenceDiscovered:             0.7,
	event.WitnessStatement:               0.5,
	event.FactionOperation:               0.4,
	event.HostBodySuspicion:              0.5,
	event.TravelerExposed:                1.0,
	event.NPCKilled:                      0.8,
	event.NPCDiscovery:                   0.7,
	event.LocationCompromised:            0.6,
}

const defaultSignificance = 0.2

// Tracker assembles events into storylines and grades their intensity.
type Tracker struct {
	threads []*Thread

	// Prior appearance counts feed the significance bonuses for repeat
	// locations and recurring actors.
	locationCount map[string]int
	actorCount    map[string]int
}

// NewTracker creates an empty storyline tracker.
func NewTracker() *Tracker {
	return &Tracker{
		locationCount: make(map[string]int),
		actorCount:    make(map[string]int),
	}
}

// Significance scores an event against the tracker's history. Repeat
// locations and recurring actors push ordinary events into storyline
// territory.
func (tr *Tracker) Significance(e *event.Event) float64 {
	sig, ok := significance[e.Category]
	if !ok {
		sig = defaultSignificance
	}
	if e.Location != "" && tr.locationCount[e.Location] > 2 {
		sig += 0.2
	}
	if e.ActorID != "" && tr.actorCount[e.ActorID] > 2 {
		sig += 0.3
	}
	if sig > 1.0 {
		sig = 1.0
	}
	return sig
}

// Ingest routes an event into the storylines. It attaches to the oldest
// live thread whose latest event relates to it; failing that, a
// sufficiently significant event seeds a new thread. Returns the thread
// the event landed in, or nil when it joined nothing.
func (tr *Tracker) Ingest(e *event.Event) *Thread {
	sig := tr.Significance(e)
	if e.Location != "" {
		tr.locationCount[e.Location]++
	}
	if e.ActorID != "" {
		tr.actorCount[e.ActorID]++
	}

	for _, t := range tr.threads {
		if t.Status == ThreadResolved {
			continue
		}
		if related(e, t.latest()) {
			t.attach(e)
			return t
		}
	}

	if sig <= 0.5 {
		return nil
	}
	t := &Thread{
		ID:          uuid.NewString(),
		Events:      []*event.Event{e},
		Intensity:   initialIntensity,
		LastUpdate:  e.Turn,
		Status:      ThreadActive,
		Description: describe(e),
		CreatedTurn: e.Turn,
	}
	if e.ActorID != "" {
		t.MainActors = append(t.MainActors, e.ActorID)
	}
	tr.threads = append(tr.threads, t)
	return t
}

// Advance decays idle threads and promotes the ones that earned it.
// Returns threads that newly escalated this turn; already-escalating
// threads are not re-reported.
func (tr *Tracker) Advance(currentTurn int) []*Thread {
	for _, t := range tr.threads {
		if t.Status == ThreadResolved {
			continue
		}
		if idle := currentTurn - t.LastUpdate; idle > 0 {
			t.decay(idle)
		}
	}

	var escalated []*Thread
	for _, t := range tr.threads {
		if t.Status != ThreadActive {
			continue
		}
		if t.Intensity > 0.6 {
			t.Status = ThreadEscalating
			escalated = append(escalated, t)
			continue
		}
		if len(t.Events) >= 4 && tr.recentEventCount(t, currentTurn) >= 2 {
			t.Status = ThreadEscalating
			escalated = append(escalated, t)
		}
	}
	return escalated
}

// recentEventCount counts thread events inside the trailing 3-turn window.
func (tr *Tracker) recentEventCount(t *Thread, currentTurn int) int {
	count := 0
	for _, e := range t.Events {
		if e.Turn >= currentTurn-2 {
			count++
		}
	}
	return count
}

// ConsequenceFromThread turns an escalating storyline into a scheduled
// consequence. Only threads at intensity 0.7 or above feed back into game
// state; the description keywords select which shape fires.
func ConsequenceFromThread(t *Thread, currentTurn int) *consequence.Consequence {
	if t.Status != ThreadEscalating || t.Intensity < 0.7 {
		return nil
	}
	desc := strings.ToLower(t.Description)
	c := &consequence.Consequence{
		ID:          uuid.NewString(),
		Status:      consequence.Pending,
		CreatedTurn: currentTurn,
		Intensity:   t.Intensity,
		Location:    t.latest().Location,
	}
	switch {
	case strings.Contains(desc, "government"):
		c.Kind = consequence.KindGovernmentTaskForce
		c.Severity = consequence.Major
		c.TriggerTurn = currentTurn + 2
		c.Description = "FBI forms task force based on connected incidents"
	case strings.Contains(desc, "suspicious"):
		c.Kind = consequence.KindFamilyIntervention
		c.Severity = consequence.Moderate
		c.TriggerTurn = currentTurn + 1
		c.Description = "Family confronts host body about behavioral changes"
	case strings.Contains(desc, "evidence"):
		c.Kind = consequence.KindBreakthrough
		c.Severity = consequence.Major
		c.TriggerTurn = currentTurn + 1
		c.Description = "Investigators piece together accumulated evidence"
	default:
		return nil
	}
	return c
}

// Active returns live threads, both active and escalating.
func (tr *Tracker) Active() []*Thread {
	var out []*Thread
	for _, t := range tr.threads {
		if t.Status == ThreadActive || t.Status == ThreadEscalating {
			out = append(out, t)
		}
	}
	return out
}

// Escalating returns threads currently in the escalating state.
func (tr *Tracker) Escalating() []*Thread {
	var out []*Thread
	for _, t := range tr.threads {
		if t.Status == ThreadEscalating {
			out = append(out, t)
		}
	}
	return out
}

// All returns every thread, resolved ones included, for persistence and
// history queries.
func (tr *Tracker) All() []*Thread {
	return tr.threads
}

// Tension folds live storyline intensity, fresh patterns, and escalations
// into a single pressure reading in [0,1]. No live threads means no
// tension regardless of patterns.
func (tr *Tracker) Tension(patternCount, escalatingCount int) float64 {
	live := tr.Active()
	if len(live) == 0 {
		return 0
	}
	sum := 0.0
	for _, t := range live {
		sum += t.Intensity
	}
	tension := sum/float64(len(live)) + 0.1*float64(patternCount) + 0.2*float64(escalatingCount)
	if tension > 1.0 {
		tension = 1.0
	}
	return tension
}

// Restore replaces tracker state, for loading a saved session. The
// significance counts are rebuilt from the full event history rather than
// thread membership, since events that joined no thread still counted.
func (tr *Tracker) Restore(threads []*Thread, history []*event.Event) {
	tr.threads = threads
	tr.locationCount = make(map[string]int)
	tr.actorCount = make(map[string]int)
	for _, e := range history {
		if e.Location != "" {
			tr.locationCount[e.Location]++
		}
		if e.ActorID != "" {
			tr.actorCount[e.ActorID]++
		}
	}
}
