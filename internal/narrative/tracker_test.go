package narrative

import (
	"math"
	"testing"

	"github.com/talgya/continuum/internal/consequence"
	"github.com/talgya/continuum/internal/event"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestIngestCreatesThreadForSignificantEvent(t *testing.T) {
	tr := NewTracker()
	th := tr.Ingest(&event.Event{Turn: 3, Category: event.MissionFailure, Location: "Downtown"})
	if th == nil {
		t.Fatal("mission failure should seed a thread")
	}
	if th.Description != "Investigation intensifying at Downtown" {
		t.Errorf("description = %q", th.Description)
	}
	if !almostEqual(th.Intensity, 0.1) {
		t.Errorf("initial intensity = %f, want 0.1", th.Intensity)
	}
	if th.Status != ThreadActive {
		t.Errorf("status = %s, want active", th.Status)
	}
}

func TestIngestIgnoresInsignificantEvent(t *testing.T) {
	tr := NewTracker()
	if th := tr.Ingest(&event.Event{Turn: 1, Category: event.MissionSuccess, Location: "Docks"}); th != nil {
		t.Errorf("mission success seeded thread %+v, want none", th)
	}
	if len(tr.All()) != 0 {
		t.Errorf("threads = %d, want 0", len(tr.All()))
	}
}

func TestIngestAttachesByLocation(t *testing.T) {
	tr := NewTracker()
	seed := tr.Ingest(&event.Event{Turn: 1, Category: event.MissionFailure, Location: "Downtown"})
	joined := tr.Ingest(&event.Event{Turn: 2, Category: event.WitnessInteraction, Location: "Downtown", ActorID: "npc-3"})
	if joined != seed {
		t.Fatal("same-location event should join the existing thread")
	}
	if len(seed.Events) != 2 {
		t.Errorf("thread events = %d, want 2", len(seed.Events))
	}
	if !almostEqual(seed.Intensity, 0.2) {
		t.Errorf("intensity = %f, want 0.2", seed.Intensity)
	}
	if len(seed.MainActors) != 1 || seed.MainActors[0] != "npc-3" {
		t.Errorf("main actors = %v, want [npc-3]", seed.MainActors)
	}
}

func TestIngestAttachesByCausalPair(t *testing.T) {
	tr := NewTracker()
	seed := tr.Ingest(&event.Event{Turn: 1, Category: event.GovernmentInvestigationStarted, Location: "Docks"})
	joined := tr.Ingest(&event.Event{Turn: 2, Category: event.MissionFailure, Location: "Uptown"})
	if joined != seed {
		t.Fatal("mission failure should chain onto an open investigation")
	}
}

func TestRecurringActorBonus(t *testing.T) {
	tr := NewTracker()
	// Three prior sightings push a routine faction op over the line.
	for turn := 1; turn <= 3; turn++ {
		tr.Ingest(&event.Event{Turn: turn, Category: event.ProtocolViolation, ActorID: "traveler-4", Location: ""})
	}
	e := &event.Event{Turn: 4, Category: event.FactionOperation, ActorID: "traveler-4"}
	if sig := tr.Significance(e); !almostEqual(sig, 0.7) {
		t.Errorf("significance = %f, want 0.4 base + 0.3 recurring actor", sig)
	}
}

func TestAdvanceDecayAndResolve(t *testing.T) {
	tr := NewTracker()
	th := tr.Ingest(&event.Event{Turn: 1, Category: event.MissionFailure, Location: "Park"})

	// Updated this turn: no decay.
	tr.Advance(1)
	if !almostEqual(th.Intensity, 0.1) {
		t.Fatalf("intensity decayed on update turn: %f", th.Intensity)
	}

	// One idle turn drains it below the floor and resolves it.
	tr.Advance(2)
	if th.Status != ThreadResolved {
		t.Fatalf("status = %s at intensity %f, want resolved", th.Status, th.Intensity)
	}
	if len(tr.Active()) != 0 {
		t.Error("resolved thread still listed as active")
	}
	if len(tr.All()) != 1 {
		t.Error("resolved thread should remain queryable")
	}
}

func TestAdvanceEscalatesOnIntensity(t *testing.T) {
	tr := NewTracker()
	th := tr.Ingest(&event.Event{Turn: 1, Category: event.MissionFailure, Location: "Downtown"})
	for turn := 2; turn <= 7; turn++ {
		tr.Ingest(&event.Event{Turn: turn, Category: event.EvidenceDiscovered, Location: "Downtown"})
	}
	if !almostEqual(th.Intensity, 0.7) {
		t.Fatalf("intensity = %f, want 0.7", th.Intensity)
	}

	escalated := tr.Advance(7)
	if len(escalated) != 1 || escalated[0] != th {
		t.Fatalf("escalated = %v, want the one thread", escalated)
	}
	if th.Status != ThreadEscalating {
		t.Errorf("status = %s, want escalating", th.Status)
	}

	// Second advance does not re-report it.
	if again := tr.Advance(7); len(again) != 0 {
		t.Errorf("thread re-escalated: %v", again)
	}
}

func TestAdvanceEscalatesOnClustering(t *testing.T) {
	tr := NewTracker()
	th := tr.Ingest(&event.Event{Turn: 1, Category: event.MissionFailure, Location: "Docks"})
	tr.Ingest(&event.Event{Turn: 2, Category: event.WitnessInteraction, Location: "Docks"})
	tr.Ingest(&event.Event{Turn: 9, Category: event.CombatEncounter, Location: "Docks"})
	tr.Ingest(&event.Event{Turn: 10, Category: event.WitnessInteraction, Location: "Docks"})

	// Intensity 0.4 is below the threshold, but 4 events with 2 in the
	// last 3 turns still qualifies.
	escalated := tr.Advance(10)
	if len(escalated) != 1 {
		t.Fatalf("escalated = %d threads, want 1", len(escalated))
	}
	if th.Status != ThreadEscalating {
		t.Errorf("status = %s, want escalating", th.Status)
	}
}

func TestConsequenceFromThread(t *testing.T) {
	base := []*event.Event{{Turn: 5, Category: event.EvidenceDiscovered, Location: "Lab"}}
	tests := []struct {
		name        string
		thread      *Thread
		wantKind    consequence.Kind
		wantTrigger int
	}{
		{
			name: "government task force",
			thread: &Thread{Events: base, Status: ThreadEscalating, Intensity: 0.8,
				Description: "Government net tightening around the team"},
			wantKind:    consequence.KindGovernmentTaskForce,
			wantTrigger: 12,
		},
		{
			name: "family intervention",
			thread: &Thread{Events: base, Status: ThreadEscalating, Intensity: 0.7,
				Description: "Family becoming suspicious of Marcy"},
			wantKind:    consequence.KindFamilyIntervention,
			wantTrigger: 11,
		},
		{
			name: "evidence breakthrough",
			thread: &Thread{Events: base, Status: ThreadEscalating, Intensity: 0.9,
				Description: "Evidence trail building - agent-1 making connections"},
			wantKind:    consequence.KindBreakthrough,
			wantTrigger: 11,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := ConsequenceFromThread(tt.thread, 10)
			if c == nil {
				t.Fatal("no consequence generated")
			}
			if c.Kind != tt.wantKind {
				t.Errorf("kind = %s, want %s", c.Kind, tt.wantKind)
			}
			if c.TriggerTurn != tt.wantTrigger {
				t.Errorf("trigger = %d, want %d", c.TriggerTurn, tt.wantTrigger)
			}
			if !almostEqual(c.Intensity, tt.thread.Intensity) {
				t.Errorf("intensity = %f, want %f", c.Intensity, tt.thread.Intensity)
			}
		})
	}
}

func TestConsequenceFromThreadGuards(t *testing.T) {
	base := []*event.Event{{Turn: 5, Category: event.EvidenceDiscovered}}
	active := &Thread{Events: base, Status: ThreadActive, Intensity: 0.9, Description: "Evidence trail building"}
	if c := ConsequenceFromThread(active, 10); c != nil {
		t.Error("active thread produced a consequence")
	}
	weak := &Thread{Events: base, Status: ThreadEscalating, Intensity: 0.6, Description: "Evidence trail building"}
	if c := ConsequenceFromThread(weak, 10); c != nil {
		t.Error("low-intensity thread produced a consequence")
	}
	unmatched := &Thread{Events: base, Status: ThreadEscalating, Intensity: 0.9,
		Description: "Violent incident draws major attention"}
	if c := ConsequenceFromThread(unmatched, 10); c != nil {
		t.Error("keyword-free description produced a consequence")
	}
}

func TestTension(t *testing.T) {
	tr := NewTracker()
	if tr.Tension(3, 1) != 0 {
		t.Error("tension without threads should be 0")
	}

	tr.Ingest(&event.Event{Turn: 1, Category: event.MissionFailure, Location: "A"})
	tr.Ingest(&event.Event{Turn: 1, Category: event.MissionCriticalFailure, Location: "B"})
	// Two threads at 0.1 each, one pattern, no escalations.
	got := tr.Tension(1, 0)
	if !almostEqual(got, 0.2) {
		t.Errorf("tension = %f, want 0.2", got)
	}

	// Saturation.
	if got := tr.Tension(10, 10); !almostEqual(got, 1.0) {
		t.Errorf("tension = %f, want clamped 1.0", got)
	}
}
