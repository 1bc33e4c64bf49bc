package pattern

import (
	"math"
	"reflect"
	"testing"

	"github.com/talgya/continuum/internal/event"
)

func TestDetectLocationCluster(t *testing.T) {
	log := event.NewLog()
	log.Append(&event.Event{Turn: 6, Category: event.MissionFailure, Location: "Downtown"})
	log.Append(&event.Event{Turn: 8, Category: event.CombatEncounter, Location: "Downtown"})
	log.Append(&event.Event{Turn: 10, Category: event.WitnessInteraction, Location: "Downtown"})

	got := Significant(NewDetector().Detect(10, log))
	if len(got) != 1 {
		t.Fatalf("got %d patterns, want 1", len(got))
	}
	p := got[0]
	if p.Type != LocationPattern || p.Subject != "Downtown" {
		t.Errorf("pattern = %s/%s, want location_pattern/Downtown", p.Type, p.Subject)
	}
	if p.EventCount != 3 {
		t.Errorf("event count = %d, want 3", p.EventCount)
	}
	if math.Abs(p.Severity-0.6) > 1e-9 {
		t.Errorf("severity = %f, want 0.6", p.Severity)
	}
}

func TestDetectLocationWindowExcludesOldEvents(t *testing.T) {
	log := event.NewLog()
	// Turn 5 is outside a 5-turn window ending at turn 10.
	log.Append(&event.Event{Turn: 5, Category: event.MissionFailure, Location: "Docks"})
	log.Append(&event.Event{Turn: 8, Category: event.CombatEncounter, Location: "Docks"})
	log.Append(&event.Event{Turn: 10, Category: event.WitnessInteraction, Location: "Docks"})

	if got := NewDetector().Detect(10, log); len(got) != 0 {
		t.Fatalf("got %d patterns, want 0 with one event outside the window", len(got))
	}
}

func TestDetectActorCluster(t *testing.T) {
	log := event.NewLog()
	for _, turn := range []int{3, 6, 9, 10} {
		log.Append(&event.Event{Turn: turn, Category: event.HackingOperation, ActorID: "traveler-9"})
	}

	got := NewDetector().Detect(10, log)
	if len(got) != 1 {
		t.Fatalf("got %d patterns, want 1", len(got))
	}
	p := got[0]
	if p.Type != ActorPattern || p.Subject != "traveler-9" {
		t.Errorf("pattern = %s/%s, want npc_pattern/traveler-9", p.Type, p.Subject)
	}
	if math.Abs(p.Severity-1.0) > 1e-9 {
		t.Errorf("severity = %f, want capped 1.0", p.Severity)
	}
}

func TestDetectEvidenceAccumulation(t *testing.T) {
	log := event.NewLog()
	for turn := 1; turn <= 20; turn++ {
		log.Append(&event.Event{Turn: turn, Category: event.FactionOperation})
	}
	// Three discoveries inside the ten-event tail.
	for turn := 21; turn <= 23; turn++ {
		log.Append(&event.Event{Turn: turn, Category: event.EvidenceDiscovered})
	}

	got := NewDetector().Detect(23, log)
	if len(got) != 1 {
		t.Fatalf("got %d patterns, want 1", len(got))
	}
	p := got[0]
	if p.Type != EvidencePattern {
		t.Errorf("type = %s, want evidence_accumulation", p.Type)
	}
	if math.Abs(p.Severity-0.9) > 1e-9 {
		t.Errorf("severity = %f, want 0.9", p.Severity)
	}
}

func TestDetectIsRepeatable(t *testing.T) {
	log := event.NewLog()
	for _, turn := range []int{8, 9, 10} {
		log.Append(&event.Event{Turn: turn, Category: event.CombatEncounter, Location: "Plaza", ActorID: "t1"})
	}
	d := NewDetector()
	first := d.Detect(10, log)
	second := d.Detect(10, log)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated detection differs:\nfirst  %+v\nsecond %+v", first, second)
	}
}

func TestUnseenAndMarkSeen(t *testing.T) {
	log := event.NewLog()
	for _, turn := range []int{8, 9, 10} {
		log.Append(&event.Event{Turn: turn, Category: event.CombatEncounter, Location: "Plaza"})
	}
	d := NewDetector()
	found := d.Detect(10, log)
	fresh := d.Unseen(found)
	if len(fresh) != 1 {
		t.Fatalf("unseen = %d, want 1", len(fresh))
	}
	d.MarkSeen(fresh)
	if again := d.Unseen(d.Detect(10, log)); len(again) != 0 {
		t.Errorf("pattern announced twice: %+v", again)
	}

	// A fourth event grows the cluster but it is the same pattern.
	log.Append(&event.Event{Turn: 11, Category: event.MissionFailure, Location: "Plaza"})
	if again := d.Unseen(d.Detect(11, log)); len(again) != 0 {
		t.Errorf("grown cluster re-announced: %+v", again)
	}
}

func TestSignificantFiltersWeakPatterns(t *testing.T) {
	patterns := []Pattern{
		{Type: LocationPattern, Subject: "a", Severity: 0.6},
		{Type: ActorPattern, Subject: "b", Severity: 0.5},
		{Type: EvidencePattern, Subject: "c", Severity: 0.3},
	}
	got := Significant(patterns)
	if len(got) != 1 || got[0].Subject != "a" {
		t.Errorf("Significant = %+v, want only severity > 0.5", got)
	}
}

func TestSeenKeysRoundTrip(t *testing.T) {
	d := NewDetector()
	d.MarkSeen([]Pattern{{Type: LocationPattern, Subject: "Downtown"}})
	fresh := NewDetector()
	fresh.Restore(d.SeenKeys())
	if got := fresh.Unseen([]Pattern{{Type: LocationPattern, Subject: "Downtown"}}); len(got) != 0 {
		t.Errorf("restored detector forgot announcements: %+v", got)
	}
}
