package event

import "testing"

func buildLog() *Log {
	l := NewLog()
	l.Append(&Event{Turn: 1, Category: MissionSuccess, ActorID: "t1", Location: "Downtown"})
	l.Append(&Event{Turn: 2, Category: MissionFailure, ActorID: "t2", Location: "Docks"})
	l.Append(&Event{Turn: 3, Category: WitnessInteraction, ActorID: "t1", Location: "Downtown"})
	l.Append(&Event{Turn: 5, Category: EvidenceDiscovered, Location: "Downtown"})
	return l
}

func TestLogOrderPreserved(t *testing.T) {
	l := buildLog()
	if l.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", l.Len())
	}
	all := l.All()
	for i := 1; i < len(all); i++ {
		if all[i].Turn < all[i-1].Turn {
			t.Fatalf("events out of order at index %d", i)
		}
	}
}

func TestLogSince(t *testing.T) {
	l := buildLog()
	got := l.Since(3)
	if len(got) != 2 {
		t.Fatalf("Since(3) = %d events, want 2", len(got))
	}
	for _, e := range got {
		if e.Turn < 3 {
			t.Errorf("event at turn %d included, want >= 3", e.Turn)
		}
	}
}

func TestLogRecent(t *testing.T) {
	l := buildLog()
	got := l.Recent(2)
	if len(got) != 2 {
		t.Fatalf("Recent(2) = %d events, want 2", len(got))
	}
	if got[1].Category != EvidenceDiscovered {
		t.Errorf("last recent event = %s, want evidence_discovered", got[1].Category)
	}
	if len(l.Recent(10)) != 4 {
		t.Error("Recent larger than history should return everything")
	}
}

func TestLogIndexes(t *testing.T) {
	l := buildLog()
	if got := l.ForLocation("Downtown"); len(got) != 3 {
		t.Errorf("ForLocation(Downtown) = %d, want 3", len(got))
	}
	if got := l.ForActor("t1"); len(got) != 2 {
		t.Errorf("ForActor(t1) = %d, want 2", len(got))
	}
	if got := l.ForActor("nobody"); got != nil {
		t.Errorf("ForActor(nobody) = %v, want nil", got)
	}
	if got := l.Locations(); len(got) != 2 {
		t.Errorf("Locations() = %d, want 2", len(got))
	}
	if got := l.Actors(); len(got) != 2 {
		t.Errorf("Actors() = %d, want 2", len(got))
	}
}
