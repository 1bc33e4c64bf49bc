package persistence

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/talgya/continuum/internal/consequence"
	"github.com/talgya/continuum/internal/engine"
	"github.com/talgya/continuum/internal/entropy"
	"github.com/talgya/continuum/internal/event"
	"github.com/talgya/continuum/internal/heat"
	"github.com/talgya/continuum/internal/narrative"
)

func restoreEngine(snap *engine.Snapshot) (*engine.Engine, error) {
	return engine.Restore(entropy.New(1), nil, snap)
}

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "session.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleSnapshot() *engine.Snapshot {
	recorded := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	events := []*event.Event{
		{
			Turn:     3,
			Category: event.MissionFailure,
			ActorID:  "traveler-1",
			Location: "Downtown",
			Detail:   event.MissionDetail{MissionType: "extraction", Importance: event.ImportanceMajor, EvidenceLeft: true},
			Recorded: recorded,
		},
		{
			Turn:     4,
			Category: event.WitnessInteraction,
			ActorID:  "Marcy Warton",
			Location: "Downtown",
			Detail:   event.WitnessDetail{Observed: event.MissionFailure},
			Recorded: recorded.Add(time.Hour),
		},
		{
			Turn:     5,
			Category: event.FactionOperation,
			Location: "The Docks",
			Ext:      map[string]string{"activity": "recruiting"},
			Recorded: recorded.Add(2 * time.Hour),
		},
	}
	return &engine.Snapshot{
		Turn:   5,
		Events: events,
		Consequences: []*consequence.Consequence{
			{
				ID:          "c-1",
				Kind:        consequence.KindGovernmentInvestigation,
				Severity:    consequence.Major,
				Status:      consequence.Active,
				CreatedTurn: 3,
				TriggerTurn: 4,
				ResolveBy:   12,
				Location:    "Downtown",
				Urgent:      true,
			},
			{
				ID:          "c-2",
				Kind:        consequence.KindWitnessReport,
				Severity:    consequence.Moderate,
				Status:      consequence.Pending,
				CreatedTurn: 4,
				TriggerTurn: 6,
				ActorID:     "Marcy Warton",
				DetailLevel: 0.55,
			},
		},
		Locations: []*heat.LocationRecord{
			{
				Location:            "Downtown",
				HeatLevel:           0.7,
				IncidentCount:       2,
				LastIncidentTurn:    4,
				InvestigationActive: true,
				SurveillanceLevel:   0.4,
			},
		},
		Actors: []*heat.ActorRecord{
			{
				ActorID:        "Marcy Warton",
				SuspicionLevel: 0.2,
				Observations: []heat.Observation{
					{Turn: 4, Action: "witness_interaction", Location: "Downtown"},
				},
				FirstObservationTurn: 4,
			},
		},
		Threads: []engine.ThreadSnapshot{
			{
				Thread: &narrative.Thread{
					ID:          "t-1",
					Intensity:   0.3,
					LastUpdate:  4,
					Status:      narrative.ThreadActive,
					MainActors:  []string{"traveler-1", "Marcy Warton"},
					Description: "Investigation intensifying at Downtown",
					CreatedTurn: 3,
				},
				EventIndexes: []int{0, 1},
			},
		},
		SeenPatterns: []string{"location_pattern|Downtown"},
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	db := openTestDB(t)
	snap := sampleSnapshot()

	if err := db.Save(snap); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := db.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got == nil {
		t.Fatal("load returned no snapshot")
	}

	if got.Turn != snap.Turn {
		t.Errorf("turn = %d, want %d", got.Turn, snap.Turn)
	}
	if len(got.Events) != len(snap.Events) {
		t.Fatalf("events = %d, want %d", len(got.Events), len(snap.Events))
	}
	for i, ev := range got.Events {
		want := snap.Events[i]
		if ev.Category != want.Category || ev.Turn != want.Turn ||
			ev.ActorID != want.ActorID || ev.Location != want.Location {
			t.Errorf("event %d = %+v, want %+v", i, ev, want)
		}
		if !ev.Recorded.Equal(want.Recorded) {
			t.Errorf("event %d timestamp = %v, want %v", i, ev.Recorded, want.Recorded)
		}
	}

	mission := got.Events[0].Mission()
	if mission.MissionType != "extraction" || !mission.EvidenceLeft {
		t.Errorf("mission detail lost: %+v", mission)
	}
	if got.Events[2].Ext["activity"] != "recruiting" {
		t.Errorf("ext lost: %+v", got.Events[2].Ext)
	}

	if len(got.Consequences) != 2 {
		t.Fatalf("consequences = %d, want 2", len(got.Consequences))
	}
	for _, c := range got.Consequences {
		switch c.ID {
		case "c-1":
			if c.Kind != consequence.KindGovernmentInvestigation ||
				c.Severity != consequence.Major ||
				c.Status != consequence.Active ||
				c.ResolveBy != 12 || !c.Urgent {
				t.Errorf("c-1 fields lost: %+v", c)
			}
		case "c-2":
			if c.Status != consequence.Pending || c.DetailLevel != 0.55 {
				t.Errorf("c-2 fields lost: %+v", c)
			}
		default:
			t.Errorf("unexpected consequence %s", c.ID)
		}
	}

	if len(got.Locations) != 1 || !got.Locations[0].InvestigationActive {
		t.Errorf("location heat lost: %+v", got.Locations)
	}
	if len(got.Actors) != 1 || len(got.Actors[0].Observations) != 1 {
		t.Errorf("actor suspicion lost: %+v", got.Actors)
	}

	if len(got.Threads) != 1 {
		t.Fatalf("threads = %d, want 1", len(got.Threads))
	}
	th := got.Threads[0]
	if th.Thread.ID != "t-1" || th.Thread.Status != narrative.ThreadActive {
		t.Errorf("thread fields lost: %+v", th.Thread)
	}
	if len(th.EventIndexes) != 2 || th.EventIndexes[0] != 0 || th.EventIndexes[1] != 1 {
		t.Errorf("thread indexes lost: %v", th.EventIndexes)
	}

	if len(got.SeenPatterns) != 1 || got.SeenPatterns[0] != "location_pattern|Downtown" {
		t.Errorf("seen patterns lost: %v", got.SeenPatterns)
	}
}

func TestLoadEmptyDatabase(t *testing.T) {
	db := openTestDB(t)
	snap, err := db.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if snap != nil {
		t.Errorf("empty database produced a snapshot: %+v", snap)
	}
}

func TestSaveReplacesPrevious(t *testing.T) {
	db := openTestDB(t)
	if err := db.Save(sampleSnapshot()); err != nil {
		t.Fatalf("first save: %v", err)
	}

	second := sampleSnapshot()
	second.Turn = 9
	second.Events = second.Events[:1]
	second.Threads = nil
	second.SeenPatterns = nil
	if err := db.Save(second); err != nil {
		t.Fatalf("second save: %v", err)
	}

	got, err := db.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Turn != 9 {
		t.Errorf("turn = %d, want 9", got.Turn)
	}
	if len(got.Events) != 1 {
		t.Errorf("events = %d, want 1", len(got.Events))
	}
	if len(got.Threads) != 0 || len(got.SeenPatterns) != 0 {
		t.Errorf("stale rows survived: threads=%d patterns=%d",
			len(got.Threads), len(got.SeenPatterns))
	}
}

func TestRestoredEngineContinues(t *testing.T) {
	db := openTestDB(t)
	snap := sampleSnapshot()
	if err := db.Save(snap); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := db.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	eng, err := restoreEngine(loaded)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if eng.Turn() != 5 {
		t.Errorf("restored turn = %d, want 5", eng.Turn())
	}
	if eng.Log.Len() != 3 {
		t.Errorf("restored events = %d, want 3", eng.Log.Len())
	}
	if len(eng.ActiveConsequences()) != 1 {
		t.Errorf("active consequences = %d, want 1", len(eng.ActiveConsequences()))
	}
}
