package sim

import (
	"github.com/talgya/continuum/internal/engine"
	"github.com/talgya/continuum/internal/entropy"
	"github.com/talgya/continuum/internal/event"
	"github.com/talgya/continuum/internal/story"
	"github.com/talgya/continuum/internal/world"
)

var factionActivities = []string{
	"recruiting from local militia groups",
	"stockpiling medical supplies",
	"building a quantum frame",
	"tracking government communications",
	"moving funds through shell companies",
	"surveilling federal personnel",
}

// factionOp is one ongoing antagonist operation.
type factionOp struct {
	location string
	activity string
	progress int
}

// Faction runs the antagonist side: slow operations that surface as
// events when they complete and as feed updates while they run.
type Faction struct {
	rng  *entropy.Source
	city *world.City
	eng  *engine.Engine

	ops []*factionOp
}

// NewFaction creates the antagonist actor.
func NewFaction(eng *engine.Engine, city *world.City, rng *entropy.Source) *Faction {
	return &Faction{rng: rng, city: city, eng: eng}
}

// Turn advances every operation and occasionally starts a new one.
// Completed operations become recorded events; the rest are reported as
// feed updates.
func (f *Faction) Turn() ([]story.FactionUpdate, error) {
	if len(f.ops) < 2 && f.rng.Chance(0.25) {
		locations := f.city.Locations()
		f.ops = append(f.ops, &factionOp{
			location: locations[f.rng.Intn(len(locations))],
			activity: factionActivities[f.rng.Intn(len(factionActivities))],
			progress: f.rng.Between(5, 20),
		})
	}

	var updates []story.FactionUpdate
	remaining := f.ops[:0]
	for _, op := range f.ops {
		op.progress += f.rng.Between(10, 30)
		if op.progress >= 100 {
			err := f.eng.RecordAction(&event.Event{
				Category: event.FactionOperation,
				Location: op.location,
				Ext:      map[string]string{"activity": op.activity},
			})
			if err != nil {
				return updates, err
			}
			continue
		}
		remaining = append(remaining, op)
		updates = append(updates, story.FactionUpdate{
			Location: op.location,
			Activity: op.activity,
			Progress: op.progress,
		})
	}
	f.ops = remaining
	return updates, nil
}
