package sim

import (
	"fmt"

	"github.com/talgya/continuum/internal/engine"
	"github.com/talgya/continuum/internal/entropy"
	"github.com/talgya/continuum/internal/event"
	"github.com/talgya/continuum/internal/story"
	"github.com/talgya/continuum/internal/world"
)

var worldEventTemplates = []string{
	"A water main break closes streets through %s.",
	"Power flickers across %s for the third time this month.",
	"A charity drive fills the sidewalks of %s.",
	"Road crews tear up the intersection near %s.",
	"A minor earthquake rattles windows in %s.",
	"Cell coverage drops out across %s for most of the afternoon.",
}

var majorChangeTemplates = []string{
	"The %s transit line shuts down indefinitely after a structural review.",
	"City council votes to put cameras on every corner of %s.",
	"A federal building breaks ground in %s.",
}

var rogueSightings = []string{
	"A man matching 001's description paid cash for a room near %s.",
	"Traffic cameras caught a partial plate linked to 001 leaving %s.",
	"An encrypted burst transmission was traced to a block in %s.",
	"A former contact of 001 was seen meeting someone in %s.",
}

// Background produces the city's ambient activity: world events, the
// occasional structural change, rogue operative sightings, and the rare
// civilian stumbling onto something they should not see.
type Background struct {
	rng  *entropy.Source
	city *world.City
	eng  *engine.Engine
}

// NewBackground creates the ambient activity source.
func NewBackground(eng *engine.Engine, city *world.City, rng *entropy.Source) *Background {
	return &Background{rng: rng, city: city, eng: eng}
}

// Turn rolls the turn's ambient activity and returns the feed entries.
func (b *Background) Turn() (worldEvents, majorChanges []string, rogue []story.RogueReport, err error) {
	districts := b.city.Districts

	if b.rng.Chance(0.4) {
		d := districts[b.rng.Intn(len(districts))]
		tmpl := worldEventTemplates[b.rng.Intn(len(worldEventTemplates))]
		worldEvents = append(worldEvents, fmt.Sprintf(tmpl, d.Name))
	}
	if b.rng.Chance(0.05) {
		d := districts[b.rng.Intn(len(districts))]
		tmpl := majorChangeTemplates[b.rng.Intn(len(majorChangeTemplates))]
		majorChanges = append(majorChanges, fmt.Sprintf(tmpl, d.Name))
	}
	if b.rng.Chance(0.1) {
		d := districts[b.rng.Intn(len(districts))]
		tmpl := rogueSightings[b.rng.Intn(len(rogueSightings))]
		rogue = append(rogue, story.RogueReport{
			Description: fmt.Sprintf(tmpl, d.Name),
			Location:    d.Name,
		})
	}

	// Rarely a civilian finds something real.
	if b.rng.Chance(0.03) {
		civs := b.city.Civilians()
		if len(civs) > 0 {
			npc := civs[b.rng.Intn(len(civs))]
			err = b.eng.RecordAction(&event.Event{
				Category: event.NPCDiscovery,
				ActorID:  npc.Name,
				Location: npc.WorkLocation,
			})
		}
	}
	return worldEvents, majorChanges, rogue, err
}
