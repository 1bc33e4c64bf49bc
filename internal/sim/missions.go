// Package sim drives a session: a mission team working the city, the
// government reacting to the heat they generate, the Faction pursuing its
// own agenda, and the background feeds the storyteller draws on.
package sim

import (
	"fmt"

	"github.com/talgya/continuum/internal/engine"
	"github.com/talgya/continuum/internal/entropy"
	"github.com/talgya/continuum/internal/event"
	"github.com/talgya/continuum/internal/world"
)

var missionTypes = []string{
	"extraction",
	"asset protection",
	"data recovery",
	"interception",
	"sabotage",
}

// Team is the player-side mission team the session follows.
type Team struct {
	rng  *entropy.Source
	city *world.City
	eng  *engine.Engine

	operatives []string
	missions   int
}

// NewTeam creates a mission team of the given size.
func NewTeam(eng *engine.Engine, city *world.City, rng *entropy.Source, size int) *Team {
	t := &Team{rng: rng, city: city, eng: eng}
	for i := 0; i < size; i++ {
		t.operatives = append(t.operatives, fmt.Sprintf("traveler-%d", i+1))
	}
	return t
}

// Operatives returns the team member IDs.
func (t *Team) Operatives() []string {
	return t.operatives
}

// Turn runs the team's activity for one turn. Roughly every other turn
// the team is on mission; the rest is cover maintenance, which can still
// go wrong.
func (t *Team) Turn() error {
	if t.rng.Chance(0.55) {
		return t.runMission()
	}
	return t.maintainCover()
}

// runMission executes one mission. Success odds degrade in dangerous
// districts; failures can leave evidence, casualties, and witnesses.
func (t *Team) runMission() error {
	t.missions++
	locations := t.city.Locations()
	location := locations[t.rng.Intn(len(locations))]
	operative := t.operatives[t.rng.Intn(len(t.operatives))]
	missionType := missionTypes[t.rng.Intn(len(missionTypes))]

	danger := 0.3
	if d := t.city.DistrictOf(location); d != nil {
		danger = d.Danger
	}

	importance := event.ImportanceModerate
	if t.rng.Chance(0.3) {
		importance = event.ImportanceMajor
	}

	success := t.rng.Chance(0.75 - danger*0.4)
	if success {
		return t.eng.RecordAction(&event.Event{
			Category: event.MissionSuccess,
			ActorID:  operative,
			Location: location,
			Detail:   event.MissionDetail{MissionType: missionType, Importance: importance},
		})
	}

	detail := event.MissionDetail{
		MissionType:  missionType,
		Importance:   importance,
		EvidenceLeft: t.rng.Chance(0.4),
	}
	category := event.MissionFailure
	if t.rng.Chance(0.15) {
		category = event.MissionCriticalFailure
		detail.Casualties = t.rng.Between(1, 3)
	}
	if err := t.eng.RecordAction(&event.Event{
		Category: category,
		ActorID:  operative,
		Location: location,
		Detail:   detail,
	}); err != nil {
		return err
	}

	if detail.Casualties > 0 {
		if err := t.eng.RecordAction(&event.Event{
			Category: event.CombatCasualties,
			ActorID:  operative,
			Location: location,
			Detail:   event.CombatDetail{Casualties: detail.Casualties},
		}); err != nil {
			return err
		}
	}

	// Failed operations tend to be seen.
	if t.rng.Chance(0.5) {
		witness := t.randomCivilian()
		if err := t.eng.RecordAction(&event.Event{
			Category: event.WitnessInteraction,
			ActorID:  witness,
			Location: location,
			Detail:   event.WitnessDetail{Observed: category},
		}); err != nil {
			return err
		}
	}
	return nil
}

// maintainCover plays out the quiet life between missions. Host families
// notice things.
func (t *Team) maintainCover() error {
	if !t.rng.Chance(0.2) {
		return nil
	}
	operative := t.operatives[t.rng.Intn(len(t.operatives))]
	return t.eng.RecordAction(&event.Event{
		Category: event.HostBodySuspicion,
		ActorID:  operative,
		Detail:   event.SuspicionDetail{Level: t.rng.Uniform(0.3, 0.9)},
	})
}

func (t *Team) randomCivilian() string {
	civs := t.city.Civilians()
	if len(civs) == 0 {
		return "bystander"
	}
	return civs[t.rng.Intn(len(civs))].Name
}
