package sim

import (
	"fmt"

	"github.com/talgya/continuum/internal/engine"
	"github.com/talgya/continuum/internal/entropy"
	"github.com/talgya/continuum/internal/event"
	"github.com/talgya/continuum/internal/story"
	"github.com/talgya/continuum/internal/world"
)

// Government reacts to the heat the team generates: it dispatches
// investigators to hot locations, sweeps them for evidence, and leaks
// the occasional headline.
type Government struct {
	rng  *entropy.Source
	city *world.City
	eng  *engine.Engine

	// dispatched tracks which locations already have an investigator
	// assigned, so a long-running hot spot is not re-announced every
	// turn.
	dispatched map[string]string
	// reported tracks actors whose statements were already taken.
	reported map[string]bool
}

// NewGovernment creates the government actor.
func NewGovernment(eng *engine.Engine, city *world.City, rng *entropy.Source) *Government {
	return &Government{
		rng:        rng,
		city:       city,
		eng:        eng,
		dispatched: make(map[string]string),
		reported:   make(map[string]bool),
	}
}

// Turn runs the government's reaction for one turn and returns any
// headlines it generated.
func (g *Government) Turn() ([]story.NewsItem, error) {
	var news []story.NewsItem

	for _, hot := range g.eng.HotLocations(0.5) {
		agentID, assigned := g.dispatched[hot.Location]
		if !assigned {
			agentID = g.pickAgent()
			g.dispatched[hot.Location] = agentID
			err := g.eng.RecordAction(&event.Event{
				Category: event.GovernmentInvestigationStarted,
				ActorID:  agentID,
				Location: hot.Location,
			})
			if err != nil {
				return news, err
			}
			if hot.Priority == "critical" {
				news = append(news, story.NewsItem{
					Headline: fmt.Sprintf("Federal presence grows near %s after string of incidents", hot.Location),
					Summary:  fmt.Sprintf("Residents report increased police activity; officials decline to comment on %d incidents.", hot.IncidentCount),
				})
			}
			continue
		}

		// Assigned investigators keep working the scene.
		if hot.InvestigationActive && g.rng.Chance(0.3) {
			err := g.eng.RecordAction(&event.Event{
				Category: event.EvidenceDiscovered,
				ActorID:  agentID,
				Location: hot.Location,
			})
			if err != nil {
				return news, err
			}
		}
	}

	// Suspicious civilians who decided to talk become statements.
	for _, actor := range g.eng.ReportingActors(0.6) {
		if !actor.WillReport || g.reported[actor.ActorID] || len(actor.Observations) == 0 {
			continue
		}
		if !g.rng.Chance(0.5) {
			continue
		}
		g.reported[actor.ActorID] = true
		last := actor.Observations[len(actor.Observations)-1]
		err := g.eng.RecordAction(&event.Event{
			Category: event.WitnessStatement,
			ActorID:  actor.ActorID,
			Location: last.Location,
			Detail:   event.WitnessDetail{DetailLevel: actor.SuspicionLevel},
		})
		if err != nil {
			return news, err
		}
	}

	// Cold locations free their investigators up.
	stillHot := make(map[string]bool)
	for _, hot := range g.eng.HotLocations(0.3) {
		stillHot[hot.Location] = true
	}
	for loc := range g.dispatched {
		if !stillHot[loc] {
			delete(g.dispatched, loc)
		}
	}
	return news, nil
}

func (g *Government) pickAgent() string {
	agents := g.city.Agents()
	if len(agents) == 0 {
		return "FBI-0000"
	}
	return agents[g.rng.Intn(len(agents))].ID
}
