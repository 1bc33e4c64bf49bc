package sim

import (
	"fmt"

	"github.com/talgya/continuum/internal/engine"
	"github.com/talgya/continuum/internal/entropy"
	"github.com/talgya/continuum/internal/story"
	"github.com/talgya/continuum/internal/world"
)

// Session wires the actors around one engine and steps them in lockstep
// with the turn clock.
type Session struct {
	Engine *engine.Engine

	team       *Team
	government *Government
	faction    *Faction
	background *Background
}

// NewSession builds a session around an existing engine and city.
func NewSession(eng *engine.Engine, city *world.City, rng *entropy.Source, teamSize int) *Session {
	return &Session{
		Engine:     eng,
		team:       NewTeam(eng, city, rng, teamSize),
		government: NewGovernment(eng, city, rng),
		faction:    NewFaction(eng, city, rng),
		background: NewBackground(eng, city, rng),
	}
}

// Step plays one full turn: every actor acts on the current turn, then
// the engine advances with the feeds they produced.
func (s *Session) Step() (*engine.TurnReport, error) {
	if err := s.team.Turn(); err != nil {
		return nil, fmt.Errorf("team turn: %w", err)
	}

	news, err := s.government.Turn()
	if err != nil {
		return nil, fmt.Errorf("government turn: %w", err)
	}

	factionUpdates, err := s.faction.Turn()
	if err != nil {
		return nil, fmt.Errorf("faction turn: %w", err)
	}

	worldEvents, majorChanges, rogue, err := s.background.Turn()
	if err != nil {
		return nil, fmt.Errorf("background turn: %w", err)
	}

	feeds := story.Feeds{
		Faction:       factionUpdates,
		WorldEvents:   worldEvents,
		MajorChanges:  majorChanges,
		PoliticalNews: news,
		RogueAgent:    rogue,
	}
	return s.Engine.AdvanceTurn(feeds), nil
}
