// Package engine ties the event log, scheduler, heat tracker, pattern
// detector, storylines, and story synthesizer together and runs them in a
// fixed order each turn.
package engine

import (
	"fmt"
	"sync"
	"time"

	"github.com/talgya/continuum/internal/consequence"
	"github.com/talgya/continuum/internal/entropy"
	"github.com/talgya/continuum/internal/event"
	"github.com/talgya/continuum/internal/heat"
	"github.com/talgya/continuum/internal/narrative"
	"github.com/talgya/continuum/internal/pattern"
	"github.com/talgya/continuum/internal/story"
)

// incidentSeverity grades how much heat each event category draws at its
// location.
var incidentSeverity = map[event.Category]consequence.Severity{
	event.MissionSuccess:                 consequence.Minor,
	event.MissionFailure:                 consequence.Major,
	event.MissionCriticalFailure:         consequence.Critical,
	event.CombatEncounter:                consequence.Major,
	event.CombatCasualties:               consequence.Critical,
	event.LocationCompromised:            consequence.Major,
	event.ProtocolViolation:              consequence.Moderate,
	event.HackingOperation:               consequence.Moderate,
	event.WitnessInteraction:             consequence.Minor,
	event.WitnessStatement:               consequence.Moderate,
	event.HostBodySuspicion:              consequence.Minor,
	event.TravelerExposed:                consequence.Critical,
	event.GovernmentInvestigationStarted: consequence.Moderate,
	event.GovernmentBreakthrough:         consequence.Major,
	event.GovernmentResponse:             consequence.Major,
	event.EvidenceDiscovered:             consequence.Moderate,
	event.FactionOperation:               consequence.Moderate,
	event.NPCKilled:                      consequence.Major,
	event.NPCDiscovery:                   consequence.Moderate,
}

// Engine holds the complete session state and wires the subsystems
// together. All methods are safe for concurrent use; the observation API
// reads from another goroutine while the turn loop runs.
type Engine struct {
	mu   sync.Mutex
	turn int
	rng  *entropy.Source

	Log       *event.Log
	Scheduler *consequence.Scheduler
	Heat      *heat.Tracker
	Detector  *pattern.Detector
	Threads   *narrative.Tracker
	Story     *story.Synthesizer

	lastStory    string
	lastPatterns []pattern.Pattern
	lastTension  float64
}

// New creates an engine for a fresh session. All randomness flows from
// the one source, so a fixed seed reproduces the whole run.
func New(rng *entropy.Source, dir story.Directory) *Engine {
	return &Engine{
		turn:      1,
		rng:       rng,
		Log:       event.NewLog(),
		Scheduler: consequence.NewScheduler(rng),
		Heat:      heat.NewTracker(),
		Detector:  pattern.NewDetector(),
		Threads:   narrative.NewTracker(),
		Story:     story.NewSynthesizer(rng, dir),
	}
}

// Turn returns the current turn number.
func (e *Engine) Turn() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.turn
}

// RecordAction records something that happened during the current turn
// and fans it out: the log, location heat, actor suspicion, scheduled
// consequences, and the storyline tracker.
func (e *Engine) RecordAction(ev *event.Event) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !ev.Category.IsValid() {
		return fmt.Errorf("record action: empty event category")
	}
	ev.Turn = e.turn
	if ev.Recorded.IsZero() {
		ev.Recorded = time.Now()
	}
	return e.record(ev)
}

// record fans an event out to every subsystem. Caller holds the lock.
func (e *Engine) record(ev *event.Event) error {
	e.Log.Append(ev)

	if ev.Location != "" {
		sev, ok := incidentSeverity[ev.Category]
		if !ok {
			sev = consequence.Minor
		}
		e.Heat.MarkLocation(ev.Location, sev, ev.Turn)
	}

	switch ev.Category {
	case event.WitnessInteraction, event.WitnessStatement, event.HostBodySuspicion:
		if ev.ActorID != "" {
			e.Heat.MarkActor(ev.ActorID, heat.Observation{
				Turn:     ev.Turn,
				Action:   string(ev.Category),
				Location: ev.Location,
			})
		}
	}

	if cs := e.Scheduler.Generate(ev, ev.Turn); len(cs) > 0 {
		if err := e.Scheduler.Schedule(cs...); err != nil {
			return fmt.Errorf("schedule consequences for %s: %w", ev.Category, err)
		}
	}

	e.Threads.Ingest(ev)
	return nil
}

// TurnReport summarizes what happened as a turn opened.
type TurnReport struct {
	Turn      int                        `json:"turn"`
	Triggered []*consequence.Consequence `json:"triggered,omitempty"`
	Patterns  []pattern.Pattern          `json:"patterns,omitempty"`
	Escalated []*narrative.Thread        `json:"escalated,omitempty"`
	Tension   float64                    `json:"tension"`
	Story     string                     `json:"story"`
}

// Summary is a point-in-time view of the ongoing storylines.
type Summary struct {
	Turn         int                        `json:"turn"`
	Tension      float64                    `json:"tension"`
	Threads      []*narrative.Thread        `json:"threads"`
	Consequences []*consequence.Consequence `json:"consequences"`
	Pending      []*consequence.Consequence `json:"pending"`
	HotSpots     []heat.HotLocation         `json:"hot_spots"`
	Reporting    []*heat.ActorRecord        `json:"reporting"`
}
