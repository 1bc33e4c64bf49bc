package engine

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/talgya/continuum/internal/consequence"
	"github.com/talgya/continuum/internal/event"
	"github.com/talgya/continuum/internal/heat"
	"github.com/talgya/continuum/internal/narrative"
	"github.com/talgya/continuum/internal/pattern"
	"github.com/talgya/continuum/internal/story"
)

// AdvanceTurn moves the session to the next turn and runs the end-of-turn
// pipeline in fixed order: trigger due consequences, cool location heat,
// detect fresh patterns, advance storylines, then synthesize the turn's
// story.
func (e *Engine) AdvanceTurn(feeds story.Feeds) *TurnReport {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.turn++
	turn := e.turn

	triggered := e.Scheduler.Advance(turn)
	for _, c := range triggered {
		e.applyConsequence(c, turn)
	}

	e.Heat.Decay(turn)

	detected := e.Detector.Detect(turn, e.Log)
	fresh := e.Detector.Unseen(pattern.Significant(detected))
	e.Detector.MarkSeen(fresh)
	for _, p := range fresh {
		e.schedulePatternInvestigation(p, turn)
	}

	escalated := e.Threads.Advance(turn)
	for _, t := range escalated {
		if c := narrative.ConsequenceFromThread(t, turn); c != nil {
			if err := e.Scheduler.Schedule(c); err != nil {
				slog.Warn("dropping thread consequence", "kind", c.Kind, "error", err)
			}
		}
	}

	tension := e.Threads.Tension(len(fresh), len(escalated))
	prose := e.Story.Synthesize(turn, fresh, tension, feeds)

	e.lastStory = prose
	e.lastPatterns = fresh
	e.lastTension = tension

	slog.Info("turn report",
		"turn", turn,
		"events", e.Log.Len(),
		"triggered", len(triggered),
		"new_patterns", len(fresh),
		"escalations", len(escalated),
		"active_threads", len(e.Threads.Active()),
		"tension", tension,
	)
	for _, c := range triggered {
		slog.Info("consequence triggered",
			"kind", c.Kind,
			"severity", c.Severity.String(),
			"location", c.Location,
			"urgent", c.Urgent,
		)
	}

	return &TurnReport{
		Turn:      turn,
		Triggered: triggered,
		Patterns:  fresh,
		Escalated: escalated,
		Tension:   tension,
		Story:     prose,
	}
}

// applyConsequence feeds a triggered consequence's effects back into the
// world: surveillance settles on a location, and the investigative kinds
// become events of their own so heat and storylines see them. None of the
// derived categories have generation rules, so this cannot cascade.
func (e *Engine) applyConsequence(c *consequence.Consequence, turn int) {
	if c.Kind == consequence.KindLocationSurveillance && c.Location != "" {
		// Longer assignments come with tighter coverage.
		level := 0.3 + float64(c.SurveillanceDuration)*0.04
		e.Heat.RaiseSurveillance(c.Location, level)
		return
	}

	var derived event.Category
	switch c.Kind {
	case consequence.KindGovernmentInvestigation:
		derived = event.GovernmentInvestigationStarted
	case consequence.KindEvidenceDiscovery:
		derived = event.EvidenceDiscovered
	case consequence.KindWitnessReport:
		derived = event.WitnessStatement
	case consequence.KindGovernmentTaskForce:
		derived = event.GovernmentResponse
	case consequence.KindBreakthrough:
		derived = event.GovernmentBreakthrough
	default:
		return
	}

	ev := &event.Event{
		Turn:     turn,
		Category: derived,
		Location: c.Location,
		ActorID:  c.ActorID,
		Recorded: time.Now(),
	}
	if c.Kind == consequence.KindWitnessReport {
		ev.Detail = event.WitnessDetail{DetailLevel: c.DetailLevel}
	}
	if err := e.record(ev); err != nil {
		slog.Warn("recording derived event failed", "category", derived, "error", err)
	}
}

// schedulePatternInvestigation opens a case on a freshly announced
// pattern. Strong patterns get a major response.
func (e *Engine) schedulePatternInvestigation(p pattern.Pattern, turn int) {
	sev := consequence.Moderate
	if p.Severity >= 0.8 {
		sev = consequence.Major
	}
	c := &consequence.Consequence{
		ID:          uuid.NewString(),
		Kind:        consequence.KindPatternInvestigation,
		Severity:    sev,
		Status:      consequence.Pending,
		CreatedTurn: turn,
		TriggerTurn: turn + e.rng.Between(1, 2),
		Intensity:   p.Severity,
		Description: p.Description,
	}
	if p.Type == pattern.LocationPattern {
		c.Location = p.Subject
	} else if p.Type == pattern.ActorPattern {
		c.ActorID = p.Subject
	}
	if err := e.Scheduler.Schedule(c); err != nil {
		slog.Warn("dropping pattern consequence", "pattern", p.Type, "error", err)
	}
}

// TurnStory returns the prose generated for the most recent turn.
func (e *Engine) TurnStory() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastStory
}

// Tension returns the most recent tension reading.
func (e *Engine) Tension() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastTension
}

// Summarize builds a point-in-time view of the session for observers.
func (e *Engine) Summarize() *Summary {
	e.mu.Lock()
	defer e.mu.Unlock()
	return &Summary{
		Turn:         e.turn,
		Tension:      e.lastTension,
		Threads:      e.Threads.Active(),
		Consequences: e.Scheduler.Active(),
		Pending:      e.Scheduler.Pending(),
		HotSpots:     e.Heat.HotLocations(0.3),
		Reporting:    e.Heat.ReportingActors(0.6),
	}
}

// HotLocations reports locations at or above the heat threshold.
func (e *Engine) HotLocations(threshold float64) []heat.HotLocation {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.Heat.HotLocations(threshold)
}

// ReportingActors reports actors suspicious enough to talk.
func (e *Engine) ReportingActors(threshold float64) []*heat.ActorRecord {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.Heat.ReportingActors(threshold)
}

// ActiveThreads returns the live storylines.
func (e *Engine) ActiveThreads() []*narrative.Thread {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.Threads.Active()
}

// ActiveConsequences returns triggered, unresolved consequences.
func (e *Engine) ActiveConsequences() []*consequence.Consequence {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.Scheduler.Active()
}

// PendingConsequences returns consequences waiting to trigger.
func (e *Engine) PendingConsequences() []*consequence.Consequence {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.Scheduler.Pending()
}

// ResolveConsequence closes a consequence by ID. Critical consequences
// end no other way.
func (e *Engine) ResolveConsequence(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.Scheduler.Resolve(id, e.turn)
}
