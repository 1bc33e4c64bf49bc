// Package pattern scans recent history for clusters of activity that an
// outside observer would notice: repeated incidents at one place, one
// actor showing up too often, evidence piling up.
package pattern

import (
	"fmt"
	"sort"

	"github.com/talgya/continuum/internal/event"
)

// Type identifies what kind of cluster was detected.
type Type string

const (
	// LocationPattern is repeated incidents at a single location.
	LocationPattern Type = "location_pattern"
	// ActorPattern is one actor appearing in too many events.
	ActorPattern Type = "npc_pattern"
	// EvidencePattern is evidence discoveries accumulating.
	EvidencePattern Type = "evidence_accumulation"
)

const (
	locationWindow   = 5
	locationMinCount = 3
	actorWindow      = 8
	actorMinCount    = 3
	evidenceTail     = 10
	evidenceMinCount = 3

	// SignificanceFloor is the severity a pattern must exceed before
	// downstream consumers act on it.
	SignificanceFloor = 0.5
)

// Pattern is one detected activity cluster.
type Pattern struct {
	Type        Type    `json:"type"`
	Description string  `json:"description"`
	Subject     string  `json:"subject"`
	EventCount  int     `json:"event_count"`
	Severity    float64 `json:"severity"`
}

// Key identifies a pattern for dedupe purposes. The same cluster growing
// by another event is still the same pattern.
func (p Pattern) Key() string {
	return string(p.Type) + "|" + p.Subject
}

// Detector finds patterns and remembers which ones have been announced.
type Detector struct {
	seen map[string]bool
}

// NewDetector creates a detector with no announcement history.
func NewDetector() *Detector {
	return &Detector{seen: make(map[string]bool)}
}

// Detect scans the log as of currentTurn and returns every qualifying
// pattern, announced or not. It reads no other state and is safe to call
// repeatedly; two calls over the same log return the same patterns.
func (d *Detector) Detect(currentTurn int, log *event.Log) []Pattern {
	var out []Pattern
	out = append(out, detectLocations(currentTurn, log)...)
	out = append(out, detectActors(currentTurn, log)...)
	if p, ok := detectEvidence(log); ok {
		out = append(out, p)
	}
	return out
}

func detectLocations(currentTurn int, log *event.Log) []Pattern {
	names := log.Locations()
	sort.Strings(names)
	var out []Pattern
	for _, name := range names {
		count := 0
		for _, e := range log.ForLocation(name) {
			if e.Turn > currentTurn-locationWindow {
				count++
			}
		}
		if count < locationMinCount {
			continue
		}
		out = append(out, Pattern{
			Type:        LocationPattern,
			Subject:     name,
			EventCount:  count,
			Severity:    capSeverity(float64(count) * 0.2),
			Description: fmt.Sprintf("Multiple incidents reported at %s", name),
		})
	}
	return out
}

func detectActors(currentTurn int, log *event.Log) []Pattern {
	ids := log.Actors()
	sort.Strings(ids)
	var out []Pattern
	for _, id := range ids {
		count := 0
		for _, e := range log.ForActor(id) {
			if e.Turn > currentTurn-actorWindow {
				count++
			}
		}
		if count < actorMinCount {
			continue
		}
		out = append(out, Pattern{
			Type:        ActorPattern,
			Subject:     id,
			EventCount:  count,
			Severity:    capSeverity(float64(count) * 0.25),
			Description: fmt.Sprintf("%s keeps turning up around unusual events", id),
		})
	}
	return out
}

func detectEvidence(log *event.Log) (Pattern, bool) {
	count := 0
	for _, e := range log.Recent(evidenceTail) {
		if e.Category == event.EvidenceDiscovered {
			count++
		}
	}
	if count < evidenceMinCount {
		return Pattern{}, false
	}
	return Pattern{
		Type:        EvidencePattern,
		Subject:     "evidence",
		EventCount:  count,
		Severity:    capSeverity(float64(count) * 0.3),
		Description: "Investigators are accumulating physical evidence",
	}, true
}

func capSeverity(s float64) float64 {
	if s > 1.0 {
		return 1.0
	}
	return s
}

// Unseen filters patterns down to ones not yet announced.
func (d *Detector) Unseen(patterns []Pattern) []Pattern {
	var out []Pattern
	for _, p := range patterns {
		if !d.seen[p.Key()] {
			out = append(out, p)
		}
	}
	return out
}

// MarkSeen records patterns as announced so Unseen stops returning them.
func (d *Detector) MarkSeen(patterns []Pattern) {
	for _, p := range patterns {
		d.seen[p.Key()] = true
	}
}

// Significant filters patterns to those above the severity floor.
func Significant(patterns []Pattern) []Pattern {
	var out []Pattern
	for _, p := range patterns {
		if p.Severity > SignificanceFloor {
			out = append(out, p)
		}
	}
	return out
}

// SeenKeys returns the announced pattern keys, for persistence.
func (d *Detector) SeenKeys() []string {
	out := make([]string, 0, len(d.seen))
	for k := range d.seen {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Restore replaces the announcement history, for loading a session.
func (d *Detector) Restore(keys []string) {
	d.seen = make(map[string]bool, len(keys))
	for _, k := range keys {
		d.seen[k] = true
	}
}
