// Package heat tracks how much attention locations and actors have drawn.
// Location heat rises with incidents and cools while things stay quiet;
// actor suspicion only rises until the actor reports what they saw.
package heat

import (
	"sort"

	"github.com/talgya/continuum/internal/consequence"
)

const (
	investigationThreshold = 0.6
	investigationClear     = 0.3
	decayPerQuietTurn      = 0.05
	suspicionPerSighting   = 0.2
	reportThreshold        = 0.6
)

// severityHeat maps incident severity to the heat it adds.
var severityHeat = map[consequence.Severity]float64{
	consequence.Minor:    0.1,
	consequence.Moderate: 0.2,
	consequence.Major:    0.4,
	consequence.Critical: 0.7,
}

// LocationRecord is the attention state of one location.
type LocationRecord struct {
	Location            string  `json:"location"`
	HeatLevel           float64 `json:"heat_level"`
	IncidentCount       int     `json:"incident_count"`
	LastIncidentTurn    int     `json:"last_incident_turn"`
	InvestigationActive bool    `json:"investigation_active"`
	SurveillanceLevel   float64 `json:"surveillance_level"`
}

// Observation is one sighting of an actor doing something notable.
type Observation struct {
	Turn     int    `json:"turn"`
	Action   string `json:"action"`
	Location string `json:"location,omitempty"`
	Detail   string `json:"detail,omitempty"`
}

// ActorRecord is the suspicion state of one watched actor.
type ActorRecord struct {
	ActorID              string        `json:"actor_id"`
	SuspicionLevel       float64       `json:"suspicion_level"`
	Observations         []Observation `json:"observations"`
	WillReport           bool          `json:"will_report"`
	FirstObservationTurn int           `json:"first_observation_turn"`
}

// HotLocation is a location whose heat cleared the query threshold.
type HotLocation struct {
	Location            string  `json:"location"`
	HeatLevel           float64 `json:"heat_level"`
	IncidentCount       int     `json:"incident_count"`
	InvestigationActive bool    `json:"investigation_active"`
	Priority            string  `json:"priority"`
}

// Tracker holds per-location heat and per-actor suspicion for a session.
type Tracker struct {
	locations map[string]*LocationRecord
	actors    map[string]*ActorRecord
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{
		locations: make(map[string]*LocationRecord),
		actors:    make(map[string]*ActorRecord),
	}
}

// MarkLocation records an incident of the given severity at a location.
// Heat saturates at 1.0. An investigation opens the first time heat
// reaches 0.6 and stays open until decay brings it back under 0.3.
func (t *Tracker) MarkLocation(location string, sev consequence.Severity, turn int) *LocationRecord {
	rec, ok := t.locations[location]
	if !ok {
		rec = &LocationRecord{Location: location}
		t.locations[location] = rec
	}
	rec.HeatLevel += severityHeat[sev]
	if rec.HeatLevel > 1.0 {
		rec.HeatLevel = 1.0
	}
	rec.IncidentCount++
	rec.LastIncidentTurn = turn
	if rec.HeatLevel >= investigationThreshold-1e-9 {
		rec.InvestigationActive = true
	}
	return rec
}

// MarkActor records a sighting of an actor. Suspicion climbs a fixed step
// per sighting; once it passes 0.6 the actor is committed to reporting
// and the flag never clears.
func (t *Tracker) MarkActor(actorID string, obs Observation) *ActorRecord {
	rec, ok := t.actors[actorID]
	if !ok {
		rec = &ActorRecord{ActorID: actorID, FirstObservationTurn: obs.Turn}
		t.actors[actorID] = rec
	}
	rec.Observations = append(rec.Observations, obs)
	rec.SuspicionLevel += suspicionPerSighting
	if rec.SuspicionLevel > 1.0 {
		rec.SuspicionLevel = 1.0
	}
	// Epsilon guards against 0.2*3 accumulating to just over the
	// threshold; reporting requires genuinely exceeding it.
	if rec.SuspicionLevel > reportThreshold+1e-9 {
		rec.WillReport = true
	}
	return rec
}

// Decay cools every location by 0.05 per quiet turn since its last
// incident. Heat never goes below zero, and investigations close when
// heat falls under 0.3. Actor suspicion does not decay.
func (t *Tracker) Decay(currentTurn int) {
	for _, rec := range t.locations {
		quiet := currentTurn - rec.LastIncidentTurn
		if quiet <= 0 {
			continue
		}
		rec.HeatLevel -= decayPerQuietTurn * float64(quiet)
		if rec.HeatLevel < 0 {
			rec.HeatLevel = 0
		}
		if rec.InvestigationActive && rec.HeatLevel < investigationClear {
			rec.InvestigationActive = false
		}
	}
}

// RaiseSurveillance sets a location's surveillance level, keeping the
// higher of the current and new values.
func (t *Tracker) RaiseSurveillance(location string, level float64) {
	rec, ok := t.locations[location]
	if !ok {
		rec = &LocationRecord{Location: location}
		t.locations[location] = rec
	}
	if level > rec.SurveillanceLevel {
		rec.SurveillanceLevel = level
	}
}

// HotLocations returns locations at or above the heat threshold, hottest
// first. Priority bands: critical at 0.8+, high at 0.5+, elevated below.
func (t *Tracker) HotLocations(threshold float64) []HotLocation {
	var out []HotLocation
	for _, rec := range t.locations {
		if rec.HeatLevel < threshold {
			continue
		}
		priority := "elevated"
		switch {
		case rec.HeatLevel >= 0.8:
			priority = "critical"
		case rec.HeatLevel >= 0.5:
			priority = "high"
		}
		out = append(out, HotLocation{
			Location:            rec.Location,
			HeatLevel:           rec.HeatLevel,
			IncidentCount:       rec.IncidentCount,
			InvestigationActive: rec.InvestigationActive,
			Priority:            priority,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].HeatLevel != out[j].HeatLevel {
			return out[i].HeatLevel > out[j].HeatLevel
		}
		return out[i].Location < out[j].Location
	})
	return out
}

// ReportingActors returns actors whose suspicion cleared the threshold,
// most suspicious first.
func (t *Tracker) ReportingActors(threshold float64) []*ActorRecord {
	var out []*ActorRecord
	for _, rec := range t.actors {
		if rec.SuspicionLevel >= threshold {
			out = append(out, rec)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].SuspicionLevel != out[j].SuspicionLevel {
			return out[i].SuspicionLevel > out[j].SuspicionLevel
		}
		return out[i].ActorID < out[j].ActorID
	})
	return out
}

// Location returns the record for a location, or nil when it has never
// drawn heat.
func (t *Tracker) Location(name string) *LocationRecord {
	return t.locations[name]
}

// Actor returns the record for an actor, or nil when unobserved.
func (t *Tracker) Actor(id string) *ActorRecord {
	return t.actors[id]
}

// Locations returns all location records, for persistence.
func (t *Tracker) Locations() []*LocationRecord {
	out := make([]*LocationRecord, 0, len(t.locations))
	for _, rec := range t.locations {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Location < out[j].Location })
	return out
}

// Actors returns all actor records, for persistence.
func (t *Tracker) Actors() []*ActorRecord {
	out := make([]*ActorRecord, 0, len(t.actors))
	for _, rec := range t.actors {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ActorID < out[j].ActorID })
	return out
}

// Restore replaces tracker state, for loading a saved session.
func (t *Tracker) Restore(locs []*LocationRecord, actors []*ActorRecord) {
	t.locations = make(map[string]*LocationRecord, len(locs))
	for _, rec := range locs {
		t.locations[rec.Location] = rec
	}
	t.actors = make(map[string]*ActorRecord, len(actors))
	for _, rec := range actors {
		t.actors[rec.ActorID] = rec
	}
}
