// Package consequence schedules and advances delayed fallout from recorded
// events. Every consequence triggers at least one turn after the action that
// caused it, so players always get a chance to react.
package consequence

// Kind identifies the type of a scheduled consequence.
type Kind string

const (
	// KindGovernmentInvestigation sends federal agents after an incident.
	KindGovernmentInvestigation Kind = "government_investigation"
	// KindEvidenceDiscovery surfaces evidence left at a scene.
	KindEvidenceDiscovery Kind = "evidence_discovery"
	// KindWitnessReport has a witness take their story to the authorities.
	KindWitnessReport Kind = "witness_report"
	// KindMediaAttention draws press coverage to an incident.
	KindMediaAttention Kind = "media_attention"
	// KindLocationSurveillance puts a site under sustained watch.
	KindLocationSurveillance Kind = "location_surveillance"
	// KindFactionResponse has the antagonist faction react to a setback.
	KindFactionResponse Kind = "faction_response"
	// KindMajorIncidentResponse mobilizes emergency services after violence.
	KindMajorIncidentResponse Kind = "major_incident_response"
	// KindPatternInvestigation opens a case on a detected activity pattern.
	KindPatternInvestigation Kind = "pattern_investigation"
	// KindGovernmentTaskForce escalates a storyline into a dedicated task force.
	KindGovernmentTaskForce Kind = "government_task_force"
	// KindFamilyIntervention has a host family confront their relative.
	KindFamilyIntervention Kind = "family_intervention"
	// KindBreakthrough has investigators piece accumulated evidence together.
	KindBreakthrough Kind = "breakthrough"
)

// Severity grades a consequence and implies its resolution window.
type Severity int

const (
	Minor Severity = iota
	Moderate
	Major
	Critical
)

var severityNames = [...]string{"minor", "moderate", "major", "critical"}

func (s Severity) String() string {
	if s < Minor || s > Critical {
		return "unknown"
	}
	return severityNames[s]
}

// ParseSeverity converts a stored severity name back to its value.
func ParseSeverity(name string) Severity {
	for i, n := range severityNames {
		if n == name {
			return Severity(i)
		}
	}
	return Minor
}

// ResolutionWindow returns the inclusive range of turns a consequence of
// this severity stays active before auto-resolving. bounded is false for
// critical consequences, which stay active until resolved explicitly.
func (s Severity) ResolutionWindow() (lo, hi int, bounded bool) {
	switch s {
	case Minor:
		return 1, 2, true
	case Moderate:
		return 3, 5, true
	case Major:
		return 5, 10, true
	default:
		return 0, 0, false
	}
}

// Status is the lifecycle state of a consequence. Transitions only move
// forward: pending, then active, then resolved.
type Status int

const (
	Pending Status = iota
	Active
	Resolved
)

var statusNames = [...]string{"pending", "active", "resolved"}

func (s Status) String() string {
	if s < Pending || s > Resolved {
		return "unknown"
	}
	return statusNames[s]
}

// ParseStatus converts a stored status name back to its value.
func ParseStatus(name string) Status {
	for i, n := range statusNames {
		if n == name {
			return Status(i)
		}
	}
	return Pending
}

// Consequence is a scheduled future happening derived from past actions.
type Consequence struct {
	ID          string   `json:"id"`
	Kind        Kind     `json:"kind"`
	Severity    Severity `json:"severity"`
	Status      Status   `json:"status"`
	CreatedTurn int      `json:"created_turn"`
	TriggerTurn int      `json:"trigger_turn"`
	// ResolutionTurn is set when the consequence resolves and retained
	// until the record is purged.
	ResolutionTurn int `json:"resolution_turn,omitempty"`
	// ResolveBy is the turn an activated bounded consequence auto-resolves.
	// Zero for pending and critical consequences.
	ResolveBy int `json:"resolve_by,omitempty"`

	Location    string  `json:"location,omitempty"`
	ActorID     string  `json:"actor_id,omitempty"`
	Intensity   float64 `json:"intensity,omitempty"`
	Description string  `json:"description,omitempty"`
	Urgent      bool    `json:"urgent,omitempty"`

	// SurveillanceDuration is set on location_surveillance consequences.
	SurveillanceDuration int `json:"surveillance_duration,omitempty"`
	// DetailLevel is set on witness_report consequences.
	DetailLevel float64 `json:"detail_level,omitempty"`
}
