// Package event defines the append-only log of things that happened in the
// world. Events are immutable once recorded; insertion order is chronological
// order.
package event

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Category identifies the kind of event.
type Category string

// Mission and field operation events.
const (
	// MissionSuccess records a completed mission that met its objective.
	MissionSuccess Category = "mission_success"
	// MissionFailure records a failed mission.
	MissionFailure Category = "mission_failure"
	// MissionCriticalFailure records a mission failure with catastrophic fallout.
	MissionCriticalFailure Category = "mission_critical_failure"
	// CombatEncounter records a violent engagement during an operation.
	CombatEncounter Category = "combat_encounter"
	// CombatCasualties records deaths resulting from an engagement.
	CombatCasualties Category = "combat_casualties"
	// LocationCompromised records a safe house or operating site being blown.
	LocationCompromised Category = "location_compromised"
	// ProtocolViolation records an operative breaking cover protocol.
	ProtocolViolation Category = "protocol_violation"
	// HackingOperation records an intrusion attempt against a target system.
	HackingOperation Category = "hacking_operation"
)

// Witness and exposure events.
const (
	// WitnessInteraction records a civilian observing operational activity.
	WitnessInteraction Category = "witness_interaction"
	// WitnessStatement records a witness talking to the authorities.
	WitnessStatement Category = "witness_statement"
	// HostBodySuspicion records a host family growing suspicious of an operative.
	HostBodySuspicion Category = "host_body_suspicion"
	// TravelerExposed records an operative's cover being broken outright.
	TravelerExposed Category = "traveler_exposed"
)

// Government and investigation events.
const (
	// GovernmentInvestigationStarted records federal agents opening a case.
	GovernmentInvestigationStarted Category = "government_investigation_started"
	// GovernmentBreakthrough records investigators connecting the dots.
	GovernmentBreakthrough Category = "government_breakthrough"
	// GovernmentResponse records a broad government countermeasure.
	GovernmentResponse Category = "government_response"
	// EvidenceDiscovered records physical or digital evidence being found.
	EvidenceDiscovered Category = "evidence_discovered"
)

// World events.
const (
	// FactionOperation records antagonist faction activity.
	FactionOperation Category = "faction_operation"
	// NPCKilled records the death of a named character.
	NPCKilled Category = "npc_killed"
	// NPCDiscovery records a named character learning something they should not.
	NPCDiscovery Category = "npc_discovery"
)

// IsValid reports whether the category is usable.
func (c Category) IsValid() bool {
	return strings.TrimSpace(string(c)) != ""
}

// Importance grades how much an outcome matters to downstream consumers.
type Importance string

const (
	ImportanceMinor    Importance = "minor"
	ImportanceModerate Importance = "moderate"
	ImportanceMajor    Importance = "major"
	ImportanceCritical Importance = "critical"
)

// Detail is the tagged per-category payload carried by an event. Each
// category uses the variant that fits it; truly ad hoc fields go in the
// event's Ext map instead.
type Detail interface {
	isDetail()
}

// MissionDetail accompanies mission outcome events.
type MissionDetail struct {
	MissionType  string     `json:"mission_type,omitempty"`
	Importance   Importance `json:"importance,omitempty"`
	EvidenceLeft bool       `json:"evidence_left,omitempty"`
	Casualties   int        `json:"casualties,omitempty"`
}

// CombatDetail accompanies combat events.
type CombatDetail struct {
	Casualties int      `json:"casualties"`
	Witnesses  []string `json:"witnesses,omitempty"`
}

// WitnessDetail accompanies witness events.
type WitnessDetail struct {
	Observed    Category `json:"observed,omitempty"` // What the witness saw.
	DetailLevel float64  `json:"detail_level,omitempty"`
}

// HackDetail accompanies hacking events.
type HackDetail struct {
	Target string `json:"target"`
	Traced bool   `json:"traced,omitempty"`
}

// SuspicionDetail accompanies host suspicion events.
type SuspicionDetail struct {
	Level float64 `json:"level"`
}

func (MissionDetail) isDetail()   {}
func (CombatDetail) isDetail()    {}
func (WitnessDetail) isDetail()   {}
func (HackDetail) isDetail()      {}
func (SuspicionDetail) isDetail() {}

// Event is an immutable record of something that happened.
type Event struct {
	Turn     int               `json:"turn"`
	Category Category          `json:"category"`
	ActorID  string            `json:"actor_id,omitempty"`
	Location string            `json:"location,omitempty"`
	Detail   Detail            `json:"-"`
	Ext      map[string]string `json:"ext,omitempty"`
	Recorded time.Time         `json:"recorded"`
}

// Mission returns the mission detail, or a zero value when the event
// carries none.
func (e *Event) Mission() MissionDetail {
	if d, ok := e.Detail.(MissionDetail); ok {
		return d
	}
	return MissionDetail{}
}

// Combat returns the combat detail, or a zero value.
func (e *Event) Combat() CombatDetail {
	if d, ok := e.Detail.(CombatDetail); ok {
		return d
	}
	return CombatDetail{}
}

// Casualties reports the casualty count regardless of which detail
// variant carries it.
func (e *Event) Casualties() int {
	switch d := e.Detail.(type) {
	case MissionDetail:
		return d.Casualties
	case CombatDetail:
		return d.Casualties
	}
	return 0
}

// MarshalDetail encodes an event's detail for storage. The category
// determines the concrete type on the way back in.
func MarshalDetail(d Detail) ([]byte, error) {
	if d == nil {
		return nil, nil
	}
	return json.Marshal(d)
}

// UnmarshalDetail decodes a stored detail payload using the event
// category to select the concrete variant.
func UnmarshalDetail(c Category, data []byte) (Detail, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var (
		d   Detail
		err error
	)
	switch c {
	case MissionSuccess, MissionFailure, MissionCriticalFailure:
		var v MissionDetail
		err = json.Unmarshal(data, &v)
		d = v
	case CombatEncounter, CombatCasualties:
		var v CombatDetail
		err = json.Unmarshal(data, &v)
		d = v
	case WitnessInteraction, WitnessStatement:
		var v WitnessDetail
		err = json.Unmarshal(data, &v)
		d = v
	case HackingOperation:
		var v HackDetail
		err = json.Unmarshal(data, &v)
		d = v
	case HostBodySuspicion:
		var v SuspicionDetail
		err = json.Unmarshal(data, &v)
		d = v
	default:
		// Categories without a dedicated variant store nothing.
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("unmarshal %s detail: %w", c, err)
	}
	return d, nil
}
