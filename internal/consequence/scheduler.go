package consequence

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/talgya/continuum/internal/entropy"
	"github.com/talgya/continuum/internal/event"
)

// generator produces zero or more consequences for one event category.
type generator func(s *Scheduler, e *event.Event, turn int) []*Consequence

// Scheduler owns the pending and active consequence queues. Generation is
// rule-driven per event category; advancement is a pure function of the
// current turn plus the scheduler's random source.
type Scheduler struct {
	rng          *entropy.Source
	consequences []*Consequence
	generators   map[event.Category]generator
}

// NewScheduler creates a scheduler drawing randomness from rng.
func NewScheduler(rng *entropy.Source) *Scheduler {
	return &Scheduler{
		rng: rng,
		generators: map[event.Category]generator{
			event.MissionSuccess:      genMissionSuccess,
			event.MissionFailure:      genMissionFailure,
			event.WitnessInteraction:  genWitnessInteraction,
			event.CombatEncounter:     genCombatEncounter,
			event.LocationCompromised: genLocationCompromised,
		},
	}
}

// Generate derives the consequences an event causes, without scheduling
// them. Categories with no generation rule yield nothing. Every returned
// consequence triggers strictly after currentTurn.
func (s *Scheduler) Generate(e *event.Event, currentTurn int) []*Consequence {
	gen, ok := s.generators[e.Category]
	if !ok {
		return nil
	}
	return gen(s, e, currentTurn)
}

func (s *Scheduler) newConsequence(kind Kind, sev Severity, e *event.Event, turn, offset int) *Consequence {
	return &Consequence{
		ID:          uuid.NewString(),
		Kind:        kind,
		Severity:    sev,
		Status:      Pending,
		CreatedTurn: turn,
		TriggerTurn: turn + offset,
		Location:    e.Location,
		ActorID:     e.ActorID,
	}
}

func genMissionSuccess(s *Scheduler, e *event.Event, turn int) []*Consequence {
	var out []*Consequence
	if s.rng.Chance(0.3) {
		c := s.newConsequence(KindGovernmentInvestigation, Moderate, e, turn, s.rng.Between(1, 3))
		c.Description = fmt.Sprintf("Authorities look into unusual activity at %s", e.Location)
		out = append(out, c)
	}
	imp := e.Mission().Importance
	if imp == event.ImportanceMajor || imp == event.ImportanceCritical {
		if s.rng.Chance(0.4) {
			c := s.newConsequence(KindFactionResponse, Major, e, turn, s.rng.Between(2, 5))
			c.Description = "The Faction moves to counter a significant setback"
			out = append(out, c)
		}
	}
	return out
}

func genMissionFailure(s *Scheduler, e *event.Event, turn int) []*Consequence {
	c := s.newConsequence(KindGovernmentInvestigation, Major, e, turn, 1)
	c.Urgent = true
	c.Description = fmt.Sprintf("Federal investigators respond to the incident at %s", e.Location)
	out := []*Consequence{c}
	if e.Mission().EvidenceLeft {
		ev := s.newConsequence(KindEvidenceDiscovery, Critical, e, turn, s.rng.Between(1, 2))
		ev.Description = fmt.Sprintf("Evidence recovered from the scene at %s", e.Location)
		out = append(out, ev)
	}
	return out
}

func genWitnessInteraction(s *Scheduler, e *event.Event, turn int) []*Consequence {
	if !s.rng.Chance(0.5) {
		return nil
	}
	c := s.newConsequence(KindWitnessReport, Moderate, e, turn, s.rng.Between(1, 3))
	c.DetailLevel = s.rng.Uniform(0.3, 0.8)
	c.Description = fmt.Sprintf("A witness comes forward about what they saw at %s", e.Location)
	return []*Consequence{c}
}

func genCombatEncounter(s *Scheduler, e *event.Event, turn int) []*Consequence {
	if e.Casualties() == 0 {
		return nil
	}
	resp := s.newConsequence(KindMajorIncidentResponse, Critical, e, turn, 1)
	resp.Description = fmt.Sprintf("Emergency services and police lock down %s", e.Location)
	media := s.newConsequence(KindMediaAttention, Major, e, turn, 1)
	media.Description = fmt.Sprintf("News crews converge on %s", e.Location)
	return []*Consequence{resp, media}
}

func genLocationCompromised(s *Scheduler, e *event.Event, turn int) []*Consequence {
	c := s.newConsequence(KindLocationSurveillance, Major, e, turn, s.rng.Between(1, 4))
	c.SurveillanceDuration = s.rng.Between(5, 15)
	c.Description = fmt.Sprintf("%s placed under sustained surveillance", e.Location)
	return []*Consequence{c}
}

// Schedule enqueues consequences produced by Generate, or built elsewhere
// (pattern and thread escalations). Consequences with a trigger turn in the
// past are rejected rather than fired retroactively.
func (s *Scheduler) Schedule(cs ...*Consequence) error {
	for _, c := range cs {
		if c.TriggerTurn <= c.CreatedTurn {
			return fmt.Errorf("consequence %s triggers on turn %d, not after creation turn %d",
				c.Kind, c.TriggerTurn, c.CreatedTurn)
		}
	}
	s.consequences = append(s.consequences, cs...)
	return nil
}

// Advance moves the queues forward to turn and returns the consequences
// that newly activated this turn. Minor consequences activate and resolve
// in the same call; they are still returned so callers can narrate them.
// Resolved records older than ten turns are purged.
func (s *Scheduler) Advance(turn int) []*Consequence {
	var fired []*Consequence
	for _, c := range s.consequences {
		switch c.Status {
		case Pending:
			if c.TriggerTurn > turn {
				continue
			}
			c.Status = Active
			fired = append(fired, c)
			lo, hi, bounded := c.Severity.ResolutionWindow()
			if c.Severity == Minor {
				c.Status = Resolved
				c.ResolutionTurn = turn
				continue
			}
			if bounded {
				c.ResolveBy = turn + s.rng.Between(lo, hi)
			}
		case Active:
			if c.ResolveBy != 0 && turn >= c.ResolveBy {
				c.Status = Resolved
				c.ResolutionTurn = turn
			}
		}
	}

	kept := s.consequences[:0]
	for _, c := range s.consequences {
		if c.Status == Resolved && turn-c.ResolutionTurn > 10 {
			continue
		}
		kept = append(kept, c)
	}
	s.consequences = kept
	return fired
}

// Resolve closes an active or pending consequence by ID. It is the only
// way a critical consequence ends.
func (s *Scheduler) Resolve(id string, turn int) bool {
	for _, c := range s.consequences {
		if c.ID == id && c.Status != Resolved {
			c.Status = Resolved
			c.ResolutionTurn = turn
			return true
		}
	}
	return false
}

// Active returns currently active consequences, most severe first.
func (s *Scheduler) Active() []*Consequence {
	return s.filter(Active)
}

// Pending returns consequences that have not yet triggered, soonest first.
func (s *Scheduler) Pending() []*Consequence {
	out := s.filter(Pending)
	sort.SliceStable(out, func(i, j int) bool { return out[i].TriggerTurn < out[j].TriggerTurn })
	return out
}

func (s *Scheduler) filter(st Status) []*Consequence {
	var out []*Consequence
	for _, c := range s.consequences {
		if c.Status == st {
			out = append(out, c)
		}
	}
	if st == Active {
		sort.SliceStable(out, func(i, j int) bool { return out[i].Severity > out[j].Severity })
	}
	return out
}

// All returns every retained consequence record, for persistence.
func (s *Scheduler) All() []*Consequence {
	return s.consequences
}

// Restore replaces the scheduler's queue, for loading a saved session.
func (s *Scheduler) Restore(cs []*Consequence) {
	s.consequences = cs
}
