package story

import (
	"log/slog"
	"strings"

	"github.com/talgya/continuum/internal/entropy"
	"github.com/talgya/continuum/internal/pattern"
)

// Category is the kind of story told this turn.
type Category string

const (
	CategoryBreakthrough       Category = "investigation_breakthrough"
	CategorySurveillance       Category = "surveillance"
	CategoryPatternRecognition Category = "pattern_recognition"
	CategoryCharacterFocus     Category = "character_focus"
	CategoryTension            Category = "tension"
	CategoryFaction            Category = "faction_activity"
	CategoryWorldEvent         Category = "world_event"
	CategoryMajorChange        Category = "major_change"
	CategoryPoliticalNews      Category = "political_news"
	CategoryRogueAgent         Category = "rogue_agent"
	CategoryQuiet              Category = "quiet"
)

// investigationFanout is the set of story shapes an investigation bucket
// can expand into.
var investigationFanout = []Category{
	CategoryBreakthrough,
	CategorySurveillance,
	CategoryPatternRecognition,
	CategoryCharacterFocus,
	CategoryTension,
}

// Synthesizer renders one prose passage per turn. The selection memory
// (last category, last variant per category) exists only to avoid
// repetition and is not part of saved game state.
type Synthesizer struct {
	rng *entropy.Source
	dir Directory

	lastCategory Category
	lastVariant  map[Category]int
}

// NewSynthesizer creates a synthesizer drawing names from dir.
func NewSynthesizer(rng *entropy.Source, dir Directory) *Synthesizer {
	return &Synthesizer{
		rng:         rng,
		dir:         dir,
		lastVariant: make(map[Category]int),
	}
}

type candidate struct {
	category Category
	weight   float64
}

// Synthesize produces the turn's story. A turn with nothing going on gets
// a quiet interlude; any rendering failure also degrades to the quiet
// story rather than taking the turn down.
func (s *Synthesizer) Synthesize(turn int, patterns []pattern.Pattern, tension float64, feeds Feeds) (out string) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("story rendering failed, falling back to quiet turn", "turn", turn, "panic", r)
			out = s.quietTurn(turn)
		}
	}()

	candidates := s.gather(patterns, tension, feeds)
	if len(candidates) == 0 {
		return s.quietTurn(turn)
	}
	category := s.pick(candidates)
	story := s.render(category, patterns, tension, feeds)
	s.lastCategory = category
	return story
}

// LastCategory reports the category of the most recent story.
func (s *Synthesizer) LastCategory() Category {
	return s.lastCategory
}

// gather builds the weighted candidate list. Each eligible bucket expands
// into its story categories, all carrying the bucket's weight.
func (s *Synthesizer) gather(patterns []pattern.Pattern, tension float64, feeds Feeds) []candidate {
	var out []candidate

	if len(patterns) > 0 {
		w := 0.5 + tension*0.5 + 0.2*float64(min(len(patterns), 5))
		for _, c := range investigationFanout {
			out = append(out, candidate{c, w})
		}
	}
	if len(feeds.Faction) > 0 {
		out = append(out, candidate{CategoryFaction, 0.4 + 0.2*float64(min(len(feeds.Faction), 3))})
	}
	if len(feeds.WorldEvents) > 0 {
		out = append(out, candidate{CategoryWorldEvent, 0.5 + 0.15*float64(min(len(feeds.WorldEvents), 4))})
	}
	if len(feeds.MajorChanges) > 0 {
		out = append(out, candidate{CategoryMajorChange, 0.9})
	}
	if len(feeds.PoliticalNews) > 0 {
		out = append(out, candidate{CategoryPoliticalNews, 0.85})
	}
	if len(feeds.RogueAgent) > 0 {
		out = append(out, candidate{CategoryRogueAgent, 0.8})
	}
	return out
}

// pick weighted-random-selects a category, excluding last turn's category
// whenever any alternative exists.
func (s *Synthesizer) pick(candidates []candidate) Category {
	if s.lastCategory != "" {
		var others []candidate
		for _, c := range candidates {
			if c.category != s.lastCategory {
				others = append(others, c)
			}
		}
		if len(others) > 0 {
			candidates = others
		}
	}

	total := 0.0
	for _, c := range candidates {
		total += c.weight
	}
	r := s.rng.Uniform(0, total)
	for _, c := range candidates {
		r -= c.weight
		if r <= 0 {
			return c.category
		}
	}
	return candidates[len(candidates)-1].category
}

func (s *Synthesizer) render(category Category, patterns []pattern.Pattern, tension float64, feeds Feeds) string {
	agents := agentsFrom(patterns)
	civilians := s.civiliansFrom(patterns)
	locations := locationsFrom(patterns)

	switch category {
	case CategoryBreakthrough:
		return s.breakthroughScene(agents, locations, civilians, patterns)
	case CategorySurveillance:
		return s.surveillanceScene(agents, locations, civilians)
	case CategoryPatternRecognition:
		return s.patternScene(agents, locations, patterns)
	case CategoryCharacterFocus:
		return s.characterScene(civilians, locations)
	case CategoryFaction:
		return s.factionScene(feeds.Faction)
	case CategoryWorldEvent:
		return s.worldEventScene(feeds.WorldEvents)
	case CategoryMajorChange:
		return s.majorChangeScene(feeds.MajorChanges)
	case CategoryPoliticalNews:
		return s.politicalNewsScene(feeds.PoliticalNews)
	case CategoryRogueAgent:
		return s.rogueAgentScene(feeds.RogueAgent)
	}
	return s.tensionScene(locations, tension)
}

// chooseVariant picks a template variant for a category, avoiding the one
// used the previous time this category came up.
func (s *Synthesizer) chooseVariant(category Category, variants []string) string {
	if len(variants) == 0 {
		return ""
	}
	avoid, seen := s.lastVariant[category]
	var indices []int
	for i := range variants {
		if !seen || i != avoid {
			indices = append(indices, i)
		}
	}
	if len(indices) == 0 {
		indices = []int{avoid}
	}
	chosen := indices[s.rng.Intn(len(indices))]
	s.lastVariant[category] = chosen
	return variants[chosen]
}

// agentsFrom pulls government investigators out of actor patterns. Agent
// IDs carry an agency prefix by convention.
func agentsFrom(patterns []pattern.Pattern) []Person {
	var out []Person
	for _, p := range patterns {
		if p.Type != pattern.ActorPattern {
			continue
		}
		if strings.HasPrefix(p.Subject, "FBI-") || strings.HasPrefix(p.Subject, "CIA-") {
			out = append(out, Person{Name: p.Subject, Occupation: "investigator"})
		}
	}
	return out
}

// civiliansFrom resolves non-agent actor patterns into real people via
// the directory.
func (s *Synthesizer) civiliansFrom(patterns []pattern.Pattern) []Person {
	var out []Person
	for _, p := range patterns {
		if p.Type != pattern.ActorPattern {
			continue
		}
		if strings.HasPrefix(p.Subject, "FBI-") || strings.HasPrefix(p.Subject, "CIA-") {
			continue
		}
		if s.dir != nil {
			if person, ok := s.dir.FindPerson(p.Subject); ok {
				out = append(out, person)
				continue
			}
		}
		out = append(out, Person{Name: p.Subject, Occupation: "Civilian", Age: 35})
	}
	return out
}

func locationsFrom(patterns []pattern.Pattern) []string {
	var out []string
	for _, p := range patterns {
		if p.Type == pattern.LocationPattern {
			out = append(out, p.Subject)
		}
	}
	return out
}

// leadAgent returns the investigator fronting the scene.
func (s *Synthesizer) leadAgent(agents []Person) Person {
	if len(agents) == 0 {
		return Person{Name: "Agent", Occupation: "investigator"}
	}
	return agents[s.rng.Intn(len(agents))]
}

// primaryLocation returns the scene's location, with a generic fallback.
func primaryLocation(locations []string) string {
	if len(locations) == 0 {
		return "the city"
	}
	return locations[0]
}

// suspects fills out a three-person suspect list, topping up from the
// directory when patterns named fewer than three civilians.
func (s *Synthesizer) suspects(civilians []Person, location string) [3]Person {
	var out [3]Person
	n := 0
	for _, p := range civilians {
		if n == 3 {
			break
		}
		out[n] = p
		n++
	}
	if n < 3 && s.dir != nil {
		exclude := make([]string, 0, n)
		for i := 0; i < n; i++ {
			exclude = append(exclude, out[i].Name)
		}
		for _, p := range s.dir.CiviliansNear(location, 3-n, exclude) {
			out[n] = p
			n++
		}
	}
	for ; n < 3; n++ {
		out[n] = unknownPerson
	}
	return out
}
