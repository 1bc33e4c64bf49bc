// Package world generates the city the session plays out in: districts
// with noise-derived character, named venues, a civilian population, and
// the federal agents hunting through it. Generation is deterministic for
// a given seed.
package world

import (
	"fmt"
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/talgya/continuum/internal/story"
)

// GenConfig holds city generation parameters.
type GenConfig struct {
	Seed              int64
	Districts         int
	VenuesPerDistrict int
	NPCsPerDistrict   int
	Agents            int
}

// DefaultGenConfig returns a city big enough for a full session.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		Districts:         6,
		VenuesPerDistrict: 3,
		NPCsPerDistrict:   8,
		Agents:            6,
	}
}

// SmallTestConfig returns a tiny city for rapid iteration.
func SmallTestConfig() GenConfig {
	return GenConfig{
		Seed:              42,
		Districts:         3,
		VenuesPerDistrict: 2,
		NPCsPerDistrict:   4,
		Agents:            2,
	}
}

// District is one region of the city with its own baseline character.
type District struct {
	Name string `json:"name"`
	// Danger is the baseline incident rate for the district.
	Danger float64 `json:"danger"`
	// Surveillance is the baseline camera and patrol coverage.
	Surveillance float64  `json:"surveillance"`
	Venues       []string `json:"venues"`
}

// NPC is a named inhabitant. Agents carry an agency and an agency-prefixed
// ID; civilians have neither.
type NPC struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Occupation   string `json:"occupation"`
	Age          int    `json:"age"`
	WorkLocation string `json:"work_location"`
	District     string `json:"district"`
	Agency       string `json:"agency,omitempty"`
}

// City is the generated setting for one session.
type City struct {
	Seed      int64       `json:"seed"`
	Districts []*District `json:"districts"`
	NPCs      []*NPC      `json:"npcs"`

	byName map[string]*NPC
}

// Generate creates a complete city. Two noise layers give districts a
// danger and surveillance character that varies smoothly across the city
// rather than uniformly at random.
func Generate(cfg GenConfig) *City {
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Int63()
	}
	rng := rand.New(rand.NewSource(seed))

	dangerNoise := opensimplex.NewNormalized(seed)
	watchNoise := opensimplex.NewNormalized(seed + 1)

	c := &City{Seed: seed, byName: make(map[string]*NPC)}

	names := append([]string(nil), districtNames...)
	rng.Shuffle(len(names), func(i, j int) { names[i], names[j] = names[j], names[i] })
	if cfg.Districts > len(names) {
		cfg.Districts = len(names)
	}

	for i := 0; i < cfg.Districts; i++ {
		x := float64(i) * 0.7
		d := &District{
			Name:         names[i],
			Danger:       octaveNoise(dangerNoise, x, 0.3, 3, 0.5, 0.5),
			Surveillance: octaveNoise(watchNoise, x, 0.7, 3, 0.5, 0.5),
		}
		venues := rng.Perm(len(venueNames))
		for v := 0; v < cfg.VenuesPerDistrict && v < len(venues); v++ {
			d.Venues = append(d.Venues, fmt.Sprintf(venueNames[venues[v]], d.Name))
		}
		c.Districts = append(c.Districts, d)

		for n := 0; n < cfg.NPCsPerDistrict; n++ {
			c.addNPC(spawnCivilian(rng, d))
		}
	}

	for i := 0; i < cfg.Agents; i++ {
		c.addNPC(spawnAgent(rng, c.Districts))
	}
	return c
}

func (c *City) addNPC(n *NPC) {
	// Duplicate names get a suffix so the directory lookup stays
	// unambiguous.
	for c.byName[n.Name] != nil {
		n.Name = n.Name + " Jr."
	}
	c.NPCs = append(c.NPCs, n)
	c.byName[n.Name] = n
	if n.ID != n.Name {
		c.byName[n.ID] = n
	}
}

func spawnCivilian(rng *rand.Rand, d *District) *NPC {
	name := firstNames[rng.Intn(len(firstNames))] + " " + lastNames[rng.Intn(len(lastNames))]
	work := d.Name
	if len(d.Venues) > 0 {
		work = d.Venues[rng.Intn(len(d.Venues))]
	}
	return &NPC{
		ID:           name,
		Name:         name,
		Occupation:   occupations[rng.Intn(len(occupations))],
		Age:          22 + rng.Intn(48),
		WorkLocation: work,
		District:     d.Name,
	}
}

func spawnAgent(rng *rand.Rand, districts []*District) *NPC {
	agency := "FBI"
	if rng.Float64() < 0.3 {
		agency = "CIA"
	}
	id := fmt.Sprintf("%s-%04d", agency, 1000+rng.Intn(9000))
	name := firstNames[rng.Intn(len(firstNames))] + " " + lastNames[rng.Intn(len(lastNames))]
	district := districts[rng.Intn(len(districts))]
	return &NPC{
		ID:           id,
		Name:         name,
		Occupation:   "Special Agent",
		Age:          30 + rng.Intn(25),
		WorkLocation: district.Name + " Field Office",
		District:     district.Name,
		Agency:       agency,
	}
}

// Locations returns every named place in the city, district names
// included.
func (c *City) Locations() []string {
	var out []string
	for _, d := range c.Districts {
		out = append(out, d.Name)
		out = append(out, d.Venues...)
	}
	return out
}

// Agents returns the government investigators.
func (c *City) Agents() []*NPC {
	var out []*NPC
	for _, n := range c.NPCs {
		if n.Agency != "" {
			out = append(out, n)
		}
	}
	return out
}

// Civilians returns the non-agent population.
func (c *City) Civilians() []*NPC {
	var out []*NPC
	for _, n := range c.NPCs {
		if n.Agency == "" {
			out = append(out, n)
		}
	}
	return out
}

// District returns the named district, or nil.
func (c *City) District(name string) *District {
	for _, d := range c.Districts {
		if d.Name == name {
			return d
		}
	}
	return nil
}

// FindPerson implements story.Directory.
func (c *City) FindPerson(name string) (story.Person, bool) {
	n, ok := c.byName[name]
	if !ok {
		return story.Person{}, false
	}
	return story.Person{
		Name:         n.Name,
		Occupation:   n.Occupation,
		Age:          n.Age,
		WorkLocation: n.WorkLocation,
	}, true
}

// CiviliansNear implements story.Directory: civilians tied to the
// location's district first, then anyone else to fill out the count.
func (c *City) CiviliansNear(location string, n int, exclude []string) []story.Person {
	skip := make(map[string]bool, len(exclude))
	for _, name := range exclude {
		skip[name] = true
	}

	district := ""
	if d := c.DistrictOf(location); d != nil {
		district = d.Name
	}
	var near, rest []*NPC
	for _, npc := range c.Civilians() {
		if skip[npc.Name] {
			continue
		}
		if district != "" && npc.District == district {
			near = append(near, npc)
		} else {
			rest = append(rest, npc)
		}
	}

	var out []story.Person
	for _, npc := range append(near, rest...) {
		if len(out) == n {
			break
		}
		out = append(out, story.Person{
			Name:         npc.Name,
			Occupation:   npc.Occupation,
			Age:          npc.Age,
			WorkLocation: npc.WorkLocation,
		})
	}
	return out
}

// DistrictOf maps a venue or district name back to its district, or nil
// for locations the city does not know.
func (c *City) DistrictOf(location string) *District {
	for _, d := range c.Districts {
		if d.Name == location {
			return d
		}
		for _, v := range d.Venues {
			if v == location {
				return d
			}
		}
	}
	return nil
}

// octaveNoise layers multiple noise frequencies into one sample.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0
	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}
	return total / maxVal
}
