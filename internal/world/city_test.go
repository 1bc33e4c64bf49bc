package world

import (
	"strings"
	"testing"
)

func TestGenerateDeterministic(t *testing.T) {
	a := Generate(SmallTestConfig())
	b := Generate(SmallTestConfig())

	if len(a.Districts) != len(b.Districts) {
		t.Fatalf("district counts differ: %d vs %d", len(a.Districts), len(b.Districts))
	}
	for i := range a.Districts {
		if a.Districts[i].Name != b.Districts[i].Name {
			t.Errorf("district %d name differs: %s vs %s", i, a.Districts[i].Name, b.Districts[i].Name)
		}
		if a.Districts[i].Danger != b.Districts[i].Danger {
			t.Errorf("district %d danger differs", i)
		}
	}
	if len(a.NPCs) != len(b.NPCs) {
		t.Fatalf("npc counts differ: %d vs %d", len(a.NPCs), len(b.NPCs))
	}
	for i := range a.NPCs {
		if a.NPCs[i].Name != b.NPCs[i].Name {
			t.Errorf("npc %d name differs: %s vs %s", i, a.NPCs[i].Name, b.NPCs[i].Name)
		}
	}
}

func TestGeneratePopulation(t *testing.T) {
	cfg := DefaultGenConfig()
	cfg.Seed = 7
	c := Generate(cfg)

	if len(c.Districts) != cfg.Districts {
		t.Errorf("districts = %d, want %d", len(c.Districts), cfg.Districts)
	}
	if got := len(c.Civilians()); got != cfg.Districts*cfg.NPCsPerDistrict {
		t.Errorf("civilians = %d, want %d", got, cfg.Districts*cfg.NPCsPerDistrict)
	}
	if got := len(c.Agents()); got != cfg.Agents {
		t.Errorf("agents = %d, want %d", got, cfg.Agents)
	}
	for _, a := range c.Agents() {
		if !strings.HasPrefix(a.ID, "FBI-") && !strings.HasPrefix(a.ID, "CIA-") {
			t.Errorf("agent ID %q lacks agency prefix", a.ID)
		}
	}
	for _, d := range c.Districts {
		if d.Danger < 0 || d.Danger > 1 || d.Surveillance < 0 || d.Surveillance > 1 {
			t.Errorf("district %s fields out of range: danger=%f surveillance=%f",
				d.Name, d.Danger, d.Surveillance)
		}
		if len(d.Venues) != cfg.VenuesPerDistrict {
			t.Errorf("district %s venues = %d, want %d", d.Name, len(d.Venues), cfg.VenuesPerDistrict)
		}
	}
}

func TestDirectoryLookups(t *testing.T) {
	cfg := DefaultGenConfig()
	cfg.Seed = 11
	c := Generate(cfg)

	civ := c.Civilians()[0]
	p, ok := c.FindPerson(civ.Name)
	if !ok {
		t.Fatalf("FindPerson(%q) missed a generated civilian", civ.Name)
	}
	if p.Occupation != civ.Occupation || p.Age != civ.Age {
		t.Errorf("person = %+v, want fields from %+v", p, civ)
	}

	agent := c.Agents()[0]
	if _, ok := c.FindPerson(agent.ID); !ok {
		t.Errorf("FindPerson(%q) missed an agent by ID", agent.ID)
	}

	if _, ok := c.FindPerson("Nobody Atall"); ok {
		t.Error("FindPerson invented a person")
	}
}

func TestCiviliansNear(t *testing.T) {
	cfg := DefaultGenConfig()
	cfg.Seed = 13
	c := Generate(cfg)

	d := c.Districts[0]
	got := c.CiviliansNear(d.Venues[0], 3, nil)
	if len(got) != 3 {
		t.Fatalf("CiviliansNear = %d people, want 3", len(got))
	}
	// District residents come first.
	if first, ok := c.FindPerson(got[0].Name); ok {
		_ = first
	} else {
		t.Errorf("returned person %q not in directory", got[0].Name)
	}

	excluded := got[0].Name
	again := c.CiviliansNear(d.Venues[0], 3, []string{excluded})
	for _, p := range again {
		if p.Name == excluded {
			t.Errorf("excluded name %q returned", excluded)
		}
	}

	// Unknown locations still produce people.
	if got := c.CiviliansNear("Nowhere Street", 2, nil); len(got) != 2 {
		t.Errorf("unknown location returned %d people, want 2", len(got))
	}
}

func TestLocations(t *testing.T) {
	cfg := SmallTestConfig()
	c := Generate(cfg)
	want := cfg.Districts + cfg.Districts*cfg.VenuesPerDistrict
	if got := len(c.Locations()); got != want {
		t.Errorf("locations = %d, want %d", got, want)
	}
	if d := c.DistrictOf(c.Districts[1].Venues[0]); d == nil || d.Name != c.Districts[1].Name {
		t.Error("venue did not map back to its district")
	}
	if c.DistrictOf("Nowhere Street") != nil {
		t.Error("unknown location mapped to a district")
	}
}
