// Package story turns the turn's raw signals into a single piece of
// narrative prose. It picks one story category per turn, weighted by how
// much is actually happening, and never tells the same kind of story two
// turns in a row when it has a choice.
package story

// FactionUpdate is one in-progress antagonist operation.
type FactionUpdate struct {
	Location string
	Activity string
	Progress int // percent complete
}

// NewsItem is one political or government headline.
type NewsItem struct {
	Headline string
	Summary  string
}

// RogueReport is intelligence on the rogue senior operative.
type RogueReport struct {
	Description string
	Location    string
}

// Feeds carries everything outside the investigation loop that can seed a
// story this turn. Empty slices simply make their bucket ineligible.
type Feeds struct {
	Faction       []FactionUpdate
	WorldEvents   []string
	MajorChanges  []string
	PoliticalNews []NewsItem
	RogueAgent    []RogueReport
}

// Person is a named character the prose can reference.
type Person struct {
	Name         string
	Occupation   string
	Age          int
	WorkLocation string
}

// Directory resolves pattern subjects into real people so the prose uses
// actual names instead of placeholders.
type Directory interface {
	// FindPerson looks up a character by name or ID.
	FindPerson(name string) (Person, bool)
	// CiviliansNear returns up to n civilians tied to a location,
	// skipping excluded names.
	CiviliansNear(location string, n int, exclude []string) []Person
}

// unknownPerson is the placeholder when the directory has no real match.
var unknownPerson = Person{Name: "Unknown Subject", Occupation: "Civilian", Age: 35}
