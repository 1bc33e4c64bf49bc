package story

import (
	"fmt"
	"strings"

	"github.com/talgya/continuum/internal/pattern"
)

func (s *Synthesizer) breakthroughScene(agents []Person, locations []string, civilians []Person, patterns []pattern.Pattern) string {
	agent := s.leadAgent(agents)
	location := primaryLocation(locations)
	eventCount := 0
	for _, p := range patterns {
		if p.Type == pattern.LocationPattern && p.Subject == location {
			eventCount = p.EventCount
		}
	}
	sus := s.suspects(civilians, location)

	variants := []string{
		fmt.Sprintf(`The clock in the field office reads 2:47 AM. %s has been staring at the evidence board for fourteen hours.

Red strings connect %d separate incidents, all centered on %s. Photographs. Witness statements. Timestamps that don't quite add up.

The cross-reference finishes running and three names appear: %s, a %s. %s, a %s. %s, a %s. Different backgrounds. No obvious connection. Except they all surfaced in the area within the same month, and they all have gaps where a history should be.

"That's not coincidence," %s whispers, and reaches for the phone. This goes up the chain tonight.`,
			agent.Name, eventCount, location,
			sus[0].Name, strings.ToLower(sus[0].Occupation),
			sus[1].Name, strings.ToLower(sus[1].Occupation),
			sus[2].Name, strings.ToLower(sus[2].Occupation),
			agent.Name),
		fmt.Sprintf(`The conference room fills as %s starts the briefing.

"We've tracked unusual activity at %s for weeks. %d incidents that initially looked unrelated." A click, and three faces appear on screen: %s, %s, %s.

"Each of them appeared in the area recently. Before that, no record. No digital footprint."

The room goes quiet. %s nods slowly. "I want surveillance on all three and a task force assembled by morning. Whatever is happening at %s, we're going to stop it."

Outside, the city keeps its normal rhythm. But the hunters are moving into position.`,
			agent.Name, location, eventCount, sus[0].Name, sus[1].Name, sus[2].Name,
			agent.Name, location),
		fmt.Sprintf(`The footage plays on loop. %s has watched it seventeen times.

Security camera at %s, flagged for unusual gait patterns. The face resolves: %s. %d years old. %s. Completely normal on paper.

Then footage from two weeks earlier, same person, different location. The walk is different. The gestures are different. Like someone learning to move in an unfamiliar body.

%s pulls more files. %s. %s. The same tell, again and again, and every one of them tied back to %s.

The pieces form a picture so impossible the mind wants to reject it. But the evidence doesn't lie.`,
			agent.Name, location, sus[0].Name, sus[0].Age, sus[0].Occupation,
			agent.Name, sus[1].Name, sus[2].Name, location),
	}
	return s.chooseVariant(CategoryBreakthrough, variants)
}

func (s *Synthesizer) surveillanceScene(agents []Person, locations []string, civilians []Person) string {
	agent := s.leadAgent(agents)
	location := primaryLocation(locations)
	target := unknownPerson
	if len(civilians) > 0 {
		target = civilians[s.rng.Intn(len(civilians))]
	}

	variants := []string{
		fmt.Sprintf(`The surveillance van is cramped and smells like stale coffee.

%s adjusts the directional microphone, fixed on the entrance across the street. The target is inside: %s, %d, %s. On paper, completely ordinary.

But the file says otherwise. The inconsistencies. The coworkers who say the target "changed" after a week away.

"Subject's been sitting there for forty-two minutes," %s reports. "No phone. No book. Just waiting."

"Waiting for what?"

"That's what we need to find out."`,
			agent.Name, target.Name, target.Age, target.Occupation, agent.Name),
		fmt.Sprintf(`From the window across the street, %s watches %s's apartment.

It's 11:47 PM and the lights are still on. Through binoculars: the kitchen table, covered in papers. Always working.

"Subject hasn't slept more than four hours any night this week," %s notes in the log. "Maintains perfect cover during the day at %s. But at night the mask comes off."

The light finally dies at 2:13 AM. %s settles in for the rest of the shift. Whatever %s is hiding, they'll slip eventually. They always do.`,
			agent.Name, target.Name, agent.Name, target.WorkLocation, agent.Name, target.Name),
		fmt.Sprintf(`%s doesn't know they're being followed. That's the whole point.

%s keeps a careful distance. Three cars back in traffic, a different jacket on foot, never the same pattern twice. The day unspools: work, lunch at the usual spot, groceries at 5:30. Routine. Too routine, every interaction slightly off, like an actor who studied the role but never inhabited it.

At 7:15 PM the target makes an unexpected turn toward %s.

%s's heart rate picks up. This is the deviation they've been waiting for.`,
			target.Name, agent.Name, location, agent.Name),
	}
	return s.chooseVariant(CategorySurveillance, variants)
}

func (s *Synthesizer) patternScene(agents []Person, locations []string, patterns []pattern.Pattern) string {
	agent := s.leadAgent(agents)
	location := "multiple locations"
	if len(locations) > 0 {
		location = locations[0]
	}

	variants := []string{
		fmt.Sprintf(`The analysis center hums with the sound of servers.

%s watches the algorithms connect dots that shouldn't connect. The computer doesn't know what's impossible; it just finds patterns. %d separate threads, all weaving together. Incidents at %s. Missing persons reports. Witnesses describing people who "changed."

The network graph fills three monitors, and at the center of the web sits %s.

%s encrypts the analysis and sends it upstairs with a single line: "We have a problem."

The reply arrives two minutes later: "Briefing at 0600. This goes to the Director."`,
			agent.Name, len(patterns), location, location, agent.Name),
		fmt.Sprintf(`It starts as a hunch and ends as a spreadsheet.

%s lines up the incident reports side by side. %d clusters of activity, each explicable on its own. Together they describe something with intent.

The probability model puts coordinated activity at better than 99 percent. %s prints the chart, circles %s in red, and pins it at the center of the board.

Tomorrow the working group sees it. After that, there's no walking it back.`,
			agent.Name, len(patterns), agent.Name, location),
		fmt.Sprintf(`Patterns don't care whether anyone believes in them.

For weeks the anomalies around %s were noise in the system. Tonight the system crossed its threshold, and a report nobody asked for landed in %s's queue, flagged urgent.

%d converging indicators. One geographic center. Zero innocent explanations left.

%s reads it twice, then picks up the phone.`,
			location, agent.Name, len(patterns), agent.Name),
	}
	return s.chooseVariant(CategoryPatternRecognition, variants)
}

func (s *Synthesizer) characterScene(civilians []Person, locations []string) string {
	character := unknownPerson
	if len(civilians) > 0 {
		character = civilians[s.rng.Intn(len(civilians))]
	}
	workplace := character.WorkLocation
	if workplace == "" {
		workplace = "the office"
	}

	variants := []string{
		fmt.Sprintf(`%s sits alone in the break room at %s.

They're %d, a %s, and by all accounts living an ordinary life. But lately something has felt wrong. Coworkers asking if they're okay. The moment last week when they couldn't remember their own mother's birthday.

%s stares at their reflection in the darkened window. The face is familiar, but sometimes, just for a moment, it feels like a stranger's.

Who am I? The thought comes unbidden, and the answer terrifies them.`,
			character.Name, workplace, character.Age, strings.ToLower(character.Occupation), character.Name),
		fmt.Sprintf(`The phone call comes at 10:37 PM.

"It's me. Listen, mom's worried about you. She says you don't sound like yourself anymore. You got family stories wrong last week. And you do seem different, since that trip. The way you talk. Even the way you hold your coffee cup."

%s's hands begin to shake. The truth is impossible; the lie is necessary.

"I'm fine. Just stressed with work."

They end the call as fast as politeness allows, then sit in the dark wondering how much longer the fiction holds.`,
			character.Name),
		fmt.Sprintf(`Everyone at %s agrees %s is a model colleague. Punctual. Pleasant. Reliable.

Nobody mentions, because nobody quite has the words for it, that the reliability appeared overnight. That the old jokes stopped landing. That %s eats lunch alone now and watches the door.

People explain away what they can't name. For a while.`,
			workplace, character.Name, character.Name),
	}
	return s.chooseVariant(CategoryCharacterFocus, variants)
}

func (s *Synthesizer) tensionScene(locations []string, tension float64) string {
	location := primaryLocation(locations)
	if len(locations) > 0 {
		location = locations[s.rng.Intn(len(locations))]
	}

	var scene string
	switch {
	case tension > 0.8:
		scene = fmt.Sprintf(`The city feels different tonight.

On the surface everything is normal. Traffic flows, restaurants serve dinner, people go about their lives unaware. But in federal buildings across the city, emergency lights burn late and surveillance teams take up positions.

At %s, sensors record every movement. The investigation has reached critical mass.

They're close now. The only question is who breaks first.`, location)
	case tension > 0.6:
		scene = fmt.Sprintf(`The pieces are moving on the board.

Investigators following leads that get warmer every day. Analysts connecting data points into patterns that reveal an impossible truth. Someone at %s asked too many questions today. A coworker noticed an inconsistency.

How much longer can the cover hold? Not much longer. The end is coming.`, location)
	default:
		scene = fmt.Sprintf(`The city continues its rhythm, unaware of what moves beneath the surface.

But patterns emerge. Connections form. Questions multiply. At %s, something significant happened, and somewhere a file was opened because of it.

The hunters don't know what they're hunting yet. But they're learning.`, location)
	}
	return scene
}

func (s *Synthesizer) factionScene(updates []FactionUpdate) string {
	first := FactionUpdate{Location: "the city", Activity: "operations"}
	if len(updates) > 0 {
		first = updates[0]
	}
	var lines []string
	for i, u := range updates {
		if i == 3 {
			break
		}
		lines = append(lines, fmt.Sprintf("%s at %s: %d%%", u.Activity, u.Location, u.Progress))
	}
	if len(lines) == 0 {
		lines = []string{"Faction operatives advanced their objectives across the city."}
	}

	variants := []string{
		fmt.Sprintf(`Somewhere in the city, the Faction moves.

No press release. No manifesto. Just quiet, deliberate action. Reports filter in, not to the mainstream, but to the right (or wrong) people: %s.

Tonight, at %s, another piece of their plan falls into place. You might not feel it yet. But the board is changing.`,
			lines[0], first.Location),
		fmt.Sprintf(`The Faction doesn't announce. It acts.

%s

They don't need credit. They need results. While the agencies chase ghosts, the Faction is already three steps ahead: recruiting, infiltrating, preparing. The timeline shifts in small, decisive actions nobody notices until it's too late.`,
			bulleted(lines)),
		fmt.Sprintf(`Intercepted chatter puts Faction assets at %s again.

The analysts argue over what "%s" means in context. By the time they agree, the operation will be finished and the operatives gone.

That's the pattern with the Faction. You never see the move. You only see the board after.`,
			first.Location, first.Activity),
	}
	return s.chooseVariant(CategoryFaction, variants)
}

func (s *Synthesizer) worldEventScene(events []string) string {
	first := "Events unfolded across the city."
	if len(events) > 0 {
		first = events[0]
	}

	variants := []string{
		fmt.Sprintf(`The world doesn't stop for secret wars.

While operatives and handlers play their games, life goes on. Today: %s

It's easy to forget, in the middle of a cover story, that the rest of the world has its own momentum. The timeline isn't just what you're protecting. It's everything else too, moving in the background.`,
			first),
		fmt.Sprintf(`Today the city saw: %s

Maybe it's connected. Maybe it's not. Maybe it's just the chaos of a living world.

That's the thing about the timeline. You're not the only ones changing it.`,
			first),
		fmt.Sprintf(`%s

The story runs below the fold, between a weather advisory and a council vote. Most readers skim past it.

A few do not. In this city, the difference between news and intelligence is only who's reading.`,
			first),
	}
	return s.chooseVariant(CategoryWorldEvent, variants)
}

func (s *Synthesizer) majorChangeScene(changes []string) string {
	first := "A major shift in the balance of power."
	if len(changes) > 0 {
		first = changes[0]
	}

	variants := []string{
		fmt.Sprintf(`Something fundamental just shifted.

%s

Down in the field you might not feel it yet. But the game just changed. The rules. The stakes. Maybe the sides.

The world is still turning. But the axis moved.`, first),
		fmt.Sprintf(`%s

The kind of development that gets briefed to people who don't sleep well anymore. Numbers on a screen moved, and with them, everything downstream.

Tomorrow's plans were written for yesterday's world.`, first),
		fmt.Sprintf(`History rarely announces its hinges. This one came close.

%s

Somewhere, contingency folders are coming off shelves. Somewhere else, they're being written for the first time.`, first),
	}
	return s.chooseVariant(CategoryMajorChange, variants)
}

func (s *Synthesizer) politicalNewsScene(news []NewsItem) string {
	item := NewsItem{Headline: "Major government development."}
	if len(news) > 0 {
		item = news[len(news)-1]
	}
	summary := item.Summary
	if summary == "" {
		summary = item.Headline
	}
	if len(summary) > 200 {
		summary = summary[:200] + "..."
	}

	variants := []string{
		fmt.Sprintf(`The news breaks. Not the kind that scrolls past. The kind that stops the room.

"%s"

Every agency shifts. Briefings get called. Schedules change at the highest levels. You're out there in your cover life, but the government you're hiding from just had a very bad day. Or a very calculated one.

The story will spin. The timeline will absorb it. But tonight, the world is watching.`,
			item.Headline),
		fmt.Sprintf(`Headlines: %s

%s

In safe houses and borrowed apartments, people are reading the same story and asking the same questions. Was this us? Was this them? What happens next?

The news cycle moves on. The consequences don't.`,
			item.Headline, summary),
		fmt.Sprintf(`"%s"

The anchors keep their voices level, which is how you know it's serious.

By midnight three different agencies will have claimed jurisdiction and none of them will have answers. The answers live somewhere the press can't follow.`,
			item.Headline),
	}
	return s.chooseVariant(CategoryPoliticalNews, variants)
}

func (s *Synthesizer) rogueAgentScene(reports []RogueReport) string {
	report := RogueReport{Description: "Activity detected.", Location: "an undisclosed location"}
	if len(reports) > 0 {
		report = reports[len(reports)-1]
	}
	if report.Location == "" {
		report.Location = "an undisclosed location"
	}

	variants := []string{
		fmt.Sprintf(`The rogue operative doesn't rest.

Latest intel: %s

He's been in the field longer than almost anyone. He knows the protocols. He knows how to stay ahead. While everyone else fights for the timeline, he's playing a different game, building his own network, his own endgame.

%s. Remember that name. Something happened there, and he was behind it.`,
			report.Description, report.Location),
		fmt.Sprintf(`He strikes again.

%s

Command wants him terminated. The Faction might want him recruited. The government doesn't know he exists. Yet.

Every consequence he creates is another thread in the tapestry. The question is who gets to decide the final pattern.`,
			report.Description),
		fmt.Sprintf(`Another report lands in the restricted queue: %s

Sightings near %s, then nothing. Cameras that should have caught him didn't. Assets that should have reported in went quiet.

A decade of tradecraft says no one stays invisible this long. He does.`,
			report.Description, report.Location),
	}
	return s.chooseVariant(CategoryRogueAgent, variants)
}

// quietTurn renders the no-news story. Variants cycle with the turn
// number so consecutive quiet turns read differently.
func (s *Synthesizer) quietTurn(turn int) string {
	quiets := []string{
		`The city sleeps, but the investigation never does.

In offices across the city, analysts review footage. Agents write reports. Algorithms churn through data. Small threads, slowly weaving together.

One day soon they'll see the pattern. But not today. Today the fiction holds.

But the clock is ticking.`,
		`Another day. Another layer of normalcy painted over impossible truth.

You go through the motions of a life that isn't yours, wearing a face that wasn't born to you, living in a time that shouldn't exist.

And for now, no one notices. But they will. They always do.`,
		`No new leads. No new evidence. Just the slow grind of routine.

Somewhere, a file sits on a desk. Someone will open it tomorrow. Or next week. The system moves at its own pace.

You use the time. Consolidate. Plan. Wait. The calm never lasts.`,
		`Rain on the windows. Another night in the safe house, or the apartment, or the life you're borrowing.

Nothing broke today. No one asked the wrong question. No one looked at you too long.

Small victories. You take them. Tomorrow the board might look different.`,
	}
	return quiets[turn%len(quiets)]
}

func bulleted(lines []string) string {
	var b strings.Builder
	for i, line := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("- ")
		b.WriteString(line)
	}
	return b.String()
}
