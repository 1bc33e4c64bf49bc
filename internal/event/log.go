package event

// Log is the append-only event history for one game session. Retained
// history is bounded by game length, so the linear filters are fine.
type Log struct {
	events     []*Event
	byLocation map[string][]*Event
	byActor    map[string][]*Event
}

// NewLog creates an empty event log.
func NewLog() *Log {
	return &Log{
		byLocation: make(map[string][]*Event),
		byActor:    make(map[string][]*Event),
	}
}

// Append adds an event to the log. Events are never mutated or removed
// after this point.
func (l *Log) Append(e *Event) {
	l.events = append(l.events, e)
	if e.Location != "" {
		l.byLocation[e.Location] = append(l.byLocation[e.Location], e)
	}
	if e.ActorID != "" {
		l.byActor[e.ActorID] = append(l.byActor[e.ActorID], e)
	}
}

// Len returns the number of recorded events.
func (l *Log) Len() int {
	return len(l.events)
}

// All returns the full history in chronological order. Callers must not
// modify the returned slice.
func (l *Log) All() []*Event {
	return l.events
}

// Since returns events with turn >= fromTurn.
func (l *Log) Since(fromTurn int) []*Event {
	var out []*Event
	for _, e := range l.events {
		if e.Turn >= fromTurn {
			out = append(out, e)
		}
	}
	return out
}

// Recent returns the last n events, or the whole history when it holds
// fewer than n.
func (l *Log) Recent(n int) []*Event {
	if len(l.events) <= n {
		return l.events
	}
	return l.events[len(l.events)-n:]
}

// ForLocation returns all events recorded at the named location.
func (l *Log) ForLocation(name string) []*Event {
	return l.byLocation[name]
}

// ForActor returns all events involving the given actor.
func (l *Log) ForActor(id string) []*Event {
	return l.byActor[id]
}

// Locations returns every location that has at least one event.
func (l *Log) Locations() []string {
	out := make([]string, 0, len(l.byLocation))
	for name := range l.byLocation {
		out = append(out, name)
	}
	return out
}

// Actors returns every actor that appears in at least one event.
func (l *Log) Actors() []string {
	out := make([]string, 0, len(l.byActor))
	for id := range l.byActor {
		out = append(out, id)
	}
	return out
}
