package refresh

import "fmt"

// EventKind is a document lifecycle event delivered by the host.
type EventKind int

const (
	Opened EventKind = iota
	Saved
	Edited
	ActiveChanged
	Closed
)

var eventNames = map[EventKind]string{
	Opened:        "opened",
	Saved:         "saved",
	Edited:        "edited",
	ActiveChanged: "active-changed",
	Closed:        "closed",
}

func (k EventKind) String() string {
	if name, ok := eventNames[k]; ok {
		return name
	}
	return fmt.Sprintf("EventKind(%d)", int(k))
}

// ParseEventKind maps an event name back to its kind.
func ParseEventKind(name string) (EventKind, error) {
	for k, n := range eventNames {
		if n == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown lifecycle event %q", name)
}

// Event is one lifecycle notification for a document.
type Event struct {
	Kind     EventKind
	Document string
}

// State is where a document's refresh currently is.
type State int

const (
	Idle State = iota
	VersionChecking
	Querying
	Resolving
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case VersionChecking:
		return "version-checking"
	case Querying:
		return "querying"
	case Resolving:
		return "resolving"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}
