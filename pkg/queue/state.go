package queue

// ConnectionState is the lifecycle state of a ConnectionManager.
type ConnectionState int

const (
	StateNew ConnectionState = iota
	StateConnecting
	StateOpen
	StateChannelOpen
	StateConsuming
	StateClosing
	StateClosed
)

// LifecycleEvent drives ConnectionState transitions.
type LifecycleEvent int

const (
	EventConnect LifecycleEvent = iota
	EventConnectionOpened
	EventChannelOpened
	EventConsumeStarted
	EventConnectionClosed
	EventStop
)

var stateNames = map[ConnectionState]string{
	StateNew:         "NEW",
	StateConnecting:  "CONNECTING",
	StateOpen:        "OPEN",
	StateChannelOpen: "CHANNEL_OPEN",
	StateConsuming:   "CONSUMING",
	StateClosing:     "CLOSING",
	StateClosed:      "CLOSED",
}

var eventNames = map[LifecycleEvent]string{
	EventConnect:          "connect",
	EventConnectionOpened: "connection_opened",
	EventChannelOpened:    "channel_opened",
	EventConsumeStarted:   "consume_started",
	EventConnectionClosed: "connection_closed",
	EventStop:             "stop",
}

var transitions = map[ConnectionState]map[LifecycleEvent]ConnectionState{
	StateNew: {
		EventConnect: StateConnecting,
		EventStop:    StateClosed,
	},
	StateConnecting: {
		EventConnectionOpened: StateOpen,
		// a failed attempt keeps the manager connecting
		EventConnectionClosed: StateConnecting,
		EventStop:             StateClosing,
	},
	StateOpen: {
		EventChannelOpened:    StateChannelOpen,
		EventConnectionClosed: StateConnecting,
		EventStop:             StateClosing,
	},
	StateChannelOpen: {
		EventConsumeStarted:   StateConsuming,
		EventConnectionClosed: StateConnecting,
		EventStop:             StateClosing,
	},
	StateConsuming: {
		EventConnectionClosed: StateConnecting,
		EventStop:             StateClosing,
	},
	StateClosing: {
		EventConnectionClosed: StateClosed,
		EventStop:             StateClosing,
	},
	StateClosed: {
		EventConnect: StateConnecting,
		EventStop:    StateClosed,
	},
}

func (s ConnectionState) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}

	return "UNKNOWN"
}

func (e LifecycleEvent) String() string {
	if name, ok := eventNames[e]; ok {
		return name
	}

	return "unknown"
}

// IsClosing reports whether a stop was requested.
func (s ConnectionState) IsClosing() bool {
	return s == StateClosing || s == StateClosed
}

// Transition returns the state reached from "from" on event, or an
// InvalidStateTransitionError if the event is not legal in that state.
func Transition(from ConnectionState, event LifecycleEvent) (ConnectionState, error) {
	next, ok := transitions[from][event]
	if !ok {
		return from, &InvalidStateTransitionError{From: from, Event: event}
	}

	return next, nil
}
