package core

// ChannelState is the per-channel connection state. Signaling and media each
// run their own instance; Ready is signaling's terminal healthy state,
// Streaming is media's.
type ChannelState int

const (
	StateIdle ChannelState = iota
	StateConnecting
	StateAuthenticated
	StateReady
	StateStreaming
	StateClosed
	StateError
)

func (s ChannelState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateAuthenticated:
		return "authenticated"
	case StateReady:
		return "ready"
	case StateStreaming:
		return "streaming"
	case StateClosed:
		return "closed"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// transitions enumerates the legal edges of the channel state machine.
// Closed and Error re-enter Connecting so stale reconnect timers firing
// after a teardown cannot resurrect a channel through an illegal edge.
var transitions = map[ChannelState][]ChannelState{
	StateIdle:          {StateConnecting, StateClosed},
	StateConnecting:    {StateAuthenticated, StateClosed, StateError},
	StateAuthenticated: {StateReady, StateStreaming, StateClosed, StateError},
	StateReady:         {StateClosed, StateError},
	StateStreaming:     {StateClosed, StateError},
	StateClosed:        {StateConnecting},
	StateError:         {StateConnecting, StateClosed},
}

// CanTransition reports whether moving from s to next is a legal edge.
func (s ChannelState) CanTransition(next ChannelState) bool {
	for _, t := range transitions[s] {
		if t == next {
			return true
		}
	}
	return false
}
