package reconciler

// State is the reconciler's position within a pass.
type State int32

const (
	StateIdle State = iota
	StateBackfillingGaps
	StateStreamingForward
	StateCaughtUp
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateBackfillingGaps:
		return "backfilling_gaps"
	case StateStreamingForward:
		return "streaming_forward"
	case StateCaughtUp:
		return "caught_up"
	default:
		return "unknown"
	}
}
