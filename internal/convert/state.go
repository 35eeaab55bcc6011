package convert

// State is a step of the conversion state machine.
type State int

const (
	StateStart State = iota
	StateValidatingInput
	StateOpeningSource
	StateValidatingRange
	StateTrimming
	StateScaling // Skipped when the scale factor is 1.
	StateEncoding
	StateReleasing
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateStart:
		return "start"
	case StateValidatingInput:
		return "validating-input"
	case StateOpeningSource:
		return "opening-source"
	case StateValidatingRange:
		return "validating-range"
	case StateTrimming:
		return "trimming"
	case StateScaling:
		return "scaling"
	case StateEncoding:
		return "encoding"
	case StateReleasing:
		return "releasing"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}
