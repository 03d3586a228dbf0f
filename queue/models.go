package queue

// PriorityBand ranks a resource request. Higher bands dequeue first, and a
// request's band never moves down once assigned.
type PriorityBand int

const (
	PriorityLow PriorityBand = iota
	PriorityMedium
	PriorityHigh
)

func (b PriorityBand) String() string {
	switch b {
	case PriorityLow:
		return "low"
	case PriorityMedium:
		return "medium"
	case PriorityHigh:
		return "high"
	default:
		return "unknown"
	}
}

// State tracks where a request sits in its lifecycle.
type State int

const (
	StateRegistered State = iota
	StateQueued
	StateLoading
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateRegistered:
		return "registered"
	case StateQueued:
		return "queued"
	case StateLoading:
		return "loading"
	case StateCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// Handle is the consumer-owned resource the fetch feeds, e.g. an image slot
// in a listing card. The scheduler never inspects it; it only forwards
// priority hints through it.
type Handle interface {
	SetPriorityHint(band PriorityBand)
}

// Request represents a resource fetch tracked by the scheduler. Fields are
// mutated only while the scheduler's lock is held.
type Request struct {
	URL    string
	Origin string
	Band   PriorityBand
	Handle Handle
	State  State

	// Seq is the arrival order, used as a FIFO tiebreaker within a band.
	Seq uint64

	OnLoad  func()
	OnError func(err error)
}
