package visibility

import (
	"loader/logging"
	"loader/queue"
)

var log = logging.GetLogger()

// Event reports where a request's consumer sits relative to the viewport.
// Intersecting short-circuits the distance: an intersecting consumer is
// treated as distance zero.
type Event struct {
	Request      *queue.Request
	Distance     float64
	Intersecting bool
}

// Promoter is the slice of the scheduler the reclassifier needs: raising a
// request's band and reading the current medium-priority threshold.
type Promoter interface {
	Promote(req *queue.Request, band queue.PriorityBand)
	MediumThreshold() float64
}

// Reclassifier drains visibility events on its own goroutine and promotes
// the named requests. Event arrival concurrency is absorbed by the channel;
// state mutation stays on the scheduler's lock. Promotion only: a consumer
// scrolling away never lowers a band.
type Reclassifier struct {
	sched  Promoter
	events chan Event
	done   chan struct{}
}

// NewReclassifier starts a reclassifier with the given event buffer.
func NewReclassifier(sched Promoter, buffer int) *Reclassifier {
	if buffer <= 0 {
		buffer = 256
	}
	r := &Reclassifier{
		sched:  sched,
		events: make(chan Event, buffer),
		done:   make(chan struct{}),
	}
	go r.run()
	return r
}

// Observe hands a visibility event to the reclassifier. It never blocks the
// notifier: when the buffer is full the event is dropped, which is safe
// because a later event for the same consumer supersedes it.
func (r *Reclassifier) Observe(ev Event) {
	select {
	case <-r.done:
	case r.events <- ev:
	default:
		log.Debugln("Visibility event buffer full, dropping event")
	}
}

// Close stops the drain goroutine. Buffered events are discarded.
func (r *Reclassifier) Close() {
	close(r.done)
}

func (r *Reclassifier) run() {
	for {
		select {
		case <-r.done:
			return
		case ev := <-r.events:
			r.apply(ev)
		}
	}
}

func (r *Reclassifier) apply(ev Event) {
	if ev.Request == nil {
		return
	}
	distance := ev.Distance
	if ev.Intersecting {
		distance = 0
	}
	band, ok := Classify(distance, r.sched.MediumThreshold())
	if !ok {
		return
	}
	r.sched.Promote(ev.Request, band)
}
