package scheduler

import (
	"errors"
	"net/url"
	"sync"

	"loader/logging"
	"loader/manager"
	"loader/metrics"
	"loader/queue"
)

var log = logging.GetLogger()

// ErrInvalidRequest rejects registrations whose URL is empty or not absolute.
var ErrInvalidRequest = errors.New("invalid request: missing or malformed url")

// Transport starts the actual fetch for a dispatched request. Start must not
// block and must not call done synchronously; done reports the outcome
// exactly once.
type Transport interface {
	Start(req *queue.Request, done func(err error))
}

// Config carries the scheduler tunables.
type Config struct {
	MaxConcurrentPerOrigin  int
	MediumPriorityThreshold float64
}

// DefaultMediumPriorityThreshold is the viewport distance, in CSS pixels,
// below which an approaching resource is promoted to medium priority.
const DefaultMediumPriorityThreshold = 500

// Scheduler decides when each registered resource fetch may start and at
// what priority, holding per-origin concurrency at a configured ceiling.
// A single mutex serializes every mutation so dispatch always sees a
// consistent view of capacity and queue contents; transports are handed
// work only after the lock is released.
type Scheduler struct {
	transport Transport
	collector *metrics.Collector

	mu              sync.Mutex
	admission       *manager.AdmissionManager
	queues          map[string]*queue.OriginQueue
	tracked         map[*queue.Request]struct{}
	mediumThreshold float64
	seq             uint64
}

// New wires a Scheduler with its transport and metrics collector. The
// application constructs exactly one instance at startup.
func New(cfg Config, t Transport, c *metrics.Collector) *Scheduler {
	threshold := cfg.MediumPriorityThreshold
	if threshold <= 0 {
		threshold = DefaultMediumPriorityThreshold
	}
	return &Scheduler{
		transport:       t,
		collector:       c,
		admission:       manager.NewAdmissionManager(cfg.MaxConcurrentPerOrigin),
		queues:          make(map[string]*queue.OriginQueue),
		tracked:         make(map[*queue.Request]struct{}),
		mediumThreshold: threshold,
	}
}

// Register tracks a new resource fetch. The request starts loading
// immediately when its origin has a free admission slot; otherwise it waits
// in the origin's priority queue. Returns ErrInvalidRequest for URLs without
// a scheme or host, with no state mutated.
func (s *Scheduler) Register(rawURL string, band queue.PriorityBand, h queue.Handle, onLoad func(), onError func(error)) (*queue.Request, error) {
	origin, err := originOf(rawURL)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.seq++
	req := &queue.Request{
		URL:     rawURL,
		Origin:  origin,
		Band:    band,
		Handle:  h,
		State:   queue.StateRegistered,
		Seq:     s.seq,
		OnLoad:  onLoad,
		OnError: onError,
	}
	s.tracked[req] = struct{}{}

	var started []dispatch
	if s.admission.Acquire(origin) {
		req.State = queue.StateLoading
		started = append(started, dispatch{req: req, band: req.Band})
	} else {
		req.State = queue.StateQueued
		s.originQueue(origin).Enqueue(req)
	}
	s.collector.IncRegistrations()
	s.syncGauges(origin)
	state := req.State
	s.mu.Unlock()

	log.Debugf("Registered %s (origin %s, band %s, state %s)", rawURL, origin, band, state)
	s.startAll(started)
	return req, nil
}

// Promote raises a request's priority band. Lower or equal bands are a
// no-op: priority never moves down. A queued request is reordered within its
// origin's queue; a loading request only has the new hint forwarded to its
// handle.
func (s *Scheduler) Promote(req *queue.Request, band queue.PriorityBand) {
	if req == nil {
		return
	}

	s.mu.Lock()
	if _, ok := s.tracked[req]; !ok || band <= req.Band {
		s.mu.Unlock()
		return
	}
	var hinted queue.Handle
	switch req.State {
	case queue.StateQueued:
		s.originQueue(req.Origin).Promote(req, band)
	case queue.StateLoading:
		req.Band = band
		hinted = req.Handle
	}
	s.mu.Unlock()

	if hinted != nil {
		hinted.SetPriorityHint(band)
	}
	log.Debugf("Promoted %s to %s", req.URL, band)
}

// Complete reports the outcome of a fetch the transport finished. Success
// and failure are identical for admission accounting; only the caller-facing
// callback differs. Completions for requests not currently loading are
// logged and ignored, guarding against a transport calling back twice. The
// freed slot is immediately offered to the origin's queue.
func (s *Scheduler) Complete(req *queue.Request, err error) {
	if req == nil {
		return
	}

	s.mu.Lock()
	if _, ok := s.tracked[req]; !ok || req.State != queue.StateLoading {
		s.mu.Unlock()
		log.Warnf("Ignoring completion for %s: request is not loading", req.URL)
		return
	}
	req.State = queue.StateCompleted
	delete(s.tracked, req)
	s.admission.Release(req.Origin)
	s.collector.IncCompletions(err == nil)
	started := s.dispatchLocked(req.Origin)
	s.syncGauges(req.Origin)
	onLoad, onError := req.OnLoad, req.OnError
	s.mu.Unlock()

	if err != nil {
		log.Debugf("Fetch failed for %s: %v", req.URL, err)
		if onError != nil {
			onError(err)
		}
	} else if onLoad != nil {
		onLoad()
	}
	s.startAll(started)
}

// Unregister drops a queued request from tracking, or detaches the caller's
// callbacks from a loading one. A loading request keeps its admission slot
// until the transport reports completion; cancelling the in-flight fetch is
// the transport's concern, not ours.
func (s *Scheduler) Unregister(req *queue.Request) {
	if req == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tracked[req]; !ok {
		return
	}
	switch req.State {
	case queue.StateQueued:
		s.originQueue(req.Origin).Remove(req)
		req.State = queue.StateCompleted
		delete(s.tracked, req)
		s.syncGauges(req.Origin)
	case queue.StateLoading:
		req.OnLoad = nil
		req.OnError = nil
	}
}

// UpdateConfig applies new tunables to subsequent admission and
// classification decisions. Nil fields keep their current value. In-flight
// requests are never re-evaluated.
func (s *Scheduler) UpdateConfig(u ConfigUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.MaxConcurrentPerOrigin != nil {
		s.admission.SetMaxPerOrigin(*u.MaxConcurrentPerOrigin)
	}
	if u.MediumPriorityThreshold != nil && *u.MediumPriorityThreshold > 0 {
		s.mediumThreshold = *u.MediumPriorityThreshold
	}
}

// ConfigUpdate is a partial configuration change.
type ConfigUpdate struct {
	MaxConcurrentPerOrigin  *int
	MediumPriorityThreshold *float64
}

// MediumThreshold returns the current medium-priority viewport distance.
func (s *Scheduler) MediumThreshold() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mediumThreshold
}

// Reset discards all queues, admission counters, and tracked requests
// without invoking any completion callbacks. Intended for test isolation.
func (s *Scheduler) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queues = make(map[string]*queue.OriginQueue)
	s.tracked = make(map[*queue.Request]struct{})
	s.admission.Reset()
	s.collector.ResetGauges()
}

// dispatch pairs a request with the band it held when it won its slot, so
// the hint forwarded to the transport is read under the lock.
type dispatch struct {
	req  *queue.Request
	band queue.PriorityBand
}

// dispatchLocked moves queued requests for origin into the loading state
// while capacity remains. Callers hold s.mu and start the returned requests
// after unlocking.
func (s *Scheduler) dispatchLocked(origin string) []dispatch {
	q, ok := s.queues[origin]
	if !ok {
		return nil
	}
	var started []dispatch
	for q.Len() > 0 && s.admission.Acquire(origin) {
		req := q.DequeueNext()
		req.State = queue.StateLoading
		started = append(started, dispatch{req: req, band: req.Band})
	}
	if q.Len() == 0 {
		delete(s.queues, origin)
	}
	return started
}

// startAll forwards the priority hint and hands each dispatched request to
// the transport. Must be called without holding s.mu.
func (s *Scheduler) startAll(dispatches []dispatch) {
	for _, d := range dispatches {
		req := d.req
		if req.Handle != nil {
			req.Handle.SetPriorityHint(d.band)
		}
		log.Debugf("Dispatching %s (band %s)", req.URL, d.band)
		s.transport.Start(req, func(err error) {
			s.Complete(req, err)
		})
	}
}

func (s *Scheduler) originQueue(origin string) *queue.OriginQueue {
	q, ok := s.queues[origin]
	if !ok {
		q = queue.NewOriginQueue()
		s.queues[origin] = q
	}
	return q
}

// originOf extracts the admission-control key: scheme plus host (and port)
// of an absolute URL.
func originOf(rawURL string) (string, error) {
	if rawURL == "" {
		return "", ErrInvalidRequest
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", ErrInvalidRequest
	}
	return u.Scheme + "://" + u.Host, nil
}
