package queue

// OriginQueue holds the requests waiting for an admission slot on a single
// origin. Iteration order is priority band descending, then arrival order.
// Queues stay short in practice (bounded by how many resources a page
// actually references), so a sorted slice beats a heap here.
type OriginQueue struct {
	requests []*Request
}

// NewOriginQueue initializes an empty queue.
func NewOriginQueue() *OriginQueue {
	return &OriginQueue{requests: make([]*Request, 0)}
}

// Enqueue inserts req preserving the ordering invariant: band descending,
// arrival sequence ascending within a band. Promoted requests keep their
// original sequence, which places them ahead of later arrivals in the band
// they move into.
func (q *OriginQueue) Enqueue(req *Request) {
	i := len(q.requests)
	for i > 0 {
		prev := q.requests[i-1]
		if prev.Band > req.Band || (prev.Band == req.Band && prev.Seq < req.Seq) {
			break
		}
		i--
	}
	q.requests = append(q.requests, nil)
	copy(q.requests[i+1:], q.requests[i:])
	q.requests[i] = req
}

// DequeueNext removes and returns the highest-priority, earliest-arrived
// request, or nil if the queue is empty.
func (q *OriginQueue) DequeueNext() *Request {
	if len(q.requests) == 0 {
		return nil
	}
	req := q.requests[0]
	q.requests[0] = nil
	q.requests = q.requests[1:]
	return req
}

// Remove drops a specific request from the queue, e.g. when its consumer
// unregisters before the fetch was dispatched.
func (q *OriginQueue) Remove(req *Request) bool {
	for i, r := range q.requests {
		if r == req {
			q.requests = append(q.requests[:i], q.requests[i+1:]...)
			return true
		}
	}
	return false
}

// Promote moves a queued request to a higher band, re-inserting it ahead of
// everything queued after it at the same or a lower band. Returns false if
// the request is not queued here.
func (q *OriginQueue) Promote(req *Request, band PriorityBand) bool {
	if band <= req.Band {
		return false
	}
	if !q.Remove(req) {
		return false
	}
	req.Band = band
	q.Enqueue(req)
	return true
}

// Len returns the number of waiting requests.
func (q *OriginQueue) Len() int {
	return len(q.requests)
}

// Requests returns the queue contents in dequeue order.
func (q *OriginQueue) Requests() []*Request {
	out := make([]*Request, len(q.requests))
	copy(out, q.requests)
	return out
}
