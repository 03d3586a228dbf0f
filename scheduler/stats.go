package scheduler

// Stats is a point-in-time snapshot of scheduler load, per origin and
// process-wide.
type Stats struct {
	LoadingByOrigin map[string]int `json:"loading_by_origin"`
	QueuedByOrigin  map[string]int `json:"queued_by_origin"`
	TotalLoading    int            `json:"total_loading"`
	TotalQueued     int            `json:"total_queued"`
}

// Stats snapshots the current load for diagnostics and tests.
func (s *Scheduler) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := Stats{
		LoadingByOrigin: s.admission.Snapshot(),
		QueuedByOrigin:  make(map[string]int, len(s.queues)),
	}
	for _, n := range stats.LoadingByOrigin {
		stats.TotalLoading += n
	}
	for origin, q := range s.queues {
		if q.Len() == 0 {
			continue
		}
		stats.QueuedByOrigin[origin] = q.Len()
		stats.TotalQueued += q.Len()
	}
	return stats
}

// syncGauges pushes an origin's current counts to the metrics collector.
// Callers hold s.mu.
func (s *Scheduler) syncGauges(origin string) {
	s.collector.SetLoading(origin, s.admission.Loading(origin))
	queued := 0
	if q, ok := s.queues[origin]; ok {
		queued = q.Len()
	}
	s.collector.SetQueued(origin, queued)
}
