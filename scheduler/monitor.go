package scheduler

import "time"

// MonitorLoad periodically logs the process-wide loading and queued counts
// whenever they changed since the last line, until stop is closed. Run it on
// its own goroutine.
func (s *Scheduler) MonitorLoad(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	lastLoading, lastQueued := -1, -1
	for {
		select {
		case <-ticker.C:
			stats := s.Stats()
			if stats.TotalLoading != lastLoading || stats.TotalQueued != lastQueued {
				log.Infof("Loading: %d | Queued: %d", stats.TotalLoading, stats.TotalQueued)
				lastLoading = stats.TotalLoading
				lastQueued = stats.TotalQueued
			}
		case <-stop:
			return
		}
	}
}
