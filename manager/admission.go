package manager

import (
	"sync"

	"loader/logging"
)

var log = logging.GetLogger()

// DefaultMaxPerOrigin matches the multiplexed-connection limit browsers and
// proxies typically grant a single origin.
const DefaultMaxPerOrigin = 6

// AdmissionManager tracks how many fetches are in flight per origin against
// a configurable ceiling. It hands out no semaphores: callers ask, acquire,
// and release under their own serialization.
type AdmissionManager struct {
	mu           sync.Mutex
	loading      map[string]int
	maxPerOrigin int
}

// NewAdmissionManager initializes an AdmissionManager with the given
// per-origin ceiling.
func NewAdmissionManager(maxPerOrigin int) *AdmissionManager {
	if maxPerOrigin <= 0 {
		log.Warnf("Invalid per-origin limit %d. Using default %d.", maxPerOrigin, DefaultMaxPerOrigin)
		maxPerOrigin = DefaultMaxPerOrigin
	}
	return &AdmissionManager{
		loading:      make(map[string]int),
		maxPerOrigin: maxPerOrigin,
	}
}

// HasCapacity reports whether origin is below its in-flight ceiling.
func (am *AdmissionManager) HasCapacity(origin string) bool {
	am.mu.Lock()
	defer am.mu.Unlock()
	return am.loading[origin] < am.maxPerOrigin
}

// Acquire claims an admission slot for origin. It returns false without
// claiming anything when the origin is at its ceiling.
func (am *AdmissionManager) Acquire(origin string) bool {
	am.mu.Lock()
	defer am.mu.Unlock()
	if am.loading[origin] >= am.maxPerOrigin {
		return false
	}
	am.loading[origin]++
	return true
}

// Release frees an admission slot for origin. Releasing below zero is a
// bookkeeping bug upstream; it is logged and ignored.
func (am *AdmissionManager) Release(origin string) {
	am.mu.Lock()
	defer am.mu.Unlock()
	if am.loading[origin] <= 0 {
		log.Warnf("Release without matching acquire for origin %s", origin)
		return
	}
	am.loading[origin]--
	if am.loading[origin] == 0 {
		delete(am.loading, origin)
	}
}

// Loading returns the in-flight count for origin.
func (am *AdmissionManager) Loading(origin string) int {
	am.mu.Lock()
	defer am.mu.Unlock()
	return am.loading[origin]
}

// Snapshot copies the per-origin in-flight counts.
func (am *AdmissionManager) Snapshot() map[string]int {
	am.mu.Lock()
	defer am.mu.Unlock()
	out := make(map[string]int, len(am.loading))
	for origin, n := range am.loading {
		out[origin] = n
	}
	return out
}

// TotalLoading returns the in-flight count across all origins.
func (am *AdmissionManager) TotalLoading() int {
	am.mu.Lock()
	defer am.mu.Unlock()
	total := 0
	for _, n := range am.loading {
		total += n
	}
	return total
}

// SetMaxPerOrigin changes the ceiling for subsequent admission decisions.
// Requests already in flight above a lowered ceiling finish normally.
func (am *AdmissionManager) SetMaxPerOrigin(n int) {
	if n <= 0 {
		log.Warnf("Ignoring invalid per-origin limit %d", n)
		return
	}
	am.mu.Lock()
	defer am.mu.Unlock()
	am.maxPerOrigin = n
}

// MaxPerOrigin returns the current ceiling.
func (am *AdmissionManager) MaxPerOrigin() int {
	am.mu.Lock()
	defer am.mu.Unlock()
	return am.maxPerOrigin
}

// Reset discards all in-flight accounting.
func (am *AdmissionManager) Reset() {
	am.mu.Lock()
	defer am.mu.Unlock()
	am.loading = make(map[string]int)
}
