package transport

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"loader/queue"
)

// HTTPFetcher performs resource fetches over plain HTTP. It satisfies the
// scheduler's Transport interface.
type HTTPFetcher struct {
	httpClient *http.Client
}

// NewHTTPFetcher creates an HTTPFetcher whose fetches give up after timeout.
func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Start fetches req.URL on a new goroutine and reports the outcome through
// done exactly once. Start itself never calls done; it returns immediately.
func (f *HTTPFetcher) Start(req *queue.Request, done func(err error)) {
	go func() {
		resp, err := f.httpClient.Get(req.URL)
		if err != nil {
			done(err)
			return
		}
		defer resp.Body.Close()

		// Drain the body so the connection can be reused.
		if _, err := io.Copy(io.Discard, resp.Body); err != nil {
			done(err)
			return
		}
		if resp.StatusCode >= http.StatusBadRequest {
			done(fmt.Errorf("fetch %s: unexpected status %s", req.URL, resp.Status))
			return
		}
		done(nil)
	}()
}
