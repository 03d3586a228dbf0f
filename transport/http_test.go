package transport

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loader/queue"
)

func fetchOutcome(t *testing.T, f *HTTPFetcher, url string) error {
	t.Helper()
	result := make(chan error, 1)
	f.Start(&queue.Request{URL: url}, func(err error) {
		result <- err
	})
	select {
	case err := <-result:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("fetch did not complete")
		return nil
	}
}

func TestHTTPFetcher_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write([]byte("jpeg bytes"))
	}))
	defer srv.Close()

	f := NewHTTPFetcher(5 * time.Second)
	assert.NoError(t, fetchOutcome(t, f, srv.URL+"/listing/42/photo.jpg"))
}

func TestHTTPFetcher_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	f := NewHTTPFetcher(5 * time.Second)
	err := fetchOutcome(t, f, srv.URL+"/missing.jpg")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestHTTPFetcher_ConnectionFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	f := NewHTTPFetcher(time.Second)
	assert.Error(t, fetchOutcome(t, f, url+"/photo.jpg"))
}
