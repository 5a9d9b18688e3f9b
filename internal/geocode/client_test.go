package geocode

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"realaddress_backend/platform/config"
	"realaddress_backend/platform/logger"
)

func newTestClient(baseURL string, interval time.Duration) *Client {
	cfg := &config.Config{
		NominatimURL:         baseURL,
		NominatimUserAgent:   "RealAddressGenerator/test",
		NominatimTimeout:     5 * time.Second,
		NominatimMinInterval: interval,
	}
	return NewClient(cfg, logger.Discard(), nil)
}

func TestClientSearchSendsQuery(t *testing.T) {
	var got *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Clone(context.Background())
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(chicagoList))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, time.Millisecond)
	results, err := c.Search(context.Background(), "hotel in Chicago", "US")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}

	if got.URL.Path != "/search" {
		t.Fatalf("unexpected path %q", got.URL.Path)
	}
	q := got.URL.Query()
	expect := map[string]string{
		"q":               "hotel in Chicago",
		"countrycodes":    "US",
		"format":          "jsonv2",
		"addressdetails":  "1",
		"limit":           "10",
		"accept-language": "native",
	}
	for key, want := range expect {
		if q.Get(key) != want {
			t.Fatalf("param %s: expected %q, got %q", key, want, q.Get(key))
		}
	}
	if ua := got.Header.Get("User-Agent"); ua != "RealAddressGenerator/test" {
		t.Fatalf("unexpected User-Agent %q", ua)
	}
}

func TestClientSearchRejectsBadResponses(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"status": func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		},
		"invalid json": func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`<html>busy</html>`))
		},
		"not an array": func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"error":"bad request"}`))
		},
	}

	for name, handler := range cases {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(handler)
			defer srv.Close()

			c := newTestClient(srv.URL, time.Millisecond)
			if _, err := c.Search(context.Background(), "hotel in", "US"); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}

func TestClientSearchWrapsUpstreamStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL, time.Millisecond).Search(context.Background(), "cafe in", "FR")
	if !errors.Is(err, ErrUpstreamStatus) {
		t.Fatalf("expected ErrUpstreamStatus, got %v", err)
	}
}

func TestClientSearchHonoursCancelledContext(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(emptyList))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := newTestClient(srv.URL, time.Millisecond).Search(ctx, "hotel in", "US"); err == nil {
		t.Fatal("expected an error for a cancelled context")
	}
	if hits.Load() != 0 {
		t.Fatalf("expected no upstream call, got %d", hits.Load())
	}
}

func TestClientThrottleSpacesConcurrentCalls(t *testing.T) {
	const (
		interval = 40 * time.Millisecond
		calls    = 4
		slack    = 5 * time.Millisecond
	)

	var (
		mu    sync.Mutex
		times []time.Time
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		mu.Lock()
		times = append(times, time.Now())
		mu.Unlock()
		_, _ = w.Write([]byte(emptyList))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, interval)

	var wg sync.WaitGroup
	for range calls {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.Search(context.Background(), "hotel in", "US"); err != nil {
				t.Errorf("Search: %v", err)
			}
		}()
	}
	wg.Wait()

	if len(times) != calls {
		t.Fatalf("expected %d calls, got %d", calls, len(times))
	}
	if span := times[len(times)-1].Sub(times[0]); span < time.Duration(calls-1)*interval-slack {
		t.Fatalf("expected calls spread over at least %v, got %v", time.Duration(calls-1)*interval, span)
	}
}

func TestResolverOverHTTPClient(t *testing.T) {
	var (
		mu      sync.Mutex
		queries []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		queries = append(queries, r.URL.Query().Get("q"))
		n := len(queries)
		mu.Unlock()

		if n == 1 {
			_, _ = w.Write([]byte(emptyList))
			return
		}
		_, _ = w.Write([]byte(beverlyList))
	}))
	defer srv.Close()

	r := NewResolver(newTestClient(srv.URL, time.Millisecond), &fakeCities{names: []string{"Los Angeles"}}, logger.Discard())
	r.SetRand(fixedRand{v: 0})

	addr, ok := r.Resolve(context.Background(), Query{CountryCode: "US", Zipcode: "90210"})
	if !ok {
		t.Fatal("expected an address")
	}
	assertField(t, "city", addr.City, "Beverly Hills")
	if addr.FullAddress != "Beverly Dr, Beverly Hills, US" {
		t.Fatalf("unexpected full address %q", addr.FullAddress)
	}
	if queries[0] != "hotel in 90210" || queries[1] != "hotel in Los Angeles" {
		t.Fatalf("unexpected queries %v", queries)
	}
}
