package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

func TestLimiter_Allow(t *testing.T) {
	c := &clock{now: time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)}
	rl := NewLimiter(Config{RequestsPerWindow: 2, Window: time.Minute}).WithClock(c.Now)

	steps := []struct {
		name    string
		advance time.Duration
		client  string
		want    bool
	}{
		{"first request", 0, "a", true},
		{"second request", time.Second, "a", true},
		{"over the limit", time.Second, "a", false},
		{"other client unaffected", 0, "b", true},
		{"new window resets", time.Minute, "a", true},
	}
	for _, s := range steps {
		t.Run(s.name, func(t *testing.T) {
			c.now = c.now.Add(s.advance)
			if got := rl.Allow(s.client); got != s.want {
				t.Errorf("Allow(%q) = %v, want %v", s.client, got, s.want)
			}
		})
	}

	if got := rl.GetMetrics().Rejected; got != 1 {
		t.Errorf("Rejected = %d, want 1", got)
	}
}

func TestLimiter_Evict(t *testing.T) {
	c := &clock{now: time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)}
	rl := NewLimiter(Config{Window: time.Minute}).WithClock(c.Now)

	rl.Allow("a")
	c.now = c.now.Add(90 * time.Second)
	rl.Allow("b")
	c.now = c.now.Add(45 * time.Second)

	if removed := rl.Evict(); removed != 1 {
		t.Errorf("Evict() = %d, want 1", removed)
	}
	if got := rl.GetMetrics().ClientCount; got != 1 {
		t.Errorf("ClientCount = %d, want 1", got)
	}
}

func TestLimiter_Middleware(t *testing.T) {
	rl := NewLimiter(Config{RequestsPerWindow: 1, Window: time.Minute})
	rl.Start()
	defer rl.Stop()

	handler := rl.Middleware(func(r *http.Request) string { return "same" }, nil)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) }))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Code != http.StatusNoContent {
		t.Fatalf("first request status = %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("second request status = %d, want 429", rr.Code)
	}
	if rr.Header().Get("Retry-After") != "60" {
		t.Errorf("Retry-After = %q, want 60", rr.Header().Get("Retry-After"))
	}

	rl.Stop() // idempotent
}
