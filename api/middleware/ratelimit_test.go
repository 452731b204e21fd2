package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/lpaudit/config"
)

func TestRateLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RateLimit(config.RateLimitConfig{RequestsPerSecond: 0.5, Burst: 2}))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	do := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.RemoteAddr = ip + ":1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	for i := 0; i < 2; i++ {
		if w := do("10.0.0.1"); w.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i, w.Code)
		}
	}

	w := do("10.0.0.1")
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("burst exceeded: status = %d, want 429", w.Code)
	}
	if got := w.Header().Get("Retry-After"); got != "2" {
		t.Errorf("Retry-After = %q, want 2", got)
	}

	// Another client has its own bucket.
	if w := do("10.0.0.2"); w.Code != http.StatusOK {
		t.Errorf("second client: status = %d, want 200", w.Code)
	}
}

func TestBuckets_RefillAndSweep(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	b := newBuckets(config.RateLimitConfig{RequestsPerSecond: 1, Burst: 1})
	b.now = func() time.Time { return now }

	if ok, _ := b.take("a"); !ok {
		t.Fatal("first request should pass")
	}
	ok, wait := b.take("a")
	if ok || wait != time.Second {
		t.Fatalf("second request: ok=%v wait=%v, want rejected with 1s wait", ok, wait)
	}

	// A rejected request must not consume the next token.
	now = now.Add(time.Second)
	if ok, _ := b.take("a"); !ok {
		t.Error("token should have refilled after 1s")
	}

	now = now.Add(2 * time.Hour)
	b.take("b")
	if _, exists := b.clients["a"]; exists {
		t.Error("idle client should have been swept")
	}
	if len(b.clients) != 1 {
		t.Errorf("clients = %d, want 1", len(b.clients))
	}
}

func TestBuckets_ZeroBurstRejects(t *testing.T) {
	t.Parallel()

	b := newBuckets(config.RateLimitConfig{RequestsPerSecond: 1, Burst: 0})
	if ok, _ := b.take("a"); ok {
		t.Error("zero burst should reject every request")
	}
}
