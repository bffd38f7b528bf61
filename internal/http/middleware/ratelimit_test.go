package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestKeyByUserOrIP(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request.RemoteAddr = net.JoinHostPort("203.0.113.9", "12345")

	if key := KeyByUserOrIP()(c); key != "ip:203.0.113.9" {
		t.Fatalf("anonymous key = %q", key)
	}
	c.Set(ctxKeyUserID, "3")
	if key := KeyByUserOrIP()(c); key != "user:3" {
		t.Fatalf("user key = %q", key)
	}
}

func TestNewRateLimiter_Defaults(t *testing.T) {
	rl := NewRateLimiter(RateLimitOptions{RPS: 2})
	if rl.opt.Burst != 1 || rl.opt.Key == nil || rl.opt.IdleTTL != 10*time.Minute || rl.opt.Scope != "default" {
		t.Fatalf("defaults not applied: %+v", rl.opt)
	}
	now := time.Now()
	if rl.bucketFor("k", now) != rl.bucketFor("k", now) {
		t.Fatalf("bucket not reused")
	}
}

func TestRateLimiter_SweepsIdleBuckets(t *testing.T) {
	rl := NewRateLimiter(RateLimitOptions{RPS: 1, IdleTTL: time.Minute})
	t0 := time.Now()
	rl.bucketFor("old", t0)
	// A sweep is due again at t0+1m; "old" has idled past the TTL by then.
	rl.bucketFor("recent", t0.Add(90*time.Second))
	rl.bucketFor("new", t0.Add(2*time.Minute))

	if _, ok := rl.buckets["old"]; ok {
		t.Fatalf("idle bucket not evicted")
	}
	if _, ok := rl.buckets["recent"]; !ok {
		t.Fatalf("active bucket evicted")
	}
}

func TestRateLimiter_RetryAfterFollowsRefill(t *testing.T) {
	rl := NewRateLimiter(RateLimitOptions{RPS: 0.25, Burst: 1})
	now := time.Now()
	rl.now = func() time.Time { return now }

	if ok, _ := rl.reserve("k"); !ok {
		t.Fatalf("first token refused")
	}
	ok, wait := rl.reserve("k")
	if ok || wait < 3*time.Second || wait > 4*time.Second {
		t.Fatalf("ok=%v wait=%v; want refusal with ~4s wait", ok, wait)
	}
	// A refused reservation must not push the next token further out.
	if _, again := rl.reserve("k"); again != wait {
		t.Fatalf("wait grew from %v to %v", wait, again)
	}
	now = now.Add(4 * time.Second)
	if ok, _ := rl.reserve("k"); !ok {
		t.Fatalf("token not refilled")
	}
}

func TestIsRateBypass(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	if IsRateBypass(c) {
		t.Fatalf("bypass set by default")
	}
	c.Set(ctxKeyRateBypass, true)
	if !IsRateBypass(c) {
		t.Fatalf("bypass flag ignored")
	}
	c.Set(ctxKeyRateBypass, "yes")
	if IsRateBypass(c) {
		t.Fatalf("non-bool flag read as true")
	}
}

func TestRateLimiter_Handler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rl := NewRateLimiter(RateLimitOptions{Scope: "test-handler", RPS: 0.5, Burst: 1})
	before := testutil.ToFloat64(rateLimited.WithLabelValues("test-handler"))

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Header(requestIDHeader, "rid-1")
		if c.Query("replay") == "1" {
			c.Set(ctxKeyRateBypass, true)
		}
		c.Next()
	})
	r.Use(rl.Handler())
	r.GET("/client/animals", func(c *gin.Context) { c.Status(http.StatusOK) })

	get := func(path string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		return w
	}

	if w := get("/client/animals"); w.Code != http.StatusOK {
		t.Fatalf("first request = %d", w.Code)
	}
	w := get("/client/animals")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("second request = %d", w.Code)
	}
	if got := w.Header().Get("Retry-After"); got != "2" {
		t.Fatalf("Retry-After = %q; want 2", got)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if body["code"] != "too_many_requests" || body["request_id"] != "rid-1" {
		t.Fatalf("unexpected body: %v", body)
	}
	if got := testutil.ToFloat64(rateLimited.WithLabelValues("test-handler")) - before; got != 1 {
		t.Fatalf("rejections counted = %v", got)
	}

	if w := get("/client/animals?replay=1"); w.Code != http.StatusOK {
		t.Fatalf("bypassed request = %d", w.Code)
	}
}
