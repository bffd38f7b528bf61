package middleware

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func serveSecured(t *testing.T, opt SecurityOptions, pre gin.HandlerFunc, mutate func(*http.Request)) http.Header {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	if pre != nil {
		r.Use(pre)
	}
	r.Use(SecurityHeaders(opt))
	r.GET("/admin/requests", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/admin/requests", nil)
	if mutate != nil {
		mutate(req)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Header()
}

func TestSecurityHeaders_Baseline(t *testing.T) {
	h := serveSecured(t, SecurityOptions{}, nil, nil)

	want := map[string]string{
		"X-Content-Type-Options":        "nosniff",
		"X-Frame-Options":               "DENY",
		"Referrer-Policy":               "no-referrer",
		"Access-Control-Expose-Headers": "X-Request-ID",
	}
	for k, v := range want {
		if got := h.Get(k); got != v {
			t.Fatalf("%s = %q; want %q", k, got, v)
		}
	}
	for _, k := range []string{"Permissions-Policy", "Cache-Control", "Pragma", "Strict-Transport-Security"} {
		if h.Get(k) != "" {
			t.Fatalf("unexpected %s: %q", k, h.Get(k))
		}
	}
}

func TestSecurityHeaders_CacheControl(t *testing.T) {
	cases := []struct {
		cc, pragma string
	}{
		{CachePrivateRevalidate, "no-cache"},
		{"no-store", "no-cache"},
		{"private, max-age=60", ""},
	}
	for _, tc := range cases {
		h := serveSecured(t, SecurityOptions{CacheControl: tc.cc}, nil, nil)
		if h.Get("Cache-Control") != tc.cc || h.Get("Pragma") != tc.pragma {
			t.Fatalf("cc=%q: got Cache-Control=%q Pragma=%q", tc.cc, h.Get("Cache-Control"), h.Get("Pragma"))
		}
	}
}

func TestSecurityHeaders_ExposeHeadersMerged(t *testing.T) {
	pre := func(c *gin.Context) {
		c.Header("Access-Control-Expose-Headers", "etag, Foo")
		c.Next()
	}
	h := serveSecured(t, SecurityOptions{ExposeHeaders: []string{"ETag", "Idempotency-Replayed"}}, pre, nil)

	if got := h.Get("Access-Control-Expose-Headers"); got != "etag, Foo, X-Request-ID, Idempotency-Replayed" {
		t.Fatalf("expose = %q", got)
	}
}

func TestSecurityHeaders_PolicyAndHSTS(t *testing.T) {
	opt := SecurityOptions{EnableHSTS: true, HSTSMaxAge: 24 * time.Hour, EnablePolicy: true}

	h := serveSecured(t, opt, nil, func(r *http.Request) { r.TLS = &tls.ConnectionState{} })
	if h.Get("Permissions-Policy") == "" || h.Get("X-Permitted-Cross-Domain-Policies") != "none" {
		t.Fatalf("missing policy headers: %#v", h)
	}
	if got := h.Get("Strict-Transport-Security"); got != "max-age=86400; includeSubDomains; preload" {
		t.Fatalf("HSTS = %q", got)
	}

	// Plain HTTP never gets HSTS.
	if h := serveSecured(t, opt, nil, nil); h.Get("Strict-Transport-Security") != "" {
		t.Fatalf("HSTS sent over HTTP")
	}

	// Default max-age behind a TLS-terminating proxy.
	opt.HSTSMaxAge = 0
	h = serveSecured(t, opt, nil, func(r *http.Request) { r.Header.Set("X-Forwarded-Proto", "HTTPS") })
	if got := h.Get("Strict-Transport-Security"); got != "max-age=15552000; includeSubDomains; preload" {
		t.Fatalf("default HSTS = %q", got)
	}
}
