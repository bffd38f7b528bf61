// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file provides SecurityHeaders, which attaches HTTP hardening headers
// to JSON responses. Shelter listings carry client names and phone numbers,
// so they must never land in shared caches; browsers may still revalidate
// them with the listing ETags.
package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// CachePrivateRevalidate keeps responses out of shared caches and forces
// revalidation (If-None-Match) before reuse.
const CachePrivateRevalidate = "private, no-cache"

// SecurityOptions configures SecurityHeaders. HSTSMaxAge defaults to 180
// days.
type SecurityOptions struct {
	EnableHSTS   bool          // set true only when traffic is HTTPS end-to-end
	HSTSMaxAge   time.Duration // e.g., 180 * 24h
	EnablePolicy bool          // include Permissions-Policy, etc.

	// CacheControl is sent verbatim when non-empty.
	CacheControl string

	// ExposeHeaders are appended to Access-Control-Expose-Headers so browser
	// clients can read them. X-Request-ID is always included.
	ExposeHeaders []string
}

// SecurityHeaders always sets nosniff, DENY framing and no-referrer.
func SecurityHeaders(opt SecurityOptions) gin.HandlerFunc {
	maxAge := int(opt.HSTSMaxAge.Seconds())
	if maxAge <= 0 {
		maxAge = int((180 * 24 * time.Hour).Seconds())
	}
	hsts := "max-age=" + strconv.Itoa(maxAge) + "; includeSubDomains; preload"
	expose := append([]string{requestIDHeader}, opt.ExposeHeaders...)
	legacyNoCache := strings.Contains(opt.CacheControl, "no-cache") || strings.Contains(opt.CacheControl, "no-store")

	return func(c *gin.Context) {
		h := c.Writer.Header()

		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")

		if opt.EnablePolicy {
			h.Set("Permissions-Policy", "geolocation=(), microphone=(), camera=(), payment=()")
			h.Set("X-Permitted-Cross-Domain-Policies", "none")
		}

		if opt.CacheControl != "" {
			h.Set("Cache-Control", opt.CacheControl)
			if legacyNoCache {
				h.Set("Pragma", "no-cache")
			}
		}

		if opt.EnableHSTS && isHTTPS(c.Request) {
			h.Set("Strict-Transport-Security", hsts)
		}

		appendExposed(h, expose)
		c.Next()
	}
}

// appendExposed adds each name missing from Access-Control-Expose-Headers.
func appendExposed(h http.Header, names []string) {
	const hdr = "Access-Control-Expose-Headers"
	cur := h.Get(hdr)
	have := map[string]bool{}
	for _, p := range strings.Split(cur, ",") {
		if p = strings.TrimSpace(p); p != "" {
			have[http.CanonicalHeaderKey(p)] = true
		}
	}
	for _, n := range names {
		if !have[http.CanonicalHeaderKey(n)] {
			have[http.CanonicalHeaderKey(n)] = true
			if cur == "" {
				cur = n
			} else {
				cur += ", " + n
			}
		}
	}
	if cur != "" {
		h.Set(hdr, cur)
	}
}

// isHTTPS reports TLS on the connection or X-Forwarded-Proto: https.
func isHTTPS(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	return strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}
