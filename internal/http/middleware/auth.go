// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements HTTP Basic authentication against the user directory.
// Each protected route group is mounted with the role it requires; the
// credentials plus that role are handed to the Authenticator, so an admin
// account cannot reach client routes with the same username and password
// unless it also exists as a client.
//
// On success the authenticated user is stored in the Gin context (see
// UserFrom) and its id is published under "userID" for the logger and the
// rate limiter.
package middleware

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/tbourn/go-shelter-backend/internal/domain"
	"github.com/tbourn/go-shelter-backend/internal/services"
)

const (
	ctxKeyUser   = "auth.user"
	ctxKeyUserID = "userID"

	basicRealm = `Basic realm="shelter", charset="UTF-8"`
)

// Authenticator verifies a username/password pair for role.
type Authenticator func(ctx context.Context, username, password, role string) (*domain.User, error)

var authFailures = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "http_auth_failures_total",
		Help: "Rejected Basic authentication attempts, by required role.",
	},
	[]string{"role"},
)

func init() {
	prometheus.MustRegister(authFailures)
}

// BasicAuth returns a middleware that requires valid credentials for role.
//
//   - Missing or wrong credentials: 401 with a WWW-Authenticate challenge.
//   - Directory failure: 500.
func BasicAuth(authn Authenticator, role domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		username, password, ok := c.Request.BasicAuth()
		if !ok {
			unauthorized(c, role, "authentication required")
			return
		}

		u, err := authn(c.Request.Context(), username, password, string(role))
		switch {
		case err == nil:
		case errors.Is(err, services.ErrAuthentication), errors.Is(err, services.ErrValidation):
			unauthorized(c, role, "invalid credentials")
			return
		default:
			LoggerFrom(c).Error().Err(err).Msg("authenticate")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"request_id": c.Writer.Header().Get(requestIDHeader),
				"code":       "internal_error",
				"message":    "internal server error",
			})
			return
		}

		uid := strconv.FormatUint(uint64(u.ID), 10)
		c.Set(ctxKeyUser, u)
		c.Set(ctxKeyUserID, uid)
		annotateLogger(c, func(l zerolog.Context) zerolog.Context {
			return l.Str("user_id", uid).Str("role", string(u.Role))
		})
		c.Next()
	}
}

// UserFrom returns the user stored by BasicAuth.
func UserFrom(c *gin.Context) (*domain.User, bool) {
	v, ok := c.Get(ctxKeyUser)
	if !ok {
		return nil, false
	}
	u, ok := v.(*domain.User)
	return u, ok && u != nil
}

func unauthorized(c *gin.Context, role domain.Role, msg string) {
	authFailures.WithLabelValues(string(role)).Inc()
	c.Header("WWW-Authenticate", basicRealm)
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"request_id": c.Writer.Header().Get(requestIDHeader),
		"code":       "unauthorized",
		"message":    msg,
	})
}
