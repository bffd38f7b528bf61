package services

import "github.com/tbourn/go-shelter-backend/internal/domain"

// Session identifies the authenticated caller of a workflow operation. It is
// produced by UserService.Session and passed explicitly into every call that
// depends on who is acting.
type Session struct {
	UserID uint
	Role   domain.Role
	Name   string
}

// IsClient reports whether the session belongs to a client.
func (s Session) IsClient() bool { return s.UserID != 0 && s.Role == domain.RoleClient }

// IsAdmin reports whether the session belongs to an administrator.
func (s Session) IsAdmin() bool { return s.UserID != 0 && s.Role == domain.RoleAdmin }
