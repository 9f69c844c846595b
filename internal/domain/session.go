package domain

import (
	"context"
	"strings"
	"time"
)

type SessionKind string

const (
	SessionCustomer SessionKind = "customer"
	SessionStaff    SessionKind = "staff"
)

// Session identifies the caller of a request. It is minted at login as a signed
// token and handed explicitly to every service call.
type Session struct {
	Kind      SessionKind `json:"kind"`
	UserID    string      `json:"user_id"`
	Email     string      `json:"email"`
	Name      string      `json:"name"`
	ExpiresAt time.Time   `json:"expires_at"`
}

func (s Session) IsCustomer() bool { return s.Kind == SessionCustomer && s.UserID != "" }
func (s Session) IsStaff() bool    { return s.Kind == SessionStaff && s.UserID != "" }

// Owns reports whether the booking belongs to the session's customer.
func (s Session) Owns(b *Booking) bool {
	return strings.EqualFold(strings.TrimSpace(b.CustomerEmail), strings.TrimSpace(s.Email))
}

type sessionKey struct{}

// WithSession returns a copy of ctx carrying s.
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// SessionFrom extracts the session placed by WithSession.
func SessionFrom(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(Session)
	return s, ok
}
