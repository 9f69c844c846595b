package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"azoom-rental-backend/internal/domain"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

const (
	tokenIssuer   = "azoom-auth"
	tokenAudience = "azoom-api"
)

// SessionClaims carries a domain.Session inside a signed token
type SessionClaims struct {
	Kind  domain.SessionKind `json:"kind"`
	Email string             `json:"email"`
	Name  string             `json:"name,omitempty"`
	jwt.RegisteredClaims
}

type TokenManager interface {
	IssueSession(kind domain.SessionKind, userID, email, name string) (string, domain.Session, error)
	ValidateToken(tokenString string) (domain.Session, error)
}

type tokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenManager(secret string, ttl time.Duration) TokenManager {
	return &tokenManager{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

func (m *tokenManager) IssueSession(kind domain.SessionKind, userID, email, name string) (string, domain.Session, error) {
	now := m.now()
	expires := now.Add(m.ttl)
	claims := SessionClaims{
		Kind:  kind,
		Email: email,
		Name:  name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
			Audience:  jwt.ClaimStrings{tokenAudience},
			ID:        uuid.NewString(),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", domain.Session{}, err
	}
	return token, sessionFromClaims(&claims), nil
}

func (m *tokenManager) ValidateToken(tokenString string) (domain.Session, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	},
		jwt.WithIssuer(tokenIssuer),
		jwt.WithAudience(tokenAudience),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return domain.Session{}, ErrExpiredToken
		}
		return domain.Session{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return domain.Session{}, ErrInvalidToken
	}
	switch claims.Kind {
	case domain.SessionCustomer, domain.SessionStaff:
	default:
		return domain.Session{}, ErrInvalidToken
	}
	return sessionFromClaims(claims), nil
}

func sessionFromClaims(c *SessionClaims) domain.Session {
	s := domain.Session{
		Kind:   c.Kind,
		UserID: c.Subject,
		Email:  c.Email,
		Name:   c.Name,
	}
	if c.ExpiresAt != nil {
		s.ExpiresAt = c.ExpiresAt.Time
	}
	return s
}
