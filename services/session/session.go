// Package session carries the caller's credentials into every marketplace API call.
package session

import (
	"errors"
	"time"

	"campstay/utils"

	"github.com/golang-jwt/jwt"
)

// ErrNoSession is the precondition failure raised when a protected call is
// attempted without a usable credential. Callers redirect to login on it.
var ErrNoSession = errors.New("session: not authenticated")

// Session is the explicit credential context passed to every client call.
type Session interface {
	Token() string
	IsAuthenticated() bool
	UserID() string
}

// Require returns ErrNoSession unless sess holds a usable credential.
func Require(sess Session) error {
	if sess == nil || !sess.IsAuthenticated() {
		return ErrNoSession
	}
	return nil
}

// TokenSession is a Session backed by a bearer JWT issued by the marketplace API.
type TokenSession struct {
	token  string
	claims jwt.MapClaims
	now    func() time.Time
}

// FromBearer builds a session from a raw bearer token. A malformed token
// yields a session that reports itself unauthenticated.
func FromBearer(token string) *TokenSession {
	s := &TokenSession{token: token, now: time.Now}
	if claims, err := utils.ParseTokenClaims(token); err == nil {
		s.claims = claims
	}
	return s
}

// WithClock overrides the clock used for expiry checks.
func (s *TokenSession) WithClock(now func() time.Time) *TokenSession {
	s.now = now
	return s
}

func (s *TokenSession) Token() string { return s.token }

// IsAuthenticated reports a parsed, unexpired token with a subject.
func (s *TokenSession) IsAuthenticated() bool {
	if s == nil || s.token == "" || s.claims == nil {
		return false
	}
	if s.UserID() == "" {
		return false
	}
	return s.claims.VerifyExpiresAt(s.now().Unix(), false)
}

func (s *TokenSession) UserID() string {
	if s == nil || s.claims == nil {
		return ""
	}
	return utils.SubjectFromClaims(s.claims)
}

// Role returns the "role" claim, empty when absent.
func (s *TokenSession) Role() string {
	if s.claims == nil {
		return ""
	}
	role, _ := s.claims["role"].(string)
	return role
}

// IsAdmin reports the admin role claim.
func (s *TokenSession) IsAdmin() bool {
	return s.Role() == "admin"
}
