// Package session binds one authenticated user to a sequence of
// requests via a signed HttpOnly cookie. The cookie only carries the
// user's identifier; the user record itself is re-loaded from the store
// on every request, so privilege is always re-derived.
package session

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// CookieName is the name of the session cookie.
	CookieName = "samsonsblog_session"

	defaultTokenTTL = 24 * time.Hour
)

// ErrNoSession is returned when the request carries no valid session.
var ErrNoSession = errors.New("no active session")

// Manager issues and validates session cookies.
type Manager struct {
	secret []byte
	ttl    time.Duration
	secure bool
}

// NewManager constructs a Manager signing with the given secret.
func NewManager(secret string) *Manager {
	return &Manager{
		secret: []byte(secret),
		ttl:    defaultTokenTTL,
		secure: false,
	}
}

// Establish starts an authenticated session for the given user by
// setting a signed cookie. Any previously established session on this
// client is replaced.
func (m *Manager) Establish(w http.ResponseWriter, userID int) error {
	token, err := issueToken(userID, m.secret, m.ttl)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(m.ttl),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Clear ends the session by expiring the cookie.
func (m *Manager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ActorID returns the user id bound to the request's session. An
// absent, malformed or expired cookie yields ErrNoSession: the request
// is simply anonymous.
func (m *Manager) ActorID(r *http.Request) (int, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil || strings.TrimSpace(cookie.Value) == "" {
		return 0, ErrNoSession
	}

	subject, err := parseTokenSubject(cookie.Value, m.secret)
	if err != nil {
		return 0, ErrNoSession
	}

	id, err := strconv.Atoi(subject)
	if err != nil || id < 1 {
		return 0, ErrNoSession
	}
	return id, nil
}

func issueToken(userID int, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.Itoa(userID),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func parseTokenSubject(tokenString string, secret []byte) (string, error) {
	claims := jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return secret, nil
	})
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", errors.New("invalid token")
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return "", errors.New("missing subject")
	}
	return claims.Subject, nil
}
