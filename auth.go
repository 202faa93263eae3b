package vitrine

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// SessionCookieName is the single name used by both the login route and the
// session validator.
const SessionCookieName = "admin-session"

// sessionMaxAge bounds how long an admin session stays valid.
const sessionMaxAge = 24 * time.Hour

// AuthResult is the typed outcome of a session check. The guard never panics
// across its boundary; callers branch on Valid.
type AuthResult struct {
	Valid  bool
	Reason string
}

// AuthGuard decides whether a request carries a valid admin session and
// checks login passwords against a bcrypt hash.
type AuthGuard struct {
	passwordHash []byte
	secure       bool
}

// NewAuthGuard creates a guard from a bcrypt password hash. secure controls
// the Secure attribute on issued cookies.
func NewAuthGuard(passwordHash string, secure bool) *AuthGuard {
	return &AuthGuard{passwordHash: []byte(passwordHash), secure: secure}
}

// CheckPassword compares the supplied password against the stored hash.
// bcrypt's comparison is constant-time; raw strings are never compared.
func (g *AuthGuard) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword(g.passwordHash, []byte(password)) == nil
}

// HashPassword produces a bcrypt hash suitable for AuthGuard.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// NewSessionToken returns an opaque token: 32 random bytes hex-encoded,
// joined with the issue timestamp in unix seconds.
func NewSessionToken() (string, error) {
	var b [32]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	return hex.EncodeToString(b[:]) + "." + strconv.FormatInt(time.Now().Unix(), 10), nil
}

// SessionCookie wraps a token in the admin session cookie.
func (g *AuthGuard) SessionCookie(token string) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(sessionMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   g.secure,
		SameSite: http.SameSiteStrictMode,
	}
}

// ClearSessionCookie returns a cookie that expires the admin session.
func (g *AuthGuard) ClearSessionCookie() *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   g.secure,
		SameSite: http.SameSiteStrictMode,
	}
}

// ValidateRequest checks the inbound request's session cookie. Every failure
// mode maps to "not authenticated", never to an error.
func (g *AuthGuard) ValidateRequest(r *http.Request) AuthResult {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return AuthResult{Reason: "missing session cookie"}
	}
	return validateToken(cookie.Value, time.Now())
}

func validateToken(token string, now time.Time) AuthResult {
	sep := strings.LastIndexByte(token, '.')
	if sep < 1 || sep == len(token)-1 {
		return AuthResult{Reason: "malformed session token"}
	}
	ts, err := strconv.ParseInt(token[sep+1:], 10, 64)
	if err != nil {
		return AuthResult{Reason: "malformed session token"}
	}
	age := now.Sub(time.Unix(ts, 0))
	if age < 0 {
		return AuthResult{Reason: "session timestamp in the future"}
	}
	if age >= sessionMaxAge {
		return AuthResult{Reason: "session expired"}
	}
	return AuthResult{Valid: true}
}
