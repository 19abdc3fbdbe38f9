package middleware

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"classlink-portal/internal/session"

	"github.com/sirupsen/logrus"
)

type contextKey string

const ClaimsKey contextKey = "sessionClaims"

const SessionCookieName = "classlink_session"

const adminLoginRedirect = "/admin/login?msg=Please+login"

func sign(value, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(value))
	return base64.URLEncoding.EncodeToString(mac.Sum(nil))
}

// CreateSessionCookie wraps an opaque session id in a signed cookie.
func CreateSessionCookie(sessionID, secret string, ttl time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    sessionID + "|" + sign(sessionID, secret),
		Path:     "/",
		HttpOnly: true,
		Secure:   false, // Set to true in production with HTTPS
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(ttl.Seconds()),
	}
}

// ClearSessionCookie expires the session cookie in the browser.
func ClearSessionCookie() *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   false, // Match CreateSessionCookie settings
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	}
}

// ValidateSessionCookie checks the signature and returns the session id.
func ValidateSessionCookie(cookie *http.Cookie, secret string) (string, error) {
	if cookie == nil {
		return "", fmt.Errorf("no session cookie")
	}

	parts := strings.Split(cookie.Value, "|")
	if len(parts) != 2 || parts[0] == "" {
		return "", fmt.Errorf("invalid session format")
	}

	if !hmac.Equal([]byte(parts[1]), []byte(sign(parts[0], secret))) {
		return "", fmt.Errorf("invalid session signature")
	}
	return parts[0], nil
}

// SessionFromRequest resolves the request's cookie to a live session. It
// returns session.ErrSessionNotFound for a missing, forged or expired session.
func SessionFromRequest(r *http.Request, sessions session.Store, secret string) (string, *session.Claims, error) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return "", nil, session.ErrSessionNotFound
	}
	id, err := ValidateSessionCookie(cookie, secret)
	if err != nil {
		return "", nil, session.ErrSessionNotFound
	}
	claims, err := sessions.Get(r.Context(), id)
	if err != nil {
		return "", nil, err
	}
	return id, claims, nil
}

// RequireAdmin lets requests with an admin session through and redirects
// everything else to the admin login page.
func RequireAdmin(sessions session.Store, secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, claims, err := SessionFromRequest(r, sessions, secret)
			if err != nil && !errors.Is(err, session.ErrSessionNotFound) {
				InternalError(w, r, err)
				return
			}
			if err != nil || !claims.IsAdmin() {
				logrus.WithField("path", r.URL.Path).Debug("Admin not logged in, redirecting")
				http.Redirect(w, r, adminLoginRedirect, http.StatusSeeOther)
				return
			}

			ctx := context.WithValue(r.Context(), ClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetClaims(r *http.Request) *session.Claims {
	if val, ok := r.Context().Value(ClaimsKey).(*session.Claims); ok {
		return val
	}
	return nil
}
