package handlers

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"time"

	"classlink-portal/internal/config"
	"classlink-portal/internal/middleware"
	"classlink-portal/internal/session"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// HashAdminPassword returns the bcrypt hash the admin login is checked
// against. A configured hash wins over the plain password.
func HashAdminPassword(cfg *config.Config) ([]byte, error) {
	if cfg.AdminPasswordHash != "" {
		if _, err := bcrypt.Cost([]byte(cfg.AdminPasswordHash)); err != nil {
			return nil, fmt.Errorf("invalid ADMIN_PASSWORD_HASH: %w", err)
		}
		return []byte(cfg.AdminPasswordHash), nil
	}
	return bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
}

type AdminAuthHandler struct {
	cfg          *config.Config
	sessions     session.Store
	passwordHash []byte
}

func NewAdminAuthHandler(cfg *config.Config, sessions session.Store, passwordHash []byte) *AdminAuthHandler {
	return &AdminAuthHandler{cfg: cfg, sessions: sessions, passwordHash: passwordHash}
}

// LoginForm renders the admin login page, or skips it for a live session.
func (h *AdminAuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	if _, claims, err := middleware.SessionFromRequest(r, h.sessions, h.cfg.SessionSecret); err == nil && claims.IsAdmin() {
		http.Redirect(w, r, "/admin/dashboard", http.StatusSeeOther)
		return
	}
	renderTemplate(w, r, "admin_login.html", map[string]interface{}{
		"Title": "Admin Login",
		"Msg":   r.URL.Query().Get("msg"),
	})
}

func (h *AdminAuthHandler) checkCredentials(username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(h.cfg.AdminUsername)) == 1
	passOK := bcrypt.CompareHashAndPassword(h.passwordHash, []byte(password)) == nil
	return userOK && passOK
}

func (h *AdminAuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	username := r.FormValue("username")
	if !h.checkCredentials(username, r.FormValue("password")) {
		logrus.WithField("username", username).Warn("Admin login failed")
		http.Redirect(w, r, "/admin/login?msg=Invalid+credentials", http.StatusSeeOther)
		return
	}

	now := time.Now()
	id, err := h.sessions.Create(r.Context(), session.Claims{
		Username: username,
		Role:     session.RoleAdmin,
		IssuedAt: now,
	})
	if err != nil {
		internalError(w, r, fmt.Errorf("failed to create session: %w", err))
		return
	}

	logrus.WithField("username", username).Info("Admin logged in")
	http.SetCookie(w, middleware.CreateSessionCookie(id, h.cfg.SessionSecret, h.cfg.SessionTTL))
	http.Redirect(w, r, "/admin/dashboard", http.StatusSeeOther)
}

// Logout drops the server-side session and expires the cookie.
func (h *AdminAuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil {
		if id, err := middleware.ValidateSessionCookie(cookie, h.cfg.SessionSecret); err == nil {
			if err := h.sessions.Delete(r.Context(), id); err != nil {
				logrus.WithError(err).Warn("Failed to delete session")
			}
		}
	}
	http.SetCookie(w, middleware.ClearSessionCookie())
	http.Redirect(w, r, "/admin/login?msg=Logged+out", http.StatusSeeOther)
}
