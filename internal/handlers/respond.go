package handlers

import (
	"encoding/json"
	"net/http"
	"net/url"

	"classlink-portal/internal/middleware"

	"github.com/sirupsen/logrus"
)

func jsonResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, proxy-revalidate")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logrus.WithError(err).Error("Failed to encode JSON response")
	}
}

func jsonDetail(w http.ResponseWriter, status int, detail string) {
	jsonResponse(w, status, map[string]string{"detail": detail})
}

func internalError(w http.ResponseWriter, r *http.Request, err error) {
	middleware.InternalError(w, r, err)
}

// dashboardURL builds the redirect target after an admin action.
func dashboardURL(className, msg string) string {
	q := url.Values{}
	if className != "" {
		q.Set("class", className)
	}
	if msg != "" {
		q.Set("msg", msg)
	}
	if len(q) == 0 {
		return "/admin/dashboard"
	}
	return "/admin/dashboard?" + q.Encode()
}

func redirectToDashboard(w http.ResponseWriter, r *http.Request, className, msg string) {
	http.Redirect(w, r, dashboardURL(className, msg), http.StatusSeeOther)
}
