package middleware

import (
	"fmt"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

// InternalError reports an unexpected failure as a plain-text 500.
func InternalError(w http.ResponseWriter, r *http.Request, err error) {
	logrus.WithFields(logrus.Fields{
		"request_id": chimw.GetReqID(r.Context()),
		"path":       r.URL.Path,
	}).WithError(err).Error("Unhandled error")
	http.Error(w, fmt.Sprintf("Internal Server Error: %v", err), http.StatusInternalServerError)
}

// HTTPError writes the plain-text body used for routing failures.
func HTTPError(w http.ResponseWriter, status int) {
	http.Error(w, "HTTP Error: "+http.StatusText(status), status)
}

// Recoverer turns a panic in a handler into a 500 response.
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				InternalError(w, r, fmt.Errorf("panic: %v", rec))
			}
		}()
		next.ServeHTTP(w, r)
	})
}
