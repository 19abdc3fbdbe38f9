package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"classlink-portal/internal/gateway"
	"classlink-portal/internal/models"
	"classlink-portal/internal/util"

	"github.com/go-playground/validator/v10"
)

const (
	msgInvalidAdmission = "Invalid Admission Number."
	msgNoActiveLink     = "No active form link set."

	maxLoginBodySize = 64 << 10
)

// StudentLoginRequest is the JSON body of POST /student_login.
type StudentLoginRequest struct {
	AdmissionNumber string `json:"admission_number" validate:"required"`
}

type StudentHandler struct {
	gateway  *gateway.Gateway
	validate *validator.Validate
}

func NewStudentHandler(gw *gateway.Gateway) *StudentHandler {
	return &StudentHandler{gateway: gw, validate: validator.New()}
}

// LoginForm renders the admission number form.
func (h *StudentHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	renderTemplate(w, r, "login.html", map[string]interface{}{
		"Title": "Student Login",
	})
}

// Login redirects the student to the active link of their class.
func (h *StudentHandler) Login(w http.ResponseWriter, r *http.Request) {
	admission := r.FormValue("username")
	if util.IsBlank(admission) {
		admission = r.FormValue("admission_number")
	}

	res, err := h.gateway.Resolve(r.Context(), admission)
	switch {
	case err == nil:
		http.Redirect(w, r, res.URL(), http.StatusFound)
	case errors.Is(err, models.ErrInvalidCredential):
		renderTemplate(w, r, "login.html", map[string]interface{}{
			"Title": "Student Login",
			"Msg":   msgInvalidAdmission,
		})
	case errors.Is(err, models.ErrNoActiveLink):
		renderTemplate(w, r, "student_dashboard.html", map[string]interface{}{
			"Title":   "Student Dashboard",
			"Msg":     msgNoActiveLink,
			"Student": res.Student,
		})
	default:
		internalError(w, r, err)
	}
}

// APILogin is the JSON variant of Login.
func (h *StudentHandler) APILogin(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxLoginBodySize)
	var req StudentLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonDetail(w, http.StatusBadRequest, "Invalid JSON body.")
		return
	}
	req.AdmissionNumber = util.NormalizeField(req.AdmissionNumber)
	if err := h.validate.Struct(req); err != nil {
		jsonDetail(w, http.StatusBadRequest, "Admission number is required.")
		return
	}

	res, err := h.gateway.Resolve(r.Context(), req.AdmissionNumber)
	switch {
	case err == nil:
		jsonResponse(w, http.StatusOK, map[string]string{"form_link": res.URL()})
	case errors.Is(err, models.ErrInvalidCredential):
		jsonDetail(w, http.StatusUnauthorized, msgInvalidAdmission)
	case errors.Is(err, models.ErrNoActiveLink):
		jsonDetail(w, http.StatusNotFound, "No form link set.")
	default:
		internalError(w, r, err)
	}
}
