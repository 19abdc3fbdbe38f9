package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"classlink-portal/internal/config"
	"classlink-portal/internal/links"
	"classlink-portal/internal/middleware"
	"classlink-portal/internal/models"
	"classlink-portal/internal/pagination"
	"classlink-portal/internal/roster"
	"classlink-portal/internal/util"
)

const maxUploadSize = 32 << 20

type AdminHandler struct {
	cfg    *config.Config
	roster *roster.Manager
	links  *links.Manager
}

func NewAdminHandler(cfg *config.Config, roster *roster.Manager, links *links.Manager) *AdminHandler {
	return &AdminHandler{cfg: cfg, roster: roster, links: links}
}

func (h *AdminHandler) pageOptions() pagination.Options {
	return pagination.Options{DefaultPerPage: h.cfg.DefaultPageSize, MaxPerPage: h.cfg.MaxPageSize}
}

// Dashboard renders one page of students and one page of links, both
// filtered by the class query parameter.
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()
	className := util.NormalizeField(q.Get("class"))

	studentKey := "student_page"
	if q.Get(studentKey) == "" {
		studentKey = "page"
	}
	studentParams := pagination.FromQuery(q, studentKey, h.pageOptions())
	linkParams := pagination.FromQuery(q, "link_page", h.pageOptions())

	students, err := h.roster.ListStudents(ctx, className, studentParams)
	if err != nil {
		internalError(w, r, err)
		return
	}
	linkPage, err := h.links.ListLinks(ctx, className, linkParams)
	if err != nil {
		internalError(w, r, err)
		return
	}
	classes, err := h.links.ClassNames(ctx)
	if err != nil {
		internalError(w, r, err)
		return
	}

	activeClass := className
	if activeClass == "" && len(classes) > 0 {
		activeClass = classes[0]
	}
	var active *models.LinkRecord
	if activeClass != "" {
		active, err = h.links.ActiveLink(ctx, activeClass)
		if err != nil && !errors.Is(err, models.ErrNoActiveLink) {
			internalError(w, r, err)
			return
		}
	}

	admin := ""
	if claims := middleware.GetClaims(r); claims != nil {
		admin = claims.Username
	}
	renderTemplate(w, r, "admin_dashboard.html", map[string]interface{}{
		"Title":         "Admin Dashboard",
		"Admin":         admin,
		"Msg":           q.Get("msg"),
		"Classes":       classes,
		"SelectedClass": className,
		"ActiveClass":   activeClass,
		"ActiveLink":    active,
		"StudentPage":   students,
		"LinkPage":      linkPage,
	})
}

// UploadCSV imports a roster file from the csv_file (or file) form field.
// Files ending in .xlsx are read as workbooks.
func (h *AdminHandler) UploadCSV(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		redirectToDashboard(w, r, "", "Invalid upload")
		return
	}

	file, header, err := r.FormFile("csv_file")
	if err != nil {
		file, header, err = r.FormFile("file")
	}
	if err != nil {
		redirectToDashboard(w, r, "", "No file uploaded")
		return
	}
	defer file.Close()

	summary, err := h.roster.ImportFile(r.Context(), header.Filename, file)
	if err != nil {
		if models.IsValidationError(err) {
			redirectToDashboard(w, r, "", err.Error())
			return
		}
		internalError(w, r, err)
		return
	}
	msg := fmt.Sprintf("Imported %d students, %d duplicates skipped, %d rows rejected",
		summary.Inserted, summary.Skipped, summary.Rejected+summary.Short)
	redirectToDashboard(w, r, "", msg)
}

func (h *AdminHandler) AddStudent(w http.ResponseWriter, r *http.Request) {
	className := util.NormalizeField(r.FormValue("class_name"))
	_, err := h.roster.AddStudent(r.Context(), r.FormValue("name"), r.FormValue("admission_number"), className)
	if err != nil {
		if models.IsValidationError(err) {
			redirectToDashboard(w, r, className, "Invalid student data")
			return
		}
		internalError(w, r, err)
		return
	}
	redirectToDashboard(w, r, className, "")
}

func (h *AdminHandler) DeleteStudent(w http.ResponseWriter, r *http.Request) {
	if _, err := h.roster.DeleteStudent(r.Context(), r.FormValue("admission_number")); err != nil {
		internalError(w, r, err)
		return
	}
	redirectToDashboard(w, r, util.NormalizeField(r.FormValue("class_name")), "")
}

func (h *AdminHandler) DeleteAllStudents(w http.ResponseWriter, r *http.Request) {
	if _, err := h.roster.DeleteAllStudents(r.Context()); err != nil {
		internalError(w, r, err)
		return
	}
	redirectToDashboard(w, r, "", "")
}

func (h *AdminHandler) UploadLink(w http.ResponseWriter, r *http.Request) {
	className := util.NormalizeField(r.FormValue("class_name"))
	_, err := h.links.CreateLink(r.Context(), r.FormValue("name"), r.FormValue("link"), className)
	if err != nil {
		if models.IsValidationError(err) {
			redirectToDashboard(w, r, className, "Invalid link data")
			return
		}
		internalError(w, r, err)
		return
	}
	redirectToDashboard(w, r, className, "")
}

func (h *AdminHandler) SetActiveLink(w http.ResponseWriter, r *http.Request) {
	className := util.NormalizeField(r.FormValue("class_name"))
	link, err := h.links.SetActiveLink(r.Context(), r.FormValue("link_id"), className)
	switch {
	case err == nil:
		redirectToDashboard(w, r, link.ClassName, "")
	case errors.Is(err, links.ErrClassMismatch):
		redirectToDashboard(w, r, className, "Link does not belong to that class")
	case models.IsValidationError(err), errors.Is(err, models.ErrLinkNotFound):
		redirectToDashboard(w, r, className, "Invalid link ID")
	default:
		internalError(w, r, err)
	}
}
