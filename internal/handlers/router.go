package handlers

import (
	"net/http"

	"classlink-portal/internal/config"
	"classlink-portal/internal/gateway"
	"classlink-portal/internal/links"
	"classlink-portal/internal/middleware"
	"classlink-portal/internal/models"
	"classlink-portal/internal/roster"
	"classlink-portal/internal/session"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// Deps are the collaborators the HTTP layer needs.
type Deps struct {
	Config            *config.Config
	Store             *models.Store
	Roster            *roster.Manager
	Links             *links.Manager
	Gateway           *gateway.Gateway
	Sessions          session.Store
	AdminPasswordHash []byte
}

func NewRouter(d Deps) http.Handler {
	student := NewStudentHandler(d.Gateway)
	auth := NewAdminAuthHandler(d.Config, d.Sessions, d.AdminPasswordHash)
	admin := NewAdminHandler(d.Config, d.Roster, d.Links)
	health := NewHealthHandler(d.Store)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.RequestLogger)
	r.Use(middleware.Recoverer)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		middleware.HTTPError(w, http.StatusNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		middleware.HTTPError(w, http.StatusMethodNotAllowed)
	})

	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(d.Config.StaticDir))))
	r.Get("/health", health.Health)

	// Students
	r.Get("/", student.LoginForm)
	r.Get("/login", student.LoginForm)
	r.Post("/login", student.Login)
	r.Post("/student_login", student.APILogin)

	// Admin
	r.Route("/admin", func(r chi.Router) {
		r.Get("/login", auth.LoginForm)
		r.Post("/login", auth.Login)
		r.Get("/logout", auth.Logout)
		r.Post("/logout", auth.Logout)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin(d.Sessions, d.Config.SessionSecret))
			r.Get("/", func(w http.ResponseWriter, r *http.Request) {
				http.Redirect(w, r, "/admin/dashboard", http.StatusSeeOther)
			})
			r.Get("/dashboard", admin.Dashboard)
			r.Post("/upload_csv", admin.UploadCSV)
			r.Post("/add_student", admin.AddStudent)
			r.Post("/delete_student", admin.DeleteStudent)
			r.Post("/delete_all_students", admin.DeleteAllStudents)
			r.Post("/upload_link", admin.UploadLink)
			r.Post("/set_active_link", admin.SetActiveLink)
		})
	})

	return r
}
