package handlers

import (
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"classlink-portal/internal/views"

	"github.com/sirupsen/logrus"
)

var (
	templates     *template.Template
	templatesErr  error
	templatesOnce sync.Once
)

// Content template and layout for every page.
var pages = map[string]struct {
	content string
	layout  string
}{
	"login.html":             {content: "login_content", layout: "auth_layout"},
	"student_dashboard.html": {content: "student_dashboard_content", layout: "auth_layout"},
	"admin_login.html":       {content: "admin_login_content", layout: "auth_layout"},
	"admin_dashboard.html":   {content: "admin_dashboard_content", layout: "layout"},
}

// InitTemplates parses the embedded templates. Calling it at startup
// surfaces template errors before the first request.
func InitTemplates() error {
	templatesOnce.Do(func() {
		entries, err := fs.ReadDir(views.TemplatesFS, ".")
		if err != nil {
			templatesErr = fmt.Errorf("failed to read template directory: %w", err)
			return
		}
		var files []string
		for _, entry := range entries {
			if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".html") {
				files = append(files, entry.Name())
			}
		}
		if len(files) == 0 {
			templatesErr = fmt.Errorf("no template files found in embedded filesystem")
			return
		}
		logrus.WithField("files", files).Debug("Parsing templates")

		funcMap := template.FuncMap{
			"urlquery": url.QueryEscape,
		}
		templates, templatesErr = template.New("").Funcs(funcMap).ParseFS(views.TemplatesFS, "*.html")
	})
	return templatesErr
}

func renderTemplate(w http.ResponseWriter, r *http.Request, name string, data map[string]interface{}) {
	if err := InitTemplates(); err != nil {
		internalError(w, r, err)
		return
	}

	page, ok := pages[name]
	if !ok {
		internalError(w, r, fmt.Errorf("no template mapping for %s", name))
		return
	}
	if templates.Lookup(page.content) == nil {
		internalError(w, r, fmt.Errorf("content template %q not found", page.content))
		return
	}

	if data == nil {
		data = map[string]interface{}{}
	}
	data["ContentTemplate"] = page.content

	// Render into a buffer so a failing template never leaves a half-written page.
	var buf strings.Builder
	if err := templates.ExecuteTemplate(&buf, page.layout, data); err != nil {
		internalError(w, r, fmt.Errorf("template execute error: %w", err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(buf.String()))
}
