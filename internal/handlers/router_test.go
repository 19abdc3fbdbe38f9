package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"classlink-portal/internal/config"
	"classlink-portal/internal/gateway"
	"classlink-portal/internal/links"
	"classlink-portal/internal/middleware"
	"classlink-portal/internal/models"
	"classlink-portal/internal/pagination"
	"classlink-portal/internal/roster"
	"classlink-portal/internal/session"
	"classlink-portal/internal/tester"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type testApp struct {
	handler http.Handler
	store   *models.Store
	roster  *roster.Manager
	links   *links.Manager
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	store := tester.OpenStore(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	cfg := &config.Config{
		SessionSecret:     "test-secret",
		SessionTTL:        time.Hour,
		AdminUsername:     "admin",
		AdminPasswordHash: string(hash),
		DefaultPageSize:   20,
		MaxPageSize:       200,
		StaticDir:         t.TempDir(),
	}
	adminHash, err := HashAdminPassword(cfg)
	require.NoError(t, err)

	app := &testApp{
		store:  store,
		roster: roster.NewManager(store),
		links:  links.NewManager(store),
	}
	app.handler = NewRouter(Deps{
		Config:            cfg,
		Store:             store,
		Roster:            app.roster,
		Links:             app.links,
		Gateway:           gateway.New(store),
		Sessions:          session.NewMemoryStore(time.Hour),
		AdminPasswordHash: adminHash,
	})
	return app
}

func (a *testApp) do(req *http.Request, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func (a *testApp) postForm(path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return a.do(req, cookies...)
}

func (a *testApp) adminCookie(t *testing.T) *http.Cookie {
	t.Helper()
	rec := a.postForm("/admin/login", url.Values{"username": {"admin"}, "password": {"s3cret"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/admin/dashboard", rec.Header().Get("Location"))
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.SessionCookieName {
			return c
		}
	}
	t.Fatal("no session cookie set")
	return nil
}

func (a *testApp) seed(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	_, err := a.roster.AddStudent(ctx, "Ada Obi", "A001", "JSS1")
	require.NoError(t, err)
	_, err = a.roster.AddStudent(ctx, "Bola Ade", "B001", "JSS2")
	require.NoError(t, err)
	link, err := a.links.CreateLink(ctx, "JSS1 form", "https://forms.example/jss1", "JSS1")
	require.NoError(t, err)
	_, err = a.links.SetActiveLink(ctx, strconv.FormatUint(uint64(link.ID), 10), "JSS1")
	require.NoError(t, err)
}

func TestBrowserLogin(t *testing.T) {
	app := newTestApp(t)
	app.seed(t)

	rec := app.postForm("/login", url.Values{"username": {"A001"}})
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://forms.example/jss1", rec.Header().Get("Location"))

	rec = app.postForm("/login", url.Values{"admission_number": {" A001 "}})
	assert.Equal(t, http.StatusFound, rec.Code)

	rec = app.postForm("/login", url.Values{"username": {"Z999"}})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid Admission Number.")

	rec = app.postForm("/login", url.Values{"username": {"B001"}})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "No active form link set.")
	assert.Contains(t, rec.Body.String(), "Bola Ade")
}

func TestStudentLoginAPI(t *testing.T) {
	app := newTestApp(t)
	app.seed(t)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantKey    string
		wantValue  string
	}{
		{name: "missing field", body: `{}`, wantStatus: http.StatusBadRequest, wantKey: "detail", wantValue: "Admission number is required."},
		{name: "blank field", body: `{"admission_number": "  "}`, wantStatus: http.StatusBadRequest, wantKey: "detail", wantValue: "Admission number is required."},
		{name: "bad json", body: `{"admission_number":`, wantStatus: http.StatusBadRequest, wantKey: "detail", wantValue: "Invalid JSON body."},
		{name: "unknown", body: `{"admission_number": "Z999"}`, wantStatus: http.StatusUnauthorized, wantKey: "detail", wantValue: "Invalid Admission Number."},
		{name: "no active link", body: `{"admission_number": "B001"}`, wantStatus: http.StatusNotFound, wantKey: "detail", wantValue: "No form link set."},
		{name: "success", body: `{"admission_number": "A001"}`, wantStatus: http.StatusOK, wantKey: "form_link", wantValue: "https://forms.example/jss1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/student_login", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rec := app.do(req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantValue, body[tt.wantKey])
		})
	}
}

func TestStudentLoginAPIRejectsOversizedBody(t *testing.T) {
	app := newTestApp(t)
	app.seed(t)

	body := `{"admission_number": "A001", "padding": "` + strings.Repeat("x", maxLoginBodySize) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/student_login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := app.do(req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"detail":"Invalid JSON body."}`, rec.Body.String())
}

func TestDashboardRequiresLogin(t *testing.T) {
	app := newTestApp(t)
	app.seed(t)

	paths := []string{"/admin/dashboard", "/admin/dashboard?class=JSS1", "/admin/"}
	for _, path := range paths {
		rec := app.do(httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusSeeOther, rec.Code, path)
		assert.Equal(t, "/admin/login?msg=Please+login", rec.Header().Get("Location"))
		assert.NotContains(t, rec.Body.String(), "Ada Obi")
	}

	rec := app.postForm("/admin/delete_all_students", nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	n, err := app.store.CountStudents(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestAdminLoginFlow(t *testing.T) {
	app := newTestApp(t)
	app.seed(t)

	rec := app.postForm("/admin/login", url.Values{"username": {"admin"}, "password": {"wrong"}})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin/login?msg=Invalid+credentials", rec.Header().Get("Location"))

	rec = app.do(httptest.NewRequest(http.MethodGet, "/admin/login?msg=Invalid+credentials", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid credentials")

	cookie := app.adminCookie(t)

	rec = app.do(httptest.NewRequest(http.MethodGet, "/admin/login", nil), cookie)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin/dashboard", rec.Header().Get("Location"))

	rec = app.do(httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil), cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Ada Obi")
	assert.Contains(t, body, "Bola Ade")
	assert.Contains(t, body, "https://forms.example/jss1")

	rec = app.do(httptest.NewRequest(http.MethodGet, "/admin/logout", nil), cookie)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin/login?msg=Logged+out", rec.Header().Get("Location"))

	// the old cookie no longer names a live session
	rec = app.do(httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil), cookie)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
}

func TestDashboardFiltersAndPaginates(t *testing.T) {
	app := newTestApp(t)
	app.seed(t)
	cookie := app.adminCookie(t)

	rec := app.do(httptest.NewRequest(http.MethodGet, "/admin/dashboard?class=JSS2", nil), cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Bola Ade")
	assert.NotContains(t, rec.Body.String(), "Ada Obi")

	rec = app.do(httptest.NewRequest(http.MethodGet, "/admin/dashboard?page=2&page_size=1", nil), cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Bola Ade")
	assert.NotContains(t, rec.Body.String(), "Ada Obi")
	assert.Contains(t, rec.Body.String(), "Page 2 of 2")
}

func TestAdminRosterActions(t *testing.T) {
	app := newTestApp(t)
	cookie := app.adminCookie(t)
	ctx := context.Background()

	rec := app.postForm("/admin/add_student", url.Values{
		"name": {"Ada Obi"}, "admission_number": {"A001"}, "class_name": {"JSS1"},
	}, cookie)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin/dashboard?class=JSS1", rec.Header().Get("Location"))

	rec = app.postForm("/admin/add_student", url.Values{"name": {""}, "admission_number": {"A002"}}, cookie)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), "msg=Invalid+student+data")

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("csv_file", "roster.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte("name,admission_number,class_name\nBola,B001,JSS2\nAda again,A001,JSS1\n"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/admin/upload_csv", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec = app.do(req, cookie)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), "msg=Imported+1+students")

	n, err := app.store.CountStudents(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	rec = app.postForm("/admin/delete_student", url.Values{"admission_number": {"A001"}}, cookie)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	_, err = app.store.GetStudentByAdmission(ctx, "A001")
	assert.ErrorIs(t, err, models.ErrStudentNotFound)

	rec = app.postForm("/admin/delete_all_students", nil, cookie)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	n, err = app.store.CountStudents(ctx, "")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestAdminLinkActions(t *testing.T) {
	app := newTestApp(t)
	app.seed(t)
	cookie := app.adminCookie(t)
	ctx := context.Background()

	rec := app.postForm("/admin/upload_link", url.Values{
		"name": {"JSS1 term 2"}, "link": {"https://forms.example/jss1-t2"}, "class_name": {"JSS1"},
	}, cookie)
	assert.Equal(t, http.StatusSeeOther, rec.Code)

	rec = app.postForm("/admin/upload_link", url.Values{"name": {"x"}, "class_name": {"JSS1"}}, cookie)
	assert.Contains(t, rec.Header().Get("Location"), "msg=Invalid+link+data")

	page, err := app.links.ListLinks(ctx, "JSS1", pagination.Params{Page: 1, PerPage: 10})
	require.NoError(t, err)
	require.Len(t, page.Links, 2)
	newID := strconv.FormatUint(uint64(page.Links[1].ID), 10)

	rec = app.postForm("/admin/set_active_link", url.Values{"link_id": {newID}, "class_name": {"JSS1"}}, cookie)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin/dashboard?class=JSS1", rec.Header().Get("Location"))

	req := httptest.NewRequest(http.MethodPost, "/student_login", strings.NewReader(`{"admission_number":"A001"}`))
	rec = app.do(req)
	assert.Contains(t, rec.Body.String(), "https://forms.example/jss1-t2")

	for _, id := range []string{"abc", "0", "9999"} {
		rec = app.postForm("/admin/set_active_link", url.Values{"link_id": {id}, "class_name": {"JSS1"}}, cookie)
		assert.Contains(t, rec.Header().Get("Location"), "msg=Invalid+link+ID", id)
	}
	active, err := app.links.ActiveLink(ctx, "JSS1")
	require.NoError(t, err)
	assert.Equal(t, "https://forms.example/jss1-t2", active.URL)
}

func TestErrorResponses(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "HTTP Error: Not Found\n", rec.Body.String())

	rec = app.do(httptest.NewRequest(http.MethodGet, "/student_login", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "HTTP Error: Method Not Allowed\n", rec.Body.String())

	rec = app.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = app.do(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Admission Number")
}
