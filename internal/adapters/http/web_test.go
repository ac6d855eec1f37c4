package web

import (
	"context"
	"encoding/json"
	"errors"
	"html"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"schooladmin/internal/adapters/export"
	accountStore "schooladmin/internal/adapters/storage/account"
	archiveStore "schooladmin/internal/adapters/storage/archive"
	sectionStore "schooladmin/internal/adapters/storage/section"
	"schooladmin/internal/adapters/storage/storagetest"
	"schooladmin/internal/application/orchestrators"
	"schooladmin/internal/domain/section"
	sectionScreen "schooladmin/internal/screens/sections"
)

const (
	testUsername = "registrar"
	testPassword = "correct-horse-battery"
)

var testCSRFKey = []byte("0123456789abcdef0123456789abcdef")

// testServer is a fully wired app over an in-memory database.
type testServer struct {
	*httptest.Server
	Stores   *Stores
	Sections *sectionStore.SQLiteStore
}

// newTestServer seeds an admin, grade levels and, when withArchive is set,
// the demo archive.
func newTestServer(t *testing.T, withArchive bool) *testServer {
	t.Helper()
	db := storagetest.Open(t)
	ctx := context.Background()

	accounts := accountStore.NewSQLiteStore(db)
	sections := sectionStore.NewSQLiteStore(db)
	archives := archiveStore.NewSQLiteStore(db)

	if _, err := orchestrators.ExecuteSeedAdmin(ctx, orchestrators.SeedAdminInput{Username: testUsername, Password: testPassword},
		orchestrators.SeedAdminDeps{AccountStore: accounts}); err != nil {
		t.Fatalf("seed admin: %v", err)
	}
	if err := orchestrators.ExecuteSeedGradeLevels(ctx, sections); err != nil {
		t.Fatalf("seed grade levels: %v", err)
	}
	if withArchive {
		if err := orchestrators.ExecuteSeedDemoArchive(ctx, archives); err != nil {
			t.Fatalf("seed archive: %v", err)
		}
	}

	s := &Stores{AccountStore: accounts, SectionStore: sections, ArchiveStore: archives}
	h, stop := NewMux(s, Options{CSRFKey: testCSRFKey, RateLimit: 1000, Health: db})
	srv := httptest.NewServer(h)
	t.Cleanup(func() {
		srv.Close()
		stop()
	})
	return &testServer{Server: srv, Stores: s, Sections: sections}
}

// browser is a cookie-keeping client that does not follow redirects.
type browser struct {
	t     *testing.T
	base  string
	http  *http.Client
	token string
}

func (ts *testServer) browser(t *testing.T) *browser {
	t.Helper()
	jar, _ := cookiejar.New(nil)
	b := &browser{t: t, base: ts.URL, http: &http.Client{
		Jar:           jar,
		CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse },
	}}
	resp := b.do(http.MethodGet, "/admin/login", nil, nil)
	body := readBody(t, resp)
	m := regexp.MustCompile(`<meta name="csrf-token" content="([^"]+)">`).FindStringSubmatch(body)
	if m == nil {
		t.Fatalf("login page has no csrf meta tag:\n%s", body)
	}
	b.token = html.UnescapeString(m[1])
	return b
}

func (ts *testServer) loggedIn(t *testing.T) *browser {
	t.Helper()
	b := ts.browser(t)
	resp := b.postForm("/admin/login", url.Values{"username": {testUsername}, "password": {testPassword}}, false)
	resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("login status = %d, want 303", resp.StatusCode)
	}
	return b
}

func (b *browser) do(method, path string, body io.Reader, header http.Header) *http.Response {
	b.t.Helper()
	req, err := http.NewRequest(method, b.base+path, body)
	if err != nil {
		b.t.Fatal(err)
	}
	for k, v := range header {
		req.Header[k] = v
	}
	resp, err := b.http.Do(req)
	if err != nil {
		b.t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

func (b *browser) getJSON(path string) *http.Response {
	return b.do(http.MethodGet, path, nil, http.Header{"Accept": {"application/json"}})
}

func (b *browser) postForm(path string, form url.Values, wantJSON bool) *http.Response {
	form.Set("_token", b.token)
	h := http.Header{"Content-Type": {"application/x-www-form-urlencoded"}}
	if wantJSON {
		h.Set("Accept", "application/json")
	}
	return b.do(http.MethodPost, path, strings.NewReader(form.Encode()), h)
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

func decodeJSON(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode: %v", err)
	}
}

func gradeID(t *testing.T, ts *testServer, name string) int64 {
	t.Helper()
	levels, err := ts.Sections.ListGradeLevels(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	for _, g := range levels {
		if g.Name == name {
			return g.ID
		}
	}
	t.Fatalf("grade level %q not seeded", name)
	return 0
}

// --- Tests: /admin/login ---

// TestLogin_Success verifies a good login redirects to the section manager
// and the session then opens protected pages.
func TestLogin_Success(t *testing.T) {
	ts := newTestServer(t, false)
	b := ts.browser(t)

	resp := b.postForm("/admin/login", url.Values{"username": {testUsername}, "password": {testPassword}}, false)
	resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther || resp.Header.Get("Location") != "/admin/sections" {
		t.Fatalf("got %d -> %q", resp.StatusCode, resp.Header.Get("Location"))
	}

	page := b.do(http.MethodGet, "/admin/sections", nil, nil)
	if page.StatusCode != http.StatusOK {
		t.Errorf("sections after login = %d", page.StatusCode)
	}
	if body := readBody(t, page); !strings.Contains(body, "Log out (registrar)") {
		t.Error("expected the layout to show the signed-in user")
	}
}

// TestLogin_Failures verifies field errors for each failure mode.
func TestLogin_Failures(t *testing.T) {
	ts := newTestServer(t, false)

	tests := []struct {
		name      string
		form      url.Values
		wantField string
		wantMsg   string
	}{
		{"wrong password", url.Values{"username": {testUsername}, "password": {"nope"}}, "username", orchestrators.MsgInvalidCredentials},
		{"unknown user", url.Values{"username": {"ghost"}, "password": {testPassword}}, "username", orchestrators.MsgInvalidCredentials},
		{"blank username", url.Values{"username": {"  "}, "password": {testPassword}}, "username", "The username field is required."},
		{"missing password", url.Values{"username": {testUsername}}, "password", "The password field is required."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := ts.browser(t)
			resp := b.postForm("/admin/login", tt.form, true)
			if resp.StatusCode != http.StatusUnprocessableEntity {
				t.Fatalf("got %d, want 422", resp.StatusCode)
			}
			var body struct {
				Errors map[string]string `json:"errors"`
			}
			decodeJSON(t, resp, &body)
			if body.Errors[tt.wantField] != tt.wantMsg {
				t.Errorf("errors = %v, want %s=%q", body.Errors, tt.wantField, tt.wantMsg)
			}
		})
	}
}

// TestLogin_HTMLFailureRerendersForm verifies page callers get the form back
// with the username kept and the message inline.
func TestLogin_HTMLFailureRerendersForm(t *testing.T) {
	ts := newTestServer(t, false)
	b := ts.browser(t)

	resp := b.postForm("/admin/login", url.Values{"username": {testUsername}, "password": {"wrong"}}, false)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("got %d, want 422", resp.StatusCode)
	}
	body := readBody(t, resp)
	if !strings.Contains(body, `value="registrar"`) {
		t.Error("expected username to be kept")
	}
	if !strings.Contains(body, `id="username-error"`) {
		t.Error("expected inline username error")
	}
}

// TestLogin_RequiresCSRFToken verifies posts without the token are refused.
func TestLogin_RequiresCSRFToken(t *testing.T) {
	ts := newTestServer(t, false)
	b := ts.browser(t)
	form := url.Values{"username": {testUsername}, "password": {testPassword}}
	resp := b.do(http.MethodPost, "/admin/login", strings.NewReader(form.Encode()),
		http.Header{"Content-Type": {"application/x-www-form-urlencoded"}})
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("got %d, want 403", resp.StatusCode)
	}
}

// TestLogout verifies the session stops working after logout.
func TestLogout(t *testing.T) {
	ts := newTestServer(t, false)
	b := ts.loggedIn(t)

	resp := b.postForm("/admin/logout", url.Values{}, false)
	resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther || resp.Header.Get("Location") != "/admin/login" {
		t.Fatalf("logout = %d -> %q", resp.StatusCode, resp.Header.Get("Location"))
	}
	after := b.getJSON("/admin/sections")
	after.Body.Close()
	if after.StatusCode != http.StatusUnauthorized {
		t.Errorf("after logout = %d, want 401", after.StatusCode)
	}
}

// --- Tests: /admin/sections ---

// TestSections_RequireAuth verifies pages redirect and JSON callers get 401.
func TestSections_RequireAuth(t *testing.T) {
	ts := newTestServer(t, false)
	b := ts.browser(t)

	page := b.do(http.MethodGet, "/admin/sections", nil, nil)
	page.Body.Close()
	if page.StatusCode != http.StatusSeeOther || page.Header.Get("Location") != "/admin/login" {
		t.Errorf("page = %d -> %q", page.StatusCode, page.Header.Get("Location"))
	}
	api := b.getJSON("/admin/sections")
	api.Body.Close()
	if api.StatusCode != http.StatusUnauthorized {
		t.Errorf("json = %d, want 401", api.StatusCode)
	}
}

// TestSections_Lifecycle walks create, list, update and delete over JSON.
func TestSections_Lifecycle(t *testing.T) {
	ts := newTestServer(t, false)
	b := ts.loggedIn(t)
	g7 := strconv.FormatInt(gradeID(t, ts, "Grade 7"), 10)
	g8 := strconv.FormatInt(gradeID(t, ts, "Grade 8"), 10)

	resp := b.postForm("/admin/section/store", url.Values{"name": {"7-Diamond"}, "grade_level_id": {g7}}, true)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("store = %d: %s", resp.StatusCode, readBody(t, resp))
	}
	var created struct {
		Section section.Section `json:"section"`
	}
	decodeJSON(t, resp, &created)
	if created.Section.ID == 0 || created.Section.Name != "7-Diamond" || created.Section.GradeLevelName() != "Grade 7" {
		t.Fatalf("created = %+v", created.Section)
	}
	id := strconv.FormatInt(created.Section.ID, 10)

	dup := b.postForm("/admin/section/store", url.Values{"name": {"7-diamond"}, "grade_level_id": {g7}}, true)
	if dup.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("duplicate store = %d, want 422", dup.StatusCode)
	}
	dup.Body.Close()

	var list struct {
		Sections    []section.Section    `json:"sections"`
		GradeLevels []section.GradeLevel `json:"gradeLevels"`
	}
	decodeJSON(t, b.getJSON("/admin/sections"), &list)
	if len(list.Sections) != 1 || len(list.GradeLevels) != len(orchestrators.GradeLevelNames) {
		t.Errorf("list = %d sections, %d grade levels", len(list.Sections), len(list.GradeLevels))
	}

	noOverride := b.postForm("/admin/section/update/"+id, url.Values{"name": {"7-Ruby"}, "grade_level_id": {g7}}, true)
	noOverride.Body.Close()
	if noOverride.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("update without override = %d, want 405", noOverride.StatusCode)
	}

	upd := b.postForm("/admin/section/update/"+id, url.Values{"_method": {"PUT"}, "name": {"8-Ruby"}, "grade_level_id": {g8}}, true)
	if upd.StatusCode != http.StatusOK {
		t.Fatalf("update = %d: %s", upd.StatusCode, readBody(t, upd))
	}
	var updated struct {
		Section section.Section `json:"section"`
	}
	decodeJSON(t, upd, &updated)
	if updated.Section.Name != "8-Ruby" || updated.Section.GradeLevelName() != "Grade 8" {
		t.Errorf("updated = %+v", updated.Section)
	}

	missing := b.postForm("/admin/section/update/9999", url.Values{"_method": {"PUT"}, "name": {"X"}, "grade_level_id": {g8}}, true)
	missing.Body.Close()
	if missing.StatusCode != http.StatusNotFound {
		t.Errorf("update missing = %d, want 404", missing.StatusCode)
	}

	del := b.do(http.MethodDelete, "/admin/section/delete/"+id, nil,
		http.Header{"X-CSRF-TOKEN": {b.token}, "Accept": {"application/json"}})
	var msg struct {
		Message string `json:"message"`
	}
	if del.StatusCode != http.StatusOK {
		t.Fatalf("delete = %d", del.StatusCode)
	}
	decodeJSON(t, del, &msg)
	if msg.Message == "" {
		t.Error("expected a delete message")
	}

	again := b.do(http.MethodDelete, "/admin/section/delete/"+id, nil, http.Header{"X-CSRF-TOKEN": {b.token}})
	again.Body.Close()
	if again.StatusCode != http.StatusNotFound {
		t.Errorf("second delete = %d, want 404", again.StatusCode)
	}
}

// TestSectionUpdate_HeaderOverride verifies X-HTTP-Method-Override works for
// JSON bodies.
func TestSectionUpdate_HeaderOverride(t *testing.T) {
	ts := newTestServer(t, false)
	b := ts.loggedIn(t)
	g7 := gradeID(t, ts, "Grade 7")
	id, err := ts.Sections.Create(context.Background(), section.Section{Name: "7-Pearl", GradeLevelID: g7})
	if err != nil {
		t.Fatal(err)
	}

	body := `{"name":"7-Opal","grade_level_id":` + strconv.FormatInt(g7, 10) + `}`
	resp := b.do(http.MethodPost, "/admin/section/update/"+strconv.FormatInt(id, 10), strings.NewReader(body), http.Header{
		"Content-Type":       {"application/json"},
		"Accept":             {"application/json"},
		"X-Csrf-Token":       {b.token},
		MethodOverrideHeader: {"PUT"},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update = %d: %s", resp.StatusCode, readBody(t, resp))
	}
	resp.Body.Close()
	got, _ := ts.Sections.GetByID(context.Background(), id)
	if got.Name != "7-Opal" {
		t.Errorf("name = %q", got.Name)
	}
}

// TestSectionStore_Validation verifies field errors for bad input.
func TestSectionStore_Validation(t *testing.T) {
	ts := newTestServer(t, false)
	b := ts.loggedIn(t)

	tests := []struct {
		name  string
		form  url.Values
		field string
	}{
		{"blank name", url.Values{"name": {"  "}, "grade_level_id": {"1"}}, "name"},
		{"no grade", url.Values{"name": {"7-Jade"}, "grade_level_id": {""}}, "grade_level_id"},
		{"unknown grade", url.Values{"name": {"7-Jade"}, "grade_level_id": {"999"}}, "grade_level_id"},
		{"too long", url.Values{"name": {strings.Repeat("x", 256)}, "grade_level_id": {"1"}}, "name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := b.postForm("/admin/section/store", tt.form, true)
			if resp.StatusCode != http.StatusUnprocessableEntity {
				t.Fatalf("got %d, want 422", resp.StatusCode)
			}
			var body struct {
				Errors map[string]string `json:"errors"`
			}
			decodeJSON(t, resp, &body)
			if body.Errors[tt.field] == "" {
				t.Errorf("errors = %v, want %s", body.Errors, tt.field)
			}
		})
	}
}

// TestSectionStore_HTML verifies page submissions redirect with a toast and
// failures re-render with the draft kept.
func TestSectionStore_HTML(t *testing.T) {
	ts := newTestServer(t, false)
	b := ts.loggedIn(t)
	g7 := strconv.FormatInt(gradeID(t, ts, "Grade 7"), 10)

	resp := b.postForm("/admin/section/store", url.Values{"name": {"7-Diamond"}, "grade_level_id": {g7}}, false)
	resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("store = %d, want 303", resp.StatusCode)
	}
	page := readBody(t, b.do(http.MethodGet, "/admin/sections", nil, nil))
	if !strings.Contains(page, "Section created successfully.") {
		t.Error("expected success toast after redirect")
	}
	if !strings.Contains(page, `class="row-even"`) {
		t.Error("expected shaded rows")
	}

	fail := b.postForm("/admin/section/store", url.Values{"name": {"7-Diamond"}, "grade_level_id": {g7}}, false)
	if fail.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("duplicate = %d, want 422", fail.StatusCode)
	}
	if body := readBody(t, fail); !strings.Contains(body, orchestrators.MsgNameTaken) {
		t.Error("expected name taken message inline")
	}
}

// TestSections_EditMode verifies ?edit= renders that row as a PUT form.
func TestSections_EditMode(t *testing.T) {
	ts := newTestServer(t, false)
	b := ts.loggedIn(t)
	id, _ := ts.Sections.Create(context.Background(), section.Section{Name: "7-Diamond", GradeLevelID: gradeID(t, ts, "Grade 7")})

	body := readBody(t, b.do(http.MethodGet, "/admin/sections?edit="+strconv.FormatInt(id, 10), nil, nil))
	if !strings.Contains(body, `action="/admin/section/update/`+strconv.FormatInt(id, 10)+`"`) {
		t.Error("expected edit form for the row")
	}
	if !strings.Contains(body, `name="_method" value="PUT"`) {
		t.Error("expected PUT override field")
	}
	if !strings.Contains(body, `value="7-Diamond"`) {
		t.Error("expected name pre-filled")
	}
}

// failingSectionStore fails writes while reads go to the real store.
type failingSectionStore struct {
	sectionStore.Store
	err error
}

func (s failingSectionStore) Create(context.Context, section.Section) (int64, error) { return 0, s.err }
func (s failingSectionStore) Update(context.Context, section.Section) error { return s.err }

// TestSectionUpdate_HTMLFailureKeepsEdit verifies a rejected page update stays
// in edit mode with the submitted values, inline errors and a blocking dialog.
func TestSectionUpdate_HTMLFailureKeepsEdit(t *testing.T) {
	ts := newTestServer(t, false)
	b := ts.loggedIn(t)
	ctx := context.Background()
	g7 := gradeID(t, ts, "Grade 7")
	id, _ := ts.Sections.Create(ctx, section.Section{Name: "7-Diamond", GradeLevelID: g7})
	if _, err := ts.Sections.Create(ctx, section.Section{Name: "7-Pearl", GradeLevelID: g7}); err != nil {
		t.Fatal(err)
	}

	resp := b.postForm("/admin/section/update/"+strconv.FormatInt(id, 10), url.Values{
		"_method":        {"PUT"},
		"name":           {"7-Pearl"},
		"grade_level_id": {strconv.FormatInt(g7, 10)},
	}, false)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("update = %d, want 422", resp.StatusCode)
	}
	body := readBody(t, resp)

	checks := []struct {
		name string
		want string
		in   bool
	}{
		{"edit form for the row", `action="/admin/section/update/` + strconv.FormatInt(id, 10) + `"`, true},
		{"submitted name kept", `<input name="name" value="7-Pearl">`, true},
		{"stored name not refilled", `<input name="name" value="7-Diamond">`, false},
		{"inline error", `id="edit-name-error">` + orchestrators.MsgNameTaken, true},
		{"blocking dialog", `id="feedbackDialog"`, true},
		{"dialog message", sectionScreen.MsgUpdateFailed, true},
		{"no toast", `class="toast`, false},
	}
	for _, c := range checks {
		if strings.Contains(body, c.want) != c.in {
			t.Errorf("%s: contains %q = %v, want %v", c.name, c.want, !c.in, c.in)
		}
	}

	got, err := ts.Sections.GetByID(ctx, id)
	if err != nil || got.Name != "7-Diamond" {
		t.Errorf("stored row = %+v, %v", got, err)
	}
}

// TestSections_HTMLServerErrors verifies write failures re-render the page
// with a blocking dialog instead of a bare error page.
func TestSections_HTMLServerErrors(t *testing.T) {
	ts := newTestServer(t, false)
	b := ts.loggedIn(t)
	grade := gradeID(t, ts, "Grade 7")
	g7 := strconv.FormatInt(grade, 10)
	id, _ := ts.Sections.Create(context.Background(), section.Section{Name: "7-Diamond", GradeLevelID: grade})
	ts.Stores.SectionStore = failingSectionStore{Store: ts.Sections, err: errors.New("disk I/O error")}

	tests := []struct {
		name  string
		path  string
		form  url.Values
		msg   string
		keeps string
	}{
		{
			name:  "create",
			path:  "/admin/section/store",
			form:  url.Values{"name": {"7-Ruby"}, "grade_level_id": {g7}},
			msg:   sectionScreen.MsgCreateFailed,
			keeps: `id="create-name" placeholder="Section name" value="7-Ruby"`,
		},
		{
			name:  "update",
			path:  "/admin/section/update/" + strconv.FormatInt(id, 10),
			form:  url.Values{"_method": {"PUT"}, "name": {"7-Opal"}, "grade_level_id": {g7}},
			msg:   sectionScreen.MsgUpdateFailed,
			keeps: `<input name="name" value="7-Opal">`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := b.postForm(tt.path, tt.form, false)
			if resp.StatusCode != http.StatusInternalServerError {
				t.Fatalf("status = %d, want 500", resp.StatusCode)
			}
			if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
				t.Errorf("Content-Type = %q, want the page", ct)
			}
			body := readBody(t, resp)
			if !strings.Contains(body, `id="feedbackDialog"`) || !strings.Contains(body, tt.msg) {
				t.Errorf("expected dialog with %q", tt.msg)
			}
			if !strings.Contains(body, tt.keeps) {
				t.Errorf("expected submitted values kept: %q", tt.keeps)
			}
		})
	}

	// JSON callers still get the generic error body.
	resp := b.postForm("/admin/section/store", url.Values{"name": {"7-Ruby"}, "grade_level_id": {g7}}, true)
	var out map[string]string
	decodeJSON(t, resp, &out)
	if resp.StatusCode != http.StatusInternalServerError || out["message"] != "Server Error" {
		t.Errorf("json = %d %v", resp.StatusCode, out)
	}
}

// --- Tests: /admin/archives ---

// TestArchives_JSON verifies the archivesData payload shape.
func TestArchives_JSON(t *testing.T) {
	ts := newTestServer(t, true)
	b := ts.loggedIn(t)

	var payload struct {
		ArchivesData []struct {
			SchoolYear struct {
				ID   int64  `json:"id"`
				Name string `json:"name"`
			} `json:"school_year"`
			Students []map[string]any `json:"students"`
			Payments []struct {
				Student     *map[string]any `json:"student"`
				AmountPaid  *float64        `json:"amount_paid"`
				PaymentDate *string         `json:"payment_date"`
			} `json:"payments"`
		} `json:"archivesData"`
	}
	decodeJSON(t, b.getJSON("/admin/archives"), &payload)
	if len(payload.ArchivesData) != 1 {
		t.Fatalf("groups = %d, want 1", len(payload.ArchivesData))
	}
	g := payload.ArchivesData[0]
	if g.SchoolYear.Name != orchestrators.DemoSchoolYear || len(g.Students) != 3 || len(g.Payments) != 4 {
		t.Errorf("group = %+v", g)
	}
	var noStudent, noDate bool
	for _, p := range g.Payments {
		noStudent = noStudent || p.Student == nil
		noDate = noDate || p.PaymentDate == nil
	}
	if !noStudent || !noDate {
		t.Error("expected null student and null date payments")
	}
}

// TestArchives_HTML verifies the empty state, tab selection and formatting.
func TestArchives_HTML(t *testing.T) {
	empty := newTestServer(t, false)
	body := readBody(t, empty.loggedIn(t).do(http.MethodGet, "/admin/archives", nil, nil))
	if !strings.Contains(body, "No archived school years.") || strings.Contains(body, "archive-panel") {
		t.Error("expected empty state without panels")
	}

	ts := newTestServer(t, true)
	b := ts.loggedIn(t)
	var payload struct {
		ArchivesData []struct {
			SchoolYear struct {
				ID int64 `json:"id"`
			} `json:"school_year"`
		} `json:"archivesData"`
	}
	decodeJSON(t, b.getJSON("/admin/archives"), &payload)
	year := strconv.FormatInt(payload.ArchivesData[0].SchoolYear.ID, 10)

	closed := readBody(t, b.do(http.MethodGet, "/admin/archives", nil, nil))
	if strings.Contains(closed, "<table>") {
		t.Error("no tab should be open by default")
	}
	if !strings.Contains(closed, "<strong>June 2024</strong>") {
		t.Error("expected remarks rendered from markdown")
	}

	open := readBody(t, b.do(http.MethodGet, "/admin/archives?year="+year+"&tab=payments", nil, nil))
	for _, want := range []string{"₱1,000.00", "Jun 5, 2023", "—", "Ana Santos"} {
		if !strings.Contains(open, want) {
			t.Errorf("payments tab missing %q", want)
		}
	}
	// The open tab's button links back to the closed state.
	if !strings.Contains(open, `href="/admin/archives" data-tab="payments"`) {
		t.Error("open tab should toggle closed")
	}
}

// TestArchiveExport verifies the workbook download and unknown ids.
func TestArchiveExport(t *testing.T) {
	ts := newTestServer(t, true)
	b := ts.loggedIn(t)
	var payload struct {
		ArchivesData []struct {
			SchoolYear struct {
				ID int64 `json:"id"`
			} `json:"school_year"`
		} `json:"archivesData"`
	}
	decodeJSON(t, b.getJSON("/admin/archives"), &payload)
	year := strconv.FormatInt(payload.ArchivesData[0].SchoolYear.ID, 10)

	resp := b.do(http.MethodGet, "/admin/archives/"+year+"/export", nil, nil)
	if resp.StatusCode != http.StatusOK || resp.Header.Get("Content-Type") != export.ContentType {
		t.Fatalf("export = %d %q", resp.StatusCode, resp.Header.Get("Content-Type"))
	}
	if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, "archive-2023-2024.xlsx") {
		t.Errorf("Content-Disposition = %q", cd)
	}
	f, err := excelize.OpenReader(resp.Body)
	resp.Body.Close()
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()
	rows, _ := f.GetRows(export.SheetStudents)
	if len(rows) != 4 {
		t.Errorf("student rows = %d, want header + 3", len(rows))
	}

	missing := b.do(http.MethodGet, "/admin/archives/9999/export", nil, nil)
	missing.Body.Close()
	if missing.StatusCode != http.StatusNotFound {
		t.Errorf("unknown export = %d, want 404", missing.StatusCode)
	}
}

// --- Tests: operational endpoints ---

// TestHealthAndMetrics verifies the unauthenticated operational endpoints.
func TestHealthAndMetrics(t *testing.T) {
	ts := newTestServer(t, false)
	b := ts.loggedIn(t)

	health := b.do(http.MethodGet, "/healthz", nil, nil)
	var status map[string]string
	decodeJSON(t, health, &status)
	if health.StatusCode != http.StatusOK || status["status"] != "ok" {
		t.Errorf("healthz = %d %v", health.StatusCode, status)
	}

	body := readBody(t, b.do(http.MethodGet, "/metrics", nil, nil))
	if !strings.Contains(body, "schooladmin_login_attempts_total") {
		t.Error("expected login counter in metrics output")
	}
}

// TestSelectionFromQuery verifies malformed selections close every tab.
func TestSelectionFromQuery(t *testing.T) {
	tests := []struct {
		query string
		open  bool
	}{
		{"year=3&tab=students", true},
		{"year=3&tab=grades", false},
		{"year=x&tab=students", false},
		{"tab=students", false},
		{"", false},
	}
	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodGet, "/admin/archives?"+tt.query, nil)
		sel := selectionFromQuery(r)
		if _, ok := sel.Current(); ok != tt.open {
			t.Errorf("%q open = %v, want %v", tt.query, ok, tt.open)
		}
	}
}
