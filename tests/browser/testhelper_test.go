//go:build browser

package browser_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"

	_ "modernc.org/sqlite"

	web "schooladmin/internal/adapters/http"
	"schooladmin/internal/adapters/storage"
	accountStore "schooladmin/internal/adapters/storage/account"
	archiveStore "schooladmin/internal/adapters/storage/archive"
	sectionStore "schooladmin/internal/adapters/storage/section"
	"schooladmin/internal/application/orchestrators"
)

const (
	adminUser = "registrar"
	adminPass = "correct-horse-battery"
)

// testApp holds the running test server and Playwright handles.
type testApp struct {
	BaseURL string
	DB      *sql.DB
	Server  *http.Server
	PW      *playwright.Playwright
	Browser playwright.Browser
	Stores  *web.Stores
}

// newTestApp creates a fully wired app with a temp SQLite DB and starts an HTTP server.
func newTestApp(t *testing.T) *testApp {
	t.Helper()

	db, err := storage.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test DB: %v", err)
	}
	if err := storage.MigrateDB(db); err != nil {
		t.Fatalf("failed to migrate test DB: %v", err)
	}

	acctStore := accountStore.NewSQLiteStore(db)
	secStore := sectionStore.NewSQLiteStore(db)
	arcStore := archiveStore.NewSQLiteStore(db)
	stores := &web.Stores{AccountStore: acctStore, SectionStore: secStore, ArchiveStore: arcStore}

	ctx := context.Background()
	if _, err := orchestrators.ExecuteSeedAdmin(ctx,
		orchestrators.SeedAdminInput{Username: adminUser, Password: adminPass},
		orchestrators.SeedAdminDeps{AccountStore: acctStore}); err != nil {
		t.Fatalf("failed to seed admin: %v", err)
	}
	if err := orchestrators.ExecuteSeedGradeLevels(ctx, secStore); err != nil {
		t.Fatalf("failed to seed grade levels: %v", err)
	}
	if err := orchestrators.ExecuteSeedDemoArchive(ctx, arcStore); err != nil {
		t.Fatalf("failed to seed archive: %v", err)
	}

	// Find a free port
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to find free port: %v", err)
	}
	port := listener.Addr().(*net.TCPAddr).Port
	listener.Close()

	handler, stop := web.NewMux(stores, web.Options{
		CSRFKey:        []byte("0123456789abcdef0123456789abcdef"),
		TrustedOrigins: []string{fmt.Sprintf("127.0.0.1:%d", port), fmt.Sprintf("localhost:%d", port)},
		RateLimit:      1000,
		Health:         db,
	})
	srv := &http.Server{
		Addr:    fmt.Sprintf("127.0.0.1:%d", port),
		Handler: handler,
	}
	go func() {
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Printf("test server error: %v", err)
		}
	}()

	// Wait for server to be ready
	baseURL := fmt.Sprintf("http://127.0.0.1:%d", port)
	for i := 0; i < 50; i++ {
		resp, err := http.Get(baseURL + "/healthz")
		if err == nil {
			resp.Body.Close()
			break
		}
		time.Sleep(100 * time.Millisecond)
	}

	pw, err := playwright.Run()
	if err != nil {
		t.Fatalf("failed to start Playwright: %v", err)
	}
	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
	})
	if err != nil {
		t.Fatalf("failed to launch browser: %v", err)
	}

	t.Cleanup(func() {
		browser.Close()
		pw.Stop()
		srv.Close()
		stop()
		db.Close()
	})

	return &testApp{
		BaseURL: baseURL,
		DB:      db,
		Server:  srv,
		PW:      pw,
		Browser: browser,
		Stores:  stores,
	}
}

// dialogLog records dialog messages; Playwright delivers them on its own goroutine.
type dialogLog struct {
	mu   sync.Mutex
	msgs []string
}

func (l *dialogLog) add(msg string) {
	l.mu.Lock()
	l.msgs = append(l.msgs, msg)
	l.mu.Unlock()
}

// Messages returns the dialogs seen so far, oldest first.
func (l *dialogLog) Messages() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.msgs...)
}

// newPage creates a new browser page (tab). Confirm and alert dialogs are
// accepted and recorded.
func (a *testApp) newPage(t *testing.T) (playwright.Page, *dialogLog) {
	t.Helper()
	page, err := a.Browser.NewPage()
	if err != nil {
		t.Fatalf("failed to create page: %v", err)
	}
	t.Cleanup(func() { page.Close() })

	dialogs := &dialogLog{}
	page.OnDialog(func(d playwright.Dialog) {
		dialogs.add(d.Message())
		d.Accept()
	})
	return page, dialogs
}

// login signs in as the seeded admin and waits for the sections page.
func (a *testApp) login(t *testing.T, page playwright.Page) {
	t.Helper()
	if _, err := page.Goto(a.BaseURL + "/admin/login"); err != nil {
		t.Fatalf("failed to navigate to login: %v", err)
	}
	if err := page.Locator("#username").Fill(adminUser); err != nil {
		t.Fatalf("failed to fill username: %v", err)
	}
	if err := page.Locator("#password").Fill(adminPass); err != nil {
		t.Fatalf("failed to fill password: %v", err)
	}
	if err := page.Locator("#loginSubmit").Click(); err != nil {
		t.Fatalf("failed to click login: %v", err)
	}
	if err := page.WaitForURL(a.BaseURL+"/admin/sections", playwright.PageWaitForURLOptions{
		Timeout: playwright.Float(10000),
	}); err != nil {
		t.Fatalf("login did not redirect to sections: %v", err)
	}
}

// waitText fails the test unless selector shows up within five seconds.
func waitText(t *testing.T, page playwright.Page, selector string) {
	t.Helper()
	err := page.Locator(selector).First().WaitFor(playwright.LocatorWaitForOptions{
		Timeout: playwright.Float(5000),
	})
	if err != nil {
		t.Fatalf("%s did not appear: %v", selector, err)
	}
}
