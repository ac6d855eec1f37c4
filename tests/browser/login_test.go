//go:build browser

package browser_test

import (
	"testing"

	"github.com/playwright-community/playwright-go"

	"schooladmin/internal/application/orchestrators"
)

// TestLogin_WrongPasswordShowsFieldError checks the inline error under the username.
func TestLogin_WrongPasswordShowsFieldError(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}

	app := newTestApp(t)
	page, _ := app.newPage(t)

	if _, err := page.Goto(app.BaseURL + "/admin/login"); err != nil {
		t.Fatalf("failed to navigate to login: %v", err)
	}
	page.Locator("#username").Fill(adminUser)
	page.Locator("#password").Fill("not-the-password")
	if err := page.Locator("#loginSubmit").Click(); err != nil {
		t.Fatalf("failed to click login: %v", err)
	}

	waitText(t, page, "#username-error")
	msg, err := page.Locator("#username-error").TextContent()
	if err != nil {
		t.Fatalf("failed to read error: %v", err)
	}
	if msg != orchestrators.MsgInvalidCredentials {
		t.Errorf("error = %q, want %q", msg, orchestrators.MsgInvalidCredentials)
	}

	// Username is kept, password is not
	if v, _ := page.Locator("#username").InputValue(); v != adminUser {
		t.Errorf("username = %q, want %q", v, adminUser)
	}
	if v, _ := page.Locator("#password").InputValue(); v != "" {
		t.Errorf("password was re-rendered: %q", v)
	}
}

// TestLogin_TogglePasswordVisibility checks the show/hide control.
func TestLogin_TogglePasswordVisibility(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}

	app := newTestApp(t)
	page, _ := app.newPage(t)
	if _, err := page.Goto(app.BaseURL + "/admin/login"); err != nil {
		t.Fatalf("failed to navigate to login: %v", err)
	}

	toggle := page.Locator("#togglePassword")
	if err := toggle.Click(); err != nil {
		t.Fatalf("failed to click toggle: %v", err)
	}
	if typ, _ := page.Locator("#password").GetAttribute("type"); typ != "text" {
		t.Errorf("type after first click = %q, want text", typ)
	}
	toggle.Click()
	if typ, _ := page.Locator("#password").GetAttribute("type"); typ != "password" {
		t.Errorf("type after second click = %q, want password", typ)
	}
}

// TestLogin_LogoutReturnsToLogin signs in, logs out, and expects protected pages to bounce.
func TestLogin_LogoutReturnsToLogin(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}

	app := newTestApp(t)
	page, _ := app.newPage(t)
	app.login(t, page)

	if err := page.Locator("nav button[type=submit]").Click(); err != nil {
		t.Fatalf("failed to click logout: %v", err)
	}
	if err := page.WaitForURL(app.BaseURL+"/admin/login", playwright.PageWaitForURLOptions{
		Timeout: playwright.Float(5000),
	}); err != nil {
		t.Fatalf("logout did not land on login: %v", err)
	}

	if _, err := page.Goto(app.BaseURL + "/admin/sections"); err != nil {
		t.Fatalf("failed to navigate: %v", err)
	}
	if err := page.WaitForURL(app.BaseURL+"/admin/login**", playwright.PageWaitForURLOptions{
		Timeout: playwright.Float(5000),
	}); err != nil {
		t.Errorf("sections reachable after logout: %v", err)
	}
}
