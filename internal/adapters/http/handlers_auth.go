package web

import (
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"schooladmin/internal/adapters/http/middleware"
	"schooladmin/internal/application/orchestrators"
	"schooladmin/internal/application/validation"
	"schooladmin/internal/screens/login"
)

// loginPage is the data for login.html.
type loginPage struct {
	Username    string
	Errors      validation.FieldErrors
	SubmitLabel string
	BusyLabel   string
}

func newLoginPage(username string, errs validation.FieldErrors) loginPage {
	return loginPage{Username: username, Errors: errs, SubmitLabel: login.LabelIdle, BusyLabel: login.LabelSubmitting}
}

// handleLoginPage handles GET /admin/login
func handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetSessionFromContext(r.Context()); ok && !middleware.WantsJSON(r) {
		http.Redirect(w, r, "/admin/sections", http.StatusSeeOther)
		return
	}
	renderTemplate(w, r, "login.html", newLoginPage("", nil))
}

// handleLogin handles POST /admin/login
func handleLogin(w http.ResponseWriter, r *http.Request) {
	var input orchestrators.LoginInput
	err := decodeBody(r, &input, func(f url.Values) {
		input.Username = f.Get("username")
		input.Password = f.Get("password")
	})
	if err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}

	result, err := orchestrators.ExecuteLogin(r.Context(), input, orchestrators.LoginDeps{
		AccountStore: stores.AccountStore,
		Alerts:       alertSender,
		AlertTo:      alertTo,
	})
	if err != nil {
		fe, ok := validation.AsFieldErrors(err)
		if !ok {
			internalError(w, r, err)
			return
		}
		if middleware.WantsJSON(r) {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"message": firstMessage(fe), "errors": fe})
			return
		}
		renderTemplateStatus(w, r, http.StatusUnprocessableEntity, "login.html", newLoginPage(input.Username, fe))
		return
	}

	// Drop any session the browser already held before issuing a new one.
	if old := middleware.SessionToken(r); old != "" {
		_ = sessions.Delete(r.Context(), old)
	}
	token, err := sessions.Create(r.Context(), middleware.Session{
		AccountID: result.AccountID,
		Username:  result.Username,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		internalError(w, r, err)
		return
	}
	middleware.SetSessionCookie(w, token, secureCookies)
	http.Redirect(w, r, "/admin/sections", http.StatusSeeOther)
}

// handleLogout handles POST /admin/logout
func handleLogout(w http.ResponseWriter, r *http.Request) {
	if token := middleware.SessionToken(r); token != "" {
		if err := sessions.Delete(r.Context(), token); err != nil {
			slog.Warn("auth_event", "event", "logout_failed", "error", err.Error())
		}
	}
	if sess, ok := middleware.GetSessionFromContext(r.Context()); ok {
		slog.Info("auth_event", "event", "logout", "account_id", sess.AccountID)
	}
	middleware.ClearSessionCookie(w, secureCookies)
	http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
}

// firstMessage picks a summary message in stable field order.
func firstMessage(fe validation.FieldErrors) string {
	for _, field := range []string{"username", "password", "name", "grade_level_id"} {
		if msg, ok := fe[field]; ok {
			return msg
		}
	}
	for _, msg := range fe {
		return msg
	}
	return ""
}
