// Package adminclient talks to the admin endpoints the way the page scripts
// do: cookie session, CSRF token from the page's meta tag, form posts with a
// method override for updates, and JSON responses.
package adminclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"schooladmin/internal/application/validation"
	"schooladmin/internal/domain/archive"
	"schooladmin/internal/domain/section"
)

// ErrTransport wraps failures where no HTTP response was received.
var ErrTransport = errors.New("admin request failed")

// StatusError is returned for any response outside 2xx.
type StatusError struct {
	Code        int
	Message     string
	FieldErrors validation.FieldErrors
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("admin request: %d %s", e.Code, e.Message)
	}
	return fmt.Sprintf("admin request: %d %s", e.Code, http.StatusText(e.Code))
}

// StatusCode returns the HTTP status.
func (e *StatusError) StatusCode() int { return e.Code }

// Unwrap exposes field errors to errors.As.
func (e *StatusError) Unwrap() error {
	if len(e.FieldErrors) == 0 {
		return nil
	}
	return e.FieldErrors
}

// Client is a session-holding admin API client. It is safe for concurrent use.
type Client struct {
	base *url.URL
	http *http.Client

	mu    sync.Mutex
	token string
}

// Option configures a Client.
type Option func(*Client)

// WithTransport sets the round tripper, e.g. an httptest server's.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) { c.http.Transport = rt }
}

// New creates a client for the server at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	c := &Client{
		base: base,
		http: &http.Client{
			Jar: jar,
			// Redirects are outcomes here, not something to follow.
			CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse },
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Login signs in. Field problems come back as a *StatusError carrying
// validation.FieldErrors.
func (c *Client) Login(ctx context.Context, username, password string) error {
	form := url.Values{"username": {username}, "password": {password}}
	if _, err := c.postForm(ctx, "/admin/login", form, nil); err != nil && !redirected(err) {
		return err
	}
	return nil
}

// Logout ends the session.
func (c *Client) Logout(ctx context.Context) error {
	if _, err := c.postForm(ctx, "/admin/logout", url.Values{}, nil); err != nil && !redirected(err) {
		return err
	}
	return nil
}

// ListSections fetches the section manager payload.
func (c *Client) ListSections(ctx context.Context) ([]section.Section, []section.GradeLevel, error) {
	var payload struct {
		Sections    []section.Section    `json:"sections"`
		GradeLevels []section.GradeLevel `json:"gradeLevels"`
	}
	if err := c.getJSON(ctx, "/admin/sections", &payload); err != nil {
		return nil, nil, err
	}
	return payload.Sections, payload.GradeLevels, nil
}

// CreateSection posts {name, grade_level_id} to the store endpoint.
func (c *Client) CreateSection(ctx context.Context, name string, gradeLevelID int64) (section.Section, error) {
	var out struct {
		Section section.Section `json:"section"`
	}
	_, err := c.postForm(ctx, "/admin/section/store", sectionForm(name, gradeLevelID), &out)
	return out.Section, err
}

// UpdateSection posts the new values with the PUT method override.
func (c *Client) UpdateSection(ctx context.Context, id int64, name string, gradeLevelID int64) (section.Section, error) {
	form := sectionForm(name, gradeLevelID)
	form.Set("_method", http.MethodPut)
	var out struct {
		Section section.Section `json:"section"`
	}
	_, err := c.postForm(ctx, "/admin/section/update/"+strconv.FormatInt(id, 10), form, &out)
	return out.Section, err
}

// DeleteSection issues DELETE with the CSRF token header. Only a 2xx
// response counts as deleted.
func (c *Client) DeleteSection(ctx context.Context, id int64) error {
	token, err := c.CSRFToken(ctx)
	if err != nil {
		return err
	}
	req, err := c.newRequest(ctx, http.MethodDelete, "/admin/section/delete/"+strconv.FormatInt(id, 10), nil)
	if err != nil {
		return err
	}
	req.Header.Set("X-CSRF-TOKEN", token)
	_, err = c.do(req, nil)
	return err
}

// ListArchives fetches the archive browser payload.
func (c *Client) ListArchives(ctx context.Context) ([]archive.Group, error) {
	var payload struct {
		ArchivesData []archive.Group `json:"archivesData"`
	}
	if err := c.getJSON(ctx, "/admin/archives", &payload); err != nil {
		return nil, err
	}
	return payload.ArchivesData, nil
}

// ExportArchive downloads one school year as an XLSX workbook.
func (c *Client) ExportArchive(ctx context.Context, schoolYearID int64) ([]byte, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/admin/archives/"+strconv.FormatInt(schoolYearID, 10)+"/export", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.send(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, statusError(resp)
	}
	return io.ReadAll(resp.Body)
}

func sectionForm(name string, gradeLevelID int64) url.Values {
	return url.Values{"name": {name}, "grade_level_id": {strconv.FormatInt(gradeLevelID, 10)}}
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	// A redirect here means the session is gone.
	_, err = c.do(req, out)
	return err
}

func (c *Client) postForm(ctx context.Context, path string, form url.Values, out any) (int, error) {
	token, err := c.CSRFToken(ctx)
	if err != nil {
		return 0, err
	}
	form.Set("_token", token)
	req, err := c.newRequest(ctx, http.MethodPost, path, strings.NewReader(form.Encode()))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req, out)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.base.String()+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c *Client) send(req *http.Request) (*http.Response, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %w", ErrTransport, req.Method, req.URL.Path, err)
	}
	return resp, nil
}

// do sends req and decodes a JSON body into out on success. It returns the
// status code; anything outside 2xx is a *StatusError.
func (c *Client) do(req *http.Request, out any) (int, error) {
	resp, err := c.send(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return resp.StatusCode, statusError(resp)
	}
	if resp.StatusCode >= 300 {
		return resp.StatusCode, &StatusError{Code: resp.StatusCode, Message: "unexpected redirect"}
	}
	if out != nil && strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("decode %s: %w", req.URL.Path, err)
		}
	}
	return resp.StatusCode, nil
}

// redirected reports whether err is a 3xx answer. Login and logout redirect
// on success.
func redirected(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code >= 300 && se.Code < 400
}

func statusError(resp *http.Response) error {
	se := &StatusError{Code: resp.StatusCode}
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		var body struct {
			Message string            `json:"message"`
			Errors  map[string]string `json:"errors"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err == nil {
			se.Message = body.Message
			if len(body.Errors) > 0 {
				se.FieldErrors = validation.FieldErrors(body.Errors)
			}
		}
	}
	return se
}
