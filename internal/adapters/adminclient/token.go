package adminclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/net/html"
)

// ErrNoCSRFToken means the page carried no csrf-token meta tag.
var ErrNoCSRFToken = errors.New("csrf-token meta tag not found")

// CSRFToken returns the anti-forgery token, reading it from the login page's
// <meta name="csrf-token"> on first use. The token stays valid for the
// lifetime of the CSRF cookie held in the jar.
func (c *Client) CSRFToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != "" {
		return c.token, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base.String()+"/admin/login", nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "text/html")
	resp, err := c.send(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return "", statusError(resp)
	}

	token, err := MetaCSRFToken(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read csrf token: %w", err)
	}
	c.token = token
	return token, nil
}

// MetaCSRFToken scans an HTML document for <meta name="csrf-token" content="...">.
func MetaCSRFToken(r io.Reader) (string, error) {
	z := html.NewTokenizer(r)
	for {
		switch z.Next() {
		case html.ErrorToken:
			if errors.Is(z.Err(), io.EOF) {
				return "", ErrNoCSRFToken
			}
			return "", z.Err()
		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			if tok.Data != "meta" {
				continue
			}
			var name, content string
			for _, a := range tok.Attr {
				switch strings.ToLower(a.Key) {
				case "name":
					name = a.Val
				case "content":
					content = a.Val
				}
			}
			if name == "csrf-token" && content != "" {
				return content, nil
			}
		}
	}
}
