package middleware

import (
	"net/http"

	"github.com/gorilla/securecookie"
)

const flashCookieName = "schooladmin_flash"

// Flash levels understood by the layout's toast script.
const (
	FlashSuccess = "success"
	FlashError   = "error"
)

// Flash is a one-shot toast message carried across a redirect.
type Flash struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// FlashStore signs flash messages into a short-lived cookie.
type FlashStore struct {
	codec  *securecookie.SecureCookie
	secure bool
}

// NewFlashStore creates a store signing with hashKey (32 or 64 bytes).
func NewFlashStore(hashKey []byte, secure bool) *FlashStore {
	codec := securecookie.New(hashKey, nil)
	codec.SetSerializer(securecookie.JSONEncoder{})
	codec.MaxAge(300)
	return &FlashStore{codec: codec, secure: secure}
}

// Set queues a flash for the next page render.
func (fs *FlashStore) Set(w http.ResponseWriter, f Flash) error {
	encoded, err := fs.codec.Encode(flashCookieName, f)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    encoded,
		Path:     "/",
		HttpOnly: true,
		Secure:   fs.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   300,
	})
	return nil
}

// Pop returns the pending flash, if any, and clears it.
// Tampered or expired cookies are discarded silently.
func (fs *FlashStore) Pop(w http.ResponseWriter, r *http.Request) (Flash, bool) {
	c, err := r.Cookie(flashCookieName)
	if err != nil {
		return Flash{}, false
	}
	http.SetCookie(w, &http.Cookie{Name: flashCookieName, Value: "", Path: "/", MaxAge: -1, HttpOnly: true, Secure: fs.secure})
	var f Flash
	if err := fs.codec.Decode(flashCookieName, c.Value, &f); err != nil {
		return Flash{}, false
	}
	return f, true
}
