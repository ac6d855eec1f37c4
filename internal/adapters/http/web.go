package web

import (
	"context"
	"net/http"
	"time"

	"schooladmin/internal/adapters/email"
	"schooladmin/internal/adapters/http/middleware"
	accountStore "schooladmin/internal/adapters/storage/account"
	archiveStore "schooladmin/internal/adapters/storage/archive"
	sectionStore "schooladmin/internal/adapters/storage/section"
	"schooladmin/internal/metrics"
)

// Stores holds all storage dependencies.
type Stores struct {
	AccountStore accountStore.Store
	SectionStore sectionStore.Store
	ArchiveStore archiveStore.Store
}

// Pinger reports whether the database is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Options configures the handler chain.
type Options struct {
	CSRFKey        []byte // 32 bytes
	Secure         bool   // production: HTTPS-only cookies
	TrustedOrigins []string
	Sessions       middleware.SessionStore // nil = in-memory
	AlertSender    email.Sender            // nil = no lockout alerts
	AlertTo        string
	RateLimit      int // mutating requests per second per IP; 0 = default
	SlowRequest    time.Duration
	Health         Pinger // nil = always healthy
}

// DefaultRateLimit is used when Options.RateLimit is zero.
const DefaultRateLimit = 10

// Global stores instance (set by NewMux)
var stores *Stores

// Global session store instance
var sessions middleware.SessionStore

// Global flash store instance
var flashes *middleware.FlashStore

// Lockout alert delivery
var alertSender email.Sender
var alertTo string

var secureCookies bool

var healthPinger Pinger

// NewMux wires HTTP handlers for the app. The returned func stops background
// work owned by the handler chain.
func NewMux(s *Stores, opts Options) (http.Handler, func()) {
	stores = s
	sessions = opts.Sessions
	if sessions == nil {
		sessions = middleware.NewMemorySessionStore()
	}
	flashes = middleware.NewFlashStore(opts.CSRFKey, opts.Secure)
	alertSender = opts.AlertSender
	alertTo = opts.AlertTo
	secureCookies = opts.Secure
	healthPinger = opts.Health

	mux := http.NewServeMux()
	registerRoutes(mux)

	rate := opts.RateLimit
	if rate <= 0 {
		rate = DefaultRateLimit
	}
	slow := opts.SlowRequest
	if slow <= 0 {
		slow = middleware.DefaultSlowRequest
	}
	limiter := middleware.NewRateLimiter(rate, time.Second)

	// Timing -> RateLimit -> Auth -> CSRF -> SecurityHeaders -> Mux
	h := middleware.Chain(mux,
		middleware.SecurityHeaders,
		middleware.CSRF(middleware.CSRFConfig{Key: opts.CSRFKey, Secure: opts.Secure, TrustedOrigins: opts.TrustedOrigins}),
		middleware.Auth(sessions),
		middleware.RateLimit(limiter),
		middleware.Timing(slow),
	)
	return h, limiter.Close
}

func registerRoutes(mux *http.ServeMux) {
	admin := func(h http.HandlerFunc) http.Handler { return middleware.RequireAuth(h) }

	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/admin/sections", http.StatusSeeOther)
	})
	mux.HandleFunc("GET /admin/login", handleLoginPage)
	mux.HandleFunc("POST /admin/login", handleLogin)
	mux.HandleFunc("POST /admin/logout", handleLogout)

	mux.Handle("GET /admin/archives", admin(handleArchives))
	mux.Handle("GET /admin/archives/{id}/export", admin(handleArchiveExport))

	mux.Handle("GET /admin/sections", admin(handleSections))
	mux.Handle("POST /admin/section/store", admin(handleSectionStore))
	mux.Handle("POST /admin/section/update/{id}", admin(handleSectionUpdate))
	mux.Handle("DELETE /admin/section/delete/{id}", admin(handleSectionDelete))

	mux.Handle("GET /metrics", metrics.Handler())
	mux.HandleFunc("GET /healthz", handleHealth)
}
