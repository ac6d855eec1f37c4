package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "modernc.org/sqlite"

	emailPkg "schooladmin/internal/adapters/email"
	web "schooladmin/internal/adapters/http"
	"schooladmin/internal/adapters/http/middleware"
	"schooladmin/internal/adapters/storage"
	accountStore "schooladmin/internal/adapters/storage/account"
	archiveStore "schooladmin/internal/adapters/storage/archive"
	sectionStore "schooladmin/internal/adapters/storage/section"
	"schooladmin/internal/application/orchestrators"
	"schooladmin/internal/config"
	"schooladmin/internal/observability"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	setupLogger(cfg)

	flushSentry, err := observability.InitSentry(cfg.SentryDSN, cfg.Env, version)
	if err != nil {
		slog.Error("sentry_init_failed", "error", err.Error())
	}
	defer flushSentry()

	if err := run(cfg); err != nil {
		observability.CaptureErr(err)
		slog.Error("server_failed", "error", err.Error())
		flushSentry()
		os.Exit(1)
	}
}

func run(cfg config.Config) error {
	ctx := context.Background()

	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := storage.MigrateDB(db); err != nil {
		return err
	}
	timedDB := storage.NewTimedDB(db, cfg.SlowQuery)

	acctStore := accountStore.NewSQLiteStore(timedDB)
	secStore := sectionStore.NewSQLiteStore(timedDB)
	arcStore := archiveStore.NewSQLiteStore(timedDB)
	stores := &web.Stores{
		AccountStore: acctStore,
		SectionStore: secStore,
		ArchiveStore: arcStore,
	}

	// Seed default admin account and reference data (idempotent)
	created, err := orchestrators.ExecuteSeedAdmin(ctx,
		orchestrators.SeedAdminInput{Username: cfg.AdminUsername, Password: cfg.AdminPassword},
		orchestrators.SeedAdminDeps{AccountStore: acctStore})
	if err != nil {
		return err
	}
	if created {
		slog.Info("seed_event", "event", "admin_created", "username", cfg.AdminUsername)
	}
	if err := orchestrators.ExecuteSeedGradeLevels(ctx, secStore); err != nil {
		return err
	}

	// Sample archive for development only
	if !cfg.Production() {
		if err := orchestrators.ExecuteSeedDemoArchive(ctx, arcStore); err != nil {
			return err
		}
	}

	// Configure email sender for lockout alerts
	var sender emailPkg.Sender
	if cfg.ResendKey != "" {
		sender = emailPkg.NewResendSender(cfg.ResendKey, cfg.EmailFrom)
		slog.Info("email_sender", "provider", "resend")
	} else {
		sender = emailPkg.NewNoopSender()
		if cfg.Production() {
			slog.Warn("email_sender", "provider", "noop", "note", "SCHOOLADMIN_RESEND_KEY is not set, lockout alerts are not delivered")
		}
	}

	// Sessions: Redis when configured so restarts and replicas share them
	var sessions middleware.SessionStore = middleware.NewMemorySessionStore()
	if cfg.RedisAddr != "" {
		rs, err := middleware.NewRedisSessionStore(ctx, cfg.RedisAddr)
		if err != nil {
			return err
		}
		defer rs.Close()
		sessions = rs
		slog.Info("session_store", "backend", "redis", "addr", cfg.RedisAddr)
	}

	handler, stop := web.NewMux(stores, web.Options{
		CSRFKey:     cfg.CSRFKey,
		Secure:      cfg.Production(),
		Sessions:    sessions,
		AlertSender: sender,
		AlertTo:     cfg.AlertEmail,
		RateLimit:   cfg.RateLimit,
		SlowRequest: cfg.SlowRequest,
		Health:      timedDB,
	})
	defer stop()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server_start", "version", version, "addr", cfg.Addr, "env", cfg.Env, "schema", storage.LatestSchemaVersion())
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case sig := <-sigCh:
		slog.Info("server_stop", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// setupLogger installs the default slog logger: JSON in production, text otherwise.
func setupLogger(cfg config.Config) {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	var h slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if cfg.Production() {
		h = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(h))
}
