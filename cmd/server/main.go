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

	emailPkg "meetup/internal/adapters/email"
	web "meetup/internal/adapters/http"
	"meetup/internal/adapters/http/perf"
	"meetup/internal/adapters/meetupapi"
	"meetup/internal/adapters/storage"
	sessionStore "meetup/internal/adapters/storage/session"
	"meetup/internal/application/orchestrators"
	"meetup/internal/config"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

// purgeInterval is how often expired sqlite sessions are deleted.
const purgeInterval = 10 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	collector := perf.NewCollector(perf.DefaultRingSize)

	sessions, closeSessions, err := openSessions(ctx, cfg, collector)
	if err != nil {
		log.Fatalf("failed to open session store: %v", err)
	}
	defer closeSessions()

	api, err := meetupapi.New(cfg.APIBaseURL,
		meetupapi.WithCollector(collector),
		meetupapi.WithTimeout(cfg.APITimeout),
		meetupapi.WithSlowCallThreshold(cfg.SlowUpstreamMs),
	)
	if err != nil {
		log.Fatalf("invalid api base url: %v", err)
	}

	handler := web.NewMux(&web.App{
		API:           api,
		Sessions:      sessions,
		Invite:        invitationConfig(cfg),
		Collector:     collector,
		Location:      cfg.Location,
		SessionTTL:    cfg.SessionTTL,
		Notice:        cfg.Notice,
		CSRFKey:       cfg.CSRFKey,
		Secure:        cfg.IsProduction(),
		RateLimit:     cfg.RateLimit,
		SlowRequestMs: cfg.SlowRequestMs,
	})
	defer web.Close()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.Info("server_starting", "version", version, "addr", cfg.Addr, "env", cfg.Env,
			"api", cfg.APIBaseURL, "sessions", cfg.SessionBackend, "zone", cfg.Location.String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server failed: %v", err)
		}
	}()

	<-ctx.Done()
	slog.Info("server_stopping")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server_shutdown_failed", "error", err.Error())
	}
}

// openSessions builds the configured session store and its cleanup.
func openSessions(ctx context.Context, cfg config.Config, collector *perf.Collector) (sessionStore.Store, func(), error) {
	switch cfg.SessionBackend {
	case config.BackendRedis:
		rdb, err := sessionStore.DialRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, nil, err
		}
		return sessionStore.NewRedisStore(rdb), func() { _ = rdb.Close() }, nil

	case config.BackendMemory:
		if cfg.IsProduction() {
			slog.Warn("memory_sessions_in_production", "hint", "sessions are lost on restart")
		}
		return sessionStore.NewMemoryStore(), func() {}, nil

	default:
		db, err := storage.Open(cfg.SessionDB)
		if err != nil {
			return nil, nil, err
		}
		store := sessionStore.NewSQLiteStore(storage.NewTimedDB(db, collector, 0))
		purgeCtx, cancel := context.WithCancel(ctx)
		go purgeExpired(purgeCtx, store)
		return store, func() {
			cancel()
			_ = db.Close()
		}, nil
	}
}

func purgeExpired(ctx context.Context, store *sessionStore.SQLiteStore) {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := store.PurgeExpired(ctx)
			if err != nil {
				slog.Warn("session_purge_failed", "error", err.Error())
				continue
			}
			if n > 0 {
				slog.Info("sessions_purged", "count", n)
			}
		}
	}
}

// invitationConfig sends invitations through Resend when a key is set. Without
// one, development logs them through the noop sender and production disables them.
func invitationConfig(cfg config.Config) *orchestrators.InvitationConfig {
	var sender emailPkg.Sender
	switch {
	case cfg.ResendKey != "":
		sender = emailPkg.NewResendSender(cfg.ResendKey, cfg.EmailFrom)
		slog.Info("email_sender_configured", "provider", "resend")
	case cfg.IsProduction():
		slog.Warn("email_disabled", "hint", "set MEETUP_RESEND_KEY to send invitations")
		return nil
	default:
		sender = emailPkg.NewNoopSender()
		slog.Info("email_sender_configured", "provider", "noop")
	}
	return &orchestrators.InvitationConfig{
		Sender:   sender,
		From:     cfg.EmailFrom,
		ReplyTo:  cfg.ReplyTo,
		LoginURL: cfg.PublicURL + "/login",
	}
}
