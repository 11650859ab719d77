package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"golang.org/x/sync/errgroup"

	"interndesk/internal/auth"
	"interndesk/internal/chat"
	"interndesk/internal/config"
	"interndesk/internal/events"
	"interndesk/internal/httpapi"
	"interndesk/internal/logging"
	"interndesk/internal/mail"
	"interndesk/internal/maintenance"
	"interndesk/internal/metrics"
	"interndesk/internal/rank"
	"interndesk/internal/secrets"
	"interndesk/internal/store"
)

func main() {
	if err := run(); err != nil {
		logging.Fatal().Err(err).Msg("interndesk stopped")
	}
}

func run() error {
	config.LoadDotEnv(".env")

	dataDir := os.Getenv("INTERNDESK_DATA_DIR")
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return err
	}

	defaultCfgPath := filepath.Join("config", "config.yml")
	userCfgPath, err := config.EnsureUserConfig(dataDir, defaultCfgPath)
	if err != nil {
		return fmt.Errorf("config bootstrap: %w", err)
	}

	// File, then environment, then keyring. Reused by the admin config endpoint.
	loadCfg := func() (config.Config, error) {
		cfg, err := config.Load(userCfgPath)
		if err != nil {
			return cfg, err
		}
		config.OverlayEnv(&cfg)
		secrets.Resolve(&cfg)
		cfg, vr := config.NormalizeAndValidate(cfg)
		for _, w := range vr.Warnings {
			logging.Warn().Str("path", userCfgPath).Msg(w)
		}
		if !vr.OK() {
			return cfg, fmt.Errorf("invalid config: %s", strings.Join(vr.Errors, "; "))
		}
		return cfg, nil
	}

	cfg, err := loadCfg()
	if err != nil {
		return fmt.Errorf("config load (%s): %w", userCfgPath, err)
	}
	logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})

	var cfgVal atomic.Value // stores config.Config
	cfgVal.Store(cfg)

	if cfg.App.DataDir != "" && cfg.App.DataDir != dataDir {
		dataDir = cfg.App.DataDir
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return err
		}
	}

	lock := flock.New(filepath.Join(dataDir, "interndesk.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("lock data dir: %w", err)
	}
	if !locked {
		return errors.New("another interndesk instance is using " + dataDir)
	}
	defer func() { _ = lock.Unlock() }()

	dbPath := filepath.Join(dataDir, "interndesk.db")
	db, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Auth.AdminPassword != "" {
		hash, err := auth.HashPassword(cfg.Auth.AdminPassword, cfg.Auth.BcryptCost)
		if err != nil {
			return err
		}
		created, err := db.EnsureAdmin(ctx, cfg.Auth.AdminEmail, hash)
		if err != nil {
			return fmt.Errorf("seed admin: %w", err)
		}
		if created {
			logging.Info().Str("email", cfg.Auth.AdminEmail).Msg("admin account created")
		}
	}

	tokens, err := auth.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.SessionTTL, cfg.Auth.ActivationTTL)
	if err != nil {
		return fmt.Errorf("auth: %w (set JWT_SECRET or store it in the keyring)", err)
	}

	mailer, err := mail.New(cfg)
	if err != nil {
		return fmt.Errorf("mail: %w", err)
	}

	var gen chat.Generator = chat.Unavailable{}
	if cfg.AI.APIKey != "" {
		g, err := chat.NewGemini(ctx, cfg.AI.APIKey, cfg.AI.Model, cfg.AI.Timeout)
		if err != nil {
			logging.Warn().Err(err).Msg("gemini client unavailable; chat will answer catalog intents only")
		} else {
			gen = g
		}
	} else {
		logging.Warn().Msg("no gemini api key; chat will answer catalog intents only")
	}

	limiter := httpapi.NewClientLimiter(cfg.Auth.RateLimitPerSec, cfg.Auth.RateLimitBurst, cfg.Auth.TrustedProxies)

	runner := maintenance.New(
		maintenance.Job{Name: "catalog_metrics", Timeout: 10 * time.Second, Run: func(ctx context.Context) error {
			return metrics.RefreshCatalog(ctx, db)
		}},
		maintenance.Job{Name: "wal_checkpoint", Timeout: 30 * time.Second, Run: db.Checkpoint},
		maintenance.Job{Name: "prune_limiters", Run: func(context.Context) error {
			if n := limiter.Prune(); n > 0 {
				logging.Debug().Int("pruned", n).Msg("idle client limiters dropped")
			}
			return nil
		}},
	)

	hub := events.NewHub()
	handler := httpapi.NewHandler(httpapi.Deps{
		Store:       db,
		Hub:         hub,
		Tokens:      tokens,
		Mailer:      mailer,
		Engine:      rank.Engine{},
		Assistant:   &chat.Assistant{Catalog: db, Generator: gen, HistoryLimit: cfg.AI.HistoryLimit},
		Generator:   gen,
		Maintenance: runner,
		Limiter:     limiter,
		CfgVal:      &cfgVal,
		UserCfgPath: userCfgPath,
		LoadCfg:     loadCfg,
	})

	addr := net.JoinHostPort(cfg.App.Host, strconv.Itoa(cfg.App.Port))
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		// Cancelled on signal so open SSE streams let Shutdown finish.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logging.Info().Str("addr", addr).Str("db", dbPath).Msg("interndesk listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		runner.Start(gctx, time.Duration(cfg.Metrics.RefreshSeconds)*time.Second)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logging.Info().Msg("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
