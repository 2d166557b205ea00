// Package main provides the entry point for timecloak-server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync/atomic"
	"time"

	"github.com/yndnr/timecloak-go/internal/core/codec"
	"github.com/yndnr/timecloak-go/internal/core/service"
	"github.com/yndnr/timecloak-go/internal/infra/buildinfo"
	"github.com/yndnr/timecloak-go/internal/infra/confloader"
	"github.com/yndnr/timecloak-go/internal/infra/shutdown"
	"github.com/yndnr/timecloak-go/internal/server/config"
	"github.com/yndnr/timecloak-go/internal/server/httpserver"
	"github.com/yndnr/timecloak-go/internal/storage/replay"
	"github.com/yndnr/timecloak-go/internal/telemetry/logger"
	"github.com/yndnr/timecloak-go/internal/telemetry/metric"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configFile  = flag.String("config", "", "Path to configuration file")
		showVersion = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("timecloak-server %s\n", buildinfo.String())
		return nil
	}

	cfg, err := loadConfig(*configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stdout,
	})
	slog.SetDefault(log)

	log.Info("starting timecloak-server",
		"version", buildinfo.Version,
		"commit", buildinfo.Commit,
		"config", *configFile)

	metrics := metric.New()

	cache, err := initReplay(cfg, log, metrics)
	if err != nil {
		return fmt.Errorf("init replay cache: %w", err)
	}

	eng, err := newEngine(cfg, cache)
	if err != nil {
		return fmt.Errorf("init token engine: %w", err)
	}
	app := &application{}
	app.engine.Store(eng)

	router := httpserver.NewRouter(&httpserver.RouterConfig{
		Issuer:      app,
		Verifier:    app,
		Logger:      log,
		Metrics:     metrics,
		TokenHeader: cfg.Token.Header,
		RateLimit:   cfg.Server.RateLimit,
	})

	httpServer := httpserver.New(cfg.Server.Addr, router)

	shutdownHandler := shutdown.NewHandler(30 * time.Second)

	shutdownHandler.OnShutdown(func(ctx context.Context) error {
		log.Info("shutting down HTTP server")
		return httpServer.Shutdown(ctx)
	})

	if cache != nil {
		shutdownHandler.OnShutdown(func(context.Context) error {
			log.Info("closing replay cache")
			return cache.Close()
		})
	}

	if *configFile != "" {
		watcher, err := confloader.NewWatcher(*configFile, log)
		if err != nil {
			return fmt.Errorf("watch config: %w", err)
		}
		watcher.OnChange(func() {
			reload(*configFile, app, cache, log)
		})
		shutdownHandler.OnShutdown(func(context.Context) error {
			return watcher.Stop()
		})
	}

	go func() {
		log.Info("HTTP server listening", "addr", cfg.Server.Addr)

		var err error
		if cfg.Server.TLSCertFile != "" && cfg.Server.TLSKeyFile != "" {
			err = httpServer.ListenAndServeTLS(cfg.Server.TLSCertFile, cfg.Server.TLSKeyFile)
		} else {
			err = httpServer.ListenAndServe()
		}

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
			shutdownHandler.Trigger()
		}
	}()

	if err := shutdownHandler.Wait(); err != nil {
		log.Error("shutdown error", "error", err)
		return err
	}

	log.Info("server stopped gracefully")
	return nil
}

// engine couples an issuer and a verifier built over one codec.
type engine struct {
	issuer   *service.IssuerService
	verifier *service.VerifierService
}

// application is the hot-swappable token engine. A configuration
// reload builds a fresh engine and stores it; in-flight requests keep
// using the engine they started with.
type application struct {
	engine atomic.Pointer[engine]
}

func (a *application) Issue(ctx context.Context) (*service.IssueResult, error) {
	return a.engine.Load().issuer.Issue(ctx)
}

func (a *application) Verify(ctx context.Context, token string) (*service.VerifyResult, error) {
	return a.engine.Load().verifier.Verify(ctx, token)
}

// newEngine builds the codec and its services from a verified
// configuration.
func newEngine(cfg *config.ServerConfig, cache service.ReplayCache) (*engine, error) {
	c, err := codec.New(cfg.Token.Matrix, codec.WithSeparator(cfg.Token.Separator))
	if err != nil {
		return nil, err
	}

	verifierOpts := []service.VerifierOption{service.WithSkew(cfg.Token.Skew())}
	if cache != nil {
		verifierOpts = append(verifierOpts, service.WithReplayCache(cache))
	}

	return &engine{
		issuer:   service.NewIssuer(c),
		verifier: service.NewVerifier(c, verifierOpts...),
	}, nil
}

// reload re-reads the configuration file and swaps in a fresh engine.
// A file that fails loading or verification leaves the running engine
// untouched.
func reload(configFile string, app *application, cache service.ReplayCache, log *slog.Logger) {
	cfg, err := loadConfig(configFile)
	if err != nil {
		log.Error("config reload rejected", "error", err)
		return
	}

	eng, err := newEngine(cfg, cache)
	if err != nil {
		log.Error("config reload rejected", "error", err)
		return
	}

	app.engine.Store(eng)
	logger.SetLevel(cfg.Log.Level)
	log.Info("configuration reloaded",
		"columns", len(cfg.Token.Matrix["0"]),
		"skew_ms", cfg.Token.SkewMS)
}

// loadConfig loads and verifies configuration from file and
// environment.
func loadConfig(configFile string) (*config.ServerConfig, error) {
	cfg := config.Default()

	opts := []confloader.Option{}
	if configFile != "" {
		opts = append(opts, confloader.WithConfigFile(configFile))
	}

	if err := confloader.NewLoader(opts...).Load(cfg); err != nil {
		return nil, err
	}

	if err := config.Verify(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// closableCache is what every replay backend provides beyond the
// verifier's view of it.
type closableCache interface {
	service.ReplayCache
	Close() error
}

// initReplay builds the configured replay cache backend. A nil return
// with nil error means replay checking is disabled.
func initReplay(cfg *config.ServerConfig, log *slog.Logger, metrics *metric.Metrics) (closableCache, error) {
	switch cfg.Replay.Backend {
	case config.ReplayBackendMemory:
		cache := replay.NewMemory(replay.WithSweepInterval(cfg.Replay.SweepInterval))
		metrics.RegisterReplayGauge(func() float64 { return float64(cache.Len()) })
		return cache, nil
	case config.ReplayBackendBadger:
		return replay.NewBadger(cfg.Replay.DataDir, log)
	case config.ReplayBackendNone:
		log.Warn("replay protection disabled")
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown replay backend %q", cfg.Replay.Backend)
	}
}
