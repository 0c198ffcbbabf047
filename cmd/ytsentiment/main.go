package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	"github.com/ericfisherdev/ytsentiment/internal/adapter/driven/langdetect"
	sqliteadapter "github.com/ericfisherdev/ytsentiment/internal/adapter/driven/sqlite"
	"github.com/ericfisherdev/ytsentiment/internal/adapter/driven/vader"
	"github.com/ericfisherdev/ytsentiment/internal/adapter/driven/youtube"
	httphandler "github.com/ericfisherdev/ytsentiment/internal/adapter/driving/http"
	webhandler "github.com/ericfisherdev/ytsentiment/internal/adapter/driving/web"
	"github.com/ericfisherdev/ytsentiment/internal/application"
	"github.com/ericfisherdev/ytsentiment/internal/config"
	"github.com/ericfisherdev/ytsentiment/internal/logging"
	"github.com/ericfisherdev/ytsentiment/internal/metrics"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration (fail fast on a missing API key or bad values).
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := logging.Init(cfg.LogLevel, cfg.LogFormat)
	logger.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"default_max_comments", cfg.DefaultMaxComments,
		"max_pages", cfg.MaxPages,
		"session_ttl", cfg.SessionTTL,
		"thresholds", cfg.Thresholds(),
	)

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Open the in-memory session database.
	db, err := sqliteadapter.NewDB("ytsentiment")
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	// 4. Run migrations on writer connection.
	if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
		return err
	}
	slog.Info("session store ready", "database", db.Name())

	// 5. Wire adapters.
	source, err := youtube.NewClient(ctx, cfg.YouTubeAPIKey)
	if err != nil {
		return err
	}
	sessionStore := sqliteadapter.NewSessionRepo(db)
	tagger := application.NewTagger(vader.NewAnalyzer(), langdetect.NewDetector(), cfg.Thresholds())
	clock := clockwork.NewRealClock()

	// 6. Create the analysis service and start the session janitor.
	analysisSvc := application.NewAnalysisService(source, tagger, sessionStore, clock, cfg.MaxPages)
	janitor := application.NewSessionJanitor(sessionStore, clock, cfg.SessionTTL)
	go janitor.Start(ctx)

	// 7. Create HTTP handler and register API routes.
	apiHandler := httphandler.NewHandler(analysisSvc, cfg.DefaultMaxComments, logger)
	mux := http.NewServeMux()
	httphandler.RegisterAPIRoutes(mux, apiHandler)

	// 8. Create web handler and register GUI routes.
	cookieStore := webhandler.NewCookieStore(cfg.SessionKey(), cfg.SessionTTL)
	webHandler := webhandler.NewHandler(analysisSvc, cookieStore, cfg.DefaultMaxComments, logger)
	webhandler.RegisterRoutes(mux, webHandler)

	mux.Handle("GET /metrics", promhttp.Handler())

	// Apply middleware.
	handler := httphandler.ApplyMiddleware(mux, logger, metrics.NewHTTPMetrics(prometheus.DefaultRegisterer))

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      5 * time.Minute, // large videos page through many API calls
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server error", "error", err)
			stop()
		}
	}()

	slog.Info("ytsentiment started",
		"listen_addr", cfg.ListenAddr,
		"janitor_interval", janitor.Interval(),
	)

	// 9. Wait for shutdown signal.
	<-ctx.Done()
	slog.Info("shutting down")

	// 10. Graceful shutdown with 10s timeout to drain in-flight requests.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}
