package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/signet-dev/signet/internal/api"
	"github.com/signet-dev/signet/internal/compositor"
	"github.com/signet-dev/signet/internal/config"
	"github.com/signet-dev/signet/internal/documents"
	"github.com/signet-dev/signet/internal/mailer"
	"github.com/signet-dev/signet/internal/rasterize"
	"github.com/signet-dev/signet/internal/signing"
	"github.com/signet-dev/signet/internal/storage"
	"github.com/signet-dev/signet/migrations"
	"github.com/signet-dev/signet/pkg/logging"
	"github.com/signet-dev/signet/pkg/routes"
)

type Application struct {
	config *config.Config
	db     *sql.DB
	logger *slog.Logger
	queue  *mailer.Queue

	documents *api.Handler
	signing   *signing.Handler
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Finalize(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(&cfg.Logging)

	if err := runMigrations(cfg.Database); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	db, err := openDB(cfg.Database)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	app, err := buildApplication(cfg, db, logger)
	if err != nil {
		logger.Error("failed to build application", "error", err)
		os.Exit(1)
	}

	app.queue.Start()
	defer app.queue.Stop()

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      app.routes(),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
		IdleTimeout:  cfg.Server.IdleTimeoutDuration(),
	}

	shutdownError := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		logger.Info("shutting down server")

		ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeoutDuration())
		defer cancel()

		shutdownError <- srv.Shutdown(ctx)
	}()

	logger.Info("starting server", "addr", srv.Addr)

	err = srv.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}

	if err := <-shutdownError; err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

func buildApplication(cfg *config.Config, db *sql.DB, logger *slog.Logger) (*Application, error) {
	store, err := storage.New(cfg.Storage.BasePath, logger)
	if err != nil {
		return nil, fmt.Errorf("storage: %w", err)
	}

	rasterizer := rasterize.New(rasterize.Options{
		DPI:     cfg.Rasterize.DPI,
		Workers: cfg.Rasterize.Workers,
	}, logger)

	comp := compositor.New(cfg.Compositor.Scale(), logger)

	var dispatcher mailer.Dispatcher
	if cfg.Mailer.Enabled {
		dispatcher = mailer.NewSMTP(cfg.Mailer.SMTP(), logger)
	} else {
		dispatcher = mailer.NewConsole(logger)
	}
	queue := mailer.NewQueue(dispatcher, cfg.Mailer.QueueSize, logger)

	docs := documents.New(db, logger)
	signingSys := signing.New(db, docs, comp, store, queue, cfg.Mailer.FrontendURL, logger)

	return &Application{
		config:    cfg,
		db:        db,
		logger:    logger,
		queue:     queue,
		documents: api.NewHandler(docs, store, rasterizer, comp, cfg.Storage.MaxUploadSizeBytes(), logger),
		signing:   signing.NewHandler(signingSys, cfg.Storage.MaxSignatureSizeBytes(), logger),
	}, nil
}

func openDB(cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("pgx", cfg.Dsn())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetimeDuration())

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnTimeoutDuration())
	defer cancel()

	if err = db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

func runMigrations(cfg config.DatabaseConfig) error {
	src, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, cfg.MigrateURL())
	if err != nil {
		return fmt.Errorf("initialize migrations: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

func (app *Application) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	routes.Register(mux, "/api", app.documents.Routes())
	routes.Register(mux, "/api", app.signing.Routes())

	if app.config.CORS.Enabled {
		return app.enableCORS(mux)
	}
	return mux
}

func (app *Application) enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cors := app.config.CORS

		if len(cors.Origins) > 0 {
			origin := r.Header.Get("Origin")
			if slices.Contains(cors.Origins, origin) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
			}
		}

		if len(cors.AllowedMethods) > 0 {
			w.Header().Set("Access-Control-Allow-Methods", strings.Join(cors.AllowedMethods, ", "))
		}

		if len(cors.AllowedHeaders) > 0 {
			w.Header().Set("Access-Control-Allow-Headers", strings.Join(cors.AllowedHeaders, ", "))
		}

		if cors.AllowCredentials {
			w.Header().Set("Access-Control-Allow-Credentials", "true")
		}

		if cors.MaxAge > 0 {
			w.Header().Set("Access-Control-Max-Age", fmt.Sprintf("%d", cors.MaxAge))
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
