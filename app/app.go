package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Black-And-White-Club/photoshare/app/eventbus"
	"github.com/Black-And-White-Club/photoshare/app/graph"
	"github.com/Black-And-White-Club/photoshare/app/models"
	"github.com/Black-And-White-Club/photoshare/app/modules/photo"
	"github.com/Black-And-White-Club/photoshare/app/modules/user"
	"github.com/Black-And-White-Club/photoshare/app/shared"
	"github.com/Black-And-White-Club/photoshare/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"
)

const (
	serviceName     = "photoshare"
	shutdownTimeout = 10 * time.Second
)

// App wires the API's modules, event bus and HTTP surface together.
type App struct {
	Config   *config.Config
	Logger   *slog.Logger
	Registry *prometheus.Registry
	DB       *bun.DB

	Bus    *eventbus.Bus
	Bridge *eventbus.Bridge

	PhotoModule *photo.Module
	UserModule  *user.Module

	Executor *graph.Executor
	WS       *graph.WSTransport
	Router   http.Handler
}

// NewApp connects to the database, builds every module and the HTTP router.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	app := &App{
		Config:   cfg,
		Logger:   logger,
		Registry: prometheus.NewRegistry(),
	}
	app.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	db, err := NewDatabase(ctx, cfg.Postgres.DSN, logger)
	if err != nil {
		return nil, err
	}
	app.DB = db

	app.Bus = eventbus.New(logger.With("component", "eventbus"),
		eventbus.WithQueueSize(cfg.EventBus.QueueSize),
		eventbus.WithMetrics(eventbus.NewPrometheusMetrics(app.Registry, serviceName)),
	)

	var publisher eventbus.Publisher = app.Bus
	if cfg.NATS.URL != "" {
		pub, sub, err := eventbus.NewNATSTransport(cfg.NATS.URL, logger)
		if err != nil {
			app.closeStorage()
			return nil, fmt.Errorf("failed to initialize event bridge: %w", err)
		}
		app.Bridge = eventbus.NewBridge(app.Bus, pub, sub, map[eventbus.Topic]eventbus.Decoder{
			eventbus.PhotoAdded: eventbus.JSONDecoder[models.Photo](),
			eventbus.UserAdded:  eventbus.JSONDecoder[models.User](),
		}, logger.With("component", "bridge"))
		publisher = app.Bridge
		logger.InfoContext(ctx, "Event bridge enabled", slog.String("nats_url", cfg.NATS.URL))
	}

	obs := shared.Observability{
		Logger:  logger,
		Tracer:  otel.Tracer(serviceName),
		Metrics: shared.NewPrometheusServiceMetrics(app.Registry, serviceName),
	}

	app.PhotoModule, err = photo.NewPhotoModule(ctx, obs, publisher, db, cfg.HTTP.PhotosDir, cfg.HTTP.PublicURL)
	if err != nil {
		app.closeStorage()
		return nil, fmt.Errorf("failed to initialize photo module: %w", err)
	}
	app.UserModule, err = user.NewUserModule(ctx, cfg, obs, publisher, db)
	if err != nil {
		app.closeStorage()
		return nil, fmt.Errorf("failed to initialize user module: %w", err)
	}

	resolver := graph.NewResolver(app.PhotoModule.PhotoService, app.UserModule.UserService, app.Bus, logger.With("component", "graphql"))
	schema, err := graph.NewSchema(resolver)
	if err != nil {
		app.closeStorage()
		return nil, fmt.Errorf("failed to build GraphQL schema: %w", err)
	}
	app.Executor = graph.NewExecutor(schema, graph.Limits{
		MaxDepth:      graph.DefaultMaxDepth,
		MaxComplexity: graph.DefaultMaxComplexity,
	})

	var wsOpts []graph.WSOption
	if len(cfg.HTTP.AllowedOrigins) > 0 {
		wsOpts = append(wsOpts, graph.WithCheckOrigin(originChecker(cfg.HTTP.AllowedOrigins)))
	}
	app.WS = graph.NewWSTransport(app.Executor, app.UserModule.UserService, logger.With("component", "ws"), wsOpts...)

	registry := app.Registry
	if cfg.Observability.DisableMetrics {
		registry = nil
	}
	app.Router = NewRouter(RouterDeps{
		Config:     cfg.HTTP,
		Logger:     logger,
		Registry:   registry,
		GraphQL:    graph.NewHandler(app.Executor, app.UserModule.UserService, app.WS, logger.With("component", "graphql")),
		PhotosDir:  app.PhotoModule.Store.Dir(),
		GitHubAuth: app.UserModule.GitHub.AuthCodeURL,
	})

	return app, nil
}

// Run serves HTTP until ctx is cancelled, then drains connections.
func (app *App) Run(ctx context.Context) error {
	if app.Bridge != nil {
		if err := app.Bridge.Run(ctx); err != nil {
			return err
		}
	}

	srv := &http.Server{
		Addr:              app.Config.HTTP.Addr,
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		app.Logger.InfoContext(gctx, "HTTP server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		app.Logger.Info("Shutting down HTTP server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		// Hijacked websocket connections are not tracked by Shutdown.
		app.WS.Close()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// Close stops the bridge before the bus so no remote event lands after shutdown.
func (app *App) Close(ctx context.Context) error {
	var errs []error
	if app.Bridge != nil {
		if err := app.Bridge.Close(); err != nil {
			errs = append(errs, fmt.Errorf("event bridge close: %w", err))
		}
	}
	if app.Bus != nil {
		if err := app.Bus.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("event bus shutdown: %w", err))
		}
	}
	if app.PhotoModule != nil {
		errs = append(errs, app.PhotoModule.Close())
	}
	if app.UserModule != nil {
		errs = append(errs, app.UserModule.Close())
	}
	if app.DB != nil {
		if err := app.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("database close: %w", err))
		}
	}
	return errors.Join(errs...)
}

func (app *App) closeStorage() {
	if app.Bridge != nil {
		_ = app.Bridge.Close()
	}
	if app.DB != nil {
		_ = app.DB.Close()
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	origins := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		origins[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		if _, ok := origins["*"]; ok {
			return true
		}
		_, ok := origins[origin]
		return ok
	}
}
