package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"kintaicli/internal/config"
	apierrors "kintaicli/internal/errors"
	"kintaicli/internal/infrastructure"
	customMiddleware "kintaicli/internal/middleware"
	"kintaicli/internal/services"
	handlers "kintaicli/internal/transport/http"
	api "kintaicli/pkg/contracts/api/v1"
)

var (
	// Version is set at build time with -ldflags "-X kintaicli/internal/app.Version=..."
	Version = config.AppVersion
	// BuildTime is set at build time; empty for development builds
	BuildTime = ""
)

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Paths         *config.Paths
	Router        *chi.Mux
	Server        *http.Server
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.AnalysisMetrics
	Services      *ServiceContainer
}

// ServiceContainer holds all application services
type ServiceContainer struct {
	Analysis *services.AnalysisService
	Reports  *services.ReportService
	Health   *services.HealthService
}

// NewApplication loads the configuration, initializes the global logger
// and builds the application
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	paths, err := config.ResolvePaths(cfg.Paths)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve paths: %w", err)
	}
	if cfg.Logging.FilePath != "" && !filepath.IsAbs(cfg.Logging.FilePath) {
		cfg.Logging.FilePath = filepath.Join(paths.BaseDir, cfg.Logging.FilePath)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return New(cfg, paths, logger)
}

// New wires an application from an already loaded configuration
func New(cfg *config.Config, paths *config.Paths, logger *slog.Logger) (*Application, error) {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("Application starting",
		slog.String("name", config.AppName),
		slog.String("version", Version))

	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}
	paths.LogPathResolution(logger)

	if cfg.Telemetry.ServiceVersion == "" {
		cfg.Telemetry.ServiceVersion = Version
	}
	otelProviders, err := infrastructure.InitializeOTel(cfg.Telemetry, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	metrics, err := infrastructure.NewAnalysisMetrics(otelProviders.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create analysis metrics: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Paths:         paths,
		Logger:        logger,
		OTelProviders: otelProviders,
		Metrics:       metrics,
	}

	if err := app.initializeServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.setupRouter()
	app.createServer()

	return app, nil
}

// initializeServices initializes all application services
func (a *Application) initializeServices() error {
	analysis, err := services.NewAnalysisService(a.Config.Analysis, nil, a.Metrics, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize analysis service: %w", err)
	}

	a.Services = &ServiceContainer{
		Analysis: analysis,
		Reports:  services.NewReportService(a.Paths, a.Metrics, a.Logger),
		Health:   services.NewHealthService(Version, BuildTime, a.Paths, a.Logger),
	}
	return nil
}

// setupRouter configures the HTTP router with all routes.
// Order: RequestID → RealIP → OTel → error/recovery logging → headers.
func (a *Application) setupRouter() {
	r := chi.NewRouter()
	errorHandler := apierrors.NewErrorHandler(a.Logger, a.Config.Telemetry.Environment == "development")

	r.Use(customMiddleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(customMiddleware.NewOTelMiddleware(a.OTelProviders, a.Metrics).Handler)
	r.Use(apierrors.NewErrorMiddleware(errorHandler, a.Logger).Handler)
	r.Use(customMiddleware.SecurityHeaders)
	if a.Config.Security.EnableCORS {
		r.Use(customMiddleware.CORS(a.getCORSConfig()))
	}

	r.NotFound(errorHandler.NotFound)
	r.MethodNotAllowed(errorHandler.MethodNotAllowed)

	r.Method(http.MethodGet, config.MetricsEndpoint, handlers.NewMetricsHandler(a.OTelProviders.PrometheusHTTP, errorHandler))

	healthHandler := handlers.NewHealthHandler(a.Services.Health, a.Logger)
	attendanceHandler := handlers.NewAttendanceHandler(
		a.Services.Analysis,
		a.Services.Reports,
		a.Config.Analysis.MaxUploadBytes,
		a.Logger,
		errorHandler,
	)

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))

		r.Get("/health", healthHandler.HealthCheck)
		r.Get("/health/ready", healthHandler.ReadinessCheck)
		r.Get("/health/live", healthHandler.LivenessCheck)
		r.Get("/version", healthHandler.Version)

		r.Route("/v1", func(r chi.Router) {
			r.Use(middleware.Timeout(a.Config.Server.RequestTimeout))
			if rl := a.Config.Security.RateLimit; rl.Enabled {
				r.Use(customMiddleware.NewRateLimiter(rl.RPS, rl.Burst, errorHandler, a.Logger).Handler)
			}
			r.Mount("/attendance", attendanceHandler.Routes())
		})
	})

	a.Router = r
}

// getCORSConfig builds the CORS policy from the security configuration
func (a *Application) getCORSConfig() customMiddleware.CORSConfig {
	cfg := customMiddleware.CORSConfig{
		AllowedOrigins: a.Config.Security.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID", api.HeaderReportPath, "Content-Disposition"},
		MaxAge:         300,
		Logger:         a.Logger,
	}
	a.Logger.Info("CORS configured", slog.Any("allowed_origins", cfg.AllowedOrigins))
	return cfg
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           a.Config.Server.Address(),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
		ErrorLog:       slog.NewLogLogger(a.Logger.Handler(), slog.LevelWarn),
	}
}

// Start begins serving on l in the background. A serve failure cancels
// the application context through cancel.
func (a *Application) Start(ctx context.Context, l net.Listener, cancel context.CancelFunc) {
	a.Logger.InfoContext(ctx, "Starting HTTP server",
		slog.String("address", l.Addr().String()),
		slog.String("level", a.Config.Logging.Level))

	go func() {
		if err := a.Server.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			cancel()
		}
	}()
}

// Stop gracefully shuts down the server and flushes telemetry
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.Config.Server.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("server shutdown error: %w", err))
	}
	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	if err := infrastructure.CloseLogFile(); err != nil {
		errs = append(errs, fmt.Errorf("log file close error: %w", err))
	}
	return errors.Join(errs...)
}

// Run serves until SIGINT or SIGTERM, or until the server fails
func (a *Application) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	l, err := net.Listen("tcp", a.Server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.Server.Addr, err)
	}

	a.Start(ctx, l, stop)
	<-ctx.Done()
	a.Logger.InfoContext(ctx, "Received shutdown signal")

	return a.Stop(ctx)
}
