package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	httpapi "github.com/i474232898/weather-daily-summary/internal/api/http"
	"github.com/i474232898/weather-daily-summary/internal/config"
	"github.com/i474232898/weather-daily-summary/internal/metrics"
	"github.com/i474232898/weather-daily-summary/internal/render"
	"github.com/i474232898/weather-daily-summary/internal/scheduler"
	"github.com/i474232898/weather-daily-summary/internal/store"
	"github.com/i474232898/weather-daily-summary/internal/weather"
	"github.com/i474232898/weather-daily-summary/internal/weather/providers"
)

func main() {
	once := flag.Bool("once", false, "print the day cards once and exit")
	flag.Parse()

	// Load configuration; the logger level comes from it.
	cfg, err := config.Load()
	if err != nil {
		newLogger("info").Fatal("failed to load config", zap.Error(err))
	}

	logger := newLogger(cfg.LogLevel)
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	// Shared HTTP client for the outbound forecast call.
	httpClient, err := providers.NewHTTPClient(cfg.HTTPTimeout, cfg.ProxyURL)
	if err != nil {
		logger.Fatal("failed to build http client", zap.Error(err))
	}

	provider := providers.NewOpenMeteoProvider(cfg.OpenMeteoURL, providers.HTTPClientConfig{
		Client:         httpClient,
		BreakerTimeout: cfg.BreakerTimeout,
	})

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(reg, "weather_daily_summary")

	// Core service orchestrating the provider and the widget registry.
	service := weather.NewService(store.NewMemoryStore(cfg.WidgetMax), provider, weather.ServiceOptions{
		Location:  cfg.Location,
		WidgetTTL: cfg.WidgetTTL,
		Logger:    logger,
		Metrics:   collector,
	})

	if *once {
		code := renderOnce(service, cfg.HTTPTimeout, logger)
		_ = logger.Sync()
		os.Exit(code)
	}

	// Scheduler that tears down expired widgets.
	sched := scheduler.New(cfg.WidgetReapInterval, service, logger)
	if err := sched.Start(); err != nil {
		logger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "weather-daily-summary",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          30 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			if code >= fiber.StatusInternalServerError {
				logger.Error("request failed",
					zap.String("method", c.Method()),
					zap.String("path", c.Path()),
					zap.Error(err))
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(requestid.New())
	app.Use(recover.New())
	app.Use(func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		logger.Debug("request",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", c.Response().StatusCode()),
			zap.Duration("duration", time.Since(start)),
			zap.Any("request_id", c.Locals("requestid")))
		return err
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":   "ok",
			"service":  "weather-daily-summary",
			"location": service.Location(),
		})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	// API routes.
	httpapi.RegisterRoutes(app, service)

	go func() {
		logger.Info("starting server", zap.String("port", cfg.Port))
		if err := app.Listen(":" + cfg.Port); err != nil {
			logger.Error("fiber server stopped", zap.Error(err))
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("error during shutdown", zap.Error(err))
	}
	service.Shutdown()
}

// renderOnce prints the cards of a single fetch and returns the exit code.
func renderOnce(service *weather.Service, timeout time.Duration, logger *zap.Logger) int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	view, err := service.RenderOnce(ctx)
	if werr := render.WriteView(os.Stdout, view); werr != nil {
		logger.Error("failed to write cards", zap.Error(werr))
		return 1
	}
	if err != nil {
		logger.Error("forecast unavailable", zap.String("kind", weather.ErrorKind(err)), zap.Error(err))
		return 1
	}
	return 0
}

func newLogger(level string) *zap.Logger {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewExample()
	}
	return logger
}
