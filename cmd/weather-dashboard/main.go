package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"

	httpapi "github.com/i474232898/weather-dashboard/internal/api/http"
	"github.com/i474232898/weather-dashboard/internal/auth"
	"github.com/i474232898/weather-dashboard/internal/config"
	"github.com/i474232898/weather-dashboard/internal/geocode"
	"github.com/i474232898/weather-dashboard/internal/logging"
	"github.com/i474232898/weather-dashboard/internal/news"
	"github.com/i474232898/weather-dashboard/internal/scheduler"
	"github.com/i474232898/weather-dashboard/internal/store"
	"github.com/i474232898/weather-dashboard/internal/upstream"
	"github.com/i474232898/weather-dashboard/internal/user"
	"github.com/i474232898/weather-dashboard/internal/weather"
	"github.com/i474232898/weather-dashboard/internal/weather/providers"
)

const appName = "weather-dashboard"

func main() {
	if err := run(); err != nil {
		slog.Error("weather-dashboard stopped", "err", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logging.New(os.Stdout, cfg, appName)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, closeRepo, err := openRepository(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeRepo()

	denylist, purger, closeDenylist, err := openDenylist(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeDenylist()

	// Shared settings for every outbound provider client.
	clientCfg := upstream.Config{
		Timeout: cfg.UpstreamTimeout,
		RPS:     cfg.UpstreamRPS,
		Burst:   cfg.UpstreamBurst,
		Breaker: cfg.UpstreamBreaker,
		Logger:  log,
	}

	weatherProvider := providers.NewOpenWeatherProvider(cfg.WeatherAPIKey, providers.Options{Client: clientCfg})
	newsClient := news.NewClient(cfg.NewsAPIKey, news.Options{PageSize: cfg.NewsPageSize, Client: clientCfg})

	var geocoder geocode.Geocoder
	switch cfg.GeocoderProvider {
	case "google":
		geocoder = geocode.NewGoogle(cfg.GoogleGeocoderKey, geocode.Options{Client: clientCfg})
	default:
		geocoder = geocode.NewMapbox(cfg.MapboxToken, geocode.Options{Client: clientCfg})
	}

	for name, missing := range map[string]bool{
		"WEATHER_API_KEY": cfg.WeatherAPIKey == "",
		"NEWS_API_KEY":    cfg.NewsAPIKey == "",
		"MAPBOX_TOKEN":    cfg.GeocoderProvider == "mapbox" && cfg.MapboxToken == "",
	} {
		if missing {
			log.Warn("provider credential not set; dependent endpoints will fail", "key", name)
		}
	}

	services := httpapi.Services{
		Auth:         auth.NewService(repo, auth.NewTokens(cfg.JWTSecret, cfg.TokenTTL), denylist, log),
		Users:        user.NewService(repo, cfg.RecentSearches, log),
		Weather:      weather.NewService(weatherProvider, log),
		News:         newsClient,
		Geocode:      geocode.NewService(geocoder, log),
		CookieSecure: cfg.CookieSecure,
		Logger:       log,
	}

	sched := scheduler.New(purger, cfg.DenylistPurge, log)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	defer sched.Stop()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               appName,
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          cfg.UpstreamTimeout*3 + 5*time.Second,
		ErrorHandler:          httpapi.ErrorHandler,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(helmet.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(cfg.ClientOrigins, ","),
		AllowCredentials: true,
	}))

	// API routes.
	httpapi.RegisterRoutes(app, services)

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", "port", cfg.Port, "store", cfg.StoreDriver, "geocoder", geocoder.Name())
		errCh <- app.Listen(":" + cfg.Port)
	}()

	// Wait for termination signal
	select {
	case err := <-errCh:
		return fmt.Errorf("fiber server stopped: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error("error during shutdown", "err", err)
	}
	log.Info("shutdown complete")
	return nil
}

func openRepository(ctx context.Context, cfg *config.AppConfig) (user.Repository, func(), error) {
	switch cfg.StoreDriver {
	case "sqlite":
		s, err := store.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return s, func() { _ = s.Close() }, nil
	case "mongo":
		s, err := store.OpenMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, nil, fmt.Errorf("open mongo store: %w", err)
		}
		return s, func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = s.Close(closeCtx)
		}, nil
	default:
		return store.NewMemoryStore(), func() {}, nil
	}
}

// openDenylist returns the token denylist and, for the in-memory one, the
// purger the scheduler should run.
func openDenylist(ctx context.Context, cfg *config.AppConfig, log *slog.Logger) (auth.Denylist, scheduler.Purger, func(), error) {
	if cfg.RedisAddr == "" {
		d := auth.NewMemoryDenylist()
		return d, d, func() {}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, nil, fmt.Errorf("connect redis %s: %w", cfg.RedisAddr, err)
	}
	log.Info("using redis token denylist", "addr", cfg.RedisAddr)
	return auth.NewRedisDenylist(client), nil, func() { _ = client.Close() }, nil
}
