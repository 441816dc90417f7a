package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

var validate = validator.New()

type AppConfig struct {
	Port     string `validate:"required,numeric"`
	AppEnv   string `validate:"oneof=dev prod"`
	LogLevel slog.Level

	// Browser origins allowed to send credentialed requests.
	ClientOrigins []string `validate:"min=1,dive,required"`

	WeatherAPIKey     string
	NewsAPIKey        string
	MapboxToken       string
	GoogleGeocoderKey string
	GeocoderProvider  string `validate:"oneof=mapbox google"`

	// Outbound provider calls. RPS of 0 disables the limiter.
	UpstreamTimeout time.Duration `validate:"gt=0"`
	UpstreamRPS     float64       `validate:"gte=0"`
	UpstreamBurst   int           `validate:"gte=1"`
	UpstreamBreaker bool

	JWTSecret    string        `validate:"required"`
	TokenTTL     time.Duration `validate:"gt=0"`
	CookieSecure bool

	StoreDriver    string `validate:"oneof=memory sqlite mongo"`
	SQLitePath     string `validate:"required_if=StoreDriver sqlite"`
	MongoURI       string `validate:"required_if=StoreDriver mongo"`
	MongoDatabase  string
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	DenylistPurge  time.Duration `validate:"gt=0"`
	RecentSearches int           `validate:"gte=1"`
	NewsPageSize   int           `validate:"gte=1,lte=100"`
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file loaded", "err", err)
	}
	cfg := &AppConfig{}

	cfg.Port = getenvDefault("PORT", "5005")
	cfg.AppEnv = getenvDefault("APP_ENV", "dev")

	level, err := ParseLogLevel(getenvDefault("LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}
	cfg.LogLevel = level

	for _, origin := range strings.Split(getenvDefault("CLIENT_URL", "http://localhost:5173"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.ClientOrigins = append(cfg.ClientOrigins, origin)
		}
	}

	cfg.WeatherAPIKey = os.Getenv("WEATHER_API_KEY")
	cfg.NewsAPIKey = os.Getenv("NEWS_API_KEY")
	cfg.MapboxToken = os.Getenv("MAPBOX_TOKEN")
	cfg.GoogleGeocoderKey = os.Getenv("GOOGLE_GEOCODER_API_KEY")
	cfg.GeocoderProvider = getenvDefault("GEOCODER_PROVIDER", "mapbox")

	if cfg.UpstreamTimeout, err = getenvDuration("UPSTREAM_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	rps, err := strconv.ParseFloat(getenvDefault("UPSTREAM_RPS", "0"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid UPSTREAM_RPS: %w", err)
	}
	cfg.UpstreamRPS = rps
	cfg.UpstreamBurst = getenvInt("UPSTREAM_BURST", 5)
	cfg.UpstreamBreaker = getenvBool("UPSTREAM_BREAKER", false)

	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.TokenTTL, err = getenvDuration("TOKEN_TTL", 7*24*time.Hour); err != nil {
		return nil, err
	}
	cfg.CookieSecure = getenvBool("COOKIE_SECURE", true)

	cfg.StoreDriver = getenvDefault("STORE_DRIVER", "memory")
	cfg.SQLitePath = getenvDefault("SQLITE_PATH", "data/weather-dashboard.db")
	cfg.MongoURI = os.Getenv("MONGODB_URI")
	cfg.MongoDatabase = getenvDefault("MONGODB_DATABASE", "weather_dashboard")

	cfg.RedisAddr = os.Getenv("REDIS_ADDR")
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")
	cfg.RedisDB = getenvInt("REDIS_DB", 0)
	if cfg.DenylistPurge, err = getenvDuration("DENYLIST_PURGE_INTERVAL", 15*time.Minute); err != nil {
		return nil, err
	}

	// Three most recent searches are shown in the sidebar.
	cfg.RecentSearches = getenvInt("RECENT_SEARCH_LIMIT", 3)
	cfg.NewsPageSize = getenvInt("NEWS_PAGE_SIZE", 20)

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// ParseLogLevel maps LOG_LEVEL values onto slog levels.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
