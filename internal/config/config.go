package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Fetch strategies. Exactly one is used per scrape call; the choice is made
// once at startup from configuration, never per request.
const (
	StrategyDirect  = "direct"
	StrategyProxy   = "proxy"
	StrategyBrowser = "browser"
)

type Config struct {
	Server   ServerConfig
	Scraper  ScraperConfig
	Browser  BrowserConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Logging  LoggingConfig
}

type ServerConfig struct {
	Port            string
	Host            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type ScraperConfig struct {
	Strategy       string
	FetchTimeout   time.Duration
	UserAgent      string
	AcceptLanguage string
	MaxImages      int
	RateLimitMin   time.Duration
	RateLimitMax   time.Duration

	// Render proxy settings; the proxy strategy is selected automatically
	// when an API key is configured.
	RenderEndpoint string
	RenderAPIKey   string
	RenderCountry  string
}

type BrowserConfig struct {
	Headless       bool
	Timeout        time.Duration
	ViewportWidth  int
	ViewportHeight int
	AcceptLanguage string
	TimezoneID     string
	Locale         string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int32
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type LoggingConfig struct {
	Level string
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnvOrDefault("SERVER_PORT", "8080"),
			Host:            getEnvOrDefault("SERVER_HOST", "0.0.0.0"),
			ReadTimeout:     getDurationOrDefault("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getDurationOrDefault("SERVER_WRITE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getDurationOrDefault("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Scraper: ScraperConfig{
			Strategy:       getEnvOrDefault("SCRAPER_STRATEGY", ""),
			FetchTimeout:   getDurationOrDefault("SCRAPER_FETCH_TIMEOUT", 30*time.Second),
			UserAgent:      getEnvOrDefault("SCRAPER_USER_AGENT", ""),
			AcceptLanguage: getEnvOrDefault("SCRAPER_ACCEPT_LANGUAGE", "es-ES,es;q=0.9,en;q=0.8"),
			MaxImages:      getIntOrDefault("SCRAPER_MAX_IMAGES", 15),
			RateLimitMin:   getDurationOrDefault("SCRAPER_RATE_LIMIT_MIN", 3*time.Second),
			RateLimitMax:   getDurationOrDefault("SCRAPER_RATE_LIMIT_MAX", 10*time.Second),
			RenderEndpoint: getEnvOrDefault("SCRAPER_RENDER_ENDPOINT", "https://api.scraperapi.com/"),
			RenderAPIKey:   getEnvOrDefault("SCRAPER_RENDER_API_KEY", ""),
			RenderCountry:  getEnvOrDefault("SCRAPER_RENDER_COUNTRY", "us"),
		},
		Browser: BrowserConfig{
			Headless:       getBoolOrDefault("BROWSER_HEADLESS", true),
			Timeout:        getDurationOrDefault("BROWSER_TIMEOUT", 30*time.Second),
			ViewportWidth:  getIntOrDefault("BROWSER_VIEWPORT_WIDTH", 1920),
			ViewportHeight: getIntOrDefault("BROWSER_VIEWPORT_HEIGHT", 1080),
			AcceptLanguage: getEnvOrDefault("BROWSER_ACCEPT_LANGUAGE", "es-ES,es;q=0.9,en;q=0.8"),
			TimezoneID:     getEnvOrDefault("BROWSER_TIMEZONE", "America/Caracas"),
			Locale:         getEnvOrDefault("BROWSER_LOCALE", "es-ES"),
		},
		Database: DatabaseConfig{
			Host:     getEnvOrDefault("DB_HOST", "localhost"),
			Port:     getIntOrDefault("DB_PORT", 5432),
			User:     getEnvOrDefault("DB_USER", "postgres"),
			Password: getEnvOrDefault("DB_PASSWORD", ""),
			Name:     getEnvOrDefault("DB_NAME", "catalog"),
			SSLMode:  getEnvOrDefault("DB_SSL_MODE", "disable"),
			MaxConns: int32(getIntOrDefault("DB_MAX_CONNS", 10)),
		},
		Redis: RedisConfig{
			Addr:     getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
			Password: getEnvOrDefault("REDIS_PASSWORD", ""),
			DB:       getIntOrDefault("REDIS_DB", 0),
		},
		Logging: LoggingConfig{
			Level: getEnvOrDefault("LOG_LEVEL", "info"),
		},
	}

	if cfg.Scraper.Strategy == "" {
		if cfg.Scraper.RenderAPIKey != "" {
			cfg.Scraper.Strategy = StrategyProxy
		} else {
			cfg.Scraper.Strategy = StrategyDirect
		}
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Scraper.Strategy {
	case StrategyDirect, StrategyProxy, StrategyBrowser:
	default:
		return fmt.Errorf("SCRAPER_STRATEGY must be one of direct, proxy, browser")
	}

	if c.Scraper.Strategy == StrategyProxy && c.Scraper.RenderAPIKey == "" {
		return fmt.Errorf("SCRAPER_RENDER_API_KEY is required for the proxy strategy")
	}

	if c.Scraper.MaxImages < 1 {
		return fmt.Errorf("SCRAPER_MAX_IMAGES must be at least 1")
	}

	if c.Scraper.RateLimitMin > c.Scraper.RateLimitMax {
		return fmt.Errorf("SCRAPER_RATE_LIMIT_MIN cannot be greater than SCRAPER_RATE_LIMIT_MAX")
	}

	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
