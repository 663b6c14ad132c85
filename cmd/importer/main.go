package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"

	"github.com/vendora/product-importer/internal/api"
	"github.com/vendora/product-importer/internal/browser"
	"github.com/vendora/product-importer/internal/config"
	"github.com/vendora/product-importer/internal/database"
	"github.com/vendora/product-importer/internal/importer"
	"github.com/vendora/product-importer/internal/parser"
	"github.com/vendora/product-importer/internal/scraper"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(cfg.Logging.Level),
	}))
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := database.New(ctx, database.Config{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		Database: cfg.Database.Name,
		SSLMode:  cfg.Database.SSLMode,
		MaxConns: cfg.Database.MaxConns,
	})
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}

	relay := database.NewRelay(db, redisClient, logger, database.RelayConfig{
		PollInterval: 5 * time.Second,
	})
	go func() {
		if err := relay.Start(ctx); err != nil && ctx.Err() == nil {
			logger.Error("relay stopped unexpectedly", "error", err)
		}
	}()

	fetcher, cleanup, err := buildFetcher(cfg, logger)
	if err != nil {
		logger.Error("failed to initialize fetcher", "error", err)
		os.Exit(1)
	}
	if cleanup != nil {
		defer cleanup()
	}

	scrapeService := scraper.NewService(fetcher, parser.NewMarketParser(cfg.Scraper.MaxImages), logger)
	importService := importer.New(db, logger)
	handlers := api.NewHandlers(scrapeService, importService, logger)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))
	handlers.Routes(router)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("starting importer service",
			"addr", server.Addr,
			"fetch_strategy", cfg.Scraper.Strategy)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", "error", err)
			cancel()
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigChan:
		logger.Info("shutdown signal received")
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", "error", err)
	}
	cancel()
}

// buildFetcher picks the single fetch strategy for this process.
func buildFetcher(cfg *config.Config, logger *slog.Logger) (scraper.Fetcher, func(), error) {
	switch cfg.Scraper.Strategy {
	case config.StrategyBrowser:
		b, err := browser.New(&browser.Options{
			Headless:       cfg.Browser.Headless,
			Timeout:        cfg.Browser.Timeout,
			UserAgent:      cfg.Scraper.UserAgent,
			ViewportWidth:  cfg.Browser.ViewportWidth,
			ViewportHeight: cfg.Browser.ViewportHeight,
			AcceptLanguage: cfg.Browser.AcceptLanguage,
			TimezoneID:     cfg.Browser.TimezoneID,
			Locale:         cfg.Browser.Locale,
		})
		if err != nil {
			return nil, nil, err
		}
		cleanup := func() {
			if err := b.Close(); err != nil {
				logger.Warn("failed to close browser", "error", err)
			}
		}
		return b, cleanup, nil

	case config.StrategyProxy:
		client := &http.Client{Timeout: cfg.Scraper.FetchTimeout}
		return scraper.NewRenderProxyFetcher(client,
			cfg.Scraper.RenderEndpoint,
			cfg.Scraper.RenderAPIKey,
			cfg.Scraper.RenderCountry), nil, nil

	default:
		client := &http.Client{Timeout: cfg.Scraper.FetchTimeout}
		return scraper.NewHTTPFetcher(client,
			cfg.Scraper.UserAgent,
			cfg.Scraper.AcceptLanguage), nil, nil
	}
}

func logLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
