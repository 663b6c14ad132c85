package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/vendora/product-importer/internal/config"
	"github.com/vendora/product-importer/internal/models"
	"github.com/vendora/product-importer/internal/parser"
	"github.com/vendora/product-importer/internal/ratelimit"
	"github.com/vendora/product-importer/internal/scraper"
)

func main() {
	var (
		urls      = flag.String("urls", "", "Comma-separated list of product URLs to scrape")
		inputFile = flag.String("file", "", "File containing product URLs (one per line)")
		output    = flag.String("output", "text", "Output format: text, json")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
	slog.SetDefault(logger)

	targets, err := collectTargets(*urls, *inputFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	if len(targets) == 0 {
		fmt.Fprintln(os.Stderr, "no URLs given; use -urls or -file")
		flag.Usage()
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	fetcher := buildFetcher(cfg)
	svc := scraper.NewService(fetcher, parser.NewMarketParser(cfg.Scraper.MaxImages), logger)
	limiter := ratelimit.NewJitteredRateLimiter(cfg.Scraper.RateLimitMin, cfg.Scraper.RateLimitMax)

	failures := 0
	for i, target := range targets {
		if i > 0 {
			if err := limiter.Wait(ctx); err != nil {
				break
			}
		}

		result := svc.Scrape(ctx, target)
		if !result.Success {
			failures++
		}

		if err := printResult(*output, target, result); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write result: %v\n", err)
			os.Exit(1)
		}
	}

	if failures > 0 {
		os.Exit(1)
	}
}

func buildFetcher(cfg *config.Config) scraper.Fetcher {
	client := &http.Client{Timeout: cfg.Scraper.FetchTimeout}
	if cfg.Scraper.Strategy == config.StrategyProxy {
		return scraper.NewRenderProxyFetcher(client,
			cfg.Scraper.RenderEndpoint,
			cfg.Scraper.RenderAPIKey,
			cfg.Scraper.RenderCountry)
	}
	return scraper.NewHTTPFetcher(client, cfg.Scraper.UserAgent, cfg.Scraper.AcceptLanguage)
}

func collectTargets(urls, inputFile string) ([]string, error) {
	var targets []string

	for _, u := range strings.Split(urls, ",") {
		if u = strings.TrimSpace(u); u != "" {
			targets = append(targets, u)
		}
	}

	if inputFile != "" {
		f, err := os.Open(inputFile)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", inputFile, err)
		}
		defer f.Close()

		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			if line := strings.TrimSpace(scanner.Text()); line != "" && !strings.HasPrefix(line, "#") {
				targets = append(targets, line)
			}
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", inputFile, err)
		}
	}

	return targets, nil
}

func printResult(format, url string, result models.ScrapeResult) error {
	if format == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	if !result.Success {
		fmt.Printf("FAIL  %s\n      %s\n", url, result.Error)
		return nil
	}

	p := result.Data
	fmt.Printf("OK    %s\n", url)
	fmt.Printf("      titulo:  %s\n", p.Title)
	fmt.Printf("      precio:  %.2f\n", p.Price)
	fmt.Printf("      fuente:  %s\n", p.Source)
	fmt.Printf("      imagenes: %d, videos: %d, atributos: %d\n",
		len(p.Images), len(p.Videos), len(p.Attributes))
	return nil
}
