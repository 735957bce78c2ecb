// Command listcrawl crawls a paginated listing site, extracts structured
// records with an LLM backend, and writes the deduplicated result as CSV.
//
// Usage:
//
//	listcrawl -config site.yaml
//	listcrawl -url https://example.com/cars -fields title,price -selector "[class*='ListingCell']"
//	listcrawl -list-providers
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/hazyhaar/listcrawl/browser"
	"github.com/hazyhaar/listcrawl/crawl"
	"github.com/hazyhaar/listcrawl/export"
	"github.com/hazyhaar/listcrawl/fetch"
	"github.com/hazyhaar/listcrawl/llmx"
	"github.com/hazyhaar/listcrawl/provider"
	"github.com/hazyhaar/listcrawl/selector"
)

func main() {
	configPath := flag.String("config", "", "path to listcrawl.yaml config file")
	baseURL := flag.String("url", "", "listing URL to crawl")
	sel := flag.String("selector", "", "item-boundary CSS selector")
	synthesize := flag.Bool("synthesize", false, "loosen the selector into class-substring matches")
	fields := flag.String("fields", "", "comma-separated required field names")
	instruction := flag.String("instruction", "", "extraction instruction text")
	providerID := flag.String("provider", "", "extraction provider id")
	model := flag.String("model", "", "model id (default: provider's first model)")
	maxPages := flag.Int("max-pages", 0, "page cap, 0 = unlimited")
	emptyMarker := flag.String("empty-marker", "", "page text that signals an explicit empty-results state")
	out := flag.String("out", "", "CSV output path, - = stdout")
	remote := flag.String("remote", "", "WebSocket URL of an external Chrome")
	headful := flag.Bool("headful", false, "run local Chrome headful")
	credentialEnv := flag.String("credential-env", "", "environment variable holding the API key")
	listProviders := flag.Bool("list-providers", false, "print the provider catalog and exit")
	logLevel := flag.String("log-level", env("LOG_LEVEL", "info"), "log level: debug, info, warn, error")
	flag.Parse()

	var level slog.Level
	switch *logLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	catalog := provider.Default()
	if *listProviders {
		printCatalog(catalog)
		return
	}

	cfg := &Config{}
	if *configPath != "" {
		loaded, err := LoadConfig(*configPath)
		if err != nil {
			logger.Error("listcrawl: config", "error", err)
			os.Exit(1)
		}
		cfg = loaded
	} else {
		cfg.applyDefaults()
	}
	mergeFlags(cfg, *baseURL, *sel, *synthesize, *fields, *instruction,
		*providerID, *model, *maxPages, *emptyMarker, *out, *remote, *headful, *credentialEnv)

	if cfg.Crawl.URL == "" {
		fmt.Fprintln(os.Stderr, "usage: listcrawl -config <file> | -url <url> -fields <f1,f2,...> [flags]")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, catalog, cfg); err != nil {
		logger.Error("listcrawl: fatal", "error", err)
		os.Exit(1)
	}
}

func mergeFlags(cfg *Config, baseURL, sel string, synthesize bool, fields, instruction,
	providerID, model string, maxPages int, emptyMarker, out, remote string, headful bool, credentialEnv string) {
	if baseURL != "" {
		cfg.Crawl.URL = baseURL
	}
	if sel != "" {
		cfg.Crawl.Selector = sel
	}
	if synthesize {
		cfg.Crawl.Synthesize = true
	}
	if fields != "" {
		cfg.Crawl.Fields = splitFields(fields)
	}
	if instruction != "" {
		cfg.Crawl.Instruction = instruction
	}
	if providerID != "" {
		cfg.LLM.Provider = providerID
	}
	if model != "" {
		cfg.LLM.Model = model
	}
	if maxPages > 0 {
		cfg.Crawl.MaxPages = maxPages
	}
	if emptyMarker != "" {
		cfg.Crawl.EmptyMarker = emptyMarker
	}
	if out != "" {
		cfg.Output.Path = out
	}
	if remote != "" {
		cfg.Browser.Remote = remote
	}
	if headful {
		cfg.Browser.Headful = true
	}
	if credentialEnv != "" {
		cfg.LLM.CredentialEnv = credentialEnv
	}
}

func run(ctx context.Context, logger *slog.Logger, catalog *provider.Catalog, cfg *Config) error {
	modelID := cfg.LLM.Model
	if modelID == "" {
		def, err := catalog.DefaultModel(cfg.LLM.Provider)
		if err != nil {
			return err
		}
		modelID = def
	}

	credential := os.Getenv(cfg.LLM.CredentialEnv)
	if credential == "" {
		return fmt.Errorf("no credential: set %s", cfg.LLM.CredentialEnv)
	}

	sel := cfg.Crawl.Selector
	if cfg.Crawl.Synthesize {
		sel = selector.Synthesize(selector.Clean(sel))
		logger.Info("listcrawl: selector synthesized", "selector", sel)
	}

	instruction := cfg.Crawl.Instruction
	if instruction == "" {
		instruction = defaultInstruction(cfg.Crawl.Fields)
	}

	mgr := browser.NewManager(browser.Config{
		RemoteURL:        cfg.Browser.Remote,
		Headless:         !cfg.Browser.Headful,
		ResourceBlocking: cfg.Browser.ResourceBlocking,
		NavigateTimeout:  cfg.Browser.NavigateTimeout,
		Logger:           logger,
	})
	if err := mgr.Start(ctx); err != nil {
		return fmt.Errorf("start browser: %w", err)
	}
	defer mgr.Close()

	llm := llmx.New(catalog, llmx.WithLogger(logger))
	fetcher := fetch.New(mgr, llm, fetch.WithLogger(logger))
	defer fetcher.Close()

	crawler := crawl.New(fetcher, crawl.WithCatalog(catalog), crawl.WithLogger(logger))
	res, runErr := crawler.Run(ctx, crawl.RunConfig{
		BaseURL:        cfg.Crawl.URL,
		Selector:       sel,
		Credential:     credential,
		Instruction:    instruction,
		RequiredFields: cfg.Crawl.Fields,
		MaxPages:       cfg.Crawl.MaxPages,
		Provider:       cfg.LLM.Provider,
		Model:          modelID,
		EmptyMarker:    cfg.Crawl.EmptyMarker,
	}, func(line string) { fmt.Fprintln(os.Stderr, line) })

	// A cancelled run still carries everything accepted so far; write it
	// out before reporting the interruption.
	if res != nil && len(res.Records) > 0 {
		if err := writeOutput(cfg.Output.Path, cfg.Crawl.Fields, res.Records); err != nil {
			return err
		}
	}
	return runErr
}

func writeOutput(path string, fields []string, records []crawl.Record) error {
	if path == "-" {
		return export.WriteCSV(os.Stdout, fields, records)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := export.WriteCSV(f, fields, records); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitFields(list string) []string {
	var out []string
	for _, f := range strings.Split(list, ",") {
		if s := strings.TrimSpace(f); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func defaultInstruction(fields []string) string {
	return "From the content, extract every individual listing item. " +
		"For each item, report these fields: " + strings.Join(fields, ", ") + ". " +
		"Use null for any field that is not present."
}

func printCatalog(catalog *provider.Catalog) {
	for _, id := range catalog.IDs() {
		p, err := catalog.Get(id)
		if err != nil {
			continue
		}
		fmt.Printf("%s  (%s)\n", id, p.Name)
		for _, m := range p.ModelOrder {
			fmt.Printf("  %s  (%s)\n", m, catalog.CostLabel(id, m))
		}
	}
}
