// Package crawl runs the paginated extraction loop: fetch a listing
// page, run structured extraction on it, filter and de-duplicate the
// candidates, and keep going until a stop condition fires.
package crawl

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hazyhaar/listcrawl/fetch"
	"github.com/hazyhaar/listcrawl/idgen"
	"github.com/hazyhaar/listcrawl/provider"
	"github.com/hazyhaar/listcrawl/schema"
)

// Fetcher is the page-fetching collaborator. fetch.Client implements it;
// tests substitute fakes.
type Fetcher interface {
	Fetch(ctx context.Context, req fetch.Request) (*fetch.Result, error)
}

const (
	// settleDelay gives client-side rendering time to finish between the
	// render-only pass and the extraction pass.
	settleDelay = 5 * time.Second
	// politeDelay spaces out successive page visits.
	politeDelay = 2 * time.Second
)

// Crawler drives runs. One Crawler may serve many runs; each run builds
// fresh state.
type Crawler struct {
	fetcher Fetcher
	catalog *provider.Catalog
	logger  *slog.Logger
	newSess idgen.Generator
	settle  time.Duration
	polite  time.Duration
}

// Option configures a Crawler.
type Option func(*Crawler)

// WithCatalog swaps the provider catalog (tests use reduced ones).
func WithCatalog(c *provider.Catalog) Option {
	return func(cr *Crawler) { cr.catalog = c }
}

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(cr *Crawler) { cr.logger = l }
}

// New creates a Crawler using the default provider catalog.
func New(f Fetcher, opts ...Option) *Crawler {
	c := &Crawler{
		fetcher: f,
		catalog: provider.Default(),
		logger:  slog.Default(),
		newSess: idgen.Prefixed("sess_", idgen.Default),
		settle:  settleDelay,
		polite:  politeDelay,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Run executes one crawl and returns the accepted records together with
// the stop reason. Precondition failures (bad base URL, unknown
// provider or model, credential shape) error out before any fetch.
// Stop conditions are not errors: the loop ends cleanly and the result
// carries whatever was accumulated. Cancellation is observed at page
// boundaries only; in-flight fetches run to their own timeouts.
func (c *Crawler) Run(ctx context.Context, cfg RunConfig, onProgress Progress) (*Result, error) {
	if onProgress == nil {
		onProgress = func(string) {}
	}

	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("crawl: base URL: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("crawl: base URL %q: %w", cfg.BaseURL, ErrInvalidBaseURL)
	}

	sch, err := schema.Build(cfg.RequiredFields)
	if err != nil {
		return nil, fmt.Errorf("crawl: %w", err)
	}
	validator, err := sch.Compile()
	if err != nil {
		return nil, fmt.Errorf("crawl: %w", err)
	}
	modelID, err := c.catalog.Resolve(cfg.Provider, cfg.Model)
	if err != nil {
		return nil, fmt.Errorf("crawl: %w", err)
	}
	if err := provider.ValidateCredential(cfg.Credential); err != nil {
		return nil, fmt.Errorf("crawl: %w", err)
	}

	onProgress("Using LLM: " + modelID)
	onProgress("Starting the crawling process...")
	if cfg.MaxPages > 0 {
		onProgress(fmt.Sprintf("Page limit set: will crawl at most %d pages", cfg.MaxPages))
	} else {
		onProgress("No page limit: will crawl until no more data is available")
	}

	spec := &fetch.ExtractionSpec{
		Schema:      sch,
		Instruction: cfg.Instruction,
		InputFormat: "markdown",
		Credential:  cfg.Credential,
		Model:       modelID,
	}
	required := sch.Fields()
	sessionID := c.newSess()
	seen := make(map[string]bool)
	res := &Result{}

	// In-flight fetches are never cancelled mid-flight; cancellation
	// takes effect at the top of the next iteration.
	fetchCtx := context.WithoutCancel(ctx)

	for page := 1; ; page++ {
		if ctx.Err() != nil {
			res.Reason = StopCancelled
			onProgress("Crawl cancelled.")
			c.finish(onProgress, res)
			return res, ctx.Err()
		}
		if cfg.MaxPages > 0 && page > cfg.MaxPages {
			res.Reason = StopPageLimit
			onProgress(fmt.Sprintf("Reached page limit (%d pages). Stopping crawl.", cfg.MaxPages))
			break
		}

		pageURL := pageURLFor(base, page)
		onProgress(fmt.Sprintf("Processing page %d...", page))

		// Render-only pass so dynamic content starts loading.
		rendered, err := c.fetcher.Fetch(fetchCtx, fetch.Request{
			URL: pageURL, BypassCache: true, SessionID: sessionID,
		})
		if err != nil {
			res.Reason = StopFetchFailed
			onProgress(fmt.Sprintf("Failed to load page %d", page))
			c.logger.Warn("crawl: page load failed", "page", page, "error", err)
			break
		}
		if cfg.EmptyMarker != "" && strings.Contains(rendered.HTML, cfg.EmptyMarker) {
			res.Reason = StopNoCandidates
			onProgress(fmt.Sprintf("No listings found on page %d", page))
			break
		}

		wait(fetchCtx, c.settle)

		extracted, err := c.fetcher.Fetch(fetchCtx, fetch.Request{
			URL: pageURL, BypassCache: true, SessionID: sessionID,
			Selector: cfg.Selector, Extraction: spec,
		})
		if err != nil || extracted.Extracted == "" {
			res.Reason = StopExtractionFailed
			if err != nil {
				onProgress(fmt.Sprintf("Error on page %d: %v", page, err))
				c.logger.Warn("crawl: extraction failed", "page", page, "error", err)
			} else {
				onProgress(fmt.Sprintf("Error on page %d: no extracted content", page))
			}
			break
		}

		var candidates []Record
		if err := json.Unmarshal([]byte(extracted.Extracted), &candidates); err != nil {
			res.Reason = StopPayloadMalformed
			onProgress(fmt.Sprintf("Failed to parse data from page %d", page))
			c.logger.Warn("crawl: payload parse failed", "page", page, "error", err)
			break
		}
		if err := validateCandidates(validator, candidates); err != nil {
			res.Reason = StopPayloadMalformed
			onProgress(fmt.Sprintf("Failed to parse data from page %d", page))
			c.logger.Warn("crawl: payload rejected by schema", "page", page, "error", err)
			break
		}
		res.Pages = page
		if len(candidates) == 0 {
			res.Reason = StopNoCandidates
			onProgress(fmt.Sprintf("No listings found on page %d", page))
			break
		}

		accepted := 0
		for _, cand := range candidates {
			// A false error marker is backend metadata, not data.
			if v, ok := cand["error"]; ok && v == false {
				delete(cand, "error")
			}
			// Incomplete candidates are expected extraction outcomes,
			// dropped silently.
			if !complete(cand, required) {
				continue
			}
			id := identityOf(cand)
			if seen[id] {
				continue
			}
			seen[id] = true
			res.Records = append(res.Records, cand)
			accepted++
		}

		if accepted == 0 {
			res.Reason = StopNoNewRecords
			onProgress(fmt.Sprintf("No new listings found on page %d", page))
			break
		}
		onProgress(fmt.Sprintf("Extracted %d listings from page %d", accepted, page))

		wait(ctx, c.polite)
	}

	c.finish(onProgress, res)
	return res, nil
}

func (c *Crawler) finish(onProgress Progress, res *Result) {
	onProgress(fmt.Sprintf("Crawling complete! Total listings extracted: %d from %d pages",
		len(res.Records), res.Pages))
	c.logger.Info("crawl: run finished",
		"records", len(res.Records), "pages", res.Pages, "reason", string(res.Reason))
}

// pageURLFor appends the 1-based page index as the "page" query parameter.
func pageURLFor(base *url.URL, page int) string {
	u := *base
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	u.RawQuery = q.Encode()
	return u.String()
}

type candidateValidator interface {
	Validate(v any) error
}

// validateCandidates checks each parsed candidate against the record
// schema. Shape-insane payloads count as malformed, same as a JSON
// syntax error.
func validateCandidates(v candidateValidator, candidates []Record) error {
	for i, cand := range candidates {
		if err := v.Validate(map[string]any(cand)); err != nil {
			return fmt.Errorf("candidate %d: %w", i, err)
		}
	}
	return nil
}

// wait sleeps for d or until the context is done, whichever is first.
func wait(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
