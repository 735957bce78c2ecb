// Package fetch implements the page-fetching contract used by the crawl
// loop: render a URL in Chrome, optionally scope the DOM to an item
// selector, convert the matched fragments to markdown and hand them to
// the structured-extraction backend.
package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-rod/rod"
	"github.com/microcosm-cc/bluemonday"

	"github.com/hazyhaar/listcrawl/browser"
	"github.com/hazyhaar/listcrawl/llmx"
	"github.com/hazyhaar/listcrawl/schema"
)

// Request describes one page fetch.
type Request struct {
	URL         string
	BypassCache bool
	// SessionID groups fetches onto one browsing context. All fetches
	// with the same session reuse a single tab.
	SessionID string
	// Selector scopes extraction input to matching item elements.
	Selector string
	// Extraction, when set, runs structured extraction on the rendered page.
	Extraction *ExtractionSpec
}

// ExtractionSpec mirrors what the extraction backend needs.
type ExtractionSpec struct {
	Schema      *schema.Schema
	Instruction string
	InputFormat string // "markdown" (default) or "html"
	Credential  string
	Model       string // "<provider>/<model>"
}

// Result is the outcome of a fetch.
type Result struct {
	HTML      string // rendered page as outer HTML
	Extracted string // JSON array text when extraction was requested
}

// Extractor turns page content into a JSON array of candidate records.
type Extractor interface {
	Extract(ctx context.Context, req llmx.Request) (string, error)
}

// Client renders pages and drives extraction.
type Client struct {
	browser   *browser.Manager
	extractor Extractor
	sanitizer *bluemonday.Policy
	converter *converter.Converter
	logger    *slog.Logger

	mu       sync.Mutex
	sessions map[string]*rod.Page
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a fetch Client on top of a started browser Manager.
func New(b *browser.Manager, ex Extractor, opts ...Option) *Client {
	c := &Client{
		browser:   b,
		extractor: ex,
		sanitizer: bluemonday.UGCPolicy(),
		converter: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
				table.NewTablePlugin(),
			),
		),
		logger:   slog.Default(),
		sessions: make(map[string]*rod.Page),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Fetch renders the requested URL and, when an extraction spec is given,
// returns the backend's JSON payload alongside the rendered HTML.
func (c *Client) Fetch(ctx context.Context, req Request) (*Result, error) {
	page, err := c.sessionPage(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	if err := c.browser.Navigate(ctx, page, req.URL, req.BypassCache); err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	html, err := c.browser.HTML(ctx, page)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}

	res := &Result{HTML: html}
	if req.Extraction == nil {
		c.logger.Debug("fetch: rendered",
			"url", req.URL, "size", len(html),
			"duration_ms", time.Since(start).Milliseconds())
		return res, nil
	}

	content, err := c.buildContent(html, req.URL, req.Selector, req.Extraction.InputFormat)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}

	payload, err := c.extractor.Extract(ctx, llmx.Request{
		Content:     content,
		SchemaJSON:  req.Extraction.Schema.ItemJSON(),
		Instruction: req.Extraction.Instruction,
		Credential:  req.Extraction.Credential,
		Model:       req.Extraction.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("fetch: extract: %w", err)
	}
	res.Extracted = payload

	c.logger.Debug("fetch: extracted",
		"url", req.URL, "content_len", len(content),
		"payload_len", len(payload),
		"duration_ms", time.Since(start).Milliseconds())
	return res, nil
}

// CloseSession closes the tab behind a session ID.
func (c *Client) CloseSession(sessionID string) {
	c.mu.Lock()
	page, ok := c.sessions[sessionID]
	if ok {
		delete(c.sessions, sessionID)
	}
	c.mu.Unlock()
	if ok {
		if err := page.Close(); err != nil {
			c.logger.Warn("fetch: close session page", "session", sessionID, "error", err)
		}
	}
}

// Close closes every session tab.
func (c *Client) Close() {
	c.mu.Lock()
	pages := c.sessions
	c.sessions = make(map[string]*rod.Page)
	c.mu.Unlock()
	for id, p := range pages {
		if err := p.Close(); err != nil {
			c.logger.Warn("fetch: close session page", "session", id, "error", err)
		}
	}
}

func (c *Client) sessionPage(ctx context.Context, sessionID string) (*rod.Page, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if page, ok := c.sessions[sessionID]; ok {
		return page, nil
	}
	page, err := c.browser.NewPage(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch: session page: %w", err)
	}
	c.sessions[sessionID] = page
	return page, nil
}

// buildContent scopes the rendered document to the item selector and
// converts it to the requested input format.
func (c *Client) buildContent(html, pageURL, selector, format string) (string, error) {
	scoped, matched, err := selectFragments(html, selector)
	if err != nil {
		return "", err
	}
	if !matched && selector != "" {
		// A selector with zero matches falls back to the whole document:
		// the model can still pick items out of full-page content, while
		// an empty extraction input never can.
		c.logger.Debug("fetch: selector matched nothing, using full document",
			"selector", selector)
	}

	clean := c.sanitizer.Sanitize(scoped)
	if format == "html" {
		return clean, nil
	}

	md, err := c.converter.ConvertString(clean, converter.WithDomain(pageURL))
	if err != nil || strings.TrimSpace(md) == "" {
		// Converter failure degrades to plain text, not to a dead run.
		return plainText(clean)
	}
	return strings.TrimSpace(md), nil
}

// selectFragments returns the concatenated outer HTML of all nodes
// matching the selector. With an empty selector, or no matches, the
// whole document is returned (matched=false in the latter case).
func selectFragments(html, selector string) (scoped string, matched bool, err error) {
	if strings.TrimSpace(selector) == "" {
		return html, true, nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", false, fmt.Errorf("parse document: %w", err)
	}
	sel := doc.Find(selector)
	if sel.Length() == 0 {
		return html, false, nil
	}

	var sb strings.Builder
	sel.Each(func(_ int, s *goquery.Selection) {
		if frag, err := goquery.OuterHtml(s); err == nil {
			sb.WriteString(frag)
			sb.WriteString("\n")
		}
	})
	return sb.String(), true, nil
}

// plainText extracts the text content of an HTML fragment.
func plainText(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("parse fragment: %w", err)
	}
	return strings.TrimSpace(doc.Text()), nil
}
