// Package browser manages the Chrome lifecycle for page rendering:
// launch (or connect to a remote instance), stealth page creation,
// optional resource blocking, and shutdown.
package browser

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

// Config configures the browser Manager.
type Config struct {
	// RemoteURL is the WebSocket URL of an external Chrome instance.
	// Empty = launch a local Chrome via launcher.
	RemoteURL string

	// Headless controls the local launch mode. Listing sites with heavy
	// client-side rendering sometimes behave better headful.
	Headless bool

	// ResourceBlocking lists resource types to block (images, fonts,
	// media, stylesheets). Blocking trims bandwidth on listing pages.
	ResourceBlocking []string

	// NavigateTimeout bounds a single navigation. Default: 30s.
	NavigateTimeout time.Duration

	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.NavigateTimeout <= 0 {
		c.NavigateTimeout = 30 * time.Second
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Manager owns one Chrome instance and hands out stealth pages.
type Manager struct {
	cfg     Config
	mu      sync.Mutex
	browser *rod.Browser
	lnch    *launcher.Launcher
	closed  bool
}

// NewManager creates a Manager. Call Start before requesting pages.
func NewManager(cfg Config) *Manager {
	cfg.defaults()
	return &Manager{cfg: cfg}
}

// Start launches Chrome or connects to the configured remote instance.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return fmt.Errorf("browser: manager is closed")
	}
	if m.browser != nil {
		return nil
	}

	var b *rod.Browser
	if m.cfg.RemoteURL != "" {
		b = rod.New().Context(ctx).ControlURL(m.cfg.RemoteURL)
	} else {
		l := launcher.New().Headless(m.cfg.Headless)
		u, err := l.Launch()
		if err != nil {
			return fmt.Errorf("browser: launch: %w", err)
		}
		m.lnch = l
		b = rod.New().Context(ctx).ControlURL(u)
	}
	if err := b.Connect(); err != nil {
		return fmt.Errorf("browser: connect: %w", err)
	}
	m.browser = b

	m.cfg.Logger.Debug("browser: started",
		"remote", m.cfg.RemoteURL != "", "headless", m.cfg.Headless)
	return nil
}

// NewPage opens a stealth page with resource blocking applied.
func (m *Manager) NewPage(ctx context.Context) (*rod.Page, error) {
	m.mu.Lock()
	b := m.browser
	m.mu.Unlock()
	if b == nil {
		return nil, ErrNoBrowser
	}

	page, err := stealth.Page(b)
	if err != nil {
		return nil, fmt.Errorf("browser: create page: %w", err)
	}
	if len(m.cfg.ResourceBlocking) > 0 {
		if err := applyResourceBlocking(page, m.cfg.ResourceBlocking); err != nil {
			m.cfg.Logger.Warn("browser: resource blocking failed", "error", err)
		}
	}
	return page, nil
}

// Navigate loads a URL on a page and waits for the load event. A load
// timeout is logged, not fatal — slow listing pages still render enough.
func (m *Manager) Navigate(ctx context.Context, page *rod.Page, pageURL string, bypassCache bool) error {
	navCtx, cancel := context.WithTimeout(ctx, m.cfg.NavigateTimeout)
	defer cancel()

	if bypassCache {
		if err := (proto.NetworkSetCacheDisabled{CacheDisabled: true}).Call(page); err != nil {
			m.cfg.Logger.Warn("browser: disable cache failed", "error", err)
		}
	}

	if err := page.Context(navCtx).Navigate(pageURL); err != nil {
		return fmt.Errorf("browser: navigate %s: %w", pageURL, err)
	}
	if err := page.Context(navCtx).WaitLoad(); err != nil {
		m.cfg.Logger.Warn("browser: wait load timeout", "url", pageURL, "error", err)
	}
	return nil
}

// HTML serialises the page's complete DOM as outer HTML.
func (m *Manager) HTML(ctx context.Context, page *rod.Page) (string, error) {
	res, err := page.Context(ctx).Eval(`() => document.documentElement.outerHTML`)
	if err != nil {
		return "", fmt.Errorf("browser: get DOM: %w", err)
	}
	return res.Value.Str(), nil
}

// Close shuts down Chrome and releases the launcher.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}
	m.closed = true

	var err error
	if m.browser != nil {
		err = m.browser.Close()
		m.browser = nil
	}
	if m.lnch != nil {
		m.lnch.Cleanup()
		m.lnch = nil
	}
	return err
}

func applyResourceBlocking(page *rod.Page, types []string) error {
	patterns := make([]string, 0, len(types))
	for _, t := range types {
		switch t {
		case "images":
			patterns = append(patterns, "*.png", "*.jpg", "*.jpeg", "*.gif", "*.webp", "*.svg")
		case "fonts":
			patterns = append(patterns, "*.woff", "*.woff2", "*.ttf", "*.otf")
		case "media":
			patterns = append(patterns, "*.mp4", "*.webm", "*.mp3", "*.avi")
		case "stylesheets":
			patterns = append(patterns, "*.css")
		}
	}
	if len(patterns) == 0 {
		return nil
	}
	return proto.NetworkSetBlockedURLs{Urls: patterns}.Call(page)
}
