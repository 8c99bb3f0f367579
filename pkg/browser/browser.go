package browser

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gobwas/glob"

	"github.com/entrhq/phasma/pkg/driver"
)

// session is the slice of the driver surface the bridging layer consumes.
// Tests substitute a scripted fake.
type session interface {
	Navigate(ctx context.Context, url string) (string, error)
	Evaluate(ctx context.Context, expression string) (any, error)
	Click(ctx context.Context, selector string) (bool, error)
	Fill(ctx context.Context, selector, value string) (bool, error)
	Screenshot(ctx context.Context, path string) error
	ExecScript(ctx context.Context, script string, timeout time.Duration) ([]byte, error)
	Close() error
}

// LaunchOptions configures a Browser.
type LaunchOptions struct {
	// Driver configures the underlying persistent engine session.
	Driver driver.Options

	// AllowedHosts restricts navigation to hosts matching any of these
	// glob patterns (e.g. "*.example.com"). Empty means allow all. Local
	// file URLs bypass the allowlist; it gates network hosts only.
	AllowedHosts []string
}

// Browser owns one persistent engine session and the nominal context tree
// above it.
type Browser struct {
	driver  session
	allowed []glob.Glob

	mu       sync.Mutex
	contexts []*BrowserContext
	closed   bool
}

// Launch starts a persistent engine session and returns a Browser over it.
func Launch(ctx context.Context, opts LaunchOptions) (*Browser, error) {
	allowed, err := compileHostGlobs(opts.AllowedHosts)
	if err != nil {
		return nil, err
	}

	d := driver.New(opts.Driver)
	if err := d.Start(ctx); err != nil {
		return nil, err
	}

	return &Browser{driver: d, allowed: allowed}, nil
}

func compileHostGlobs(patterns []string) ([]glob.Glob, error) {
	globs := make([]glob.Glob, 0, len(patterns))
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid allowed host pattern %q: %w", pattern, err)
		}
		globs = append(globs, g)
	}
	return globs, nil
}

// NewContext creates a new nominal browsing context. Contexts share the
// single persistent engine page.
func (b *Browser) NewContext() *BrowserContext {
	b.mu.Lock()
	defer b.mu.Unlock()

	bc := &BrowserContext{browser: b}
	b.contexts = append(b.contexts, bc)
	return bc
}

// NewPage creates a page in a fresh default context.
func (b *Browser) NewPage() *Page {
	return b.NewContext().NewPage()
}

// Close shuts down the engine session and invalidates all contexts and
// pages. Safe to call multiple times.
func (b *Browser) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	b.contexts = nil
	b.mu.Unlock()

	return b.driver.Close()
}

// IsConnected reports whether the browser has not been closed.
func (b *Browser) IsConnected() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return !b.closed
}

// checkNavigation enforces the host allowlist for a target URL.
func (b *Browser) checkNavigation(rawURL string) error {
	if len(b.allowed) == 0 {
		return nil
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid navigation url %q: %w", rawURL, err)
	}
	host := strings.ToLower(parsed.Hostname())
	if host == "" {
		// Local file and inline documents carry no network host.
		return nil
	}

	for _, g := range b.allowed {
		if g.Match(host) {
			return nil
		}
	}
	return fmt.Errorf("navigation to host %q is not allowed", host)
}

// BrowserContext is a nominal grouping of pages. The engine offers no real
// isolation between contexts.
type BrowserContext struct {
	browser *Browser

	mu    sync.Mutex
	pages []*Page
}

// NewPage creates a page in this context.
func (bc *BrowserContext) NewPage() *Page {
	bc.mu.Lock()
	defer bc.mu.Unlock()

	p := newPage(bc.browser)
	bc.pages = append(bc.pages, p)
	return p
}

// Close drops the context's pages. The engine session stays alive; only
// Browser.Close tears it down.
func (bc *BrowserContext) Close() {
	bc.mu.Lock()
	defer bc.mu.Unlock()
	bc.pages = nil
}
