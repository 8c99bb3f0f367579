package browser

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/entrhq/phasma/pkg/driver"
)

// waitPollInterval is how often WaitForSelector re-checks the DOM.
const waitPollInterval = 50 * time.Millisecond

// Viewport is a page viewport size in pixels.
type Viewport struct {
	Width  int
	Height int
}

// Page drives the engine's single live page.
type Page struct {
	browser  *Browser
	driver   session
	url      string
	viewport Viewport
}

func newPage(b *Browser) *Page {
	return &Page{
		browser: b,
		driver:  b.driver,
		viewport: Viewport{
			Width:  driver.DefaultViewportWidth,
			Height: driver.DefaultViewportHeight,
		},
	}
}

// Goto navigates to the URL and returns the serialized document markup
// observed after the engine's settle delay. A navigation failure surfaces
// as a *driver.ProtocolError.
func (p *Page) Goto(ctx context.Context, url string) (string, error) {
	if err := p.browser.checkNavigation(url); err != nil {
		return "", err
	}
	markup, err := p.driver.Navigate(ctx, url)
	if err != nil {
		return "", err
	}
	p.url = url
	return markup, nil
}

// URL returns the last successfully navigated URL.
func (p *Page) URL() string { return p.url }

// Click clicks the first element matching the selector. A missing element
// is an error at this layer even though the driver reports it as false.
func (p *Page) Click(ctx context.Context, selector string) error {
	clicked, err := p.driver.Click(ctx, selector)
	if err != nil {
		return err
	}
	if !clicked {
		return missingSelectorError(selector)
	}
	return nil
}

// Fill sets the value of the first input matching the selector and fires
// its input and change events.
func (p *Page) Fill(ctx context.Context, selector, value string) error {
	filled, err := p.driver.Fill(ctx, selector, value)
	if err != nil {
		return err
	}
	if !filled {
		return missingSelectorError(selector)
	}
	return nil
}

// Evaluate runs a JavaScript expression in the page context and returns
// its JSON-compatible result.
func (p *Page) Evaluate(ctx context.Context, expression string) (any, error) {
	return p.driver.Evaluate(ctx, expression)
}

// TextContent returns the text content of the first element matching the
// selector.
func (p *Page) TextContent(ctx context.Context, selector string) (string, error) {
	return p.selectorString(ctx, selector, "el.textContent")
}

// InnerHTML returns the inner HTML of the first element matching the
// selector.
func (p *Page) InnerHTML(ctx context.Context, selector string) (string, error) {
	return p.selectorString(ctx, selector, "el.innerHTML")
}

func (p *Page) selectorString(ctx context.Context, selector, property string) (string, error) {
	expr := fmt.Sprintf(
		"(function() { var el = document.querySelector('%s'); return el ? %s : null; })()",
		driver.EscapeJSString(selector), property,
	)
	result, err := p.driver.Evaluate(ctx, expr)
	if err != nil {
		return "", err
	}
	if result == nil {
		return "", missingSelectorError(selector)
	}
	text, ok := result.(string)
	if !ok {
		return "", &driver.ProtocolError{Message: fmt.Sprintf("expected string for selector %q, got %T", selector, result)}
	}
	return text, nil
}

// EvalOnSelector evaluates the expression with `this` bound to the first
// element matching the selector.
func (p *Page) EvalOnSelector(ctx context.Context, selector, expression string) (any, error) {
	expr := fmt.Sprintf(
		"(function() { var el = document.querySelector('%s'); if (el) { return (function(){ return %s; }).call(el); } return null; })()",
		driver.EscapeJSString(selector), expression,
	)
	result, err := p.driver.Evaluate(ctx, expr)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, missingSelectorError(selector)
	}
	return result, nil
}

// Content returns the full serialized markup of the current document.
func (p *Page) Content(ctx context.Context) (string, error) {
	result, err := p.driver.Evaluate(ctx, "document.documentElement.outerHTML")
	if err != nil {
		return "", err
	}
	markup, ok := result.(string)
	if !ok {
		return "", &driver.ProtocolError{Message: fmt.Sprintf("expected string document markup, got %T", result)}
	}
	return markup, nil
}

// CleanContent returns the current document reduced to its semantic
// skeleton, truncated at maxLength characters of text.
func (p *Page) CleanContent(ctx context.Context, maxLength int) (*CleanedHTML, error) {
	markup, err := p.Content(ctx)
	if err != nil {
		return nil, err
	}
	return CleanHTML(markup, maxLength)
}

// WaitForSelector polls the DOM until an element matching the selector
// exists, returning its handle, or a *driver.TimeoutError once the timeout
// lapses.
func (p *Page) WaitForSelector(ctx context.Context, selector string, timeout time.Duration) (*ElementHandle, error) {
	expr := fmt.Sprintf(
		"document.querySelector('%s') !== null",
		driver.EscapeJSString(selector),
	)

	deadline := time.Now().Add(timeout)
	for {
		result, err := p.driver.Evaluate(ctx, expr)
		if err != nil {
			return nil, err
		}
		if exists, _ := result.(bool); exists {
			return &ElementHandle{page: p, selector: selector}, nil
		}
		if time.Now().After(deadline) {
			return nil, &driver.TimeoutError{Action: "wait_for_selector", Timeout: timeout}
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(waitPollInterval):
		}
	}
}

// WaitForTimeout pauses for the given duration. Wait times are best-effort
// settle delays, not a scheduling contract.
func (p *Page) WaitForTimeout(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// Screenshot renders the current page to path and returns the image bytes.
func (p *Page) Screenshot(ctx context.Context, path string) ([]byte, error) {
	if err := p.driver.Screenshot(ctx, path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read screenshot %s: %w", path, err)
	}
	return data, nil
}

// SetViewportSize records the viewport for subsequent one-shot renders.
// The persistent page keeps the viewport it was launched with.
func (p *Page) SetViewportSize(width, height int) {
	p.viewport = Viewport{Width: width, Height: height}
}

func missingSelectorError(selector string) error {
	return &driver.ProtocolError{Message: fmt.Sprintf("no element matches selector %q", selector)}
}
