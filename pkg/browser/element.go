package browser

import "context"

// ElementHandle is a selector-bound handle to the first matching element.
// The engine has no element object references, so the handle re-resolves
// its selector on every operation.
type ElementHandle struct {
	page     *Page
	selector string
}

// Selector returns the CSS selector this handle is bound to.
func (e *ElementHandle) Selector() string { return e.selector }

// Click clicks the element.
func (e *ElementHandle) Click(ctx context.Context) error {
	return e.page.Click(ctx, e.selector)
}

// Fill sets the element's value and fires its input and change events.
func (e *ElementHandle) Fill(ctx context.Context, value string) error {
	return e.page.Fill(ctx, e.selector, value)
}

// TextContent returns the element's text content.
func (e *ElementHandle) TextContent(ctx context.Context) (string, error) {
	return e.page.TextContent(ctx, e.selector)
}

// InnerHTML returns the element's inner HTML.
func (e *ElementHandle) InnerHTML(ctx context.Context) (string, error) {
	return e.page.InnerHTML(ctx, e.selector)
}
