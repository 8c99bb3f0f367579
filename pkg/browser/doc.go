// Package browser provides a Playwright-shaped consumer API over the
// persistent PhantomJS driver.
//
// The package is a thin bridging layer: every page and element operation is
// a parameter-building wrapper around the driver's command vocabulary
// (navigate, evaluate, click, fill, screenshot). The one exception is PDF
// generation, which the polling protocol cannot express; it falls back to a
// one-shot engine invocation with its own inline script.
//
// # Hierarchy
//
//	Browser -> BrowserContext -> Page -> ElementHandle
//
// Contexts and pages are nominal groupings over the single persistent page
// the engine maintains; there is no true process isolation between them.
//
// # Error Layering
//
// The driver reports a missing selector as a boolean false. This layer
// deliberately converts that into a *driver.ProtocolError so that Click,
// Fill, TextContent and friends all fail the same way, which keeps the
// consumer API consistent.
//
// # Content Helpers
//
// CleanHTML reduces raw page markup to its semantic skeleton for analysis,
// and ExtractStructured pulls the title, headings, links and body text out
// of a rendered document.
package browser
