package config

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"
)

// SectionIDBrowser is the identifier for the browser section.
const SectionIDBrowser = "browser"

// knownPaperFormats are the paper sizes the engine paginates to.
var knownPaperFormats = []string{"A3", "A4", "A5", "Legal", "Letter", "Tabloid"}

// BrowserSection holds persistent defaults for the bridging layer:
// the navigation allowlist and PDF output defaults.
type BrowserSection struct {
	allowedHosts []string
	pdfFormat    string
	pdfMargin    string
}

// NewBrowserSection creates a browser section with built-in defaults.
func NewBrowserSection() *BrowserSection {
	return &BrowserSection{
		pdfFormat: "A4",
		pdfMargin: "1cm",
	}
}

// ID returns the section identifier.
func (s *BrowserSection) ID() string { return SectionIDBrowser }

// Title returns the section title.
func (s *BrowserSection) Title() string { return "Browser" }

// Description returns the section description.
func (s *BrowserSection) Description() string {
	return "Navigation allowlist and PDF rendering defaults"
}

// Data returns the current configuration data.
func (s *BrowserSection) Data() map[string]any {
	hosts := make([]any, len(s.allowedHosts))
	for i, h := range s.allowedHosts {
		hosts[i] = h
	}
	return map[string]any{
		"allowed_hosts": hosts,
		"pdf_format":    s.pdfFormat,
		"pdf_margin":    s.pdfMargin,
	}
}

// SetData updates the configuration from stored data. Missing keys keep
// their current values.
func (s *BrowserSection) SetData(data map[string]any) error {
	if data == nil {
		return nil
	}

	if hosts, ok := stringSliceValue(data, "allowed_hosts"); ok {
		s.allowedHosts = hosts
	} else if _, present := data["allowed_hosts"]; present {
		return fmt.Errorf("allowed_hosts must be a list of strings")
	}
	if v, ok := stringValue(data, "pdf_format"); ok {
		s.pdfFormat = v
	}
	if v, ok := stringValue(data, "pdf_margin"); ok {
		s.pdfMargin = v
	}
	return nil
}

// Validate validates the current configuration. Host patterns must be
// compilable globs and the PDF format must be one the engine knows.
func (s *BrowserSection) Validate() error {
	for _, pattern := range s.allowedHosts {
		if _, err := glob.Compile(pattern); err != nil {
			return fmt.Errorf("invalid allowed host pattern %q: %w", pattern, err)
		}
	}

	if s.pdfFormat != "" {
		known := false
		for _, format := range knownPaperFormats {
			if strings.EqualFold(s.pdfFormat, format) {
				known = true
				break
			}
		}
		if !known {
			return fmt.Errorf("unknown pdf format %q (expected one of %s)",
				s.pdfFormat, strings.Join(knownPaperFormats, ", "))
		}
	}
	return nil
}

// Reset restores the section to defaults.
func (s *BrowserSection) Reset() {
	*s = *NewBrowserSection()
}

// AllowedHosts returns a copy of the navigation allowlist patterns.
func (s *BrowserSection) AllowedHosts() []string {
	out := make([]string, len(s.allowedHosts))
	copy(out, s.allowedHosts)
	return out
}

// PDFFormat returns the default paper format.
func (s *BrowserSection) PDFFormat() string { return s.pdfFormat }

// PDFMargin returns the default page margin.
func (s *BrowserSection) PDFMargin() string { return s.pdfMargin }
