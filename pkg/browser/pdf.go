package browser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/entrhq/phasma/pkg/driver"
)

// defaultPDFTimeout bounds the one-shot render; pagination of a heavy page
// can take far longer than an ordinary command round trip.
const defaultPDFTimeout = 60 * time.Second

// Margins are per-side page margins in engine units (e.g. "1cm", "0.5in").
type Margins struct {
	Top    string `json:"top"`
	Bottom string `json:"bottom"`
	Left   string `json:"left"`
	Right  string `json:"right"`
}

// PDFOptions configures PDF generation.
type PDFOptions struct {
	// Format is the paper format: A3, A4, A5, Letter, Legal, etc.
	// Defaults to A4.
	Format string

	// Landscape selects landscape orientation.
	Landscape bool

	// Margin is a uniform margin applied to all sides. Defaults to 1cm.
	// Margins, when set, takes precedence.
	Margin  string
	Margins *Margins

	// Timeout bounds the one-shot engine run. Defaults to 60s.
	Timeout time.Duration
}

// PDF renders the page's current URL to a paginated PDF at path and
// returns its bytes.
//
// The persistent polling script cannot drive the engine's paper-size
// machinery, so this operation spawns a one-shot engine process with an
// inline script, re-navigates, and renders. A non-zero exit surfaces as a
// *driver.GenerationError; the produced file is validated before being
// returned so a corrupt render fails loudly instead of propagating bad
// bytes downstream.
func (p *Page) PDF(ctx context.Context, path string, opts PDFOptions) ([]byte, error) {
	if p.url == "" {
		return nil, errors.New("pdf: page has no URL; call Goto first")
	}

	script, err := buildPDFScript(p.url, path, p.viewport, opts)
	if err != nil {
		return nil, err
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultPDFTimeout
	}

	if _, err := p.driver.ExecScript(ctx, script, timeout); err != nil {
		return nil, err
	}

	if err := api.ValidateFile(path, nil); err != nil {
		return nil, &driver.GenerationError{
			ExitCode: 0,
			Stderr:   fmt.Sprintf("generated file is not a valid PDF: %v", err),
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read generated PDF %s: %w", path, err)
	}
	return data, nil
}

// buildPDFScript produces the one-shot engine program that loads the URL
// with the recorded viewport and renders it paginated.
func buildPDFScript(url, path string, viewport Viewport, opts PDFOptions) (string, error) {
	format := opts.Format
	if format == "" {
		format = "A4"
	}
	orientation := "portrait"
	if opts.Landscape {
		orientation = "landscape"
	}

	margins := opts.Margins
	if margins == nil {
		margin := opts.Margin
		if margin == "" {
			margin = "1cm"
		}
		margins = &Margins{Top: margin, Bottom: margin, Left: margin, Right: margin}
	}
	marginJSON, err := json.Marshal(margins)
	if err != nil {
		return "", fmt.Errorf("failed to encode pdf margins: %w", err)
	}

	return fmt.Sprintf(`var page = require('webpage').create();
page.viewportSize = { width: %d, height: %d };
page.paperSize = {
    format: '%s',
    orientation: '%s',
    margin: %s
};
page.settings.javascriptEnabled = true;
page.settings.localToRemoteUrlAccess = true;

page.open('%s', function(status) {
    if (status === 'success') {
        window.setTimeout(function() {
            page.render('%s', { format: 'pdf' });
            console.log('PDF saved');
            phantom.exit(0);
        }, 100);
    } else {
        console.error('Failed to load URL');
        phantom.exit(1);
    }
});
`,
		viewport.Width, viewport.Height,
		driver.EscapeJSString(format),
		orientation,
		marginJSON,
		driver.EscapeJSString(url),
		driver.EscapeJSString(path),
	), nil
}
