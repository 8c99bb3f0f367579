package browser

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/phasma/pkg/driver"
)

// fakeSession scripts the driver surface so bridging behavior can be
// tested without an engine process.
type fakeSession struct {
	navigateFn   func(url string) (string, error)
	evaluateFn   func(expr string) (any, error)
	clickFn      func(selector string) (bool, error)
	fillFn       func(selector, value string) (bool, error)
	screenshotFn func(path string) error
	execFn       func(script string) ([]byte, error)

	evaluated []string
	closed    bool
}

func (f *fakeSession) Navigate(_ context.Context, url string) (string, error) {
	return f.navigateFn(url)
}

func (f *fakeSession) Evaluate(_ context.Context, expr string) (any, error) {
	f.evaluated = append(f.evaluated, expr)
	return f.evaluateFn(expr)
}

func (f *fakeSession) Click(_ context.Context, selector string) (bool, error) {
	return f.clickFn(selector)
}

func (f *fakeSession) Fill(_ context.Context, selector, value string) (bool, error) {
	return f.fillFn(selector, value)
}

func (f *fakeSession) Screenshot(_ context.Context, path string) error {
	return f.screenshotFn(path)
}

func (f *fakeSession) ExecScript(_ context.Context, script string, _ time.Duration) ([]byte, error) {
	return f.execFn(script)
}

func (f *fakeSession) Close() error {
	f.closed = true
	return nil
}

func newTestBrowser(t *testing.T, fake *fakeSession, allowedHosts ...string) *Browser {
	t.Helper()
	allowed, err := compileHostGlobs(allowedHosts)
	require.NoError(t, err)
	return &Browser{driver: fake, allowed: allowed}
}

func TestPageGoto(t *testing.T) {
	fake := &fakeSession{
		navigateFn: func(url string) (string, error) {
			return "<html><body><h1>Hello</h1></body></html>", nil
		},
	}
	page := newTestBrowser(t, fake).NewPage()

	markup, err := page.Goto(context.Background(), "https://example.com")
	require.NoError(t, err)
	assert.Contains(t, markup, "<h1>Hello</h1>")
	assert.Equal(t, "https://example.com", page.URL())
}

func TestPageGotoNavigationFailure(t *testing.T) {
	fake := &fakeSession{
		navigateFn: func(url string) (string, error) {
			return "", &driver.ProtocolError{Message: "Failed to load URL"}
		},
	}
	page := newTestBrowser(t, fake).NewPage()

	_, err := page.Goto(context.Background(), "https://unreachable.example")
	var protoErr *driver.ProtocolError
	require.ErrorAs(t, err, &protoErr)
	assert.Empty(t, page.URL(), "failed navigation must not record the URL")
}

func TestPageGotoAllowlist(t *testing.T) {
	tests := []struct {
		name    string
		allowed []string
		url     string
		wantErr bool
	}{
		{"empty allowlist allows all", nil, "https://anything.example", false},
		{"exact host match", []string{"example.com"}, "https://example.com/page", false},
		{"glob match", []string{"*.example.com"}, "https://docs.example.com", false},
		{"non-matching host denied", []string{"example.com"}, "https://evil.example", true},
		{"file urls bypass allowlist", []string{"example.com"}, "file:///tmp/page.html", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			navigated := false
			fake := &fakeSession{
				navigateFn: func(url string) (string, error) {
					navigated = true
					return "<html></html>", nil
				},
			}
			page := newTestBrowser(t, fake, tt.allowed...).NewPage()

			_, err := page.Goto(context.Background(), tt.url)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "not allowed")
				assert.False(t, navigated, "denied navigation must never reach the driver")
			} else {
				require.NoError(t, err)
				assert.True(t, navigated)
			}
		})
	}
}

// The driver reports a missing selector as false; the bridging layer
// raises instead so all page operations fail uniformly.
func TestPageClickMissingSelectorRaises(t *testing.T) {
	fake := &fakeSession{
		clickFn: func(selector string) (bool, error) { return false, nil },
	}
	page := newTestBrowser(t, fake).NewPage()

	err := page.Click(context.Background(), "#does-not-exist")
	var protoErr *driver.ProtocolError
	require.ErrorAs(t, err, &protoErr)
	assert.Contains(t, protoErr.Message, "#does-not-exist")
}

func TestPageClickSuccess(t *testing.T) {
	fake := &fakeSession{
		clickFn: func(selector string) (bool, error) { return true, nil },
	}
	page := newTestBrowser(t, fake).NewPage()
	assert.NoError(t, page.Click(context.Background(), "button"))
}

func TestPageFillMissingSelectorRaises(t *testing.T) {
	fake := &fakeSession{
		fillFn: func(selector, value string) (bool, error) { return false, nil },
	}
	page := newTestBrowser(t, fake).NewPage()

	err := page.Fill(context.Background(), "#missing", "x")
	var protoErr *driver.ProtocolError
	require.ErrorAs(t, err, &protoErr)
}

func TestPageTextContent(t *testing.T) {
	fake := &fakeSession{
		evaluateFn: func(expr string) (any, error) { return "Hello", nil },
	}
	page := newTestBrowser(t, fake).NewPage()

	text, err := page.TextContent(context.Background(), "h1")
	require.NoError(t, err)
	assert.Equal(t, "Hello", text)
	require.Len(t, fake.evaluated, 1)
	assert.Contains(t, fake.evaluated[0], "document.querySelector('h1')")
	assert.Contains(t, fake.evaluated[0], "el.textContent")
}

func TestPageTextContentMissingSelector(t *testing.T) {
	fake := &fakeSession{
		evaluateFn: func(expr string) (any, error) { return nil, nil },
	}
	page := newTestBrowser(t, fake).NewPage()

	_, err := page.TextContent(context.Background(), "#missing")
	var protoErr *driver.ProtocolError
	require.ErrorAs(t, err, &protoErr)
}

// Selectors containing quotes must be escaped before they are embedded in
// the generated querySelector expression.
func TestPageSelectorEscaping(t *testing.T) {
	fake := &fakeSession{
		evaluateFn: func(expr string) (any, error) { return "v", nil },
	}
	page := newTestBrowser(t, fake).NewPage()

	_, err := page.TextContent(context.Background(), "input[name='user']")
	require.NoError(t, err)
	assert.Contains(t, fake.evaluated[0], `input[name=\'user\']`)
}

func TestPageEvalOnSelector(t *testing.T) {
	fake := &fakeSession{
		evaluateFn: func(expr string) (any, error) { return float64(3), nil },
	}
	page := newTestBrowser(t, fake).NewPage()

	result, err := page.EvalOnSelector(context.Background(), "ul", "this.children.length")
	require.NoError(t, err)
	assert.Equal(t, float64(3), result)
	assert.Contains(t, fake.evaluated[0], "this.children.length")
}

func TestPageWaitForSelector(t *testing.T) {
	calls := 0
	fake := &fakeSession{
		evaluateFn: func(expr string) (any, error) {
			calls++
			return calls >= 3, nil
		},
	}
	page := newTestBrowser(t, fake).NewPage()

	handle, err := page.WaitForSelector(context.Background(), "#late", time.Second)
	require.NoError(t, err)
	assert.Equal(t, "#late", handle.Selector())
	assert.GreaterOrEqual(t, calls, 3)
}

func TestPageWaitForSelectorTimeout(t *testing.T) {
	fake := &fakeSession{
		evaluateFn: func(expr string) (any, error) { return false, nil },
	}
	page := newTestBrowser(t, fake).NewPage()

	_, err := page.WaitForSelector(context.Background(), "#never", 60*time.Millisecond)
	var timeoutErr *driver.TimeoutError
	require.ErrorAs(t, err, &timeoutErr)
	assert.Equal(t, "wait_for_selector", timeoutErr.Action)
}

func TestPageScreenshotReadsFileBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shot.png")
	fake := &fakeSession{
		screenshotFn: func(p string) error {
			return os.WriteFile(p, []byte("png-bytes"), 0o600)
		},
	}
	page := newTestBrowser(t, fake).NewPage()

	data, err := page.Screenshot(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), data)
}

func TestElementHandleDelegates(t *testing.T) {
	fake := &fakeSession{
		clickFn:    func(selector string) (bool, error) { return selector == "#btn", nil },
		evaluateFn: func(expr string) (any, error) { return "text", nil },
	}
	page := newTestBrowser(t, fake).NewPage()
	handle := &ElementHandle{page: page, selector: "#btn"}

	require.NoError(t, handle.Click(context.Background()))

	text, err := handle.TextContent(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "text", text)
}

func TestBrowserCloseIdempotentAndDisconnects(t *testing.T) {
	fake := &fakeSession{}
	b := newTestBrowser(t, fake)
	require.True(t, b.IsConnected())

	require.NoError(t, b.Close())
	require.NoError(t, b.Close())
	assert.True(t, fake.closed)
	assert.False(t, b.IsConnected())
}

func TestPageEvaluatePassthrough(t *testing.T) {
	wantErr := errors.New("engine gone")
	fake := &fakeSession{
		evaluateFn: func(expr string) (any, error) { return nil, wantErr },
	}
	page := newTestBrowser(t, fake).NewPage()

	_, err := page.Evaluate(context.Background(), "2 + 2")
	assert.ErrorIs(t, err, wantErr)
}
