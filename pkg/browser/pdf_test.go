package browser

import (
	"context"
	"testing"

	"github.com/dop251/goja"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPDFScript(t *testing.T) {
	viewport := Viewport{Width: 1280, Height: 720}

	t.Run("defaults", func(t *testing.T) {
		script, err := buildPDFScript("https://example.com", "/tmp/out.pdf", viewport, PDFOptions{})
		require.NoError(t, err)

		assert.Contains(t, script, "format: 'A4'")
		assert.Contains(t, script, "orientation: 'portrait'")
		assert.Contains(t, script, `"top":"1cm"`)
		assert.Contains(t, script, "width: 1280, height: 720")
		assert.Contains(t, script, "page.open('https://example.com'")
		assert.Contains(t, script, "page.render('/tmp/out.pdf', { format: 'pdf' });")
		assert.Contains(t, script, "phantom.exit(1);")
	})

	t.Run("landscape letter with per-side margins", func(t *testing.T) {
		script, err := buildPDFScript("https://example.com", "/tmp/out.pdf", viewport, PDFOptions{
			Format:    "Letter",
			Landscape: true,
			Margins:   &Margins{Top: "2cm", Bottom: "1cm", Left: "5mm", Right: "5mm"},
		})
		require.NoError(t, err)

		assert.Contains(t, script, "format: 'Letter'")
		assert.Contains(t, script, "orientation: 'landscape'")
		assert.Contains(t, script, `"top":"2cm"`)
		assert.Contains(t, script, `"left":"5mm"`)
	})

	t.Run("uniform margin expands to all sides", func(t *testing.T) {
		script, err := buildPDFScript("https://example.com", "/tmp/out.pdf", viewport, PDFOptions{Margin: "3cm"})
		require.NoError(t, err)

		for _, side := range []string{"top", "bottom", "left", "right"} {
			assert.Contains(t, script, `"`+side+`":"3cm"`)
		}
	})

	t.Run("hostile paths are escaped", func(t *testing.T) {
		script, err := buildPDFScript("https://example.com/it's", `C:\out dir\report.pdf`, viewport, PDFOptions{})
		require.NoError(t, err)

		_, compileErr := goja.Compile("pdf.js", script, false)
		assert.NoError(t, compileErr, "generated PDF script must be syntactically valid")
	})
}

func TestPDFRequiresNavigation(t *testing.T) {
	page := newTestBrowser(t, &fakeSession{}).NewPage()

	_, err := page.PDF(context.Background(), "/tmp/out.pdf", PDFOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "call Goto first")
}
