package driver

import (
	"strings"
	"testing"
	"time"

	"github.com/dop251/goja"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testScriptConfig() scriptConfig {
	return scriptConfig{
		CommandPath:    "/tmp/phasma-123.cmd",
		ResponsePath:   "/tmp/phasma-123.rsp",
		ViewportWidth:  1024,
		ViewportHeight: 768,
		PollInterval:   50 * time.Millisecond,
		SettleDelay:    100 * time.Millisecond,
	}
}

func TestBuildBootstrapScript(t *testing.T) {
	script := buildBootstrapScript(testScriptConfig())

	assert.Contains(t, script, "console.log('READY');")
	assert.Contains(t, script, "/tmp/phasma-123.cmd")
	assert.Contains(t, script, "/tmp/phasma-123.rsp")
	assert.Contains(t, script, "width: 1024, height: 768")
	assert.Contains(t, script, "setTimeout(processCommands, 50);")
	assert.Contains(t, script, "}, 100);") // navigate settle delay
	assert.Contains(t, script, "Failed to load URL")
	assert.Contains(t, script, "Screenshot saved")
	assert.Contains(t, script, "phantom.exit(0);")
	// The response envelope must echo the request id.
	assert.Contains(t, script, "body.id = id;")
}

// The generator embeds filesystem paths as string literals, so every
// generated script must survive a syntax check even for hostile paths.
func TestBootstrapScriptCompiles(t *testing.T) {
	tests := []struct {
		name string
		cfg  scriptConfig
	}{
		{
			name: "default paths",
			cfg:  testScriptConfig(),
		},
		{
			name: "windows style backslash paths",
			cfg: scriptConfig{
				CommandPath:    `C:\Temp\phasma 1.cmd`,
				ResponsePath:   `C:\Temp\phasma 1.rsp`,
				ViewportWidth:  800,
				ViewportHeight: 600,
				PollInterval:   10 * time.Millisecond,
				SettleDelay:    time.Millisecond,
			},
		},
		{
			name: "paths with quotes and newlines",
			cfg: scriptConfig{
				CommandPath:    "/tmp/it's \"here\"\n.cmd",
				ResponsePath:   "/tmp/it's \"here\"\n.rsp",
				ViewportWidth:  1,
				ViewportHeight: 1,
				PollInterval:   time.Millisecond,
				SettleDelay:    time.Millisecond,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			script := buildBootstrapScript(tt.cfg)
			_, err := goja.Compile("bootstrap.js", script, false)
			require.NoError(t, err, "generated script must be syntactically valid")
		})
	}
}

func TestEscapeJSString(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "hello", "hello"},
		{"single quotes", "it's", `it\'s`},
		{"double quotes", `say "hi"`, `say \"hi\"`},
		{"backslashes", `C:\tmp`, `C:\\tmp`},
		{"newlines", "a\nb\r", `a\nb\r`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EscapeJSString(tt.in))
		})
	}
}

// Every selector variant the bridging layer can produce must pass through
// the escaper without producing an unterminated literal.
func TestEscapeJSStringRoundTripsThroughGoja(t *testing.T) {
	inputs := []string{
		"#plain",
		"input[name='user']",
		`a[data-x="y"]`,
		"weird\\selector",
	}
	for _, in := range inputs {
		src := "var s = '" + EscapeJSString(in) + "';"
		if _, err := goja.Compile("snippet.js", src, false); err != nil {
			t.Errorf("escaped %q does not compile: %v", in, err)
		}
	}
	if strings.Contains(EscapeJSString("\n"), "\n") {
		t.Error("raw newline survived escaping")
	}
}
