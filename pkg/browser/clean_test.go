package browser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanHTML(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		maxLength int
		wantTitle string
		wantDesc  string
		wantHTML  []string // substrings that should be present
		wantNot   []string // substrings that should NOT be present
		truncated bool
	}{
		{
			name: "script and style removal",
			input: `<html>
				<head>
					<title>Test Page</title>
					<meta name="description" content="Test description">
					<script>alert('evil');</script>
					<style>body { color: red; }</style>
				</head>
				<body>
					<h1 id="main-title">Hello World</h1>
					<p class="intro">This is a test.</p>
				</body>
			</html>`,
			maxLength: 10000,
			wantTitle: "Test Page",
			wantDesc:  "Test description",
			wantHTML:  []string{`<h1 id="main-title">`, "Hello World", `<p class="intro">`, "This is a test"},
			wantNot:   []string{"<script>", "alert", "<style>", "color: red"},
		},
		{
			name: "semantic structure preserved",
			input: `<html><body>
				<header><nav><a href="/home">Home</a></nav></header>
				<main>
					<section id="content">
						<article><h2>Article Title</h2></article>
					</section>
				</main>
				<footer><p>Footer</p></footer>
			</body></html>`,
			maxLength: 10000,
			wantHTML:  []string{"<header>", "<nav>", "<main>", `<section id="content">`, "<article>", "<footer>"},
		},
		{
			name: "targeting attributes preserved",
			input: `<html><body>
				<form action="/submit" method="post">
					<input type="text" name="username" id="user-input" placeholder="Enter name" data-test="username-field" onclick="hax()">
					<button type="submit" class="btn-primary">Submit</button>
				</form>
			</body></html>`,
			maxLength: 10000,
			wantHTML: []string{
				`action="/submit"`, `method="post"`,
				`name="username"`, `id="user-input"`, `placeholder="Enter name"`, `data-test="username-field"`,
				`type="submit"`, `class="btn-primary"`,
			},
			wantNot: []string{"onclick", "hax"},
		},
		{
			name:      "truncation at max length",
			input:     "<html><body><p>" + strings.Repeat("word ", 200) + "</p></body></html>",
			maxLength: 50,
			truncated: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := CleanHTML(tt.input, tt.maxLength)
			require.NoError(t, err)

			assert.Equal(t, tt.wantTitle, result.Title)
			assert.Equal(t, tt.wantDesc, result.Description)
			assert.Equal(t, tt.truncated, result.Truncated)

			for _, want := range tt.wantHTML {
				assert.Contains(t, result.HTML, want)
			}
			for _, not := range tt.wantNot {
				assert.NotContains(t, result.HTML, not)
			}
		})
	}
}

func TestCleanHTMLLinkAndImageAttributes(t *testing.T) {
	input := `<html><body>
		<a href="/docs" target="_blank" onmouseover="track()">Docs</a>
		<img src="/logo.png" alt="Logo" width="10" height="10">
	</body></html>`

	result, err := CleanHTML(input, 10000)
	require.NoError(t, err)

	assert.Contains(t, result.HTML, `href="/docs"`)
	assert.Contains(t, result.HTML, `target="_blank"`)
	assert.Contains(t, result.HTML, `src="/logo.png"`)
	assert.Contains(t, result.HTML, `alt="Logo"`)
	assert.NotContains(t, result.HTML, "onmouseover")
	assert.NotContains(t, result.HTML, `width=`)
}

func TestCleanHTMLEmptyDocument(t *testing.T) {
	result, err := CleanHTML("", 1000)
	require.NoError(t, err)
	assert.Empty(t, result.Title)
	assert.False(t, result.Truncated)
}
