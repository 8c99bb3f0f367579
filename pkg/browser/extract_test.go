package browser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractStructured(t *testing.T) {
	input := `<html>
	<head><title>News Site</title></head>
	<body>
		<h1>Top Story</h1>
		<p>Something happened   today.</p>
		<h2>Second Story</h2>
		<a href="/story-1">Read more</a>
		<a href="https://other.example/story-2">External</a>
		<a>no href</a>
	</body>
	</html>`

	content, err := ExtractStructured(input)
	require.NoError(t, err)

	assert.Equal(t, "News Site", content.Title)
	assert.Equal(t, []string{"Top Story", "Second Story"}, content.Headings)
	require.Len(t, content.Links, 2)
	assert.Equal(t, Link{Text: "Read more", Href: "/story-1"}, content.Links[0])
	assert.Equal(t, "https://other.example/story-2", content.Links[1].Href)
	assert.Contains(t, content.Body, "Something happened today.")
}

func TestExtractStructuredEmptyBody(t *testing.T) {
	content, err := ExtractStructured("<html><head><title>t</title></head><body></body></html>")
	require.NoError(t, err)
	assert.Empty(t, content.Headings)
	assert.Empty(t, content.Links)
	assert.Empty(t, content.Body)
}
