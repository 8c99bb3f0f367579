package browser

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Link is a hyperlink found in a document.
type Link struct {
	Text string `json:"text"`
	Href string `json:"href"`
}

// StructuredContent is a document reduced to its analytically useful
// parts.
type StructuredContent struct {
	Title    string   `json:"title"`
	Headings []string `json:"headings"`
	Links    []Link   `json:"links"`
	Body     string   `json:"body"`
}

// ExtractStructured parses rendered markup and pulls out the title,
// headings, links and collapsed body text.
func ExtractStructured(rawHTML string) (*StructuredContent, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	content := &StructuredContent{
		Title: strings.TrimSpace(doc.Find("title").First().Text()),
	}

	doc.Find("h1, h2, h3, h4, h5, h6").Each(func(_ int, s *goquery.Selection) {
		if text := strings.TrimSpace(s.Text()); text != "" {
			content.Headings = append(content.Headings, text)
		}
	})

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if href == "" {
			return
		}
		content.Links = append(content.Links, Link{
			Text: strings.TrimSpace(s.Text()),
			Href: href,
		})
	})

	content.Body = collapseWhitespace(doc.Find("body").Text())
	return content, nil
}

// collapseWhitespace normalizes runs of whitespace to single spaces.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
