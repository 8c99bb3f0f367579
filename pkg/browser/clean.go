package browser

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// CleanedHTML is the semantic skeleton of a rendered document.
type CleanedHTML struct {
	HTML        string
	Title       string
	Description string
	Truncated   bool
}

// CleanHTML parses raw markup and reduces it to its semantic structure:
// scripts, styles and other noise are dropped, targeting attributes (id,
// class, href, name, data-*) are kept, and text is truncated once
// maxLength characters have been emitted.
func CleanHTML(rawHTML string, maxLength int) (*CleanedHTML, error) {
	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	c := &htmlCleaner{maxLength: maxLength}
	result := &CleanedHTML{
		Title:       findFirstText(doc, "title"),
		Description: findMetaDescription(doc),
	}
	result.Truncated = c.walk(doc, 0)
	result.HTML = c.out.String()
	return result, nil
}

// htmlCleaner accumulates cleaned output while tracking the text budget.
type htmlCleaner struct {
	out       strings.Builder
	length    int
	maxLength int
}

// walk processes one node and its subtree. It returns true once the text
// budget is exhausted.
func (c *htmlCleaner) walk(n *html.Node, depth int) bool {
	if c.length >= c.maxLength {
		return true
	}

	switch n.Type {
	case html.CommentNode:
		return false
	case html.TextNode:
		return c.writeText(n.Data)
	case html.ElementNode:
		tag := strings.ToLower(n.Data)
		if droppedTags[tag] {
			return false
		}
		return c.writeElement(n, tag, depth)
	default:
		return c.walkChildren(n, depth)
	}
}

func (c *htmlCleaner) walkChildren(n *html.Node, depth int) bool {
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if c.walk(child, depth) {
			return true
		}
	}
	return false
}

func (c *htmlCleaner) writeText(raw string) bool {
	text := strings.TrimSpace(raw)
	if text == "" {
		return false
	}

	if c.length+len(text) > c.maxLength {
		remaining := c.maxLength - c.length
		c.out.WriteString(text[:remaining])
		c.out.WriteString("...")
		c.length = c.maxLength
		return true
	}

	c.out.WriteString(text)
	c.length += len(text)
	return false
}

func (c *htmlCleaner) writeElement(n *html.Node, tag string, depth int) bool {
	if depth > 0 && blockTags[tag] {
		c.out.WriteString("\n")
		c.out.WriteString(strings.Repeat("  ", depth))
	}

	c.out.WriteString("<")
	c.out.WriteString(tag)
	for _, attr := range n.Attr {
		if keepAttribute(tag, attr.Key) {
			fmt.Fprintf(&c.out, ` %s="%s"`, attr.Key, html.EscapeString(attr.Val))
		}
	}
	c.out.WriteString(">")
	c.length += len(tag) + 2

	truncated := c.walkChildren(n, depth+1)

	if !voidTags[tag] {
		if blockTags[tag] {
			c.out.WriteString("\n")
			c.out.WriteString(strings.Repeat("  ", depth))
		}
		c.out.WriteString("</")
		c.out.WriteString(tag)
		c.out.WriteString(">")
		c.length += len(tag) + 3
	}

	return truncated
}

// droppedTags are removed entirely, subtree included.
var droppedTags = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"iframe":   true,
	"embed":    true,
	"object":   true,
	"svg":      true,
}

// blockTags get newline-and-indent formatting in the cleaned output.
var blockTags = map[string]bool{
	"div": true, "p": true, "section": true, "article": true,
	"header": true, "footer": true, "nav": true, "main": true, "aside": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"ul": true, "ol": true, "li": true,
	"table": true, "tr": true, "td": true, "th": true,
	"form": true, "fieldset": true, "blockquote": true, "pre": true,
}

// voidTags never take a closing tag.
var voidTags = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

// globalAttributes are preserved on every element.
var globalAttributes = map[string]bool{
	"id":               true,
	"class":            true,
	"role":             true,
	"aria-label":       true,
	"aria-describedby": true,
}

// keepAttribute reports whether an attribute is useful for targeting or
// analysis and should survive cleaning.
func keepAttribute(tag, attr string) bool {
	attr = strings.ToLower(attr)
	if globalAttributes[attr] {
		return true
	}
	// data-* attributes are common JS targeting hooks.
	if strings.HasPrefix(attr, "data-") {
		return true
	}

	switch tag {
	case "a":
		return attr == "href" || attr == "target"
	case "img":
		return attr == "src" || attr == "alt"
	case "input", "textarea", "select":
		return attr == "name" || attr == "type" || attr == "placeholder" || attr == "value"
	case "button":
		return attr == "type" || attr == "name"
	case "form":
		return attr == "action" || attr == "method"
	case "table":
		return attr == "summary"
	}
	return false
}

// findFirstText returns the trimmed text of the first element with the
// given tag name.
func findFirstText(doc *html.Node, tag string) string {
	var found string
	var traverse func(*html.Node)
	traverse = func(n *html.Node) {
		if found != "" {
			return
		}
		if n.Type == html.ElementNode && n.Data == tag {
			if n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
				found = strings.TrimSpace(n.FirstChild.Data)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			traverse(c)
		}
	}
	traverse(doc)
	return found
}

// findMetaDescription returns the content of <meta name="description">.
func findMetaDescription(doc *html.Node) string {
	var found string
	var traverse func(*html.Node)
	traverse = func(n *html.Node) {
		if found != "" {
			return
		}
		if n.Type == html.ElementNode && n.Data == "meta" {
			var isDescription bool
			var content string
			for _, attr := range n.Attr {
				if attr.Key == "name" && attr.Val == "description" {
					isDescription = true
				}
				if attr.Key == "content" {
					content = attr.Val
				}
			}
			if isDescription && content != "" {
				found = strings.TrimSpace(content)
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			traverse(c)
		}
	}
	traverse(doc)
	return found
}
