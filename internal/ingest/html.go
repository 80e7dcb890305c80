package ingest

import (
	"io"
	"strings"

	"golang.org/x/net/html"
)

// extractText strips an HTML document down to its visible text.
func extractText(r io.Reader) string {
	_, text := parseHTML(r)
	return text
}

// extractTitled returns the document title and visible text.
func extractTitled(r io.Reader) (string, string) {
	return parseHTML(r)
}

func parseHTML(r io.Reader) (title, text string) {
	doc, err := html.Parse(r)
	if err != nil {
		// Fall back to whatever raw bytes remain unread; better a rough
		// source than none.
		raw, _ := io.ReadAll(r)
		return "", string(raw)
	}

	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.ElementNode:
			switch n.Data {
			case "script", "style", "noscript", "head":
				if n.Data == "head" {
					// Still mine the title out of head.
					for c := n.FirstChild; c != nil; c = c.NextSibling {
						if c.Type == html.ElementNode && c.Data == "title" && c.FirstChild != nil {
							title = strings.TrimSpace(c.FirstChild.Data)
						}
					}
				}
				return
			}
		case html.TextNode:
			if t := strings.TrimSpace(n.Data); t != "" {
				b.WriteString(t)
				b.WriteString(" ")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return title, strings.TrimSpace(b.String())
}
