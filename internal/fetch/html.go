// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/net/html"

	"github.com/pdiddy/rol-export/internal/httputil"
)

// HTMLFinder fetches the page over plain HTTP and reads anchors from the
// parsed document. It sees only server-rendered links.
type HTMLFinder struct {
	Client    *http.Client
	UserAgent string
}

// FindLinks implements LinkFinder.
func (f *HTMLFinder) FindLinks(ctx context.Context, pageURL string) ([]Link, error) {
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := httputil.Get(ctx, client, pageURL, f.UserAgent, "text/html")
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", pageURL, err)
	}
	return anchors(doc), nil
}

// anchors collects every <a href> under n in document order.
func anchors(n *html.Node) []Link {
	var links []Link
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			if href, ok := getAttr(n, "href"); ok {
				links = append(links, Link{Href: href, Text: collapse(textContent(n))})
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return links
}

func getAttr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(textContent(c))
		b.WriteByte(' ')
	}
	return b.String()
}
