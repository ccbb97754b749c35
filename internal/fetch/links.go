// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"context"
	"net/url"
	"path"
	"strings"
)

// Link is an anchor found on the annex listing page.
type Link struct {
	Href string `json:"href"`
	Text string `json:"text"`
}

// LinkFinder lists the anchors of a web page.
type LinkFinder interface {
	FindLinks(ctx context.Context, pageURL string) ([]Link, error)
}

// annexLabels are matched against the lower-cased anchor text. "anexo i"
// is a prefix of "anexo ii", so both labels are kept for readability only.
var annexLabels = []string{"anexo i", "anexo ii"}

// FilterAnnexLinks keeps anchors that point at a PDF and whose text names
// Anexo I or Anexo II. Relative hrefs are resolved against pageURL and
// duplicate targets are dropped, keeping the first occurrence.
func FilterAnnexLinks(pageURL string, links []Link) []Link {
	base, err := url.Parse(pageURL)
	if err != nil {
		base = nil
	}

	seen := make(map[string]bool)
	var out []Link
	for _, l := range links {
		href := strings.TrimSpace(l.Href)
		if !strings.Contains(strings.ToLower(href), ".pdf") {
			continue
		}
		if !isAnnexText(l.Text) {
			continue
		}

		target := resolve(base, href)
		if target == "" || seen[target] {
			continue
		}
		seen[target] = true
		out = append(out, Link{Href: target, Text: collapse(l.Text)})
	}
	return out
}

func isAnnexText(text string) bool {
	t := strings.ToLower(collapse(text))
	for _, label := range annexLabels {
		if strings.Contains(t, label) {
			return true
		}
	}
	return false
}

func resolve(base *url.URL, href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if base != nil {
		u = base.ResolveReference(u)
	}
	u.Fragment = ""
	return u.String()
}

// FileName returns the last path segment of a link target, which is the
// name the PDF is saved under. u.Path is already decoded once; a segment that
// would still name a parent or another directory yields "".
func FileName(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	name := path.Base(u.Path)
	if name == "." || name == ".." || name == "/" || strings.ContainsAny(name, `/\`) {
		return ""
	}
	return name
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
