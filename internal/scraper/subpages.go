package scraper

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// nonNavPrefixes mark hrefs that never lead to a fetchable page.
var nonNavPrefixes = []string{"mailto:", "tel:", "javascript:", "#"}

// CandidateSubpages scans the page's anchors and returns absolute URLs of
// topically relevant subpages: hrefs that are navigational, contain one of
// the hint fragments, and resolve to http/https. Order follows document
// order with duplicates removed, so a visit cap keeps the earliest links.
func CandidateSubpages(baseURL string, doc *goquery.Document, hints []string) []string {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil
	}

	var out []string
	seen := make(map[string]struct{})

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok || href == "" {
			return
		}
		for _, p := range nonNavPrefixes {
			if strings.HasPrefix(href, p) {
				return
			}
		}

		if !containsHint(strings.ToLower(href), hints) {
			return
		}

		u, err := url.Parse(href)
		if err != nil {
			return
		}
		resolved := base.ResolveReference(u)
		if resolved.Scheme != "http" && resolved.Scheme != "https" {
			return
		}

		full := resolved.String()
		if _, dup := seen[full]; dup {
			return
		}
		seen[full] = struct{}{}
		out = append(out, full)
	})

	return out
}

// FilterTopical keeps the URLs whose lowercased form contains a hint,
// preserving order and dropping duplicates. Used for sitemap-sourced URLs.
func FilterTopical(urls []string, hints []string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, u := range urls {
		if !containsHint(strings.ToLower(u), hints) {
			continue
		}
		if _, dup := seen[u]; dup {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out
}

func containsHint(s string, hints []string) bool {
	for _, h := range hints {
		if strings.Contains(s, h) {
			return true
		}
	}
	return false
}
