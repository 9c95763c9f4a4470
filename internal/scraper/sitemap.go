package scraper

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	sitemap "github.com/oxffaa/gopher-parse-sitemap"
)

// SitemapFetcher discovers page URLs from a site's sitemap. The subpage
// crawl falls back to it when a primary page exposes no topical links.
type SitemapFetcher struct {
	fetcher *Fetcher
	logger  *slog.Logger
}

// NewSitemapFetcher initializes a new SitemapFetcher.
func NewSitemapFetcher(fetcher *Fetcher, logger *slog.Logger) *SitemapFetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &SitemapFetcher{fetcher: fetcher, logger: logger}
}

// Fetch downloads sitemapURL and returns the page URLs it lists. A sitemap
// index is followed one level deep.
func (s *SitemapFetcher) Fetch(ctx context.Context, sitemapURL string) ([]string, error) {
	s.logger.Debug("fetching sitemap", "url", sitemapURL)

	result, err := s.fetcher.Fetch(ctx, sitemapURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch sitemap: %w", err)
	}
	if !result.OK() {
		return nil, fmt.Errorf("sitemap unavailable: status=%d err=%q", result.StatusCode, result.Error)
	}

	var urls []string
	err = sitemap.Parse(bytes.NewReader(result.Body), func(e sitemap.Entry) error {
		urls = append(urls, e.GetLocation())
		return nil
	})

	if err != nil || len(urls) == 0 {
		// Possibly a sitemap index; collect nested sitemaps and recurse once.
		var nested []string
		indexErr := sitemap.ParseIndex(bytes.NewReader(result.Body), func(e sitemap.IndexEntry) error {
			nested = append(nested, e.GetLocation())
			return nil
		})
		if indexErr != nil {
			return nil, fmt.Errorf("failed to parse sitemap: %w", indexErr)
		}
		for _, nestedURL := range nested {
			nestedURLs, err := s.fetchLeaf(ctx, nestedURL)
			if err != nil {
				s.logger.Debug("nested sitemap failed", "url", nestedURL, "err", err)
				continue
			}
			urls = append(urls, nestedURLs...)
		}
	}

	return urls, nil
}

// fetchLeaf parses a plain (non-index) sitemap.
func (s *SitemapFetcher) fetchLeaf(ctx context.Context, sitemapURL string) ([]string, error) {
	result, err := s.fetcher.Fetch(ctx, sitemapURL)
	if err != nil {
		return nil, err
	}
	if !result.OK() {
		return nil, fmt.Errorf("sitemap unavailable: status=%d err=%q", result.StatusCode, result.Error)
	}

	var urls []string
	err = sitemap.Parse(bytes.NewReader(result.Body), func(e sitemap.Entry) error {
		urls = append(urls, e.GetLocation())
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse sitemap: %w", err)
	}
	return urls, nil
}
