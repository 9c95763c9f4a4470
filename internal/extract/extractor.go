package extract

import (
	"bytes"
	"context"
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/hvacintel/prospector/internal/metrics"
	"github.com/hvacintel/prospector/internal/scraper"
	"github.com/hvacintel/prospector/internal/supplier"
)

// Config holds the vocabularies and knobs for the extraction orchestrator.
type Config struct {
	Brands            []string
	EquipmentKeywords []string
	PartsKeywords     []string
	SubpageHints      []string
	// SubpageLimit caps how many topical subpages are visited per site.
	SubpageLimit int
	// PhoneRegion is the default region for telephone validation.
	PhoneRegion string
	// RespectRobots gates subpage fetches on the host's robots.txt.
	RespectRobots bool
	// UserAgent is the agent name used for robots.txt group matching.
	UserAgent string
	// UseSitemaps falls back to robots.txt-advertised sitemaps when the
	// primary page exposes no topical links.
	UseSitemaps bool
}

// Extractor turns one URL into one supplier.Record. It never fails: every
// input, however malformed or unreachable, yields a complete record with
// absences left empty.
type Extractor struct {
	cfg      Config
	fetcher  *scraper.Fetcher
	robots   *scraper.RobotsAuditor
	sitemaps *scraper.SitemapFetcher
	logger   *slog.Logger
}

// New creates an Extractor.
func New(cfg Config, fetcher *scraper.Fetcher, logger *slog.Logger) *Extractor {
	if cfg.SubpageLimit <= 0 {
		cfg.SubpageLimit = 3
	}
	if cfg.PhoneRegion == "" {
		cfg.PhoneRegion = "US"
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "*"
	}
	if logger == nil {
		logger = slog.Default()
	}

	e := &Extractor{
		cfg:     cfg,
		fetcher: fetcher,
		logger:  logger,
	}
	if cfg.RespectRobots || cfg.UseSitemaps {
		e.robots = scraper.NewRobotsAuditor(fetcher, logger)
	}
	if cfg.UseSitemaps {
		e.sitemaps = scraper.NewSitemapFetcher(fetcher, logger)
	}
	return e
}

// FromURL runs the full state machine for one input URL:
// normalize -> fetch -> parse -> extract primary -> (subpage crawl) -> done.
// Fetch failure short-circuits to an all-absent record tagged with the
// normalized URL.
func (e *Extractor) FromURL(ctx context.Context, rawURL string) *supplier.Record {
	normalized, ok := scraper.NormalizeURL(rawURL)
	rec := &supplier.Record{Website: normalized}
	if !ok {
		return rec
	}

	res, err := e.fetcher.Fetch(ctx, normalized)
	if err != nil || !res.OK() {
		e.logger.Info("primary fetch failed", "url", normalized)
		return rec
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.Body))
	if err != nil {
		e.logger.Info("html parse failed", "url", normalized, "err", err)
		return rec
	}

	e.extractInto(rec, doc, "primary")

	if rec.KeyFieldsComplete() {
		return rec
	}

	for _, sub := range e.subpageCandidates(ctx, normalized, doc) {
		if e.cfg.RespectRobots && e.robots != nil {
			allowed, err := e.robots.IsAllowed(ctx, sub, e.cfg.UserAgent)
			if err == nil && !allowed {
				e.logger.Debug("subpage disallowed by robots.txt", "url", sub)
				continue
			}
		}

		subRes, err := e.fetcher.Fetch(ctx, sub)
		if err != nil || !subRes.OK() {
			continue
		}
		metrics.SubpageFetchesTotal.Inc()

		subDoc, err := goquery.NewDocumentFromReader(bytes.NewReader(subRes.Body))
		if err != nil {
			continue
		}

		found := &supplier.Record{}
		e.extractInto(found, subDoc, "subpage")
		rec.Merge(found)
	}

	return rec
}

// extractInto fills the record's still-absent fields from the document.
func (e *Extractor) extractInto(rec *supplier.Record, doc *goquery.Document, level string) {
	text := PageText(doc)

	fill := func(dst *string, field string, get func() string) {
		if *dst != "" {
			return
		}
		if v := get(); v != "" {
			*dst = v
			metrics.FieldsFilledTotal.WithLabelValues(field, level).Inc()
		}
	}
	fillList := func(dst *[]string, field string, get func() []string) {
		if len(*dst) > 0 {
			return
		}
		if v := get(); len(v) > 0 {
			*dst = v
			metrics.FieldsFilledTotal.WithLabelValues(field, level).Inc()
		}
	}

	fill(&rec.CompanyName, "company_name", func() string { return CompanyName(doc) })
	fill(&rec.Location, "location", func() string { return Location(doc) })
	fill(&rec.Phone, "phone", func() string { return Phone(text, e.cfg.PhoneRegion) })
	fill(&rec.Email, "email", func() string { return Email(text) })
	fillList(&rec.Brands, "brands", func() []string { return BrandMentions(text, doc, e.cfg.Brands) })
	fillList(&rec.Equipment, "equipment", func() []string { return Keywords(text, e.cfg.EquipmentKeywords) })
	fillList(&rec.Parts, "parts", func() []string { return Keywords(text, e.cfg.PartsKeywords) })
}

// subpageCandidates collects topical links from the page, falling back to
// the site's sitemap when configured and the page itself offers none. The
// result is capped at SubpageLimit in discovery order.
func (e *Extractor) subpageCandidates(ctx context.Context, pageURL string, doc *goquery.Document) []string {
	subs := scraper.CandidateSubpages(pageURL, doc, e.cfg.SubpageHints)

	if len(subs) == 0 && e.cfg.UseSitemaps && e.robots != nil && e.sitemaps != nil {
		if u, err := url.Parse(pageURL); err == nil {
			host := u.Scheme + "://" + u.Host
			maps, _ := e.robots.Sitemaps(ctx, host)
			for _, m := range maps {
				urls, err := e.sitemaps.Fetch(ctx, m)
				if err != nil {
					continue
				}
				subs = append(subs, scraper.FilterTopical(urls, e.cfg.SubpageHints)...)
				if len(subs) >= e.cfg.SubpageLimit {
					break
				}
			}
			// Never revisit the primary page via its sitemap entry.
			subs = dropURL(subs, pageURL)
		}
	}

	if len(subs) > e.cfg.SubpageLimit {
		subs = subs[:e.cfg.SubpageLimit]
	}
	return subs
}

func dropURL(urls []string, target string) []string {
	trimmed := strings.TrimSuffix(target, "/")
	out := urls[:0]
	for _, u := range urls {
		if strings.TrimSuffix(u, "/") == trimmed {
			continue
		}
		out = append(out, u)
	}
	return out
}
