package serp

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"github.com/hvacintel/prospector/internal/metrics"
	"github.com/hvacintel/prospector/pkg/useragent"
)

// defaultDDGEndpoint is the HTML (non-JS) DuckDuckGo results page.
const defaultDDGEndpoint = "https://html.duckduckgo.com/html/"

// ensure DuckDuckGo implements Provider
var _ Provider = (*DuckDuckGo)(nil)

// DuckDuckGo scrapes the DuckDuckGo HTML results page. No API key needed.
type DuckDuckGo struct {
	client   *resty.Client
	endpoint string
	uaPool   *useragent.Pool
	logger   *slog.Logger
}

// DuckDuckGoOption customizes the backend.
type DuckDuckGoOption func(*DuckDuckGo)

// WithDDGEndpoint overrides the results endpoint; tests point it at a local
// server.
func WithDDGEndpoint(endpoint string) DuckDuckGoOption {
	return func(d *DuckDuckGo) { d.endpoint = endpoint }
}

// WithDDGLogger overrides the default logger.
func WithDDGLogger(logger *slog.Logger) DuckDuckGoOption {
	return func(d *DuckDuckGo) { d.logger = logger }
}

// NewDuckDuckGo creates the scrape backend.
func NewDuckDuckGo(opts ...DuckDuckGoOption) *DuckDuckGo {
	d := &DuckDuckGo{
		client:   resty.New().SetRedirectPolicy(resty.FlexibleRedirectPolicy(5)),
		endpoint: defaultDDGEndpoint,
		uaPool:   useragent.BrowserPool(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Search scrapes one results page for the query. A 403 means the engine is
// rate-limiting us; it and any transport failure degrade to an empty slice.
func (d *DuckDuckGo) Search(ctx context.Context, query string, limit int) ([]string, error) {
	if limit < 0 {
		return nil, fmt.Errorf("limit cannot be negative: %d", limit)
	}
	if limit == 0 {
		return []string{}, nil
	}

	resp, err := d.client.R().
		SetContext(ctx).
		SetQueryParam("q", query).
		SetHeader("User-Agent", d.uaPool.GetSequential()).
		Get(d.endpoint)
	if err != nil {
		d.logger.Warn("ddg request failed", "query", query, "err", err)
		metrics.SearchQueriesTotal.WithLabelValues("ddg", "error").Inc()
		return []string{}, nil
	}

	if resp.StatusCode() == http.StatusForbidden {
		// Blocked; no retry, the throttle between queries is our only defense.
		d.logger.Warn("ddg blocked query", "query", query)
		metrics.SearchQueriesTotal.WithLabelValues("ddg", "blocked").Inc()
		return []string{}, nil
	}
	if resp.StatusCode() != http.StatusOK {
		d.logger.Warn("ddg unexpected status", "query", query, "status", resp.StatusCode())
		metrics.SearchQueriesTotal.WithLabelValues("ddg", "error").Inc()
		return []string{}, nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(resp.String()))
	if err != nil {
		d.logger.Warn("ddg parse failed", "query", query, "err", err)
		metrics.SearchQueriesTotal.WithLabelValues("ddg", "error").Inc()
		return []string{}, nil
	}

	var out []string
	doc.Find("a.result__a").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, ok := s.Attr("href")
		if !ok {
			return true
		}
		if real := unwrapRedirect(href); real != "" {
			out = append(out, real)
		}
		return len(out) < limit
	})

	metrics.SearchQueriesTotal.WithLabelValues("ddg", "ok").Inc()
	metrics.SearchResultsTotal.WithLabelValues("ddg").Add(float64(len(out)))
	return out, nil
}

// unwrapRedirect recovers the target URL from a DuckDuckGo redirect link of
// the form //duckduckgo.com/l/?uddg=<encoded>. Absolute http(s) links pass
// through; anything else is dropped.
func unwrapRedirect(href string) string {
	if strings.Contains(href, "/l/?") && strings.Contains(href, "uddg=") {
		u, err := url.Parse(href)
		if err != nil {
			return ""
		}
		if target := u.Query().Get("uddg"); target != "" {
			return target
		}
		return ""
	}
	if strings.HasPrefix(href, "http") {
		return href
	}
	return ""
}
