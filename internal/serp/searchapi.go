package serp

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-resty/resty/v2"
	"github.com/hvacintel/prospector/internal/metrics"
)

// ensure SearchAPI implements Provider
var _ Provider = (*SearchAPI)(nil)

// SearchAPI wraps a generic JSON search API: POST {"q": ..., "num": ...}
// with an X-API-KEY header, response {"results": [{"url": ...}, ...]}.
// Covers hosted SERP services without tying the pipeline to one vendor.
type SearchAPI struct {
	client   *resty.Client
	endpoint string
	apiKey   string
	logger   *slog.Logger
}

type searchAPIRequest struct {
	Query string `json:"q"`
	Num   int    `json:"num"`
}

type searchAPIResponse struct {
	Results []struct {
		URL string `json:"url"`
	} `json:"results"`
}

// NewSearchAPI creates the API-backed provider.
func NewSearchAPI(endpoint, apiKey string, logger *slog.Logger) *SearchAPI {
	if logger == nil {
		logger = slog.Default()
	}
	return &SearchAPI{
		client:   resty.New(),
		endpoint: endpoint,
		apiKey:   apiKey,
		logger:   logger,
	}
}

// Search issues one API call. Transport failures, rate-limit responses, and
// malformed payloads all degrade to an empty slice with a logged cause.
func (s *SearchAPI) Search(ctx context.Context, query string, limit int) ([]string, error) {
	if limit < 0 {
		return nil, fmt.Errorf("limit cannot be negative: %d", limit)
	}
	if limit == 0 {
		return []string{}, nil
	}

	var parsed searchAPIResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("X-API-KEY", s.apiKey).
		SetBody(searchAPIRequest{Query: query, Num: limit}).
		SetResult(&parsed).
		Post(s.endpoint)
	if err != nil {
		s.logger.Warn("search api request failed", "query", query, "err", err)
		metrics.SearchQueriesTotal.WithLabelValues("api", "error").Inc()
		return []string{}, nil
	}

	if resp.StatusCode() == http.StatusForbidden || resp.StatusCode() == http.StatusTooManyRequests {
		s.logger.Warn("search api blocked query", "query", query, "status", resp.StatusCode())
		metrics.SearchQueriesTotal.WithLabelValues("api", "blocked").Inc()
		return []string{}, nil
	}
	if resp.StatusCode() != http.StatusOK {
		s.logger.Warn("search api unexpected status", "query", query, "status", resp.StatusCode())
		metrics.SearchQueriesTotal.WithLabelValues("api", "error").Inc()
		return []string{}, nil
	}

	out := make([]string, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		if r.URL == "" {
			continue
		}
		out = append(out, r.URL)
		if len(out) >= limit {
			break
		}
	}

	metrics.SearchQueriesTotal.WithLabelValues("api", "ok").Inc()
	metrics.SearchResultsTotal.WithLabelValues("api").Add(float64(len(out)))
	return out, nil
}
