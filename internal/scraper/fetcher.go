package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hvacintel/prospector/internal/blockpage"
	"github.com/hvacintel/prospector/internal/fingerprint"
	"github.com/hvacintel/prospector/internal/metrics"
	"github.com/hvacintel/prospector/pkg/httpclient"
	"github.com/hvacintel/prospector/pkg/proxy"
	"github.com/hvacintel/prospector/pkg/ratelimit"
	"github.com/hvacintel/prospector/pkg/useragent"
)

type contextKey string

const proxyKey contextKey = "proxy_url"

// FetchResult is the outcome of a single page fetch. Per-URL failures are
// carried in Error rather than returned as Go errors, so one bad site never
// aborts a batch.
type FetchResult struct {
	ID         string
	URL        string
	StatusCode int
	Headers    map[string][]string
	Body       []byte
	Duration   time.Duration
	Blocked    bool
	BlockSrc   string // e.g. "Cloudflare", "Akamai", "DataDome", "PerimeterX"
	CreatedAt  time.Time
	Error      string
}

// OK reports whether the fetch produced a usable page: transport succeeded,
// status was 2xx, and no block page was detected.
func (r *FetchResult) OK() bool {
	return r != nil && r.Error == "" && !r.Blocked &&
		r.StatusCode >= 200 && r.StatusCode < 300
}

// NormalizeURL trims the input and ensures an http/https scheme, prepending
// "https://" when missing. It returns false for inputs that cannot name a
// site at all: empty strings and spreadsheet null artifacts ("nan", "none").
func NormalizeURL(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	switch strings.ToLower(s) {
	case "", "nan", "none":
		return s, false
	}
	if !strings.HasPrefix(s, "http://") && !strings.HasPrefix(s, "https://") {
		s = "https://" + s
	}
	return s, true
}

// FetchConfig configures a Fetcher.
type FetchConfig struct {
	Timeout      time.Duration
	MaxRedirects int
	UseCookieJar bool
	ProxyPool    *proxy.Pool
	UAPool       *useragent.Pool
	Fingerprint  fingerprint.Profile
	Limiter      *ratelimit.Limiter
	Detectors    []blockpage.Detector
}

// Fetcher performs single-attempt page fetches. One client is held across
// requests so cookies (if enabled) and connections persist for the lifetime
// of the Fetcher.
type Fetcher struct {
	config    FetchConfig
	client    *httpclient.Client
	transport http.RoundTripper
}

// NewFetcher initializes a new Fetcher with the given configuration.
func NewFetcher(cfg FetchConfig) (*Fetcher, error) {
	if cfg.Timeout == 0 {
		cfg.Timeout = 20 * time.Second
	}
	if cfg.UAPool == nil {
		cfg.UAPool = useragent.NewPool(nil)
	}
	if string(cfg.Fingerprint) == "" {
		cfg.Fingerprint = fingerprint.ProfileGo
	}
	if cfg.Detectors == nil {
		cfg.Detectors = blockpage.DefaultDetectors()
	}

	// Per-request proxy rotation: the proxy URL travels in the request
	// context, and a single transport-wide Proxy func reads it back out.
	proxyFunc := func(req *http.Request) (*url.URL, error) {
		if val := req.Context().Value(proxyKey); val != nil {
			if u, ok := val.(*url.URL); ok {
				return u, nil
			}
		}
		// Skip env proxies for local addresses so tests are hermetic.
		if req.URL.Hostname() == "127.0.0.1" || req.URL.Hostname() == "localhost" {
			return nil, nil
		}
		return http.ProxyFromEnvironment(req)
	}

	transport, err := fingerprint.Transport(cfg.Fingerprint, proxyFunc)
	if err != nil {
		return nil, fmt.Errorf("failed to setup transport: %w", err)
	}

	client, err := httpclient.New(httpclient.Config{
		Timeout:      cfg.Timeout,
		MaxRedirects: cfg.MaxRedirects,
		UseCookieJar: cfg.UseCookieJar,
		Transport:    transport,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return &Fetcher{
		config:    cfg,
		client:    client,
		transport: transport,
	}, nil
}

// Fetch executes a single GET against targetURL. Exactly one attempt is made;
// a failure is permanent for that URL within the current run.
func (f *Fetcher) Fetch(ctx context.Context, targetURL string) (*FetchResult, error) {
	if f.config.Limiter != nil {
		if err := f.config.Limiter.Wait(ctx); err != nil {
			return &FetchResult{
				ID:        uuid.New().String(),
				URL:       targetURL,
				CreatedAt: time.Now().UTC(),
				Error:     fmt.Sprintf("rate limiter cancelled: %v", err),
			}, nil
		}
	}

	start := time.Now()
	result := &FetchResult{
		ID:        uuid.New().String(),
		URL:       targetURL,
		CreatedAt: start.UTC(),
	}

	var activeProxy *url.URL
	if f.config.ProxyPool != nil {
		activeProxy = f.config.ProxyPool.Next()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		result.Error = fmt.Sprintf("failed to create request: %v", err)
		result.Duration = time.Since(start)
		metrics.RecordFetch(0, true, false, result.Duration)
		return result, nil
	}

	if activeProxy != nil {
		req = req.WithContext(context.WithValue(req.Context(), proxyKey, activeProxy))
	}

	req.Header.Set("User-Agent", f.config.UAPool.GetSequential())
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := f.client.Do(req.Context(), req)
	if err != nil {
		if activeProxy != nil {
			_ = f.config.ProxyPool.MarkFailure(activeProxy)
		}
		result.Error = fmt.Sprintf("request failed: %v", err)
		result.Duration = time.Since(start)
		metrics.RecordFetch(0, true, false, result.Duration)
		return result, nil
	}
	defer resp.Body.Close()

	if activeProxy != nil {
		_ = f.config.ProxyPool.MarkSuccess(activeProxy)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		result.Error = fmt.Sprintf("failed to read body: %v", err)
	}

	result.StatusCode = resp.StatusCode
	result.Headers = resp.Header
	result.Body = body
	result.Duration = time.Since(start)

	result.Blocked, result.BlockSrc = blockpage.Detect(
		result.StatusCode, result.Headers, result.Body, f.config.Detectors)

	metrics.RecordFetch(result.StatusCode, result.Error != "", result.Blocked, result.Duration)

	return result, nil
}
