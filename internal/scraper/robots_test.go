package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/hvacintel/prospector/internal/fingerprint"
)

func newTestFetcher(t *testing.T) *Fetcher {
	t.Helper()
	f, err := NewFetcher(FetchConfig{Fingerprint: fingerprint.ProfileGo})
	if err != nil {
		t.Fatalf("failed to create fetcher: %v", err)
	}
	return f
}

func TestRobotsAuditor_DisallowedPath(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			_, _ = w.Write([]byte("User-agent: *\nDisallow: /private/\n"))
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	auditor := NewRobotsAuditor(newTestFetcher(t), nil)
	ctx := context.Background()

	allowed, err := auditor.IsAllowed(ctx, ts.URL+"/private/contact", "*")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if allowed {
		t.Error("expected /private/ to be disallowed")
	}

	allowed, err = auditor.IsAllowed(ctx, ts.URL+"/contact", "*")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !allowed {
		t.Error("expected /contact to be allowed")
	}
}

func TestRobotsAuditor_MissingRobotsFailsOpen(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	defer ts.Close()

	auditor := NewRobotsAuditor(newTestFetcher(t), nil)

	allowed, err := auditor.IsAllowed(context.Background(), ts.URL+"/anything", "*")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !allowed {
		t.Error("missing robots.txt should fail open")
	}
}

func TestRobotsAuditor_CachesPerHost(t *testing.T) {
	var hits atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			hits.Add(1)
			_, _ = w.Write([]byte("User-agent: *\nAllow: /\n"))
		}
	}))
	defer ts.Close()

	auditor := NewRobotsAuditor(newTestFetcher(t), nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := auditor.IsAllowed(ctx, ts.URL+"/page", "*"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if got := hits.Load(); got != 1 {
		t.Errorf("expected 1 robots.txt fetch, got %d", got)
	}
}

func TestRobotsAuditor_Sitemaps(t *testing.T) {
	var ts *httptest.Server
	ts = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			_, _ = w.Write([]byte("User-agent: *\nAllow: /\nSitemap: " + ts.URL + "/sitemap.xml\n"))
		}
	}))
	defer ts.Close()

	auditor := NewRobotsAuditor(newTestFetcher(t), nil)

	maps, err := auditor.Sitemaps(context.Background(), ts.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(maps) != 1 || maps[0] != ts.URL+"/sitemap.xml" {
		t.Errorf("unexpected sitemaps: %v", maps)
	}
}
