package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hvacintel/prospector/internal/fingerprint"
	"github.com/hvacintel/prospector/pkg/useragent"
)

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{"https://example.com", "https://example.com", true},
		{"http://example.com", "http://example.com", true},
		{"example.com", "https://example.com", true},
		{"  example.com  ", "https://example.com", true},
		{"", "", false},
		{"   ", "", false},
		{"nan", "nan", false},
		{"NaN", "NaN", false},
		{"none", "none", false},
	}

	for _, tt := range tests {
		got, ok := NormalizeURL(tt.in)
		if ok != tt.wantOK {
			t.Errorf("NormalizeURL(%q) ok = %v, want %v", tt.in, ok, tt.wantOK)
		}
		if ok && got != tt.want {
			t.Errorf("NormalizeURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFetcher_Success(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); got != useragent.Identifying {
			t.Errorf("expected identifying User-Agent, got %q", got)
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("<html>ok</html>"))
	}))
	defer ts.Close()

	fetcher, err := NewFetcher(FetchConfig{
		Timeout:     5 * time.Second,
		Fingerprint: fingerprint.ProfileGo,
	})
	if err != nil {
		t.Fatalf("failed to create fetcher: %v", err)
	}

	res, err := fetcher.Fetch(context.Background(), ts.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !res.OK() {
		t.Fatalf("expected usable result, got status=%d err=%q", res.StatusCode, res.Error)
	}
	if string(res.Body) != "<html>ok</html>" {
		t.Errorf("unexpected body %q", res.Body)
	}
	if res.ID == "" {
		t.Error("expected non-empty fetch ID")
	}
	if res.Duration == 0 {
		t.Error("expected non-zero duration")
	}
}

func TestFetcher_TransportErrorIsNotAGoError(t *testing.T) {
	fetcher, _ := NewFetcher(FetchConfig{
		Timeout:     500 * time.Millisecond,
		Fingerprint: fingerprint.ProfileGo,
	})

	// Closed port: connection refused.
	res, err := fetcher.Fetch(context.Background(), "http://127.0.0.1:1/")
	if err != nil {
		t.Fatalf("per-URL failures must not surface as errors, got %v", err)
	}
	if res.Error == "" {
		t.Error("expected Error field to carry the failure")
	}
	if res.OK() {
		t.Error("failed fetch must not be OK")
	}
}

func TestFetcher_Timeout(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(100 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	fetcher, _ := NewFetcher(FetchConfig{
		Timeout:     10 * time.Millisecond,
		Fingerprint: fingerprint.ProfileGo,
	})

	res, _ := fetcher.Fetch(context.Background(), ts.URL)
	if res.Error == "" || !strings.Contains(res.Error, "request failed") {
		t.Errorf("expected timeout to be recorded, got %q", res.Error)
	}
}

func TestFetcher_NonOKStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer ts.Close()

	fetcher, _ := NewFetcher(FetchConfig{Fingerprint: fingerprint.ProfileGo})

	res, err := fetcher.Fetch(context.Background(), ts.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.OK() {
		t.Error("404 must count as an absent page")
	}
	if res.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404, got %d", res.StatusCode)
	}
}

func TestFetcher_BlockedPage(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Server", "cloudflare")
		w.WriteHeader(http.StatusForbidden)
	}))
	defer ts.Close()

	fetcher, _ := NewFetcher(FetchConfig{Fingerprint: fingerprint.ProfileGo})

	res, err := fetcher.Fetch(context.Background(), ts.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Blocked || res.BlockSrc != "Cloudflare" {
		t.Errorf("expected Cloudflare block detection, got %v %q", res.Blocked, res.BlockSrc)
	}
	if res.OK() {
		t.Error("blocked page must not be OK")
	}
}
