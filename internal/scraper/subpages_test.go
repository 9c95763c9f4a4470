package scraper

import (
	"reflect"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/hvacintel/prospector/internal/catalog"
)

func parseDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("failed to parse html: %v", err)
	}
	return doc
}

func TestCandidateSubpages_TopicalAndNavigational(t *testing.T) {
	html := `<html><body>
		<a href="/contact-us">Contact</a>
		<a href="/about">About</a>
		<a href="/pricing">Pricing</a>
		<a href="mailto:info@acme.example">Mail</a>
		<a href="tel:+15551234567">Call</a>
		<a href="javascript:void(0)">JS</a>
		<a href="#top">Top</a>
		<a href="https://cdn.example/brands/carrier">Carrier</a>
	</body></html>`

	got := CandidateSubpages("https://acme.example", parseDoc(t, html), catalog.SubpageHints)
	want := []string{
		"https://acme.example/contact-us",
		"https://acme.example/about",
		"https://cdn.example/brands/carrier",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("CandidateSubpages = %v, want %v", got, want)
	}
}

func TestCandidateSubpages_Dedup(t *testing.T) {
	html := `<html><body>
		<a href="/contact">Contact</a>
		<a href="/contact">Contact again</a>
		<a href="https://acme.example/contact">Contact absolute</a>
	</body></html>`

	got := CandidateSubpages("https://acme.example", parseDoc(t, html), catalog.SubpageHints)
	if len(got) != 1 {
		t.Errorf("expected 1 deduped link, got %v", got)
	}
}

func TestCandidateSubpages_NonHTTPSchemes(t *testing.T) {
	html := `<a href="ftp://files.acme.example/catalog.zip">Catalog</a>`
	got := CandidateSubpages("https://acme.example", parseDoc(t, html), catalog.SubpageHints)
	if len(got) != 0 {
		t.Errorf("expected non-http schemes dropped, got %v", got)
	}
}

func TestCandidateSubpages_BadBase(t *testing.T) {
	html := `<a href="/contact">Contact</a>`
	if got := CandidateSubpages("://broken", parseDoc(t, html), catalog.SubpageHints); got != nil {
		t.Errorf("expected nil for unparsable base, got %v", got)
	}
}

func TestFilterTopical(t *testing.T) {
	urls := []string{
		"https://acme.example/about-us",
		"https://acme.example/gallery",
		"https://acme.example/parts/compressors",
		"https://acme.example/about-us",
	}
	got := FilterTopical(urls, catalog.SubpageHints)
	want := []string{
		"https://acme.example/about-us",
		"https://acme.example/parts/compressors",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("FilterTopical = %v, want %v", got, want)
	}
}
