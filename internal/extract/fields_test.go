package extract

import (
	"reflect"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func parseDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return doc
}

func TestCompanyName_HeadingPreferredOverTitle(t *testing.T) {
	doc := parseDoc(t, `<html><head><title>Acme HVAC Supply | Home</title></head>
		<body><h1>Acme HVAC Supply</h1></body></html>`)
	if got := CompanyName(doc); got != "Acme HVAC Supply" {
		t.Fatalf("CompanyName = %q, want %q", got, "Acme HVAC Supply")
	}
}

func TestCompanyName_TitleFallbackStripsSuffix(t *testing.T) {
	doc := parseDoc(t, `<html><head><title>Acme HVAC Supply | Home</title></head><body></body></html>`)
	if got := CompanyName(doc); got != "Acme HVAC Supply" {
		t.Fatalf("CompanyName = %q, want %q", got, "Acme HVAC Supply")
	}
}

func TestCompanyName_SkipsEmptyHeadings(t *testing.T) {
	doc := parseDoc(t, `<html><head><title>Fallback Co</title></head>
		<body><h1>   </h1><h1>Real Name</h1></body></html>`)
	if got := CompanyName(doc); got != "Real Name" {
		t.Fatalf("CompanyName = %q, want %q", got, "Real Name")
	}
}

func TestCompanyName_Absent(t *testing.T) {
	doc := parseDoc(t, `<html><body><p>no identity here</p></body></html>`)
	if got := CompanyName(doc); got != "" {
		t.Fatalf("CompanyName = %q, want empty", got)
	}
}

func TestPhone_ValidUSNumber(t *testing.T) {
	text := "Call us today at (614) 555-0142 or visit our showroom."
	got := Phone(text, "US")
	if got != "(614) 555-0142" {
		t.Fatalf("Phone = %q, want %q", got, "(614) 555-0142")
	}
}

func TestPhone_RejectsInvalidCandidates(t *testing.T) {
	// Looks phone-shaped but is not a valid US number.
	text := "Order #123-4567-890123 ships in 1234567 days."
	if got := Phone(text, "US"); got != "" {
		t.Fatalf("Phone = %q, want empty", got)
	}
}

func TestPhone_InternationalFormatInput(t *testing.T) {
	text := "Reach us at +1 212-555-0198 any weekday."
	got := Phone(text, "US")
	if got != "(212) 555-0198" {
		t.Fatalf("Phone = %q, want %q", got, "(212) 555-0198")
	}
}

func TestEmail(t *testing.T) {
	text := "Questions? Write to Sales.Team@Example-Supply.com for quotes."
	if got := Email(text); got != "Sales.Team@Example-Supply.com" {
		t.Fatalf("Email = %q", got)
	}
	if got := Email("no contact info"); got != "" {
		t.Fatalf("Email on plain text = %q, want empty", got)
	}
}

func TestLocation(t *testing.T) {
	doc := parseDoc(t, `<html><body>
		<address>
			1200 Industrial Pkwy
			Dayton, OH 45404
		</address>
	</body></html>`)
	if got := Location(doc); got != "1200 Industrial Pkwy Dayton, OH 45404" {
		t.Fatalf("Location = %q", got)
	}
}

func TestLocation_Absent(t *testing.T) {
	doc := parseDoc(t, `<html><body><p>nothing</p></body></html>`)
	if got := Location(doc); got != "" {
		t.Fatalf("Location = %q, want empty", got)
	}
}

func TestBrandMentions_TextAndImageAlt(t *testing.T) {
	doc := parseDoc(t, `<html><body>
		<p>Authorized distributor of Carrier equipment.</p>
		<img src="/logos/trane.png" alt="Trane certified dealer">
	</body></html>`)
	text := PageText(doc)
	got := BrandMentions(text, doc, []string{"Carrier", "Trane", "Lennox"})
	want := []string{"Carrier", "Trane"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("BrandMentions = %v, want %v", got, want)
	}
}

func TestBrandMentions_CaseInsensitive(t *testing.T) {
	doc := parseDoc(t, `<html><body><p>we carry CARRIER and lennox lines</p></body></html>`)
	text := PageText(doc)
	got := BrandMentions(text, doc, []string{"Carrier", "Lennox"})
	want := []string{"Carrier", "Lennox"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("BrandMentions = %v, want %v", got, want)
	}
}

func TestKeywords_CapitalizedAndSorted(t *testing.T) {
	got := Keywords("We stock COMPRESSORS, thermostats and Coils.",
		[]string{"compressor", "thermostat", "coil", "furnace"})
	want := []string{"Coil", "Compressor", "Thermostat"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Keywords = %v, want %v", got, want)
	}
}

func TestPageText_SkipsScriptAndStyle(t *testing.T) {
	doc := parseDoc(t, `<html><body>
		<script>var hidden = "secret@script.com";</script>
		<style>.x{color:red}</style>
		<p>visible text</p>
	</body></html>`)
	text := PageText(doc)
	if strings.Contains(text, "secret@script.com") {
		t.Fatal("script content leaked into page text")
	}
	if !strings.Contains(text, "visible text") {
		t.Fatalf("page text missing body content: %q", text)
	}
}
