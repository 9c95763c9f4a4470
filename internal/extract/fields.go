// Package extract implements the heuristic field extractors and the per-URL
// extraction orchestrator. Every extractor is stateless and best-effort: it
// returns the zero value when the page gives it nothing to work with.
package extract

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"github.com/nyaruka/phonenumbers"
)

var (
	emailRe = regexp.MustCompile(`(?i)[A-Z0-9._%+-]+@[A-Z0-9.-]+\.[A-Z]{2,}`)

	// phoneCandidateRe over-matches on purpose; every candidate is then
	// validated with libphonenumber before being accepted.
	phoneCandidateRe = regexp.MustCompile(`\+?\(?\d[\d\s().\-]{6,18}\d`)
)

// Phone returns the first valid region-formatted telephone number found in
// free text, formatted nationally, or "" if none validates.
func Phone(text, region string) string {
	if region == "" {
		region = "US"
	}
	for _, candidate := range phoneCandidateRe.FindAllString(text, 25) {
		num, err := phonenumbers.Parse(candidate, region)
		if err != nil {
			continue
		}
		if !phonenumbers.IsValidNumberForRegion(num, region) {
			continue
		}
		return phonenumbers.Format(num, phonenumbers.NATIONAL)
	}
	return ""
}

// Email returns the first email address in the text, or "".
func Email(text string) string {
	return emailRe.FindString(text)
}

// CompanyName prefers the first non-empty h1; otherwise the page title up to
// the first "|" delimiter. Returns "" when neither exists.
func CompanyName(doc *goquery.Document) string {
	if h1 := strings.TrimSpace(doc.Find("h1").First().Text()); h1 != "" {
		return h1
	}
	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		return ""
	}
	name, _, _ := strings.Cut(title, "|")
	return strings.TrimSpace(name)
}

// Location returns the text of the first address element, or "".
func Location(doc *goquery.Document) string {
	addr := doc.Find("address").First()
	if addr.Length() == 0 {
		return ""
	}
	return strings.Join(strings.Fields(addr.Text()), " ")
}

// BrandMentions returns the sorted set of known brands appearing in the page
// text or in image alt attributes, matched case-insensitively.
func BrandMentions(text string, doc *goquery.Document, brands []string) []string {
	found := make(map[string]struct{})
	lowText := strings.ToLower(text)

	for _, b := range brands {
		if strings.Contains(lowText, strings.ToLower(b)) {
			found[b] = struct{}{}
		}
	}

	doc.Find("img[alt]").Each(func(_ int, s *goquery.Selection) {
		alt, _ := s.Attr("alt")
		alt = strings.ToLower(strings.TrimSpace(alt))
		if alt == "" {
			return
		}
		for _, b := range brands {
			if strings.Contains(alt, strings.ToLower(b)) {
				found[b] = struct{}{}
			}
		}
	})

	return sortedSet(found)
}

// Keywords returns the sorted set of vocabulary entries present in the text,
// matched case-insensitively and normalized to display capitalization.
func Keywords(text string, vocab []string) []string {
	found := make(map[string]struct{})
	lowText := strings.ToLower(text)

	for _, kw := range vocab {
		if strings.Contains(lowText, strings.ToLower(kw)) {
			found[capitalize(kw)] = struct{}{}
		}
	}
	return sortedSet(found)
}

func sortedSet(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// capitalize upper-cases the first rune and lower-cases the rest, matching
// the display form used in output ("heat pump" -> "Heat pump").
func capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(strings.ToLower(s))
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
