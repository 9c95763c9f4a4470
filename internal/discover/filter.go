package discover

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/miekg/dns"
	"golang.org/x/net/publicsuffix"
)

// Denied reports whether the URL matches any denylist entry. Matching is a
// case-insensitive substring test against the full URL, so entries can name
// hosts ("facebook.com") or path fragments ("/careers").
func Denied(rawURL string, denylist []string) bool {
	lower := strings.ToLower(rawURL)
	for _, d := range denylist {
		if strings.Contains(lower, strings.ToLower(d)) {
			return true
		}
	}
	return false
}

// FilterDenied drops denylisted URLs, preserving order. Applying it twice
// gives the same result as applying it once.
func FilterDenied(urls, denylist []string) []string {
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if !Denied(u, denylist) {
			out = append(out, u)
		}
	}
	return out
}

// RegisteredDomain reduces a URL to its registrable domain (eTLD+1), so
// "https://shop.example.co.uk/page" and "https://example.co.uk" collapse to
// the same key.
func RegisteredDomain(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse url %q: %w", rawURL, err)
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return "", fmt.Errorf("url %q has no host", rawURL)
	}
	domain, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return "", fmt.Errorf("registered domain of %q: %w", host, err)
	}
	return domain, nil
}

// Found pairs a kept result URL with its registrable domain.
type Found struct {
	URL    string
	Domain string
}

// DedupeByDomain keeps the first URL seen per registered domain, in input
// order, up to max entries (max <= 0 means unbounded). URLs without a
// resolvable registered domain are dropped. The seen map carries state
// across calls so dedup spans all of a brand's queries; pass nil for a
// fresh scope.
func DedupeByDomain(urls []string, max int, seen map[string]bool) []Found {
	if seen == nil {
		seen = make(map[string]bool)
	}
	var out []Found
	for _, u := range urls {
		if max > 0 && len(out) >= max {
			break
		}
		domain, err := RegisteredDomain(u)
		if err != nil || seen[domain] {
			continue
		}
		seen[domain] = true
		out = append(out, Found{URL: u, Domain: domain})
	}
	return out
}

// Liveness verifies that a domain actually resolves before it is kept as a
// candidate. SERPs occasionally surface parked or dead domains; one A-record
// lookup filters them cheaply.
type Liveness struct {
	client *dns.Client
	server string
}

// NewLiveness builds a checker against the given DNS server ("host:port").
// An empty server falls back to 1.1.1.1.
func NewLiveness(server string) *Liveness {
	if server == "" {
		server = "1.1.1.1:53"
	}
	return &Liveness{
		client: &dns.Client{Timeout: 3 * time.Second},
		server: server,
	}
}

// Resolves reports whether the domain has at least one A or AAAA record.
// Lookup failures count as unresolved.
func (l *Liveness) Resolves(ctx context.Context, domain string) bool {
	for _, qtype := range []uint16{dns.TypeA, dns.TypeAAAA} {
		m := new(dns.Msg)
		m.SetQuestion(dns.Fqdn(domain), qtype)
		r, _, err := l.client.ExchangeContext(ctx, m, l.server)
		if err != nil {
			continue
		}
		if r.Rcode == dns.RcodeSuccess && len(r.Answer) > 0 {
			return true
		}
	}
	return false
}
