// Package serp abstracts the search backends used by the discovery pipeline.
package serp

import "context"

// Provider abstracts a search backend that returns result URLs for a query.
// Implementations are best-effort: network failures and anti-automation
// blocks degrade to an empty result with a logged cause rather than an
// error, so one bad query never aborts a discovery run. The limit parameter
// caps the number of results returned; fewer may come back.
type Provider interface {
	Search(ctx context.Context, query string, limit int) ([]string, error)
}
