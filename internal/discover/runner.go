package discover

import (
	"context"
	"log/slog"
	"math/rand"

	"github.com/hvacintel/prospector/internal/metrics"
	"github.com/hvacintel/prospector/internal/serp"
	"github.com/hvacintel/prospector/internal/supplier"
	"github.com/hvacintel/prospector/pkg/ratelimit"
	"golang.org/x/sync/errgroup"
)

// Config holds the per-brand discovery knobs.
type Config struct {
	// QueryPatterns are fmt templates with one %s verb for the brand.
	QueryPatterns []string
	// QueriesPerBrand takes the first N patterns; 0 means all.
	QueriesPerBrand int
	// ResultsPerQuery caps how many result URLs are requested per query.
	ResultsPerQuery int
	// MaxPerBrand caps kept candidates across all of a brand's queries;
	// 0 means unbounded.
	MaxPerBrand int
	// Denylist marks result URLs as noise.
	Denylist []string
	// CheckLiveness drops candidates whose domain does not resolve.
	CheckLiveness bool
	// ZIPSeeds and ZIPVariants add geo-biased query variants; Rand picks
	// the ZIPs and must be set when ZIPVariants > 0.
	ZIPSeeds    []string
	ZIPVariants int
	Rand        *rand.Rand
}

// Runner executes discovery for one brand at a time against a SERP provider.
type Runner struct {
	cfg      Config
	provider serp.Provider
	throttle *ratelimit.Throttle
	liveness *Liveness
	logger   *slog.Logger
}

// NewRunner creates a Runner. throttle may be nil to run queries
// back-to-back; liveness is only consulted when cfg.CheckLiveness is set.
func NewRunner(cfg Config, provider serp.Provider, throttle *ratelimit.Throttle, liveness *Liveness, logger *slog.Logger) *Runner {
	if cfg.ResultsPerQuery <= 0 {
		cfg.ResultsPerQuery = 10
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.CheckLiveness && liveness == nil {
		liveness = NewLiveness("")
	}
	return &Runner{
		cfg:      cfg,
		provider: provider,
		throttle: throttle,
		liveness: liveness,
		logger:   logger,
	}
}

// Brand runs every query for one brand and returns the surviving candidates.
// Dedup by registered domain spans all of the brand's queries, first URL
// wins. SERP failures for individual queries degrade to zero results rather
// than aborting the brand.
func (r *Runner) Brand(ctx context.Context, brand string) ([]supplier.Candidate, error) {
	queries := ZIPVariants(
		Queries(brand, r.cfg.QueryPatterns, r.cfg.QueriesPerBrand),
		r.cfg.ZIPSeeds, r.cfg.ZIPVariants, r.cfg.Rand)
	seen := make(map[string]bool)
	var candidates []supplier.Candidate

	for i, query := range queries {
		if r.cfg.MaxPerBrand > 0 && len(candidates) >= r.cfg.MaxPerBrand {
			break
		}
		if i > 0 {
			if err := r.throttle.Wait(ctx); err != nil {
				return candidates, err
			}
		}
		if err := ctx.Err(); err != nil {
			return candidates, err
		}

		urls, err := r.provider.Search(ctx, query, r.cfg.ResultsPerQuery)
		if err != nil {
			return candidates, err
		}

		kept := FilterDenied(urls, r.cfg.Denylist)
		remaining := 0
		if r.cfg.MaxPerBrand > 0 {
			remaining = r.cfg.MaxPerBrand - len(candidates)
		}
		found := DedupeByDomain(kept, remaining, seen)
		alive := r.checkLiveness(ctx, found)
		for j, f := range found {
			if !alive[j] {
				r.logger.Debug("dropping dead domain", "brand", brand, "domain", f.Domain)
				continue
			}
			candidates = append(candidates, supplier.Candidate{
				Brand:  brand,
				Domain: f.Domain,
				URL:    f.URL,
				Query:  query,
			})
			metrics.CandidatesKeptTotal.WithLabelValues(brand).Inc()
		}
		r.logger.Info("query done",
			"brand", brand, "query", query,
			"results", len(urls), "kept", len(candidates))
	}
	return candidates, nil
}

// checkLiveness resolves each found domain, a few lookups in flight at a
// time, and reports per-index aliveness. With liveness checking disabled
// every domain passes.
func (r *Runner) checkLiveness(ctx context.Context, found []Found) []bool {
	alive := make([]bool, len(found))
	if !r.cfg.CheckLiveness {
		for i := range alive {
			alive[i] = true
		}
		return alive
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, f := range found {
		i, f := i, f
		g.Go(func() error {
			alive[i] = r.liveness.Resolves(ctx, f.Domain)
			return nil
		})
	}
	g.Wait()
	return alive
}
