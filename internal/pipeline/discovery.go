package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/hvacintel/prospector/internal/discover"
	"github.com/hvacintel/prospector/internal/storage"
	"github.com/hvacintel/prospector/internal/supplier"
	"github.com/hvacintel/prospector/pkg/ratelimit"
)

// Discovery runs brand discovery end to end. The store doubles as the
// checkpoint: every candidate row is appended as soon as it is found, and a
// brand already present in the store is considered done and skipped on the
// next run.
type Discovery struct {
	runner   *discover.Runner
	store    storage.Backend
	throttle *ratelimit.Throttle
	logger   *slog.Logger
}

// NewDiscovery wires a discovery pipeline. throttle spaces out brands and may
// be nil.
func NewDiscovery(runner *discover.Runner, store storage.Backend, throttle *ratelimit.Throttle, logger *slog.Logger) *Discovery {
	if logger == nil {
		logger = slog.Default()
	}
	return &Discovery{runner: runner, store: store, throttle: throttle, logger: logger}
}

// Run discovers candidates for every brand not already in the store. A
// canceled context stops between brands with everything found so far
// persisted; rerunning continues from the first unfinished brand.
func (d *Discovery) Run(ctx context.Context, brands []string) error {
	done, err := d.completedBrands(ctx)
	if err != nil {
		return err
	}

	first := true
	for _, brand := range brands {
		if done[brand] {
			d.logger.Info("brand already discovered, skipping", "brand", brand)
			continue
		}
		if !first {
			if err := d.throttle.Wait(ctx); err != nil {
				return err
			}
		}
		first = false

		// A brand is checkpointed whole or not at all: persisting a partial
		// brand would make the rerun skip its missing candidates.
		candidates, err := d.runner.Brand(ctx, brand)
		if err != nil {
			return fmt.Errorf("discover %s: %w", brand, err)
		}
		if err := d.appendAll(ctx, candidates); err != nil {
			return fmt.Errorf("checkpoint %s: %w", brand, err)
		}
		d.logger.Info("brand discovered", "brand", brand, "candidates", len(candidates))
	}
	return nil
}

// Finalize sorts the accumulated candidates by brand then domain and rewrites
// the store in that order. Call once after every brand has been processed.
func (d *Discovery) Finalize(ctx context.Context) error {
	rows, err := d.store.Rows(ctx)
	if err != nil {
		return fmt.Errorf("read candidates: %w", err)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := supplier.CandidateFromRow(rows[i]), supplier.CandidateFromRow(rows[j])
		if a.Brand != b.Brand {
			return a.Brand < b.Brand
		}
		return a.Domain < b.Domain
	})
	if err := d.store.Rewrite(ctx, rows); err != nil {
		return fmt.Errorf("rewrite candidates: %w", err)
	}
	return nil
}

func (d *Discovery) completedBrands(ctx context.Context) (map[string]bool, error) {
	rows, err := d.store.Rows(ctx)
	if err != nil {
		return nil, fmt.Errorf("read checkpoint: %w", err)
	}
	done := make(map[string]bool, len(rows))
	for _, row := range rows {
		done[supplier.CandidateFromRow(row).Brand] = true
	}
	return done, nil
}

func (d *Discovery) appendAll(ctx context.Context, candidates []supplier.Candidate) error {
	for _, c := range candidates {
		if err := d.store.Append(ctx, c.Row()); err != nil {
			return err
		}
	}
	return nil
}
