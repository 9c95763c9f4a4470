package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hvacintel/prospector/internal/extract"
	"github.com/hvacintel/prospector/internal/report"
	"github.com/hvacintel/prospector/internal/storage"
	"github.com/hvacintel/prospector/internal/supplier"
	"github.com/hvacintel/prospector/pkg/ratelimit"
)

// Extraction runs site extraction with row-level checkpointing. Each finished
// record is appended to the checkpoint before the next site starts, so a run
// killed at site K resumes at site K on the next invocation: the resume
// offset is simply the checkpoint's row count.
type Extraction struct {
	extractor  *extract.Extractor
	checkpoint storage.Backend
	throttle   *ratelimit.Throttle
	logger     *slog.Logger

	started  time.Time
	finished time.Time
}

// NewExtraction wires an extraction pipeline. throttle spaces out sites and
// may be nil.
func NewExtraction(extractor *extract.Extractor, checkpoint storage.Backend, throttle *ratelimit.Throttle, logger *slog.Logger) *Extraction {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extraction{extractor: extractor, checkpoint: checkpoint, throttle: throttle, logger: logger}
}

// Run processes every input URL not yet covered by the checkpoint, in input
// order. Every URL yields exactly one appended row, malformed and unreachable
// inputs included, which keeps checkpoint rows aligned with input positions.
func (e *Extraction) Run(ctx context.Context, urls []string) error {
	done, err := e.checkpoint.Rows(ctx)
	if err != nil {
		return fmt.Errorf("read checkpoint: %w", err)
	}
	offset := len(done)
	if offset > len(urls) {
		return fmt.Errorf("checkpoint has %d rows for %d inputs; wrong input file?", offset, len(urls))
	}
	if offset > 0 {
		e.logger.Info("resuming extraction", "completed", offset, "remaining", len(urls)-offset)
	}

	e.started = time.Now()
	for i, raw := range urls[offset:] {
		if i > 0 {
			if err := e.throttle.Wait(ctx); err != nil {
				return err
			}
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rec := e.extractor.FromURL(ctx, raw)
		// A cancellation during the fetch surfaces as an empty record, not
		// an error. Checkpointing it would mark the site completed and skip
		// it on resume, so drop the record and stop here.
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := e.checkpoint.Append(ctx, rec.Row()); err != nil {
			return fmt.Errorf("checkpoint row %d: %w", offset+i, err)
		}
		e.logger.Info("site processed",
			"position", offset+i+1, "total", len(urls),
			"website", rec.Website, "key_complete", rec.KeyFieldsComplete())
	}
	e.finished = time.Now()
	return nil
}

// Export copies the checkpointed records into the final outputs. The primary
// backend must succeed; each extra backend is attempted independently and a
// failure there only logs. Returns the number of exported records and
// whether every backend, extras included, succeeded; callers keep the
// checkpoint around until complete is true so failed outputs can be
// regenerated.
func (e *Extraction) Export(ctx context.Context, primary storage.Backend, extras ...storage.Backend) (n int, complete bool, err error) {
	rows, err := e.checkpoint.Rows(ctx)
	if err != nil {
		return 0, false, fmt.Errorf("read checkpoint: %w", err)
	}
	if err := primary.Rewrite(ctx, rows); err != nil {
		return 0, false, fmt.Errorf("write primary output: %w", err)
	}
	complete = true
	for _, extra := range extras {
		if err := extra.Rewrite(ctx, rows); err != nil {
			e.logger.Warn("secondary output failed", "err", err)
			complete = false
		}
	}
	return len(rows), complete, nil
}

// Summary aggregates the checkpointed records into session metrics.
func (e *Extraction) Summary(ctx context.Context) (report.Summary, error) {
	rows, err := e.checkpoint.Rows(ctx)
	if err != nil {
		return report.Summary{}, fmt.Errorf("read checkpoint: %w", err)
	}
	records := make([]*supplier.Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, recordFromRow(row))
	}
	return report.GenerateSummary(records, e.started, e.finished), nil
}

// recordFromRow rebuilds the scalar fields needed for reporting from a
// checkpoint row. List fields only matter as present or absent here, so the
// joined cell text stands in for the elements.
func recordFromRow(row []string) *supplier.Record {
	row = storage.PadRow(row, len(supplier.RecordColumns))
	rec := &supplier.Record{
		CompanyName:   row[0],
		Website:       row[1],
		Location:      row[2],
		ContactPerson: row[3],
		ContactRole:   row[4],
		Phone:         row[5],
		Email:         row[6],
	}
	if row[7] != "" {
		rec.Brands = []string{row[7]}
	}
	if row[8] != "" {
		rec.Equipment = []string{row[8]}
	}
	if row[9] != "" {
		rec.Parts = []string{row[9]}
	}
	return rec
}
