package sqlite

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/hvacintel/prospector/internal/supplier"
)

func newTestBackend(t *testing.T) (b interface {
	Append(ctx context.Context, row []string) error
	Rows(ctx context.Context) ([][]string, error)
	Rewrite(ctx context.Context, rows [][]string) error
	Close() error
}, cleanup func()) {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "suppliers.db")
	backend, err := New(dsn, "supplier_records", supplier.RecordColumns)
	if err != nil {
		t.Fatalf("failed to create sqlite backend: %v", err)
	}
	return backend, func() { backend.Close() }
}

func TestSQLiteBackend_AppendAndRows(t *testing.T) {
	b, cleanup := newTestBackend(t)
	defer cleanup()

	ctx := context.Background()
	rec := supplier.Record{
		CompanyName: "Acme HVAC Supply",
		Website:     "https://acme.example",
		Phone:       "(555) 123-4567",
		Brands:      []string{"Carrier", "Trane"},
	}

	if err := b.Append(ctx, rec.Row()); err != nil {
		t.Fatalf("append failed: %v", err)
	}

	rows, err := b.Rows(ctx)
	if err != nil {
		t.Fatalf("rows failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if !reflect.DeepEqual(rows[0], rec.Row()) {
		t.Errorf("row mismatch: %v", rows[0])
	}
}

func TestSQLiteBackend_InsertionOrder(t *testing.T) {
	b, cleanup := newTestBackend(t)
	defer cleanup()

	ctx := context.Background()
	for _, name := range []string{"zeta", "alpha", "mid"} {
		rec := supplier.Record{CompanyName: name, Website: "https://" + name + ".example"}
		if err := b.Append(ctx, rec.Row()); err != nil {
			t.Fatalf("append failed: %v", err)
		}
	}

	rows, err := b.Rows(ctx)
	if err != nil {
		t.Fatalf("rows failed: %v", err)
	}
	got := []string{rows[0][0], rows[1][0], rows[2][0]}
	want := []string{"zeta", "alpha", "mid"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected insertion order %v, got %v", want, got)
	}
}

func TestSQLiteBackend_Rewrite(t *testing.T) {
	b, cleanup := newTestBackend(t)
	defer cleanup()

	ctx := context.Background()
	_ = b.Append(ctx, (&supplier.Record{CompanyName: "old"}).Row())

	want := [][]string{
		(&supplier.Record{CompanyName: "a"}).Row(),
		(&supplier.Record{CompanyName: "b"}).Row(),
	}
	if err := b.Rewrite(ctx, want); err != nil {
		t.Fatalf("rewrite failed: %v", err)
	}

	rows, err := b.Rows(ctx)
	if err != nil {
		t.Fatalf("rows failed: %v", err)
	}
	if !reflect.DeepEqual(rows, want) {
		t.Errorf("rewrite mismatch: %v", rows)
	}
}
