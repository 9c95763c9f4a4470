// Package pipeline orchestrates the two end-to-end runs: brand discovery
// (brands in, candidate domains out) and site extraction (URLs in, supplier
// records out). Both pipelines checkpoint every unit of work to durable
// tabular storage so an interrupted run resumes where it stopped.
package pipeline

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ReadColumn loads one named column from a CSV or XLSX input file. The first
// row is the header; matching is exact after trimming whitespace. Blank cells
// are kept so row positions survive the round trip into the checkpoint.
func ReadColumn(path, column string) ([]string, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return readColumnXLSX(path, column)
	}
	return readColumnCSV(path, column)
}

func readColumnCSV(path, column string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header of %s: %w", path, err)
	}
	idx, err := columnIndex(header, column, path)
	if err != nil {
		return nil, err
	}

	var out []string
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		out = append(out, cellAt(row, idx))
	}
	return out, nil
}

func readColumnXLSX(path, column string) ([]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open input %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("input %s has no sheets", path)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s of %s: %w", sheets[0], path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("input %s is empty", path)
	}
	idx, err := columnIndex(rows[0], column, path)
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		out = append(out, cellAt(row, idx))
	}
	return out, nil
}

func columnIndex(header []string, column, path string) (int, error) {
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), column) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("input %s has no %q column", path, column)
}

func cellAt(row []string, idx int) string {
	if idx < len(row) {
		return strings.TrimSpace(row[idx])
	}
	return ""
}
