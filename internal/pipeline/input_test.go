package pipeline

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestReadColumn_CSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input.csv")
	data := "Brand,Website\nCarrier,https://a.com\nTrane,\nLennox,https://c.com\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := ReadColumn(path, "Website")
	if err != nil {
		t.Fatalf("ReadColumn: %v", err)
	}
	want := []string{"https://a.com", "", "https://c.com"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ReadColumn = %v, want %v", got, want)
	}
}

func TestReadColumn_CSVHeaderCaseInsensitive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input.csv")
	if err := os.WriteFile(path, []byte(" website \nhttps://a.com\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := ReadColumn(path, "Website")
	if err != nil {
		t.Fatalf("ReadColumn: %v", err)
	}
	if len(got) != 1 || got[0] != "https://a.com" {
		t.Fatalf("ReadColumn = %v", got)
	}
}

func TestReadColumn_MissingColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input.csv")
	if err := os.WriteFile(path, []byte("Brand\nCarrier\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadColumn(path, "Website"); err == nil {
		t.Fatal("expected error for missing column")
	}
}

func TestReadColumn_XLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	if err := f.SetSheetRow(sheet, "A1", &[]string{"Brand", "Website"}); err != nil {
		t.Fatal(err)
	}
	if err := f.SetSheetRow(sheet, "A2", &[]string{"Carrier", "https://a.com"}); err != nil {
		t.Fatal(err)
	}
	if err := f.SetSheetRow(sheet, "A3", &[]string{"Trane", "https://b.com"}); err != nil {
		t.Fatal(err)
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	f.Close()

	got, err := ReadColumn(path, "Website")
	if err != nil {
		t.Fatalf("ReadColumn: %v", err)
	}
	want := []string{"https://a.com", "https://b.com"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ReadColumn = %v, want %v", got, want)
	}
}
