package supplier

import (
	"reflect"
	"testing"
)

func TestCandidateRowRoundTrip(t *testing.T) {
	c := Candidate{
		Brand:  "Carrier",
		Domain: "summit-supply.com",
		URL:    "https://www.summit-supply.com/brands/carrier",
		Query:  "Carrier HVAC distributor",
	}
	if got := CandidateFromRow(c.Row()); got != c {
		t.Fatalf("round trip = %+v, want %+v", got, c)
	}
}

func TestCandidateFromRow_ShortRow(t *testing.T) {
	c := CandidateFromRow([]string{"Trane"})
	if c.Brand != "Trane" || c.Domain != "" || c.URL != "" || c.Query != "" {
		t.Fatalf("short row = %+v", c)
	}
}

func TestRecordRow_ListJoining(t *testing.T) {
	r := &Record{
		CompanyName: "Summit Supply",
		Brands:      []string{"Carrier", "Trane"},
	}
	row := r.Row()
	if len(row) != len(RecordColumns) {
		t.Fatalf("row has %d cells for %d columns", len(row), len(RecordColumns))
	}
	if row[7] != "Carrier, Trane" {
		t.Errorf("brands cell = %q", row[7])
	}
	if row[8] != "" {
		t.Errorf("empty list rendered as %q", row[8])
	}
}

func TestMerge_FillsOnlyAbsentFields(t *testing.T) {
	r := &Record{
		Phone:  "(212) 555-0147",
		Brands: []string{"Carrier"},
	}
	r.Merge(&Record{
		Phone:  "(614) 555-0142",
		Email:  "sales@summit.test",
		Brands: []string{"Lennox"},
		Parts:  []string{"Compressor"},
	})

	if r.Phone != "(212) 555-0147" {
		t.Errorf("populated phone was overwritten: %q", r.Phone)
	}
	if r.Email != "sales@summit.test" {
		t.Errorf("absent email not filled: %q", r.Email)
	}
	if !reflect.DeepEqual(r.Brands, []string{"Carrier"}) {
		t.Errorf("populated brands were overwritten: %v", r.Brands)
	}
	if !reflect.DeepEqual(r.Parts, []string{"Compressor"}) {
		t.Errorf("absent parts not filled: %v", r.Parts)
	}
}

func TestMerge_NilOther(t *testing.T) {
	r := &Record{CompanyName: "Summit"}
	r.Merge(nil)
	if r.CompanyName != "Summit" {
		t.Fatalf("record mutated by nil merge: %+v", r)
	}
}

func TestKeyFieldsComplete(t *testing.T) {
	r := &Record{Phone: "p", Email: "e"}
	if r.KeyFieldsComplete() {
		t.Fatal("complete without brands")
	}
	r.Brands = []string{"Carrier"}
	if !r.KeyFieldsComplete() {
		t.Fatal("incomplete with phone, email and brands set")
	}
}
