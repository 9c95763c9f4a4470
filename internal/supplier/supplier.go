// Package supplier defines the row types shared by both pipelines and their
// tabular column schemas.
package supplier

import "strings"

// CandidateColumns is the discovery output schema, in column order.
var CandidateColumns = []string{"Brand", "Domain", "URL", "Query"}

// Candidate is one discovered supplier domain for a brand. Immutable once
// created; within a brand each registered domain appears at most once.
type Candidate struct {
	Brand  string
	Domain string
	URL    string
	Query  string
}

// Row renders the candidate in CandidateColumns order.
func (c Candidate) Row() []string {
	return []string{c.Brand, c.Domain, c.URL, c.Query}
}

// CandidateFromRow parses a tabular row back into a Candidate. Short rows
// yield zero values for the missing columns.
func CandidateFromRow(row []string) Candidate {
	var c Candidate
	if len(row) > 0 {
		c.Brand = row[0]
	}
	if len(row) > 1 {
		c.Domain = row[1]
	}
	if len(row) > 2 {
		c.URL = row[2]
	}
	if len(row) > 3 {
		c.Query = row[3]
	}
	return c
}

// RecordColumns is the extraction output schema, in column order.
var RecordColumns = []string{
	"Company Name",
	"Website",
	"Location",
	"Contact Person",
	"Role (Contact Person)",
	"Phone Number",
	"Email",
	"Brands Distributed",
	"Equipment Categories Offered",
	"Key Parts and Components Available",
}

// Record holds the structured facts extracted from one supplier website.
// Scalar fields use "" for absence; list fields use an empty slice. Fields
// are filled first-found-wins and never overwritten once set.
type Record struct {
	CompanyName   string
	Website       string
	Location      string
	ContactPerson string
	ContactRole   string
	Phone         string
	Email         string
	Brands        []string
	Equipment     []string
	Parts         []string
}

// Row renders the record in RecordColumns order. List fields are joined with
// ", ".
func (r *Record) Row() []string {
	return []string{
		r.CompanyName,
		r.Website,
		r.Location,
		r.ContactPerson,
		r.ContactRole,
		r.Phone,
		r.Email,
		strings.Join(r.Brands, ", "),
		strings.Join(r.Equipment, ", "),
		strings.Join(r.Parts, ", "),
	}
}

// Merge copies values from other into any slot of r that is still absent.
// Populated fields are left untouched, so earlier finds always win.
func (r *Record) Merge(other *Record) {
	if other == nil {
		return
	}
	if r.CompanyName == "" {
		r.CompanyName = other.CompanyName
	}
	if r.Location == "" {
		r.Location = other.Location
	}
	if r.ContactPerson == "" {
		r.ContactPerson = other.ContactPerson
	}
	if r.ContactRole == "" {
		r.ContactRole = other.ContactRole
	}
	if r.Phone == "" {
		r.Phone = other.Phone
	}
	if r.Email == "" {
		r.Email = other.Email
	}
	if len(r.Brands) == 0 {
		r.Brands = other.Brands
	}
	if len(r.Equipment) == 0 {
		r.Equipment = other.Equipment
	}
	if len(r.Parts) == 0 {
		r.Parts = other.Parts
	}
}

// KeyFieldsComplete reports whether the fields that gate the subpage crawl
// (phone, email, brand mentions) are all populated.
func (r *Record) KeyFieldsComplete() bool {
	return r.Phone != "" && r.Email != "" && len(r.Brands) > 0
}
