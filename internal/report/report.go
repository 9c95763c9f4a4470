package report

import (
	"encoding/json"
	"fmt"
	"io"
	"text/template"
	"time"

	"github.com/hvacintel/prospector/internal/supplier"
)

// Summary contains aggregated metrics about an extraction session.
type Summary struct {
	TotalSites    int
	UnusableURLs  int
	KeyComplete   int
	FieldCoverage map[string]int
	StartTime     time.Time
	EndTime       time.Time
	Duration      time.Duration
}

// GenerateSummary aggregates a slice of supplier records into session metrics.
func GenerateSummary(records []*supplier.Record, start, end time.Time) Summary {
	s := Summary{
		FieldCoverage: make(map[string]int),
		StartTime:     start,
		EndTime:       end,
		Duration:      end.Sub(start),
	}

	count := func(field string, present bool) {
		if present {
			s.FieldCoverage[field]++
		}
	}

	for _, r := range records {
		s.TotalSites++
		if r.Website == "" {
			s.UnusableURLs++
		}
		if r.KeyFieldsComplete() {
			s.KeyComplete++
		}
		count("Company Name", r.CompanyName != "")
		count("Location", r.Location != "")
		count("Phone Number", r.Phone != "")
		count("Email", r.Email != "")
		count("Brands Distributed", len(r.Brands) > 0)
		count("Equipment Categories Offered", len(r.Equipment) > 0)
		count("Key Parts and Components Available", len(r.Parts) > 0)
	}
	return s
}

// WriteJSON writes the summary to the provided writer in JSON format.
func WriteJSON(w io.Writer, summary Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(summary); err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}
	return nil
}

// WriteText writes a human-readable text summary to the provided writer.
func WriteText(w io.Writer, summary Summary) error {
	const textTmpl = `Prospector Session Summary
--------------------------
Time:           {{.StartTime.Format "2006-01-02 15:04:05"}} - {{.EndTime.Format "2006-01-02 15:04:05"}}
Duration:       {{.Duration}}
Sites:          {{.TotalSites}}
Unusable URLs:  {{.UnusableURLs}}
Key-complete:   {{.KeyComplete}}

Field Coverage:
{{- range $field, $count := .FieldCoverage}}
  {{$field}}: {{$count}}
{{- else}}
  None
{{- end}}
`

	t, err := template.New("textReport").Parse(textTmpl)
	if err != nil {
		return fmt.Errorf("parse text template: %w", err)
	}
	if err := t.Execute(w, summary); err != nil {
		return fmt.Errorf("render text summary: %w", err)
	}
	return nil
}

// WriteHTML writes a basic HTML report to the provided writer.
func WriteHTML(w io.Writer, summary Summary) error {
	const htmlTmpl = `<!DOCTYPE html>
<html>
<head>
<title>Prospector Session Report</title>
<style>
  body { font-family: sans-serif; margin: 40px; color: #333; }
  h1 { border-bottom: 2px solid #ccc; padding-bottom: 10px; }
  .stat-card { display: inline-block; padding: 20px; margin: 10px 10px 10px 0; background: #f4f4f4; border-radius: 5px; min-width: 150px; }
  .stat-val { font-size: 24px; font-weight: bold; }
  table { border-collapse: collapse; margin-top: 10px; }
  th, td { padding: 8px 12px; border: 1px solid #ccc; text-align: left; }
  th { background: #eaeaea; }
</style>
</head>
<body>
  <h1>Prospector Session Report</h1>
  <p><strong>Time:</strong> {{.StartTime.Format "2006-01-02 15:04:05"}} to {{.EndTime.Format "2006-01-02 15:04:05"}} ({{.Duration}})</p>

  <div class="stat-card">
    <div>Sites</div>
    <div class="stat-val">{{.TotalSites}}</div>
  </div>
  <div class="stat-card">
    <div>Unusable URLs</div>
    <div class="stat-val">{{.UnusableURLs}}</div>
  </div>
  <div class="stat-card">
    <div>Key-complete</div>
    <div class="stat-val" style="color: {{if gt .KeyComplete 0}}green{{else}}red{{end}};">{{.KeyComplete}}</div>
  </div>

  <h3>Field Coverage</h3>
  <table>
    <tr><th>Field</th><th>Sites</th></tr>
    {{- range $field, $count := .FieldCoverage}}
    <tr><td>{{$field}}</td><td>{{$count}}</td></tr>
    {{- else}}
    <tr><td colspan="2">None</td></tr>
    {{- end}}
  </table>
</body>
</html>
`
	t, err := template.New("htmlReport").Parse(htmlTmpl)
	if err != nil {
		return fmt.Errorf("parse html template: %w", err)
	}
	if err := t.Execute(w, summary); err != nil {
		return fmt.Errorf("render html report: %w", err)
	}
	return nil
}
