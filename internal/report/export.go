package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
)

// WriteCSV writes t as CSV: the header line, the body rows, then the footer
// when present.
func WriteCSV(w io.Writer, t Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range t.Rows {
		if err := cw.Write(r); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	if len(t.Footer) > 0 {
		if err := cw.Write(t.Footer); err != nil {
			return fmt.Errorf("write footer: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// exportDoc is the JSON form of a table. Each row is an object keyed by the
// column headers.
type exportDoc struct {
	Title string              `json:"title,omitempty"`
	Rows  []map[string]string `json:"rows"`
	Total map[string]string   `json:"total,omitempty"`
}

// WriteJSON writes t as an indented JSON document.
func WriteJSON(w io.Writer, t Table) error {
	doc := exportDoc{Title: t.Title, Rows: make([]map[string]string, 0, len(t.Rows))}
	for _, r := range t.Rows {
		doc.Rows = append(doc.Rows, keyed(t.Header, r))
	}
	if len(t.Footer) > 0 {
		doc.Total = keyed(t.Header, t.Footer)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

func keyed(header []string, row []string) map[string]string {
	m := make(map[string]string, len(header))
	for i, h := range header {
		if i < len(row) {
			m[h] = row[i]
		}
	}
	return m
}
