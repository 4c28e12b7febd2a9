// Package search narrows an already filtered or aggregated row set by free
// text without touching the record store.
package search

import (
	"strings"

	"github.com/pable/go-match-stats/internal/model"
)

// Index holds the pre-search rows and their folded concatenated text.
type Index struct {
	rows []model.Row
	text []string
}

// New indexes rows. The slice is kept as the pre-search set, so every Filter
// call starts from it rather than from a previous result.
func New(rows []model.Row) *Index {
	idx := &Index{rows: rows, text: make([]string, len(rows))}
	for i, r := range rows {
		idx.text[i] = model.Fold(strings.Join(r, " "))
	}
	return idx
}

// Len is the number of pre-search rows.
func (i *Index) Len() int { return len(i.rows) }

// Filter returns the rows whose displayed values contain q, ignoring case. A
// blank query returns every row.
func (i *Index) Filter(q string) []model.Row {
	q = strings.TrimSpace(q)
	out := make([]model.Row, 0, len(i.rows))
	if q == "" {
		return append(out, i.rows...)
	}
	want := model.Fold(q)
	for n, t := range i.text {
		if strings.Contains(t, want) {
			out = append(out, i.rows[n])
		}
	}
	return out
}

// Filter is a one-shot search over rows.
func Filter(rows []model.Row, q string) []model.Row {
	return New(rows).Filter(q)
}
