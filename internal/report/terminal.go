package report

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/pable/go-match-stats/internal/model"
)

// Terminal is a scroll container backed by a writer. Heights are in lines,
// one line per row. Replace keeps the latest window; Flush prints it as a
// table, with a marker line for the rows hidden above and below it.
type Terminal struct {
	w        io.Writer
	header   []string
	footer   model.Row
	viewport int
	top      int
	marker   *color.Color

	topPad, bottomPad int
	rows              []model.Row
	pending           bool
}

// NewTerminal returns a container showing viewport lines of t's columns.
func NewTerminal(w io.Writer, t Table, viewport int) *Terminal {
	return &Terminal{
		w:        w,
		header:   t.Header,
		footer:   t.Footer,
		viewport: viewport,
		marker:   color.New(color.Faint),
	}
}

// SetTable switches the columns and footer printed around the rows.
func (c *Terminal) SetTable(t Table) {
	c.header, c.footer = t.Header, t.Footer
}

func (c *Terminal) Viewport() int { return c.viewport }

func (c *Terminal) ScrollTop() int { return c.top }

func (c *Terminal) SetScrollTop(top int) { c.top = top }

func (c *Terminal) Replace(topPad int, rows []model.Row, bottomPad int) {
	c.topPad, c.rows, c.bottomPad = topPad, rows, bottomPad
	c.pending = true
}

// Flush prints the window replaced since the last Flush, if any.
func (c *Terminal) Flush() {
	if !c.pending {
		return
	}
	c.pending = false
	if c.topPad > 0 {
		c.marker.Fprintf(c.w, "… %d rows above …\n", c.topPad)
	}
	Print(c.w, Table{Header: c.header, Rows: c.rows, Footer: c.footer})
	if c.bottomPad > 0 {
		c.marker.Fprintf(c.w, "… %d rows below …\n", c.bottomPad)
	}
}

// PrintTitle writes a section title line.
func PrintTitle(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\n"+format+"\n\n", args...)
}
