// Package vscroll renders a large ordered row set into a scroll container by
// materialising only a window of rows around the visible area. Rows outside
// the window are represented by two spacers sized to keep the total scroll
// height.
package vscroll

import (
	"github.com/pable/go-match-stats/internal/model"
)

// Container is the presentation target. Heights and offsets are in pixels (or
// lines, for a terminal).
type Container interface {
	Viewport() int
	ScrollTop() int
	SetScrollTop(top int)
	// Replace swaps the rendered content: a top spacer, the window rows and
	// a bottom spacer.
	Replace(topPad int, rows []model.Row, bottomPad int)
}

// ViewWindow is the half-open range [Start, End) of materialised rows.
type ViewWindow struct {
	Start, End int
}

// Len is the number of materialised rows.
func (w ViewWindow) Len() int { return w.End - w.Start }

const (
	DefaultRowHeight  = 32
	DefaultBuffer     = 25
	DefaultThreshold  = 1000
	DefaultHysteresis = 5
)

// Option configures a Table.
type Option func(*Table)

// WithRowHeight sets the fixed row height.
func WithRowHeight(h int) Option {
	return func(t *Table) {
		if h > 0 {
			t.rowHeight = h
		}
	}
}

// WithBuffer sets the rows rendered beyond each edge of the viewport.
func WithBuffer(n int) Option {
	return func(t *Table) {
		if n >= 0 {
			t.buffer = n
		}
	}
}

// WithThreshold sets the row count up to which everything is rendered.
func WithThreshold(n int) Option {
	return func(t *Table) {
		if n >= 0 {
			t.threshold = n
		}
	}
}

// WithHysteresis sets how many rows the window may drift before a re-render.
func WithHysteresis(n int) Option {
	return func(t *Table) {
		if n >= 0 {
			t.hysteresis = n
		}
	}
}

// Table is a virtual-scroll table bound to one container.
type Table struct {
	container  Container
	rowHeight  int
	buffer     int
	threshold  int
	hysteresis int

	rows     []model.Row
	win      ViewWindow
	rendered bool
	renders  int
}

// New returns a table rendering into c. A nil container makes every method a
// no-op; it stands for a view that is not currently shown.
func New(c Container, opts ...Option) *Table {
	t := &Table{
		container:  c,
		rowHeight:  DefaultRowHeight,
		buffer:     DefaultBuffer,
		threshold:  DefaultThreshold,
		hysteresis: DefaultHysteresis,
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

// SetData replaces the row set and resets scroll to the top so the next
// render cannot start from an out-of-range window.
func (t *Table) SetData(rows []model.Row) {
	t.rows = rows
	t.win = ViewWindow{}
	t.rendered = false
	if t.container != nil {
		t.container.SetScrollTop(0)
	}
}

// Rows returns the full row set.
func (t *Table) Rows() []model.Row { return t.rows }

// Window returns the currently materialised range.
func (t *Table) Window() ViewWindow { return t.win }

// Renders counts how many times the container content was replaced.
func (t *Table) Renders() int { return t.renders }

// Virtual reports whether the row count is above the windowing threshold.
func (t *Table) Virtual() bool { return len(t.rows) > t.threshold }

// Render computes the window for the current scroll position and replaces the
// container content unconditionally.
func (t *Table) Render() {
	if t.container == nil {
		return
	}
	t.clampScroll()
	t.draw(t.required())
}

// Scroll moves the container to top and re-renders only if the visible rows
// left the window or the window drifted past the hysteresis margin.
func (t *Table) Scroll(top int) {
	if t.container == nil {
		return
	}
	t.container.SetScrollTop(top)
	t.clampScroll()
	if !t.rendered || !t.Virtual() {
		t.draw(t.required())
		return
	}
	next := t.required()
	first, last := t.visible()
	covered := first >= t.win.Start && last <= t.win.End
	drift := abs(next.Start-t.win.Start) > t.hysteresis || abs(next.End-t.win.End) > t.hysteresis
	if covered && !drift {
		return
	}
	t.draw(next)
}

func (t *Table) draw(w ViewWindow) {
	t.win = w
	t.rendered = true
	t.renders++
	top := w.Start * t.rowHeight
	bottom := (len(t.rows) - w.End) * t.rowHeight
	t.container.Replace(top, t.rows[w.Start:w.End], bottom)
}

// required is the window the current scroll position needs.
func (t *Table) required() ViewWindow {
	n := len(t.rows)
	if !t.Virtual() {
		return ViewWindow{Start: 0, End: n}
	}
	first, last := t.visible()
	return ViewWindow{
		Start: max(0, first-t.buffer),
		End:   min(n, last+t.buffer),
	}
}

// visible is the [first, last) range of rows intersecting the viewport.
func (t *Table) visible() (int, int) {
	n := len(t.rows)
	first := t.container.ScrollTop() / t.rowHeight
	first = min(max(first, 0), n)
	last := min(n, first+t.visibleCount())
	return first, last
}

func (t *Table) visibleCount() int {
	vp := t.container.Viewport()
	if vp <= 0 {
		return 1
	}
	return (vp + t.rowHeight - 1) / t.rowHeight
}

// clampScroll keeps the scroll offset inside [0, total-viewport] so the last
// page ends exactly at the last row.
func (t *Table) clampScroll() {
	top := t.container.ScrollTop()
	maxTop := len(t.rows)*t.rowHeight - t.container.Viewport()
	if maxTop < 0 {
		maxTop = 0
	}
	clamped := min(max(top, 0), maxTop)
	if clamped != top {
		t.container.SetScrollTop(clamped)
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
