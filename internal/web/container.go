package web

import (
	"github.com/pable/go-match-stats/internal/model"
)

// Container is a scroll container for one HTML response. It records the last
// replaced content, which the view template turns into a <tbody> with a
// spacer row above and below the window.
type Container struct {
	viewport int
	top      int

	TopPad    int
	Rows      []model.Row
	BottomPad int
}

// NewContainer returns a container of the given viewport height in pixels.
func NewContainer(viewport int) *Container {
	return &Container{viewport: viewport}
}

func (c *Container) Viewport() int { return c.viewport }

func (c *Container) ScrollTop() int { return c.top }

func (c *Container) SetScrollTop(top int) { c.top = top }

func (c *Container) Replace(topPad int, rows []model.Row, bottomPad int) {
	c.TopPad, c.Rows, c.BottomPad = topPad, rows, bottomPad
}
