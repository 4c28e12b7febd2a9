package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pable/go-match-stats/internal/page"
	"github.com/pable/go-match-stats/internal/report"
	"github.com/pable/go-match-stats/internal/vscroll"
)

// queryFlags are the page controls shared by the table commands.
type queryFlags struct {
	filters []string
	sort    string
	search  string
	window  int
	scroll  int
}

func (q *queryFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringArrayVarP(&q.filters, "filter", "F", nil, "filter as key=value (repeatable, see 'matchstats pages')")
	cmd.Flags().StringVar(&q.sort, "sort", "", "sort column for aggregate views; prefix with - for descending")
	cmd.Flags().StringVarP(&q.search, "search", "s", "", "free-text search over the displayed rows")
	cmd.Flags().IntVar(&q.window, "window", 0, "show only this many rows at a time (0 = all)")
	cmd.Flags().IntVar(&q.scroll, "scroll", 0, "first row to show with --window")
}

// controls merges the flags into page controls.
func (q *queryFlags) controls(extra map[string]string) (page.MapControls, error) {
	c, err := parseFilters(q.filters)
	if err != nil {
		return nil, err
	}
	if q.sort != "" {
		c[page.KeySort] = q.sort
	}
	if q.search != "" {
		c[page.KeySearch] = q.search
	}
	for k, v := range extra {
		if v != "" {
			c[k] = v
		}
	}
	return c, nil
}

// render applies the controls and prints view. With a window the rows go
// through the virtual table one line per row.
func (q *queryFlags) render(cmd *cobra.Command, p *page.Page, view string, extra map[string]string) error {
	controls, err := q.controls(extra)
	if err != nil {
		return err
	}
	if err := checkFilterKeys(p, controls); err != nil {
		return err
	}
	p.Apply(controls)

	if q.window <= 0 {
		tbl, err := p.Render(cmd.Context(), view, nil)
		if err != nil {
			return err
		}
		report.PrintTitle(os.Stdout, "%s · %s  (%d rows)", p.Title, view, tbl.Len())
		report.Print(os.Stdout, tbl)
		return nil
	}

	term := report.NewTerminal(os.Stdout, report.Table{}, q.window)
	tbl, err := p.Render(cmd.Context(), view, term)
	if err != nil {
		return err
	}
	if q.scroll > 0 {
		p.Scroll(q.scroll)
	}
	report.PrintTitle(os.Stdout, "%s · %s  (%d rows)", p.Title, view, tbl.Len())
	term.SetTable(tbl)
	term.Flush()
	return nil
}

var (
	statsQuery queryFlags
	statsForce bool
)

var statsCmd = &cobra.Command{
	Use:   "stats [view]",
	Short: "Print an aggregate or record view of a page",
	Long: `Print one view of the selected page after applying the filters.

Views: ` + strings.Join(page.Views, ", ") + `

Examples:
  matchstats stats opponents -F season=2023-24 --sort -win_pct
  matchstats stats managers -F championship=League -F result=W,D
  matchstats stats matches -F date=2020-01-01..2020-12-31 --window 40`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStats,
}

func init() {
	statsQuery.register(statsCmd)
	statsCmd.Flags().BoolVarP(&statsForce, "force", "f", false, "force a fresh fetch")
}

func runStats(cmd *cobra.Command, args []string) error {
	view := "opponents"
	if len(args) == 1 {
		view = args[0]
	}
	p, closeFn, err := openPage(cmd.Context(), statsForce, terminalScroll()...)
	if err != nil {
		return handleLoadError(err)
	}
	defer closeFn()

	if err := statsQuery.render(cmd, p, view, nil); err != nil {
		return fmt.Errorf("stats %s: %w", view, err)
	}
	return nil
}

// terminalScroll sizes the virtual table in lines rather than pixels.
func terminalScroll() []vscroll.Option {
	return []vscroll.Option{
		vscroll.WithRowHeight(1),
		vscroll.WithBuffer(0),
		vscroll.WithThreshold(0),
		vscroll.WithHysteresis(0),
	}
}
