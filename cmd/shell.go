package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pable/go-match-stats/internal/aggregator"
	"github.com/pable/go-match-stats/internal/page"
	"github.com/pable/go-match-stats/internal/report"
	"github.com/pable/go-match-stats/internal/store"
)

var (
	cPrompt   = color.New(color.FgCyan, color.Bold)
	cMuted    = color.New(color.Faint)
	cError    = color.New(color.FgRed, color.Bold)
	cWarn     = color.New(color.FgYellow)
	cHeader   = color.New(color.FgCyan, color.Bold)
	cCmd      = color.New(color.FgYellow, color.Bold)
	cGreeting = color.New(color.Bold)
)

var shellLines int

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start an interactive REPL session on a page",
	Long:  "Load the selected page once and explore it: switch views, add filters, search and scroll. Type 'help' for available commands.",
	Args:  cobra.NoArgs,
	RunE:  runShell,
}

func init() {
	shellCmd.Flags().IntVar(&shellLines, "lines", 25, "rows shown per screen")
}

// session is the state of one shell: the current page, its controls and the
// terminal container of the current view.
type session struct {
	ctx      context.Context
	out      io.Writer
	page     *page.Page
	controls page.MapControls
	view     string
	term     *report.Terminal
	lines    int
	// open builds and loads another page by name; nil disables 'use'.
	open func(name string) (*page.Page, error)
}

func newSession(ctx context.Context, out io.Writer, p *page.Page, lines int) *session {
	if lines <= 0 {
		lines = 25
	}
	return &session{
		ctx:      ctx,
		out:      out,
		page:     p,
		controls: page.MapControls{},
		view:     "matches",
		lines:    lines,
	}
}

func runShell(cmd *cobra.Command, _ []string) error {
	c := openCache()
	if c != nil {
		defer c.Close()
	}

	load := func(name string) (*page.Page, error) {
		pc, err := cfg.Page(name)
		if err != nil {
			return nil, err
		}
		p := buildPage(pc, c, terminalScroll()...)
		if err := p.Load(cmd.Context(), false); err != nil {
			return nil, err
		}
		return p, nil
	}
	p, err := load(pageName)
	if err != nil {
		return handleLoadError(err)
	}

	s := newSession(cmd.Context(), os.Stdout, p, shellLines)
	s.open = load

	cGreeting.Printf("matchstats shell · %s\n", p.Title)
	cMuted.Printf("%d matches loaded · type 'help' or 'exit'\n", len(p.Filtered()))
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		cPrompt.Print(p.Name)
		cMuted.Printf(":%s> ", s.view)
		if !scanner.Scan() {
			fmt.Println()
			break
		}
		if s.exec(scanner.Text()) {
			return nil
		}
		p = s.page
	}
	return nil
}

// exec runs one command line. It reports whether the session should end.
func (s *session) exec(line string) bool {
	tokens := strings.Fields(strings.TrimSpace(line))
	if len(tokens) == 0 {
		return false
	}
	name, args := tokens[0], tokens[1:]

	switch name {
	case "exit", "quit":
		return true
	case "help":
		s.help()
	case "views":
		fmt.Fprintln(s.out, strings.Join(s.page.AvailableViews(), "  "))
	case "view", "v":
		if len(args) == 1 {
			s.view = args[0]
		}
		s.render()
	case "filter", "f":
		if len(args) == 0 {
			s.showFilters()
			return false
		}
		controls, err := parseFilters(args)
		if err == nil {
			err = checkFilterKeys(s.page, controls)
		}
		if err != nil {
			cError.Fprintf(s.out, "error: %v\n", err)
			return false
		}
		for k, v := range controls {
			s.controls[k] = v
		}
		s.render()
	case "unfilter":
		for _, k := range args {
			delete(s.controls, k)
		}
		s.render()
	case "clear":
		s.controls = page.MapControls{}
		s.render()
	case "search", "/":
		s.controls[page.KeySearch] = strings.Join(args, " ")
		s.render()
	case "sort":
		if len(args) != 1 {
			cError.Fprintf(s.out, "usage: sort <column>|-<column>  (%s)\n", strings.Join(aggregator.SortColumns, ", "))
			return false
		}
		s.controls[page.KeySort] = args[0]
		s.render()
	case "scroll", "goto":
		n, err := strconv.Atoi(strings.Join(args, ""))
		if err != nil {
			cError.Fprintln(s.out, "usage: scroll <row>")
			return false
		}
		s.scrollTo(n)
	case "next", "n":
		s.scrollTo(s.top() + s.lines)
	case "prev", "p":
		s.scrollTo(s.top() - s.lines)
	case "h2h":
		if len(args) != 2 {
			cError.Fprintln(s.out, "usage: h2h <team> <opponent>")
			return false
		}
		h := s.page.HeadToHead(args[0], args[1])
		report.Print(s.out, report.H2HTable(h))
		if line := report.H2HGoals(h); line != "" {
			fmt.Fprintln(s.out, line)
		}
	case "refresh":
		err := s.page.Refresh(s.ctx)
		switch {
		case errors.Is(err, store.ErrRefreshInProgress):
			cWarn.Fprintln(s.out, "refresh already running")
		case err != nil:
			cError.Fprintf(s.out, "refresh: %v\n", err)
		default:
			cMuted.Fprintf(s.out, "%d matches after refresh\n", len(s.page.Filtered()))
			s.render()
		}
	case "use":
		if len(args) != 1 || s.open == nil {
			cError.Fprintln(s.out, "usage: use <page>")
			return false
		}
		p, err := s.open(args[0])
		if err != nil {
			cError.Fprintf(s.out, "error: %v\n", err)
			return false
		}
		s.page, s.controls, s.view, s.term = p, page.MapControls{}, "matches", nil
		cMuted.Fprintf(s.out, "switched to %s (%d matches)\n", p.Title, len(p.Filtered()))
	case "pages":
		for _, pc := range cfg.Pages {
			fmt.Fprintf(s.out, "  %-14s %s\n", pc.Name, pc.Title)
		}
	default:
		cWarn.Fprintf(s.out, "unknown command %q, type 'help'\n", name)
	}
	return false
}

func (s *session) render() {
	s.page.Apply(s.controls)
	s.term = report.NewTerminal(s.out, report.Table{}, s.lines)
	tbl, err := s.page.Render(s.ctx, s.view, s.term)
	if err != nil {
		cError.Fprintf(s.out, "error: %v\n", err)
		return
	}
	cHeader.Fprintf(s.out, "%s · %s  (%d rows)\n", s.page.Title, s.view, tbl.Len())
	s.term.SetTable(tbl)
	s.term.Flush()
}

func (s *session) top() int {
	if s.term == nil {
		return 0
	}
	return s.term.ScrollTop()
}

func (s *session) scrollTo(row int) {
	if s.term == nil {
		s.render()
	}
	s.page.Scroll(row)
	s.term.Flush()
}

func (s *session) showFilters() {
	if len(s.controls) == 0 {
		cMuted.Fprintln(s.out, "no filters")
		return
	}
	keys := make([]string, 0, len(s.controls))
	for k := range s.controls {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(s.out, "  %-18s %s\n", k, s.controls[k])
	}
}

func (s *session) help() {
	fmt.Fprintln(s.out)
	type entry struct{ cmd, desc string }
	rows := []entry{
		{"views", "list the views of this page"},
		{"view <name>", "show a view (matches, opponents, seasons, ...)"},
		{"filter key=value [...]", "add filters; without arguments list them"},
		{"unfilter <key> [...]", "remove filters"},
		{"clear", "remove every filter, the search and the sort"},
		{"search <text>", "free-text search over the shown rows"},
		{"sort <column>|-<column>", "sort aggregate views"},
		{"next / prev / scroll <row>", "move through long tables"},
		{"h2h <team> <opponent>", "head-to-head record"},
		{"refresh", "refetch the page, bypassing every cache"},
		{"pages / use <page>", "list or switch pages"},
		{"help", "show this message"},
		{"exit / quit", "close the session"},
	}
	for _, r := range rows {
		fmt.Fprint(s.out, "  ")
		cCmd.Fprintf(s.out, "%-30s", r.cmd)
		fmt.Fprintln(s.out, r.desc)
	}
	fmt.Fprintln(s.out)
}
