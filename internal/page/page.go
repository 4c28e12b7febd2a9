// Package page holds the state of one dashboard page and runs its pipeline:
// load → filter → aggregate → search → windowed table.
package page

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/pable/go-match-stats/internal/aggregator"
	"github.com/pable/go-match-stats/internal/filter"
	"github.com/pable/go-match-stats/internal/model"
	"github.com/pable/go-match-stats/internal/report"
	"github.com/pable/go-match-stats/internal/search"
	"github.com/pable/go-match-stats/internal/store"
	"github.com/pable/go-match-stats/internal/vscroll"
)

// ErrUnknownView is returned for a view name the page does not offer.
var ErrUnknownView = errors.New("unknown view")

// Views a page can show, in menu order. players and penalties need detail
// records.
var Views = []string{
	"matches", "opponents", "teams", "seasons", "championships", "managers",
	"opponent-managers", "referees", "stadiums", "venues", "streaks",
	"players", "penalties",
}

// Control keys read by Apply besides the filter clauses.
const (
	KeySearch  = "q"
	KeySort    = "sort"
	KeyWith    = "with"
	KeyAgainst = "against"
)

// Controls supplies the current value of a named page control. "" means the
// control is empty or absent.
type Controls interface {
	ControlValue(key string) string
}

// MapControls is a Controls backed by a map.
type MapControls map[string]string

func (m MapControls) ControlValue(key string) string { return m[key] }

// family is one record source of the page with its dictionary and clauses.
type family struct {
	store  *store.Store
	dict   *model.FieldDict
	engine *filter.Engine
}

func (f *family) records() []model.Record {
	if f == nil || f.store == nil {
		return []model.Record{}
	}
	return f.store.Records()
}

// Page is one dashboard page. It is not safe for concurrent use; callers
// serialize access.
type Page struct {
	ID    string
	Name  string
	Title string
	// Team is the side detail rows are attributed to ("" = any).
	Team string

	matches *family
	details *family
	lineups *family

	State    filter.FilterState
	Search   string
	Sort     string
	SortDesc bool
	With     string
	Against  string

	presets    map[string]string
	scrollOpts []vscroll.Option
	table      *vscroll.Table
	container  vscroll.Container
	lastView   string
	log        *slog.Logger
}

// Option configures a Page.
type Option func(*Page)

// WithTitle sets the display title.
func WithTitle(title string) Option {
	return func(p *Page) { p.Title = title }
}

// WithTeam sets the team detail rows are attributed to.
func WithTeam(team string) Option {
	return func(p *Page) { p.Team = team }
}

// WithMatchFields replaces the match dictionary.
func WithMatchFields(dict *model.FieldDict) Option {
	return func(p *Page) {
		p.matches.dict = dict
		p.matches.engine = filter.New(dict, filter.DefaultMatchClauses()...)
	}
}

// WithDetails adds the goal / assist / penalty family.
func WithDetails(s *store.Store, dict *model.FieldDict) Option {
	return func(p *Page) {
		if dict == nil {
			dict = model.DetailFields()
		}
		p.details = &family{store: s, dict: dict, engine: filter.New(dict, filter.DefaultDetailClauses()...)}
	}
}

// WithLineups adds the appearance family.
func WithLineups(s *store.Store, dict *model.FieldDict) Option {
	return func(p *Page) {
		if dict == nil {
			dict = model.LineupFields()
		}
		p.lineups = &family{store: s, dict: dict, engine: filter.New(dict, filter.DefaultLineupClauses()...)}
	}
}

// WithPresets sets control values applied when no control overrides them.
func WithPresets(values map[string]string) Option {
	return func(p *Page) { p.presets = values }
}

// WithScrollOptions configures the virtual table of every render.
func WithScrollOptions(opts ...vscroll.Option) Option {
	return func(p *Page) { p.scrollOpts = opts }
}

// WithLogger sets the logger; the page id is attached to every line.
func WithLogger(l *slog.Logger) Option {
	return func(p *Page) { p.log = l }
}

// New returns a page reading matches from s.
func New(name string, s *store.Store, opts ...Option) *Page {
	dict := model.MatchFields()
	p := &Page{
		ID:      uuid.NewString(),
		Name:    name,
		Title:   name,
		matches: &family{store: s, dict: dict, engine: filter.New(dict, filter.DefaultMatchClauses()...)},
		State:   filter.FilterState{},
		log:     slog.Default(),
	}
	for _, o := range opts {
		o(p)
	}
	p.log = p.log.With("page", name, "session", p.ID)
	p.Apply(MapControls{})
	return p
}

// HasDetails reports whether the page has detail records configured.
func (p *Page) HasDetails() bool { return p.details != nil }

// HasLineups reports whether the page has lineup records configured.
func (p *Page) HasLineups() bool { return p.lineups != nil }

// AvailableViews lists the views this page can compute.
func (p *Page) AvailableViews() []string {
	out := make([]string, 0, len(Views))
	for _, v := range Views {
		if (v == "players" || v == "penalties") && p.details == nil {
			continue
		}
		out = append(out, v)
	}
	return out
}

// MatchFields returns the match dictionary.
func (p *Page) MatchFields() *model.FieldDict { return p.matches.dict }

// DetailFields returns the detail dictionary, or nil.
func (p *Page) DetailFields() *model.FieldDict {
	if p.details == nil {
		return nil
	}
	return p.details.dict
}

// Load fills every family concurrently. Matches are required; a failure of
// the detail or lineup family is logged and leaves it empty.
func (p *Page) Load(ctx context.Context, force bool) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if _, err := p.matches.store.Load(ctx, force); err != nil {
			return fmt.Errorf("matches: %w", err)
		}
		return nil
	})
	for name, f := range p.optional() {
		g.Go(func() error {
			if _, err := f.store.Load(ctx, force); err != nil {
				p.log.Warn("optional records unavailable", "family", name, "err", err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	p.log.InfoContext(ctx, "page loaded",
		"matches", p.matches.store.Len(),
		"details", len(p.details.records()),
		"lineups", len(p.lineups.records()))
	return nil
}

// Refresh refreshes every family and re-runs the last render.
func (p *Page) Refresh(ctx context.Context) error {
	if _, err := p.matches.store.Refresh(ctx); err != nil {
		return err
	}
	for name, f := range p.optional() {
		if _, err := f.store.Refresh(ctx); err != nil {
			p.log.Warn("optional refresh failed", "family", name, "err", err)
		}
	}
	if p.table != nil && p.lastView != "" {
		_, err := p.Render(ctx, p.lastView, p.container)
		return err
	}
	return nil
}

func (p *Page) optional() map[string]*family {
	out := make(map[string]*family, 2)
	if p.details != nil && p.details.store != nil {
		out["details"] = p.details
	}
	if p.lineups != nil && p.lineups.store != nil {
		out["lineups"] = p.lineups
	}
	return out
}

// Clauses lists every filter control of the page: match clauses first, then
// detail and lineup clauses not already declared.
func (p *Page) Clauses() []filter.Clause {
	seen := make(map[string]bool)
	var out []filter.Clause
	for _, f := range []*family{p.matches, p.details, p.lineups} {
		if f == nil {
			continue
		}
		for _, c := range f.engine.Clauses() {
			if !seen[c.Key] {
				seen[c.Key] = true
				out = append(out, c)
			}
		}
	}
	return out
}

// Apply rebuilds the filter state and the search, sort and player-query
// controls from c. Empty controls fall back to the page presets.
func (p *Page) Apply(c Controls) {
	value := func(key string) string {
		if v := strings.TrimSpace(c.ControlValue(key)); v != "" {
			return v
		}
		return strings.TrimSpace(p.presets[key])
	}

	state := filter.FilterState{}
	for _, cl := range p.Clauses() {
		con := filter.ParseConstraint(cl.Kind, value(cl.Key))
		if !con.Empty() {
			state[cl.Key] = con
		}
	}
	p.State = state

	p.Search = value(KeySearch)
	p.Sort, p.SortDesc = parseSort(value(KeySort))
	p.With = value(KeyWith)
	p.Against = value(KeyAgainst)
}

// parseSort reads "column" or "-column"; a leading "-" sorts descending.
func parseSort(s string) (string, bool) {
	if strings.HasPrefix(s, "-") {
		return strings.TrimPrefix(s, "-"), true
	}
	return s, false
}

// Counts are the record counts of each family.
type Counts struct {
	Matches, Details, Lineups int
}

// Loaded returns the record counts held by the stores, before any filter.
func (p *Page) Loaded() Counts {
	return Counts{
		Matches: len(p.matches.records()),
		Details: len(p.details.records()),
		Lineups: len(p.lineups.records()),
	}
}

// Filtered returns the match records passing the current state.
func (p *Page) Filtered() []model.Record {
	return p.matches.engine.Apply(p.matches.store.Records(), p.State)
}

// FilteredDetails restricts details to the filtered matches and then applies
// the detail clauses.
func (p *Page) FilteredDetails() []model.Record {
	return p.twoStage(p.details)
}

// FilteredLineups restricts lineups to the filtered matches and then applies
// the lineup clauses.
func (p *Page) FilteredLineups() []model.Record {
	return p.twoStage(p.lineups)
}

func (p *Page) twoStage(f *family) []model.Record {
	if f == nil {
		return []model.Record{}
	}
	ids := filter.IDSet(p.Filtered(), p.matches.dict, model.FieldMatchID)
	scoped := filter.FilterByIDs(f.records(), f.dict, model.FieldMatchID, ids)
	return f.engine.Apply(scoped, p.State)
}

// View computes the named table over the current filter state. Search is not
// applied here.
func (p *Page) View(name string) (report.Table, error) {
	matches := p.Filtered()
	mdict := p.matches.dict

	switch name {
	case "matches":
		return report.RecordTable(name, matches, mdict), nil
	case "streaks":
		return report.StreakTable(aggregator.AllStreaks(matches, mdict, aggregator.Primary)), nil
	case "players":
		if p.details == nil {
			return report.Table{}, fmt.Errorf("%w: %s needs detail records", ErrUnknownView, name)
		}
		var lineups []model.Record
		ldict := model.LineupFields()
		if p.lineups != nil {
			lineups, ldict = p.FilteredLineups(), p.lineups.dict
		}
		rows := aggregator.Players(lineups, ldict, p.FilteredDetails(), p.details.dict, aggregator.PlayerQuery{
			Team:    p.Team,
			With:    p.With,
			Against: p.Against,
		})
		return report.PlayerTable(rows), nil
	case "penalties":
		if p.details == nil {
			return report.Table{}, fmt.Errorf("%w: %s needs detail records", ErrUnknownView, name)
		}
		return report.PenaltyTable(aggregator.Penalties(p.FilteredDetails(), p.details.dict, p.Team)), nil
	}

	d, ok := aggregator.LookupDimension(name)
	if !ok {
		return report.Table{}, fmt.Errorf("%w: %q", ErrUnknownView, name)
	}
	key := aggregator.KeyField(mdict, d.Field)
	rows := aggregator.GroupByDimension(matches, mdict, d)
	total := aggregator.Summary(matches, mdict, d.Perspective)
	if p.details != nil {
		details := p.FilteredDetails()
		aggregator.AttachPenalties(rows, matches, mdict, details, p.details.dict, key, p.Team)
		total.PenaltyGoals, total.PenaltyMissed = penaltySum(rows)
	}
	aggregator.GroupStreaks(rows, matches, mdict, key, aggregator.StreakWins, d.Perspective)
	total.Streak = aggregator.LongestStreak(matches, mdict, aggregator.StreakWins, d.Perspective)
	if p.Sort != "" {
		aggregator.SortBy(rows, p.Sort, p.SortDesc)
	}
	return report.AggregateTable(strings.ToUpper(d.Name), rows, &total, p.details != nil), nil
}

// HeadToHead returns the record of a against b over the filtered matches.
// With detail records the goal events of those fixtures are attached too.
func (p *Page) HeadToHead(a, b string) aggregator.H2H {
	h := aggregator.HeadToHead(p.Filtered(), p.matches.dict, a, b)
	if p.details != nil {
		h.AttachGoals(p.FilteredDetails(), p.details.dict, p.matches.dict)
	}
	return h
}

func penaltySum(rows []model.AggregateRow) (goals, missed int) {
	for _, r := range rows {
		goals += r.PenaltyGoals
		missed += r.PenaltyMissed
	}
	return goals, missed
}

// Render runs the full pipeline for view into c and returns the searched
// table. A nil container computes the table without drawing it.
func (p *Page) Render(ctx context.Context, view string, c vscroll.Container) (report.Table, error) {
	tbl, err := p.View(view)
	if err != nil {
		return report.Table{}, err
	}
	tbl = tbl.WithRows(search.New(tbl.Rows).Filter(p.Search))

	p.table = vscroll.New(c, p.scrollOpts...)
	p.container = c
	p.lastView = view
	p.table.SetData(tbl.Rows)
	p.table.Render()

	p.log.DebugContext(ctx, "rendered view", "view", view, "rows", tbl.Len(), "filters", len(p.State), "window", p.table.Window())
	return tbl, nil
}

// Scroll moves the current table; it is a no-op before the first Render.
func (p *Page) Scroll(top int) {
	if p.table != nil {
		p.table.Scroll(top)
	}
}

// Table returns the virtual table of the last render, or nil.
func (p *Page) Table() *vscroll.Table { return p.table }
