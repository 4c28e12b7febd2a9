package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/pable/go-match-stats/internal/cache"
	"github.com/pable/go-match-stats/internal/config"
	"github.com/pable/go-match-stats/internal/model"
	"github.com/pable/go-match-stats/internal/page"
	"github.com/pable/go-match-stats/internal/source"
	"github.com/pable/go-match-stats/internal/store"
	"github.com/pable/go-match-stats/internal/vscroll"
)

var cNoData = color.New(color.FgRed, color.Bold)

// openCache opens the snapshot cache, or returns nil when it is disabled or
// cannot be opened. Commands then run against the network alone.
func openCache() *cache.Cache {
	if !cfg.Cache.Enabled {
		return nil
	}
	c, err := cache.Open(cfg.Cache.Path, cache.Options{
		TTL:     cfg.Cache.TTL,
		Version: cfg.Cache.Version,
		Logger:  slog.Default(),
	})
	if err != nil {
		slog.Warn("cache unavailable, continuing without it", "path", cfg.Cache.Path, "err", err)
		return nil
	}
	return c
}

// newStore binds one record family of a page to the client and cache.
func newStore(client *source.Client, c *cache.Cache, pc config.PageConfig, family string, src config.SourceConfig) *store.Store {
	// A nil *cache.Cache must not become a non-nil interface.
	var sc store.Cache
	if c != nil {
		sc = c
	}
	key := pc.Name + "/" + family
	return store.New(key, client.Feed(src.Endpoint, src.Wrapper), sc, slog.Default())
}

// buildPage assembles a page from its configuration. scroll options default
// to the configured table settings.
func buildPage(pc config.PageConfig, c *cache.Cache, scroll ...vscroll.Option) *page.Page {
	client := source.NewClient(cfg.HTTP.BaseURL, cfg.HTTP.Timeout)

	if len(scroll) == 0 {
		scroll = []vscroll.Option{
			vscroll.WithRowHeight(cfg.Table.RowHeight),
			vscroll.WithBuffer(cfg.Table.Buffer),
			vscroll.WithThreshold(cfg.Table.Threshold),
			vscroll.WithHysteresis(cfg.Table.Hysteresis),
		}
	}
	title := pc.Title
	if title == "" {
		title = pc.Name
	}
	opts := []page.Option{
		page.WithTitle(title),
		page.WithTeam(pc.Team),
		page.WithMatchFields(model.MatchFields().WithOverrides(pc.Matches.Fields)),
		page.WithPresets(pc.Filters),
		page.WithScrollOptions(scroll...),
	}
	if pc.Details.Enabled() {
		opts = append(opts, page.WithDetails(
			newStore(client, c, pc, "details", pc.Details),
			model.DetailFields().WithOverrides(pc.Details.Fields)))
	}
	if pc.Lineups.Enabled() {
		opts = append(opts, page.WithLineups(
			newStore(client, c, pc, "lineups", pc.Lineups),
			model.LineupFields().WithOverrides(pc.Lineups.Fields)))
	}
	return page.New(pc.Name, newStore(client, c, pc, "matches", pc.Matches), opts...)
}

// openPage builds and loads the page selected by --page. The returned close
// function releases the cache.
func openPage(ctx context.Context, force bool, scroll ...vscroll.Option) (*page.Page, func(), error) {
	pc, err := cfg.Page(pageName)
	if err != nil {
		return nil, nil, err
	}
	c := openCache()
	closeFn := func() {
		if c != nil {
			c.Close()
		}
	}
	p := buildPage(pc, c, scroll...)
	if err := p.Load(ctx, force); err != nil {
		closeFn()
		return nil, nil, err
	}
	return p, closeFn, nil
}

// handleLoadError prints the "no data" line for an unavailable page and
// swallows the error; anything else is returned.
func handleLoadError(err error) error {
	if errors.Is(err, store.ErrDataUnavailable) {
		cNoData.Fprintf(os.Stderr, "no data: %v\n", err)
		return nil
	}
	return err
}

// parseFilters turns repeated key=value flags into page controls.
func parseFilters(pairs []string) (page.MapControls, error) {
	controls := page.MapControls{}
	for _, kv := range pairs {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || strings.TrimSpace(k) == "" {
			return nil, fmt.Errorf("invalid filter %q: want key=value", kv)
		}
		controls[strings.TrimSpace(k)] = v
	}
	return controls, nil
}

// checkFilterKeys rejects controls the page does not declare.
func checkFilterKeys(p *page.Page, controls page.MapControls) error {
	known := map[string]bool{
		page.KeySearch: true, page.KeySort: true, page.KeyWith: true, page.KeyAgainst: true,
	}
	for _, c := range p.Clauses() {
		known[c.Key] = true
	}
	for k := range controls {
		if !known[k] {
			return fmt.Errorf("unknown filter %q (see 'matchstats pages')", k)
		}
	}
	return nil
}
