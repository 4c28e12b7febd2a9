package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pable/go-match-stats/internal/page"
	"github.com/pable/go-match-stats/internal/web"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve every configured page over HTTP",
	Long: `Load all configured pages and serve them:

  GET  /pages                   page index (JSON)
  GET  /pages/{page}/view/{v}   HTML table; height, scroll and filter query params
  POST /pages/{page}/refresh    refetch a page, bypassing the cache

A page that fails to load is still served and shows no rows until refreshed.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides serve.addr)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	addr := cfg.Serve.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	c := openCache()
	if c != nil {
		defer c.Close()
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pages := make([]*page.Page, 0, len(cfg.Pages))
	for _, pc := range cfg.Pages {
		p := buildPage(pc, c)
		if err := p.Load(ctx, false); err != nil {
			slog.Warn("page load failed", "page", pc.Name, "err", err)
		} else {
			slog.Info("page loaded", "page", pc.Name, "matches", len(p.Filtered()))
		}
		pages = append(pages, p)
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           web.NewServer(pages, cfg.Table.Viewport, cfg.Table.RowHeight, slog.Default()).Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		slog.Info("listening", "addr", addr, "pages", len(pages))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
