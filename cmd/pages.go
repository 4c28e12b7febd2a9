package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var pagesCmd = &cobra.Command{
	Use:   "pages",
	Short: "List the configured pages and their filters",
	Args:  cobra.NoArgs,
	RunE:  runPages,
}

func runPages(cmd *cobra.Command, args []string) error {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%-14s  %-20s  %-24s  %s\n", "PAGE", "TITLE", "MATCHES", "EXTRA")
	fmt.Fprintf(w, "%-14s  %-20s  %-24s  %s\n",
		"──────────────", "────────────────────", "────────────────────────", "─────")
	for _, pc := range cfg.Pages {
		var extra []string
		if pc.Details.Enabled() {
			extra = append(extra, "details")
		}
		if pc.Lineups.Enabled() {
			extra = append(extra, "lineups")
		}
		fmt.Fprintf(w, "%-14s  %-20s  %-24s  %s\n",
			pc.Name, pc.Title, pc.Matches.Endpoint, strings.Join(extra, ","))
	}

	pc, err := cfg.Page(pageName)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "\nFilters of page %s (--filter key=value):\n", pc.Name)
	for _, c := range buildPage(pc, nil).Clauses() {
		fmt.Fprintf(w, "  %-18s %s\n", c.Key, c.Kind)
	}
	return nil
}
