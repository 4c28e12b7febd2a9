package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var loadForce bool

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Load a page's records and report the row counts",
	Long:  "Load the selected page into the local cache. With --force the backend is asked to bypass its own cache and the local cache is neither read nor written.",
	Args:  cobra.NoArgs,
	RunE:  runLoad,
}

func init() {
	loadCmd.Flags().BoolVarP(&loadForce, "force", "f", false, "force a fresh fetch")
}

func runLoad(cmd *cobra.Command, args []string) error {
	start := time.Now()
	p, closeFn, err := openPage(cmd.Context(), loadForce)
	if err != nil {
		return handleLoadError(err)
	}
	defer closeFn()

	fmt.Fprintf(os.Stdout, "page %s (%s) loaded in %s\n", p.Name, p.Title, time.Since(start).Round(time.Millisecond))
	loaded := p.Loaded()
	fmt.Fprintf(os.Stdout, "  %-8s  %8s  %8s\n", "", "LOADED", "FILTERED")
	fmt.Fprintf(os.Stdout, "  %-8s  %8d  %8d\n", "matches", loaded.Matches, len(p.Filtered()))
	if p.HasDetails() {
		fmt.Fprintf(os.Stdout, "  %-8s  %8d  %8d\n", "details", loaded.Details, len(p.FilteredDetails()))
	}
	if p.HasLineups() {
		fmt.Fprintf(os.Stdout, "  %-8s  %8d  %8d\n", "lineups", loaded.Lineups, len(p.FilteredLineups()))
	}
	return nil
}
