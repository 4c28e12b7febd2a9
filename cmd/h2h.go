package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-match-stats/internal/aggregator"
	"github.com/pable/go-match-stats/internal/report"
)

var (
	h2hFilters []string
	h2hList    bool
)

var h2hCmd = &cobra.Command{
	Use:   "h2h <team> <opponent>",
	Short: "Head-to-head record between two sides",
	Long:  "Count every fixture between the two sides in either orientation. Names match case-insensitively by substring.",
	Args:  cobra.ExactArgs(2),
	RunE:  runH2H,
}

func init() {
	h2hCmd.Flags().StringArrayVarP(&h2hFilters, "filter", "F", nil, "filter as key=value (repeatable)")
	h2hCmd.Flags().BoolVar(&h2hList, "matches", false, "also list the fixtures")
}

func runH2H(cmd *cobra.Command, args []string) error {
	p, closeFn, err := openPage(cmd.Context(), false)
	if err != nil {
		return handleLoadError(err)
	}
	defer closeFn()

	controls, err := parseFilters(h2hFilters)
	if err != nil {
		return err
	}
	if err := checkFilterKeys(p, controls); err != nil {
		return err
	}
	p.Apply(controls)

	dict := p.MatchFields()
	h := p.HeadToHead(args[0], args[1])
	if h.Side.Matches == 0 {
		fmt.Fprintf(os.Stdout, "no fixtures between %q and %q\n", args[0], args[1])
		return nil
	}

	report.PrintTitle(os.Stdout, "%s vs %s  (%d matches)", args[0], args[1], h.Side.Matches)
	report.Print(os.Stdout, report.H2HTable(h))
	if line := report.H2HGoals(h); line != "" {
		fmt.Fprintln(os.Stdout, line)
	}

	if h2hList {
		fmt.Fprintln(os.Stdout)
		report.Print(os.Stdout, report.RecordTable("matches", aggregator.Chronological(h.Matches, dict), dict))
	}
	return nil
}
