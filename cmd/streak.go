package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pable/go-match-stats/internal/aggregator"
	"github.com/pable/go-match-stats/internal/report"
)

var (
	streakFilters []string
	streakBy      string
	streakTop     int
)

var streakCmd = &cobra.Command{
	Use:   "streak [class]",
	Short: "Longest chronological runs of results",
	Long: `Without a class, print the longest run of every streak class. With a class
and --by, print that class's longest run per group.

Classes: wins, draws, losses, unbeaten, winless, clean-sheets, scoring, conceding`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStreak,
}

func init() {
	streakCmd.Flags().StringArrayVarP(&streakFilters, "filter", "F", nil, "filter as key=value (repeatable)")
	streakCmd.Flags().StringVar(&streakBy, "by", "", "group by dimension (opponents, seasons, managers, ...)")
	streakCmd.Flags().IntVar(&streakTop, "top", 20, "rows to show with --by (0 = all)")
}

func runStreak(cmd *cobra.Command, args []string) error {
	p, closeFn, err := openPage(cmd.Context(), false)
	if err != nil {
		return handleLoadError(err)
	}
	defer closeFn()

	controls, err := parseFilters(streakFilters)
	if err != nil {
		return err
	}
	if err := checkFilterKeys(p, controls); err != nil {
		return err
	}
	p.Apply(controls)

	if len(args) == 0 {
		tbl, err := p.View("streaks")
		if err != nil {
			return err
		}
		report.PrintTitle(os.Stdout, "%s · streaks  (%d matches)", p.Title, len(p.Filtered()))
		report.Print(os.Stdout, tbl)
		return nil
	}

	class, ok := aggregator.ParseStreakClass(args[0])
	if !ok {
		return fmt.Errorf("unknown streak class %q", args[0])
	}
	matches, dict := p.Filtered(), p.MatchFields()

	if streakBy == "" {
		s := aggregator.LongestStreak(matches, dict, class, aggregator.Primary)
		if !s.Found() {
			fmt.Fprintf(os.Stdout, "no %s streak in %d matches\n", class, len(matches))
			return nil
		}
		fmt.Fprintf(os.Stdout, "longest %s streak: %d  (%s → %s)\n",
			class, s.Count, s.Start.Format("2006-01-02"), s.End.Format("2006-01-02"))
		return nil
	}

	d, ok := aggregator.LookupDimension(streakBy)
	if !ok {
		return fmt.Errorf("unknown dimension %q", streakBy)
	}
	rows := aggregator.GroupByDimension(matches, dict, d)
	aggregator.GroupStreaks(rows, matches, dict, aggregator.KeyField(dict, d.Field), class, d.Perspective)
	aggregator.SortBy(rows, "streak", true)
	if streakTop > 0 && len(rows) > streakTop {
		rows = rows[:streakTop]
	}
	report.PrintTitle(os.Stdout, "%s · longest %s streak by %s", p.Title, class, d.Name)
	report.Print(os.Stdout, report.AggregateTable(strings.ToUpper(d.Name), rows, nil, false))
	return nil
}
