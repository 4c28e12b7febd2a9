package cmd

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pable/go-match-stats/internal/report"
)

var (
	exportQuery  queryFlags
	exportFormat string
	exportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export [view]",
	Short: "Export a view as CSV or JSON",
	Long: `Compute one view of the selected page, after filters, search and sort,
and write every row as CSV or JSON.

Examples:
  matchstats export opponents -F season=2023-24 --out opponents.csv
  matchstats export players --format json --out players.json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringArrayVarP(&exportQuery.filters, "filter", "F", nil, "filter as key=value (repeatable)")
	exportCmd.Flags().StringVar(&exportQuery.sort, "sort", "", "sort column; prefix with - for descending")
	exportCmd.Flags().StringVarP(&exportQuery.search, "search", "s", "", "free-text search over the rows")
	exportCmd.Flags().StringVar(&exportFormat, "format", "", "csv or json (default: from --out extension, else csv)")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output file path (default: stdout)")
}

func runExport(cmd *cobra.Command, args []string) error {
	view := "matches"
	if len(args) == 1 {
		view = args[0]
	}
	format := strings.ToLower(exportFormat)
	if format == "" {
		format = "csv"
		if strings.HasSuffix(strings.ToLower(exportOut), ".json") {
			format = "json"
		}
	}
	if format != "csv" && format != "json" {
		return fmt.Errorf("unknown format %q: want csv or json", exportFormat)
	}

	p, closeFn, err := openPage(cmd.Context(), false)
	if err != nil {
		return handleLoadError(err)
	}
	defer closeFn()

	controls, err := exportQuery.controls(nil)
	if err != nil {
		return err
	}
	if err := checkFilterKeys(p, controls); err != nil {
		return err
	}
	p.Apply(controls)

	tbl, err := p.Render(cmd.Context(), view, nil)
	if err != nil {
		return fmt.Errorf("export %s: %w", view, err)
	}

	var buf bytes.Buffer
	if format == "json" {
		err = report.WriteJSON(&buf, tbl)
	} else {
		err = report.WriteCSV(&buf, tbl)
	}
	if err != nil {
		return fmt.Errorf("encode %s: %w", format, err)
	}

	if exportOut == "" {
		_, err := os.Stdout.Write(buf.Bytes())
		return err
	}
	if err := os.WriteFile(exportOut, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("write %s: %w", exportOut, err)
	}
	fmt.Fprintf(os.Stderr, "Wrote %d rows to %s\n", tbl.Len(), exportOut)
	return nil
}
