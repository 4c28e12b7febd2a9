package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pable/go-match-stats/internal/model"
	"github.com/pable/go-match-stats/internal/report"
)

var sqlCmd = &cobra.Command{
	Use:   "sql <query>",
	Short: "Run a raw SQL query against the snapshot cache",
	Long: `Run an arbitrary SQL query against the local cache database and print results as a table.

Schema overview:
  cache_entries(page_key, version, stored_at INTEGER unix ms, row_count, payload BLOB json array)

The payload is the JSON record array of one page family, so SQLite's JSON
functions work on it:
  SELECT json_extract(value, '$.SEASON') AS season, count(*)
  FROM cache_entries, json_each(payload)
  WHERE page_key = 'default/matches' GROUP BY 1`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSQL,
}

func runSQL(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")
	c := openCache()
	if c == nil {
		return fmt.Errorf("cache is disabled or unavailable")
	}
	defer c.Close()

	cols, rows, err := c.QueryRaw(query)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Println("(no rows)")
		return nil
	}

	tbl := report.Table{Header: cols, Rows: make([]model.Row, len(rows))}
	for i, r := range rows {
		tbl.Rows[i] = r
	}
	report.Print(os.Stdout, tbl)
	fmt.Fprintf(os.Stdout, "\n(%d rows)\n", len(rows))
	return nil
}
