package cmd

import (
	"strings"

	"github.com/spf13/cobra"
)

var (
	searchQuery queryFlags
	searchView  string
)

var searchCmd = &cobra.Command{
	Use:   "search <text>",
	Short: "Free-text search over the rows of a view",
	Long:  "Show the rows of a view (default: matches) whose displayed values contain the text, ignoring case.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSearch,
}

func init() {
	searchQuery.register(searchCmd)
	searchCmd.Flags().StringVar(&searchView, "view", "matches", "view to search")
}

func runSearch(cmd *cobra.Command, args []string) error {
	p, closeFn, err := openPage(cmd.Context(), false, terminalScroll()...)
	if err != nil {
		return handleLoadError(err)
	}
	defer closeFn()

	searchQuery.search = strings.Join(args, " ")
	return searchQuery.render(cmd, p, searchView, nil)
}
