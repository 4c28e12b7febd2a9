package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cachePurgeForce bool

// cacheCmd groups the local snapshot cache maintenance commands.
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the local snapshot cache",
}

var cacheListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached snapshots",
	Args:  cobra.NoArgs,
	RunE:  runCacheList,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear [page]",
	Short: "Remove a page's snapshots (default: the selected page)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCacheClear,
}

var cachePurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Remove every snapshot",
	Args:  cobra.NoArgs,
	RunE:  runCachePurge,
}

func init() {
	cachePurgeCmd.Flags().BoolVarP(&cachePurgeForce, "force", "f", false, "skip confirmation prompt")
	cacheCmd.AddCommand(cacheListCmd, cacheClearCmd, cachePurgeCmd)
}

func runCacheList(cmd *cobra.Command, args []string) error {
	c := openCache()
	if c == nil {
		fmt.Fprintln(os.Stdout, "Cache is disabled or unavailable.")
		return nil
	}
	defer c.Close()

	entries, err := c.Entries()
	if err != nil {
		return fmt.Errorf("list entries: %w", err)
	}
	if len(entries) == 0 {
		fmt.Fprintln(os.Stdout, "Cache is empty. Run 'matchstats load' to fill it.")
		return nil
	}
	fmt.Fprintf(os.Stdout, "%-28s  %-8s  %-19s  %6s  %s\n", "KEY", "VERSION", "STORED", "ROWS", "STATE")
	fmt.Fprintf(os.Stdout, "%-28s  %-8s  %-19s  %6s  %s\n",
		"────────────────────────────", "────────", "───────────────────", "──────", "─────")
	for _, e := range entries {
		state := "fresh"
		if e.Expired {
			state = "expired"
		}
		fmt.Fprintf(os.Stdout, "%-28s  %-8s  %-19s  %6d  %s\n",
			e.PageKey, e.Version, e.StoredAt.Format("2006-01-02 15:04:05"), e.Rows, state)
	}
	return nil
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	name := pageName
	if len(args) == 1 {
		name = args[0]
	}
	pc, err := cfg.Page(name)
	if err != nil {
		return err
	}
	c := openCache()
	if c == nil {
		fmt.Fprintln(os.Stdout, "Cache is disabled or unavailable.")
		return nil
	}
	defer c.Close()

	for _, family := range []string{"matches", "details", "lineups"} {
		if err := c.Clear(pc.Name + "/" + family); err != nil {
			return err
		}
	}
	fmt.Fprintf(os.Stdout, "Cleared cached snapshots of page %s.\n", pc.Name)
	return nil
}

func runCachePurge(cmd *cobra.Command, args []string) error {
	if !cachePurgeForce {
		fmt.Fprintf(os.Stderr, "This will remove every snapshot in: %s\n", cfg.Cache.Path)
		fmt.Fprintf(os.Stderr, "Re-run with --force to confirm.\n")
		return nil
	}
	c := openCache()
	if c == nil {
		fmt.Fprintln(os.Stdout, "Cache is disabled or unavailable.")
		return nil
	}
	defer c.Close()

	if err := c.Purge(); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "Purged: %s\n", cfg.Cache.Path)
	return nil
}
