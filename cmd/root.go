package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/pable/go-match-stats/internal/config"
	"github.com/pable/go-match-stats/internal/logger"
)

var (
	cfgPath  string
	dbPath   string
	pageName string
	logLevel string
	noCache  bool

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "matchstats",
	Short: "Football match statistics from spreadsheet-backed pages",
	Long: `Load match, goal-detail and lineup records from the configured pages, filter
them and print aggregate tables: W/D/L records per opponent, season, manager or
referee, streaks, head-to-head records and player breakdowns.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "config file (default ./matchstats.yaml)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "path to the SQLite cache (overrides cache.path)")
	rootCmd.PersistentFlags().StringVarP(&pageName, "page", "p", "", "page to query (default: first configured page)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&noCache, "no-cache", false, "do not read or write the local cache")

	rootCmd.AddCommand(pagesCmd)
	rootCmd.AddCommand(loadCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(streakCmd)
	rootCmd.AddCommand(h2hCmd)
	rootCmd.AddCommand(playersCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(sqlCmd)
	rootCmd.AddCommand(shellCmd)
	rootCmd.AddCommand(serveCmd)
}

// setup loads .env and the config file, applies flag overrides and installs
// the logger.
func setup(cmd *cobra.Command, _ []string) error {
	godotenv.Load()

	c, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	if dbPath != "" {
		c.Cache.Path = dbPath
	}
	if noCache {
		c.Cache.Enabled = false
	}
	if logLevel != "" {
		c.Logging.Level = strings.ToLower(logLevel)
	}
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Cache.Enabled {
		if err := os.MkdirAll(filepath.Dir(c.Cache.Path), 0755); err != nil {
			return fmt.Errorf("create cache dir: %w", err)
		}
	}

	logger.Init(c.Logging.Level, c.Logging.Format)
	slog.Debug("config loaded", "file", cfgPath, "pages", len(c.Pages), "cache", c.Cache.Path)
	cfg = c
	return nil
}
