package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pable/go-match-stats/internal/page"
)

var (
	playersQuery     queryFlags
	playersWith      string
	playersAgainst   string
	playersPenalties bool
)

// playersCmd prints the per-player breakdown built from detail and lineup rows.
var playersCmd = &cobra.Command{
	Use:   "players",
	Short: "Per-player goals, assists, multi-goal matches and penalties",
	Long: `Aggregate the detail (goal / assist / penalty) rows of the selected page per
player. Events are counted for the page team only when one is configured.

--with keeps matches where the named teammate was on the player's side,
--against keeps matches where the named player was on the other side.`,
	Args: cobra.NoArgs,
	RunE: runPlayers,
}

func init() {
	playersQuery.register(playersCmd)
	playersCmd.Flags().StringVar(&playersWith, "with", "", "only matches shared with this teammate")
	playersCmd.Flags().StringVar(&playersAgainst, "against", "", "only matches against this player")
	playersCmd.Flags().BoolVar(&playersPenalties, "penalties", false, "show penalty takers instead")
}

func runPlayers(cmd *cobra.Command, args []string) error {
	p, closeFn, err := openPage(cmd.Context(), false, terminalScroll()...)
	if err != nil {
		return handleLoadError(err)
	}
	defer closeFn()

	if !p.HasDetails() {
		return fmt.Errorf("page %s has no detail records configured", p.Name)
	}
	view := "players"
	if playersPenalties {
		view = "penalties"
	}
	return playersQuery.render(cmd, p, view, map[string]string{
		page.KeyWith:    playersWith,
		page.KeyAgainst: playersAgainst,
	})
}
