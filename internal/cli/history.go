package cli

import (
	"github.com/spf13/cobra"
)

func newHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history <player_id>",
		Short: "Show a player's stored match history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result HistoryResult

			if err := client.Get("/api/v1/players/"+args[0]+"/history", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newMovesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "moves <match_id>",
		Short: "Show the stored move log for a match",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result MovesResult

			if err := client.Get("/api/v1/matches/"+args[0]+"/moves", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}
