package cli

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/mcoot/teamladder/internal/api/request"
	"github.com/mcoot/teamladder/internal/api/response"
)

func newMatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "match",
		Short: "Match recording and history commands",
	}

	cmd.AddCommand(newMatchRecordCmd())
	cmd.AddCommand(newMatchGetCmd())
	cmd.AddCommand(newMatchListCmd())

	return cmd
}

func newMatchRecordCmd() *cobra.Command {
	var winner string
	var hours int
	var draw bool

	cmd := &cobra.Command{
		Use:   "record <team1-id> <team2-id>",
		Short: "Record a match result and update ratings",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if draw == (winner != "") {
				return fmt.Errorf("exactly one of --winner or --draw is required")
			}

			req := request.RecordMatchRequest{
				Team1ID:       args[0],
				Team2ID:       args[1],
				DurationHours: hours,
			}
			if winner != "" {
				req.WinnerID = &winner
			}

			var result response.Match
			if err := client.Post(cmd.Context(), "/api/v1/matches", req, &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&winner, "winner", "", "Winning team id")
	cmd.Flags().BoolVar(&draw, "draw", false, "Record the match as a draw")
	cmd.Flags().IntVar(&hours, "hours", 0, "Match duration in whole hours (required)")
	_ = cmd.MarkFlagRequired("hours")

	return cmd
}

func newMatchGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <match-id>",
		Short: "Get match details with rating changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Match

			if err := client.Get(cmd.Context(), "/api/v1/matches/"+url.PathEscape(args[0]), &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}
}

func newMatchListCmd() *cobra.Command {
	var team string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded matches",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/v1/matches"
			if team != "" {
				path += "?team_id=" + url.QueryEscape(team)
			}

			var result response.MatchList
			if err := client.Get(cmd.Context(), path, &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&team, "team", "", "Only show matches involving this team")

	return cmd
}
