package cli

import (
	"net/url"

	"github.com/spf13/cobra"

	"github.com/mcoot/teamladder/internal/api/request"
	"github.com/mcoot/teamladder/internal/api/response"
)

func newTeamCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "team",
		Short: "Team management commands",
	}

	cmd.AddCommand(newTeamCreateCmd())
	cmd.AddCommand(newTeamGetCmd())
	cmd.AddCommand(newTeamListCmd())
	cmd.AddCommand(newTeamRenameCmd())
	cmd.AddCommand(newTeamJoinCmd())
	cmd.AddCommand(newTeamLeaveCmd())
	cmd.AddCommand(newTeamGenerateCmd())

	return cmd
}

func teamPath(id string) string {
	return "/api/v1/teams/" + url.PathEscape(id)
}

func newTeamCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create <name> <player-id>...",
		Short: "Create a team from unassigned players",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := request.CreateTeamRequest{Name: args[0], PlayerIDs: args[1:]}
			var result response.Team

			if err := client.Post(cmd.Context(), "/api/v1/teams", req, &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}
}

func newTeamGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <team-id>",
		Short: "Get team details with member ratings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Team

			if err := client.Get(cmd.Context(), teamPath(args[0]), &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}
}

func newTeamListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all teams",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.TeamList

			if err := client.Get(cmd.Context(), "/api/v1/teams", &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}
}

func newTeamRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <team-id> <name>",
		Short: "Rename a team",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := request.RenameTeamRequest{Name: args[1]}
			var result response.Team

			if err := client.Patch(cmd.Context(), teamPath(args[0]), req, &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}
}

func newTeamJoinCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "join <team-id> <player-id>",
		Short: "Add an unassigned player to a team",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := request.AddMemberRequest{PlayerID: args[1]}
			var result response.Team

			if err := client.Post(cmd.Context(), teamPath(args[0])+"/members", req, &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}
}

func newTeamLeaveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "leave <team-id> <player-id>",
		Short: "Remove a player from a team",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Team

			path := teamPath(args[0]) + "/members/" + url.PathEscape(args[1])
			if err := client.Delete(cmd.Context(), path, &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}
}

func newTeamGenerateCmd() *cobra.Command {
	var size int

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Draft two balanced teams from unassigned players",
		RunE: func(cmd *cobra.Command, args []string) error {
			var req request.GenerateTeamsRequest
			if cmd.Flags().Changed("size") {
				req.TeamSize = &size
			}

			var result response.GeneratedTeams
			if err := client.Post(cmd.Context(), "/api/v1/teams/generate", req, &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}

	cmd.Flags().IntVar(&size, "size", 0, "Players per team (default: server team size)")

	return cmd
}
