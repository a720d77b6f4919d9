package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/mcoot/teamladder/internal/api/response"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter writing to w
func NewOutput(format string, w io.Writer) *Output {
	return &Output{format: format, w: w}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == FormatJSON {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == FormatJSON {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Fprintln(o.w, string(data))
	} else {
		fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case response.Player:
		o.printPlayer(v)
	case response.PlayerList:
		o.printPlayers(v.Players)
	case response.Team:
		o.printTeam(v)
	case response.TeamList:
		o.printTeams(v.Teams)
	case response.GeneratedTeams:
		o.printTeam(v.TeamA)
		fmt.Fprintln(o.w)
		o.printTeam(v.TeamB)
	case response.Match:
		o.printMatch(v)
	case response.MatchList:
		o.printMatches(v.Matches)
	case response.Health:
		fmt.Fprintf(o.w, "Status: %s\n", v.Status)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

func (o *Output) printPlayer(p response.Player) {
	fmt.Fprintf(o.w, "Player: %s (%s)\n", p.Nickname, p.ID)
	fmt.Fprintf(o.w, "Rating: %.1f\n", p.Rating)
	fmt.Fprintf(o.w, "Record: %d-%d\n", p.Wins, p.Losses)
	fmt.Fprintf(o.w, "Hours: %d (K=%d)\n", p.HoursPlayed, p.KFactor)
	if p.TeamID != nil {
		fmt.Fprintf(o.w, "Team: %s\n", *p.TeamID)
	}
}

func (o *Output) printPlayers(players []response.Player) {
	if len(players) == 0 {
		fmt.Fprintln(o.w, "No players")
		return
	}
	tw := tabwriter.NewWriter(o.w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tNICKNAME\tRATING\tW-L\tHOURS\tID")
	for i, p := range players {
		fmt.Fprintf(tw, "%d\t%s\t%.1f\t%d-%d\t%d\t%s\n", i+1, p.Nickname, p.Rating, p.Wins, p.Losses, p.HoursPlayed, p.ID)
	}
	_ = tw.Flush()
}

func (o *Output) printTeam(t response.Team) {
	fmt.Fprintf(o.w, "Team: %s (%s)\n", t.Name, t.ID)
	fmt.Fprintf(o.w, "Record: %d-%d-%d\n", t.Wins, t.Losses, t.Draws)
	if len(t.Members) > 0 {
		fmt.Fprintf(o.w, "Members (%d):\n", len(t.Members))
		for _, m := range t.Members {
			fmt.Fprintf(o.w, "  - %s (%s) %.1f\n", m.Nickname, m.ID, m.Rating)
		}
		return
	}
	fmt.Fprintf(o.w, "Players: %s\n", strings.Join(t.PlayerIDs, ", "))
}

func (o *Output) printTeams(teams []response.Team) {
	if len(teams) == 0 {
		fmt.Fprintln(o.w, "No teams")
		return
	}
	tw := tabwriter.NewWriter(o.w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tSIZE\tW-L-D\tID")
	for _, t := range teams {
		fmt.Fprintf(tw, "%s\t%d\t%d-%d-%d\t%s\n", t.Name, len(t.PlayerIDs), t.Wins, t.Losses, t.Draws, t.ID)
	}
	_ = tw.Flush()
}

func (o *Output) printMatch(m response.Match) {
	fmt.Fprintf(o.w, "Match: %s\n", m.ID)
	fmt.Fprintf(o.w, "Teams: %s vs %s\n", m.Team1ID, m.Team2ID)
	if m.WinnerID != nil {
		fmt.Fprintf(o.w, "Winner: %s\n", *m.WinnerID)
	} else {
		fmt.Fprintln(o.w, "Result: draw")
	}
	fmt.Fprintf(o.w, "Duration: %dh\n", m.DurationHours)
	if len(m.RatingChanges) == 0 {
		return
	}
	fmt.Fprintln(o.w, "Rating changes:")
	tw := tabwriter.NewWriter(o.w, 0, 0, 2, ' ', 0)
	for _, rc := range m.RatingChanges {
		fmt.Fprintf(tw, "  %s\t%s\t%.1f -> %.1f\t(%+.1f, K=%d)\n", rc.PlayerID, rc.Outcome, rc.Before, rc.After, rc.Delta, rc.KFactor)
	}
	_ = tw.Flush()
}

func (o *Output) printMatches(matches []response.Match) {
	if len(matches) == 0 {
		fmt.Fprintln(o.w, "No matches")
		return
	}
	tw := tabwriter.NewWriter(o.w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTEAMS\tRESULT\tHOURS\tPLAYED")
	for _, m := range matches {
		result := "draw"
		if m.WinnerID != nil {
			result = *m.WinnerID + " won"
		}
		fmt.Fprintf(tw, "%s\t%s vs %s\t%s\t%d\t%s\n", m.ID, m.Team1ID, m.Team2ID, result, m.DurationHours, m.PlayedAt.Format("2006-01-02 15:04"))
	}
	_ = tw.Flush()
}
