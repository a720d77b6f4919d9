package response

import (
	"time"

	"github.com/samber/lo"

	"github.com/mcoot/teamladder/internal/model"
)

// Player represents a player in API responses
type Player struct {
	ID          string    `json:"id"`
	Nickname    string    `json:"nickname"`
	Rating      float64   `json:"rating"`
	Wins        int       `json:"wins"`
	Losses      int       `json:"losses"`
	HoursPlayed int       `json:"hours_played"`
	KFactor     int       `json:"k_factor"`
	TeamID      *string   `json:"team_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// PlayerFromModel converts a model.Player to a response Player
func PlayerFromModel(p *model.Player) Player {
	var teamID *string
	if p.TeamID != nil {
		id := string(*p.TeamID)
		teamID = &id
	}
	return Player{
		ID:          string(p.ID),
		Nickname:    p.Nickname,
		Rating:      p.Rating,
		Wins:        p.Wins,
		Losses:      p.Losses,
		HoursPlayed: p.HoursPlayed,
		KFactor:     p.KFactor,
		TeamID:      teamID,
		CreatedAt:   p.CreatedAt,
	}
}

// PlayerList wraps a list of players
type PlayerList struct {
	Players []Player `json:"players"`
}

// PlayerListFromModel converts a slice of players
func PlayerListFromModel(players []*model.Player) PlayerList {
	return PlayerList{
		Players: lo.Map(players, func(p *model.Player, _ int) Player { return PlayerFromModel(p) }),
	}
}

// Team represents a team in API responses.
// Members is only populated when the handler loads them.
type Team struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	PlayerIDs []string  `json:"player_ids"`
	Members   []Player  `json:"members,omitempty"`
	Wins      int       `json:"wins"`
	Losses    int       `json:"losses"`
	Draws     int       `json:"draws"`
	CreatedAt time.Time `json:"created_at"`
}

// TeamFromModel converts a model.Team to a response Team
func TeamFromModel(t *model.Team) Team {
	return Team{
		ID:        string(t.ID),
		Name:      t.Name,
		PlayerIDs: lo.Map(t.PlayerIDs, func(id model.PlayerID, _ int) string { return string(id) }),
		Wins:      t.Wins,
		Losses:    t.Losses,
		Draws:     t.Draws,
		CreatedAt: t.CreatedAt,
	}
}

// TeamWithMembers converts a team along with its loaded members
func TeamWithMembers(t *model.Team, members []*model.Player) Team {
	team := TeamFromModel(t)
	team.Members = lo.Map(members, func(p *model.Player, _ int) Player { return PlayerFromModel(p) })
	return team
}

// TeamList wraps a list of teams
type TeamList struct {
	Teams []Team `json:"teams"`
}

// TeamListFromModel converts a slice of teams
func TeamListFromModel(teams []*model.Team) TeamList {
	return TeamList{
		Teams: lo.Map(teams, func(t *model.Team, _ int) Team { return TeamFromModel(t) }),
	}
}

// GeneratedTeams is the response for a balanced draft
type GeneratedTeams struct {
	TeamA Team `json:"team_a"`
	TeamB Team `json:"team_b"`
}

// RatingChange represents one player's rating movement in a match
type RatingChange struct {
	PlayerID string  `json:"player_id"`
	TeamID   string  `json:"team_id"`
	Before   float64 `json:"before"`
	After    float64 `json:"after"`
	Delta    float64 `json:"delta"`
	KFactor  int     `json:"k_factor"`
	Outcome  string  `json:"outcome"`
}

// RatingChangeFromModel converts model.RatingChange
func RatingChangeFromModel(rc model.RatingChange) RatingChange {
	return RatingChange{
		PlayerID: string(rc.PlayerID),
		TeamID:   string(rc.TeamID),
		Before:   rc.Before,
		After:    rc.After,
		Delta:    rc.Delta(),
		KFactor:  rc.KFactor,
		Outcome:  rc.Outcome.String(),
	}
}

// Match represents a recorded match
type Match struct {
	ID            string         `json:"id"`
	Team1ID       string         `json:"team1_id"`
	Team2ID       string         `json:"team2_id"`
	WinnerID      *string        `json:"winner_id"`
	Draw          bool           `json:"draw"`
	DurationHours int            `json:"duration_hours"`
	RatingChanges []RatingChange `json:"rating_changes"`
	PlayedAt      time.Time      `json:"played_at"`
}

// MatchFromModel converts model.Match
func MatchFromModel(m *model.Match) Match {
	var winner *string
	if m.WinnerID != nil {
		w := string(*m.WinnerID)
		winner = &w
	}
	return Match{
		ID:            string(m.ID),
		Team1ID:       string(m.Team1ID),
		Team2ID:       string(m.Team2ID),
		WinnerID:      winner,
		Draw:          m.IsDraw(),
		DurationHours: m.DurationHours,
		RatingChanges: lo.Map(m.RatingChanges, func(rc model.RatingChange, _ int) RatingChange { return RatingChangeFromModel(rc) }),
		PlayedAt:      m.PlayedAt,
	}
}

// MatchList wraps a list of matches
type MatchList struct {
	Matches []Match `json:"matches"`
}

// MatchListFromModel converts a slice of matches
func MatchListFromModel(matches []*model.Match) MatchList {
	return MatchList{
		Matches: lo.Map(matches, func(m *model.Match, _ int) Match { return MatchFromModel(m) }),
	}
}

// Health is the response for the health check
type Health struct {
	Status string `json:"status"`
}
