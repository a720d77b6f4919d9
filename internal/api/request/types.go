package request

// CreatePlayerRequest is the request body for registering a player
type CreatePlayerRequest struct {
	Nickname string `json:"nickname" validate:"required,max=64"`
}

// CreateTeamRequest is the request body for creating a team from existing players
type CreateTeamRequest struct {
	Name      string   `json:"name" validate:"required,max=64"`
	PlayerIDs []string `json:"player_ids" validate:"required,min=1,dive,required"`
}

// RenameTeamRequest is the request body for renaming a team
type RenameTeamRequest struct {
	Name string `json:"name" validate:"required,max=64"`
}

// AddMemberRequest is the request body for adding a player to a team
type AddMemberRequest struct {
	PlayerID string `json:"player_id" validate:"required"`
}

// GenerateTeamsRequest is the request body for drafting two balanced teams.
// TeamSize defaults to the configured team size when omitted.
type GenerateTeamsRequest struct {
	TeamSize *int `json:"team_size,omitempty"`
}

// RecordMatchRequest is the request body for recording a match result.
// Omit winner_id to record a draw.
type RecordMatchRequest struct {
	Team1ID       string  `json:"team1_id" validate:"required"`
	Team2ID       string  `json:"team2_id" validate:"required"`
	WinnerID      *string `json:"winner_id,omitempty"`
	DurationHours int     `json:"duration_hours"`
}
