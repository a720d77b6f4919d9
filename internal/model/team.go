package model

import (
	"slices"
	"time"
)

// TeamID uniquely identifies a team
type TeamID string

// DefaultTeamSize is the number of players on each side of a match
const DefaultTeamSize = 5

// Team is a fixed roster of players that competes in matches.
// Member ratings live on the Player records; the team only references them.
type Team struct {
	ID        TeamID     `json:"id"`
	Name      string     `json:"name"`
	PlayerIDs []PlayerID `json:"player_ids"`
	Wins      int        `json:"wins"`
	Losses    int        `json:"losses"`
	Draws     int        `json:"draws"`
	Version   int64      `json:"version"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Size returns the number of members
func (t *Team) Size() int {
	return len(t.PlayerIDs)
}

// HasMember reports whether the player is on this team
func (t *Team) HasMember(id PlayerID) bool {
	return slices.Contains(t.PlayerIDs, id)
}

// RemoveMember drops a player from the roster. Returns false if absent.
func (t *Team) RemoveMember(id PlayerID) bool {
	idx := slices.Index(t.PlayerIDs, id)
	if idx < 0 {
		return false
	}
	t.PlayerIDs = slices.Delete(t.PlayerIDs, idx, idx+1)
	return true
}

// Clone returns a deep copy of the team
func (t *Team) Clone() *Team {
	c := *t
	c.PlayerIDs = slices.Clone(t.PlayerIDs)
	return &c
}
