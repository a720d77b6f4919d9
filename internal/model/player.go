package model

import "time"

// PlayerID uniquely identifies a player across the system
type PlayerID string

// Player is a competitor with an Elo-style rating
type Player struct {
	ID          PlayerID  `json:"id"`
	Nickname    string    `json:"nickname"` // unique, case-sensitive
	Wins        int       `json:"wins"`
	Losses      int       `json:"losses"`
	Rating      float64   `json:"rating"`
	HoursPlayed int       `json:"hours_played"`
	KFactor     int       `json:"k_factor"` // K-factor for the player's next match
	TeamID      *TeamID   `json:"team_id,omitempty"`
	Version     int64     `json:"version"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// IsAssigned reports whether the player belongs to a team
func (p *Player) IsAssigned() bool {
	return p.TeamID != nil
}

// Clone returns a deep copy of the player
func (p *Player) Clone() *Player {
	c := *p
	if p.TeamID != nil {
		id := *p.TeamID
		c.TeamID = &id
	}
	return &c
}
