package model

import (
	"slices"
	"time"
)

// MatchID uniquely identifies a recorded match
type MatchID string

// Outcome is a player's result in a match, expressed as an Elo score
type Outcome float64

const (
	OutcomeLoss Outcome = 0.0
	OutcomeDraw Outcome = 0.5
	OutcomeWin  Outcome = 1.0
)

// String returns "win", "loss" or "draw"
func (o Outcome) String() string {
	switch o {
	case OutcomeWin:
		return "win"
	case OutcomeLoss:
		return "loss"
	default:
		return "draw"
	}
}

// RatingChange records how one player's rating moved in a match
type RatingChange struct {
	PlayerID PlayerID `json:"player_id"`
	TeamID   TeamID   `json:"team_id"`
	Before   float64  `json:"before"`
	After    float64  `json:"after"`
	KFactor  int      `json:"k_factor"`
	Outcome  Outcome  `json:"outcome"`
}

// Delta returns After - Before
func (rc RatingChange) Delta() float64 {
	return rc.After - rc.Before
}

// Match is an immutable record of a played match.
// A nil WinnerID means the match was a draw.
type Match struct {
	ID            MatchID        `json:"id"`
	Team1ID       TeamID         `json:"team1_id"`
	Team2ID       TeamID         `json:"team2_id"`
	WinnerID      *TeamID        `json:"winner_id,omitempty"`
	DurationHours int            `json:"duration_hours"`
	RatingChanges []RatingChange `json:"rating_changes"`
	PlayedAt      time.Time      `json:"played_at"`
}

// IsDraw reports whether neither team won
func (m *Match) IsDraw() bool {
	return m.WinnerID == nil
}

// OutcomeFor returns the result of the match from the given team's side
func (m *Match) OutcomeFor(team TeamID) Outcome {
	switch {
	case m.WinnerID == nil:
		return OutcomeDraw
	case *m.WinnerID == team:
		return OutcomeWin
	default:
		return OutcomeLoss
	}
}

// Clone returns a deep copy of the match
func (m *Match) Clone() *Match {
	c := *m
	if m.WinnerID != nil {
		id := *m.WinnerID
		c.WinnerID = &id
	}
	c.RatingChanges = slices.Clone(m.RatingChanges)
	return &c
}
