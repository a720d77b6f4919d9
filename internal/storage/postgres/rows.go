package postgres

import (
	"encoding/json"
	"time"

	"github.com/mcoot/teamladder/internal/model"
)

// Row types mirror the model with column tags. List-valued fields are
// stored as JSON text.

type playerRow struct {
	ID          string    `gorm:"primaryKey"`
	Nickname    string    `gorm:"uniqueIndex:idx_players_nickname;not null"`
	Wins        int       `gorm:"not null"`
	Losses      int       `gorm:"not null"`
	Rating      float64   `gorm:"not null;index"`
	HoursPlayed int       `gorm:"not null"`
	KFactor     int       `gorm:"not null"`
	TeamID      *string   `gorm:"index"`
	Version     int64     `gorm:"not null"`
	CreatedAt   time.Time `gorm:"autoCreateTime:false"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime:false"`
}

func (playerRow) TableName() string { return "players" }

type teamRow struct {
	ID        string    `gorm:"primaryKey"`
	Name      string    `gorm:"uniqueIndex:idx_teams_name;not null"`
	PlayerIDs string    `gorm:"type:text;not null"`
	Wins      int       `gorm:"not null"`
	Losses    int       `gorm:"not null"`
	Draws     int       `gorm:"not null"`
	Version   int64     `gorm:"not null"`
	CreatedAt time.Time `gorm:"autoCreateTime:false"`
	UpdatedAt time.Time `gorm:"autoUpdateTime:false"`
}

func (teamRow) TableName() string { return "teams" }

type matchRow struct {
	ID            string `gorm:"primaryKey"`
	Team1ID       string `gorm:"index;not null"`
	Team2ID       string `gorm:"index;not null"`
	WinnerID      *string
	DurationHours int       `gorm:"not null"`
	RatingChanges string    `gorm:"type:text;not null"`
	PlayedAt      time.Time `gorm:"index"`
}

func (matchRow) TableName() string { return "matches" }

func toPlayerRow(p *model.Player) *playerRow {
	row := &playerRow{
		ID:          string(p.ID),
		Nickname:    p.Nickname,
		Wins:        p.Wins,
		Losses:      p.Losses,
		Rating:      p.Rating,
		HoursPlayed: p.HoursPlayed,
		KFactor:     p.KFactor,
		Version:     p.Version,
		CreatedAt:   p.CreatedAt.UTC(),
		UpdatedAt:   p.UpdatedAt.UTC(),
	}
	if p.TeamID != nil {
		id := string(*p.TeamID)
		row.TeamID = &id
	}
	return row
}

// columns returns every mutable column for a versioned update
func (r *playerRow) columns() map[string]any {
	return map[string]any{
		"nickname":     r.Nickname,
		"wins":         r.Wins,
		"losses":       r.Losses,
		"rating":       r.Rating,
		"hours_played": r.HoursPlayed,
		"k_factor":     r.KFactor,
		"team_id":      r.TeamID,
		"version":      r.Version,
		"updated_at":   r.UpdatedAt,
	}
}

func (r *playerRow) toModel() *model.Player {
	p := &model.Player{
		ID:          model.PlayerID(r.ID),
		Nickname:    r.Nickname,
		Wins:        r.Wins,
		Losses:      r.Losses,
		Rating:      r.Rating,
		HoursPlayed: r.HoursPlayed,
		KFactor:     r.KFactor,
		Version:     r.Version,
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
	}
	if r.TeamID != nil {
		id := model.TeamID(*r.TeamID)
		p.TeamID = &id
	}
	return p
}

func toTeamRow(t *model.Team) (*teamRow, error) {
	members, err := json.Marshal(t.PlayerIDs)
	if err != nil {
		return nil, err
	}
	return &teamRow{
		ID:        string(t.ID),
		Name:      t.Name,
		PlayerIDs: string(members),
		Wins:      t.Wins,
		Losses:    t.Losses,
		Draws:     t.Draws,
		Version:   t.Version,
		CreatedAt: t.CreatedAt.UTC(),
		UpdatedAt: t.UpdatedAt.UTC(),
	}, nil
}

func (r *teamRow) columns() map[string]any {
	return map[string]any{
		"name":       r.Name,
		"player_ids": r.PlayerIDs,
		"wins":       r.Wins,
		"losses":     r.Losses,
		"draws":      r.Draws,
		"version":    r.Version,
		"updated_at": r.UpdatedAt,
	}
}

func (r *teamRow) toModel() (*model.Team, error) {
	var members []model.PlayerID
	if err := json.Unmarshal([]byte(r.PlayerIDs), &members); err != nil {
		return nil, err
	}
	return &model.Team{
		ID:        model.TeamID(r.ID),
		Name:      r.Name,
		PlayerIDs: members,
		Wins:      r.Wins,
		Losses:    r.Losses,
		Draws:     r.Draws,
		Version:   r.Version,
		CreatedAt: r.CreatedAt.UTC(),
		UpdatedAt: r.UpdatedAt.UTC(),
	}, nil
}

func toMatchRow(m *model.Match) (*matchRow, error) {
	changes, err := json.Marshal(m.RatingChanges)
	if err != nil {
		return nil, err
	}
	row := &matchRow{
		ID:            string(m.ID),
		Team1ID:       string(m.Team1ID),
		Team2ID:       string(m.Team2ID),
		DurationHours: m.DurationHours,
		RatingChanges: string(changes),
		PlayedAt:      m.PlayedAt.UTC(),
	}
	if m.WinnerID != nil {
		id := string(*m.WinnerID)
		row.WinnerID = &id
	}
	return row, nil
}

func (r *matchRow) toModel() (*model.Match, error) {
	var changes []model.RatingChange
	if err := json.Unmarshal([]byte(r.RatingChanges), &changes); err != nil {
		return nil, err
	}
	m := &model.Match{
		ID:            model.MatchID(r.ID),
		Team1ID:       model.TeamID(r.Team1ID),
		Team2ID:       model.TeamID(r.Team2ID),
		DurationHours: r.DurationHours,
		RatingChanges: changes,
		PlayedAt:      r.PlayedAt.UTC(),
	}
	if r.WinnerID != nil {
		id := model.TeamID(*r.WinnerID)
		m.WinnerID = &id
	}
	return m, nil
}
