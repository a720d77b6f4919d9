package storage

import (
	"context"

	"github.com/mcoot/teamladder/internal/model"
)

// PlayerStore persists players
type PlayerStore interface {
	GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error)
	SavePlayer(ctx context.Context, player *model.Player) error
	ListPlayers(ctx context.Context) ([]*model.Player, error)
}

// TeamStore persists teams
type TeamStore interface {
	GetTeam(ctx context.Context, id model.TeamID) (*model.Team, error)
	SaveTeam(ctx context.Context, team *model.Team) error
	ListTeams(ctx context.Context) ([]*model.Team, error)
}

// MatchStore persists recorded matches
type MatchStore interface {
	GetMatch(ctx context.Context, id model.MatchID) (*model.Match, error)
	SaveMatch(ctx context.Context, match *model.Match) error
	ListMatches(ctx context.Context) ([]*model.Match, error)
}

// Batch is a set of records that must be written together or not at all
type Batch struct {
	Players []*model.Player
	Teams   []*model.Team
	Match   *model.Match
}

// Empty reports whether the batch has nothing to write
func (b *Batch) Empty() bool {
	return len(b.Players) == 0 && len(b.Teams) == 0 && b.Match == nil
}

// Storage defines the interface for data persistence.
//
// Get methods return the model's not-found error for missing records and
// List methods return records ordered by id. Save methods upsert without
// any version check.
//
// Commit writes a Batch atomically. Every player and team in the batch must
// carry the Version it was read at (0 for a record that must not exist yet),
// otherwise nothing is written and model.ErrConflict is returned. The match,
// if any, must not already exist. On success each record's Version is
// incremented in place.
type Storage interface {
	PlayerStore
	TeamStore
	MatchStore

	Commit(ctx context.Context, batch *Batch) error
	Close() error
}
