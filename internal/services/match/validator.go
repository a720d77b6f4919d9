package match

import (
	"context"
	"errors"

	"github.com/mcoot/teamladder/internal/model"
	"github.com/mcoot/teamladder/internal/storage"
)

// Request is a proposed match result. A nil WinnerID records a draw.
type Request struct {
	Team1ID       model.TeamID
	Team2ID       model.TeamID
	WinnerID      *model.TeamID
	DurationHours int
}

// Validate checks the fields of the request that need no lookups
func (r Request) Validate() error {
	if r.DurationHours < 1 {
		return model.ErrInvalidDuration
	}
	if r.Team1ID == r.Team2ID {
		return model.ErrSameTeam
	}
	if r.WinnerID != nil && *r.WinnerID != r.Team1ID && *r.WinnerID != r.Team2ID {
		return model.ErrInvalidWinner
	}
	return nil
}

// ValidateRosters checks that both teams field the same, non-zero number of players
func ValidateRosters(team1, team2 *model.Team) error {
	if team1.Size() != team2.Size() || team1.Size() == 0 {
		return &model.TeamSizeMismatchError{Team1Size: team1.Size(), Team2Size: team2.Size()}
	}
	return nil
}

// Validate runs every precondition for recording req, in order, and returns
// the two team snapshots it fetched. Nothing is written.
func Validate(ctx context.Context, teams storage.TeamStore, req Request) (*model.Team, *model.Team, error) {
	if err := req.Validate(); err != nil {
		return nil, nil, err
	}

	team1, err := fetchTeam(ctx, teams, req.Team1ID, model.Team1)
	if err != nil {
		return nil, nil, err
	}
	team2, err := fetchTeam(ctx, teams, req.Team2ID, model.Team2)
	if err != nil {
		return nil, nil, err
	}

	if err := ValidateRosters(team1, team2); err != nil {
		return nil, nil, err
	}
	return team1, team2, nil
}

func fetchTeam(ctx context.Context, teams storage.TeamStore, id model.TeamID, which model.TeamSide) (*model.Team, error) {
	team, err := teams.GetTeam(ctx, id)
	if errors.Is(err, model.ErrTeamNotFound) {
		return nil, &model.TeamNotFoundError{Which: which, TeamID: id}
	}
	if err != nil {
		return nil, model.WrapStoreError("get team", err)
	}
	return team, nil
}
