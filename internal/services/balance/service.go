package balance

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/samber/lo"

	"github.com/mcoot/teamladder/internal/dependencies/clock"
	"github.com/mcoot/teamladder/internal/dependencies/idgen"
	"github.com/mcoot/teamladder/internal/dependencies/random"
	"github.com/mcoot/teamladder/internal/model"
	"github.com/mcoot/teamladder/internal/services/rating"
	"github.com/mcoot/teamladder/internal/storage"
)

const (
	// PlaceholderNameLength is the length of the random suffix in generated team names
	PlaceholderNameLength = 6
	// PlaceholderNameAlphabet is the characters used in generated team names (avoid confusing chars)
	PlaceholderNameAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

// Service builds balanced teams out of the unassigned player pool
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	random  random.Random
	ids     idgen.Generator
	logger  *slog.Logger
}

// New creates a new balance Service
func New(
	storage storage.Storage,
	clock clock.Clock,
	random random.Random,
	ids idgen.Generator,
	logger *slog.Logger,
) *Service {
	return &Service{
		storage: storage,
		clock:   clock,
		random:  random,
		ids:     ids,
		logger:  logger,
	}
}

// GenerateTeams drafts two teams of teamSize from the unassigned players and
// stores them, together with every drafted player's new team reference, in
// one Commit. The teams get placeholder names meant to be renamed later.
func (s *Service) GenerateTeams(ctx context.Context, teamSize int) (*model.Team, *model.Team, error) {
	if teamSize <= 0 {
		return nil, nil, model.ErrInvalidTeamSize
	}

	players, err := s.storage.ListPlayers(ctx)
	if err != nil {
		return nil, nil, model.WrapStoreError("list players", err)
	}
	pool := lo.Filter(players, func(p *model.Player, _ int) bool {
		return !p.IsAssigned()
	})

	rosterA, rosterB, err := Draft(pool, teamSize)
	if err != nil {
		return nil, nil, err
	}

	existing, err := s.storage.ListTeams(ctx)
	if err != nil {
		return nil, nil, model.WrapStoreError("list teams", err)
	}
	taken := lo.Associate(existing, func(t *model.Team) (string, struct{}) {
		return t.Name, struct{}{}
	})

	now := s.clock.Now()
	teamA := s.newTeam(rosterA, taken, now)
	teamB := s.newTeam(rosterB, taken, now)

	batch := &storage.Batch{
		Players: slices.Concat(rosterA, rosterB),
		Teams:   []*model.Team{teamA, teamB},
	}
	if err := s.storage.Commit(ctx, batch); err != nil {
		s.logger.Error("failed to save generated teams",
			slog.Int("team_size", teamSize),
			slog.String("error", err.Error()),
		)
		return nil, nil, model.WrapStoreError("generate teams", err)
	}

	meanA, _ := rating.MeanRating(rosterA)
	meanB, _ := rating.MeanRating(rosterB)
	s.logger.Info("teams generated",
		slog.String("team_a_id", string(teamA.ID)),
		slog.String("team_b_id", string(teamB.ID)),
		slog.Int("team_size", teamSize),
		slog.Int("pool_size", len(pool)),
		slog.Float64("team_a_mean", meanA),
		slog.Float64("team_b_mean", meanB),
	)

	return teamA, teamB, nil
}

// newTeam creates a team for roster and points every member at it
func (s *Service) newTeam(roster []*model.Player, taken map[string]struct{}, now time.Time) *model.Team {
	team := &model.Team{
		ID:   model.TeamID(s.ids.NewID()),
		Name: s.placeholderName(taken),
		PlayerIDs: lo.Map(roster, func(p *model.Player, _ int) model.PlayerID {
			return p.ID
		}),
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, p := range roster {
		id := team.ID
		p.TeamID = &id
		p.UpdatedAt = now
	}
	return team
}

// placeholderName generates a team name not yet in taken and reserves it
func (s *Service) placeholderName(taken map[string]struct{}) string {
	for {
		name := "Team " + s.random.String(PlaceholderNameLength, PlaceholderNameAlphabet)
		if _, exists := taken[name]; !exists {
			taken[name] = struct{}{}
			return name
		}
	}
}
