package match

import (
	"context"
	"log/slog"

	"github.com/samber/lo"

	"github.com/mcoot/teamladder/internal/dependencies/clock"
	"github.com/mcoot/teamladder/internal/dependencies/idgen"
	"github.com/mcoot/teamladder/internal/model"
	"github.com/mcoot/teamladder/internal/services/rating"
	"github.com/mcoot/teamladder/internal/storage"
)

// Service records match results and serves the match history
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	ids     idgen.Generator
	logger  *slog.Logger
}

// New creates a new match Service
func New(storage storage.Storage, clock clock.Clock, ids idgen.Generator, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		clock:   clock,
		ids:     ids,
		logger:  logger,
	}
}

// RecordMatch validates req, rates every player on both teams against the
// other team's pre-match mean, updates both team records and stores the
// match. All writes go through a single Commit, so either everything is
// persisted or nothing is.
func (s *Service) RecordMatch(ctx context.Context, req Request) (*model.Match, error) {
	team1, team2, err := Validate(ctx, s.storage, req)
	if err != nil {
		return nil, err
	}

	players1, err := s.members(ctx, team1)
	if err != nil {
		return nil, err
	}
	players2, err := s.members(ctx, team2)
	if err != nil {
		return nil, err
	}

	mean1, err := rating.MeanRating(players1)
	if err != nil {
		return nil, err
	}
	mean2, err := rating.MeanRating(players2)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	match := &model.Match{
		ID:            model.MatchID(s.ids.NewID()),
		Team1ID:       team1.ID,
		Team2ID:       team2.ID,
		WinnerID:      req.WinnerID,
		DurationHours: req.DurationHours,
		RatingChanges: make([]model.RatingChange, 0, len(players1)+len(players2)),
		PlayedAt:      now,
	}

	for _, side := range []struct {
		team         *model.Team
		players      []*model.Player
		opponentMean float64
	}{
		{team: team1, players: players1, opponentMean: mean2},
		{team: team2, players: players2, opponentMean: mean1},
	} {
		outcome := match.OutcomeFor(side.team.ID)
		for _, p := range side.players {
			update := rating.Apply(p, side.team.ID, side.opponentMean, req.DurationHours, outcome)
			p.UpdatedAt = now
			match.RatingChanges = append(match.RatingChanges, update.Change)
		}
		recordResult(side.team, outcome)
		side.team.UpdatedAt = now
	}

	batch := &storage.Batch{
		Players: append(players1, players2...),
		Teams:   []*model.Team{team1, team2},
		Match:   match,
	}
	if err := s.storage.Commit(ctx, batch); err != nil {
		s.logger.Error("failed to record match",
			slog.String("match_id", string(match.ID)),
			slog.String("team1_id", string(team1.ID)),
			slog.String("team2_id", string(team2.ID)),
			slog.String("error", err.Error()),
		)
		return nil, model.WrapStoreError("record match", err)
	}

	s.logger.Info("match recorded",
		slog.String("match_id", string(match.ID)),
		slog.String("team1_id", string(team1.ID)),
		slog.String("team2_id", string(team2.ID)),
		slog.String("result", resultLabel(match)),
		slog.Int("duration_hours", match.DurationHours),
		slog.Float64("team1_mean", mean1),
		slog.Float64("team2_mean", mean2),
	)

	return match, nil
}

// GetMatch retrieves a recorded match
func (s *Service) GetMatch(ctx context.Context, id model.MatchID) (*model.Match, error) {
	match, err := s.storage.GetMatch(ctx, id)
	if err != nil {
		return nil, model.WrapLookupError("get match", err, model.ErrMatchNotFound)
	}
	return match, nil
}

// ListMatches returns every recorded match, optionally only those involving team
func (s *Service) ListMatches(ctx context.Context, team *model.TeamID) ([]*model.Match, error) {
	matches, err := s.storage.ListMatches(ctx)
	if err != nil {
		return nil, model.WrapStoreError("list matches", err)
	}
	if team == nil {
		return matches, nil
	}
	return lo.Filter(matches, func(m *model.Match, _ int) bool {
		return m.Team1ID == *team || m.Team2ID == *team
	}), nil
}

// members loads the current player records of a team's roster
func (s *Service) members(ctx context.Context, team *model.Team) ([]*model.Player, error) {
	players := make([]*model.Player, 0, team.Size())
	for _, id := range team.PlayerIDs {
		p, err := s.storage.GetPlayer(ctx, id)
		if err != nil {
			return nil, model.WrapStoreError("get player", err)
		}
		players = append(players, p)
	}
	return players, nil
}

func recordResult(team *model.Team, outcome model.Outcome) {
	switch outcome {
	case model.OutcomeWin:
		team.Wins++
	case model.OutcomeLoss:
		team.Losses++
	default:
		team.Draws++
	}
}

func resultLabel(m *model.Match) string {
	if m.IsDraw() {
		return "draw"
	}
	return "winner:" + string(*m.WinnerID)
}
