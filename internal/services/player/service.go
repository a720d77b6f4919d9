package player

import (
	"cmp"
	"context"
	"log/slog"
	"slices"
	"strings"

	"github.com/samber/lo"

	"github.com/mcoot/teamladder/internal/dependencies/clock"
	"github.com/mcoot/teamladder/internal/dependencies/idgen"
	"github.com/mcoot/teamladder/internal/model"
	"github.com/mcoot/teamladder/internal/services/rating"
	"github.com/mcoot/teamladder/internal/storage"
)

// Config holds configuration for the player service
type Config struct {
	// BaselineRating is the rating every new player starts at
	BaselineRating float64
}

// DefaultConfig returns default player configuration
func DefaultConfig() Config {
	return Config{
		BaselineRating: 0,
	}
}

// Service registers players and serves player and leaderboard reads
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	ids     idgen.Generator
	logger  *slog.Logger

	baselineRating float64
}

// New creates a new player Service
func New(storage storage.Storage, clock clock.Clock, ids idgen.Generator, logger *slog.Logger, cfg Config) *Service {
	return &Service{
		storage:        storage,
		clock:          clock,
		ids:            ids,
		logger:         logger,
		baselineRating: cfg.BaselineRating,
	}
}

// CreatePlayer registers a new, unassigned player at the baseline rating.
// Nicknames are unique and compared case-sensitively.
func (s *Service) CreatePlayer(ctx context.Context, nickname string) (*model.Player, error) {
	nickname = strings.TrimSpace(nickname)
	if nickname == "" {
		return nil, model.ErrNicknameRequired
	}

	players, err := s.storage.ListPlayers(ctx)
	if err != nil {
		return nil, model.WrapStoreError("list players", err)
	}
	if lo.ContainsBy(players, func(p *model.Player) bool { return p.Nickname == nickname }) {
		return nil, model.ErrNicknameTaken
	}

	now := s.clock.Now()
	player := &model.Player{
		ID:        model.PlayerID(s.ids.NewID()),
		Nickname:  nickname,
		Rating:    s.baselineRating,
		KFactor:   rating.KFactor(0),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.storage.Commit(ctx, &storage.Batch{Players: []*model.Player{player}}); err != nil {
		return nil, model.WrapStoreError("create player", err)
	}

	s.logger.Info("player created",
		slog.String("player_id", string(player.ID)),
		slog.String("nickname", player.Nickname),
	)

	return player, nil
}

// GetPlayer retrieves a player by id
func (s *Service) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	player, err := s.storage.GetPlayer(ctx, id)
	if err != nil {
		return nil, model.WrapLookupError("get player", err, model.ErrPlayerNotFound)
	}
	return player, nil
}

// ListPlayers returns every player ordered by id
func (s *Service) ListPlayers(ctx context.Context) ([]*model.Player, error) {
	players, err := s.storage.ListPlayers(ctx)
	if err != nil {
		return nil, model.WrapStoreError("list players", err)
	}
	return players, nil
}

// Leaderboard returns players by rating, highest first, ties broken by id.
// A limit of zero or less returns everyone.
func (s *Service) Leaderboard(ctx context.Context, limit int) ([]*model.Player, error) {
	players, err := s.ListPlayers(ctx)
	if err != nil {
		return nil, err
	}

	slices.SortFunc(players, func(a, b *model.Player) int {
		if c := cmp.Compare(b.Rating, a.Rating); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	if limit > 0 && len(players) > limit {
		players = players[:limit]
	}
	return players, nil
}
