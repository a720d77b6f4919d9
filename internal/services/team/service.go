package team

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"github.com/samber/lo"

	"github.com/mcoot/teamladder/internal/dependencies/clock"
	"github.com/mcoot/teamladder/internal/dependencies/idgen"
	"github.com/mcoot/teamladder/internal/model"
	"github.com/mcoot/teamladder/internal/storage"
)

// Config holds configuration for the team service
type Config struct {
	// TeamSize is the number of players on a full team
	TeamSize int
}

// DefaultConfig returns default team configuration
func DefaultConfig() Config {
	return Config{
		TeamSize: model.DefaultTeamSize,
	}
}

// Service manages team rosters. Every change that touches a team and its
// players is written in a single Commit so a player's TeamID and the team's
// member list never disagree.
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	ids     idgen.Generator
	logger  *slog.Logger

	teamSize int
}

// New creates a new team Service
func New(storage storage.Storage, clock clock.Clock, ids idgen.Generator, logger *slog.Logger, cfg Config) *Service {
	if cfg.TeamSize <= 0 {
		cfg.TeamSize = DefaultConfig().TeamSize
	}
	return &Service{
		storage:  storage,
		clock:    clock,
		ids:      ids,
		logger:   logger,
		teamSize: cfg.TeamSize,
	}
}

// TeamSize returns the configured roster size
func (s *Service) TeamSize() int {
	return s.teamSize
}

// CreateTeam creates a team from exactly TeamSize distinct, unassigned players
func (s *Service) CreateTeam(ctx context.Context, name string, playerIDs []model.PlayerID) (*model.Team, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, model.ErrTeamNameRequired
	}
	if len(playerIDs) != s.teamSize || len(lo.Uniq(playerIDs)) != len(playerIDs) {
		return nil, model.ErrInvalidPlayerCount
	}
	if err := s.checkNameFree(ctx, name, ""); err != nil {
		return nil, err
	}

	players := make([]*model.Player, 0, len(playerIDs))
	for _, id := range playerIDs {
		p, err := s.storage.GetPlayer(ctx, id)
		if err != nil {
			return nil, model.WrapLookupError("get player", err, model.ErrPlayerNotFound)
		}
		if p.IsAssigned() {
			return nil, model.ErrPlayerAlreadyInTeam
		}
		players = append(players, p)
	}

	now := s.clock.Now()
	team := &model.Team{
		ID:        model.TeamID(s.ids.NewID()),
		Name:      name,
		PlayerIDs: slices.Clone(playerIDs),
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, p := range players {
		id := team.ID
		p.TeamID = &id
		p.UpdatedAt = now
	}

	if err := s.storage.Commit(ctx, &storage.Batch{Players: players, Teams: []*model.Team{team}}); err != nil {
		return nil, model.WrapStoreError("create team", err)
	}

	s.logger.Info("team created",
		slog.String("team_id", string(team.ID)),
		slog.String("name", team.Name),
		slog.Int("size", team.Size()),
	)

	return team, nil
}

// GetTeam retrieves a team by id
func (s *Service) GetTeam(ctx context.Context, id model.TeamID) (*model.Team, error) {
	team, err := s.storage.GetTeam(ctx, id)
	if err != nil {
		return nil, model.WrapLookupError("get team", err, model.ErrTeamNotFound)
	}
	return team, nil
}

// ListTeams returns every team ordered by id
func (s *Service) ListTeams(ctx context.Context) ([]*model.Team, error) {
	teams, err := s.storage.ListTeams(ctx)
	if err != nil {
		return nil, model.WrapStoreError("list teams", err)
	}
	return teams, nil
}

// Members returns the player records of an already loaded team's roster
func (s *Service) Members(ctx context.Context, team *model.Team) ([]*model.Player, error) {
	players := make([]*model.Player, 0, team.Size())
	for _, pid := range team.PlayerIDs {
		p, err := s.storage.GetPlayer(ctx, pid)
		if err != nil {
			return nil, model.WrapStoreError("get player", err)
		}
		players = append(players, p)
	}
	return players, nil
}

// RenameTeam gives a team a new unique name
func (s *Service) RenameTeam(ctx context.Context, id model.TeamID, name string) (*model.Team, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, model.ErrTeamNameRequired
	}

	team, err := s.GetTeam(ctx, id)
	if err != nil {
		return nil, err
	}
	if team.Name == name {
		return team, nil
	}
	if err := s.checkNameFree(ctx, name, id); err != nil {
		return nil, err
	}

	oldName := team.Name
	team.Name = name
	team.UpdatedAt = s.clock.Now()

	if err := s.storage.Commit(ctx, &storage.Batch{Teams: []*model.Team{team}}); err != nil {
		return nil, model.WrapStoreError("rename team", err)
	}

	s.logger.Info("team renamed",
		slog.String("team_id", string(team.ID)),
		slog.String("old_name", oldName),
		slog.String("name", team.Name),
	)

	return team, nil
}

// JoinTeam adds an unassigned player to a team that is not yet full
func (s *Service) JoinTeam(ctx context.Context, teamID model.TeamID, playerID model.PlayerID) (*model.Team, error) {
	team, err := s.GetTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}
	player, err := s.storage.GetPlayer(ctx, playerID)
	if err != nil {
		return nil, model.WrapLookupError("get player", err, model.ErrPlayerNotFound)
	}

	if player.IsAssigned() {
		return nil, model.ErrPlayerAlreadyInTeam
	}
	if team.Size() >= s.teamSize {
		return nil, model.ErrTeamFull
	}

	now := s.clock.Now()
	team.PlayerIDs = append(team.PlayerIDs, player.ID)
	team.UpdatedAt = now
	id := team.ID
	player.TeamID = &id
	player.UpdatedAt = now

	batch := &storage.Batch{Players: []*model.Player{player}, Teams: []*model.Team{team}}
	if err := s.storage.Commit(ctx, batch); err != nil {
		return nil, model.WrapStoreError("join team", err)
	}

	s.logger.Info("player joined team",
		slog.String("team_id", string(team.ID)),
		slog.String("player_id", string(player.ID)),
	)

	return team, nil
}

// LeaveTeam removes a player from a team, leaving them unassigned
func (s *Service) LeaveTeam(ctx context.Context, teamID model.TeamID, playerID model.PlayerID) (*model.Team, error) {
	team, err := s.GetTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}
	if !team.RemoveMember(playerID) {
		return nil, model.ErrPlayerNotInTeam
	}

	player, err := s.storage.GetPlayer(ctx, playerID)
	if err != nil {
		return nil, model.WrapLookupError("get player", err, model.ErrPlayerNotFound)
	}

	now := s.clock.Now()
	team.UpdatedAt = now
	player.TeamID = nil
	player.UpdatedAt = now

	batch := &storage.Batch{Players: []*model.Player{player}, Teams: []*model.Team{team}}
	if err := s.storage.Commit(ctx, batch); err != nil {
		return nil, model.WrapStoreError("leave team", err)
	}

	s.logger.Info("player left team",
		slog.String("team_id", string(team.ID)),
		slog.String("player_id", string(player.ID)),
	)

	return team, nil
}

// checkNameFree returns ErrTeamNameTaken if any team other than self uses name
func (s *Service) checkNameFree(ctx context.Context, name string, self model.TeamID) error {
	teams, err := s.storage.ListTeams(ctx)
	if err != nil {
		return model.WrapStoreError("list teams", err)
	}
	if lo.ContainsBy(teams, func(t *model.Team) bool { return t.Name == name && t.ID != self }) {
		return model.ErrTeamNameTaken
	}
	return nil
}
