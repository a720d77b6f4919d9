package memory

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/samber/lo"

	"github.com/mcoot/teamladder/internal/model"
	"github.com/mcoot/teamladder/internal/storage"
)

// Storage is an in-memory implementation of the storage interface.
// Records are copied on the way in and out so callers never share state.
type Storage struct {
	mu sync.RWMutex

	players map[model.PlayerID]*model.Player
	teams   map[model.TeamID]*model.Team
	matches map[model.MatchID]*model.Match
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		players: make(map[model.PlayerID]*model.Player),
		teams:   make(map[model.TeamID]*model.Team),
		matches: make(map[model.MatchID]*model.Match),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Close is a no-op
func (s *Storage) Close() error {
	return nil
}

// Player operations

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	player.Version = max(player.Version, 1)
	s.players[player.ID] = player.Clone()
	return nil
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	player, ok := s.players[id]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	return player.Clone(), nil
}

func (s *Storage) ListPlayers(ctx context.Context) ([]*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := slices.Sorted(maps.Keys(s.players))
	players := make([]*model.Player, 0, len(ids))
	for _, id := range ids {
		players = append(players, s.players[id].Clone())
	}
	return players, nil
}

// Team operations

func (s *Storage) SaveTeam(ctx context.Context, team *model.Team) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	team.Version = max(team.Version, 1)
	s.teams[team.ID] = team.Clone()
	return nil
}

func (s *Storage) GetTeam(ctx context.Context, id model.TeamID) (*model.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	team, ok := s.teams[id]
	if !ok {
		return nil, model.ErrTeamNotFound
	}
	return team.Clone(), nil
}

func (s *Storage) ListTeams(ctx context.Context) ([]*model.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := slices.Sorted(maps.Keys(s.teams))
	teams := make([]*model.Team, 0, len(ids))
	for _, id := range ids {
		teams = append(teams, s.teams[id].Clone())
	}
	return teams, nil
}

// Match operations

func (s *Storage) SaveMatch(ctx context.Context, match *model.Match) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.matches[match.ID] = match.Clone()
	return nil
}

func (s *Storage) GetMatch(ctx context.Context, id model.MatchID) (*model.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	match, ok := s.matches[id]
	if !ok {
		return nil, model.ErrMatchNotFound
	}
	return match.Clone(), nil
}

func (s *Storage) ListMatches(ctx context.Context) ([]*model.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := slices.Sorted(maps.Keys(s.matches))
	matches := make([]*model.Match, 0, len(ids))
	for _, id := range ids {
		matches = append(matches, s.matches[id].Clone())
	}
	return matches, nil
}

// Commit checks every version and unique name under the write lock, then
// applies the whole batch
func (s *Storage) Commit(ctx context.Context, batch *storage.Batch) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range batch.Players {
		if !versionMatches(s.playerVersion(p.ID), p.Version) {
			return model.ErrConflict
		}
	}
	for _, t := range batch.Teams {
		if !versionMatches(s.teamVersion(t.ID), t.Version) {
			return model.ErrConflict
		}
	}
	if batch.Match != nil {
		if _, exists := s.matches[batch.Match.ID]; exists {
			return model.ErrConflict
		}
	}

	if err := s.checkNicknames(batch.Players); err != nil {
		return err
	}
	if err := s.checkTeamNames(batch.Teams); err != nil {
		return err
	}

	for _, p := range batch.Players {
		p.Version++
		s.players[p.ID] = p.Clone()
	}
	for _, t := range batch.Teams {
		t.Version++
		s.teams[t.ID] = t.Clone()
	}
	if batch.Match != nil {
		s.matches[batch.Match.ID] = batch.Match.Clone()
	}
	return nil
}

// versionMatches reports whether a record read at expected may be written.
// Version 0 means the record must not exist yet.
func versionMatches(stored *int64, expected int64) bool {
	if stored == nil {
		return expected == 0
	}
	return expected != 0 && *stored == expected
}

func (s *Storage) playerVersion(id model.PlayerID) *int64 {
	if p, ok := s.players[id]; ok {
		return &p.Version
	}
	return nil
}

func (s *Storage) teamVersion(id model.TeamID) *int64 {
	if t, ok := s.teams[id]; ok {
		return &t.Version
	}
	return nil
}

func (s *Storage) checkNicknames(players []*model.Player) error {
	if len(players) == 0 {
		return nil
	}
	owners := make(map[string]model.PlayerID, len(s.players))
	for id, p := range s.players {
		owners[p.Nickname] = id
	}
	claims := lo.Map(players, func(p *model.Player, _ int) nameClaim[model.PlayerID] {
		return nameClaim[model.PlayerID]{id: p.ID, name: p.Nickname}
	})
	return checkNames(owners, claims, model.ErrNicknameTaken)
}

func (s *Storage) checkTeamNames(teams []*model.Team) error {
	if len(teams) == 0 {
		return nil
	}
	owners := make(map[string]model.TeamID, len(s.teams))
	for id, t := range s.teams {
		owners[t.Name] = id
	}
	claims := lo.Map(teams, func(t *model.Team, _ int) nameClaim[model.TeamID] {
		return nameClaim[model.TeamID]{id: t.ID, name: t.Name}
	})
	return checkNames(owners, claims, model.ErrTeamNameTaken)
}

type nameClaim[ID comparable] struct {
	id   ID
	name string
}

// checkNames returns taken if a claimed name belongs to a record outside the
// batch, or if two records in the batch claim the same name. A name held by a
// record in the batch is free to take when that record moves off it.
func checkNames[ID comparable](owners map[string]ID, claims []nameClaim[ID], taken error) error {
	inBatch := lo.Associate(claims, func(c nameClaim[ID]) (ID, struct{}) {
		return c.id, struct{}{}
	})
	claimed := make(map[string]ID, len(claims))
	for _, c := range claims {
		if other, ok := claimed[c.name]; ok && other != c.id {
			return taken
		}
		claimed[c.name] = c.id

		owner, ok := owners[c.name]
		if !ok || owner == c.id {
			continue
		}
		if _, moving := inBatch[owner]; !moving {
			return taken
		}
	}
	return nil
}
