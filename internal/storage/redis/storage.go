package redis

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/samber/lo"

	"github.com/mcoot/teamladder/internal/model"
	"github.com/mcoot/teamladder/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface.
// Each record is a JSON envelope under its own key, with one SET index per
// entity type. Commit uses WATCH/MULTI for optimistic locking.
type Storage struct {
	client *redis.Client
	keys   keys
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return NewWithClient(client, cfg), nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = DefaultConfig().KeyPrefix
	}
	return &Storage{
		client: client,
		keys:   keys{prefix: prefix},
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Player operations

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	player.Version = max(player.Version, 1)
	data, err := encode(player)
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.keys.player(player.ID), data, 0)
	pipe.SAdd(ctx, s.keys.playerIndex(), string(player.ID))
	pipe.Set(ctx, s.keys.nickname(player.Nickname), string(player.ID), 0)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	return getRecord[model.Player](ctx, s.client, s.keys.player(id), model.ErrPlayerNotFound)
}

func (s *Storage) ListPlayers(ctx context.Context) ([]*model.Player, error) {
	return listRecords[model.Player](ctx, s.client, s.keys.playerIndex(), func(id string) string {
		return s.keys.player(model.PlayerID(id))
	})
}

// Team operations

func (s *Storage) SaveTeam(ctx context.Context, team *model.Team) error {
	team.Version = max(team.Version, 1)
	data, err := encode(team)
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.keys.team(team.ID), data, 0)
	pipe.SAdd(ctx, s.keys.teamIndex(), string(team.ID))
	pipe.Set(ctx, s.keys.teamName(team.Name), string(team.ID), 0)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetTeam(ctx context.Context, id model.TeamID) (*model.Team, error) {
	return getRecord[model.Team](ctx, s.client, s.keys.team(id), model.ErrTeamNotFound)
}

func (s *Storage) ListTeams(ctx context.Context) ([]*model.Team, error) {
	return listRecords[model.Team](ctx, s.client, s.keys.teamIndex(), func(id string) string {
		return s.keys.team(model.TeamID(id))
	})
}

// Match operations

func (s *Storage) SaveMatch(ctx context.Context, match *model.Match) error {
	data, err := encode(match)
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.keys.match(match.ID), data, 0)
	pipe.SAdd(ctx, s.keys.matchIndex(), string(match.ID))
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetMatch(ctx context.Context, id model.MatchID) (*model.Match, error) {
	return getRecord[model.Match](ctx, s.client, s.keys.match(id), model.ErrMatchNotFound)
}

func (s *Storage) ListMatches(ctx context.Context) ([]*model.Match, error) {
	return listRecords[model.Match](ctx, s.client, s.keys.matchIndex(), func(id string) string {
		return s.keys.match(model.MatchID(id))
	})
}

// Commit watches every key in the batch, checks the stored versions and
// unique names, then writes all records and name claims in a single
// MULTI/EXEC. A concurrent write to any watched key aborts the transaction
// with model.ErrConflict.
func (s *Storage) Commit(ctx context.Context, batch *storage.Batch) error {
	if batch.Empty() {
		return nil
	}

	var watched []string
	for _, p := range batch.Players {
		watched = append(watched, s.keys.player(p.ID))
	}
	for _, t := range batch.Teams {
		watched = append(watched, s.keys.team(t.ID))
	}
	if batch.Match != nil {
		watched = append(watched, s.keys.match(batch.Match.ID))
	}

	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		prior, err := s.checkVersions(ctx, tx, batch)
		if err != nil {
			return err
		}

		releasedNicknames, err := s.nicknames().check(ctx, tx, lo.Map(batch.Players, func(p *model.Player, _ int) nameClaim {
			return nameClaim{id: string(p.ID), name: p.Nickname, oldName: prior.nicknames[p.ID]}
		}))
		if err != nil {
			return err
		}
		releasedTeamNames, err := s.teamNames().check(ctx, tx, lo.Map(batch.Teams, func(t *model.Team, _ int) nameClaim {
			return nameClaim{id: string(t.ID), name: t.Name, oldName: prior.teamNames[t.ID]}
		}))
		if err != nil {
			return err
		}

		writes, err := s.encodeBatch(batch)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if released := slices.Concat(releasedNicknames, releasedTeamNames); len(released) > 0 {
				pipe.Del(ctx, released...)
			}
			for _, w := range writes {
				pipe.Set(ctx, w.key, w.data, 0)
				pipe.SAdd(ctx, w.index, w.id)
				if w.nameKey != "" {
					pipe.Set(ctx, w.nameKey, w.id, 0)
				}
			}
			return nil
		})
		return err
	}, watched...)
	if errors.Is(err, redis.TxFailedErr) {
		return model.ErrConflict
	}
	if err != nil {
		return err
	}

	for _, p := range batch.Players {
		p.Version++
	}
	for _, t := range batch.Teams {
		t.Version++
	}
	return nil
}

// storedNames holds the names that records in a batch are currently stored under
type storedNames struct {
	nicknames map[model.PlayerID]string
	teamNames map[model.TeamID]string
}

// checkVersions compares each stored version with the batch and returns the
// stored names of records that already exist
func (s *Storage) checkVersions(ctx context.Context, tx *redis.Tx, batch *storage.Batch) (*storedNames, error) {
	prior := &storedNames{
		nicknames: make(map[model.PlayerID]string, len(batch.Players)),
		teamNames: make(map[model.TeamID]string, len(batch.Teams)),
	}
	for _, p := range batch.Players {
		stored, err := getRecord[model.Player](ctx, tx, s.keys.player(p.ID), model.ErrPlayerNotFound)
		if err := versionMatches(stored, err, p.Version, func(p *model.Player) int64 { return p.Version }); err != nil {
			return nil, err
		}
		if stored != nil {
			prior.nicknames[p.ID] = stored.Nickname
		}
	}
	for _, t := range batch.Teams {
		stored, err := getRecord[model.Team](ctx, tx, s.keys.team(t.ID), model.ErrTeamNotFound)
		if err := versionMatches(stored, err, t.Version, func(t *model.Team) int64 { return t.Version }); err != nil {
			return nil, err
		}
		if stored != nil {
			prior.teamNames[t.ID] = stored.Name
		}
	}
	if batch.Match != nil {
		exists, err := tx.Exists(ctx, s.keys.match(batch.Match.ID)).Result()
		if err != nil {
			return nil, err
		}
		if exists > 0 {
			return nil, model.ErrConflict
		}
	}
	return prior, nil
}

// versionMatches compares a stored record's version with the expected one.
// Version 0 means the record must not exist yet.
func versionMatches[T any](stored *T, getErr error, expected int64, version func(*T) int64) error {
	switch {
	case getErr == nil:
		if expected == 0 || version(stored) != expected {
			return model.ErrConflict
		}
		return nil
	case errors.Is(getErr, model.ErrPlayerNotFound), errors.Is(getErr, model.ErrTeamNotFound):
		if expected != 0 {
			return model.ErrConflict
		}
		return nil
	default:
		return getErr
	}
}

type write struct {
	key     string
	index   string
	id      string
	data    []byte
	nameKey string
}

// encodeBatch serialises the batch with versions already bumped, leaving the
// caller's records untouched until the transaction succeeds
func (s *Storage) encodeBatch(batch *storage.Batch) ([]write, error) {
	writes := make([]write, 0, len(batch.Players)+len(batch.Teams)+1)
	for _, p := range batch.Players {
		next := p.Clone()
		next.Version++
		data, err := encode(next)
		if err != nil {
			return nil, err
		}
		writes = append(writes, write{
			key:     s.keys.player(p.ID),
			index:   s.keys.playerIndex(),
			id:      string(p.ID),
			data:    data,
			nameKey: s.keys.nickname(p.Nickname),
		})
	}
	for _, t := range batch.Teams {
		next := t.Clone()
		next.Version++
		data, err := encode(next)
		if err != nil {
			return nil, err
		}
		writes = append(writes, write{
			key:     s.keys.team(t.ID),
			index:   s.keys.teamIndex(),
			id:      string(t.ID),
			data:    data,
			nameKey: s.keys.teamName(t.Name),
		})
	}
	if batch.Match != nil {
		data, err := encode(batch.Match)
		if err != nil {
			return nil, err
		}
		writes = append(writes, write{key: s.keys.match(batch.Match.ID), index: s.keys.matchIndex(), id: string(batch.Match.ID), data: data})
	}
	return writes, nil
}

func getRecord[T any](ctx context.Context, c redis.Cmdable, key string, notFound error) (*T, error) {
	data, err := c.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, notFound
		}
		return nil, err
	}

	var record T
	if err := decode(data, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func listRecords[T any](ctx context.Context, c redis.Cmdable, indexKey string, recordKey func(string) string) ([]*T, error) {
	ids, err := c.SMembers(ctx, indexKey).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []*T{}, nil
	}
	slices.Sort(ids)

	recordKeys := make([]string, len(ids))
	for i, id := range ids {
		recordKeys[i] = recordKey(id)
	}

	values, err := c.MGet(ctx, recordKeys...).Result()
	if err != nil {
		return nil, err
	}

	records := make([]*T, 0, len(values))
	for _, val := range values {
		str, ok := val.(string)
		if !ok {
			continue // index entry without a record
		}
		var record T
		if err := decode([]byte(str), &record); err != nil {
			return nil, err
		}
		records = append(records, &record)
	}
	return records, nil
}
