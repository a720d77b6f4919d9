package redis

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
	"github.com/samber/lo"

	"github.com/mcoot/teamladder/internal/model"
)

// nameClaim is a record in a batch taking name. oldName is the name it is
// stored under, empty for a new record.
type nameClaim struct {
	id      string
	name    string
	oldName string
}

// nameIndex is a set of keys mapping unique names to record ids. An entry
// whose record no longer carries the name is stale and does not count.
type nameIndex struct {
	key        func(name string) string
	recordName func(ctx context.Context, tx *redis.Tx, id string) (string, error)
	taken      error
}

func (s *Storage) nicknames() nameIndex {
	return nameIndex{
		key: s.keys.nickname,
		recordName: func(ctx context.Context, tx *redis.Tx, id string) (string, error) {
			key := s.keys.player(model.PlayerID(id))
			if err := tx.Watch(ctx, key).Err(); err != nil {
				return "", err
			}
			p, err := getRecord[model.Player](ctx, tx, key, model.ErrPlayerNotFound)
			if errors.Is(err, model.ErrPlayerNotFound) {
				return "", nil
			}
			if err != nil {
				return "", err
			}
			return p.Nickname, nil
		},
		taken: model.ErrNicknameTaken,
	}
}

func (s *Storage) teamNames() nameIndex {
	return nameIndex{
		key: s.keys.teamName,
		recordName: func(ctx context.Context, tx *redis.Tx, id string) (string, error) {
			key := s.keys.team(model.TeamID(id))
			if err := tx.Watch(ctx, key).Err(); err != nil {
				return "", err
			}
			t, err := getRecord[model.Team](ctx, tx, key, model.ErrTeamNotFound)
			if errors.Is(err, model.ErrTeamNotFound) {
				return "", nil
			}
			if err != nil {
				return "", err
			}
			return t.Name, nil
		},
		taken: model.ErrTeamNameTaken,
	}
}

// check returns the index's taken error if a claimed name is held by a record
// outside the batch, or is claimed twice within it. Otherwise it returns the
// keys of old names that renamed records give up.
func (ix nameIndex) check(ctx context.Context, tx *redis.Tx, claims []nameClaim) ([]string, error) {
	inBatch := lo.Associate(claims, func(c nameClaim) (string, struct{}) {
		return c.id, struct{}{}
	})
	claimed := make(map[string]string, len(claims))
	var release []string

	for _, c := range claims {
		if other, ok := claimed[c.name]; ok && other != c.id {
			return nil, ix.taken
		}
		claimed[c.name] = c.id

		if c.oldName != "" && c.oldName != c.name {
			held, err := ix.holder(ctx, tx, c.oldName)
			if err != nil {
				return nil, err
			}
			if held == c.id {
				release = append(release, ix.key(c.oldName))
			}
		}

		holder, err := ix.holder(ctx, tx, c.name)
		if err != nil {
			return nil, err
		}
		if holder == "" || holder == c.id {
			continue
		}
		if _, moving := inBatch[holder]; moving {
			continue
		}
		current, err := ix.recordName(ctx, tx, holder)
		if err != nil {
			return nil, err
		}
		if current == c.name {
			return nil, ix.taken
		}
	}
	return release, nil
}

// holder returns the id name points at, or "" if the name is unclaimed
func (ix nameIndex) holder(ctx context.Context, tx *redis.Tx, name string) (string, error) {
	key := ix.key(name)
	if err := tx.Watch(ctx, key).Err(); err != nil {
		return "", err
	}
	id, err := tx.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return id, err
}
