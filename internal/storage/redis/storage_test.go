package redis

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/teamladder/internal/model"
	"github.com/mcoot/teamladder/internal/storage"
	"github.com/mcoot/teamladder/internal/storage/storagetest"
)

type StorageSuite struct {
	storagetest.Suite
	mini *miniredis.Miniredis
}

func TestStorageSuite(t *testing.T) {
	s := new(StorageSuite)
	s.NewStorage = func() storage.Storage {
		s.mini = miniredis.RunT(s.T())
		client := redis.NewClient(&redis.Options{
			Addr: s.mini.Addr(),
		})
		return NewWithClient(client, DefaultConfig())
	}
	suite.Run(t, s)
}

func (s *StorageSuite) redisStorage() *Storage {
	return s.Storage.(*Storage)
}

func (s *StorageSuite) TestRecordsAreWrappedInSchemaEnvelope() {
	player := &model.Player{ID: "p1", Nickname: "Alice"}
	s.Require().NoError(s.Storage.SavePlayer(s.Ctx, player))

	raw, err := s.mini.Get("ladder:player:p1")
	s.Require().NoError(err)
	s.Contains(raw, `"schema":1`)
	s.Contains(raw, `"nickname":"Alice"`)
}

func (s *StorageSuite) TestUnsupportedSchemaIsRejected() {
	s.Require().NoError(s.mini.Set("ladder:player:p1", `{"schema":99,"data":{"id":"p1"}}`))

	_, err := s.Storage.GetPlayer(s.Ctx, "p1")
	s.ErrorIs(err, ErrUnsupportedSchema)
}

func (s *StorageSuite) TestKeyPrefixIsConfigurable() {
	client := redis.NewClient(&redis.Options{Addr: s.mini.Addr()})
	other := NewWithClient(client, Config{KeyPrefix: "other"})
	defer other.Close()

	s.Require().NoError(other.SaveTeam(s.Ctx, &model.Team{ID: "t1", Name: "Blue"}))

	s.True(s.mini.Exists("other:team:t1"))
	_, err := s.Storage.GetTeam(s.Ctx, "t1")
	s.ErrorIs(err, model.ErrTeamNotFound)
}

func (s *StorageSuite) TestCommitIndexesNewRecords() {
	p := &model.Player{ID: "p1", Nickname: "Alice"}
	s.Require().NoError(s.Storage.Commit(s.Ctx, &storage.Batch{Players: []*model.Player{p}}))

	members, err := s.mini.SMembers(s.redisStorage().keys.playerIndex())
	s.Require().NoError(err)
	s.Equal([]string{"p1"}, members)
}

func (s *StorageSuite) TestListSkipsDanglingIndexEntries() {
	s.Require().NoError(s.Storage.SavePlayer(s.Ctx, &model.Player{ID: "p1", Nickname: "Alice"}))
	_, err := s.mini.SAdd("ladder:idx:players", "ghost")
	s.Require().NoError(err)

	players, err := s.Storage.ListPlayers(s.Ctx)
	s.Require().NoError(err)
	s.Require().Len(players, 1)
	s.Equal(model.PlayerID("p1"), players[0].ID)
}

func (s *StorageSuite) TestCommitClaimsNameKeys() {
	p := &model.Player{ID: "p1", Nickname: "Alice"}
	t := &model.Team{ID: "t1", Name: "Blue"}
	s.Require().NoError(s.Storage.Commit(s.Ctx, &storage.Batch{Players: []*model.Player{p}, Teams: []*model.Team{t}}))

	holder, err := s.mini.Get("ladder:name:player:Alice")
	s.Require().NoError(err)
	s.Equal("p1", holder)
	holder, err = s.mini.Get("ladder:name:team:Blue")
	s.Require().NoError(err)
	s.Equal("t1", holder)
}

func (s *StorageSuite) TestRenameReleasesOldNameKey() {
	t := &model.Team{ID: "t1", Name: "Blue"}
	s.Require().NoError(s.Storage.Commit(s.Ctx, &storage.Batch{Teams: []*model.Team{t}}))

	t.Name = "Green"
	s.Require().NoError(s.Storage.Commit(s.Ctx, &storage.Batch{Teams: []*model.Team{t}}))

	s.False(s.mini.Exists("ladder:name:team:Blue"))
	s.True(s.mini.Exists("ladder:name:team:Green"))
}

func (s *StorageSuite) TestStaleNameKeyDoesNotBlockClaim() {
	s.Require().NoError(s.mini.Set("ladder:name:player:Alice", "ghost"))

	p := &model.Player{ID: "p1", Nickname: "Alice"}
	s.Require().NoError(s.Storage.Commit(s.Ctx, &storage.Batch{Players: []*model.Player{p}}))

	holder, err := s.mini.Get("ladder:name:player:Alice")
	s.Require().NoError(err)
	s.Equal("p1", holder)
}

func (s *StorageSuite) TestNameCanMoveBetweenRecordsInOneBatch() {
	t1 := &model.Team{ID: "t1", Name: "Blue"}
	s.Require().NoError(s.Storage.Commit(s.Ctx, &storage.Batch{Teams: []*model.Team{t1}}))

	t1.Name = "Green"
	t2 := &model.Team{ID: "t2", Name: "Blue"}
	s.Require().NoError(s.Storage.Commit(s.Ctx, &storage.Batch{Teams: []*model.Team{t1, t2}}))

	holder, err := s.mini.Get("ladder:name:team:Blue")
	s.Require().NoError(err)
	s.Equal("t2", holder)
}
