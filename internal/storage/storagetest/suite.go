// Package storagetest holds the behaviour every storage backend must share.
// Backend packages embed Suite and supply NewStorage.
package storagetest

import (
	"context"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/teamladder/internal/model"
	"github.com/mcoot/teamladder/internal/storage"
)

// Suite runs the storage contract against a fresh backend per test
type Suite struct {
	suite.Suite

	// NewStorage returns an empty storage instance
	NewStorage func() storage.Storage

	Storage storage.Storage
	Ctx     context.Context
}

var testTime = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func (s *Suite) SetupTest() {
	s.Require().NotNil(s.NewStorage, "NewStorage must be set")
	s.Storage = s.NewStorage()
	s.Ctx = context.Background()
}

func (s *Suite) TearDownTest() {
	if s.Storage != nil {
		_ = s.Storage.Close()
	}
}

func newPlayer(id string) *model.Player {
	return &model.Player{
		ID:        model.PlayerID(id),
		Nickname:  "nick-" + id,
		Rating:    1000,
		KFactor:   50,
		CreatedAt: testTime,
		UpdatedAt: testTime,
	}
}

func newTeam(id string, members ...model.PlayerID) *model.Team {
	return &model.Team{
		ID:        model.TeamID(id),
		Name:      "team-" + id,
		PlayerIDs: members,
		CreatedAt: testTime,
		UpdatedAt: testTime,
	}
}

// Player tests

func (s *Suite) TestSaveAndGetPlayerRoundTrips() {
	teamID := model.TeamID("team-1")
	player := newPlayer("player-1")
	player.Wins = 3
	player.Losses = 2
	player.Rating = 1012.5
	player.HoursPlayed = 42
	player.TeamID = &teamID

	s.Require().NoError(s.Storage.SavePlayer(s.Ctx, player))

	retrieved, err := s.Storage.GetPlayer(s.Ctx, "player-1")
	s.Require().NoError(err)
	s.Equal(player, retrieved)
}

func (s *Suite) TestGetPlayerNotFound() {
	_, err := s.Storage.GetPlayer(s.Ctx, "nonexistent")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *Suite) TestSavedPlayerIsNotAliased() {
	player := newPlayer("player-1")
	s.Require().NoError(s.Storage.SavePlayer(s.Ctx, player))

	player.Rating = 1
	retrieved, err := s.Storage.GetPlayer(s.Ctx, "player-1")
	s.Require().NoError(err)
	s.InDelta(1000.0, retrieved.Rating, 1e-9)
}

func (s *Suite) TestListPlayersOrderedByID() {
	for _, id := range []string{"c", "a", "b"} {
		s.Require().NoError(s.Storage.SavePlayer(s.Ctx, newPlayer(id)))
	}

	players, err := s.Storage.ListPlayers(s.Ctx)
	s.Require().NoError(err)
	s.Require().Len(players, 3)
	s.Equal(model.PlayerID("a"), players[0].ID)
	s.Equal(model.PlayerID("b"), players[1].ID)
	s.Equal(model.PlayerID("c"), players[2].ID)
}

func (s *Suite) TestListPlayersEmpty() {
	players, err := s.Storage.ListPlayers(s.Ctx)
	s.Require().NoError(err)
	s.Empty(players)
}

// Team tests

func (s *Suite) TestSaveAndGetTeamRoundTrips() {
	team := newTeam("team-1", "p1", "p2", "p3")
	team.Wins = 4
	team.Draws = 1

	s.Require().NoError(s.Storage.SaveTeam(s.Ctx, team))

	retrieved, err := s.Storage.GetTeam(s.Ctx, "team-1")
	s.Require().NoError(err)
	s.Equal(team, retrieved)
}

func (s *Suite) TestGetTeamNotFound() {
	_, err := s.Storage.GetTeam(s.Ctx, "nonexistent")
	s.ErrorIs(err, model.ErrTeamNotFound)
}

func (s *Suite) TestListTeams() {
	s.Require().NoError(s.Storage.SaveTeam(s.Ctx, newTeam("t2", "p3")))
	s.Require().NoError(s.Storage.SaveTeam(s.Ctx, newTeam("t1", "p1")))

	teams, err := s.Storage.ListTeams(s.Ctx)
	s.Require().NoError(err)
	s.Require().Len(teams, 2)
	s.Equal(model.TeamID("t1"), teams[0].ID)
	s.Equal(model.TeamID("t2"), teams[1].ID)
}

// Match tests

func (s *Suite) TestSaveAndGetMatchRoundTrips() {
	winner := model.TeamID("t1")
	match := &model.Match{
		ID:            "match-1",
		Team1ID:       "t1",
		Team2ID:       "t2",
		WinnerID:      &winner,
		DurationHours: 3,
		RatingChanges: []model.RatingChange{
			{PlayerID: "p1", TeamID: "t1", Before: 1000, After: 1025, KFactor: 50, Outcome: model.OutcomeWin},
			{PlayerID: "p2", TeamID: "t2", Before: 1000, After: 975, KFactor: 50, Outcome: model.OutcomeLoss},
		},
		PlayedAt: testTime,
	}

	s.Require().NoError(s.Storage.SaveMatch(s.Ctx, match))

	retrieved, err := s.Storage.GetMatch(s.Ctx, "match-1")
	s.Require().NoError(err)
	s.Equal(match, retrieved)
}

func (s *Suite) TestDrawMatchKeepsNilWinner() {
	match := &model.Match{ID: "match-1", Team1ID: "t1", Team2ID: "t2", DurationHours: 1, PlayedAt: testTime}
	s.Require().NoError(s.Storage.SaveMatch(s.Ctx, match))

	retrieved, err := s.Storage.GetMatch(s.Ctx, "match-1")
	s.Require().NoError(err)
	s.Nil(retrieved.WinnerID)
	s.True(retrieved.IsDraw())
}

func (s *Suite) TestGetMatchNotFound() {
	_, err := s.Storage.GetMatch(s.Ctx, "nonexistent")
	s.ErrorIs(err, model.ErrMatchNotFound)
}

func (s *Suite) TestListMatches() {
	for _, id := range []model.MatchID{"m2", "m1"} {
		m := &model.Match{ID: id, Team1ID: "t1", Team2ID: "t2", DurationHours: 1, PlayedAt: testTime}
		s.Require().NoError(s.Storage.SaveMatch(s.Ctx, m))
	}

	matches, err := s.Storage.ListMatches(s.Ctx)
	s.Require().NoError(err)
	s.Require().Len(matches, 2)
	s.Equal(model.MatchID("m1"), matches[0].ID)
}

// Commit tests

func (s *Suite) TestCommitWritesEverything() {
	p1, p2 := newPlayer("p1"), newPlayer("p2")
	team := newTeam("t1", "p1", "p2")
	match := &model.Match{ID: "m1", Team1ID: "t1", Team2ID: "t2", DurationHours: 1, PlayedAt: testTime}

	err := s.Storage.Commit(s.Ctx, &storage.Batch{
		Players: []*model.Player{p1, p2},
		Teams:   []*model.Team{team},
		Match:   match,
	})
	s.Require().NoError(err)

	s.Equal(int64(1), p1.Version)
	s.Equal(int64(1), team.Version)

	stored, err := s.Storage.GetPlayer(s.Ctx, "p1")
	s.Require().NoError(err)
	s.Equal(int64(1), stored.Version)

	storedTeam, err := s.Storage.GetTeam(s.Ctx, "t1")
	s.Require().NoError(err)
	s.Equal([]model.PlayerID{"p1", "p2"}, storedTeam.PlayerIDs)

	_, err = s.Storage.GetMatch(s.Ctx, "m1")
	s.NoError(err)
}

func (s *Suite) TestCommitBumpsVersionOnUpdate() {
	p := newPlayer("p1")
	s.Require().NoError(s.Storage.Commit(s.Ctx, &storage.Batch{Players: []*model.Player{p}}))

	loaded, err := s.Storage.GetPlayer(s.Ctx, "p1")
	s.Require().NoError(err)
	loaded.Rating = 1100

	s.Require().NoError(s.Storage.Commit(s.Ctx, &storage.Batch{Players: []*model.Player{loaded}}))
	s.Equal(int64(2), loaded.Version)

	stored, err := s.Storage.GetPlayer(s.Ctx, "p1")
	s.Require().NoError(err)
	s.Equal(int64(2), stored.Version)
	s.InDelta(1100.0, stored.Rating, 1e-9)
}

func (s *Suite) TestCommitRejectsStaleVersionAndWritesNothing() {
	p1, p2 := newPlayer("p1"), newPlayer("p2")
	s.Require().NoError(s.Storage.Commit(s.Ctx, &storage.Batch{Players: []*model.Player{p1, p2}}))

	stale, err := s.Storage.GetPlayer(s.Ctx, "p1")
	s.Require().NoError(err)
	fresh, err := s.Storage.GetPlayer(s.Ctx, "p1")
	s.Require().NoError(err)

	fresh.Rating = 1200
	s.Require().NoError(s.Storage.Commit(s.Ctx, &storage.Batch{Players: []*model.Player{fresh}}))

	other, err := s.Storage.GetPlayer(s.Ctx, "p2")
	s.Require().NoError(err)
	other.Rating = 1
	stale.Rating = 1
	match := &model.Match{ID: "m1", Team1ID: "t1", Team2ID: "t2", DurationHours: 1, PlayedAt: testTime}

	err = s.Storage.Commit(s.Ctx, &storage.Batch{
		Players: []*model.Player{other, stale},
		Match:   match,
	})
	s.ErrorIs(err, model.ErrConflict)

	p1Stored, _ := s.Storage.GetPlayer(s.Ctx, "p1")
	s.InDelta(1200.0, p1Stored.Rating, 1e-9)
	p2Stored, _ := s.Storage.GetPlayer(s.Ctx, "p2")
	s.InDelta(1000.0, p2Stored.Rating, 1e-9)
	_, err = s.Storage.GetMatch(s.Ctx, "m1")
	s.ErrorIs(err, model.ErrMatchNotFound)
}

func (s *Suite) TestCommitRejectsCreatingExistingRecord() {
	s.Require().NoError(s.Storage.Commit(s.Ctx, &storage.Batch{Teams: []*model.Team{newTeam("t1")}}))

	err := s.Storage.Commit(s.Ctx, &storage.Batch{Teams: []*model.Team{newTeam("t1")}})
	s.ErrorIs(err, model.ErrConflict)
}

func (s *Suite) TestCommitRejectsDuplicateMatch() {
	match := &model.Match{ID: "m1", Team1ID: "t1", Team2ID: "t2", DurationHours: 1, PlayedAt: testTime}
	s.Require().NoError(s.Storage.Commit(s.Ctx, &storage.Batch{Match: match}))

	err := s.Storage.Commit(s.Ctx, &storage.Batch{Match: match.Clone()})
	s.ErrorIs(err, model.ErrConflict)
}

func (s *Suite) TestSaveStoresAtLeastVersionOne() {
	player := newPlayer("p1")
	s.Require().NoError(s.Storage.SavePlayer(s.Ctx, player))
	s.Equal(int64(1), player.Version)

	stored, err := s.Storage.GetPlayer(s.Ctx, "p1")
	s.Require().NoError(err)
	s.Equal(int64(1), stored.Version)

	stored.Rating = 1100
	s.Require().NoError(s.Storage.Commit(s.Ctx, &storage.Batch{Players: []*model.Player{stored}}))
	s.Equal(int64(2), stored.Version)
}

func (s *Suite) TestCommitRejectsCreatingSavedRecord() {
	s.Require().NoError(s.Storage.SavePlayer(s.Ctx, newPlayer("p1")))
	s.Require().NoError(s.Storage.SaveTeam(s.Ctx, newTeam("t1")))

	replacement := newPlayer("p1")
	replacement.Rating = 1
	err := s.Storage.Commit(s.Ctx, &storage.Batch{Players: []*model.Player{replacement}})
	s.ErrorIs(err, model.ErrConflict)

	err = s.Storage.Commit(s.Ctx, &storage.Batch{Teams: []*model.Team{newTeam("t1")}})
	s.ErrorIs(err, model.ErrConflict)

	stored, err := s.Storage.GetPlayer(s.Ctx, "p1")
	s.Require().NoError(err)
	s.InDelta(1000.0, stored.Rating, 1e-9)
}

// Unique name tests

func (s *Suite) TestCommitRejectsTakenNickname() {
	alice := newPlayer("p1")
	alice.Nickname = "alice"
	s.Require().NoError(s.Storage.Commit(s.Ctx, &storage.Batch{Players: []*model.Player{alice}}))

	other := newPlayer("p2")
	other.Nickname = "alice"
	err := s.Storage.Commit(s.Ctx, &storage.Batch{Players: []*model.Player{other}})
	s.ErrorIs(err, model.ErrNicknameTaken)

	players, err := s.Storage.ListPlayers(s.Ctx)
	s.Require().NoError(err)
	s.Len(players, 1)
}

func (s *Suite) TestCommitRejectsNicknameClaimedTwiceInBatch() {
	p1, p2 := newPlayer("p1"), newPlayer("p2")
	p1.Nickname = "alice"
	p2.Nickname = "alice"

	err := s.Storage.Commit(s.Ctx, &storage.Batch{Players: []*model.Player{p1, p2}})
	s.ErrorIs(err, model.ErrNicknameTaken)

	_, err = s.Storage.GetPlayer(s.Ctx, "p1")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *Suite) TestNicknamesAreCaseSensitive() {
	p1, p2 := newPlayer("p1"), newPlayer("p2")
	p1.Nickname = "alice"
	p2.Nickname = "Alice"

	s.NoError(s.Storage.Commit(s.Ctx, &storage.Batch{Players: []*model.Player{p1, p2}}))
}

func (s *Suite) TestCommitKeepsOwnNicknameOnUpdate() {
	p := newPlayer("p1")
	s.Require().NoError(s.Storage.Commit(s.Ctx, &storage.Batch{Players: []*model.Player{p}}))

	p.Rating = 1200
	s.NoError(s.Storage.Commit(s.Ctx, &storage.Batch{Players: []*model.Player{p}}))
}

func (s *Suite) TestRenamedNicknameBecomesFree() {
	p1 := newPlayer("p1")
	p1.Nickname = "alice"
	s.Require().NoError(s.Storage.Commit(s.Ctx, &storage.Batch{Players: []*model.Player{p1}}))

	p1.Nickname = "alicia"
	s.Require().NoError(s.Storage.Commit(s.Ctx, &storage.Batch{Players: []*model.Player{p1}}))

	p2 := newPlayer("p2")
	p2.Nickname = "alice"
	s.NoError(s.Storage.Commit(s.Ctx, &storage.Batch{Players: []*model.Player{p2}}))

	p3 := newPlayer("p3")
	p3.Nickname = "alicia"
	err := s.Storage.Commit(s.Ctx, &storage.Batch{Players: []*model.Player{p3}})
	s.ErrorIs(err, model.ErrNicknameTaken)
}

func (s *Suite) TestCommitRejectsTakenTeamName() {
	s.Require().NoError(s.Storage.Commit(s.Ctx, &storage.Batch{Teams: []*model.Team{newTeam("t1")}}))

	clash := newTeam("t2")
	clash.Name = "team-t1"
	err := s.Storage.Commit(s.Ctx, &storage.Batch{Teams: []*model.Team{clash}})
	s.ErrorIs(err, model.ErrTeamNameTaken)

	teams, err := s.Storage.ListTeams(s.Ctx)
	s.Require().NoError(err)
	s.Len(teams, 1)
}

func (s *Suite) TestCommitRejectsRenameOntoTakenTeamName() {
	t1, t2 := newTeam("t1"), newTeam("t2")
	s.Require().NoError(s.Storage.Commit(s.Ctx, &storage.Batch{Teams: []*model.Team{t1, t2}}))

	t2.Name = t1.Name
	err := s.Storage.Commit(s.Ctx, &storage.Batch{Teams: []*model.Team{t2}})
	s.ErrorIs(err, model.ErrTeamNameTaken)

	stored, err := s.Storage.GetTeam(s.Ctx, "t2")
	s.Require().NoError(err)
	s.Equal("team-t2", stored.Name)
}
