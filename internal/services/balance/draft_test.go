package balance

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/teamladder/internal/model"
	"github.com/mcoot/teamladder/internal/services/rating"
)

func poolOf(ratings ...float64) []*model.Player {
	pool := make([]*model.Player, len(ratings))
	for i, r := range ratings {
		pool[i] = &model.Player{ID: model.PlayerID(fmt.Sprintf("p%02d", i)), Rating: r}
	}
	return pool
}

func ids(players []*model.Player) []model.PlayerID {
	out := make([]model.PlayerID, len(players))
	for i, p := range players {
		out[i] = p.ID
	}
	return out
}

func TestSortPoolOrdersByRatingThenID(t *testing.T) {
	pool := []*model.Player{
		{ID: "b", Rating: 10},
		{ID: "a", Rating: 10},
		{ID: "c", Rating: 30},
	}

	sorted := SortPool(pool)

	assert.Equal(t, []model.PlayerID{"c", "a", "b"}, ids(sorted))
	assert.Equal(t, model.PlayerID("b"), pool[0].ID, "input must not be reordered")
}

func TestDraftEvenTeamSize(t *testing.T) {
	// sorted: p00=80 p01=70 p02=60 p03=50 p04=40 p05=30 p06=20 p07=10
	pool := poolOf(80, 70, 60, 50, 40, 30, 20, 10)

	a, b, err := Draft(pool, 4)
	require.NoError(t, err)

	assert.Equal(t, []model.PlayerID{"p00", "p07", "p02", "p05"}, ids(a))
	assert.Equal(t, []model.PlayerID{"p01", "p06", "p03", "p04"}, ids(b))

	meanA, _ := rating.MeanRating(a)
	meanB, _ := rating.MeanRating(b)
	assert.InDelta(t, meanA, meanB, 1e-9)
}

func TestDraftOddTeamSizeMovesLastPlayer(t *testing.T) {
	pool := poolOf(100, 90, 80, 70, 60, 50)

	a, b, err := Draft(pool, 3)
	require.NoError(t, err)

	// pairs: (p00,p05)->A, (p01,p04)->B, (p02,p03)->A, then p03 moves to B
	assert.Equal(t, []model.PlayerID{"p00", "p05", "p02"}, ids(a))
	assert.Equal(t, []model.PlayerID{"p01", "p04", "p03"}, ids(b))
}

func TestDraftTeamSizeOne(t *testing.T) {
	a, b, err := Draft(poolOf(5, 10), 1)
	require.NoError(t, err)

	assert.Equal(t, []model.PlayerID{"p01"}, ids(a))
	assert.Equal(t, []model.PlayerID{"p00"}, ids(b))
}

func TestDraftFiveAgainstFive(t *testing.T) {
	pool := poolOf(1500, 1400, 1300, 1200, 1100, 1000, 900, 800, 700, 600)

	a, b, err := Draft(pool, 5)
	require.NoError(t, err)
	assert.Len(t, a, 5)
	assert.Len(t, b, 5)

	seen := make(map[model.PlayerID]bool)
	for _, p := range append(a, b...) {
		assert.False(t, seen[p.ID], "player %s drafted twice", p.ID)
		seen[p.ID] = true
	}
	assert.Len(t, seen, 10)
}

func TestDraftUsesStrongestPlayersFromLargerPool(t *testing.T) {
	pool := poolOf(10, 50, 40, 30, 20)

	a, b, err := Draft(pool, 2)
	require.NoError(t, err)

	drafted := append(ids(a), ids(b)...)
	assert.NotContains(t, drafted, model.PlayerID("p00"))
}

func TestDraftRejectsInvalidTeamSize(t *testing.T) {
	_, _, err := Draft(poolOf(1, 2), 0)
	assert.ErrorIs(t, err, model.ErrInvalidTeamSize)

	_, _, err = Draft(poolOf(1, 2), -1)
	assert.ErrorIs(t, err, model.ErrInvalidTeamSize)
}

func TestDraftRejectsSmallPool(t *testing.T) {
	_, _, err := Draft(poolOf(1, 2, 3), 2)

	var nep *model.NotEnoughPlayersError
	require.ErrorAs(t, err, &nep)
	assert.Equal(t, 4, nep.Needed)
	assert.Equal(t, 3, nep.Found)
}

func TestDraftRejectsTeamSizeBeyondAnyPool(t *testing.T) {
	tests := []struct {
		name     string
		teamSize int
		needed   int
	}{
		{name: "doubling overflows", teamSize: math.MaxInt/2 + 1, needed: math.MaxInt},
		{name: "max int", teamSize: math.MaxInt, needed: math.MaxInt},
		{name: "largest exact", teamSize: math.MaxInt / 2, needed: math.MaxInt - 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var teamA, teamB []*model.Player
			var err error
			require.NotPanics(t, func() {
				teamA, teamB, err = Draft(poolOf(1000, 900, 800), tt.teamSize)
			})

			var nep *model.NotEnoughPlayersError
			require.ErrorAs(t, err, &nep)
			assert.ErrorIs(t, err, model.ErrNotEnoughPlayers)
			assert.Equal(t, tt.needed, nep.Needed)
			assert.Equal(t, 3, nep.Found)
			assert.Nil(t, teamA)
			assert.Nil(t, teamB)
		})
	}
}
