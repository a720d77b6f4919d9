package rating

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/teamladder/internal/model"
)

func TestExpectedScoreKnownValue(t *testing.T) {
	assert.InDelta(t, 0.521573, ExpectedScore(25, 10), 1e-6)
}

func TestExpectedScoreIsSymmetric(t *testing.T) {
	pairs := [][2]float64{
		{0, 0},
		{25, 10},
		{1000, 1400},
		{-300, 2200},
		{1500.75, 1499.25},
		{0, 5000},
	}
	for _, p := range pairs {
		sum := ExpectedScore(p[0], p[1]) + ExpectedScore(p[1], p[0])
		assert.InDelta(t, 1.0, sum, 1e-12, "ratings %v", p)
	}
}

func TestExpectedScoreEqualRatings(t *testing.T) {
	assert.InDelta(t, 0.5, ExpectedScore(1000, 1000), 1e-12)
}

func TestExpectedScoreSaturatesInsideUnitInterval(t *testing.T) {
	high := ExpectedScore(4000, 0)
	low := ExpectedScore(0, 4000)

	assert.Less(t, high, 1.0)
	assert.Greater(t, high, 0.99)
	assert.Greater(t, low, 0.0)
	assert.Less(t, low, 0.01)
}

func TestNewRating(t *testing.T) {
	tests := []struct {
		name   string
		result model.Outcome
		want   float64
	}{
		{"win", model.OutcomeWin, 39.35},
		{"loss", model.OutcomeLoss, 9.35},
		{"draw", model.OutcomeDraw, 24.35},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, NewRating(25, 0.521573, 30, tt.result), 0.005)
		})
	}
}

func TestKFactorBands(t *testing.T) {
	tests := []struct {
		hours int
		want  int
	}{
		{0, 50},
		{100, 50},
		{499, 50},
		{500, 40},
		{600, 40},
		{999, 40},
		{1000, 30},
		{1500, 30},
		{2999, 30},
		{3000, 20},
		{3500, 20},
		{4999, 20},
		{5000, 10},
		{6000, 10},
		{1 << 30, 10},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, KFactor(tt.hours), "hours %d", tt.hours)
	}
}

func TestKFactorIsNonIncreasing(t *testing.T) {
	prev := KFactor(0)
	for h := 1; h <= 6000; h++ {
		k := KFactor(h)
		require.LessOrEqual(t, k, prev, "hours %d", h)
		prev = k
	}
}

func TestMeanRating(t *testing.T) {
	players := []*model.Player{
		{ID: "p1", Rating: 50},
		{ID: "p2", Rating: 60},
		{ID: "p3", Rating: 70},
		{ID: "p4", Rating: 80},
		{ID: "p5", Rating: 90},
	}

	mean, err := MeanRating(players)
	require.NoError(t, err)
	assert.InDelta(t, 70.0, mean, 1e-9)
}

func TestMeanRatingEmptyTeam(t *testing.T) {
	_, err := MeanRating(nil)
	assert.ErrorIs(t, err, model.ErrEmptyTeam)
}

func TestApplyWin(t *testing.T) {
	p := &model.Player{ID: "p1", Rating: 1000, KFactor: 50}

	u := Apply(p, "t1", 1000, 10, model.OutcomeWin)

	assert.InDelta(t, 0.5, u.Expected, 1e-12)
	assert.Equal(t, 50, u.KFactor)
	assert.InDelta(t, 1025.0, p.Rating, 1e-9)
	assert.Equal(t, 10, p.HoursPlayed)
	assert.Equal(t, 1, p.Wins)
	assert.Equal(t, 0, p.Losses)
	assert.Equal(t, model.RatingChange{
		PlayerID: "p1",
		TeamID:   "t1",
		Before:   1000,
		After:    1025,
		KFactor:  50,
		Outcome:  model.OutcomeWin,
	}, u.Change)
}

func TestApplyDrawLeavesRecordUnchanged(t *testing.T) {
	p := &model.Player{ID: "p1", Rating: 1200, Wins: 3, Losses: 2}

	Apply(p, "t1", 1000, 2, model.OutcomeDraw)

	assert.Equal(t, 3, p.Wins)
	assert.Equal(t, 2, p.Losses)
	assert.Less(t, p.Rating, 1200.0)
}

func TestApplyUsesPostMatchHoursForKFactor(t *testing.T) {
	p := &model.Player{ID: "p1", Rating: 1000, HoursPlayed: 495, KFactor: 50}

	u := Apply(p, "t1", 1000, 10, model.OutcomeLoss)

	assert.Equal(t, 505, p.HoursPlayed)
	assert.Equal(t, 40, u.KFactor)
	assert.Equal(t, 40, p.KFactor)
	assert.InDelta(t, 980.0, p.Rating, 1e-9)
	assert.Equal(t, 1, p.Losses)
}
