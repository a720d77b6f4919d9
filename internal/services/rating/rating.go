// Package rating implements the Elo-style rating math used after every match.
// All functions are pure.
package rating

import (
	"math"

	"github.com/mcoot/teamladder/internal/model"
)

// Scale is the rating difference at which the stronger side is expected to
// score ten times as often as the weaker one
const Scale = 400.0

// kBand is a lower bound on hours played and the K-factor that applies from there
type kBand struct {
	minHours int
	k        int
}

// kBands must stay sorted by descending minHours
var kBands = []kBand{
	{minHours: 5000, k: 10},
	{minHours: 3000, k: 20},
	{minHours: 1000, k: 30},
	{minHours: 500, k: 40},
	{minHours: 0, k: 50},
}

// ExpectedScore returns the probability-like expected result for a player
// of selfRating against an opposing team of mean rating opponentMean.
// The result lies strictly inside (0, 1) for finite inputs of practical size.
func ExpectedScore(selfRating, opponentMean float64) float64 {
	return 1 / (1 + math.Pow(10, (opponentMean-selfRating)/Scale))
}

// KFactor returns the rating sensitivity for a player with the given hours.
// Each band includes its lower edge.
func KFactor(hoursPlayed int) int {
	for _, b := range kBands {
		if hoursPlayed >= b.minHours {
			return b.k
		}
	}
	return kBands[len(kBands)-1].k
}

// NewRating applies one match result to the current rating
func NewRating(current, expected float64, k int, result model.Outcome) float64 {
	return current + float64(k)*(float64(result)-expected)
}

// MeanRating returns the arithmetic mean of the players' ratings
func MeanRating(players []*model.Player) (float64, error) {
	if len(players) == 0 {
		return 0, model.ErrEmptyTeam
	}
	var total float64
	for _, p := range players {
		total += p.Rating
	}
	return total / float64(len(players)), nil
}

// Update is the result of applying a match to a single player
type Update struct {
	Expected float64
	KFactor  int
	Change   model.RatingChange
}

// Apply mutates p for one match: adds the hours, moves the rating using the
// K-factor of the post-match hours, bumps wins or losses, and stores that
// K-factor on the player. opponentMean must be the pre-match mean.
func Apply(p *model.Player, team model.TeamID, opponentMean float64, durationHours int, result model.Outcome) Update {
	before := p.Rating
	expected := ExpectedScore(p.Rating, opponentMean)

	p.HoursPlayed += durationHours
	k := KFactor(p.HoursPlayed)
	p.Rating = NewRating(p.Rating, expected, k, result)

	switch result {
	case model.OutcomeWin:
		p.Wins++
	case model.OutcomeLoss:
		p.Losses++
	}
	p.KFactor = k

	return Update{
		Expected: expected,
		KFactor:  k,
		Change: model.RatingChange{
			PlayerID: p.ID,
			TeamID:   team,
			Before:   before,
			After:    p.Rating,
			KFactor:  k,
			Outcome:  result,
		},
	}
}
