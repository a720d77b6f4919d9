package balance

import (
	"cmp"
	"math"
	"slices"

	"github.com/mcoot/teamladder/internal/model"
)

// SortPool orders players strongest first, breaking rating ties by id.
// The input slice is not modified.
func SortPool(pool []*model.Player) []*model.Player {
	sorted := slices.Clone(pool)
	slices.SortStableFunc(sorted, func(a, b *model.Player) int {
		if c := cmp.Compare(b.Rating, a.Rating); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return sorted
}

// Draft splits the strongest 2*teamSize players of pool into two rosters of
// teamSize. Players are paired strongest with weakest, and the pairs go to
// alternating sides. For an odd teamSize the last player dealt to the first
// roster moves to the second, which evens the counts but not always the means.
func Draft(pool []*model.Player, teamSize int) ([]*model.Player, []*model.Player, error) {
	if teamSize <= 0 {
		return nil, nil, model.ErrInvalidTeamSize
	}
	if teamSize > len(pool)/2 {
		return nil, nil, &model.NotEnoughPlayersError{Needed: playersNeeded(teamSize), Found: len(pool)}
	}
	needed := 2 * teamSize

	sorted := SortPool(pool)[:needed]

	teamA := make([]*model.Player, 0, teamSize+1)
	teamB := make([]*model.Player, 0, teamSize+1)
	for i := range teamSize {
		pair := []*model.Player{sorted[i], sorted[needed-1-i]}
		if i%2 == 0 {
			teamA = append(teamA, pair...)
		} else {
			teamB = append(teamB, pair...)
		}
	}

	if teamSize%2 == 1 {
		last := teamA[len(teamA)-1]
		teamA = teamA[:len(teamA)-1]
		teamB = append(teamB, last)
	}

	return teamA, teamB, nil
}

// playersNeeded is 2*teamSize, saturating at math.MaxInt
func playersNeeded(teamSize int) int {
	if teamSize > math.MaxInt/2 {
		return math.MaxInt
	}
	return 2 * teamSize
}
