package brackets

import (
	"context"
	"testing"

	"github.com/Dosada05/betting-system/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSingleEliminationPowerOfTwo(t *testing.T) {
	gen := NewSingleEliminationGenerator()
	matches, err := gen.GenerateBracket(context.Background(), GenerateBracketParams{
		TeamIDs: []int{1, 2, 3, 4, 5, 6, 7, 8},
	})
	require.NoError(t, err)
	require.Len(t, matches, 7)

	byRound := make(map[int]int)
	uids := make(map[string]*BracketMatch)
	for _, m := range matches {
		byRound[m.Round]++
		require.NotContains(t, uids, m.UID, "duplicate UID")
		uids[m.UID] = m
	}
	assert.Equal(t, 4, byRound[1])
	assert.Equal(t, 2, byRound[2])
	assert.Equal(t, 1, byRound[3])

	// Первый раунд засеян напрямую, дальше — победители.
	for _, m := range matches {
		if m.Round == 1 {
			assert.NotNil(t, m.TeamAID)
			assert.NotNil(t, m.TeamBID)
			continue
		}
		require.NotNil(t, m.SourceAUID)
		require.NotNil(t, m.SourceBUID)
		assert.Equal(t, models.SlotWinner, *m.SourceAResult)
		assert.Equal(t, models.SlotWinner, *m.SourceBResult)
		assert.Contains(t, uids, *m.SourceAUID)
		assert.Contains(t, uids, *m.SourceBUID)
	}
}

func TestSingleEliminationWithByes(t *testing.T) {
	gen := NewSingleEliminationGenerator()
	matches, err := gen.GenerateBracket(context.Background(), GenerateBracketParams{
		TeamIDs: []int{1, 2, 3, 4, 5, 6},
	})
	require.NoError(t, err)

	byes := 0
	real := 0
	for _, m := range matches {
		if m.IsBye {
			byes++
			require.NotNil(t, m.ByeTeamID)
		} else {
			real++
		}
	}
	assert.Equal(t, 2, byes)
	// 6 участников: 2 реальных матча в первом раунде, 2 полуфинала, финал.
	assert.Equal(t, 5, real)
}

func TestSingleEliminationTooFewTeams(t *testing.T) {
	gen := NewSingleEliminationGenerator()
	_, err := gen.GenerateBracket(context.Background(), GenerateBracketParams{TeamIDs: []int{1}})
	assert.Error(t, err)
}

func TestDoubleElimination8(t *testing.T) {
	gen := NewDoubleEliminationGenerator()
	matches, err := gen.GenerateBracket(context.Background(), GenerateBracketParams{
		TeamIDs: []int{1, 2, 3, 4, 5, 6, 7, 8},
	})
	require.NoError(t, err)
	// 7 верхних + 6 нижних + гранд-финал.
	require.Len(t, matches, 14)

	uids := make(map[string]*BracketMatch, len(matches))
	sides := make(map[models.BracketSide]int)
	loserSourced := 0
	for _, m := range matches {
		require.NotContains(t, uids, m.UID)
		uids[m.UID] = m
		sides[m.Side]++
		if m.SourceAResult != nil && *m.SourceAResult == models.SlotLoser {
			loserSourced++
		}
		if m.SourceBResult != nil && *m.SourceBResult == models.SlotLoser {
			loserSourced++
		}
	}
	assert.Equal(t, 7, sides[models.SideUpper])
	assert.Equal(t, 6, sides[models.SideLower])
	assert.Equal(t, 1, sides[models.SideGrandFinal])
	// Каждый проигравший верхней сетки, кроме финалиста гранд-финала,
	// падает вниз ровно один раз: 4 из первого раунда + 2 + 1.
	assert.Equal(t, 7, loserSourced)

	// Все ссылки разрешимы внутри сетки.
	for _, m := range matches {
		if m.SourceAUID != nil {
			assert.Contains(t, uids, *m.SourceAUID)
		}
		if m.SourceBUID != nil {
			assert.Contains(t, uids, *m.SourceBUID)
		}
	}

	gf := uids["grand_final_R1M1"]
	require.NotNil(t, gf)
	assert.Equal(t, "upper_R3M1", *gf.SourceAUID)
	assert.Equal(t, "lower_R4M1", *gf.SourceBUID)
}

func TestDoubleEliminationRejectsBadSizes(t *testing.T) {
	gen := NewDoubleEliminationGenerator()
	_, err := gen.GenerateBracket(context.Background(), GenerateBracketParams{TeamIDs: []int{1, 2, 3}})
	assert.Error(t, err)
	_, err = gen.GenerateBracket(context.Background(), GenerateBracketParams{TeamIDs: []int{1, 2, 3, 4, 5, 6}})
	assert.Error(t, err)
}

func TestGroupStageGenerator(t *testing.T) {
	gen := NewGroupStageGenerator()
	matches, err := gen.GenerateBracket(context.Background(), GenerateBracketParams{
		Groups: map[string][]int{
			"A": {1, 2, 3, 4},
			"B": {5, 6, 7, 8},
		},
	})
	require.NoError(t, err)
	// C(4,2) на группу.
	require.Len(t, matches, 12)

	for _, m := range matches {
		assert.Equal(t, models.SideGroups, m.Side)
		assert.NotNil(t, m.TeamAID)
		assert.NotNil(t, m.TeamBID)
		assert.Nil(t, m.SourceAUID)
		assert.Nil(t, m.SourceBUID)
	}

	_, err = gen.GenerateBracket(context.Background(), GenerateBracketParams{
		Groups: map[string][]int{"A": {1}},
	})
	assert.Error(t, err)

	_, err = gen.GenerateBracket(context.Background(), GenerateBracketParams{})
	assert.Error(t, err)
}
