package brackets

import (
	"testing"

	"github.com/Dosada05/betting-system/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func slotPtr(r models.SlotResult) *models.SlotResult { return &r }

// Маленькая валидная сетка: два полуфинала, финал от их победителей.
func validKnockout() []*models.Match {
	return []*models.Match{
		{ID: 1, BracketSide: models.SideMain, RoundIndex: 1, DisplayOrder: 1, TeamAID: intPtr(10), TeamBID: intPtr(11)},
		{ID: 2, BracketSide: models.SideMain, RoundIndex: 1, DisplayOrder: 2, TeamAID: intPtr(12), TeamBID: intPtr(13)},
		{ID: 3, BracketSide: models.SideMain, RoundIndex: 2, DisplayOrder: 1,
			TeamAPrevMatchID: intPtr(1), TeamAPrevResult: slotPtr(models.SlotWinner),
			TeamBPrevMatchID: intPtr(2), TeamBPrevResult: slotPtr(models.SlotWinner)},
	}
}

func TestValidateCleanGraph(t *testing.T) {
	g := NewGraph(validKnockout())
	assert.Empty(t, g.Validate())
}

func TestValidateCycle(t *testing.T) {
	matches := []*models.Match{
		{ID: 1, BracketSide: models.SideMain, RoundIndex: 1,
			TeamAPrevMatchID: intPtr(2), TeamAPrevResult: slotPtr(models.SlotWinner)},
		{ID: 2, BracketSide: models.SideMain, RoundIndex: 2,
			TeamAPrevMatchID: intPtr(1), TeamAPrevResult: slotPtr(models.SlotWinner)},
	}
	g := NewGraph(matches)
	violations := g.Validate()

	var cycleViolations []ValidationError
	for _, v := range violations {
		if v.Rule == RuleCycle {
			cycleViolations = append(cycleViolations, v)
		}
	}
	require.NotEmpty(t, cycleViolations)
	// Нарушение называет оба матча цикла.
	assert.ElementsMatch(t, []int{1, 2}, cycleViolations[0].MatchIDs)
}

func TestValidateReportsEveryCycle(t *testing.T) {
	// Два независимых цикла в одной компоненте связности: матч 5
	// ссылается на оба. Валидатор обязан назвать каждый.
	matches := []*models.Match{
		{ID: 1, BracketSide: models.SideMain, RoundIndex: 1,
			TeamAPrevMatchID: intPtr(2), TeamAPrevResult: slotPtr(models.SlotWinner)},
		{ID: 2, BracketSide: models.SideMain, RoundIndex: 2,
			TeamAPrevMatchID: intPtr(1), TeamAPrevResult: slotPtr(models.SlotWinner)},
		{ID: 3, BracketSide: models.SideMain, RoundIndex: 1,
			TeamAPrevMatchID: intPtr(4), TeamAPrevResult: slotPtr(models.SlotWinner)},
		{ID: 4, BracketSide: models.SideMain, RoundIndex: 2,
			TeamAPrevMatchID: intPtr(3), TeamAPrevResult: slotPtr(models.SlotWinner)},
		{ID: 5, BracketSide: models.SideMain, RoundIndex: 3,
			TeamAPrevMatchID: intPtr(2), TeamAPrevResult: slotPtr(models.SlotWinner),
			TeamBPrevMatchID: intPtr(4), TeamBPrevResult: slotPtr(models.SlotWinner)},
	}
	g := NewGraph(matches)

	var cycles [][]int
	for _, v := range g.Validate() {
		if v.Rule == RuleCycle {
			cycles = append(cycles, v.MatchIDs)
		}
	}
	require.Len(t, cycles, 2)
	assert.ElementsMatch(t, []int{1, 2}, cycles[0])
	assert.ElementsMatch(t, []int{3, 4}, cycles[1])
}

func TestValidateSlotConfig(t *testing.T) {
	tests := []struct {
		name  string
		match *models.Match
	}{
		{
			name: "reference without result tag",
			match: &models.Match{ID: 5, BracketSide: models.SideMain, RoundIndex: 2,
				TeamAPrevMatchID: intPtr(1)},
		},
		{
			name: "result tag without reference",
			match: &models.Match{ID: 5, BracketSide: models.SideMain, RoundIndex: 2,
				TeamBPrevResult: slotPtr(models.SlotLoser)},
		},
		{
			name: "invalid result tag",
			match: &models.Match{ID: 5, BracketSide: models.SideMain, RoundIndex: 2,
				TeamAPrevMatchID: intPtr(1), TeamAPrevResult: slotPtr(models.SlotResult("runner_up"))},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matches := append(validKnockout(), tt.match)
			g := NewGraph(matches)
			violations := g.Validate()
			require.NotEmpty(t, violations)
			found := false
			for _, v := range violations {
				if v.Rule == RuleSlotConfig {
					assert.Contains(t, v.MatchIDs, 5)
					found = true
				}
			}
			assert.True(t, found, "expected a slot_config violation")
		})
	}
}

func TestValidateDanglingAndSelfReference(t *testing.T) {
	matches := []*models.Match{
		{ID: 1, BracketSide: models.SideMain, RoundIndex: 1,
			TeamAPrevMatchID: intPtr(99), TeamAPrevResult: slotPtr(models.SlotWinner)},
		{ID: 2, BracketSide: models.SideMain, RoundIndex: 1,
			TeamBPrevMatchID: intPtr(2), TeamBPrevResult: slotPtr(models.SlotWinner)},
	}
	g := NewGraph(matches)
	violations := g.Validate()

	rules := make(map[string]bool)
	for _, v := range violations {
		rules[v.Rule] = true
	}
	assert.True(t, rules[RuleDanglingReference])
	assert.True(t, rules[RuleSelfReference])
}

func TestValidateRoundOrder(t *testing.T) {
	matches := []*models.Match{
		{ID: 1, BracketSide: models.SideMain, RoundIndex: 2, TeamAID: intPtr(10), TeamBID: intPtr(11)},
		// Зависит от матча того же раунда той же стороны.
		{ID: 2, BracketSide: models.SideMain, RoundIndex: 2,
			TeamAPrevMatchID: intPtr(1), TeamAPrevResult: slotPtr(models.SlotWinner)},
	}
	g := NewGraph(matches)
	violations := g.Validate()
	found := false
	for _, v := range violations {
		if v.Rule == RuleRoundOrder {
			assert.ElementsMatch(t, []int{1, 2}, v.MatchIDs)
			found = true
		}
	}
	assert.True(t, found)
}

func TestValidateGrandFinalMergeExempt(t *testing.T) {
	matches := []*models.Match{
		{ID: 1, BracketSide: models.SideUpper, RoundIndex: 2, TeamAID: intPtr(1), TeamBID: intPtr(2)},
		{ID: 2, BracketSide: models.SideLower, RoundIndex: 4, TeamAID: intPtr(3), TeamBID: intPtr(4)},
		{ID: 3, BracketSide: models.SideGrandFinal, RoundIndex: 1,
			TeamAPrevMatchID: intPtr(1), TeamAPrevResult: slotPtr(models.SlotWinner),
			TeamBPrevMatchID: intPtr(2), TeamBPrevResult: slotPtr(models.SlotWinner)},
	}
	g := NewGraph(matches)
	assert.Empty(t, g.Validate())
}

func TestTopologicalOrder(t *testing.T) {
	matches := validKnockout()
	g := NewGraph(matches)
	ordered, err := g.TopologicalOrder()
	require.NoError(t, err)
	require.Len(t, ordered, 3)

	pos := make(map[int]int)
	for i, m := range ordered {
		pos[m.ID] = i
	}
	assert.Less(t, pos[1], pos[3])
	assert.Less(t, pos[2], pos[3])
}

func TestTopologicalOrderCycle(t *testing.T) {
	matches := []*models.Match{
		{ID: 1, BracketSide: models.SideMain, RoundIndex: 1,
			TeamAPrevMatchID: intPtr(2), TeamAPrevResult: slotPtr(models.SlotWinner)},
		{ID: 2, BracketSide: models.SideMain, RoundIndex: 2,
			TeamAPrevMatchID: intPtr(1), TeamAPrevResult: slotPtr(models.SlotWinner)},
	}
	g := NewGraph(matches)
	_, err := g.TopologicalOrder()
	assert.Error(t, err)
}

func TestDependents(t *testing.T) {
	g := NewGraph(validKnockout())
	deps := g.Dependents(1)
	require.Len(t, deps, 1)
	assert.Equal(t, 3, deps[0].ID)
	assert.Empty(t, g.Dependents(3))
}

func TestValidateStages(t *testing.T) {
	g := NewGraph(validKnockout())

	ok := g.ValidateStages([]models.Stage{
		{Name: "Playoffs", BracketSide: models.SideMain, BracketSize: 4},
	})
	assert.Empty(t, ok)

	wrongSize := g.ValidateStages([]models.Stage{
		{Name: "Playoffs", BracketSide: models.SideMain, BracketSize: 8},
	})
	require.NotEmpty(t, wrongSize)
	assert.Equal(t, RuleSeedCount, wrongSize[0].Rule)

	notPowerOfTwo := g.ValidateStages([]models.Stage{
		{Name: "Playoffs", BracketSide: models.SideMain, BracketSize: 6},
	})
	require.NotEmpty(t, notPowerOfTwo)
	assert.Equal(t, RuleSeedCount, notPowerOfTwo[0].Rule)

	missingSide := g.ValidateStages([]models.Stage{
		{Name: "Lower", BracketSide: models.SideLower, BracketSize: 4},
	})
	require.NotEmpty(t, missingSide)
}
