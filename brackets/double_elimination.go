package brackets

import (
	"context"
	"fmt"
	"math"

	"github.com/Dosada05/betting-system/models"
)

// DoubleEliminationGenerator строит сетку double elimination:
// верхняя сетка (upper), нижняя (lower) с падением проигравших, и
// гранд-финал как точка слияния. Требует степень двойки участников,
// минимум 4 — byes в этом формате не поддерживаются.
type DoubleEliminationGenerator struct {
}

func NewDoubleEliminationGenerator() BracketGenerator {
	return &DoubleEliminationGenerator{}
}

func (g *DoubleEliminationGenerator) GetName() string {
	return "DoubleElimination"
}

func (g *DoubleEliminationGenerator) GenerateBracket(ctx context.Context, params GenerateBracketParams) ([]*BracketMatch, error) {
	teams := params.TeamIDs
	n := len(teams)

	if n < 4 {
		return nil, fmt.Errorf("double elimination requires at least 4 teams, got %d", n)
	}
	if n&(n-1) != 0 {
		return nil, fmt.Errorf("double elimination requires a power-of-two team count, got %d", n)
	}

	numUpperRounds := int(math.Log2(float64(n)))
	matches := make([]*BracketMatch, 0, 2*n-1)

	upperUID := func(round, order int) string {
		return fmt.Sprintf("%s_R%dM%d", models.SideUpper, round, order)
	}
	lowerUID := func(round, order int) string {
		return fmt.Sprintf("%s_R%dM%d", models.SideLower, round, order)
	}

	// Верхняя сетка: обычный single elimination по победителям.
	for r := 1; r <= numUpperRounds; r++ {
		count := n >> uint(r)
		for i := 0; i < count; i++ {
			bm := &BracketMatch{
				UID:          upperUID(r, i+1),
				Side:         models.SideUpper,
				Round:        r,
				OrderInRound: i + 1,
			}
			if r == 1 {
				a, b := teams[2*i], teams[2*i+1]
				bm.TeamAID = &a
				bm.TeamBID = &b
			} else {
				bm.SourceAUID, bm.SourceAResult = srcWinner(upperUID(r-1, 2*i+1))
				bm.SourceBUID, bm.SourceBResult = srcWinner(upperUID(r-1, 2*i+2))
			}
			matches = append(matches, bm)
		}
	}

	// Нижняя сетка: раунды чередуются. Нечётный раунд 2r-1 сводит
	// победителей предыдущего круга нижней сетки (для r=1 — проигравших
	// первого раунда верхней), чётный 2r подбирает проигравших раунда
	// r+1 верхней сетки. Индексы проигравших в чётных раундах
	// разворачиваются, чтобы отложить реванши.
	for r := 1; r < numUpperRounds; r++ {
		count := n >> uint(r+1)

		minorRound := 2*r - 1
		for i := 0; i < count; i++ {
			bm := &BracketMatch{
				UID:          lowerUID(minorRound, i+1),
				Side:         models.SideLower,
				Round:        minorRound,
				OrderInRound: i + 1,
			}
			if r == 1 {
				bm.SourceAUID, bm.SourceAResult = srcLoser(upperUID(1, 2*i+1))
				bm.SourceBUID, bm.SourceBResult = srcLoser(upperUID(1, 2*i+2))
			} else {
				bm.SourceAUID, bm.SourceAResult = srcWinner(lowerUID(minorRound-1, 2*i+1))
				bm.SourceBUID, bm.SourceBResult = srcWinner(lowerUID(minorRound-1, 2*i+2))
			}
			matches = append(matches, bm)
		}

		majorRound := 2 * r
		for i := 0; i < count; i++ {
			bm := &BracketMatch{
				UID:          lowerUID(majorRound, i+1),
				Side:         models.SideLower,
				Round:        majorRound,
				OrderInRound: i + 1,
			}
			bm.SourceAUID, bm.SourceAResult = srcWinner(lowerUID(minorRound, i+1))
			bm.SourceBUID, bm.SourceBResult = srcLoser(upperUID(r+1, count-i))
			matches = append(matches, bm)
		}
	}

	// Гранд-финал: победитель верхней сетки против победителя нижней.
	gf := &BracketMatch{
		UID:          fmt.Sprintf("%s_R1M1", models.SideGrandFinal),
		Side:         models.SideGrandFinal,
		Round:        1,
		OrderInRound: 1,
	}
	gf.SourceAUID, gf.SourceAResult = srcWinner(upperUID(numUpperRounds, 1))
	gf.SourceBUID, gf.SourceBResult = srcWinner(lowerUID(2*(numUpperRounds-1), 1))
	matches = append(matches, gf)

	return matches, nil
}
