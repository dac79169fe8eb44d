package brackets

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/Dosada05/betting-system/models"
)

type seNode struct {
	teamID           *int
	sourceMatchUID   *string
	isByePlaceholder bool
}

// SingleEliminationGenerator строит сетку single elimination на стороне
// main: слоты следующего раунда заполняются победителями предыдущего.
type SingleEliminationGenerator struct {
}

func NewSingleEliminationGenerator() BracketGenerator {
	return &SingleEliminationGenerator{}
}

func (g *SingleEliminationGenerator) GetName() string {
	return "SingleElimination"
}

func (g *SingleEliminationGenerator) GenerateBracket(ctx context.Context, params GenerateBracketParams) ([]*BracketMatch, error) {
	teams := params.TeamIDs
	n := len(teams)

	if n < 2 {
		return nil, errors.New("not enough teams to generate a single elimination bracket (minimum 2)")
	}

	side := models.SideMain
	if params.Stage != nil {
		side = params.Stage.BracketSide
	}

	numRounds := int(math.Ceil(math.Log2(float64(n))))
	sizeOfFullBracket := 1 << uint(numRounds)
	numByes := sizeOfFullBracket - n

	// Byes достаются верхним сеяным: пары (посев i, bye) идут первыми,
	// чтобы bye никогда не встретился с bye. numByes всегда меньше
	// половины слотов, поэтому дальше первого раунда byes не доживают.
	currentRoundNodes := make([]*seNode, 0, sizeOfFullBracket)
	idx := 0
	for i := 0; i < numByes; i++ {
		id := teams[idx]
		idx++
		currentRoundNodes = append(currentRoundNodes, &seNode{teamID: &id}, &seNode{isByePlaceholder: true})
	}
	for idx < n {
		id := teams[idx]
		idx++
		currentRoundNodes = append(currentRoundNodes, &seNode{teamID: &id})
	}

	allMatches := make([]*BracketMatch, 0, sizeOfFullBracket-1)

	for r := 1; r <= numRounds; r++ {
		nextRoundNodes := make([]*seNode, 0, len(currentRoundNodes)/2)

		for i := 0; i < len(currentRoundNodes); i += 2 {
			node1 := currentRoundNodes[i]
			node2 := currentRoundNodes[i+1]
			order := i/2 + 1

			uid := fmt.Sprintf("%s_R%dM%d", side, r, order)
			bm := &BracketMatch{
				UID:          uid,
				Side:         side,
				Round:        r,
				OrderInRound: order,
			}

			// Bye: участник проходит дальше без матча, запись не создаётся.
			if node1.teamID != nil && node2.isByePlaceholder {
				bm.IsBye = true
				bm.ByeTeamID = node1.teamID
				nextRoundNodes = append(nextRoundNodes, &seNode{teamID: node1.teamID})
				allMatches = append(allMatches, bm)
				continue
			}
			if node2.teamID != nil && node1.isByePlaceholder {
				bm.IsBye = true
				bm.ByeTeamID = node2.teamID
				nextRoundNodes = append(nextRoundNodes, &seNode{teamID: node2.teamID})
				allMatches = append(allMatches, bm)
				continue
			}

			if node1.teamID != nil {
				bm.TeamAID = node1.teamID
			} else if node1.sourceMatchUID != nil {
				bm.SourceAUID, bm.SourceAResult = srcWinner(*node1.sourceMatchUID)
			}
			if node2.teamID != nil {
				bm.TeamBID = node2.teamID
			} else if node2.sourceMatchUID != nil {
				bm.SourceBUID, bm.SourceBResult = srcWinner(*node2.sourceMatchUID)
			}

			nextRoundNodes = append(nextRoundNodes, &seNode{sourceMatchUID: &uid})
			allMatches = append(allMatches, bm)
		}
		currentRoundNodes = nextRoundNodes
	}

	sort.Slice(allMatches, func(i, j int) bool {
		if allMatches[i].Round != allMatches[j].Round {
			return allMatches[i].Round < allMatches[j].Round
		}
		return allMatches[i].OrderInRound < allMatches[j].OrderInRound
	})

	return allMatches, nil
}
