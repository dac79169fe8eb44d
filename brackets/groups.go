package brackets

import (
	"context"
	"fmt"
	"sort"

	"github.com/Dosada05/betting-system/models"
)

// GroupStageGenerator создаёт круговые матчи внутри каждой группы.
// Каждая команда играет с каждой в своей группе один раз; зависимостей
// между матчами групповой стадии нет, все они засеяны напрямую.
type GroupStageGenerator struct{}

func NewGroupStageGenerator() BracketGenerator {
	return &GroupStageGenerator{}
}

func (g *GroupStageGenerator) GetName() string {
	return "GroupStage"
}

func (g *GroupStageGenerator) GenerateBracket(ctx context.Context, params GenerateBracketParams) ([]*BracketMatch, error) {
	if len(params.Groups) == 0 {
		return nil, fmt.Errorf("group stage requires at least one group")
	}

	groupNames := make([]string, 0, len(params.Groups))
	for name := range params.Groups {
		groupNames = append(groupNames, name)
	}
	sort.Strings(groupNames)

	matches := make([]*BracketMatch, 0)
	order := 0

	for _, name := range groupNames {
		teams := params.Groups[name]
		if len(teams) < 2 {
			return nil, fmt.Errorf("group %s has %d teams, minimum 2 required", name, len(teams))
		}

		for i := 0; i < len(teams); i++ {
			for j := i + 1; j < len(teams); j++ {
				order++
				a, b := teams[i], teams[j]
				matches = append(matches, &BracketMatch{
					UID:          fmt.Sprintf("%s_%s_M%d", models.SideGroups, name, order),
					Side:         models.SideGroups,
					Round:        1,
					OrderInRound: order,
					TeamAID:      &a,
					TeamBID:      &b,
				})
			}
		}
	}

	return matches, nil
}
