package brackets

import (
	"fmt"
	"sort"

	"github.com/Dosada05/betting-system/models"
)

// Правила валидации графа сетки. Каждое нарушение именует правило и
// затронутые матчи; сборка сетки отклоняется целиком при любом нарушении,
// но валидатор собирает их все, а не останавливается на первом.
const (
	RuleCycle             = "cycle"
	RuleDanglingReference = "dangling_reference"
	RuleSelfReference     = "self_reference"
	RuleSlotConfig        = "slot_config"
	RuleRoundOrder        = "round_order"
	RuleSeedCount         = "seed_count"
)

// ValidationError — одно нарушение правила валидации.
type ValidationError struct {
	Rule     string `json:"rule"`
	MatchIDs []int  `json:"match_ids"`
	Detail   string `json:"detail"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("bracket validation: rule %s violated by matches %v: %s", e.Rule, e.MatchIDs, e.Detail)
}

// Graph — граф матчей турнира, построенный по ссылкам prev-match.
// Ребро идёт от матча-источника к зависимому матчу.
type Graph struct {
	matches    map[int]*models.Match
	dependents map[int][]*models.Match // источник -> зависимые
	ordered    []*models.Match         // в порядке (RoundIndex, Side, DisplayOrder, ID)
}

// NewGraph строит граф по набору матчей. Сам по себе граф может быть
// невалидным — проверки выполняет Validate.
func NewGraph(matches []*models.Match) *Graph {
	g := &Graph{
		matches:    make(map[int]*models.Match, len(matches)),
		dependents: make(map[int][]*models.Match),
		ordered:    make([]*models.Match, len(matches)),
	}
	copy(g.ordered, matches)
	sort.Slice(g.ordered, func(i, j int) bool {
		a, b := g.ordered[i], g.ordered[j]
		if a.RoundIndex != b.RoundIndex {
			return a.RoundIndex < b.RoundIndex
		}
		if a.BracketSide != b.BracketSide {
			return a.BracketSide < b.BracketSide
		}
		if a.DisplayOrder != b.DisplayOrder {
			return a.DisplayOrder < b.DisplayOrder
		}
		return a.ID < b.ID
	})
	for _, m := range matches {
		g.matches[m.ID] = m
	}
	for _, m := range matches {
		for _, src := range prevSources(m) {
			g.dependents[src] = append(g.dependents[src], m)
		}
	}
	return g
}

// prevSources возвращает уникальные id матчей-источников обоих слотов.
func prevSources(m *models.Match) []int {
	var out []int
	if m.TeamAPrevMatchID != nil {
		out = append(out, *m.TeamAPrevMatchID)
	}
	if m.TeamBPrevMatchID != nil && (m.TeamAPrevMatchID == nil || *m.TeamBPrevMatchID != *m.TeamAPrevMatchID) {
		out = append(out, *m.TeamBPrevMatchID)
	}
	return out
}

// Match возвращает матч по id, либо nil.
func (g *Graph) Match(id int) *models.Match {
	return g.matches[id]
}

// Dependents возвращает матчи, чей слот ссылается на данный матч.
func (g *Graph) Dependents(matchID int) []*models.Match {
	return g.dependents[matchID]
}

// Matches возвращает все матчи в стабильном порядке раундов.
func (g *Graph) Matches() []*models.Match {
	return g.ordered
}

// Validate прогоняет все структурные проверки и возвращает полный список
// нарушений. Пустой список означает валидный граф.
func (g *Graph) Validate() []ValidationError {
	var violations []ValidationError

	violations = append(violations, g.checkSlotConfig()...)
	violations = append(violations, g.checkReferences()...)
	violations = append(violations, g.checkCycles()...)
	violations = append(violations, g.checkRoundOrder()...)

	return violations
}

// ValidateStages дополнительно проверяет размеры посева по заявленным этапам.
func (g *Graph) ValidateStages(stages []models.Stage) []ValidationError {
	var violations []ValidationError

	for _, stage := range stages {
		sideMatches := g.sideMatches(stage.BracketSide)
		if len(sideMatches) == 0 {
			violations = append(violations, ValidationError{
				Rule:   RuleSeedCount,
				Detail: fmt.Sprintf("stage %q declares side %s but no matches are assigned to it", stage.Name, stage.BracketSide),
			})
			continue
		}

		if stage.BracketSide == models.SideGroups {
			teams := make(map[int]struct{})
			for _, m := range sideMatches {
				if m.TeamAID != nil {
					teams[*m.TeamAID] = struct{}{}
				}
				if m.TeamBID != nil {
					teams[*m.TeamBID] = struct{}{}
				}
			}
			if len(teams) != stage.BracketSize {
				violations = append(violations, ValidationError{
					Rule:   RuleSeedCount,
					Detail: fmt.Sprintf("stage %q expects %d teams in groups, found %d", stage.Name, stage.BracketSize, len(teams)),
				})
			}
			continue
		}

		// Элиминационные стороны: размер сетки — степень двойки, и число
		// матчей первого раунда ей соответствует.
		if stage.BracketSize < 2 || stage.BracketSize&(stage.BracketSize-1) != 0 {
			violations = append(violations, ValidationError{
				Rule:   RuleSeedCount,
				Detail: fmt.Sprintf("stage %q bracket size %d is not a power of two", stage.Name, stage.BracketSize),
			})
			continue
		}
		firstRound := sideMatches[0].RoundIndex
		count := 0
		var ids []int
		for _, m := range sideMatches {
			if m.RoundIndex == firstRound {
				count++
				ids = append(ids, m.ID)
			}
		}
		if stage.BracketSide != models.SideGrandFinal && count*2 != stage.BracketSize {
			violations = append(violations, ValidationError{
				Rule:     RuleSeedCount,
				MatchIDs: ids,
				Detail:   fmt.Sprintf("stage %q expects %d first-round matches for bracket size %d, found %d", stage.Name, stage.BracketSize/2, stage.BracketSize, count),
			})
		}
	}

	return violations
}

func (g *Graph) sideMatches(side models.BracketSide) []*models.Match {
	var out []*models.Match
	for _, m := range g.ordered {
		if m.BracketSide == side {
			out = append(out, m)
		}
	}
	return out
}

func (g *Graph) checkSlotConfig() []ValidationError {
	var violations []ValidationError
	for _, m := range g.ordered {
		type slot struct {
			name   string
			prevID *int
			result *models.SlotResult
		}
		for _, s := range []slot{
			{"A", m.TeamAPrevMatchID, m.TeamAPrevResult},
			{"B", m.TeamBPrevMatchID, m.TeamBPrevResult},
		} {
			switch {
			case s.prevID != nil && s.result == nil:
				violations = append(violations, ValidationError{
					Rule:     RuleSlotConfig,
					MatchIDs: []int{m.ID},
					Detail:   fmt.Sprintf("slot %s references match %d but names no result (winner/loser)", s.name, *s.prevID),
				})
			case s.prevID != nil && *s.result != models.SlotWinner && *s.result != models.SlotLoser:
				violations = append(violations, ValidationError{
					Rule:     RuleSlotConfig,
					MatchIDs: []int{m.ID},
					Detail:   fmt.Sprintf("slot %s has invalid result tag %q", s.name, *s.result),
				})
			case s.prevID == nil && s.result != nil:
				violations = append(violations, ValidationError{
					Rule:     RuleSlotConfig,
					MatchIDs: []int{m.ID},
					Detail:   fmt.Sprintf("slot %s names result %q without a previous match reference", s.name, *s.result),
				})
			}
		}
	}
	return violations
}

func (g *Graph) checkReferences() []ValidationError {
	var violations []ValidationError
	for _, m := range g.ordered {
		for _, src := range []*int{m.TeamAPrevMatchID, m.TeamBPrevMatchID} {
			if src == nil {
				continue
			}
			if *src == m.ID {
				violations = append(violations, ValidationError{
					Rule:     RuleSelfReference,
					MatchIDs: []int{m.ID},
					Detail:   "match references itself as a participant source",
				})
				continue
			}
			if _, ok := g.matches[*src]; !ok {
				violations = append(violations, ValidationError{
					Rule:     RuleDanglingReference,
					MatchIDs: []int{m.ID},
					Detail:   fmt.Sprintf("previous match %d does not exist in the graph", *src),
				})
			}
		}
	}
	return violations
}

const (
	colorWhite = 0
	colorGray  = 1
	colorBlack = 2
)

func (g *Graph) checkCycles() []ValidationError {
	var violations []ValidationError
	color := make(map[int]int, len(g.matches))
	var stack []int

	// Обход не прерывается на первом цикле: в одной компоненте их может
	// быть несколько, и каждый должен попасть в список нарушений.
	var visit func(id int)
	visit = func(id int) {
		color[id] = colorGray
		stack = append(stack, id)
		m := g.matches[id]
		for _, src := range []*int{m.TeamAPrevMatchID, m.TeamBPrevMatchID} {
			if src == nil || *src == id {
				continue
			}
			prev, ok := g.matches[*src]
			if !ok {
				continue // уже поймано checkReferences
			}
			switch color[prev.ID] {
			case colorWhite:
				visit(prev.ID)
			case colorGray:
				// Цикл: вырезаем его участок из стека обхода.
				cycle := []int{prev.ID}
				for i := len(stack) - 1; i >= 0 && stack[i] != prev.ID; i-- {
					cycle = append(cycle, stack[i])
				}
				sort.Ints(cycle)
				violations = append(violations, ValidationError{
					Rule:     RuleCycle,
					MatchIDs: cycle,
					Detail:   "previous-match references form a cycle",
				})
			}
		}
		stack = stack[:len(stack)-1]
		color[id] = colorBlack
	}

	for _, m := range g.ordered {
		if color[m.ID] == colorWhite {
			visit(m.ID)
		}
	}
	return violations
}

func (g *Graph) checkRoundOrder() []ValidationError {
	var violations []ValidationError
	for _, m := range g.ordered {
		// Гранд-финал — точка слияния сторон, раунды там не сравнимы.
		if m.BracketSide == models.SideGrandFinal {
			continue
		}
		for _, src := range []*int{m.TeamAPrevMatchID, m.TeamBPrevMatchID} {
			if src == nil {
				continue
			}
			prev, ok := g.matches[*src]
			if !ok || prev.ID == m.ID {
				continue
			}
			if prev.BracketSide == m.BracketSide && prev.RoundIndex >= m.RoundIndex {
				violations = append(violations, ValidationError{
					Rule:     RuleRoundOrder,
					MatchIDs: []int{prev.ID, m.ID},
					Detail: fmt.Sprintf("match %d (round %d) depends on match %d (round %d) on the same side %s",
						m.ID, m.RoundIndex, prev.ID, prev.RoundIndex, m.BracketSide),
				})
			}
		}
	}
	return violations
}

// TopologicalOrder возвращает матчи в порядке зависимостей prev-match
// (алгоритм Кана). Внутри одного уровня порядок стабилен: раунд, сторона,
// display order, id. Возвращает ошибку при цикле.
func (g *Graph) TopologicalOrder() ([]*models.Match, error) {
	indegree := make(map[int]int, len(g.matches))
	for _, m := range g.ordered {
		for _, src := range prevSources(m) {
			if src == m.ID {
				continue
			}
			if _, ok := g.matches[src]; ok {
				indegree[m.ID]++
			}
		}
	}

	queue := make([]*models.Match, 0, len(g.ordered))
	for _, m := range g.ordered {
		if indegree[m.ID] == 0 {
			queue = append(queue, m)
		}
	}

	result := make([]*models.Match, 0, len(g.ordered))
	for len(queue) > 0 {
		m := queue[0]
		queue = queue[1:]
		result = append(result, m)

		for _, dep := range g.dependents[m.ID] {
			indegree[dep.ID]--
			if indegree[dep.ID] == 0 {
				queue = append(queue, dep)
			}
		}
	}

	if len(result) != len(g.ordered) {
		return nil, fmt.Errorf("cannot order matches: previous-match references contain a cycle (%d of %d matches ordered)", len(result), len(g.ordered))
	}
	return result, nil
}
