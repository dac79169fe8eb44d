package brackets

import (
	"fmt"
	"strconv"
	"strings"
)

// Посев группа→плей-офф — явные конфигурационные данные турнира, а не
// логика: организатор выбирает именованную таблицу при создании турнира.
// Две исторически использовавшиеся схемы поставляются как пресеты; вывод
// посева из текстов названий матчей не поддерживается намеренно.

// GroupSeed — позиция в группе, например {Place: 1, Group: "A"} ("1A").
type GroupSeed struct {
	Place int    `json:"place"`
	Group string `json:"group"`
}

func (s GroupSeed) String() string {
	return fmt.Sprintf("%d%s", s.Place, s.Group)
}

// SeedPair — одна пара первого раунда плей-офф.
type SeedPair struct {
	A GroupSeed `json:"a"`
	B GroupSeed `json:"b"`
}

// SeedingTable — полное отображение позиций групп в пары первого раунда.
type SeedingTable struct {
	Name  string     `json:"name"`
	Pairs []SeedPair `json:"pairs"`
}

// Имена встроенных таблиц посева.
const (
	SeedingCrossOpposite = "cross_opposite" // 1A-2D, 1B-2C, 1C-2B, 1D-2A
	SeedingCrossAdjacent = "cross_adjacent" // 1A-2C, 1B-2D, 1C-2A, 1D-2B
)

var builtinSeedingTables = map[string]SeedingTable{
	SeedingCrossOpposite: mustParseSeedingTable(SeedingCrossOpposite, "1A-2D,1B-2C,1C-2B,1D-2A"),
	SeedingCrossAdjacent: mustParseSeedingTable(SeedingCrossAdjacent, "1A-2C,1B-2D,1C-2A,1D-2B"),
}

// SeedingTableByName возвращает встроенную таблицу посева по имени.
func SeedingTableByName(name string) (SeedingTable, error) {
	t, ok := builtinSeedingTables[name]
	if !ok {
		return SeedingTable{}, fmt.Errorf("unknown seeding table %q", name)
	}
	return t, nil
}

// ParseGroupSeed разбирает запись вида "1A" или "2D".
func ParseGroupSeed(s string) (GroupSeed, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return GroupSeed{}, fmt.Errorf("invalid group seed %q", s)
	}
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == 0 || i == len(s) {
		return GroupSeed{}, fmt.Errorf("invalid group seed %q: expected <place><group>, e.g. 1A", s)
	}
	place, err := strconv.Atoi(s[:i])
	if err != nil || place < 1 {
		return GroupSeed{}, fmt.Errorf("invalid place in group seed %q", s)
	}
	return GroupSeed{Place: place, Group: strings.ToUpper(s[i:])}, nil
}

// ParseSeedingTable разбирает таблицу из строки "1A-2D,1B-2C,...".
func ParseSeedingTable(name, spec string) (SeedingTable, error) {
	table := SeedingTable{Name: name}
	for _, pairSpec := range strings.Split(spec, ",") {
		parts := strings.Split(strings.TrimSpace(pairSpec), "-")
		if len(parts) != 2 {
			return SeedingTable{}, fmt.Errorf("invalid seeding pair %q", pairSpec)
		}
		a, err := ParseGroupSeed(parts[0])
		if err != nil {
			return SeedingTable{}, err
		}
		b, err := ParseGroupSeed(parts[1])
		if err != nil {
			return SeedingTable{}, err
		}
		table.Pairs = append(table.Pairs, SeedPair{A: a, B: b})
	}
	if err := table.Validate(); err != nil {
		return SeedingTable{}, err
	}
	return table, nil
}

func mustParseSeedingTable(name, spec string) SeedingTable {
	t, err := ParseSeedingTable(name, spec)
	if err != nil {
		panic(err)
	}
	return t
}

// Validate проверяет, что каждая позиция встречается ровно один раз и число
// пар — степень двойки.
func (t SeedingTable) Validate() error {
	if len(t.Pairs) == 0 {
		return fmt.Errorf("seeding table %q has no pairs", t.Name)
	}
	if len(t.Pairs)&(len(t.Pairs)-1) != 0 {
		return fmt.Errorf("seeding table %q has %d pairs, expected a power of two", t.Name, len(t.Pairs))
	}
	seen := make(map[GroupSeed]struct{}, len(t.Pairs)*2)
	for _, p := range t.Pairs {
		for _, s := range []GroupSeed{p.A, p.B} {
			if _, dup := seen[s]; dup {
				return fmt.Errorf("seeding table %q assigns position %s twice", t.Name, s)
			}
			seen[s] = struct{}{}
		}
	}
	return nil
}

// Resolve подставляет фактические итоги групп в таблицу посева.
// placements: имя группы -> команды в порядке занятых мест (индекс 0 = 1-е
// место). Возвращает упорядоченные пары (teamA, teamB) первого раунда.
func (t SeedingTable) Resolve(placements map[string][]int) ([][2]int, error) {
	resolve := func(s GroupSeed) (int, error) {
		group, ok := placements[s.Group]
		if !ok {
			return 0, fmt.Errorf("seeding table %q references group %s which has no placements", t.Name, s.Group)
		}
		if s.Place > len(group) {
			return 0, fmt.Errorf("seeding table %q needs place %d in group %s, only %d placed", t.Name, s.Place, s.Group, len(group))
		}
		return group[s.Place-1], nil
	}

	pairs := make([][2]int, 0, len(t.Pairs))
	for _, p := range t.Pairs {
		a, err := resolve(p.A)
		if err != nil {
			return nil, err
		}
		b, err := resolve(p.B)
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, [2]int{a, b})
	}
	return pairs, nil
}
