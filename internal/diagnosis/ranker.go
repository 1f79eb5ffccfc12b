package diagnosis

import (
	"sort"

	"diagnosis-backend/internal/catalog"
)

// archetypeBonus is added when the archetype recommends a menu by name.
const archetypeBonus = 5

// RankedMenu is an eligible menu with its score.
type RankedMenu struct {
	Menu  catalog.MenuTagging
	Score int
}

// RankMenus scores every standalone menu and sorts them best first. Equal
// scores keep catalogue order.
func RankMenus(ds *catalog.Dataset, tagScores map[string]int, animal catalog.AnimalType) ([]RankedMenu, error) {
	eligible := ds.EligibleMenus()
	if len(eligible) == 0 {
		return nil, &catalog.IntegrityError{Problems: []string{"no eligible menu to recommend"}}
	}

	recommended := make(map[string]struct{}, len(animal.Recommended.PrimaryMenus))
	for _, name := range animal.Recommended.PrimaryMenus {
		recommended[name] = struct{}{}
	}

	ranked := make([]RankedMenu, 0, len(eligible))
	for _, m := range eligible {
		score := 0
		for _, tag := range m.Tags {
			score += tagScores[tag]
		}
		// Archetypes reference menus by display name, not id.
		if _, ok := recommended[m.MenuName]; ok {
			score += archetypeBonus
		}
		ranked = append(ranked, RankedMenu{Menu: m, Score: score})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked, nil
}
