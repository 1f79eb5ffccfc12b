package diagnosis

import (
	"diagnosis-backend/internal/catalog"
)

type addOnRule struct {
	menuID string
	when   func(tags map[string]int) bool
}

// addOnRules are evaluated independently, in order.
var addOnRules = []addOnRule{
	{
		menuID: "hot_spa_addon",
		when: func(tags map[string]int) bool {
			return tags["cold_sensitivity"] > 0 || tags["eye_strain"] > 0
		},
	},
	{
		menuID: "lala_peel_face",
		when:   func(tags map[string]int) bool { return tags["face_care"] > 0 },
	},
	{
		menuID: "root_color",
		when:   func(tags map[string]int) bool { return tags["gray_hair"] > 0 },
	},
}

// SelectAddOns returns the add-on menus whose rule fires, in rule order.
// A rule whose menu is missing from the catalogue contributes nothing.
func SelectAddOns(ds *catalog.Dataset, tagScores map[string]int) []catalog.MenuTagging {
	out := []catalog.MenuTagging{}
	for _, rule := range addOnRules {
		if !rule.when(tagScores) {
			continue
		}
		if m, ok := ds.MenuByID(rule.menuID); ok {
			out = append(out, m.Clone())
		}
	}
	return out
}
