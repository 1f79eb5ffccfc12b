package catalog

import (
	"fmt"
	"strings"
)

// Validate checks the invariants the engine relies on and indexes the dataset.
// Scoring targets that match no tag or archetype are allowed; they are ignored
// at scoring time so datasets can evolve ahead of the engine.
func (d *Dataset) Validate() error {
	var problems []string
	if len(d.Tags) == 0 {
		problems = append(problems, "tags table is empty")
	}
	if len(d.Animals) == 0 {
		problems = append(problems, "animal_types table is empty")
	}
	if len(d.Menus) == 0 {
		problems = append(problems, "menu_tagging table is empty")
	}
	if len(d.Questions) == 0 {
		problems = append(problems, "question_bank table is empty")
	}

	problems = append(problems, duplicates("tag", len(d.Tags), func(i int) string { return d.Tags[i].ID })...)
	problems = append(problems, duplicates("animal", len(d.Animals), func(i int) string { return d.Animals[i].ID })...)
	problems = append(problems, duplicates("menu", len(d.Menus), func(i int) string { return d.Menus[i].MenuID })...)
	problems = append(problems, duplicates("question", len(d.Questions), func(i int) string { return d.Questions[i].ID })...)

	for _, q := range d.Questions {
		switch q.Type {
		case TypeSingleChoice, TypeMultiChoice, TypeSlider:
		default:
			problems = append(problems, fmt.Sprintf("question %q has unknown type %q", q.ID, q.Type))
		}
	}

	if len(d.Menus) > 0 && len(d.EligibleMenus()) == 0 {
		problems = append(problems, "no menu is recommendable on its own (all are add_on_only or requires_spa_with)")
	}

	if len(problems) > 0 {
		return &IntegrityError{Problems: problems}
	}
	d.buildIndex()
	return nil
}

func duplicates(kind string, n int, id func(int) string) []string {
	seen := make(map[string]bool, n)
	var out []string
	for i := 0; i < n; i++ {
		key := id(i)
		if strings.TrimSpace(key) == "" {
			out = append(out, fmt.Sprintf("%s at position %d has an empty id", kind, i))
			continue
		}
		if seen[key] {
			out = append(out, fmt.Sprintf("duplicate %s id %q", kind, key))
			continue
		}
		seen[key] = true
	}
	return out
}
