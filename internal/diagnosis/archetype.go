package diagnosis

import (
	"diagnosis-backend/internal/catalog"
)

// SelectArchetype returns the highest scoring archetype. Ties go to the one
// declared first, and the first archetype wins when nothing beats -1.
func SelectArchetype(animals []catalog.AnimalType, scores map[string]int) (catalog.AnimalType, error) {
	if len(animals) == 0 {
		return catalog.AnimalType{}, &catalog.IntegrityError{Problems: []string{"animal_types table is empty"}}
	}
	best := 0
	top := -1
	for i, a := range animals {
		if score := scores[a.ID]; score > top {
			top = score
			best = i
		}
	}
	return animals[best], nil
}
