package catalog

// Dataset is the immutable reference catalogue. It is built once at startup and
// shared read-only between concurrent diagnoses; order of every slice is significant.
type Dataset struct {
	Version   string        `json:"version" yaml:"version"`
	Tags      []Tag         `json:"tags" yaml:"tags"`
	Menus     []MenuTagging `json:"menu_tagging" yaml:"menu_tagging"`
	Animals   []AnimalType  `json:"animal_types" yaml:"animal_types"`
	Questions []Question    `json:"question_bank" yaml:"question_bank"`

	tagIDs    map[string]struct{}
	animalIDs map[string]struct{}
	menuIndex map[string]int
}

// buildIndex must run before the dataset is shared; Validate calls it.
func (d *Dataset) buildIndex() {
	d.tagIDs = make(map[string]struct{}, len(d.Tags))
	for _, t := range d.Tags {
		d.tagIDs[t.ID] = struct{}{}
	}
	d.animalIDs = make(map[string]struct{}, len(d.Animals))
	for _, a := range d.Animals {
		d.animalIDs[a.ID] = struct{}{}
	}
	d.menuIndex = make(map[string]int, len(d.Menus))
	for i := len(d.Menus) - 1; i >= 0; i-- {
		d.menuIndex[d.Menus[i].MenuID] = i
	}
}

// IsTag reports whether id is a known tag id.
func (d *Dataset) IsTag(id string) bool {
	if d.tagIDs != nil {
		_, ok := d.tagIDs[id]
		return ok
	}
	for _, t := range d.Tags {
		if t.ID == id {
			return true
		}
	}
	return false
}

// IsAnimal reports whether id is a known archetype id.
func (d *Dataset) IsAnimal(id string) bool {
	if d.animalIDs != nil {
		_, ok := d.animalIDs[id]
		return ok
	}
	for _, a := range d.Animals {
		if a.ID == id {
			return true
		}
	}
	return false
}

// MenuByID returns the first menu with the given id, including add-on-only entries.
func (d *Dataset) MenuByID(id string) (MenuTagging, bool) {
	if d.menuIndex != nil {
		i, ok := d.menuIndex[id]
		if !ok {
			return MenuTagging{}, false
		}
		return d.Menus[i], true
	}
	for _, m := range d.Menus {
		if m.MenuID == id {
			return m, true
		}
	}
	return MenuTagging{}, false
}

// Question returns the question with the given id.
func (d *Dataset) Question(id string) (Question, bool) {
	for _, q := range d.Questions {
		if q.ID == id {
			return q, true
		}
	}
	return Question{}, false
}

// EligibleMenus returns menus that may be recommended on their own, in catalogue order.
func (d *Dataset) EligibleMenus() []MenuTagging {
	out := make([]MenuTagging, 0, len(d.Menus))
	for _, m := range d.Menus {
		if m.Constraints.Recommendable() {
			out = append(out, m)
		}
	}
	return out
}
