package catalog

// Question types understood by the scoring engine.
const (
	TypeSingleChoice = "single_choice"
	TypeMultiChoice  = "multi_choice"
	TypeSlider       = "slider_0_10"
)

// Slider bucket keys used in Question.Scoring.
const (
	BucketLow  = "low"
	BucketMid  = "mid"
	BucketHigh = "high"
)

// Tag is a symptom or preference axis. ID is the join key for scoring and menus.
type Tag struct {
	ID          string   `json:"id" yaml:"id"`
	Label       string   `json:"label" yaml:"label"`
	Category    string   `json:"category" yaml:"category"`
	Description string   `json:"description" yaml:"description"`
	Synonyms    []string `json:"synonyms" yaml:"synonyms"`
}

// MenuConstraints limits how a menu may be recommended.
type MenuConstraints struct {
	AddOnOnly       bool   `json:"add_on_only,omitempty" yaml:"add_on_only,omitempty"`
	RequiresSpaWith bool   `json:"requires_spa_with,omitempty" yaml:"requires_spa_with,omitempty"`
	RequiresStaff   string `json:"requires_staff,omitempty" yaml:"requires_staff,omitempty"`
	PriceNote       string `json:"price_note,omitempty" yaml:"price_note,omitempty"`
}

// Recommendable reports whether the menu can stand alone as a primary or secondary pick.
func (c MenuConstraints) Recommendable() bool {
	return !c.AddOnOnly && !c.RequiresSpaWith
}

// MenuTagging is a bookable service and the tags it addresses.
type MenuTagging struct {
	MenuID         string          `json:"menu_id" yaml:"menu_id"`
	MenuName       string          `json:"menu_name" yaml:"menu_name"`
	Tags           []string        `json:"tags" yaml:"tags"`
	KeyReasons     []string        `json:"key_reasons" yaml:"key_reasons"`
	Constraints    MenuConstraints `json:"constraints" yaml:"constraints"`
	ReservationURL string          `json:"reservationUrl,omitempty" yaml:"reservationUrl,omitempty"`
}

// Recommended lists the menus an archetype points to, by display name.
type Recommended struct {
	PrimaryMenus []string `json:"primary_menus" yaml:"primary_menus"`
	AddOns       []string `json:"add_ons" yaml:"add_ons"`
	Optional     []string `json:"optional" yaml:"optional"`
}

// AnimalType is a fatigue archetype.
type AnimalType struct {
	ID            string      `json:"id" yaml:"id"`
	Name          string      `json:"name" yaml:"name"`
	Emoji         string      `json:"emoji" yaml:"emoji"`
	Catchphrase   string      `json:"catchphrase" yaml:"catchphrase"`
	CoreSigns     []string    `json:"core_signs" yaml:"core_signs"`
	Recommended   Recommended `json:"recommended" yaml:"recommended"`
	OneLineAdvice string      `json:"one_line_advice" yaml:"one_line_advice"`
}

// Question is one entry of the question bank. Scoring maps an option value
// (or a slider bucket key) to target id -> weight.
type Question struct {
	ID       string                    `json:"id" yaml:"id"`
	Question string                    `json:"question" yaml:"question"`
	Type     string                    `json:"type" yaml:"type"`
	Options  Options                   `json:"options" yaml:"options"`
	Scoring  map[string]map[string]int `json:"scoring" yaml:"scoring"`
}

// Clone returns a deep copy so results never alias the shared dataset.
func (t AnimalType) Clone() AnimalType {
	out := t
	out.CoreSigns = cloneStrings(t.CoreSigns)
	out.Recommended = Recommended{
		PrimaryMenus: cloneStrings(t.Recommended.PrimaryMenus),
		AddOns:       cloneStrings(t.Recommended.AddOns),
		Optional:     cloneStrings(t.Recommended.Optional),
	}
	return out
}

// Clone returns a deep copy so results never alias the shared dataset.
func (m MenuTagging) Clone() MenuTagging {
	out := m
	out.Tags = cloneStrings(m.Tags)
	out.KeyReasons = cloneStrings(m.KeyReasons)
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
