package diagnosis

import (
	"diagnosis-backend/internal/catalog"
)

// Result is a finished diagnosis. It holds copies of catalogue entries and can
// be serialized or mutated without touching the shared dataset.
type Result struct {
	Animal                 catalog.AnimalType    `json:"animal"`
	PrimaryMenu            catalog.MenuTagging   `json:"primaryMenu"`
	SecondaryMenu          *catalog.MenuTagging  `json:"secondaryMenu,omitempty"`
	AddOns                 []catalog.MenuTagging `json:"addOns"`
	Advice                 string                `json:"advice"`
	PersonalityDescription string                `json:"personalityDescription,omitempty"`
}
