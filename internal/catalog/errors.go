package catalog

import (
	"errors"
	"strings"
)

// ErrDataIntegrity marks a catalogue that cannot produce a valid diagnosis.
// It is a configuration failure and is never shown to end users.
var ErrDataIntegrity = errors.New("catalog data integrity")

// IntegrityError lists every problem found while validating a dataset.
type IntegrityError struct {
	Problems []string
}

func (e *IntegrityError) Error() string {
	return "catalog data integrity: " + strings.Join(e.Problems, "; ")
}

// Is lets errors.Is(err, ErrDataIntegrity) match.
func (e *IntegrityError) Is(target error) bool {
	return target == ErrDataIntegrity
}
