package object

import (
	"context"
	"io"
)

// ObjectStore reads stored objects by key. Catalogue files are the only objects
// the service reads; keys are relative to the store root or bucket prefix.
type ObjectStore interface {
	Open(ctx context.Context, storageKey string) (io.ReadCloser, error)
}
