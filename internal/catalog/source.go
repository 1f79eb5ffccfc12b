package catalog

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"strings"

	"diagnosis-backend/internal/shared/storage/object"
)

//go:embed data/design.json
var embedded embed.FS

const embeddedPath = "data/design.json"

// Source produces a dataset. Implementations do not validate; use Load.
type Source interface {
	Load(ctx context.Context) (*Dataset, error)
}

// Load reads a dataset from src and validates it. Any error is fatal for startup.
func Load(ctx context.Context, src Source) (*Dataset, error) {
	if src == nil {
		return nil, fmt.Errorf("catalog source is nil")
	}
	ds, err := src.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	if err := ds.Validate(); err != nil {
		return nil, err
	}
	return ds, nil
}

// EmbeddedSource serves the dataset compiled into the binary.
type EmbeddedSource struct{}

// Load decodes the embedded design dataset.
func (EmbeddedSource) Load(ctx context.Context) (*Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := embedded.ReadFile(embeddedPath)
	if err != nil {
		return nil, err
	}
	return Decode(bytes.NewReader(data), FormatJSON)
}

// Default returns the validated embedded dataset.
func Default() (*Dataset, error) {
	return Load(context.Background(), EmbeddedSource{})
}

// ObjectSource reads a JSON or YAML dataset file from an object store.
type ObjectSource struct {
	Store object.ObjectStore
	Key   string
}

// Load opens the object and decodes it by extension.
func (s ObjectSource) Load(ctx context.Context) (*Dataset, error) {
	if s.Store == nil {
		return nil, fmt.Errorf("object store is nil")
	}
	key := strings.TrimSpace(s.Key)
	if key == "" {
		return nil, fmt.Errorf("catalog object key is empty")
	}
	rc, err := s.Store.Open(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("open catalog %s: %w", key, err)
	}
	defer rc.Close()
	return Decode(rc, FormatFromName(key))
}
