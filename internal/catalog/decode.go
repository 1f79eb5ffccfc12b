package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"path"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// FormatFromName picks the decoder from a file name or object key extension.
// Anything that is not .yaml/.yml is treated as JSON.
func FormatFromName(name string) string {
	switch strings.ToLower(path.Ext(strings.TrimSpace(name))) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Decode reads a dataset in the given format. It does not validate.
func Decode(r io.Reader, format string) (*Dataset, error) {
	var ds Dataset
	switch format {
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&ds); err != nil {
			return nil, fmt.Errorf("decode catalog yaml: %w", err)
		}
	case FormatJSON, "":
		if err := json.NewDecoder(r).Decode(&ds); err != nil {
			return nil, fmt.Errorf("decode catalog json: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported catalog format %q", format)
	}
	return &ds, nil
}
