package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// OptionValue is a choice key. Source data may spell it as a string or a number;
// strings are kept as written and numbers in their shortest form, so it can
// index Question.Scoring.
type OptionValue string

// UnmarshalJSON accepts a JSON string or number.
func (v *OptionValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = OptionValue(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("option value must be a string or number: %w", err)
	}
	f, err := n.Float64()
	if err != nil {
		return fmt.Errorf("option value %s: %w", n, err)
	}
	*v = OptionValue(strconv.FormatFloat(f, 'f', -1, 64))
	return nil
}

// UnmarshalYAML keeps string scalars as written and shortens numeric ones.
func (v *OptionValue) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: option value must be a scalar", node.Line)
	}
	if node.Tag == "!!int" || node.Tag == "!!float" {
		var f float64
		if err := node.Decode(&f); err == nil {
			*v = OptionValue(strconv.FormatFloat(f, 'f', -1, 64))
			return nil
		}
	}
	*v = OptionValue(node.Value)
	return nil
}

// Option is a selectable answer of a choice question.
type Option struct {
	Label string      `json:"label" yaml:"label"`
	Value OptionValue `json:"value" yaml:"value"`
}

// SliderRange describes a slider question.
type SliderRange struct {
	Min    int      `json:"min" yaml:"min"`
	Max    int      `json:"max" yaml:"max"`
	Labels []string `json:"labels" yaml:"labels"`
}

// Options holds either the choices of a choice question or the range of a slider.
// In source data it is a list for choices and an object for sliders.
type Options struct {
	Choices []Option
	Range   *SliderRange
}

// UnmarshalJSON decodes a list of options or a slider range object.
func (o *Options) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*o = Options{}
		return nil
	}
	switch data[0] {
	case '[':
		var choices []Option
		if err := json.Unmarshal(data, &choices); err != nil {
			return err
		}
		*o = Options{Choices: choices}
		return nil
	case '{':
		var r SliderRange
		if err := json.Unmarshal(data, &r); err != nil {
			return err
		}
		*o = Options{Range: &r}
		return nil
	default:
		return fmt.Errorf("options must be a list or an object")
	}
}

// MarshalJSON writes the same shape UnmarshalJSON reads.
func (o Options) MarshalJSON() ([]byte, error) {
	if o.Range != nil {
		return json.Marshal(o.Range)
	}
	if o.Choices == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(o.Choices)
}

// UnmarshalYAML decodes a sequence of options or a slider range mapping.
func (o *Options) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.SequenceNode:
		var choices []Option
		if err := node.Decode(&choices); err != nil {
			return err
		}
		*o = Options{Choices: choices}
		return nil
	case yaml.MappingNode:
		var r SliderRange
		if err := node.Decode(&r); err != nil {
			return err
		}
		*o = Options{Range: &r}
		return nil
	case yaml.ScalarNode:
		if node.Tag == "!!null" {
			*o = Options{}
			return nil
		}
	}
	return fmt.Errorf("line %d: options must be a list or a mapping", node.Line)
}
