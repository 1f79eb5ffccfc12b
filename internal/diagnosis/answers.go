package diagnosis

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"diagnosis-backend/internal/catalog"
)

// Answers maps a question id to the raw JSON answer. The expected shape depends
// on the question type: a string or number for single_choice, a list of them for
// multi_choice, a number for slider_0_10.
type Answers map[string]json.RawMessage

// Choice encodes a single_choice answer.
func Choice(value string) json.RawMessage {
	b, _ := json.Marshal(value)
	return b
}

// Choices encodes a multi_choice answer.
func Choices(values ...string) json.RawMessage {
	if values == nil {
		values = []string{}
	}
	b, _ := json.Marshal(values)
	return b
}

// Level encodes a slider answer.
func Level(n float64) json.RawMessage {
	return json.RawMessage(strconv.FormatFloat(n, 'f', -1, 64))
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// choiceKey reads a string as-is and a number in its shortest form, so 1.0
// and 1 address the same option.
func choiceKey(raw json.RawMessage) (string, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return "", false
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return "", false
		}
		return s, true
	}
	var n json.Number
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	if err := dec.Decode(&n); err != nil {
		return "", false
	}
	return numberKey(n)
}

func numberKey(n json.Number) (string, bool) {
	v, err := n.Float64()
	if err != nil {
		return "", false
	}
	return strconv.FormatFloat(v, 'f', -1, 64), true
}

func choiceKeys(raw json.RawMessage) ([]string, bool) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, false
	}
	keys := make([]string, 0, len(items))
	for _, item := range items {
		key, ok := choiceKey(item)
		if !ok {
			return nil, false
		}
		keys = append(keys, key)
	}
	return keys, true
}

func sliderLevel(raw json.RawMessage) (float64, bool) {
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, false
	}
	return v, true
}

// ValidateAnswers checks an answer set against the question bank. The engine
// never needs it; it backs the strict mode of the HTTP API.
func ValidateAnswers(ds *catalog.Dataset, answers Answers) error {
	var problems []AnswerProblem
	ids := make([]string, 0, len(answers))
	for id := range answers {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		raw := answers[id]
		q, ok := ds.Question(id)
		if !ok {
			problems = append(problems, AnswerProblem{QuestionID: id, Issue: "unknown question"})
			continue
		}
		if isNull(raw) {
			continue
		}
		if issue := checkAnswer(q, raw); issue != "" {
			problems = append(problems, AnswerProblem{QuestionID: id, Issue: issue})
		}
	}
	if len(problems) > 0 {
		return &AnswerError{Problems: problems}
	}
	return nil
}

func checkAnswer(q catalog.Question, raw json.RawMessage) string {
	switch q.Type {
	case catalog.TypeSingleChoice:
		key, ok := choiceKey(raw)
		if !ok {
			return "expected a string or number"
		}
		if !hasOption(q, key) {
			return fmt.Sprintf("unknown option %q", key)
		}
	case catalog.TypeMultiChoice:
		keys, ok := choiceKeys(raw)
		if !ok {
			return "expected a list of strings or numbers"
		}
		for _, key := range keys {
			if !hasOption(q, key) {
				return fmt.Sprintf("unknown option %q", key)
			}
		}
	case catalog.TypeSlider:
		v, ok := sliderLevel(raw)
		if !ok {
			return "expected a number"
		}
		if r := q.Options.Range; r != nil && (v < float64(r.Min) || v > float64(r.Max)) {
			return fmt.Sprintf("value %v outside %d..%d", v, r.Min, r.Max)
		}
	}
	return ""
}

func hasOption(q catalog.Question, key string) bool {
	for _, opt := range q.Options.Choices {
		if string(opt.Value) == key {
			return true
		}
	}
	return false
}
