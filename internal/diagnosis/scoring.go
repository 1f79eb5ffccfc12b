package diagnosis

import (
	"diagnosis-backend/internal/catalog"
)

// Slider thresholds. Values below sliderMid resolve no bucket.
const (
	sliderMid  = 4
	sliderHigh = 7
)

// Scores are the per-invocation accumulators. Every tag and archetype id of the
// dataset is present, starting at zero.
type Scores struct {
	Tags    map[string]int
	Animals map[string]int
	// Ignored lists question ids whose answers had the wrong shape.
	Ignored []string
}

// SliderBucket maps a slider value to its scoring key.
func SliderBucket(v float64) (string, bool) {
	switch {
	case v >= sliderHigh:
		return catalog.BucketHigh, true
	case v >= sliderMid:
		return catalog.BucketMid, true
	default:
		return "", false
	}
}

// Score accumulates weights for every answered question in bank order.
// Unanswered questions, unknown option keys and unknown targets contribute nothing.
func Score(ds *catalog.Dataset, answers Answers) Scores {
	s := Scores{
		Tags:    make(map[string]int, len(ds.Tags)),
		Animals: make(map[string]int, len(ds.Animals)),
	}
	for _, t := range ds.Tags {
		s.Tags[t.ID] = 0
	}
	for _, a := range ds.Animals {
		s.Animals[a.ID] = 0
	}

	for _, q := range ds.Questions {
		raw, ok := answers[q.ID]
		if !ok || isNull(raw) {
			continue
		}
		keys, ok := scoringKeys(q, raw)
		if !ok {
			s.Ignored = append(s.Ignored, q.ID)
			continue
		}
		for _, key := range keys {
			s.apply(ds, q.Scoring[key])
		}
	}
	return s
}

func scoringKeys(q catalog.Question, raw []byte) ([]string, bool) {
	switch q.Type {
	case catalog.TypeSingleChoice:
		key, ok := choiceKey(raw)
		if !ok {
			return nil, false
		}
		return []string{key}, true
	case catalog.TypeMultiChoice:
		return choiceKeys(raw)
	case catalog.TypeSlider:
		v, ok := sliderLevel(raw)
		if !ok {
			return nil, false
		}
		if bucket, ok := SliderBucket(v); ok {
			return []string{bucket}, true
		}
		return nil, true
	default:
		return nil, false
	}
}

// apply adds each weight to the tag and archetype accumulators independently,
// so an id present in both tables scores in both.
func (s *Scores) apply(ds *catalog.Dataset, weights map[string]int) {
	for target, w := range weights {
		if ds.IsTag(target) {
			s.Tags[target] += w
		}
		if ds.IsAnimal(target) {
			s.Animals[target] += w
		}
	}
}
