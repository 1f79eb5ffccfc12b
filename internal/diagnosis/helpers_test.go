package diagnosis

import (
	"context"
	"sync/atomic"
	"testing"

	"diagnosis-backend/internal/catalog"
)

func defaultDataset(t *testing.T) *catalog.Dataset {
	t.Helper()
	ds, err := catalog.Default()
	if err != nil {
		t.Fatalf("load default catalog: %v", err)
	}
	return ds
}

// tinyDataset has two archetypes with tied scoring paths and one menu per tag.
func tinyDataset(t *testing.T) *catalog.Dataset {
	t.Helper()
	ds := &catalog.Dataset{
		Version: "tiny",
		Tags: []catalog.Tag{
			{ID: "eye_strain"}, {ID: "insomnia"}, {ID: "gray_hair"}, {ID: "owl"},
		},
		Menus: []catalog.MenuTagging{
			{MenuID: "eyes", MenuName: "Eyes", Tags: []string{"eye_strain"}},
			{MenuID: "sleep", MenuName: "Sleep", Tags: []string{"insomnia"}},
			{MenuID: "root_color", MenuName: "Root", Tags: []string{"gray_hair"}, Constraints: catalog.MenuConstraints{RequiresSpaWith: true}},
		},
		Animals: []catalog.AnimalType{
			{ID: "owl", Name: "Owl", OneLineAdvice: "rest your eyes"},
			{ID: "bear", Name: "Bear", OneLineAdvice: "drop your shoulders", Recommended: catalog.Recommended{PrimaryMenus: []string{"Sleep"}}},
		},
		Questions: []catalog.Question{
			{
				ID:   "q_tie",
				Type: catalog.TypeSingleChoice,
				Options: catalog.Options{Choices: []catalog.Option{
					{Label: "both", Value: "both"},
					{Label: "one", Value: "1"},
				}},
				Scoring: map[string]map[string]int{
					"both": {"owl": 2, "bear": 2},
					"1":    {"eye_strain": 1},
				},
			},
			{
				ID:      "q_level",
				Type:    catalog.TypeSlider,
				Options: catalog.Options{Range: &catalog.SliderRange{Min: 0, Max: 10}},
				Scoring: map[string]map[string]int{
					"low":  {"insomnia": 9},
					"mid":  {"insomnia": 1},
					"high": {"insomnia": 3},
				},
			},
		},
	}
	if err := ds.Validate(); err != nil {
		t.Fatalf("tiny dataset invalid: %v", err)
	}
	return ds
}

type fakeClient struct {
	reply string
	err   error
	// block waits for the context before answering.
	block bool
	calls atomic.Int32
}

func (f *fakeClient) Complete(ctx context.Context, prompt string) (string, error) {
	f.calls.Add(1)
	if f.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return f.reply, f.err
}
