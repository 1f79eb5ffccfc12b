package diagnosis

import (
	"context"

	"diagnosis-backend/internal/catalog"
	"diagnosis-backend/internal/shared/telemetry"
)

// Engine turns answers into a diagnosis against one immutable dataset. It is
// safe for concurrent use.
type Engine struct {
	dataset  *catalog.Dataset
	enricher *Enricher
}

// NewEngine builds an engine. enricher may be nil.
func NewEngine(ds *catalog.Dataset, enricher *Enricher) *Engine {
	return &Engine{dataset: ds, enricher: enricher}
}

// Dataset returns the catalogue the engine scores against.
func (e *Engine) Dataset() *catalog.Dataset {
	return e.dataset
}

// Base computes the deterministic result without calling any provider. advice
// and personalityDescription carry the archetype's static text.
func (e *Engine) Base(answers Answers) (Result, error) {
	scores := Score(e.dataset, answers)
	if len(scores.Ignored) > 0 {
		telemetry.Debug("diagnosis.answers_ignored", map[string]any{
			"count":     len(scores.Ignored),
			"questions": scores.Ignored,
		})
	}

	animal, err := SelectArchetype(e.dataset.Animals, scores.Animals)
	if err != nil {
		return Result{}, err
	}
	ranked, err := RankMenus(e.dataset, scores.Tags, animal)
	if err != nil {
		return Result{}, err
	}

	res := Result{
		Animal:                 animal.Clone(),
		PrimaryMenu:            ranked[0].Menu.Clone(),
		AddOns:                 SelectAddOns(e.dataset, scores.Tags),
		Advice:                 animal.OneLineAdvice,
		PersonalityDescription: FallbackPersonality(animal.ID),
	}
	if len(ranked) > 1 {
		secondary := ranked[1].Menu.Clone()
		res.SecondaryMenu = &secondary
	}
	return res, nil
}

// Diagnose computes the base result and then tries enrichment. The only
// error is a catalogue integrity failure; provider problems fall back silently.
func (e *Engine) Diagnose(ctx context.Context, answers Answers) (Result, error) {
	res, _, err := e.diagnose(ctx, answers)
	return res, err
}

func (e *Engine) diagnose(ctx context.Context, answers Answers) (Result, Outcome, error) {
	base, err := e.Base(answers)
	if err != nil {
		return Result{}, "", err
	}
	res, outcome := e.enricher.Enrich(ctx, base, answers)
	return res, outcome, nil
}
