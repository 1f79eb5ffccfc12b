package diagnosis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"diagnosis-backend/internal/llm"
	"diagnosis-backend/internal/shared/metrics"
	"diagnosis-backend/internal/shared/telemetry"
)

// Outcome reports what enrichment did to a result.
type Outcome string

const (
	OutcomeSkipped   Outcome = "skipped"
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeFailed    Outcome = "failed"
)

// Failure reasons logged with diagnosis.enrichment_failed.
const (
	reasonTransport = "transport"
	reasonTimeout   = "timeout"
	reasonMalformed = "malformed"
)

var errEnrichmentTimeout = errors.New("enrichment timed out")

// Narrative is the JSON object the provider is asked to return.
type Narrative struct {
	PersonalityDescription string `json:"personality_description"`
	Advice                 string `json:"advice"`
}

// Enricher rewrites advice and personality text with a text provider. A nil
// Client means no provider is configured.
type Enricher struct {
	Client   llm.Client
	Provider string
	// Timeout bounds one provider call; zero leaves it to the caller's context.
	Timeout time.Duration
}

// Enabled reports whether a provider is wired.
func (e *Enricher) Enabled() bool {
	return e != nil && e.Client != nil
}

// Enrich returns base with provider text applied, or base unchanged on any
// failure. It never returns an error.
func (e *Enricher) Enrich(ctx context.Context, base Result, answers Answers) (Result, Outcome) {
	if !e.Enabled() {
		metrics.IncEnrichmentSkipped()
		return base, OutcomeSkipped
	}

	start := time.Now()
	raw, err := e.complete(ctx, BuildPrompt(base, answers))
	metrics.ObserveEnrichmentDurationMs(metrics.SinceMillis(start))
	if err != nil {
		reason := reasonTransport
		if errors.Is(err, errEnrichmentTimeout) || errors.Is(err, context.DeadlineExceeded) {
			reason = reasonTimeout
		}
		e.fail(reason, err)
		return base, OutcomeFailed
	}

	n, err := ParseNarrative(raw)
	if err != nil {
		e.fail(reasonMalformed, err)
		return base, OutcomeFailed
	}
	metrics.IncEnrichmentSucceeded()
	out := base
	out.Advice = n.Advice
	out.PersonalityDescription = n.PersonalityDescription
	return out, OutcomeSucceeded
}

// complete races the provider call against the timeout and the caller's context.
func (e *Enricher) complete(ctx context.Context, prompt string) (string, error) {
	callCtx := ctx
	if e.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	type reply struct {
		text string
		err  error
	}
	done := make(chan reply, 1)
	go func() {
		text, err := e.Client.Complete(callCtx, prompt)
		done <- reply{text: text, err: err}
	}()

	select {
	case r := <-done:
		return r.text, r.err
	case <-callCtx.Done():
		if ctx.Err() == nil {
			return "", errEnrichmentTimeout
		}
		return "", ctx.Err()
	}
}

func (e *Enricher) fail(reason string, err error) {
	metrics.IncEnrichmentFailed()
	telemetry.Warn("diagnosis.enrichment_failed", map[string]any{
		"provider": e.Provider,
		"reason":   reason,
		"err":      err,
	})
}

// ParseNarrative strips code fences and decodes the provider JSON. Both
// fields must be present and non-empty.
func ParseNarrative(raw string) (Narrative, error) {
	var n Narrative
	if err := json.Unmarshal([]byte(llm.StripCodeFences(raw)), &n); err != nil {
		return Narrative{}, fmt.Errorf("decode narrative: %w", err)
	}
	n.Advice = strings.TrimSpace(n.Advice)
	n.PersonalityDescription = strings.TrimSpace(n.PersonalityDescription)
	if n.Advice == "" || n.PersonalityDescription == "" {
		return Narrative{}, fmt.Errorf("narrative missing advice or personality_description")
	}
	return n, nil
}

// BuildPrompt writes the concierge prompt for a base result.
func BuildPrompt(base Result, answers Answers) string {
	answerJSON, err := json.Marshal(answers)
	if err != nil || answers == nil {
		answerJSON = []byte("{}")
	}

	var b strings.Builder
	b.WriteString("あなたは「森の日々」というヘッドスパサロンの診断コンシェルジュです。\n")
	b.WriteString("ユーザーの回答に基づいて、以下の診断結果が出ました。\n\n")
	b.WriteString("【診断結果】\n")
	fmt.Fprintf(&b, "- お疲れタイプ: %s (%s)\n", base.Animal.Name, base.Animal.Catchphrase)
	fmt.Fprintf(&b, "- おすすめメニュー: %s\n", base.PrimaryMenu.MenuName)
	fmt.Fprintf(&b, "- 理由: %s\n\n", strings.Join(base.PrimaryMenu.KeyReasons, ", "))
	b.WriteString("【ユーザーの回答状況】\n")
	b.Write(answerJSON)
	b.WriteString("\n\n")
	b.WriteString("このユーザーに向けて、以下の2つの項目を含むJSONオブジェクトだけを出力してください。\n\n")
	b.WriteString("1. personality_description (100文字以内):\n")
	b.WriteString("   「あなたは〇〇なタイプかも？」という形式で、動物タイプの特徴と回答から推測される傾向を優しく伝えてください。\n")
	b.WriteString("2. advice (150文字以内):\n")
	b.WriteString("   「だからこそ、〇〇なケアがおすすめです」という流れで、日常でできる具体的なケアをやさしく提案し、今の疲れへの共感を添えてください。\n\n")
	b.WriteString("※口調は丁寧で、少し神秘的かつ癒やされる雰囲気で（「森の賢者」のように）。\n")
	return b.String()
}
