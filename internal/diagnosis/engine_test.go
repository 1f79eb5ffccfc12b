package diagnosis

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"diagnosis-backend/internal/catalog"
)

func menuIDs(menus []catalog.MenuTagging) []string {
	out := make([]string, 0, len(menus))
	for _, m := range menus {
		out = append(out, m.MenuID)
	}
	return out
}

func TestBaseEmptyAnswers(t *testing.T) {
	eng := NewEngine(defaultDataset(t), nil)
	res, err := eng.Base(Answers{})
	if err != nil {
		t.Fatalf("base: %v", err)
	}
	if res.Animal.ID != "owl" {
		t.Fatalf("expected first archetype owl, got %s", res.Animal.ID)
	}
	if res.PrimaryMenu.MenuID != "eye_care_spa_45" {
		t.Fatalf("expected archetype bonus to pick eye_care_spa_45, got %s", res.PrimaryMenu.MenuID)
	}
	if res.SecondaryMenu == nil || res.SecondaryMenu.MenuID != "deep_sleep_spa_60" {
		t.Fatalf("expected deep_sleep_spa_60 as secondary, got %+v", res.SecondaryMenu)
	}
	if res.AddOns == nil || len(res.AddOns) != 0 {
		t.Fatalf("expected empty add-on list, got %#v", res.AddOns)
	}
	if res.Advice != res.Animal.OneLineAdvice {
		t.Fatalf("advice should be the archetype line")
	}
	if res.PersonalityDescription != FallbackPersonality("owl") {
		t.Fatalf("expected fallback personality")
	}
}

func TestBaseShoulderProfile(t *testing.T) {
	eng := NewEngine(defaultDataset(t), nil)
	res, err := eng.Base(Answers{
		"q_main_concern":   Choice("shoulders"),
		"q_shoulder_level": Level(8),
	})
	if err != nil {
		t.Fatalf("base: %v", err)
	}
	if res.Animal.ID != "bear" {
		t.Fatalf("expected bear, got %s", res.Animal.ID)
	}
	if res.PrimaryMenu.MenuID != "shoulder_neck_spa_50" {
		t.Fatalf("expected shoulder_neck_spa_50, got %s", res.PrimaryMenu.MenuID)
	}
	if res.SecondaryMenu == nil || res.SecondaryMenu.MenuID != "eye_care_spa_45" {
		t.Fatalf("expected eye_care_spa_45 as secondary, got %+v", res.SecondaryMenu)
	}
}

func TestBaseAddOnRules(t *testing.T) {
	eng := NewEngine(defaultDataset(t), nil)
	tests := []struct {
		name    string
		answers Answers
		want    []string
	}{
		{
			name:    "gray hair only",
			answers: Answers{"q_recent_signs": Choices("gray")},
			want:    []string{"root_color"},
		},
		{
			name:    "eye strain",
			answers: Answers{"q_screen_time": Level(9)},
			want:    []string{"hot_spa_addon"},
		},
		{
			name:    "every rule",
			answers: Answers{"q_extra_care": Choices("face", "color", "warm")},
			want:    []string{"hot_spa_addon", "lala_peel_face", "root_color"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := eng.Base(tt.answers)
			if err != nil {
				t.Fatalf("base: %v", err)
			}
			if diff := cmp.Diff(tt.want, menuIDs(res.AddOns)); diff != "" {
				t.Fatalf("add-ons mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBaseSkipsAddOnMissingFromCatalog(t *testing.T) {
	ds := tinyDataset(t)
	if _, ok := ds.MenuByID("hot_spa_addon"); ok {
		t.Fatalf("tiny dataset should not carry hot_spa_addon")
	}
	res, err := NewEngine(ds, nil).Base(Answers{"q_tie": Choice("1")})
	if err != nil {
		t.Fatalf("base: %v", err)
	}
	if res.AddOns == nil || len(res.AddOns) != 0 {
		t.Fatalf("expected empty add-on list, got %#v", res.AddOns)
	}

	got := SelectAddOns(ds, map[string]int{"cold_sensitivity": 3, "gray_hair": 1})
	if diff := cmp.Diff([]string{"root_color"}, menuIDs(got)); diff != "" {
		t.Fatalf("add-ons mismatch (-want +got):\n%s", diff)
	}
}

func TestBaseSingleEligibleMenuHasNoSecondary(t *testing.T) {
	ds := tinyDataset(t)
	ds.Menus = ds.Menus[:1]
	ds.Animals[1].Recommended.PrimaryMenus = nil
	res, err := NewEngine(ds, nil).Base(Answers{})
	if err != nil {
		t.Fatalf("base: %v", err)
	}
	if res.PrimaryMenu.MenuID != "eyes" {
		t.Fatalf("expected eyes as primary, got %s", res.PrimaryMenu.MenuID)
	}
	if res.SecondaryMenu != nil {
		t.Fatalf("expected no secondary menu, got %+v", res.SecondaryMenu)
	}
}

func TestBaseNeverRecommendsRestrictedMenu(t *testing.T) {
	ds := defaultDataset(t)
	eng := NewEngine(ds, nil)
	main, _ := ds.Question("q_main_concern")
	extra, _ := ds.Question("q_extra_care")
	for _, m := range main.Options.Choices {
		for _, x := range extra.Options.Choices {
			for level := 0; level <= 10; level += 5 {
				res, err := eng.Base(Answers{
					"q_main_concern": Choice(string(m.Value)),
					"q_extra_care":   Choices(string(x.Value)),
					"q_screen_time":  Level(float64(level)),
				})
				if err != nil {
					t.Fatalf("base: %v", err)
				}
				if !res.PrimaryMenu.Constraints.Recommendable() {
					t.Fatalf("primary %s is add-on only", res.PrimaryMenu.MenuID)
				}
				if res.SecondaryMenu != nil && !res.SecondaryMenu.Constraints.Recommendable() {
					t.Fatalf("secondary %s is add-on only", res.SecondaryMenu.MenuID)
				}
			}
		}
	}
}

func TestBaseDoesNotAliasDataset(t *testing.T) {
	ds := defaultDataset(t)
	eng := NewEngine(ds, nil)
	res, err := eng.Base(nil)
	if err != nil {
		t.Fatalf("base: %v", err)
	}
	res.PrimaryMenu.Tags[0] = "mutated"
	res.Animal.CoreSigns = append(res.Animal.CoreSigns[:0], "mutated")
	again, err := eng.Base(nil)
	if err != nil {
		t.Fatalf("base: %v", err)
	}
	if again.PrimaryMenu.Tags[0] == "mutated" || again.Animal.CoreSigns[0] == "mutated" {
		t.Fatalf("result mutation leaked into the shared dataset")
	}
}

func TestSelectArchetypeTieGoesToFirst(t *testing.T) {
	ds := tinyDataset(t)
	scores := Score(ds, Answers{"q_tie": Choice("both")}).Animals
	got, err := SelectArchetype(ds.Animals, scores)
	if err != nil || got.ID != "owl" {
		t.Fatalf("expected owl on a tie, got %s (%v)", got.ID, err)
	}
	reversed := []catalog.AnimalType{ds.Animals[1], ds.Animals[0]}
	got, err = SelectArchetype(reversed, scores)
	if err != nil || got.ID != "bear" {
		t.Fatalf("expected bear when declared first, got %s (%v)", got.ID, err)
	}
}

func TestSelectArchetypeEmptyTable(t *testing.T) {
	_, err := SelectArchetype(nil, map[string]int{})
	if !errors.Is(err, catalog.ErrDataIntegrity) {
		t.Fatalf("expected integrity error, got %v", err)
	}
}

func TestRankMenusBonusByName(t *testing.T) {
	ds := tinyDataset(t)
	bear := ds.Animals[1]
	ranked, err := RankMenus(ds, map[string]int{"eye_strain": 4}, bear)
	if err != nil {
		t.Fatalf("rank: %v", err)
	}
	got := []RankedMenu{}
	for _, r := range ranked {
		got = append(got, RankedMenu{Menu: catalog.MenuTagging{MenuID: r.Menu.MenuID}, Score: r.Score})
	}
	want := []RankedMenu{
		{Menu: catalog.MenuTagging{MenuID: "sleep"}, Score: 5},
		{Menu: catalog.MenuTagging{MenuID: "eyes"}, Score: 4},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("ranking mismatch (-want +got):\n%s", diff)
	}
}

func TestRankMenusNoEligible(t *testing.T) {
	ds := tinyDataset(t)
	for i := range ds.Menus {
		ds.Menus[i].Constraints.AddOnOnly = true
	}
	if _, err := RankMenus(ds, nil, ds.Animals[0]); !errors.Is(err, catalog.ErrDataIntegrity) {
		t.Fatalf("expected integrity error, got %v", err)
	}
}

func TestDiagnoseWithoutProviderIsDeterministic(t *testing.T) {
	eng := NewEngine(defaultDataset(t), nil)
	answers := Answers{
		"q_main_concern": Choice("mind"),
		"q_stress_level": Level(9),
		"q_stay_length":  Choice("short"),
	}
	first, err := eng.Diagnose(context.Background(), answers)
	if err != nil {
		t.Fatalf("diagnose: %v", err)
	}
	second, err := eng.Diagnose(context.Background(), answers)
	if err != nil {
		t.Fatalf("diagnose: %v", err)
	}
	a, _ := json.Marshal(first)
	b, _ := json.Marshal(second)
	if string(a) != string(b) {
		t.Fatalf("expected byte-identical results:\n%s\n%s", a, b)
	}
	base, _ := eng.Base(answers)
	if diff := cmp.Diff(base, first); diff != "" {
		t.Fatalf("diagnose without provider should equal base (-want +got):\n%s", diff)
	}
}

func TestDiagnoseEnrichment(t *testing.T) {
	answers := Answers{"q_main_concern": Choice("sleep")}
	base, err := NewEngine(defaultDataset(t), nil).Base(answers)
	if err != nil {
		t.Fatalf("base: %v", err)
	}

	tests := []struct {
		name    string
		client  *fakeClient
		timeout time.Duration
		outcome Outcome
		enrich  bool
	}{
		{
			name:    "success with fences",
			client:  &fakeClient{reply: "```json\n{\"personality_description\":\"静かな夜型\",\"advice\":\"湯船で温まって\"}\n```"},
			outcome: OutcomeSucceeded,
			enrich:  true,
		},
		{
			name:    "malformed reply",
			client:  &fakeClient{reply: "I'm sorry, here is some prose"},
			outcome: OutcomeFailed,
		},
		{
			name:    "missing field",
			client:  &fakeClient{reply: `{"advice":"only advice"}`},
			outcome: OutcomeFailed,
		},
		{
			name:    "provider error",
			client:  &fakeClient{err: errors.New("503 from provider")},
			outcome: OutcomeFailed,
		},
		{
			name:    "timeout",
			client:  &fakeClient{block: true},
			timeout: 20 * time.Millisecond,
			outcome: OutcomeFailed,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng := NewEngine(defaultDataset(t), &Enricher{Client: tt.client, Provider: "fake", Timeout: tt.timeout})
			res, outcome, err := eng.diagnose(context.Background(), answers)
			if err != nil {
				t.Fatalf("diagnose: %v", err)
			}
			if outcome != tt.outcome {
				t.Fatalf("outcome = %s, want %s", outcome, tt.outcome)
			}
			calls := tt.client.calls.Load()
			if calls > 1 || (!tt.client.block && calls != 1) {
				t.Fatalf("expected a single provider call, got %d", calls)
			}
			if !tt.enrich {
				if diff := cmp.Diff(base, res); diff != "" {
					t.Fatalf("failed enrichment must return the base result (-want +got):\n%s", diff)
				}
				return
			}
			if res.Advice != "湯船で温まって" || res.PersonalityDescription != "静かな夜型" {
				t.Fatalf("narrative not applied: %+v", res)
			}
			res.Advice = base.Advice
			res.PersonalityDescription = base.PersonalityDescription
			if diff := cmp.Diff(base, res); diff != "" {
				t.Fatalf("enrichment changed more than the narrative (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEnrichHonoursCallerCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	e := &Enricher{Client: &fakeClient{block: true}, Provider: "fake"}
	base := Result{Advice: "keep"}
	res, outcome := e.Enrich(ctx, base, nil)
	if outcome != OutcomeFailed || res.Advice != "keep" {
		t.Fatalf("expected failed outcome with base result, got %s %+v", outcome, res)
	}
}

func TestParseNarrative(t *testing.T) {
	n, err := ParseNarrative("```\n{\"personality_description\":\" a \",\"advice\":\"b\"}\n```")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if n.PersonalityDescription != "a" || n.Advice != "b" {
		t.Fatalf("unexpected narrative: %+v", n)
	}
	if _, err := ParseNarrative(`{"personality_description":"","advice":"b"}`); err == nil {
		t.Fatalf("expected empty field to be rejected")
	}
}

func TestBuildPromptMentionsResult(t *testing.T) {
	eng := NewEngine(defaultDataset(t), nil)
	answers := Answers{"q_main_concern": Choice("eyes")}
	base, err := eng.Base(answers)
	if err != nil {
		t.Fatalf("base: %v", err)
	}
	prompt := BuildPrompt(base, answers)
	for _, want := range []string{base.Animal.Name, base.PrimaryMenu.MenuName, `"q_main_concern":"eyes"`, "personality_description"} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q", want)
		}
	}
}
