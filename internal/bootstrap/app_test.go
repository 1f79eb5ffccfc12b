package bootstrap

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"diagnosis-backend/internal/catalog"
	"diagnosis-backend/internal/diagnosis"
	"diagnosis-backend/internal/shared/config"
)

func baseConfig() config.Config {
	return config.Config{
		Env:                  "dev",
		CatalogSource:        config.CatalogEmbedded,
		LLMProvider:          config.ProviderNone,
		SessionTTL:           time.Hour,
		DiagnoseRateLimitRPS: 1,
		DiagnoseRateBurst:    5,
	}
}

func TestBuildEmbedded(t *testing.T) {
	app, err := Build(context.Background(), baseConfig())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	defer app.Close()

	if app.Dataset == nil || app.Router == nil {
		t.Fatalf("expected dataset and router")
	}
	if _, ok := app.Service.Store.(*diagnosis.MemoryStore); !ok {
		t.Fatalf("expected memory store without REDIS_URL, got %T", app.Service.Store)
	}

	w := httptest.NewRecorder()
	app.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/questions", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestBuildFileCatalog(t *testing.T) {
	dir := t.TempDir()
	yamlCatalog := `
version: file-1
tags:
  - id: eye_strain
menu_tagging:
  - menu_id: m1
    menu_name: Menu One
    tags: [eye_strain]
animal_types:
  - id: owl
    name: Owl
question_bank:
  - id: q1
    type: single_choice
    options:
      - label: A
        value: a
    scoring:
      a: {eye_strain: 1}
`
	if err := os.WriteFile(filepath.Join(dir, "catalog.yaml"), []byte(yamlCatalog), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg := baseConfig()
	cfg.CatalogSource = config.CatalogFile
	cfg.LocalStoreDir = dir
	cfg.CatalogPath = "catalog.yaml"

	app, err := Build(context.Background(), cfg)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	defer app.Close()
	if app.Dataset.Version != "file-1" {
		t.Fatalf("expected file catalogue, got %q", app.Dataset.Version)
	}
}

func TestBuildRejectsInvalidCatalog(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "design.json"), []byte(`{"version":"broken","tags":[]}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg := baseConfig()
	cfg.CatalogSource = config.CatalogFile
	cfg.LocalStoreDir = dir
	cfg.CatalogPath = "design.json"

	if _, err := Build(context.Background(), cfg); !errors.Is(err, catalog.ErrDataIntegrity) {
		t.Fatalf("expected integrity error, got %v", err)
	}
}

func TestBuildRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := baseConfig()
	cfg.RedisURL = "redis://" + mr.Addr() + "/0"

	app, err := Build(context.Background(), cfg)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	defer app.Close()
	if _, ok := app.Service.Store.(*diagnosis.RedisStore); !ok {
		t.Fatalf("expected redis store, got %T", app.Service.Store)
	}
}

func TestBuildProviderWithoutKeyRunsDeterministic(t *testing.T) {
	cfg := baseConfig()
	cfg.LLMProvider = config.ProviderOpenAI
	app, err := Build(context.Background(), cfg)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	defer app.Close()

	res, err := app.Engine.Diagnose(context.Background(), nil)
	if err != nil {
		t.Fatalf("diagnose: %v", err)
	}
	base, _ := app.Engine.Base(nil)
	if res.Advice != base.Advice {
		t.Fatalf("expected deterministic advice without a key")
	}
}

func TestBuildPostgresRequiresURL(t *testing.T) {
	cfg := baseConfig()
	cfg.CatalogSource = config.CatalogPostgres
	if _, err := Build(context.Background(), cfg); err == nil {
		t.Fatalf("expected error without DATABASE_URL")
	}
}
