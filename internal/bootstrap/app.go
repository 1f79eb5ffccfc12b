package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"diagnosis-backend/internal/catalog"
	"diagnosis-backend/internal/diagnosis"
	"diagnosis-backend/internal/llm"
	"diagnosis-backend/internal/llm/gemini"
	openai "diagnosis-backend/internal/llm/openai"
	"diagnosis-backend/internal/services/health"
	"diagnosis-backend/internal/shared/config"
	"diagnosis-backend/internal/shared/server"
	"diagnosis-backend/internal/shared/storage/db"
	localstore "diagnosis-backend/internal/shared/storage/object/local"
	s3store "diagnosis-backend/internal/shared/storage/object/s3"
	"diagnosis-backend/internal/shared/telemetry"
)

// App holds shared dependencies.
type App struct {
	Config  config.Config
	Router  *gin.Engine
	DB      *sql.DB
	Dataset *catalog.Dataset
	Engine  *diagnosis.Engine
	Service *diagnosis.Service

	closers []func() error
}

// Close releases provider and store connections.
func (a *App) Close() error {
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	a.closers = nil
	return first
}

// Build loads and validates the catalogue, then wires the engine, the session
// store and the router. A catalogue that fails validation stops startup.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	app := &App{Config: cfg}

	src, err := buildCatalogSource(ctx, app)
	if err != nil {
		app.Close()
		return nil, err
	}
	ds, err := catalog.Load(ctx, src)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Dataset = ds
	telemetry.Info("catalog.loaded", map[string]any{
		"source":    cfg.CatalogSource,
		"version":   ds.Version,
		"questions": len(ds.Questions),
		"menus":     len(ds.Menus),
		"animals":   len(ds.Animals),
	})

	client, err := buildLLMClient(ctx, cfg, app)
	if err != nil {
		app.Close()
		return nil, err
	}
	var enricher *diagnosis.Enricher
	if client != nil {
		enricher = &diagnosis.Enricher{Client: client, Provider: cfg.LLMProvider, Timeout: cfg.EnrichmentTimeout}
	}
	app.Engine = diagnosis.NewEngine(ds, enricher)

	store, err := buildStore(ctx, cfg, app)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Service = &diagnosis.Service{
		Engine: app.Engine,
		Store:  store,
		TTL:    cfg.SessionTTL,
		Strict: cfg.StrictAnswers,
	}

	provider := config.ProviderNone
	if enricher != nil {
		provider = cfg.LLMProvider
	}
	app.Router = server.NewRouter(server.RouterDeps{
		Config:           cfg,
		DiagnosisHandler: diagnosis.NewHandler(app.Service),
		Health:           health.NewService(ds.Version, provider),
	})
	return app, nil
}

func buildCatalogSource(ctx context.Context, app *App) (catalog.Source, error) {
	cfg := app.Config
	switch cfg.CatalogSource {
	case config.CatalogFile:
		return catalog.ObjectSource{Store: localstore.New(cfg.LocalStoreDir), Key: cfg.CatalogPath}, nil
	case config.CatalogS3:
		if strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, fmt.Errorf("CATALOG_SOURCE=s3 requires S3_BUCKET")
		}
		store, err := s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix)
		if err != nil {
			return nil, err
		}
		return catalog.ObjectSource{Store: store, Key: cfg.CatalogPath}, nil
	case config.CatalogPostgres:
		sqlDB, err := openDB(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		app.DB = sqlDB
		if !db.IsLambdaRuntime() {
			app.closers = append(app.closers, sqlDB.Close)
		}
		if err := db.RunMigrations(ctx, sqlDB); err != nil {
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		return &catalog.PGRepo{DB: sqlDB}, nil
	default:
		return catalog.EmbeddedSource{}, nil
	}
}

func openDB(ctx context.Context, databaseURL string) (*sql.DB, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, fmt.Errorf("CATALOG_SOURCE=postgres requires DATABASE_URL")
	}
	if db.IsLambdaRuntime() {
		return db.Shared(ctx, databaseURL, db.PoolFor(db.ProfileLambda))
	}
	return db.Connect(ctx, databaseURL, db.PoolFor(db.ProfileServer))
}

// buildLLMClient returns nil when enrichment is disabled. A provider named
// without its key logs a warning and runs without enrichment.
func buildLLMClient(ctx context.Context, cfg config.Config, app *App) (llm.Client, error) {
	if !cfg.EnrichmentEnabled() {
		if cfg.LLMProvider != config.ProviderNone {
			telemetry.Warn("bootstrap.enrichment_disabled", map[string]any{
				"provider": cfg.LLMProvider,
				"reason":   "missing api key",
			})
		}
		return nil, nil
	}
	switch cfg.LLMProvider {
	case config.ProviderGemini:
		client, err := gemini.New(ctx, cfg.GeminiAPIKey, cfg.LLMModel)
		if err != nil {
			return nil, fmt.Errorf("gemini client: %w", err)
		}
		app.closers = append(app.closers, client.Close)
		telemetry.Info("bootstrap.enrichment_enabled", map[string]any{"provider": cfg.LLMProvider, "model": client.Model()})
		return client, nil
	case config.ProviderOpenAI:
		client, err := openai.NewClient(cfg.OpenAIAPIKey, cfg.LLMModel, cfg.OpenAITimeout)
		if err != nil {
			return nil, fmt.Errorf("openai client: %w", err)
		}
		telemetry.Info("bootstrap.enrichment_enabled", map[string]any{"provider": cfg.LLMProvider, "model": client.Model()})
		return client, nil
	default:
		return nil, nil
	}
}

// buildStore picks Redis when REDIS_URL is set and process memory otherwise.
func buildStore(ctx context.Context, cfg config.Config, app *App) (diagnosis.Store, error) {
	if strings.TrimSpace(cfg.RedisURL) == "" {
		return diagnosis.NewMemoryStore(nil), nil
	}
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	app.closers = append(app.closers, client.Close)
	return diagnosis.NewRedisStore(client), nil
}
