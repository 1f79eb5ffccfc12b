package main

// Apply the catalogue schema and optionally seed it from a file:
//   go run ./cmd/migrate -seed internal/catalog/data/design.json

import (
	"context"
	"flag"
	"os"

	"diagnosis-backend/internal/catalog"
	"diagnosis-backend/internal/shared/config"
	"diagnosis-backend/internal/shared/storage/db"
	"diagnosis-backend/internal/shared/telemetry"
)

func main() {
	seed := flag.String("seed", "", "catalogue file (.json, .yaml) to load into Postgres after migrating")
	flag.Parse()

	cfg := config.Load()
	ctx := context.Background()

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.PoolFor(db.ProfileMigrate))
	if err != nil {
		telemetry.Error("migrate.connect_failed", map[string]any{"err": err})
		os.Exit(1)
	}
	defer sqlDB.Close()

	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		telemetry.Error("migrate.failed", map[string]any{"err": err})
		os.Exit(1)
	}
	if *seed == "" {
		return
	}

	f, err := os.Open(*seed)
	if err != nil {
		telemetry.Error("migrate.seed_open_failed", map[string]any{"path": *seed, "err": err})
		os.Exit(1)
	}
	defer f.Close()
	ds, err := catalog.Decode(f, catalog.FormatFromName(*seed))
	if err != nil {
		telemetry.Error("migrate.seed_decode_failed", map[string]any{"path": *seed, "err": err})
		os.Exit(1)
	}
	repo := &catalog.PGRepo{DB: sqlDB}
	if err := repo.Replace(ctx, ds); err != nil {
		telemetry.Error("migrate.seed_failed", map[string]any{"path": *seed, "err": err})
		os.Exit(1)
	}
	telemetry.Info("migrate.seeded", map[string]any{"version": ds.Version, "questions": len(ds.Questions)})
}
