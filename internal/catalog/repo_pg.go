package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotSeeded is returned when the catalogue tables are empty.
var ErrNotSeeded = errors.New("catalog not seeded")

// PGRepo stores the catalogue in Postgres and serves it as a Source.
type PGRepo struct {
	DB *sql.DB
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Load reads every table in position order.
func (r *PGRepo) Load(ctx context.Context) (*Dataset, error) {
	if r == nil || r.DB == nil {
		return nil, fmt.Errorf("catalog db is nil")
	}
	var ds Dataset
	err := r.DB.QueryRowContext(ctx, `SELECT version FROM catalog_meta WHERE id = 1`).Scan(&ds.Version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotSeeded
		}
		return nil, err
	}
	if ds.Tags, err = loadTags(ctx, r.DB); err != nil {
		return nil, fmt.Errorf("load tags: %w", err)
	}
	if ds.Menus, err = loadMenus(ctx, r.DB); err != nil {
		return nil, fmt.Errorf("load menus: %w", err)
	}
	if ds.Animals, err = loadAnimals(ctx, r.DB); err != nil {
		return nil, fmt.Errorf("load animals: %w", err)
	}
	if ds.Questions, err = loadQuestions(ctx, r.DB); err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	return &ds, nil
}

func loadTags(ctx context.Context, q queryer) ([]Tag, error) {
	rows, err := q.QueryContext(ctx, `
SELECT id, label, category, description, synonyms
FROM catalog_tags
ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Tag
	for rows.Next() {
		var t Tag
		var synonyms []byte
		if err := rows.Scan(&t.ID, &t.Label, &t.Category, &t.Description, &synonyms); err != nil {
			return nil, err
		}
		if err := unmarshalJSONB(synonyms, &t.Synonyms); err != nil {
			return nil, fmt.Errorf("tag %s synonyms: %w", t.ID, err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func loadMenus(ctx context.Context, q queryer) ([]MenuTagging, error) {
	rows, err := q.QueryContext(ctx, `
SELECT menu_id, menu_name, tags, key_reasons, constraints, reservation_url
FROM catalog_menus
ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []MenuTagging
	for rows.Next() {
		var m MenuTagging
		var tags, reasons, constraints []byte
		var reservationURL sql.NullString
		if err := rows.Scan(&m.MenuID, &m.MenuName, &tags, &reasons, &constraints, &reservationURL); err != nil {
			return nil, err
		}
		if err := unmarshalJSONB(tags, &m.Tags); err != nil {
			return nil, fmt.Errorf("menu %s tags: %w", m.MenuID, err)
		}
		if err := unmarshalJSONB(reasons, &m.KeyReasons); err != nil {
			return nil, fmt.Errorf("menu %s key_reasons: %w", m.MenuID, err)
		}
		if err := unmarshalJSONB(constraints, &m.Constraints); err != nil {
			return nil, fmt.Errorf("menu %s constraints: %w", m.MenuID, err)
		}
		if reservationURL.Valid {
			m.ReservationURL = reservationURL.String
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func loadAnimals(ctx context.Context, q queryer) ([]AnimalType, error) {
	rows, err := q.QueryContext(ctx, `
SELECT id, name, emoji, catchphrase, core_signs, recommended, one_line_advice
FROM catalog_animals
ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []AnimalType
	for rows.Next() {
		var a AnimalType
		var signs, recommended []byte
		if err := rows.Scan(&a.ID, &a.Name, &a.Emoji, &a.Catchphrase, &signs, &recommended, &a.OneLineAdvice); err != nil {
			return nil, err
		}
		if err := unmarshalJSONB(signs, &a.CoreSigns); err != nil {
			return nil, fmt.Errorf("animal %s core_signs: %w", a.ID, err)
		}
		if err := unmarshalJSONB(recommended, &a.Recommended); err != nil {
			return nil, fmt.Errorf("animal %s recommended: %w", a.ID, err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func loadQuestions(ctx context.Context, q queryer) ([]Question, error) {
	rows, err := q.QueryContext(ctx, `
SELECT id, question, type, options, scoring
FROM catalog_questions
ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Question
	for rows.Next() {
		var qu Question
		var options, scoring []byte
		if err := rows.Scan(&qu.ID, &qu.Question, &qu.Type, &options, &scoring); err != nil {
			return nil, err
		}
		if err := unmarshalJSONB(options, &qu.Options); err != nil {
			return nil, fmt.Errorf("question %s options: %w", qu.ID, err)
		}
		if err := unmarshalJSONB(scoring, &qu.Scoring); err != nil {
			return nil, fmt.Errorf("question %s scoring: %w", qu.ID, err)
		}
		out = append(out, qu)
	}
	return out, rows.Err()
}

// Replace swaps the stored catalogue for ds in one transaction. The dataset is
// validated first so a broken file never reaches the tables.
func (r *PGRepo) Replace(ctx context.Context, ds *Dataset) error {
	if r == nil || r.DB == nil {
		return fmt.Errorf("catalog db is nil")
	}
	if ds == nil {
		return fmt.Errorf("dataset is nil")
	}
	if err := ds.Validate(); err != nil {
		return err
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"catalog_questions", "catalog_animals", "catalog_menus", "catalog_tags"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	if _, err := tx.ExecContext(ctx, `
INSERT INTO catalog_meta (id, version, updated_at)
VALUES (1, $1, now())
ON CONFLICT (id) DO UPDATE SET version = EXCLUDED.version, updated_at = now()`, ds.Version); err != nil {
		return fmt.Errorf("write version: %w", err)
	}

	for i, t := range ds.Tags {
		synonyms, err := marshalJSONB(t.Synonyms, "[]")
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
INSERT INTO catalog_tags (id, position, label, category, description, synonyms)
VALUES ($1, $2, $3, $4, $5, $6)`, t.ID, i, t.Label, t.Category, t.Description, synonyms); err != nil {
			return fmt.Errorf("insert tag %s: %w", t.ID, err)
		}
	}
	for i, m := range ds.Menus {
		tags, err := marshalJSONB(m.Tags, "[]")
		if err != nil {
			return err
		}
		reasons, err := marshalJSONB(m.KeyReasons, "[]")
		if err != nil {
			return err
		}
		constraints, err := marshalJSONB(m.Constraints, "{}")
		if err != nil {
			return err
		}
		var reservationURL any
		if m.ReservationURL != "" {
			reservationURL = m.ReservationURL
		}
		if _, err := tx.ExecContext(ctx, `
INSERT INTO catalog_menus (menu_id, position, menu_name, tags, key_reasons, constraints, reservation_url)
VALUES ($1, $2, $3, $4, $5, $6, $7)`, m.MenuID, i, m.MenuName, tags, reasons, constraints, reservationURL); err != nil {
			return fmt.Errorf("insert menu %s: %w", m.MenuID, err)
		}
	}
	for i, a := range ds.Animals {
		signs, err := marshalJSONB(a.CoreSigns, "[]")
		if err != nil {
			return err
		}
		recommended, err := marshalJSONB(a.Recommended, "{}")
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
INSERT INTO catalog_animals (id, position, name, emoji, catchphrase, core_signs, recommended, one_line_advice)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`, a.ID, i, a.Name, a.Emoji, a.Catchphrase, signs, recommended, a.OneLineAdvice); err != nil {
			return fmt.Errorf("insert animal %s: %w", a.ID, err)
		}
	}
	for i, q := range ds.Questions {
		options, err := marshalJSONB(q.Options, "[]")
		if err != nil {
			return err
		}
		scoring, err := marshalJSONB(q.Scoring, "{}")
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
INSERT INTO catalog_questions (id, position, question, type, options, scoring)
VALUES ($1, $2, $3, $4, $5, $6)`, q.ID, i, q.Question, q.Type, options, scoring); err != nil {
			return fmt.Errorf("insert question %s: %w", q.ID, err)
		}
	}
	return tx.Commit()
}

func marshalJSONB(value any, empty string) (string, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return "", err
	}
	if string(data) == "null" {
		return empty, nil
	}
	return string(data), nil
}

func unmarshalJSONB(data []byte, dest any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, dest)
}

var _ Source = (*PGRepo)(nil)
