package diagnosis

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"diagnosis-backend/internal/shared/metrics"
	"diagnosis-backend/internal/shared/telemetry"
)

const defaultTTL = 2 * time.Hour

// Service runs diagnoses for HTTP sessions and keeps the results.
type Service struct {
	Engine *Engine
	Store  Store
	TTL    time.Duration
	// Strict rejects answer sets that do not match the question bank.
	Strict bool

	Now   func() time.Time
	NewID func() string
}

// Create diagnoses answers for a session. A store failure is logged and the
// record is still returned, since the result itself is valid.
func (s *Service) Create(ctx context.Context, sessionID string, answers Answers) (Record, error) {
	if s.Strict {
		if err := ValidateAnswers(s.Engine.Dataset(), answers); err != nil {
			return Record{}, err
		}
	}

	res, outcome, err := s.Engine.diagnose(ctx, answers)
	if err != nil {
		metrics.IncDiagnosisFailed()
		telemetry.Error("diagnosis.failed", map[string]any{
			"session_id": sessionID,
			"err":        err,
		})
		return Record{}, err
	}
	metrics.IncDiagnosis()

	rec := Record{
		ID:        s.newID(),
		SessionID: sessionID,
		Result:    res,
		Outcome:   outcome,
		CreatedAt: s.now().UTC(),
	}
	if s.Store != nil {
		if err := s.Store.Save(ctx, rec, s.ttl()); err != nil {
			telemetry.Error("diagnosis.store_failed", map[string]any{
				"session_id":   sessionID,
				"diagnosis_id": rec.ID,
				"err":          err,
			})
		}
	}
	telemetry.Info("diagnosis.created", map[string]any{
		"session_id":   sessionID,
		"diagnosis_id": rec.ID,
		"animal":       res.Animal.ID,
		"primary_menu": res.PrimaryMenu.MenuID,
		"add_ons":      len(res.AddOns),
		"enrichment":   string(outcome),
	})
	return rec, nil
}

// Get returns a stored diagnosis belonging to the session.
func (s *Service) Get(ctx context.Context, sessionID, id string) (Record, error) {
	if s.Store == nil || strings.TrimSpace(id) == "" {
		return Record{}, ErrNotFound
	}
	rec, err := s.Store.Get(ctx, sessionID, id)
	if err != nil {
		return Record{}, err
	}
	// Keys are session-scoped already; this guards stores that are not.
	if rec.SessionID != sessionID {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

// IsNotFound reports whether err means the diagnosis is unavailable.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func (s *Service) ttl() time.Duration {
	if s.TTL > 0 {
		return s.TTL
	}
	return defaultTTL
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) newID() string {
	if s.NewID != nil {
		return s.NewID()
	}
	return uuid.NewString()
}
