package diagnosis

import (
	"context"
	"time"
)

// Record is a stored diagnosis, scoped to the session that created it.
type Record struct {
	ID        string    `json:"id"`
	SessionID string    `json:"sessionId"`
	Result    Result    `json:"result"`
	Outcome   Outcome   `json:"outcome"`
	CreatedAt time.Time `json:"createdAt"`
}

// Store keeps diagnoses for the lifetime of a browser session.
type Store interface {
	Save(ctx context.Context, rec Record, ttl time.Duration) error
	// Get returns ErrNotFound for unknown, expired or foreign-session records.
	Get(ctx context.Context, sessionID, id string) (Record, error)
}
