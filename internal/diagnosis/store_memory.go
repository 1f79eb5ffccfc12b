package diagnosis

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps records in process memory and is safe for concurrent use.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	rec     Record
	expires time.Time
}

// NewMemoryStore constructs a MemoryStore. now defaults to time.Now.
func NewMemoryStore(now func() time.Time) *MemoryStore {
	if now == nil {
		now = time.Now
	}
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     now,
	}
}

// Save stores rec until ttl elapses. Expired entries are swept on write.
func (s *MemoryStore) Save(ctx context.Context, rec Record, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, e := range s.entries {
		if !now.Before(e.expires) {
			delete(s.entries, k)
		}
	}
	s.entries[storeKey(rec.SessionID, rec.ID)] = memoryEntry{rec: rec, expires: now.Add(ttl)}
	return nil
}

// Get returns a live record for the session.
func (s *MemoryStore) Get(ctx context.Context, sessionID, id string) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[storeKey(sessionID, id)]
	if !ok || !s.now().Before(e.expires) {
		return Record{}, ErrNotFound
	}
	return e.rec, nil
}

func storeKey(sessionID, id string) string {
	return "diagnosis:" + sessionID + ":" + id
}

var _ Store = (*MemoryStore)(nil)
