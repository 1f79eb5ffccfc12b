package diagnosis

import (
	"context"
	"errors"
	"testing"
	"time"
)

type failingStore struct{}

func (failingStore) Save(context.Context, Record, time.Duration) error {
	return errors.New("connection refused")
}

func (failingStore) Get(context.Context, string, string) (Record, error) {
	return Record{}, errors.New("connection refused")
}

func newTestService(t *testing.T, store Store) *Service {
	t.Helper()
	fixed := time.Date(2025, 10, 1, 9, 0, 0, 0, time.UTC)
	return &Service{
		Engine: NewEngine(defaultDataset(t), nil),
		Store:  store,
		TTL:    time.Hour,
		Now:    func() time.Time { return fixed },
		NewID:  func() string { return "diag-1" },
	}
}

func TestServiceCreateAndGet(t *testing.T) {
	svc := newTestService(t, NewMemoryStore(nil))
	ctx := context.Background()

	rec, err := svc.Create(ctx, "session-1", Answers{"q_main_concern": Choice("scalp")})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if rec.ID != "diag-1" || rec.Outcome != OutcomeSkipped {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if rec.Result.Animal.ID != "cat" {
		t.Fatalf("expected cat, got %s", rec.Result.Animal.ID)
	}

	got, err := svc.Get(ctx, "session-1", "diag-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Result.PrimaryMenu.MenuID != rec.Result.PrimaryMenu.MenuID {
		t.Fatalf("stored result differs")
	}
	if _, err := svc.Get(ctx, "session-2", "diag-1"); !IsNotFound(err) {
		t.Fatalf("expected not found for other session, got %v", err)
	}
}

func TestServiceStoreFailureKeepsResult(t *testing.T) {
	svc := newTestService(t, failingStore{})
	rec, err := svc.Create(context.Background(), "session-1", nil)
	if err != nil {
		t.Fatalf("store failure must not fail the diagnosis: %v", err)
	}
	if rec.Result.Animal.ID == "" {
		t.Fatalf("expected a result")
	}
}

func TestServiceStrictRejectsBadAnswers(t *testing.T) {
	svc := newTestService(t, NewMemoryStore(nil))
	svc.Strict = true
	_, err := svc.Create(context.Background(), "session-1", Answers{"q_main_concern": Level(3)})
	if !errors.Is(err, ErrInvalidAnswers) {
		t.Fatalf("expected ErrInvalidAnswers, got %v", err)
	}

	svc.Strict = false
	if _, err := svc.Create(context.Background(), "session-1", Answers{"q_main_concern": Level(3)}); err != nil {
		t.Fatalf("lenient mode should ignore bad answers, got %v", err)
	}
}
