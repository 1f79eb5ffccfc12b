package db

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func withOpener(t *testing.T, open func(driver, dsn string) (*sql.DB, error)) {
	t.Helper()
	prev := openDB
	openDB = open
	t.Cleanup(func() { openDB = prev })

	sharedMu.Lock()
	sharedDB = nil
	sharedMu.Unlock()
	t.Cleanup(func() {
		sharedMu.Lock()
		sharedDB = nil
		sharedMu.Unlock()
	})
}

func mockOpener(t *testing.T) func(string, string) (*sql.DB, error) {
	return func(string, string) (*sql.DB, error) {
		db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		if err != nil {
			t.Fatalf("sqlmock: %v", err)
		}
		mock.ExpectPing()
		return db, nil
	}
}

func TestPoolForAppliesEnvOverrides(t *testing.T) {
	t.Setenv("DB_MAX_OPEN_CONNS", "7")
	t.Setenv("DB_MAX_IDLE_CONNS", "3")
	t.Setenv("DB_CONN_MAX_LIFETIME", "20m")
	t.Setenv("DB_CONN_MAX_IDLE_TIME", "45s")
	t.Setenv("DB_PING_TIMEOUT", "1s")

	got := PoolFor(ProfileServer)
	want := Pool{MaxOpenConns: 7, MaxIdleConns: 3, ConnMaxLifetime: 20 * time.Minute, ConnMaxIdleTime: 45 * time.Second, PingTimeout: time.Second}
	if got != want {
		t.Fatalf("pool = %+v, want %+v", got, want)
	}
}

func TestPoolForIgnoresInvalidEnv(t *testing.T) {
	t.Setenv("DB_MAX_OPEN_CONNS", "many")
	if got := PoolFor(ProfileLambda); got.MaxOpenConns != 2 {
		t.Fatalf("expected lambda default of 2, got %d", got.MaxOpenConns)
	}
}

func TestConnectAppliesPool(t *testing.T) {
	withOpener(t, mockOpener(t))
	db, err := Connect(context.Background(), "postgres://ignored", Pool{MaxOpenConns: 3})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer db.Close()
	if got := db.Stats().MaxOpenConnections; got != 3 {
		t.Fatalf("expected MaxOpenConnections=3, got %d", got)
	}
}

func TestConnectRequiresURL(t *testing.T) {
	if _, err := Connect(context.Background(), " ", Pool{}); err == nil {
		t.Fatalf("expected error for empty url")
	}
}

func TestSharedReusesAndRetries(t *testing.T) {
	calls := 0
	mocked := mockOpener(t)
	withOpener(t, func(driver, dsn string) (*sql.DB, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("dial tcp: connection refused")
		}
		return mocked(driver, dsn)
	})

	if _, err := Shared(context.Background(), "postgres://ignored", PoolFor(ProfileLambda)); err == nil {
		t.Fatalf("expected first attempt to fail")
	}
	db1, err := Shared(context.Background(), "postgres://ignored", PoolFor(ProfileLambda))
	if err != nil {
		t.Fatalf("expected retry to succeed: %v", err)
	}
	db2, err := Shared(context.Background(), "postgres://ignored", PoolFor(ProfileLambda))
	if err != nil {
		t.Fatalf("shared reuse: %v", err)
	}
	if db1 != db2 || calls != 2 {
		t.Fatalf("expected one shared handle after retry, calls=%d", calls)
	}
}
