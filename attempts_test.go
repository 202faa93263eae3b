package vitrine

import (
	"path/filepath"
	"testing"
	"time"
)

func setupSQLiteAttempts(t *testing.T) *SQLiteAttemptStore {
	t.Helper()
	store, err := NewSQLiteAttemptStore(filepath.Join(t.TempDir(), "attempts.db"))
	if err != nil {
		t.Fatalf("failed to create attempt store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteAttemptStoreRoundTrip(t *testing.T) {
	store := setupSQLiteAttempts(t)
	ip := "203.0.113.60"
	now := time.Now().Truncate(time.Second)

	count, _, err := store.Get(ip)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if count != 0 {
		t.Errorf("fresh ip count = %d, want 0", count)
	}

	for i := 0; i < 3; i++ {
		if err := store.Increment(ip, now); err != nil {
			t.Fatalf("Increment failed: %v", err)
		}
	}

	count, last, err := store.Get(ip)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if count != 3 {
		t.Errorf("count = %d, want 3", count)
	}
	if !last.Equal(now) {
		t.Errorf("last = %v, want %v", last, now)
	}

	if err := store.Clear(ip); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	count, _, _ = store.Get(ip)
	if count != 0 {
		t.Errorf("count after clear = %d, want 0", count)
	}
}

func TestSQLiteAttemptStorePurge(t *testing.T) {
	store := setupSQLiteAttempts(t)
	now := time.Now()

	if err := store.Increment("203.0.113.61", now.Add(-time.Hour)); err != nil {
		t.Fatalf("Increment failed: %v", err)
	}
	if err := store.Increment("203.0.113.62", now); err != nil {
		t.Fatalf("Increment failed: %v", err)
	}

	if err := store.PurgeBefore(now.Add(-time.Minute)); err != nil {
		t.Fatalf("PurgeBefore failed: %v", err)
	}

	count, _, _ := store.Get("203.0.113.61")
	if count != 0 {
		t.Errorf("old record should be purged, count = %d", count)
	}
	count, _, _ = store.Get("203.0.113.62")
	if count != 1 {
		t.Errorf("recent record should survive, count = %d", count)
	}
}

func TestSQLiteAttemptStoreDrivesLimiter(t *testing.T) {
	store := setupSQLiteAttempts(t)
	limiter := NewLoginLimiter(store, 2, time.Minute)
	ip := "203.0.113.63"

	limiter.RecordFailure(ip)
	if limiter.Locked(ip) {
		t.Fatal("one failure should not lock")
	}
	limiter.RecordFailure(ip)
	if !limiter.Locked(ip) {
		t.Fatal("two failures should lock")
	}
	limiter.Reset(ip)
	if limiter.Locked(ip) {
		t.Fatal("reset should unlock")
	}
}
