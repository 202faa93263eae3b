package vitrine

import (
	"sync"
	"time"
)

// AttemptStore records failed login attempts per source IP. The default is
// an in-memory map; deployments that restart often or run several instances
// can plug in the SQLite-backed store instead.
type AttemptStore interface {
	// Get returns the failure count and the time of the most recent failure.
	// A zero count means the IP has no record.
	Get(ip string) (int, time.Time, error)
	// Increment records one more failure at the given time.
	Increment(ip string, now time.Time) error
	// Clear discards the IP's record.
	Clear(ip string) error
	// PurgeBefore drops every record whose last failure predates cutoff.
	PurgeBefore(cutoff time.Time) error
}

// LoginLimiter throttles admin logins. An IP moves through three states:
// no record, tracking (1 to max-1 failures), and locked (max failures within
// the window of the most recent one). A successful login clears the record;
// once the window elapses after the last failure the record is discarded and
// the IP starts clean again.
type LoginLimiter struct {
	store  AttemptStore
	max    int
	window time.Duration

	done     chan struct{}
	stopOnce sync.Once
}

// NewLoginLimiter creates a LoginLimiter that locks an IP out after max
// failures inside window, and starts a background sweep of stale records.
func NewLoginLimiter(store AttemptStore, max int, window time.Duration) *LoginLimiter {
	l := &LoginLimiter{
		store:  store,
		max:    max,
		window: window,
		done:   make(chan struct{}),
	}
	go l.cleanup()
	return l
}

func (l *LoginLimiter) cleanup() {
	ticker := time.NewTicker(l.window)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			_ = l.store.PurgeBefore(time.Now().Add(-l.window))
		case <-l.done:
			return
		}
	}
}

// Close stops the background sweep. The limiter keeps answering lockout
// checks afterwards; only the periodic purge of stale records ends.
func (l *LoginLimiter) Close() {
	l.stopOnce.Do(func() { close(l.done) })
}

// Locked reports whether the IP is currently locked out. While locked, login
// attempts must be rejected before the password is even checked. A record
// older than the window is discarded on the way through.
func (l *LoginLimiter) Locked(ip string) bool {
	count, last, err := l.store.Get(ip)
	if err != nil || count == 0 {
		return false
	}
	if time.Since(last) >= l.window {
		_ = l.store.Clear(ip)
		return false
	}
	return count >= l.max
}

// RecordFailure registers a failed password check for the IP.
func (l *LoginLimiter) RecordFailure(ip string) {
	_ = l.store.Increment(ip, time.Now())
}

// Reset clears the IP's record after a successful login.
func (l *LoginLimiter) Reset(ip string) {
	_ = l.store.Clear(ip)
}

type attemptRecord struct {
	count int
	last  time.Time
}

// MemoryAttemptStore keeps attempt records in a process-local map. State is
// lost on restart and not shared across instances.
type MemoryAttemptStore struct {
	mu      sync.Mutex
	records map[string]attemptRecord
}

// NewMemoryAttemptStore creates an empty in-memory attempt store.
func NewMemoryAttemptStore() *MemoryAttemptStore {
	return &MemoryAttemptStore{records: make(map[string]attemptRecord)}
}

func (m *MemoryAttemptStore) Get(ip string) (int, time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec := m.records[ip]
	return rec.count, rec.last, nil
}

func (m *MemoryAttemptStore) Increment(ip string, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec := m.records[ip]
	rec.count++
	rec.last = now
	m.records[ip] = rec
	return nil
}

func (m *MemoryAttemptStore) Clear(ip string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, ip)
	return nil
}

func (m *MemoryAttemptStore) PurgeBefore(cutoff time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for ip, rec := range m.records {
		if rec.last.Before(cutoff) {
			delete(m.records, ip)
		}
	}
	return nil
}
