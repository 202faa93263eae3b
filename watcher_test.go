package vitrine

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func TestWatcherFiresAfterWrite(t *testing.T) {
	dir := t.TempDir()
	var fired atomic.Int32

	w, err := NewContentWatcher([]string{dir}, func() { fired.Add(1) })
	if err != nil {
		t.Fatalf("NewContentWatcher failed: %v", err)
	}
	defer w.Close()
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "post.md"), []byte("---\ntitle: t\n---\nbody"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	deadline := time.After(3 * time.Second)
	for fired.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("watcher never fired after a write")
		case <-time.After(50 * time.Millisecond):
		}
	}
}

func TestWatcherCoalescesBursts(t *testing.T) {
	dir := t.TempDir()
	var fired atomic.Int32

	w, err := NewContentWatcher([]string{dir}, func() { fired.Add(1) })
	if err != nil {
		t.Fatalf("NewContentWatcher failed: %v", err)
	}
	defer w.Close()
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	for i := 0; i < 5; i++ {
		name := filepath.Join(dir, "burst.md")
		if err := os.WriteFile(name, []byte("body"), 0o644); err != nil {
			t.Fatalf("write file: %v", err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	time.Sleep(2 * watchDebounce)
	if n := fired.Load(); n != 1 {
		t.Errorf("fired %d times, want 1 for a burst of writes", n)
	}
}

func TestWatcherIgnoresHiddenFiles(t *testing.T) {
	dir := t.TempDir()
	var fired atomic.Int32

	w, err := NewContentWatcher([]string{dir}, func() { fired.Add(1) })
	if err != nil {
		t.Fatalf("NewContentWatcher failed: %v", err)
	}
	defer w.Close()
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, ".post.md.swp"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	time.Sleep(2 * watchDebounce)
	if n := fired.Load(); n != 0 {
		t.Errorf("fired %d times for an ignored file, want 0", n)
	}
}
