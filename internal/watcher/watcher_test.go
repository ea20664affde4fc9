package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

type callRecorder struct {
	mu       sync.Mutex
	ingested []string
	removed  []string
}

func (r *callRecorder) ingest(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ingested = append(r.ingested, path)
}

func (r *callRecorder) remove(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removed = append(r.removed, path)
}

func (r *callRecorder) ingestedPaths() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.ingested...)
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func TestWatcher_IngestOnWrite(t *testing.T) {
	dir := t.TempDir()
	rec := &callRecorder{}
	w := New([]string{dir}, []string{".txt"}, true, rec.ingest, rec.remove,
		WithDebounce(50*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	path := filepath.Join(dir, "note.txt")
	if err := os.WriteFile(path, []byte("hello"), 0600); err != nil {
		t.Fatal(err)
	}

	waitFor(t, 3*time.Second, func() bool {
		for _, p := range rec.ingestedPaths() {
			if p == path {
				return true
			}
		}
		return false
	})
}

func TestWatcher_ExtensionFilter(t *testing.T) {
	dir := t.TempDir()
	rec := &callRecorder{}
	w := New([]string{dir}, []string{".txt"}, true, rec.ingest, rec.remove,
		WithDebounce(50*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if err := os.WriteFile(filepath.Join(dir, "image.png"), []byte{1, 2}, 0600); err != nil {
		t.Fatal(err)
	}
	time.Sleep(300 * time.Millisecond)
	if len(rec.ingestedPaths()) != 0 {
		t.Errorf("non-matching extension ingested: %v", rec.ingestedPaths())
	}
}

func TestWatcher_SyncExistingFiles(t *testing.T) {
	dir := t.TempDir()
	pre := filepath.Join(dir, "existing.txt")
	if err := os.WriteFile(pre, []byte("already here"), 0600); err != nil {
		t.Fatal(err)
	}

	rec := &callRecorder{}
	w := New([]string{dir}, []string{".txt"}, true, rec.ingest, rec.remove)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	w.SyncExistingFiles()
	found := false
	for _, p := range rec.ingestedPaths() {
		if p == pre {
			found = true
		}
	}
	if !found {
		t.Errorf("existing file not synced: %v", rec.ingestedPaths())
	}
}

func TestWatcher_CreatesMissingRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "not-yet-there")
	w := New([]string{root}, nil, true, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()
	if _, err := os.Stat(root); err != nil {
		t.Errorf("root not created: %v", err)
	}
}
