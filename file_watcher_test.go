package formz

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writePolicyFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("failed to write policy file: %v", err)
	}
}

func TestFileWatcher_EmitsInitialContents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")
	writePolicyFile(t, path, "username_min_length: 3")

	watcher := NewFileWatcher(path)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	out, err := watcher.Watch(ctx)
	if err != nil {
		t.Fatalf("Watch() error = %v", err)
	}

	select {
	case data := <-out:
		if string(data) != "username_min_length: 3" {
			t.Errorf("unexpected initial contents: %q", string(data))
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for initial contents")
	}
}

func TestFileWatcher_EmitsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")
	writePolicyFile(t, path, "first")

	watcher := NewFileWatcher(path)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	out, err := watcher.Watch(ctx)
	if err != nil {
		t.Fatalf("Watch() error = %v", err)
	}

	// Drain the initial emission
	<-out

	writePolicyFile(t, path, "second")

	select {
	case data := <-out:
		if string(data) != "second" {
			t.Errorf("expected updated contents, got %q", string(data))
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for write emission")
	}
}

func TestFileWatcher_MissingFile(t *testing.T) {
	watcher := NewFileWatcher(filepath.Join(t.TempDir(), "does-not-exist.yaml"))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if _, err := watcher.Watch(ctx); err == nil {
		t.Error("expected error watching a missing file")
	}
}

func TestFileWatcher_ClosesOnContextCancel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")
	writePolicyFile(t, path, "contents")

	watcher := NewFileWatcher(path)

	ctx, cancel := context.WithCancel(context.Background())

	out, err := watcher.Watch(ctx)
	if err != nil {
		t.Fatalf("Watch() error = %v", err)
	}

	// Drain the initial emission, then cancel.
	<-out
	cancel()

	select {
	case _, ok := <-out:
		if ok {
			t.Error("expected channel to be closed after cancel")
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for channel close")
	}
}
