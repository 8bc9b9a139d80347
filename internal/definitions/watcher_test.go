package definitions

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeDefinition(t *testing.T, path, name string) {
	t.Helper()
	content := "name: " + name + "\n" + `
phases:
  - id: p1
    tasks:
      - id: A
        estimated_duration: 1
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestWatcher_DeliversReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "workflow.yaml")
	writeDefinition(t, path, "before")

	w, err := NewWatcher(path, zap.NewNop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))

	// Give the watch loop a moment before mutating the file.
	time.Sleep(100 * time.Millisecond)
	writeDefinition(t, path, "after")

	select {
	case wf := <-w.Updates():
		assert.Equal(t, "after", wf.Name)
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for reload")
	}
}

func TestWatcher_DropsInvalidReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "workflow.yaml")
	writeDefinition(t, path, "valid")

	w, err := NewWatcher(path, zap.NewNop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))

	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("phases: []\n"), 0o600))

	// The broken rewrite must not surface; the channel stays quiet.
	select {
	case wf := <-w.Updates():
		t.Fatalf("unexpected update delivered: %q", wf.Name)
	case <-time.After(600 * time.Millisecond):
	}
}

func TestWatcher_IgnoresSiblingFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "workflow.yaml")
	writeDefinition(t, path, "target")

	w, err := NewWatcher(path, zap.NewNop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))

	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("x: 1\n"), 0o600))

	select {
	case <-w.Updates():
		t.Fatal("update delivered for an unrelated file")
	case <-time.After(600 * time.Millisecond):
	}
}
