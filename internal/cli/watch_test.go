package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startWatcher(t *testing.T) (string, *dbWatcher) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "workgrid.db")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0o644))

	w, err := newDBWatcher(path)
	require.NoError(t, err)
	require.NoError(t, w.Start())
	t.Cleanup(w.Stop)
	return path, w
}

func waitForChange(w *dbWatcher, timeout time.Duration) bool {
	select {
	case <-w.Changes:
		return true
	case <-time.After(timeout):
		return false
	}
}

func TestDBWatcher_SignalsOnWrite(t *testing.T) {
	path, w := startWatcher(t)

	require.NoError(t, os.WriteFile(path, []byte("v2"), 0o644))
	assert.True(t, waitForChange(w, 2*time.Second))
}

func TestDBWatcher_SignalsOnWAL(t *testing.T) {
	path, w := startWatcher(t)

	require.NoError(t, os.WriteFile(path+"-wal", []byte("frame"), 0o644))
	assert.True(t, waitForChange(w, 2*time.Second))
}

func TestDBWatcher_CoalescesBursts(t *testing.T) {
	path, w := startWatcher(t)

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte{byte(i)}, 0o644))
	}
	assert.True(t, waitForChange(w, 2*time.Second))
	assert.False(t, waitForChange(w, 3*watchDebounce), "one burst, one signal")
}

func TestDBWatcher_IgnoresOtherFiles(t *testing.T) {
	path, w := startWatcher(t)

	require.NoError(t, os.WriteFile(filepath.Join(filepath.Dir(path), "notes.txt"), []byte("x"), 0o644))
	assert.False(t, waitForChange(w, 3*watchDebounce))
}

func TestIsDBFile(t *testing.T) {
	w := &dbWatcher{path: "/data/workgrid.db"}
	assert.True(t, w.isDBFile("/data/workgrid.db"))
	assert.True(t, w.isDBFile("/data/workgrid.db-wal"))
	assert.True(t, w.isDBFile("/data/workgrid.db-journal"))
	assert.False(t, w.isDBFile("/data/workgrid.dbx"))
	assert.False(t, w.isDBFile("/data/other.db"))
}

func TestDBWatcher_FailedStartReleasesWatcher(t *testing.T) {
	w, err := newDBWatcher(filepath.Join(t.TempDir(), "missing", "workgrid.db"))
	require.NoError(t, err)

	require.Error(t, w.Start())
	assert.Error(t, w.watcher.Add(t.TempDir()), "a failed start closes the watcher")
}
