package fileutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFileAtomic(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "report.txt")

	require.NoError(t, WriteFileAtomic(path, []byte("first"), 0o600))
	require.NoError(t, WriteFileAtomic(path, []byte("second"), 0o600))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files should not be left behind")
}

func TestWriteFileAtomicMissingDir(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "missing", "report.txt")

	err := WriteFileAtomic(path, []byte("x"), 0o644)
	assert.Error(t, err)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestWriteJSONAtomic(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "report.json")

	in := map[string]any{"rounds": 10, "strategy": "basic"}
	require.NoError(t, WriteJSONAtomic(path, in))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, "basic", out["strategy"])
	assert.InDelta(t, 10, out["rounds"], 0)
}

func TestWriteJSONAtomicEncodeError(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "report.json")

	err := WriteJSONAtomic(path, map[string]any{"bad": make(chan int)})
	assert.Error(t, err)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}
