package core

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpool_WriteAndRelease(t *testing.T) {
	base := filepath.Join(t.TempDir(), "nested", "spool")
	sp, err := NewSpool(base, "http")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "http"), sp.Root())

	id := uuid.NewString()
	path, err := sp.Write(id, []byte("payload"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(sp.Root(), id, spoolFileName), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))

	_, err = sp.Write(id, []byte("again"))
	assert.Error(t, err, "job ids must not share a directory")

	entries, err := sp.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, id, entries[0].JobID)

	require.NoError(t, sp.Release(id))
	require.NoError(t, sp.Release(id), "releasing twice is harmless")

	entries, err = sp.Entries()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSpool_EntriesSkipsForeignNames(t *testing.T) {
	sp, err := NewSpool(t.TempDir(), "")
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(sp.Root(), "stray"), []byte("x"), 0o600))
	require.NoError(t, os.Mkdir(filepath.Join(sp.Root(), "someone-elses-data"), 0o700))
	id := uuid.NewString()
	_, err = sp.Write(id, []byte("x"))
	require.NoError(t, err)

	entries, err := sp.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, id, entries[0].JobID)
}

func TestSpool_ScopesAreIsolated(t *testing.T) {
	base := t.TempDir()
	web, err := NewSpool(base, "http")
	require.NoError(t, err)
	mcp, err := NewSpool(base, "mcp")
	require.NoError(t, err)

	_, err = mcp.Write(uuid.NewString(), []byte("x"))
	require.NoError(t, err)

	entries, err := web.Entries()
	require.NoError(t, err)
	assert.Empty(t, entries)
}
