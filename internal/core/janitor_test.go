package core

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJanitor_Sweep(t *testing.T) {
	svc, err := NewService(ServiceConfig{SpoolDir: t.TempDir()})
	require.NoError(t, err)

	old := time.Now().Add(-2 * time.Hour)
	mkSpool := func(mod time.Time) string {
		id := uuid.NewString()
		_, err := svc.spool.Write(id, []byte("x"))
		require.NoError(t, err)
		require.NoError(t, os.Chtimes(filepath.Join(svc.spool.Root(), id), mod, mod))
		return id
	}

	// orphan: old, no record
	mkSpool(old)
	// active: old, but its job is still running
	active := mkSpool(old)
	_, err = svc.store.Create(pendingRecord(active))
	require.NoError(t, err)
	// finished: old, job terminal
	finished := mkSpool(old)
	_, err = svc.store.Create(pendingRecord(finished))
	require.NoError(t, err)
	_, err = svc.store.Update(finished, func(r *JobRecord) { r.Status = StatusFailed })
	require.NoError(t, err)
	// fresh: recent, no record
	fresh := mkSpool(time.Now())

	j, err := NewJanitor(svc, "@every 1h", time.Hour)
	require.NoError(t, err)

	assert.Equal(t, 2, j.Sweep())

	entries, err := svc.spool.Entries()
	require.NoError(t, err)
	var left []string
	for _, e := range entries {
		left = append(left, e.JobID)
	}
	assert.ElementsMatch(t, []string{active, fresh}, left)
}

func TestJanitor_SweepLeavesForeignDirectories(t *testing.T) {
	svc, err := NewService(ServiceConfig{SpoolDir: t.TempDir()})
	require.NoError(t, err)

	foreign := filepath.Join(svc.spool.Root(), "someone-elses-data")
	require.NoError(t, os.Mkdir(foreign, 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(foreign, "keep.txt"), []byte("mine"), 0o600))
	old := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(foreign, old, old))

	j, err := NewJanitor(svc, "@every 1h", time.Hour)
	require.NoError(t, err)

	assert.Equal(t, 0, j.Sweep())
	_, err = os.Stat(filepath.Join(foreign, "keep.txt"))
	assert.NoError(t, err)
}

func TestNewJanitor_BadSchedule(t *testing.T) {
	svc, err := NewService(ServiceConfig{SpoolDir: t.TempDir()})
	require.NoError(t, err)

	_, err = NewJanitor(svc, "every now and then", time.Hour)
	assert.Error(t, err)
}
