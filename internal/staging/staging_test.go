package staging

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPutGetDelete(t *testing.T) {
	store, err := NewStore(t.TempDir(), time.Hour)
	require.NoError(t, err)

	id, err := store.Put("testo della perizia")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	text, err := store.Get(id)
	require.NoError(t, err)
	assert.Equal(t, "testo della perizia", text)

	require.NoError(t, store.Delete(id))
	_, err = store.Get(id)
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleting again is fine.
	assert.NoError(t, store.Delete(id))
}

func TestGetRejectsTamperedID(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir, time.Hour)
	require.NoError(t, err)

	_, err = store.Get("../outside")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.Get("not-a-uuid")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSweepRemovesExpired(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir, time.Minute)
	require.NoError(t, err)

	oldID, err := store.Put("vecchio")
	require.NoError(t, err)
	freshID, err := store.Put("nuovo")
	require.NoError(t, err)

	stale := time.Now().Add(-2 * time.Minute)
	require.NoError(t, os.Chtimes(filepath.Join(dir, oldID+".txt"), stale, stale))

	store.sweep()

	_, err = store.Get(oldID)
	assert.ErrorIs(t, err, ErrNotFound)
	text, err := store.Get(freshID)
	require.NoError(t, err)
	assert.Equal(t, "nuovo", text)
}
