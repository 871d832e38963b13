package statestore

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/abristow3/Hunt-Bot/internal/domain"
	"github.com/abristow3/Hunt-Bot/internal/hunt"
)

func sampleSnapshot() hunt.Snapshot {
	return hunt.Snapshot{
		Configured: true,
		Started:    true,
		StartTime:  time.Date(2026, 6, 10, 17, 0, 0, 0, time.UTC),
		EndTime:    time.Date(2026, 6, 19, 17, 0, 0, 0, time.UTC),
		ConfigMap: map[string]string{
			"MASTER_PASSWORD": "hunt2025",
			"TEAM_1_NAME":     "Team Orange",
		},
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "state.yaml")
	store := NewStore(path, clockwork.NewRealClock())

	require.NoError(t, store.Save(sampleSnapshot()))

	got, found, err := store.Load()
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, sampleSnapshot(), got)
}

func TestLoad_MissingFileIsClean(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "state.yaml"), clockwork.NewRealClock())

	snap, found, err := store.Load()
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, hunt.Snapshot{}, snap)
}

func TestSave_ReplacesPreviousSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.yaml")
	store := NewStore(path, clockwork.NewRealClock())

	first := sampleSnapshot()
	require.NoError(t, store.Save(first))

	second := first
	second.Ended = true
	require.NoError(t, store.Save(second))

	got, found, err := store.Load()
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, got.Ended)
}

func TestSave_LockTimeoutIsFatalForUpdate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.yaml")

	// Hold the lock from outside the store.
	f, err := os.OpenFile(path+".lock", os.O_CREATE|os.O_RDWR, 0o644)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, unix.Flock(int(f.Fd()), unix.LOCK_EX))
	defer unix.Flock(int(f.Fd()), unix.LOCK_UN)

	store := NewStore(path, clockwork.NewRealClock())
	store.lockTimeout = 150 * time.Millisecond

	err = store.Save(sampleSnapshot())
	require.Error(t, err)
	assert.Equal(t, domain.KindInternal, domain.KindOf(err))
	assert.NoFileExists(t, path)
}
