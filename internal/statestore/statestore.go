// Package statestore persists the hunt aggregate between restarts as a
// YAML snapshot. Writes are serialized across processes with an exclusive
// file lock; failing to acquire the lock within the timeout fails that
// update without retrying.
package statestore

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sys/unix"
	"gopkg.in/yaml.v3"

	"github.com/abristow3/Hunt-Bot/internal/domain"
	"github.com/abristow3/Hunt-Bot/internal/hunt"
)

const (
	// DefaultLockTimeout bounds how long one Save waits for the lock.
	DefaultLockTimeout = 5 * time.Second

	lockPollInterval = 50 * time.Millisecond
)

// Store reads and writes snapshots at a fixed path. The lock file lives
// next to the snapshot so readers in other processes can share it.
type Store struct {
	path        string
	lockTimeout time.Duration
	clock       clockwork.Clock
}

func NewStore(path string, clock clockwork.Clock) *Store {
	return &Store{
		path:        path,
		lockTimeout: DefaultLockTimeout,
		clock:       clock,
	}
}

// Save writes the snapshot under the exclusive lock. The snapshot file is
// replaced atomically so a crashed writer never leaves a torn file.
func (s *Store) Save(snap hunt.Snapshot) error {
	unlock, err := s.acquireLock()
	if err != nil {
		return err
	}
	defer unlock()

	data, err := yaml.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encoding state snapshot: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing state snapshot: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replacing state snapshot: %w", err)
	}

	slog.Debug("State snapshot saved", "path", s.path)
	return nil
}

// Load reads the last snapshot. A missing file is not an error; it reports
// found=false so a first run starts from a clean aggregate.
func (s *Store) Load() (snap hunt.Snapshot, found bool, err error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return hunt.Snapshot{}, false, nil
	}
	if err != nil {
		return hunt.Snapshot{}, false, fmt.Errorf("reading state snapshot: %w", err)
	}

	if err := yaml.Unmarshal(data, &snap); err != nil {
		return hunt.Snapshot{}, false, fmt.Errorf("decoding state snapshot: %w", err)
	}
	return snap, true, nil
}

// acquireLock takes the exclusive flock, polling until the timeout.
func (s *Store) acquireLock() (unlock func(), err error) {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return nil, fmt.Errorf("creating state directory: %w", err)
	}

	f, err := os.OpenFile(s.path+".lock", os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening state lock: %w", err)
	}

	deadline := s.clock.Now().Add(s.lockTimeout)
	for {
		err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB)
		if err == nil {
			return func() {
				unix.Flock(int(f.Fd()), unix.LOCK_UN)
				f.Close()
			}, nil
		}
		if !errors.Is(err, unix.EWOULDBLOCK) {
			f.Close()
			return nil, fmt.Errorf("locking state file: %w", err)
		}
		if !s.clock.Now().Before(deadline) {
			f.Close()
			return nil, &domain.Error{
				Kind:    domain.KindInternal,
				Message: "timed out waiting for state file lock",
				Context: map[string]any{"path": s.path, "timeout": s.lockTimeout.String()},
			}
		}
		s.clock.Sleep(lockPollInterval)
	}
}
