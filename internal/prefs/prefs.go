// Package prefs persists user preferences as a JSON document. Values are
// patched in place on the raw bytes, so fields written by other builds of
// the tool survive every rewrite.
package prefs

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	apperrors "github.com/Recol/bf6-settings-manager/internal/errors"
	"github.com/Recol/bf6-settings-manager/internal/types"
)

const (
	keyCustomConfigPath  = "custom_config_path"
	keyLastKnownGoodNits = "last_known_good_nits"
	keyLockAfterApply    = "lock_after_apply"
)

// Store is a process-wide preferences store: loaded once at startup and
// flushed to disk on every change.
type Store struct {
	mu   sync.Mutex
	path string
	raw  []byte
}

// NewStore creates a store over the configured preferences path.
func NewStore(configManager types.ConfigManager) *Store {
	return NewStoreWithPath(configManager.GetPrefsPath())
}

// NewStoreWithPath creates a store over an explicit file path.
func NewStoreWithPath(path string) *Store {
	return &Store{path: path, raw: []byte("{}")}
}

// Path returns the preferences file location.
func (s *Store) Path() string {
	return s.path
}

// Load reads the preferences file. A missing file means empty preferences.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.raw = []byte("{}")
		return nil
	}
	if err != nil {
		return apperrors.ParseFSError(err)
	}
	if !gjson.ValidBytes(data) {
		return apperrors.NewAppErrorf(apperrors.ErrValidation, "preferences file %s is not valid JSON", s.path)
	}
	s.raw = data
	logrus.Debugf("Loaded preferences from %s", s.path)
	return nil
}

// CustomConfigPath returns the persisted profile path override, "" if none.
func (s *Store) CustomConfigPath() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return gjson.GetBytes(s.raw, keyCustomConfigPath).String()
}

// SetCustomConfigPath persists a profile path override.
func (s *Store) SetCustomConfigPath(path string) error {
	return s.set(keyCustomConfigPath, path)
}

// ClearCustomConfigPath removes the persisted override.
func (s *Store) ClearCustomConfigPath() error {
	return s.delete(keyCustomConfigPath)
}

// LastKnownGoodNits returns the last HDR peak brightness that was applied
// successfully, with false when none was recorded yet.
func (s *Store) LastKnownGoodNits() (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := gjson.GetBytes(s.raw, keyLastKnownGoodNits)
	if !result.Exists() {
		return 0, false
	}
	return result.Float(), true
}

// SetLastKnownGoodNits records a successfully applied HDR peak brightness.
func (s *Store) SetLastKnownGoodNits(nits float64) error {
	return s.set(keyLastKnownGoodNits, nits)
}

// LockAfterApply reports whether the profile should be set read-only after
// a successful apply. Defaults to true when never configured.
func (s *Store) LockAfterApply() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := gjson.GetBytes(s.raw, keyLockAfterApply)
	if !result.Exists() {
		return true
	}
	return result.Bool()
}

// SetLockAfterApply persists the lock-after-apply default.
func (s *Store) SetLockAfterApply(lock bool) error {
	return s.set(keyLockAfterApply, lock)
}

func (s *Store) set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	updated, err := sjson.SetBytes(s.raw, key, value)
	if err != nil {
		return apperrors.NewAppErrorf(apperrors.ErrInternal, "cannot update preference %s: %v", key, err)
	}
	if err := s.flush(updated); err != nil {
		return err
	}
	s.raw = updated
	return nil
}

func (s *Store) delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	updated, err := sjson.DeleteBytes(s.raw, key)
	if err != nil {
		return apperrors.NewAppErrorf(apperrors.ErrInternal, "cannot remove preference %s: %v", key, err)
	}
	if err := s.flush(updated); err != nil {
		return err
	}
	s.raw = updated
	return nil
}

// flush writes the document atomically: temp file in the same directory,
// then rename over the target.
func (s *Store) flush(data []byte) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return apperrors.ParseFSError(err)
	}

	tmp, err := os.CreateTemp(dir, "settings-*.json.tmp")
	if err != nil {
		return apperrors.ParseFSError(err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return apperrors.ParseFSError(err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return apperrors.ParseFSError(err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return apperrors.ParseFSError(err)
	}
	return nil
}
