package profile

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	apperrors "github.com/Recol/bf6-settings-manager/internal/errors"
)

const (
	backupMarker    = ".backup_"
	backupTimestamp = "20060102_150405"
)

// BackupRecord describes one timestamped copy made before a mutation.
// Backups are never overwritten and never removed automatically.
type BackupRecord struct {
	SourcePath string
	BackupPath string
	CreatedAt  time.Time
}

// Store performs all disk operations on profile documents: load, backup,
// atomic write, and read-only attribute management.
type Store struct {
	ops FileOps
	now func() time.Time
}

// NewStore creates a store backed by the real filesystem.
func NewStore() *Store {
	return &Store{ops: NewOSFileOps(), now: time.Now}
}

// NewStoreWithOps creates a store with injected primitives. Tests use this
// with a fake filesystem and a fixed clock.
func NewStoreWithOps(ops FileOps, now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{ops: ops, now: now}
}

// Load reads and decodes the profile at path. Unknown lines are preserved
// opaquely; only a malformed byte encoding fails the parse.
func (s *Store) Load(path string) (*Document, error) {
	data, err := s.ops.ReadFile(path)
	if err != nil {
		return nil, apperrors.ParseFSError(err)
	}
	text, encoding, err := decodeBytes(data)
	if err != nil {
		return nil, err
	}
	doc := &Document{encoding: encoding, lines: parseText(text)}
	logrus.Debugf("Loaded profile %s: %d lines, %s", path, doc.Len(), encoding)
	return doc, nil
}

// Backup copies the file byte-for-byte to a timestamped sibling path and
// returns the record. A name collision moves to a numbered suffix instead
// of overwriting.
func (s *Store) Backup(path string) (*BackupRecord, error) {
	data, err := s.ops.ReadFile(path)
	if err != nil {
		return nil, apperrors.NewAppErrorf(apperrors.ErrBackupFailed, "cannot read %s: %v", path, err)
	}

	createdAt := s.now()
	base := path + backupMarker + createdAt.Format(backupTimestamp)
	backupPath := base
	for i := 2; ; i++ {
		if _, err := s.ops.Stat(backupPath); err != nil {
			break
		}
		backupPath = fmt.Sprintf("%s_%d", base, i)
	}

	if err := s.ops.WriteFileSync(backupPath, data, 0o644); err != nil {
		return nil, apperrors.NewAppErrorf(apperrors.ErrBackupFailed, "cannot write %s: %v", backupPath, err)
	}
	logrus.Debugf("Backed up %s to %s (%d bytes)", path, backupPath, len(data))
	return &BackupRecord{SourcePath: path, BackupPath: backupPath, CreatedAt: createdAt}, nil
}

// Write serializes the document and atomically replaces the target. The
// read-only attribute is cleared first when present; callers re-assert it
// afterward. An external reader only ever observes the fully-old or
// fully-new file content.
func (s *Store) Write(path string, doc *Document) error {
	data, err := encodeText(doc.text(), doc.encoding)
	if err != nil {
		return err
	}
	return s.writeAtomic(path, data)
}

// RestoreBackup atomically copies a backup's bytes back over the target.
func (s *Store) RestoreBackup(backupPath, targetPath string) error {
	data, err := s.ops.ReadFile(backupPath)
	if err != nil {
		return apperrors.ParseFSError(err)
	}
	return s.writeAtomic(targetPath, data)
}

// writeAtomic writes data to a temp file in the target's directory, syncs,
// and renames it over the target.
func (s *Store) writeAtomic(path string, data []byte) error {
	if readOnly, err := s.ops.IsReadOnly(path); err == nil && readOnly {
		if err := s.ops.ClearReadOnly(path); err != nil {
			return apperrors.NewAppErrorf(apperrors.ErrWriteFailed, "cannot clear read-only attribute on %s: %v", path, err)
		}
	}

	perm := os.FileMode(0o644)
	if info, err := s.ops.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}

	tmpPath := path + ".tmp-" + uuid.NewString()
	if err := s.ops.WriteFileSync(tmpPath, data, perm); err != nil {
		return apperrors.NewAppErrorf(apperrors.ErrWriteFailed, "cannot write %s: %v", tmpPath, err)
	}
	if err := s.ops.Rename(tmpPath, path); err != nil {
		if removeErr := s.ops.Remove(tmpPath); removeErr != nil {
			logrus.Warnf("Failed to remove orphaned temp file %s: %v", tmpPath, removeErr)
		}
		return apperrors.NewAppErrorf(apperrors.ErrWriteFailed, "cannot replace %s: %v", path, err)
	}
	logrus.Debugf("Wrote profile %s (%d bytes)", path, len(data))
	return nil
}

// SetReadOnly asserts the filesystem read-only attribute on path.
func (s *Store) SetReadOnly(path string) error {
	if err := s.ops.SetReadOnly(path); err != nil {
		return apperrors.ParseFSError(err)
	}
	return nil
}

// ClearReadOnly removes the filesystem read-only attribute from path.
func (s *Store) ClearReadOnly(path string) error {
	if err := s.ops.ClearReadOnly(path); err != nil {
		return apperrors.ParseFSError(err)
	}
	return nil
}

// IsReadOnly reports whether path currently carries the read-only attribute.
func (s *Store) IsReadOnly(path string) (bool, error) {
	readOnly, err := s.ops.IsReadOnly(path)
	if err != nil {
		return false, apperrors.ParseFSError(err)
	}
	return readOnly, nil
}

// ListBackups returns the backups co-located with path, newest first.
func (s *Store) ListBackups(path string) ([]BackupRecord, error) {
	dir := filepath.Dir(path)
	entries, err := s.ops.ReadDir(dir)
	if err != nil {
		return nil, apperrors.ParseFSError(err)
	}

	prefix := filepath.Base(path) + backupMarker
	var records []BackupRecord
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), prefix) {
			continue
		}
		records = append(records, BackupRecord{
			SourcePath: path,
			BackupPath: filepath.Join(dir, entry.Name()),
			CreatedAt:  backupCreatedAt(entry, prefix),
		})
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].BackupPath > records[j].BackupPath
		}
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	return records, nil
}

// backupCreatedAt recovers the creation time from the backup name, falling
// back to the file modification time for names that do not parse.
func backupCreatedAt(entry os.DirEntry, prefix string) time.Time {
	suffix := entry.Name()[len(prefix):]
	if len(suffix) >= len(backupTimestamp) {
		if ts, err := time.ParseInLocation(backupTimestamp, suffix[:len(backupTimestamp)], time.Local); err == nil {
			return ts
		}
	}
	if info, err := entry.Info(); err == nil {
		return info.ModTime()
	}
	return time.Time{}
}
