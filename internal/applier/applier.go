// Package applier orchestrates one apply operation end to end: process
// check, backup, in-memory patch, atomic write, then the read-only lock.
// Backup strictly precedes any mutation and the lock strictly follows the
// write; that ordering is the safety contract of the whole tool.
package applier

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	apperrors "github.com/Recol/bf6-settings-manager/internal/errors"
	"github.com/Recol/bf6-settings-manager/internal/guard"
	"github.com/Recol/bf6-settings-manager/internal/locator"
	"github.com/Recol/bf6-settings-manager/internal/prefs"
	"github.com/Recol/bf6-settings-manager/internal/profile"
)

// State is one step of the apply pipeline.
type State string

const (
	StateIdle            State = "idle"
	StateCheckingProcess State = "checking_process"
	StateBackingUp       State = "backing_up"
	StateMutating        State = "mutating"
	StateWriting         State = "writing"
	StateLocking         State = "locking"
	StateDone            State = "done"
	StateFailed          State = "failed"
)

// FailureReason classifies a terminal failure.
type FailureReason string

const (
	FailureGameRunning  FailureReason = "game_running"
	FailureBackupFailed FailureReason = "backup_failed"
	FailureLoadFailed   FailureReason = "load_failed"
	FailureWriteFailed  FailureReason = "write_failed"
	FailureCancelled    FailureReason = "cancelled"
	FailureInvalidInput FailureReason = "invalid_input"
)

// ConfigStore is the slice of the profile store the applier drives.
type ConfigStore interface {
	Load(path string) (*profile.Document, error)
	Backup(path string) (*profile.BackupRecord, error)
	Write(path string, doc *profile.Document) error
	RestoreBackup(backupPath, targetPath string) error
	SetReadOnly(path string) error
}

// ProcessGuard checks for running game processes.
type ProcessGuard interface {
	Check() guard.Status
	WaitForExit(ctx context.Context) (guard.Status, error)
}

// PathResolver locates the profile file.
type PathResolver interface {
	Resolve(override string) (string, error)
}

// Preferences supplies the persisted apply defaults.
type Preferences interface {
	CustomConfigPath() string
	LockAfterApply() bool
}

// Recorder persists finished operations in the history ledger. A recorder
// failure is logged and never fails the operation itself.
type Recorder interface {
	RecordApply(result Result) error
}

// Options tunes one apply or restore operation.
type Options struct {
	// ConfigPath bypasses path resolution entirely when set.
	ConfigPath string
	// SkipLock leaves the profile writable after a successful write.
	SkipLock bool
	// DryRun computes the change list without touching the disk.
	DryRun bool
	// Wait polls until the game exits instead of failing fast.
	Wait bool
}

// Result reports one finished operation.
type Result struct {
	ID         string
	Operation  string
	State      State
	Reason     FailureReason
	ConfigPath string
	BackupPath string
	Changes    []profile.Change
	Warnings   []string
	StartedAt  time.Time
	FinishedAt time.Time
}

// Applier runs the pipeline. Exactly one operation runs at a time.
type Applier struct {
	mu       sync.Mutex
	store    ConfigStore
	guard    ProcessGuard
	resolver PathResolver
	prefs    Preferences
	recorder Recorder
	now      func() time.Time
}

// NewApplier wires the applier from the concrete services.
func NewApplier(store *profile.Store, processGuard *guard.Guard, resolver *locator.Resolver, preferences *prefs.Store, recorder Recorder) *Applier {
	return NewApplierWithDeps(store, processGuard, resolver, preferences, recorder, time.Now)
}

// NewApplierWithDeps wires the applier from interfaces; tests inject fakes
// and a fixed clock here.
func NewApplierWithDeps(store ConfigStore, processGuard ProcessGuard, resolver PathResolver, preferences Preferences, recorder Recorder, now func() time.Time) *Applier {
	if now == nil {
		now = time.Now
	}
	return &Applier{
		store:    store,
		guard:    processGuard,
		resolver: resolver,
		prefs:    preferences,
		recorder: recorder,
		now:      now,
	}
}

// Apply patches the profile with the desired settings. The returned result
// is always populated; on failure the error carries the typed cause and the
// result holds the terminal state and reason.
func (a *Applier) Apply(ctx context.Context, desired profile.DesiredSettings, opts Options) (*Result, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	result := &Result{ID: uuid.NewString(), Operation: "apply", State: StateIdle, StartedAt: a.now()}
	err := a.runApply(ctx, desired, opts, result)
	a.finish(result, err, opts)
	return result, err
}

// Restore copies a backup over the live profile with the same safety rails
// as an apply: the game must be closed and the current file is backed up
// before it is replaced.
func (a *Applier) Restore(ctx context.Context, backupPath string, opts Options) (*Result, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	result := &Result{ID: uuid.NewString(), Operation: "restore", State: StateIdle, StartedAt: a.now()}
	err := a.runRestore(ctx, backupPath, opts, result)
	a.finish(result, err, opts)
	return result, err
}

func (a *Applier) runApply(ctx context.Context, desired profile.DesiredSettings, opts Options, result *Result) error {
	if len(desired) == 0 {
		result.Reason = FailureInvalidInput
		return apperrors.NewValidationError("no settings to apply")
	}

	if opts.DryRun {
		path, err := a.resolvePath(opts)
		if err != nil {
			result.Reason = FailureLoadFailed
			return err
		}
		result.ConfigPath = path

		result.State = StateMutating
		doc, err := a.store.Load(path)
		if err != nil {
			result.Reason = FailureLoadFailed
			return err
		}
		_, changes := profile.ApplyPatch(doc, desired)
		result.Changes = changes
		result.Warnings = append(result.Warnings, "dry run, nothing was written")
		return nil
	}

	path, err := a.preflight(ctx, opts, result)
	if err != nil {
		return err
	}
	result.ConfigPath = path

	result.State = StateBackingUp
	backup, err := a.store.Backup(path)
	if err != nil {
		result.Reason = FailureBackupFailed
		return err
	}
	result.BackupPath = backup.BackupPath

	result.State = StateMutating
	doc, err := a.store.Load(path)
	if err != nil {
		result.Reason = FailureLoadFailed
		return err
	}
	patched, changes := profile.ApplyPatch(doc, desired)
	result.Changes = changes

	result.State = StateWriting
	if err := a.store.Write(path, patched); err != nil {
		// The fresh backup stays on disk as the recovery path.
		result.Reason = FailureWriteFailed
		return err
	}

	a.lock(path, opts, result)
	return nil
}

func (a *Applier) runRestore(ctx context.Context, backupPath string, opts Options, result *Result) error {
	if backupPath == "" {
		result.Reason = FailureInvalidInput
		return apperrors.NewValidationError("no backup selected to restore")
	}

	path, err := a.preflight(ctx, opts, result)
	if err != nil {
		return err
	}
	result.ConfigPath = path

	// The current file is backed up first so a restore is itself undoable.
	result.State = StateBackingUp
	backup, err := a.store.Backup(path)
	if err != nil {
		result.Reason = FailureBackupFailed
		return err
	}
	result.BackupPath = backup.BackupPath

	result.State = StateWriting
	if err := a.store.RestoreBackup(backupPath, path); err != nil {
		result.Reason = FailureWriteFailed
		return err
	}

	a.lock(path, opts, result)
	return nil
}

// preflight runs the process check and path resolution concurrently; both
// complete before any disk step. A running game aborts before resolution
// errors are even considered.
func (a *Applier) preflight(ctx context.Context, opts Options, result *Result) (string, error) {
	result.State = StateCheckingProcess
	if err := ctx.Err(); err != nil {
		result.Reason = FailureCancelled
		return "", err
	}

	var (
		status     guard.Status
		path       string
		resolveErr error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if opts.Wait {
			st, err := a.guard.WaitForExit(gctx)
			status = st
			return err
		}
		status = a.guard.Check()
		return nil
	})
	g.Go(func() error {
		path, resolveErr = a.resolvePath(opts)
		return nil
	})
	if err := g.Wait(); err != nil {
		result.Reason = FailureCancelled
		return "", err
	}

	if status.Running {
		result.Reason = FailureGameRunning
		return "", apperrors.NewAppErrorf(apperrors.ErrGameRunning,
			"%s is running (pid %d), close the game first", status.MatchedName, status.PID)
	}
	if status.Degraded {
		result.Warnings = append(result.Warnings, "process enumeration was degraded, could not confirm the game is closed")
	}
	if resolveErr != nil {
		result.Reason = FailureLoadFailed
		return "", resolveErr
	}
	return path, nil
}

func (a *Applier) resolvePath(opts Options) (string, error) {
	if opts.ConfigPath != "" {
		return opts.ConfigPath, nil
	}
	return a.resolver.Resolve(a.prefs.CustomConfigPath())
}

// lock re-asserts the read-only attribute after a successful write. A lock
// failure downgrades to a warning: the settings are already applied, only
// the anti-revert protection is missing.
func (a *Applier) lock(path string, opts Options, result *Result) {
	result.State = StateLocking
	if opts.SkipLock || !a.prefs.LockAfterApply() {
		logrus.Debugf("Skipping read-only lock for %s", path)
		return
	}
	if err := a.store.SetReadOnly(path); err != nil {
		logrus.Warnf("Profile written but read-only protection failed: %v", err)
		result.Warnings = append(result.Warnings, "read-only protection failed: "+err.Error())
	}
}

func (a *Applier) finish(result *Result, err error, opts Options) {
	result.FinishedAt = a.now()
	if err != nil {
		result.State = StateFailed
	} else {
		result.State = StateDone
	}
	if opts.DryRun || a.recorder == nil {
		return
	}
	if recordErr := a.recorder.RecordApply(*result); recordErr != nil {
		logrus.Warnf("Failed to record operation %s in history: %v", result.ID, recordErr)
	}
}
