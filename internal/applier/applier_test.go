package applier

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Recol/bf6-settings-manager/internal/catalog"
	apperrors "github.com/Recol/bf6-settings-manager/internal/errors"
	"github.com/Recol/bf6-settings-manager/internal/guard"
	"github.com/Recol/bf6-settings-manager/internal/profile"
)

type fakeStore struct {
	mu         sync.Mutex
	calls      []string
	files      map[string]string
	backupErr  error
	loadErr    error
	writeErr   error
	restoreErr error
	lockErr    error
	written    map[string]string
	locked     map[string]bool
}

func newFakeStore(files map[string]string) *fakeStore {
	if files == nil {
		files = map[string]string{}
	}
	return &fakeStore{files: files, written: map[string]string{}, locked: map[string]bool{}}
}

func (f *fakeStore) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeStore) Load(path string) (*profile.Document, error) {
	f.record("load")
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	text, ok := f.files[path]
	if !ok {
		return nil, apperrors.NewNotFoundError("config file " + path)
	}
	return profile.ParseDocument(text, profile.EncodingUTF8), nil
}

func (f *fakeStore) Backup(path string) (*profile.BackupRecord, error) {
	f.record("backup")
	if f.backupErr != nil {
		return nil, f.backupErr
	}
	if _, ok := f.files[path]; !ok {
		return nil, apperrors.NewAppErrorf(apperrors.ErrBackupFailed, "cannot read %s", path)
	}
	return &profile.BackupRecord{
		SourcePath: path,
		BackupPath: path + ".backup_20260101_120000",
		CreatedAt:  time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
	}, nil
}

func (f *fakeStore) Write(path string, doc *profile.Document) error {
	f.record("write")
	if f.writeErr != nil {
		return f.writeErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.written[path] = doc.Lines()[0].Value()
	return nil
}

func (f *fakeStore) RestoreBackup(backupPath, targetPath string) error {
	f.record("restore:" + backupPath + "->" + targetPath)
	return f.restoreErr
}

func (f *fakeStore) SetReadOnly(path string) error {
	f.record("lock")
	if f.lockErr != nil {
		return f.lockErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.locked[path] = true
	return nil
}

type fakeGuard struct {
	status    guard.Status
	waitCalls int
}

func (f *fakeGuard) Check() guard.Status { return f.status }

func (f *fakeGuard) WaitForExit(ctx context.Context) (guard.Status, error) {
	f.waitCalls++
	if err := ctx.Err(); err != nil {
		return f.status, err
	}
	return guard.Status{}, nil
}

type fakeResolver struct {
	path     string
	err      error
	override string
}

func (f *fakeResolver) Resolve(override string) (string, error) {
	f.override = override
	if f.err != nil {
		return "", f.err
	}
	return f.path, nil
}

type fakePrefs struct {
	customPath string
	lock       bool
}

func (f *fakePrefs) CustomConfigPath() string { return f.customPath }
func (f *fakePrefs) LockAfterApply() bool     { return f.lock }

type fakeRecorder struct {
	mu      sync.Mutex
	results []Result
	err     error
}

func (f *fakeRecorder) RecordApply(result Result) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results = append(f.results, result)
	return f.err
}

func (f *fakeRecorder) recorded() []Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Result, len(f.results))
	copy(out, f.results)
	return out
}

const profilePath = "C:/Users/player/Documents/Battlefield 6/settings/PROFSAVE_profile"

func testApplier(store *fakeStore, g *fakeGuard, r *fakeResolver, p *fakePrefs, rec Recorder) *Applier {
	clock := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	return NewApplierWithDeps(store, g, r, p, rec, func() time.Time { return clock })
}

func desiredWeaponDOF() profile.DesiredSettings {
	return profile.DesiredSettings{"GstRender.WeaponDOF": catalog.BoolValue(false)}
}

func TestApplySuccess(t *testing.T) {
	store := newFakeStore(map[string]string{profilePath: "GstRender.WeaponDOF=1\n"})
	recorder := &fakeRecorder{}
	applier := testApplier(store, &fakeGuard{}, &fakeResolver{path: profilePath}, &fakePrefs{lock: true}, recorder)

	result, err := applier.Apply(context.Background(), desiredWeaponDOF(), Options{})
	require.NoError(t, err)

	assert.Equal(t, StateDone, result.State)
	assert.Equal(t, "apply", result.Operation)
	assert.NotEmpty(t, result.ID)
	assert.Equal(t, profilePath, result.ConfigPath)
	assert.Equal(t, profilePath+".backup_20260101_120000", result.BackupPath)
	require.Len(t, result.Changes, 1)
	assert.Equal(t, "GstRender.WeaponDOF", result.Changes[0].Key)
	assert.Equal(t, "1", result.Changes[0].Old)
	assert.Equal(t, "0", result.Changes[0].New)
	assert.Empty(t, result.Warnings)

	assert.Equal(t, []string{"backup", "load", "write", "lock"}, store.calls)
	assert.True(t, store.locked[profilePath])

	results := recorder.recorded()
	require.Len(t, results, 1)
	assert.Equal(t, StateDone, results[0].State)
	assert.Equal(t, result.ID, results[0].ID)
}

func TestApplyGameRunning(t *testing.T) {
	store := newFakeStore(map[string]string{profilePath: "GstRender.WeaponDOF=1\n"})
	running := &fakeGuard{status: guard.Status{Running: true, MatchedName: "bf6.exe", PID: 4242}}
	applier := testApplier(store, running, &fakeResolver{path: profilePath}, &fakePrefs{lock: true}, nil)

	result, err := applier.Apply(context.Background(), desiredWeaponDOF(), Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrGameRunning))
	assert.Contains(t, err.Error(), "bf6.exe")

	assert.Equal(t, StateFailed, result.State)
	assert.Equal(t, FailureGameRunning, result.Reason)
	assert.Empty(t, store.calls, "no disk step may run while the game is open")
}

func TestApplyGameRunningBeatsResolutionFailure(t *testing.T) {
	store := newFakeStore(nil)
	running := &fakeGuard{status: guard.Status{Running: true, MatchedName: "bf2042.exe", PID: 7}}
	resolver := &fakeResolver{err: apperrors.NewNotFoundError("PROFSAVE_profile")}
	applier := testApplier(store, running, resolver, &fakePrefs{lock: true}, nil)

	result, err := applier.Apply(context.Background(), desiredWeaponDOF(), Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrGameRunning))
	assert.Equal(t, FailureGameRunning, result.Reason)
}

func TestApplyDegradedScanProceedsWithWarning(t *testing.T) {
	store := newFakeStore(map[string]string{profilePath: "GstRender.WeaponDOF=1\n"})
	degraded := &fakeGuard{status: guard.Status{Degraded: true}}
	applier := testApplier(store, degraded, &fakeResolver{path: profilePath}, &fakePrefs{lock: true}, nil)

	result, err := applier.Apply(context.Background(), desiredWeaponDOF(), Options{})
	require.NoError(t, err)
	assert.Equal(t, StateDone, result.State)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "degraded")
}

func TestApplyResolutionFailure(t *testing.T) {
	store := newFakeStore(nil)
	resolver := &fakeResolver{err: apperrors.NewNotFoundError("PROFSAVE_profile")}
	applier := testApplier(store, &fakeGuard{}, resolver, &fakePrefs{lock: true}, nil)

	result, err := applier.Apply(context.Background(), desiredWeaponDOF(), Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrConfigNotFound))
	assert.Equal(t, FailureLoadFailed, result.Reason)
	assert.Empty(t, store.calls)
}

func TestApplyBackupFailureAbortsBeforeMutation(t *testing.T) {
	store := newFakeStore(map[string]string{profilePath: "GstRender.WeaponDOF=1\n"})
	store.backupErr = apperrors.NewAppError(apperrors.ErrBackupFailed, "disk full")
	applier := testApplier(store, &fakeGuard{}, &fakeResolver{path: profilePath}, &fakePrefs{lock: true}, nil)

	result, err := applier.Apply(context.Background(), desiredWeaponDOF(), Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrBackupFailed))
	assert.Equal(t, FailureBackupFailed, result.Reason)
	assert.Equal(t, []string{"backup"}, store.calls)
	assert.Empty(t, store.written)
}

func TestApplyLoadFailureAfterBackup(t *testing.T) {
	store := newFakeStore(map[string]string{profilePath: "GstRender.WeaponDOF=1\n"})
	store.loadErr = apperrors.NewAppError(apperrors.ErrEncoding, "profile is not valid UTF-8")
	applier := testApplier(store, &fakeGuard{}, &fakeResolver{path: profilePath}, &fakePrefs{lock: true}, nil)

	result, err := applier.Apply(context.Background(), desiredWeaponDOF(), Options{})
	require.Error(t, err)
	assert.Equal(t, FailureLoadFailed, result.Reason)
	assert.Equal(t, []string{"backup", "load"}, store.calls)
	assert.NotEmpty(t, result.BackupPath)
}

func TestApplyWriteFailureKeepsBackup(t *testing.T) {
	store := newFakeStore(map[string]string{profilePath: "GstRender.WeaponDOF=1\n"})
	store.writeErr = apperrors.NewAppError(apperrors.ErrWriteFailed, "cannot replace profile")
	recorder := &fakeRecorder{}
	applier := testApplier(store, &fakeGuard{}, &fakeResolver{path: profilePath}, &fakePrefs{lock: true}, recorder)

	result, err := applier.Apply(context.Background(), desiredWeaponDOF(), Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrWriteFailed))
	assert.Equal(t, FailureWriteFailed, result.Reason)
	assert.Equal(t, []string{"backup", "load", "write"}, store.calls)
	assert.NotEmpty(t, result.BackupPath, "the backup path must survive for recovery")

	results := recorder.recorded()
	require.Len(t, results, 1)
	assert.Equal(t, StateFailed, results[0].State)
	assert.Equal(t, FailureWriteFailed, results[0].Reason)
}

func TestApplyLockFailureIsWarningNotError(t *testing.T) {
	store := newFakeStore(map[string]string{profilePath: "GstRender.WeaponDOF=1\n"})
	store.lockErr = apperrors.NewAppError(apperrors.ErrPermissionDenied, "attribute change rejected")
	applier := testApplier(store, &fakeGuard{}, &fakeResolver{path: profilePath}, &fakePrefs{lock: true}, nil)

	result, err := applier.Apply(context.Background(), desiredWeaponDOF(), Options{})
	require.NoError(t, err)
	assert.Equal(t, StateDone, result.State)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "read-only protection failed")
	assert.Equal(t, []string{"backup", "load", "write", "lock"}, store.calls)
}

func TestApplySkipLockFlag(t *testing.T) {
	store := newFakeStore(map[string]string{profilePath: "GstRender.WeaponDOF=1\n"})
	applier := testApplier(store, &fakeGuard{}, &fakeResolver{path: profilePath}, &fakePrefs{lock: true}, nil)

	result, err := applier.Apply(context.Background(), desiredWeaponDOF(), Options{SkipLock: true})
	require.NoError(t, err)
	assert.Equal(t, StateDone, result.State)
	assert.Equal(t, []string{"backup", "load", "write"}, store.calls)
	assert.False(t, store.locked[profilePath])
}

func TestApplyLockDisabledByPreference(t *testing.T) {
	store := newFakeStore(map[string]string{profilePath: "GstRender.WeaponDOF=1\n"})
	applier := testApplier(store, &fakeGuard{}, &fakeResolver{path: profilePath}, &fakePrefs{lock: false}, nil)

	_, err := applier.Apply(context.Background(), desiredWeaponDOF(), Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"backup", "load", "write"}, store.calls)
}

func TestApplyDryRun(t *testing.T) {
	store := newFakeStore(map[string]string{profilePath: "GstRender.WeaponDOF=1\n"})
	recorder := &fakeRecorder{}
	applier := testApplier(store, &fakeGuard{status: guard.Status{Running: true}}, &fakeResolver{path: profilePath}, &fakePrefs{lock: true}, recorder)

	result, err := applier.Apply(context.Background(), desiredWeaponDOF(), Options{DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, StateDone, result.State)
	require.Len(t, result.Changes, 1)
	assert.Equal(t, "0", result.Changes[0].New)
	assert.Equal(t, []string{"load"}, store.calls, "a dry run only reads")
	assert.Empty(t, store.written)
	assert.Empty(t, recorder.recorded(), "dry runs stay out of the history ledger")
}

func TestApplyEmptyDesiredSettings(t *testing.T) {
	store := newFakeStore(nil)
	applier := testApplier(store, &fakeGuard{}, &fakeResolver{path: profilePath}, &fakePrefs{lock: true}, nil)

	result, err := applier.Apply(context.Background(), profile.DesiredSettings{}, Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrValidation))
	assert.Equal(t, FailureInvalidInput, result.Reason)
	assert.Empty(t, store.calls)
}

func TestApplyExplicitPathBypassesResolver(t *testing.T) {
	custom := "D:/profiles/PROFSAVE_profile"
	store := newFakeStore(map[string]string{custom: "GstRender.WeaponDOF=1\n"})
	resolver := &fakeResolver{err: apperrors.NewNotFoundError("PROFSAVE_profile")}
	applier := testApplier(store, &fakeGuard{}, resolver, &fakePrefs{lock: true}, nil)

	result, err := applier.Apply(context.Background(), desiredWeaponDOF(), Options{ConfigPath: custom})
	require.NoError(t, err)
	assert.Equal(t, custom, result.ConfigPath)
	assert.Empty(t, resolver.override, "the resolver must not run for an explicit path")
}

func TestApplyPersistedCustomPathReachesResolver(t *testing.T) {
	store := newFakeStore(map[string]string{profilePath: "GstRender.WeaponDOF=1\n"})
	resolver := &fakeResolver{path: profilePath}
	preferences := &fakePrefs{customPath: "E:/saved/PROFSAVE_profile", lock: true}
	applier := testApplier(store, &fakeGuard{}, resolver, preferences, nil)

	_, err := applier.Apply(context.Background(), desiredWeaponDOF(), Options{})
	require.NoError(t, err)
	assert.Equal(t, "E:/saved/PROFSAVE_profile", resolver.override)
}

func TestApplyCancelledContext(t *testing.T) {
	store := newFakeStore(map[string]string{profilePath: "GstRender.WeaponDOF=1\n"})
	applier := testApplier(store, &fakeGuard{}, &fakeResolver{path: profilePath}, &fakePrefs{lock: true}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := applier.Apply(ctx, desiredWeaponDOF(), Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, FailureCancelled, result.Reason)
	assert.Empty(t, store.calls)
}

func TestApplyWaitCancelled(t *testing.T) {
	store := newFakeStore(map[string]string{profilePath: "GstRender.WeaponDOF=1\n"})
	waiting := &fakeGuard{status: guard.Status{Running: true, MatchedName: "bf6.exe"}}
	applier := testApplier(store, waiting, &fakeResolver{path: profilePath}, &fakePrefs{lock: true}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := applier.Apply(ctx, desiredWeaponDOF(), Options{Wait: true})
	require.Error(t, err)
	assert.Equal(t, FailureCancelled, result.Reason)
	assert.Empty(t, store.calls)
}

func TestApplyWaitReachesGuard(t *testing.T) {
	store := newFakeStore(map[string]string{profilePath: "GstRender.WeaponDOF=1\n"})
	waiting := &fakeGuard{}
	applier := testApplier(store, waiting, &fakeResolver{path: profilePath}, &fakePrefs{lock: true}, nil)

	_, err := applier.Apply(context.Background(), desiredWeaponDOF(), Options{Wait: true})
	require.NoError(t, err)
	assert.Equal(t, 1, waiting.waitCalls)
}

func TestApplyRecorderFailureDoesNotFailApply(t *testing.T) {
	store := newFakeStore(map[string]string{profilePath: "GstRender.WeaponDOF=1\n"})
	recorder := &fakeRecorder{err: apperrors.NewAppError(apperrors.ErrDatabase, "ledger unavailable")}
	applier := testApplier(store, &fakeGuard{}, &fakeResolver{path: profilePath}, &fakePrefs{lock: true}, recorder)

	result, err := applier.Apply(context.Background(), desiredWeaponDOF(), Options{})
	require.NoError(t, err)
	assert.Equal(t, StateDone, result.State)
}

func TestApplySerializesConcurrentOperations(t *testing.T) {
	store := newFakeStore(map[string]string{profilePath: "GstRender.WeaponDOF=1\n"})
	applier := testApplier(store, &fakeGuard{}, &fakeResolver{path: profilePath}, &fakePrefs{lock: true}, nil)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := applier.Apply(context.Background(), desiredWeaponDOF(), Options{})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	require.Len(t, store.calls, 16)
	for i := 0; i < 16; i += 4 {
		assert.Equal(t, []string{"backup", "load", "write", "lock"}, store.calls[i:i+4])
	}
}

func TestRestoreSuccess(t *testing.T) {
	backupPath := profilePath + ".backup_20251230_093000"
	store := newFakeStore(map[string]string{profilePath: "GstRender.WeaponDOF=0\n"})
	recorder := &fakeRecorder{}
	applier := testApplier(store, &fakeGuard{}, &fakeResolver{path: profilePath}, &fakePrefs{lock: true}, recorder)

	result, err := applier.Restore(context.Background(), backupPath, Options{})
	require.NoError(t, err)
	assert.Equal(t, StateDone, result.State)
	assert.Equal(t, "restore", result.Operation)
	assert.NotEmpty(t, result.BackupPath, "a restore backs up the current file first")
	assert.Equal(t, []string{"backup", "restore:" + backupPath + "->" + profilePath, "lock"}, store.calls)

	results := recorder.recorded()
	require.Len(t, results, 1)
	assert.Equal(t, "restore", results[0].Operation)
}

func TestRestoreGameRunning(t *testing.T) {
	store := newFakeStore(map[string]string{profilePath: "GstRender.WeaponDOF=0\n"})
	running := &fakeGuard{status: guard.Status{Running: true, MatchedName: "bf6.exe", PID: 9}}
	applier := testApplier(store, running, &fakeResolver{path: profilePath}, &fakePrefs{lock: true}, nil)

	result, err := applier.Restore(context.Background(), profilePath+".backup_20251230_093000", Options{})
	require.Error(t, err)
	assert.Equal(t, FailureGameRunning, result.Reason)
	assert.Empty(t, store.calls)
}

func TestRestoreFailure(t *testing.T) {
	backupPath := profilePath + ".backup_20251230_093000"
	store := newFakeStore(map[string]string{profilePath: "GstRender.WeaponDOF=0\n"})
	store.restoreErr = apperrors.NewAppError(apperrors.ErrWriteFailed, "cannot replace profile")
	applier := testApplier(store, &fakeGuard{}, &fakeResolver{path: profilePath}, &fakePrefs{lock: true}, nil)

	result, err := applier.Restore(context.Background(), backupPath, Options{})
	require.Error(t, err)
	assert.Equal(t, FailureWriteFailed, result.Reason)
	assert.Equal(t, StateFailed, result.State)
}

func TestRestoreEmptyBackupPath(t *testing.T) {
	store := newFakeStore(nil)
	applier := testApplier(store, &fakeGuard{}, &fakeResolver{path: profilePath}, &fakePrefs{lock: true}, nil)

	_, err := applier.Restore(context.Background(), "", Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrValidation))
}
