package locator

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Recol/bf6-settings-manager/internal/errors"
)

func mapFS(paths ...string) fstest.MapFS {
	fsys := fstest.MapFS{}
	for _, p := range paths {
		fsys[p] = &fstest.MapFile{Data: []byte("GstRender.WeaponDOF=1\n")}
	}
	return fsys
}

func TestResolveFindsProfile(t *testing.T) {
	fsys := mapFS("Battlefield 6/settings/PROFSAVE_profile")
	resolver := NewResolverWithFS(fsys, "docs", nil)

	resolved, err := resolver.Resolve("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("docs", "Battlefield 6", "settings", "PROFSAVE_profile"), resolved)
}

func TestResolveFindsNestedProfile(t *testing.T) {
	fsys := mapFS("Battlefield 6/settings/user_0123456789/PROFSAVE_profile")
	resolver := NewResolverWithFS(fsys, "docs", nil)

	resolved, err := resolver.Resolve("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("docs", "Battlefield 6", "settings", "user_0123456789", "PROFSAVE_profile"), resolved)
}

func TestResolveDeterministicOrder(t *testing.T) {
	fsys := mapFS(
		"Battlefield 6/settings/beta/PROFSAVE_profile",
		"Battlefield 6/settings/alpha/PROFSAVE_profile",
	)
	resolver := NewResolverWithFS(fsys, "docs", nil)

	// Lexical walk order: alpha before beta, every run.
	for i := 0; i < 5; i++ {
		resolved, err := resolver.Resolve("")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join("docs", "Battlefield 6", "settings", "alpha", "PROFSAVE_profile"), resolved)
	}
}

func TestResolveExactNameOnly(t *testing.T) {
	fsys := mapFS(
		"Battlefield 6/settings/PROFSAVE_profile.backup_20260101_000000",
		"Battlefield 6/settings/profsave_profile",
		"Battlefield 6/settings/PROFSAVE_profile_old",
	)
	resolver := NewResolverWithFS(fsys, "docs", nil)

	_, err := resolver.Resolve("")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrConfigNotFound))
}

func TestResolveNotFound(t *testing.T) {
	resolver := NewResolverWithFS(fstest.MapFS{}, "docs", nil)

	_, err := resolver.Resolve("")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrConfigNotFound))
	assert.Contains(t, err.Error(), "PROFSAVE_profile")
}

func TestResolveOverrideWins(t *testing.T) {
	dir := t.TempDir()
	override := filepath.Join(dir, "PROFSAVE_profile")
	require.NoError(t, os.WriteFile(override, []byte("a=1\n"), 0o644))

	// The scan would find a different file; the override takes priority.
	fsys := mapFS("Battlefield 6/settings/PROFSAVE_profile")
	resolver := NewResolverWithFS(fsys, "docs", nil)

	resolved, err := resolver.Resolve(override)
	require.NoError(t, err)
	assert.Equal(t, override, resolved)
}

func TestResolveMissingOverrideFallsThrough(t *testing.T) {
	dir := t.TempDir()
	fsys := mapFS("Battlefield 6/settings/PROFSAVE_profile")
	resolver := NewResolverWithFS(fsys, "docs", nil)

	resolved, err := resolver.Resolve(filepath.Join(dir, "gone", "PROFSAVE_profile"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("docs", "Battlefield 6", "settings", "PROFSAVE_profile"), resolved)
}

func TestResolveDirectoryOverrideFallsThrough(t *testing.T) {
	dir := t.TempDir()
	fsys := mapFS("Battlefield 6/settings/PROFSAVE_profile")
	resolver := NewResolverWithFS(fsys, "docs", nil)

	resolved, err := resolver.Resolve(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("docs", "Battlefield 6", "settings", "PROFSAVE_profile"), resolved)
}

func TestResolveMissingOverrideAndNoScanMatch(t *testing.T) {
	resolver := NewResolverWithFS(fstest.MapFS{}, "docs", nil)

	_, err := resolver.Resolve(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrConfigNotFound))
}

func TestScanRoot(t *testing.T) {
	resolver := NewResolverWithFS(fstest.MapFS{}, "docs", nil)
	assert.Equal(t, filepath.Join("docs", "Battlefield 6", "settings"), resolver.ScanRoot())
}
