// Package locator finds the PROFSAVE_profile file across install layouts.
package locator

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/sirupsen/logrus"

	apperrors "github.com/Recol/bf6-settings-manager/internal/errors"
	"github.com/Recol/bf6-settings-manager/internal/types"
)

// ProfileFileName is the exact file name the game writes its profile under.
const ProfileFileName = "PROFSAVE_profile"

var settingsRoot = path.Join("Battlefield 6", "settings")

// StatFunc probes a path outside the scan root, used for override checks.
type StatFunc func(string) (fs.FileInfo, error)

// Resolver locates the game profile under the documents root or an explicit
// override path.
type Resolver struct {
	root    fs.FS
	rootDir string
	stat    StatFunc
}

// NewResolver creates a resolver over the configured documents directory.
func NewResolver(configManager types.ConfigManager) *Resolver {
	cfg := configManager.GetResolverConfig()
	return &Resolver{
		root:    os.DirFS(cfg.DocumentsDir),
		rootDir: cfg.DocumentsDir,
		stat:    os.Stat,
	}
}

// NewResolverWithFS creates a resolver over an arbitrary filesystem
// snapshot. Tests use this with fstest.MapFS.
func NewResolverWithFS(root fs.FS, rootDir string, stat StatFunc) *Resolver {
	if stat == nil {
		stat = os.Stat
	}
	return &Resolver{root: root, rootDir: rootDir, stat: stat}
}

// Resolve returns the path of the profile file. An override that points at
// an existing file wins; otherwise the documents root is scanned depth-first
// in lexical order and the first file named PROFSAVE_profile is returned.
// The scan order is deterministic for a fixed filesystem state.
func (r *Resolver) Resolve(override string) (string, error) {
	if override != "" {
		if info, err := r.stat(override); err == nil && !info.IsDir() {
			logrus.Debugf("Using profile override %s", override)
			return override, nil
		}
		logrus.Warnf("Profile override %s does not point at a file, falling back to scan", override)
	}

	var found string
	err := fs.WalkDir(r.root, settingsRoot, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == settingsRoot {
				return err
			}
			logrus.Debugf("Skipping unreadable entry %s: %v", p, err)
			return nil
		}
		if !d.IsDir() && d.Name() == ProfileFileName {
			found = p
			return fs.SkipAll
		}
		return nil
	})
	if err != nil || found == "" {
		return "", apperrors.NewAppErrorf(apperrors.ErrConfigNotFound,
			"%s not found under %s", ProfileFileName, r.ScanRoot())
	}

	resolved := filepath.Join(r.rootDir, filepath.FromSlash(found))
	logrus.Debugf("Resolved profile at %s", resolved)
	return resolved, nil
}

// ScanRoot returns the OS path of the directory the resolver scans.
func (r *Resolver) ScanRoot() string {
	return filepath.Join(r.rootDir, filepath.FromSlash(settingsRoot))
}
