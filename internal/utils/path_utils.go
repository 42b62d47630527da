package utils

import (
	"os"
	"path/filepath"
)

// DocumentsDir returns the user's Documents folder, the default root under
// which the game keeps its settings tree. Falls back to the current
// directory when the home directory cannot be determined.
func DocumentsDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, "Documents")
}

// DefaultPrefsPath returns the default location of the persisted application
// preferences: %APPDATA%\BF6SettingsManager\settings.json on Windows, with a
// dot-directory fallback elsewhere.
func DefaultPrefsPath() string {
	if configDir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(configDir, "BF6SettingsManager", "settings.json")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".bf6settingsmanager", "settings.json")
	}
	return filepath.Join(home, ".bf6settingsmanager", "settings.json")
}
