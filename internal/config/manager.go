// Package config provides configuration management for the application
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/Recol/bf6-settings-manager/internal/types"
	"github.com/Recol/bf6-settings-manager/internal/utils"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Constants holds configuration limits and defaults
type Constants struct {
	MinPollIntervalSeconds int
	DefaultPollIntervalSec int
	DefaultRetentionDays   int
	DefaultDataDir         string
}

// DefaultConstants defines the default configuration constants
var DefaultConstants = Constants{
	MinPollIntervalSeconds: 1,
	DefaultPollIntervalSec: 2,
	DefaultRetentionDays:   90,
	DefaultDataDir:         "./data",
}

// defaultProcessNames is the executable allow-list used when
// GAME_PROCESS_NAMES is not set.
var defaultProcessNames = []string{"bf6.exe", "bf2042.exe"}

// Config represents the application configuration loaded from the environment
type Config struct {
	Log       types.LogConfig
	Database  types.DatabaseConfig
	Guard     types.GuardConfig
	Resolver  types.ResolverConfig
	History   types.HistoryConfig
	PrefsPath string
	DataDir   string
	DebugMode bool
}

// Manager implements types.ConfigManager on top of environment variables
// and an optional .env file.
type Manager struct {
	mu     sync.RWMutex
	config *Config
}

// NewManager creates a new configuration manager and performs the initial load.
func NewManager() (types.ConfigManager, error) {
	// Load .env file if present; environment variables take precedence
	if err := godotenv.Load(); err == nil {
		logrus.Debug("Loaded .env file")
	}

	manager := &Manager{}
	if err := manager.ReloadConfig(); err != nil {
		return nil, err
	}
	return manager, nil
}

// ReloadConfig re-reads the environment into a fresh config snapshot.
func (m *Manager) ReloadConfig() error {
	dataDir := utils.GetEnvOrDefault("DATA_DIR", DefaultConstants.DefaultDataDir)

	config := &Config{
		Log: types.LogConfig{
			Level:      utils.GetEnvOrDefault("LOG_LEVEL", "info"),
			Format:     utils.GetEnvOrDefault("LOG_FORMAT", "text"),
			EnableFile: utils.ParseBoolean(utils.GetEnvOrDefault("LOG_ENABLE_FILE", "false"), false),
			FilePath:   utils.GetEnvOrDefault("LOG_FILE_PATH", filepath.Join(dataDir, "logs", "app.log")),
		},
		Database: types.DatabaseConfig{
			DSN: utils.GetEnvOrDefault("DATABASE_DSN", filepath.Join(dataDir, "bf6-settings-manager.db")),
		},
		Guard: types.GuardConfig{
			ProcessNames:        utils.SplitAndTrim(utils.GetEnvOrDefault("GAME_PROCESS_NAMES", "")),
			PollIntervalSeconds: utils.ParseInteger(utils.GetEnvOrDefault("GUARD_POLL_INTERVAL_SECONDS", ""), DefaultConstants.DefaultPollIntervalSec),
		},
		Resolver: types.ResolverConfig{
			DocumentsDir: utils.GetEnvOrDefault("DOCUMENTS_DIR", utils.DocumentsDir()),
		},
		History: types.HistoryConfig{
			RetentionDays: utils.ParseInteger(utils.GetEnvOrDefault("HISTORY_RETENTION_DAYS", ""), DefaultConstants.DefaultRetentionDays),
		},
		PrefsPath: utils.GetEnvOrDefault("PREFS_FILE_PATH", utils.DefaultPrefsPath()),
		DataDir:   dataDir,
		DebugMode: utils.ParseBoolean(utils.GetEnvOrDefault("DEBUG_MODE", "false"), false),
	}

	if len(config.Guard.ProcessNames) == 0 {
		config.Guard.ProcessNames = append([]string(nil), defaultProcessNames...)
	}

	if err := validateConfig(config); err != nil {
		return err
	}

	m.mu.Lock()
	m.config = config
	m.mu.Unlock()
	return nil
}

// validateConfig checks a config snapshot and reports every problem at once.
func validateConfig(config *Config) error {
	var validationErrors []string

	if config.Guard.PollIntervalSeconds < DefaultConstants.MinPollIntervalSeconds {
		validationErrors = append(validationErrors,
			fmt.Sprintf("guard poll interval cannot be less than %d second(s)", DefaultConstants.MinPollIntervalSeconds))
	}

	for _, name := range config.Guard.ProcessNames {
		if strings.ContainsAny(name, `\/`) {
			validationErrors = append(validationErrors,
				fmt.Sprintf("process name %q must be an image name, not a path", name))
		}
	}

	if config.History.RetentionDays < 0 {
		validationErrors = append(validationErrors, "history retention days cannot be negative")
	}

	if config.Database.DSN == "" {
		validationErrors = append(validationErrors, "DATABASE_DSN cannot be empty")
	}

	if config.Log.Format != "text" && config.Log.Format != "json" {
		validationErrors = append(validationErrors,
			fmt.Sprintf("log format must be text or json, got %q", config.Log.Format))
	}

	if len(validationErrors) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(validationErrors, "; "))
	}
	return nil
}

// Validate re-checks the current snapshot.
func (m *Manager) Validate() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return validateConfig(m.config)
}

// GetLogConfig returns the logging configuration.
func (m *Manager) GetLogConfig() types.LogConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config.Log
}

// GetDatabaseConfig returns the database configuration.
func (m *Manager) GetDatabaseConfig() types.DatabaseConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config.Database
}

// GetGuardConfig returns the process guard configuration.
func (m *Manager) GetGuardConfig() types.GuardConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	guard := m.config.Guard
	guard.ProcessNames = append([]string(nil), guard.ProcessNames...)
	return guard
}

// GetResolverConfig returns the profile resolver configuration.
func (m *Manager) GetResolverConfig() types.ResolverConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config.Resolver
}

// GetHistoryConfig returns the apply-history ledger configuration.
func (m *Manager) GetHistoryConfig() types.HistoryConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config.History
}

// GetPrefsPath returns the preferences file location.
func (m *Manager) GetPrefsPath() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config.PrefsPath
}

// GetDataDir returns the data directory for the database and log files.
func (m *Manager) GetDataDir() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config.DataDir
}

// IsDebugMode reports whether debug mode is enabled.
func (m *Manager) IsDebugMode() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config.DebugMode
}

// DisplayAppConfig logs the effective configuration at startup.
func (m *Manager) DisplayAppConfig() {
	m.mu.RLock()
	config := m.config
	m.mu.RUnlock()

	logrus.Info("")
	logrus.Info("======= Configuration =======")
	logrus.Infof("  Documents root:  %s", config.Resolver.DocumentsDir)
	logrus.Infof("  Process guard:   %s (poll %ds)", strings.Join(config.Guard.ProcessNames, ", "), config.Guard.PollIntervalSeconds)
	logrus.Infof("  Database:        %s", config.Database.DSN)
	logrus.Infof("  Preferences:     %s", config.PrefsPath)
	logrus.Infof("  History:         retention %dd", config.History.RetentionDays)
	if config.Log.EnableFile {
		logrus.Infof("  Log:             %s/%s -> %s", config.Log.Level, config.Log.Format, config.Log.FilePath)
	} else {
		logrus.Infof("  Log:             %s/%s", config.Log.Level, config.Log.Format)
	}
	logrus.Info("=============================")
	logrus.Info("")
}
