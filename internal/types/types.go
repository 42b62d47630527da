package types

// ConfigManager defines the interface for configuration management
type ConfigManager interface {
	GetLogConfig() LogConfig
	GetDatabaseConfig() DatabaseConfig
	GetGuardConfig() GuardConfig
	GetResolverConfig() ResolverConfig
	GetHistoryConfig() HistoryConfig
	GetPrefsPath() string
	GetDataDir() string
	IsDebugMode() bool
	Validate() error
	DisplayAppConfig()
	ReloadConfig() error
}

// LogConfig represents logging configuration
type LogConfig struct {
	Level      string `json:"level"`
	Format     string `json:"format"`
	EnableFile bool   `json:"enable_file"`
	FilePath   string `json:"file_path"`
}

// DatabaseConfig represents database configuration
type DatabaseConfig struct {
	DSN string `json:"dsn"`
}

// GuardConfig represents process guard configuration
type GuardConfig struct {
	// ProcessNames is the executable allow-list matched case-insensitively
	// against running process image names.
	ProcessNames []string `json:"process_names"`
	// PollIntervalSeconds is the wait-for-exit polling cadence.
	PollIntervalSeconds int `json:"poll_interval_seconds"`
}

// ResolverConfig represents profile resolver configuration
type ResolverConfig struct {
	// DocumentsDir is the root under which the game settings tree lives.
	// Defaults to the user's Documents folder.
	DocumentsDir string `json:"documents_dir"`
}

// HistoryConfig represents apply-history ledger configuration
type HistoryConfig struct {
	// RetentionDays prunes apply records older than this. Zero disables
	// pruning. Backup files on disk are never touched.
	RetentionDays int `json:"retention_days"`
}
