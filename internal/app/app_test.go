package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Recol/bf6-settings-manager/internal/history"
	"github.com/Recol/bf6-settings-manager/internal/models"
	"github.com/Recol/bf6-settings-manager/internal/prefs"
	"github.com/Recol/bf6-settings-manager/internal/types"
)

// mockConfigManager implements types.ConfigManager for testing
type mockConfigManager struct {
	prefsPath string
}

func (m *mockConfigManager) GetLogConfig() types.LogConfig {
	return types.LogConfig{Level: "info"}
}

func (m *mockConfigManager) GetDatabaseConfig() types.DatabaseConfig {
	return types.DatabaseConfig{DSN: ":memory:"}
}

func (m *mockConfigManager) GetGuardConfig() types.GuardConfig {
	return types.GuardConfig{ProcessNames: []string{"bf6.exe"}, PollIntervalSeconds: 2}
}

func (m *mockConfigManager) GetResolverConfig() types.ResolverConfig {
	return types.ResolverConfig{DocumentsDir: "."}
}

func (m *mockConfigManager) GetHistoryConfig() types.HistoryConfig {
	return types.HistoryConfig{RetentionDays: 30}
}

func (m *mockConfigManager) GetPrefsPath() string {
	return m.prefsPath
}

func (m *mockConfigManager) GetDataDir() string {
	return "."
}

func (m *mockConfigManager) IsDebugMode() bool {
	return false
}

func (m *mockConfigManager) ReloadConfig() error {
	return nil
}

func (m *mockConfigManager) Validate() error {
	return nil
}

func (m *mockConfigManager) DisplayAppConfig() {}

func testApp(t *testing.T) (*App, *gorm.DB) {
	t.Helper()

	gormDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	// One connection keeps every query on the same in-memory database.
	sqlDB.SetMaxOpenConns(1)

	configManager := &mockConfigManager{prefsPath: filepath.Join(t.TempDir(), "settings.json")}
	application := NewApp(AppParams{
		ConfigManager:  configManager,
		PrefsStore:     prefs.NewStoreWithPath(configManager.GetPrefsPath()),
		HistoryService: history.NewService(gormDB, configManager),
		DB:             gormDB,
	})
	return application, gormDB
}

func TestAppStartMigratesLedger(t *testing.T) {
	application, gormDB := testApp(t)

	require.NoError(t, application.Start())

	assert.True(t, gormDB.Migrator().HasTable(&models.ApplyRecord{}))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	application.Stop(ctx)
}

func TestAppStartLoadsPreferencesFromMissingFile(t *testing.T) {
	application, _ := testApp(t)

	require.NoError(t, application.Start())
	assert.True(t, application.prefsStore.LockAfterApply(), "defaults apply when no preferences file exists")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	application.Stop(ctx)
}

func TestAppStopClosesDatabase(t *testing.T) {
	application, gormDB := testApp(t)
	require.NoError(t, application.Start())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	application.Stop(ctx)

	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	assert.Error(t, sqlDB.Ping(), "connection pool must be closed after Stop")
}
