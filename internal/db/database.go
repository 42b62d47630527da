// Package db opens the apply-history ledger database. SQLite under the data
// directory is the default; a MySQL or PostgreSQL DSN switches driver.
package db

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Recol/bf6-settings-manager/internal/types"
	"github.com/Recol/bf6-settings-manager/internal/utils"
)

var DB *gorm.DB

type driverKind int

const (
	driverSQLite driverKind = iota
	driverMySQL
	driverPostgres
)

// detectDriver picks the driver from the DSN shape. Anything that is not
// recognizably PostgreSQL or MySQL is treated as a SQLite path or URI.
func detectDriver(dsn string) driverKind {
	if strings.HasPrefix(dsn, "postgres://") ||
		strings.HasPrefix(dsn, "postgresql://") ||
		(strings.Contains(dsn, "host=") && strings.Contains(dsn, "dbname=")) {
		return driverPostgres
	}
	if strings.Contains(dsn, "@tcp(") || strings.Contains(dsn, "@unix(") {
		return driverMySQL
	}
	return driverSQLite
}

// sqliteDSN appends the standing pragma set to a SQLite DSN. WAL with
// NORMAL sync keeps single-connection writes fast and safe; cache size and
// temp store stay tunable through the environment.
func sqliteDSN(dsn string) string {
	cacheSize := utils.GetEnvOrDefault("SQLITE_CACHE_SIZE", "2000")
	tempStore := utils.GetEnvOrDefault("SQLITE_TEMP_STORE", "MEMORY")
	params := fmt.Sprintf("_pragma=foreign_keys(1)&_busy_timeout=10000&_journal_mode=WAL&_synchronous=NORMAL&cache=shared&_cache_size=%s&_temp_store=%s", cacheSize, tempStore)
	delimiter := "?"
	if strings.Contains(dsn, "?") {
		delimiter = "&"
	}
	return dsn + delimiter + params
}

// NewDB connects the ledger database described by the configured DSN.
func NewDB(configManager types.ConfigManager) (*gorm.DB, error) {
	dsn := configManager.GetDatabaseConfig().DSN
	if dsn == "" {
		return nil, fmt.Errorf("DATABASE_DSN is not configured")
	}

	var gormLogger logger.Interface
	if configManager.GetLogConfig().Level == "debug" {
		// Route GORM logs through logrus so they reach the same sinks
		gormLogger = logger.New(
			log.New(logrus.StandardLogger().Out, "\r\n", log.LstdFlags),
			logger.Config{
				SlowThreshold:             time.Second,
				LogLevel:                  logger.Info,
				IgnoreRecordNotFoundError: true,
				Colorful:                  true,
			},
		)
	}

	driver := detectDriver(dsn)
	var dialector gorm.Dialector
	switch driver {
	case driverPostgres:
		dialector = postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		})
	case driverMySQL:
		if !strings.Contains(dsn, "parseTime") {
			if strings.Contains(dsn, "?") {
				dsn += "&parseTime=true"
			} else {
				dsn += "?parseTime=true"
			}
		}
		dialector = mysql.Open(dsn)
	default:
		// SQLite file: URIs carry their own path handling; only plain
		// filesystem paths need their parent directory created.
		if !strings.HasPrefix(dsn, "file:") && dsn != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
		dialector = sqlite.Open(sqliteDSN(dsn))
	}

	var err error
	DB, err = gorm.Open(dialector, &gorm.Config{
		Logger:      gormLogger,
		PrepareStmt: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	if driver == driverSQLite {
		// A single connection avoids SQLite write-lock churn.
		sqlDB.SetMaxIdleConns(1)
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetConnMaxLifetime(time.Hour)
	} else {
		maxIdle, maxOpen := calculateAdaptivePoolSize()
		sqlDB.SetMaxIdleConns(maxIdle)
		sqlDB.SetMaxOpenConns(maxOpen)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	return DB, nil
}

// calculateAdaptivePoolSize scales the server-database pool with the CPU
// count, clamped to [4, 32] open connections with half of them idle.
func calculateAdaptivePoolSize() (maxIdle, maxOpen int) {
	maxOpen = runtime.NumCPU() * 2
	if maxOpen < 4 {
		maxOpen = 4
	}
	if maxOpen > 32 {
		maxOpen = 32
	}
	return maxOpen / 2, maxOpen
}

// Close shuts the underlying connection pool down.
func Close(gormDB *gorm.DB) error {
	if gormDB == nil {
		return nil
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
