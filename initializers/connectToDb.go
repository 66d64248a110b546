package initializers

import (
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const slowQueryThreshold = 200 * time.Millisecond

// ConnectToDB opens the configured database. SQLite is used for local runs
// and tests; it is limited to one connection so writers queue instead of
// failing with SQLITE_BUSY.
func ConnectToDB(cfg DatabaseConfig, log *zap.Logger) (*gorm.DB, error) {
	gormLogger, err := newGormLogger(log)
	if err != nil {
		return nil, err
	}
	gormConfig := &gorm.Config{Logger: gormLogger}

	switch cfg.Driver {
	case "mysql", "":
		if cfg.URL == "" {
			return nil, fmt.Errorf("DB_URL is required for mysql")
		}
		db, err := gorm.Open(mysql.Open(cfg.URL), gormConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to mysql: %w", err)
		}
		return db, nil
	case "sqlite":
		dsn := cfg.URL
		if dsn == "" {
			dsn = "magnets.db"
		}
		db, err := gorm.Open(sqlite.Open(sqliteDSN(dsn)), gormConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite: %w", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to access sqlite pool: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
		return db, nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Driver)
	}
}

// newGormLogger sends gorm's slow-query and error lines to zap at warn
// level. Missing rows are expected lookups and are not logged.
func newGormLogger(log *zap.Logger) (logger.Interface, error) {
	std, err := zap.NewStdLogAt(log.Named("gorm"), zapcore.WarnLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to build gorm logger: %w", err)
	}
	return logger.New(std, logger.Config{
		SlowThreshold:             slowQueryThreshold,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
	}), nil
}

func sqliteDSN(path string) string {
	return fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", path)
}
