package database

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yukikurage/learning-admin-api/internal/config"
)

// InMemoryDSN is a private in-memory SQLite database.
const InMemoryDSN = ":memory:"

// Open connects to the database selected by cfg.Driver.
func Open(cfg config.DatabaseConfig, debug bool, log *zap.Logger) (*gorm.DB, error) {
	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	gormLog, err := newGormLogger(log, debug)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormLog,
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg.Driver == "sqlite" {
		if err := pinSingleConnection(db); err != nil {
			return nil, err
		}
	}

	log.Info("Database connection established", zap.String("driver", cfg.Driver))
	return db, nil
}

// newGormLogger routes gorm's SQL, slow-query and error traces into zap.
// Debug mode logs every statement at info level; otherwise only warnings
// and errors are written.
func newGormLogger(log *zap.Logger, debug bool) (logger.Interface, error) {
	level, zapLevel := logger.Warn, zap.WarnLevel
	if debug {
		level, zapLevel = logger.Info, zap.InfoLevel
	}

	std, err := zap.NewStdLogAt(log.Named("gorm"), zapLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to create gorm logger: %w", err)
	}
	return logger.New(std, logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
	}), nil
}

// OpenSQLite opens an SQLite database; used by tests and the in-memory demo.
func OpenSQLite(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	if err := pinSingleConnection(db); err != nil {
		return nil, err
	}
	return db, nil
}

func dialectorFor(cfg config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "sqlite":
		dsn := cfg.DSN
		if dsn == "" {
			dsn = InMemoryDSN
		}
		return sqlite.Open(dsn), nil
	case "postgres":
		dsn := cfg.DSN
		if dsn == "" {
			dsn = fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
				cfg.Host, cfg.User, cfg.Password, cfg.Name, cfg.Port)
		}
		return postgres.Open(dsn), nil
	case "mysql":
		dsn := cfg.DSN
		if dsn == "" {
			dsn = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
				cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Name)
		}
		return mysql.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// pinSingleConnection keeps one connection open: every new connection to an
// in-memory SQLite database would see an empty schema.
func pinSingleConnection(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)
	return nil
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
