package database

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/glefebvre/mediadesk/internal/config"
	apperrors "github.com/glefebvre/mediadesk/internal/errors"
	"github.com/glefebvre/mediadesk/internal/logger"
	"github.com/glefebvre/mediadesk/internal/models"
)

// Open connects to the preference store described by cfg and runs
// migrations. logLevel follows the logging.store.level setting.
func Open(cfg config.StoreConfig, log *logger.Logger, logLevel string) (*gorm.DB, error) {
	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	if log == nil {
		log = logger.StoreLogger()
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.NewGormAdapter(log, logLevel, cfg.Driver),
	})
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeStoreConnection, "failed to open preference store").
			WithContext("driver", cfg.Driver)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, apperrors.StoreError("failed to get database instance", err)
	}

	if cfg.Driver == "sqlite" {
		// sqlite serializes writers; one connection avoids SQLITE_BUSY
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(2)
		sqlDB.SetMaxOpenConns(5)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.WithFields(map[string]interface{}{
		"driver": cfg.Driver,
	}).Debug("preference store ready")

	return db, nil
}

func dialectorFor(cfg config.StoreConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "sqlite", "":
		if cfg.Path == "" {
			return nil, apperrors.ConfigError("store.path is required for the sqlite driver", nil)
		}
		if cfg.Path != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
				return nil, apperrors.StoreError("failed to create preference store directory", err)
			}
		}
		return sqlite.Open(cfg.Path), nil
	case "postgres":
		if cfg.DSN == "" {
			return nil, apperrors.ConfigError("store.dsn is required for the postgres driver", nil)
		}
		return postgres.Open(cfg.DSN), nil
	default:
		return nil, apperrors.ConfigError(fmt.Sprintf("unsupported store driver %q", cfg.Driver), nil)
	}
}

// Migrate creates or updates the preference tables
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Preference{}); err != nil {
		return apperrors.StoreError("failed to run migrations", err)
	}
	return nil
}

// HealthCheck verifies database connectivity
func HealthCheck(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		return apperrors.Wrap(err, apperrors.CodeStoreConnection, "preference store ping failed")
	}

	return nil
}

// Close closes the database connection
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	return sqlDB.Close()
}
