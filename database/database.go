package database

import (
	"fmt"

	"expense-tracker-backend/config"
	"expense-tracker-backend/logger"
	"expense-tracker-backend/models"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Connect opens the configured database and migrates the schema.
// PostgreSQL goes through lib/pq so constraint errors arrive as *pq.Error.
func Connect(cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case "postgres":
		dialector = postgres.New(postgres.Config{
			DriverName: "postgres",
			DSN:        cfg.DatabaseURL,
		})
	case "sqlite":
		dialector = sqlite.Open(cfg.DatabaseURL)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DBDriver)
	}

	db, err := open(dialector, cfg.DBDriver, log, logger.GormLevel(cfg.LogLevel))
	if err != nil {
		return nil, err
	}
	log.Info("Database connected", zap.String("driver", cfg.DBDriver))

	if err := Migrate(db); err != nil {
		return nil, err
	}
	log.Info("Database migrated")
	return db, nil
}

func open(dialector gorm.Dialector, driver string, log *zap.Logger, level gormlogger.LogLevel) (*gorm.DB, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.NewGormLogger(log, level),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if driver == "sqlite" {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		// One connection keeps ":memory:" databases and the pragma below alive.
		sqlDB.SetMaxOpenConns(1)
		if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.User{}, &models.Category{}, &models.Expense{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}
