package database

import (
	"fmt"
	"strings"

	"github.com/m-karthika14/mindmirrorai/internal/config"
	"github.com/m-karthika14/mindmirrorai/internal/logging"
	"github.com/m-karthika14/mindmirrorai/internal/models"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var DB *gorm.DB

// Init opens the configured database, runs migrations and installs the
// connection as DB.
func Init(conf config.DatabaseConfig, log *zap.Logger) error {
	db, err := Open(conf, log)
	if err != nil {
		return err
	}
	if err := Migrate(db, log); err != nil {
		return err
	}
	DB = db
	return nil
}

// Open connects with gorm using either the postgres or the sqlite driver.
func Open(conf config.DatabaseConfig, log *zap.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch strings.ToLower(conf.Driver) {
	case "postgres", "postgresql":
		dialector = postgres.Open(conf.DSN())
	case "sqlite", "":
		dialector = sqlite.Open(conf.SQLitePath)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", conf.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logging.NewGormZapLogger(log, logging.ParseGormLevel(conf.LogLevel)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// An in-memory sqlite database exists per connection.
	if strings.Contains(conf.SQLitePath, ":memory:") && dialector.Name() == "sqlite" {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get sql.DB: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	log.Info("Database connection established successfully.", zap.String("driver", dialector.Name()))
	return db, nil
}

// Migrate creates or updates the session and report tables.
func Migrate(db *gorm.DB, log *zap.Logger) error {
	if err := db.AutoMigrate(&models.SessionRecord{}, &models.ReportRecord{}); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	// Listing a user's reports filters on user and game and sorts by time.
	listIndex := `CREATE INDEX IF NOT EXISTS idx_reports_user_game_created ON report_records (user_id, game_type, created_at DESC);`
	if err := db.Exec(listIndex).Error; err != nil {
		return fmt.Errorf("failed to create report listing index: %w", err)
	}
	log.Info("Database migrations completed successfully.")
	return nil
}
