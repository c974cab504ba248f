package database

import (
	"fmt"

	"github.com/gdg-garage/potluck-signup/internal/config"
	"github.com/gdg-garage/potluck-signup/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func Connect(cfg *config.Config) *gorm.DB {
	dsn := cfg.DatabaseDSN
	if cfg.DatabaseDriver == "" || cfg.DatabaseDriver == "sqlite" {
		dsn = cfg.DatabasePath
	}

	db, err := Open(cfg.DatabaseDriver, dsn)
	if err != nil {
		logrus.Fatalf("Failed to connect to database: %v", err)
	}

	if err := Migrate(db); err != nil {
		logrus.Fatalf("Failed to auto migrate: %v", err)
	}

	if err := SeedCategories(db); err != nil {
		logrus.Errorf("Failed to seed default categories: %v", err)
	}

	return db
}

// Open connects to sqlite, postgres or mysql.
func Open(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "", "sqlite":
		dialector = sqlite.Open(dsn)
	case "postgres":
		dialector = postgres.Open(dsn)
	case "mysql":
		dialector = mysql.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)})
	if err != nil {
		return nil, err
	}

	if driver == "" || driver == "sqlite" {
		// sqlite serializes writers; one connection also keeps ":memory:" databases shared.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.APIKey{},
		&models.Potluck{},
		&models.Category{},
		&models.PotluckCategory{},
		&models.Registration{},
		&models.RegistrationHistory{},
	)
}
