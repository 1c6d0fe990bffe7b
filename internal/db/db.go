package db

import (
	"log"
	"os"
	"strings"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Init opens the process-wide GORM database connection.
// It reads the DATABASE_URL environment variable and defaults to a local
// SQLite file when it is unset. The returned handle is shared by every
// store for the lifetime of the process.
func Init() (*gorm.DB, error) {
	dbURL := os.Getenv("DATABASE_URL")

	if dbURL == "" {
		dbURL = "sqlite://mindhaven.db"
		log.Println("DATABASE_URL not set, defaulting to 'sqlite://mindhaven.db'")
	}

	var dialector gorm.Dialector

	if strings.HasPrefix(dbURL, "postgres://") {
		dsn := strings.TrimPrefix(dbURL, "postgres://")
		dialector = postgres.Open(dsn)
		log.Println("Connecting to PostgreSQL database...")
	} else if strings.HasPrefix(dbURL, "sqlite://") {
		dsn := strings.TrimPrefix(dbURL, "sqlite://")
		dialector = sqlite.Open(dsn)
		log.Println("Connecting to SQLite database at", dsn)
	} else {
		log.Fatalf("Invalid DATABASE_URL prefix. Must start with 'postgres://' or 'sqlite://'")
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent), // Be quiet by default
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)

	log.Println("Database connection established.")
	return db, nil
}
