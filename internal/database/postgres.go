package database

import (
	"database/sql"
	"fmt"
	"log"

	"github.com/cashwise/backend/internal/config"
	_ "github.com/lib/pq"
)

var db *sql.DB

// InitDB opens the connection pool and checks it with a ping.
func InitDB(cfg config.DatabaseConfig) (*sql.DB, error) {
	var err error
	db, err = sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	// Test connection
	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	log.Println("Database connection established")
	return db, nil
}

// CloseDB closes the pool opened by InitDB.
func CloseDB() error {
	if db != nil {
		return db.Close()
	}
	return nil
}

// InitDatabase initializes the database and applies pending migrations,
// exiting the process on failure.
func InitDatabase(cfg config.DatabaseConfig) *sql.DB {
	db, err := InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	if err := RunMigrations(db, cfg.Name); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	return db
}
