package database

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Options selects the driver backing the fallback store.
type Options struct {
	Driver  string // "sqlite" or "mysql"
	DSN     string
	Verbose bool
	Retries int
}

// Connect opens the store database, retrying while it comes up.
func Connect(opts Options) (*gorm.DB, error) {
	if opts.Driver == "" {
		opts.Driver = "sqlite"
	}
	dialector, err := dialectorFor(opts.Driver, opts.DSN)
	if err != nil {
		return nil, err
	}

	level := logger.Warn
	if opts.Verbose {
		level = logger.Info
	}
	retries := opts.Retries
	if retries <= 0 {
		retries = 5
	}

	var db *gorm.DB
	for i := 0; i < retries; i++ {
		db, err = gorm.Open(dialector, &gorm.Config{
			Logger: logger.Default.LogMode(level),
		})
		if err == nil {
			break
		}
		log.Printf("Failed to open %s store. Retrying in 2 seconds... (%d/%d)", opts.Driver, i+1, retries)
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s store after %d attempts: %w", opts.Driver, retries, err)
	}

	if opts.Driver == "sqlite" {
		// a single writer avoids "database is locked" between snapshot and outbox updates
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.SetMaxOpenConns(1)
		}
	}

	log.Printf("✅ Connected to %s fallback store", opts.Driver)
	return db, nil
}

func dialectorFor(driver, dsn string) (gorm.Dialector, error) {
	if dsn == "" {
		return nil, fmt.Errorf("DB_DSN is empty")
	}
	switch driver {
	case "sqlite":
		return sqlite.Open(dsn), nil
	case "mysql":
		return mysql.Open(dsn), nil
	}
	return nil, fmt.Errorf("unsupported DB_DRIVER %q (use sqlite or mysql)", driver)
}
