// Package database opens the PostgreSQL connection shared by the server and the reminder job.
package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Options configures Open.
type Options struct {
	URL             string
	MaxConns        int
	MaxConnLifetime time.Duration
	// Debug logs every statement.
	Debug bool
}

// Open connects with gorm over pgx and pings the database.
func Open(ctx context.Context, o Options, log zerolog.Logger) (*gorm.DB, error) {
	if o.URL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	level := logger.Warn
	if o.Debug {
		level = logger.Info
	}
	db, err := gorm.Open(postgres.Open(o.URL), &gorm.Config{Logger: logger.Default.LogMode(level)})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if o.MaxConns > 0 {
		sqlDB.SetMaxOpenConns(o.MaxConns)
		sqlDB.SetMaxIdleConns(o.MaxConns)
	}
	if o.MaxConnLifetime > 0 {
		sqlDB.SetConnMaxLifetime(o.MaxConnLifetime)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	log.Info().Str("component", "database").Int("max_conns", o.MaxConns).Msg("postgres connected")
	return db, nil
}

// Close releases the pool behind db.
func Close(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
