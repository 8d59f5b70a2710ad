package testutil

import (
	"context"
	"os"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/physia/backend/internal/migrate"
	"github.com/physia/backend/migrations"
)

// OpenDB opens a gorm connection from DATABASE_URL. It returns nil when the variable is unset
// or the database cannot be reached, so integration tests can skip.
func OpenDB(ctx context.Context) (*gorm.DB, string) {
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		return nil, ""
	}
	db, err := gorm.Open(postgres.Open(url), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, url
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, url
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, url
	}
	return db, url
}

// MustMigrate applies the embedded migrations.
func MustMigrate(ctx context.Context, db *gorm.DB) error {
	return migrate.Run(ctx, db, migrations.FS)
}
