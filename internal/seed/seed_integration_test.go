//go:build integration

package seed

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/physia/backend/internal/testutil"
)

func TestRun(t *testing.T) {
	ctx := context.Background()
	db, _ := testutil.OpenDB(ctx)
	if db == nil {
		t.Skip("DATABASE_URL not set or database unreachable")
	}
	if err := testutil.MustMigrate(ctx, db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	res, err := Run(ctx, db, time.Now().UTC(), zerolog.Nop())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Skipped {
		t.Skip("database already has organizations")
	}
	if len(res.Professionals) != 2 {
		t.Errorf("professionals = %d", len(res.Professionals))
	}
	again, err := Run(ctx, db, time.Now().UTC(), zerolog.Nop())
	if err != nil || !again.Skipped {
		t.Errorf("second run = %+v, %v; want skipped", again, err)
	}
}
