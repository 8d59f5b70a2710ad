package database

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
)

func TestOpen_RequiresURL(t *testing.T) {
	if _, err := Open(context.Background(), Options{}, zerolog.Nop()); err == nil {
		t.Fatal("expected error without DATABASE_URL")
	}
}
