package repo

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

func TestMapWriteError(t *testing.T) {
	cases := []struct {
		name string
		in   error
		want error
	}{
		{"exclusion", &pgconn.PgError{Code: "23P01"}, ErrSlotTaken},
		{"wrapped exclusion", fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23P01"}), ErrSlotTaken},
		{"unique", &pgconn.PgError{Code: "23505"}, ErrDuplicate},
		{"not found", gorm.ErrRecordNotFound, ErrNotFound},
	}
	for _, c := range cases {
		if got := mapWriteError(c.in); !errors.Is(got, c.want) {
			t.Errorf("%s: got %v, want %v", c.name, got, c.want)
		}
	}
	other := &pgconn.PgError{Code: "23503"}
	if got := mapWriteError(other); got != other {
		t.Errorf("foreign key violation should pass through, got %v", got)
	}
	if mapWriteError(nil) != nil {
		t.Error("nil should stay nil")
	}
}
