// Package clients resolves a raw phone string to a client record for public booking.
package clients

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/physia/backend/internal/metrics"
	"github.com/physia/backend/internal/phone"
	"github.com/physia/backend/internal/repo"
)

var (
	ErrInvalidPhone = errors.New("clients: invalid phone number")
	ErrNotFound     = errors.New("clients: no client with that phone")
)

// Finder looks a client up by the exact stored phone string.
type Finder interface {
	FindClientByPhone(ctx context.Context, orgID uuid.UUID, phone string) (*repo.Client, error)
}

type Lookup struct {
	finder Finder
	log    zerolog.Logger
}

func NewLookup(finder Finder, logger zerolog.Logger) *Lookup {
	return &Lookup{finder: finder, log: logger.With().Str("component", "clients").Logger()}
}

// ByPhone tries every storage format of raw in priority order and returns the first hit.
// An invalid number fails with ErrInvalidPhone without touching the store.
func (l *Lookup) ByPhone(ctx context.Context, orgID uuid.UUID, raw string) (*repo.Client, error) {
	if !phone.IsValid(raw) {
		metrics.PhoneLookups.WithLabelValues(metrics.LookupInvalid).Inc()
		return nil, ErrInvalidPhone
	}
	for _, v := range phone.SearchVariations(raw) {
		c, err := l.finder.FindClientByPhone(ctx, orgID, v)
		if errors.Is(err, repo.ErrNotFound) {
			continue
		}
		if err != nil {
			metrics.PhoneLookups.WithLabelValues(metrics.LookupFailed).Inc()
			l.log.Error().Err(err).Str("organization_id", orgID.String()).Msg("client phone lookup")
			return nil, fmt.Errorf("find client by phone: %w", err)
		}
		metrics.PhoneLookups.WithLabelValues(metrics.LookupFound).Inc()
		return c, nil
	}
	metrics.PhoneLookups.WithLabelValues(metrics.LookupNotFound).Inc()
	return nil, ErrNotFound
}
