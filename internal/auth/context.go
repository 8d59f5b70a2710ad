package auth

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const claimsKey contextKey = "claims"

func WithClaims(ctx context.Context, c *Claims) context.Context {
	return context.WithValue(ctx, claimsKey, c)
}

func ClaimsFrom(ctx context.Context) *Claims {
	if c, _ := ctx.Value(claimsKey).(*Claims); c != nil {
		return c
	}
	return nil
}

// OrganizationIDFrom returns the caller's organization, uuid.Nil when unauthenticated.
func OrganizationIDFrom(ctx context.Context) uuid.UUID {
	c := ClaimsFrom(ctx)
	if c == nil {
		return uuid.Nil
	}
	id, err := uuid.Parse(c.OrganizationID)
	if err != nil {
		return uuid.Nil
	}
	return id
}

// ProfessionalIDFrom returns the professional bound to the token, if any.
func ProfessionalIDFrom(ctx context.Context) *uuid.UUID {
	c := ClaimsFrom(ctx)
	if c == nil || c.ProfessionalID == nil {
		return nil
	}
	id, err := uuid.Parse(*c.ProfessionalID)
	if err != nil {
		return nil
	}
	return &id
}

func UserIDFrom(ctx context.Context) string {
	c := ClaimsFrom(ctx)
	if c == nil {
		return ""
	}
	return c.UserID
}

func RoleFrom(ctx context.Context) string {
	c := ClaimsFrom(ctx)
	if c == nil {
		return ""
	}
	return c.Role
}

// IsStaff reports whether the caller manages the whole organization's agenda.
func IsStaff(ctx context.Context) bool {
	r := RoleFrom(ctx)
	return r == RoleOwner || r == RoleStaff
}
