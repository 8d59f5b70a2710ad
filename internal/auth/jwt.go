package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	RoleOwner        = "OWNER"
	RoleStaff        = "STAFF"
	RoleProfessional = "PROFESSIONAL"
)

// Claims are issued by the identity provider; this service only verifies them.
type Claims struct {
	jwt.RegisteredClaims
	UserID         string `json:"user_id"`
	Role           string `json:"role"`
	OrganizationID string `json:"organization_id"`
	// ProfessionalID is set for PROFESSIONAL tokens.
	ProfessionalID *string `json:"professional_id,omitempty"`
}

var ErrMissingOrganization = errors.New("auth: token has no organization")

// BuildJWT signs an HS256 token. Used by the dev `token` command and tests.
func BuildJWT(secret []byte, userID, role, organizationID string, professionalID *string, exp time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(exp)),
		},
		UserID:         userID,
		Role:           role,
		OrganizationID: organizationID,
		ProfessionalID: professionalID,
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(secret)
}

func ParseJWT(secret []byte, tokenString string) (*Claims, error) {
	t, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	c, ok := t.Claims.(*Claims)
	if !ok || !t.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	if _, err := uuid.Parse(c.OrganizationID); err != nil {
		return nil, ErrMissingOrganization
	}
	return c, nil
}
