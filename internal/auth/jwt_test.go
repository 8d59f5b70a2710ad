package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func TestBuildAndParseJWT(t *testing.T) {
	secret := []byte("test-secret-min-32-chars!!")
	org := uuid.NewString()
	prof := uuid.NewString()
	tok, err := BuildJWT(secret, "user-123", RoleProfessional, org, &prof, time.Hour)
	if err != nil {
		t.Fatalf("BuildJWT: %v", err)
	}
	claims, err := ParseJWT(secret, tok)
	if err != nil {
		t.Fatalf("ParseJWT: %v", err)
	}
	if claims.UserID != "user-123" || claims.Role != RoleProfessional || claims.OrganizationID != org {
		t.Fatalf("claims mismatch: %+v", claims)
	}
	ctx := WithClaims(context.Background(), claims)
	if OrganizationIDFrom(ctx).String() != org {
		t.Errorf("OrganizationIDFrom = %s", OrganizationIDFrom(ctx))
	}
	if p := ProfessionalIDFrom(ctx); p == nil || p.String() != prof {
		t.Errorf("ProfessionalIDFrom = %v", p)
	}
	if IsStaff(ctx) {
		t.Error("professional token reported as staff")
	}
}

func TestParseJWT_WrongSecret(t *testing.T) {
	tok, _ := BuildJWT([]byte("secret-one-min-32-chars-long!!!!"), "u", RoleOwner, uuid.NewString(), nil, time.Hour)
	if _, err := ParseJWT([]byte("secret-two-min-32-chars-long!!!!"), tok); err == nil {
		t.Error("expected signature error")
	}
}

func TestParseJWT_Expired(t *testing.T) {
	secret := []byte("test-secret-min-32-chars!!")
	tok, _ := BuildJWT(secret, "u", RoleOwner, uuid.NewString(), nil, -time.Minute)
	if _, err := ParseJWT(secret, tok); !errors.Is(err, jwt.ErrTokenExpired) {
		t.Errorf("err = %v, want ErrTokenExpired", err)
	}
}

func TestParseJWT_MissingOrganization(t *testing.T) {
	secret := []byte("test-secret-min-32-chars!!")
	tok, _ := BuildJWT(secret, "u", RoleOwner, "", nil, time.Hour)
	if _, err := ParseJWT(secret, tok); !errors.Is(err, ErrMissingOrganization) {
		t.Errorf("err = %v, want ErrMissingOrganization", err)
	}
}

func TestContextWithoutClaims(t *testing.T) {
	ctx := context.Background()
	if OrganizationIDFrom(ctx) != uuid.Nil || ProfessionalIDFrom(ctx) != nil || RoleFrom(ctx) != "" || UserIDFrom(ctx) != "" {
		t.Error("empty context should yield zero values")
	}
}
