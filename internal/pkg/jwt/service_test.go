package jwt

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestHMACService_AccessRoundTrip(t *testing.T) {
	svc := NewHMACService("access", "refresh", time.Minute, time.Hour)
	userID := uuid.New()

	token, err := svc.GenerateAccessToken(userID, "t@example.com")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.UserID != userID || claims.Email != "t@example.com" {
		t.Fatalf("unexpected claims %+v", claims)
	}
	if claims.TokenType != TokenTypeAccess {
		t.Fatalf("expected access type, got %s", claims.TokenType)
	}
	if svc.IsRefreshToken(claims) {
		t.Fatalf("access token misclassified as refresh")
	}
}

func TestHMACService_RefreshRoundTrip(t *testing.T) {
	svc := NewHMACService("access", "refresh", time.Minute, time.Hour)

	token, err := svc.GenerateRefreshToken(uuid.New())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !svc.IsRefreshToken(claims) {
		t.Fatalf("refresh token not recognized")
	}
}

func TestHMACService_Expired(t *testing.T) {
	svc := NewHMACService("access", "refresh", time.Minute, time.Hour)
	token, err := svc.GenerateAccessToken(uuid.New(), "")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	svc.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	if _, err := svc.ValidateToken(token); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestHMACService_WrongSecret(t *testing.T) {
	issuer := NewHMACService("access-a", "refresh-a", time.Minute, time.Hour)
	verifier := NewHMACService("access-b", "refresh-b", time.Minute, time.Hour)

	token, err := issuer.GenerateAccessToken(uuid.New(), "")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := verifier.ValidateToken(token); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestHMACService_Garbage(t *testing.T) {
	svc := NewHMACService("access", "refresh", time.Minute, time.Hour)
	if _, err := svc.ValidateToken("not-a-token"); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}
