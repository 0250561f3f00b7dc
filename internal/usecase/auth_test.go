package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"tutorhub/internal/pkg/jwt"
	"tutorhub/internal/repository"
)

func testJWT() jwt.Service {
	return jwt.NewHMACService("access-secret", "refresh-secret", time.Minute, time.Hour)
}

func TestAuth_Register_Success(t *testing.T) {
	profiles := newStubProfileRepo()
	uc := NewAuth(profiles, testJWT())

	p, access, refresh, err := uc.Register(context.Background(), RegisterInput{
		Email:    "  Tutor@Example.COM ",
		Password: "supersecret",
		FullName: "Priya",
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if p.Email != "tutor@example.com" {
		t.Fatalf("email should be normalized, got %q", p.Email)
	}
	if p.Role != "tutor" {
		t.Fatalf("default role should be tutor, got %q", p.Role)
	}
	if p.PasswordHash != "" {
		t.Fatalf("password hash must not leave the usecase")
	}
	if access == "" || refresh == "" {
		t.Fatalf("expected both tokens")
	}
	if len(profiles.created) != 1 {
		t.Fatalf("expected 1 created profile")
	}
}

func TestAuth_Register_DuplicateEmail(t *testing.T) {
	profiles := newStubProfileRepo()
	existing := repository.Profile{ID: uuid.New(), Email: "taken@example.com"}
	profiles.profiles[existing.ID] = existing

	uc := NewAuth(profiles, testJWT())
	_, _, _, err := uc.Register(context.Background(), RegisterInput{
		Email:    "taken@example.com",
		Password: "supersecret",
	})
	if !errors.Is(err, ErrEmailAlreadyInUse) {
		t.Fatalf("expected ErrEmailAlreadyInUse, got %v", err)
	}
}

func TestAuth_Register_ShortPassword(t *testing.T) {
	uc := NewAuth(newStubProfileRepo(), testJWT())
	_, _, _, err := uc.Register(context.Background(), RegisterInput{
		Email:    "a@example.com",
		Password: "short",
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestAuth_Login(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}

	profiles := newStubProfileRepo()
	p := repository.Profile{ID: uuid.New(), Email: "t@example.com", PasswordHash: string(hash)}
	profiles.profiles[p.ID] = p

	uc := NewAuth(profiles, testJWT())

	if _, _, _, err := uc.Login(context.Background(), LoginInput{Email: "t@example.com", Password: "wrong"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password should fail with ErrInvalidCredentials, got %v", err)
	}
	if _, _, _, err := uc.Login(context.Background(), LoginInput{Email: "missing@example.com", Password: "whatever"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown email should fail with ErrInvalidCredentials, got %v", err)
	}

	got, access, _, err := uc.Login(context.Background(), LoginInput{Email: "T@example.com", Password: "correct-horse"})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got.ID != p.ID || access == "" {
		t.Fatalf("unexpected login result")
	}
}

func TestAuth_Refresh(t *testing.T) {
	profiles := newStubProfileRepo()
	p := repository.Profile{ID: uuid.New(), Email: "t@example.com"}
	profiles.profiles[p.ID] = p

	svc := testJWT()
	uc := NewAuth(profiles, svc)

	refresh, err := svc.GenerateRefreshToken(p.ID)
	if err != nil {
		t.Fatalf("generate refresh: %v", err)
	}
	access, err := svc.GenerateAccessToken(p.ID, p.Email)
	if err != nil {
		t.Fatalf("generate access: %v", err)
	}

	if _, _, err := uc.Refresh(context.Background(), access); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("access token must not refresh, got %v", err)
	}

	newAccess, newRefresh, err := uc.Refresh(context.Background(), refresh)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if newAccess == "" || newRefresh == "" {
		t.Fatalf("expected a fresh token pair")
	}
}
