package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"tutorhub/internal/pkg/jwt"
	"tutorhub/internal/repository"
)

type RegisterInput struct {
	Email    string
	Password string
	FullName string
	Role     string
}

type LoginInput struct {
	Email    string
	Password string
}

type AuthUsecase interface {
	Register(ctx context.Context, in RegisterInput) (repository.Profile, string, string, error)
	Login(ctx context.Context, in LoginInput) (repository.Profile, string, string, error)
	Refresh(ctx context.Context, refreshToken string) (string, string, error)
}

type Auth struct {
	profiles repository.ProfileRepository
	jwt      jwt.Service
}

func NewAuth(profiles repository.ProfileRepository, jwtSvc jwt.Service) *Auth {
	return &Auth{profiles: profiles, jwt: jwtSvc}
}

func (u *Auth) Register(ctx context.Context, in RegisterInput) (repository.Profile, string, string, error) {
	email := normalizeEmail(in.Email)
	if email == "" || len(strings.TrimSpace(in.Password)) < 8 {
		return repository.Profile{}, "", "", ErrInvalidInput
	}

	role := in.Role
	if role != "student" {
		role = "tutor"
	}

	if _, err := u.profiles.GetByEmail(ctx, email); err == nil {
		return repository.Profile{}, "", "", ErrEmailAlreadyInUse
	} else if !errors.Is(err, repository.ErrProfileNotFound) {
		return repository.Profile{}, "", "", ErrInternal
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return repository.Profile{}, "", "", ErrInternal
	}

	p := repository.Profile{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hash),
		FullName:     strings.TrimSpace(in.FullName),
		Role:         role,
	}
	if err := u.profiles.Create(ctx, p); err != nil {
		// Unique-violation race: a concurrent register with the same email.
		if _, exErr := u.profiles.GetByEmail(ctx, email); exErr == nil {
			return repository.Profile{}, "", "", ErrEmailAlreadyInUse
		}
		return repository.Profile{}, "", "", ErrInternal
	}

	return u.issueTokens(p)
}

func (u *Auth) Login(ctx context.Context, in LoginInput) (repository.Profile, string, string, error) {
	email := normalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return repository.Profile{}, "", "", ErrInvalidCredentials
	}

	p, err := u.profiles.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return repository.Profile{}, "", "", ErrInvalidCredentials
		}
		return repository.Profile{}, "", "", ErrInternal
	}

	if err := bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte(in.Password)); err != nil {
		return repository.Profile{}, "", "", ErrInvalidCredentials
	}

	return u.issueTokens(p)
}

func (u *Auth) Refresh(ctx context.Context, refreshToken string) (string, string, error) {
	if refreshToken == "" {
		return "", "", ErrUnauthorized
	}

	claims, err := u.jwt.ValidateToken(refreshToken)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", "", ErrRefreshTokenExpired
		}
		return "", "", ErrInvalidRefreshToken
	}
	if !u.jwt.IsRefreshToken(claims) {
		return "", "", ErrInvalidRefreshToken
	}

	p, err := u.profiles.GetByID(ctx, claims.UserID)
	if err != nil {
		return "", "", ErrInternal
	}

	_, access, refresh, err := u.issueTokens(p)
	return access, refresh, err
}

func (u *Auth) issueTokens(p repository.Profile) (repository.Profile, string, string, error) {
	access, err := u.jwt.GenerateAccessToken(p.ID, p.Email)
	if err != nil {
		return repository.Profile{}, "", "", ErrInternal
	}
	refresh, err := u.jwt.GenerateRefreshToken(p.ID)
	if err != nil {
		return repository.Profile{}, "", "", ErrInternal
	}
	p.PasswordHash = ""
	return p, access, refresh, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
