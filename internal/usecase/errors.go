package usecase

import "errors"

var (
	ErrUnauthorized        = errors.New("unauthorized")
	ErrInvalidInput        = errors.New("invalid input")
	ErrNotFound            = errors.New("not found")
	ErrInternal            = errors.New("internal error")
	ErrPrimaryWriteFailed  = errors.New("primary write failed")
	ErrEmailAlreadyInUse   = errors.New("email already registered")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
)
