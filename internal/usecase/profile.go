package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"tutorhub/internal/repository"
)

// TutorProfileView combines the identity row with the tutor attributes the
// dashboard edits.
type TutorProfileView struct {
	Profile repository.Profile
	Tutor   repository.TutorProfile
}

type TutorProfileInput struct {
	Subjects          []string
	City              string
	Area              string
	HourlyRate        float64
	ProfileCompletion int
}

type ProfileUsecase interface {
	Get(ctx context.Context, userID uuid.UUID) (TutorProfileView, error)
	Upsert(ctx context.Context, userID uuid.UUID, in TutorProfileInput) (repository.TutorProfile, error)
}

type Profiles struct {
	profiles repository.ProfileRepository
}

func NewProfiles(profiles repository.ProfileRepository) *Profiles {
	return &Profiles{profiles: profiles}
}

func (u *Profiles) Get(ctx context.Context, userID uuid.UUID) (TutorProfileView, error) {
	if userID == uuid.Nil {
		return TutorProfileView{}, ErrUnauthorized
	}

	p, err := u.profiles.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return TutorProfileView{}, ErrNotFound
		}
		return TutorProfileView{}, ErrInternal
	}
	p.PasswordHash = ""

	view := TutorProfileView{Profile: p}

	tp, err := u.profiles.GetTutorProfile(ctx, userID)
	if err == nil {
		view.Tutor = tp
	} else if !errors.Is(err, repository.ErrTutorProfileNotFound) {
		return TutorProfileView{}, ErrInternal
	}
	// Missing tutor profile is fine: onboarding has not reached that step yet.
	view.Tutor.UserID = userID

	return view, nil
}

// Upsert writes the tutor attributes wholesale, keyed by user id. Verified
// and rating are operator-owned and never writable through this path.
func (u *Profiles) Upsert(ctx context.Context, userID uuid.UUID, in TutorProfileInput) (repository.TutorProfile, error) {
	if userID == uuid.Nil {
		return repository.TutorProfile{}, ErrUnauthorized
	}
	if in.ProfileCompletion < 0 || in.ProfileCompletion > 100 {
		return repository.TutorProfile{}, ErrInvalidInput
	}

	subjects := make([]string, 0, len(in.Subjects))
	for _, s := range in.Subjects {
		if s = strings.TrimSpace(s); s != "" {
			subjects = append(subjects, s)
		}
	}

	existing, err := u.profiles.GetTutorProfile(ctx, userID)
	if err != nil && !errors.Is(err, repository.ErrTutorProfileNotFound) {
		return repository.TutorProfile{}, ErrInternal
	}

	tp := repository.TutorProfile{
		UserID:            userID,
		Subjects:          subjects,
		City:              strings.TrimSpace(in.City),
		Area:              strings.TrimSpace(in.Area),
		HourlyRate:        in.HourlyRate,
		Verified:          existing.Verified,
		Rating:            existing.Rating,
		ProfileCompletion: in.ProfileCompletion,
	}

	if err := u.profiles.UpsertTutorProfile(ctx, tp); err != nil {
		return repository.TutorProfile{}, ErrInternal
	}

	updated, err := u.profiles.GetTutorProfile(ctx, userID)
	if err != nil {
		return tp, nil
	}
	return updated, nil
}
