package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tutorhub/internal/repository"
)

// BadgeCache is the slice of the redis cache the badge feed uses. Nil-safe
// implementations bypass caching entirely.
type BadgeCache interface {
	GetJSON(ctx context.Context, key string, out any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// NotificationView is a notification plus the best-effort resolved identity
// of the student it originated from. Student stays nil when resolution
// degrades; the notification itself is never dropped for that.
type NotificationView struct {
	Notification repository.Notification
	Student      *StudentIdentity
}

type NotificationFeedUsecase interface {
	Recent(ctx context.Context, userID uuid.UUID) ([]NotificationView, error)
	MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error
}

type NotificationFeed struct {
	notifications repository.NotificationRepository
	profiles      repository.ProfileRepository
	cache         BadgeCache
	limit         int
	logger        *zap.Logger
}

func NewNotificationFeed(
	notifications repository.NotificationRepository,
	profiles repository.ProfileRepository,
	cache BadgeCache,
	limit int,
	logger *zap.Logger,
) *NotificationFeed {
	if limit <= 0 {
		limit = 5
	}
	return &NotificationFeed{notifications: notifications, profiles: profiles, cache: cache, limit: limit, logger: logger}
}

// Recent returns the newest interest notifications for the user, capped at
// the configured feed size, each annotated with the originating student's
// identity when it can be resolved.
func (u *NotificationFeed) Recent(ctx context.Context, userID uuid.UUID) ([]NotificationView, error) {
	if userID == uuid.Nil {
		return nil, ErrUnauthorized
	}

	rows, err := u.notifications.ListRecentByType(ctx, userID, repository.NotificationTypeInterest, u.limit)
	if err != nil {
		if u.logger != nil {
			u.logger.Warn("notification feed: recent fetch failed", zap.Error(err))
		}
		return []NotificationView{}, nil
	}

	out := make([]NotificationView, 0, len(rows))
	for _, n := range rows {
		out = append(out, NotificationView{
			Notification: n,
			Student:      u.resolveStudent(ctx, n),
		})
	}
	return out, nil
}

func (u *NotificationFeed) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	if userID == uuid.Nil {
		return ErrUnauthorized
	}
	if notificationID == uuid.Nil {
		return ErrInvalidInput
	}

	affected, err := u.notifications.MarkRead(ctx, notificationID, userID)
	if err != nil {
		return ErrInternal
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// resolveStudent pulls student_id (or sender_id) out of the notification's
// structured payload and looks the profile up. Every failure path returns
// nil: identity is decoration, the notification itself still shows.
func (u *NotificationFeed) resolveStudent(ctx context.Context, n repository.Notification) *StudentIdentity {
	var payload struct {
		StudentID string `json:"student_id"`
		SenderID  string `json:"sender_id"`
		TutorID   string `json:"tutor_id"`
	}
	if err := json.Unmarshal(n.Data, &payload); err != nil {
		return nil
	}

	raw := payload.StudentID
	if raw == "" {
		raw = payload.SenderID
	}
	if raw == "" {
		return nil
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		return nil
	}

	p, err := u.profiles.GetByID(ctx, id)
	if err != nil {
		if !errors.Is(err, repository.ErrProfileNotFound) && u.logger != nil {
			u.logger.Warn("notification feed: student identity lookup failed",
				zap.String("notification_id", n.ID.String()), zap.Error(err))
		}
		return nil
	}

	return &StudentIdentity{
		ID:       p.ID,
		FullName: p.FullName,
		PhotoURL: p.PhotoURL,
		City:     p.City,
		Area:     p.Area,
	}
}
