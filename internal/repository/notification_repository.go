package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"tutorhub/internal/database"
	"tutorhub/internal/realtime"
)

const (
	NotificationTypeInterest            = "interest"
	NotificationTypeMessage             = "message"
	NotificationTypeRequirementResponse = "requirement_response"
	NotificationTypeNewRequirement      = "new_requirement"
)

type Notification struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Type      string
	Title     string
	Message   string
	Data      json.RawMessage
	IsRead    bool
	CreatedAt time.Time
}

type NotificationRepository interface {
	Insert(ctx context.Context, n Notification) (Notification, error)
	ListRecentByType(ctx context.Context, userID uuid.UUID, notifType string, limit int) ([]Notification, error)
	MarkRead(ctx context.Context, id, userID uuid.UUID) (int64, error)
}

type PostgresNotificationRepository struct {
	db  database.DB
	bus realtime.Publisher
}

func NewPostgresNotificationRepository(db database.DB, bus realtime.Publisher) *PostgresNotificationRepository {
	return &PostgresNotificationRepository{db: db, bus: bus}
}

func (r *PostgresNotificationRepository) Insert(ctx context.Context, n Notification) (Notification, error) {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	if len(n.Data) == 0 {
		n.Data = json.RawMessage(`{}`)
	}

	_, err := r.db.Exec(ctx,
		`INSERT INTO notifications (id, user_id, type, title, message, data, is_read, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		n.ID, n.UserID, n.Type, n.Title, n.Message, n.Data, n.IsRead, n.CreatedAt,
	)
	if err != nil {
		return Notification{}, err
	}

	if r.bus != nil {
		r.bus.Publish(ctx, realtime.NewEvent(realtime.TableNotifications, realtime.OpInsert, realtime.NotificationPayload{
			ID:        n.ID.String(),
			UserID:    n.UserID.String(),
			Type:      n.Type,
			Title:     n.Title,
			Message:   n.Message,
			Data:      n.Data,
			CreatedAt: n.CreatedAt.Format(time.RFC3339),
		}))
	}
	return n, nil
}

func (r *PostgresNotificationRepository) ListRecentByType(ctx context.Context, userID uuid.UUID, notifType string, limit int) ([]Notification, error) {
	if limit <= 0 {
		limit = 5
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, user_id, type, title, message, data, is_read, created_at
		 FROM notifications
		 WHERE user_id = $1 AND type = $2
		 ORDER BY created_at DESC
		 LIMIT $3`,
		userID, notifType, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Notification, 0, limit)
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message,
			&n.Data, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresNotificationRepository) MarkRead(ctx context.Context, id, userID uuid.UUID) (int64, error) {
	return r.db.Exec(ctx,
		`UPDATE notifications SET is_read = true WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
}
