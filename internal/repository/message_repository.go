package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"tutorhub/internal/database"
	"tutorhub/internal/realtime"
)

type Message struct {
	ID         uuid.UUID
	SenderID   uuid.UUID
	ReceiverID uuid.UUID
	Content    string
	Read       bool
	CreatedAt  time.Time
}

type MessageRepository interface {
	Insert(ctx context.Context, m Message) (Message, error)
	CountUnread(ctx context.Context, receiverID uuid.UUID) (int, error)
	ListBetween(ctx context.Context, a, b uuid.UUID, limit int) ([]Message, error)
	MarkConversationRead(ctx context.Context, receiverID, senderID uuid.UUID) (int64, error)
}

type PostgresMessageRepository struct {
	db  database.DB
	bus realtime.Publisher
}

func NewPostgresMessageRepository(db database.DB, bus realtime.Publisher) *PostgresMessageRepository {
	return &PostgresMessageRepository{db: db, bus: bus}
}

func (r *PostgresMessageRepository) Insert(ctx context.Context, m Message) (Message, error) {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.Exec(ctx,
		`INSERT INTO messages (id, sender_id, receiver_id, content, read, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		m.ID, m.SenderID, m.ReceiverID, m.Content, m.Read, m.CreatedAt,
	)
	if err != nil {
		return Message{}, err
	}

	r.publish(ctx, realtime.OpInsert, m)
	return m, nil
}

func (r *PostgresMessageRepository) CountUnread(ctx context.Context, receiverID uuid.UUID) (int, error) {
	row := r.db.QueryRow(ctx,
		`SELECT COUNT(1) FROM messages WHERE receiver_id = $1 AND read = false`,
		receiverID,
	)
	var c int
	if err := row.Scan(&c); err != nil {
		return 0, err
	}
	return c, nil
}

func (r *PostgresMessageRepository) ListBetween(ctx context.Context, a, b uuid.UUID, limit int) ([]Message, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, sender_id, receiver_id, content, read, created_at
		 FROM messages
		 WHERE (sender_id = $1 AND receiver_id = $2) OR (sender_id = $2 AND receiver_id = $1)
		 ORDER BY created_at DESC
		 LIMIT $3`,
		a, b, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Message, 0)
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.Content, &m.Read, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresMessageRepository) MarkConversationRead(ctx context.Context, receiverID, senderID uuid.UUID) (int64, error) {
	affected, err := r.db.Exec(ctx,
		`UPDATE messages SET read = true
		 WHERE receiver_id = $1 AND sender_id = $2 AND read = false`,
		receiverID, senderID,
	)
	if err != nil {
		return 0, err
	}
	if affected > 0 {
		r.publish(ctx, realtime.OpUpdate, Message{SenderID: senderID, ReceiverID: receiverID})
	}
	return affected, nil
}

func (r *PostgresMessageRepository) publish(ctx context.Context, op realtime.Op, m Message) {
	if r.bus == nil {
		return
	}
	r.bus.Publish(ctx, realtime.NewEvent(realtime.TableMessages, op, realtime.MessagePayload{
		ID:         m.ID.String(),
		SenderID:   m.SenderID.String(),
		ReceiverID: m.ReceiverID.String(),
	}))
}
