package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tutorhub/internal/repository"
)

const unreadCountTTL = 30 * time.Second

type MessageUsecase interface {
	UnreadCount(ctx context.Context, userID uuid.UUID) (int, error)
	Send(ctx context.Context, senderID, receiverID uuid.UUID, content string) (repository.Message, error)
	Conversation(ctx context.Context, userID, otherID uuid.UUID, limit int) ([]repository.Message, error)
	MarkConversationRead(ctx context.Context, userID, otherID uuid.UUID) error
}

type Messages struct {
	messages repository.MessageRepository
	cache    BadgeCache
	logger   *zap.Logger
}

func NewMessages(messages repository.MessageRepository, cache BadgeCache, logger *zap.Logger) *Messages {
	return &Messages{messages: messages, cache: cache, logger: logger}
}

func unreadCountKey(userID uuid.UUID) string {
	return fmt.Sprintf("badge:unread:%s", userID)
}

// UnreadCount is always a fresh COUNT on cache miss, never incremental
// arithmetic, so it stays correct under racing inserts and mark-reads.
func (u *Messages) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	if userID == uuid.Nil {
		return 0, ErrUnauthorized
	}

	key := unreadCountKey(userID)
	if u.cache != nil {
		var cached int
		if hit, err := u.cache.GetJSON(ctx, key, &cached); err == nil && hit {
			return cached, nil
		}
	}

	count, err := u.messages.CountUnread(ctx, userID)
	if err != nil {
		if u.logger != nil {
			u.logger.Warn("messages: unread count failed", zap.Error(err))
		}
		return 0, nil
	}

	if u.cache != nil {
		_ = u.cache.SetJSON(ctx, key, count, unreadCountTTL)
	}
	return count, nil
}

// RefreshUnreadCount drops the cached value and recounts. Feed sessions use
// it on message change events so pushes never serve a stale badge.
func (u *Messages) RefreshUnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	if u.cache != nil {
		_ = u.cache.Delete(ctx, unreadCountKey(userID))
	}
	return u.UnreadCount(ctx, userID)
}

func (u *Messages) Send(ctx context.Context, senderID, receiverID uuid.UUID, content string) (repository.Message, error) {
	if senderID == uuid.Nil {
		return repository.Message{}, ErrUnauthorized
	}
	if receiverID == uuid.Nil || receiverID == senderID || strings.TrimSpace(content) == "" {
		return repository.Message{}, ErrInvalidInput
	}

	msg, err := u.messages.Insert(ctx, repository.Message{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    strings.TrimSpace(content),
	})
	if err != nil {
		return repository.Message{}, ErrInternal
	}
	return msg, nil
}

func (u *Messages) Conversation(ctx context.Context, userID, otherID uuid.UUID, limit int) ([]repository.Message, error) {
	if userID == uuid.Nil {
		return nil, ErrUnauthorized
	}
	if otherID == uuid.Nil {
		return nil, ErrInvalidInput
	}
	msgs, err := u.messages.ListBetween(ctx, userID, otherID, limit)
	if err != nil {
		return nil, ErrInternal
	}
	return msgs, nil
}

func (u *Messages) MarkConversationRead(ctx context.Context, userID, otherID uuid.UUID) error {
	if userID == uuid.Nil {
		return ErrUnauthorized
	}
	if otherID == uuid.Nil {
		return ErrInvalidInput
	}

	if _, err := u.messages.MarkConversationRead(ctx, userID, otherID); err != nil {
		return ErrInternal
	}
	if u.cache != nil {
		_ = u.cache.Delete(ctx, unreadCountKey(userID))
	}
	return nil
}
