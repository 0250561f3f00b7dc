package dto

import "time"

type MessageResponse struct {
	ID         string    `json:"id"`
	SenderID   string    `json:"sender_id"`
	ReceiverID string    `json:"receiver_id"`
	Content    string    `json:"content"`
	Read       bool      `json:"read"`
	CreatedAt  time.Time `json:"created_at"`
}

type SendMessageRequest struct {
	Content string `json:"content"`
}

type UnreadCountResponse struct {
	UnreadCount int `json:"unread_count"`
}
