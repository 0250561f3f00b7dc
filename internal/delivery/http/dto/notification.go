package dto

import (
	"encoding/json"
	"time"
)

type NotificationResponse struct {
	ID        string           `json:"id"`
	Type      string           `json:"type"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Data      json.RawMessage  `json:"data,omitempty"`
	IsRead    bool             `json:"is_read"`
	CreatedAt time.Time        `json:"created_at"`
	Student   *StudentResponse `json:"student,omitempty"`
}
