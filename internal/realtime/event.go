package realtime

import "encoding/json"

type Op string

const (
	OpInsert Op = "INSERT"
	OpUpdate Op = "UPDATE"
	OpDelete Op = "DELETE"
)

const (
	TableRequirements  = "requirements"
	TableMatches       = "requirement_tutor_matches"
	TableMessages      = "messages"
	TableNotifications = "notifications"
)

// Event is a row-level change notice. Payload carries the table-specific
// projection each feed needs, not the full row.
type Event struct {
	Table   string          `json:"table"`
	Op      Op              `json:"op"`
	Payload json.RawMessage `json:"payload"`
}

type RequirementPayload struct {
	ID        string `json:"id"`
	StudentID string `json:"student_id"`
	Subject   string `json:"subject"`
	Status    string `json:"status"`
}

type MatchPayload struct {
	RequirementID string `json:"requirement_id"`
	TutorID       string `json:"tutor_id"`
	Status        string `json:"status"`
}

type MessagePayload struct {
	ID         string `json:"id"`
	SenderID   string `json:"sender_id"`
	ReceiverID string `json:"receiver_id"`
}

type NotificationPayload struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	Type      string          `json:"type"`
	Title     string          `json:"title"`
	Message   string          `json:"message"`
	Data      json.RawMessage `json:"data"`
	CreatedAt string          `json:"created_at"`
}

// NewEvent marshals payload into an Event. A payload that cannot be
// marshalled yields an event with an empty payload rather than an error;
// feeds treat that as a bare trigger.
func NewEvent(table string, op Op, payload any) Event {
	b, err := json.Marshal(payload)
	if err != nil {
		b = nil
	}
	return Event{Table: table, Op: op, Payload: b}
}
