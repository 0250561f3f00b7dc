package dto

import "time"

type StudentResponse struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	PhotoURL string `json:"photo_url"`
	City     string `json:"city"`
	Area     string `json:"area"`
}

type RequirementResponse struct {
	ID           string           `json:"id"`
	Subject      string           `json:"subject"`
	Location     string           `json:"location"`
	Description  string           `json:"description"`
	Budget       *float64         `json:"budget,omitempty"`
	Status       string           `json:"status"`
	CreatedAt    time.Time        `json:"created_at"`
	Student      *StudentResponse `json:"student,omitempty"`
	HasResponded bool             `json:"has_responded"`
}

type RespondRequest struct {
	Decision     string   `json:"decision"`
	Message      string   `json:"message"`
	ProposedRate *float64 `json:"proposed_rate"`
}

type RespondResponse struct {
	RequirementID    string `json:"requirement_id"`
	Status           string `json:"status"`
	ChatSeeded       bool   `json:"chat_seeded"`
	NotificationSent bool   `json:"notification_sent"`
}
