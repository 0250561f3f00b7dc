package dto

import "time"

type TutorProfileRequest struct {
	Subjects          []string `json:"subjects"`
	City              string   `json:"city"`
	Area              string   `json:"area"`
	HourlyRate        float64  `json:"hourly_rate"`
	ProfileCompletion int      `json:"profile_completion"`
}

type TutorProfileResponse struct {
	UserID            string    `json:"user_id"`
	Email             string    `json:"email,omitempty"`
	FullName          string    `json:"full_name,omitempty"`
	PhotoURL          string    `json:"photo_url,omitempty"`
	Subjects          []string  `json:"subjects"`
	City              string    `json:"city"`
	Area              string    `json:"area"`
	HourlyRate        float64   `json:"hourly_rate"`
	Verified          bool      `json:"verified"`
	Rating            float32   `json:"rating"`
	ProfileCompletion int       `json:"profile_completion"`
	UpdatedAt         time.Time `json:"updated_at"`
}
