package api

import "time"

type ErrorResponse struct {
	Error       string     `json:"error" example:"something went wrong"`
	BannedUntil *time.Time `json:"banned_until,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message" example:"ok"`
}

type HealthResponse struct {
	Status string `json:"status" example:"ok"`
}
