package dto

import "time"

// ConfirmationTicket is returned by the first step of a destructive action.
type ConfirmationTicket struct {
	Token     string    `json:"token"`
	Action    string    `json:"action"`
	TargetID  string    `json:"target_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ConfirmRequest carries the token back for the second step.
type ConfirmRequest struct {
	Token string `json:"token" validate:"required"`
}
