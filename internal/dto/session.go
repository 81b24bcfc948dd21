package dto

import "github.com/noah-isme/sciclass-api/internal/models"

// SessionState tells polling clients whether their class is in session.
type SessionState struct {
	ClassID string               `json:"class_id"`
	Status  models.SessionStatus `json:"status"`
	Session *models.Session      `json:"session,omitempty"`
}
