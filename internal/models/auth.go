package models

import "time"

// StudentLoginRequest carries the student id picked from the roster and the PIN.
type StudentLoginRequest struct {
	StudentID string `json:"student_id" validate:"required"`
	PIN       string `json:"pin" validate:"required"`
}

// ChangePINRequest replaces the initial PIN and completes the first login.
type ChangePINRequest struct {
	StudentID  string `json:"student_id" validate:"required"`
	CurrentPIN string `json:"current_pin" validate:"required"`
	NewPIN     string `json:"new_pin" validate:"required"`
}

// TeacherLoginRequest holds the shared teacher passcode.
type TeacherLoginRequest struct {
	Passcode string `json:"passcode" validate:"required"`
}

// UserInfo describes the authenticated user in responses.
type UserInfo struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Role    UserRole `json:"role"`
	ClassID string   `json:"class_id,omitempty"`
	Number  int      `json:"number,omitempty"`
}

// LoginResponse returns the issued token. When PINChangeRequired is set no
// token is issued and the client must call the PIN change endpoint.
type LoginResponse struct {
	AccessToken       string      `json:"access_token,omitempty"`
	ExpiresIn         int64       `json:"expires_in,omitempty"`
	IssuedAt          time.Time   `json:"issued_at"`
	PINChangeRequired bool        `json:"pin_change_required"`
	User              UserInfo    `json:"user"`
	Attendance        *Attendance `json:"attendance,omitempty"`
}
