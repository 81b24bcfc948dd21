package models

import "time"

// AttendanceStatus marks how a student was recorded for a session.
type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "PRESENT"
	AttendanceAbsent  AttendanceStatus = "ABSENT"
)

// Attendance is created once per (session, student) on first login.
type Attendance struct {
	ID        string           `json:"id"`
	SessionID string           `json:"session_id"`
	StudentID string           `json:"student_id"`
	Status    AttendanceStatus `json:"status"`
	LoginAt   time.Time        `json:"login_at"`
}

// PreRoutine records completion of the pre-class checklist.
type PreRoutine struct {
	SessionID    string    `json:"session_id"`
	StudentID    string    `json:"student_id"`
	HasMaterials bool      `json:"has_materials"`
	IsReady      bool      `json:"is_ready"`
	CompletedAt  time.Time `json:"completed_at"`
}
