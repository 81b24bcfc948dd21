package models

import "time"

// MissionStatus is the outcome of the class mission for a student.
type MissionStatus string

const (
	MissionPass    MissionStatus = "PASS"
	MissionFail    MissionStatus = "FAIL"
	MissionPending MissionStatus = "PENDING"
)

// Conversion modes applied when a mission passes.
const (
	ConversionAll     = "all"
	ConversionSession = "session"
)

// MissionResult is the teacher's verdict for one student in one session.
type MissionResult struct {
	SessionID string        `json:"session_id"`
	StudentID string        `json:"student_id"`
	Status    MissionStatus `json:"status"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// ValidMissionStatus reports whether s is a known status.
func ValidMissionStatus(s MissionStatus) bool {
	switch s {
	case MissionPass, MissionFail, MissionPending:
		return true
	}
	return false
}
