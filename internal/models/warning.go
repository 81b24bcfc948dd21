package models

import "time"

// MaxWarnings is the per-session cap; reaching it blocks HOLD earning.
const MaxWarnings = 2

// Warning counts teacher warnings for one student in one session.
type Warning struct {
	SessionID string    `json:"session_id"`
	StudentID string    `json:"student_id"`
	Count     int       `json:"count"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PointsBlocked reports whether count forbids new participation points.
func PointsBlocked(count int) bool {
	return count >= MaxWarnings
}

// FindWarning returns the warning for (session, student) or nil.
func FindWarning(warnings []Warning, sessionID, studentID string) *Warning {
	for i := range warnings {
		if warnings[i].SessionID == sessionID && warnings[i].StudentID == studentID {
			w := warnings[i]
			return &w
		}
	}
	return nil
}
