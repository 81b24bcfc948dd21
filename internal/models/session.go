package models

import "time"

// SessionStatus is the lifecycle state of a class session.
type SessionStatus string

const (
	// SessionInactive is reported when a class has no active session; it is never stored.
	SessionInactive SessionStatus = "inactive"
	SessionActive   SessionStatus = "active"
	SessionClosed   SessionStatus = "closed"
)

// Default learning objective used when the teacher starts a class without one.
const (
	DefaultObjectiveTitle = "자석의 성질"
	DefaultObjectiveText  = "자석의 같은 극끼리는 밀어내고 다른 극끼리는 끌어당김을 설명할 수 있다."
)

// Session is one class meeting. At most one session per class is active.
type Session struct {
	ID             string        `json:"id"`
	ClassID        string        `json:"class_id"`
	Date           string        `json:"date"`
	Period         int           `json:"period"`
	Status         SessionStatus `json:"status"`
	ObjectiveTitle string        `json:"objective_title"`
	ObjectiveText  string        `json:"objective_text"`
	AdminStudentID *string       `json:"admin_student_id,omitempty"`
	StartedAt      time.Time     `json:"started_at"`
	ClosedAt       *time.Time    `json:"closed_at,omitempty"`
}

// IsActive reports whether session-scoped writes are allowed.
func (s *Session) IsActive() bool {
	return s != nil && s.Status == SessionActive
}

// ActiveSessionIn returns the active session for classID, if any.
func ActiveSessionIn(sessions []Session, classID string) *Session {
	for i := range sessions {
		if sessions[i].ClassID == classID && sessions[i].Status == SessionActive {
			s := sessions[i]
			return &s
		}
	}
	return nil
}
