package models

import "time"

// Question is a student-authored board post scoped to a session.
type Question struct {
	ID              string    `json:"id"`
	SessionID       string    `json:"session_id"`
	StudentID       string    `json:"student_id"`
	StudentName     string    `json:"student_name"`
	ClassID         string    `json:"class_id"`
	Text            string    `json:"text"`
	IsPinned        bool      `json:"is_pinned"`
	IsHidden        bool      `json:"is_hidden"`
	Recommendations []string  `json:"recommendations"`
	CreatedAt       time.Time `json:"created_at"`
}

// Answer replies to a Question. At most one answer per question is best.
type Answer struct {
	ID              string    `json:"id"`
	QuestionID      string    `json:"question_id"`
	SessionID       string    `json:"session_id"`
	StudentID       string    `json:"student_id"`
	StudentName     string    `json:"student_name"`
	ClassID         string    `json:"class_id"`
	Text            string    `json:"text"`
	IsBest          bool      `json:"is_best"`
	IsHidden        bool      `json:"is_hidden"`
	Recommendations []string  `json:"recommendations"`
	CreatedAt       time.Time `json:"created_at"`
}

// Submission is implemented by entities counted by the first-in-session rule.
type Submission interface {
	SubmittedIn() (sessionID, studentID string)
}

// SubmittedIn implements Submission.
func (q Question) SubmittedIn() (string, string) { return q.SessionID, q.StudentID }

// SubmittedIn implements Submission.
func (a Answer) SubmittedIn() (string, string) { return a.SessionID, a.StudentID }

// HasSubmittedThisSession reports whether studentID already authored an item in sessionID.
func HasSubmittedThisSession[T Submission](items []T, sessionID, studentID string) bool {
	for _, item := range items {
		sid, author := item.SubmittedIn()
		if sid == sessionID && author == studentID {
			return true
		}
	}
	return false
}

// VisibleTo reports whether a student of viewerClassID may see the question.
func (q Question) VisibleTo(viewerClassID string) bool {
	return !q.IsHidden && SameGrade(q.ClassID, viewerClassID)
}

// VisibleTo reports whether a student of viewerClassID may see the answer.
func (a Answer) VisibleTo(viewerClassID string) bool {
	return !a.IsHidden && SameGrade(a.ClassID, viewerClassID)
}

// ToggleRecommendation adds studentID to list or removes it when present.
func ToggleRecommendation(list []string, studentID string) ([]string, bool) {
	for i, id := range list {
		if id == studentID {
			out := make([]string, 0, len(list)-1)
			out = append(out, list[:i]...)
			return append(out, list[i+1:]...), false
		}
	}
	return append(append([]string{}, list...), studentID), true
}
