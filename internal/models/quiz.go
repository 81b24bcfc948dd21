package models

import (
	"strings"
	"time"
)

// MaxQuizAttempts bounds responses per (item, student).
const MaxQuizAttempts = 2

// QuizType distinguishes multiple-choice from short-answer items.
type QuizType string

const (
	QuizMCQ   QuizType = "MCQ"
	QuizShort QuizType = "SHORT"
)

// QuizItem is static formative assessment content shared across sessions.
type QuizItem struct {
	ID            string   `json:"id"`
	Type          QuizType `json:"type"`
	Prompt        string   `json:"prompt"`
	Choices       []string `json:"choices,omitempty"`
	CorrectAnswer string   `json:"-"`
}

// QuizResponse is one attempt by a student.
type QuizResponse struct {
	ID           string    `json:"id"`
	QuizItemID   string    `json:"quiz_item_id"`
	StudentID    string    `json:"student_id"`
	SessionID    string    `json:"session_id"`
	AttemptNo    int       `json:"attempt_no"`
	Answer       string    `json:"answer"`
	IsCorrect    bool      `json:"is_correct"`
	EarnedPoints int       `json:"earned_points"`
	CreatedAt    time.Time `json:"created_at"`
}

// QuizRewards are the HOLD payouts per attempt.
type QuizRewards struct {
	FirstTry  int
	SecondTry int
}

// QuizProgress summarises a student's attempts on one item.
type QuizProgress struct {
	QuizItemID string `json:"quiz_item_id"`
	Attempts   int    `json:"attempts"`
	Solved     bool   `json:"solved"`
	Exhausted  bool   `json:"exhausted"`
	Earned     int    `json:"earned_points"`
}

// ResponsesFor filters responses to (itemID, studentID) in attempt order.
func ResponsesFor(responses []QuizResponse, itemID, studentID string) []QuizResponse {
	out := make([]QuizResponse, 0, MaxQuizAttempts)
	for _, r := range responses {
		if r.QuizItemID == itemID && r.StudentID == studentID {
			out = append(out, r)
		}
	}
	return out
}

// ProgressOf derives progress from prior responses for one item.
func ProgressOf(itemID string, prior []QuizResponse) QuizProgress {
	p := QuizProgress{QuizItemID: itemID, Attempts: len(prior)}
	for _, r := range prior {
		if r.IsCorrect {
			p.Solved = true
		}
		p.Earned += r.EarnedPoints
	}
	p.Exhausted = !p.Solved && p.Attempts >= MaxQuizAttempts
	return p
}

// CanAttempt reports whether another response may be recorded.
func (p QuizProgress) CanAttempt() bool {
	return !p.Solved && p.Attempts < MaxQuizAttempts
}

// Grade compares the trimmed answer to the canonical answer.
func (q QuizItem) Grade(answer string) bool {
	return strings.TrimSpace(answer) == q.CorrectAnswer
}

// Payout returns the reward for a correct answer on attemptNo.
func (r QuizRewards) Payout(attemptNo int, correct bool) int {
	if !correct {
		return 0
	}
	if attemptNo == 1 {
		return r.FirstTry
	}
	return r.SecondTry
}
