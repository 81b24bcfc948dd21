package dto

import "github.com/noah-isme/sciclass-api/internal/models"

// BoardThread is a question with the answers visible to the viewer.
type BoardThread struct {
	Question models.Question `json:"question"`
	Answers  []models.Answer `json:"answers"`
}

// BoardFeed is the board as seen by one grade, pinned threads first.
type BoardFeed struct {
	Grade   string        `json:"grade"`
	Threads []BoardThread `json:"threads"`
}

// ModerationRequest toggles visibility flags on a board entry. Nil fields are left unchanged.
type ModerationRequest struct {
	IsPinned *bool `json:"is_pinned,omitempty"`
	IsHidden *bool `json:"is_hidden,omitempty"`
}

// TextRequest carries the body of a new question or answer.
type TextRequest struct {
	Text string `json:"text" validate:"required,max=500"`
}

// SelectBestRequest names the answer chosen as best.
type SelectBestRequest struct {
	AnswerID string `json:"answer_id" validate:"required"`
}
