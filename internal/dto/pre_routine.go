package dto

import "github.com/noah-isme/sciclass-api/internal/models"

// PreRoutineStatus tells the student app whether to show the checklist.
type PreRoutineStatus struct {
	SessionStatus  models.SessionStatus `json:"session_status"`
	SessionID      string               `json:"session_id,omitempty"`
	Completed      bool                 `json:"completed"`
	Routine        *models.PreRoutine   `json:"routine,omitempty"`
	ObjectiveTitle string               `json:"objective_title,omitempty"`
	ObjectiveText  string               `json:"objective_text,omitempty"`
}
