package dto

import "github.com/noah-isme/sciclass-api/internal/models"

// StudentSnapshot is everything the student app polls for in one request.
type StudentSnapshot struct {
	Student       models.UserInfo       `json:"student"`
	Session       SessionState          `json:"session"`
	PreRoutine    PreRoutineStatus      `json:"pre_routine"`
	Warnings      int                   `json:"warnings"`
	PointsBlocked bool                  `json:"points_blocked"`
	Points        models.PointSummary   `json:"points"`
	Quiz          []models.QuizProgress `json:"quiz"`
	Board         *BoardFeed            `json:"board"`
	Notices       []string              `json:"notices"`
}

// ClassRosterRow is one student's state in a session as the teacher sees it.
type ClassRosterRow struct {
	Student       models.StudentView   `json:"student"`
	Present       bool                 `json:"present"`
	PreRoutine    bool                 `json:"pre_routine"`
	HasMaterials  bool                 `json:"has_materials"`
	IsReady       bool                 `json:"is_ready"`
	Warnings      int                  `json:"warnings"`
	PointsBlocked bool                 `json:"points_blocked"`
	Mission       models.MissionStatus `json:"mission,omitempty"`
	EarnedPoints  int                  `json:"earned_points"`
	Points        models.PointSummary  `json:"points"`
}

// ClassSnapshot is the teacher dashboard for one class.
type ClassSnapshot struct {
	ClassID string           `json:"class_id"`
	Session *models.Session  `json:"session,omitempty"`
	Rows    []ClassRosterRow `json:"rows"`
	Present int              `json:"present"`
	Total   int              `json:"total"`
}
