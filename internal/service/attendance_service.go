package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/sciclass-api/internal/dto"
	"github.com/noah-isme/sciclass-api/internal/models"
	"github.com/noah-isme/sciclass-api/internal/repository"
	appErrors "github.com/noah-isme/sciclass-api/pkg/errors"
)

type attendanceRepository interface {
	CreateIfAbsent(ctx context.Context, attendance models.Attendance) (*models.Attendance, bool, error)
	Find(ctx context.Context, sessionID, studentID string) (*models.Attendance, error)
	ListBySession(ctx context.Context, sessionID string) ([]models.Attendance, error)
}

type activeSessionFinder interface {
	ActiveSessionFor(ctx context.Context, classID string) (*models.Session, error)
}

// AttendanceService records login-as-attendance.
type AttendanceService struct {
	repo     attendanceRepository
	sessions activeSessionFinder
	logger   *zap.Logger
	now      func() time.Time
}

// NewAttendanceService constructs an AttendanceService.
func NewAttendanceService(repo attendanceRepository, sessions activeSessionFinder, logger *zap.Logger) *AttendanceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{repo: repo, sessions: sessions, logger: logger, now: time.Now}
}

// RecordLogin marks the student PRESENT in the class's active session the
// first time they log in during it. Without an active session nothing is written.
func (s *AttendanceService) RecordLogin(ctx context.Context, student models.Student) (*models.Attendance, bool, error) {
	session, err := s.sessions.ActiveSessionFor(ctx, student.ClassID)
	if err != nil {
		return nil, false, err
	}
	if session == nil {
		return nil, false, nil
	}

	attendance, created, err := s.repo.CreateIfAbsent(ctx, models.Attendance{
		ID:        uuid.NewString(),
		SessionID: session.ID,
		StudentID: student.ID,
		Status:    models.AttendancePresent,
		LoginAt:   s.now().UTC(),
	})
	if err != nil {
		return nil, false, storeError(err, "failed to record attendance")
	}
	return attendance, created, nil
}

// ListBySession returns attendance rows of a session.
func (s *AttendanceService) ListBySession(ctx context.Context, sessionID string) ([]models.Attendance, error) {
	rows, err := s.repo.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, storeError(err, "failed to list attendance")
	}
	return rows, nil
}

// CompletePreRoutineRequest is sent after step three of the checklist.
type CompletePreRoutineRequest struct {
	HasMaterials bool `json:"has_materials"`
	IsReady      bool `json:"is_ready"`
}

type preRoutineRepository interface {
	CreateIfAbsent(ctx context.Context, routine models.PreRoutine) (*models.PreRoutine, bool, error)
	Find(ctx context.Context, sessionID, studentID string) (*models.PreRoutine, error)
	ListBySession(ctx context.Context, sessionID string) ([]models.PreRoutine, error)
}

// PreRoutineService tracks the pre-class checklist per session.
type PreRoutineService struct {
	repo     preRoutineRepository
	sessions activeSessionFinder
	logger   *zap.Logger
	now      func() time.Time
}

// NewPreRoutineService constructs a PreRoutineService.
func NewPreRoutineService(repo preRoutineRepository, sessions activeSessionFinder, logger *zap.Logger) *PreRoutineService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PreRoutineService{repo: repo, sessions: sessions, logger: logger, now: time.Now}
}

// Status reports whether the student still has to complete the checklist.
func (s *PreRoutineService) Status(ctx context.Context, student models.Student) (dto.PreRoutineStatus, error) {
	session, err := s.sessions.ActiveSessionFor(ctx, student.ClassID)
	if err != nil {
		return dto.PreRoutineStatus{}, err
	}
	if session == nil {
		return dto.PreRoutineStatus{SessionStatus: models.SessionInactive}, nil
	}

	status := dto.PreRoutineStatus{
		SessionStatus:  session.Status,
		SessionID:      session.ID,
		ObjectiveTitle: session.ObjectiveTitle,
		ObjectiveText:  session.ObjectiveText,
	}
	routine, err := s.repo.Find(ctx, session.ID, student.ID)
	switch {
	case err == nil:
		status.Completed = true
		status.Routine = routine
	case !errors.Is(err, repository.ErrNotFound):
		return dto.PreRoutineStatus{}, storeError(err, "failed to load pre-routine")
	}
	return status, nil
}

// Complete stores the checklist result for the active session once.
func (s *PreRoutineService) Complete(ctx context.Context, student models.Student, req CompletePreRoutineRequest) (*models.PreRoutine, bool, error) {
	session, err := s.sessions.ActiveSessionFor(ctx, student.ClassID)
	if err != nil {
		return nil, false, err
	}
	if session == nil {
		return nil, false, appErrors.ErrNoActiveSession
	}

	routine, created, err := s.repo.CreateIfAbsent(ctx, models.PreRoutine{
		SessionID:    session.ID,
		StudentID:    student.ID,
		HasMaterials: req.HasMaterials,
		IsReady:      req.IsReady,
		CompletedAt:  s.now().UTC(),
	})
	if err != nil {
		return nil, false, storeError(err, "failed to save pre-routine")
	}
	if created {
		s.logger.Info("pre-routine completed", zap.String("student_id", student.ID), zap.String("session_id", session.ID))
	}
	return routine, created, nil
}

// ListBySession returns checklist completions of a session.
func (s *PreRoutineService) ListBySession(ctx context.Context, sessionID string) ([]models.PreRoutine, error) {
	rows, err := s.repo.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, storeError(err, "failed to list pre-routines")
	}
	return rows, nil
}
