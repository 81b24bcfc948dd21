package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sciclass-api/internal/models"
	"github.com/noah-isme/sciclass-api/internal/repository"
	appErrors "github.com/noah-isme/sciclass-api/pkg/errors"
)

type warningRepository interface {
	Increment(ctx context.Context, sessionID, studentID string, max int, at time.Time) (*models.Warning, bool, error)
	Find(ctx context.Context, sessionID, studentID string) (*models.Warning, error)
	ListBySession(ctx context.Context, sessionID string) ([]models.Warning, error)
}

type sessionGate interface {
	RequireActive(ctx context.Context, sessionID string) (*models.Session, error)
}

type studentLookup interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

// WarningResult reports the counter after a warning. Changed is false when
// the counter was already at the cap.
type WarningResult struct {
	Warning       *models.Warning `json:"warning"`
	Changed       bool            `json:"changed"`
	PointsBlocked bool            `json:"points_blocked"`
}

// WarningService maintains per-session warning counters.
type WarningService struct {
	repo     warningRepository
	sessions sessionGate
	students studentLookup
	logger   *zap.Logger
	now      func() time.Time
}

// NewWarningService constructs a WarningService.
func NewWarningService(repo warningRepository, sessions sessionGate, students studentLookup, logger *zap.Logger) *WarningService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WarningService{repo: repo, sessions: sessions, students: students, logger: logger, now: time.Now}
}

// Warn adds one warning for the student in an active session, clamped at MaxWarnings.
func (s *WarningService) Warn(ctx context.Context, sessionID, studentID string) (*WarningResult, error) {
	session, err := s.sessions.RequireActive(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		return nil, storeError(err, "student not found")
	}
	if student.ClassID != session.ClassID {
		return nil, appErrors.Clone(appErrors.ErrValidation, "student is not in this session's class")
	}

	warning, changed, err := s.repo.Increment(ctx, sessionID, studentID, models.MaxWarnings, s.now().UTC())
	if err != nil {
		return nil, storeError(err, "failed to record warning")
	}
	if changed {
		s.logger.Info("warning issued", zap.String("session_id", sessionID), zap.String("student_id", studentID), zap.Int("count", warning.Count))
	}
	return &WarningResult{Warning: warning, Changed: changed, PointsBlocked: models.PointsBlocked(warning.Count)}, nil
}

// Count returns the warning count, zero when none was issued.
func (s *WarningService) Count(ctx context.Context, sessionID, studentID string) (int, error) {
	warning, err := s.repo.Find(ctx, sessionID, studentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, nil
		}
		return 0, storeError(err, "failed to load warning")
	}
	return warning.Count, nil
}

// PointsBlocked reports whether new HOLD participation points are forbidden.
func (s *WarningService) PointsBlocked(ctx context.Context, sessionID, studentID string) (bool, error) {
	count, err := s.Count(ctx, sessionID, studentID)
	if err != nil {
		return false, err
	}
	return models.PointsBlocked(count), nil
}

// ListBySession returns warnings of a session.
func (s *WarningService) ListBySession(ctx context.Context, sessionID string) ([]models.Warning, error) {
	rows, err := s.repo.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, storeError(err, "failed to list warnings")
	}
	return rows, nil
}
