package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/sciclass-api/internal/models"
	appErrors "github.com/noah-isme/sciclass-api/pkg/errors"
)

type quizResponseRepository interface {
	Append(ctx context.Context, itemID, studentID string, max int, build func(prior []models.QuizResponse) *models.QuizResponse) (*models.QuizResponse, bool, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.QuizResponse, error)
}

// AttemptRequest is a student's answer to one quiz item.
type AttemptRequest struct {
	Answer string `json:"answer" validate:"required"`
}

// AttemptResult reports the outcome of an attempt. Accepted is false when the
// item was already solved or out of attempts; nothing is recorded then.
type AttemptResult struct {
	Accepted      bool                 `json:"accepted"`
	Response      *models.QuizResponse `json:"response,omitempty"`
	Point         *models.PointRecord  `json:"point,omitempty"`
	Progress      models.QuizProgress  `json:"progress"`
	PointsBlocked bool                 `json:"points_blocked"`
}

// QuizService grades formative assessment attempts.
type QuizService struct {
	repo     quizResponseRepository
	sessions classSessionGate
	warnings pointsGate
	ledger   pointsEarner
	rewards  models.QuizRewards
	catalog  map[string]models.QuizItem
	items    []models.QuizItem
	logger   *zap.Logger
	metrics  *MetricsService
	now      func() time.Time
}

// NewQuizService constructs a QuizService over the static catalog.
func NewQuizService(repo quizResponseRepository, sessions classSessionGate, warnings pointsGate, ledger pointsEarner, rewards models.QuizRewards, logger *zap.Logger, metrics *MetricsService) *QuizService {
	if logger == nil {
		logger = zap.NewNop()
	}
	items := models.QuizCatalog()
	catalog := make(map[string]models.QuizItem, len(items))
	for _, item := range items {
		catalog[item.ID] = item
	}
	return &QuizService{
		repo:     repo,
		sessions: sessions,
		warnings: warnings,
		ledger:   ledger,
		rewards:  rewards,
		catalog:  catalog,
		items:    items,
		logger:   logger,
		metrics:  metrics,
		now:      time.Now,
	}
}

// Catalog lists the quiz items without their answers.
func (s *QuizService) Catalog() []models.QuizItem {
	return append([]models.QuizItem(nil), s.items...)
}

// Attempt grades an answer on the student's active session. A correct answer
// earns HOLD points unless the student's warnings block them.
func (s *QuizService) Attempt(ctx context.Context, student models.Student, itemID, answer string) (*AttemptResult, error) {
	item, ok := s.catalog[itemID]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "quiz item not found")
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "answer is required")
	}
	session, err := s.sessions.RequireActiveForClass(ctx, student.ClassID)
	if err != nil {
		return nil, err
	}

	correct := item.Grade(answer)
	var prior []models.QuizResponse
	response, accepted, err := s.repo.Append(ctx, item.ID, student.ID, models.MaxQuizAttempts, func(existing []models.QuizResponse) *models.QuizResponse {
		prior = existing
		if !models.ProgressOf(item.ID, existing).CanAttempt() {
			return nil
		}
		attemptNo := len(existing) + 1
		return &models.QuizResponse{
			ID:           uuid.NewString(),
			QuizItemID:   item.ID,
			StudentID:    student.ID,
			SessionID:    session.ID,
			AttemptNo:    attemptNo,
			Answer:       answer,
			IsCorrect:    correct,
			EarnedPoints: s.rewards.Payout(attemptNo, correct),
			CreatedAt:    s.now().UTC(),
		}
	})
	if err != nil {
		return nil, storeError(err, "failed to record quiz attempt")
	}
	if !accepted {
		responses, err := s.repo.ListByStudent(ctx, student.ID)
		if err != nil {
			return nil, storeError(err, "failed to load quiz responses")
		}
		return &AttemptResult{Accepted: false, Progress: models.ProgressOf(item.ID, models.ResponsesFor(responses, item.ID, student.ID))}, nil
	}
	s.metrics.RecordQuizAttempt(response.IsCorrect)

	result := &AttemptResult{
		Accepted: true,
		Response: response,
		Progress: models.ProgressOf(item.ID, append(prior, *response)),
	}
	if response.IsCorrect && response.EarnedPoints > 0 {
		blocked, err := s.warnings.PointsBlocked(ctx, session.ID, student.ID)
		if err != nil {
			return nil, err
		}
		result.PointsBlocked = blocked
		if !blocked {
			sid := session.ID
			result.Point, err = s.ledger.RecordEarn(ctx, EarnRequest{
				StudentID: student.ID,
				SessionID: &sid,
				Bucket:    models.BucketHold,
				Points:    response.EarnedPoints,
				Reason:    models.QuizReason(response.AttemptNo),
			})
			if err != nil {
				s.logger.Error("points not recorded after save",
					zap.String("session_id", session.ID),
					zap.String("student_id", student.ID),
					zap.String("quiz_item_id", item.ID),
					zap.String("response_id", response.ID),
					zap.Error(err),
				)
				return nil, err
			}
		}
	}
	s.logger.Info("quiz attempt recorded",
		zap.String("student_id", student.ID),
		zap.String("quiz_item_id", item.ID),
		zap.Int("attempt_no", response.AttemptNo),
		zap.Bool("correct", response.IsCorrect),
	)
	return result, nil
}

// Progress returns the student's progress on every catalog item.
func (s *QuizService) Progress(ctx context.Context, studentID string) ([]models.QuizProgress, error) {
	responses, err := s.repo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, storeError(err, "failed to load quiz responses")
	}
	out := make([]models.QuizProgress, 0, len(s.items))
	for _, item := range s.items {
		out = append(out, models.ProgressOf(item.ID, models.ResponsesFor(responses, item.ID, studentID)))
	}
	return out, nil
}
