package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/sciclass-api/internal/models"
	appErrors "github.com/noah-isme/sciclass-api/pkg/errors"
)

type pointRepository interface {
	All(ctx context.Context) ([]models.PointRecord, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.PointRecord, error)
	Append(ctx context.Context, records ...models.PointRecord) error
	AppendIfBalance(ctx context.Context, record models.PointRecord) error
	AppendWith(ctx context.Context, build func(ledger []models.PointRecord) ([]models.PointRecord, error)) ([]models.PointRecord, error)
}

// EarnRequest describes points granted to a student.
type EarnRequest struct {
	StudentID string             `json:"student_id" validate:"required"`
	SessionID *string            `json:"session_id,omitempty"`
	Bucket    models.PointBucket `json:"bucket" validate:"required,oneof=HOLD CONFIRMED"`
	Points    int                `json:"points" validate:"gt=0"`
	Reason    string             `json:"reason" validate:"required"`
}

// SpendRequest describes CONFIRMED points redeemed by a student.
type SpendRequest struct {
	StudentID string  `json:"student_id" validate:"required"`
	SessionID *string `json:"session_id,omitempty"`
	Points    int     `json:"points" validate:"gt=0"`
	Reason    string  `json:"reason" validate:"required"`
}

// LedgerService records point transactions and derives balances from the log.
type LedgerService struct {
	repo      pointRepository
	validator *validator.Validate
	logger    *zap.Logger
	metrics   *MetricsService
	now       func() time.Time
}

// NewLedgerService constructs a LedgerService.
func NewLedgerService(repo pointRepository, validate *validator.Validate, logger *zap.Logger, metrics *MetricsService) *LedgerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &LedgerService{repo: repo, validator: validate, logger: logger, metrics: metrics, now: time.Now}
}

func (s *LedgerService) newRecord(studentID string, sessionID *string, typ models.PointType, bucket models.PointBucket, points int, reason string) models.PointRecord {
	return models.PointRecord{
		ID:        uuid.NewString(),
		StudentID: studentID,
		SessionID: sessionID,
		Type:      typ,
		Bucket:    bucket,
		Points:    points,
		Reason:    reason,
		CreatedAt: s.now().UTC(),
	}
}

// RecordEarn appends an EARN entry.
func (s *LedgerService) RecordEarn(ctx context.Context, req EarnRequest) (*models.PointRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid earn payload")
	}
	record := s.newRecord(req.StudentID, req.SessionID, models.PointEarn, req.Bucket, req.Points, req.Reason)
	if err := s.repo.Append(ctx, record); err != nil {
		return nil, storeError(err, "failed to record points")
	}
	s.metrics.RecordPoints(record)
	s.logger.Info("points earned",
		zap.String("student_id", record.StudentID),
		zap.String("bucket", string(record.Bucket)),
		zap.Int("points", record.Points),
		zap.String("reason", record.Reason),
	)
	return &record, nil
}

// RecordSpend appends a CONFIRMED SPEND entry if the confirmed balance covers it.
func (s *LedgerService) RecordSpend(ctx context.Context, req SpendRequest) (*models.PointRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid spend payload")
	}
	record := s.newRecord(req.StudentID, req.SessionID, models.PointSpend, models.BucketConfirmed, req.Points, req.Reason)
	if err := s.repo.AppendIfBalance(ctx, record); err != nil {
		return nil, storeError(err, "failed to record spend")
	}
	s.metrics.RecordPoints(record)
	s.logger.Info("points spent",
		zap.String("student_id", record.StudentID),
		zap.Int("points", record.Points),
		zap.String("reason", record.Reason),
	)
	return &record, nil
}

// Convert moves points from HOLD to CONFIRMED as a CONVERT pair.
func (s *LedgerService) Convert(ctx context.Context, studentID string, sessionID *string, points int, reason string) ([]models.PointRecord, error) {
	if studentID == "" || points <= 0 || reason == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "conversion requires student, positive points and reason")
	}
	appended, err := s.repo.AppendWith(ctx, func(ledger []models.PointRecord) ([]models.PointRecord, error) {
		if models.Balance(ledger, studentID, models.BucketHold) < points {
			return nil, appErrors.Clone(appErrors.ErrInsufficientPoints, "not enough held points")
		}
		return s.conversionPair(studentID, sessionID, points, reason), nil
	})
	if err != nil {
		return nil, storeError(err, "failed to convert points")
	}
	s.metrics.RecordPoints(appended...)
	return appended, nil
}

// ConvertForMission releases held points after a mission pass. mode selects
// the whole HOLD balance (all) or what was held in sessionID (session). It
// writes at most one conversion per (student, session).
func (s *LedgerService) ConvertForMission(ctx context.Context, studentID, sessionID, mode string) ([]models.PointRecord, error) {
	sid := sessionID
	appended, err := s.repo.AppendWith(ctx, func(ledger []models.PointRecord) ([]models.PointRecord, error) {
		if models.ConversionRecorded(ledger, studentID, sessionID) {
			return nil, nil
		}
		held := models.Balance(ledger, studentID, models.BucketHold)
		amount := held
		if mode != models.ConversionAll {
			amount = models.SessionBalance(ledger, studentID, sessionID, models.BucketHold)
			if amount > held {
				amount = held
			}
		}
		if amount <= 0 {
			return nil, nil
		}
		return s.conversionPair(studentID, &sid, amount, models.ReasonMissionConversion), nil
	})
	if err != nil {
		return nil, storeError(err, "failed to convert held points")
	}
	if len(appended) > 0 {
		s.metrics.RecordPoints(appended...)
		s.logger.Info("held points confirmed",
			zap.String("student_id", studentID),
			zap.String("session_id", sessionID),
			zap.String("mode", mode),
			zap.Int("points", appended[0].Points),
		)
	}
	return appended, nil
}

func (s *LedgerService) conversionPair(studentID string, sessionID *string, points int, reason string) []models.PointRecord {
	return []models.PointRecord{
		s.newRecord(studentID, sessionID, models.PointConvert, models.BucketHold, points, reason),
		s.newRecord(studentID, sessionID, models.PointConvert, models.BucketConfirmed, points, reason),
	}
}

// Balance replays the ledger for one bucket.
func (s *LedgerService) Balance(ctx context.Context, studentID string, bucket models.PointBucket) (int, error) {
	records, err := s.repo.ListByStudent(ctx, studentID)
	if err != nil {
		return 0, storeError(err, "failed to load ledger")
	}
	return models.Balance(records, studentID, bucket), nil
}

// Summary returns both bucket balances.
func (s *LedgerService) Summary(ctx context.Context, studentID string) (models.PointSummary, error) {
	records, err := s.repo.ListByStudent(ctx, studentID)
	if err != nil {
		return models.PointSummary{}, storeError(err, "failed to load ledger")
	}
	return models.Summarize(records, studentID), nil
}

// History pages through a student's entries, newest first.
func (s *LedgerService) History(ctx context.Context, studentID string, page, size int) ([]models.PointRecord, *models.Pagination, error) {
	records, err := s.repo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, nil, storeError(err, "failed to load ledger")
	}
	items, pagination := models.Paginate(records, page, size)
	return items, pagination, nil
}

// Ledger returns every entry in insertion order.
func (s *LedgerService) Ledger(ctx context.Context) ([]models.PointRecord, error) {
	records, err := s.repo.All(ctx)
	if err != nil {
		return nil, storeError(err, "failed to load ledger")
	}
	return records, nil
}
