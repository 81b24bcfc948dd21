package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sciclass-api/internal/models"
	appErrors "github.com/noah-isme/sciclass-api/pkg/errors"
	"github.com/noah-isme/sciclass-api/pkg/jobs"
)

// JobTypeMissionConversion names jobs that release held points after a pass.
const JobTypeMissionConversion = "mission.convert"

type missionRepository interface {
	Upsert(ctx context.Context, sessionID, studentID string, status models.MissionStatus, at time.Time) (*models.MissionResult, models.MissionStatus, error)
	ListBySession(ctx context.Context, sessionID string) ([]models.MissionResult, error)
}

type missionConverter interface {
	ConvertForMission(ctx context.Context, studentID, sessionID, mode string) ([]models.PointRecord, error)
}

// MissionRequest sets a student's mission verdict.
type MissionRequest struct {
	Status models.MissionStatus `json:"status" validate:"required,oneof=PASS FAIL PENDING"`
}

// ConversionPayload is carried by mission conversion jobs.
type ConversionPayload struct {
	SessionID string
	StudentID string
}

// MissionResultView reports a verdict and whether a conversion was queued.
type MissionResultView struct {
	Result           *models.MissionResult `json:"result"`
	ConversionQueued bool                  `json:"conversion_queued"`
}

// MissionService records class mission outcomes and schedules point conversion.
type MissionService struct {
	repo       missionRepository
	sessions   sessionGate
	students   studentLookup
	dispatcher jobs.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// NewMissionService constructs a MissionService. Conversion jobs are sent to dispatcher.
func NewMissionService(repo missionRepository, sessions sessionGate, students studentLookup, dispatcher jobs.Dispatcher, logger *zap.Logger) *MissionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MissionService{repo: repo, sessions: sessions, students: students, dispatcher: dispatcher, logger: logger, now: time.Now}
}

// ConversionHandler returns the job handler converting held points with mode.
func ConversionHandler(ledger missionConverter, mode string, logger *zap.Logger) jobs.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(ctx context.Context, job jobs.Job) error {
		payload, ok := job.Payload.(ConversionPayload)
		if !ok {
			return fmt.Errorf("unexpected payload %T for job %s", job.Payload, job.ID)
		}
		records, err := ledger.ConvertForMission(ctx, payload.StudentID, payload.SessionID, mode)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			logger.Debug("no held points to convert", zap.String("job_id", job.ID))
		}
		return nil
	}
}

// Record upserts the verdict. Every PASS queues a conversion; the conversion
// itself is idempotent, so a re-recorded PASS retries a lost job.
func (s *MissionService) Record(ctx context.Context, sessionID, studentID string, status models.MissionStatus) (*MissionResultView, error) {
	if !models.ValidMissionStatus(status) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "status must be PASS, FAIL or PENDING")
	}
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

	result, previous, err := s.repo.Upsert(ctx, sessionID, studentID, status, s.now().UTC())
	if err != nil {
		return nil, storeError(err, "failed to record mission result")
	}
	view := &MissionResultView{Result: result}
	if status == models.MissionPass {
		job := jobs.Job{
			ID:      fmt.Sprintf("convert:%s:%s", sessionID, studentID),
			Type:    JobTypeMissionConversion,
			Payload: ConversionPayload{SessionID: sessionID, StudentID: studentID},
		}
		if err := s.dispatcher.Enqueue(job); err != nil {
			s.logger.Error("failed to queue conversion", zap.String("job_id", job.ID), zap.Error(err))
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to queue point conversion")
		}
		view.ConversionQueued = true
	}
	s.logger.Info("mission result recorded",
		zap.String("session_id", sessionID),
		zap.String("student_id", studentID),
		zap.String("status", string(status)),
		zap.String("previous", string(previous)),
	)
	return view, nil
}

// ListBySession returns verdicts for a session.
func (s *MissionService) ListBySession(ctx context.Context, sessionID string) ([]models.MissionResult, error) {
	rows, err := s.repo.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, storeError(err, "failed to list mission results")
	}
	return rows, nil
}
