package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sciclass-api/internal/dto"
	"github.com/noah-isme/sciclass-api/internal/models"
	appErrors "github.com/noah-isme/sciclass-api/pkg/errors"
)

type sessionRepository interface {
	List(ctx context.Context, classID string) ([]models.Session, error)
	FindByID(ctx context.Context, id string) (*models.Session, error)
	ActiveFor(ctx context.Context, classID string) (*models.Session, error)
	CreateIfNoneActive(ctx context.Context, session models.Session) (*models.Session, bool, error)
	Close(ctx context.Context, id string, at time.Time) (*models.Session, bool, error)
}

type classLookup interface {
	FindByID(ctx context.Context, id string) (*models.Class, error)
}

// StartSessionRequest opens a class. Zero values fall back to defaults.
type StartSessionRequest struct {
	ClassID        string  `json:"class_id" validate:"required"`
	Period         int     `json:"period" validate:"omitempty,min=1,max=12"`
	ObjectiveTitle string  `json:"objective_title" validate:"omitempty,max=200"`
	ObjectiveText  string  `json:"objective_text" validate:"omitempty,max=1000"`
	AdminStudentID *string `json:"admin_student_id,omitempty"`
}

// SessionService drives the inactive → active → closed lifecycle.
type SessionService struct {
	repo          sessionRepository
	classes       classLookup
	confirmations *ConfirmationService
	validator     *validator.Validate
	logger        *zap.Logger
	metrics       *MetricsService
	now           func() time.Time

	idMu   sync.Mutex
	lastID int64
}

// NewSessionService constructs a SessionService.
func NewSessionService(repo sessionRepository, classes classLookup, confirmations *ConfirmationService, validate *validator.Validate, logger *zap.Logger, metrics *MetricsService) *SessionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &SessionService{
		repo:          repo,
		classes:       classes,
		confirmations: confirmations,
		validator:     validate,
		logger:        logger,
		metrics:       metrics,
		now:           time.Now,
	}
}

// nextID returns SES-<unix ms>, bumped to stay unique within the process.
func (s *SessionService) nextID(now time.Time) string {
	s.idMu.Lock()
	defer s.idMu.Unlock()
	ms := now.UnixMilli()
	if ms <= s.lastID {
		ms = s.lastID + 1
	}
	s.lastID = ms
	return fmt.Sprintf("SES-%d", ms)
}

// Start opens a session unless the class already has an active one.
func (s *SessionService) Start(ctx context.Context, req StartSessionRequest) (*models.Session, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid session payload")
	}
	if _, err := s.classes.FindByID(ctx, req.ClassID); err != nil {
		return nil, storeError(err, "class not found")
	}

	now := s.now()
	session := models.Session{
		ID:             s.nextID(now),
		ClassID:        req.ClassID,
		Date:           now.Format("2006-01-02"),
		Period:         req.Period,
		Status:         models.SessionActive,
		ObjectiveTitle: strings.TrimSpace(req.ObjectiveTitle),
		ObjectiveText:  strings.TrimSpace(req.ObjectiveText),
		AdminStudentID: req.AdminStudentID,
		StartedAt:      now.UTC(),
	}
	if session.Period == 0 {
		session.Period = 1
	}
	if session.ObjectiveTitle == "" {
		session.ObjectiveTitle = models.DefaultObjectiveTitle
	}
	if session.ObjectiveText == "" {
		session.ObjectiveText = models.DefaultObjectiveText
	}

	stored, created, err := s.repo.CreateIfNoneActive(ctx, session)
	if err != nil {
		return nil, storeError(err, "failed to start session")
	}
	if !created {
		return nil, appErrors.Clone(appErrors.ErrSessionActive, fmt.Sprintf("class %s already has active session %s", req.ClassID, stored.ID))
	}

	s.metrics.RecordSessionTransition(models.SessionActive)
	s.logger.Info("session started", zap.String("session_id", stored.ID), zap.String("class_id", stored.ClassID), zap.Int("period", stored.Period))
	return stored, nil
}

// RequestEnd is the first step of closing a session.
func (s *SessionService) RequestEnd(ctx context.Context, sessionID, actorID string) (*dto.ConfirmationTicket, error) {
	if _, err := s.RequireActive(ctx, sessionID); err != nil {
		return nil, err
	}
	return s.confirmations.Request(ctx, ActionEndSession, sessionID, actorID)
}

// ConfirmEnd closes the session once token matches the pending request.
func (s *SessionService) ConfirmEnd(ctx context.Context, sessionID, actorID, token string) (*models.Session, error) {
	if err := s.confirmations.Consume(ctx, ActionEndSession, sessionID, actorID, token); err != nil {
		return nil, err
	}
	closed, changed, err := s.repo.Close(ctx, sessionID, s.now().UTC())
	if err != nil {
		return nil, storeError(err, "session not found")
	}
	if changed {
		s.metrics.RecordSessionTransition(models.SessionClosed)
		s.logger.Info("session closed", zap.String("session_id", closed.ID), zap.String("class_id", closed.ClassID))
	}
	return closed, nil
}

// ActiveSessionFor returns the active session of classID, or nil.
func (s *SessionService) ActiveSessionFor(ctx context.Context, classID string) (*models.Session, error) {
	session, err := s.repo.ActiveFor(ctx, classID)
	if err != nil {
		return nil, storeError(err, "failed to load sessions")
	}
	return session, nil
}

// State reports the lifecycle state of classID for polling clients.
func (s *SessionService) State(ctx context.Context, classID string) (dto.SessionState, error) {
	session, err := s.ActiveSessionFor(ctx, classID)
	if err != nil {
		return dto.SessionState{}, err
	}
	state := dto.SessionState{ClassID: classID, Status: models.SessionInactive}
	if session != nil {
		state.Status = session.Status
		state.Session = session
	}
	return state, nil
}

// RequireActiveForClass returns the active session or ErrNoActiveSession.
func (s *SessionService) RequireActiveForClass(ctx context.Context, classID string) (*models.Session, error) {
	session, err := s.ActiveSessionFor(ctx, classID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, appErrors.ErrNoActiveSession
	}
	return session, nil
}

// RequireActive gates session-scoped writes on sessionID being active.
func (s *SessionService) RequireActive(ctx context.Context, sessionID string) (*models.Session, error) {
	session, err := s.repo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, storeError(err, "session not found")
	}
	if !session.IsActive() {
		return nil, appErrors.Clone(appErrors.ErrSessionClosed, fmt.Sprintf("session %s is %s", session.ID, session.Status))
	}
	return session, nil
}

// Get returns one session.
func (s *SessionService) Get(ctx context.Context, sessionID string) (*models.Session, error) {
	session, err := s.repo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, storeError(err, "session not found")
	}
	return session, nil
}

// List returns sessions of a class, newest first.
func (s *SessionService) List(ctx context.Context, classID string) ([]models.Session, error) {
	sessions, err := s.repo.List(ctx, classID)
	if err != nil {
		return nil, storeError(err, "failed to list sessions")
	}
	return sessions, nil
}
