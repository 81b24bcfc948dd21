package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/sciclass-api/internal/dto"
	appErrors "github.com/noah-isme/sciclass-api/pkg/errors"
)

// Destructive actions guarded by a confirmation step.
const (
	ActionEndSession    = "session.end"
	ActionDeleteStudent = "student.delete"
)

type confirmationStore interface {
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Take(ctx context.Context, key string, dest interface{}) error
}

type pendingConfirmation struct {
	Action   string `json:"action"`
	TargetID string `json:"target_id"`
	ActorID  string `json:"actor_id"`
}

// ConfirmationService issues single-use tokens for request → confirm flows.
type ConfirmationService struct {
	store  confirmationStore
	prefix string
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time
}

// NewConfirmationService constructs a ConfirmationService.
func NewConfirmationService(store confirmationStore, prefix string, ttl time.Duration, logger *zap.Logger) *ConfirmationService {
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConfirmationService{store: store, prefix: prefix, ttl: ttl, logger: logger, now: time.Now}
}

// key scopes token to its action, target and actor so a mismatched confirm
// misses instead of burning the token.
func (s *ConfirmationService) key(action, targetID, actorID, token string) string {
	return strings.Join([]string{s.prefix, "confirm", action, targetID, actorID, token}, ":")
}

// Request records a pending action and returns its ticket.
func (s *ConfirmationService) Request(ctx context.Context, action, targetID, actorID string) (*dto.ConfirmationTicket, error) {
	token := uuid.NewString()
	pending := pendingConfirmation{Action: action, TargetID: targetID, ActorID: actorID}
	if err := s.store.Set(ctx, s.key(action, targetID, actorID, token), pending, s.ttl); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store confirmation")
	}
	s.logger.Info("confirmation requested", zap.String("action", action), zap.String("target_id", targetID), zap.String("actor_id", actorID))
	return &dto.ConfirmationTicket{
		Token:     token,
		Action:    action,
		TargetID:  targetID,
		ExpiresAt: s.now().UTC().Add(s.ttl),
	}, nil
}

// Consume validates and burns token for (action, target, actor). The read and
// delete are one store operation, so concurrent confirms succeed at most once.
func (s *ConfirmationService) Consume(ctx context.Context, action, targetID, actorID, token string) error {
	if token == "" {
		return appErrors.Clone(appErrors.ErrConfirmationRequired, "confirmation token required")
	}
	var pending pendingConfirmation
	if err := s.store.Take(ctx, s.key(action, targetID, actorID, token), &pending); err != nil {
		if errors.Is(err, appErrors.ErrCacheMiss) {
			return appErrors.Clone(appErrors.ErrConfirmationRequired, "confirmation expired or unknown")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load confirmation")
	}
	if pending.Action != action || pending.TargetID != targetID || pending.ActorID != actorID {
		return appErrors.Clone(appErrors.ErrConfirmationRequired, "confirmation does not match action")
	}
	s.logger.Debug("confirmation consumed", zap.String("action", action), zap.String("target_id", targetID))
	return nil
}
