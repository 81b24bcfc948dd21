package repository

import (
	"context"
	"time"

	"github.com/noah-isme/sciclass-api/internal/models"
)

// SessionRepository manages class sessions.
type SessionRepository struct {
	col *Collection[models.Session]
}

// NewSessionRepository constructs a SessionRepository.
func NewSessionRepository(store BlobStore, opts CollectionOptions) *SessionRepository {
	return &SessionRepository{col: NewCollection[models.Session](store, KeySessions, opts)}
}

// List returns sessions of classID, newest first. An empty classID lists all.
func (r *SessionRepository) List(ctx context.Context, classID string) ([]models.Session, error) {
	all, err := r.col.Load(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.Session, 0, len(all))
	for i := len(all) - 1; i >= 0; i-- {
		if classID == "" || all[i].ClassID == classID {
			out = append(out, all[i])
		}
	}
	return out, nil
}

// FindByID returns a session or ErrNotFound.
func (r *SessionRepository) FindByID(ctx context.Context, id string) (*models.Session, error) {
	all, err := r.col.Load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].ID == id {
			s := all[i]
			return &s, nil
		}
	}
	return nil, ErrNotFound
}

// ActiveFor returns the active session for classID or nil.
func (r *SessionRepository) ActiveFor(ctx context.Context, classID string) (*models.Session, error) {
	all, err := r.col.Load(ctx)
	if err != nil {
		return nil, err
	}
	return models.ActiveSessionIn(all, classID), nil
}

// CreateIfNoneActive inserts session unless its class already has an active
// one, which is returned instead with created=false.
func (r *SessionRepository) CreateIfNoneActive(ctx context.Context, session models.Session) (*models.Session, bool, error) {
	var (
		result  *models.Session
		created bool
	)
	err := r.col.Mutate(ctx, func(items []models.Session) ([]models.Session, error) {
		created = false
		if existing := models.ActiveSessionIn(items, session.ClassID); existing != nil {
			result = existing
			return nil, ErrNoChange
		}
		s := session
		result = &s
		created = true
		return append(items, session), nil
	})
	if err != nil {
		return nil, false, err
	}
	return result, created, nil
}

// Close marks an active session closed. Closing a closed session reports changed=false.
func (r *SessionRepository) Close(ctx context.Context, id string, at time.Time) (*models.Session, bool, error) {
	var (
		result  *models.Session
		changed bool
	)
	err := r.col.Mutate(ctx, func(items []models.Session) ([]models.Session, error) {
		changed = false
		for i := range items {
			if items[i].ID != id {
				continue
			}
			if items[i].Status == models.SessionClosed {
				s := items[i]
				result = &s
				return nil, ErrNoChange
			}
			closedAt := at
			items[i].Status = models.SessionClosed
			items[i].ClosedAt = &closedAt
			s := items[i]
			result = &s
			changed = true
			return items, nil
		}
		return nil, ErrNotFound
	})
	if err != nil {
		return nil, false, err
	}
	return result, changed, nil
}
