package repository

import (
	"context"
	"time"

	"github.com/noah-isme/sciclass-api/internal/models"
)

// WarningRepository stores per-session warning counters.
type WarningRepository struct {
	col *Collection[models.Warning]
}

// NewWarningRepository constructs a WarningRepository.
func NewWarningRepository(store BlobStore, opts CollectionOptions) *WarningRepository {
	return &WarningRepository{col: NewCollection[models.Warning](store, KeyWarnings, opts)}
}

// Increment creates the counter at 1 or adds one, clamped at max. At the cap
// the stored warning is returned with changed=false.
func (r *WarningRepository) Increment(ctx context.Context, sessionID, studentID string, max int, at time.Time) (*models.Warning, bool, error) {
	var (
		result  *models.Warning
		changed bool
	)
	err := r.col.Mutate(ctx, func(items []models.Warning) ([]models.Warning, error) {
		changed = false
		for i := range items {
			if items[i].SessionID != sessionID || items[i].StudentID != studentID {
				continue
			}
			if items[i].Count >= max {
				w := items[i]
				result = &w
				return nil, ErrNoChange
			}
			items[i].Count++
			items[i].UpdatedAt = at
			w := items[i]
			result = &w
			changed = true
			return items, nil
		}
		w := models.Warning{SessionID: sessionID, StudentID: studentID, Count: 1, UpdatedAt: at}
		result = &w
		changed = true
		return append(items, w), nil
	})
	if err != nil {
		return nil, false, err
	}
	return result, changed, nil
}

// Find returns the warning for (session, student) or ErrNotFound.
func (r *WarningRepository) Find(ctx context.Context, sessionID, studentID string) (*models.Warning, error) {
	items, err := r.col.Load(ctx)
	if err != nil {
		return nil, err
	}
	if w := models.FindWarning(items, sessionID, studentID); w != nil {
		return w, nil
	}
	return nil, ErrNotFound
}

// ListBySession returns warnings recorded in a session.
func (r *WarningRepository) ListBySession(ctx context.Context, sessionID string) ([]models.Warning, error) {
	items, err := r.col.Load(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.Warning, 0)
	for _, w := range items {
		if w.SessionID == sessionID {
			out = append(out, w)
		}
	}
	return out, nil
}
