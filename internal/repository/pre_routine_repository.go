package repository

import (
	"context"

	"github.com/noah-isme/sciclass-api/internal/models"
)

// PreRoutineRepository stores checklist completions.
type PreRoutineRepository struct {
	col *Collection[models.PreRoutine]
}

// NewPreRoutineRepository constructs a PreRoutineRepository.
func NewPreRoutineRepository(store BlobStore, opts CollectionOptions) *PreRoutineRepository {
	return &PreRoutineRepository{col: NewCollection[models.PreRoutine](store, KeyPreRoutines, opts)}
}

// CreateIfAbsent stores routine unless the pair already completed the checklist.
func (r *PreRoutineRepository) CreateIfAbsent(ctx context.Context, routine models.PreRoutine) (*models.PreRoutine, bool, error) {
	var (
		result  *models.PreRoutine
		created bool
	)
	err := r.col.Mutate(ctx, func(items []models.PreRoutine) ([]models.PreRoutine, error) {
		created = false
		for i := range items {
			if items[i].SessionID == routine.SessionID && items[i].StudentID == routine.StudentID {
				p := items[i]
				result = &p
				return nil, ErrNoChange
			}
		}
		p := routine
		result = &p
		created = true
		return append(items, routine), nil
	})
	if err != nil {
		return nil, false, err
	}
	return result, created, nil
}

// Find returns the routine for (session, student) or ErrNotFound.
func (r *PreRoutineRepository) Find(ctx context.Context, sessionID, studentID string) (*models.PreRoutine, error) {
	items, err := r.col.Load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].SessionID == sessionID && items[i].StudentID == studentID {
			p := items[i]
			return &p, nil
		}
	}
	return nil, ErrNotFound
}

// ListBySession returns completions for a session.
func (r *PreRoutineRepository) ListBySession(ctx context.Context, sessionID string) ([]models.PreRoutine, error) {
	items, err := r.col.Load(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.PreRoutine, 0)
	for _, p := range items {
		if p.SessionID == sessionID {
			out = append(out, p)
		}
	}
	return out, nil
}
