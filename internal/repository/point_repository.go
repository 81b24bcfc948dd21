package repository

import (
	"context"

	"github.com/noah-isme/sciclass-api/internal/models"
)

// PointRepository is the append-only ledger.
type PointRepository struct {
	col *Collection[models.PointRecord]
}

// NewPointRepository constructs a PointRepository.
func NewPointRepository(store BlobStore, opts CollectionOptions) *PointRepository {
	return &PointRepository{col: NewCollection[models.PointRecord](store, KeyPoints, opts)}
}

// All returns the full ledger in insertion order.
func (r *PointRepository) All(ctx context.Context) ([]models.PointRecord, error) {
	return r.col.Load(ctx)
}

// ListByStudent returns the student's entries newest first.
func (r *PointRepository) ListByStudent(ctx context.Context, studentID string) ([]models.PointRecord, error) {
	items, err := r.col.Load(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.PointRecord, 0)
	for i := len(items) - 1; i >= 0; i-- {
		if items[i].StudentID == studentID {
			out = append(out, items[i])
		}
	}
	return out, nil
}

// Append adds records atomically.
func (r *PointRepository) Append(ctx context.Context, records ...models.PointRecord) error {
	if len(records) == 0 {
		return nil
	}
	return r.col.Mutate(ctx, func(items []models.PointRecord) ([]models.PointRecord, error) {
		return append(items, records...), nil
	})
}

// AppendIfBalance appends a SPEND only if the student's balance in the
// record's bucket covers it.
func (r *PointRepository) AppendIfBalance(ctx context.Context, record models.PointRecord) error {
	return r.col.Mutate(ctx, func(items []models.PointRecord) ([]models.PointRecord, error) {
		if models.Balance(items, record.StudentID, record.Bucket) < record.Points {
			return nil, ErrInsufficientBalance
		}
		return append(items, record), nil
	})
}

// AppendWith lets build inspect the current ledger and return the entries to
// append. Returning no entries skips the write.
func (r *PointRepository) AppendWith(ctx context.Context, build func(ledger []models.PointRecord) ([]models.PointRecord, error)) ([]models.PointRecord, error) {
	var appended []models.PointRecord
	err := r.col.Mutate(ctx, func(items []models.PointRecord) ([]models.PointRecord, error) {
		appended = nil
		next, err := build(items)
		if err != nil {
			return nil, err
		}
		if len(next) == 0 {
			return nil, ErrNoChange
		}
		appended = next
		return append(items, next...), nil
	})
	if err != nil {
		return nil, err
	}
	return appended, nil
}
