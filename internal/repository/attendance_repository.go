package repository

import (
	"context"

	"github.com/noah-isme/sciclass-api/internal/models"
)

// AttendanceRepository stores one attendance row per (session, student).
type AttendanceRepository struct {
	col *Collection[models.Attendance]
}

// NewAttendanceRepository constructs an AttendanceRepository.
func NewAttendanceRepository(store BlobStore, opts CollectionOptions) *AttendanceRepository {
	return &AttendanceRepository{col: NewCollection[models.Attendance](store, KeyAttendances, opts)}
}

// CreateIfAbsent inserts attendance unless the pair already exists, in which
// case the stored row is returned with created=false.
func (r *AttendanceRepository) CreateIfAbsent(ctx context.Context, attendance models.Attendance) (*models.Attendance, bool, error) {
	var (
		result  *models.Attendance
		created bool
	)
	err := r.col.Mutate(ctx, func(items []models.Attendance) ([]models.Attendance, error) {
		created = false
		for i := range items {
			if items[i].SessionID == attendance.SessionID && items[i].StudentID == attendance.StudentID {
				a := items[i]
				result = &a
				return nil, ErrNoChange
			}
		}
		a := attendance
		result = &a
		created = true
		return append(items, attendance), nil
	})
	if err != nil {
		return nil, false, err
	}
	return result, created, nil
}

// Find returns the attendance for (session, student) or ErrNotFound.
func (r *AttendanceRepository) Find(ctx context.Context, sessionID, studentID string) (*models.Attendance, error) {
	items, err := r.col.Load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].SessionID == sessionID && items[i].StudentID == studentID {
			a := items[i]
			return &a, nil
		}
	}
	return nil, ErrNotFound
}

// ListBySession returns all attendance rows of a session.
func (r *AttendanceRepository) ListBySession(ctx context.Context, sessionID string) ([]models.Attendance, error) {
	items, err := r.col.Load(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.Attendance, 0)
	for _, a := range items {
		if a.SessionID == sessionID {
			out = append(out, a)
		}
	}
	return out, nil
}
