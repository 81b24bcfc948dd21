package repository

import (
	"context"
	"sort"

	"github.com/noah-isme/sciclass-api/internal/models"
)

// StudentRepository manages the roster.
type StudentRepository struct {
	col *Collection[models.Student]
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(store BlobStore, opts CollectionOptions) *StudentRepository {
	return &StudentRepository{col: NewCollection[models.Student](store, KeyStudents, opts)}
}

// List returns students of classID sorted by number. An empty classID lists everyone.
func (r *StudentRepository) List(ctx context.Context, classID string) ([]models.Student, error) {
	all, err := r.col.Load(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.Student, 0, len(all))
	for _, s := range all {
		if classID == "" || s.ClassID == classID {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].ClassID != out[j].ClassID {
			return out[i].ClassID < out[j].ClassID
		}
		return out[i].Number < out[j].Number
	})
	return out, nil
}

// FindByID returns a student or ErrNotFound.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
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

// Create appends a student.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	return r.col.Mutate(ctx, func(items []models.Student) ([]models.Student, error) {
		return append(items, *student), nil
	})
}

// Update applies fn to the stored student and returns the result.
func (r *StudentRepository) Update(ctx context.Context, id string, fn func(*models.Student)) (*models.Student, error) {
	var updated *models.Student
	err := r.col.Mutate(ctx, func(items []models.Student) ([]models.Student, error) {
		updated = nil
		for i := range items {
			if items[i].ID == id {
				fn(&items[i])
				s := items[i]
				updated = &s
				return items, nil
			}
		}
		return nil, ErrNotFound
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes a student from the roster.
func (r *StudentRepository) Delete(ctx context.Context, id string) error {
	return r.col.Mutate(ctx, func(items []models.Student) ([]models.Student, error) {
		for i := range items {
			if items[i].ID == id {
				return append(items[:i], items[i+1:]...), nil
			}
		}
		return nil, ErrNotFound
	})
}

// SeedIfEmpty writes students only when the roster has never been populated.
func (r *StudentRepository) SeedIfEmpty(ctx context.Context, students []models.Student) (bool, error) {
	seeded := false
	err := r.col.Mutate(ctx, func(items []models.Student) ([]models.Student, error) {
		seeded = false
		if len(items) > 0 {
			return nil, ErrNoChange
		}
		seeded = true
		return students, nil
	})
	return seeded, err
}
