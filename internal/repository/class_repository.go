package repository

import (
	"context"

	"github.com/noah-isme/sciclass-api/internal/models"
)

// ClassRepository manages the class list.
type ClassRepository struct {
	col *Collection[models.Class]
}

// NewClassRepository constructs a ClassRepository.
func NewClassRepository(store BlobStore, opts CollectionOptions) *ClassRepository {
	return &ClassRepository{col: NewCollection[models.Class](store, KeyClasses, opts)}
}

// List returns every class.
func (r *ClassRepository) List(ctx context.Context) ([]models.Class, error) {
	return r.col.Load(ctx)
}

// FindByID returns a class or ErrNotFound.
func (r *ClassRepository) FindByID(ctx context.Context, id string) (*models.Class, error) {
	classes, err := r.col.Load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range classes {
		if classes[i].ID == id {
			c := classes[i]
			return &c, nil
		}
	}
	return nil, ErrNotFound
}

// SeedIfEmpty writes classes only when the collection has never been populated.
func (r *ClassRepository) SeedIfEmpty(ctx context.Context, classes []models.Class) (bool, error) {
	seeded := false
	err := r.col.Mutate(ctx, func(items []models.Class) ([]models.Class, error) {
		seeded = false
		if len(items) > 0 {
			return nil, ErrNoChange
		}
		seeded = true
		return classes, nil
	})
	return seeded, err
}
