package repository

import (
	"context"
	"time"

	"github.com/noah-isme/sciclass-api/internal/models"
)

// ClaimRepository stores purchase requests.
type ClaimRepository struct {
	col *Collection[models.ClaimRequest]
}

// NewClaimRepository constructs a ClaimRepository.
func NewClaimRepository(store BlobStore, opts CollectionOptions) *ClaimRepository {
	return &ClaimRepository{col: NewCollection[models.ClaimRequest](store, KeyClaims, opts)}
}

// Create appends a claim.
func (r *ClaimRepository) Create(ctx context.Context, claim models.ClaimRequest) error {
	return r.col.Mutate(ctx, func(items []models.ClaimRequest) ([]models.ClaimRequest, error) {
		return append(items, claim), nil
	})
}

// List returns claims newest first, optionally limited to one student.
func (r *ClaimRepository) List(ctx context.Context, studentID string) ([]models.ClaimRequest, error) {
	items, err := r.col.Load(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.ClaimRequest, 0)
	for i := len(items) - 1; i >= 0; i-- {
		if studentID == "" || items[i].StudentID == studentID {
			out = append(out, items[i])
		}
	}
	return out, nil
}

// Transition moves a claim to status if the workflow allows it.
func (r *ClaimRepository) Transition(ctx context.Context, id string, status models.ClaimStatus, at time.Time) (*models.ClaimRequest, error) {
	var updated *models.ClaimRequest
	err := r.col.Mutate(ctx, func(items []models.ClaimRequest) ([]models.ClaimRequest, error) {
		updated = nil
		for i := range items {
			if items[i].ID != id {
				continue
			}
			if !models.CanTransition(items[i].Status, status) {
				return nil, ErrInvalidTransition
			}
			items[i].Status = status
			items[i].UpdatedAt = at
			c := items[i]
			updated = &c
			return items, nil
		}
		return nil, ErrNotFound
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
