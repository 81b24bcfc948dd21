package repository

import (
	"context"
	"time"

	"github.com/noah-isme/sciclass-api/internal/models"
)

// MissionRepository stores mission verdicts per (session, student).
type MissionRepository struct {
	col *Collection[models.MissionResult]
}

// NewMissionRepository constructs a MissionRepository.
func NewMissionRepository(store BlobStore, opts CollectionOptions) *MissionRepository {
	return &MissionRepository{col: NewCollection[models.MissionResult](store, KeyMissionResults, opts)}
}

// Upsert sets the status and returns the previous one (empty when new).
func (r *MissionRepository) Upsert(ctx context.Context, sessionID, studentID string, status models.MissionStatus, at time.Time) (*models.MissionResult, models.MissionStatus, error) {
	var (
		result   *models.MissionResult
		previous models.MissionStatus
	)
	err := r.col.Mutate(ctx, func(items []models.MissionResult) ([]models.MissionResult, error) {
		previous = ""
		for i := range items {
			if items[i].SessionID == sessionID && items[i].StudentID == studentID {
				previous = items[i].Status
				items[i].Status = status
				items[i].UpdatedAt = at
				m := items[i]
				result = &m
				return items, nil
			}
		}
		m := models.MissionResult{SessionID: sessionID, StudentID: studentID, Status: status, UpdatedAt: at}
		result = &m
		return append(items, m), nil
	})
	if err != nil {
		return nil, "", err
	}
	return result, previous, nil
}

// ListBySession returns verdicts recorded for a session.
func (r *MissionRepository) ListBySession(ctx context.Context, sessionID string) ([]models.MissionResult, error) {
	items, err := r.col.Load(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.MissionResult, 0)
	for _, m := range items {
		if m.SessionID == sessionID {
			out = append(out, m)
		}
	}
	return out, nil
}
