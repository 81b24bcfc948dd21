package repository

import (
	"context"

	"github.com/noah-isme/sciclass-api/internal/models"
)

// QuizResponseRepository stores quiz attempts.
type QuizResponseRepository struct {
	col *Collection[models.QuizResponse]
}

// NewQuizResponseRepository constructs a QuizResponseRepository.
func NewQuizResponseRepository(store BlobStore, opts CollectionOptions) *QuizResponseRepository {
	return &QuizResponseRepository{col: NewCollection[models.QuizResponse](store, KeyQuizResponses, opts)}
}

// Append records the next attempt for (itemID, studentID). build receives the
// prior attempts and returns the response to store, or nil to reject. Nothing
// is written once max responses exist; accepted reports whether a row was added.
func (r *QuizResponseRepository) Append(ctx context.Context, itemID, studentID string, max int, build func(prior []models.QuizResponse) *models.QuizResponse) (*models.QuizResponse, bool, error) {
	var stored *models.QuizResponse
	err := r.col.Mutate(ctx, func(items []models.QuizResponse) ([]models.QuizResponse, error) {
		stored = nil
		prior := models.ResponsesFor(items, itemID, studentID)
		if len(prior) >= max {
			return nil, ErrNoChange
		}
		resp := build(prior)
		if resp == nil {
			return nil, ErrNoChange
		}
		stored = resp
		return append(items, *resp), nil
	})
	if err != nil {
		return nil, false, err
	}
	return stored, stored != nil, nil
}

// ListByStudent returns a student's attempts across items.
func (r *QuizResponseRepository) ListByStudent(ctx context.Context, studentID string) ([]models.QuizResponse, error) {
	items, err := r.col.Load(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.QuizResponse, 0)
	for _, resp := range items {
		if resp.StudentID == studentID {
			out = append(out, resp)
		}
	}
	return out, nil
}
