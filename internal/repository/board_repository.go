package repository

import (
	"context"

	"github.com/noah-isme/sciclass-api/internal/models"
)

// QuestionRepository stores board questions.
type QuestionRepository struct {
	col *Collection[models.Question]
}

// NewQuestionRepository constructs a QuestionRepository.
func NewQuestionRepository(store BlobStore, opts CollectionOptions) *QuestionRepository {
	return &QuestionRepository{col: NewCollection[models.Question](store, KeyQuestions, opts)}
}

// Create appends q and reports whether it is the author's first question in its session.
func (r *QuestionRepository) Create(ctx context.Context, q models.Question) (bool, error) {
	first := false
	err := r.col.Mutate(ctx, func(items []models.Question) ([]models.Question, error) {
		first = !models.HasSubmittedThisSession(items, q.SessionID, q.StudentID)
		return append(items, q), nil
	})
	return first, err
}

// List returns every question.
func (r *QuestionRepository) List(ctx context.Context) ([]models.Question, error) {
	return r.col.Load(ctx)
}

// FindByID returns a question or ErrNotFound.
func (r *QuestionRepository) FindByID(ctx context.Context, id string) (*models.Question, error) {
	items, err := r.col.Load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].ID == id {
			q := items[i]
			return &q, nil
		}
	}
	return nil, ErrNotFound
}

// Update applies fn to the stored question.
func (r *QuestionRepository) Update(ctx context.Context, id string, fn func(*models.Question)) (*models.Question, error) {
	var updated *models.Question
	err := r.col.Mutate(ctx, func(items []models.Question) ([]models.Question, error) {
		updated = nil
		for i := range items {
			if items[i].ID == id {
				fn(&items[i])
				q := items[i]
				updated = &q
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

// AnswerRepository stores board answers.
type AnswerRepository struct {
	col *Collection[models.Answer]
}

// NewAnswerRepository constructs an AnswerRepository.
func NewAnswerRepository(store BlobStore, opts CollectionOptions) *AnswerRepository {
	return &AnswerRepository{col: NewCollection[models.Answer](store, KeyAnswers, opts)}
}

// Create appends a and reports whether it is the author's first answer in its session.
func (r *AnswerRepository) Create(ctx context.Context, a models.Answer) (bool, error) {
	first := false
	err := r.col.Mutate(ctx, func(items []models.Answer) ([]models.Answer, error) {
		first = !models.HasSubmittedThisSession(items, a.SessionID, a.StudentID)
		return append(items, a), nil
	})
	return first, err
}

// List returns every answer.
func (r *AnswerRepository) List(ctx context.Context) ([]models.Answer, error) {
	return r.col.Load(ctx)
}

// ListByQuestion returns answers to questionID in creation order.
func (r *AnswerRepository) ListByQuestion(ctx context.Context, questionID string) ([]models.Answer, error) {
	items, err := r.col.Load(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.Answer, 0)
	for _, a := range items {
		if a.QuestionID == questionID {
			out = append(out, a)
		}
	}
	return out, nil
}

// FindByID returns an answer or ErrNotFound.
func (r *AnswerRepository) FindByID(ctx context.Context, id string) (*models.Answer, error) {
	items, err := r.col.Load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].ID == id {
			a := items[i]
			return &a, nil
		}
	}
	return nil, ErrNotFound
}

// Update applies fn to the stored answer.
func (r *AnswerRepository) Update(ctx context.Context, id string, fn func(*models.Answer)) (*models.Answer, error) {
	var updated *models.Answer
	err := r.col.Mutate(ctx, func(items []models.Answer) ([]models.Answer, error) {
		updated = nil
		for i := range items {
			if items[i].ID == id {
				fn(&items[i])
				a := items[i]
				updated = &a
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

// MarkBest flags answerID as the best answer of questionID and clears its
// siblings. changed is false when it was already the only best answer.
func (r *AnswerRepository) MarkBest(ctx context.Context, questionID, answerID string) (*models.Answer, bool, error) {
	var (
		best    *models.Answer
		changed bool
	)
	err := r.col.Mutate(ctx, func(items []models.Answer) ([]models.Answer, error) {
		best = nil
		changed = false
		for i := range items {
			if items[i].QuestionID != questionID {
				continue
			}
			want := items[i].ID == answerID
			if want {
				a := items[i]
				a.IsBest = true
				best = &a
			}
			if items[i].IsBest != want {
				items[i].IsBest = want
				changed = true
			}
		}
		if best == nil {
			return nil, ErrNotFound
		}
		if !changed {
			return nil, ErrNoChange
		}
		return items, nil
	})
	if err != nil {
		return nil, false, err
	}
	return best, changed, nil
}
