package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/sciclass-api/internal/dto"
	"github.com/noah-isme/sciclass-api/internal/models"
	appErrors "github.com/noah-isme/sciclass-api/pkg/errors"
)

// Board entry kinds as they appear in routes.
const (
	KindQuestions = "questions"
	KindAnswers   = "answers"
)

type questionRepository interface {
	Create(ctx context.Context, q models.Question) (bool, error)
	List(ctx context.Context) ([]models.Question, error)
	FindByID(ctx context.Context, id string) (*models.Question, error)
	Update(ctx context.Context, id string, fn func(*models.Question)) (*models.Question, error)
}

type answerRepository interface {
	Create(ctx context.Context, a models.Answer) (bool, error)
	List(ctx context.Context) ([]models.Answer, error)
	FindByID(ctx context.Context, id string) (*models.Answer, error)
	Update(ctx context.Context, id string, fn func(*models.Answer)) (*models.Answer, error)
	MarkBest(ctx context.Context, questionID, answerID string) (*models.Answer, bool, error)
}

type classSessionGate interface {
	RequireActiveForClass(ctx context.Context, classID string) (*models.Session, error)
}

type pointsGate interface {
	PointsBlocked(ctx context.Context, sessionID, studentID string) (bool, error)
}

type pointsEarner interface {
	RecordEarn(ctx context.Context, req EarnRequest) (*models.PointRecord, error)
}

// BoardRewards sets the points for each board event. Zero disables the reward.
type BoardRewards struct {
	QuestionCreate int
	AnswerCreate   int
	BestAnswer     int
}

// PostResult reports a new board entry and the points it earned, if any.
type PostResult struct {
	Question      *models.Question    `json:"question,omitempty"`
	Answer        *models.Answer      `json:"answer,omitempty"`
	Point         *models.PointRecord `json:"point,omitempty"`
	PointsBlocked bool                `json:"points_blocked"`
}

// SelectBestResult reports a best-answer selection. Applied is false when the
// requester may not choose or the answer was already the best.
type SelectBestResult struct {
	Applied bool                `json:"applied"`
	Answer  *models.Answer      `json:"answer,omitempty"`
	Point   *models.PointRecord `json:"point,omitempty"`
}

// RecommendResult reports the recommendation state after a toggle.
type RecommendResult struct {
	Recommended bool `json:"recommended"`
	Count       int  `json:"count"`
}

// BoardService runs the grade-scoped Q&A board.
type BoardService struct {
	questions questionRepository
	answers   answerRepository
	sessions  classSessionGate
	warnings  pointsGate
	ledger    pointsEarner
	cache     *CacheService
	cacheTTL  time.Duration
	rewards   BoardRewards
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewBoardService constructs a BoardService.
func NewBoardService(questions questionRepository, answers answerRepository, sessions classSessionGate, warnings pointsGate, ledger pointsEarner, cache *CacheService, cacheTTL time.Duration, rewards BoardRewards, validate *validator.Validate, logger *zap.Logger) *BoardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &BoardService{
		questions: questions,
		answers:   answers,
		sessions:  sessions,
		warnings:  warnings,
		ledger:    ledger,
		cache:     cache,
		cacheTTL:  cacheTTL,
		rewards:   rewards,
		validator: validate,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *BoardService) cleanText(text string) (string, error) {
	req := dto.TextRequest{Text: strings.TrimSpace(text)}
	if err := s.validator.Struct(req); err != nil {
		return "", validationError(err, "text must be between 1 and 500 characters")
	}
	return req.Text, nil
}

// Ask posts a question on the student's active session.
func (s *BoardService) Ask(ctx context.Context, student models.Student, text string) (*PostResult, error) {
	body, err := s.cleanText(text)
	if err != nil {
		return nil, err
	}
	session, err := s.sessions.RequireActiveForClass(ctx, student.ClassID)
	if err != nil {
		return nil, err
	}

	question := models.Question{
		ID:              uuid.NewString(),
		SessionID:       session.ID,
		StudentID:       student.ID,
		StudentName:     student.Name,
		ClassID:         student.ClassID,
		Text:            body,
		Recommendations: []string{},
		CreatedAt:       s.now().UTC(),
	}
	first, err := s.questions.Create(ctx, question)
	if err != nil {
		return nil, storeError(err, "failed to post question")
	}
	s.invalidate(ctx, student.ClassID)

	result := &PostResult{Question: &question}
	if first {
		result.Point, result.PointsBlocked, err = s.award(ctx, session.ID, student.ID, question.ID, s.rewards.QuestionCreate, models.ReasonQuestionCreate)
		if err != nil {
			return nil, err
		}
	}
	s.logger.Info("question posted", zap.String("question_id", question.ID), zap.String("student_id", student.ID), zap.Bool("first_in_session", first))
	return result, nil
}

// Answer replies to a question visible to the student.
func (s *BoardService) Answer(ctx context.Context, student models.Student, questionID, text string) (*PostResult, error) {
	body, err := s.cleanText(text)
	if err != nil {
		return nil, err
	}
	question, err := s.questions.FindByID(ctx, questionID)
	if err != nil {
		return nil, storeError(err, "question not found")
	}
	if !question.VisibleTo(student.ClassID) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "question not found")
	}
	session, err := s.sessions.RequireActiveForClass(ctx, student.ClassID)
	if err != nil {
		return nil, err
	}

	answer := models.Answer{
		ID:              uuid.NewString(),
		QuestionID:      question.ID,
		SessionID:       session.ID,
		StudentID:       student.ID,
		StudentName:     student.Name,
		ClassID:         student.ClassID,
		Text:            body,
		Recommendations: []string{},
		CreatedAt:       s.now().UTC(),
	}
	first, err := s.answers.Create(ctx, answer)
	if err != nil {
		return nil, storeError(err, "failed to post answer")
	}
	s.invalidate(ctx, question.ClassID)

	result := &PostResult{Answer: &answer}
	if first {
		result.Point, result.PointsBlocked, err = s.award(ctx, session.ID, student.ID, answer.ID, s.rewards.AnswerCreate, models.ReasonAnswerCreate)
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

// award grants HOLD participation points unless warnings block them. postID
// is already stored, so a ledger failure leaves the post without its point.
func (s *BoardService) award(ctx context.Context, sessionID, studentID, postID string, points int, reason string) (*models.PointRecord, bool, error) {
	blocked, err := s.warnings.PointsBlocked(ctx, sessionID, studentID)
	if err != nil {
		return nil, false, err
	}
	if blocked || points <= 0 {
		return nil, blocked, nil
	}
	sid := sessionID
	record, err := s.ledger.RecordEarn(ctx, EarnRequest{
		StudentID: studentID,
		SessionID: &sid,
		Bucket:    models.BucketHold,
		Points:    points,
		Reason:    reason,
	})
	if err != nil {
		s.logger.Error("points not recorded after save",
			zap.String("session_id", sessionID),
			zap.String("student_id", studentID),
			zap.String("post_id", postID),
			zap.String("reason", reason),
			zap.Error(err),
		)
		return nil, false, err
	}
	return record, false, nil
}

// SelectBest lets the question author mark one answer as best. The answer's
// author receives CONFIRMED points when the selection changes.
func (s *BoardService) SelectBest(ctx context.Context, questionID, answerID, requesterID string) (*SelectBestResult, error) {
	question, err := s.questions.FindByID(ctx, questionID)
	if err != nil {
		return nil, storeError(err, "question not found")
	}
	if question.StudentID != requesterID {
		return &SelectBestResult{Applied: false}, nil
	}

	best, changed, err := s.answers.MarkBest(ctx, questionID, answerID)
	if err != nil {
		return nil, storeError(err, "answer not found for question")
	}
	if !changed {
		return &SelectBestResult{Applied: false, Answer: best}, nil
	}
	s.invalidate(ctx, question.ClassID)

	result := &SelectBestResult{Applied: true, Answer: best}
	if s.rewards.BestAnswer > 0 {
		sid := best.SessionID
		result.Point, err = s.ledger.RecordEarn(ctx, EarnRequest{
			StudentID: best.StudentID,
			SessionID: &sid,
			Bucket:    models.BucketConfirmed,
			Points:    s.rewards.BestAnswer,
			Reason:    models.ReasonBestAnswer,
		})
		if err != nil {
			return nil, err
		}
	}
	s.logger.Info("best answer selected", zap.String("question_id", questionID), zap.String("answer_id", answerID), zap.String("author_id", best.StudentID))
	return result, nil
}

// Moderate applies teacher pin/hide flags. Answers cannot be pinned.
func (s *BoardService) Moderate(ctx context.Context, kind, id string, req dto.ModerationRequest) (interface{}, error) {
	if req.IsPinned == nil && req.IsHidden == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "nothing to update")
	}
	switch kind {
	case KindQuestions:
		updated, err := s.questions.Update(ctx, id, func(q *models.Question) {
			if req.IsPinned != nil {
				q.IsPinned = *req.IsPinned
			}
			if req.IsHidden != nil {
				q.IsHidden = *req.IsHidden
			}
		})
		if err != nil {
			return nil, storeError(err, "question not found")
		}
		s.invalidate(ctx, updated.ClassID)
		return updated, nil
	case KindAnswers:
		if req.IsPinned != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "answers cannot be pinned")
		}
		updated, err := s.answers.Update(ctx, id, func(a *models.Answer) {
			a.IsHidden = *req.IsHidden
		})
		if err != nil {
			return nil, storeError(err, "answer not found")
		}
		s.invalidate(ctx, updated.ClassID)
		return updated, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown board kind %q", kind))
	}
}

// Recommend toggles the student's recommendation on a visible entry.
func (s *BoardService) Recommend(ctx context.Context, kind, id string, student models.Student) (*RecommendResult, error) {
	result := &RecommendResult{}
	switch kind {
	case KindQuestions:
		current, err := s.questions.FindByID(ctx, id)
		if err != nil {
			return nil, storeError(err, "question not found")
		}
		if !current.VisibleTo(student.ClassID) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "question not found")
		}
		updated, err := s.questions.Update(ctx, id, func(q *models.Question) {
			q.Recommendations, result.Recommended = models.ToggleRecommendation(q.Recommendations, student.ID)
		})
		if err != nil {
			return nil, storeError(err, "question not found")
		}
		result.Count = len(updated.Recommendations)
		s.invalidate(ctx, updated.ClassID)
	case KindAnswers:
		current, err := s.answers.FindByID(ctx, id)
		if err != nil {
			return nil, storeError(err, "answer not found")
		}
		if !current.VisibleTo(student.ClassID) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "answer not found")
		}
		updated, err := s.answers.Update(ctx, id, func(a *models.Answer) {
			a.Recommendations, result.Recommended = models.ToggleRecommendation(a.Recommendations, student.ID)
		})
		if err != nil {
			return nil, storeError(err, "answer not found")
		}
		result.Count = len(updated.Recommendations)
		s.invalidate(ctx, updated.ClassID)
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown board kind %q", kind))
	}
	return result, nil
}

// Feed returns the board for a student of classID: same grade, hidden entries
// removed, pinned questions first then newest.
func (s *BoardService) Feed(ctx context.Context, classID string) (*dto.BoardFeed, error) {
	grade := models.GradePrefix(classID)
	key := feedCacheKey(grade)
	var cached dto.BoardFeed
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return &cached, nil
	}

	feed, err := s.buildFeed(ctx, grade, false)
	if err != nil {
		return nil, err
	}
	_ = s.cache.Set(ctx, key, feed, s.cacheTTL)
	return feed, nil
}

// ModerationFeed returns every thread of a grade, hidden entries included.
// An empty grade lists the whole board.
func (s *BoardService) ModerationFeed(ctx context.Context, grade string) (*dto.BoardFeed, error) {
	return s.buildFeed(ctx, grade, true)
}

func (s *BoardService) buildFeed(ctx context.Context, grade string, includeHidden bool) (*dto.BoardFeed, error) {
	questions, err := s.questions.List(ctx)
	if err != nil {
		return nil, storeError(err, "failed to load questions")
	}
	answers, err := s.answers.List(ctx)
	if err != nil {
		return nil, storeError(err, "failed to load answers")
	}

	byQuestion := make(map[string][]models.Answer)
	for _, a := range answers {
		if a.IsHidden && !includeHidden {
			continue
		}
		byQuestion[a.QuestionID] = append(byQuestion[a.QuestionID], a)
	}

	feed := &dto.BoardFeed{Grade: grade, Threads: make([]dto.BoardThread, 0)}
	for _, q := range questions {
		if grade != "" && models.GradePrefix(q.ClassID) != grade {
			continue
		}
		if q.IsHidden && !includeHidden {
			continue
		}
		thread := dto.BoardThread{Question: q, Answers: byQuestion[q.ID]}
		if thread.Answers == nil {
			thread.Answers = []models.Answer{}
		}
		sort.SliceStable(thread.Answers, func(i, j int) bool {
			return thread.Answers[i].IsBest && !thread.Answers[j].IsBest
		})
		feed.Threads = append(feed.Threads, thread)
	}
	sort.SliceStable(feed.Threads, func(i, j int) bool {
		a, b := feed.Threads[i].Question, feed.Threads[j].Question
		if a.IsPinned != b.IsPinned {
			return a.IsPinned
		}
		return a.CreatedAt.After(b.CreatedAt)
	})
	return feed, nil
}

func (s *BoardService) invalidate(ctx context.Context, classID string) {
	_ = s.cache.Invalidate(ctx, feedCacheKey(models.GradePrefix(classID)))
}

func feedCacheKey(grade string) string {
	return "board:" + grade
}
