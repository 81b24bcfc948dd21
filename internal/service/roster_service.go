package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sciclass-api/internal/dto"
	"github.com/noah-isme/sciclass-api/internal/models"
	appErrors "github.com/noah-isme/sciclass-api/pkg/errors"
)

type rosterStudentRepository interface {
	List(ctx context.Context, classID string) ([]models.Student, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, id string, fn func(*models.Student)) (*models.Student, error)
	Delete(ctx context.Context, id string) error
	SeedIfEmpty(ctx context.Context, students []models.Student) (bool, error)
}

type rosterClassRepository interface {
	List(ctx context.Context) ([]models.Class, error)
	FindByID(ctx context.Context, id string) (*models.Class, error)
	SeedIfEmpty(ctx context.Context, classes []models.Class) (bool, error)
}

// AddStudentRequest registers a student with the default PIN.
type AddStudentRequest struct {
	ClassID string `json:"class_id" validate:"required"`
	Name    string `json:"name" validate:"required,max=50"`
	Number  int    `json:"number" validate:"required,min=1,max=99"`
}

// RosterService manages classes and students for the teacher.
type RosterService struct {
	students      rosterStudentRepository
	classes       rosterClassRepository
	confirmations *ConfirmationService
	validator     *validator.Validate
	logger        *zap.Logger
	now           func() time.Time
}

// NewRosterService constructs a RosterService.
func NewRosterService(students rosterStudentRepository, classes rosterClassRepository, confirmations *ConfirmationService, validate *validator.Validate, logger *zap.Logger) *RosterService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &RosterService{students: students, classes: classes, confirmations: confirmations, validator: validate, logger: logger, now: time.Now}
}

// Seed writes the demo classes and the class 3-1 roster when the store is empty.
func (s *RosterService) Seed(ctx context.Context) error {
	if _, err := s.classes.SeedIfEmpty(ctx, models.SeedClasses()); err != nil {
		return fmt.Errorf("seed classes: %w", err)
	}

	hash, err := hashPIN(models.DefaultPIN)
	if err != nil {
		return fmt.Errorf("hash default pin: %w", err)
	}
	now := s.now().UTC()
	names := models.SeedStudentNames()
	students := make([]models.Student, 0, len(names))
	for number := 1; number <= len(names); number++ {
		students = append(students, models.Student{
			ID:           models.SeedStudentID("3-1", number),
			ClassID:      "3-1",
			Number:       number,
			Name:         names[number],
			PINHash:      hash,
			IsFirstLogin: true,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
	}
	seeded, err := s.students.SeedIfEmpty(ctx, students)
	if err != nil {
		return fmt.Errorf("seed students: %w", err)
	}
	if seeded {
		s.logger.Info("demo roster seeded", zap.Int("students", len(students)))
	}
	return nil
}

// ListClasses returns every class.
func (s *RosterService) ListClasses(ctx context.Context) ([]models.Class, error) {
	classes, err := s.classes.List(ctx)
	if err != nil {
		return nil, storeError(err, "failed to list classes")
	}
	return classes, nil
}

// GetClass returns one class.
func (s *RosterService) GetClass(ctx context.Context, id string) (*models.Class, error) {
	class, err := s.classes.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "class not found")
	}
	return class, nil
}

// ListStudents returns the roster of classID ordered by number.
func (s *RosterService) ListStudents(ctx context.Context, classID string) ([]models.StudentView, error) {
	students, err := s.students.List(ctx, classID)
	if err != nil {
		return nil, storeError(err, "failed to list students")
	}
	views := make([]models.StudentView, 0, len(students))
	for _, st := range students {
		views = append(views, st.View())
	}
	return views, nil
}

// Students returns full records of classID for internal consumers.
func (s *RosterService) Students(ctx context.Context, classID string) ([]models.Student, error) {
	students, err := s.students.List(ctx, classID)
	if err != nil {
		return nil, storeError(err, "failed to list students")
	}
	return students, nil
}

// GetStudent returns one student.
func (s *RosterService) GetStudent(ctx context.Context, id string) (*models.Student, error) {
	student, err := s.students.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "student not found")
	}
	return student, nil
}

// AddStudent registers a student with the default PIN and a forced change.
func (s *RosterService) AddStudent(ctx context.Context, req AddStudentRequest) (*models.StudentView, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid student payload")
	}
	if _, err := s.classes.FindByID(ctx, req.ClassID); err != nil {
		return nil, storeError(err, "class not found")
	}

	existing, err := s.students.List(ctx, req.ClassID)
	if err != nil {
		return nil, storeError(err, "failed to list students")
	}
	for _, st := range existing {
		if st.Number == req.Number {
			return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("number %d already used in class %s", req.Number, req.ClassID))
		}
	}

	hash, err := hashPIN(models.DefaultPIN)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash pin")
	}
	now := s.now().UTC()
	student := &models.Student{
		ID:           fmt.Sprintf("S-%s-%d", req.ClassID, now.UnixMilli()),
		ClassID:      req.ClassID,
		Number:       req.Number,
		Name:         req.Name,
		PINHash:      hash,
		IsFirstLogin: true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.students.Create(ctx, student); err != nil {
		return nil, storeError(err, "failed to create student")
	}
	s.logger.Info("student added", zap.String("student_id", student.ID), zap.String("class_id", student.ClassID))
	view := student.View()
	return &view, nil
}

// ResetPIN sets a new 4-digit PIN chosen by the teacher.
func (s *RosterService) ResetPIN(ctx context.Context, studentID, pin string) (*models.StudentView, error) {
	if !models.ValidPIN(pin) {
		return nil, appErrors.ErrPINFormat
	}
	hash, err := hashPIN(pin)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash pin")
	}
	updated, err := s.students.Update(ctx, studentID, func(st *models.Student) {
		st.PINHash = hash
		st.IsFirstLogin = false
		st.UpdatedAt = s.now().UTC()
	})
	if err != nil {
		return nil, storeError(err, "student not found")
	}
	s.logger.Info("pin reset", zap.String("student_id", studentID))
	view := updated.View()
	return &view, nil
}

// RequestDelete is the first step of removing a student.
func (s *RosterService) RequestDelete(ctx context.Context, studentID, actorID string) (*dto.ConfirmationTicket, error) {
	if _, err := s.GetStudent(ctx, studentID); err != nil {
		return nil, err
	}
	return s.confirmations.Request(ctx, ActionDeleteStudent, studentID, actorID)
}

// ConfirmDelete removes the student once token matches.
func (s *RosterService) ConfirmDelete(ctx context.Context, studentID, actorID, token string) error {
	if err := s.confirmations.Consume(ctx, ActionDeleteStudent, studentID, actorID, token); err != nil {
		return err
	}
	if err := s.students.Delete(ctx, studentID); err != nil {
		return storeError(err, "student not found")
	}
	s.logger.Info("student deleted", zap.String("student_id", studentID), zap.String("actor_id", actorID))
	return nil
}
