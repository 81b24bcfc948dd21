package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/sciclass-api/internal/models"
	"github.com/noah-isme/sciclass-api/internal/repository"
	appErrors "github.com/noah-isme/sciclass-api/pkg/errors"
)

// pinHashCost is lowered in tests.
var pinHashCost = bcrypt.DefaultCost

func hashPIN(pin string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), pinHashCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

type authStudentRepository interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
	Update(ctx context.Context, id string, fn func(*models.Student)) (*models.Student, error)
}

type loginAttendance interface {
	RecordLogin(ctx context.Context, student models.Student) (*models.Attendance, bool, error)
}

// AuthConfig defines configuration for authentication flows.
type AuthConfig struct {
	AccessTokenSecret string
	AccessTokenExpiry time.Duration
	Issuer            string
	TeacherID         string
	TeacherName       string
	TeacherPasscode   string
}

// AuthService provides PIN and passcode logins.
type AuthService struct {
	students   authStudentRepository
	attendance loginAttendance
	validator  *validator.Validate
	logger     *zap.Logger
	config     AuthConfig
	now        func() time.Time
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(students authStudentRepository, attendance loginAttendance, validate *validator.Validate, logger *zap.Logger, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if config.AccessTokenExpiry <= 0 {
		config.AccessTokenExpiry = 8 * time.Hour
	}
	return &AuthService{students: students, attendance: attendance, validator: validate, logger: logger, config: config, now: time.Now}
}

// StudentLogin checks the PIN. A first login or the default PIN returns
// PINChangeRequired without a token and without recording attendance.
func (s *AuthService) StudentLogin(ctx context.Context, req models.StudentLoginRequest) (*models.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid login payload")
	}

	student, err := s.findStudent(ctx, req.StudentID)
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(student.PINHash), []byte(req.PIN)); err != nil {
		return nil, appErrors.ErrInvalidPIN
	}

	if student.IsFirstLogin || req.PIN == models.DefaultPIN {
		s.logger.Info("pin change required", zap.String("student_id", student.ID))
		return &models.LoginResponse{
			IssuedAt:          s.now().UTC(),
			PINChangeRequired: true,
			User:              student.Info(),
		}, nil
	}

	return s.completeStudentLogin(ctx, *student)
}

// ChangePIN replaces the student's PIN and completes the login.
func (s *AuthService) ChangePIN(ctx context.Context, req models.ChangePINRequest) (*models.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid pin change payload")
	}
	if !models.ValidPIN(req.NewPIN) {
		return nil, appErrors.ErrPINFormat
	}
	if req.NewPIN == models.DefaultPIN {
		return nil, appErrors.Clone(appErrors.ErrPINFormat, "choose a pin other than the initial one")
	}

	student, err := s.findStudent(ctx, req.StudentID)
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(student.PINHash), []byte(req.CurrentPIN)); err != nil {
		return nil, appErrors.ErrInvalidPIN
	}

	hash, err := hashPIN(req.NewPIN)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash pin")
	}
	updated, err := s.students.Update(ctx, student.ID, func(st *models.Student) {
		st.PINHash = hash
		st.IsFirstLogin = false
		st.UpdatedAt = s.now().UTC()
	})
	if err != nil {
		return nil, storeError(err, "student not found")
	}
	s.logger.Info("pin changed", zap.String("student_id", updated.ID))

	return s.completeStudentLogin(ctx, *updated)
}

// TeacherLogin authenticates the single teacher account by passcode.
func (s *AuthService) TeacherLogin(ctx context.Context, req models.TeacherLoginRequest) (*models.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid login payload")
	}
	if s.config.TeacherPasscode == "" || subtle.ConstantTimeCompare([]byte(req.Passcode), []byte(s.config.TeacherPasscode)) != 1 {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid passcode")
	}

	info := models.UserInfo{ID: s.config.TeacherID, Name: s.config.TeacherName, Role: models.RoleTeacher}
	token, issuedAt, err := s.generateAccessToken(info)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create access token")
	}
	s.logger.Info("teacher logged in", zap.String("teacher_id", info.ID))
	return &models.LoginResponse{
		AccessToken: token,
		ExpiresIn:   int64(s.config.AccessTokenExpiry.Seconds()),
		IssuedAt:    issuedAt,
		User:        info,
	}, nil
}

func (s *AuthService) findStudent(ctx context.Context, id string) (*models.Student, error) {
	student, err := s.students.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "unknown student")
		}
		return nil, storeError(err, "failed to fetch student")
	}
	return student, nil
}

func (s *AuthService) completeStudentLogin(ctx context.Context, student models.Student) (*models.LoginResponse, error) {
	info := student.Info()
	token, issuedAt, err := s.generateAccessToken(info)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create access token")
	}

	resp := &models.LoginResponse{
		AccessToken: token,
		ExpiresIn:   int64(s.config.AccessTokenExpiry.Seconds()),
		IssuedAt:    issuedAt,
		User:        info,
	}

	if s.attendance != nil {
		attendance, created, err := s.attendance.RecordLogin(ctx, student)
		if err != nil {
			return nil, err
		}
		resp.Attendance = attendance
		if created {
			s.logger.Info("attendance recorded", zap.String("student_id", student.ID), zap.String("session_id", attendance.SessionID))
		}
	}

	return resp, nil
}

func (s *AuthService) generateAccessToken(user models.UserInfo) (string, time.Time, error) {
	issuedAt := s.now().UTC()
	expiresAt := issuedAt.Add(s.config.AccessTokenExpiry)
	claims := &models.JWTClaims{
		UserID:  user.ID,
		Role:    user.Role,
		Name:    user.Name,
		ClassID: user.ClassID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.AccessTokenSecret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, issuedAt, nil
}

// ValidateToken parses and validates an access token returning the claims.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.AccessTokenSecret), nil
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}

	return claims, nil
}
