package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/sciclass-api/internal/models"
	"github.com/noah-isme/sciclass-api/internal/repository"
	appErrors "github.com/noah-isme/sciclass-api/pkg/errors"
	"github.com/noah-isme/sciclass-api/pkg/i18n"
	"github.com/noah-isme/sciclass-api/pkg/jobs"
)

type harness struct {
	repos         *repository.Repositories
	cacheRepo     *repository.MemoryCacheRepository
	confirmations *ConfirmationService
	roster        *RosterService
	sessions      *SessionService
	ledger        *LedgerService
	warnings      *WarningService
	attendance    *AttendanceService
	preRoutines   *PreRoutineService
	auth          *AuthService
	board         *BoardService
	quiz          *QuizService
	missions      *MissionService
	store         *StoreService
	snapshots     *SnapshotService
	reports       *ReportService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	pinHashCost = bcrypt.MinCost

	ctx := context.Background()
	repos := repository.NewRepositories(repository.NewMemoryBlobStore(), repository.CollectionOptions{})
	cacheRepo := repository.NewMemoryCacheRepository()
	h := &harness{repos: repos, cacheRepo: cacheRepo}

	h.confirmations = NewConfirmationService(cacheRepo, "test", time.Minute, nil)
	h.roster = NewRosterService(repos.Students, repos.Classes, h.confirmations, nil, nil)
	require.NoError(t, h.roster.Seed(ctx))

	h.sessions = NewSessionService(repos.Sessions, repos.Classes, h.confirmations, nil, nil, nil)
	h.ledger = NewLedgerService(repos.Points, nil, nil, nil)
	h.warnings = NewWarningService(repos.Warnings, h.sessions, repos.Students, nil)
	h.attendance = NewAttendanceService(repos.Attendances, h.sessions, nil)
	h.preRoutines = NewPreRoutineService(repos.PreRoutines, h.sessions, nil)
	h.auth = NewAuthService(repos.Students, h.attendance, nil, nil, AuthConfig{
		AccessTokenSecret: "test-secret",
		AccessTokenExpiry: time.Hour,
		Issuer:            "sciclass-test",
		TeacherID:         "T-1",
		TeacherName:       "선생님",
		TeacherPasscode:   "1234",
	})

	cache := NewCacheService(cacheRepo, nil, "test", time.Minute, nil, true)
	h.board = NewBoardService(repos.Questions, repos.Answers, h.sessions, h.warnings, h.ledger, cache, time.Minute,
		BoardRewards{QuestionCreate: 1, AnswerCreate: 1, BestAnswer: 1}, nil, nil)
	h.quiz = NewQuizService(repos.QuizResponses, h.sessions, h.warnings, h.ledger, models.QuizRewards{FirstTry: 1, SecondTry: 1}, nil, nil)
	h.missions = NewMissionService(repos.MissionResults, h.sessions, repos.Students,
		jobs.Inline{Handler: ConversionHandler(h.ledger, models.ConversionAll, nil)}, nil)
	h.store = NewStoreService(repos.Claims, h.ledger, nil, nil)

	translator, err := i18n.New("ko")
	require.NoError(t, err)
	h.snapshots = NewSnapshotService(SnapshotSources{
		Sessions:    h.sessions,
		PreRoutines: h.preRoutines,
		Warnings:    h.warnings,
		Ledger:      h.ledger,
		Quiz:        h.quiz,
		Board:       h.board,
		Roster:      h.roster,
		Attendance:  h.attendance,
		Missions:    h.missions,
	}, translator, nil)
	h.reports = NewReportService(h.sessions, h.snapshots, nil)
	return h
}

func (h *harness) student(t *testing.T, number int) models.Student {
	t.Helper()
	st, err := h.repos.Students.FindByID(context.Background(), models.SeedStudentID("3-1", number))
	require.NoError(t, err)
	return *st
}

func (h *harness) start(t *testing.T, classID string) *models.Session {
	t.Helper()
	session, err := h.sessions.Start(context.Background(), StartSessionRequest{ClassID: classID})
	require.NoError(t, err)
	return session
}

func (h *harness) end(t *testing.T, sessionID string) {
	t.Helper()
	ctx := context.Background()
	ticket, err := h.sessions.RequestEnd(ctx, sessionID, "T-1")
	require.NoError(t, err)
	_, err = h.sessions.ConfirmEnd(ctx, sessionID, "T-1", ticket.Token)
	require.NoError(t, err)
}

func (h *harness) summary(t *testing.T, studentID string) models.PointSummary {
	t.Helper()
	summary, err := h.ledger.Summary(context.Background(), studentID)
	require.NoError(t, err)
	return summary
}

func requireCode(t *testing.T, err error, want *appErrors.Error) {
	t.Helper()
	require.Error(t, err)
	got := appErrors.FromError(err)
	require.Equal(t, want.Code, got.Code, err.Error())
}
