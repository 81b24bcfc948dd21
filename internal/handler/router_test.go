package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sciclass-api/internal/models"
	"github.com/noah-isme/sciclass-api/internal/repository"
	"github.com/noah-isme/sciclass-api/internal/service"
	"github.com/noah-isme/sciclass-api/pkg/i18n"
	"github.com/noah-isme/sciclass-api/pkg/jobs"
)

const apiPrefix = "/api/v1"

type envelope struct {
	Data  json.RawMessage        `json:"data"`
	Error *struct{ Code string } `json:"error"`
	Meta  map[string]interface{} `json:"meta"`
}

type apiClient struct {
	t      *testing.T
	router *gin.Engine
}

func (a apiClient) do(method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	a.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, apiPrefix+path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(a.t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}

func buildRouter(t *testing.T) apiClient {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx := context.Background()

	repos := repository.NewRepositories(repository.NewMemoryBlobStore(), repository.CollectionOptions{})
	cacheRepo := repository.NewMemoryCacheRepository()
	metrics := service.NewMetricsService()
	confirmations := service.NewConfirmationService(cacheRepo, "test", time.Minute, nil)

	roster := service.NewRosterService(repos.Students, repos.Classes, confirmations, nil, nil)
	require.NoError(t, roster.Seed(ctx))
	sessions := service.NewSessionService(repos.Sessions, repos.Classes, confirmations, nil, nil, metrics)
	ledger := service.NewLedgerService(repos.Points, nil, nil, metrics)
	warnings := service.NewWarningService(repos.Warnings, sessions, repos.Students, nil)
	attendance := service.NewAttendanceService(repos.Attendances, sessions, nil)
	preRoutines := service.NewPreRoutineService(repos.PreRoutines, sessions, nil)
	auth := service.NewAuthService(repos.Students, attendance, nil, nil, service.AuthConfig{
		AccessTokenSecret: "router-secret",
		AccessTokenExpiry: time.Hour,
		Issuer:            "sciclass-test",
		TeacherID:         "T-1",
		TeacherName:       "선생님",
		TeacherPasscode:   "1234",
	})
	cache := service.NewCacheService(cacheRepo, metrics, "test", time.Minute, nil, true)
	board := service.NewBoardService(repos.Questions, repos.Answers, sessions, warnings, ledger, cache, time.Minute,
		service.BoardRewards{QuestionCreate: 1, AnswerCreate: 1, BestAnswer: 1}, nil, nil)
	quiz := service.NewQuizService(repos.QuizResponses, sessions, warnings, ledger, models.QuizRewards{FirstTry: 2, SecondTry: 1}, nil, metrics)
	missions := service.NewMissionService(repos.MissionResults, sessions, repos.Students,
		jobs.Inline{Handler: service.ConversionHandler(ledger, models.ConversionAll, nil)}, nil)
	store := service.NewStoreService(repos.Claims, ledger, nil, nil)
	translator, err := i18n.New("ko")
	require.NoError(t, err)
	snapshots := service.NewSnapshotService(service.SnapshotSources{
		Sessions:    sessions,
		PreRoutines: preRoutines,
		Warnings:    warnings,
		Ledger:      ledger,
		Quiz:        quiz,
		Board:       board,
		Roster:      roster,
		Attendance:  attendance,
		Missions:    missions,
	}, translator, nil)
	reports := service.NewReportService(sessions, snapshots, nil)

	router := gin.New()
	RegisterRoutes(router, apiPrefix, Handlers{
		Auth:         NewAuthHandler(auth),
		Student:      NewStudentHandler(roster, snapshots, preRoutines, ledger),
		Board:        NewBoardHandler(roster, board),
		Quiz:         NewQuizHandler(roster, quiz),
		Store:        NewStoreHandler(store),
		Class:        NewClassHandler(roster, snapshots),
		Session:      NewSessionHandler(sessions, attendance, warnings, missions, reports),
		Points:       NewPointsHandler(ledger),
		Metrics:      NewMetricsHandler(metrics, nil),
		Tokens:       auth,
		Observer:     metrics,
		PollInterval: 5 * time.Second,
	})
	return apiClient{t: t, router: router}
}

func (a apiClient) teacherToken() string {
	a.t.Helper()
	rec, env := a.do(http.MethodPost, "/auth/teacher/login", "", map[string]string{"passcode": "1234"})
	require.Equal(a.t, http.StatusOK, rec.Code, rec.Body.String())
	return decode[models.LoginResponse](a.t, env).AccessToken
}

// studentToken walks the first-login flow and returns a usable token.
func (a apiClient) studentToken(number int) string {
	a.t.Helper()
	id := models.SeedStudentID("3-1", number)
	rec, env := a.do(http.MethodPost, "/auth/student/login", "", map[string]string{"student_id": id, "pin": models.DefaultPIN})
	require.Equal(a.t, http.StatusOK, rec.Code, rec.Body.String())
	require.True(a.t, decode[models.LoginResponse](a.t, env).PINChangeRequired)

	rec, env = a.do(http.MethodPost, "/auth/student/pin", "", map[string]string{
		"student_id":  id,
		"current_pin": models.DefaultPIN,
		"new_pin":     "1357",
	})
	require.Equal(a.t, http.StatusOK, rec.Code, rec.Body.String())
	token := decode[models.LoginResponse](a.t, env).AccessToken
	require.NotEmpty(a.t, token)
	return token
}

func TestRoutesRequireAuthentication(t *testing.T) {
	api := buildRouter(t)

	rec, _ := api.do(http.MethodGet, "/me/snapshot", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = api.do(http.MethodGet, "/classes", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRoutesEnforceRoles(t *testing.T) {
	api := buildRouter(t)
	teacher := api.teacherToken()
	alice := api.studentToken(1)

	rec, _ := api.do(http.MethodGet, "/classes", alice, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = api.do(http.MethodGet, "/me/snapshot", teacher, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	aliceID := models.SeedStudentID("3-1", 1)
	bobID := models.SeedStudentID("3-1", 2)
	rec, _ = api.do(http.MethodGet, "/students/"+aliceID+"/points", alice, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec, _ = api.do(http.MethodGet, "/students/"+bobID+"/points", alice, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec, _ = api.do(http.MethodGet, "/students/"+bobID+"/points", teacher, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestClassroomFlow(t *testing.T) {
	api := buildRouter(t)
	teacher := api.teacherToken()

	rec, env := api.do(http.MethodPost, "/classes/3-1/sessions", teacher, map[string]interface{}{"period": 2})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	session := decode[models.Session](t, env)
	assert.Equal(t, models.SessionActive, session.Status)

	rec, _ = api.do(http.MethodPost, "/classes/3-1/sessions", teacher, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	alice, bob := api.studentToken(1), api.studentToken(2)
	aliceID, bobID := models.SeedStudentID("3-1", 1), models.SeedStudentID("3-1", 2)

	rec, env = api.do(http.MethodGet, "/me/snapshot", alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "5000", rec.Header().Get("X-Poll-Interval"))
	assert.EqualValues(t, 5000, env.Meta["poll_interval_ms"])

	rec, _ = api.do(http.MethodPost, "/me/pre-routine", alice, map[string]bool{"has_materials": true, "is_ready": true})
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec, env = api.do(http.MethodPost, "/board/questions", alice, map[string]string{"text": "자석은 왜 붙나요?"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	asked := decode[service.PostResult](t, env)
	require.NotNil(t, asked.Point)

	rec, env = api.do(http.MethodPost, "/board/questions/"+asked.Question.ID+"/answers", bob, map[string]string{"text": "자기장 때문이에요"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	answered := decode[service.PostResult](t, env)

	rec, env = api.do(http.MethodPost, "/board/questions/"+asked.Question.ID+"/best", alice, map[string]string{"answer_id": answered.Answer.ID})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, decode[service.SelectBestResult](t, env).Applied)

	rec, env = api.do(http.MethodPost, "/board/questions/"+asked.Question.ID+"/recommend", bob, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, decode[service.RecommendResult](t, env).Recommended)

	rec, env = api.do(http.MethodPost, "/quiz/q1/attempts", alice, map[string]string{"answer": "이산화탄소"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	attempt := decode[service.AttemptResult](t, env)
	assert.True(t, attempt.Accepted)
	require.NotNil(t, attempt.Point)
	assert.Equal(t, 2, attempt.Point.Points)

	rec, _ = api.do(http.MethodPost, "/sessions/"+session.ID+"/warnings", teacher, map[string]string{"student_id": bobID})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, env = api.do(http.MethodPut, "/sessions/"+session.ID+"/missions/"+aliceID, teacher, map[string]string{"status": "PASS"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, decode[service.MissionResultView](t, env).ConversionQueued)

	rec, env = api.do(http.MethodGet, "/me/points", alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	summary := decode[models.PointSummary](t, env)
	assert.Equal(t, 0, summary.Hold)
	assert.Equal(t, 3, summary.Confirmed)

	rec, env = api.do(http.MethodGet, "/classes/3-1/snapshot", teacher, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(env.Data), `"present":2`)

	rec, _ = api.do(http.MethodGet, "/sessions/"+session.ID+"/report?format=csv", teacher, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "session-"+session.ID+".csv")
	assert.Contains(t, rec.Body.String(), "points_earned")

	rec, env = api.do(http.MethodPost, "/sessions/"+session.ID+"/end", teacher, nil)
	require.Equal(t, http.StatusAccepted, rec.Code)
	ticket := decode[map[string]interface{}](t, env)
	rec, _ = api.do(http.MethodPost, "/sessions/"+session.ID+"/end/confirm", teacher, map[string]interface{}{"token": ticket["token"]})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec, _ = api.do(http.MethodPost, "/board/questions", alice, map[string]string{"text": "끝난 뒤 질문"})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestStoreAndClaimsRoutes(t *testing.T) {
	api := buildRouter(t)
	teacher := api.teacherToken()
	alice := api.studentToken(1)
	aliceID := models.SeedStudentID("3-1", 1)

	rec, _ := api.do(http.MethodPost, "/store/purchases", alice, map[string]string{"item_id": "item-2"})
	assert.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())

	rec, _ = api.do(http.MethodPost, "/points/earn", teacher, map[string]interface{}{
		"student_id": aliceID,
		"bucket":     "CONFIRMED",
		"points":     2,
		"reason":     "발표",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec, env := api.do(http.MethodPost, "/store/purchases", alice, map[string]string{"item_id": "item-1"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "item-1", decode[service.PurchaseResult](t, env).Item.ID)

	rec, env = api.do(http.MethodPost, "/claims", alice, map[string]interface{}{"title": "돋보기", "price_krw": 3000, "submit": true})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	claim := decode[models.ClaimRequest](t, env)
	assert.Equal(t, models.ClaimSubmitted, claim.Status)

	rec, env = api.do(http.MethodGet, "/claims", teacher, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.ClaimRequest](t, env), 1)

	rec, _ = api.do(http.MethodPatch, "/claims/"+claim.ID+"/status", alice, map[string]string{"status": "APPROVED"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, env = api.do(http.MethodPatch, "/claims/"+claim.ID+"/status", teacher, map[string]string{"status": "APPROVED"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, models.ClaimApproved, decode[models.ClaimRequest](t, env).Status)
}

func TestStudentDeletionNeedsConfirmation(t *testing.T) {
	api := buildRouter(t)
	teacher := api.teacherToken()
	bobID := models.SeedStudentID("3-1", 2)

	rec, _ := api.do(http.MethodPost, "/students/"+bobID+"/delete/confirm", teacher, map[string]string{"token": "forged"})
	assert.GreaterOrEqual(t, rec.Code, http.StatusBadRequest)

	rec, env := api.do(http.MethodDelete, "/students/"+bobID, teacher, nil)
	require.Equal(t, http.StatusAccepted, rec.Code)
	ticket := decode[map[string]interface{}](t, env)

	rec, _ = api.do(http.MethodPost, "/students/"+bobID+"/delete/confirm", teacher, map[string]interface{}{"token": ticket["token"]})
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec, env = api.do(http.MethodGet, "/classes/3-1/students", teacher, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	for _, st := range decode[[]models.StudentView](t, env) {
		assert.NotEqual(t, bobID, st.ID)
	}
}

func TestHealthAndMetricsEndpoints(t *testing.T) {
	api := buildRouter(t)

	for _, path := range []string{"/health", "/ready", "/metrics"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		api.router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}
