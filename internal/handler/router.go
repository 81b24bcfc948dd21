package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/sciclass-api/internal/middleware"
	"github.com/noah-isme/sciclass-api/internal/models"
)

// Handlers groups every HTTP handler mounted by RegisterRoutes.
type Handlers struct {
	Auth     *AuthHandler
	Student  *StudentHandler
	Board    *BoardHandler
	Quiz     *QuizHandler
	Store    *StoreHandler
	Class    *ClassHandler
	Session  *SessionHandler
	Points   *PointsHandler
	Metrics  *MetricsHandler
	Tokens   middleware.TokenValidator
	Observer middleware.RequestObserver
	Logger   *zap.Logger
	// PollInterval is advertised to clients on every API response.
	PollInterval time.Duration
}

// RegisterRoutes mounts the API under prefix on r.
func RegisterRoutes(r gin.IRouter, prefix string, h Handlers) {
	logger := h.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if h.Metrics != nil {
		r.GET("/health", h.Metrics.Health)
		r.GET("/ready", h.Metrics.Ready)
		r.GET("/metrics", h.Metrics.Prometheus)
	}

	api := r.Group(prefix)
	if h.Observer != nil {
		api.Use(middleware.Metrics(h.Observer))
	}
	api.Use(middleware.WithResponseMeta(h.PollInterval))

	auth := api.Group("/auth")
	auth.POST("/student/login", h.Auth.StudentLogin)
	auth.POST("/student/pin", h.Auth.ChangePIN)
	auth.POST("/teacher/login", h.Auth.TeacherLogin)

	secured := api.Group("")
	secured.Use(middleware.JWT(h.Tokens))

	student := middleware.RequireRoles(models.RoleStudent)
	teacher := middleware.RequireRoles(models.RoleTeacher)
	anyone := middleware.RequireRoles(models.RoleStudent, models.RoleTeacher)

	me := secured.Group("/me", student)
	me.GET("/snapshot", h.Student.Snapshot)
	me.GET("/pre-routine", h.Student.PreRoutine)
	me.POST("/pre-routine", h.Student.CompletePreRoutine)
	me.GET("/points", h.Student.Points)
	me.GET("/points/history", h.Student.PointHistory)

	board := secured.Group("/board")
	board.GET("", anyone, h.Board.Feed)
	board.POST("/questions", student, h.Board.Ask)
	board.POST("/questions/:id/answers", student, h.Board.Answer)
	board.POST("/questions/:id/best", student, h.Board.SelectBest)
	board.POST("/:kind/:id/recommend", student, h.Board.Recommend)
	board.PATCH("/:kind/:id/moderation", teacher, middleware.Audit(logger, "board.moderate"), h.Board.Moderate)

	quiz := secured.Group("/quiz", student)
	quiz.GET("", h.Quiz.List)
	quiz.POST("/:id/attempts", h.Quiz.Attempt)

	store := secured.Group("/store", student)
	store.GET("/items", h.Store.Items)
	store.POST("/purchases", h.Store.Purchase)

	claims := secured.Group("/claims")
	claims.GET("", anyone, h.Store.ListClaims)
	claims.POST("", student, h.Store.CreateClaim)
	claims.PATCH("/:id/status", teacher, middleware.Audit(logger, "claim.transition"), h.Store.TransitionClaim)

	classes := secured.Group("/classes", teacher)
	classes.GET("", h.Class.ListClasses)
	classes.GET("/:id/snapshot", h.Class.Snapshot)
	classes.GET("/:id/students", h.Class.ListStudents)
	classes.POST("/:id/students", middleware.Audit(logger, "student.add"), h.Class.AddStudent)
	classes.GET("/:id/sessions", h.Session.List)
	classes.POST("/:id/sessions", middleware.Audit(logger, "session.start"), h.Session.Start)
	classes.GET("/:id/sessions/active", h.Session.Active)

	students := secured.Group("/students")
	students.GET("/:id/points", middleware.RBAC(string(models.RoleTeacher), middleware.AllowSelf), h.Student.StudentPoints)
	students.PUT("/:id/pin", teacher, middleware.Audit(logger, "student.pin_reset"), h.Class.ResetPIN)
	students.DELETE("/:id", teacher, h.Class.RequestDelete)
	students.POST("/:id/delete/confirm", teacher, middleware.Audit(logger, "student.delete"), h.Class.ConfirmDelete)

	sessions := secured.Group("/sessions", teacher)
	sessions.POST("/:id/end", h.Session.RequestEnd)
	sessions.POST("/:id/end/confirm", middleware.Audit(logger, "session.end"), h.Session.ConfirmEnd)
	sessions.GET("/:id/attendance", h.Session.Attendance)
	sessions.POST("/:id/warnings", middleware.Audit(logger, "session.warn"), h.Session.Warn)
	sessions.PUT("/:id/missions/:studentId", middleware.Audit(logger, "session.mission"), h.Session.Mission)
	sessions.GET("/:id/report", h.Session.Report)

	secured.POST("/points/earn", teacher, middleware.Audit(logger, "points.earn"), h.Points.Earn)
	if h.Metrics != nil {
		secured.GET("/metrics/summary", teacher, h.Metrics.Summary)
	}
}
