package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sciclass-api/internal/dto"
	"github.com/noah-isme/sciclass-api/internal/middleware"
	"github.com/noah-isme/sciclass-api/internal/models"
	"github.com/noah-isme/sciclass-api/internal/service"
	"github.com/noah-isme/sciclass-api/pkg/response"
)

type snapshotService interface {
	StudentSnapshot(ctx context.Context, student models.Student, lang string) (*dto.StudentSnapshot, error)
	ClassSnapshot(ctx context.Context, classID string) (*dto.ClassSnapshot, error)
}

type preRoutineService interface {
	Status(ctx context.Context, student models.Student) (dto.PreRoutineStatus, error)
	Complete(ctx context.Context, student models.Student, req service.CompletePreRoutineRequest) (*models.PreRoutine, bool, error)
}

type pointsReader interface {
	Summary(ctx context.Context, studentID string) (models.PointSummary, error)
	History(ctx context.Context, studentID string, page, size int) ([]models.PointRecord, *models.Pagination, error)
}

// StudentHandler serves the authenticated student's own views.
type StudentHandler struct {
	students    studentLoader
	snapshots   snapshotService
	preRoutines preRoutineService
	points      pointsReader
}

// NewStudentHandler constructs a StudentHandler.
func NewStudentHandler(students studentLoader, snapshots snapshotService, preRoutines preRoutineService, points pointsReader) *StudentHandler {
	return &StudentHandler{students: students, snapshots: snapshots, preRoutines: preRoutines, points: points}
}

// Snapshot godoc
// @Summary Poll everything the student app renders
// @Tags Student
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /me/snapshot [get]
func (h *StudentHandler) Snapshot(c *gin.Context) {
	student, found := currentStudent(c, h.students)
	if !found {
		return
	}
	snapshot, err := h.snapshots.StudentSnapshot(c.Request.Context(), *student, c.GetHeader("Accept-Language"))
	if err != nil {
		response.Error(c, err)
		return
	}
	respondOK(c, snapshot)
}

// PreRoutine godoc
// @Summary Pre-class checklist state for the active session
// @Tags Student
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /me/pre-routine [get]
func (h *StudentHandler) PreRoutine(c *gin.Context) {
	student, found := currentStudent(c, h.students)
	if !found {
		return
	}
	status, err := h.preRoutines.Status(c.Request.Context(), *student)
	if err != nil {
		response.Error(c, err)
		return
	}
	respondOK(c, status)
}

// CompletePreRoutine godoc
// @Summary Submit the pre-class checklist
// @Tags Student
// @Accept json
// @Produce json
// @Param payload body service.CompletePreRoutineRequest true "Checklist"
// @Success 201 {object} response.Envelope
// @Success 200 {object} response.Envelope "already completed"
// @Router /me/pre-routine [post]
func (h *StudentHandler) CompletePreRoutine(c *gin.Context) {
	student, found := currentStudent(c, h.students)
	if !found {
		return
	}
	var req service.CompletePreRoutineRequest
	if !bindJSON(c, &req, "invalid checklist payload") {
		return
	}
	routine, created, err := h.preRoutines.Complete(c.Request.Context(), *student, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	if created {
		response.Created(c, routine)
		return
	}
	respondOK(c, routine)
}

// Points godoc
// @Summary HOLD and CONFIRMED balances of the student
// @Tags Student
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /me/points [get]
func (h *StudentHandler) Points(c *gin.Context) {
	claims := claimsFromContext(c)
	summary, err := h.points.Summary(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	respondOK(c, summary)
}

// PointHistory godoc
// @Summary Ledger entries of the student, newest first
// @Tags Student
// @Produce json
// @Param page query int false "Page"
// @Param size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /me/points/history [get]
func (h *StudentHandler) PointHistory(c *gin.Context) {
	claims := claimsFromContext(c)
	h.history(c, claims.UserID)
}

// StudentPoints godoc
// @Summary Ledger of any student (teacher) or of oneself
// @Tags Points
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/points [get]
func (h *StudentHandler) StudentPoints(c *gin.Context) {
	h.history(c, c.Param("id"))
}

func (h *StudentHandler) history(c *gin.Context, studentID string) {
	ctx := c.Request.Context()
	summary, err := h.points.Summary(ctx, studentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	items, pagination, err := h.points.History(ctx, studentID, queryInt(c, "page", 1), queryInt(c, "size", 20))
	if err != nil {
		response.Error(c, err)
		return
	}
	meta := middleware.ExtractMeta(c)
	if meta == nil {
		meta = map[string]interface{}{}
	}
	meta["hold"] = summary.Hold
	meta["confirmed"] = summary.Confirmed
	response.JSON(c, http.StatusOK, items, pagination, meta)
}
