package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sciclass-api/internal/dto"
	"github.com/noah-isme/sciclass-api/internal/models"
	"github.com/noah-isme/sciclass-api/internal/service"
	"github.com/noah-isme/sciclass-api/pkg/response"
)

type rosterService interface {
	ListClasses(ctx context.Context) ([]models.Class, error)
	ListStudents(ctx context.Context, classID string) ([]models.StudentView, error)
	AddStudent(ctx context.Context, req service.AddStudentRequest) (*models.StudentView, error)
	ResetPIN(ctx context.Context, studentID, pin string) (*models.StudentView, error)
	RequestDelete(ctx context.Context, studentID, actorID string) (*dto.ConfirmationTicket, error)
	ConfirmDelete(ctx context.Context, studentID, actorID, token string) error
}

// ResetPINRequest carries the new PIN chosen by the teacher.
type ResetPINRequest struct {
	PIN string `json:"pin"`
}

// ClassHandler exposes roster management and the class dashboard.
type ClassHandler struct {
	roster    rosterService
	snapshots snapshotService
}

// NewClassHandler constructs a ClassHandler.
func NewClassHandler(roster rosterService, snapshots snapshotService) *ClassHandler {
	return &ClassHandler{roster: roster, snapshots: snapshots}
}

// ListClasses godoc
// @Summary List classes
// @Tags Classes
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /classes [get]
func (h *ClassHandler) ListClasses(c *gin.Context) {
	classes, err := h.roster.ListClasses(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	respondOK(c, classes)
}

// Snapshot godoc
// @Summary Teacher dashboard of a class
// @Tags Classes
// @Produce json
// @Param id path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /classes/{id}/snapshot [get]
func (h *ClassHandler) Snapshot(c *gin.Context) {
	snapshot, err := h.snapshots.ClassSnapshot(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	respondOK(c, snapshot)
}

// ListStudents godoc
// @Summary Roster of a class ordered by number
// @Tags Students
// @Produce json
// @Param id path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /classes/{id}/students [get]
func (h *ClassHandler) ListStudents(c *gin.Context) {
	students, err := h.roster.ListStudents(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	respondOK(c, students)
}

// AddStudent godoc
// @Summary Add a student with the initial PIN
// @Tags Students
// @Accept json
// @Produce json
// @Param id path string true "Class ID"
// @Param payload body service.AddStudentRequest true "Student"
// @Success 201 {object} response.Envelope
// @Router /classes/{id}/students [post]
func (h *ClassHandler) AddStudent(c *gin.Context) {
	var req service.AddStudentRequest
	if !bindJSON(c, &req, "invalid student payload") {
		return
	}
	req.ClassID = c.Param("id")
	student, err := h.roster.AddStudent(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, student)
}

// ResetPIN godoc
// @Summary Set a student's PIN
// @Tags Students
// @Accept json
// @Produce json
// @Param id path string true "Student ID"
// @Param payload body ResetPINRequest true "PIN"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/pin [put]
func (h *ClassHandler) ResetPIN(c *gin.Context) {
	var req ResetPINRequest
	if !bindJSON(c, &req, "invalid pin payload") {
		return
	}
	student, err := h.roster.ResetPIN(c.Request.Context(), c.Param("id"), req.PIN)
	if err != nil {
		response.Error(c, err)
		return
	}
	respondOK(c, student)
}

// RequestDelete godoc
// @Summary Ask to delete a student; returns a confirmation token
// @Tags Students
// @Produce json
// @Param id path string true "Student ID"
// @Success 202 {object} response.Envelope
// @Router /students/{id} [delete]
func (h *ClassHandler) RequestDelete(c *gin.Context) {
	ticket, err := h.roster.RequestDelete(c.Request.Context(), c.Param("id"), actorID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Accepted(c, ticket)
}

// ConfirmDelete godoc
// @Summary Confirm a pending student deletion
// @Tags Students
// @Accept json
// @Param id path string true "Student ID"
// @Param payload body dto.ConfirmRequest true "Token"
// @Success 204
// @Router /students/{id}/delete/confirm [post]
func (h *ClassHandler) ConfirmDelete(c *gin.Context) {
	var req dto.ConfirmRequest
	if !bindJSON(c, &req, "invalid confirmation payload") {
		return
	}
	if err := h.roster.ConfirmDelete(c.Request.Context(), c.Param("id"), actorID(c), req.Token); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
