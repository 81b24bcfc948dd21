package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sciclass-api/internal/dto"
	"github.com/noah-isme/sciclass-api/internal/models"
	"github.com/noah-isme/sciclass-api/internal/service"
	"github.com/noah-isme/sciclass-api/pkg/response"
)

type sessionService interface {
	Start(ctx context.Context, req service.StartSessionRequest) (*models.Session, error)
	State(ctx context.Context, classID string) (dto.SessionState, error)
	List(ctx context.Context, classID string) ([]models.Session, error)
	RequestEnd(ctx context.Context, sessionID, actorID string) (*dto.ConfirmationTicket, error)
	ConfirmEnd(ctx context.Context, sessionID, actorID, token string) (*models.Session, error)
}

type attendanceLister interface {
	ListBySession(ctx context.Context, sessionID string) ([]models.Attendance, error)
}

type warningService interface {
	Warn(ctx context.Context, sessionID, studentID string) (*service.WarningResult, error)
}

type missionService interface {
	Record(ctx context.Context, sessionID, studentID string, status models.MissionStatus) (*service.MissionResultView, error)
}

type reportService interface {
	SessionReport(ctx context.Context, sessionID, format string) (*service.ReportFile, error)
}

// WarnRequest names the student receiving a warning.
type WarnRequest struct {
	StudentID string `json:"student_id" binding:"required"`
}

// SessionHandler drives the class session lifecycle and in-class teacher actions.
type SessionHandler struct {
	sessions   sessionService
	attendance attendanceLister
	warnings   warningService
	missions   missionService
	reports    reportService
}

// NewSessionHandler constructs a SessionHandler.
func NewSessionHandler(sessions sessionService, attendance attendanceLister, warnings warningService, missions missionService, reports reportService) *SessionHandler {
	return &SessionHandler{sessions: sessions, attendance: attendance, warnings: warnings, missions: missions, reports: reports}
}

// Start godoc
// @Summary Start a session for the class
// @Tags Sessions
// @Accept json
// @Produce json
// @Param id path string true "Class ID"
// @Param payload body service.StartSessionRequest false "Session options"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /classes/{id}/sessions [post]
func (h *SessionHandler) Start(c *gin.Context) {
	var req service.StartSessionRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, &req, "invalid session payload") {
		return
	}
	req.ClassID = c.Param("id")
	session, err := h.sessions.Start(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, session)
}

// Active godoc
// @Summary Active session of the class, if any
// @Tags Sessions
// @Produce json
// @Param id path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /classes/{id}/sessions/active [get]
func (h *SessionHandler) Active(c *gin.Context) {
	state, err := h.sessions.State(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	respondOK(c, state)
}

// List godoc
// @Summary Sessions of the class, newest first
// @Tags Sessions
// @Produce json
// @Param id path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /classes/{id}/sessions [get]
func (h *SessionHandler) List(c *gin.Context) {
	sessions, err := h.sessions.List(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	respondOK(c, sessions)
}

// RequestEnd godoc
// @Summary Ask to end a session; returns a confirmation token
// @Tags Sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 202 {object} response.Envelope
// @Router /sessions/{id}/end [post]
func (h *SessionHandler) RequestEnd(c *gin.Context) {
	ticket, err := h.sessions.RequestEnd(c.Request.Context(), c.Param("id"), actorID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Accepted(c, ticket)
}

// ConfirmEnd godoc
// @Summary Confirm ending a session
// @Tags Sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param payload body dto.ConfirmRequest true "Token"
// @Success 200 {object} response.Envelope
// @Router /sessions/{id}/end/confirm [post]
func (h *SessionHandler) ConfirmEnd(c *gin.Context) {
	var req dto.ConfirmRequest
	if !bindJSON(c, &req, "invalid confirmation payload") {
		return
	}
	session, err := h.sessions.ConfirmEnd(c.Request.Context(), c.Param("id"), actorID(c), req.Token)
	if err != nil {
		response.Error(c, err)
		return
	}
	respondOK(c, session)
}

// Attendance godoc
// @Summary Attendance recorded in a session
// @Tags Sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Router /sessions/{id}/attendance [get]
func (h *SessionHandler) Attendance(c *gin.Context) {
	items, err := h.attendance.ListBySession(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	respondOK(c, items)
}

// Warn godoc
// @Summary Give a student one warning
// @Tags Sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param payload body WarnRequest true "Student"
// @Success 200 {object} response.Envelope
// @Router /sessions/{id}/warnings [post]
func (h *SessionHandler) Warn(c *gin.Context) {
	var req WarnRequest
	if !bindJSON(c, &req, "invalid warning payload") {
		return
	}
	result, err := h.warnings.Warn(c.Request.Context(), c.Param("id"), req.StudentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	respondOK(c, result)
}

// Mission godoc
// @Summary Record a student's mission verdict
// @Tags Sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param studentId path string true "Student ID"
// @Param payload body service.MissionRequest true "Verdict"
// @Success 200 {object} response.Envelope
// @Router /sessions/{id}/missions/{studentId} [put]
func (h *SessionHandler) Mission(c *gin.Context) {
	var req service.MissionRequest
	if !bindJSON(c, &req, "invalid mission payload") {
		return
	}
	result, err := h.missions.Record(c.Request.Context(), c.Param("id"), c.Param("studentId"), req.Status)
	if err != nil {
		response.Error(c, err)
		return
	}
	respondOK(c, result)
}

// Report godoc
// @Summary Download the participation report of a session
// @Tags Sessions
// @Produce text/csv
// @Produce application/pdf
// @Param id path string true "Session ID"
// @Param format query string false "csv or pdf"
// @Success 200 {file} file
// @Router /sessions/{id}/report [get]
func (h *SessionHandler) Report(c *gin.Context) {
	file, err := h.reports.SessionReport(c.Request.Context(), c.Param("id"), c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Binary(c, file.ContentType, file.Filename, file.Data)
}
