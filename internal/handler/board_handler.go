package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sciclass-api/internal/dto"
	"github.com/noah-isme/sciclass-api/internal/models"
	"github.com/noah-isme/sciclass-api/internal/service"
	"github.com/noah-isme/sciclass-api/pkg/response"
)

type boardService interface {
	Ask(ctx context.Context, student models.Student, text string) (*service.PostResult, error)
	Answer(ctx context.Context, student models.Student, questionID, text string) (*service.PostResult, error)
	SelectBest(ctx context.Context, questionID, answerID, requesterID string) (*service.SelectBestResult, error)
	Moderate(ctx context.Context, kind, id string, req dto.ModerationRequest) (interface{}, error)
	Recommend(ctx context.Context, kind, id string, student models.Student) (*service.RecommendResult, error)
	Feed(ctx context.Context, classID string) (*dto.BoardFeed, error)
	ModerationFeed(ctx context.Context, grade string) (*dto.BoardFeed, error)
}

// BoardHandler exposes the grade-scoped Q&A board.
type BoardHandler struct {
	students studentLoader
	service  boardService
}

// NewBoardHandler constructs a BoardHandler.
func NewBoardHandler(students studentLoader, service boardService) *BoardHandler {
	return &BoardHandler{students: students, service: service}
}

// Feed godoc
// @Summary Board threads visible to the student's grade
// @Tags Board
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /board [get]
func (h *BoardHandler) Feed(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims != nil && claims.Role == models.RoleTeacher {
		feed, err := h.service.ModerationFeed(c.Request.Context(), c.Query("grade"))
		if err != nil {
			response.Error(c, err)
			return
		}
		respondOK(c, feed)
		return
	}
	student, found := currentStudent(c, h.students)
	if !found {
		return
	}
	feed, err := h.service.Feed(c.Request.Context(), student.ClassID)
	if err != nil {
		response.Error(c, err)
		return
	}
	respondOK(c, feed)
}

// Ask godoc
// @Summary Post a question on the active session
// @Tags Board
// @Accept json
// @Produce json
// @Param payload body dto.TextRequest true "Question"
// @Success 201 {object} response.Envelope
// @Router /board/questions [post]
func (h *BoardHandler) Ask(c *gin.Context) {
	student, found := currentStudent(c, h.students)
	if !found {
		return
	}
	var req dto.TextRequest
	if !bindJSON(c, &req, "invalid question payload") {
		return
	}
	result, err := h.service.Ask(c.Request.Context(), *student, req.Text)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// Answer godoc
// @Summary Answer a question
// @Tags Board
// @Accept json
// @Produce json
// @Param id path string true "Question ID"
// @Param payload body dto.TextRequest true "Answer"
// @Success 201 {object} response.Envelope
// @Router /board/questions/{id}/answers [post]
func (h *BoardHandler) Answer(c *gin.Context) {
	student, found := currentStudent(c, h.students)
	if !found {
		return
	}
	var req dto.TextRequest
	if !bindJSON(c, &req, "invalid answer payload") {
		return
	}
	result, err := h.service.Answer(c.Request.Context(), *student, c.Param("id"), req.Text)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// SelectBest godoc
// @Summary Choose the best answer of one's own question
// @Tags Board
// @Accept json
// @Produce json
// @Param id path string true "Question ID"
// @Param payload body dto.SelectBestRequest true "Answer"
// @Success 200 {object} response.Envelope
// @Router /board/questions/{id}/best [post]
func (h *BoardHandler) SelectBest(c *gin.Context) {
	var req dto.SelectBestRequest
	if !bindJSON(c, &req, "invalid selection payload") {
		return
	}
	result, err := h.service.SelectBest(c.Request.Context(), c.Param("id"), req.AnswerID, actorID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	respondOK(c, result)
}

// Recommend godoc
// @Summary Toggle a recommendation on a question or answer
// @Tags Board
// @Produce json
// @Param kind path string true "questions or answers"
// @Param id path string true "Entry ID"
// @Success 200 {object} response.Envelope
// @Router /board/{kind}/{id}/recommend [post]
func (h *BoardHandler) Recommend(c *gin.Context) {
	student, found := currentStudent(c, h.students)
	if !found {
		return
	}
	result, err := h.service.Recommend(c.Request.Context(), c.Param("kind"), c.Param("id"), *student)
	if err != nil {
		response.Error(c, err)
		return
	}
	respondOK(c, result)
}

// Moderate godoc
// @Summary Pin or hide a board entry
// @Tags Board
// @Accept json
// @Produce json
// @Param kind path string true "questions or answers"
// @Param id path string true "Entry ID"
// @Param payload body dto.ModerationRequest true "Flags"
// @Success 200 {object} response.Envelope
// @Router /board/{kind}/{id}/moderation [patch]
func (h *BoardHandler) Moderate(c *gin.Context) {
	var req dto.ModerationRequest
	if !bindJSON(c, &req, "invalid moderation payload") {
		return
	}
	updated, err := h.service.Moderate(c.Request.Context(), c.Param("kind"), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	respondOK(c, updated)
}
