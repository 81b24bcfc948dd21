package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sciclass-api/internal/models"
	"github.com/noah-isme/sciclass-api/internal/service"
	"github.com/noah-isme/sciclass-api/pkg/response"
)

type quizService interface {
	Catalog() []models.QuizItem
	Attempt(ctx context.Context, student models.Student, itemID, answer string) (*service.AttemptResult, error)
	Progress(ctx context.Context, studentID string) ([]models.QuizProgress, error)
}

// QuizView pairs the catalog with the caller's progress.
type QuizView struct {
	Items    []models.QuizItem     `json:"items"`
	Progress []models.QuizProgress `json:"progress"`
}

// QuizHandler serves formative assessment endpoints.
type QuizHandler struct {
	students studentLoader
	service  quizService
}

// NewQuizHandler constructs a QuizHandler.
func NewQuizHandler(students studentLoader, service quizService) *QuizHandler {
	return &QuizHandler{students: students, service: service}
}

// List godoc
// @Summary Quiz items and the student's progress
// @Tags Quiz
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /quiz [get]
func (h *QuizHandler) List(c *gin.Context) {
	progress, err := h.service.Progress(c.Request.Context(), actorID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	respondOK(c, QuizView{Items: h.service.Catalog(), Progress: progress})
}

// Attempt godoc
// @Summary Submit an answer to a quiz item
// @Tags Quiz
// @Accept json
// @Produce json
// @Param id path string true "Quiz item ID"
// @Param payload body service.AttemptRequest true "Answer"
// @Success 200 {object} response.Envelope
// @Router /quiz/{id}/attempts [post]
func (h *QuizHandler) Attempt(c *gin.Context) {
	student, found := currentStudent(c, h.students)
	if !found {
		return
	}
	var req service.AttemptRequest
	if !bindJSON(c, &req, "invalid attempt payload") {
		return
	}
	result, err := h.service.Attempt(c.Request.Context(), *student, c.Param("id"), req.Answer)
	if err != nil {
		response.Error(c, err)
		return
	}
	respondOK(c, result)
}
