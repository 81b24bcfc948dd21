package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sciclass-api/internal/models"
	"github.com/noah-isme/sciclass-api/internal/service"
	"github.com/noah-isme/sciclass-api/pkg/response"
)

type pointsWriter interface {
	RecordEarn(ctx context.Context, req service.EarnRequest) (*models.PointRecord, error)
}

// PointsHandler lets the teacher grant points directly.
type PointsHandler struct {
	ledger pointsWriter
}

// NewPointsHandler constructs a PointsHandler.
func NewPointsHandler(ledger pointsWriter) *PointsHandler {
	return &PointsHandler{ledger: ledger}
}

// Earn godoc
// @Summary Grant HOLD or CONFIRMED points to a student
// @Tags Points
// @Accept json
// @Produce json
// @Param payload body service.EarnRequest true "Grant"
// @Success 201 {object} response.Envelope
// @Router /points/earn [post]
func (h *PointsHandler) Earn(c *gin.Context) {
	var req service.EarnRequest
	if !bindJSON(c, &req, "invalid points payload") {
		return
	}
	record, err := h.ledger.RecordEarn(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, record)
}
