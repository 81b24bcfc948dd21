package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sciclass-api/internal/models"
	"github.com/noah-isme/sciclass-api/internal/service"
	"github.com/noah-isme/sciclass-api/pkg/response"
)

type storeService interface {
	Items() []models.StoreItem
	Purchase(ctx context.Context, studentID string, req service.PurchaseRequest) (*service.PurchaseResult, error)
	CreateClaim(ctx context.Context, studentID string, req service.CreateClaimRequest) (*models.ClaimRequest, error)
	ListClaims(ctx context.Context, studentID string) ([]models.ClaimRequest, error)
	TransitionClaim(ctx context.Context, id string, req service.TransitionClaimRequest) (*models.ClaimRequest, error)
}

// StoreHandler serves the point store and supply claims.
type StoreHandler struct {
	service storeService
}

// NewStoreHandler constructs a StoreHandler.
func NewStoreHandler(service storeService) *StoreHandler {
	return &StoreHandler{service: service}
}

// Items godoc
// @Summary Items purchasable with CONFIRMED points
// @Tags Store
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /store/items [get]
func (h *StoreHandler) Items(c *gin.Context) {
	respondOK(c, h.service.Items())
}

// Purchase godoc
// @Summary Buy a store item
// @Tags Store
// @Accept json
// @Produce json
// @Param payload body service.PurchaseRequest true "Item"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /store/purchases [post]
func (h *StoreHandler) Purchase(c *gin.Context) {
	var req service.PurchaseRequest
	if !bindJSON(c, &req, "invalid purchase payload") {
		return
	}
	result, err := h.service.Purchase(c.Request.Context(), actorID(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// CreateClaim godoc
// @Summary Request a real-world purchase
// @Tags Claims
// @Accept json
// @Produce json
// @Param payload body service.CreateClaimRequest true "Claim"
// @Success 201 {object} response.Envelope
// @Router /claims [post]
func (h *StoreHandler) CreateClaim(c *gin.Context) {
	var req service.CreateClaimRequest
	if !bindJSON(c, &req, "invalid claim payload") {
		return
	}
	claim, err := h.service.CreateClaim(c.Request.Context(), actorID(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, claim)
}

// ListClaims godoc
// @Summary Claims, all for the teacher or one's own for a student
// @Tags Claims
// @Produce json
// @Param studentId query string false "Filter by student (teacher only)"
// @Success 200 {object} response.Envelope
// @Router /claims [get]
func (h *StoreHandler) ListClaims(c *gin.Context) {
	studentID := actorID(c)
	if claims := claimsFromContext(c); claims != nil && claims.Role == models.RoleTeacher {
		studentID = c.Query("studentId")
	}
	items, err := h.service.ListClaims(c.Request.Context(), studentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	respondOK(c, items)
}

// TransitionClaim godoc
// @Summary Move a claim through its workflow
// @Tags Claims
// @Accept json
// @Produce json
// @Param id path string true "Claim ID"
// @Param payload body service.TransitionClaimRequest true "Status"
// @Success 200 {object} response.Envelope
// @Router /claims/{id}/status [patch]
func (h *StoreHandler) TransitionClaim(c *gin.Context) {
	var req service.TransitionClaimRequest
	if !bindJSON(c, &req, "invalid claim status payload") {
		return
	}
	claim, err := h.service.TransitionClaim(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	respondOK(c, claim)
}
