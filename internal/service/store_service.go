package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/sciclass-api/internal/models"
	appErrors "github.com/noah-isme/sciclass-api/pkg/errors"
)

type claimRepository interface {
	Create(ctx context.Context, claim models.ClaimRequest) error
	List(ctx context.Context, studentID string) ([]models.ClaimRequest, error)
	Transition(ctx context.Context, id string, status models.ClaimStatus, at time.Time) (*models.ClaimRequest, error)
}

type pointsSpender interface {
	RecordSpend(ctx context.Context, req SpendRequest) (*models.PointRecord, error)
}

// PurchaseRequest names the store item to buy.
type PurchaseRequest struct {
	ItemID string `json:"item_id" validate:"required"`
}

// CreateClaimRequest opens a purchase request for a real-world item.
type CreateClaimRequest struct {
	Title    string `json:"title" validate:"required,max=200"`
	PriceKRW int    `json:"price_krw" validate:"gte=0"`
	Submit   bool   `json:"submit"`
}

// TransitionClaimRequest moves a claim through its workflow.
type TransitionClaimRequest struct {
	Status models.ClaimStatus `json:"status" validate:"required,oneof=SUBMITTED APPROVED ON_ORDER RECEIVED REJECTED"`
}

// PurchaseResult reports a completed purchase.
type PurchaseResult struct {
	Item  models.StoreItem    `json:"item"`
	Point *models.PointRecord `json:"point"`
}

// StoreService sells store items for CONFIRMED points and tracks claims.
type StoreService struct {
	claims    claimRepository
	ledger    pointsSpender
	catalog   []models.StoreItem
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewStoreService constructs a StoreService over the static catalog.
func NewStoreService(claims claimRepository, ledger pointsSpender, validate *validator.Validate, logger *zap.Logger) *StoreService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &StoreService{claims: claims, ledger: ledger, catalog: models.StoreCatalog(), validator: validate, logger: logger, now: time.Now}
}

// Items lists purchasable items.
func (s *StoreService) Items() []models.StoreItem {
	out := make([]models.StoreItem, 0, len(s.catalog))
	for _, item := range s.catalog {
		if item.IsActive {
			out = append(out, item)
		}
	}
	return out
}

// Purchase spends CONFIRMED points on an item.
func (s *StoreService) Purchase(ctx context.Context, studentID string, req PurchaseRequest) (*PurchaseResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid purchase payload")
	}
	var item *models.StoreItem
	for i := range s.catalog {
		if s.catalog[i].ID == req.ItemID && s.catalog[i].IsActive {
			item = &s.catalog[i]
			break
		}
	}
	if item == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "store item not found")
	}
	record, err := s.ledger.RecordSpend(ctx, SpendRequest{
		StudentID: studentID,
		Points:    item.Price,
		Reason:    models.PurchaseReason(item.Name),
	})
	if err != nil {
		return nil, err
	}
	return &PurchaseResult{Item: *item, Point: record}, nil
}

// CreateClaim records a student's request as DRAFT, or SUBMITTED when asked.
func (s *StoreService) CreateClaim(ctx context.Context, studentID string, req CreateClaimRequest) (*models.ClaimRequest, error) {
	req.Title = strings.TrimSpace(req.Title)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid claim payload")
	}
	now := s.now().UTC()
	claim := models.ClaimRequest{
		ID:        uuid.NewString(),
		StudentID: studentID,
		Title:     req.Title,
		PriceKRW:  req.PriceKRW,
		Status:    models.ClaimDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if req.Submit {
		claim.Status = models.ClaimSubmitted
	}
	if err := s.claims.Create(ctx, claim); err != nil {
		return nil, storeError(err, "failed to create claim")
	}
	s.logger.Info("claim created", zap.String("claim_id", claim.ID), zap.String("student_id", studentID), zap.String("status", string(claim.Status)))
	return &claim, nil
}

// ListClaims returns claims newest first. An empty studentID lists all.
func (s *StoreService) ListClaims(ctx context.Context, studentID string) ([]models.ClaimRequest, error) {
	claims, err := s.claims.List(ctx, studentID)
	if err != nil {
		return nil, storeError(err, "failed to list claims")
	}
	return claims, nil
}

// TransitionClaim moves a claim to a new status when the workflow allows it.
func (s *StoreService) TransitionClaim(ctx context.Context, id string, req TransitionClaimRequest) (*models.ClaimRequest, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid claim status")
	}
	claim, err := s.claims.Transition(ctx, id, req.Status, s.now().UTC())
	if err != nil {
		return nil, storeError(err, "claim not found")
	}
	s.logger.Info("claim status changed", zap.String("claim_id", id), zap.String("status", string(claim.Status)))
	return claim, nil
}
