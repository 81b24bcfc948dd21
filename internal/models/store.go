package models

import "time"

// StoreItem can be bought with CONFIRMED points.
type StoreItem struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Price    int    `json:"price"`
	IsActive bool   `json:"is_active"`
}

// ClaimStatus tracks a purchase request for classroom supplies.
type ClaimStatus string

const (
	ClaimDraft     ClaimStatus = "DRAFT"
	ClaimSubmitted ClaimStatus = "SUBMITTED"
	ClaimApproved  ClaimStatus = "APPROVED"
	ClaimOnOrder   ClaimStatus = "ON_ORDER"
	ClaimReceived  ClaimStatus = "RECEIVED"
	ClaimRejected  ClaimStatus = "REJECTED"
)

// ClaimRequest is a student's request for a real-world purchase.
type ClaimRequest struct {
	ID        string      `json:"id"`
	StudentID string      `json:"student_id"`
	Title     string      `json:"title"`
	PriceKRW  int         `json:"price_krw"`
	Status    ClaimStatus `json:"status"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

var claimTransitions = map[ClaimStatus][]ClaimStatus{
	ClaimDraft:     {ClaimSubmitted, ClaimRejected},
	ClaimSubmitted: {ClaimApproved, ClaimRejected},
	ClaimApproved:  {ClaimOnOrder, ClaimRejected},
	ClaimOnOrder:   {ClaimReceived},
}

// CanTransition reports whether a claim may move from one status to another.
func CanTransition(from, to ClaimStatus) bool {
	for _, next := range claimTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
