package dto

import (
	"time"

	"github.com/SscSPs/settlement_engine/internal/core/domain"
	"github.com/shopspring/decimal"
)

// OpenSessionRequest defines the payload for opening a cash drawer.
type OpenSessionRequest struct {
	BranchID    *string         `json:"branchID,omitempty" binding:"omitempty,max=36"`
	OpeningCash decimal.Decimal `json:"openingCash" binding:"dgte0"`
}

// CloseSessionRequest defines the payload for closing a cash drawer with the counted cash.
type CloseSessionRequest struct {
	ActualCash decimal.Decimal `json:"actualCash" binding:"dgte0"`
	Notes      *string         `json:"notes,omitempty" binding:"omitempty,max=2000"`
}

// ReconcileSessionRequest defines the payload for marking a closed drawer reconciled.
type ReconcileSessionRequest struct {
	Notes *string `json:"notes,omitempty" binding:"omitempty,max=2000"`
}

// SessionResponse defines the data returned for a cash drawer session.
type SessionResponse struct {
	SessionID    string           `json:"sessionID"`
	BranchID     *string          `json:"branchID,omitempty"`
	Status       string           `json:"status"`
	OpenedBy     string           `json:"openedBy"`
	ClosedBy     *string          `json:"closedBy,omitempty"`
	OpeningCash  decimal.Decimal  `json:"openingCash"`
	ClosingCash  *decimal.Decimal `json:"closingCash,omitempty"`
	ExpectedCash *decimal.Decimal `json:"expectedCash,omitempty"`
	CashVariance *decimal.Decimal `json:"cashVariance,omitempty"`
	OpenedAt     time.Time        `json:"openedAt"`
	ClosedAt     *time.Time       `json:"closedAt,omitempty"`
	CloseNotes   *string          `json:"closeNotes,omitempty"`
	SaleCount    int              `json:"saleCount"`
	ReconciledBy *string          `json:"reconciledBy,omitempty"`
	ReconciledAt *time.Time       `json:"reconciledAt,omitempty"`
}

// ToSessionResponse converts a domain.POSSession to its DTO.
func ToSessionResponse(s *domain.POSSession) SessionResponse {
	return SessionResponse{
		SessionID:    s.SessionID,
		BranchID:     s.BranchID,
		Status:       string(s.Status),
		OpenedBy:     s.OpenedBy,
		ClosedBy:     s.ClosedBy,
		OpeningCash:  s.OpeningCash,
		ClosingCash:  s.ClosingCash,
		ExpectedCash: s.ExpectedCash,
		CashVariance: s.CashVariance,
		OpenedAt:     s.OpenedAt,
		ClosedAt:     s.ClosedAt,
		CloseNotes:   s.CloseNotes,
		SaleCount:    s.SaleSequence,
		ReconciledBy: s.ReconciledBy,
		ReconciledAt: s.ReconciledAt,
	}
}
