package mapping

import (
	"github.com/SscSPs/settlement_engine/internal/core/domain"
	"github.com/SscSPs/settlement_engine/internal/models"
)

// ToModelPOSSession converts a domain POSSession to a model POSSession
func ToModelPOSSession(d domain.POSSession) models.POSSession {
	return models.POSSession{
		SessionID:    d.SessionID,
		TenantID:     d.TenantID,
		BranchID:     d.BranchID,
		OpenedBy:     d.OpenedBy,
		ClosedBy:     d.ClosedBy,
		Status:       string(d.Status),
		OpeningCash:  d.OpeningCash,
		ClosingCash:  d.ClosingCash,
		ExpectedCash: d.ExpectedCash,
		CashVariance: d.CashVariance,
		OpenedAt:     d.OpenedAt,
		ClosedAt:     d.ClosedAt,
		CloseNotes:   d.CloseNotes,
		SaleSequence: d.SaleSequence,
		ReconciledBy: d.ReconciledBy,
		ReconciledAt: d.ReconciledAt,
	}
}

// ToDomainPOSSession converts a model POSSession to a domain POSSession
func ToDomainPOSSession(m models.POSSession) domain.POSSession {
	return domain.POSSession{
		SessionID:    m.SessionID,
		TenantID:     m.TenantID,
		BranchID:     m.BranchID,
		OpenedBy:     m.OpenedBy,
		ClosedBy:     m.ClosedBy,
		Status:       domain.SessionStatus(m.Status),
		OpeningCash:  m.OpeningCash,
		ClosingCash:  m.ClosingCash,
		ExpectedCash: m.ExpectedCash,
		CashVariance: m.CashVariance,
		OpenedAt:     m.OpenedAt,
		ClosedAt:     m.ClosedAt,
		CloseNotes:   m.CloseNotes,
		SaleSequence: m.SaleSequence,
		ReconciledBy: m.ReconciledBy,
		ReconciledAt: m.ReconciledAt,
	}
}
