package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// SessionStatus is the lifecycle state of a cash drawer session.
type SessionStatus string

const (
	SessionOpen       SessionStatus = "open"
	SessionClosed     SessionStatus = "closed"
	SessionReconciled SessionStatus = "reconciled"
)

// POSSession tracks one physical cash drawer from open to close.
type POSSession struct {
	SessionID    string           `json:"sessionID"`
	TenantID     string           `json:"tenantID"`
	BranchID     *string          `json:"branchID,omitempty"`
	OpenedBy     string           `json:"openedBy"`
	ClosedBy     *string          `json:"closedBy,omitempty"`
	Status       SessionStatus    `json:"status"`
	OpeningCash  decimal.Decimal  `json:"openingCash"`
	ClosingCash  *decimal.Decimal `json:"closingCash,omitempty"`
	ExpectedCash *decimal.Decimal `json:"expectedCash,omitempty"`
	CashVariance *decimal.Decimal `json:"cashVariance,omitempty"`
	OpenedAt     time.Time        `json:"openedAt"`
	ClosedAt     *time.Time       `json:"closedAt,omitempty"`
	CloseNotes   *string          `json:"closeNotes,omitempty"`
	SaleSequence int              `json:"saleSequence"`
	ReconciledBy *string          `json:"reconciledBy,omitempty"`
	ReconciledAt *time.Time       `json:"reconciledAt,omitempty"`
}

// Prefix is the short session tag embedded in invoice numbers and traceability tags.
func (s *POSSession) Prefix() string {
	return SessionPrefix(s.SessionID)
}

// SessionPrefix returns the first eight characters of a session id.
func SessionPrefix(sessionID string) string {
	if len(sessionID) <= 8 {
		return sessionID
	}
	return sessionID[:8]
}

// CloseSummary holds the terminal drawer figures written when a session closes.
type CloseSummary struct {
	CashSales    decimal.Decimal `json:"cashSales"`
	ExpectedCash decimal.Decimal `json:"expectedCash"`
	ClosingCash  decimal.Decimal `json:"closingCash"`
	CashVariance decimal.Decimal `json:"cashVariance"`
}

// ComputeClose derives expected cash and variance. A negative variance means the drawer
// is short.
func ComputeClose(openingCash, cashSales, countedCash decimal.Decimal) CloseSummary {
	expected := openingCash.Add(cashSales)
	return CloseSummary{
		CashSales:    cashSales,
		ExpectedCash: expected,
		ClosingCash:  countedCash,
		CashVariance: countedCash.Sub(expected),
	}
}

// TraceTag is the [POS:<prefix>:<seq>] marker linking an invoice to its drawer session.
func TraceTag(sessionID string, sequence int) string {
	return fmt.Sprintf("[POS:%s:%d]", SessionPrefix(sessionID), sequence)
}

// POSInvoiceNumber builds the human-readable invoice number for a POS sale.
func POSInvoiceNumber(issuedAt time.Time, sessionID string, sequence int) string {
	return fmt.Sprintf("POS-%s-%s-%04d", issuedAt.UTC().Format("20060102"), SessionPrefix(sessionID), sequence)
}
