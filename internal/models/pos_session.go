package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// POSSession is the row shape of the pos_sessions table.
type POSSession struct {
	SessionID    string           `json:"sessionID"`
	TenantID     string           `json:"tenantID"`
	BranchID     *string          `json:"branchID"`
	OpenedBy     string           `json:"openedBy"`
	ClosedBy     *string          `json:"closedBy"`
	Status       string           `json:"status"`
	OpeningCash  decimal.Decimal  `json:"openingCash"`
	ClosingCash  *decimal.Decimal `json:"closingCash"`
	ExpectedCash *decimal.Decimal `json:"expectedCash"`
	CashVariance *decimal.Decimal `json:"cashVariance"`
	OpenedAt     time.Time        `json:"openedAt"`
	ClosedAt     *time.Time       `json:"closedAt"`
	CloseNotes   *string          `json:"closeNotes"`
	SaleSequence int              `json:"saleSequence"`
	ReconciledBy *string          `json:"reconciledBy"`
	ReconciledAt *time.Time       `json:"reconciledAt"`
}
