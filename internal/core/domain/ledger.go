package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// EntryType classifies a ledger posting.
type EntryType string

const (
	EntryInvoice    EntryType = "invoice"    // increases what the client owes
	EntryPayment    EntryType = "payment"    // money received
	EntryCredit     EntryType = "credit"     // goodwill/credit note, decreases the balance
	EntryAdjustment EntryType = "adjustment" // manual correction, either sign
)

// ReferenceInvoice is the reference_type used for postings tied to an invoice.
const ReferenceInvoice = "invoice"

// LedgerEntry is one immutable posting for a client. Positive amounts increase what the
// client owes.
type LedgerEntry struct {
	EntryID          string          `json:"entryID"`
	TenantID         string          `json:"tenantID"`
	ClientID         string          `json:"clientID"`
	EntryType        EntryType       `json:"entryType"`
	ReferenceType    *string         `json:"referenceType,omitempty"`
	ReferenceID      *string         `json:"referenceID,omitempty"`
	Amount           decimal.Decimal `json:"amount"`       // signed
	BalanceAfter     decimal.Decimal `json:"balanceAfter"` // point-in-time audit value
	PaymentMethod    *PaymentMethod  `json:"paymentMethod,omitempty"`
	PaymentSessionID *string         `json:"paymentSessionID,omitempty"`
	PaymentOrdinal   *int            `json:"paymentOrdinal,omitempty"`
	Description      string          `json:"description"`
	Metadata         map[string]any  `json:"metadata,omitempty"`
	CreatedBy        string          `json:"createdBy"`
	CreatedAt        time.Time       `json:"createdAt"`
}

// ValidateSign enforces the sign convention for the entry type.
func (e *LedgerEntry) ValidateSign() error {
	if err := checkScale("entry amount", e.Amount); err != nil {
		return err
	}
	switch e.EntryType {
	case EntryInvoice:
		if !e.Amount.IsPositive() {
			return fmt.Errorf("%w: invoice postings must be positive, got %s", ErrInvalidEntry, e.Amount)
		}
	case EntryPayment, EntryCredit:
		if !e.Amount.IsNegative() {
			return fmt.Errorf("%w: %s postings must be negative, got %s", ErrInvalidEntry, e.EntryType, e.Amount)
		}
	case EntryAdjustment:
		if e.Amount.IsZero() {
			return fmt.Errorf("%w: adjustment amount must not be zero", ErrInvalidEntry)
		}
	default:
		return fmt.Errorf("%w: unknown entry type %q", ErrInvalidEntry, e.EntryType)
	}
	return nil
}

// IsForInvoice reports whether the entry references the given invoice.
func (e *LedgerEntry) IsForInvoice(invoiceID string) bool {
	return e.ReferenceType != nil && *e.ReferenceType == ReferenceInvoice &&
		e.ReferenceID != nil && *e.ReferenceID == invoiceID
}

// ApplyRunningBalance stamps BalanceAfter on each entry in order, starting from the
// given balance, and returns the final balance.
func ApplyRunningBalance(start decimal.Decimal, entries []LedgerEntry) decimal.Decimal {
	running := start
	for i := range entries {
		running = running.Add(entries[i].Amount)
		entries[i].BalanceAfter = running
	}
	return running
}

// SumAmounts returns the sum of the entries' signed amounts.
func SumAmounts(entries []LedgerEntry) decimal.Decimal {
	sum := decimal.Zero
	for _, e := range entries {
		sum = sum.Add(e.Amount)
	}
	return sum
}
