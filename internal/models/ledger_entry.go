package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerEntry is the row shape of the append-only ledger_entries table.
type LedgerEntry struct {
	EntryID          string          `json:"entryID"`          // Primary Key (UUID)
	TenantID         string          `json:"tenantID"`         // Not Null
	ClientID         string          `json:"clientID"`         // Not Null
	EntryType        string          `json:"entryType"`        // invoice|payment|credit|adjustment
	ReferenceType    *string         `json:"referenceType"`    // Nullable
	ReferenceID      *string         `json:"referenceID"`      // Nullable
	Amount           decimal.Decimal `json:"amount"`           // Signed
	BalanceAfter     decimal.Decimal `json:"balanceAfter"`     // Running balance after this row
	PaymentMethod    *string         `json:"paymentMethod"`    // Nullable
	PaymentSessionID *string         `json:"paymentSessionID"` // Nullable, idempotency key
	PaymentOrdinal   *int            `json:"paymentOrdinal"`   // Nullable
	Description      string          `json:"description"`
	Metadata         []byte          `json:"metadata"` // JSONB
	CreatedBy        string          `json:"createdBy"`
	CreatedAt        time.Time       `json:"createdAt"`
	Seq              int64           `json:"seq"` // BIGSERIAL, creation order
}

// CustomerBalance is the row shape of the customer_balances table.
type CustomerBalance struct {
	TenantID     string          `json:"tenantID"`
	ClientID     string          `json:"clientID"`
	Balance      decimal.Decimal `json:"balance"`
	CurrencyCode string          `json:"currencyCode"`
	LastUpdated  time.Time       `json:"lastUpdated"`
}
