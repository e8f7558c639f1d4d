package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CustomerBalance is the cached running balance of a client. It is derived from the
// ledger and can always be rebuilt from it.
type CustomerBalance struct {
	TenantID     string          `json:"tenantID"`
	ClientID     string          `json:"clientID"`
	Balance      decimal.Decimal `json:"balance"`
	CurrencyCode string          `json:"currencyCode"`
	LastUpdated  time.Time       `json:"lastUpdated"`
}

// BalanceRebuild describes the outcome of replaying a client's ledger.
type BalanceRebuild struct {
	TenantID   string          `json:"tenantID"`
	ClientID   string          `json:"clientID"`
	Previous   decimal.Decimal `json:"previous"`
	Rebuilt    decimal.Decimal `json:"rebuilt"`
	EntryCount int             `json:"entryCount"`
}

// Drifted reports whether the cached balance disagreed with the ledger.
func (r BalanceRebuild) Drifted() bool {
	return !r.Previous.Equal(r.Rebuilt)
}
