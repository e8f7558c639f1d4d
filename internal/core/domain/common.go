package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// AuditFields holds standard audit information for domain entities.
type AuditFields struct {
	CreatedAt     time.Time `json:"createdAt"`
	CreatedBy     string    `json:"createdBy"` // UserID Reference
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
	LastUpdatedBy string    `json:"lastUpdatedBy"` // UserID Reference
}

// DefaultEpsilon is the settlement tolerance used when none is configured.
var DefaultEpsilon = decimal.NewFromFloat(0.01)

// MoneyScale is the number of decimal places every stored amount and quantity carries.
// It must match the NUMERIC(20, 4) columns.
const MoneyScale = 4

// FitsMoneyScale reports whether d is stored without rounding.
func FitsMoneyScale(d decimal.Decimal) bool {
	return d.Equal(d.Round(MoneyScale))
}

// checkScale rejects values that storage would round.
func checkScale(field string, d decimal.Decimal) error {
	if !FitsMoneyScale(d) {
		return fmt.Errorf("%w: %s %s has more than %d decimal places", ErrInvalidAmount, field, d, MoneyScale)
	}
	return nil
}

// PaymentMethod is how money was tendered. "mixed" is only ever a resolved marker on an
// invoice, never the method of a single posting.
type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "cash"
	PaymentCard     PaymentMethod = "card"
	PaymentTransfer PaymentMethod = "transfer"
	PaymentCheque   PaymentMethod = "cheque"
	PaymentOnline   PaymentMethod = "online"
	PaymentDebt     PaymentMethod = "debt"
	PaymentMixed    PaymentMethod = "mixed"
)

// IsTender reports whether m can be used for a single payment posting.
func (m PaymentMethod) IsTender() bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentTransfer, PaymentCheque, PaymentOnline:
		return true
	}
	return false
}

// IsSaleMethod reports whether m is accepted by the sale composer. "debt" leaves the
// receivable open.
func (m PaymentMethod) IsSaleMethod() bool {
	return m.IsTender() || m == PaymentDebt
}
