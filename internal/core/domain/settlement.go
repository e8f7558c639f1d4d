package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentInput is one tender inside a payment batch.
type PaymentInput struct {
	Amount    decimal.Decimal `json:"amount"`
	Method    PaymentMethod   `json:"paymentMethod"`
	Reference *string         `json:"reference,omitempty"`
	Notes     *string         `json:"notes,omitempty"`
}

// PaymentResult is what a posted (or replayed) batch leaves the invoice at.
type PaymentResult struct {
	InvoiceID         string          `json:"invoiceID"`
	PaidAmount        decimal.Decimal `json:"paidAmount"`
	OutstandingAmount decimal.Decimal `json:"outstandingAmount"`
	InvoiceStatus     InvoiceStatus   `json:"invoiceStatus"`
	PaymentMethod     *PaymentMethod  `json:"paymentMethod,omitempty"`
	Entries           []LedgerEntry   `json:"entries"`
	Replayed          bool            `json:"replayed"`
}

// ValidatePayments checks the batch shape before anything is read from storage.
func ValidatePayments(payments []PaymentInput) error {
	if len(payments) == 0 {
		return ErrEmptyPayments
	}
	for i, p := range payments {
		if !p.Amount.IsPositive() {
			return fmt.Errorf("%w: payment %d amount must be positive, got %s", ErrInvalidAmount, i, p.Amount)
		}
		if err := checkScale(fmt.Sprintf("payment %d amount", i), p.Amount); err != nil {
			return err
		}
		if !p.Method.IsTender() {
			return fmt.Errorf("%w: payment %d uses %q", ErrInvalidPaymentMethod, i, p.Method)
		}
	}
	return nil
}

// TotalPayments sums the batch amounts.
func TotalPayments(payments []PaymentInput) decimal.Decimal {
	sum := decimal.Zero
	for _, p := range payments {
		sum = sum.Add(p.Amount)
	}
	return sum
}

// CheckOutstanding rejects a batch that would pay more than what is still owed.
func CheckOutstanding(inv *Invoice, previouslyPaid decimal.Decimal, payments []PaymentInput, epsilon decimal.Decimal) error {
	outstanding := inv.Outstanding(previouslyPaid)
	requested := TotalPayments(payments)
	if requested.GreaterThan(outstanding.Add(epsilon)) {
		return fmt.Errorf("%w: requested %s, outstanding %s on invoice %s", ErrOverpayment, requested, outstanding, inv.InvoiceNumber)
	}
	return nil
}

// PaymentEntries turns a batch into one negative ledger entry per payment, in input
// order. BalanceAfter is left for the caller to stamp under the balance lock.
func PaymentEntries(inv *Invoice, payments []PaymentInput, paymentSessionID, createdBy string, now time.Time, newID func() string) []LedgerEntry {
	refType := ReferenceInvoice
	entries := make([]LedgerEntry, 0, len(payments))
	for i, p := range payments {
		method := p.Method
		ordinal := i
		desc := fmt.Sprintf("Payment for invoice %s (%s)", inv.InvoiceNumber, p.Method)
		if p.Notes != nil && *p.Notes != "" {
			desc += ": " + *p.Notes
		}
		var meta map[string]any
		if p.Reference != nil && *p.Reference != "" {
			meta = map[string]any{"reference": *p.Reference}
		}
		entries = append(entries, LedgerEntry{
			EntryID:          newID(),
			TenantID:         inv.TenantID,
			ClientID:         *inv.ClientID,
			EntryType:        EntryPayment,
			ReferenceType:    &refType,
			ReferenceID:      &inv.InvoiceID,
			Amount:           p.Amount.Neg(),
			PaymentMethod:    &method,
			PaymentSessionID: &paymentSessionID,
			PaymentOrdinal:   &ordinal,
			Description:      desc,
			Metadata:         meta,
			CreatedBy:        createdBy,
			CreatedAt:        now,
		})
	}
	return entries
}

// InvoicePostingEntry is the receivable established when a client is billed.
func InvoicePostingEntry(inv *Invoice, createdBy string, now time.Time, entryID string) LedgerEntry {
	refType := ReferenceInvoice
	return LedgerEntry{
		EntryID:       entryID,
		TenantID:      inv.TenantID,
		ClientID:      *inv.ClientID,
		EntryType:     EntryInvoice,
		ReferenceType: &refType,
		ReferenceID:   &inv.InvoiceID,
		Amount:        inv.TotalAmount,
		Description:   "Invoice " + inv.InvoiceNumber,
		CreatedBy:     createdBy,
		CreatedAt:     now,
	}
}

// PaidFromEntries is the absolute sum of payment postings referencing the invoice, along
// with the distinct methods that contributed, in first-seen order.
func PaidFromEntries(invoiceID string, entries []LedgerEntry) (decimal.Decimal, []PaymentMethod) {
	paid := decimal.Zero
	var methods []PaymentMethod
	seen := map[PaymentMethod]bool{}
	for _, e := range entries {
		if e.EntryType != EntryPayment || !e.IsForInvoice(invoiceID) {
			continue
		}
		paid = paid.Add(e.Amount.Abs())
		if e.PaymentMethod != nil && !seen[*e.PaymentMethod] {
			seen[*e.PaymentMethod] = true
			methods = append(methods, *e.PaymentMethod)
		}
	}
	return paid, methods
}

// ResolvePaymentMethod collapses the contributing methods into one marker.
func ResolvePaymentMethod(methods []PaymentMethod) *PaymentMethod {
	distinct := map[PaymentMethod]struct{}{}
	var first PaymentMethod
	for _, m := range methods {
		if len(distinct) == 0 {
			first = m
		}
		distinct[m] = struct{}{}
	}
	switch len(distinct) {
	case 0:
		return nil
	case 1:
		return &first
	}
	mixed := PaymentMixed
	return &mixed
}

// SettleInvoice recomputes status, paid_at and payment method from the ledger-derived
// paid amount. It reports whether anything changed.
func SettleInvoice(inv *Invoice, paid decimal.Decimal, methods []PaymentMethod, now time.Time, epsilon decimal.Decimal) bool {
	before := *inv
	switch {
	case inv.Outstanding(paid).LessThanOrEqual(epsilon):
		inv.Status = InvoicePaid
		if inv.PaidAt == nil {
			inv.PaidAt = &now
		}
		if resolved := ResolvePaymentMethod(methods); resolved != nil {
			inv.PaymentMethod = resolved
		}
	case paid.IsPositive():
		inv.Status = InvoicePartial
		if resolved := ResolvePaymentMethod(methods); resolved != nil {
			inv.PaymentMethod = resolved
		}
	default:
		return false
	}
	return before.Status != inv.Status || before.PaidAt != inv.PaidAt || !sameMethod(before.PaymentMethod, inv.PaymentMethod)
}

func sameMethod(a, b *PaymentMethod) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
