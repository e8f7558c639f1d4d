package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceStatus is the stored lifecycle state of an invoice.
type InvoiceStatus string

const (
	InvoiceDraft     InvoiceStatus = "draft"
	InvoiceIssued    InvoiceStatus = "issued"
	InvoicePartial   InvoiceStatus = "partial"
	InvoicePaid      InvoiceStatus = "paid"
	InvoiceCancelled InvoiceStatus = "cancelled"
	// InvoiceOverdue is never stored; see Invoice.DisplayStatus.
	InvoiceOverdue InvoiceStatus = "overdue"
)

// CanTransitionTo encodes the invoice state machine.
func (s InvoiceStatus) CanTransitionTo(next InvoiceStatus) bool {
	switch s {
	case InvoiceDraft:
		return next == InvoiceIssued || next == InvoiceCancelled
	case InvoiceIssued, InvoicePartial:
		return next == InvoicePartial || next == InvoicePaid || next == InvoiceCancelled
	}
	return false
}

// AcceptsPayments reports whether postings may reference an invoice in this state.
func (s InvoiceStatus) AcceptsPayments() bool {
	return s == InvoiceIssued || s == InvoicePartial
}

// Invoice is a billing document header.
type Invoice struct {
	InvoiceID      string          `json:"invoiceID"`
	TenantID       string          `json:"tenantID"`
	ClientID       *string         `json:"clientID,omitempty"`   // nil means walk-in
	ClientName     *string         `json:"clientName,omitempty"` // display label only
	InvoiceNumber  string          `json:"invoiceNumber"`
	Status         InvoiceStatus   `json:"status"`
	IssueDate      time.Time       `json:"issueDate"`
	DueDate        *time.Time      `json:"dueDate,omitempty"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	TaxAmount      decimal.Decimal `json:"taxAmount"`
	TotalAmount    decimal.Decimal `json:"totalAmount"`
	CurrencyCode   string          `json:"currencyCode"`
	PaymentMethod  *PaymentMethod  `json:"paymentMethod,omitempty"`
	PaidAt         *time.Time      `json:"paidAt,omitempty"` // payment-received timestamp
	POSSessionID   *string         `json:"posSessionID,omitempty"`
	Notes          string          `json:"notes"`
	Items          []InvoiceItem   `json:"items,omitempty"`
	AuditFields
}

// InvoiceItem is a line of an invoice, owned by it.
type InvoiceItem struct {
	InvoiceItemID string          `json:"invoiceItemID"`
	InvoiceID     string          `json:"invoiceID"`
	Description   string          `json:"description"`
	Quantity      decimal.Decimal `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unitPrice"`
	TotalPrice    decimal.Decimal `json:"totalPrice"`
	EntityType    *string         `json:"entityType,omitempty"`
	EntityID      *string         `json:"entityID,omitempty"`
}

// IsWalkIn reports whether the invoice has no client identity.
func (i *Invoice) IsWalkIn() bool {
	return i.ClientID == nil || *i.ClientID == ""
}

// Validate checks the header arithmetic and that item totals are consistent.
func (i *Invoice) Validate() error {
	for _, f := range []struct {
		name  string
		value decimal.Decimal
	}{
		{"subtotal", i.Subtotal},
		{"discount", i.DiscountAmount},
		{"tax", i.TaxAmount},
		{"total", i.TotalAmount},
	} {
		if err := checkScale(f.name, f.value); err != nil {
			return err
		}
	}
	if i.Subtotal.IsNegative() || i.DiscountAmount.IsNegative() || i.TaxAmount.IsNegative() {
		return fmt.Errorf("%w: invoice amounts must not be negative", ErrInvalidAmount)
	}
	if i.DiscountAmount.GreaterThan(i.Subtotal) {
		return fmt.Errorf("%w: discount %s exceeds subtotal %s", ErrInvalidAmount, i.DiscountAmount, i.Subtotal)
	}
	expected := i.Subtotal.Sub(i.DiscountAmount).Add(i.TaxAmount)
	if !i.TotalAmount.Equal(expected) {
		return fmt.Errorf("%w: total %s does not equal subtotal - discount + tax (%s)", ErrInvalidAmount, i.TotalAmount, expected)
	}
	if len(i.Items) > 0 {
		sum := decimal.Zero
		for _, item := range i.Items {
			if err := item.Validate(); err != nil {
				return err
			}
			sum = sum.Add(item.TotalPrice)
		}
		if !sum.Equal(i.Subtotal) {
			return fmt.Errorf("%w: items sum to %s but subtotal is %s", ErrInvalidAmount, sum, i.Subtotal)
		}
	}
	return nil
}

// Validate checks total_price = quantity * unit_price.
func (it *InvoiceItem) Validate() error {
	if it.Description == "" {
		return fmt.Errorf("%w: item description is required", ErrInvalidItem)
	}
	if !it.Quantity.IsPositive() {
		return fmt.Errorf("%w: quantity must be positive for %q", ErrInvalidItem, it.Description)
	}
	if it.UnitPrice.IsNegative() {
		return fmt.Errorf("%w: unit price must not be negative for %q", ErrInvalidItem, it.Description)
	}
	if err := checkScale("quantity of "+it.Description, it.Quantity); err != nil {
		return err
	}
	if err := checkScale("unit price of "+it.Description, it.UnitPrice); err != nil {
		return err
	}
	if err := checkScale("total price of "+it.Description, it.TotalPrice); err != nil {
		return err
	}
	if !it.TotalPrice.Equal(it.Quantity.Mul(it.UnitPrice)) {
		return fmt.Errorf("%w: total price %s != %s x %s for %q", ErrInvalidItem, it.TotalPrice, it.Quantity, it.UnitPrice, it.Description)
	}
	return nil
}

// Outstanding is total minus the ledger-derived paid amount.
func (i *Invoice) Outstanding(paid decimal.Decimal) decimal.Decimal {
	return i.TotalAmount.Sub(paid)
}

// DisplayStatus projects the overdue state at read time: an issued or partial invoice
// past its due date with money still outstanding.
func (i *Invoice) DisplayStatus(now time.Time, paid, epsilon decimal.Decimal) InvoiceStatus {
	if i.Status != InvoiceIssued && i.Status != InvoicePartial {
		return i.Status
	}
	if i.DueDate == nil || !now.After(*i.DueDate) {
		return i.Status
	}
	if i.Outstanding(paid).GreaterThan(epsilon) {
		return InvoiceOverdue
	}
	return i.Status
}

// InvoiceView is an invoice with its ledger-derived settlement figures.
type InvoiceView struct {
	Invoice
	PaidAmount    decimal.Decimal
	Outstanding   decimal.Decimal
	DisplayStatus InvoiceStatus
}
