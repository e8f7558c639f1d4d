package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// CartItem is a priced line coming from the catalog. TotalPrice is set by the caller and
// must equal Quantity * UnitPrice.
type CartItem struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	TotalPrice  decimal.Decimal `json:"totalPrice"`
	EntityType  *string         `json:"entityType,omitempty"`
	EntityID    *string         `json:"entityID,omitempty"`
}

// TaxCalculator computes the tax owed on a sale after discount. The tax model is not
// fixed, so it is pluggable.
type TaxCalculator interface {
	Tax(items []InvoiceItem, subtotal, discount decimal.Decimal) (decimal.Decimal, error)
}

// ZeroTax charges no tax.
type ZeroTax struct{}

func (ZeroTax) Tax([]InvoiceItem, decimal.Decimal, decimal.Decimal) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

// SaleTotals are the header amounts of a composed sale.
type SaleTotals struct {
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// ComposeTotals validates cart lines, converts them to invoice items and computes the
// header amounts.
func ComposeTotals(cart []CartItem, discount decimal.Decimal, tax TaxCalculator) ([]InvoiceItem, SaleTotals, error) {
	if len(cart) == 0 {
		return nil, SaleTotals{}, ErrEmptyCart
	}
	items := make([]InvoiceItem, 0, len(cart))
	subtotal := decimal.Zero
	for _, c := range cart {
		item := InvoiceItem{
			Description: c.Description,
			Quantity:    c.Quantity,
			UnitPrice:   c.UnitPrice,
			TotalPrice:  c.TotalPrice,
			EntityType:  c.EntityType,
			EntityID:    c.EntityID,
		}
		if err := item.Validate(); err != nil {
			return nil, SaleTotals{}, err
		}
		subtotal = subtotal.Add(item.TotalPrice)
		items = append(items, item)
	}
	if err := checkScale("discount", discount); err != nil {
		return nil, SaleTotals{}, err
	}
	if discount.IsNegative() || discount.GreaterThan(subtotal) {
		return nil, SaleTotals{}, fmt.Errorf("%w: discount %s must be between 0 and subtotal %s", ErrInvalidAmount, discount, subtotal)
	}
	if tax == nil {
		tax = ZeroTax{}
	}
	taxAmount, err := tax.Tax(items, subtotal, discount)
	if err != nil {
		return nil, SaleTotals{}, err
	}
	if taxAmount.IsNegative() {
		return nil, SaleTotals{}, fmt.Errorf("%w: tax must not be negative, got %s", ErrInvalidAmount, taxAmount)
	}
	if err := checkScale("tax", taxAmount); err != nil {
		return nil, SaleTotals{}, err
	}
	return items, SaleTotals{
		Subtotal: subtotal,
		Discount: discount,
		Tax:      taxAmount,
		Total:    subtotal.Sub(discount).Add(taxAmount),
	}, nil
}
