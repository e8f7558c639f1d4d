package dto

import (
	"github.com/shopspring/decimal"
)

// CartItemRequest is one priced line of a checkout cart.
type CartItemRequest struct {
	Description string          `json:"description" binding:"required,max=500"`
	Quantity    decimal.Decimal `json:"quantity" binding:"dgt0"`
	UnitPrice   decimal.Decimal `json:"unitPrice" binding:"dgte0"`
	TotalPrice  decimal.Decimal `json:"totalPrice" binding:"dgte0"`
	EntityType  *string         `json:"entityType,omitempty" binding:"omitempty,max=64"`
	EntityID    *string         `json:"entityID,omitempty" binding:"omitempty,max=64"`
}

// CreateSaleRequest defines the payload for composing a point-of-sale invoice.
type CreateSaleRequest struct {
	SessionID      string            `json:"sessionID" binding:"required"`
	ClientID       *string           `json:"clientID,omitempty"`
	ClientName     *string           `json:"clientName,omitempty" binding:"omitempty,max=255"`
	PaymentMethod  string            `json:"paymentMethod" binding:"required,oneof=cash card transfer cheque online debt"`
	DiscountAmount *decimal.Decimal  `json:"discountAmount,omitempty"`
	Notes          *string           `json:"notes,omitempty" binding:"omitempty,max=2000"`
	CurrencyCode   *string           `json:"currencyCode,omitempty" binding:"omitempty,len=3"`
	Items          []CartItemRequest `json:"items" binding:"required,min=1,dive"`
	// PaymentSessionID makes a retried checkout replay the same payment batch.
	PaymentSessionID *string `json:"paymentSessionID,omitempty" binding:"omitempty,max=64"`
}
