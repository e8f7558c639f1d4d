package dto

import (
	"time"

	"github.com/SscSPs/settlement_engine/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateInvoiceRequest defines the payload for manual billing. The invoice starts as a draft.
type CreateInvoiceRequest struct {
	ClientID       *string           `json:"clientID,omitempty"`
	ClientName     *string           `json:"clientName,omitempty" binding:"omitempty,max=255"`
	InvoiceNumber  *string           `json:"invoiceNumber,omitempty" binding:"omitempty,max=64"`
	IssueDate      *time.Time        `json:"issueDate,omitempty"`
	DueDate        *time.Time        `json:"dueDate,omitempty"`
	DiscountAmount *decimal.Decimal  `json:"discountAmount,omitempty"`
	CurrencyCode   *string           `json:"currencyCode,omitempty" binding:"omitempty,len=3"`
	Notes          *string           `json:"notes,omitempty" binding:"omitempty,max=2000"`
	Items          []CartItemRequest `json:"items" binding:"required,min=1,dive"`
}

// InvoiceItemResponse defines the data returned for an invoice line.
type InvoiceItemResponse struct {
	InvoiceItemID string          `json:"invoiceItemID"`
	Description   string          `json:"description"`
	Quantity      decimal.Decimal `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unitPrice"`
	TotalPrice    decimal.Decimal `json:"totalPrice"`
	EntityType    *string         `json:"entityType,omitempty"`
	EntityID      *string         `json:"entityID,omitempty"`
}

// InvoiceResponse defines the data returned for an invoice, including ledger-derived
// settlement figures.
type InvoiceResponse struct {
	InvoiceID      string                `json:"invoiceID"`
	ClientID       *string               `json:"clientID,omitempty"`
	ClientName     *string               `json:"clientName,omitempty"`
	InvoiceNumber  string                `json:"invoiceNumber"`
	Status         string                `json:"status"`
	DisplayStatus  string                `json:"displayStatus"`
	IssueDate      time.Time             `json:"issueDate"`
	DueDate        *time.Time            `json:"dueDate,omitempty"`
	Subtotal       decimal.Decimal       `json:"subtotal"`
	DiscountAmount decimal.Decimal       `json:"discountAmount"`
	TaxAmount      decimal.Decimal       `json:"taxAmount"`
	TotalAmount    decimal.Decimal       `json:"totalAmount"`
	PaidAmount     *decimal.Decimal      `json:"paidAmount,omitempty"`
	Outstanding    *decimal.Decimal      `json:"outstanding,omitempty"`
	CurrencyCode   string                `json:"currencyCode"`
	PaymentMethod  *string               `json:"paymentMethod,omitempty"`
	PaidAt         *time.Time            `json:"paidAt,omitempty"`
	POSSessionID   *string               `json:"posSessionID,omitempty"`
	Notes          string                `json:"notes"`
	Items          []InvoiceItemResponse `json:"items,omitempty"`
	CreatedAt      time.Time             `json:"createdAt"`
	CreatedBy      string                `json:"createdBy"`
}

// ToInvoiceResponse converts a domain.Invoice to InvoiceResponse DTO.
func ToInvoiceResponse(inv *domain.Invoice) InvoiceResponse {
	resp := InvoiceResponse{
		InvoiceID:      inv.InvoiceID,
		ClientID:       inv.ClientID,
		ClientName:     inv.ClientName,
		InvoiceNumber:  inv.InvoiceNumber,
		Status:         string(inv.Status),
		DisplayStatus:  string(inv.Status),
		IssueDate:      inv.IssueDate,
		DueDate:        inv.DueDate,
		Subtotal:       inv.Subtotal,
		DiscountAmount: inv.DiscountAmount,
		TaxAmount:      inv.TaxAmount,
		TotalAmount:    inv.TotalAmount,
		CurrencyCode:   inv.CurrencyCode,
		PaidAt:         inv.PaidAt,
		POSSessionID:   inv.POSSessionID,
		Notes:          inv.Notes,
		CreatedAt:      inv.CreatedAt,
		CreatedBy:      inv.CreatedBy,
	}
	if inv.PaymentMethod != nil {
		m := string(*inv.PaymentMethod)
		resp.PaymentMethod = &m
	}
	for _, it := range inv.Items {
		resp.Items = append(resp.Items, InvoiceItemResponse{
			InvoiceItemID: it.InvoiceItemID,
			Description:   it.Description,
			Quantity:      it.Quantity,
			UnitPrice:     it.UnitPrice,
			TotalPrice:    it.TotalPrice,
			EntityType:    it.EntityType,
			EntityID:      it.EntityID,
		})
	}
	return resp
}

// ToInvoiceView converts an InvoiceView, adding paid, outstanding and projected status.
func ToInvoiceView(v *domain.InvoiceView) InvoiceResponse {
	resp := ToInvoiceResponse(&v.Invoice)
	resp.DisplayStatus = string(v.DisplayStatus)
	paid := v.PaidAmount
	outstanding := v.Outstanding
	resp.PaidAmount = &paid
	resp.Outstanding = &outstanding
	return resp
}
