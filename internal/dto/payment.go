package dto

import (
	"github.com/SscSPs/settlement_engine/internal/core/domain"
	"github.com/shopspring/decimal"
)

// PaymentRequest is one tender in a payment batch.
type PaymentRequest struct {
	Amount        decimal.Decimal `json:"amount" binding:"dgt0"`
	PaymentMethod string          `json:"paymentMethod" binding:"required,oneof=cash card transfer cheque online"`
	Reference     *string         `json:"reference,omitempty" binding:"omitempty,max=255"`
	Notes         *string         `json:"notes,omitempty" binding:"omitempty,max=1000"`
}

// PostPaymentsRequest defines the payload for posting a batch of payments against one invoice.
type PostPaymentsRequest struct {
	// PaymentSessionID is the client-generated idempotency key for the batch.
	PaymentSessionID string           `json:"paymentSessionID" binding:"required,max=64"`
	Payments         []PaymentRequest `json:"payments" binding:"required,min=1,dive"`
}

// ToPaymentInputs converts the request to domain inputs, preserving order.
func (r PostPaymentsRequest) ToPaymentInputs() []domain.PaymentInput {
	inputs := make([]domain.PaymentInput, len(r.Payments))
	for i, p := range r.Payments {
		inputs[i] = domain.PaymentInput{
			Amount:    p.Amount,
			Method:    domain.PaymentMethod(p.PaymentMethod),
			Reference: p.Reference,
			Notes:     p.Notes,
		}
	}
	return inputs
}

// PaymentResultResponse defines the data returned after a payment batch.
type PaymentResultResponse struct {
	InvoiceID         string                `json:"invoiceID"`
	PaidAmount        decimal.Decimal       `json:"paidAmount"`
	OutstandingAmount decimal.Decimal       `json:"outstandingAmount"`
	InvoiceStatus     string                `json:"invoiceStatus"`
	PaymentMethod     *string               `json:"paymentMethod,omitempty"`
	Replayed          bool                  `json:"replayed"`
	Entries           []LedgerEntryResponse `json:"entries"`
}

// ToPaymentResultResponse converts a domain.PaymentResult to its DTO.
func ToPaymentResultResponse(r *domain.PaymentResult) PaymentResultResponse {
	resp := PaymentResultResponse{
		InvoiceID:         r.InvoiceID,
		PaidAmount:        r.PaidAmount,
		OutstandingAmount: r.OutstandingAmount,
		InvoiceStatus:     string(r.InvoiceStatus),
		Replayed:          r.Replayed,
		Entries:           ToLedgerEntryResponses(r.Entries),
	}
	if r.PaymentMethod != nil {
		m := string(*r.PaymentMethod)
		resp.PaymentMethod = &m
	}
	return resp
}
