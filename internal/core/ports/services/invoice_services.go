package services

import (
	"context"

	"github.com/SscSPs/settlement_engine/internal/core/domain"
	"github.com/SscSPs/settlement_engine/internal/dto"
)

// InvoiceReaderSvc defines read operations on invoices.
type InvoiceReaderSvc interface {
	GetInvoice(ctx context.Context, tenantID, invoiceID string) (*domain.InvoiceView, error)
}

// InvoiceWriterSvc defines the manual billing lifecycle.
type InvoiceWriterSvc interface {
	CreateInvoice(ctx context.Context, tenantID string, req dto.CreateInvoiceRequest, userID string) (*domain.Invoice, error)
	IssueInvoice(ctx context.Context, tenantID, invoiceID, userID string) (*domain.Invoice, error)
	CancelInvoice(ctx context.Context, tenantID, invoiceID, userID string) (*domain.Invoice, error)
}

// InvoiceSvcFacade combines all invoice service operations.
type InvoiceSvcFacade interface {
	InvoiceReaderSvc
	InvoiceWriterSvc
}

// PaymentSvc posts payment batches against invoices.
type PaymentSvc interface {
	PostPayments(ctx context.Context, tenantID, invoiceID string, req dto.PostPaymentsRequest, userID string) (*domain.PaymentResult, error)
}
