package repositories

import (
	"context"

	"github.com/SscSPs/settlement_engine/internal/core/domain"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// InvoiceReader defines read operations for invoices.
type InvoiceReader interface {
	// FindInvoiceByID returns the header with its items.
	FindInvoiceByID(ctx context.Context, tenantID, invoiceID string) (*domain.Invoice, error)

	// ListInvoicesBySession returns the invoices composed in a cash session.
	ListInvoicesBySession(ctx context.Context, tenantID, sessionID string) ([]domain.Invoice, error)
}

// InvoiceWriter defines the transactional invoice operations.
type InvoiceWriter interface {
	// LockInvoiceInTx loads the header and holds a row lock until the transaction ends.
	LockInvoiceInTx(ctx context.Context, tx pgx.Tx, tenantID, invoiceID string) (*domain.Invoice, error)

	// SaveInvoiceInTx inserts the header and its items.
	SaveInvoiceInTx(ctx context.Context, tx pgx.Tx, invoice domain.Invoice) error

	// UpdateInvoiceStatusInTx persists status, payment method and paid_at.
	UpdateInvoiceStatusInTx(ctx context.Context, tx pgx.Tx, invoice domain.Invoice) error

	// SumCashSalesInTx sums totals of paid, non-cancelled cash invoices in a session.
	SumCashSalesInTx(ctx context.Context, tx pgx.Tx, tenantID, sessionID string) (decimal.Decimal, error)
}

// InvoiceRepositoryFacade combines invoice read and write operations.
type InvoiceRepositoryFacade interface {
	InvoiceReader
	InvoiceWriter
}
