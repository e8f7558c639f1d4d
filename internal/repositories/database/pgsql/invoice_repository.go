package pgsql

import (
	"context"
	"errors"
	"net/http"

	"github.com/SscSPs/settlement_engine/internal/apperrors"
	"github.com/SscSPs/settlement_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/settlement_engine/internal/core/ports/repositories"
	"github.com/SscSPs/settlement_engine/internal/models"
	"github.com/SscSPs/settlement_engine/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const invoiceColumns = `
	invoice_id, tenant_id, client_id, client_name, invoice_number, status, issue_date, due_date,
	subtotal, discount_amount, tax_amount, total_amount, currency_code, payment_method, paid_at,
	pos_session_id, notes, created_at, created_by, last_updated_at, last_updated_by`

// rowScanner is satisfied by pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

type PgxInvoiceRepository struct {
	BaseRepository
}

// newPgxInvoiceRepository creates a new repository for invoices and their items.
func newPgxInvoiceRepository(pool *pgxpool.Pool) portsrepo.InvoiceRepositoryFacade {
	return &PgxInvoiceRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.InvoiceRepositoryFacade = (*PgxInvoiceRepository)(nil)

// SaveInvoiceInTx inserts the header, then its items as a dependent batch.
func (r *PgxInvoiceRepository) SaveInvoiceInTx(ctx context.Context, tx pgx.Tx, invoice domain.Invoice) error {
	m := mapping.ToModelInvoice(invoice)
	query := `
		INSERT INTO invoices (` + invoiceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21);
	`
	_, err := tx.Exec(ctx, query,
		m.InvoiceID,
		m.TenantID,
		m.ClientID,
		m.ClientName,
		m.InvoiceNumber,
		m.Status,
		m.IssueDate,
		m.DueDate,
		m.Subtotal,
		m.DiscountAmount,
		m.TaxAmount,
		m.TotalAmount,
		m.CurrencyCode,
		m.PaymentMethod,
		m.PaidAt,
		m.POSSessionID,
		m.Notes,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return mapPgError("failed to insert invoice "+m.InvoiceNumber, err)
	}

	if len(invoice.Items) == 0 {
		return nil
	}
	itemQuery := `
		INSERT INTO invoice_items (invoice_item_id, invoice_id, line_no, description, quantity, unit_price, total_price, entity_type, entity_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	batch := &pgx.Batch{}
	for i, item := range invoice.Items {
		mi := mapping.ToModelInvoiceItem(item)
		batch.Queue(itemQuery,
			mi.InvoiceItemID,
			m.InvoiceID,
			i+1,
			mi.Description,
			mi.Quantity,
			mi.UnitPrice,
			mi.TotalPrice,
			mi.EntityType,
			mi.EntityID,
		)
	}
	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return mapPgError("failed to insert items for invoice "+m.InvoiceNumber, err)
	}
	return nil
}

// FindInvoiceByID returns the invoice header and its items.
func (r *PgxInvoiceRepository) FindInvoiceByID(ctx context.Context, tenantID, invoiceID string) (*domain.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE tenant_id = $1 AND invoice_id = $2;`
	m, err := scanInvoice(r.Pool.QueryRow(ctx, query, tenantID, invoiceID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("invoice " + invoiceID + " not found")
		}
		return nil, apperrors.NewAppError(http.StatusInternalServerError, "failed to find invoice "+invoiceID, err)
	}

	items, err := r.findItems(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	invoice := mapping.ToDomainInvoice(*m)
	invoice.Items = items
	return &invoice, nil
}

// LockInvoiceInTx reads the header under a row lock. Every payment batch for the
// invoice queues here.
func (r *PgxInvoiceRepository) LockInvoiceInTx(ctx context.Context, tx pgx.Tx, tenantID, invoiceID string) (*domain.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE tenant_id = $1 AND invoice_id = $2 FOR UPDATE;`
	m, err := scanInvoice(tx.QueryRow(ctx, query, tenantID, invoiceID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("invoice " + invoiceID + " not found")
		}
		return nil, mapPgError("failed to lock invoice "+invoiceID, err)
	}
	invoice := mapping.ToDomainInvoice(*m)
	return &invoice, nil
}

// UpdateInvoiceStatusInTx writes the settlement-derived fields.
func (r *PgxInvoiceRepository) UpdateInvoiceStatusInTx(ctx context.Context, tx pgx.Tx, invoice domain.Invoice) error {
	m := mapping.ToModelInvoice(invoice)
	query := `
		UPDATE invoices
		SET status = $3,
		    payment_method = $4,
		    paid_at = $5,
		    last_updated_at = $6,
		    last_updated_by = $7
		WHERE tenant_id = $1 AND invoice_id = $2;
	`
	cmdTag, err := tx.Exec(ctx, query,
		m.TenantID,
		m.InvoiceID,
		m.Status,
		m.PaymentMethod,
		m.PaidAt,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return mapPgError("failed to update status of invoice "+m.InvoiceID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("invoice " + m.InvoiceID + " not found for update")
	}
	return nil
}

// SumCashSalesInTx sums the totals of cash invoices that received payment in a session.
func (r *PgxInvoiceRepository) SumCashSalesInTx(ctx context.Context, tx pgx.Tx, tenantID, sessionID string) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(total_amount), 0)
		FROM invoices
		WHERE tenant_id = $1
		  AND pos_session_id = $2
		  AND payment_method = 'cash'
		  AND paid_at IS NOT NULL
		  AND status <> 'cancelled';
	`
	var sum decimal.Decimal
	if err := tx.QueryRow(ctx, query, tenantID, sessionID).Scan(&sum); err != nil {
		return decimal.Zero, apperrors.NewAppError(http.StatusInternalServerError, "failed to sum cash sales for session "+sessionID, err)
	}
	return sum, nil
}

// ListInvoicesBySession returns a session's invoice headers in issue order.
func (r *PgxInvoiceRepository) ListInvoicesBySession(ctx context.Context, tenantID, sessionID string) ([]domain.Invoice, error) {
	query := `SELECT ` + invoiceColumns + `
		FROM invoices
		WHERE tenant_id = $1 AND pos_session_id = $2
		ORDER BY created_at, invoice_number;
	`
	rows, err := r.Pool.Query(ctx, query, tenantID, sessionID)
	if err != nil {
		return nil, apperrors.NewAppError(http.StatusInternalServerError, "failed to query invoices for session "+sessionID, err)
	}
	defer rows.Close()

	invoices := []domain.Invoice{}
	for rows.Next() {
		m, err := scanInvoice(rows)
		if err != nil {
			return nil, apperrors.NewAppError(http.StatusInternalServerError, "failed to scan invoice row for session "+sessionID, err)
		}
		invoices = append(invoices, mapping.ToDomainInvoice(*m))
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(http.StatusInternalServerError, "error iterating invoice rows for session "+sessionID, err)
	}
	return invoices, nil
}

func (r *PgxInvoiceRepository) findItems(ctx context.Context, invoiceID string) ([]domain.InvoiceItem, error) {
	query := `
		SELECT invoice_item_id, invoice_id, description, quantity, unit_price, total_price, entity_type, entity_id
		FROM invoice_items
		WHERE invoice_id = $1
		ORDER BY line_no;
	`
	rows, err := r.Pool.Query(ctx, query, invoiceID)
	if err != nil {
		return nil, apperrors.NewAppError(http.StatusInternalServerError, "failed to query items for invoice "+invoiceID, err)
	}
	defer rows.Close()

	items := []models.InvoiceItem{}
	for rows.Next() {
		var it models.InvoiceItem
		if err := rows.Scan(
			&it.InvoiceItemID,
			&it.InvoiceID,
			&it.Description,
			&it.Quantity,
			&it.UnitPrice,
			&it.TotalPrice,
			&it.EntityType,
			&it.EntityID,
		); err != nil {
			return nil, apperrors.NewAppError(http.StatusInternalServerError, "failed to scan item row for invoice "+invoiceID, err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(http.StatusInternalServerError, "error iterating item rows for invoice "+invoiceID, err)
	}
	return mapping.ToDomainInvoiceItems(items), nil
}

func scanInvoice(row rowScanner) (*models.Invoice, error) {
	var m models.Invoice
	err := row.Scan(
		&m.InvoiceID,
		&m.TenantID,
		&m.ClientID,
		&m.ClientName,
		&m.InvoiceNumber,
		&m.Status,
		&m.IssueDate,
		&m.DueDate,
		&m.Subtotal,
		&m.DiscountAmount,
		&m.TaxAmount,
		&m.TotalAmount,
		&m.CurrencyCode,
		&m.PaymentMethod,
		&m.PaidAt,
		&m.POSSessionID,
		&m.Notes,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
