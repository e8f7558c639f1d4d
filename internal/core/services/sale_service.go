package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SscSPs/settlement_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/settlement_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/settlement_engine/internal/core/ports/services"
	"github.com/SscSPs/settlement_engine/internal/dto"
	"github.com/SscSPs/settlement_engine/internal/platform/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
)

// saleService composes checkout carts into invoices inside an open cash session.
type saleService struct {
	BaseService
	invoiceRepo portsrepo.InvoiceRepositoryFacade
	sessionRepo portsrepo.POSSessionRepositoryFacade
	settler     *settler
	settings    Settings
	tax         domain.TaxCalculator
}

// SaleServiceOption configures a sale service.
type SaleServiceOption func(*saleService)

// WithSaleTaxCalculator sets the tax applied at checkout.
func WithSaleTaxCalculator(tax domain.TaxCalculator) SaleServiceOption {
	return func(s *saleService) {
		if tax != nil {
			s.tax = tax
		}
	}
}

// NewSaleService creates a new SaleService.
func NewSaleService(repos portsrepo.RepositoryProvider, settings Settings, opts ...SaleServiceOption) portssvc.SaleSvc {
	s := &saleService{
		BaseService: BaseService{TxManager: repos.TxManager, Now: settings.Now},
		invoiceRepo: repos.InvoiceRepo,
		sessionRepo: repos.POSSessionRepo,
		settler:     newSettler(repos.LedgerRepo, repos.BalanceRepo, repos.InvoiceRepo, settings.Epsilon),
		settings:    settings,
		tax:         domain.ZeroTax{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateSale issues an invoice for the cart. For a known client the receivable is
// posted and, unless the sale is on debt, paid in full in the same transaction. A walk-in
// sale never reaches the ledger; it is stamped paid on the invoice so the drawer counts it.
func (s *saleService) CreateSale(ctx context.Context, tenantID string, req dto.CreateSaleRequest, userID string) (inv *domain.Invoice, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "SaleService", "CreateSale",
		attribute.String("tenant_id", tenantID),
		attribute.String("session_id", req.SessionID),
		attribute.String("payment_method", req.PaymentMethod),
	)
	defer func() {
		telemetry.RecordError(span, err)
		span.End()
	}()

	method := domain.PaymentMethod(req.PaymentMethod)
	if !method.IsSaleMethod() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidPaymentMethod, req.PaymentMethod)
	}
	clientID := nonEmpty(req.ClientID)
	if clientID == nil && method == domain.PaymentDebt {
		return nil, domain.ErrWalkInDebt
	}

	discount := decimal.Zero
	if req.DiscountAmount != nil {
		discount = *req.DiscountAmount
	}
	items, totals, err := domain.ComposeTotals(toCartItems(req.Items), discount, s.tax)
	if err != nil {
		return nil, err
	}

	tx, err := s.TxManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer s.rollback(ctx, tx)

	seq, err := s.sessionRepo.NextSaleSequenceInTx(ctx, tx, tenantID, req.SessionID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	invoiceID := uuid.NewString()
	for i := range items {
		items[i].InvoiceItemID = uuid.NewString()
		items[i].InvoiceID = invoiceID
	}
	notes := domain.TraceTag(req.SessionID, seq)
	if req.Notes != nil && strings.TrimSpace(*req.Notes) != "" {
		notes = strings.TrimSpace(*req.Notes) + " " + notes
	}
	sessionID := req.SessionID
	inv = &domain.Invoice{
		InvoiceID:      invoiceID,
		TenantID:       tenantID,
		ClientID:       clientID,
		ClientName:     req.ClientName,
		InvoiceNumber:  domain.POSInvoiceNumber(now, req.SessionID, seq),
		Status:         domain.InvoiceIssued,
		IssueDate:      now,
		Subtotal:       totals.Subtotal,
		DiscountAmount: totals.Discount,
		TaxAmount:      totals.Tax,
		TotalAmount:    totals.Total,
		CurrencyCode:   s.settings.currency(req.CurrencyCode),
		POSSessionID:   &sessionID,
		Notes:          notes,
		Items:          items,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	// Nothing to post: settle on the invoice itself. Walk-in debt was rejected above.
	settleDirectly := clientID == nil || !totals.Total.IsPositive()
	if settleDirectly {
		inv.Status = domain.InvoicePaid
		inv.PaidAt = &now
		inv.PaymentMethod = &method
	}
	if err := inv.Validate(); err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.SaveInvoiceInTx(ctx, tx, *inv); err != nil {
		s.LogError(ctx, err, "Failed to save sale invoice", slog.String("invoice_number", inv.InvoiceNumber))
		return nil, err
	}

	var posted []domain.LedgerEntry
	if !settleDirectly {
		receivable := domain.InvoicePostingEntry(inv, userID, now, s.settler.newID())
		charge := []domain.LedgerEntry{receivable}
		if err := s.settler.appendInTx(ctx, tx, tenantID, *clientID, inv.CurrencyCode, charge, now); err != nil {
			return nil, err
		}
		posted = append(posted, charge...)

		if method != domain.PaymentDebt {
			paymentSessionID := invoiceID
			if req.PaymentSessionID != nil && *req.PaymentSessionID != "" {
				paymentSessionID = *req.PaymentSessionID
			}
			payment := []domain.PaymentInput{{Amount: totals.Total, Method: method}}
			result, err := s.settler.payInTx(ctx, tx, inv, payment, paymentSessionID, userID, now)
			if err != nil {
				return nil, err
			}
			posted = append(posted, result.Entries...)
		}
	}

	if len(posted) > 0 {
		err = s.commitPosting(ctx, tx, entryIDs(posted))
	} else {
		err = s.TxManager.Commit(ctx, tx)
	}
	if err != nil {
		return nil, err
	}

	s.LogInfo(ctx, "Sale completed",
		slog.String("invoice_id", inv.InvoiceID),
		slog.String("invoice_number", inv.InvoiceNumber),
		slog.String("status", string(inv.Status)),
		slog.String("total", inv.TotalAmount.String()),
		slog.Int("ledger_entries", len(posted)))
	return inv, nil
}
