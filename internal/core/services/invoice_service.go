package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SscSPs/settlement_engine/internal/apperrors"
	"github.com/SscSPs/settlement_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/settlement_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/settlement_engine/internal/core/ports/services"
	"github.com/SscSPs/settlement_engine/internal/dto"
	"github.com/SscSPs/settlement_engine/internal/platform/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
)

// invoiceService handles manual billing: drafting, issuing, cancelling and reading invoices.
type invoiceService struct {
	BaseService
	invoiceRepo portsrepo.InvoiceRepositoryFacade
	ledgerRepo  portsrepo.LedgerReader
	settings    Settings
	tax         domain.TaxCalculator
}

// InvoiceServiceOption configures an invoice service.
type InvoiceServiceOption func(*invoiceService)

// WithInvoiceTaxCalculator sets the tax applied to drafted invoices.
func WithInvoiceTaxCalculator(tax domain.TaxCalculator) InvoiceServiceOption {
	return func(s *invoiceService) {
		if tax != nil {
			s.tax = tax
		}
	}
}

// NewInvoiceService creates a new InvoiceService.
func NewInvoiceService(repos portsrepo.RepositoryProvider, settings Settings, opts ...InvoiceServiceOption) portssvc.InvoiceSvcFacade {
	s := &invoiceService{
		BaseService: BaseService{TxManager: repos.TxManager, Now: settings.Now},
		invoiceRepo: repos.InvoiceRepo,
		ledgerRepo:  repos.LedgerRepo,
		settings:    settings,
		tax:         domain.ZeroTax{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateInvoice stores a draft. Drafts carry no ledger postings.
func (s *invoiceService) CreateInvoice(ctx context.Context, tenantID string, req dto.CreateInvoiceRequest, userID string) (invoice *domain.Invoice, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "InvoiceService", "CreateInvoice", attribute.String("tenant_id", tenantID))
	defer func() {
		telemetry.RecordError(span, err)
		span.End()
	}()

	discount := decimal.Zero
	if req.DiscountAmount != nil {
		discount = *req.DiscountAmount
	}
	items, totals, err := domain.ComposeTotals(toCartItems(req.Items), discount, s.tax)
	if err != nil {
		return nil, err
	}

	now := s.now()
	invoiceID := uuid.NewString()
	number := fmt.Sprintf("INV-%s-%s", now.Format("20060102"), strings.ToUpper(invoiceID[:8]))
	if req.InvoiceNumber != nil && *req.InvoiceNumber != "" {
		number = *req.InvoiceNumber
	}
	issueDate := now
	if req.IssueDate != nil {
		issueDate = req.IssueDate.UTC()
	}
	if req.DueDate != nil && req.DueDate.Before(issueDate) {
		return nil, apperrors.NewValidationError("dueDate must not be before issueDate")
	}
	for i := range items {
		items[i].InvoiceItemID = uuid.NewString()
		items[i].InvoiceID = invoiceID
	}

	inv := domain.Invoice{
		InvoiceID:      invoiceID,
		TenantID:       tenantID,
		ClientID:       nonEmpty(req.ClientID),
		ClientName:     req.ClientName,
		InvoiceNumber:  number,
		Status:         domain.InvoiceDraft,
		IssueDate:      issueDate,
		DueDate:        req.DueDate,
		Subtotal:       totals.Subtotal,
		DiscountAmount: totals.Discount,
		TaxAmount:      totals.Tax,
		TotalAmount:    totals.Total,
		CurrencyCode:   s.settings.currency(req.CurrencyCode),
		Items:          items,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}
	if req.Notes != nil {
		inv.Notes = *req.Notes
	}
	if err := inv.Validate(); err != nil {
		return nil, err
	}

	tx, err := s.TxManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer s.rollback(ctx, tx)

	if err := s.invoiceRepo.SaveInvoiceInTx(ctx, tx, inv); err != nil {
		s.LogError(ctx, err, "Failed to save invoice", slog.String("invoice_number", number))
		return nil, err
	}
	if err := s.TxManager.Commit(ctx, tx); err != nil {
		return nil, err
	}

	s.LogInfo(ctx, "Invoice drafted", slog.String("invoice_id", invoiceID), slog.String("invoice_number", number))
	return &inv, nil
}

// IssueInvoice moves a draft to issued.
func (s *invoiceService) IssueInvoice(ctx context.Context, tenantID, invoiceID, userID string) (*domain.Invoice, error) {
	return s.transition(ctx, tenantID, invoiceID, domain.InvoiceIssued, userID)
}

// CancelInvoice stops further payments. Paid invoices cannot be cancelled.
func (s *invoiceService) CancelInvoice(ctx context.Context, tenantID, invoiceID, userID string) (*domain.Invoice, error) {
	return s.transition(ctx, tenantID, invoiceID, domain.InvoiceCancelled, userID)
}

func (s *invoiceService) transition(ctx context.Context, tenantID, invoiceID string, next domain.InvoiceStatus, userID string) (inv *domain.Invoice, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "InvoiceService", "Transition",
		attribute.String("tenant_id", tenantID),
		attribute.String("invoice_id", invoiceID),
		attribute.String("next_status", string(next)),
	)
	defer func() {
		telemetry.RecordError(span, err)
		span.End()
	}()

	tx, err := s.TxManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer s.rollback(ctx, tx)

	inv, err = s.invoiceRepo.LockInvoiceInTx(ctx, tx, tenantID, invoiceID)
	if err != nil {
		return nil, err
	}
	if !inv.Status.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w: %s to %s for invoice %s", domain.ErrInvalidTransition, inv.Status, next, inv.InvoiceNumber)
	}

	now := s.now()
	inv.Status = next
	inv.LastUpdatedAt = now
	inv.LastUpdatedBy = userID
	if err := s.invoiceRepo.UpdateInvoiceStatusInTx(ctx, tx, *inv); err != nil {
		return nil, err
	}
	if err := s.TxManager.Commit(ctx, tx); err != nil {
		return nil, err
	}

	s.LogInfo(ctx, "Invoice status changed", slog.String("invoice_id", invoiceID), slog.String("status", string(next)))
	return inv, nil
}

// GetInvoice returns the invoice with paid and outstanding amounts summed from the
// ledger, and overdue projected from the due date.
func (s *invoiceService) GetInvoice(ctx context.Context, tenantID, invoiceID string) (*domain.InvoiceView, error) {
	inv, err := s.invoiceRepo.FindInvoiceByID(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, err
	}
	entries, err := s.ledgerRepo.ListForReference(ctx, tenantID, domain.ReferenceInvoice, invoiceID)
	if err != nil {
		return nil, err
	}
	paid, _ := domain.PaidFromEntries(invoiceID, entries)
	return &domain.InvoiceView{
		Invoice:       *inv,
		PaidAmount:    paid,
		Outstanding:   inv.Outstanding(paid),
		DisplayStatus: inv.DisplayStatus(s.now(), paid, s.settings.Epsilon),
	}, nil
}

func toCartItems(items []dto.CartItemRequest) []domain.CartItem {
	cart := make([]domain.CartItem, len(items))
	for i, it := range items {
		cart[i] = domain.CartItem{
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			TotalPrice:  it.TotalPrice,
			EntityType:  it.EntityType,
			EntityID:    it.EntityID,
		}
	}
	return cart
}

func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
