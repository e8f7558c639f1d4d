package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SscSPs/settlement_engine/internal/apperrors"
	"github.com/SscSPs/settlement_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/settlement_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/settlement_engine/internal/core/ports/services"
	"github.com/SscSPs/settlement_engine/internal/dto"
	"github.com/SscSPs/settlement_engine/internal/platform/telemetry"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
)

// ledgerService serves balance reads, manual postings and balance rebuilds.
type ledgerService struct {
	BaseService
	ledgerRepo  portsrepo.LedgerRepositoryFacade
	balanceRepo portsrepo.BalanceRepository
	invoiceRepo portsrepo.InvoiceRepositoryFacade
	settler     *settler
	settings    Settings
}

// NewLedgerService creates a new LedgerService.
func NewLedgerService(repos portsrepo.RepositoryProvider, settings Settings) portssvc.LedgerSvcFacade {
	return &ledgerService{
		BaseService: BaseService{TxManager: repos.TxManager, Now: settings.Now},
		ledgerRepo:  repos.LedgerRepo,
		balanceRepo: repos.BalanceRepo,
		invoiceRepo: repos.InvoiceRepo,
		settler:     newSettler(repos.LedgerRepo, repos.BalanceRepo, repos.InvoiceRepo, settings.Epsilon),
		settings:    settings,
	}
}

// AppendEntry posts a manual entry for a client. Payments are rejected here; they only
// enter the ledger through payment posting, which settles the invoice.
func (s *ledgerService) AppendEntry(ctx context.Context, tenantID, clientID string, req dto.CreateLedgerEntryRequest, userID string) (entry *domain.LedgerEntry, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "LedgerService", "AppendEntry",
		attribute.String("tenant_id", tenantID),
		attribute.String("client_id", clientID),
		attribute.String("entry_type", req.EntryType),
	)
	defer func() {
		telemetry.RecordError(span, err)
		span.End()
	}()

	entryType := domain.EntryType(req.EntryType)
	if entryType == domain.EntryPayment {
		return nil, fmt.Errorf("%w: payments must be posted against an invoice", domain.ErrInvalidEntry)
	}
	if clientID == "" {
		return nil, apperrors.NewValidationError("client id is required")
	}
	if (req.ReferenceType == nil) != (req.ReferenceID == nil) {
		return nil, apperrors.NewValidationError("referenceType and referenceID must be given together")
	}

	now := s.now()
	e := domain.LedgerEntry{
		EntryID:       s.settler.newID(),
		TenantID:      tenantID,
		ClientID:      clientID,
		EntryType:     entryType,
		ReferenceType: req.ReferenceType,
		ReferenceID:   req.ReferenceID,
		Amount:        req.Amount,
		Description:   req.Description,
		Metadata:      req.Metadata,
		CreatedBy:     userID,
		CreatedAt:     now,
	}
	if err := e.ValidateSign(); err != nil {
		return nil, err
	}

	tx, err := s.TxManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer s.rollback(ctx, tx)

	currency := s.settings.currency(req.CurrencyCode)
	if req.ReferenceType != nil && *req.ReferenceType == domain.ReferenceInvoice {
		// Lock so the posting is ordered with payments against the same invoice.
		inv, err := s.invoiceRepo.LockInvoiceInTx(ctx, tx, tenantID, *req.ReferenceID)
		if err != nil {
			return nil, err
		}
		if inv.IsWalkIn() {
			return nil, domain.ErrWalkInInvoice
		}
		if *inv.ClientID != clientID {
			return nil, apperrors.NewValidationError("invoice " + inv.InvoiceNumber + " belongs to another client")
		}
		if inv.Status == domain.InvoiceCancelled {
			return nil, fmt.Errorf("%w: invoice %s is cancelled", domain.ErrInvoiceNotPayable, inv.InvoiceNumber)
		}
		currency = inv.CurrencyCode
	}

	entries := []domain.LedgerEntry{e}
	if err := s.settler.appendInTx(ctx, tx, tenantID, clientID, currency, entries, now); err != nil {
		s.LogError(ctx, err, "Failed to append ledger entry", slog.String("client_id", clientID))
		return nil, err
	}
	if err := s.commitPosting(ctx, tx, entryIDs(entries)); err != nil {
		return nil, err
	}

	s.LogInfo(ctx, "Ledger entry appended",
		slog.String("entry_id", entries[0].EntryID),
		slog.String("client_id", clientID),
		slog.String("balance_after", entries[0].BalanceAfter.String()))
	return &entries[0], nil
}

// GetBalance returns the cached balance. A client that never had a posting owes nothing.
func (s *ledgerService) GetBalance(ctx context.Context, tenantID, clientID string) (*domain.CustomerBalance, error) {
	balance, err := s.balanceRepo.FindBalance(ctx, tenantID, clientID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return &domain.CustomerBalance{
			TenantID:     tenantID,
			ClientID:     clientID,
			Balance:      decimal.Zero,
			CurrencyCode: s.settings.currency(nil),
		}, nil
	}
	return balance, err
}

func (s *ledgerService) SumForClient(ctx context.Context, tenantID, clientID string, entryType *domain.EntryType) (decimal.Decimal, error) {
	return s.ledgerRepo.SumForClient(ctx, tenantID, clientID, entryType)
}

func (s *ledgerService) ListClientEntries(ctx context.Context, tenantID, clientID string, limit int, nextToken *string) ([]domain.LedgerEntry, *string, error) {
	return s.ledgerRepo.ListForClient(ctx, tenantID, clientID, limit, nextToken)
}

func (s *ledgerService) ListForReference(ctx context.Context, tenantID, referenceType, referenceID string) ([]domain.LedgerEntry, error) {
	return s.ledgerRepo.ListForReference(ctx, tenantID, referenceType, referenceID)
}

// RebuildBalance replays the client's ledger under the balance row lock and overwrites
// the cached value.
func (s *ledgerService) RebuildBalance(ctx context.Context, tenantID, clientID string) (rebuild *domain.BalanceRebuild, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "LedgerService", "RebuildBalance",
		attribute.String("tenant_id", tenantID),
		attribute.String("client_id", clientID),
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

	now := s.now()
	current, err := s.balanceRepo.LockBalanceInTx(ctx, tx, tenantID, clientID, s.settings.currency(nil), now)
	if err != nil {
		return nil, err
	}
	sum, count, err := s.ledgerRepo.ReplayClientInTx(ctx, tx, tenantID, clientID)
	if err != nil {
		return nil, err
	}
	if err := s.balanceRepo.SetBalanceInTx(ctx, tx, tenantID, clientID, sum, now); err != nil {
		return nil, err
	}
	if err := s.TxManager.Commit(ctx, tx); err != nil {
		return nil, err
	}

	rebuild = &domain.BalanceRebuild{
		TenantID:   tenantID,
		ClientID:   clientID,
		Previous:   current.Balance,
		Rebuilt:    sum,
		EntryCount: count,
	}
	if rebuild.Drifted() {
		s.GetLogger(ctx).Warn("Balance drift corrected",
			slog.String("client_id", clientID),
			slog.String("previous", rebuild.Previous.String()),
			slog.String("rebuilt", rebuild.Rebuilt.String()))
	}
	return rebuild, nil
}

// RebuildTenantBalances rebuilds each client in its own transaction and stops at the
// first failure.
func (s *ledgerService) RebuildTenantBalances(ctx context.Context, tenantID string) ([]domain.BalanceRebuild, error) {
	clientIDs, err := s.ledgerRepo.ListClientIDs(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	results := make([]domain.BalanceRebuild, 0, len(clientIDs))
	for _, clientID := range clientIDs {
		r, err := s.RebuildBalance(ctx, tenantID, clientID)
		if err != nil {
			return results, fmt.Errorf("rebuild stopped at client %s: %w", clientID, err)
		}
		results = append(results, *r)
	}
	s.LogInfo(ctx, "Tenant balances rebuilt", slog.String("tenant_id", tenantID), slog.Int("clients", len(results)))
	return results, nil
}
