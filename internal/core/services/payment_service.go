package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/SscSPs/settlement_engine/internal/apperrors"
	"github.com/SscSPs/settlement_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/settlement_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/settlement_engine/internal/core/ports/services"
	"github.com/SscSPs/settlement_engine/internal/dto"
	"github.com/SscSPs/settlement_engine/internal/platform/lock"
	"github.com/SscSPs/settlement_engine/internal/platform/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

// paymentService posts payment batches against invoices.
type paymentService struct {
	BaseService
	invoiceRepo portsrepo.InvoiceRepositoryFacade
	settler     *settler
	locker      lock.Locker
	lockTTL     time.Duration
}

// PaymentServiceOption configures a payment service.
type PaymentServiceOption func(*paymentService)

// WithInvoiceLocker sets the cross-instance lock taken before the invoice row lock.
func WithInvoiceLocker(locker lock.Locker, ttl time.Duration) PaymentServiceOption {
	return func(s *paymentService) {
		if locker != nil {
			s.locker = locker
		}
		if ttl > 0 {
			s.lockTTL = ttl
		}
	}
}

// NewPaymentService creates a new PaymentService.
func NewPaymentService(repos portsrepo.RepositoryProvider, settings Settings, opts ...PaymentServiceOption) portssvc.PaymentSvc {
	s := &paymentService{
		BaseService: BaseService{TxManager: repos.TxManager, Now: settings.Now},
		invoiceRepo: repos.InvoiceRepo,
		settler:     newSettler(repos.LedgerRepo, repos.BalanceRepo, repos.InvoiceRepo, settings.Epsilon),
		locker:      lock.NoopLocker{},
		lockTTL:     10 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ portssvc.PaymentSvc = (*paymentService)(nil)

// PostPayments appends one ledger entry per payment and settles the invoice, all in one
// transaction behind the invoice row lock. A batch whose payment session id was already
// posted for this invoice is answered from the ledger without writing anything.
func (s *paymentService) PostPayments(ctx context.Context, tenantID, invoiceID string, req dto.PostPaymentsRequest, userID string) (result *domain.PaymentResult, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "PaymentService", "PostPayments",
		attribute.String("tenant_id", tenantID),
		attribute.String("invoice_id", invoiceID),
		attribute.String("payment_session_id", req.PaymentSessionID),
	)
	defer func() {
		telemetry.RecordError(span, err)
		span.End()
	}()

	if req.PaymentSessionID == "" {
		return nil, apperrors.NewValidationError("paymentSessionID is required")
	}
	payments := req.ToPaymentInputs()
	if err := domain.ValidatePayments(payments); err != nil {
		return nil, err
	}

	held, err := s.locker.Obtain(ctx, lock.InvoicePaymentKey(tenantID, invoiceID), s.lockTTL)
	switch {
	case errors.Is(err, lock.ErrNotObtained):
		return nil, domain.ErrInvoiceBusy
	case err != nil:
		// The row lock below still serializes writers; only the early shedding is lost.
		s.GetLogger(ctx).Warn("Invoice lock unavailable, relying on row lock",
			slog.String("invoice_id", invoiceID), slog.String("error", err.Error()))
	default:
		defer func() {
			if relErr := held.Release(context.WithoutCancel(ctx)); relErr != nil {
				s.LogError(ctx, relErr, "Failed to release invoice lock", slog.String("invoice_id", invoiceID))
			}
		}()
	}

	tx, err := s.TxManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer s.rollback(ctx, tx)

	inv, err := s.invoiceRepo.LockInvoiceInTx(ctx, tx, tenantID, invoiceID)
	if err != nil {
		return nil, err
	}

	result, err = s.settler.payInTx(ctx, tx, inv, payments, req.PaymentSessionID, userID, s.now())
	if err != nil {
		if !errors.Is(err, apperrors.ErrValidation) {
			s.LogError(ctx, err, "Payment posting failed", slog.String("invoice_id", invoiceID))
		}
		return nil, err
	}

	if result.Replayed {
		if err := s.TxManager.Commit(ctx, tx); err != nil {
			return nil, err
		}
		s.LogInfo(ctx, "Payment batch replayed",
			slog.String("invoice_id", invoiceID),
			slog.String("payment_session_id", req.PaymentSessionID))
		return result, nil
	}

	if err := s.commitPosting(ctx, tx, entryIDs(result.Entries)); err != nil {
		return nil, err
	}

	s.LogInfo(ctx, "Payments posted",
		slog.String("invoice_id", invoiceID),
		slog.Int("payments", len(result.Entries)),
		slog.String("status", string(result.InvoiceStatus)),
		slog.String("outstanding", result.OutstandingAmount.String()))
	return result, nil
}
