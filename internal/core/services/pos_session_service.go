package services

import (
	"context"
	"log/slog"

	"github.com/SscSPs/settlement_engine/internal/apperrors"
	"github.com/SscSPs/settlement_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/settlement_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/settlement_engine/internal/core/ports/services"
	"github.com/SscSPs/settlement_engine/internal/dto"
	"github.com/SscSPs/settlement_engine/internal/platform/telemetry"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

// posSessionService manages cash drawer sessions.
type posSessionService struct {
	BaseService
	sessionRepo portsrepo.POSSessionRepositoryFacade
	invoiceRepo portsrepo.InvoiceRepositoryFacade
}

// NewPOSSessionService creates a new POSSessionService.
func NewPOSSessionService(repos portsrepo.RepositoryProvider, settings Settings) portssvc.POSSessionSvcFacade {
	return &posSessionService{
		BaseService: BaseService{TxManager: repos.TxManager, Now: settings.Now},
		sessionRepo: repos.POSSessionRepo,
		invoiceRepo: repos.InvoiceRepo,
	}
}

// OpenSession opens a drawer. Only one session per tenant and branch may be open.
func (s *posSessionService) OpenSession(ctx context.Context, tenantID string, req dto.OpenSessionRequest, userID string) (*domain.POSSession, error) {
	if req.OpeningCash.IsNegative() {
		return nil, apperrors.NewValidationError("openingCash must not be negative")
	}
	if !domain.FitsMoneyScale(req.OpeningCash) {
		return nil, apperrors.NewValidationError("openingCash has too many decimal places")
	}
	session := domain.POSSession{
		SessionID:   uuid.NewString(),
		TenantID:    tenantID,
		BranchID:    nonEmpty(req.BranchID),
		OpenedBy:    userID,
		Status:      domain.SessionOpen,
		OpeningCash: req.OpeningCash,
		OpenedAt:    s.now(),
	}
	if err := s.sessionRepo.CreateSession(ctx, session); err != nil {
		return nil, err
	}
	s.LogInfo(ctx, "Cash session opened",
		slog.String("session_id", session.SessionID),
		slog.String("opening_cash", session.OpeningCash.String()))
	return &session, nil
}

// CloseSession counts the drawer against opening cash plus cash sales and records the
// variance. A variance never blocks the close.
func (s *posSessionService) CloseSession(ctx context.Context, tenantID, sessionID string, req dto.CloseSessionRequest, userID string) (session *domain.POSSession, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "POSSessionService", "CloseSession",
		attribute.String("tenant_id", tenantID),
		attribute.String("session_id", sessionID),
	)
	defer func() {
		telemetry.RecordError(span, err)
		span.End()
	}()

	if req.ActualCash.IsNegative() {
		return nil, apperrors.NewValidationError("actualCash must not be negative")
	}
	if !domain.FitsMoneyScale(req.ActualCash) {
		return nil, apperrors.NewValidationError("actualCash has too many decimal places")
	}

	tx, err := s.TxManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer s.rollback(ctx, tx)

	session, err = s.sessionRepo.LockSessionInTx(ctx, tx, tenantID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != domain.SessionOpen {
		return nil, domain.ErrSessionNotOpen
	}

	cashSales, err := s.invoiceRepo.SumCashSalesInTx(ctx, tx, tenantID, sessionID)
	if err != nil {
		return nil, err
	}
	summary := domain.ComputeClose(session.OpeningCash, cashSales, req.ActualCash)

	now := s.now()
	session.Status = domain.SessionClosed
	session.ClosingCash = &summary.ClosingCash
	session.ExpectedCash = &summary.ExpectedCash
	session.CashVariance = &summary.CashVariance
	session.ClosedBy = &userID
	session.ClosedAt = &now
	session.CloseNotes = req.Notes

	if err := s.sessionRepo.CloseSessionInTx(ctx, tx, *session); err != nil {
		return nil, err
	}
	if err := s.TxManager.Commit(ctx, tx); err != nil {
		return nil, err
	}

	logger := s.GetLogger(ctx)
	if !summary.CashVariance.IsZero() {
		logger.Warn("Cash session closed with variance",
			slog.String("session_id", sessionID),
			slog.String("expected_cash", summary.ExpectedCash.String()),
			slog.String("closing_cash", summary.ClosingCash.String()),
			slog.String("variance", summary.CashVariance.String()))
	} else {
		logger.Info("Cash session closed", slog.String("session_id", sessionID))
	}
	return session, nil
}

// ReconcileSession marks a closed session as reconciled.
func (s *posSessionService) ReconcileSession(ctx context.Context, tenantID, sessionID string, req dto.ReconcileSessionRequest, userID string) (*domain.POSSession, error) {
	if err := s.sessionRepo.MarkReconciled(ctx, tenantID, sessionID, userID, s.now(), req.Notes); err != nil {
		return nil, err
	}
	return s.sessionRepo.FindSessionByID(ctx, tenantID, sessionID)
}

func (s *posSessionService) GetSession(ctx context.Context, tenantID, sessionID string) (*domain.POSSession, error) {
	return s.sessionRepo.FindSessionByID(ctx, tenantID, sessionID)
}

func (s *posSessionService) GetOpenSession(ctx context.Context, tenantID string, branchID *string) (*domain.POSSession, error) {
	return s.sessionRepo.FindOpenSession(ctx, tenantID, nonEmpty(branchID))
}
