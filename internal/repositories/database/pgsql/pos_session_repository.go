package pgsql

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/SscSPs/settlement_engine/internal/apperrors"
	"github.com/SscSPs/settlement_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/settlement_engine/internal/core/ports/repositories"
	"github.com/SscSPs/settlement_engine/internal/models"
	"github.com/SscSPs/settlement_engine/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	sessionColumns = `
	session_id, tenant_id, branch_id, opened_by, closed_by, status, opening_cash, closing_cash,
	expected_cash, cash_variance, opened_at, closed_at, close_notes, sale_sequence, reconciled_by, reconciled_at`

	openSessionIndex = "uq_pos_sessions_one_open"
)

type PgxPOSSessionRepository struct {
	BaseRepository
}

// newPgxPOSSessionRepository creates a new repository for cash drawer sessions.
func newPgxPOSSessionRepository(pool *pgxpool.Pool) portsrepo.POSSessionRepositoryFacade {
	return &PgxPOSSessionRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.POSSessionRepositoryFacade = (*PgxPOSSessionRepository)(nil)

// CreateSession inserts an open session; the partial unique index rejects a second one.
func (r *PgxPOSSessionRepository) CreateSession(ctx context.Context, session domain.POSSession) error {
	m := mapping.ToModelPOSSession(session)
	query := `
		INSERT INTO pos_sessions (session_id, tenant_id, branch_id, opened_by, status, opening_cash, opened_at, sale_sequence)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 0);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.SessionID,
		m.TenantID,
		m.BranchID,
		m.OpenedBy,
		m.Status,
		m.OpeningCash,
		m.OpenedAt,
	)
	if err != nil {
		if isUniqueViolation(err, openSessionIndex) {
			return domain.ErrSessionAlreadyOpen
		}
		return mapPgError("failed to open cash session", err)
	}
	return nil
}

// FindSessionByID returns a session of the tenant.
func (r *PgxPOSSessionRepository) FindSessionByID(ctx context.Context, tenantID, sessionID string) (*domain.POSSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM pos_sessions WHERE tenant_id = $1 AND session_id = $2;`
	m, err := scanSession(r.Pool.QueryRow(ctx, query, tenantID, sessionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("cash session " + sessionID + " not found")
		}
		return nil, apperrors.NewAppError(http.StatusInternalServerError, "failed to find cash session "+sessionID, err)
	}
	session := mapping.ToDomainPOSSession(*m)
	return &session, nil
}

// FindOpenSession returns the open session of a branch.
func (r *PgxPOSSessionRepository) FindOpenSession(ctx context.Context, tenantID string, branchID *string) (*domain.POSSession, error) {
	query := `SELECT ` + sessionColumns + `
		FROM pos_sessions
		WHERE tenant_id = $1 AND COALESCE(branch_id, '') = COALESCE($2, '') AND status = 'open';
	`
	m, err := scanSession(r.Pool.QueryRow(ctx, query, tenantID, branchID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("no open cash session")
		}
		return nil, apperrors.NewAppError(http.StatusInternalServerError, "failed to find open cash session", err)
	}
	session := mapping.ToDomainPOSSession(*m)
	return &session, nil
}

// LockSessionInTx reads a session under a row lock.
func (r *PgxPOSSessionRepository) LockSessionInTx(ctx context.Context, tx pgx.Tx, tenantID, sessionID string) (*domain.POSSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM pos_sessions WHERE tenant_id = $1 AND session_id = $2 FOR UPDATE;`
	m, err := scanSession(tx.QueryRow(ctx, query, tenantID, sessionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("cash session " + sessionID + " not found")
		}
		return nil, mapPgError("failed to lock cash session "+sessionID, err)
	}
	session := mapping.ToDomainPOSSession(*m)
	return &session, nil
}

// NextSaleSequenceInTx increments and returns the session's sale counter. The row lock
// it takes also serializes sales against a concurrent close.
func (r *PgxPOSSessionRepository) NextSaleSequenceInTx(ctx context.Context, tx pgx.Tx, tenantID, sessionID string) (int, error) {
	query := `
		UPDATE pos_sessions
		SET sale_sequence = sale_sequence + 1
		WHERE tenant_id = $1 AND session_id = $2 AND status = 'open'
		RETURNING sale_sequence;
	`
	var seq int
	if err := tx.QueryRow(ctx, query, tenantID, sessionID).Scan(&seq); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrSessionNotOpen
		}
		return 0, mapPgError("failed to advance sale sequence for session "+sessionID, err)
	}
	return seq, nil
}

// CloseSessionInTx writes the terminal fields together, guarded on the session still being open.
func (r *PgxPOSSessionRepository) CloseSessionInTx(ctx context.Context, tx pgx.Tx, session domain.POSSession) error {
	m := mapping.ToModelPOSSession(session)
	query := `
		UPDATE pos_sessions
		SET status = 'closed',
		    closing_cash = $3,
		    expected_cash = $4,
		    cash_variance = $5,
		    closed_by = $6,
		    closed_at = $7,
		    close_notes = $8
		WHERE tenant_id = $1 AND session_id = $2 AND status = 'open';
	`
	cmdTag, err := tx.Exec(ctx, query,
		m.TenantID,
		m.SessionID,
		m.ClosingCash,
		m.ExpectedCash,
		m.CashVariance,
		m.ClosedBy,
		m.ClosedAt,
		m.CloseNotes,
	)
	if err != nil {
		return mapPgError("failed to close cash session "+m.SessionID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrSessionNotOpen
	}
	return nil
}

// MarkReconciled records the out-of-band reconciliation of a closed session.
func (r *PgxPOSSessionRepository) MarkReconciled(ctx context.Context, tenantID, sessionID, reconciledBy string, at time.Time, notes *string) error {
	query := `
		UPDATE pos_sessions
		SET status = 'reconciled',
		    reconciled_by = $3,
		    reconciled_at = $4,
		    close_notes = COALESCE($5, close_notes)
		WHERE tenant_id = $1 AND session_id = $2 AND status = 'closed';
	`
	cmdTag, err := r.Pool.Exec(ctx, query, tenantID, sessionID, reconciledBy, at, notes)
	if err != nil {
		return mapPgError("failed to reconcile cash session "+sessionID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		if _, findErr := r.FindSessionByID(ctx, tenantID, sessionID); findErr != nil {
			return findErr
		}
		return domain.ErrSessionNotClosed
	}
	return nil
}

func scanSession(row rowScanner) (*models.POSSession, error) {
	var m models.POSSession
	err := row.Scan(
		&m.SessionID,
		&m.TenantID,
		&m.BranchID,
		&m.OpenedBy,
		&m.ClosedBy,
		&m.Status,
		&m.OpeningCash,
		&m.ClosingCash,
		&m.ExpectedCash,
		&m.CashVariance,
		&m.OpenedAt,
		&m.ClosedAt,
		&m.CloseNotes,
		&m.SaleSequence,
		&m.ReconciledBy,
		&m.ReconciledAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
