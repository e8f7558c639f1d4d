package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/settlement_engine/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// POSSessionReader defines read operations for cash drawer sessions.
type POSSessionReader interface {
	FindSessionByID(ctx context.Context, tenantID, sessionID string) (*domain.POSSession, error)

	// FindOpenSession returns the open session of a branch; a nil branch is the tenant-wide drawer.
	FindOpenSession(ctx context.Context, tenantID string, branchID *string) (*domain.POSSession, error)
}

// POSSessionWriter defines write operations for cash drawer sessions.
type POSSessionWriter interface {
	// CreateSession inserts an open session. A second open session for the same branch
	// fails on the partial unique index with domain.ErrSessionAlreadyOpen.
	CreateSession(ctx context.Context, session domain.POSSession) error

	LockSessionInTx(ctx context.Context, tx pgx.Tx, tenantID, sessionID string) (*domain.POSSession, error)

	// NextSaleSequenceInTx atomically bumps the sale counter of an open session.
	NextSaleSequenceInTx(ctx context.Context, tx pgx.Tx, tenantID, sessionID string) (int, error)

	// CloseSessionInTx writes all terminal fields in one statement.
	CloseSessionInTx(ctx context.Context, tx pgx.Tx, session domain.POSSession) error

	// MarkReconciled moves a closed session to reconciled.
	MarkReconciled(ctx context.Context, tenantID, sessionID, reconciledBy string, at time.Time, notes *string) error
}

// POSSessionRepositoryFacade combines session read and write operations.
type POSSessionRepositoryFacade interface {
	POSSessionReader
	POSSessionWriter
}
