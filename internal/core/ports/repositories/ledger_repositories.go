package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/settlement_engine/internal/core/domain"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// LedgerReader defines read operations on the append-only ledger. Every call hits the
// table; nothing is cached at this layer.
type LedgerReader interface {
	// SumForClient returns the sum of signed amounts for a client, optionally restricted to one entry type.
	SumForClient(ctx context.Context, tenantID, clientID string, entryType *domain.EntryType) (decimal.Decimal, error)

	// ListForReference returns entries referencing a document, in creation order.
	ListForReference(ctx context.Context, tenantID, referenceType, referenceID string) ([]domain.LedgerEntry, error)

	// ListForClient returns a client's entries newest first using token-based pagination.
	ListForClient(ctx context.Context, tenantID, clientID string, limit int, nextToken *string) ([]domain.LedgerEntry, *string, error)

	// ListClientIDs returns every client of a tenant that has at least one entry or a cached balance.
	ListClientIDs(ctx context.Context, tenantID string) ([]string, error)
}

// LedgerWriter defines the transactional ledger operations. Callers own the transaction.
type LedgerWriter interface {
	// AppendEntriesInTx inserts entries as one batch. BalanceAfter must already be stamped.
	AppendEntriesInTx(ctx context.Context, tx pgx.Tx, entries []domain.LedgerEntry) error

	// ListForReferenceInTx is ListForReference inside the caller's transaction.
	ListForReferenceInTx(ctx context.Context, tx pgx.Tx, tenantID, referenceType, referenceID string) ([]domain.LedgerEntry, error)

	// FindByPaymentSessionInTx returns the entries previously written for a payment batch.
	FindByPaymentSessionInTx(ctx context.Context, tx pgx.Tx, tenantID, paymentSessionID string) ([]domain.LedgerEntry, error)

	// ReplayClientInTx returns the full signed sum and entry count for a client.
	ReplayClientInTx(ctx context.Context, tx pgx.Tx, tenantID, clientID string) (decimal.Decimal, int, error)
}

// LedgerRepositoryFacade combines ledger read and write operations.
type LedgerRepositoryFacade interface {
	LedgerReader
	LedgerWriter
}

// BalanceRepository defines operations on the materialized customer balance cache.
type BalanceRepository interface {
	// FindBalance returns the cached balance, or apperrors.ErrNotFound if the client never had a posting.
	FindBalance(ctx context.Context, tenantID, clientID string) (*domain.CustomerBalance, error)

	// LockBalanceInTx creates the balance row if missing and locks it FOR UPDATE.
	LockBalanceInTx(ctx context.Context, tx pgx.Tx, tenantID, clientID, currencyCode string, now time.Time) (*domain.CustomerBalance, error)

	// SetBalanceInTx writes the new balance of a row locked by LockBalanceInTx.
	SetBalanceInTx(ctx context.Context, tx pgx.Tx, tenantID, clientID string, balance decimal.Decimal, now time.Time) error
}
