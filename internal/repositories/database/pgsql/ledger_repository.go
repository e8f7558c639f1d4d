package pgsql

import (
	"context"
	"net/http"
	"strconv"

	"github.com/SscSPs/settlement_engine/internal/apperrors"
	"github.com/SscSPs/settlement_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/settlement_engine/internal/core/ports/repositories"
	"github.com/SscSPs/settlement_engine/internal/models"
	"github.com/SscSPs/settlement_engine/internal/utils/mapping"
	"github.com/SscSPs/settlement_engine/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const ledgerColumns = `
	seq, entry_id, tenant_id, client_id, entry_type, reference_type, reference_id, amount, balance_after,
	payment_method, payment_session_id, payment_ordinal, description, metadata, created_by, created_at`

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type PgxLedgerRepository struct {
	BaseRepository
}

// newPgxLedgerRepository creates a new repository for ledger entries.
func newPgxLedgerRepository(pool *pgxpool.Pool) portsrepo.LedgerRepositoryFacade {
	return &PgxLedgerRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.LedgerRepositoryFacade = (*PgxLedgerRepository)(nil)

// AppendEntriesInTx queues one insert per entry and sends them as a single batch.
func (r *PgxLedgerRepository) AppendEntriesInTx(ctx context.Context, tx pgx.Tx, entries []domain.LedgerEntry) error {
	if len(entries) == 0 {
		return nil
	}
	query := `
		INSERT INTO ledger_entries (
			entry_id, tenant_id, client_id, entry_type, reference_type, reference_id, amount, balance_after,
			payment_method, payment_session_id, payment_ordinal, description, metadata, created_by, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15);
	`
	batch := &pgx.Batch{}
	for _, entry := range entries {
		m, err := mapping.ToModelLedgerEntry(entry)
		if err != nil {
			return apperrors.NewAppError(http.StatusBadRequest, "invalid ledger entry metadata", err)
		}
		batch.Queue(query,
			m.EntryID,
			m.TenantID,
			m.ClientID,
			m.EntryType,
			m.ReferenceType,
			m.ReferenceID,
			m.Amount,
			m.BalanceAfter,
			m.PaymentMethod,
			m.PaymentSessionID,
			m.PaymentOrdinal,
			m.Description,
			m.Metadata,
			m.CreatedBy,
			m.CreatedAt,
		)
	}

	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return mapPgError("failed to append ledger entries", err)
	}
	return nil
}

// SumForClient sums committed entries for a client.
func (r *PgxLedgerRepository) SumForClient(ctx context.Context, tenantID, clientID string, entryType *domain.EntryType) (decimal.Decimal, error) {
	query := `SELECT COALESCE(SUM(amount), 0) FROM ledger_entries WHERE tenant_id = $1 AND client_id = $2`
	args := []any{tenantID, clientID}
	if entryType != nil {
		query += ` AND entry_type = $3`
		args = append(args, string(*entryType))
	}

	var sum decimal.Decimal
	if err := r.Pool.QueryRow(ctx, query, args...).Scan(&sum); err != nil {
		return decimal.Zero, apperrors.NewAppError(http.StatusInternalServerError, "failed to sum ledger for client "+clientID, err)
	}
	return sum, nil
}

// ListForReference returns the entries for a referenced document.
func (r *PgxLedgerRepository) ListForReference(ctx context.Context, tenantID, referenceType, referenceID string) ([]domain.LedgerEntry, error) {
	return r.listForReference(ctx, r.Pool, tenantID, referenceType, referenceID)
}

// ListForReferenceInTx returns the entries for a referenced document inside tx.
func (r *PgxLedgerRepository) ListForReferenceInTx(ctx context.Context, tx pgx.Tx, tenantID, referenceType, referenceID string) ([]domain.LedgerEntry, error) {
	return r.listForReference(ctx, tx, tenantID, referenceType, referenceID)
}

func (r *PgxLedgerRepository) listForReference(ctx context.Context, q querier, tenantID, referenceType, referenceID string) ([]domain.LedgerEntry, error) {
	query := `SELECT ` + ledgerColumns + `
		FROM ledger_entries
		WHERE tenant_id = $1 AND reference_type = $2 AND reference_id = $3
		ORDER BY seq;
	`
	rows, err := q.Query(ctx, query, tenantID, referenceType, referenceID)
	if err != nil {
		return nil, apperrors.NewAppError(http.StatusInternalServerError, "failed to query ledger for "+referenceType+" "+referenceID, err)
	}
	entries, err := scanLedgerRows(rows)
	if err != nil {
		return nil, err
	}
	return mapping.ToDomainLedgerEntrySlice(entries), nil
}

// FindByPaymentSessionInTx returns the entries of an earlier batch, ordered by ordinal.
func (r *PgxLedgerRepository) FindByPaymentSessionInTx(ctx context.Context, tx pgx.Tx, tenantID, paymentSessionID string) ([]domain.LedgerEntry, error) {
	query := `SELECT ` + ledgerColumns + `
		FROM ledger_entries
		WHERE tenant_id = $1 AND payment_session_id = $2
		ORDER BY payment_ordinal;
	`
	rows, err := tx.Query(ctx, query, tenantID, paymentSessionID)
	if err != nil {
		return nil, apperrors.NewAppError(http.StatusInternalServerError, "failed to query payment session "+paymentSessionID, err)
	}
	entries, err := scanLedgerRows(rows)
	if err != nil {
		return nil, err
	}
	return mapping.ToDomainLedgerEntrySlice(entries), nil
}

// ReplayClientInTx sums every entry of a client.
func (r *PgxLedgerRepository) ReplayClientInTx(ctx context.Context, tx pgx.Tx, tenantID, clientID string) (decimal.Decimal, int, error) {
	query := `SELECT COALESCE(SUM(amount), 0), COUNT(*) FROM ledger_entries WHERE tenant_id = $1 AND client_id = $2`
	var sum decimal.Decimal
	var count int
	if err := tx.QueryRow(ctx, query, tenantID, clientID).Scan(&sum, &count); err != nil {
		return decimal.Zero, 0, apperrors.NewAppError(http.StatusInternalServerError, "failed to replay ledger for client "+clientID, err)
	}
	return sum, count, nil
}

// ListForClient retrieves a paginated list of entries for a client, newest first.
// It returns the entries, a token for the next page, and an error.
func (r *PgxLedgerRepository) ListForClient(ctx context.Context, tenantID, clientID string, limit int, nextToken *string) ([]domain.LedgerEntry, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	// One extra row tells us whether a next page exists.
	fetchLimit := limit + 1

	query := `SELECT ` + ledgerColumns + `
		FROM ledger_entries
		WHERE tenant_id = $1 AND client_id = $2`
	args := []any{tenantID, clientID}

	if nextToken != nil && *nextToken != "" {
		lastCreatedAt, lastSeq, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(http.StatusBadRequest, "invalid nextToken", decodeErr)
		}
		query += ` AND (created_at, seq) < ($3, $4)`
		args = append(args, lastCreatedAt, lastSeq)
	}
	query += ` ORDER BY created_at DESC, seq DESC LIMIT $` + strconv.Itoa(len(args)+1)
	args = append(args, fetchLimit)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, apperrors.NewAppError(http.StatusInternalServerError, "failed to query ledger for client "+clientID, err)
	}
	entries, err := scanLedgerRows(rows)
	if err != nil {
		return nil, nil, err
	}

	var nextTokenVal *string
	if len(entries) > limit {
		last := entries[limit-1]
		token := pagination.EncodeToken(last.CreatedAt, last.Seq)
		nextTokenVal = &token
		entries = entries[:limit]
	}
	return mapping.ToDomainLedgerEntrySlice(entries), nextTokenVal, nil
}

// ListClientIDs returns clients with ledger rows or a cached balance, so drift in
// either direction is visible to a rebuild.
func (r *PgxLedgerRepository) ListClientIDs(ctx context.Context, tenantID string) ([]string, error) {
	query := `
		SELECT client_id FROM ledger_entries WHERE tenant_id = $1
		UNION
		SELECT client_id FROM customer_balances WHERE tenant_id = $1
		ORDER BY client_id;
	`
	rows, err := r.Pool.Query(ctx, query, tenantID)
	if err != nil {
		return nil, apperrors.NewAppError(http.StatusInternalServerError, "failed to list ledger clients for tenant "+tenantID, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, apperrors.NewAppError(http.StatusInternalServerError, "failed to scan ledger client id", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(http.StatusInternalServerError, "error iterating ledger client ids", err)
	}
	return ids, nil
}

func scanLedgerRows(rows pgx.Rows) ([]models.LedgerEntry, error) {
	defer rows.Close()

	entries := []models.LedgerEntry{}
	for rows.Next() {
		var m models.LedgerEntry
		err := rows.Scan(
			&m.Seq,
			&m.EntryID,
			&m.TenantID,
			&m.ClientID,
			&m.EntryType,
			&m.ReferenceType,
			&m.ReferenceID,
			&m.Amount,
			&m.BalanceAfter,
			&m.PaymentMethod,
			&m.PaymentSessionID,
			&m.PaymentOrdinal,
			&m.Description,
			&m.Metadata,
			&m.CreatedBy,
			&m.CreatedAt,
		)
		if err != nil {
			return nil, apperrors.NewAppError(http.StatusInternalServerError, "failed to scan ledger entry row", err)
		}
		entries = append(entries, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(http.StatusInternalServerError, "error iterating ledger entry rows", err)
	}
	return entries, nil
}
