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
	"github.com/shopspring/decimal"
)

type PgxBalanceRepository struct {
	BaseRepository
}

// newPgxBalanceRepository creates a new repository for the customer balance cache.
func newPgxBalanceRepository(pool *pgxpool.Pool) portsrepo.BalanceRepository {
	return &PgxBalanceRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.BalanceRepository = (*PgxBalanceRepository)(nil)

// FindBalance reads the cached balance without locking.
func (r *PgxBalanceRepository) FindBalance(ctx context.Context, tenantID, clientID string) (*domain.CustomerBalance, error) {
	query := `
		SELECT tenant_id, client_id, balance, currency_code, last_updated
		FROM customer_balances
		WHERE tenant_id = $1 AND client_id = $2;
	`
	var m models.CustomerBalance
	err := r.Pool.QueryRow(ctx, query, tenantID, clientID).Scan(
		&m.TenantID,
		&m.ClientID,
		&m.Balance,
		&m.CurrencyCode,
		&m.LastUpdated,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(http.StatusInternalServerError, "failed to find balance for client "+clientID, err)
	}
	balance := mapping.ToDomainCustomerBalance(m)
	return &balance, nil
}

// LockBalanceInTx makes sure the row exists and then takes its row lock, so every
// writer for the same client queues behind the first one.
func (r *PgxBalanceRepository) LockBalanceInTx(ctx context.Context, tx pgx.Tx, tenantID, clientID, currencyCode string, now time.Time) (*domain.CustomerBalance, error) {
	insert := `
		INSERT INTO customer_balances (tenant_id, client_id, balance, currency_code, last_updated)
		VALUES ($1, $2, 0, $3, $4)
		ON CONFLICT (tenant_id, client_id) DO NOTHING;
	`
	if _, err := tx.Exec(ctx, insert, tenantID, clientID, currencyCode, now); err != nil {
		return nil, mapPgError("failed to initialise balance for client "+clientID, err)
	}

	query := `
		SELECT tenant_id, client_id, balance, currency_code, last_updated
		FROM customer_balances
		WHERE tenant_id = $1 AND client_id = $2
		FOR UPDATE;
	`
	var m models.CustomerBalance
	err := tx.QueryRow(ctx, query, tenantID, clientID).Scan(
		&m.TenantID,
		&m.ClientID,
		&m.Balance,
		&m.CurrencyCode,
		&m.LastUpdated,
	)
	if err != nil {
		return nil, mapPgError("failed to lock balance for client "+clientID, err)
	}
	balance := mapping.ToDomainCustomerBalance(m)
	return &balance, nil
}

// SetBalanceInTx overwrites the cached balance.
func (r *PgxBalanceRepository) SetBalanceInTx(ctx context.Context, tx pgx.Tx, tenantID, clientID string, balance decimal.Decimal, now time.Time) error {
	query := `
		UPDATE customer_balances
		SET balance = $3, last_updated = $4
		WHERE tenant_id = $1 AND client_id = $2;
	`
	cmdTag, err := tx.Exec(ctx, query, tenantID, clientID, balance, now)
	if err != nil {
		return mapPgError("failed to update balance for client "+clientID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("balance row for client " + clientID + " not found for update")
	}
	return nil
}
