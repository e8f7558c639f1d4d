package pgsql

import (
	portsrepo "github.com/SscSPs/settlement_engine/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewRepositoryProvider wires every pgx repository around one pool.
func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		TxManager:      &BaseRepository{Pool: dbPool},
		LedgerRepo:     newPgxLedgerRepository(dbPool),
		BalanceRepo:    newPgxBalanceRepository(dbPool),
		InvoiceRepo:    newPgxInvoiceRepository(dbPool),
		POSSessionRepo: newPgxPOSSessionRepository(dbPool),
	}
}
