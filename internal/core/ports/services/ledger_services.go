package services

import (
	"context"

	"github.com/SscSPs/settlement_engine/internal/core/domain"
	"github.com/SscSPs/settlement_engine/internal/dto"
	"github.com/shopspring/decimal"
)

// LedgerReaderSvc defines read operations over the ledger and the balance cache.
type LedgerReaderSvc interface {
	// GetBalance returns the cached balance of a client; a client without postings has a zero balance.
	GetBalance(ctx context.Context, tenantID, clientID string) (*domain.CustomerBalance, error)

	// SumForClient sums the ledger directly, optionally for one entry type.
	SumForClient(ctx context.Context, tenantID, clientID string, entryType *domain.EntryType) (decimal.Decimal, error)

	// ListClientEntries returns a page of a client's entries, newest first.
	ListClientEntries(ctx context.Context, tenantID, clientID string, limit int, nextToken *string) ([]domain.LedgerEntry, *string, error)

	// ListForReference returns the entries that reference a document.
	ListForReference(ctx context.Context, tenantID, referenceType, referenceID string) ([]domain.LedgerEntry, error)
}

// LedgerWriterSvc defines ledger mutations that do not go through payment posting.
type LedgerWriterSvc interface {
	// AppendEntry posts a manual invoice, credit or adjustment entry.
	AppendEntry(ctx context.Context, tenantID, clientID string, req dto.CreateLedgerEntryRequest, userID string) (*domain.LedgerEntry, error)

	// RebuildBalance replays a client's ledger into its cached balance.
	RebuildBalance(ctx context.Context, tenantID, clientID string) (*domain.BalanceRebuild, error)

	// RebuildTenantBalances replays every client of a tenant.
	RebuildTenantBalances(ctx context.Context, tenantID string) ([]domain.BalanceRebuild, error)
}

// LedgerSvcFacade combines all ledger service operations.
type LedgerSvcFacade interface {
	LedgerReaderSvc
	LedgerWriterSvc
}
