package services

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/settlement_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/settlement_engine/internal/core/ports/repositories"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// settler holds the in-transaction posting steps shared by the payment, sale and
// ledger services. It never begins or commits; callers own the tx.
type settler struct {
	ledgerRepo  portsrepo.LedgerRepositoryFacade
	balanceRepo portsrepo.BalanceRepository
	invoiceRepo portsrepo.InvoiceRepositoryFacade
	epsilon     decimal.Decimal
	newID       func() string
}

func newSettler(ledgerRepo portsrepo.LedgerRepositoryFacade, balanceRepo portsrepo.BalanceRepository, invoiceRepo portsrepo.InvoiceRepositoryFacade, epsilon decimal.Decimal) *settler {
	if epsilon.IsNegative() {
		epsilon = domain.DefaultEpsilon
	}
	return &settler{
		ledgerRepo:  ledgerRepo,
		balanceRepo: balanceRepo,
		invoiceRepo: invoiceRepo,
		epsilon:     epsilon,
		newID:       uuid.NewString,
	}
}

// appendInTx locks the client's balance row, stamps balance_after on each entry in
// order, appends them and writes the final balance.
func (st *settler) appendInTx(ctx context.Context, tx pgx.Tx, tenantID, clientID, currencyCode string, entries []domain.LedgerEntry, now time.Time) error {
	for i := range entries {
		if err := entries[i].ValidateSign(); err != nil {
			return err
		}
	}
	balance, err := st.balanceRepo.LockBalanceInTx(ctx, tx, tenantID, clientID, currencyCode, now)
	if err != nil {
		return err
	}
	final := domain.ApplyRunningBalance(balance.Balance, entries)
	if err := st.ledgerRepo.AppendEntriesInTx(ctx, tx, entries); err != nil {
		return err
	}
	return st.balanceRepo.SetBalanceInTx(ctx, tx, tenantID, clientID, final, now)
}

// payInTx posts a payment batch against an invoice that the caller has already
// locked (or created) inside tx, then settles the invoice from the ledger.
func (st *settler) payInTx(ctx context.Context, tx pgx.Tx, inv *domain.Invoice, payments []domain.PaymentInput, paymentSessionID, userID string, now time.Time) (*domain.PaymentResult, error) {
	if inv.IsWalkIn() {
		return nil, domain.ErrWalkInInvoice
	}

	previous, err := st.ledgerRepo.FindByPaymentSessionInTx(ctx, tx, inv.TenantID, paymentSessionID)
	if err != nil {
		return nil, err
	}
	if len(previous) > 0 {
		for i := range previous {
			if !previous[i].IsForInvoice(inv.InvoiceID) {
				return nil, domain.ErrPaymentSessionReused
			}
		}
		return st.replayResult(ctx, tx, inv, previous)
	}

	if !inv.Status.AcceptsPayments() {
		return nil, fmt.Errorf("%w: invoice %s is %s", domain.ErrInvoiceNotPayable, inv.InvoiceNumber, inv.Status)
	}

	prior, err := st.ledgerRepo.ListForReferenceInTx(ctx, tx, inv.TenantID, domain.ReferenceInvoice, inv.InvoiceID)
	if err != nil {
		return nil, err
	}
	paid, _ := domain.PaidFromEntries(inv.InvoiceID, prior)
	if err := domain.CheckOutstanding(inv, paid, payments, st.epsilon); err != nil {
		return nil, err
	}

	entries := domain.PaymentEntries(inv, payments, paymentSessionID, userID, now, st.newID)
	if err := st.appendInTx(ctx, tx, inv.TenantID, *inv.ClientID, inv.CurrencyCode, entries, now); err != nil {
		return nil, err
	}

	all := append(prior, entries...)
	paid, methods := domain.PaidFromEntries(inv.InvoiceID, all)
	if domain.SettleInvoice(inv, paid, methods, now, st.epsilon) {
		inv.LastUpdatedAt = now
		inv.LastUpdatedBy = userID
		if err := st.invoiceRepo.UpdateInvoiceStatusInTx(ctx, tx, *inv); err != nil {
			return nil, err
		}
	}

	return &domain.PaymentResult{
		InvoiceID:         inv.InvoiceID,
		PaidAmount:        paid,
		OutstandingAmount: inv.Outstanding(paid),
		InvoiceStatus:     inv.Status,
		PaymentMethod:     inv.PaymentMethod,
		Entries:           entries,
	}, nil
}

// replayResult reports the current state of an invoice whose batch was already posted.
func (st *settler) replayResult(ctx context.Context, tx pgx.Tx, inv *domain.Invoice, batch []domain.LedgerEntry) (*domain.PaymentResult, error) {
	all, err := st.ledgerRepo.ListForReferenceInTx(ctx, tx, inv.TenantID, domain.ReferenceInvoice, inv.InvoiceID)
	if err != nil {
		return nil, err
	}
	paid, _ := domain.PaidFromEntries(inv.InvoiceID, all)
	return &domain.PaymentResult{
		InvoiceID:         inv.InvoiceID,
		PaidAmount:        paid,
		OutstandingAmount: inv.Outstanding(paid),
		InvoiceStatus:     inv.Status,
		PaymentMethod:     inv.PaymentMethod,
		Entries:           batch,
		Replayed:          true,
	}, nil
}

func entryIDs(entries []domain.LedgerEntry) []string {
	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.EntryID
	}
	return ids
}
