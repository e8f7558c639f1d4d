package services_test

import (
	"context"
	"time"

	"github.com/SscSPs/settlement_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/settlement_engine/internal/core/ports/repositories"
	"github.com/SscSPs/settlement_engine/internal/platform/lock"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// --- Mock TransactionManager ---
type MockTxManager struct {
	mock.Mock
}

var _ portsrepo.TransactionManager = (*MockTxManager)(nil)

func (m *MockTxManager) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	tx, _ := args.Get(0).(pgx.Tx)
	return tx, args.Error(1)
}

func (m *MockTxManager) Commit(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockTxManager) Rollback(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

// --- Mock LedgerRepository ---
type MockLedgerRepository struct {
	mock.Mock
}

var _ portsrepo.LedgerRepositoryFacade = (*MockLedgerRepository)(nil)

func (m *MockLedgerRepository) SumForClient(ctx context.Context, tenantID, clientID string, entryType *domain.EntryType) (decimal.Decimal, error) {
	args := m.Called(ctx, tenantID, clientID, entryType)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockLedgerRepository) ListForReference(ctx context.Context, tenantID, referenceType, referenceID string) ([]domain.LedgerEntry, error) {
	args := m.Called(ctx, tenantID, referenceType, referenceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LedgerEntry), args.Error(1)
}

func (m *MockLedgerRepository) ListForClient(ctx context.Context, tenantID, clientID string, limit int, nextToken *string) ([]domain.LedgerEntry, *string, error) {
	args := m.Called(ctx, tenantID, clientID, limit, nextToken)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var returnedNextToken *string
	if args.Get(1) != nil {
		tokenVal := args.Get(1).(string)
		returnedNextToken = &tokenVal
	}
	return args.Get(0).([]domain.LedgerEntry), returnedNextToken, args.Error(2)
}

func (m *MockLedgerRepository) ListClientIDs(ctx context.Context, tenantID string) ([]string, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockLedgerRepository) AppendEntriesInTx(ctx context.Context, tx pgx.Tx, entries []domain.LedgerEntry) error {
	args := m.Called(ctx, tx, entries)
	return args.Error(0)
}

func (m *MockLedgerRepository) ListForReferenceInTx(ctx context.Context, tx pgx.Tx, tenantID, referenceType, referenceID string) ([]domain.LedgerEntry, error) {
	args := m.Called(ctx, tx, tenantID, referenceType, referenceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LedgerEntry), args.Error(1)
}

func (m *MockLedgerRepository) FindByPaymentSessionInTx(ctx context.Context, tx pgx.Tx, tenantID, paymentSessionID string) ([]domain.LedgerEntry, error) {
	args := m.Called(ctx, tx, tenantID, paymentSessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LedgerEntry), args.Error(1)
}

func (m *MockLedgerRepository) ReplayClientInTx(ctx context.Context, tx pgx.Tx, tenantID, clientID string) (decimal.Decimal, int, error) {
	args := m.Called(ctx, tx, tenantID, clientID)
	return args.Get(0).(decimal.Decimal), args.Int(1), args.Error(2)
}

// --- Mock BalanceRepository ---
type MockBalanceRepository struct {
	mock.Mock
}

var _ portsrepo.BalanceRepository = (*MockBalanceRepository)(nil)

func (m *MockBalanceRepository) FindBalance(ctx context.Context, tenantID, clientID string) (*domain.CustomerBalance, error) {
	args := m.Called(ctx, tenantID, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CustomerBalance), args.Error(1)
}

func (m *MockBalanceRepository) LockBalanceInTx(ctx context.Context, tx pgx.Tx, tenantID, clientID, currencyCode string, now time.Time) (*domain.CustomerBalance, error) {
	args := m.Called(ctx, tx, tenantID, clientID, currencyCode, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CustomerBalance), args.Error(1)
}

func (m *MockBalanceRepository) SetBalanceInTx(ctx context.Context, tx pgx.Tx, tenantID, clientID string, balance decimal.Decimal, now time.Time) error {
	args := m.Called(ctx, tx, tenantID, clientID, balance, now)
	return args.Error(0)
}

// --- Mock InvoiceRepository ---
type MockInvoiceRepository struct {
	mock.Mock
}

var _ portsrepo.InvoiceRepositoryFacade = (*MockInvoiceRepository)(nil)

func (m *MockInvoiceRepository) FindInvoiceByID(ctx context.Context, tenantID, invoiceID string) (*domain.Invoice, error) {
	args := m.Called(ctx, tenantID, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) ListInvoicesBySession(ctx context.Context, tenantID, sessionID string) ([]domain.Invoice, error) {
	args := m.Called(ctx, tenantID, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) LockInvoiceInTx(ctx context.Context, tx pgx.Tx, tenantID, invoiceID string) (*domain.Invoice, error) {
	args := m.Called(ctx, tx, tenantID, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) SaveInvoiceInTx(ctx context.Context, tx pgx.Tx, invoice domain.Invoice) error {
	args := m.Called(ctx, tx, invoice)
	return args.Error(0)
}

func (m *MockInvoiceRepository) UpdateInvoiceStatusInTx(ctx context.Context, tx pgx.Tx, invoice domain.Invoice) error {
	args := m.Called(ctx, tx, invoice)
	return args.Error(0)
}

func (m *MockInvoiceRepository) SumCashSalesInTx(ctx context.Context, tx pgx.Tx, tenantID, sessionID string) (decimal.Decimal, error) {
	args := m.Called(ctx, tx, tenantID, sessionID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// --- Mock POSSessionRepository ---
type MockPOSSessionRepository struct {
	mock.Mock
}

var _ portsrepo.POSSessionRepositoryFacade = (*MockPOSSessionRepository)(nil)

func (m *MockPOSSessionRepository) FindSessionByID(ctx context.Context, tenantID, sessionID string) (*domain.POSSession, error) {
	args := m.Called(ctx, tenantID, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.POSSession), args.Error(1)
}

func (m *MockPOSSessionRepository) FindOpenSession(ctx context.Context, tenantID string, branchID *string) (*domain.POSSession, error) {
	args := m.Called(ctx, tenantID, branchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.POSSession), args.Error(1)
}

func (m *MockPOSSessionRepository) CreateSession(ctx context.Context, session domain.POSSession) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockPOSSessionRepository) LockSessionInTx(ctx context.Context, tx pgx.Tx, tenantID, sessionID string) (*domain.POSSession, error) {
	args := m.Called(ctx, tx, tenantID, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.POSSession), args.Error(1)
}

func (m *MockPOSSessionRepository) NextSaleSequenceInTx(ctx context.Context, tx pgx.Tx, tenantID, sessionID string) (int, error) {
	args := m.Called(ctx, tx, tenantID, sessionID)
	return args.Int(0), args.Error(1)
}

func (m *MockPOSSessionRepository) CloseSessionInTx(ctx context.Context, tx pgx.Tx, session domain.POSSession) error {
	args := m.Called(ctx, tx, session)
	return args.Error(0)
}

func (m *MockPOSSessionRepository) MarkReconciled(ctx context.Context, tenantID, sessionID, reconciledBy string, at time.Time, notes *string) error {
	args := m.Called(ctx, tenantID, sessionID, reconciledBy, at, notes)
	return args.Error(0)
}

// --- Fake lock ---
type busyLocker struct{}

func (busyLocker) Obtain(context.Context, string, time.Duration) (lock.Releaser, error) {
	return nil, lock.ErrNotObtained
}

// repoMocks bundles one mock per repository.
type repoMocks struct {
	tx      *MockTxManager
	ledger  *MockLedgerRepository
	balance *MockBalanceRepository
	invoice *MockInvoiceRepository
	session *MockPOSSessionRepository
}

func newRepoMocks() *repoMocks {
	return &repoMocks{
		tx:      new(MockTxManager),
		ledger:  new(MockLedgerRepository),
		balance: new(MockBalanceRepository),
		invoice: new(MockInvoiceRepository),
		session: new(MockPOSSessionRepository),
	}
}

func (r *repoMocks) provider() portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		TxManager:      r.tx,
		LedgerRepo:     r.ledger,
		BalanceRepo:    r.balance,
		InvoiceRepo:    r.invoice,
		POSSessionRepo: r.session,
	}
}

// expectTx sets up Begin and a deferred Rollback; commitErr is returned from Commit.
func (r *repoMocks) expectTx(commitErr error) {
	r.tx.On("Begin", mock.Anything).Return(nil, nil)
	r.tx.On("Rollback", mock.Anything, mock.Anything).Return(nil)
	r.tx.On("Commit", mock.Anything, mock.Anything).Return(commitErr).Maybe()
}

func (r *repoMocks) assertAll(t mock.TestingT) {
	r.tx.AssertExpectations(t)
	r.ledger.AssertExpectations(t)
	r.balance.AssertExpectations(t)
	r.invoice.AssertExpectations(t)
	r.session.AssertExpectations(t)
}

var fixedNow = time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// decimalEq matches a decimal argument by value rather than by representation.
func decimalEq(s string) any {
	want := dec(s)
	return mock.MatchedBy(func(d decimal.Decimal) bool { return d.Equal(want) })
}

func strPtr(s string) *string {
	return &s
}

func ptrDec(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}
