package pgsql_test

import (
	"context"
	"errors"
	"path/filepath"
	"runtime"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/SscSPs/settlement_engine/internal/apperrors"
	"github.com/SscSPs/settlement_engine/internal/core/domain"
	portssvc "github.com/SscSPs/settlement_engine/internal/core/ports/services"
	"github.com/SscSPs/settlement_engine/internal/core/services"
	"github.com/SscSPs/settlement_engine/internal/dto"
	"github.com/SscSPs/settlement_engine/internal/platform/config"
	"github.com/SscSPs/settlement_engine/internal/platform/lock"
	"github.com/SscSPs/settlement_engine/internal/repositories/database/pgsql"
	"github.com/SscSPs/settlement_engine/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	itUser     = "cashier-1"
	itCurrency = "USD"
)

// SettlementIntegrationSuite runs the services against a real Postgres started with
// testcontainers. Skipped with -short or when no container runtime is reachable.
type SettlementIntegrationSuite struct {
	suite.Suite
	ctx       context.Context
	container *tcpostgres.PostgresContainer
	pool      *pgxpool.Pool
	svc       *portssvc.ServiceContainer
}

func TestSettlementIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(SettlementIntegrationSuite))
}

func migrationsSource(t *testing.T) string {
	_, file, _, ok := runtime.Caller(0)
	require.True(t, ok)
	dir, err := filepath.Abs(filepath.Join(filepath.Dir(file), "..", "..", "..", "..", "migrations"))
	require.NoError(t, err)
	return "file://" + filepath.ToSlash(dir)
}

func (s *SettlementIntegrationSuite) SetupSuite() {
	s.ctx = context.Background()

	container, err := tcpostgres.Run(s.ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("settlement_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		s.T().Skipf("postgres container unavailable: %v", err)
	}
	s.container = container

	dsn, err := container.ConnectionString(s.ctx, "sslmode=disable")
	s.Require().NoError(err)

	migrator, err := database.NewMigrator(dsn, migrationsSource(s.T()))
	s.Require().NoError(err)
	_, err = migrator.Up()
	s.Require().NoError(err)
	s.Require().NoError(migrator.Close())

	s.pool, err = database.NewPgxPool(s.ctx, dsn, true)
	s.Require().NoError(err)

	cfg := &config.Config{
		PaymentEpsilon:  decimal.RequireFromString("0.01"),
		DefaultCurrency: itCurrency,
		InvoiceLockTTL:  5 * time.Second,
	}
	s.svc = services.NewServiceContainer(cfg, pgsql.NewRepositoryProvider(s.pool), lock.NoopLocker{}, nil)
}

func (s *SettlementIntegrationSuite) TearDownSuite() {
	if s.pool != nil {
		s.pool.Close()
	}
	if s.container != nil {
		_ = s.container.Terminate(context.Background())
	}
}

func d(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func item(desc, qty, price string) dto.CartItemRequest {
	return dto.CartItemRequest{
		Description: desc,
		Quantity:    d(qty),
		UnitPrice:   d(price),
		TotalPrice:  d(qty).Mul(d(price)),
	}
}

// issuedWithReceivable drafts, issues and charges an invoice for total.
func (s *SettlementIntegrationSuite) issuedWithReceivable(tenantID, clientID, total string) *domain.Invoice {
	inv, err := s.svc.Invoice.CreateInvoice(s.ctx, tenantID, dto.CreateInvoiceRequest{
		ClientID: &clientID,
		Items:    []dto.CartItemRequest{item("Stabling", "1", total)},
	}, itUser)
	s.Require().NoError(err)

	inv, err = s.svc.Invoice.IssueInvoice(s.ctx, tenantID, inv.InvoiceID, itUser)
	s.Require().NoError(err)

	ref := domain.ReferenceInvoice
	_, err = s.svc.Ledger.AppendEntry(s.ctx, tenantID, clientID, dto.CreateLedgerEntryRequest{
		EntryType:     string(domain.EntryInvoice),
		Amount:        inv.TotalAmount,
		ReferenceType: &ref,
		ReferenceID:   &inv.InvoiceID,
		Description:   "Invoice " + inv.InvoiceNumber,
	}, itUser)
	s.Require().NoError(err)
	return inv
}

func (s *SettlementIntegrationSuite) assertBalanceMatchesLedger(tenantID, clientID string) decimal.Decimal {
	bal, err := s.svc.Ledger.GetBalance(s.ctx, tenantID, clientID)
	s.Require().NoError(err)
	sum, err := s.svc.Ledger.SumForClient(s.ctx, tenantID, clientID, nil)
	s.Require().NoError(err)
	s.True(bal.Balance.Equal(sum), "cached %s, ledger %s", bal.Balance, sum)
	return bal.Balance
}

func (s *SettlementIntegrationSuite) TestSplitTenderSettlesInvoice() {
	tenantID, clientID := uuid.NewString(), uuid.NewString()
	inv := s.issuedWithReceivable(tenantID, clientID, "100")

	res, err := s.svc.Payment.PostPayments(s.ctx, tenantID, inv.InvoiceID, dto.PostPaymentsRequest{
		PaymentSessionID: uuid.NewString(),
		Payments: []dto.PaymentRequest{
			{Amount: d("60"), PaymentMethod: "cash"},
			{Amount: d("40"), PaymentMethod: "card"},
		},
	}, itUser)
	s.Require().NoError(err)

	s.Equal(domain.InvoicePaid, res.InvoiceStatus)
	s.Require().NotNil(res.PaymentMethod)
	s.Equal(domain.PaymentMixed, *res.PaymentMethod)
	s.Require().Len(res.Entries, 2)
	s.True(res.Entries[0].BalanceAfter.Equal(d("40")))
	s.True(res.Entries[1].BalanceAfter.Equal(d("0")))

	s.True(s.assertBalanceMatchesLedger(tenantID, clientID).IsZero())

	view, err := s.svc.Invoice.GetInvoice(s.ctx, tenantID, inv.InvoiceID)
	s.Require().NoError(err)
	s.True(view.Outstanding.IsZero())
	s.NotNil(view.PaidAt)
}

func (s *SettlementIntegrationSuite) TestFourDecimalSplitKeepsBalanceOnLedger() {
	tenantID, clientID := uuid.NewString(), uuid.NewString()
	inv := s.issuedWithReceivable(tenantID, clientID, "100")

	_, err := s.svc.Payment.PostPayments(s.ctx, tenantID, inv.InvoiceID, dto.PostPaymentsRequest{
		PaymentSessionID: uuid.NewString(),
		Payments: []dto.PaymentRequest{
			{Amount: d("10.00005"), PaymentMethod: "cash"},
			{Amount: d("10.00005"), PaymentMethod: "card"},
		},
	}, itUser)
	s.ErrorIs(err, domain.ErrInvalidAmount)
	s.True(s.assertBalanceMatchesLedger(tenantID, clientID).Equal(d("100")))

	res, err := s.svc.Payment.PostPayments(s.ctx, tenantID, inv.InvoiceID, dto.PostPaymentsRequest{
		PaymentSessionID: uuid.NewString(),
		Payments: []dto.PaymentRequest{
			{Amount: d("10.0001"), PaymentMethod: "cash"},
			{Amount: d("10.0001"), PaymentMethod: "card"},
			{Amount: d("0.0003"), PaymentMethod: "transfer"},
		},
	}, itUser)
	s.Require().NoError(err)
	s.Equal(domain.InvoicePartial, res.InvoiceStatus)

	balance := s.assertBalanceMatchesLedger(tenantID, clientID)
	s.True(balance.Equal(d("79.9995")), "balance %s", balance)

	entries, _, err := s.svc.Ledger.ListClientEntries(s.ctx, tenantID, clientID, 10, nil)
	s.Require().NoError(err)
	s.Require().Len(entries, 4)
	s.True(entries[0].BalanceAfter.Equal(balance), "newest balance_after %s", entries[0].BalanceAfter)
}

func (s *SettlementIntegrationSuite) TestPaidInvoiceRefusesFurtherPayments() {
	tenantID, clientID := uuid.NewString(), uuid.NewString()
	inv := s.issuedWithReceivable(tenantID, clientID, "100")

	_, err := s.svc.Payment.PostPayments(s.ctx, tenantID, inv.InvoiceID, dto.PostPaymentsRequest{
		PaymentSessionID: uuid.NewString(),
		Payments:         []dto.PaymentRequest{{Amount: d("100"), PaymentMethod: "cash"}},
	}, itUser)
	s.Require().NoError(err)

	_, err = s.svc.Payment.PostPayments(s.ctx, tenantID, inv.InvoiceID, dto.PostPaymentsRequest{
		PaymentSessionID: uuid.NewString(),
		Payments:         []dto.PaymentRequest{{Amount: d("0.01"), PaymentMethod: "cash"}},
	}, itUser)
	s.ErrorIs(err, domain.ErrInvoiceNotPayable)
	s.True(s.assertBalanceMatchesLedger(tenantID, clientID).IsZero())
}

func (s *SettlementIntegrationSuite) TestReplayWritesNothingNew() {
	tenantID, clientID := uuid.NewString(), uuid.NewString()
	inv := s.issuedWithReceivable(tenantID, clientID, "100")
	req := dto.PostPaymentsRequest{
		PaymentSessionID: uuid.NewString(),
		Payments:         []dto.PaymentRequest{{Amount: d("30"), PaymentMethod: "transfer"}},
	}

	first, err := s.svc.Payment.PostPayments(s.ctx, tenantID, inv.InvoiceID, req, itUser)
	s.Require().NoError(err)
	second, err := s.svc.Payment.PostPayments(s.ctx, tenantID, inv.InvoiceID, req, itUser)
	s.Require().NoError(err)

	s.False(first.Replayed)
	s.True(second.Replayed)
	s.Equal(first.Entries[0].EntryID, second.Entries[0].EntryID)

	entries, err := s.svc.Ledger.ListForReference(s.ctx, tenantID, domain.ReferenceInvoice, inv.InvoiceID)
	s.Require().NoError(err)
	s.Len(entries, 2) // receivable + one payment
	s.True(s.assertBalanceMatchesLedger(tenantID, clientID).Equal(d("70")))
}

func (s *SettlementIntegrationSuite) TestConcurrentPaymentsNeverOverpay() {
	tenantID, clientID := uuid.NewString(), uuid.NewString()
	inv := s.issuedWithReceivable(tenantID, clientID, "100")

	const attempts = 10
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.svc.Payment.PostPayments(s.ctx, tenantID, inv.InvoiceID, dto.PostPaymentsRequest{
				PaymentSessionID: "race-" + strconv.Itoa(i) + "-" + inv.InvoiceID[:8],
				Payments:         []dto.PaymentRequest{{Amount: d("20"), PaymentMethod: "cash"}},
			}, itUser)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		s.True(errors.Is(err, apperrors.ErrValidation) || errors.Is(err, apperrors.ErrConflict), "unexpected error: %v", err)
	}
	s.Equal(5, succeeded)

	view, err := s.svc.Invoice.GetInvoice(s.ctx, tenantID, inv.InvoiceID)
	s.Require().NoError(err)
	s.Equal(domain.InvoicePaid, view.Status)
	s.True(view.PaidAmount.Equal(d("100")))
	s.True(s.assertBalanceMatchesLedger(tenantID, clientID).IsZero())
}

func (s *SettlementIntegrationSuite) TestCashDrawerDay() {
	tenantID, clientID := uuid.NewString(), uuid.NewString()

	session, err := s.svc.POSSession.OpenSession(s.ctx, tenantID, dto.OpenSessionRequest{OpeningCash: d("500")}, itUser)
	s.Require().NoError(err)

	_, err = s.svc.POSSession.OpenSession(s.ctx, tenantID, dto.OpenSessionRequest{OpeningCash: d("0")}, itUser)
	s.ErrorIs(err, domain.ErrSessionAlreadyOpen)

	walkIn, err := s.svc.Sale.CreateSale(s.ctx, tenantID, dto.CreateSaleRequest{
		SessionID:     session.SessionID,
		PaymentMethod: "cash",
		Items:         []dto.CartItemRequest{item("Feed", "2", "60")},
	}, itUser)
	s.Require().NoError(err)
	s.Equal(domain.InvoicePaid, walkIn.Status)
	s.Equal(domain.POSInvoiceNumber(walkIn.IssueDate, session.SessionID, 1), walkIn.InvoiceNumber)

	clientSale, err := s.svc.Sale.CreateSale(s.ctx, tenantID, dto.CreateSaleRequest{
		SessionID:     session.SessionID,
		ClientID:      &clientID,
		PaymentMethod: "cash",
		Items:         []dto.CartItemRequest{item("Lesson", "1", "200")},
	}, itUser)
	s.Require().NoError(err)
	s.Equal(domain.InvoicePaid, clientSale.Status)

	onAccount, err := s.svc.Sale.CreateSale(s.ctx, tenantID, dto.CreateSaleRequest{
		SessionID:     session.SessionID,
		ClientID:      &clientID,
		PaymentMethod: "debt",
		Items:         []dto.CartItemRequest{item("Farrier", "1", "80")},
	}, itUser)
	s.Require().NoError(err)
	s.Equal(domain.InvoiceIssued, onAccount.Status)
	s.True(s.assertBalanceMatchesLedger(tenantID, clientID).Equal(d("80")))

	closed, err := s.svc.POSSession.CloseSession(s.ctx, tenantID, session.SessionID, dto.CloseSessionRequest{ActualCash: d("810")}, itUser)
	s.Require().NoError(err)
	s.Equal(domain.SessionClosed, closed.Status)
	s.Require().NotNil(closed.ExpectedCash)
	s.True(closed.ExpectedCash.Equal(d("820")), "expected %s", closed.ExpectedCash)
	s.True(closed.CashVariance.Equal(d("-10")))
	s.Equal(3, closed.SaleSequence)

	_, err = s.svc.Sale.CreateSale(s.ctx, tenantID, dto.CreateSaleRequest{
		SessionID:     session.SessionID,
		PaymentMethod: "cash",
		Items:         []dto.CartItemRequest{item("Late", "1", "5")},
	}, itUser)
	s.ErrorIs(err, domain.ErrSessionNotOpen)

	reconciled, err := s.svc.POSSession.ReconcileSession(s.ctx, tenantID, session.SessionID, dto.ReconcileSessionRequest{}, itUser)
	s.Require().NoError(err)
	s.Equal(domain.SessionReconciled, reconciled.Status)
}

func (s *SettlementIntegrationSuite) TestRebuildRepairsDriftAndLedgerIsAppendOnly() {
	tenantID, clientID := uuid.NewString(), uuid.NewString()
	s.issuedWithReceivable(tenantID, clientID, "75")

	_, err := s.pool.Exec(s.ctx, `UPDATE customer_balances SET balance = 90 WHERE tenant_id = $1 AND client_id = $2`, tenantID, clientID)
	s.Require().NoError(err)

	rebuilds, err := s.svc.Ledger.RebuildTenantBalances(s.ctx, tenantID)
	s.Require().NoError(err)
	s.Require().Len(rebuilds, 1)
	s.True(rebuilds[0].Drifted())
	s.True(rebuilds[0].Rebuilt.Equal(d("75")))
	s.assertBalanceMatchesLedger(tenantID, clientID)

	_, err = s.pool.Exec(s.ctx, `UPDATE ledger_entries SET amount = 1 WHERE tenant_id = $1`, tenantID)
	assert.Error(s.T(), err)
	_, err = s.pool.Exec(s.ctx, `DELETE FROM ledger_entries WHERE tenant_id = $1`, tenantID)
	assert.Error(s.T(), err)
}
