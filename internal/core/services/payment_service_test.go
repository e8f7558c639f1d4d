package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/SscSPs/settlement_engine/internal/apperrors"
	"github.com/SscSPs/settlement_engine/internal/core/domain"
	portssvc "github.com/SscSPs/settlement_engine/internal/core/ports/services"
	"github.com/SscSPs/settlement_engine/internal/core/services"
	"github.com/SscSPs/settlement_engine/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const (
	tenantID  = "tenant-1"
	clientID  = "client-1"
	invoiceID = "inv-1"
	userID    = "user-1"
)

type PaymentServiceTestSuite struct {
	suite.Suite
	repos   *repoMocks
	service portssvc.PaymentSvc
	ctx     context.Context
}

func (s *PaymentServiceTestSuite) SetupTest() {
	s.repos = newRepoMocks()
	s.service = services.NewPaymentService(s.repos.provider(), testSettings())
	s.ctx = context.Background()
}

func TestPaymentServiceTestSuite(t *testing.T) {
	suite.Run(t, new(PaymentServiceTestSuite))
}

func testSettings() services.Settings {
	return services.Settings{
		Epsilon:         domain.DefaultEpsilon,
		DefaultCurrency: "USD",
		Now:             func() time.Time { return fixedNow },
	}
}

func issuedInvoice(total string) *domain.Invoice {
	return &domain.Invoice{
		InvoiceID:     invoiceID,
		TenantID:      tenantID,
		ClientID:      strPtr(clientID),
		InvoiceNumber: "INV-0001",
		Status:        domain.InvoiceIssued,
		IssueDate:     fixedNow.Add(-24 * time.Hour),
		Subtotal:      dec(total),
		TotalAmount:   dec(total),
		CurrencyCode:  "USD",
	}
}

func receivable(amount string) domain.LedgerEntry {
	ref := domain.ReferenceInvoice
	id := invoiceID
	return domain.LedgerEntry{
		EntryID:       "entry-invoice",
		TenantID:      tenantID,
		ClientID:      clientID,
		EntryType:     domain.EntryInvoice,
		ReferenceType: &ref,
		ReferenceID:   &id,
		Amount:        dec(amount),
		BalanceAfter:  dec(amount),
	}
}

func paymentBatch(sessionID string, payments ...dto.PaymentRequest) dto.PostPaymentsRequest {
	return dto.PostPaymentsRequest{PaymentSessionID: sessionID, Payments: payments}
}

func (s *PaymentServiceTestSuite) TestSplitTenderSettlesInvoiceAsMixed() {
	inv := issuedInvoice("100")
	s.repos.expectTx(nil)
	s.repos.invoice.On("LockInvoiceInTx", mock.Anything, mock.Anything, tenantID, invoiceID).Return(inv, nil).Once()
	s.repos.ledger.On("FindByPaymentSessionInTx", mock.Anything, mock.Anything, tenantID, "ps-1").Return([]domain.LedgerEntry{}, nil).Once()
	s.repos.ledger.On("ListForReferenceInTx", mock.Anything, mock.Anything, tenantID, domain.ReferenceInvoice, invoiceID).
		Return([]domain.LedgerEntry{receivable("100")}, nil).Once()
	s.repos.balance.On("LockBalanceInTx", mock.Anything, mock.Anything, tenantID, clientID, "USD", fixedNow).
		Return(&domain.CustomerBalance{TenantID: tenantID, ClientID: clientID, Balance: dec("100"), CurrencyCode: "USD"}, nil).Once()
	s.repos.ledger.On("AppendEntriesInTx", mock.Anything, mock.Anything, mock.MatchedBy(func(entries []domain.LedgerEntry) bool {
		return len(entries) == 2 &&
			entries[0].Amount.Equal(dec("-60")) && entries[0].BalanceAfter.Equal(dec("40")) &&
			*entries[0].PaymentMethod == domain.PaymentCash && *entries[0].PaymentOrdinal == 0 &&
			entries[1].Amount.Equal(dec("-40")) && entries[1].BalanceAfter.Equal(dec("0")) &&
			*entries[1].PaymentMethod == domain.PaymentCard && *entries[1].PaymentOrdinal == 1
	})).Return(nil).Once()
	s.repos.balance.On("SetBalanceInTx", mock.Anything, mock.Anything, tenantID, clientID, mock.MatchedBy(func(b decimal.Decimal) bool {
		return b.IsZero()
	}), fixedNow).Return(nil).Once()
	s.repos.invoice.On("UpdateInvoiceStatusInTx", mock.Anything, mock.Anything, mock.MatchedBy(func(i domain.Invoice) bool {
		return i.Status == domain.InvoicePaid && i.PaymentMethod != nil && *i.PaymentMethod == domain.PaymentMixed && i.PaidAt != nil
	})).Return(nil).Once()

	result, err := s.service.PostPayments(s.ctx, tenantID, invoiceID, paymentBatch("ps-1",
		dto.PaymentRequest{Amount: dec("60"), PaymentMethod: "cash"},
		dto.PaymentRequest{Amount: dec("40"), PaymentMethod: "card"},
	), userID)

	s.Require().NoError(err)
	s.Len(result.Entries, 2)
	s.Equal(domain.InvoicePaid, result.InvoiceStatus)
	s.True(result.PaidAmount.Equal(dec("100")))
	s.True(result.OutstandingAmount.IsZero())
	s.Require().NotNil(result.PaymentMethod)
	s.Equal(domain.PaymentMixed, *result.PaymentMethod)
	s.False(result.Replayed)
	s.repos.tx.AssertCalled(s.T(), "Commit", mock.Anything, mock.Anything)
	s.repos.assertAll(s.T())
}

func (s *PaymentServiceTestSuite) TestPartialPayment() {
	inv := issuedInvoice("100")
	s.repos.expectTx(nil)
	s.repos.invoice.On("LockInvoiceInTx", mock.Anything, mock.Anything, tenantID, invoiceID).Return(inv, nil)
	s.repos.ledger.On("FindByPaymentSessionInTx", mock.Anything, mock.Anything, tenantID, "ps-2").Return([]domain.LedgerEntry{}, nil)
	s.repos.ledger.On("ListForReferenceInTx", mock.Anything, mock.Anything, tenantID, domain.ReferenceInvoice, invoiceID).
		Return([]domain.LedgerEntry{receivable("100")}, nil)
	s.repos.balance.On("LockBalanceInTx", mock.Anything, mock.Anything, tenantID, clientID, "USD", fixedNow).
		Return(&domain.CustomerBalance{Balance: dec("100")}, nil)
	s.repos.ledger.On("AppendEntriesInTx", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	s.repos.balance.On("SetBalanceInTx", mock.Anything, mock.Anything, tenantID, clientID, decimalEq("70"), fixedNow).Return(nil)
	s.repos.invoice.On("UpdateInvoiceStatusInTx", mock.Anything, mock.Anything, mock.MatchedBy(func(i domain.Invoice) bool {
		return i.Status == domain.InvoicePartial && i.PaidAt == nil && *i.PaymentMethod == domain.PaymentTransfer
	})).Return(nil)

	result, err := s.service.PostPayments(s.ctx, tenantID, invoiceID, paymentBatch("ps-2",
		dto.PaymentRequest{Amount: dec("30"), PaymentMethod: "transfer"},
	), userID)

	s.Require().NoError(err)
	s.Equal(domain.InvoicePartial, result.InvoiceStatus)
	s.True(result.OutstandingAmount.Equal(dec("70")))
	s.repos.assertAll(s.T())
}

func (s *PaymentServiceTestSuite) TestOverpaymentRejectedWithoutWrites() {
	s.repos.expectTx(nil)
	s.repos.invoice.On("LockInvoiceInTx", mock.Anything, mock.Anything, tenantID, invoiceID).Return(issuedInvoice("100"), nil)
	s.repos.ledger.On("FindByPaymentSessionInTx", mock.Anything, mock.Anything, tenantID, "ps-3").Return([]domain.LedgerEntry{}, nil)
	s.repos.ledger.On("ListForReferenceInTx", mock.Anything, mock.Anything, tenantID, domain.ReferenceInvoice, invoiceID).
		Return([]domain.LedgerEntry{receivable("100")}, nil)

	result, err := s.service.PostPayments(s.ctx, tenantID, invoiceID, paymentBatch("ps-3",
		dto.PaymentRequest{Amount: dec("150"), PaymentMethod: "cash"},
	), userID)

	s.Nil(result)
	s.ErrorIs(err, domain.ErrOverpayment)
	s.ErrorIs(err, apperrors.ErrValidation)
	s.repos.ledger.AssertNotCalled(s.T(), "AppendEntriesInTx", mock.Anything, mock.Anything, mock.Anything)
	s.repos.tx.AssertNotCalled(s.T(), "Commit", mock.Anything, mock.Anything)
	s.repos.tx.AssertCalled(s.T(), "Rollback", mock.Anything, mock.Anything)
}

func (s *PaymentServiceTestSuite) TestWalkInInvoiceRejected() {
	inv := issuedInvoice("20")
	inv.ClientID = nil
	s.repos.expectTx(nil)
	s.repos.invoice.On("LockInvoiceInTx", mock.Anything, mock.Anything, tenantID, invoiceID).Return(inv, nil)

	_, err := s.service.PostPayments(s.ctx, tenantID, invoiceID, paymentBatch("ps-4",
		dto.PaymentRequest{Amount: dec("20"), PaymentMethod: "cash"},
	), userID)

	s.ErrorIs(err, domain.ErrWalkInInvoice)
	s.repos.ledger.AssertNotCalled(s.T(), "AppendEntriesInTx", mock.Anything, mock.Anything, mock.Anything)
	s.repos.balance.AssertNotCalled(s.T(), "LockBalanceInTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *PaymentServiceTestSuite) TestDraftAndCancelledInvoicesRejected() {
	for _, status := range []domain.InvoiceStatus{domain.InvoiceDraft, domain.InvoiceCancelled} {
		s.Run(string(status), func() {
			s.SetupTest()
			inv := issuedInvoice("100")
			inv.Status = status
			s.repos.expectTx(nil)
			s.repos.invoice.On("LockInvoiceInTx", mock.Anything, mock.Anything, tenantID, invoiceID).Return(inv, nil)
			s.repos.ledger.On("FindByPaymentSessionInTx", mock.Anything, mock.Anything, tenantID, "ps-5").Return([]domain.LedgerEntry{}, nil)

			_, err := s.service.PostPayments(s.ctx, tenantID, invoiceID, paymentBatch("ps-5",
				dto.PaymentRequest{Amount: dec("10"), PaymentMethod: "cash"},
			), userID)

			s.ErrorIs(err, domain.ErrInvoiceNotPayable)
		})
	}
}

func (s *PaymentServiceTestSuite) TestPaidInvoiceRejectsPaymentWithinTolerance() {
	inv := issuedInvoice("100")
	inv.Status = domain.InvoicePaid
	s.repos.expectTx(nil)
	s.repos.invoice.On("LockInvoiceInTx", mock.Anything, mock.Anything, tenantID, invoiceID).Return(inv, nil)
	s.repos.ledger.On("FindByPaymentSessionInTx", mock.Anything, mock.Anything, tenantID, "ps-paid").Return([]domain.LedgerEntry{}, nil)

	_, err := s.service.PostPayments(s.ctx, tenantID, invoiceID, paymentBatch("ps-paid",
		dto.PaymentRequest{Amount: dec("0.01"), PaymentMethod: "cash"},
	), userID)

	s.ErrorIs(err, domain.ErrInvoiceNotPayable)
	s.repos.ledger.AssertNotCalled(s.T(), "AppendEntriesInTx", mock.Anything, mock.Anything, mock.Anything)
	s.repos.balance.AssertNotCalled(s.T(), "LockBalanceInTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *PaymentServiceTestSuite) TestSubScaleAmountRejectedBeforeTx() {
	_, err := s.service.PostPayments(s.ctx, tenantID, invoiceID, paymentBatch("ps-scale",
		dto.PaymentRequest{Amount: dec("10.00005"), PaymentMethod: "cash"},
		dto.PaymentRequest{Amount: dec("10.00005"), PaymentMethod: "card"},
	), userID)

	s.ErrorIs(err, domain.ErrInvalidAmount)
	s.repos.tx.AssertNotCalled(s.T(), "Begin", mock.Anything)
}

func (s *PaymentServiceTestSuite) TestReplayReturnsStoredBatch() {
	inv := issuedInvoice("100")
	inv.Status = domain.InvoicePaid
	cash := domain.PaymentCash
	prior := receivable("100")
	posted := domain.LedgerEntry{
		EntryID:          "entry-pay",
		TenantID:         tenantID,
		ClientID:         clientID,
		EntryType:        domain.EntryPayment,
		ReferenceType:    prior.ReferenceType,
		ReferenceID:      prior.ReferenceID,
		Amount:           dec("-100"),
		PaymentMethod:    &cash,
		PaymentSessionID: strPtr("ps-6"),
	}
	s.repos.expectTx(nil)
	s.repos.invoice.On("LockInvoiceInTx", mock.Anything, mock.Anything, tenantID, invoiceID).Return(inv, nil)
	s.repos.ledger.On("FindByPaymentSessionInTx", mock.Anything, mock.Anything, tenantID, "ps-6").Return([]domain.LedgerEntry{posted}, nil)
	s.repos.ledger.On("ListForReferenceInTx", mock.Anything, mock.Anything, tenantID, domain.ReferenceInvoice, invoiceID).
		Return([]domain.LedgerEntry{prior, posted}, nil)

	result, err := s.service.PostPayments(s.ctx, tenantID, invoiceID, paymentBatch("ps-6",
		dto.PaymentRequest{Amount: dec("100"), PaymentMethod: "cash"},
	), userID)

	s.Require().NoError(err)
	s.True(result.Replayed)
	s.Equal(domain.InvoicePaid, result.InvoiceStatus)
	s.True(result.PaidAmount.Equal(dec("100")))
	s.Require().Len(result.Entries, 1)
	s.Equal("entry-pay", result.Entries[0].EntryID)
	s.repos.ledger.AssertNotCalled(s.T(), "AppendEntriesInTx", mock.Anything, mock.Anything, mock.Anything)
}

func (s *PaymentServiceTestSuite) TestPaymentSessionReusedOnAnotherInvoice() {
	ref := domain.ReferenceInvoice
	other := "inv-other"
	s.repos.expectTx(nil)
	s.repos.invoice.On("LockInvoiceInTx", mock.Anything, mock.Anything, tenantID, invoiceID).Return(issuedInvoice("100"), nil)
	s.repos.ledger.On("FindByPaymentSessionInTx", mock.Anything, mock.Anything, tenantID, "ps-7").Return([]domain.LedgerEntry{
		{EntryID: "x", EntryType: domain.EntryPayment, ReferenceType: &ref, ReferenceID: &other, Amount: dec("-5")},
	}, nil)

	_, err := s.service.PostPayments(s.ctx, tenantID, invoiceID, paymentBatch("ps-7",
		dto.PaymentRequest{Amount: dec("5"), PaymentMethod: "cash"},
	), userID)

	s.ErrorIs(err, domain.ErrPaymentSessionReused)
	s.ErrorIs(err, apperrors.ErrConflict)
}

func (s *PaymentServiceTestSuite) TestCommitFailureIsUncertain() {
	s.repos.expectTx(errors.New("connection reset"))
	s.repos.invoice.On("LockInvoiceInTx", mock.Anything, mock.Anything, tenantID, invoiceID).Return(issuedInvoice("100"), nil)
	s.repos.ledger.On("FindByPaymentSessionInTx", mock.Anything, mock.Anything, tenantID, "ps-8").Return([]domain.LedgerEntry{}, nil)
	s.repos.ledger.On("ListForReferenceInTx", mock.Anything, mock.Anything, tenantID, domain.ReferenceInvoice, invoiceID).
		Return([]domain.LedgerEntry{receivable("100")}, nil)
	s.repos.balance.On("LockBalanceInTx", mock.Anything, mock.Anything, tenantID, clientID, "USD", fixedNow).
		Return(&domain.CustomerBalance{Balance: dec("100")}, nil)
	s.repos.ledger.On("AppendEntriesInTx", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	s.repos.balance.On("SetBalanceInTx", mock.Anything, mock.Anything, tenantID, clientID, mock.Anything, fixedNow).Return(nil)
	s.repos.invoice.On("UpdateInvoiceStatusInTx", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	_, err := s.service.PostPayments(s.ctx, tenantID, invoiceID, paymentBatch("ps-8",
		dto.PaymentRequest{Amount: dec("100"), PaymentMethod: "cash"},
	), userID)

	s.Require().Error(err)
	s.True(apperrors.IsUncertain(err))
	var pe *apperrors.PostingError
	s.Require().ErrorAs(err, &pe)
	s.Len(pe.EntryIDs, 1)
	s.False(pe.Committed)
}

func (s *PaymentServiceTestSuite) TestBusyInvoiceIsConflict() {
	service := services.NewPaymentService(s.repos.provider(), testSettings(), services.WithInvoiceLocker(busyLocker{}, time.Second))

	_, err := service.PostPayments(s.ctx, tenantID, invoiceID, paymentBatch("ps-9",
		dto.PaymentRequest{Amount: dec("10"), PaymentMethod: "cash"},
	), userID)

	s.ErrorIs(err, domain.ErrInvoiceBusy)
	s.ErrorIs(err, apperrors.ErrConflict)
	s.repos.tx.AssertNotCalled(s.T(), "Begin", mock.Anything)
}

func TestPostPaymentsValidatesBeforeStorage(t *testing.T) {
	repos := newRepoMocks()
	service := services.NewPaymentService(repos.provider(), testSettings())
	ctx := context.Background()

	testCases := []struct {
		name    string
		req     dto.PostPaymentsRequest
		wantErr error
	}{
		{"no payments", paymentBatch("ps"), domain.ErrEmptyPayments},
		{"zero amount", paymentBatch("ps", dto.PaymentRequest{Amount: dec("0"), PaymentMethod: "cash"}), domain.ErrInvalidAmount},
		{"debt is not a tender", paymentBatch("ps", dto.PaymentRequest{Amount: dec("5"), PaymentMethod: "debt"}), domain.ErrInvalidPaymentMethod},
		{"missing session", paymentBatch("", dto.PaymentRequest{Amount: dec("5"), PaymentMethod: "cash"}), apperrors.ErrValidation},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := service.PostPayments(ctx, tenantID, invoiceID, tc.req, userID)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
	repos.tx.AssertNotCalled(t, "Begin", mock.Anything)
}
