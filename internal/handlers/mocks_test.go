package handlers_test

import (
	"context"

	"github.com/SscSPs/settlement_engine/internal/core/domain"
	portssvc "github.com/SscSPs/settlement_engine/internal/core/ports/services"
	"github.com/SscSPs/settlement_engine/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// --- Mock LedgerService ---
type MockLedgerService struct {
	mock.Mock
}

func (m *MockLedgerService) GetBalance(ctx context.Context, tenantID, clientID string) (*domain.CustomerBalance, error) {
	args := m.Called(ctx, tenantID, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CustomerBalance), args.Error(1)
}
func (m *MockLedgerService) SumForClient(ctx context.Context, tenantID, clientID string, entryType *domain.EntryType) (decimal.Decimal, error) {
	args := m.Called(ctx, tenantID, clientID, entryType)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}
func (m *MockLedgerService) ListClientEntries(ctx context.Context, tenantID, clientID string, limit int, nextToken *string) ([]domain.LedgerEntry, *string, error) {
	args := m.Called(ctx, tenantID, clientID, limit, nextToken)
	var next *string
	if args.Get(1) != nil {
		next = args.Get(1).(*string)
	}
	if args.Get(0) == nil {
		return nil, next, args.Error(2)
	}
	return args.Get(0).([]domain.LedgerEntry), next, args.Error(2)
}
func (m *MockLedgerService) ListForReference(ctx context.Context, tenantID, referenceType, referenceID string) ([]domain.LedgerEntry, error) {
	args := m.Called(ctx, tenantID, referenceType, referenceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LedgerEntry), args.Error(1)
}
func (m *MockLedgerService) AppendEntry(ctx context.Context, tenantID, clientID string, req dto.CreateLedgerEntryRequest, userID string) (*domain.LedgerEntry, error) {
	args := m.Called(ctx, tenantID, clientID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerEntry), args.Error(1)
}
func (m *MockLedgerService) RebuildBalance(ctx context.Context, tenantID, clientID string) (*domain.BalanceRebuild, error) {
	args := m.Called(ctx, tenantID, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BalanceRebuild), args.Error(1)
}
func (m *MockLedgerService) RebuildTenantBalances(ctx context.Context, tenantID string) ([]domain.BalanceRebuild, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BalanceRebuild), args.Error(1)
}

// Ensure mock implements the interface
var _ portssvc.LedgerSvcFacade = (*MockLedgerService)(nil)

// --- Mock InvoiceService ---
type MockInvoiceService struct {
	mock.Mock
}

func (m *MockInvoiceService) GetInvoice(ctx context.Context, tenantID, invoiceID string) (*domain.InvoiceView, error) {
	args := m.Called(ctx, tenantID, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.InvoiceView), args.Error(1)
}
func (m *MockInvoiceService) CreateInvoice(ctx context.Context, tenantID string, req dto.CreateInvoiceRequest, userID string) (*domain.Invoice, error) {
	args := m.Called(ctx, tenantID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}
func (m *MockInvoiceService) IssueInvoice(ctx context.Context, tenantID, invoiceID, userID string) (*domain.Invoice, error) {
	args := m.Called(ctx, tenantID, invoiceID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}
func (m *MockInvoiceService) CancelInvoice(ctx context.Context, tenantID, invoiceID, userID string) (*domain.Invoice, error) {
	args := m.Called(ctx, tenantID, invoiceID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}

var _ portssvc.InvoiceSvcFacade = (*MockInvoiceService)(nil)

// --- Mock PaymentService ---
type MockPaymentService struct {
	mock.Mock
}

func (m *MockPaymentService) PostPayments(ctx context.Context, tenantID, invoiceID string, req dto.PostPaymentsRequest, userID string) (*domain.PaymentResult, error) {
	args := m.Called(ctx, tenantID, invoiceID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentResult), args.Error(1)
}

var _ portssvc.PaymentSvc = (*MockPaymentService)(nil)

// --- Mock POSSessionService ---
type MockPOSSessionService struct {
	mock.Mock
}

func (m *MockPOSSessionService) GetSession(ctx context.Context, tenantID, sessionID string) (*domain.POSSession, error) {
	args := m.Called(ctx, tenantID, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.POSSession), args.Error(1)
}
func (m *MockPOSSessionService) GetOpenSession(ctx context.Context, tenantID string, branchID *string) (*domain.POSSession, error) {
	args := m.Called(ctx, tenantID, branchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.POSSession), args.Error(1)
}
func (m *MockPOSSessionService) OpenSession(ctx context.Context, tenantID string, req dto.OpenSessionRequest, userID string) (*domain.POSSession, error) {
	args := m.Called(ctx, tenantID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.POSSession), args.Error(1)
}
func (m *MockPOSSessionService) CloseSession(ctx context.Context, tenantID, sessionID string, req dto.CloseSessionRequest, userID string) (*domain.POSSession, error) {
	args := m.Called(ctx, tenantID, sessionID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.POSSession), args.Error(1)
}
func (m *MockPOSSessionService) ReconcileSession(ctx context.Context, tenantID, sessionID string, req dto.ReconcileSessionRequest, userID string) (*domain.POSSession, error) {
	args := m.Called(ctx, tenantID, sessionID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.POSSession), args.Error(1)
}

var _ portssvc.POSSessionSvcFacade = (*MockPOSSessionService)(nil)

// --- Mock SaleService ---
type MockSaleService struct {
	mock.Mock
}

func (m *MockSaleService) CreateSale(ctx context.Context, tenantID string, req dto.CreateSaleRequest, userID string) (*domain.Invoice, error) {
	args := m.Called(ctx, tenantID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}

var _ portssvc.SaleSvc = (*MockSaleService)(nil)
