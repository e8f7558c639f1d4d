package services

import (
	"context"

	"github.com/SscSPs/settlement_engine/internal/core/domain"
	"github.com/SscSPs/settlement_engine/internal/dto"
)

// POSSessionReaderSvc defines read operations on cash drawer sessions.
type POSSessionReaderSvc interface {
	GetSession(ctx context.Context, tenantID, sessionID string) (*domain.POSSession, error)
	GetOpenSession(ctx context.Context, tenantID string, branchID *string) (*domain.POSSession, error)
}

// POSSessionWriterSvc defines the cash drawer lifecycle.
type POSSessionWriterSvc interface {
	OpenSession(ctx context.Context, tenantID string, req dto.OpenSessionRequest, userID string) (*domain.POSSession, error)
	CloseSession(ctx context.Context, tenantID, sessionID string, req dto.CloseSessionRequest, userID string) (*domain.POSSession, error)
	ReconcileSession(ctx context.Context, tenantID, sessionID string, req dto.ReconcileSessionRequest, userID string) (*domain.POSSession, error)
}

// POSSessionSvcFacade combines all cash drawer operations.
type POSSessionSvcFacade interface {
	POSSessionReaderSvc
	POSSessionWriterSvc
}

// SaleSvc composes a checkout cart into a settled or receivable invoice.
type SaleSvc interface {
	CreateSale(ctx context.Context, tenantID string, req dto.CreateSaleRequest, userID string) (*domain.Invoice, error)
}
