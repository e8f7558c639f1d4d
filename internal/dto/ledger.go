package dto

import (
	"time"

	"github.com/SscSPs/settlement_engine/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateLedgerEntryRequest defines the payload for a manual posting. Payments are only
// posted through the invoice payment endpoint.
type CreateLedgerEntryRequest struct {
	EntryType     string          `json:"entryType" binding:"required,oneof=invoice credit adjustment"`
	Amount        decimal.Decimal `json:"amount"`
	ReferenceType *string         `json:"referenceType,omitempty" binding:"omitempty,max=32"`
	ReferenceID   *string         `json:"referenceID,omitempty" binding:"omitempty,max=36"`
	Description   string          `json:"description" binding:"required,max=1000"`
	CurrencyCode  *string         `json:"currencyCode,omitempty" binding:"omitempty,len=3"`
	Metadata      map[string]any  `json:"metadata,omitempty"`
}

// LedgerEntryResponse defines the data returned for a ledger entry.
type LedgerEntryResponse struct {
	EntryID          string          `json:"entryID"`
	ClientID         string          `json:"clientID"`
	EntryType        string          `json:"entryType"`
	ReferenceType    *string         `json:"referenceType,omitempty"`
	ReferenceID      *string         `json:"referenceID,omitempty"`
	Amount           decimal.Decimal `json:"amount"`
	BalanceAfter     decimal.Decimal `json:"balanceAfter"`
	PaymentMethod    *string         `json:"paymentMethod,omitempty"`
	PaymentSessionID *string         `json:"paymentSessionID,omitempty"`
	Description      string          `json:"description"`
	Metadata         map[string]any  `json:"metadata,omitempty"`
	CreatedBy        string          `json:"createdBy"`
	CreatedAt        time.Time       `json:"createdAt"`
}

// ListLedgerEntriesParams defines query parameters for listing a client's ledger.
type ListLedgerEntriesParams struct {
	Limit     int    `form:"limit" binding:"omitempty,min=1,max=100"`
	NextToken string `form:"nextToken"`
}

// ListLedgerEntriesResponse wraps a page of ledger entries.
type ListLedgerEntriesResponse struct {
	Entries   []LedgerEntryResponse `json:"entries"`
	NextToken *string               `json:"nextToken,omitempty"`
}

// BalanceResponse defines the data returned for a client's cached balance.
type BalanceResponse struct {
	ClientID     string          `json:"clientID"`
	Balance      decimal.Decimal `json:"balance"`
	CurrencyCode string          `json:"currencyCode"`
	LastUpdated  time.Time       `json:"lastUpdated"`
}

// RebuildResponse reports a balance replay.
type RebuildResponse struct {
	ClientID   string          `json:"clientID"`
	Previous   decimal.Decimal `json:"previous"`
	Rebuilt    decimal.Decimal `json:"rebuilt"`
	EntryCount int             `json:"entryCount"`
	Drifted    bool            `json:"drifted"`
}

// ToLedgerEntryResponse converts a domain.LedgerEntry to its DTO.
func ToLedgerEntryResponse(e *domain.LedgerEntry) LedgerEntryResponse {
	resp := LedgerEntryResponse{
		EntryID:          e.EntryID,
		ClientID:         e.ClientID,
		EntryType:        string(e.EntryType),
		ReferenceType:    e.ReferenceType,
		ReferenceID:      e.ReferenceID,
		Amount:           e.Amount,
		BalanceAfter:     e.BalanceAfter,
		PaymentSessionID: e.PaymentSessionID,
		Description:      e.Description,
		Metadata:         e.Metadata,
		CreatedBy:        e.CreatedBy,
		CreatedAt:        e.CreatedAt,
	}
	if e.PaymentMethod != nil {
		m := string(*e.PaymentMethod)
		resp.PaymentMethod = &m
	}
	return resp
}

// ToLedgerEntryResponses converts a slice of domain.LedgerEntry to DTOs.
func ToLedgerEntryResponses(entries []domain.LedgerEntry) []LedgerEntryResponse {
	responses := make([]LedgerEntryResponse, len(entries))
	for i := range entries {
		responses[i] = ToLedgerEntryResponse(&entries[i])
	}
	return responses
}

// ToBalanceResponse converts a domain.CustomerBalance to its DTO.
func ToBalanceResponse(b *domain.CustomerBalance) BalanceResponse {
	return BalanceResponse{
		ClientID:     b.ClientID,
		Balance:      b.Balance,
		CurrencyCode: b.CurrencyCode,
		LastUpdated:  b.LastUpdated,
	}
}

// ToRebuildResponse converts a domain.BalanceRebuild to its DTO.
func ToRebuildResponse(r *domain.BalanceRebuild) RebuildResponse {
	return RebuildResponse{
		ClientID:   r.ClientID,
		Previous:   r.Previous,
		Rebuilt:    r.Rebuilt,
		EntryCount: r.EntryCount,
		Drifted:    r.Drifted(),
	}
}
