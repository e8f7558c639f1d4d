package mapping

import (
	"encoding/json"
	"fmt"

	"github.com/SscSPs/settlement_engine/internal/core/domain"
	"github.com/SscSPs/settlement_engine/internal/models"
)

// ToModelLedgerEntry converts a domain LedgerEntry to a model LedgerEntry. Metadata is
// encoded as JSON for the JSONB column.
func ToModelLedgerEntry(d domain.LedgerEntry) (models.LedgerEntry, error) {
	var method *string
	if d.PaymentMethod != nil {
		m := string(*d.PaymentMethod)
		method = &m
	}
	meta := []byte("{}")
	if len(d.Metadata) > 0 {
		encoded, err := json.Marshal(d.Metadata)
		if err != nil {
			return models.LedgerEntry{}, fmt.Errorf("encode metadata for entry %s: %w", d.EntryID, err)
		}
		meta = encoded
	}
	return models.LedgerEntry{
		EntryID:          d.EntryID,
		TenantID:         d.TenantID,
		ClientID:         d.ClientID,
		EntryType:        string(d.EntryType),
		ReferenceType:    d.ReferenceType,
		ReferenceID:      d.ReferenceID,
		Amount:           d.Amount,
		BalanceAfter:     d.BalanceAfter,
		PaymentMethod:    method,
		PaymentSessionID: d.PaymentSessionID,
		PaymentOrdinal:   d.PaymentOrdinal,
		Description:      d.Description,
		Metadata:         meta,
		CreatedBy:        d.CreatedBy,
		CreatedAt:        d.CreatedAt,
	}, nil
}

// ToDomainLedgerEntry converts a model LedgerEntry to a domain LedgerEntry. Undecodable
// metadata is dropped rather than failing the read.
func ToDomainLedgerEntry(m models.LedgerEntry) domain.LedgerEntry {
	var method *domain.PaymentMethod
	if m.PaymentMethod != nil {
		pm := domain.PaymentMethod(*m.PaymentMethod)
		method = &pm
	}
	var meta map[string]any
	if len(m.Metadata) > 0 {
		_ = json.Unmarshal(m.Metadata, &meta)
		if len(meta) == 0 {
			meta = nil
		}
	}
	return domain.LedgerEntry{
		EntryID:          m.EntryID,
		TenantID:         m.TenantID,
		ClientID:         m.ClientID,
		EntryType:        domain.EntryType(m.EntryType),
		ReferenceType:    m.ReferenceType,
		ReferenceID:      m.ReferenceID,
		Amount:           m.Amount,
		BalanceAfter:     m.BalanceAfter,
		PaymentMethod:    method,
		PaymentSessionID: m.PaymentSessionID,
		PaymentOrdinal:   m.PaymentOrdinal,
		Description:      m.Description,
		Metadata:         meta,
		CreatedBy:        m.CreatedBy,
		CreatedAt:        m.CreatedAt,
	}
}

// ToDomainLedgerEntrySlice converts a slice of model LedgerEntries to domain LedgerEntries
func ToDomainLedgerEntrySlice(ms []models.LedgerEntry) []domain.LedgerEntry {
	ds := make([]domain.LedgerEntry, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainLedgerEntry(m)
	}
	return ds
}

// ToDomainCustomerBalance converts a model CustomerBalance to a domain CustomerBalance
func ToDomainCustomerBalance(m models.CustomerBalance) domain.CustomerBalance {
	return domain.CustomerBalance{
		TenantID:     m.TenantID,
		ClientID:     m.ClientID,
		Balance:      m.Balance,
		CurrencyCode: m.CurrencyCode,
		LastUpdated:  m.LastUpdated,
	}
}
