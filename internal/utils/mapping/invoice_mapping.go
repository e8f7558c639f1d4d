package mapping

import (
	"github.com/SscSPs/settlement_engine/internal/core/domain"
	"github.com/SscSPs/settlement_engine/internal/models"
)

// ToModelInvoice converts a domain Invoice header to a model Invoice. Items are mapped
// separately.
func ToModelInvoice(d domain.Invoice) models.Invoice {
	var method *string
	if d.PaymentMethod != nil {
		m := string(*d.PaymentMethod)
		method = &m
	}
	return models.Invoice{
		InvoiceID:      d.InvoiceID,
		TenantID:       d.TenantID,
		ClientID:       d.ClientID,
		ClientName:     d.ClientName,
		InvoiceNumber:  d.InvoiceNumber,
		Status:         string(d.Status),
		IssueDate:      d.IssueDate,
		DueDate:        d.DueDate,
		Subtotal:       d.Subtotal,
		DiscountAmount: d.DiscountAmount,
		TaxAmount:      d.TaxAmount,
		TotalAmount:    d.TotalAmount,
		CurrencyCode:   d.CurrencyCode,
		PaymentMethod:  method,
		PaidAt:         d.PaidAt,
		POSSessionID:   d.POSSessionID,
		Notes:          d.Notes,
		AuditFields:    ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainInvoice converts a model Invoice to a domain Invoice
func ToDomainInvoice(m models.Invoice) domain.Invoice {
	var method *domain.PaymentMethod
	if m.PaymentMethod != nil {
		pm := domain.PaymentMethod(*m.PaymentMethod)
		method = &pm
	}
	return domain.Invoice{
		InvoiceID:      m.InvoiceID,
		TenantID:       m.TenantID,
		ClientID:       m.ClientID,
		ClientName:     m.ClientName,
		InvoiceNumber:  m.InvoiceNumber,
		Status:         domain.InvoiceStatus(m.Status),
		IssueDate:      m.IssueDate,
		DueDate:        m.DueDate,
		Subtotal:       m.Subtotal,
		DiscountAmount: m.DiscountAmount,
		TaxAmount:      m.TaxAmount,
		TotalAmount:    m.TotalAmount,
		CurrencyCode:   m.CurrencyCode,
		PaymentMethod:  method,
		PaidAt:         m.PaidAt,
		POSSessionID:   m.POSSessionID,
		Notes:          m.Notes,
		AuditFields:    ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelInvoiceItem converts a domain InvoiceItem to a model InvoiceItem
func ToModelInvoiceItem(d domain.InvoiceItem) models.InvoiceItem {
	return models.InvoiceItem{
		InvoiceItemID: d.InvoiceItemID,
		InvoiceID:     d.InvoiceID,
		Description:   d.Description,
		Quantity:      d.Quantity,
		UnitPrice:     d.UnitPrice,
		TotalPrice:    d.TotalPrice,
		EntityType:    d.EntityType,
		EntityID:      d.EntityID,
	}
}

// ToDomainInvoiceItems converts a slice of model InvoiceItems to domain InvoiceItems
func ToDomainInvoiceItems(ms []models.InvoiceItem) []domain.InvoiceItem {
	ds := make([]domain.InvoiceItem, len(ms))
	for i, m := range ms {
		ds[i] = domain.InvoiceItem{
			InvoiceItemID: m.InvoiceItemID,
			InvoiceID:     m.InvoiceID,
			Description:   m.Description,
			Quantity:      m.Quantity,
			UnitPrice:     m.UnitPrice,
			TotalPrice:    m.TotalPrice,
			EntityType:    m.EntityType,
			EntityID:      m.EntityID,
		}
	}
	return ds
}
