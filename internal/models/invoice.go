package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Invoice is the row shape of the invoices table.
type Invoice struct {
	InvoiceID      string          `json:"invoiceID"`      // Primary Key (UUID)
	TenantID       string          `json:"tenantID"`       // Not Null
	ClientID       *string         `json:"clientID"`       // Nullable, NULL for walk-in sales
	ClientName     *string         `json:"clientName"`     // Nullable
	InvoiceNumber  string          `json:"invoiceNumber"`  // Unique per tenant
	Status         string          `json:"status"`         // CHECK constraint on allowed values
	IssueDate      time.Time       `json:"issueDate"`      // Not Null
	DueDate        *time.Time      `json:"dueDate"`        // Nullable
	Subtotal       decimal.Decimal `json:"subtotal"`       // NUMERIC(20,4)
	DiscountAmount decimal.Decimal `json:"discountAmount"` // NUMERIC(20,4)
	TaxAmount      decimal.Decimal `json:"taxAmount"`      // NUMERIC(20,4)
	TotalAmount    decimal.Decimal `json:"totalAmount"`    // NUMERIC(20,4)
	CurrencyCode   string          `json:"currencyCode"`   // Not Null
	PaymentMethod  *string         `json:"paymentMethod"`  // Nullable, resolved marker
	PaidAt         *time.Time      `json:"paidAt"`         // Nullable
	POSSessionID   *string         `json:"posSessionID"`   // FK -> pos_sessions.id (Nullable)
	Notes          string          `json:"notes"`
	AuditFields
}

// InvoiceItem is the row shape of the invoice_items table.
type InvoiceItem struct {
	InvoiceItemID string          `json:"invoiceItemID"` // Primary Key (UUID)
	InvoiceID     string          `json:"invoiceID"`     // FK -> invoices.id
	Description   string          `json:"description"`
	Quantity      decimal.Decimal `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unitPrice"`
	TotalPrice    decimal.Decimal `json:"totalPrice"`
	EntityType    *string         `json:"entityType"`
	EntityID      *string         `json:"entityID"`
}
