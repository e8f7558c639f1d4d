package handlers

import (
	"context"
	"net/http"

	"github.com/SscSPs/settlement_engine/internal/core/domain"
	portssvc "github.com/SscSPs/settlement_engine/internal/core/ports/services"
	"github.com/SscSPs/settlement_engine/internal/dto"
	"github.com/gin-gonic/gin"
)

// invoiceHandler handles manual billing, payments and invoice reads.
type invoiceHandler struct {
	invoiceService portssvc.InvoiceSvcFacade
	paymentService portssvc.PaymentSvc
	ledgerService  portssvc.LedgerReaderSvc
}

func newInvoiceHandler(invoiceService portssvc.InvoiceSvcFacade, paymentService portssvc.PaymentSvc, ledgerService portssvc.LedgerReaderSvc) *invoiceHandler {
	return &invoiceHandler{
		invoiceService: invoiceService,
		paymentService: paymentService,
		ledgerService:  ledgerService,
	}
}

// registerInvoiceRoutes registers routes related to invoices.
func registerInvoiceRoutes(rg *gin.RouterGroup, invoiceService portssvc.InvoiceSvcFacade, paymentService portssvc.PaymentSvc, ledgerService portssvc.LedgerReaderSvc) {
	h := newInvoiceHandler(invoiceService, paymentService, ledgerService)

	invoices := rg.Group("/invoices")
	{
		invoices.POST("", h.createInvoice)
		invoices.GET("/:invoice_id", h.getInvoice)
		invoices.POST("/:invoice_id/issue", h.issueInvoice)
		invoices.POST("/:invoice_id/cancel", h.cancelInvoice)
		invoices.POST("/:invoice_id/payments", h.postPayments)
		invoices.GET("/:invoice_id/ledger", h.listInvoiceLedger)
	}
}

// createInvoice godoc
// @Summary Draft an invoice
// @Description Creates a draft invoice for manual billing
// @Tags invoices
// @Accept  json
// @Produce  json
// @Param   tenant_id path string true "Tenant ID"
// @Param   invoice body dto.CreateInvoiceRequest true "Invoice details"
// @Success 201 {object} dto.InvoiceResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 409 {object} map[string]string "Duplicate invoice number"
// @Security BearerAuth
// @Router /tenants/{tenant_id}/invoices [post]
func (h *invoiceHandler) createInvoice(c *gin.Context) {
	var req dto.CreateInvoiceRequest
	if !bindJSON(c, &req, "CreateInvoice") {
		return
	}
	userID, ok := actingUser(c)
	if !ok {
		return
	}

	inv, err := h.invoiceService.CreateInvoice(c.Request.Context(), c.Param("tenant_id"), req, userID)
	if err != nil {
		respondError(c, err, "Failed to create invoice")
		return
	}
	c.JSON(http.StatusCreated, dto.ToInvoiceResponse(inv))
}

// getInvoice godoc
// @Summary Get an invoice
// @Description Returns the invoice with ledger-derived paid and outstanding amounts
// @Tags invoices
// @Produce  json
// @Param   tenant_id path string true "Tenant ID"
// @Param   invoice_id path string true "Invoice ID"
// @Success 200 {object} dto.InvoiceResponse
// @Failure 404 {object} map[string]string "Invoice not found"
// @Security BearerAuth
// @Router /tenants/{tenant_id}/invoices/{invoice_id} [get]
func (h *invoiceHandler) getInvoice(c *gin.Context) {
	view, err := h.invoiceService.GetInvoice(c.Request.Context(), c.Param("tenant_id"), c.Param("invoice_id"))
	if err != nil {
		respondError(c, err, "Failed to retrieve invoice")
		return
	}
	c.JSON(http.StatusOK, dto.ToInvoiceView(view))
}

// issueInvoice godoc
// @Summary Issue a draft invoice
// @Tags invoices
// @Produce  json
// @Param   tenant_id path string true "Tenant ID"
// @Param   invoice_id path string true "Invoice ID"
// @Success 200 {object} dto.InvoiceResponse
// @Failure 400 {object} map[string]string "Invalid transition"
// @Failure 404 {object} map[string]string "Invoice not found"
// @Security BearerAuth
// @Router /tenants/{tenant_id}/invoices/{invoice_id}/issue [post]
func (h *invoiceHandler) issueInvoice(c *gin.Context) {
	h.transition(c, h.invoiceService.IssueInvoice, "Failed to issue invoice")
}

// cancelInvoice godoc
// @Summary Cancel an invoice
// @Description Cancels any invoice that is not paid; further payments are refused
// @Tags invoices
// @Produce  json
// @Param   tenant_id path string true "Tenant ID"
// @Param   invoice_id path string true "Invoice ID"
// @Success 200 {object} dto.InvoiceResponse
// @Failure 400 {object} map[string]string "Invalid transition"
// @Failure 404 {object} map[string]string "Invoice not found"
// @Security BearerAuth
// @Router /tenants/{tenant_id}/invoices/{invoice_id}/cancel [post]
func (h *invoiceHandler) cancelInvoice(c *gin.Context) {
	h.transition(c, h.invoiceService.CancelInvoice, "Failed to cancel invoice")
}

func (h *invoiceHandler) transition(c *gin.Context, fn func(context.Context, string, string, string) (*domain.Invoice, error), fallback string) {
	userID, ok := actingUser(c)
	if !ok {
		return
	}
	inv, err := fn(c.Request.Context(), c.Param("tenant_id"), c.Param("invoice_id"), userID)
	if err != nil {
		respondError(c, err, fallback)
		return
	}
	c.JSON(http.StatusOK, dto.ToInvoiceResponse(inv))
}

// postPayments godoc
// @Summary Post payments against an invoice
// @Description Appends one ledger entry per payment and settles the invoice atomically. Repeating a paymentSessionID returns the stored result with replayed=true.
// @Tags invoices
// @Accept  json
// @Produce  json
// @Param   tenant_id path string true "Tenant ID"
// @Param   invoice_id path string true "Invoice ID"
// @Param   payments body dto.PostPaymentsRequest true "Payment batch"
// @Success 201 {object} dto.PaymentResultResponse "Batch posted"
// @Success 200 {object} dto.PaymentResultResponse "Batch replayed"
// @Failure 400 {object} map[string]string "Invalid batch, overpayment or walk-in invoice"
// @Failure 404 {object} map[string]string "Invoice not found"
// @Failure 409 {object} map[string]string "Concurrent posting or reused payment session"
// @Failure 503 {object} map[string]string "State uncertain, re-query"
// @Security BearerAuth
// @Router /tenants/{tenant_id}/invoices/{invoice_id}/payments [post]
func (h *invoiceHandler) postPayments(c *gin.Context) {
	var req dto.PostPaymentsRequest
	if !bindJSON(c, &req, "PostPayments") {
		return
	}
	userID, ok := actingUser(c)
	if !ok {
		return
	}

	result, err := h.paymentService.PostPayments(c.Request.Context(), c.Param("tenant_id"), c.Param("invoice_id"), req, userID)
	if err != nil {
		respondError(c, err, "Failed to post payments")
		return
	}

	status := http.StatusCreated
	if result.Replayed {
		status = http.StatusOK
	}
	c.JSON(status, dto.ToPaymentResultResponse(result))
}

// listInvoiceLedger godoc
// @Summary List the ledger entries of an invoice
// @Tags invoices
// @Produce  json
// @Param   tenant_id path string true "Tenant ID"
// @Param   invoice_id path string true "Invoice ID"
// @Success 200 {array} dto.LedgerEntryResponse
// @Security BearerAuth
// @Router /tenants/{tenant_id}/invoices/{invoice_id}/ledger [get]
func (h *invoiceHandler) listInvoiceLedger(c *gin.Context) {
	entries, err := h.ledgerService.ListForReference(c.Request.Context(), c.Param("tenant_id"), domain.ReferenceInvoice, c.Param("invoice_id"))
	if err != nil {
		respondError(c, err, "Failed to list invoice ledger")
		return
	}
	c.JSON(http.StatusOK, dto.ToLedgerEntryResponses(entries))
}
