package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/settlement_engine/internal/core/ports/services"
	"github.com/SscSPs/settlement_engine/internal/dto"
	"github.com/SscSPs/settlement_engine/internal/middleware"
	"github.com/gin-gonic/gin"
)

// saleHandler handles point-of-sale checkouts.
type saleHandler struct {
	saleService portssvc.SaleSvc
}

func newSaleHandler(saleService portssvc.SaleSvc) *saleHandler {
	return &saleHandler{saleService: saleService}
}

// registerSaleRoutes registers routes related to sales.
func registerSaleRoutes(rg *gin.RouterGroup, saleService portssvc.SaleSvc) {
	h := newSaleHandler(saleService)
	rg.POST("/sales", h.createSale)
}

// createSale godoc
// @Summary Check out a cart
// @Description Issues an invoice for the cart inside an open cash session. Client sales post the receivable and, unless paid on debt, settle it in the same transaction.
// @Tags sales
// @Accept  json
// @Produce  json
// @Param   tenant_id path string true "Tenant ID"
// @Param   sale body dto.CreateSaleRequest true "Cart and payment method"
// @Success 201 {object} dto.InvoiceResponse
// @Failure 400 {object} map[string]string "Invalid cart or payment method"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 409 {object} map[string]string "Session not open"
// @Failure 503 {object} map[string]string "State uncertain, re-query"
// @Security BearerAuth
// @Router /tenants/{tenant_id}/sales [post]
func (h *saleHandler) createSale(c *gin.Context) {
	var req dto.CreateSaleRequest
	if !bindJSON(c, &req, "CreateSale") {
		return
	}
	userID, ok := actingUser(c)
	if !ok {
		return
	}

	inv, err := h.saleService.CreateSale(c.Request.Context(), c.Param("tenant_id"), req, userID)
	if err != nil {
		respondError(c, err, "Failed to create sale")
		return
	}

	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Sale created", slog.String("invoice_id", inv.InvoiceID))
	c.JSON(http.StatusCreated, dto.ToInvoiceResponse(inv))
}
