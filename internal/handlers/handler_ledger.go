package handlers

import (
	"net/http"

	"github.com/SscSPs/settlement_engine/internal/core/domain"
	portssvc "github.com/SscSPs/settlement_engine/internal/core/ports/services"
	"github.com/SscSPs/settlement_engine/internal/dto"
	"github.com/gin-gonic/gin"
)

// ledgerHandler handles client balances and ledger postings.
type ledgerHandler struct {
	ledgerService portssvc.LedgerSvcFacade
}

func newLedgerHandler(ledgerService portssvc.LedgerSvcFacade) *ledgerHandler {
	return &ledgerHandler{ledgerService: ledgerService}
}

// registerLedgerRoutes registers routes related to client ledgers.
func registerLedgerRoutes(rg *gin.RouterGroup, ledgerService portssvc.LedgerSvcFacade) {
	h := newLedgerHandler(ledgerService)

	clients := rg.Group("/clients/:client_id")
	{
		clients.GET("/balance", h.getBalance)
		clients.POST("/balance/rebuild", h.rebuildBalance)
		clients.GET("/ledger", h.listClientLedger)
		clients.POST("/ledger", h.appendEntry)
	}
	rg.POST("/balances/rebuild", h.rebuildTenantBalances)
}

// getBalance godoc
// @Summary Get a client's balance
// @Description Returns the cached running balance; positive means the client owes money
// @Tags ledger
// @Produce  json
// @Param   tenant_id path string true "Tenant ID"
// @Param   client_id path string true "Client ID"
// @Success 200 {object} dto.BalanceResponse
// @Security BearerAuth
// @Router /tenants/{tenant_id}/clients/{client_id}/balance [get]
func (h *ledgerHandler) getBalance(c *gin.Context) {
	balance, err := h.ledgerService.GetBalance(c.Request.Context(), c.Param("tenant_id"), c.Param("client_id"))
	if err != nil {
		respondError(c, err, "Failed to retrieve balance")
		return
	}
	c.JSON(http.StatusOK, dto.ToBalanceResponse(balance))
}

// listClientLedger godoc
// @Summary List a client's ledger entries
// @Tags ledger
// @Produce  json
// @Param   tenant_id path string true "Tenant ID"
// @Param   client_id path string true "Client ID"
// @Param   limit query int false "Page size (default 20, max 100)"
// @Param   nextToken query string false "Token from the previous page"
// @Success 200 {object} dto.ListLedgerEntriesResponse
// @Failure 400 {object} map[string]string "Invalid pagination parameters"
// @Security BearerAuth
// @Router /tenants/{tenant_id}/clients/{client_id}/ledger [get]
func (h *ledgerHandler) listClientLedger(c *gin.Context) {
	var params dto.ListLedgerEntriesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}
	var nextToken *string
	if params.NextToken != "" {
		nextToken = &params.NextToken
	}

	entries, next, err := h.ledgerService.ListClientEntries(c.Request.Context(), c.Param("tenant_id"), c.Param("client_id"), params.Limit, nextToken)
	if err != nil {
		respondError(c, err, "Failed to list ledger entries")
		return
	}
	c.JSON(http.StatusOK, dto.ListLedgerEntriesResponse{
		Entries:   dto.ToLedgerEntryResponses(entries),
		NextToken: next,
	})
}

// appendEntry godoc
// @Summary Post a manual ledger entry
// @Description Posts an invoice, credit or adjustment entry. Payments go through the invoice payment endpoint.
// @Tags ledger
// @Accept  json
// @Produce  json
// @Param   tenant_id path string true "Tenant ID"
// @Param   client_id path string true "Client ID"
// @Param   entry body dto.CreateLedgerEntryRequest true "Entry"
// @Success 201 {object} dto.LedgerEntryResponse
// @Failure 400 {object} map[string]string "Invalid entry"
// @Failure 503 {object} map[string]string "State uncertain, re-query"
// @Security BearerAuth
// @Router /tenants/{tenant_id}/clients/{client_id}/ledger [post]
func (h *ledgerHandler) appendEntry(c *gin.Context) {
	var req dto.CreateLedgerEntryRequest
	if !bindJSON(c, &req, "AppendEntry") {
		return
	}
	userID, ok := actingUser(c)
	if !ok {
		return
	}

	entry, err := h.ledgerService.AppendEntry(c.Request.Context(), c.Param("tenant_id"), c.Param("client_id"), req, userID)
	if err != nil {
		respondError(c, err, "Failed to append ledger entry")
		return
	}
	c.JSON(http.StatusCreated, dto.ToLedgerEntryResponse(entry))
}

// rebuildBalance godoc
// @Summary Rebuild a client's balance from the ledger
// @Tags ledger
// @Produce  json
// @Param   tenant_id path string true "Tenant ID"
// @Param   client_id path string true "Client ID"
// @Success 200 {object} dto.RebuildResponse
// @Security BearerAuth
// @Router /tenants/{tenant_id}/clients/{client_id}/balance/rebuild [post]
func (h *ledgerHandler) rebuildBalance(c *gin.Context) {
	rebuild, err := h.ledgerService.RebuildBalance(c.Request.Context(), c.Param("tenant_id"), c.Param("client_id"))
	if err != nil {
		respondError(c, err, "Failed to rebuild balance")
		return
	}
	c.JSON(http.StatusOK, dto.ToRebuildResponse(rebuild))
}

// rebuildTenantBalances godoc
// @Summary Rebuild every client balance of a tenant
// @Tags ledger
// @Produce  json
// @Param   tenant_id path string true "Tenant ID"
// @Success 200 {array} dto.RebuildResponse
// @Security BearerAuth
// @Router /tenants/{tenant_id}/balances/rebuild [post]
func (h *ledgerHandler) rebuildTenantBalances(c *gin.Context) {
	rebuilds, err := h.ledgerService.RebuildTenantBalances(c.Request.Context(), c.Param("tenant_id"))
	if err != nil {
		respondError(c, err, "Failed to rebuild balances")
		return
	}
	c.JSON(http.StatusOK, toRebuildResponses(rebuilds))
}

func toRebuildResponses(rebuilds []domain.BalanceRebuild) []dto.RebuildResponse {
	out := make([]dto.RebuildResponse, len(rebuilds))
	for i := range rebuilds {
		out[i] = dto.ToRebuildResponse(&rebuilds[i])
	}
	return out
}
