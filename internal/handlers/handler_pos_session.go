package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/settlement_engine/internal/core/ports/services"
	"github.com/SscSPs/settlement_engine/internal/dto"
	"github.com/SscSPs/settlement_engine/internal/middleware"
	"github.com/gin-gonic/gin"
)

// posSessionHandler handles cash drawer sessions.
type posSessionHandler struct {
	sessionService portssvc.POSSessionSvcFacade
}

func newPOSSessionHandler(sessionService portssvc.POSSessionSvcFacade) *posSessionHandler {
	return &posSessionHandler{sessionService: sessionService}
}

// registerPOSSessionRoutes registers routes related to cash sessions.
func registerPOSSessionRoutes(rg *gin.RouterGroup, sessionService portssvc.POSSessionSvcFacade) {
	h := newPOSSessionHandler(sessionService)

	sessions := rg.Group("/pos-sessions")
	{
		sessions.POST("", h.openSession)
		sessions.GET("/open", h.getOpenSession)
		sessions.GET("/:session_id", h.getSession)
		sessions.POST("/:session_id/close", h.closeSession)
		sessions.POST("/:session_id/reconcile", h.reconcileSession)
	}
}

// openSession godoc
// @Summary Open a cash session
// @Tags pos-sessions
// @Accept  json
// @Produce  json
// @Param   tenant_id path string true "Tenant ID"
// @Param   session body dto.OpenSessionRequest true "Opening cash"
// @Success 201 {object} dto.SessionResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 409 {object} map[string]string "A session is already open"
// @Security BearerAuth
// @Router /tenants/{tenant_id}/pos-sessions [post]
func (h *posSessionHandler) openSession(c *gin.Context) {
	var req dto.OpenSessionRequest
	if !bindJSON(c, &req, "OpenSession") {
		return
	}
	userID, ok := actingUser(c)
	if !ok {
		return
	}

	session, err := h.sessionService.OpenSession(c.Request.Context(), c.Param("tenant_id"), req, userID)
	if err != nil {
		respondError(c, err, "Failed to open cash session")
		return
	}
	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Cash session opened", slog.String("session_id", session.SessionID))
	c.JSON(http.StatusCreated, dto.ToSessionResponse(session))
}

// getOpenSession godoc
// @Summary Get the open cash session of a branch
// @Tags pos-sessions
// @Produce  json
// @Param   tenant_id path string true "Tenant ID"
// @Param   branchID query string false "Branch ID"
// @Success 200 {object} dto.SessionResponse
// @Failure 404 {object} map[string]string "No open session"
// @Security BearerAuth
// @Router /tenants/{tenant_id}/pos-sessions/open [get]
func (h *posSessionHandler) getOpenSession(c *gin.Context) {
	var branchID *string
	if b := c.Query("branchID"); b != "" {
		branchID = &b
	}
	session, err := h.sessionService.GetOpenSession(c.Request.Context(), c.Param("tenant_id"), branchID)
	if err != nil {
		respondError(c, err, "Failed to retrieve open cash session")
		return
	}
	c.JSON(http.StatusOK, dto.ToSessionResponse(session))
}

// getSession godoc
// @Summary Get a cash session
// @Tags pos-sessions
// @Produce  json
// @Param   tenant_id path string true "Tenant ID"
// @Param   session_id path string true "Session ID"
// @Success 200 {object} dto.SessionResponse
// @Failure 404 {object} map[string]string "Session not found"
// @Security BearerAuth
// @Router /tenants/{tenant_id}/pos-sessions/{session_id} [get]
func (h *posSessionHandler) getSession(c *gin.Context) {
	session, err := h.sessionService.GetSession(c.Request.Context(), c.Param("tenant_id"), c.Param("session_id"))
	if err != nil {
		respondError(c, err, "Failed to retrieve cash session")
		return
	}
	c.JSON(http.StatusOK, dto.ToSessionResponse(session))
}

// closeSession godoc
// @Summary Close a cash session
// @Description Records counted cash, expected cash and the variance. A variance does not block the close.
// @Tags pos-sessions
// @Accept  json
// @Produce  json
// @Param   tenant_id path string true "Tenant ID"
// @Param   session_id path string true "Session ID"
// @Param   close body dto.CloseSessionRequest true "Counted cash"
// @Success 200 {object} dto.SessionResponse
// @Failure 404 {object} map[string]string "Session not found"
// @Failure 409 {object} map[string]string "Session not open"
// @Security BearerAuth
// @Router /tenants/{tenant_id}/pos-sessions/{session_id}/close [post]
func (h *posSessionHandler) closeSession(c *gin.Context) {
	var req dto.CloseSessionRequest
	if !bindJSON(c, &req, "CloseSession") {
		return
	}
	userID, ok := actingUser(c)
	if !ok {
		return
	}

	session, err := h.sessionService.CloseSession(c.Request.Context(), c.Param("tenant_id"), c.Param("session_id"), req, userID)
	if err != nil {
		respondError(c, err, "Failed to close cash session")
		return
	}
	c.JSON(http.StatusOK, dto.ToSessionResponse(session))
}

// reconcileSession godoc
// @Summary Mark a closed cash session reconciled
// @Tags pos-sessions
// @Accept  json
// @Produce  json
// @Param   tenant_id path string true "Tenant ID"
// @Param   session_id path string true "Session ID"
// @Param   reconcile body dto.ReconcileSessionRequest false "Notes"
// @Success 200 {object} dto.SessionResponse
// @Failure 409 {object} map[string]string "Session not closed"
// @Security BearerAuth
// @Router /tenants/{tenant_id}/pos-sessions/{session_id}/reconcile [post]
func (h *posSessionHandler) reconcileSession(c *gin.Context) {
	var req dto.ReconcileSessionRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req, "ReconcileSession") {
		return
	}
	userID, ok := actingUser(c)
	if !ok {
		return
	}

	session, err := h.sessionService.ReconcileSession(c.Request.Context(), c.Param("tenant_id"), c.Param("session_id"), req, userID)
	if err != nil {
		respondError(c, err, "Failed to reconcile cash session")
		return
	}
	c.JSON(http.StatusOK, dto.ToSessionResponse(session))
}
