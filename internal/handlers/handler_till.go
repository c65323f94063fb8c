package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/licoreria_pos/internal/core/ports/services"
	"github.com/SscSPs/licoreria_pos/internal/dto"
	"github.com/SscSPs/licoreria_pos/internal/middleware"
	"github.com/gin-gonic/gin"
)

// tillHandler handles HTTP requests related to till sessions and their movements.
type tillHandler struct {
	tillService           portssvc.TillSvcFacade
	reconciliationService portssvc.ReconciliationSvc
	movementService       portssvc.MovementSvcFacade
	reportingService      portssvc.ReportingService
	currency              string
}

// RegisterTillRoutes registers routes related to the till.
func RegisterTillRoutes(
	rg *gin.RouterGroup,
	currency string,
	till portssvc.TillSvcFacade,
	reconciliation portssvc.ReconciliationSvc,
	movement portssvc.MovementSvcFacade,
	reporting portssvc.ReportingService,
) {
	h := &tillHandler{
		tillService:           till,
		reconciliationService: reconciliation,
		movementService:       movement,
		reportingService:      reporting,
		currency:              currency,
	}

	tillGroup := rg.Group("/till")
	{
		tillGroup.POST("/sessions", h.openSession)
		tillGroup.GET("/sessions/open", h.getOpenSession)
		tillGroup.GET("/sessions", h.listSessions)
		tillGroup.GET("/sessions/:sessionID", h.getSessionDetail)
		tillGroup.GET("/sessions/:sessionID/summary", h.getSummary)
		tillGroup.GET("/sessions/:sessionID/movements", h.listMovements)
		tillGroup.POST("/sessions/:sessionID/close", h.closeSession)
		tillGroup.POST("/withdrawals", h.recordWithdrawal)
	}
}

// openSession godoc
// @Summary Open the till
// @Description Starts a new till session with the given opening float. Only one session may be open.
// @Tags till
// @Accept json
// @Produce json
// @Param session body dto.OpenSessionRequest true "Opening float"
// @Success 201 {object} dto.OpenSessionResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 409 {object} map[string]string "A session is already open"
// @Failure 500 {object} map[string]string "Failed to open session"
// @Security BearerAuth
// @Router /till/sessions [post]
func (h *tillHandler) openSession(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.OpenSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for OpenSession", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	operatorID, ok := operator(c)
	if !ok {
		return
	}

	sessionID, err := h.tillService.OpenSession(c.Request.Context(), req.OpeningFloat, operatorID)
	if err != nil {
		respondError(c, err, "Failed to open session")
		return
	}
	c.JSON(http.StatusCreated, dto.OpenSessionResponse{SessionID: sessionID})
}

// getOpenSession godoc
// @Summary Get the open session
// @Description Returns the open session and its live summary, or a null session when the till is closed.
// @Tags till
// @Produce json
// @Success 200 {object} dto.CurrentSessionResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to read the till"
// @Security BearerAuth
// @Router /till/sessions/open [get]
func (h *tillHandler) getOpenSession(c *gin.Context) {
	ctx := c.Request.Context()
	session, err := h.tillService.GetOpenSession(ctx)
	if err != nil {
		respondError(c, err, "Failed to read the till")
		return
	}
	if session == nil {
		c.JSON(http.StatusOK, dto.CurrentSessionResponse{})
		return
	}

	summary, err := h.reconciliationService.Summarize(ctx, session.SessionID)
	if err != nil {
		respondError(c, err, "Failed to read the till")
		return
	}
	sessionResp := dto.ToSessionResponse(session, h.currency)
	summaryResp := dto.ToSummaryResponse(summary, h.currency)
	c.JSON(http.StatusOK, dto.CurrentSessionResponse{Session: &sessionResp, Summary: &summaryResp})
}

// listSessions godoc
// @Summary List closed sessions
// @Description Lists closed sessions, newest first. Dates are inclusive calendar days in the store time zone.
// @Tags till
// @Produce json
// @Param from query string false "First opening day (YYYY-MM-DD)"
// @Param to query string false "Last opening day (YYYY-MM-DD)"
// @Param limit query int false "Page size" default(50)
// @Param nextToken query string false "Cursor from the previous page"
// @Success 200 {object} dto.ListSessionsResponse
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list sessions"
// @Security BearerAuth
// @Router /till/sessions [get]
func (h *tillHandler) listSessions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ListSessionsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query params for ListSessions", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	sessions, nextToken, err := h.tillService.ListClosedSessions(c.Request.Context(), params)
	if err != nil {
		respondError(c, err, "Failed to list sessions")
		return
	}
	c.JSON(http.StatusOK, dto.ListSessionsResponse{
		Sessions:  dto.ToListSessionResponse(sessions, h.currency),
		NextToken: nextToken,
	})
}

// getSessionDetail godoc
// @Summary Get a session
// @Description Returns the session with its summary and movements, newest first.
// @Tags till
// @Produce json
// @Param sessionID path int true "Session ID"
// @Success 200 {object} dto.SessionDetailResponse
// @Failure 400 {object} map[string]string "Invalid session id"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Session not found"
// @Failure 500 {object} map[string]string "Failed to read session"
// @Security BearerAuth
// @Router /till/sessions/{sessionID} [get]
func (h *tillHandler) getSessionDetail(c *gin.Context) {
	sessionID, ok := pathID(c, "sessionID")
	if !ok {
		return
	}
	detail, err := h.reportingService.SessionDetail(c.Request.Context(), sessionID)
	if err != nil {
		respondError(c, err, "Failed to read session")
		return
	}
	c.JSON(http.StatusOK, dto.ToSessionDetailResponse(detail, h.currency))
}

// getSummary godoc
// @Summary Summarize a session
// @Description Aggregates the movements of a session into its expected cash.
// @Tags till
// @Produce json
// @Param sessionID path int true "Session ID"
// @Success 200 {object} dto.SummaryResponse
// @Failure 400 {object} map[string]string "Invalid session id"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Session not found"
// @Failure 500 {object} map[string]string "Failed to summarize session"
// @Security BearerAuth
// @Router /till/sessions/{sessionID}/summary [get]
func (h *tillHandler) getSummary(c *gin.Context) {
	sessionID, ok := pathID(c, "sessionID")
	if !ok {
		return
	}
	summary, err := h.reconciliationService.Summarize(c.Request.Context(), sessionID)
	if err != nil {
		respondError(c, err, "Failed to summarize session")
		return
	}
	c.JSON(http.StatusOK, dto.ToSummaryResponse(summary, h.currency))
}

// listMovements godoc
// @Summary List session movements
// @Tags till
// @Produce json
// @Param sessionID path int true "Session ID"
// @Success 200 {array} dto.MovementResponse
// @Failure 400 {object} map[string]string "Invalid session id"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Session not found"
// @Failure 500 {object} map[string]string "Failed to list movements"
// @Security BearerAuth
// @Router /till/sessions/{sessionID}/movements [get]
func (h *tillHandler) listMovements(c *gin.Context) {
	sessionID, ok := pathID(c, "sessionID")
	if !ok {
		return
	}
	movements, err := h.movementService.ListMovements(c.Request.Context(), sessionID)
	if err != nil {
		respondError(c, err, "Failed to list movements")
		return
	}
	c.JSON(http.StatusOK, dto.ToMovementResponses(movements, h.currency))
}

// closeSession godoc
// @Summary Close the till
// @Description Freezes the session totals against the counted cash and reports the variance.
// @Tags till
// @Accept json
// @Produce json
// @Param sessionID path int true "Session ID"
// @Param count body dto.CloseSessionRequest true "Counted cash"
// @Success 200 {object} dto.CloseSessionResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 409 {object} map[string]string "Session is not open"
// @Failure 500 {object} map[string]string "Failed to close session"
// @Security BearerAuth
// @Router /till/sessions/{sessionID}/close [post]
func (h *tillHandler) closeSession(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	sessionID, ok := pathID(c, "sessionID")
	if !ok {
		return
	}
	var req dto.CloseSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CloseSession", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	operatorID, ok := operator(c)
	if !ok {
		return
	}

	result, err := h.reconciliationService.CloseSession(c.Request.Context(), sessionID, req.CountedCash, operatorID)
	if err != nil {
		respondError(c, err, "Failed to close session")
		return
	}
	c.JSON(http.StatusOK, dto.ToCloseSessionResponse(result, h.currency))
}

// recordWithdrawal godoc
// @Summary Withdraw cash
// @Description Takes cash out of the drawer of the open session.
// @Tags till
// @Accept json
// @Produce json
// @Param withdrawal body dto.WithdrawalRequest true "Amount and concept"
// @Success 201 {object} dto.MovementResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 409 {object} map[string]string "No open session"
// @Failure 500 {object} map[string]string "Failed to record withdrawal"
// @Security BearerAuth
// @Router /till/withdrawals [post]
func (h *tillHandler) recordWithdrawal(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.WithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for RecordWithdrawal", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	operatorID, ok := operator(c)
	if !ok {
		return
	}

	movement, err := h.movementService.RecordWithdrawal(c.Request.Context(), req.Amount, req.Concept, operatorID)
	if err != nil {
		respondError(c, err, "Failed to record withdrawal")
		return
	}
	c.JSON(http.StatusCreated, dto.ToMovementResponse(movement, h.currency))
}
