package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/SscSPs/sacco_ledger/internal/core/ports/services"
	"github.com/SscSPs/sacco_ledger/internal/dto"
	"github.com/SscSPs/sacco_ledger/internal/middleware"
)

// capitalHandler handles capital movements between the organization and a group.
type capitalHandler struct {
	capitalService portssvc.CapitalSvc
}

// RegisterCapitalRoutes registers routes related to capital transfers.
func RegisterCapitalRoutes(rg *gin.RouterGroup, capitalService portssvc.CapitalSvc) {
	h := &capitalHandler{capitalService: capitalService}

	capital := rg.Group("/groups/:groupID/capital")
	{
		capital.GET("", h.getCapitalOverview)
		capital.POST("/advances", h.advanceCapital)
		capital.POST("/returns", h.returnCapital)
	}
}

// getCapitalOverview godoc
// @Summary Capital position of a group
// @Tags capital
// @Produce  json
// @Param   groupID path string true "Group ID"
// @Success 200 {object} dto.CapitalOverviewResponse
// @Failure 404 {object} map[string]string "Group not found"
// @Security BearerAuth
// @Router /groups/{groupID}/capital [get]
func (h *capitalHandler) getCapitalOverview(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("group_id", c.Param("groupID")))
	groupID := c.Param("groupID")

	position, err := h.capitalService.GetCapitalPosition(c.Request.Context(), groupID)
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve capital position")
		return
	}
	transfers, err := h.capitalService.ListCapitalTransfers(c.Request.Context(), groupID)
	if err != nil {
		respondError(c, logger, err, "Failed to list capital transfers")
		return
	}
	c.JSON(http.StatusOK, dto.CapitalOverviewResponse{
		Position:  *position,
		Transfers: dto.ToCapitalTransferResponses(transfers),
	})
}

// advanceCapital godoc
// @Summary Advance capital to a group
// @Tags capital
// @Accept  json
// @Produce  json
// @Param   groupID path string true "Group ID"
// @Param   advance body dto.AdvanceCapitalRequest true "Advance"
// @Success 201 {object} dto.CapitalTransferResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 409 {object} map[string]string "Insufficient organization funds"
// @Security BearerAuth
// @Router /groups/{groupID}/capital/advances [post]
func (h *capitalHandler) advanceCapital(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("group_id", c.Param("groupID")))
	var req dto.AdvanceCapitalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for AdvanceCapital", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	transfer, err := h.capitalService.AdvanceCapital(c.Request.Context(), c.Param("groupID"), req.Amount, req.Purpose, userID, req.ReferenceNumber)
	if err != nil {
		respondError(c, logger, err, "Failed to advance capital")
		return
	}
	c.JSON(http.StatusCreated, dto.ToCapitalTransferResponse(transfer))
}

// returnCapital godoc
// @Summary Return capital to the organization
// @Tags capital
// @Accept  json
// @Produce  json
// @Param   groupID path string true "Group ID"
// @Param   return body dto.ReturnCapitalRequest true "Return"
// @Success 201 {object} dto.CapitalTransferResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 409 {object} map[string]string "Insufficient group funds"
// @Security BearerAuth
// @Router /groups/{groupID}/capital/returns [post]
func (h *capitalHandler) returnCapital(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("group_id", c.Param("groupID")))
	var req dto.ReturnCapitalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for ReturnCapital", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	transfer, err := h.capitalService.ReturnCapital(c.Request.Context(), c.Param("groupID"), req.Amount, userID, req.Notes)
	if err != nil {
		respondError(c, logger, err, "Failed to return capital")
		return
	}
	c.JSON(http.StatusCreated, dto.ToCapitalTransferResponse(transfer))
}
