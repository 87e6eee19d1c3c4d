package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/SscSPs/sacco_ledger/internal/core/ports/services"
	"github.com/SscSPs/sacco_ledger/internal/middleware"
)

type maintenanceHandler struct {
	maintenanceService portssvc.MaintenanceSvc
}

// RegisterMaintenanceRoutes exposes a manual trigger for the daily loan housekeeping.
func RegisterMaintenanceRoutes(rg *gin.RouterGroup, maintenanceService portssvc.MaintenanceSvc) {
	h := &maintenanceHandler{maintenanceService: maintenanceService}
	rg.POST("/maintenance/daily", h.runDaily)
}

// runDaily godoc
// @Summary Run daily loan maintenance
// @Description Marks overdue installments and matured loans. Safe to repeat.
// @Tags maintenance
// @Produce  json
// @Param   asOf query string false "As-of date (YYYY-MM-DD), defaults to today"
// @Success 200 {object} domain.MaintenanceReport
// @Security BearerAuth
// @Router /maintenance/daily [post]
func (h *maintenanceHandler) runDaily(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	asOf, ok := parseAsOf(c, logger)
	if !ok {
		return
	}

	report, err := h.maintenanceService.RunDailyMaintenance(c.Request.Context(), asOf)
	if err != nil {
		respondError(c, logger, err, "Failed to run maintenance")
		return
	}
	logger.Info("Daily maintenance triggered manually",
		slog.Int64("overdue_installments", report.OverdueInstallments),
		slog.Int64("matured_loans", report.MaturedLoans))
	c.JSON(http.StatusOK, report)
}
