package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SscSPs/sacco_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/sacco_ledger/internal/core/ports/services"
	"github.com/SscSPs/sacco_ledger/internal/dto"
	"github.com/SscSPs/sacco_ledger/internal/middleware"
)

// memberHandler handles member lookups and savings movements.
type memberHandler struct {
	groupService   portssvc.GroupReaderSvc
	savingsService portssvc.SavingsSvc
	balanceService portssvc.BalanceSvc
}

// RegisterMemberRoutes registers routes related to members.
func RegisterMemberRoutes(rg *gin.RouterGroup, groupService portssvc.GroupReaderSvc, savingsService portssvc.SavingsSvc, balanceService portssvc.BalanceSvc) {
	h := &memberHandler{groupService: groupService, savingsService: savingsService, balanceService: balanceService}

	members := rg.Group("/members/:memberID")
	{
		members.GET("", h.getMember)
		members.GET("/savings", h.getSavingsBalance)
		members.POST("/savings/deposits", h.deposit)
		members.POST("/savings/withdrawals", h.withdraw)
	}
}

// getMember godoc
// @Summary Get a member
// @Tags members
// @Produce  json
// @Param   memberID path string true "Member ID"
// @Success 200 {object} dto.MemberResponse
// @Failure 404 {object} map[string]string "Member not found"
// @Security BearerAuth
// @Router /members/{memberID} [get]
func (h *memberHandler) getMember(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("member_id", c.Param("memberID")))

	member, err := h.groupService.GetMemberByID(c.Request.Context(), c.Param("memberID"))
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve member")
		return
	}
	c.JSON(http.StatusOK, dto.ToMemberResponse(member))
}

// getSavingsBalance godoc
// @Summary Member savings balance
// @Tags members
// @Produce  json
// @Param   memberID path string true "Member ID"
// @Success 200 {object} dto.SavingsBalanceResponse
// @Failure 404 {object} map[string]string "Member not found"
// @Security BearerAuth
// @Router /members/{memberID}/savings [get]
func (h *memberHandler) getSavingsBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("member_id", c.Param("memberID")))
	memberID := c.Param("memberID")

	if _, err := h.groupService.GetMemberByID(c.Request.Context(), memberID); err != nil {
		respondError(c, logger, err, "Failed to retrieve member")
		return
	}
	balance, err := h.balanceService.MemberSavingsBalance(c.Request.Context(), memberID)
	if err != nil {
		respondError(c, logger, err, "Failed to compute savings balance")
		return
	}
	c.JSON(http.StatusOK, dto.SavingsBalanceResponse{MemberID: memberID, Balance: balance})
}

// deposit godoc
// @Summary Record a savings deposit
// @Tags members
// @Accept  json
// @Produce  json
// @Param   memberID path string true "Member ID"
// @Param   deposit body dto.SavingsRequest true "Deposit"
// @Success 201 {object} dto.GetJournalResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 409 {object} map[string]string "Duplicate reference"
// @Security BearerAuth
// @Router /members/{memberID}/savings/deposits [post]
func (h *memberHandler) deposit(c *gin.Context) {
	h.moveSavings(c, h.savingsService.Deposit, "deposit")
}

// withdraw godoc
// @Summary Record a savings withdrawal
// @Tags members
// @Accept  json
// @Produce  json
// @Param   memberID path string true "Member ID"
// @Param   withdrawal body dto.SavingsRequest true "Withdrawal"
// @Success 201 {object} dto.GetJournalResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 409 {object} map[string]string "Insufficient savings or group funds"
// @Security BearerAuth
// @Router /members/{memberID}/savings/withdrawals [post]
func (h *memberHandler) withdraw(c *gin.Context) {
	h.moveSavings(c, h.savingsService.Withdraw, "withdrawal")
}

func (h *memberHandler) moveSavings(c *gin.Context, move func(ctx context.Context, memberID string, req dto.SavingsRequest, userID string) (*domain.PostingResult, error), kind string) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("member_id", c.Param("memberID")))
	var req dto.SavingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for savings "+kind, slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	result, err := move(c.Request.Context(), c.Param("memberID"), req, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to record savings "+kind)
		return
	}

	logger.Info("Savings "+kind+" recorded", slog.String("journal_id", result.Journal.JournalID))
	c.JSON(http.StatusCreated, dto.ToGetJournalResponse(result))
}
