package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"github.com/SscSPs/sacco_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/sacco_ledger/internal/core/ports/services"
	"github.com/SscSPs/sacco_ledger/internal/dto"
	"github.com/SscSPs/sacco_ledger/internal/middleware"
)

// loanHandler handles HTTP requests related to loans.
type loanHandler struct {
	loanService    portssvc.LoanSvcFacade
	balanceService portssvc.BalanceSvc
}

// RegisterLoanRoutes registers routes related to loans.
func RegisterLoanRoutes(rg *gin.RouterGroup, loanService portssvc.LoanSvcFacade, balanceService portssvc.BalanceSvc) {
	h := &loanHandler{loanService: loanService, balanceService: balanceService}

	rg.GET("/groups/:groupID/loans", h.listLoans)

	loans := rg.Group("/loans")
	{
		loans.POST("", h.applyLoan)
		loans.GET("/:loanID", h.getLoan)
		loans.POST("/:loanID/approve", h.approveLoan)
		loans.POST("/:loanID/reject", h.rejectLoan)
		loans.POST("/:loanID/disburse", h.disburseLoan)
		loans.POST("/:loanID/repayments", h.recordRepayment)
		loans.GET("/:loanID/repayments", h.listRepayments)
		loans.POST("/:loanID/charges", h.accrueCharge)
		loans.GET("/:loanID/outstanding", h.getOutstanding)
		loans.GET("/:loanID/schedule", h.getSchedule)
		loans.GET("/:loanID/schedule/export", h.exportSchedule)
	}
}

// applyLoan godoc
// @Summary Apply for a loan
// @Description Records a pending application priced from the loan product
// @Tags loans
// @Accept  json
// @Produce  json
// @Param   loan body dto.ApplyLoanRequest true "Application"
// @Success 201 {object} dto.LoanResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 404 {object} map[string]string "Member or product not found"
// @Security BearerAuth
// @Router /loans [post]
func (h *loanHandler) applyLoan(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.ApplyLoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for ApplyLoan", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	loan, err := h.loanService.ApplyLoan(c.Request.Context(), req, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to apply for loan")
		return
	}

	logger.Info("Loan application recorded", slog.String("loan_id", loan.LoanID))
	c.JSON(http.StatusCreated, dto.ToLoanResponse(loan))
}

// getLoan godoc
// @Summary Get a loan
// @Tags loans
// @Produce  json
// @Param   loanID path string true "Loan ID"
// @Success 200 {object} dto.LoanResponse
// @Failure 404 {object} map[string]string "Loan not found"
// @Security BearerAuth
// @Router /loans/{loanID} [get]
func (h *loanHandler) getLoan(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("loan_id", c.Param("loanID")))

	loan, err := h.loanService.GetLoan(c.Request.Context(), c.Param("loanID"))
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve loan")
		return
	}
	c.JSON(http.StatusOK, dto.ToLoanResponse(loan))
}

// listLoans godoc
// @Summary List loans of a group
// @Tags loans
// @Produce  json
// @Param   groupID path string true "Group ID"
// @Param   status query string false "Filter by status"
// @Param   limit query int false "Page size" default(20)
// @Param   nextToken query string false "Token from the previous page"
// @Success 200 {object} dto.ListLoansResponse
// @Failure 404 {object} map[string]string "Group not found"
// @Security BearerAuth
// @Router /groups/{groupID}/loans [get]
func (h *loanHandler) listLoans(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("group_id", c.Param("groupID")))
	var params dto.ListLoansParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query params for ListLoans", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	resp, err := h.loanService.ListLoansByGroup(c.Request.Context(), c.Param("groupID"), params)
	if err != nil {
		respondError(c, logger, err, "Failed to list loans")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// approveLoan godoc
// @Summary Approve a loan
// @Description Approves a pending loan for at most the applied amount. Depending on configuration the loan is disbursed in the same step.
// @Tags loans
// @Accept  json
// @Produce  json
// @Param   loanID path string true "Loan ID"
// @Param   approval body dto.ApproveLoanRequest true "Approved amount"
// @Success 200 {object} dto.LoanResponse
// @Failure 400 {object} map[string]string "Amount exceeds applied"
// @Failure 409 {object} map[string]string "Invalid loan state or insufficient group funds"
// @Security BearerAuth
// @Router /loans/{loanID}/approve [post]
func (h *loanHandler) approveLoan(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("loan_id", c.Param("loanID")))
	var req dto.ApproveLoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for ApproveLoan", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	loan, err := h.loanService.ApproveLoan(c.Request.Context(), c.Param("loanID"), req.ApprovedAmount, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to approve loan")
		return
	}
	c.JSON(http.StatusOK, dto.ToLoanResponse(loan))
}

// rejectLoan godoc
// @Summary Reject a loan
// @Tags loans
// @Accept  json
// @Produce  json
// @Param   loanID path string true "Loan ID"
// @Param   rejection body dto.RejectLoanRequest true "Reason"
// @Success 200 {object} dto.LoanResponse
// @Failure 409 {object} map[string]string "Invalid loan state"
// @Security BearerAuth
// @Router /loans/{loanID}/reject [post]
func (h *loanHandler) rejectLoan(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("loan_id", c.Param("loanID")))
	var req dto.RejectLoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for RejectLoan", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	loan, err := h.loanService.RejectLoan(c.Request.Context(), c.Param("loanID"), req.Reason, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to reject loan")
		return
	}
	c.JSON(http.StatusOK, dto.ToLoanResponse(loan))
}

// disburseLoan godoc
// @Summary Disburse an approved loan
// @Tags loans
// @Produce  json
// @Param   loanID path string true "Loan ID"
// @Success 200 {object} dto.LoanResponse
// @Failure 409 {object} map[string]string "Invalid loan state or insufficient group funds"
// @Security BearerAuth
// @Router /loans/{loanID}/disburse [post]
func (h *loanHandler) disburseLoan(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("loan_id", c.Param("loanID")))
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	loan, err := h.loanService.DisburseLoan(c.Request.Context(), c.Param("loanID"), userID)
	if err != nil {
		respondError(c, logger, err, "Failed to disburse loan")
		return
	}
	c.JSON(http.StatusOK, dto.ToLoanResponse(loan))
}

// recordRepayment godoc
// @Summary Record a repayment
// @Description Allocates the payment across charges, interest and principal and posts it
// @Tags loans
// @Accept  json
// @Produce  json
// @Param   loanID path string true "Loan ID"
// @Param   repayment body dto.RecordRepaymentRequest true "Payment"
// @Success 201 {object} dto.RepaymentResponse
// @Failure 400 {object} map[string]string "Invalid payment amount"
// @Failure 409 {object} map[string]string "Loan does not accept repayments"
// @Security BearerAuth
// @Router /loans/{loanID}/repayments [post]
func (h *loanHandler) recordRepayment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("loan_id", c.Param("loanID")))
	var req dto.RecordRepaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for RecordRepayment", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	var repaymentDate time.Time
	if req.RepaymentDate != nil {
		repaymentDate = *req.RepaymentDate
	}
	repayment, err := h.loanService.RecordRepayment(c.Request.Context(), c.Param("loanID"), req.Amount, req.PaymentMethod, repaymentDate, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to record repayment")
		return
	}

	logger.Info("Repayment recorded", slog.String("repayment_id", repayment.RepaymentID))
	c.JSON(http.StatusCreated, dto.ToRepaymentResponse(repayment))
}

// listRepayments godoc
// @Summary List repayments of a loan
// @Tags loans
// @Produce  json
// @Param   loanID path string true "Loan ID"
// @Success 200 {array} dto.RepaymentResponse
// @Failure 404 {object} map[string]string "Loan not found"
// @Security BearerAuth
// @Router /loans/{loanID}/repayments [get]
func (h *loanHandler) listRepayments(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("loan_id", c.Param("loanID")))

	repayments, err := h.loanService.ListRepayments(c.Request.Context(), c.Param("loanID"))
	if err != nil {
		respondError(c, logger, err, "Failed to list repayments")
		return
	}
	c.JSON(http.StatusOK, dto.ToRepaymentResponses(repayments))
}

// accrueCharge godoc
// @Summary Accrue a loan charge
// @Description Bills a charge for a period. A period can be billed only once.
// @Tags loans
// @Accept  json
// @Produce  json
// @Param   loanID path string true "Loan ID"
// @Param   charge body dto.AccrueChargeRequest true "Charge"
// @Success 201 {object} dto.GetJournalResponse
// @Failure 409 {object} map[string]string "Period already billed or invalid loan state"
// @Security BearerAuth
// @Router /loans/{loanID}/charges [post]
func (h *loanHandler) accrueCharge(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("loan_id", c.Param("loanID")))
	var req dto.AccrueChargeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for AccrueCharge", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	result, err := h.loanService.AccrueLoanCharge(c.Request.Context(), c.Param("loanID"), req.Amount, req.Period, req.Description, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to accrue charge")
		return
	}
	c.JSON(http.StatusCreated, dto.ToGetJournalResponse(result))
}

// getOutstanding godoc
// @Summary Outstanding balance of a loan
// @Tags loans
// @Produce  json
// @Param   loanID path string true "Loan ID"
// @Success 200 {object} dto.LoanOutstandingResponse
// @Failure 404 {object} map[string]string "Loan not found"
// @Security BearerAuth
// @Router /loans/{loanID}/outstanding [get]
func (h *loanHandler) getOutstanding(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("loan_id", c.Param("loanID")))

	outstanding, err := h.balanceService.LoanOutstanding(c.Request.Context(), c.Param("loanID"))
	if err != nil {
		respondError(c, logger, err, "Failed to compute outstanding balance")
		return
	}
	c.JSON(http.StatusOK, dto.LoanOutstandingResponse{
		LoanID:    c.Param("loanID"),
		Principal: outstanding.Principal,
		Interest:  outstanding.Interest,
		Charges:   outstanding.Charges,
		Total:     outstanding.Total(),
	})
}

// getSchedule godoc
// @Summary Amortization schedule of a loan
// @Tags loans
// @Produce  json
// @Param   loanID path string true "Loan ID"
// @Success 200 {array} dto.InstallmentResponse
// @Failure 404 {object} map[string]string "Loan not found"
// @Security BearerAuth
// @Router /loans/{loanID}/schedule [get]
func (h *loanHandler) getSchedule(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("loan_id", c.Param("loanID")))

	schedule, err := h.loanService.GetSchedule(c.Request.Context(), c.Param("loanID"))
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve schedule")
		return
	}
	c.JSON(http.StatusOK, dto.ToInstallmentResponses(schedule))
}

// exportSchedule godoc
// @Summary Export the amortization schedule as a spreadsheet
// @Tags loans
// @Produce  application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param   loanID path string true "Loan ID"
// @Success 200 {file} file
// @Failure 404 {object} map[string]string "Loan not found"
// @Security BearerAuth
// @Router /loans/{loanID}/schedule/export [get]
func (h *loanHandler) exportSchedule(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("loan_id", c.Param("loanID")))
	loanID := c.Param("loanID")

	schedule, err := h.loanService.GetSchedule(c.Request.Context(), loanID)
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve schedule")
		return
	}

	f := scheduleWorkbook(schedule)
	defer f.Close()

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=schedule_%s.xlsx", loanID))
	if err := f.Write(c.Writer); err != nil {
		logger.Error("Failed to write schedule workbook", slog.String("error", err.Error()))
	}
}

var scheduleHeaders = []string{"No.", "Due Date", "Principal", "Interest", "Total", "Balance", "Status"}

func scheduleWorkbook(schedule []domain.Installment) *excelize.File {
	const sheet = "Schedule"
	f := excelize.NewFile()
	_ = f.SetSheetName("Sheet1", sheet)

	for i, header := range scheduleHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, header)
	}
	for i, inst := range schedule {
		row := i + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), inst.InstallmentNumber)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), inst.DueDate.Format("2006-01-02"))
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), inst.PrincipalDue.InexactFloat64())
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), inst.InterestDue.InexactFloat64())
		f.SetCellValue(sheet, fmt.Sprintf("E%d", row), inst.TotalDue.InexactFloat64())
		f.SetCellValue(sheet, fmt.Sprintf("F%d", row), inst.BalanceAfter.InexactFloat64())
		f.SetCellValue(sheet, fmt.Sprintf("G%d", row), string(inst.Status))
	}
	return f
}
