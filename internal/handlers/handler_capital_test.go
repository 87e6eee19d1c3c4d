package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/SscSPs/sacco_ledger/internal/apperrors"
	"github.com/SscSPs/sacco_ledger/internal/core/domain"
	"github.com/SscSPs/sacco_ledger/internal/dto"
	"github.com/SscSPs/sacco_ledger/internal/handlers"
	"github.com/SscSPs/sacco_ledger/internal/middleware"
)

// CapitalAndSavingsHandlerTestSuite covers the capital and member savings routes.
type CapitalAndSavingsHandlerTestSuite struct {
	suite.Suite
	router             *gin.Engine
	mockCapitalService *MockCapitalService
	mockSavingsService *MockSavingsService
	mockGroupService   *MockGroupService
	mockBalanceService *MockBalanceService
	token              string
}

func (suite *CapitalAndSavingsHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.router = gin.New()
	suite.router.Use(middleware.AuthMiddleware(testJWTSecret))

	suite.mockCapitalService = new(MockCapitalService)
	suite.mockSavingsService = new(MockSavingsService)
	suite.mockGroupService = new(MockGroupService)
	suite.mockBalanceService = new(MockBalanceService)

	v1 := suite.router.Group("/api/v1")
	handlers.RegisterCapitalRoutes(v1, suite.mockCapitalService)
	handlers.RegisterMemberRoutes(v1, suite.mockGroupService, suite.mockSavingsService, suite.mockBalanceService)

	token, err := middleware.GenerateToken(testJWTSecret, "sacco-test", "director-1", time.Hour)
	suite.Require().NoError(err)
	suite.token = token
}

func (suite *CapitalAndSavingsHandlerTestSuite) do(method, url, body string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, url, bytes.NewBufferString(body))
	req.Header.Set("Authorization", "Bearer "+suite.token)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *CapitalAndSavingsHandlerTestSuite) TestAdvanceCapital_Success() {
	transfer := &domain.CapitalTransfer{
		TransferID:   "tr-1",
		GroupID:      "group-1",
		TransferType: domain.TransferAdvance,
		Amount:       decimal.NewFromInt(50000),
		Purpose:      "Lending float",
		ApprovedBy:   "director-1",
		Status:       domain.TransferCompleted,
		JournalID:    "j-1",
	}
	suite.mockCapitalService.On("AdvanceCapital", mock.Anything, "group-1", decimalEq("50000"), "Lending float", "director-1", "BOARD-7").
		Return(transfer, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/groups/group-1/capital/advances",
		`{"amount":"50000","purpose":"Lending float","referenceNumber":"BOARD-7"}`)

	suite.Equal(http.StatusCreated, w.Code)
	var resp dto.CapitalTransferResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("ADVANCE", resp.TransferType)
	suite.Equal("j-1", resp.JournalID)
}

func (suite *CapitalAndSavingsHandlerTestSuite) TestReturnCapital_InsufficientGroupFunds() {
	suite.mockCapitalService.On("ReturnCapital", mock.Anything, "group-1", decimalEq("1500"), "director-1", "").
		Return(nil, apperrors.NewFundsError(apperrors.ErrInsufficientGroupFunds, "bank", decimal.NewFromInt(1000), decimal.NewFromInt(1500))).Once()

	w := suite.do(http.MethodPost, "/api/v1/groups/group-1/capital/returns", `{"amount":"1500"}`)

	suite.Equal(http.StatusConflict, w.Code)
	suite.Contains(w.Body.String(), `"shortfall":"500.00"`)
}

func (suite *CapitalAndSavingsHandlerTestSuite) TestCapitalOverview() {
	suite.mockCapitalService.On("GetCapitalPosition", mock.Anything, "group-1").Return(&domain.CapitalPosition{
		GroupID: "group-1", Advanced: decimal.NewFromInt(30000), Returned: decimal.NewFromInt(10000), Outstanding: decimal.NewFromInt(20000),
	}, nil).Once()
	suite.mockCapitalService.On("ListCapitalTransfers", mock.Anything, "group-1").Return([]domain.CapitalTransfer{}, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/groups/group-1/capital", "")

	suite.Equal(http.StatusOK, w.Code)
	suite.Contains(w.Body.String(), `"netCapitalOutstanding":"20000"`)
	suite.Contains(w.Body.String(), `"transfers":[]`)
}

func (suite *CapitalAndSavingsHandlerTestSuite) TestWithdraw_InsufficientSavings() {
	suite.mockSavingsService.On("Withdraw", mock.Anything, "member-1", mock.MatchedBy(func(req dto.SavingsRequest) bool {
		return req.Amount.Equal(decimal.NewFromInt(700))
	}), "director-1").Return(nil, apperrors.NewFundsError(apperrors.ErrInsufficientSavings, "member-1", decimal.NewFromInt(500), decimal.NewFromInt(700))).Once()

	w := suite.do(http.MethodPost, "/api/v1/members/member-1/savings/withdrawals", `{"amount":"700"}`)

	suite.Equal(http.StatusConflict, w.Code)
	suite.Contains(w.Body.String(), "insufficient savings balance")
}

func (suite *CapitalAndSavingsHandlerTestSuite) TestDeposit_Success() {
	result := &domain.PostingResult{
		Journal: domain.Journal{JournalID: "j-9", EventType: domain.EventSavingsDeposit, ReferenceID: "RCPT-1", Amount: decimal.NewFromInt(500)},
		Transactions: []domain.Transaction{
			{TransactionID: "t-1", JournalID: "j-9", Amount: decimal.NewFromInt(500), TransactionType: domain.Debit},
			{TransactionID: "t-2", JournalID: "j-9", Amount: decimal.NewFromInt(500), TransactionType: domain.Credit},
		},
	}
	suite.mockSavingsService.On("Deposit", mock.Anything, "member-1", mock.Anything, "director-1").Return(result, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/members/member-1/savings/deposits", `{"amount":"500","referenceID":"RCPT-1"}`)

	suite.Equal(http.StatusCreated, w.Code)
	var resp dto.GetJournalResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("RCPT-1", resp.Journal.ReferenceID)
	suite.Len(resp.Transactions, 2)
}

func (suite *CapitalAndSavingsHandlerTestSuite) TestDeposit_ZeroAmountRejectedByBinding() {
	w := suite.do(http.MethodPost, "/api/v1/members/member-1/savings/deposits", `{"amount":"0"}`)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockSavingsService.AssertNotCalled(suite.T(), "Deposit", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *CapitalAndSavingsHandlerTestSuite) TestSavingsBalance_UnknownMember() {
	suite.mockGroupService.On("GetMemberByID", mock.Anything, "ghost").Return(nil, apperrors.ErrNotFound).Once()

	w := suite.do(http.MethodGet, "/api/v1/members/ghost/savings", "")

	suite.Equal(http.StatusNotFound, w.Code)
	suite.mockBalanceService.AssertNotCalled(suite.T(), "MemberSavingsBalance", mock.Anything, mock.Anything)
}

// --- Run Test Suite ---
func TestCapitalAndSavingsHandler(t *testing.T) {
	suite.Run(t, new(CapitalAndSavingsHandlerTestSuite))
}
