package handlers_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/SscSPs/sacco_ledger/internal/apperrors"
	"github.com/SscSPs/sacco_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/sacco_ledger/internal/core/ports/services"
	"github.com/SscSPs/sacco_ledger/internal/dto"
	"github.com/SscSPs/sacco_ledger/internal/handlers"
	"github.com/SscSPs/sacco_ledger/internal/middleware"
)

// --- Mock ChartOfAccountsService ---
type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) ResolveAccount(ctx context.Context, scope domain.AccountScope, role domain.AccountRole) (*domain.Account, error) {
	args := m.Called(ctx, scope, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}
func (m *MockAccountService) ResolveFirst(ctx context.Context, role domain.AccountRole, scopes ...domain.AccountScope) (*domain.Account, error) {
	args := m.Called(ctx, role, scopes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}
func (m *MockAccountService) ProvisionGroupAccounts(ctx context.Context, groupID string, userID string) (int, error) {
	args := m.Called(ctx, groupID, userID)
	return args.Int(0), args.Error(1)
}
func (m *MockAccountService) ProvisionOrganizationAccounts(ctx context.Context, organizationID string, userID string) (int, error) {
	args := m.Called(ctx, organizationID, userID)
	return args.Int(0), args.Error(1)
}
func (m *MockAccountService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest, userID string) (*domain.Account, error) {
	args := m.Called(ctx, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}
func (m *MockAccountService) GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}
func (m *MockAccountService) ListAccountsByScope(ctx context.Context, scope domain.AccountScope) ([]domain.Account, error) {
	args := m.Called(ctx, scope)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}
func (m *MockAccountService) DeactivateAccount(ctx context.Context, accountID string, userID string) error {
	args := m.Called(ctx, accountID, userID)
	return args.Error(0)
}

// Ensure mock implements the interface
var _ portssvc.ChartOfAccountsSvcFacade = (*MockAccountService)(nil)

// --- Mock PostingService ---
type MockPostingService struct {
	mock.Mock
}

func (m *MockPostingService) Post(ctx context.Context, event domain.PostingEvent) (*domain.PostingResult, error) {
	args := m.Called(ctx, event)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PostingResult), args.Error(1)
}
func (m *MockPostingService) GetJournal(ctx context.Context, journalID string) (*domain.PostingResult, error) {
	args := m.Called(ctx, journalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PostingResult), args.Error(1)
}
func (m *MockPostingService) ListTransactionsByAccount(ctx context.Context, accountID string, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error) {
	args := m.Called(ctx, accountID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListTransactionsResponse), args.Error(1)
}

// Ensure mock implements the interface
var _ portssvc.PostingSvc = (*MockPostingService)(nil)

// --- Test Suite ---
type AccountHandlerTestSuite struct {
	suite.Suite
	router             *gin.Engine
	mockAccountService *MockAccountService
	mockPostingService *MockPostingService
	mockBalanceService *MockBalanceService
}

func (suite *AccountHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.router = gin.New()
	suite.router.Use(middleware.AuthMiddleware(testJWTSecret))

	suite.mockAccountService = new(MockAccountService)
	suite.mockPostingService = new(MockPostingService)
	suite.mockBalanceService = new(MockBalanceService)

	v1 := suite.router.Group("/api/v1")
	handlers.RegisterAccountRoutes(v1, suite.mockAccountService, suite.mockPostingService, suite.mockBalanceService)
}

func (suite *AccountHandlerTestSuite) get(url, userID string) *httptest.ResponseRecorder {
	token, err := middleware.GenerateToken(testJWTSecret, "sacco-test", userID, time.Hour)
	suite.Require().NoError(err)

	req, _ := http.NewRequest(http.MethodGet, url, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

// --- Test Cases ---

func (suite *AccountHandlerTestSuite) TestListTransactionsByAccount_Success() {
	accountID := uuid.NewString()
	requestingUserID := uuid.NewString()
	limit := 10

	expectedTransactions := []dto.TransactionResponse{
		{
			TransactionID: uuid.NewString(),
			JournalID:     uuid.NewString(),
			AccountID:     accountID,
			Amount:        decimal.NewFromInt(100),
			Type:          string(domain.Debit),
			EventType:     string(domain.EventSavingsDeposit),
		},
		{
			TransactionID: uuid.NewString(),
			JournalID:     uuid.NewString(),
			AccountID:     accountID,
			Amount:        decimal.NewFromInt(50),
			Type:          string(domain.Credit),
			EventType:     string(domain.EventSavingsWithdrawal),
		},
	}
	nextToken := "next-page"
	expectedResponse := &dto.ListTransactionsResponse{
		Transactions: expectedTransactions,
		NextToken:    &nextToken,
	}

	suite.mockPostingService.On("ListTransactionsByAccount",
		mock.Anything,
		accountID,
		mock.MatchedBy(func(p dto.ListTransactionsParams) bool {
			return p.Limit == limit && p.NextToken == nil
		}),
	).Return(expectedResponse, nil).Once()

	w := suite.get(fmt.Sprintf("/api/v1/accounts/%s/transactions?limit=%d", accountID, limit), requestingUserID)

	suite.Equal(http.StatusOK, w.Code, "Expected status OK")

	var responseBody dto.ListTransactionsResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &responseBody))
	suite.Require().Len(responseBody.Transactions, len(expectedTransactions))
	suite.Equal(expectedTransactions[0].TransactionID, responseBody.Transactions[0].TransactionID)
	suite.Equal("CREDIT", responseBody.Transactions[1].Type)
	suite.Require().NotNil(responseBody.NextToken)
	suite.Equal(nextToken, *responseBody.NextToken)

	suite.mockPostingService.AssertExpectations(suite.T())
	suite.mockAccountService.AssertNotCalled(suite.T(), "GetAccountByID", mock.Anything, mock.Anything)
}

func (suite *AccountHandlerTestSuite) TestListTransactionsByAccount_InvalidLimit() {
	w := suite.get("/api/v1/accounts/acc-1/transactions?limit=500", "user-1")

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockPostingService.AssertNotCalled(suite.T(), "ListTransactionsByAccount", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *AccountHandlerTestSuite) TestGetAccountBalance_AsOfEndOfDay() {
	suite.mockBalanceService.On("AccountBalance", mock.Anything, "acc-1", mock.MatchedBy(func(asOf time.Time) bool {
		return asOf.Year() == 2024 && asOf.Month() == time.March && asOf.Day() == 31 && asOf.Hour() == 23
	})).Return(&domain.AccountBalance{
		AccountID:   "acc-1",
		Code:        "G-1000",
		Role:        domain.RoleBank,
		AccountType: domain.Asset,
		Balance:     decimal.RequireFromString("42366.67"),
		AsOf:        time.Date(2024, 3, 31, 23, 59, 59, 0, time.UTC),
	}, nil).Once()

	w := suite.get("/api/v1/accounts/acc-1/balance?asOf=2024-03-31", "user-1")

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.AccountBalanceResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.True(resp.Balance.Equal(decimal.RequireFromString("42366.67")))
}

func (suite *AccountHandlerTestSuite) TestGetAccountBalance_BadDate() {
	w := suite.get("/api/v1/accounts/acc-1/balance?asOf=31-03-2024", "user-1")

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockBalanceService.AssertNotCalled(suite.T(), "AccountBalance", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *AccountHandlerTestSuite) TestGetJournal_NotFound() {
	suite.mockPostingService.On("GetJournal", mock.Anything, "missing").Return(nil, apperrors.ErrNotFound).Once()

	w := suite.get("/api/v1/journals/missing", "user-1")

	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *AccountHandlerTestSuite) TestGetAccount_Success() {
	suite.mockAccountService.On("GetAccountByID", mock.Anything, "acc-1").Return(&domain.Account{
		AccountID:   "acc-1",
		Code:        "G-1000",
		Name:        "Umoja Bank",
		AccountType: domain.Asset,
		Role:        domain.RoleBank,
		Scope:       domain.GroupScope("group-1"),
		IsActive:    true,
	}, nil).Once()

	w := suite.get("/api/v1/accounts/acc-1", "user-1")

	suite.Equal(http.StatusOK, w.Code)
	suite.Contains(w.Body.String(), `"code":"G-1000"`)
}

// --- Run Test Suite ---
func TestAccountHandler(t *testing.T) {
	suite.Run(t, new(AccountHandlerTestSuite))
}
