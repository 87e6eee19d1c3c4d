package handlers_test

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/SscSPs/sacco_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/sacco_ledger/internal/core/ports/services"
	"github.com/SscSPs/sacco_ledger/internal/dto"
)

// --- Mock LoanService ---
type MockLoanService struct {
	mock.Mock
}

func (m *MockLoanService) GetLoan(ctx context.Context, loanID string) (*domain.Loan, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Loan), args.Error(1)
}
func (m *MockLoanService) ListLoansByGroup(ctx context.Context, groupID string, params dto.ListLoansParams) (*dto.ListLoansResponse, error) {
	args := m.Called(ctx, groupID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListLoansResponse), args.Error(1)
}
func (m *MockLoanService) GetSchedule(ctx context.Context, loanID string) ([]domain.Installment, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Installment), args.Error(1)
}
func (m *MockLoanService) ListRepayments(ctx context.Context, loanID string) ([]domain.LoanRepayment, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LoanRepayment), args.Error(1)
}
func (m *MockLoanService) ApplyLoan(ctx context.Context, req dto.ApplyLoanRequest, userID string) (*domain.Loan, error) {
	args := m.Called(ctx, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Loan), args.Error(1)
}
func (m *MockLoanService) ApproveLoan(ctx context.Context, loanID string, approvedAmount decimal.Decimal, approverID string) (*domain.Loan, error) {
	args := m.Called(ctx, loanID, approvedAmount, approverID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Loan), args.Error(1)
}
func (m *MockLoanService) RejectLoan(ctx context.Context, loanID string, reason string, userID string) (*domain.Loan, error) {
	args := m.Called(ctx, loanID, reason, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Loan), args.Error(1)
}
func (m *MockLoanService) DisburseLoan(ctx context.Context, loanID string, userID string) (*domain.Loan, error) {
	args := m.Called(ctx, loanID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Loan), args.Error(1)
}
func (m *MockLoanService) RecordRepayment(ctx context.Context, loanID string, amount decimal.Decimal, paymentMethod string, repaymentDate time.Time, userID string) (*domain.LoanRepayment, error) {
	args := m.Called(ctx, loanID, amount, paymentMethod, repaymentDate, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LoanRepayment), args.Error(1)
}
func (m *MockLoanService) AccrueLoanCharge(ctx context.Context, loanID string, amount decimal.Decimal, period string, description string, userID string) (*domain.PostingResult, error) {
	args := m.Called(ctx, loanID, amount, period, description, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PostingResult), args.Error(1)
}

var _ portssvc.LoanSvcFacade = (*MockLoanService)(nil)

// --- Mock BalanceService ---
type MockBalanceService struct {
	mock.Mock
}

func (m *MockBalanceService) AccountBalance(ctx context.Context, accountID string, asOf time.Time) (*domain.AccountBalance, error) {
	args := m.Called(ctx, accountID, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AccountBalance), args.Error(1)
}
func (m *MockBalanceService) GroupFinancialSummary(ctx context.Context, groupID string, asOf time.Time) (*domain.GroupFinancialSummary, error) {
	args := m.Called(ctx, groupID, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GroupFinancialSummary), args.Error(1)
}
func (m *MockBalanceService) LoanOutstanding(ctx context.Context, loanID string) (*domain.Outstanding, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Outstanding), args.Error(1)
}
func (m *MockBalanceService) MemberSavingsBalance(ctx context.Context, memberID string) (decimal.Decimal, error) {
	args := m.Called(ctx, memberID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

var _ portssvc.BalanceSvc = (*MockBalanceService)(nil)

// --- Mock CapitalService ---
type MockCapitalService struct {
	mock.Mock
}

func (m *MockCapitalService) AdvanceCapital(ctx context.Context, groupID string, amount decimal.Decimal, purpose string, approverID string, referenceNumber string) (*domain.CapitalTransfer, error) {
	args := m.Called(ctx, groupID, amount, purpose, approverID, referenceNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CapitalTransfer), args.Error(1)
}
func (m *MockCapitalService) ReturnCapital(ctx context.Context, groupID string, amount decimal.Decimal, initiatorID string, notes string) (*domain.CapitalTransfer, error) {
	args := m.Called(ctx, groupID, amount, initiatorID, notes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CapitalTransfer), args.Error(1)
}
func (m *MockCapitalService) GetCapitalPosition(ctx context.Context, groupID string) (*domain.CapitalPosition, error) {
	args := m.Called(ctx, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CapitalPosition), args.Error(1)
}
func (m *MockCapitalService) ListCapitalTransfers(ctx context.Context, groupID string) ([]domain.CapitalTransfer, error) {
	args := m.Called(ctx, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CapitalTransfer), args.Error(1)
}

var _ portssvc.CapitalSvc = (*MockCapitalService)(nil)

// --- Mock SavingsService ---
type MockSavingsService struct {
	mock.Mock
}

func (m *MockSavingsService) Deposit(ctx context.Context, memberID string, req dto.SavingsRequest, userID string) (*domain.PostingResult, error) {
	args := m.Called(ctx, memberID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PostingResult), args.Error(1)
}
func (m *MockSavingsService) Withdraw(ctx context.Context, memberID string, req dto.SavingsRequest, userID string) (*domain.PostingResult, error) {
	args := m.Called(ctx, memberID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PostingResult), args.Error(1)
}

var _ portssvc.SavingsSvc = (*MockSavingsService)(nil)

// --- Mock GroupService ---
type MockGroupService struct {
	mock.Mock
}

func (m *MockGroupService) GetGroupByID(ctx context.Context, groupID string) (*domain.Group, error) {
	args := m.Called(ctx, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Group), args.Error(1)
}
func (m *MockGroupService) ListGroups(ctx context.Context, limit int, offset int) ([]domain.Group, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Group), args.Error(1)
}
func (m *MockGroupService) GetMemberByID(ctx context.Context, memberID string) (*domain.Member, error) {
	args := m.Called(ctx, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Member), args.Error(1)
}
func (m *MockGroupService) ListMembers(ctx context.Context, groupID string) ([]domain.Member, error) {
	args := m.Called(ctx, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Member), args.Error(1)
}
func (m *MockGroupService) CreateGroup(ctx context.Context, req dto.CreateGroupRequest, userID string) (*domain.Group, error) {
	args := m.Called(ctx, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Group), args.Error(1)
}
func (m *MockGroupService) CreateMember(ctx context.Context, groupID string, req dto.CreateMemberRequest, userID string) (*domain.Member, error) {
	args := m.Called(ctx, groupID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Member), args.Error(1)
}

var _ portssvc.GroupSvcFacade = (*MockGroupService)(nil)
