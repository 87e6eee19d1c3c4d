package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/SscSPs/sacco_ledger/internal/apperrors"
	"github.com/SscSPs/sacco_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/sacco_ledger/internal/core/ports/services"
	"github.com/SscSPs/sacco_ledger/internal/core/services"
	"github.com/SscSPs/sacco_ledger/internal/dto"
)

const (
	testOrgID  = "org-1"
	testUserID = "user-1"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// SettlementTestSuite runs the posting, loan, capital and savings services against the in-memory store.
type SettlementTestSuite struct {
	suite.Suite
	ctx      context.Context
	store    *memStore
	notifier *MockRepaymentNotifier
	clock    time.Time
	policy   domain.SettlementPolicy

	coa      portssvc.ChartOfAccountsSvcFacade
	posting  portssvc.PostingSvc
	balances portssvc.BalanceSvc
	groups   portssvc.GroupSvcFacade
	products portssvc.ProductSvc
	loans    portssvc.LoanSvcFacade
	capital  portssvc.CapitalSvc
	savings  portssvc.SavingsSvc
	upkeep   portssvc.MaintenanceSvc

	group   *domain.Group
	member  *domain.Member
	product *domain.LoanProduct
}

func (suite *SettlementTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.clock = time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	suite.policy = domain.DefaultSettlementPolicy()
	suite.build()
}

// build wires the services and seeds an organization with 100000 in the bank, a group, a member and a product.
func (suite *SettlementTestSuite) build() {
	suite.store = newMemStore()
	suite.notifier = new(MockRepaymentNotifier)
	suite.notifier.On("NotifyRepayment", mock.Anything, mock.Anything).Return(nil).Maybe()
	repos := suite.store.provider()
	now := func() time.Time { return suite.clock }

	suite.coa = services.NewChartOfAccountsService(repos.AccountRepo)
	suite.posting = services.NewPostingService(repos.Transactor, repos.JournalRepo, repos.AccountRepo, suite.coa, services.WithPostingClock(now))
	suite.balances = services.NewBalanceService(repos.ReportingRepo, repos.LoanRepo, repos.GroupRepo)
	suite.groups = services.NewGroupService(repos.Transactor, repos.GroupRepo, suite.coa)
	suite.products = services.NewProductService(repos.ProductRepo)
	suite.loans = services.NewLoanService(repos.Transactor, repos.LoanRepo, repos.ProductRepo, repos.GroupRepo,
		repos.AccountRepo, repos.ReportingRepo, suite.coa, suite.posting,
		services.WithSettlementPolicy(suite.policy),
		services.WithRepaymentNotifier(suite.notifier),
		services.WithLoanClock(now))
	suite.capital = services.NewCapitalService(repos.Transactor, repos.CapitalRepo, repos.GroupRepo,
		repos.AccountRepo, repos.ReportingRepo, suite.coa, suite.posting, testOrgID,
		services.WithCapitalClock(now))
	suite.savings = services.NewSavingsService(repos.Transactor, repos.GroupRepo, repos.AccountRepo, repos.ReportingRepo, suite.coa, suite.posting,
		services.WithSavingsClock(now))
	suite.upkeep = services.NewMaintenanceService(repos.Transactor, repos.LoanRepo)

	_, err := suite.coa.ProvisionOrganizationAccounts(suite.ctx, testOrgID, testUserID)
	suite.Require().NoError(err)
	suite.store.setOpeningBalance(domain.OrganizationScope(testOrgID), domain.RoleBank, d("100000"))

	suite.group, err = suite.groups.CreateGroup(suite.ctx, dto.CreateGroupRequest{Name: "Umoja"}, testUserID)
	suite.Require().NoError(err)
	suite.member, err = suite.groups.CreateMember(suite.ctx, suite.group.GroupID, dto.CreateMemberRequest{MemberNumber: "M-001", Name: "Amina"}, testUserID)
	suite.Require().NoError(err)
	suite.product, err = suite.products.CreateProduct(suite.ctx, dto.CreateLoanProductRequest{
		Name:         "Biashara",
		InterestRate: d("5"),
		MaxDuration:  12,
		Charges:      []dto.LoanChargeRequest{{Name: "Processing", ChargeType: domain.ChargePercentage, Value: d("2")}},
	}, testUserID)
	suite.Require().NoError(err)
}

func (suite *SettlementTestSuite) groupScope() domain.AccountScope {
	return domain.GroupScope(suite.group.GroupID)
}

func (suite *SettlementTestSuite) orgScope() domain.AccountScope {
	return domain.OrganizationScope(testOrgID)
}

func (suite *SettlementTestSuite) fundGroup(amount string) {
	_, err := suite.capital.AdvanceCapital(suite.ctx, suite.group.GroupID, d(amount), "Seed capital", testUserID, "REF-1")
	suite.Require().NoError(err)
}

func (suite *SettlementTestSuite) apply(amount string, months int) *domain.Loan {
	loan, err := suite.loans.ApplyLoan(suite.ctx, dto.ApplyLoanRequest{
		MemberID:  suite.member.MemberID,
		ProductID: suite.product.ProductID,
		Amount:    d(amount),
		Duration:  months,
	}, testUserID)
	suite.Require().NoError(err)
	return loan
}

func (suite *SettlementTestSuite) assertLedgerBalanced() {
	debits, credits := suite.store.ledgerTotals()
	suite.True(debits.Equal(credits), "ledger debits %s != credits %s", debits, credits)
}

func (suite *SettlementTestSuite) assertDecimal(want string, got decimal.Decimal, msgAndArgs ...interface{}) {
	suite.True(d(want).Equal(got), append([]interface{}{"want %s, got %s", want, got.String()}, msgAndArgs...)...)
}

// --- Group provisioning ---

func (suite *SettlementTestSuite) TestCreateGroup_ProvisionsEveryRole() {
	accounts, err := suite.coa.ListAccountsByScope(suite.ctx, suite.groupScope())
	suite.Require().NoError(err)
	suite.Len(accounts, len(domain.GroupAccountTemplates))

	created, err := suite.coa.ProvisionGroupAccounts(suite.ctx, suite.group.GroupID, testUserID)
	suite.Require().NoError(err)
	suite.Zero(created)
}

// --- Loan lifecycle ---

func (suite *SettlementTestSuite) TestApplyLoan_PricesFromProduct() {
	loan := suite.apply("10000", 6)

	suite.Equal(domain.LoanPendingApproval, loan.Status)
	suite.assertDecimal("3000", loan.InterestAmount)
	suite.assertDecimal("13000", loan.RepaymentAmount)
	suite.assertDecimal("200", loan.ChargesAmount)
	suite.Equal(suite.group.GroupID, loan.GroupID)

	// No schedule until the loan is approved.
	schedule, err := suite.loans.GetSchedule(suite.ctx, loan.LoanID)
	suite.Require().NoError(err)
	suite.Empty(schedule)
	suite.Zero(suite.store.entryCount())
}

func (suite *SettlementTestSuite) TestApplyLoan_DurationAboveProductMax() {
	_, err := suite.loans.ApplyLoan(suite.ctx, dto.ApplyLoanRequest{
		MemberID: suite.member.MemberID, ProductID: suite.product.ProductID, Amount: d("1000"), Duration: 13,
	}, testUserID)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *SettlementTestSuite) TestApproveLoan_DisbursesTenThousandOverSixMonths() {
	suite.fundGroup("50000")
	loan := suite.apply("10000", 6)

	approved, err := suite.loans.ApproveLoan(suite.ctx, loan.LoanID, d("10000"), "approver-1")
	suite.Require().NoError(err)

	suite.Equal(domain.LoanDisbursed, approved.Status)
	suite.Require().NotNil(approved.DisbursementJournalID)
	suite.Equal("approver-1", *approved.ApprovedBy)
	suite.Equal(1, suite.store.journalCount(domain.EventLoanDisbursement))

	// Charges of 200 are withheld from the payout.
	suite.assertDecimal("40200", suite.store.balance(suite.groupScope(), domain.RoleBank))
	suite.assertDecimal("10000", suite.store.balance(suite.groupScope(), domain.RoleLoansReceivable))
	suite.assertDecimal("3000", suite.store.balance(suite.groupScope(), domain.RoleInterestReceivable))
	suite.assertDecimal("3000", suite.store.balance(suite.groupScope(), domain.RoleInterestIncome))
	suite.assertDecimal("200", suite.store.balance(suite.groupScope(), domain.RoleLoanChargesIncome))
	suite.assertLedgerBalanced()

	outstanding, err := suite.balances.LoanOutstanding(suite.ctx, loan.LoanID)
	suite.Require().NoError(err)
	suite.assertDecimal("10000", outstanding.Principal)
	suite.assertDecimal("3000", outstanding.Interest)
	suite.assertDecimal("0", outstanding.Charges)

	schedule, err := suite.loans.GetSchedule(suite.ctx, loan.LoanID)
	suite.Require().NoError(err)
	suite.Require().Len(schedule, 6)
	suite.assertDecimal("1666.67", schedule[0].PrincipalDue)
	suite.assertDecimal("500", schedule[0].InterestDue)
	suite.assertDecimal("1666.65", schedule[5].PrincipalDue)
	suite.assertDecimal("0", schedule[5].BalanceAfter)
	suite.Equal(suite.clock.AddDate(0, 1, 0), schedule[0].DueDate)
}

func (suite *SettlementTestSuite) TestApproveLoan_BilledChargesWhenNotDeducted() {
	suite.policy.DeductChargesFromPrincipal = false
	suite.build()
	suite.fundGroup("50000")
	loan := suite.apply("10000", 6)

	_, err := suite.loans.ApproveLoan(suite.ctx, loan.LoanID, d("10000"), "approver-1")
	suite.Require().NoError(err)

	suite.assertDecimal("40000", suite.store.balance(suite.groupScope(), domain.RoleBank))
	suite.assertDecimal("200", suite.store.balance(suite.groupScope(), domain.RoleLoanChargesReceivable))

	outstanding, err := suite.balances.LoanOutstanding(suite.ctx, loan.LoanID)
	suite.Require().NoError(err)
	suite.assertDecimal("200", outstanding.Charges)
	suite.assertLedgerBalanced()
}

func (suite *SettlementTestSuite) TestApproveLoan_ReducedAmountRecalculates() {
	suite.fundGroup("50000")
	loan := suite.apply("10000", 6)

	approved, err := suite.loans.ApproveLoan(suite.ctx, loan.LoanID, d("8000"), "approver-1")
	suite.Require().NoError(err)

	suite.assertDecimal("10000", approved.AppliedAmount)
	suite.assertDecimal("8000", approved.PrincipalAmount)
	suite.assertDecimal("2400", approved.InterestAmount)
	suite.assertDecimal("10400", approved.RepaymentAmount)
	suite.assertDecimal("160", approved.ChargesAmount)
	suite.assertDecimal("42160", suite.store.balance(suite.groupScope(), domain.RoleBank))

	schedule, err := suite.loans.GetSchedule(suite.ctx, loan.LoanID)
	suite.Require().NoError(err)
	principal := decimal.Zero
	for _, inst := range schedule {
		principal = principal.Add(inst.PrincipalDue)
	}
	suite.assertDecimal("8000", principal)
}

func (suite *SettlementTestSuite) TestApproveLoan_AboveApplied() {
	suite.fundGroup("50000")
	loan := suite.apply("10000", 6)

	_, err := suite.loans.ApproveLoan(suite.ctx, loan.LoanID, d("10000.01"), "approver-1")

	suite.ErrorIs(err, apperrors.ErrAmountExceedsApplied)
	stored, _ := suite.loans.GetLoan(suite.ctx, loan.LoanID)
	suite.Equal(domain.LoanPendingApproval, stored.Status)
}

func (suite *SettlementTestSuite) TestApproveLoan_Twice() {
	suite.fundGroup("50000")
	loan := suite.apply("10000", 6)

	_, err := suite.loans.ApproveLoan(suite.ctx, loan.LoanID, d("10000"), "approver-1")
	suite.Require().NoError(err)
	_, err = suite.loans.ApproveLoan(suite.ctx, loan.LoanID, d("10000"), "approver-2")

	suite.ErrorIs(err, apperrors.ErrInvalidLoanState)
	suite.Equal(1, suite.store.journalCount(domain.EventLoanDisbursement))
	suite.assertDecimal("40200", suite.store.balance(suite.groupScope(), domain.RoleBank))
}

func (suite *SettlementTestSuite) TestApproveLoan_InsufficientGroupFundsRollsBack() {
	suite.fundGroup("5000")
	loan := suite.apply("10000", 6)
	entriesBefore := suite.store.entryCount()

	_, err := suite.loans.ApproveLoan(suite.ctx, loan.LoanID, d("10000"), "approver-1")

	suite.Require().ErrorIs(err, apperrors.ErrInsufficientGroupFunds)
	var funds *apperrors.FundsError
	suite.Require().ErrorAs(err, &funds)
	suite.assertDecimal("5000", funds.Available)
	suite.assertDecimal("9800", funds.Required)
	suite.assertDecimal("4800", funds.Shortfall())

	stored, err := suite.loans.GetLoan(suite.ctx, loan.LoanID)
	suite.Require().NoError(err)
	suite.Equal(domain.LoanPendingApproval, stored.Status)
	suite.Nil(stored.ApprovedBy)
	suite.Equal(entriesBefore, suite.store.entryCount())
	suite.Zero(suite.store.journalCount(domain.EventLoanDisbursement))
}

func (suite *SettlementTestSuite) TestApproveWithoutDisbursement_ThenDisburse() {
	suite.policy.DisburseOnApproval = false
	suite.build()
	suite.fundGroup("50000")
	loan := suite.apply("10000", 6)

	approved, err := suite.loans.ApproveLoan(suite.ctx, loan.LoanID, d("10000"), "approver-1")
	suite.Require().NoError(err)
	suite.Equal(domain.LoanApproved, approved.Status)
	suite.Zero(suite.store.journalCount(domain.EventLoanDisbursement))

	disbursed, err := suite.loans.DisburseLoan(suite.ctx, loan.LoanID, "treasurer-1")
	suite.Require().NoError(err)
	suite.Equal(domain.LoanDisbursed, disbursed.Status)

	_, err = suite.loans.DisburseLoan(suite.ctx, loan.LoanID, "treasurer-1")
	suite.ErrorIs(err, apperrors.ErrInvalidLoanState)
	suite.Equal(1, suite.store.journalCount(domain.EventLoanDisbursement))
}

func (suite *SettlementTestSuite) TestApproveWithoutDisbursement_InsufficientGroupFunds() {
	suite.policy.DisburseOnApproval = false
	suite.build()
	loan := suite.apply("10000", 6)

	_, err := suite.loans.ApproveLoan(suite.ctx, loan.LoanID, d("10000"), "approver-1")

	suite.Require().ErrorIs(err, apperrors.ErrInsufficientGroupFunds)
	var funds *apperrors.FundsError
	suite.Require().ErrorAs(err, &funds)
	suite.assertDecimal("0", funds.Available)
	suite.assertDecimal("9800", funds.Required)

	stored, err := suite.loans.GetLoan(suite.ctx, loan.LoanID)
	suite.Require().NoError(err)
	suite.Equal(domain.LoanPendingApproval, stored.Status)
	suite.Nil(stored.ApprovedBy)
	schedule, err := suite.loans.GetSchedule(suite.ctx, loan.LoanID)
	suite.Require().NoError(err)
	suite.Empty(schedule)
}

func (suite *SettlementTestSuite) TestRejectLoan() {
	loan := suite.apply("10000", 6)

	rejected, err := suite.loans.RejectLoan(suite.ctx, loan.LoanID, "Insufficient guarantors", "approver-1")
	suite.Require().NoError(err)
	suite.Equal(domain.LoanRejected, rejected.Status)
	suite.Equal("Insufficient guarantors", rejected.RejectionReason)

	_, err = suite.loans.ApproveLoan(suite.ctx, loan.LoanID, d("10000"), "approver-1")
	suite.ErrorIs(err, apperrors.ErrInvalidLoanState)
}

// --- Repayments ---

func (suite *SettlementTestSuite) disbursed(amount string, months int) *domain.Loan {
	suite.fundGroup("50000")
	loan := suite.apply(amount, months)
	approved, err := suite.loans.ApproveLoan(suite.ctx, loan.LoanID, d(amount), "approver-1")
	suite.Require().NoError(err)
	return approved
}

func (suite *SettlementTestSuite) TestRecordRepayment_InterestFirst() {
	loan := suite.disbursed("10000", 6)

	repayment, err := suite.loans.RecordRepayment(suite.ctx, loan.LoanID, d("2166.67"), "MPESA", suite.clock, "teller-1")
	suite.Require().NoError(err)

	suite.assertDecimal("2166.67", repayment.InterestPaid)
	suite.assertDecimal("0", repayment.PrincipalPaid)
	suite.assertDecimal("0", repayment.Unallocated)
	suite.NotEmpty(repayment.JournalID)

	stored, _ := suite.loans.GetLoan(suite.ctx, loan.LoanID)
	suite.Equal(domain.LoanActive, stored.Status)

	outstanding, err := suite.balances.LoanOutstanding(suite.ctx, loan.LoanID)
	suite.Require().NoError(err)
	suite.assertDecimal("833.33", outstanding.Interest)
	suite.assertDecimal("10000", outstanding.Principal)
	suite.assertDecimal("42366.67", suite.store.balance(suite.groupScope(), domain.RoleBank))
	suite.assertLedgerBalanced()

	suite.notifier.AssertCalled(suite.T(), "NotifyRepayment", mock.Anything, mock.MatchedBy(func(e domain.RepaymentReceived) bool {
		return e.LoanID == loan.LoanID && e.LoanStatus == domain.LoanActive && e.InterestPaid.Equal(d("2166.67"))
	}))
}

func (suite *SettlementTestSuite) TestRecordRepayment_OverpaymentClosesLoan() {
	loan := suite.disbursed("10000", 6)

	repayment, err := suite.loans.RecordRepayment(suite.ctx, loan.LoanID, d("13500"), "BANK", suite.clock, "teller-1")
	suite.Require().NoError(err)

	suite.assertDecimal("3000", repayment.InterestPaid)
	suite.assertDecimal("10000", repayment.PrincipalPaid)
	suite.assertDecimal("500", repayment.Unallocated)
	stored, _ := suite.loans.GetLoan(suite.ctx, loan.LoanID)
	suite.Equal(domain.LoanClosed, stored.Status)

	// Only the allocated part reaches the bank.
	suite.assertDecimal("53200", suite.store.balance(suite.groupScope(), domain.RoleBank))

	_, err = suite.loans.RecordRepayment(suite.ctx, loan.LoanID, d("10"), "BANK", suite.clock, "teller-1")
	suite.ErrorIs(err, apperrors.ErrInvalidLoanState)
}

func (suite *SettlementTestSuite) TestRecordRepayment_Rejections() {
	loan := suite.apply("10000", 6)

	_, err := suite.loans.RecordRepayment(suite.ctx, loan.LoanID, d("0"), "CASH", suite.clock, "teller-1")
	suite.ErrorIs(err, apperrors.ErrInvalidPaymentAmount)

	_, err = suite.loans.RecordRepayment(suite.ctx, loan.LoanID, d("100"), "CASH", suite.clock, "teller-1")
	suite.ErrorIs(err, apperrors.ErrInvalidLoanState)

	_, err = suite.loans.RecordRepayment(suite.ctx, "missing", d("100"), "CASH", suite.clock, "teller-1")
	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.notifier.AssertNotCalled(suite.T(), "NotifyRepayment", mock.Anything, mock.Anything)
}

func (suite *SettlementTestSuite) TestRecordRepayment_FailureAfterPostingRollsBackJournal() {
	loan := suite.disbursed("10000", 6)
	entriesBefore := suite.store.entryCount()
	suite.store.failSaveRepayment = assert.AnError

	_, err := suite.loans.RecordRepayment(suite.ctx, loan.LoanID, d("1000"), "CASH", suite.clock, "teller-1")

	suite.ErrorIs(err, assert.AnError)
	suite.Equal(entriesBefore, suite.store.entryCount())
	suite.Zero(suite.store.journalCount(domain.EventLoanRepayment))
	suite.notifier.AssertNotCalled(suite.T(), "NotifyRepayment", mock.Anything, mock.Anything)
}

func (suite *SettlementTestSuite) TestRecordRepayment_NotifierFailureKeepsRepayment() {
	loan := suite.disbursed("10000", 6)
	suite.notifier.ExpectedCalls = nil
	suite.notifier.On("NotifyRepayment", mock.Anything, mock.Anything).Return(assert.AnError).Once()

	repayment, err := suite.loans.RecordRepayment(suite.ctx, loan.LoanID, d("1000"), "CASH", suite.clock, "teller-1")

	suite.Require().NoError(err)
	repayments, err := suite.loans.ListRepayments(suite.ctx, loan.LoanID)
	suite.Require().NoError(err)
	suite.Require().Len(repayments, 1)
	suite.Equal(repayment.RepaymentID, repayments[0].RepaymentID)
}

// --- Fee accrual ---

func (suite *SettlementTestSuite) TestAccrueLoanCharge_OncePerPeriod() {
	loan := suite.disbursed("10000", 6)

	result, err := suite.loans.AccrueLoanCharge(suite.ctx, loan.LoanID, d("50"), "2024-02", "", "clerk-1")
	suite.Require().NoError(err)
	suite.Equal(loan.LoanID+":2024-02", result.Journal.ReferenceID)
	suite.Len(result.Transactions, 2)

	entries := suite.store.entryCount()
	_, err = suite.loans.AccrueLoanCharge(suite.ctx, loan.LoanID, d("50"), "2024-02", "", "clerk-1")
	suite.ErrorIs(err, apperrors.ErrDuplicate)
	suite.Equal(entries, suite.store.entryCount())

	outstanding, err := suite.balances.LoanOutstanding(suite.ctx, loan.LoanID)
	suite.Require().NoError(err)
	suite.assertDecimal("50", outstanding.Charges)

	// Charges are settled before interest.
	repayment, err := suite.loans.RecordRepayment(suite.ctx, loan.LoanID, d("100"), "CASH", suite.clock, "teller-1")
	suite.Require().NoError(err)
	suite.assertDecimal("50", repayment.ChargesPaid)
	suite.assertDecimal("50", repayment.InterestPaid)
}

func (suite *SettlementTestSuite) TestAccrueLoanCharge_PendingLoan() {
	loan := suite.apply("10000", 6)

	_, err := suite.loans.AccrueLoanCharge(suite.ctx, loan.LoanID, d("50"), "2024-02", "", "clerk-1")

	suite.ErrorIs(err, apperrors.ErrInvalidLoanState)
}

// --- Capital ---

func (suite *SettlementTestSuite) TestCapitalAdvanceAndReturn() {
	advance, err := suite.capital.AdvanceCapital(suite.ctx, suite.group.GroupID, d("30000"), "Lending float", "director-1", "BOARD-7")
	suite.Require().NoError(err)
	suite.Equal(domain.TransferCompleted, advance.Status)
	suite.NotEmpty(advance.JournalID)

	ret, err := suite.capital.ReturnCapital(suite.ctx, suite.group.GroupID, d("10000"), "treasurer-1", "Year end")
	suite.Require().NoError(err)
	suite.Equal(domain.TransferReturn, ret.TransferType)

	position, err := suite.capital.GetCapitalPosition(suite.ctx, suite.group.GroupID)
	suite.Require().NoError(err)
	suite.assertDecimal("30000", position.Advanced)
	suite.assertDecimal("10000", position.Returned)
	suite.assertDecimal("20000", position.Outstanding)

	suite.assertDecimal("20000", suite.store.balance(suite.groupScope(), domain.RoleBank))
	suite.assertDecimal("20000", suite.store.balance(suite.groupScope(), domain.RoleCapitalPayable))
	suite.assertDecimal("80000", suite.store.balance(suite.orgScope(), domain.RoleBank))
	suite.assertDecimal("20000", suite.store.balance(suite.orgScope(), domain.RoleCapitalReceivable))
	suite.assertLedgerBalanced()

	transfers, err := suite.capital.ListCapitalTransfers(suite.ctx, suite.group.GroupID)
	suite.Require().NoError(err)
	suite.Len(transfers, 2)
}

func (suite *SettlementTestSuite) TestCapitalAdvance_InsufficientOrganizationFunds() {
	_, err := suite.capital.AdvanceCapital(suite.ctx, suite.group.GroupID, d("100000.01"), "Too much", "director-1", "")

	suite.ErrorIs(err, apperrors.ErrInsufficientOrganizationFunds)
	suite.Zero(suite.store.journalCount(domain.EventCapitalAdvance))
	transfers, _ := suite.capital.ListCapitalTransfers(suite.ctx, suite.group.GroupID)
	suite.Empty(transfers)
}

func (suite *SettlementTestSuite) TestCapitalReturn_InsufficientGroupFunds() {
	suite.fundGroup("1000")

	_, err := suite.capital.ReturnCapital(suite.ctx, suite.group.GroupID, d("1500"), "treasurer-1", "")

	var funds *apperrors.FundsError
	suite.Require().ErrorAs(err, &funds)
	suite.ErrorIs(err, apperrors.ErrInsufficientGroupFunds)
	suite.assertDecimal("500", funds.Shortfall())
}

func (suite *SettlementTestSuite) TestCapitalReturn_BeyondOutstandingCapital() {
	suite.fundGroup("1000")
	_, err := suite.savings.Deposit(suite.ctx, suite.member.MemberID, dto.SavingsRequest{Amount: d("5000")}, "teller-1")
	suite.Require().NoError(err)

	_, err = suite.capital.ReturnCapital(suite.ctx, suite.group.GroupID, d("1000.01"), "treasurer-1", "")

	suite.Require().ErrorIs(err, apperrors.ErrConflict)
	suite.Zero(suite.store.journalCount(domain.EventCapitalReturn))
	suite.assertDecimal("6000", suite.store.balance(suite.groupScope(), domain.RoleBank))
	suite.assertDecimal("1000", suite.store.balance(suite.groupScope(), domain.RoleCapitalPayable))

	_, err = suite.capital.ReturnCapital(suite.ctx, suite.group.GroupID, d("1000"), "treasurer-1", "")
	suite.Require().NoError(err)
	position, err := suite.capital.GetCapitalPosition(suite.ctx, suite.group.GroupID)
	suite.Require().NoError(err)
	suite.assertDecimal("0", position.Outstanding)
}

// --- Savings ---

func (suite *SettlementTestSuite) TestSavings_DepositAndWithdraw() {
	suite.fundGroup("1000")
	_, err := suite.savings.Deposit(suite.ctx, suite.member.MemberID, dto.SavingsRequest{Amount: d("500")}, "teller-1")
	suite.Require().NoError(err)

	_, err = suite.savings.Withdraw(suite.ctx, suite.member.MemberID, dto.SavingsRequest{Amount: d("700")}, "teller-1")
	suite.Require().ErrorIs(err, apperrors.ErrInsufficientSavings)

	_, err = suite.savings.Withdraw(suite.ctx, suite.member.MemberID, dto.SavingsRequest{Amount: d("200")}, "teller-1")
	suite.Require().NoError(err)

	balance, err := suite.balances.MemberSavingsBalance(suite.ctx, suite.member.MemberID)
	suite.Require().NoError(err)
	suite.assertDecimal("300", balance)
	suite.assertDecimal("1300", suite.store.balance(suite.groupScope(), domain.RoleBank))
	suite.assertLedgerBalanced()
}

func (suite *SettlementTestSuite) TestSavings_WithdrawBeyondGroupBank() {
	_, err := suite.savings.Deposit(suite.ctx, suite.member.MemberID, dto.SavingsRequest{Amount: d("500")}, "teller-1")
	suite.Require().NoError(err)
	suite.store.setOpeningBalance(suite.groupScope(), domain.RoleBank, d("-400"))

	_, err = suite.savings.Withdraw(suite.ctx, suite.member.MemberID, dto.SavingsRequest{Amount: d("200")}, "teller-1")

	suite.ErrorIs(err, apperrors.ErrInsufficientGroupFunds)
}

func (suite *SettlementTestSuite) TestSavings_BackdatedWithdrawalChecksCurrentBank() {
	backdated := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	_, err := suite.savings.Deposit(suite.ctx, suite.member.MemberID, dto.SavingsRequest{Amount: d("1000"), Date: &backdated}, "teller-1")
	suite.Require().NoError(err)

	// Capital and a disbursement dated today leave 700 in the bank.
	suite.fundGroup("9500")
	loan := suite.apply("10000", 6)
	_, err = suite.loans.ApproveLoan(suite.ctx, loan.LoanID, d("10000"), "approver-1")
	suite.Require().NoError(err)
	suite.assertDecimal("700", suite.store.balance(suite.groupScope(), domain.RoleBank))

	_, err = suite.savings.Withdraw(suite.ctx, suite.member.MemberID, dto.SavingsRequest{Amount: d("1000"), Date: &backdated}, "teller-1")

	suite.Require().ErrorIs(err, apperrors.ErrInsufficientGroupFunds)
	var funds *apperrors.FundsError
	suite.Require().ErrorAs(err, &funds)
	suite.assertDecimal("700", funds.Available)
	suite.assertDecimal("700", suite.store.balance(suite.groupScope(), domain.RoleBank))
	suite.Zero(suite.store.journalCount(domain.EventSavingsWithdrawal))
}

func (suite *SettlementTestSuite) TestSavings_UndatedMovementUsesServiceClock() {
	result, err := suite.savings.Deposit(suite.ctx, suite.member.MemberID, dto.SavingsRequest{Amount: d("250")}, "teller-1")
	suite.Require().NoError(err)
	suite.True(result.Journal.JournalDate.Equal(suite.clock), "journal dated %s", result.Journal.JournalDate)
}

func (suite *SettlementTestSuite) TestSavings_RepeatedReferenceIsDuplicate() {
	req := dto.SavingsRequest{Amount: d("500"), ReferenceID: "RCPT-9"}
	first, err := suite.savings.Deposit(suite.ctx, suite.member.MemberID, req, "teller-1")
	suite.Require().NoError(err)
	entries := suite.store.entryCount()

	_, err = suite.savings.Deposit(suite.ctx, suite.member.MemberID, req, "teller-1")
	suite.Require().ErrorIs(err, apperrors.ErrDuplicate)
	suite.Contains(err.Error(), first.Journal.JournalID)
	suite.Equal(entries, suite.store.entryCount())
}

func (suite *SettlementTestSuite) TestListTransactionsByAccount_SignsByAccountNature() {
	suite.fundGroup("1000")
	_, err := suite.savings.Deposit(suite.ctx, suite.member.MemberID, dto.SavingsRequest{Amount: d("500")}, "teller-1")
	suite.Require().NoError(err)
	_, err = suite.savings.Withdraw(suite.ctx, suite.member.MemberID, dto.SavingsRequest{Amount: d("200")}, "teller-1")
	suite.Require().NoError(err)

	savings, err := suite.coa.ResolveAccount(suite.ctx, suite.groupScope(), domain.RoleSavingsLiability)
	suite.Require().NoError(err)
	resp, err := suite.posting.ListTransactionsByAccount(suite.ctx, savings.AccountID, dto.ListTransactionsParams{})
	suite.Require().NoError(err)
	suite.Require().Len(resp.Transactions, 2)

	total := decimal.Zero
	for _, txn := range resp.Transactions {
		if txn.Type == string(domain.Debit) {
			suite.True(txn.SignedAmount.IsNegative(), "debit to a liability reduces it")
		}
		total = total.Add(txn.SignedAmount)
	}
	suite.assertDecimal("300", total)
}

// --- Posting engine ---

func (suite *SettlementTestSuite) TestPost_ProductMappingTakesPrecedence() {
	productIncome, err := suite.coa.CreateAccount(suite.ctx, dto.CreateAccountRequest{
		Code: "P-biashara-4000", Name: "Biashara Interest", ScopeKind: domain.ScopeProduct, ScopeID: suite.product.ProductID,
		Role: domain.RoleInterestIncome, AccountType: domain.Revenue,
	}, testUserID)
	suite.Require().NoError(err)

	suite.disbursed("10000", 6)

	totals, err := suite.balances.AccountBalance(suite.ctx, productIncome.AccountID, suite.clock)
	suite.Require().NoError(err)
	suite.assertDecimal("3000", totals.Balance)
	suite.assertDecimal("0", suite.store.balance(suite.groupScope(), domain.RoleInterestIncome))
}

func (suite *SettlementTestSuite) TestPost_MissingAccountWritesNothing() {
	savings, err := suite.coa.ResolveAccount(suite.ctx, suite.groupScope(), domain.RoleSavingsLiability)
	suite.Require().NoError(err)
	suite.Require().NoError(suite.coa.DeactivateAccount(suite.ctx, savings.AccountID, testUserID))
	entries := suite.store.entryCount()

	_, err = suite.savings.Deposit(suite.ctx, suite.member.MemberID, dto.SavingsRequest{Amount: d("500")}, "teller-1")

	suite.ErrorIs(err, apperrors.ErrAccountNotConfigured)
	suite.Equal(entries, suite.store.entryCount())
}

func (suite *SettlementTestSuite) TestPost_Validation() {
	base := domain.PostingEvent{
		EventType:   domain.EventSavingsDeposit,
		ReferenceID: "ref-1",
		GroupID:     suite.group.GroupID,
		MemberID:    suite.member.MemberID,
	}

	unknown := base
	unknown.EventType = "DIVIDEND"
	_, err := suite.posting.Post(suite.ctx, unknown)
	suite.ErrorIs(err, apperrors.ErrValidation)

	noRef := base
	noRef.ReferenceID = ""
	noRef.Amounts = map[domain.AmountKey]decimal.Decimal{domain.AmountSavings: d("1")}
	_, err = suite.posting.Post(suite.ctx, noRef)
	suite.ErrorIs(err, apperrors.ErrValidation)

	negative := base
	negative.Amounts = map[domain.AmountKey]decimal.Decimal{domain.AmountSavings: d("-1")}
	_, err = suite.posting.Post(suite.ctx, negative)
	suite.ErrorIs(err, apperrors.ErrValidation)

	empty := base
	_, err = suite.posting.Post(suite.ctx, empty)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *SettlementTestSuite) TestPost_UnbalancedAmountsAreRejected() {
	// A disbursement whose net payout does not match principal minus charges cannot balance.
	_, err := suite.posting.Post(suite.ctx, domain.PostingEvent{
		EventType:   domain.EventLoanDisbursement,
		ReferenceID: "bad-loan",
		GroupID:     suite.group.GroupID,
		Amounts: map[domain.AmountKey]decimal.Decimal{
			domain.AmountPrincipal:       d("1000"),
			domain.AmountNetDisbursement: d("999"),
		},
	})

	suite.ErrorIs(err, apperrors.ErrLedgerImbalance)
	suite.Zero(suite.store.entryCount())
}

func (suite *SettlementTestSuite) TestGetJournal() {
	suite.fundGroup("1000")
	transfers, err := suite.capital.ListCapitalTransfers(suite.ctx, suite.group.GroupID)
	suite.Require().NoError(err)

	result, err := suite.posting.GetJournal(suite.ctx, transfers[0].JournalID)
	suite.Require().NoError(err)
	suite.Equal(domain.EventCapitalAdvance, result.Journal.EventType)
	suite.Len(result.Transactions, 4)
	suite.assertDecimal("2000", result.Journal.Amount)

	_, err = suite.posting.GetJournal(suite.ctx, "missing")
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

// --- Reporting ---

func (suite *SettlementTestSuite) TestGroupFinancialSummary() {
	suite.disbursed("10000", 6)

	summary, err := suite.balances.GroupFinancialSummary(suite.ctx, suite.group.GroupID, suite.clock)
	suite.Require().NoError(err)

	// Bank 40200 + loans 10000 + interest receivable 3000
	suite.assertDecimal("53200", summary.TotalAssets)
	suite.assertDecimal("50000", summary.TotalLiabilities)
	suite.assertDecimal("3200", summary.TotalRevenue)
	suite.assertDecimal("3200", summary.NetIncome)
	suite.assertDecimal("3200", summary.EquityBalance)
	suite.Len(summary.Accounts, len(domain.GroupAccountTemplates))
}

func (suite *SettlementTestSuite) TestGroupFinancialSummary_IncludesProductMappedAccounts() {
	_, err := suite.coa.CreateAccount(suite.ctx, dto.CreateAccountRequest{
		Code: "P-biashara-4000", Name: "Biashara Interest", ScopeKind: domain.ScopeProduct, ScopeID: suite.product.ProductID,
		Role: domain.RoleInterestIncome, AccountType: domain.Revenue,
	}, testUserID)
	suite.Require().NoError(err)
	suite.disbursed("10000", 6)

	summary, err := suite.balances.GroupFinancialSummary(suite.ctx, suite.group.GroupID, suite.clock)
	suite.Require().NoError(err)

	suite.assertDecimal("53200", summary.TotalAssets)
	suite.assertDecimal("50000", summary.TotalLiabilities)
	suite.assertDecimal("3200", summary.TotalRevenue)
	suite.assertDecimal("3200", summary.NetIncome)
	suite.Len(summary.Accounts, len(domain.GroupAccountTemplates)+1)

	// Another group's summary does not pick up this group's interest.
	other, err := suite.groups.CreateGroup(suite.ctx, dto.CreateGroupRequest{Name: "Tumaini"}, testUserID)
	suite.Require().NoError(err)
	otherSummary, err := suite.balances.GroupFinancialSummary(suite.ctx, other.GroupID, suite.clock)
	suite.Require().NoError(err)
	suite.assertDecimal("0", otherSummary.TotalRevenue)
	suite.Len(otherSummary.Accounts, len(domain.GroupAccountTemplates))
}

// --- Maintenance ---

func (suite *SettlementTestSuite) TestRunDailyMaintenance_Idempotent() {
	loan := suite.disbursed("10000", 6)

	report, err := suite.upkeep.RunDailyMaintenance(suite.ctx, suite.clock.AddDate(0, 2, 1))
	suite.Require().NoError(err)
	suite.EqualValues(2, report.OverdueInstallments)
	suite.Zero(report.MaturedLoans)

	again, err := suite.upkeep.RunDailyMaintenance(suite.ctx, suite.clock.AddDate(0, 2, 1))
	suite.Require().NoError(err)
	suite.Zero(again.OverdueInstallments)

	final, err := suite.upkeep.RunDailyMaintenance(suite.ctx, suite.clock.AddDate(0, 7, 0))
	suite.Require().NoError(err)
	suite.EqualValues(4, final.OverdueInstallments)
	suite.EqualValues(1, final.MaturedLoans)

	stored, _ := suite.loans.GetLoan(suite.ctx, loan.LoanID)
	suite.Equal(domain.LoanMatured, stored.Status)

	// A matured loan still accepts repayments.
	_, err = suite.loans.RecordRepayment(suite.ctx, loan.LoanID, d("100"), "CASH", suite.clock, "teller-1")
	suite.NoError(err)
}

// --- Run Test Suite ---

func TestSettlementTestSuite(t *testing.T) {
	suite.Run(t, new(SettlementTestSuite))
}
