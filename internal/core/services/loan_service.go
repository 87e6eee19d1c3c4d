package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/SscSPs/sacco_ledger/internal/apperrors"
	"github.com/SscSPs/sacco_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/sacco_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/sacco_ledger/internal/core/ports/services"
	"github.com/SscSPs/sacco_ledger/internal/dto"
	"github.com/SscSPs/sacco_ledger/internal/utils/accounting"
)

// loanService implements the LoanSvcFacade interface
type loanService struct {
	BaseService
	transactor    portsrepo.TransactionManager
	loanRepo      portsrepo.LoanRepositoryFacade
	productRepo   portsrepo.LoanProductRepository
	groupRepo     portsrepo.GroupReader
	reportingRepo portsrepo.ReportingRepository
	resolver      portssvc.AccountResolverSvc
	posting       portssvc.PostingSvc
	funds         fundsGuard
	notifier      portssvc.RepaymentNotifier
	policy        domain.SettlementPolicy
	now           func() time.Time
}

// LoanServiceOption is a functional option for configuring the loan service.
type LoanServiceOption func(*loanService)

// WithSettlementPolicy replaces the default settlement policy.
func WithSettlementPolicy(policy domain.SettlementPolicy) LoanServiceOption {
	return func(s *loanService) {
		s.policy = policy
	}
}

// WithRepaymentNotifier sets the collaborator told about committed repayments.
func WithRepaymentNotifier(n portssvc.RepaymentNotifier) LoanServiceOption {
	return func(s *loanService) {
		s.notifier = n
	}
}

// WithLoanClock overrides the clock used for approval, disbursement and schedule dates.
func WithLoanClock(now func() time.Time) LoanServiceOption {
	return func(s *loanService) {
		s.now = now
	}
}

// NewLoanService creates a new loan service.
func NewLoanService(
	transactor portsrepo.TransactionManager,
	loanRepo portsrepo.LoanRepositoryFacade,
	productRepo portsrepo.LoanProductRepository,
	groupRepo portsrepo.GroupReader,
	accountRepo portsrepo.AccountTransactionSupport,
	reportingRepo portsrepo.ReportingRepository,
	resolver portssvc.AccountResolverSvc,
	posting portssvc.PostingSvc,
	opts ...LoanServiceOption,
) portssvc.LoanSvcFacade {
	s := &loanService{
		transactor:    transactor,
		loanRepo:      loanRepo,
		productRepo:   productRepo,
		groupRepo:     groupRepo,
		reportingRepo: reportingRepo,
		resolver:      resolver,
		posting:       posting,
		funds:         fundsGuard{accountRepo: accountRepo, reportingRepo: reportingRepo},
		policy:        domain.DefaultSettlementPolicy(),
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ portssvc.LoanSvcFacade = (*loanService)(nil)

// --- Reads ---

func (s *loanService) GetLoan(ctx context.Context, loanID string) (*domain.Loan, error) {
	loan, err := s.loanRepo.FindLoanByID(ctx, loanID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find loan", slog.String("loan_id", loanID))
		}
		return nil, err
	}
	return loan, nil
}

func (s *loanService) ListLoansByGroup(ctx context.Context, groupID string, params dto.ListLoansParams) (*dto.ListLoansResponse, error) {
	if _, err := s.groupRepo.FindGroupByID(ctx, groupID); err != nil {
		return nil, err
	}
	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}

	loans, nextToken, err := s.loanRepo.ListLoansByGroup(ctx, groupID, params.Status, limit, params.NextToken)
	if err != nil {
		if !errors.Is(err, apperrors.ErrValidation) {
			s.LogError(ctx, err, "Failed to list loans", slog.String("group_id", groupID))
		}
		return nil, err
	}
	return &dto.ListLoansResponse{Loans: dto.ToLoanResponses(loans), NextToken: nextToken}, nil
}

func (s *loanService) GetSchedule(ctx context.Context, loanID string) ([]domain.Installment, error) {
	if _, err := s.GetLoan(ctx, loanID); err != nil {
		return nil, err
	}
	installments, err := s.loanRepo.FindInstallmentsByLoanID(ctx, loanID)
	if err != nil {
		s.LogError(ctx, err, "Failed to load schedule", slog.String("loan_id", loanID))
		return nil, fmt.Errorf("failed to load schedule of loan %s: %w", loanID, err)
	}
	return installments, nil
}

func (s *loanService) ListRepayments(ctx context.Context, loanID string) ([]domain.LoanRepayment, error) {
	if _, err := s.GetLoan(ctx, loanID); err != nil {
		return nil, err
	}
	repayments, err := s.loanRepo.FindRepaymentsByLoanID(ctx, loanID)
	if err != nil {
		s.LogError(ctx, err, "Failed to load repayments", slog.String("loan_id", loanID))
		return nil, fmt.Errorf("failed to load repayments of loan %s: %w", loanID, err)
	}
	return repayments, nil
}

// --- Lifecycle ---

func (s *loanService) ApplyLoan(ctx context.Context, req dto.ApplyLoanRequest, userID string) (*domain.Loan, error) {
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: loan amount must be greater than zero", apperrors.ErrValidation)
	}

	member, err := s.groupRepo.FindMemberByID(ctx, req.MemberID)
	if err != nil {
		return nil, err
	}
	if !member.IsActive {
		return nil, fmt.Errorf("%w: member %s is inactive", apperrors.ErrValidation, member.MemberID)
	}

	product, err := s.productRepo.FindProductByID(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	if !product.IsActive {
		return nil, fmt.Errorf("%w: loan product %s is inactive", apperrors.ErrValidation, product.ProductID)
	}
	if req.Duration < 1 || req.Duration > product.MaxDuration {
		return nil, fmt.Errorf("%w: duration must be between 1 and %d months", apperrors.ErrValidation, product.MaxDuration)
	}

	now := s.now().UTC()
	applicationDate := now
	if req.ApplicationDate != nil {
		applicationDate = req.ApplicationDate.UTC()
	}

	principal := accounting.RoundMoney(req.Amount)
	interest := accounting.FlatRateInterest(principal, product.InterestRate, req.Duration)
	loan := domain.Loan{
		LoanID:          uuid.NewString(),
		MemberID:        member.MemberID,
		GroupID:         member.GroupID,
		ProductID:       product.ProductID,
		AppliedAmount:   principal,
		PrincipalAmount: principal,
		InterestRate:    product.InterestRate,
		Duration:        req.Duration,
		InterestAmount:  interest,
		RepaymentAmount: principal.Add(interest),
		ChargesAmount:   accounting.CalculateLoanCharges(product.Charges, principal),
		Status:          domain.LoanPendingApproval,
		ApplicationDate: applicationDate,
		AuditFields:     domain.NewAuditFields(userID, now),
	}

	// The schedule is written on approval.
	if err := s.loanRepo.SaveLoan(ctx, loan); err != nil {
		s.LogError(ctx, err, "Failed to record loan application", slog.String("member_id", member.MemberID))
		return nil, fmt.Errorf("failed to save loan: %w", err)
	}

	s.LogInfo(ctx, "Loan application recorded",
		slog.String("loan_id", loan.LoanID),
		slog.String("member_id", loan.MemberID),
		slog.String("amount", principal.String()))
	return &loan, nil
}

func (s *loanService) ApproveLoan(ctx context.Context, loanID string, approvedAmount decimal.Decimal, approverID string) (*domain.Loan, error) {
	if !approvedAmount.IsPositive() {
		return nil, fmt.Errorf("%w: approved amount must be greater than zero", apperrors.ErrValidation)
	}
	approvedAmount = accounting.RoundMoney(approvedAmount)

	var approved *domain.Loan
	err := s.transactor.WithinTransaction(ctx, func(txCtx context.Context) error {
		loan, err := s.loanRepo.FindLoanByIDForUpdate(txCtx, loanID)
		if err != nil {
			return err
		}
		if approvedAmount.GreaterThan(loan.AppliedAmount) {
			return fmt.Errorf("%w: approved %s, applied %s", apperrors.ErrAmountExceedsApplied, approvedAmount, loan.AppliedAmount)
		}

		now := s.now().UTC()
		if err := loan.TransitionTo(domain.LoanApproved); err != nil {
			return err
		}

		// Terms follow the approved amount, not the application.
		loan.ChargesAmount = accounting.ScaleCharges(loan.ChargesAmount, loan.AppliedAmount, approvedAmount)
		loan.PrincipalAmount = approvedAmount
		loan.InterestAmount = accounting.FlatRateInterest(approvedAmount, loan.InterestRate, loan.Duration)
		loan.RepaymentAmount = approvedAmount.Add(loan.InterestAmount)
		loan.ApprovedBy = &approverID
		loan.ApprovedAt = &now
		loan.Touch(approverID, now)

		// The group must be able to fund the payout whether or not it is posted now.
		amounts, err := s.requireDisbursementFunds(txCtx, loan, now)
		if err != nil {
			return err
		}

		schedule, err := accounting.GenerateFlatRateSchedule(loan.LoanID, loan.PrincipalAmount, loan.InterestAmount, loan.Duration, now)
		if err != nil {
			return err
		}
		if err := s.loanRepo.ReplaceSchedule(txCtx, loan.LoanID, schedule); err != nil {
			return fmt.Errorf("failed to write schedule: %w", err)
		}

		if s.policy.DisburseOnApproval {
			if err := s.postDisbursement(txCtx, loan, amounts, approverID, now); err != nil {
				return err
			}
		}

		if err := s.loanRepo.UpdateLoan(txCtx, *loan); err != nil {
			return fmt.Errorf("failed to update loan: %w", err)
		}
		approved = loan
		return nil
	})
	if err != nil {
		s.logSettlementFailure(ctx, err, "Loan approval failed", slog.String("loan_id", loanID))
		return nil, err
	}

	s.LogInfo(ctx, "Loan approved",
		slog.String("loan_id", loanID),
		slog.String("approved_amount", approvedAmount.String()),
		slog.String("status", string(approved.Status)))
	return approved, nil
}

func (s *loanService) RejectLoan(ctx context.Context, loanID string, reason string, userID string) (*domain.Loan, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, fmt.Errorf("%w: rejection reason is required", apperrors.ErrValidation)
	}

	var rejected *domain.Loan
	err := s.transactor.WithinTransaction(ctx, func(txCtx context.Context) error {
		loan, err := s.loanRepo.FindLoanByIDForUpdate(txCtx, loanID)
		if err != nil {
			return err
		}
		if err := loan.TransitionTo(domain.LoanRejected); err != nil {
			return err
		}
		now := s.now().UTC()
		loan.RejectedBy = &userID
		loan.RejectedAt = &now
		loan.RejectionReason = reason
		loan.Touch(userID, now)
		if err := s.loanRepo.UpdateLoan(txCtx, *loan); err != nil {
			return fmt.Errorf("failed to update loan: %w", err)
		}
		rejected = loan
		return nil
	})
	if err != nil {
		s.logSettlementFailure(ctx, err, "Loan rejection failed", slog.String("loan_id", loanID))
		return nil, err
	}

	s.LogInfo(ctx, "Loan rejected", slog.String("loan_id", loanID), slog.String("user_id", userID))
	return rejected, nil
}

func (s *loanService) DisburseLoan(ctx context.Context, loanID string, userID string) (*domain.Loan, error) {
	var disbursed *domain.Loan
	err := s.transactor.WithinTransaction(ctx, func(txCtx context.Context) error {
		loan, err := s.loanRepo.FindLoanByIDForUpdate(txCtx, loanID)
		if err != nil {
			return err
		}
		now := s.now().UTC()
		if err := s.disburse(txCtx, loan, userID, now); err != nil {
			return err
		}
		if err := s.loanRepo.UpdateLoan(txCtx, *loan); err != nil {
			return fmt.Errorf("failed to update loan: %w", err)
		}
		disbursed = loan
		return nil
	})
	if err != nil {
		s.logSettlementFailure(ctx, err, "Loan disbursement failed", slog.String("loan_id", loanID))
		return nil, err
	}
	return disbursed, nil
}

// disburse checks the group bank covers the net payout and posts the disbursement journal.
// The caller holds the loan row lock and persists the loan afterwards.
func (s *loanService) disburse(ctx context.Context, loan *domain.Loan, userID string, now time.Time) error {
	if !loan.Status.CanTransitionTo(domain.LoanDisbursed) {
		return fmt.Errorf("%w: loan %s cannot be disbursed from %s", apperrors.ErrInvalidLoanState, loan.LoanID, loan.Status)
	}
	amounts, err := s.requireDisbursementFunds(ctx, loan, now)
	if err != nil {
		return err
	}
	return s.postDisbursement(ctx, loan, amounts, userID, now)
}

// requireDisbursementFunds locks the group bank and fails with ErrInsufficientGroupFunds
// when it cannot cover the loan's net payout.
func (s *loanService) requireDisbursementFunds(ctx context.Context, loan *domain.Loan, now time.Time) (accounting.DisbursementAmounts, error) {
	amounts, err := accounting.ComputeDisbursement(loan.PrincipalAmount, loan.ChargesAmount, loan.InterestAmount, s.policy)
	if err != nil {
		return accounting.DisbursementAmounts{}, err
	}
	bank, err := s.resolver.ResolveAccount(ctx, domain.GroupScope(loan.GroupID), domain.RoleBank)
	if err != nil {
		return accounting.DisbursementAmounts{}, err
	}
	if err := s.funds.require(ctx, apperrors.ErrInsufficientGroupFunds, bank.AccountID, amounts.NetDisbursement, now); err != nil {
		return accounting.DisbursementAmounts{}, err
	}
	return amounts, nil
}

func (s *loanService) postDisbursement(ctx context.Context, loan *domain.Loan, amounts accounting.DisbursementAmounts, userID string, now time.Time) error {
	result, err := s.posting.Post(ctx, domain.PostingEvent{
		EventType:   domain.EventLoanDisbursement,
		ReferenceID: loan.LoanID,
		GroupID:     loan.GroupID,
		ProductID:   loan.ProductID,
		MemberID:    loan.MemberID,
		LoanID:      loan.LoanID,
		Date:        now,
		Description: fmt.Sprintf("Disbursement of loan %s", loan.LoanID),
		Amounts: map[domain.AmountKey]decimal.Decimal{
			domain.AmountPrincipal:       amounts.Principal,
			domain.AmountNetDisbursement: amounts.NetDisbursement,
			domain.AmountDeductedCharges: amounts.DeductedCharges,
			domain.AmountBilledCharges:   amounts.BilledCharges,
			domain.AmountInterest:        amounts.Interest,
		},
		UserID: userID,
	})
	if err != nil {
		return err
	}

	if err := loan.TransitionTo(domain.LoanDisbursed); err != nil {
		return err
	}
	loan.DisbursedAt = &now
	loan.DisbursementJournalID = &result.Journal.JournalID
	loan.Touch(userID, now)

	s.LogInfo(ctx, "Loan disbursed",
		slog.String("loan_id", loan.LoanID),
		slog.String("journal_id", result.Journal.JournalID),
		slog.String("net_disbursement", amounts.NetDisbursement.String()))
	return nil
}

// --- Settlement ---

func (s *loanService) RecordRepayment(ctx context.Context, loanID string, amount decimal.Decimal, paymentMethod string, repaymentDate time.Time, userID string) (*domain.LoanRepayment, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: payment amount must be greater than zero, got %s", apperrors.ErrInvalidPaymentAmount, amount)
	}
	amount = accounting.RoundMoney(amount)
	if repaymentDate.IsZero() {
		repaymentDate = s.now().UTC()
	}

	var (
		repayment *domain.LoanRepayment
		loan      *domain.Loan
	)
	err := s.transactor.WithinTransaction(ctx, func(txCtx context.Context) error {
		var err error
		loan, err = s.loanRepo.FindLoanByIDForUpdate(txCtx, loanID)
		if err != nil {
			return err
		}
		if !loan.Status.AcceptsRepayments() {
			return fmt.Errorf("%w: loan %s does not accept repayments in %s", apperrors.ErrInvalidLoanState, loan.LoanID, loan.Status)
		}

		outstanding, err := loanOutstanding(txCtx, s.reportingRepo, loan.LoanID)
		if err != nil {
			return err
		}
		alloc, err := accounting.AllocateRepayment(*outstanding, amount, s.policy.RepaymentPriority)
		if err != nil {
			return err
		}

		now := s.now().UTC()
		repaymentID := uuid.NewString()
		result, err := s.posting.Post(txCtx, domain.PostingEvent{
			EventType:   domain.EventLoanRepayment,
			ReferenceID: repaymentID,
			GroupID:     loan.GroupID,
			ProductID:   loan.ProductID,
			MemberID:    loan.MemberID,
			LoanID:      loan.LoanID,
			Date:        repaymentDate,
			Description: fmt.Sprintf("Repayment of loan %s via %s", loan.LoanID, paymentMethod),
			Amounts: map[domain.AmountKey]decimal.Decimal{
				domain.AmountRepaymentTotal: alloc.Allocated(),
				domain.AmountPrincipalPaid:  alloc.PrincipalPaid,
				domain.AmountInterestPaid:   alloc.InterestPaid,
				domain.AmountChargesPaid:    alloc.ChargesPaid,
			},
			UserID: userID,
		})
		if err != nil {
			return err
		}

		repayment = &domain.LoanRepayment{
			RepaymentID:   repaymentID,
			LoanID:        loan.LoanID,
			MemberID:      loan.MemberID,
			Amount:        amount,
			PaymentMethod: paymentMethod,
			RepaymentDate: repaymentDate,
			Allocation:    alloc,
			JournalID:     result.Journal.JournalID,
			AuditFields:   domain.NewAuditFields(userID, now),
		}
		if err := s.loanRepo.SaveRepayment(txCtx, *repayment); err != nil {
			return fmt.Errorf("failed to save repayment: %w", err)
		}

		next := loan.Status
		if outstanding.Total().Sub(alloc.Allocated()).IsZero() {
			next = domain.LoanClosed
		} else if loan.Status == domain.LoanDisbursed {
			next = domain.LoanActive
		}
		if next != loan.Status {
			if err := loan.TransitionTo(next); err != nil {
				return err
			}
			loan.Touch(userID, now)
			if err := s.loanRepo.UpdateLoan(txCtx, *loan); err != nil {
				return fmt.Errorf("failed to update loan: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		s.logSettlementFailure(ctx, err, "Repayment failed", slog.String("loan_id", loanID), slog.String("amount", amount.String()))
		return nil, err
	}

	s.LogInfo(ctx, "Repayment recorded",
		slog.String("loan_id", loanID),
		slog.String("repayment_id", repayment.RepaymentID),
		slog.String("principal_paid", repayment.PrincipalPaid.String()),
		slog.String("interest_paid", repayment.InterestPaid.String()),
		slog.String("charges_paid", repayment.ChargesPaid.String()),
		slog.String("unallocated", repayment.Unallocated.String()))

	s.notifyRepayment(ctx, loan, repayment)
	return repayment, nil
}

// notifyRepayment runs after commit. A delivery failure never undoes the repayment.
func (s *loanService) notifyRepayment(ctx context.Context, loan *domain.Loan, repayment *domain.LoanRepayment) {
	if s.notifier == nil {
		return
	}
	event := domain.RepaymentReceived{
		RepaymentID:   repayment.RepaymentID,
		LoanID:        loan.LoanID,
		MemberID:      loan.MemberID,
		GroupID:       loan.GroupID,
		Amount:        repayment.Amount,
		PrincipalPaid: repayment.PrincipalPaid,
		InterestPaid:  repayment.InterestPaid,
		ChargesPaid:   repayment.ChargesPaid,
		LoanStatus:    loan.Status,
		RepaymentDate: repayment.RepaymentDate,
	}
	if err := s.notifier.NotifyRepayment(ctx, event); err != nil {
		s.LogWarn(ctx, err, "Failed to deliver repayment notification", slog.String("repayment_id", repayment.RepaymentID))
	}
}

func (s *loanService) AccrueLoanCharge(ctx context.Context, loanID string, amount decimal.Decimal, period string, description string, userID string) (*domain.PostingResult, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: charge amount must be greater than zero", apperrors.ErrValidation)
	}
	period = strings.TrimSpace(period)
	if period == "" {
		return nil, fmt.Errorf("%w: accrual period is required", apperrors.ErrValidation)
	}

	var result *domain.PostingResult
	err := s.transactor.WithinTransaction(ctx, func(txCtx context.Context) error {
		loan, err := s.loanRepo.FindLoanByIDForUpdate(txCtx, loanID)
		if err != nil {
			return err
		}
		if !loan.Status.AcceptsRepayments() {
			return fmt.Errorf("%w: charges cannot accrue on a %s loan", apperrors.ErrInvalidLoanState, loan.Status)
		}
		if description == "" {
			description = fmt.Sprintf("Charge for period %s on loan %s", period, loan.LoanID)
		}

		result, err = s.posting.Post(txCtx, domain.PostingEvent{
			EventType:   domain.EventFeeAccrual,
			ReferenceID: loan.LoanID + ":" + period,
			GroupID:     loan.GroupID,
			ProductID:   loan.ProductID,
			MemberID:    loan.MemberID,
			LoanID:      loan.LoanID,
			Date:        s.now().UTC(),
			Description: description,
			Amounts: map[domain.AmountKey]decimal.Decimal{
				domain.AmountCharge: accounting.RoundMoney(amount),
			},
			UserID: userID,
		})
		return err
	})
	if err != nil {
		s.logSettlementFailure(ctx, err, "Charge accrual failed", slog.String("loan_id", loanID), slog.String("period", period))
		return nil, err
	}
	return result, nil
}

// logSettlementFailure logs expected business outcomes at WARN and everything else at ERROR.
// Imbalances were already logged by the posting engine.
func (s *loanService) logSettlementFailure(ctx context.Context, err error, msg string, keyvals ...any) {
	var funds *apperrors.FundsError
	switch {
	case errors.Is(err, apperrors.ErrLedgerImbalance):
	case errors.As(err, &funds):
		s.LogWarn(ctx, err, msg, append(keyvals, slog.String("shortfall", funds.Shortfall().String()))...)
	case isBusinessError(err):
		s.LogWarn(ctx, err, msg, keyvals...)
	default:
		s.LogError(ctx, err, msg, keyvals...)
	}
}

// isBusinessError reports whether err is an expected rejection rather than a failure.
func isBusinessError(err error) bool {
	for _, target := range []error{
		apperrors.ErrNotFound,
		apperrors.ErrValidation,
		apperrors.ErrDuplicate,
		apperrors.ErrConflict,
		apperrors.ErrInvalidPaymentAmount,
		apperrors.ErrAmountExceedsApplied,
		apperrors.ErrLoanAlreadySettled,
		apperrors.ErrInvalidLoanState,
		apperrors.ErrInsufficientSavings,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
