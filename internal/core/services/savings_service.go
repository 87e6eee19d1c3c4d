package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
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

type savingsService struct {
	BaseService
	transactor    portsrepo.TransactionManager
	groupRepo     portsrepo.GroupReader
	reportingRepo portsrepo.ReportingRepository
	resolver      portssvc.AccountResolverSvc
	posting       portssvc.PostingSvc
	funds         fundsGuard
	now           func() time.Time
}

// SavingsServiceOption is a functional option for configuring the savings service.
type SavingsServiceOption func(*savingsService)

// WithSavingsClock overrides the clock used to date movements and check the group bank.
func WithSavingsClock(now func() time.Time) SavingsServiceOption {
	return func(s *savingsService) {
		s.now = now
	}
}

// NewSavingsService creates a new savings service.
func NewSavingsService(
	transactor portsrepo.TransactionManager,
	groupRepo portsrepo.GroupReader,
	accountRepo portsrepo.AccountTransactionSupport,
	reportingRepo portsrepo.ReportingRepository,
	resolver portssvc.AccountResolverSvc,
	posting portssvc.PostingSvc,
	opts ...SavingsServiceOption,
) portssvc.SavingsSvc {
	s := &savingsService{
		transactor:    transactor,
		groupRepo:     groupRepo,
		reportingRepo: reportingRepo,
		resolver:      resolver,
		posting:       posting,
		funds:         fundsGuard{accountRepo: accountRepo, reportingRepo: reportingRepo},
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ portssvc.SavingsSvc = (*savingsService)(nil)

func (s *savingsService) Deposit(ctx context.Context, memberID string, req dto.SavingsRequest, userID string) (*domain.PostingResult, error) {
	return s.move(ctx, domain.EventSavingsDeposit, memberID, req, userID, nil)
}

// Withdraw pays out of the group bank. The member's savings and the group bank must both cover the amount.
// The bank is checked as of now, whatever date the withdrawal is posted with.
func (s *savingsService) Withdraw(ctx context.Context, memberID string, req dto.SavingsRequest, userID string) (*domain.PostingResult, error) {
	return s.move(ctx, domain.EventSavingsWithdrawal, memberID, req, userID, func(txCtx context.Context, member *domain.Member, amount decimal.Decimal, asOf time.Time) error {
		bank, err := s.resolver.ResolveAccount(txCtx, domain.GroupScope(member.GroupID), domain.RoleBank)
		if err != nil {
			return err
		}
		if err := s.funds.require(txCtx, apperrors.ErrInsufficientGroupFunds, bank.AccountID, amount, asOf); err != nil {
			return err
		}
		// The bank lock serializes withdrawals of the group, so the savings read below is stable.
		balance, err := memberSavings(txCtx, s.reportingRepo, member.MemberID)
		if err != nil {
			return err
		}
		if balance.LessThan(amount) {
			return apperrors.NewFundsError(apperrors.ErrInsufficientSavings, member.MemberID, balance, amount)
		}
		return nil
	})
}

type savingsCheck func(ctx context.Context, member *domain.Member, amount decimal.Decimal, asOf time.Time) error

func (s *savingsService) move(ctx context.Context, eventType domain.EventType, memberID string, req dto.SavingsRequest, userID string, check savingsCheck) (*domain.PostingResult, error) {
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be greater than zero", apperrors.ErrValidation)
	}
	amount := accounting.RoundMoney(req.Amount)

	member, err := s.groupRepo.FindMemberByID(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if !member.IsActive {
		return nil, fmt.Errorf("%w: member %s is inactive", apperrors.ErrValidation, memberID)
	}

	now := s.now().UTC()
	date := now
	if req.Date != nil {
		date = req.Date.UTC()
	}
	reference := req.ReferenceID
	if reference == "" {
		reference = uuid.NewString()
	}
	description := req.Notes
	if description == "" {
		description = fmt.Sprintf("%s for member %s", eventType, member.MemberNumber)
	}

	var result *domain.PostingResult
	err = s.transactor.WithinTransaction(ctx, func(txCtx context.Context) error {
		if check != nil {
			if err := check(txCtx, member, amount, now); err != nil {
				return err
			}
		}
		var err error
		result, err = s.posting.Post(txCtx, domain.PostingEvent{
			EventType:   eventType,
			ReferenceID: reference,
			GroupID:     member.GroupID,
			MemberID:    member.MemberID,
			Date:        date,
			Description: description,
			Amounts:     map[domain.AmountKey]decimal.Decimal{domain.AmountSavings: amount},
			UserID:      userID,
		})
		return err
	})
	if err != nil {
		var funds *apperrors.FundsError
		if errors.As(err, &funds) || isBusinessError(err) {
			s.LogWarn(ctx, err, "Savings movement rejected", slog.String("member_id", memberID), slog.String("event_type", string(eventType)))
		} else if !errors.Is(err, apperrors.ErrLedgerImbalance) {
			s.LogError(ctx, err, "Savings movement failed", slog.String("member_id", memberID), slog.String("event_type", string(eventType)))
		}
		return nil, err
	}
	return result, nil
}
