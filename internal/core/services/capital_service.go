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
	"github.com/SscSPs/sacco_ledger/internal/utils/accounting"
)

// capitalService is the only writer of capital transfers. Every transfer is stored together with its journal.
type capitalService struct {
	BaseService
	transactor     portsrepo.TransactionManager
	capitalRepo    portsrepo.CapitalTransferRepository
	groupRepo      portsrepo.GroupReader
	resolver       portssvc.AccountResolverSvc
	posting        portssvc.PostingSvc
	funds          fundsGuard
	organizationID string
	now            func() time.Time
}

// CapitalServiceOption is a functional option for configuring the capital service.
type CapitalServiceOption func(*capitalService)

// WithCapitalClock overrides the clock used to date transfers.
func WithCapitalClock(now func() time.Time) CapitalServiceOption {
	return func(s *capitalService) {
		s.now = now
	}
}

// NewCapitalService creates a new capital service for the given organization.
func NewCapitalService(
	transactor portsrepo.TransactionManager,
	capitalRepo portsrepo.CapitalTransferRepository,
	groupRepo portsrepo.GroupReader,
	accountRepo portsrepo.AccountTransactionSupport,
	reportingRepo portsrepo.ReportingRepository,
	resolver portssvc.AccountResolverSvc,
	posting portssvc.PostingSvc,
	organizationID string,
	opts ...CapitalServiceOption,
) portssvc.CapitalSvc {
	s := &capitalService{
		transactor:     transactor,
		capitalRepo:    capitalRepo,
		groupRepo:      groupRepo,
		resolver:       resolver,
		posting:        posting,
		funds:          fundsGuard{accountRepo: accountRepo, reportingRepo: reportingRepo},
		organizationID: organizationID,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ portssvc.CapitalSvc = (*capitalService)(nil)

func (s *capitalService) AdvanceCapital(ctx context.Context, groupID string, amount decimal.Decimal, purpose string, approverID string, referenceNumber string) (*domain.CapitalTransfer, error) {
	transfer, err := s.transfer(ctx, domain.TransferAdvance, groupID, amount, approverID, func(t *domain.CapitalTransfer) {
		t.Purpose = purpose
		t.ReferenceNumber = referenceNumber
		t.ApprovedBy = approverID
	})
	if err != nil {
		s.logTransferFailure(ctx, err, "Capital advance failed", groupID, amount)
		return nil, err
	}
	return transfer, nil
}

func (s *capitalService) ReturnCapital(ctx context.Context, groupID string, amount decimal.Decimal, initiatorID string, notes string) (*domain.CapitalTransfer, error) {
	transfer, err := s.transfer(ctx, domain.TransferReturn, groupID, amount, initiatorID, func(t *domain.CapitalTransfer) {
		t.Purpose = notes
	})
	if err != nil {
		s.logTransferFailure(ctx, err, "Capital return failed", groupID, amount)
		return nil, err
	}
	return transfer, nil
}

// transfer checks the paying bank account under lock, posts the journal and records the transfer in one transaction.
func (s *capitalService) transfer(ctx context.Context, kind domain.TransferType, groupID string, amount decimal.Decimal, userID string, fill func(*domain.CapitalTransfer)) (*domain.CapitalTransfer, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: transfer amount must be greater than zero", apperrors.ErrValidation)
	}
	amount = accounting.RoundMoney(amount)

	group, err := s.groupRepo.FindGroupByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !group.IsActive {
		return nil, fmt.Errorf("%w: group %s is inactive", apperrors.ErrValidation, groupID)
	}

	payer, eventType, shortfallKind := domain.OrganizationScope(s.organizationID), domain.EventCapitalAdvance, apperrors.ErrInsufficientOrganizationFunds
	if kind == domain.TransferReturn {
		payer, eventType, shortfallKind = domain.GroupScope(groupID), domain.EventCapitalReturn, apperrors.ErrInsufficientGroupFunds
	}

	now := s.now().UTC()
	transfer := &domain.CapitalTransfer{
		TransferID:   uuid.NewString(),
		GroupID:      groupID,
		TransferType: kind,
		Amount:       amount,
		Status:       domain.TransferCompleted,
		TransferDate: now,
		AuditFields:  domain.NewAuditFields(userID, now),
	}
	fill(transfer)

	err = s.transactor.WithinTransaction(ctx, func(txCtx context.Context) error {
		bank, err := s.resolver.ResolveAccount(txCtx, payer, domain.RoleBank)
		if err != nil {
			return err
		}
		if err := s.funds.require(txCtx, shortfallKind, bank.AccountID, amount, now); err != nil {
			return err
		}
		// The group bank lock taken above serializes returns of the group.
		if kind == domain.TransferReturn {
			position, err := s.capitalRepo.GetCapitalPosition(txCtx, groupID)
			if err != nil {
				return fmt.Errorf("failed to get capital position: %w", err)
			}
			if amount.GreaterThan(position.Outstanding) {
				return fmt.Errorf("%w: return of %s exceeds outstanding capital %s of group %s",
					apperrors.ErrConflict, amount, position.Outstanding, groupID)
			}
		}

		result, err := s.posting.Post(txCtx, domain.PostingEvent{
			EventType:      eventType,
			ReferenceID:    transfer.TransferID,
			OrganizationID: s.organizationID,
			GroupID:        groupID,
			Date:           now,
			Description:    fmt.Sprintf("Capital %s for group %s", kind, group.Name),
			Amounts:        map[domain.AmountKey]decimal.Decimal{domain.AmountTransfer: amount},
			UserID:         userID,
		})
		if err != nil {
			return err
		}
		transfer.JournalID = result.Journal.JournalID

		if err := s.capitalRepo.SaveCapitalTransfer(txCtx, *transfer); err != nil {
			return fmt.Errorf("failed to save capital transfer: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.LogInfo(ctx, "Capital transfer completed",
		slog.String("transfer_id", transfer.TransferID),
		slog.String("type", string(kind)),
		slog.String("group_id", groupID),
		slog.String("amount", amount.String()))
	return transfer, nil
}

func (s *capitalService) logTransferFailure(ctx context.Context, err error, msg string, groupID string, amount decimal.Decimal) {
	attrs := []any{slog.String("group_id", groupID), slog.String("amount", amount.String())}
	var funds *apperrors.FundsError
	switch {
	case errors.Is(err, apperrors.ErrLedgerImbalance):
	case errors.As(err, &funds):
		s.LogWarn(ctx, err, msg, append(attrs, slog.String("shortfall", funds.Shortfall().String()))...)
	case isBusinessError(err):
		s.LogWarn(ctx, err, msg, attrs...)
	default:
		s.LogError(ctx, err, msg, attrs...)
	}
}

func (s *capitalService) GetCapitalPosition(ctx context.Context, groupID string) (*domain.CapitalPosition, error) {
	if _, err := s.groupRepo.FindGroupByID(ctx, groupID); err != nil {
		return nil, err
	}
	position, err := s.capitalRepo.GetCapitalPosition(ctx, groupID)
	if err != nil {
		s.LogError(ctx, err, "Failed to get capital position", slog.String("group_id", groupID))
		return nil, fmt.Errorf("failed to get capital position of group %s: %w", groupID, err)
	}
	return position, nil
}

func (s *capitalService) ListCapitalTransfers(ctx context.Context, groupID string) ([]domain.CapitalTransfer, error) {
	if _, err := s.groupRepo.FindGroupByID(ctx, groupID); err != nil {
		return nil, err
	}
	transfers, err := s.capitalRepo.ListCapitalTransfersByGroup(ctx, groupID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list capital transfers", slog.String("group_id", groupID))
		return nil, fmt.Errorf("failed to list capital transfers of group %s: %w", groupID, err)
	}
	return transfers, nil
}
