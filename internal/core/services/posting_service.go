package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/SscSPs/sacco_ledger/internal/apperrors"
	"github.com/SscSPs/sacco_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/sacco_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/sacco_ledger/internal/core/ports/services"
	"github.com/SscSPs/sacco_ledger/internal/dto"
	"github.com/SscSPs/sacco_ledger/internal/utils/accounting"
)

// postingService turns business events into balanced journals.
type postingService struct {
	BaseService
	transactor  portsrepo.TransactionManager
	journalRepo portsrepo.JournalRepositoryFacade
	accountRepo portsrepo.AccountReader
	resolver    portssvc.AccountResolverSvc
	now         func() time.Time
}

// PostingServiceOption is a functional option for configuring the posting service.
type PostingServiceOption func(*postingService)

// WithPostingClock overrides the clock used to stamp journals.
func WithPostingClock(now func() time.Time) PostingServiceOption {
	return func(s *postingService) {
		s.now = now
	}
}

// NewPostingService creates the posting engine.
func NewPostingService(
	transactor portsrepo.TransactionManager,
	journalRepo portsrepo.JournalRepositoryFacade,
	accountRepo portsrepo.AccountReader,
	resolver portssvc.AccountResolverSvc,
	opts ...PostingServiceOption,
) portssvc.PostingSvc {
	s := &postingService{
		transactor:  transactor,
		journalRepo: journalRepo,
		accountRepo: accountRepo,
		resolver:    resolver,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ portssvc.PostingSvc = (*postingService)(nil)

func (s *postingService) Post(ctx context.Context, event domain.PostingEvent) (*domain.PostingResult, error) {
	legs, ok := postingTemplates[event.EventType]
	if !ok {
		return nil, fmt.Errorf("%w: no posting template for event type %q", apperrors.ErrValidation, event.EventType)
	}
	if event.ReferenceID == "" {
		return nil, fmt.Errorf("%w: reference ID is required", apperrors.ErrValidation)
	}

	var result *domain.PostingResult
	err := s.transactor.WithinTransaction(ctx, func(txCtx context.Context) error {
		var err error
		result, err = s.post(txCtx, event, legs)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *postingService) post(ctx context.Context, event domain.PostingEvent, legs []postingLeg) (*domain.PostingResult, error) {
	existing, err := s.journalRepo.FindJournalByReference(ctx, event.EventType, event.ReferenceID)
	if err == nil {
		s.LogWarn(ctx, apperrors.ErrDuplicate, "Event already posted",
			slog.String("event_type", string(event.EventType)),
			slog.String("reference_id", event.ReferenceID),
			slog.String("journal_id", existing.JournalID))
		return nil, fmt.Errorf("%w: %s %s already posted as journal %s", apperrors.ErrDuplicate, event.EventType, event.ReferenceID, existing.JournalID)
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		s.LogError(ctx, err, "Failed to look up journal by reference", slog.String("reference_id", event.ReferenceID))
		return nil, fmt.Errorf("failed to look up journal for %s %s: %w", event.EventType, event.ReferenceID, err)
	}

	now := s.now().UTC()
	journalDate := event.Date
	if journalDate.IsZero() {
		journalDate = now
	}
	journalID := uuid.NewString()

	// Every leg is resolved before anything is written.
	transactions := make([]domain.Transaction, 0, len(legs))
	for _, leg := range legs {
		amount := event.Amount(leg.Amount)
		if amount.IsNegative() {
			return nil, fmt.Errorf("%w: %s amount %s is negative", apperrors.ErrValidation, leg.Amount, amount)
		}
		if amount.IsZero() {
			continue
		}

		account, err := s.resolveLeg(ctx, event, leg)
		if err != nil {
			return nil, err
		}

		transactions = append(transactions, domain.Transaction{
			TransactionID:   uuid.NewString(),
			JournalID:       journalID,
			AccountID:       account.AccountID,
			Amount:          amount,
			TransactionType: leg.Side,
			MemberID:        event.MemberID,
			GroupID:         event.GroupID,
			LoanID:          event.LoanID,
			TransactionDate: journalDate,
			Notes:           leg.Notes,
			AuditFields:     domain.NewAuditFields(event.UserID, now),
		})
	}

	if len(transactions) == 0 {
		return nil, fmt.Errorf("%w: %s event %s has no non-zero amounts", apperrors.ErrValidation, event.EventType, event.ReferenceID)
	}

	if err := accounting.ValidateJournalBalance(transactions); err != nil {
		if errors.Is(err, apperrors.ErrLedgerImbalance) {
			debits, credits := accounting.SumByDirection(transactions)
			s.LogError(ctx, err, "Refusing to post unbalanced journal",
				slog.String("event_type", string(event.EventType)),
				slog.String("reference_id", event.ReferenceID),
				slog.String("debits", debits.String()),
				slog.String("credits", credits.String()))
		}
		return nil, err
	}

	debits, _ := accounting.SumByDirection(transactions)
	journal := domain.Journal{
		JournalID:   journalID,
		EventType:   event.EventType,
		ReferenceID: event.ReferenceID,
		GroupID:     event.GroupID,
		JournalDate: journalDate,
		Description: event.Description,
		Amount:      debits,
		Status:      domain.Posted,
		AuditFields: domain.NewAuditFields(event.UserID, now),
	}

	if err := s.journalRepo.SaveJournal(ctx, journal, transactions); err != nil {
		// The unique index catches a concurrent post of the same reference.
		if errors.Is(err, apperrors.ErrDuplicate) {
			s.LogWarn(ctx, err, "Event already posted",
				slog.String("event_type", string(event.EventType)),
				slog.String("reference_id", event.ReferenceID))
			return nil, fmt.Errorf("%w: %s %s already posted", apperrors.ErrDuplicate, event.EventType, event.ReferenceID)
		}
		s.LogError(ctx, err, "Failed to save journal", slog.String("journal_id", journalID))
		return nil, fmt.Errorf("failed to save journal: %w", err)
	}

	s.LogInfo(ctx, "Journal posted",
		slog.String("journal_id", journalID),
		slog.String("event_type", string(event.EventType)),
		slog.String("reference_id", event.ReferenceID),
		slog.String("amount", debits.String()),
		slog.Int("entries", len(transactions)))

	return &domain.PostingResult{Journal: journal, Transactions: transactions}, nil
}

func (s *postingService) resolveLeg(ctx context.Context, event domain.PostingEvent, leg postingLeg) (*domain.Account, error) {
	switch leg.Scope {
	case legOrganization:
		return s.resolver.ResolveAccount(ctx, domain.OrganizationScope(event.OrganizationID), leg.Role)
	case legLoan:
		scopes := []domain.AccountScope{domain.GroupScope(event.GroupID)}
		if event.ProductID != "" {
			scopes = append([]domain.AccountScope{domain.ProductScope(event.ProductID)}, scopes...)
		}
		return s.resolver.ResolveFirst(ctx, leg.Role, scopes...)
	default:
		return s.resolver.ResolveAccount(ctx, domain.GroupScope(event.GroupID), leg.Role)
	}
}

func (s *postingService) GetJournal(ctx context.Context, journalID string) (*domain.PostingResult, error) {
	journal, err := s.journalRepo.FindJournalByID(ctx, journalID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find journal", slog.String("journal_id", journalID))
		}
		return nil, err
	}

	transactions, err := s.journalRepo.FindTransactionsByJournalID(ctx, journalID)
	if err != nil {
		s.LogError(ctx, err, "Failed to load journal entries", slog.String("journal_id", journalID))
		return nil, fmt.Errorf("failed to load entries of journal %s: %w", journalID, err)
	}

	return &domain.PostingResult{Journal: *journal, Transactions: transactions}, nil
}

func (s *postingService) ListTransactionsByAccount(ctx context.Context, accountID string, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}

	transactions, nextToken, err := s.journalRepo.ListTransactionsByAccountID(ctx, accountID, limit, params.NextToken)
	if err != nil {
		if !errors.Is(err, apperrors.ErrValidation) {
			s.LogError(ctx, err, "Failed to list account transactions", slog.String("account_id", accountID))
		}
		return nil, err
	}

	responses := dto.ToTransactionResponses(transactions)
	for i := range transactions {
		signed, err := accounting.CalculateSignedAmount(transactions[i], account.AccountType)
		if err != nil {
			s.LogError(ctx, err, "Failed to sign account transaction", slog.String("account_id", accountID))
			return nil, err
		}
		responses[i].SignedAmount = signed
	}

	return &dto.ListTransactionsResponse{
		Transactions: responses,
		NextToken:    nextToken,
	}, nil
}
