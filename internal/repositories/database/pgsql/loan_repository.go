package pgsql

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/SscSPs/sacco_ledger/internal/apperrors"
	"github.com/SscSPs/sacco_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/sacco_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/sacco_ledger/internal/models"
	"github.com/SscSPs/sacco_ledger/internal/utils/mapping"
	"github.com/SscSPs/sacco_ledger/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxLoanRepository struct {
	BaseRepository
}

// newPgxLoanRepository creates a new repository for loans, schedules and repayments.
func newPgxLoanRepository(pool *pgxpool.Pool) portsrepo.LoanRepositoryFacade {
	return &PgxLoanRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxLoanRepository implements portsrepo.LoanRepositoryFacade
var _ portsrepo.LoanRepositoryFacade = (*PgxLoanRepository)(nil)

const loanColumns = `
	loan_id, member_id, group_id, product_id, applied_amount, principal_amount, interest_rate, duration,
	interest_amount, repayment_amount, charges_amount, status, application_date,
	approved_by, approved_at, rejected_by, rejected_at, rejection_reason, disbursed_at, disbursement_journal_id,
	created_at, created_by, last_updated_at, last_updated_by`

// liveLoanStatuses are the states in which a loan still carries a balance.
var liveLoanStatuses = []string{string(domain.LoanDisbursed), string(domain.LoanActive)}

func (r *PgxLoanRepository) getLoans(ctx context.Context, db querier, filterQuery string, args ...any) ([]models.Loan, error) {
	rows, err := db.Query(ctx, "SELECT "+loanColumns+" FROM loans "+filterQuery, args...)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query loans", err)
	}
	loans, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.Loan])
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to collect loan rows", err)
	}
	return loans, nil
}

func (r *PgxLoanRepository) getLoan(ctx context.Context, db querier, filterQuery string, args ...any) (*domain.Loan, error) {
	loans, err := r.getLoans(ctx, db, filterQuery, args...)
	if err != nil {
		return nil, err
	}
	if len(loans) == 0 {
		return nil, apperrors.ErrNotFound
	}
	loan := mapping.ToDomainLoan(loans[0])
	return &loan, nil
}

func (r *PgxLoanRepository) FindLoanByID(ctx context.Context, loanID string) (*domain.Loan, error) {
	return r.getLoan(ctx, r.DB(ctx), "WHERE loan_id = $1", loanID)
}

// FindLoanByIDForUpdate locks the loan row until the surrounding transaction ends.
func (r *PgxLoanRepository) FindLoanByIDForUpdate(ctx context.Context, loanID string) (*domain.Loan, error) {
	tx, err := r.requireTx(ctx, "FindLoanByIDForUpdate")
	if err != nil {
		return nil, err
	}
	return r.getLoan(ctx, tx, "WHERE loan_id = $1 FOR UPDATE", loanID)
}

// ListLoansByGroup retrieves loans newest first using token-based pagination.
func (r *PgxLoanRepository) ListLoansByGroup(ctx context.Context, groupID string, status *domain.LoanStatus, limit int, nextToken *string) ([]domain.Loan, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	fetchLimit := limit + 1

	filter := "WHERE group_id = $1"
	args := []any{groupID}
	if status != nil {
		args = append(args, string(*status))
		filter += " AND status = $" + strconv.Itoa(len(args))
	}
	if nextToken != nil && *nextToken != "" {
		cursor, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, fmt.Errorf("%w: invalid nextToken: %v", apperrors.ErrValidation, decodeErr)
		}
		args = append(args, cursor.CreatedAt, cursor.ID)
		filter += fmt.Sprintf(" AND (created_at, loan_id) < ($%d, $%d)", len(args)-1, len(args))
	}
	args = append(args, fetchLimit)
	filter += " ORDER BY created_at DESC, loan_id DESC LIMIT $" + strconv.Itoa(len(args))

	loans, err := r.getLoans(ctx, r.DB(ctx), filter, args...)
	if err != nil {
		return nil, nil, err
	}

	var nextTokenVal *string
	if len(loans) > limit {
		last := loans[limit-1]
		token := pagination.EncodeToken(pagination.Cursor{Date: last.ApplicationDate, CreatedAt: last.CreatedAt, ID: last.LoanID})
		nextTokenVal = &token
		loans = loans[:limit]
	}
	return mapping.ToDomainLoanSlice(loans), nextTokenVal, nil
}

func loanArgs(m models.Loan) []any {
	return []any{
		m.LoanID, m.MemberID, m.GroupID, m.ProductID, m.AppliedAmount, m.PrincipalAmount, m.InterestRate, m.Duration,
		m.InterestAmount, m.RepaymentAmount, m.ChargesAmount, m.Status, m.ApplicationDate,
		m.ApprovedBy, m.ApprovedAt, m.RejectedBy, m.RejectedAt, m.RejectionReason, m.DisbursedAt, m.DisbursementJournalID,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	}
}

func (r *PgxLoanRepository) SaveLoan(ctx context.Context, loan domain.Loan) error {
	query := `
		INSERT INTO loans (` + loanColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24)
	`
	if _, err := r.DB(ctx).Exec(ctx, query, loanArgs(mapping.ToModelLoan(loan))...); err != nil {
		return mapWriteError(err, "save loan "+loan.LoanID)
	}
	return nil
}

// UpdateLoan writes every mutable column of the loan.
func (r *PgxLoanRepository) UpdateLoan(ctx context.Context, loan domain.Loan) error {
	m := mapping.ToModelLoan(loan)
	query := `
		UPDATE loans SET
			principal_amount = $2, interest_amount = $3, repayment_amount = $4, charges_amount = $5, status = $6,
			approved_by = $7, approved_at = $8, rejected_by = $9, rejected_at = $10, rejection_reason = $11,
			disbursed_at = $12, disbursement_journal_id = $13, last_updated_at = $14, last_updated_by = $15
		WHERE loan_id = $1
	`
	tag, err := r.DB(ctx).Exec(ctx, query,
		m.LoanID, m.PrincipalAmount, m.InterestAmount, m.RepaymentAmount, m.ChargesAmount, m.Status,
		m.ApprovedBy, m.ApprovedAt, m.RejectedBy, m.RejectedAt, m.RejectionReason,
		m.DisbursedAt, m.DisbursementJournalID, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update loan "+loan.LoanID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxLoanRepository) FindInstallmentsByLoanID(ctx context.Context, loanID string) ([]domain.Installment, error) {
	query := `
		SELECT installment_id, loan_id, installment_number, due_date, principal_due, interest_due, total_due, balance_after, status
		FROM loan_installments
		WHERE loan_id = $1
		ORDER BY installment_number
	`
	rows, err := r.DB(ctx).Query(ctx, query, loanID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query installments for loan "+loanID, err)
	}
	installments, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.LoanInstallment])
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to collect installment rows for loan "+loanID, err)
	}
	result := make([]domain.Installment, len(installments))
	for i, m := range installments {
		result[i] = mapping.ToDomainInstallment(m)
	}
	return result, nil
}

// ReplaceSchedule deletes the loan's installments and inserts the new set.
func (r *PgxLoanRepository) ReplaceSchedule(ctx context.Context, loanID string, installments []domain.Installment) error {
	db := r.DB(ctx)
	if _, err := db.Exec(ctx, "DELETE FROM loan_installments WHERE loan_id = $1", loanID); err != nil {
		return apperrors.NewAppError(500, "failed to delete schedule of loan "+loanID, err)
	}
	if len(installments) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	query := `
		INSERT INTO loan_installments (installment_id, loan_id, installment_number, due_date, principal_due, interest_due, total_due, balance_after, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	for _, inst := range installments {
		m := mapping.ToModelInstallment(inst)
		batch.Queue(query, m.InstallmentID, m.LoanID, m.InstallmentNumber, m.DueDate, m.PrincipalDue, m.InterestDue, m.TotalDue, m.BalanceAfter, m.Status)
	}
	br := db.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return apperrors.NewAppError(500, "failed to insert schedule of loan "+loanID, err)
	}
	return nil
}

func (r *PgxLoanRepository) SaveRepayment(ctx context.Context, repayment domain.LoanRepayment) error {
	m := mapping.ToModelRepayment(repayment)
	query := `
		INSERT INTO loan_repayments (
			repayment_id, loan_id, member_id, amount, payment_method, repayment_date,
			principal_paid, interest_paid, charges_paid, unallocated, journal_id,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	_, err := r.DB(ctx).Exec(ctx, query,
		m.RepaymentID, m.LoanID, m.MemberID, m.Amount, m.PaymentMethod, m.RepaymentDate,
		m.PrincipalPaid, m.InterestPaid, m.ChargesPaid, m.Unallocated, m.JournalID,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		return mapWriteError(err, "save repayment "+m.RepaymentID)
	}
	return nil
}

func (r *PgxLoanRepository) FindRepaymentsByLoanID(ctx context.Context, loanID string) ([]domain.LoanRepayment, error) {
	query := `
		SELECT repayment_id, loan_id, member_id, amount, payment_method, repayment_date,
		       principal_paid, interest_paid, charges_paid, unallocated, journal_id,
		       created_at, created_by, last_updated_at, last_updated_by
		FROM loan_repayments
		WHERE loan_id = $1
		ORDER BY repayment_date, created_at
	`
	rows, err := r.DB(ctx).Query(ctx, query, loanID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query repayments for loan "+loanID, err)
	}
	repayments, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.LoanRepayment])
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to collect repayment rows for loan "+loanID, err)
	}
	result := make([]domain.LoanRepayment, len(repayments))
	for i, m := range repayments {
		result[i] = mapping.ToDomainRepayment(m)
	}
	return result, nil
}

// MarkOverdueInstallments flags pending installments of live loans that fell due before asOf.
func (r *PgxLoanRepository) MarkOverdueInstallments(ctx context.Context, asOf time.Time) (int64, error) {
	query := `
		UPDATE loan_installments i
		SET status = 'OVERDUE'
		FROM loans l
		WHERE i.loan_id = l.loan_id
			AND i.status = 'PENDING'
			AND i.due_date < $1
			AND l.status = ANY($2)
	`
	tag, err := r.DB(ctx).Exec(ctx, query, asOf, liveLoanStatuses)
	if err != nil {
		return 0, apperrors.NewAppError(500, "failed to mark overdue installments", err)
	}
	return tag.RowsAffected(), nil
}

// MarkMaturedLoans moves live loans whose last installment fell due before asOf to MATURED.
func (r *PgxLoanRepository) MarkMaturedLoans(ctx context.Context, asOf time.Time, userID string) (int64, error) {
	query := `
		UPDATE loans l
		SET status = 'MATURED', last_updated_at = $1, last_updated_by = $2
		WHERE l.status = ANY($3)
			AND EXISTS (SELECT 1 FROM loan_installments i WHERE i.loan_id = l.loan_id)
			AND (SELECT MAX(i.due_date) FROM loan_installments i WHERE i.loan_id = l.loan_id) < $1
	`
	tag, err := r.DB(ctx).Exec(ctx, query, asOf, userID, liveLoanStatuses)
	if err != nil {
		return 0, apperrors.NewAppError(500, "failed to mark matured loans", err)
	}
	return tag.RowsAffected(), nil
}
