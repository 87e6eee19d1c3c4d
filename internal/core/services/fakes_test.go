package services_test

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/SscSPs/sacco_ledger/internal/apperrors"
	"github.com/SscSPs/sacco_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/sacco_ledger/internal/core/ports/repositories"
)

type memTxKey struct{}

// memStore is an in-memory stand-in for every repository. WithinTransaction snapshots
// the whole store and restores it when fn fails, so tests observe real rollback.
type memStore struct {
	mu sync.Mutex
	memState

	// failSaveRepayment makes SaveRepayment fail once the journal is already written.
	failSaveRepayment error
}

type memState struct {
	accounts     map[string]domain.Account
	journals     map[string]domain.Journal
	transactions []domain.Transaction
	loans        map[string]domain.Loan
	installments map[string][]domain.Installment
	repayments   []domain.LoanRepayment
	transfers    []domain.CapitalTransfer
	groups       map[string]domain.Group
	members      map[string]domain.Member
	products     map[string]domain.LoanProduct
}

func newMemStore() *memStore {
	return &memStore{memState: memState{
		accounts:     map[string]domain.Account{},
		journals:     map[string]domain.Journal{},
		loans:        map[string]domain.Loan{},
		installments: map[string][]domain.Installment{},
		groups:       map[string]domain.Group{},
		members:      map[string]domain.Member{},
		products:     map[string]domain.LoanProduct{},
	}}
}

func (s memState) clone() memState {
	c := memState{
		accounts:     make(map[string]domain.Account, len(s.accounts)),
		journals:     make(map[string]domain.Journal, len(s.journals)),
		transactions: append([]domain.Transaction(nil), s.transactions...),
		loans:        make(map[string]domain.Loan, len(s.loans)),
		installments: make(map[string][]domain.Installment, len(s.installments)),
		repayments:   append([]domain.LoanRepayment(nil), s.repayments...),
		transfers:    append([]domain.CapitalTransfer(nil), s.transfers...),
		groups:       make(map[string]domain.Group, len(s.groups)),
		members:      make(map[string]domain.Member, len(s.members)),
		products:     make(map[string]domain.LoanProduct, len(s.products)),
	}
	for k, v := range s.accounts {
		c.accounts[k] = v
	}
	for k, v := range s.journals {
		c.journals[k] = v
	}
	for k, v := range s.loans {
		c.loans[k] = v
	}
	for k, v := range s.installments {
		c.installments[k] = append([]domain.Installment(nil), v...)
	}
	for k, v := range s.groups {
		c.groups[k] = v
	}
	for k, v := range s.members {
		c.members[k] = v
	}
	for k, v := range s.products {
		c.products[k] = v
	}
	return c
}

func (m *memStore) provider() portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		Transactor:    m,
		AccountRepo:   m,
		JournalRepo:   m,
		ReportingRepo: m,
		LoanRepo:      m,
		CapitalRepo:   m,
		GroupRepo:     m,
		ProductRepo:   m,
	}
}

func inTx(ctx context.Context) bool {
	return ctx.Value(memTxKey{}) != nil
}

// --- TransactionManager ---

func (m *memStore) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if inTx(ctx) {
		return fn(ctx)
	}
	m.mu.Lock()
	snapshot := m.memState.clone()
	m.mu.Unlock()

	if err := fn(context.WithValue(ctx, memTxKey{}, true)); err != nil {
		m.mu.Lock()
		m.memState = snapshot
		m.mu.Unlock()
		return err
	}
	return nil
}

// --- Accounts ---

func (m *memStore) FindAccountByID(_ context.Context, accountID string) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	acc, ok := m.accounts[accountID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &acc, nil
}

func (m *memStore) FindAccountByCode(_ context.Context, code string) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, acc := range m.accounts {
		if acc.Code == code {
			return &acc, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (m *memStore) FindActiveAccountByScopeAndRole(_ context.Context, scope domain.AccountScope, role domain.AccountRole) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, acc := range m.accounts {
		if acc.IsActive && acc.Scope == scope && acc.Role == role {
			return &acc, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (m *memStore) ListAccountsByScope(_ context.Context, scope domain.AccountScope) ([]domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Account
	for _, acc := range m.accounts {
		if acc.Scope == scope {
			out = append(out, acc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (m *memStore) saveAccountLocked(account domain.Account) error {
	for _, acc := range m.accounts {
		if acc.Code == account.Code {
			return apperrors.ErrDuplicate
		}
		if acc.IsActive && account.IsActive && acc.Scope == account.Scope && acc.Role == account.Role {
			return apperrors.ErrDuplicate
		}
	}
	m.accounts[account.AccountID] = account
	return nil
}

func (m *memStore) SaveAccount(_ context.Context, account domain.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveAccountLocked(account)
}

func (m *memStore) SaveAccountsIfMissing(_ context.Context, accounts []domain.Account) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	created := 0
	for _, acc := range accounts {
		if err := m.saveAccountLocked(acc); err == nil {
			created++
		}
	}
	return created, nil
}

func (m *memStore) DeactivateAccount(_ context.Context, accountID string, userID string, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	acc, ok := m.accounts[accountID]
	if !ok {
		return apperrors.ErrNotFound
	}
	acc.IsActive = false
	acc.Touch(userID, now)
	m.accounts[accountID] = acc
	return nil
}

func (m *memStore) LockAccounts(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	if !inTx(ctx) {
		return nil, errors.New("LockAccounts called outside a transaction")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]domain.Account, len(accountIDs))
	for _, id := range accountIDs {
		acc, ok := m.accounts[id]
		if !ok {
			return nil, apperrors.ErrNotFound
		}
		out[id] = acc
	}
	return out, nil
}

// --- Journals ---

func (m *memStore) FindJournalByID(_ context.Context, journalID string) (*domain.Journal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.journals[journalID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &j, nil
}

func (m *memStore) FindJournalByReference(_ context.Context, eventType domain.EventType, referenceID string) (*domain.Journal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, j := range m.journals {
		if j.EventType == eventType && j.ReferenceID == referenceID {
			return &j, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (m *memStore) SaveJournal(_ context.Context, journal domain.Journal, transactions []domain.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, j := range m.journals {
		if j.EventType == journal.EventType && j.ReferenceID == journal.ReferenceID {
			return apperrors.ErrDuplicate
		}
	}
	m.journals[journal.JournalID] = journal
	for _, txn := range transactions {
		txn.EventType = journal.EventType
		m.transactions = append(m.transactions, txn)
	}
	return nil
}

func (m *memStore) FindTransactionsByJournalID(_ context.Context, journalID string) ([]domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Transaction
	for _, txn := range m.transactions {
		if txn.JournalID == journalID {
			out = append(out, txn)
		}
	}
	return out, nil
}

func (m *memStore) ListTransactionsByAccountID(_ context.Context, accountID string, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []domain.Transaction
	for _, txn := range m.transactions {
		if txn.AccountID == accountID {
			all = append(all, txn)
		}
	}
	start := 0
	if nextToken != nil {
		if _, err := fmt.Sscanf(*nextToken, "%d", &start); err != nil {
			return nil, nil, apperrors.ErrValidation
		}
	}
	if start > len(all) {
		start = len(all)
	}
	end := start + limit
	var next *string
	if end < len(all) {
		token := fmt.Sprintf("%d", end)
		next = &token
	} else {
		end = len(all)
	}
	return all[start:end], next, nil
}

// --- Reporting ---

func (m *memStore) totalsLocked(acc domain.Account, include func(domain.Transaction) bool) domain.AccountTotals {
	t := domain.AccountTotals{
		AccountID:      acc.AccountID,
		Code:           acc.Code,
		Name:           acc.Name,
		Role:           acc.Role,
		AccountType:    acc.AccountType,
		OpeningBalance: acc.OpeningBalance,
		Debits:         decimal.Zero,
		Credits:        decimal.Zero,
	}
	for _, txn := range m.transactions {
		if txn.AccountID != acc.AccountID || !include(txn) {
			continue
		}
		if txn.TransactionType == domain.Debit {
			t.Debits = t.Debits.Add(txn.Amount)
		} else {
			t.Credits = t.Credits.Add(txn.Amount)
		}
	}
	return t
}

func (m *memStore) GetAccountTotals(_ context.Context, accountID string, asOf time.Time) (*domain.AccountTotals, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	acc, ok := m.accounts[accountID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	t := m.totalsLocked(acc, func(txn domain.Transaction) bool { return !txn.TransactionDate.After(asOf) })
	return &t, nil
}

func (m *memStore) GetScopeAccountTotals(_ context.Context, scope domain.AccountScope, asOf time.Time) ([]domain.AccountTotals, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.AccountTotals
	for _, acc := range m.accounts {
		if acc.Scope != scope || !acc.IsActive {
			continue
		}
		out = append(out, m.totalsLocked(acc, func(txn domain.Transaction) bool { return !txn.TransactionDate.After(asOf) }))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (m *memStore) GetGroupShareOfProductAccounts(_ context.Context, groupID string, asOf time.Time) ([]domain.AccountTotals, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.AccountTotals
	for _, acc := range m.accounts {
		if acc.Scope.Kind != domain.ScopeProduct {
			continue
		}
		t := m.totalsLocked(acc, func(txn domain.Transaction) bool {
			return txn.GroupID == groupID && !txn.TransactionDate.After(asOf)
		})
		if t.Debits.IsZero() && t.Credits.IsZero() {
			continue
		}
		t.OpeningBalance = decimal.Zero
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (m *memStore) GetLoanRoleTotals(_ context.Context, loanID string) (map[domain.AccountRole]domain.AccountTotals, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[domain.AccountRole]domain.AccountTotals{}
	for _, acc := range m.accounts {
		t := m.totalsLocked(acc, func(txn domain.Transaction) bool { return txn.LoanID == loanID })
		if t.Debits.IsZero() && t.Credits.IsZero() {
			continue
		}
		prev, ok := out[acc.Role]
		if !ok {
			prev = domain.AccountTotals{Role: acc.Role, AccountType: acc.AccountType, Debits: decimal.Zero, Credits: decimal.Zero}
		}
		prev.Debits = prev.Debits.Add(t.Debits)
		prev.Credits = prev.Credits.Add(t.Credits)
		out[acc.Role] = prev
	}
	return out, nil
}

func (m *memStore) GetMemberRoleTotals(_ context.Context, memberID string, role domain.AccountRole) (*domain.AccountTotals, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := domain.AccountTotals{Role: role, Debits: decimal.Zero, Credits: decimal.Zero}
	for _, acc := range m.accounts {
		if acc.Role != role {
			continue
		}
		t := m.totalsLocked(acc, func(txn domain.Transaction) bool { return txn.MemberID == memberID })
		total.AccountType = acc.AccountType
		total.Debits = total.Debits.Add(t.Debits)
		total.Credits = total.Credits.Add(t.Credits)
	}
	return &total, nil
}

// --- Loans ---

func (m *memStore) FindLoanByID(_ context.Context, loanID string) (*domain.Loan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	loan, ok := m.loans[loanID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &loan, nil
}

func (m *memStore) FindLoanByIDForUpdate(ctx context.Context, loanID string) (*domain.Loan, error) {
	if !inTx(ctx) {
		return nil, errors.New("FindLoanByIDForUpdate called outside a transaction")
	}
	return m.FindLoanByID(ctx, loanID)
}

func (m *memStore) ListLoansByGroup(_ context.Context, groupID string, status *domain.LoanStatus, limit int, _ *string) ([]domain.Loan, *string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Loan
	for _, loan := range m.loans {
		if loan.GroupID != groupID || (status != nil && loan.Status != *status) {
			continue
		}
		out = append(out, loan)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil, nil
}

func (m *memStore) FindInstallmentsByLoanID(_ context.Context, loanID string) ([]domain.Installment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Installment(nil), m.installments[loanID]...), nil
}

func (m *memStore) FindRepaymentsByLoanID(_ context.Context, loanID string) ([]domain.LoanRepayment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.LoanRepayment
	for _, r := range m.repayments {
		if r.LoanID == loanID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memStore) SaveLoan(_ context.Context, loan domain.Loan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.loans[loan.LoanID]; ok {
		return apperrors.ErrDuplicate
	}
	m.loans[loan.LoanID] = loan
	return nil
}

func (m *memStore) UpdateLoan(_ context.Context, loan domain.Loan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.loans[loan.LoanID]; !ok {
		return apperrors.ErrNotFound
	}
	m.loans[loan.LoanID] = loan
	return nil
}

func (m *memStore) ReplaceSchedule(_ context.Context, loanID string, installments []domain.Installment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.installments[loanID] = append([]domain.Installment(nil), installments...)
	return nil
}

func (m *memStore) SaveRepayment(_ context.Context, repayment domain.LoanRepayment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSaveRepayment != nil {
		return m.failSaveRepayment
	}
	m.repayments = append(m.repayments, repayment)
	return nil
}

func isLive(status domain.LoanStatus) bool {
	return status == domain.LoanDisbursed || status == domain.LoanActive
}

func (m *memStore) MarkOverdueInstallments(_ context.Context, asOf time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for loanID, rows := range m.installments {
		if !isLive(m.loans[loanID].Status) {
			continue
		}
		for i := range rows {
			if rows[i].Status == domain.InstallmentPending && rows[i].DueDate.Before(asOf) {
				rows[i].Status = domain.InstallmentOverdue
				n++
			}
		}
	}
	return n, nil
}

func (m *memStore) MarkMaturedLoans(_ context.Context, asOf time.Time, userID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, loan := range m.loans {
		rows := m.installments[id]
		if !isLive(loan.Status) || len(rows) == 0 {
			continue
		}
		if rows[len(rows)-1].DueDate.Before(asOf) {
			loan.Status = domain.LoanMatured
			loan.Touch(userID, asOf)
			m.loans[id] = loan
			n++
		}
	}
	return n, nil
}

// --- Capital ---

func (m *memStore) SaveCapitalTransfer(_ context.Context, transfer domain.CapitalTransfer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transfers = append(m.transfers, transfer)
	return nil
}

func (m *memStore) ListCapitalTransfersByGroup(_ context.Context, groupID string) ([]domain.CapitalTransfer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.CapitalTransfer
	for _, t := range m.transfers {
		if t.GroupID == groupID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *memStore) GetCapitalPosition(_ context.Context, groupID string) (*domain.CapitalPosition, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := &domain.CapitalPosition{GroupID: groupID, Advanced: decimal.Zero, Returned: decimal.Zero}
	for _, t := range m.transfers {
		if t.GroupID != groupID {
			continue
		}
		if t.TransferType == domain.TransferAdvance {
			p.Advanced = p.Advanced.Add(t.Amount)
		} else {
			p.Returned = p.Returned.Add(t.Amount)
		}
	}
	p.Outstanding = p.Advanced.Sub(p.Returned)
	return p, nil
}

// --- Groups and members ---

func (m *memStore) FindGroupByID(_ context.Context, groupID string) (*domain.Group, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.groups[groupID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &g, nil
}

func (m *memStore) ListGroups(_ context.Context, limit int, offset int) ([]domain.Group, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Group
	for _, g := range m.groups {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	if offset >= len(out) {
		return []domain.Group{}, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStore) FindMemberByID(_ context.Context, memberID string) (*domain.Member, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	mem, ok := m.members[memberID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &mem, nil
}

func (m *memStore) ListMembersByGroup(_ context.Context, groupID string) ([]domain.Member, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Member
	for _, mem := range m.members {
		if mem.GroupID == groupID {
			out = append(out, mem)
		}
	}
	return out, nil
}

func (m *memStore) SaveGroup(_ context.Context, group domain.Group) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, g := range m.groups {
		if g.Name == group.Name {
			return apperrors.ErrDuplicate
		}
	}
	m.groups[group.GroupID] = group
	return nil
}

func (m *memStore) SaveMember(_ context.Context, member domain.Member) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, mem := range m.members {
		if mem.GroupID == member.GroupID && mem.MemberNumber == member.MemberNumber {
			return apperrors.ErrDuplicate
		}
	}
	m.members[member.MemberID] = member
	return nil
}

// --- Products ---

func (m *memStore) SaveProduct(_ context.Context, product domain.LoanProduct) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products[product.ProductID] = product
	return nil
}

func (m *memStore) FindProductByID(_ context.Context, productID string) (*domain.LoanProduct, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[productID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &p, nil
}

func (m *memStore) ListProducts(_ context.Context) ([]domain.LoanProduct, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.LoanProduct
	for _, p := range m.products {
		out = append(out, p)
	}
	return out, nil
}

// --- Test helpers ---

// setOpeningBalance seeds the opening balance of the active (scope, role) account.
func (m *memStore) setOpeningBalance(scope domain.AccountScope, role domain.AccountRole, amount decimal.Decimal) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, acc := range m.accounts {
		if acc.IsActive && acc.Scope == scope && acc.Role == role {
			acc.OpeningBalance = amount
			m.accounts[id] = acc
			return
		}
	}
	panic(fmt.Sprintf("no %s account for %s", role, scope))
}

// balance derives the balance of the active (scope, role) account from every posted entry.
func (m *memStore) balance(scope domain.AccountScope, role domain.AccountRole) decimal.Decimal {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, acc := range m.accounts {
		if acc.IsActive && acc.Scope == scope && acc.Role == role {
			return m.totalsLocked(acc, func(domain.Transaction) bool { return true }).Balance()
		}
	}
	panic(fmt.Sprintf("no %s account for %s", role, scope))
}

func (m *memStore) journalCount(eventType domain.EventType) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, j := range m.journals {
		if j.EventType == eventType {
			n++
		}
	}
	return n
}

// ledgerTotals returns the debit and credit sums over the whole ledger.
func (m *memStore) ledgerTotals() (decimal.Decimal, decimal.Decimal) {
	m.mu.Lock()
	defer m.mu.Unlock()
	debits, credits := decimal.Zero, decimal.Zero
	for _, txn := range m.transactions {
		if txn.TransactionType == domain.Debit {
			debits = debits.Add(txn.Amount)
		} else {
			credits = credits.Add(txn.Amount)
		}
	}
	return debits, credits
}

func (m *memStore) entryCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.transactions)
}

// MockRepaymentNotifier records repayment notifications.
type MockRepaymentNotifier struct {
	mock.Mock
}

func (n *MockRepaymentNotifier) NotifyRepayment(ctx context.Context, event domain.RepaymentReceived) error {
	args := n.Called(ctx, event)
	return args.Error(0)
}
