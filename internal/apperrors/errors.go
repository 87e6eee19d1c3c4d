package apperrors

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrConflict indicates the resource is in a state that does not allow the operation.
var ErrConflict = errors.New("conflict")

// ErrForbidden indicates the caller may not perform the operation.
var ErrForbidden = errors.New("forbidden")

// ErrInternal indicates an unexpected failure.
var ErrInternal = errors.New("internal error")

// Configuration errors. Never retried automatically; an operator has to fix the chart of accounts.
var (
	ErrAccountNotConfigured = errors.New("account not configured")
)

// Funds errors are expected business outcomes and are returned wrapped in a FundsError.
var (
	ErrInsufficientGroupFunds        = errors.New("insufficient group funds")
	ErrInsufficientOrganizationFunds = errors.New("insufficient organization funds")
	ErrInsufficientSavings           = errors.New("insufficient savings balance")
)

// ErrLedgerImbalance means a posting would have broken debits == credits.
var ErrLedgerImbalance = errors.New("ledger imbalance")

// Settlement validation errors, raised before any ledger write.
var (
	ErrInvalidPaymentAmount = errors.New("invalid payment amount")
	ErrAmountExceedsApplied = errors.New("approved amount exceeds applied amount")
	ErrLoanAlreadySettled   = errors.New("loan already settled")
	ErrInvalidLoanState     = errors.New("invalid loan state")
)

// AppError carries an HTTP-ish status code alongside the wrapped cause.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// FundsError reports how far short an account was for a funds-gated operation.
type FundsError struct {
	Kind      error
	AccountID string
	Available decimal.Decimal
	Required  decimal.Decimal
}

// NewFundsError builds a FundsError of the given kind (one of the ErrInsufficient* sentinels).
func NewFundsError(kind error, accountID string, available, required decimal.Decimal) *FundsError {
	return &FundsError{Kind: kind, AccountID: accountID, Available: available, Required: required}
}

// Shortfall is the amount missing to satisfy the request.
func (e *FundsError) Shortfall() decimal.Decimal {
	return e.Required.Sub(e.Available)
}

func (e *FundsError) Error() string {
	return fmt.Sprintf("%v: available %s, required %s, shortfall %s",
		e.Kind, e.Available.StringFixed(2), e.Required.StringFixed(2), e.Shortfall().StringFixed(2))
}

func (e *FundsError) Unwrap() error {
	return e.Kind
}
