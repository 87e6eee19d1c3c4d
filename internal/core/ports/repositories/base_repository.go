package repositories

import (
	"context"
)

// TransactionManager runs units of work atomically.
type TransactionManager interface {
	// WithinTransaction runs fn inside a database transaction carried by the context passed to fn.
	// Repositories called with that context join the transaction. A call made while a transaction
	// is already active joins it instead of starting a new one. Any error rolls everything back.
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
