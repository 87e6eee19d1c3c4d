package pgsql

import (
	"context"
	"errors"

	"github.com/SscSPs/sacco_ledger/internal/apperrors"
	"github.com/SscSPs/sacco_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/sacco_ledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxProductRepository struct {
	BaseRepository
}

// newPgxProductRepository creates a new repository for loan products.
func newPgxProductRepository(pool *pgxpool.Pool) portsrepo.LoanProductRepository {
	return &PgxProductRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.LoanProductRepository = (*PgxProductRepository)(nil)

// SaveProduct inserts the product and its charges in one batch.
func (r *PgxProductRepository) SaveProduct(ctx context.Context, product domain.LoanProduct) error {
	batch := &pgx.Batch{}
	batch.Queue(`
		INSERT INTO loan_products (
			product_id, name, interest_rate, max_duration, is_active,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		product.ProductID, product.Name, product.InterestRate, product.MaxDuration, product.IsActive,
		product.CreatedAt, product.CreatedBy, product.LastUpdatedAt, product.LastUpdatedBy,
	)
	for i, charge := range product.Charges {
		batch.Queue(`
			INSERT INTO loan_product_charges (product_id, position, name, charge_type, value)
			VALUES ($1, $2, $3, $4, $5)`,
			product.ProductID, i, charge.Name, string(charge.ChargeType), charge.Value,
		)
	}

	// A batch sent outside a transaction still runs as one implicit transaction
	br := r.DB(ctx).SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return mapWriteError(err, "save loan product "+product.Name)
	}
	return nil
}

func (r *PgxProductRepository) FindProductByID(ctx context.Context, productID string) (*domain.LoanProduct, error) {
	products, err := r.listProducts(ctx, "WHERE p.product_id = $1", productID)
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, apperrors.ErrNotFound
	}
	return &products[0], nil
}

func (r *PgxProductRepository) ListProducts(ctx context.Context) ([]domain.LoanProduct, error) {
	return r.listProducts(ctx, "")
}

func (r *PgxProductRepository) listProducts(ctx context.Context, filter string, args ...any) ([]domain.LoanProduct, error) {
	query := `
		SELECT p.product_id, p.name, p.interest_rate, p.max_duration, p.is_active,
		       p.created_at, p.created_by, p.last_updated_at, p.last_updated_by
		FROM loan_products p
	` + filter + " ORDER BY p.name"
	rows, err := r.DB(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query loan products", err)
	}
	defer rows.Close()

	products := []domain.LoanProduct{}
	index := map[string]int{}
	for rows.Next() {
		var p domain.LoanProduct
		if err := rows.Scan(
			&p.ProductID, &p.Name, &p.InterestRate, &p.MaxDuration, &p.IsActive,
			&p.CreatedAt, &p.CreatedBy, &p.LastUpdatedAt, &p.LastUpdatedBy,
		); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan loan product row", err)
		}
		p.Charges = []domain.LoanCharge{}
		index[p.ProductID] = len(products)
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating loan product rows", err)
	}
	if len(products) == 0 {
		return products, nil
	}

	ids := make([]string, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.ProductID)
	}
	chargeRows, err := r.DB(ctx).Query(ctx, `
		SELECT product_id, name, charge_type, value
		FROM loan_product_charges
		WHERE product_id = ANY($1)
		ORDER BY product_id, position`, ids)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query loan product charges", err)
	}
	defer chargeRows.Close()

	for chargeRows.Next() {
		var productID, chargeType string
		var c domain.LoanCharge
		if err := chargeRows.Scan(&productID, &c.Name, &chargeType, &c.Value); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan loan product charge", err)
		}
		c.ChargeType = domain.ChargeType(chargeType)
		i, ok := index[productID]
		if !ok {
			return nil, apperrors.NewAppError(500, "charge for unknown product "+productID, errors.New("inconsistent product charges"))
		}
		products[i].Charges = append(products[i].Charges, c)
	}
	if err := chargeRows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating loan product charges", err)
	}
	return products, nil
}
