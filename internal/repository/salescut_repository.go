package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/solterra/operations-service/internal/domain"
)

// SalesCutRepository encapsulates daily-cut persistence. Increment
// operations are single atomic UPDATE statements guarded on the open
// status, so concurrent events never lose counts and a cut closed
// mid-operation simply stops matching.
type SalesCutRepository interface {
	// GetOrCreateOpen fetches the open cut for date, creating it when
	// missing. Idempotent: a concurrent create loses the insert race and
	// reads the winner's row.
	GetOrCreateOpen(ctx context.Context, date time.Time) (*domain.SalesCut, error)
	GetByDate(ctx context.Context, date time.Time) (*domain.SalesCut, error)
	// AddSale atomically folds one sale into the open cut for date.
	// Returns false when no open cut matched.
	AddSale(ctx context.Context, date time.Time, amount float64) (bool, error)
	// AddPayment atomically folds one payment into the open cut for date.
	AddPayment(ctx context.Context, date time.Time, amount float64) (bool, error)
	// Close marks the open cut for date as closed.
	Close(ctx context.Context, date time.Time, at time.Time) (bool, error)
}

type salesCutRepository struct {
	pool *pgxpool.Pool
}

// NewSalesCutRepository instantiates the repository.
func NewSalesCutRepository(pool *pgxpool.Pool) SalesCutRepository {
	return &salesCutRepository{pool: pool}
}

const salesCutColumns = `id, cut_date, status, sales_count, sales_total, payments_count, payments_total, closed_at, created_at, updated_at`

func (r *salesCutRepository) GetOrCreateOpen(ctx context.Context, date time.Time) (*domain.SalesCut, error) {
	const insert = `
        INSERT INTO sales_cuts (cut_date, status)
        VALUES ($1, 'open')
        ON CONFLICT (cut_date) DO NOTHING`
	if _, err := r.pool.Exec(ctx, insert, date); err != nil {
		return nil, err
	}
	return r.GetByDate(ctx, date)
}

func (r *salesCutRepository) GetByDate(ctx context.Context, date time.Time) (*domain.SalesCut, error) {
	query := `SELECT ` + salesCutColumns + ` FROM sales_cuts WHERE cut_date=$1`
	var cut domain.SalesCut
	if err := scanSalesCut(r.pool.QueryRow(ctx, query, date), &cut); err != nil {
		return nil, err
	}
	return &cut, nil
}

func (r *salesCutRepository) AddSale(ctx context.Context, date time.Time, amount float64) (bool, error) {
	const query = `
        UPDATE sales_cuts
        SET sales_count = sales_count + 1, sales_total = sales_total + $1, updated_at = NOW()
        WHERE cut_date = $2 AND status = 'open'`
	cmd, err := r.pool.Exec(ctx, query, amount, date)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *salesCutRepository) AddPayment(ctx context.Context, date time.Time, amount float64) (bool, error) {
	const query = `
        UPDATE sales_cuts
        SET payments_count = payments_count + 1, payments_total = payments_total + $1, updated_at = NOW()
        WHERE cut_date = $2 AND status = 'open'`
	cmd, err := r.pool.Exec(ctx, query, amount, date)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *salesCutRepository) Close(ctx context.Context, date time.Time, at time.Time) (bool, error) {
	const query = `
        UPDATE sales_cuts SET status='closed', closed_at=$1, updated_at=NOW()
        WHERE cut_date=$2 AND status='open'`
	cmd, err := r.pool.Exec(ctx, query, at, date)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func scanSalesCut(row pgx.Row, cut *domain.SalesCut) error {
	return row.Scan(
		&cut.ID,
		&cut.CutDate,
		&cut.Status,
		&cut.SalesCount,
		&cut.SalesTotal,
		&cut.PaymentsCount,
		&cut.PaymentsTotal,
		&cut.ClosedAt,
		&cut.CreatedAt,
		&cut.UpdatedAt,
	)
}
