package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/solterra/operations-service/internal/domain"
)

// ContractRepository encapsulates sales-contract persistence.
type ContractRepository interface {
	Create(ctx context.Context, contract *domain.Contract) error
	GetByID(ctx context.Context, id string) (*domain.Contract, error)
	UpdateStatus(ctx context.Context, id string, status domain.ContractStatus) error
}

type contractRepository struct {
	pool *pgxpool.Pool
}

// NewContractRepository instantiates the repository.
func NewContractRepository(pool *pgxpool.Pool) ContractRepository {
	return &contractRepository{pool: pool}
}

func (r *contractRepository) Create(ctx context.Context, contract *domain.Contract) error {
	const query = `
        INSERT INTO contracts (lot_id, client_id, status, total_price, created_by)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		contract.LotID,
		contract.ClientID,
		contract.Status,
		contract.TotalPrice,
		contract.CreatedBy,
	).Scan(&contract.ID, &contract.CreatedAt, &contract.UpdatedAt)
}

func (r *contractRepository) GetByID(ctx context.Context, id string) (*domain.Contract, error) {
	const query = `
        SELECT id, lot_id, client_id, status, total_price, created_by, created_at, updated_at
        FROM contracts WHERE id=$1`
	var contract domain.Contract
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&contract.ID,
		&contract.LotID,
		&contract.ClientID,
		&contract.Status,
		&contract.TotalPrice,
		&contract.CreatedBy,
		&contract.CreatedAt,
		&contract.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &contract, nil
}

func (r *contractRepository) UpdateStatus(ctx context.Context, id string, status domain.ContractStatus) error {
	const query = `UPDATE contracts SET status=$1, updated_at=NOW() WHERE id=$2`
	cmd, err := r.pool.Exec(ctx, query, status, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
