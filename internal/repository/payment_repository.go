package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/solterra/operations-service/internal/domain"
)

// PaymentRepository encapsulates payment persistence.
type PaymentRepository interface {
	Create(ctx context.Context, payment *domain.Payment) error
	ListByContract(ctx context.Context, contractID string) ([]domain.Payment, error)
}

type paymentRepository struct {
	pool *pgxpool.Pool
}

// NewPaymentRepository instantiates the repository.
func NewPaymentRepository(pool *pgxpool.Pool) PaymentRepository {
	return &paymentRepository{pool: pool}
}

func (r *paymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	const query = `
        INSERT INTO payments (payment_schedule_id, contract_id, contract_status, amount, method, received_by, received_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		payment.PaymentScheduleID,
		payment.ContractID,
		payment.ContractStatus,
		payment.Amount,
		payment.Method,
		payment.ReceivedBy,
		payment.ReceivedAt,
	).Scan(&payment.ID, &payment.CreatedAt)
}

func (r *paymentRepository) ListByContract(ctx context.Context, contractID string) ([]domain.Payment, error) {
	const query = `
        SELECT id, payment_schedule_id, contract_id, contract_status, amount, method, received_by, received_at, created_at
        FROM payments WHERE contract_id=$1 ORDER BY received_at ASC`
	rows, err := r.pool.Query(ctx, query, contractID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []domain.Payment
	for rows.Next() {
		var p domain.Payment
		if err := rows.Scan(
			&p.ID,
			&p.PaymentScheduleID,
			&p.ContractID,
			&p.ContractStatus,
			&p.Amount,
			&p.Method,
			&p.ReceivedBy,
			&p.ReceivedAt,
			&p.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}
