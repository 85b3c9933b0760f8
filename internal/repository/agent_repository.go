package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/solterra/operations-service/internal/domain"
)

// AgentRepository encapsulates agent persistence.
type AgentRepository interface {
	Create(ctx context.Context, agent *domain.Agent) error
	GetByID(ctx context.Context, id string) (*domain.Agent, error)
	GetByEmail(ctx context.Context, email string) (*domain.Agent, error)
	List(ctx context.Context, activeOnly bool) ([]domain.Agent, error)
	// ListIdleActive returns active agents with zero open tickets assigned,
	// ordered by id so assignment picks are deterministic.
	ListIdleActive(ctx context.Context) ([]domain.Agent, error)
}

type agentRepository struct {
	pool *pgxpool.Pool
}

// NewAgentRepository instantiates the repository.
func NewAgentRepository(pool *pgxpool.Pool) AgentRepository {
	return &agentRepository{pool: pool}
}

const agentColumns = `id, name, email, password_hash, role, active, created_at, updated_at`

func (r *agentRepository) Create(ctx context.Context, agent *domain.Agent) error {
	const query = `
        INSERT INTO agents (name, email, password_hash, role, active)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		agent.Name,
		agent.Email,
		agent.PasswordHash,
		agent.Role,
		agent.Active,
	).Scan(&agent.ID, &agent.CreatedAt, &agent.UpdatedAt)
}

func (r *agentRepository) GetByID(ctx context.Context, id string) (*domain.Agent, error) {
	return r.fetchSingle(ctx, `SELECT `+agentColumns+` FROM agents WHERE id=$1`, id)
}

func (r *agentRepository) GetByEmail(ctx context.Context, email string) (*domain.Agent, error) {
	return r.fetchSingle(ctx, `SELECT `+agentColumns+` FROM agents WHERE email=$1`, email)
}

func (r *agentRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Agent, error) {
	var agent domain.Agent
	if err := scanAgent(r.pool.QueryRow(ctx, query, arg), &agent); err != nil {
		return nil, err
	}
	return &agent, nil
}

func (r *agentRepository) List(ctx context.Context, activeOnly bool) ([]domain.Agent, error) {
	query := `SELECT ` + agentColumns + ` FROM agents`
	if activeOnly {
		query += ` WHERE active`
	}
	query += ` ORDER BY id ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAgents(rows)
}

func (r *agentRepository) ListIdleActive(ctx context.Context) ([]domain.Agent, error) {
	const query = `
        SELECT ` + agentColumns + `
        FROM agents a
        WHERE a.active
          AND NOT EXISTS (
              SELECT 1 FROM tickets t
              WHERE t.assigned_to = a.id AND t.status = 'abierto')
        ORDER BY a.id ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAgents(rows)
}

func scanAgent(row pgx.Row, agent *domain.Agent) error {
	return row.Scan(
		&agent.ID,
		&agent.Name,
		&agent.Email,
		&agent.PasswordHash,
		&agent.Role,
		&agent.Active,
		&agent.CreatedAt,
		&agent.UpdatedAt,
	)
}

func scanAgents(rows pgx.Rows) ([]domain.Agent, error) {
	var result []domain.Agent
	for rows.Next() {
		var agent domain.Agent
		if err := scanAgent(rows, &agent); err != nil {
			return nil, err
		}
		result = append(result, agent)
	}
	return result, rows.Err()
}
