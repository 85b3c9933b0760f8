package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/solterra/operations-service/internal/domain"
)

// TicketFilter captures listing parameters.
type TicketFilter struct {
	Statuses   []domain.TicketStatus
	Priorities []domain.TicketPriority
	Types      []domain.TicketType
	AssignedTo *string
	OpenedBy   *string
	SearchTerm *string
	OpenedFrom *time.Time
	OpenedTo   *time.Time
	Limit      int
	Offset     int
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	// ListOpenWithSLA returns non-closed tickets carrying an SLA deadline,
	// the working set of the SLA evaluator.
	ListOpenWithSLA(ctx context.Context) ([]domain.Ticket, error)
	// ListStaleCriticalUnassigned returns open, unassigned, critical tickets
	// opened at or before cutoff, oldest first (ties broken by id).
	ListStaleCriticalUnassigned(ctx context.Context, cutoff time.Time) ([]domain.Ticket, error)
	// Escalate moves a ticket to escalado unless it is already escalated or
	// closed. Returns false when the guard did not match (idempotent re-run).
	Escalate(ctx context.Context, id string, at time.Time) (bool, error)
	// AssignIfUnassigned sets the assignee only while the ticket is still
	// open and unassigned. Returns false when a concurrent run won.
	AssignIfUnassigned(ctx context.Context, id, agentID string) (bool, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates the repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `id, external_key, ticket_type, priority, status, title, description,
	       assigned_to, opened_by, closed_by, opened_at, sla_due_at, escalated_at, closed_at, updated_at`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (external_key, ticket_type, priority, status, title, description, assigned_to, opened_by, opened_at, sla_due_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        RETURNING id, updated_at`
	return r.pool.QueryRow(ctx, query,
		ticket.ExternalKey,
		ticket.Type,
		ticket.Priority,
		ticket.Status,
		ticket.Title,
		ticket.Description,
		ticket.AssignedTo,
		ticket.OpenedBy,
		ticket.OpenedAt,
		ticket.SLADueAt,
	).Scan(&ticket.ID, &ticket.UpdatedAt)
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET priority=$1, status=$2, title=$3, description=$4, assigned_to=$5,
            closed_by=$6, escalated_at=$7, closed_at=$8, updated_at=NOW()
        WHERE id=$9`
	cmd, err := r.pool.Exec(ctx, query,
		ticket.Priority,
		ticket.Status,
		ticket.Title,
		ticket.Description,
		ticket.AssignedTo,
		ticket.ClosedBy,
		ticket.EscalatedAt,
		ticket.ClosedAt,
		ticket.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE id=$1`, ticketColumns)
	var ticket domain.Ticket
	if err := scanTicket(r.pool.QueryRow(ctx, query, id), &ticket); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) ListOpenWithSLA(ctx context.Context) ([]domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets
	     WHERE status <> 'cerrado' AND sla_due_at IS NOT NULL
	     ORDER BY sla_due_at ASC`, ticketColumns)
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) ListStaleCriticalUnassigned(ctx context.Context, cutoff time.Time) ([]domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets
	     WHERE priority='critica' AND status='abierto' AND assigned_to IS NULL AND opened_at <= $1
	     ORDER BY opened_at ASC, id ASC`, ticketColumns)
	rows, err := r.pool.Query(ctx, query, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) Escalate(ctx context.Context, id string, at time.Time) (bool, error) {
	const query = `
        UPDATE tickets SET status='escalado', escalated_at=$1, updated_at=NOW()
        WHERE id=$2 AND status NOT IN ('escalado','cerrado')`
	cmd, err := r.pool.Exec(ctx, query, at, id)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *ticketRepository) AssignIfUnassigned(ctx context.Context, id, agentID string) (bool, error) {
	const query = `
        UPDATE tickets SET assigned_to=$1, updated_at=NOW()
        WHERE id=$2 AND assigned_to IS NULL AND status='abierto'`
	cmd, err := r.pool.Exec(ctx, query, agentID, id)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *ticketRepository) ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	base := fmt.Sprintf(`SELECT %s FROM tickets`, ticketColumns)
	clauses := []string{"1=1"}
	args := []any{}

	if filter.AssignedTo != nil {
		args = append(args, *filter.AssignedTo)
		clauses = append(clauses, fmt.Sprintf("assigned_to=$%d", len(args)))
	}
	if filter.OpenedBy != nil {
		args = append(args, *filter.OpenedBy)
		clauses = append(clauses, fmt.Sprintf("opened_by=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Priorities) > 0 {
		placeholders := make([]string, len(filter.Priorities))
		for i, pr := range filter.Priorities {
			args = append(args, pr)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("priority IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Types) > 0 {
		placeholders := make([]string, len(filter.Types))
		for i, tt := range filter.Types {
			args = append(args, tt)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("ticket_type IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.OpenedFrom != nil {
		args = append(args, *filter.OpenedFrom)
		clauses = append(clauses, fmt.Sprintf("opened_at >= $%d", len(args)))
	}
	if filter.OpenedTo != nil {
		args = append(args, *filter.OpenedTo)
		clauses = append(clauses, fmt.Sprintf("opened_at <= $%d", len(args)))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.SearchTerm)) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(LOWER(title) LIKE %s OR LOWER(description) LIKE %s)", placeholder, placeholder))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY opened_at DESC LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func scanTicket(row pgx.Row, ticket *domain.Ticket) error {
	return row.Scan(
		&ticket.ID,
		&ticket.ExternalKey,
		&ticket.Type,
		&ticket.Priority,
		&ticket.Status,
		&ticket.Title,
		&ticket.Description,
		&ticket.AssignedTo,
		&ticket.OpenedBy,
		&ticket.ClosedBy,
		&ticket.OpenedAt,
		&ticket.SLADueAt,
		&ticket.EscalatedAt,
		&ticket.ClosedAt,
		&ticket.UpdatedAt,
	)
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := scanTicket(rows, &ticket); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}
