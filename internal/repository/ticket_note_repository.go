package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/solterra/operations-service/internal/domain"
)

// TicketNoteRepository encapsulates audit-note persistence.
type TicketNoteRepository interface {
	Create(ctx context.Context, note *domain.TicketNote) error
	ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketNote, error)
}

type ticketNoteRepository struct {
	pool *pgxpool.Pool
}

// NewTicketNoteRepository instantiates the repository.
func NewTicketNoteRepository(pool *pgxpool.Pool) TicketNoteRepository {
	return &ticketNoteRepository{pool: pool}
}

func (r *ticketNoteRepository) Create(ctx context.Context, note *domain.TicketNote) error {
	const query = `
        INSERT INTO ticket_notes (ticket_id, kind, author_id, body)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		note.TicketID,
		note.Kind,
		note.AuthorID,
		note.Body,
	).Scan(&note.ID, &note.CreatedAt)
}

func (r *ticketNoteRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketNote, error) {
	const query = `
        SELECT id, ticket_id, kind, author_id, body, created_at
        FROM ticket_notes WHERE ticket_id=$1 ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []domain.TicketNote
	for rows.Next() {
		var note domain.TicketNote
		if err := rows.Scan(
			&note.ID,
			&note.TicketID,
			&note.Kind,
			&note.AuthorID,
			&note.Body,
			&note.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, note)
	}
	return result, rows.Err()
}
