package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/solterra/operations-service/internal/domain"
	"github.com/solterra/operations-service/internal/events"
	"github.com/solterra/operations-service/internal/repository"
	apperrors "github.com/solterra/operations-service/pkg/util"
)

// slaWindows maps ticket priority to the SLA resolution window set at
// creation. The deadline is never retroactively extended afterwards.
var slaWindows = map[domain.TicketPriority]time.Duration{
	domain.TicketPriorityCritica: 4 * time.Hour,
	domain.TicketPriorityAlta:    24 * time.Hour,
	domain.TicketPriorityMedia:   48 * time.Hour,
	domain.TicketPriorityBaja:    72 * time.Hour,
}

// TicketService coordinates ticket intake and lifecycle transitions.
type TicketService struct {
	tickets    repository.TicketRepository
	agents     repository.AgentRepository
	notes      repository.TicketNoteRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// TicketDependencies bundles repositories for the ticket service.
type TicketDependencies struct {
	TicketRepo repository.TicketRepository
	AgentRepo  repository.AgentRepository
	NoteRepo   repository.TicketNoteRepository
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	Clock      func() time.Time
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Type        domain.TicketType
	Priority    domain.TicketPriority
	Title       string
	Description string
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &TicketService{
		tickets:    deps.TicketRepo,
		agents:     deps.AgentRepo,
		notes:      deps.NoteRepo,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		now:        clock,
	}
}

// CreateTicket opens a ticket and stamps its SLA deadline from the priority.
func (s *TicketService) CreateTicket(ctx context.Context, openedBy string, input TicketCreateInput) (*domain.Ticket, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, apperrors.NewValidationError("title required", nil)
	}
	if !domain.ValidTicketType(input.Type) {
		return nil, apperrors.NewValidationError("unknown ticket type", map[string]any{"type": input.Type})
	}
	if !domain.ValidPriority(input.Priority) {
		return nil, apperrors.NewValidationError("unknown priority", map[string]any{"priority": input.Priority})
	}

	now := s.now()
	due := now.Add(slaWindows[input.Priority])
	ticket := &domain.Ticket{
		ExternalKey: fmt.Sprintf("SRV-%s", strings.ToUpper(uuid.NewString()[:8])),
		Type:        input.Type,
		Priority:    input.Priority,
		Status:      domain.TicketStatusAbierto,
		Title:       input.Title,
		Description: input.Description,
		OpenedBy:    openedBy,
		OpenedAt:    now,
		SLADueAt:    &due,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, events.EventTicketCreated, ticket.ID, &openedBy, events.TicketCreatedPayload{
		Type:     ticket.Type,
		Priority: ticket.Priority,
		Title:    ticket.Title,
		SLADueAt: ticket.SLADueAt,
	})
	return ticket, nil
}

// GetTicket returns a ticket with its audit notes.
func (s *TicketService) GetTicket(ctx context.Context, id string) (*domain.Ticket, []domain.TicketNote, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": id})
		}
		return nil, nil, apperrors.MapError(err)
	}
	notes, err := s.notes.ListByTicket(ctx, id)
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}
	return ticket, notes, nil
}

// ListTickets lists tickets with filters.
func (s *TicketService) ListTickets(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	tickets, err := s.tickets.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// ChangeStatus transitions a ticket, enforcing the lifecycle table. Closing
// records who closed it; moving to en_progreso requires an assignee so no
// in-flight ticket is ever unowned.
func (s *TicketService) ChangeStatus(ctx context.Context, actorID, ticketID string, to domain.TicketStatus, comment string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}

	from := ticket.Status
	if from == to {
		return ticket, nil
	}
	if !domain.CanTransition(from, to) {
		return nil, apperrors.NewConflict("invalid status transition", map[string]any{
			"from": from,
			"to":   to,
		})
	}
	if to == domain.TicketStatusEnProgreso && ticket.AssignedTo == nil {
		return nil, apperrors.NewConflict("ticket must be assigned before starting work", nil)
	}

	now := s.now()
	ticket.Status = to
	switch to {
	case domain.TicketStatusCerrado:
		ticket.ClosedBy = &actorID
		ticket.ClosedAt = &now
	case domain.TicketStatusReabierto:
		ticket.ClosedBy = nil
		ticket.ClosedAt = nil
	case domain.TicketStatusEscalado:
		ticket.EscalatedAt = &now
	}

	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := s.notes.Create(ctx, &domain.TicketNote{
		TicketID: ticket.ID,
		Kind:     domain.NoteKindEstado,
		AuthorID: &actorID,
		Body:     fmt.Sprintf("Estado: %s → %s", from, to),
	}); err != nil {
		s.logger.Warn("status note failed", zap.String("ticket_id", ticket.ID), zap.Error(err))
	}

	s.publish(ctx, events.EventTicketStatusChanged, ticket.ID, &actorID, events.TicketStatusChangedPayload{
		OldStatus: from,
		NewStatus: to,
		Comment:   comment,
	})
	return ticket, nil
}

// AssignTicket assigns a ticket to an active agent.
func (s *TicketService) AssignTicket(ctx context.Context, actorID, ticketID, agentID string) (*domain.Ticket, error) {
	agent, err := s.agents.GetByID(ctx, agentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("agent", map[string]any{"agent_id": agentID})
		}
		return nil, apperrors.MapError(err)
	}
	if !agent.Active {
		return nil, apperrors.NewConflict("agent inactive", map[string]any{"agent_id": agentID})
	}

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	if ticket.Status == domain.TicketStatusCerrado {
		return nil, apperrors.NewConflict("cannot assign a closed ticket", nil)
	}

	ticket.AssignedTo = &agent.ID
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := s.notes.Create(ctx, &domain.TicketNote{
		TicketID: ticket.ID,
		Kind:     domain.NoteKindAsignacion,
		AuthorID: &actorID,
		Body:     fmt.Sprintf("Asignado a %s", agent.Name),
	}); err != nil {
		s.logger.Warn("assignment note failed", zap.String("ticket_id", ticket.ID), zap.Error(err))
	}

	s.publish(ctx, events.EventTicketAssigned, ticket.ID, &actorID, events.TicketAssignedPayload{
		AssignedTo: ticket.AssignedTo,
		Automatic:  false,
	})
	return ticket, nil
}

// UnassignTicket clears the assignee of an open ticket.
func (s *TicketService) UnassignTicket(ctx context.Context, actorID, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	if ticket.AssignedTo == nil {
		return ticket, nil
	}
	if ticket.Status == domain.TicketStatusCerrado {
		return nil, apperrors.NewConflict("cannot unassign a closed ticket", nil)
	}
	if ticket.Status == domain.TicketStatusEnProgreso {
		return nil, apperrors.NewConflict("ticket in progress must keep an assignee", nil)
	}

	ticket.AssignedTo = nil
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := s.notes.Create(ctx, &domain.TicketNote{
		TicketID: ticket.ID,
		Kind:     domain.NoteKindAsignacion,
		AuthorID: &actorID,
		Body:     "Asignación retirada",
	}); err != nil {
		s.logger.Warn("unassignment note failed", zap.String("ticket_id", ticket.ID), zap.Error(err))
	}

	s.publish(ctx, events.EventTicketAssigned, ticket.ID, &actorID, events.TicketAssignedPayload{
		AssignedTo: nil,
		Automatic:  false,
	})
	return ticket, nil
}

// AddNote appends a comment note to a ticket.
func (s *TicketService) AddNote(ctx context.Context, actorID, ticketID, body string) (*domain.TicketNote, error) {
	if strings.TrimSpace(body) == "" {
		return nil, apperrors.NewValidationError("body required", nil)
	}
	if _, err := s.tickets.GetByID(ctx, ticketID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	note := &domain.TicketNote{
		TicketID: ticketID,
		Kind:     domain.NoteKindComentario,
		AuthorID: &actorID,
		Body:     body,
	}
	if err := s.notes.Create(ctx, note); err != nil {
		return nil, apperrors.MapError(err)
	}
	return note, nil
}

func (s *TicketService) publish(ctx context.Context, eventType events.EventType, ticketID string, actorID *string, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		EntityID:  ticketID,
		Actor:     events.Actor{Type: domain.SubjectTypeAgent, AgentID: actorID},
		Timestamp: s.now(),
		Payload:   payload,
	})
}
