package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/solterra/operations-service/internal/domain"
	"github.com/solterra/operations-service/internal/events"
	"github.com/solterra/operations-service/internal/repository"
	apperrors "github.com/solterra/operations-service/pkg/util"
)

// AssignmentReport summarizes one auto-assignment pass.
type AssignmentReport struct {
	Scanned      int      `json:"scanned"`
	Assigned     int      `json:"assigned"`
	Unassignable int      `json:"unassignable"`
	Skipped      int      `json:"skipped"`
	Failures     int      `json:"failures"`
	AssignedIDs  []string `json:"assigned_ids,omitempty"`
}

// AssignmentService assigns stale critical tickets to idle agents.
type AssignmentService struct {
	tickets    repository.TicketRepository
	agents     repository.AgentRepository
	notes      repository.TicketNoteRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// AssignmentDependencies bundles collaborators for the engine.
type AssignmentDependencies struct {
	TicketRepo repository.TicketRepository
	AgentRepo  repository.AgentRepository
	NoteRepo   repository.TicketNoteRepository
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	Clock      func() time.Time
}

// NewAssignmentService constructs the engine.
func NewAssignmentService(deps AssignmentDependencies) *AssignmentService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &AssignmentService{
		tickets:    deps.TicketRepo,
		agents:     deps.AgentRepo,
		notes:      deps.NoteRepo,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		now:        clock,
	}
}

// RunOnce assigns every open, unassigned, critical ticket older than
// staleAfter to an idle active agent, oldest ticket first. The idle set is
// computed once per run and each agent receives at most one ticket, so a
// single pass never piles two critical tickets onto the same agent. Tickets
// with no agent left are reported as unassignable, not failed. Assignments
// persist independently; a partial run leaves earlier assignments intact.
func (s *AssignmentService) RunOnce(ctx context.Context, staleAfter time.Duration) (AssignmentReport, error) {
	var report AssignmentReport
	if staleAfter <= 0 {
		return report, apperrors.NewValidationError("staleness threshold must be positive", nil)
	}

	cutoff := s.now().Add(-staleAfter)
	tickets, err := s.tickets.ListStaleCriticalUnassigned(ctx, cutoff)
	if err != nil {
		return report, apperrors.MapError(err)
	}
	report.Scanned = len(tickets)
	if len(tickets) == 0 {
		return report, nil
	}

	idle, err := s.agents.ListIdleActive(ctx)
	if err != nil {
		return report, apperrors.MapError(err)
	}

	next := 0
	for i := range tickets {
		ticket := &tickets[i]
		if next >= len(idle) {
			report.Unassignable++
			s.logger.Info("no idle agent for critical ticket", zap.String("ticket_id", ticket.ID))
			continue
		}
		agent := idle[next]

		assigned, err := s.tickets.AssignIfUnassigned(ctx, ticket.ID, agent.ID)
		if err != nil {
			report.Failures++
			s.logger.Error("assignment write failed",
				zap.String("ticket_id", ticket.ID),
				zap.String("agent_id", agent.ID),
				zap.Error(err))
			continue
		}
		if !assigned {
			// Concurrent run or manual assignment got there first; the
			// agent stays available for the next ticket.
			report.Skipped++
			continue
		}

		next++
		report.Assigned++
		report.AssignedIDs = append(report.AssignedIDs, ticket.ID)

		if err := s.notes.Create(ctx, &domain.TicketNote{
			TicketID: ticket.ID,
			Kind:     domain.NoteKindAsignacion,
			Body:     "Asignación automática por antigüedad",
		}); err != nil {
			report.Failures++
			s.logger.Warn("assignment note failed", zap.String("ticket_id", ticket.ID), zap.Error(err))
		}
		s.publishAssigned(ctx, ticket.ID, agent.ID)
	}

	s.logger.Info("auto-assignment finished",
		zap.Int("scanned", report.Scanned),
		zap.Int("assigned", report.Assigned),
		zap.Int("unassignable", report.Unassignable),
		zap.Int("skipped", report.Skipped),
		zap.Int("failures", report.Failures))
	return report, nil
}

func (s *AssignmentService) publishAssigned(ctx context.Context, ticketID, agentID string) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventTicketAssigned,
		EntityID:  ticketID,
		Actor:     events.Actor{Type: domain.SubjectTypeSystem},
		Timestamp: s.now(),
		Payload: events.TicketAssignedPayload{
			AssignedTo: &agentID,
			Automatic:  true,
		},
	})
}
