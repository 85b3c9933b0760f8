package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/solterra/operations-service/internal/domain"
	"github.com/solterra/operations-service/internal/events"
	"github.com/solterra/operations-service/internal/repository"
	apperrors "github.com/solterra/operations-service/pkg/util"
)

const escalationNote = "SLA vencido - Escalación automática"

// fallbackRecipient receives SLA alerts for tickets with no assignee.
const fallbackRecipient = "mesa-de-servicio"

// EvaluationReport summarizes one SLA scan for observability.
type EvaluationReport struct {
	Scanned    int `json:"scanned"`
	OK         int `json:"ok"`
	NearExpiry int `json:"near_expiry"`
	Expired    int `json:"expired"`
	Escalated  int `json:"escalated"`
	Failures   int `json:"failures"`
}

// SLAService scans open tickets against their SLA deadlines, notifies on
// near-expiry and expiry, and optionally auto-escalates overdue tickets.
type SLAService struct {
	tickets    repository.TicketRepository
	notes      repository.TicketNoteRepository
	notifier   Notifier
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// SLADependencies bundles collaborators for the evaluator.
type SLADependencies struct {
	TicketRepo repository.TicketRepository
	NoteRepo   repository.TicketNoteRepository
	Notifier   Notifier
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	Clock      func() time.Time
}

// NewSLAService constructs the evaluator.
func NewSLAService(deps SLADependencies) *SLAService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &SLAService{
		tickets:    deps.TicketRepo,
		notes:      deps.NoteRepo,
		notifier:   deps.Notifier,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		now:        clock,
	}
}

// Evaluate classifies every non-closed ticket with an SLA deadline as ok,
// near-expiry or expired. A ticket exactly at the warning boundary counts as
// near-expiry. Notification and escalation failures are isolated per ticket;
// the scan always runs to completion.
func (s *SLAService) Evaluate(ctx context.Context, hoursThreshold int, autoEscalate bool) (EvaluationReport, error) {
	var report EvaluationReport
	if hoursThreshold <= 0 {
		return report, apperrors.NewValidationError("hours threshold must be positive", map[string]any{"hours_threshold": hoursThreshold})
	}

	tickets, err := s.tickets.ListOpenWithSLA(ctx)
	if err != nil {
		return report, apperrors.MapError(err)
	}

	now := s.now()
	window := time.Duration(hoursThreshold) * time.Hour

	for i := range tickets {
		ticket := &tickets[i]
		if ticket.SLADueAt == nil {
			continue
		}
		report.Scanned++
		due := *ticket.SLADueAt

		switch {
		case now.After(due):
			report.Expired++
			s.handleExpired(ctx, ticket, now, autoEscalate, &report)
		case due.Sub(now) <= window:
			report.NearExpiry++
			remaining := due.Sub(now).Hours()
			if err := s.send(ctx, ticket, NotificationSLAPorVencer, map[string]any{
				"ticket_id":       ticket.ID,
				"remaining_hours": remaining,
			}); err != nil {
				report.Failures++
				s.logger.Warn("near-expiry notification failed", zap.String("ticket_id", ticket.ID), zap.Error(err))
			}
		default:
			report.OK++
		}
	}

	s.logger.Info("sla evaluation finished",
		zap.Int("scanned", report.Scanned),
		zap.Int("near_expiry", report.NearExpiry),
		zap.Int("expired", report.Expired),
		zap.Int("escalated", report.Escalated),
		zap.Int("failures", report.Failures))
	return report, nil
}

func (s *SLAService) handleExpired(ctx context.Context, ticket *domain.Ticket, now time.Time, autoEscalate bool, report *EvaluationReport) {
	overdue := now.Sub(*ticket.SLADueAt).Hours()
	if err := s.send(ctx, ticket, NotificationSLAVencido, map[string]any{
		"ticket_id":     ticket.ID,
		"overdue_hours": overdue,
	}); err != nil {
		report.Failures++
		s.logger.Warn("expiry notification failed", zap.String("ticket_id", ticket.ID), zap.Error(err))
	}

	if !autoEscalate || ticket.Status == domain.TicketStatusEscalado || ticket.Status == domain.TicketStatusCerrado {
		return
	}

	escalated, err := s.tickets.Escalate(ctx, ticket.ID, now)
	if err != nil {
		report.Failures++
		s.logger.Error("escalation write failed", zap.String("ticket_id", ticket.ID), zap.Error(err))
		return
	}
	if !escalated {
		// A concurrent run already escalated or closed this ticket.
		return
	}
	report.Escalated++

	if err := s.notes.Create(ctx, &domain.TicketNote{
		TicketID: ticket.ID,
		Kind:     domain.NoteKindEscalacion,
		Body:     escalationNote,
	}); err != nil {
		report.Failures++
		s.logger.Warn("escalation note failed", zap.String("ticket_id", ticket.ID), zap.Error(err))
	}

	s.publishEscalated(ctx, ticket, overdue)
}

func (s *SLAService) send(ctx context.Context, ticket *domain.Ticket, kind NotificationKind, payload map[string]any) error {
	if s.notifier == nil {
		return nil
	}
	recipient := fallbackRecipient
	if ticket.AssignedTo != nil {
		recipient = *ticket.AssignedTo
	}
	return s.notifier.Send(ctx, recipient, kind, payload)
}

func (s *SLAService) publishEscalated(ctx context.Context, ticket *domain.Ticket, overdueHours float64) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventTicketEscalated,
		EntityID:  ticket.ID,
		Actor:     events.Actor{Type: domain.SubjectTypeSystem},
		Timestamp: s.now(),
		Payload: events.TicketEscalatedPayload{
			Reason:     fmt.Sprintf("SLA vencido hace %.1f horas", overdueHours),
			OverdueHrs: overdueHours,
			PrevStatus: ticket.Status,
		},
	})
}
