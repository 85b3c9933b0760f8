package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solterra/operations-service/internal/domain"
	"github.com/solterra/operations-service/internal/events"
)

func newSLAFixture(now time.Time) (*SLAService, *fakeTicketRepo, *fakeNoteRepo, *fakeNotifier, *recordingDispatcher) {
	tickets := newFakeTicketRepo()
	notes := &fakeNoteRepo{}
	notifier := newFakeNotifier()
	dispatcher := &recordingDispatcher{}
	svc := NewSLAService(SLADependencies{
		TicketRepo: tickets,
		NoteRepo:   notes,
		Notifier:   notifier,
		Dispatcher: dispatcher,
		Clock:      fixedClock(now),
	})
	return svc, tickets, notes, notifier, dispatcher
}

func openTicketDue(tickets *fakeTicketRepo, id string, due time.Time) {
	t := &domain.Ticket{
		ID:       id,
		Status:   domain.TicketStatusAbierto,
		Priority: domain.TicketPriorityMedia,
		SLADueAt: &due,
	}
	_ = tickets.Create(context.Background(), t)
}

func TestEvaluateRejectsNonPositiveThreshold(t *testing.T) {
	svc, _, _, _, _ := newSLAFixture(time.Now())

	_, err := svc.Evaluate(context.Background(), 0, true)
	require.Error(t, err)

	_, err = svc.Evaluate(context.Background(), -3, true)
	require.Error(t, err)
}

func TestEvaluateClassification(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name       string
		due        time.Time
		ok         int
		nearExpiry int
		expired    int
	}{
		{"well within sla", now.Add(10 * time.Hour), 1, 0, 0},
		{"inside warning window", now.Add(2 * time.Hour), 0, 1, 0},
		{"exactly at boundary", now.Add(4 * time.Hour), 0, 1, 0},
		{"just past boundary", now.Add(4*time.Hour + time.Minute), 1, 0, 0},
		{"overdue", now.Add(-1 * time.Hour), 0, 0, 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, tickets, _, _, _ := newSLAFixture(now)
			openTicketDue(tickets, "tck-1", tc.due)

			report, err := svc.Evaluate(context.Background(), 4, false)
			require.NoError(t, err)
			assert.Equal(t, 1, report.Scanned)
			assert.Equal(t, tc.ok, report.OK)
			assert.Equal(t, tc.nearExpiry, report.NearExpiry)
			assert.Equal(t, tc.expired, report.Expired)
		})
	}
}

func TestEvaluateMediumPriorityTimeline(t *testing.T) {
	opened := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	due := opened.Add(48 * time.Hour)

	t.Run("at 45 hours the ticket is near expiry", func(t *testing.T) {
		now := opened.Add(45 * time.Hour)
		svc, tickets, _, notifier, _ := newSLAFixture(now)
		openTicketDue(tickets, "tck-1", due)

		report, err := svc.Evaluate(context.Background(), 4, true)
		require.NoError(t, err)
		assert.Equal(t, 1, report.NearExpiry)
		assert.Equal(t, 0, report.Expired)
		assert.Equal(t, 0, report.Escalated)
		require.Len(t, notifier.byKind(NotificationSLAPorVencer), 1)
	})

	t.Run("at 50 hours the ticket is expired and escalated", func(t *testing.T) {
		now := opened.Add(50 * time.Hour)
		svc, tickets, notes, notifier, dispatcher := newSLAFixture(now)
		openTicketDue(tickets, "tck-1", due)

		report, err := svc.Evaluate(context.Background(), 4, true)
		require.NoError(t, err)
		assert.Equal(t, 1, report.Expired)
		assert.Equal(t, 1, report.Escalated)
		require.Len(t, notifier.byKind(NotificationSLAVencido), 1)

		stored, err := tickets.GetByID(context.Background(), "tck-1")
		require.NoError(t, err)
		assert.Equal(t, domain.TicketStatusEscalado, stored.Status)
		require.NotNil(t, stored.EscalatedAt)
		assert.True(t, stored.EscalatedAt.Equal(now))

		escalationNotes := notes.byKind(domain.NoteKindEscalacion)
		require.Len(t, escalationNotes, 1)
		assert.Equal(t, "SLA vencido - Escalación automática", escalationNotes[0].Body)
		assert.Nil(t, escalationNotes[0].AuthorID)

		require.Len(t, dispatcher.byType(events.EventTicketEscalated), 1)
	})
}

func TestEvaluateEscalationIsIdempotent(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	svc, tickets, notes, _, _ := newSLAFixture(now)
	openTicketDue(tickets, "tck-1", now.Add(-2*time.Hour))

	first, err := svc.Evaluate(context.Background(), 4, true)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Escalated)

	second, err := svc.Evaluate(context.Background(), 4, true)
	require.NoError(t, err)
	assert.Equal(t, 1, second.Expired)
	assert.Equal(t, 0, second.Escalated, "second run must not escalate again")

	assert.Len(t, notes.byKind(domain.NoteKindEscalacion), 1)
}

func TestEvaluateWithoutAutoEscalate(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	svc, tickets, notes, notifier, _ := newSLAFixture(now)
	openTicketDue(tickets, "tck-1", now.Add(-2*time.Hour))

	report, err := svc.Evaluate(context.Background(), 4, false)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Expired)
	assert.Equal(t, 0, report.Escalated)
	require.Len(t, notifier.byKind(NotificationSLAVencido), 1, "expiry still notifies")

	stored, err := tickets.GetByID(context.Background(), "tck-1")
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusAbierto, stored.Status)
	assert.Empty(t, notes.byKind(domain.NoteKindEscalacion))
}

func TestEvaluateIsolatesPerTicketFailures(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	svc, tickets, _, notifier, _ := newSLAFixture(now)

	openTicketDue(tickets, "tck-1", now.Add(-3*time.Hour))
	openTicketDue(tickets, "tck-2", now.Add(-2*time.Hour))
	openTicketDue(tickets, "tck-3", now.Add(-1*time.Hour))
	tickets.escalateErr["tck-2"] = errBoom
	notifier.fail["tck-1"] = errBoom

	report, err := svc.Evaluate(context.Background(), 4, true)
	require.NoError(t, err, "scan completes despite per-ticket failures")
	assert.Equal(t, 3, report.Scanned)
	assert.Equal(t, 3, report.Expired)
	assert.Equal(t, 2, report.Escalated, "tck-1 and tck-3 escalate, tck-2 fails")
	assert.Equal(t, 2, report.Failures)
}

func TestEvaluateNotifiesFallbackWhenUnassigned(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	svc, tickets, _, notifier, _ := newSLAFixture(now)

	agentID := "agt-1"
	dueSoon := now.Add(time.Hour)
	_ = tickets.Create(context.Background(), &domain.Ticket{
		ID:         "tck-assigned",
		Status:     domain.TicketStatusEnProgreso,
		AssignedTo: &agentID,
		SLADueAt:   &dueSoon,
	})
	openTicketDue(tickets, "tck-orphan", now.Add(time.Hour))

	_, err := svc.Evaluate(context.Background(), 4, false)
	require.NoError(t, err)

	recipients := make(map[string]bool)
	for _, n := range notifier.byKind(NotificationSLAPorVencer) {
		recipients[n.Recipient] = true
	}
	assert.True(t, recipients[agentID])
	assert.True(t, recipients["mesa-de-servicio"])
}

func TestEvaluateSkipsClosedAndNoSLATickets(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	svc, tickets, _, _, _ := newSLAFixture(now)

	overdue := now.Add(-time.Hour)
	_ = tickets.Create(context.Background(), &domain.Ticket{
		ID:       "tck-closed",
		Status:   domain.TicketStatusCerrado,
		SLADueAt: &overdue,
	})
	_ = tickets.Create(context.Background(), &domain.Ticket{
		ID:     "tck-no-sla",
		Status: domain.TicketStatusAbierto,
	})

	report, err := svc.Evaluate(context.Background(), 4, true)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Scanned)
}
