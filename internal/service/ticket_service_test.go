package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solterra/operations-service/internal/domain"
	"github.com/solterra/operations-service/internal/events"
)

func newTicketFixture(now time.Time) (*TicketService, *fakeTicketRepo, *fakeAgentRepo, *fakeNoteRepo, *recordingDispatcher) {
	tickets := newFakeTicketRepo()
	agents := newFakeAgentRepo()
	notes := &fakeNoteRepo{}
	dispatcher := &recordingDispatcher{}
	svc := NewTicketService(TicketDependencies{
		TicketRepo: tickets,
		AgentRepo:  agents,
		NoteRepo:   notes,
		Dispatcher: dispatcher,
		Clock:      fixedClock(now),
	})
	return svc, tickets, agents, notes, dispatcher
}

func TestCreateTicketStampsSLAWindow(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	cases := []struct {
		priority domain.TicketPriority
		window   time.Duration
	}{
		{domain.TicketPriorityCritica, 4 * time.Hour},
		{domain.TicketPriorityAlta, 24 * time.Hour},
		{domain.TicketPriorityMedia, 48 * time.Hour},
		{domain.TicketPriorityBaja, 72 * time.Hour},
	}

	for _, tc := range cases {
		t.Run(string(tc.priority), func(t *testing.T) {
			svc, _, _, _, dispatcher := newTicketFixture(now)

			ticket, err := svc.CreateTicket(context.Background(), "agt-1", TicketCreateInput{
				Type:     domain.TicketTypeIncidente,
				Priority: tc.priority,
				Title:    "Fuga de agua",
			})
			require.NoError(t, err)
			assert.Equal(t, domain.TicketStatusAbierto, ticket.Status)
			assert.True(t, strings.HasPrefix(ticket.ExternalKey, "SRV-"))
			require.NotNil(t, ticket.SLADueAt)
			assert.True(t, ticket.SLADueAt.Equal(now.Add(tc.window)))

			created := dispatcher.byType(events.EventTicketCreated)
			require.Len(t, created, 1)
			assert.Equal(t, ticket.ID, created[0].EntityID)
		})
	}
}

func TestCreateTicketValidation(t *testing.T) {
	svc, _, _, _, _ := newTicketFixture(time.Now())

	_, err := svc.CreateTicket(context.Background(), "agt-1", TicketCreateInput{
		Type:     domain.TicketTypeIncidente,
		Priority: domain.TicketPriorityAlta,
		Title:    "   ",
	})
	require.Error(t, err)

	_, err = svc.CreateTicket(context.Background(), "agt-1", TicketCreateInput{
		Type:     domain.TicketType("desconocido"),
		Priority: domain.TicketPriorityAlta,
		Title:    "Algo",
	})
	require.Error(t, err)

	_, err = svc.CreateTicket(context.Background(), "agt-1", TicketCreateInput{
		Type:     domain.TicketTypeIncidente,
		Priority: domain.TicketPriority("urgentisima"),
		Title:    "Algo",
	})
	require.Error(t, err)
}

func TestChangeStatusEnforcesTransitions(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	svc, tickets, _, notes, dispatcher := newTicketFixture(now)

	agentID := "agt-1"
	_ = tickets.Create(context.Background(), &domain.Ticket{
		ID:         "tck-1",
		Status:     domain.TicketStatusAbierto,
		AssignedTo: &agentID,
	})

	updated, err := svc.ChangeStatus(context.Background(), "agt-1", "tck-1", domain.TicketStatusEnProgreso, "")
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusEnProgreso, updated.Status)

	_, err = svc.ChangeStatus(context.Background(), "agt-1", "tck-1", domain.TicketStatusReabierto, "")
	require.Error(t, err, "en_progreso cannot jump to reabierto")

	statusNotes := notes.byKind(domain.NoteKindEstado)
	require.Len(t, statusNotes, 1)
	assert.Contains(t, statusNotes[0].Body, "abierto")
	assert.Contains(t, statusNotes[0].Body, "en_progreso")
	assert.Len(t, dispatcher.byType(events.EventTicketStatusChanged), 1)
}

func TestChangeStatusRequiresAssigneeForProgress(t *testing.T) {
	svc, tickets, _, _, _ := newTicketFixture(time.Now())
	_ = tickets.Create(context.Background(), &domain.Ticket{
		ID:     "tck-1",
		Status: domain.TicketStatusAbierto,
	})

	_, err := svc.ChangeStatus(context.Background(), "agt-1", "tck-1", domain.TicketStatusEnProgreso, "")
	require.Error(t, err)
}

func TestChangeStatusCloseAndReopen(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	svc, tickets, _, _, _ := newTicketFixture(now)

	_ = tickets.Create(context.Background(), &domain.Ticket{
		ID:     "tck-1",
		Status: domain.TicketStatusResuelto,
	})

	closed, err := svc.ChangeStatus(context.Background(), "agt-1", "tck-1", domain.TicketStatusCerrado, "")
	require.NoError(t, err)
	require.NotNil(t, closed.ClosedBy)
	assert.Equal(t, "agt-1", *closed.ClosedBy)
	require.NotNil(t, closed.ClosedAt)

	reopened, err := svc.ChangeStatus(context.Background(), "agt-2", "tck-1", domain.TicketStatusReabierto, "cliente insiste")
	require.NoError(t, err)
	assert.Nil(t, reopened.ClosedBy)
	assert.Nil(t, reopened.ClosedAt)
}

func TestChangeStatusSameStatusIsNoOp(t *testing.T) {
	svc, tickets, _, notes, _ := newTicketFixture(time.Now())
	_ = tickets.Create(context.Background(), &domain.Ticket{
		ID:     "tck-1",
		Status: domain.TicketStatusAbierto,
	})

	ticket, err := svc.ChangeStatus(context.Background(), "agt-1", "tck-1", domain.TicketStatusAbierto, "")
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusAbierto, ticket.Status)
	assert.Empty(t, notes.byKind(domain.NoteKindEstado))
}

func TestAssignTicketChecks(t *testing.T) {
	svc, tickets, agents, _, dispatcher := newTicketFixture(time.Now())

	_ = agents.Create(context.Background(), &domain.Agent{ID: "agt-1", Name: "Laura", Active: true})
	_ = agents.Create(context.Background(), &domain.Agent{ID: "agt-off", Name: "Inactivo", Active: false})
	_ = tickets.Create(context.Background(), &domain.Ticket{ID: "tck-1", Status: domain.TicketStatusAbierto})
	_ = tickets.Create(context.Background(), &domain.Ticket{ID: "tck-closed", Status: domain.TicketStatusCerrado})

	ticket, err := svc.AssignTicket(context.Background(), "agt-super", "tck-1", "agt-1")
	require.NoError(t, err)
	require.NotNil(t, ticket.AssignedTo)
	assert.Equal(t, "agt-1", *ticket.AssignedTo)

	assigned := dispatcher.byType(events.EventTicketAssigned)
	require.Len(t, assigned, 1)
	payload, ok := assigned[0].Payload.(events.TicketAssignedPayload)
	require.True(t, ok)
	assert.False(t, payload.Automatic)

	_, err = svc.AssignTicket(context.Background(), "agt-super", "tck-1", "agt-off")
	require.Error(t, err, "inactive agent")

	_, err = svc.AssignTicket(context.Background(), "agt-super", "tck-closed", "agt-1")
	require.Error(t, err, "closed ticket")

	_, err = svc.AssignTicket(context.Background(), "agt-super", "tck-1", "agt-missing")
	require.Error(t, err, "unknown agent")
}

func TestUnassignTicket(t *testing.T) {
	svc, tickets, agents, _, _ := newTicketFixture(time.Now())
	_ = agents.Create(context.Background(), &domain.Agent{ID: "agt-1", Name: "Laura", Active: true})

	agentID := "agt-1"
	_ = tickets.Create(context.Background(), &domain.Ticket{
		ID:         "tck-1",
		Status:     domain.TicketStatusPendiente,
		AssignedTo: &agentID,
	})
	_ = tickets.Create(context.Background(), &domain.Ticket{
		ID:         "tck-busy",
		Status:     domain.TicketStatusEnProgreso,
		AssignedTo: &agentID,
	})

	ticket, err := svc.UnassignTicket(context.Background(), "agt-super", "tck-1")
	require.NoError(t, err)
	assert.Nil(t, ticket.AssignedTo)

	again, err := svc.UnassignTicket(context.Background(), "agt-super", "tck-1")
	require.NoError(t, err, "unassigning an unassigned ticket is a no-op")
	assert.Nil(t, again.AssignedTo)

	_, err = svc.UnassignTicket(context.Background(), "agt-super", "tck-busy")
	require.Error(t, err, "in-progress tickets keep their assignee")
}

func TestAddNote(t *testing.T) {
	svc, tickets, _, _, _ := newTicketFixture(time.Now())
	_ = tickets.Create(context.Background(), &domain.Ticket{ID: "tck-1", Status: domain.TicketStatusAbierto})

	note, err := svc.AddNote(context.Background(), "agt-1", "tck-1", "seguimiento con el cliente")
	require.NoError(t, err)
	assert.Equal(t, domain.NoteKindComentario, note.Kind)
	require.NotNil(t, note.AuthorID)
	assert.Equal(t, "agt-1", *note.AuthorID)

	_, err = svc.AddNote(context.Background(), "agt-1", "tck-1", "  ")
	require.Error(t, err)

	_, err = svc.AddNote(context.Background(), "agt-1", "tck-missing", "hola")
	require.Error(t, err)
}

func TestGetTicketNotFound(t *testing.T) {
	svc, _, _, _, _ := newTicketFixture(time.Now())
	_, _, err := svc.GetTicket(context.Background(), "tck-missing")
	require.Error(t, err)
}
