package events

import (
	"time"

	"github.com/solterra/operations-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketStatusChanged EventType = "ticket_status_changed"
	EventTicketAssigned      EventType = "ticket_assigned"
	EventTicketEscalated     EventType = "ticket_escalated"
	EventTicketSLAWarning    EventType = "ticket_sla_warning"
	EventContractCreated     EventType = "contract_created"
	EventPaymentRecorded     EventType = "payment_recorded"
)

// Actor encapsulates who triggered an event. System actors (schedulers,
// evaluators) carry a nil AgentID.
type Actor struct {
	Type    domain.SubjectType `json:"type"`
	AgentID *string            `json:"agent_id,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	EntityID  string      `json:"entity_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Type     domain.TicketType     `json:"type"`
	Priority domain.TicketPriority `json:"priority"`
	Title    string                `json:"title"`
	SLADueAt *time.Time            `json:"sla_due_at,omitempty"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
	Comment   string              `json:"comment,omitempty"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	AssignedTo *string `json:"assigned_to,omitempty"`
	Automatic  bool    `json:"automatic"`
}

// TicketEscalatedPayload payload.
type TicketEscalatedPayload struct {
	Reason     string              `json:"reason"`
	OverdueHrs float64             `json:"overdue_hours"`
	PrevStatus domain.TicketStatus `json:"previous_status"`
}

// TicketSLAWarningPayload payload.
type TicketSLAWarningPayload struct {
	RemainingHrs float64 `json:"remaining_hours"`
}

// ContractCreatedPayload carries the full contract so subscribers do not
// need a read-back.
type ContractCreatedPayload struct {
	Contract domain.Contract `json:"contract"`
}

// PaymentRecordedPayload carries the full payment.
type PaymentRecordedPayload struct {
	Payment domain.Payment `json:"payment"`
}
