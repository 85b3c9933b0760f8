package dto

import (
	"time"

	"github.com/solterra/operations-service/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Type        domain.TicketType     `json:"type"`
	Priority    domain.TicketPriority `json:"priority"`
	Title       string                `json:"title"`
	Description string                `json:"description"`
}

// ChangeStatusRequest payload.
type ChangeStatusRequest struct {
	Status  domain.TicketStatus `json:"status"`
	Comment string              `json:"comment,omitempty"`
}

// AssignTicketRequest payload.
type AssignTicketRequest struct {
	AgentID string `json:"agent_id"`
}

// AddNoteRequest payload.
type AddNoteRequest struct {
	Body string `json:"body"`
}

// TicketSummary response.
type TicketSummary struct {
	ID          string                `json:"id"`
	ExternalKey string                `json:"external_key"`
	Type        domain.TicketType     `json:"type"`
	Priority    domain.TicketPriority `json:"priority"`
	Status      domain.TicketStatus   `json:"status"`
	Title       string                `json:"title"`
	AssignedTo  *string               `json:"assigned_to"`
	OpenedAt    time.Time             `json:"opened_at"`
	SLADueAt    *time.Time            `json:"sla_due_at"`
}

// TicketDetailResponse provides full ticket info.
type TicketDetailResponse struct {
	ID          string                `json:"id"`
	ExternalKey string                `json:"external_key"`
	Type        domain.TicketType     `json:"type"`
	Priority    domain.TicketPriority `json:"priority"`
	Status      domain.TicketStatus   `json:"status"`
	Title       string                `json:"title"`
	Description string                `json:"description"`
	AssignedTo  *string               `json:"assigned_to"`
	OpenedBy    string                `json:"opened_by"`
	ClosedBy    *string               `json:"closed_by"`
	OpenedAt    time.Time             `json:"opened_at"`
	SLADueAt    *time.Time            `json:"sla_due_at"`
	EscalatedAt *time.Time            `json:"escalated_at"`
	ClosedAt    *time.Time            `json:"closed_at"`
	Notes       []TicketNoteResponse  `json:"notes"`
}

// TicketNoteResponse represents an audit note.
type TicketNoteResponse struct {
	ID        string                `json:"id"`
	Kind      domain.TicketNoteKind `json:"kind"`
	AuthorID  *string               `json:"author_id"`
	Body      string                `json:"body"`
	CreatedAt time.Time             `json:"created_at"`
}
