package domain

import "time"

// TicketNoteKind captures what a note documents.
type TicketNoteKind string

const (
	NoteKindComentario TicketNoteKind = "comentario"
	NoteKindEstado     TicketNoteKind = "cambio_estado"
	NoteKindAsignacion TicketNoteKind = "asignacion"
	NoteKindEscalacion TicketNoteKind = "escalacion"
)

// TicketNote is an immutable audit trail entry attached to a ticket.
// System-generated notes (auto-escalation, auto-assignment) have a nil
// AuthorID.
type TicketNote struct {
	ID        string
	TicketID  string
	Kind      TicketNoteKind
	AuthorID  *string
	Body      string
	CreatedAt time.Time
}
