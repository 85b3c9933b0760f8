package domain

import "time"

// TicketStatus enumerates lifecycle states for service tickets.
type TicketStatus string

const (
	TicketStatusAbierto    TicketStatus = "abierto"
	TicketStatusEnProgreso TicketStatus = "en_progreso"
	TicketStatusPendiente  TicketStatus = "pendiente"
	TicketStatusEscalado   TicketStatus = "escalado"
	TicketStatusResuelto   TicketStatus = "resuelto"
	TicketStatusReabierto  TicketStatus = "reabierto"
	TicketStatusCerrado    TicketStatus = "cerrado"
)

// TicketPriority enumerates SLA urgency.
type TicketPriority string

const (
	TicketPriorityBaja    TicketPriority = "baja"
	TicketPriorityMedia   TicketPriority = "media"
	TicketPriorityAlta    TicketPriority = "alta"
	TicketPriorityCritica TicketPriority = "critica"
)

// TicketType classifies service requests.
type TicketType string

const (
	TicketTypeIncidente     TicketType = "incidente"
	TicketTypeSolicitud     TicketType = "solicitud"
	TicketTypeCambio        TicketType = "cambio"
	TicketTypeGarantia      TicketType = "garantia"
	TicketTypeMantenimiento TicketType = "mantenimiento"
	TicketTypeOtro          TicketType = "otro"
)

// Ticket is the aggregate for service requests raised against sold units.
type Ticket struct {
	ID          string
	ExternalKey string
	Type        TicketType
	Priority    TicketPriority
	Status      TicketStatus
	Title       string
	Description string
	AssignedTo  *string
	OpenedBy    string
	ClosedBy    *string
	OpenedAt    time.Time
	SLADueAt    *time.Time
	EscalatedAt *time.Time
	ClosedAt    *time.Time
	UpdatedAt   time.Time
}

// ValidPriority reports whether p is a known priority value.
func ValidPriority(p TicketPriority) bool {
	switch p {
	case TicketPriorityBaja, TicketPriorityMedia, TicketPriorityAlta, TicketPriorityCritica:
		return true
	}
	return false
}

// ValidTicketType reports whether t is a known ticket type.
func ValidTicketType(t TicketType) bool {
	switch t {
	case TicketTypeIncidente, TicketTypeSolicitud, TicketTypeCambio,
		TicketTypeGarantia, TicketTypeMantenimiento, TicketTypeOtro:
		return true
	}
	return false
}

var allowedTransitions = map[TicketStatus][]TicketStatus{
	TicketStatusAbierto:    {TicketStatusEnProgreso, TicketStatusPendiente, TicketStatusEscalado, TicketStatusResuelto, TicketStatusCerrado},
	TicketStatusEnProgreso: {TicketStatusPendiente, TicketStatusEscalado, TicketStatusResuelto, TicketStatusCerrado},
	TicketStatusPendiente:  {TicketStatusEnProgreso, TicketStatusEscalado, TicketStatusResuelto, TicketStatusCerrado},
	TicketStatusEscalado:   {TicketStatusEnProgreso, TicketStatusResuelto, TicketStatusCerrado},
	TicketStatusResuelto:   {TicketStatusCerrado, TicketStatusReabierto},
	TicketStatusReabierto:  {TicketStatusEnProgreso, TicketStatusEscalado, TicketStatusResuelto, TicketStatusCerrado},
	TicketStatusCerrado:    {TicketStatusReabierto},
}

// CanTransition reports whether a ticket may move from one status to another.
func CanTransition(from, to TicketStatus) bool {
	for _, allowed := range allowedTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}
