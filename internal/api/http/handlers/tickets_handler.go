package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/solterra/operations-service/internal/api/dto"
	"github.com/solterra/operations-service/internal/auth"
	"github.com/solterra/operations-service/internal/domain"
	"github.com/solterra/operations-service/internal/repository"
	"github.com/solterra/operations-service/internal/service"
	apperrors "github.com/solterra/operations-service/pkg/util"
)

// TicketsHandler manages ticket endpoints.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs the handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Agent == nil {
		return apperrors.NewUnauthorized("agent required")
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.service.CreateTicket(c.Context(), principal.Agent.ID, service.TicketCreateInput{
		Type:        req.Type,
		Priority:    req.Priority,
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// ListTickets GET /tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	tickets, err := h.service.ListTickets(c.Context(), parseTicketQuery(c))
	if err != nil {
		return err
	}
	items := make([]dto.TicketSummary, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketSummary(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	ticket, notes, err := h.service.GetTicket(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketDetail(ticket, notes)})
}

// ChangeStatus POST /tickets/:id/status.
func (h *TicketsHandler) ChangeStatus(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Agent == nil {
		return apperrors.NewUnauthorized("agent required")
	}
	var req dto.ChangeStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.service.ChangeStatus(c.Context(), principal.Agent.ID, c.Params("id"), req.Status, req.Comment)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// AssignTicket POST /tickets/:id/assign.
func (h *TicketsHandler) AssignTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Agent == nil {
		return apperrors.NewUnauthorized("agent required")
	}
	var req dto.AssignTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.AgentID) == "" {
		return apperrors.NewValidationError("agent_id required", nil)
	}
	ticket, err := h.service.AssignTicket(c.Context(), principal.Agent.ID, c.Params("id"), req.AgentID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// UnassignTicket DELETE /tickets/:id/assign.
func (h *TicketsHandler) UnassignTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Agent == nil {
		return apperrors.NewUnauthorized("agent required")
	}
	ticket, err := h.service.UnassignTicket(c.Context(), principal.Agent.ID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// AddNote POST /tickets/:id/notes.
func (h *TicketsHandler) AddNote(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Agent == nil {
		return apperrors.NewUnauthorized("agent required")
	}
	var req dto.AddNoteRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	note, err := h.service.AddNote(c.Context(), principal.Agent.ID, c.Params("id"), req.Body)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": noteResponse(note)})
}

func parseTicketQuery(c *fiber.Ctx) repository.TicketFilter {
	filter := repository.TicketFilter{}
	if statusStr := c.Query("status"); statusStr != "" {
		for _, part := range strings.Split(statusStr, ",") {
			filter.Statuses = append(filter.Statuses, domain.TicketStatus(strings.TrimSpace(part)))
		}
	}
	if priorityStr := c.Query("priority"); priorityStr != "" {
		for _, part := range strings.Split(priorityStr, ",") {
			filter.Priorities = append(filter.Priorities, domain.TicketPriority(strings.TrimSpace(part)))
		}
	}
	if typeStr := c.Query("type"); typeStr != "" {
		for _, part := range strings.Split(typeStr, ",") {
			filter.Types = append(filter.Types, domain.TicketType(strings.TrimSpace(part)))
		}
	}
	if assignee := c.Query("assigned_to"); assignee != "" {
		filter.AssignedTo = &assignee
	}
	if search := c.Query("search"); search != "" {
		filter.SearchTerm = &search
	}
	if from := parseTime(c.Query("opened_from")); from != nil {
		filter.OpenedFrom = from
	}
	if to := parseTime(c.Query("opened_to")); to != nil {
		filter.OpenedTo = to
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)
	filter.Offset = (page - 1) * pageSize
	filter.Limit = pageSize
	return filter
}

func parseTime(val string) *time.Time {
	if val == "" {
		return nil
	}
	parsed, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return nil
	}
	return &parsed
}

func parseInt(val string, fallback int) int {
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func ticketSummary(ticket *domain.Ticket) dto.TicketSummary {
	return dto.TicketSummary{
		ID:          ticket.ID,
		ExternalKey: ticket.ExternalKey,
		Type:        ticket.Type,
		Priority:    ticket.Priority,
		Status:      ticket.Status,
		Title:       ticket.Title,
		AssignedTo:  ticket.AssignedTo,
		OpenedAt:    ticket.OpenedAt,
		SLADueAt:    ticket.SLADueAt,
	}
}

func ticketDetail(ticket *domain.Ticket, notes []domain.TicketNote) dto.TicketDetailResponse {
	noteItems := make([]dto.TicketNoteResponse, 0, len(notes))
	for i := range notes {
		noteItems = append(noteItems, noteResponse(&notes[i]))
	}
	return dto.TicketDetailResponse{
		ID:          ticket.ID,
		ExternalKey: ticket.ExternalKey,
		Type:        ticket.Type,
		Priority:    ticket.Priority,
		Status:      ticket.Status,
		Title:       ticket.Title,
		Description: ticket.Description,
		AssignedTo:  ticket.AssignedTo,
		OpenedBy:    ticket.OpenedBy,
		ClosedBy:    ticket.ClosedBy,
		OpenedAt:    ticket.OpenedAt,
		SLADueAt:    ticket.SLADueAt,
		EscalatedAt: ticket.EscalatedAt,
		ClosedAt:    ticket.ClosedAt,
		Notes:       noteItems,
	}
}

func noteResponse(note *domain.TicketNote) dto.TicketNoteResponse {
	return dto.TicketNoteResponse{
		ID:        note.ID,
		Kind:      note.Kind,
		AuthorID:  note.AuthorID,
		Body:      note.Body,
		CreatedAt: note.CreatedAt,
	}
}
