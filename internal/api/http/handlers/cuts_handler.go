package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/solterra/operations-service/internal/api/dto"
	"github.com/solterra/operations-service/internal/domain"
	"github.com/solterra/operations-service/internal/service"
)

// CutsHandler exposes the daily sales cut.
type CutsHandler struct {
	service *service.SalesCutService
}

// NewCutsHandler constructs the handler.
func NewCutsHandler(cutService *service.SalesCutService) *CutsHandler {
	return &CutsHandler{service: cutService}
}

// GetToday GET /cuts/today. Creates the cut on first read of the day.
func (h *CutsHandler) GetToday(c *fiber.Ctx) error {
	cut, err := h.service.EnsureTodayCut(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": cutResponse(cut)})
}

// CloseToday POST /cuts/today/close.
func (h *CutsHandler) CloseToday(c *fiber.Ctx) error {
	closed, err := h.service.CloseTodayCut(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"closed": closed}})
}

func cutResponse(cut *domain.SalesCut) dto.SalesCutResponse {
	return dto.SalesCutResponse{
		ID:            cut.ID,
		CutDate:       cut.CutDate.Format("2006-01-02"),
		Status:        cut.Status,
		SalesCount:    cut.SalesCount,
		SalesTotal:    cut.SalesTotal,
		PaymentsCount: cut.PaymentsCount,
		PaymentsTotal: cut.PaymentsTotal,
		ClosedAt:      cut.ClosedAt,
	}
}
