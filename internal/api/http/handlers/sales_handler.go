package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/solterra/operations-service/internal/api/dto"
	"github.com/solterra/operations-service/internal/auth"
	"github.com/solterra/operations-service/internal/domain"
	"github.com/solterra/operations-service/internal/service"
	apperrors "github.com/solterra/operations-service/pkg/util"
)

// SalesHandler manages contract and payment endpoints.
type SalesHandler struct {
	service *service.SalesService
}

// NewSalesHandler constructs the handler.
func NewSalesHandler(salesService *service.SalesService) *SalesHandler {
	return &SalesHandler{service: salesService}
}

// CreateContract POST /contracts.
func (h *SalesHandler) CreateContract(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Agent == nil {
		return apperrors.NewUnauthorized("agent required")
	}
	var req dto.CreateContractRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	contract, err := h.service.CreateContract(c.Context(), principal.Agent.ID, service.ContractCreateInput{
		LotID:      req.LotID,
		ClientID:   req.ClientID,
		Status:     req.Status,
		TotalPrice: req.TotalPrice,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": contractResponse(contract)})
}

// RecordPayment POST /payments.
func (h *SalesHandler) RecordPayment(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Agent == nil {
		return apperrors.NewUnauthorized("agent required")
	}
	var req dto.RecordPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	payment, err := h.service.RecordPayment(c.Context(), principal.Agent.ID, service.PaymentRecordInput{
		PaymentScheduleID: req.PaymentScheduleID,
		ContractID:        req.ContractID,
		Amount:            req.Amount,
		Method:            req.Method,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": paymentResponse(payment)})
}

func contractResponse(contract *domain.Contract) dto.ContractResponse {
	return dto.ContractResponse{
		ID:         contract.ID,
		LotID:      contract.LotID,
		ClientID:   contract.ClientID,
		Status:     contract.Status,
		TotalPrice: contract.TotalPrice,
		CreatedAt:  contract.CreatedAt,
	}
}

func paymentResponse(payment *domain.Payment) dto.PaymentResponse {
	return dto.PaymentResponse{
		ID:                payment.ID,
		PaymentScheduleID: payment.PaymentScheduleID,
		ContractID:        payment.ContractID,
		ContractStatus:    payment.ContractStatus,
		Amount:            payment.Amount,
		Method:            payment.Method,
		ReceivedAt:        payment.ReceivedAt,
	}
}
