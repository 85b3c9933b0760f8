package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/solterra/operations-service/internal/api/dto"
	"github.com/solterra/operations-service/internal/domain"
	"github.com/solterra/operations-service/internal/service"
	apperrors "github.com/solterra/operations-service/pkg/util"
)

// AuthHandler exposes agent authentication endpoints.
type AuthHandler struct {
	service *service.AuthService
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{service: authService}
}

// Login POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	result, err := h.service.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.LoginResponse{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
		AgentID:   result.Agent.ID,
	}})
}

// RegisterAgent POST /agents.
func (h *AuthHandler) RegisterAgent(c *fiber.Ctx) error {
	var req dto.RegisterAgentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	agent, err := h.service.RegisterAgent(c.Context(), service.RegisterAgentInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": agentResponse(agent)})
}

func agentResponse(agent *domain.Agent) dto.AgentResponse {
	return dto.AgentResponse{
		ID:     agent.ID,
		Name:   agent.Name,
		Email:  agent.Email,
		Role:   agent.Role,
		Active: agent.Active,
	}
}
