package dto

import (
	"time"

	"github.com/solterra/operations-service/internal/domain"
)

// LoginRequest payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse response.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	AgentID   string    `json:"agent_id"`
}

// RegisterAgentRequest payload.
type RegisterAgentRequest struct {
	Name     string           `json:"name"`
	Email    string           `json:"email"`
	Password string           `json:"password"`
	Role     domain.AgentRole `json:"role"`
}

// AgentResponse response.
type AgentResponse struct {
	ID     string           `json:"id"`
	Name   string           `json:"name"`
	Email  string           `json:"email"`
	Role   domain.AgentRole `json:"role"`
	Active bool             `json:"active"`
}
