package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/solterra/operations-service/internal/auth"
	"github.com/solterra/operations-service/internal/config"
	"github.com/solterra/operations-service/internal/domain"
	"github.com/solterra/operations-service/internal/repository"
	apperrors "github.com/solterra/operations-service/pkg/util"
)

// AuthService handles agent login and registration.
type AuthService struct {
	cfg    config.Config
	agents repository.AgentRepository
	tokens *auth.TokenManager
}

// NewAuthService constructs the service.
func NewAuthService(cfg config.Config, agents repository.AgentRepository) *AuthService {
	return &AuthService{
		cfg:    cfg,
		agents: agents,
		tokens: auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
	}
}

// TokenManager exposes the token manager for middleware wiring.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokens
}

// LoginResult bundles the issued token.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	Agent     *domain.Agent
}

// Login authenticates an agent by email and password.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return nil, apperrors.NewValidationError("email and password required", nil)
	}

	agent, err := s.agents.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, apperrors.MapError(err)
	}
	if !agent.Active {
		return nil, apperrors.NewForbidden("agent deactivated")
	}
	if err := auth.ComparePassword(agent.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}

	role := agent.Role
	token, expiresAt, err := s.tokens.GenerateToken(agent.ID, domain.SubjectTypeAgent, &role)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return &LoginResult{Token: token, ExpiresAt: expiresAt, Agent: agent}, nil
}

// RegisterAgentInput describes agent registration payload.
type RegisterAgentInput struct {
	Name     string
	Email    string
	Password string
	Role     domain.AgentRole
}

// RegisterAgent creates a new active agent (admin operation).
func (s *AuthService) RegisterAgent(ctx context.Context, input RegisterAgentInput) (*domain.Agent, error) {
	input.Email = strings.TrimSpace(strings.ToLower(input.Email))
	if input.Name == "" || input.Email == "" || len(input.Password) < 8 {
		return nil, apperrors.NewValidationError("name, email and a password of 8+ characters required", nil)
	}
	switch input.Role {
	case domain.AgentRoleAgente, domain.AgentRoleSupervisor, domain.AgentRoleAdmin:
	default:
		return nil, apperrors.NewValidationError("unknown role", map[string]any{"role": input.Role})
	}

	if _, err := s.agents.GetByEmail(ctx, input.Email); err == nil {
		return nil, apperrors.NewConflict("email already registered", map[string]any{"email": input.Email})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	hash, err := auth.HashPassword(input.Password, s.cfg.Auth.BcryptCost)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	agent := &domain.Agent{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: hash,
		Role:         input.Role,
		Active:       true,
	}
	if err := s.agents.Create(ctx, agent); err != nil {
		return nil, apperrors.MapError(err)
	}
	return agent, nil
}
