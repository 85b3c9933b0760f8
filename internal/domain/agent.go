package domain

import "time"

// AgentRole enumerates back-office operator roles.
type AgentRole string

const (
	AgentRoleAgente     AgentRole = "agente"
	AgentRoleSupervisor AgentRole = "supervisor"
	AgentRoleAdmin      AgentRole = "admin"
)

// Agent models a service-desk operator who can hold ticket assignments.
type Agent struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         AgentRole
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
