package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/solterra/operations-service/internal/domain"
)

func principalWithRole(role domain.AgentRole, active bool) *Principal {
	return &Principal{
		SubjectType: domain.SubjectTypeAgent,
		Agent:       &domain.Agent{ID: "agt-1", Role: role, Active: active},
	}
}

func TestCanByRole(t *testing.T) {
	cases := []struct {
		name    string
		role    domain.AgentRole
		action  string
		allowed bool
	}{
		{"agente creates tickets", domain.AgentRoleAgente, ActionTicketsCrear, true},
		{"agente records sales", domain.AgentRoleAgente, ActionVentasRegistrar, true},
		{"agente cannot assign", domain.AgentRoleAgente, ActionTicketsAsignar, false},
		{"agente cannot view cuts", domain.AgentRoleAgente, ActionCortesVer, false},
		{"agente cannot run lifecycle", domain.AgentRoleAgente, ActionLifecycleEjecutar, false},
		{"supervisor assigns", domain.AgentRoleSupervisor, ActionTicketsAsignar, true},
		{"supervisor runs lifecycle", domain.AgentRoleSupervisor, ActionLifecycleEjecutar, true},
		{"supervisor cannot manage agents", domain.AgentRoleSupervisor, ActionAgentesAdministrar, false},
		{"admin manages agents", domain.AgentRoleAdmin, ActionAgentesAdministrar, true},
		{"admin views cuts", domain.AgentRoleAdmin, ActionCortesVer, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.allowed, Can(principalWithRole(tc.role, true), tc.action))
		})
	}
}

func TestCanRejectsEdgeCases(t *testing.T) {
	assert.False(t, Can(nil, ActionTicketsVer))
	assert.False(t, Can(&Principal{}, ActionTicketsVer), "no agent loaded")
	assert.False(t, Can(principalWithRole(domain.AgentRoleAdmin, false), ActionTicketsVer), "inactive agent")
	assert.False(t, Can(principalWithRole(domain.AgentRole("visitante"), true), ActionTicketsVer), "unknown role")
	assert.False(t, Can(principalWithRole(domain.AgentRoleAdmin, true), "acciones.inexistente"))
}
