package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/solterra/operations-service/internal/domain"
	apperrors "github.com/solterra/operations-service/pkg/util"
)

// Action names the operations the permission check gates. Lifecycle engines
// themselves are permission-agnostic; callers check before invoking.
const (
	ActionTicketsCrear       = "tickets.crear"
	ActionTicketsVer         = "tickets.ver"
	ActionTicketsGestionar   = "tickets.gestionar"
	ActionTicketsAsignar     = "tickets.asignar"
	ActionVentasRegistrar    = "ventas.registrar"
	ActionCobranzasRegistrar = "cobranzas.registrar"
	ActionCortesVer          = "cortes.ver"
	ActionLifecycleEjecutar  = "lifecycle.ejecutar"
	ActionAgentesAdministrar = "agentes.administrar"
)

var rolePermissions = map[domain.AgentRole]map[string]struct{}{
	domain.AgentRoleAgente: permissionSet(
		ActionTicketsCrear,
		ActionTicketsVer,
		ActionTicketsGestionar,
		ActionVentasRegistrar,
		ActionCobranzasRegistrar,
	),
	domain.AgentRoleSupervisor: permissionSet(
		ActionTicketsCrear,
		ActionTicketsVer,
		ActionTicketsGestionar,
		ActionTicketsAsignar,
		ActionVentasRegistrar,
		ActionCobranzasRegistrar,
		ActionCortesVer,
		ActionLifecycleEjecutar,
	),
	domain.AgentRoleAdmin: permissionSet(
		ActionTicketsCrear,
		ActionTicketsVer,
		ActionTicketsGestionar,
		ActionTicketsAsignar,
		ActionVentasRegistrar,
		ActionCobranzasRegistrar,
		ActionCortesVer,
		ActionLifecycleEjecutar,
		ActionAgentesAdministrar,
	),
}

func permissionSet(actions ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(actions))
	for _, action := range actions {
		set[action] = struct{}{}
	}
	return set
}

// Can reports whether the principal may perform the named action.
func Can(p *Principal, action string) bool {
	if p == nil || p.Agent == nil || !p.Agent.Active {
		return false
	}
	perms, ok := rolePermissions[p.Agent.Role]
	if !ok {
		return false
	}
	_, allowed := perms[action]
	return allowed
}

// RequirePermission builds middleware that enforces a single action.
func RequirePermission(action string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if !Can(principal, action) {
			return apperrors.NewForbidden("insufficient permissions")
		}
		return c.Next()
	}
}
