package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/solterra/operations-service/internal/config"
	"github.com/solterra/operations-service/internal/service"
	apperrors "github.com/solterra/operations-service/pkg/util"
)

// LifecycleHandler exposes manual triggers for the scheduled lifecycle
// runs, useful for operators and smoke checks.
type LifecycleHandler struct {
	sla    *service.SLAService
	assign *service.AssignmentService
	cfg    config.LifecycleConfig
}

// NewLifecycleHandler constructs the handler.
func NewLifecycleHandler(sla *service.SLAService, assign *service.AssignmentService, cfg config.LifecycleConfig) *LifecycleHandler {
	return &LifecycleHandler{sla: sla, assign: assign, cfg: cfg}
}

type slaCheckRequest struct {
	HoursThreshold int   `json:"hours_threshold"`
	AutoEscalate   *bool `json:"auto_escalate"`
}

// RunSLACheck POST /lifecycle/sla-check. Body fields fall back to the
// configured defaults when omitted.
func (h *LifecycleHandler) RunSLACheck(c *fiber.Ctx) error {
	req := slaCheckRequest{HoursThreshold: h.cfg.SLAWarningHours}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return apperrors.NewValidationError("invalid payload", nil)
		}
	}
	autoEscalate := h.cfg.SLAAutoEscalate
	if req.AutoEscalate != nil {
		autoEscalate = *req.AutoEscalate
	}

	report, err := h.sla.Evaluate(c.Context(), req.HoursThreshold, autoEscalate)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": report})
}

// RunAutoAssign POST /lifecycle/auto-assign. Uses the fixed configured
// staleness threshold.
func (h *LifecycleHandler) RunAutoAssign(c *fiber.Ctx) error {
	report, err := h.assign.RunOnce(c.Context(), time.Duration(h.cfg.AutoAssignStaleMinutes)*time.Minute)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": report})
}
