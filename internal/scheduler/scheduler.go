package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/solterra/operations-service/internal/config"
	"github.com/solterra/operations-service/internal/observability"
	"github.com/solterra/operations-service/internal/service"
)

const jobTimeout = 5 * time.Minute

// Scheduler drives the periodic lifecycle runs: SLA checks, auto-assignment
// of stale critical tickets, and the nightly cut close. An interrupted run
// leaves already-persisted changes intact; every unit of work is idempotent
// or additive, so the next tick simply picks up where it left off.
type Scheduler struct {
	cron    *cron.Cron
	cfg     config.LifecycleConfig
	sla     *service.SLAService
	assign  *service.AssignmentService
	cuts    *service.SalesCutService
	metrics *observability.Metrics
	logger  *zap.Logger
}

// New builds the scheduler with all lifecycle jobs registered.
func New(cfg config.LifecycleConfig, sla *service.SLAService, assign *service.AssignmentService, cuts *service.SalesCutService, metrics *observability.Metrics, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		cfg:     cfg,
		sla:     sla,
		assign:  assign,
		cuts:    cuts,
		metrics: metrics,
		logger:  logger,
	}
}

// Start registers the cron entries and starts ticking.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.cfg.SLACronSpec, s.runSLACheck); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc(s.cfg.AutoAssignCronSpec, s.runAutoAssign); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc(s.cfg.CutCloseCronSpec, s.runCutClose); err != nil {
		return err
	}
	s.cron.Start()
	s.logger.Info("scheduler started",
		zap.String("sla_spec", s.cfg.SLACronSpec),
		zap.String("auto_assign_spec", s.cfg.AutoAssignCronSpec),
		zap.String("cut_close_spec", s.cfg.CutCloseCronSpec))
	return nil
}

// Stop halts the cron loop and waits for running jobs.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) runSLACheck() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	report, err := s.sla.Evaluate(ctx, s.cfg.SLAWarningHours, s.cfg.SLAAutoEscalate)
	if err != nil {
		s.logger.Error("sla check run failed", zap.Error(err))
		return
	}
	s.metrics.RecordLifecycleRun("sla_check", report.Failures)
}

func (s *Scheduler) runAutoAssign() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	report, err := s.assign.RunOnce(ctx, s.cfg.StaleAfter())
	if err != nil {
		s.logger.Error("auto-assign run failed", zap.Error(err))
		return
	}
	s.metrics.RecordLifecycleRun("auto_assign", report.Failures)
}

func (s *Scheduler) runCutClose() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	closed, err := s.cuts.ClosePreviousCut(ctx)
	if err != nil {
		s.logger.Error("cut close run failed", zap.Error(err))
		return
	}
	if !closed {
		s.logger.Info("no open cut to close")
	}
	s.metrics.RecordLifecycleRun("cut_close", 0)
}
