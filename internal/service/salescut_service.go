package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/solterra/operations-service/internal/domain"
	"github.com/solterra/operations-service/internal/events"
	"github.com/solterra/operations-service/internal/repository"
	apperrors "github.com/solterra/operations-service/pkg/util"
)

// Deduper reports whether a domain-event key was already processed.
// Implementations are best-effort: on error the caller proceeds and accepts
// the duplicate-count risk rather than dropping the increment.
type Deduper interface {
	SeenBefore(ctx context.Context, key string) (bool, error)
}

// SalesCutService maintains the daily sales cut: one open aggregation
// record per calendar day into which qualifying contract and payment
// events are folded as they happen.
type SalesCutService struct {
	cuts   repository.SalesCutRepository
	dedup  Deduper
	logger *zap.Logger
	now    func() time.Time
}

// SalesCutDependencies bundles collaborators for the aggregator.
type SalesCutDependencies struct {
	CutRepo repository.SalesCutRepository
	Dedup   Deduper
	Logger  *zap.Logger
	Clock   func() time.Time
}

// NewSalesCutService constructs the aggregator.
func NewSalesCutService(deps SalesCutDependencies) *SalesCutService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &SalesCutService{
		cuts:   deps.CutRepo,
		dedup:  deps.Dedup,
		logger: logger,
		now:    clock,
	}
}

// EnsureTodayCut fetches or creates the cut for the current calendar day.
// Idempotent; concurrent callers converge on the same row.
func (s *SalesCutService) EnsureTodayCut(ctx context.Context) (*domain.SalesCut, error) {
	cut, err := s.cuts.GetOrCreateOpen(ctx, s.today())
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return cut, nil
}

// TodayCut returns the current day's cut without creating one.
func (s *SalesCutService) TodayCut(ctx context.Context) (*domain.SalesCut, error) {
	cut, err := s.cuts.GetByDate(ctx, s.today())
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return cut, nil
}

// CloseTodayCut closes the open cut for the current day. Returns false when
// no cut was open.
func (s *SalesCutService) CloseTodayCut(ctx context.Context) (bool, error) {
	closed, err := s.cuts.Close(ctx, s.today(), s.now())
	if err != nil {
		return false, apperrors.MapError(err)
	}
	return closed, nil
}

// ClosePreviousCut closes the open cut of the previous calendar day. Used
// by the nightly job, which fires just after midnight.
func (s *SalesCutService) ClosePreviousCut(ctx context.Context) (bool, error) {
	yesterday := s.today().AddDate(0, 0, -1)
	closed, err := s.cuts.Close(ctx, yesterday, s.now())
	if err != nil {
		return false, apperrors.MapError(err)
	}
	return closed, nil
}

// AddSale folds one contract into today's open cut. Contracts outside the
// counted status set, or arriving while no cut is open, are a silent no-op.
func (s *SalesCutService) AddSale(ctx context.Context, contract *domain.Contract) error {
	if !contract.CountsForSales() {
		return nil
	}
	if s.alreadySeen(ctx, "salescut:contract:"+contract.ID) {
		return nil
	}
	applied, err := s.cuts.AddSale(ctx, s.today(), contract.TotalPrice)
	if err != nil {
		return err
	}
	if !applied {
		s.logger.Debug("no open cut for sale", zap.String("contract_id", contract.ID))
	}
	return nil
}

// AddPayment folds one payment into today's open cut. The counted status
// set is wider than for sales: payments recorded before final contract
// approval still count.
func (s *SalesCutService) AddPayment(ctx context.Context, payment *domain.Payment) error {
	if !payment.CountsForCollections() {
		return nil
	}
	if s.alreadySeen(ctx, "salescut:payment:"+payment.PaymentScheduleID+":"+payment.ID) {
		return nil
	}
	applied, err := s.cuts.AddPayment(ctx, s.today(), payment.Amount)
	if err != nil {
		return err
	}
	if !applied {
		s.logger.Debug("no open cut for payment", zap.String("payment_id", payment.ID))
	}
	return nil
}

// HandleContractCreated is the dispatcher subscription for contract events.
// Aggregation failures are logged and swallowed: the contract write that
// triggered the event must never fail on its side effect.
func (s *SalesCutService) HandleContractCreated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.ContractCreatedPayload)
	if !ok {
		s.logger.Warn("unexpected contract event payload", zap.String("event_id", event.ID))
		return nil
	}
	if err := s.AddSale(ctx, &payload.Contract); err != nil {
		s.logger.Error("sales aggregation failed",
			zap.String("contract_id", payload.Contract.ID),
			zap.Error(err))
	}
	return nil
}

// HandlePaymentRecorded is the dispatcher subscription for payment events.
func (s *SalesCutService) HandlePaymentRecorded(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.PaymentRecordedPayload)
	if !ok {
		s.logger.Warn("unexpected payment event payload", zap.String("event_id", event.ID))
		return nil
	}
	if err := s.AddPayment(ctx, &payload.Payment); err != nil {
		s.logger.Error("payment aggregation failed",
			zap.String("payment_id", payload.Payment.ID),
			zap.Error(err))
	}
	return nil
}

func (s *SalesCutService) alreadySeen(ctx context.Context, key string) bool {
	if s.dedup == nil {
		return false
	}
	seen, err := s.dedup.SeenBefore(ctx, key)
	if err != nil {
		s.logger.Warn("dedup check failed; counting anyway", zap.String("key", key), zap.Error(err))
		return false
	}
	return seen
}

func (s *SalesCutService) today() time.Time {
	now := s.now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}
