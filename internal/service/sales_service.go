package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/solterra/operations-service/internal/domain"
	"github.com/solterra/operations-service/internal/events"
	"github.com/solterra/operations-service/internal/repository"
	apperrors "github.com/solterra/operations-service/pkg/util"
)

// SalesService owns contract creation and payment recording, the two write
// paths that feed the daily cut. Aggregation runs as a synchronous event
// side effect and never fails the primary write.
type SalesService struct {
	contracts  repository.ContractRepository
	payments   repository.PaymentRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// SalesDependencies bundles repositories for the sales service.
type SalesDependencies struct {
	ContractRepo repository.ContractRepository
	PaymentRepo  repository.PaymentRepository
	Dispatcher   events.Dispatcher
	Logger       *zap.Logger
	Clock        func() time.Time
}

// ContractCreateInput describes contract creation payload.
type ContractCreateInput struct {
	LotID      string
	ClientID   string
	Status     domain.ContractStatus
	TotalPrice float64
}

// PaymentRecordInput describes payment recording payload.
type PaymentRecordInput struct {
	PaymentScheduleID string
	ContractID        string
	Amount            float64
	Method            string
}

// NewSalesService constructs the service.
func NewSalesService(deps SalesDependencies) *SalesService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &SalesService{
		contracts:  deps.ContractRepo,
		payments:   deps.PaymentRepo,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		now:        clock,
	}
}

// CreateContract persists a contract and publishes contract_created.
func (s *SalesService) CreateContract(ctx context.Context, createdBy string, input ContractCreateInput) (*domain.Contract, error) {
	if strings.TrimSpace(input.LotID) == "" || strings.TrimSpace(input.ClientID) == "" {
		return nil, apperrors.NewValidationError("lot_id and client_id required", nil)
	}
	if input.TotalPrice <= 0 {
		return nil, apperrors.NewValidationError("total_price must be positive", map[string]any{"total_price": input.TotalPrice})
	}
	status := input.Status
	if status == "" {
		status = domain.ContractStatusReservado
	}

	contract := &domain.Contract{
		LotID:      input.LotID,
		ClientID:   input.ClientID,
		Status:     status,
		TotalPrice: input.TotalPrice,
		CreatedBy:  createdBy,
	}
	if err := s.contracts.Create(ctx, contract); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, events.EventContractCreated, contract.ID, createdBy, events.ContractCreatedPayload{Contract: *contract})
	return contract, nil
}

// RecordPayment persists a payment against a contract, snapshotting the
// contract status at payment time, and publishes payment_recorded.
func (s *SalesService) RecordPayment(ctx context.Context, receivedBy string, input PaymentRecordInput) (*domain.Payment, error) {
	if strings.TrimSpace(input.PaymentScheduleID) == "" {
		return nil, apperrors.NewValidationError("payment_schedule_id required", nil)
	}
	if input.Amount <= 0 {
		return nil, apperrors.NewValidationError("amount must be positive", map[string]any{"amount": input.Amount})
	}

	contract, err := s.contracts.GetByID(ctx, input.ContractID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("contract", map[string]any{"contract_id": input.ContractID})
		}
		return nil, apperrors.MapError(err)
	}

	payment := &domain.Payment{
		PaymentScheduleID: input.PaymentScheduleID,
		ContractID:        contract.ID,
		ContractStatus:    contract.Status,
		Amount:            input.Amount,
		Method:            input.Method,
		ReceivedBy:        receivedBy,
		ReceivedAt:        s.now(),
	}
	if err := s.payments.Create(ctx, payment); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, events.EventPaymentRecorded, payment.ID, receivedBy, events.PaymentRecordedPayload{Payment: *payment})
	return payment, nil
}

func (s *SalesService) publish(ctx context.Context, eventType events.EventType, entityID, actorID string, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		EntityID:  entityID,
		Actor:     events.Actor{Type: domain.SubjectTypeAgent, AgentID: &actorID},
		Timestamp: s.now(),
		Payload:   payload,
	})
}
