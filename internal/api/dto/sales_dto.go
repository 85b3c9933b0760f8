package dto

import (
	"time"

	"github.com/solterra/operations-service/internal/domain"
)

// CreateContractRequest payload.
type CreateContractRequest struct {
	LotID      string                `json:"lot_id"`
	ClientID   string                `json:"client_id"`
	Status     domain.ContractStatus `json:"status"`
	TotalPrice float64               `json:"total_price"`
}

// ContractResponse response.
type ContractResponse struct {
	ID         string                `json:"id"`
	LotID      string                `json:"lot_id"`
	ClientID   string                `json:"client_id"`
	Status     domain.ContractStatus `json:"status"`
	TotalPrice float64               `json:"total_price"`
	CreatedAt  time.Time             `json:"created_at"`
}

// RecordPaymentRequest payload.
type RecordPaymentRequest struct {
	PaymentScheduleID string  `json:"payment_schedule_id"`
	ContractID        string  `json:"contract_id"`
	Amount            float64 `json:"amount"`
	Method            string  `json:"method"`
}

// PaymentResponse response.
type PaymentResponse struct {
	ID                string                `json:"id"`
	PaymentScheduleID string                `json:"payment_schedule_id"`
	ContractID        string                `json:"contract_id"`
	ContractStatus    domain.ContractStatus `json:"contract_status"`
	Amount            float64               `json:"amount"`
	Method            string                `json:"method"`
	ReceivedAt        time.Time             `json:"received_at"`
}

// SalesCutResponse response.
type SalesCutResponse struct {
	ID            string                `json:"id"`
	CutDate       string                `json:"cut_date"`
	Status        domain.SalesCutStatus `json:"status"`
	SalesCount    int64                 `json:"sales_count"`
	SalesTotal    float64               `json:"sales_total"`
	PaymentsCount int64                 `json:"payments_count"`
	PaymentsTotal float64               `json:"payments_total"`
	ClosedAt      *time.Time            `json:"closed_at,omitempty"`
}
