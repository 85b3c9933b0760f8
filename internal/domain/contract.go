package domain

import "time"

// ContractStatus enumerates sales-contract states.
type ContractStatus string

const (
	ContractStatusReservado           ContractStatus = "reservado"
	ContractStatusPendienteAprobacion ContractStatus = "pendiente_aprobacion"
	ContractStatusVigente             ContractStatus = "vigente"
	ContractStatusCancelado           ContractStatus = "cancelado"
	ContractStatusFinalizado          ContractStatus = "finalizado"
)

// Contract is a sales contract over a lot or unit.
type Contract struct {
	ID         string
	LotID      string
	ClientID   string
	Status     ContractStatus
	TotalPrice float64
	CreatedBy  string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// CountsForSales reports whether the contract participates in the
// daily sales aggregation. Only active contracts are counted.
func (c *Contract) CountsForSales() bool {
	return c != nil && c.Status == ContractStatusVigente
}
