package domain

import "time"

// Payment records money received against a contract's payment schedule.
type Payment struct {
	ID                string
	PaymentScheduleID string
	ContractID        string
	// ContractStatus is a snapshot of the contract state at payment time.
	// Payments may legitimately arrive before final contract approval, so
	// the counted set is broader than the sales set.
	ContractStatus ContractStatus
	Amount         float64
	Method         string
	ReceivedBy     string
	ReceivedAt     time.Time
	CreatedAt      time.Time
}

// CountsForCollections reports whether the payment participates in the
// daily payment aggregation.
func (p *Payment) CountsForCollections() bool {
	if p == nil {
		return false
	}
	return p.ContractStatus == ContractStatusVigente || p.ContractStatus == ContractStatusPendienteAprobacion
}
