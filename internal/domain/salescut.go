package domain

import "time"

// SalesCutStatus is the lifecycle state of a daily cut.
type SalesCutStatus string

const (
	SalesCutStatusOpen   SalesCutStatus = "open"
	SalesCutStatusClosed SalesCutStatus = "closed"
)

// SalesCut is the rolling end-of-day aggregation record for sales and
// collections. At most one cut is open per calendar day; counters are only
// ever incremented while it stays open.
type SalesCut struct {
	ID            string
	CutDate       time.Time
	Status        SalesCutStatus
	SalesCount    int64
	SalesTotal    float64
	PaymentsCount int64
	PaymentsTotal float64
	ClosedAt      *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
