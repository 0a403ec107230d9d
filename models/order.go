package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order statuses. Paid is reached through the table-session cascade, never by
// a direct status update.
const (
	OrderPending   = "Pending"
	OrderAccepted  = "Accepted"
	OrderReady     = "Ready"
	OrderServed    = "Served"
	OrderPaid      = "Paid"
	OrderCancelled = "Cancelled"
)

// orderTransitions lists the staff/owner-driven transitions. No skipping
// forward, no moving backward, terminal states stay terminal.
var orderTransitions = map[string][]string{
	OrderPending:  {OrderAccepted, OrderCancelled},
	OrderAccepted: {OrderReady, OrderCancelled},
	OrderReady:    {OrderServed},
}

// Order is immutable in its item list once created; only Status moves
// afterwards, plus the owning table session's running total at creation time.
type Order struct {
	ID             uint `gorm:"primaryKey" json:"id"`
	TenantID       uint `gorm:"index;not null" json:"tenant_id"`
	TableSessionID uint `gorm:"index;not null" json:"table_session_id"`
	// TableID is denormalized for kitchen/admin displays.
	TableID    string          `gorm:"type:varchar(50);not null" json:"table_id"`
	Status     string          `gorm:"type:varchar(20);not null;default:'Pending'" json:"status"`
	TotalPrice decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"total_price"`
	CreatedAt  time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time       `gorm:"not null" json:"updated_at"`
	Items      []OrderItem     `gorm:"foreignKey:OrderID" json:"items"`
}

// CanTransition reports whether a direct status update from -> to is legal.
func CanTransition(from, to string) bool {
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminalOrderStatus reports whether no further transition is possible.
func IsTerminalOrderStatus(status string) bool {
	return status == OrderServed || status == OrderPaid || status == OrderCancelled
}

// IsValidOrderStatus reports whether status is one of the known values.
func IsValidOrderStatus(status string) bool {
	switch status {
	case OrderPending, OrderAccepted, OrderReady, OrderServed, OrderPaid, OrderCancelled:
		return true
	}
	return false
}
