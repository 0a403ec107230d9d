package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Table session statuses. Paid is terminal.
const (
	TableSessionOpen = "open"
	TableSessionPaid = "paid"
)

// CounterTableID is the reserved table ID for walk-up counter orders.
const CounterTableID = "counter"

// TableSession is one table's running bill inside one operational session.
// At most one open session per (tenant, operational session, table): OpenKey
// holds that triple while open and goes NULL on settlement, so the unique
// index admits exactly one open claimant.
type TableSession struct {
	ID                   uint            `gorm:"primaryKey" json:"id"`
	PublicID             string          `gorm:"type:varchar(36);uniqueIndex;not null" json:"public_id"`
	TenantID             uint            `gorm:"index;not null" json:"tenant_id"`
	OperationalSessionID uint            `gorm:"index;not null" json:"operational_session_id"`
	TableID              string          `gorm:"type:varchar(50);not null" json:"table_id"`
	Status               string          `gorm:"type:varchar(10);not null;default:'open'" json:"status"`
	OpenKey              *string         `gorm:"type:varchar(120);uniqueIndex" json:"-"`
	TotalAmount          decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"total_amount"`
	CreatedAt            time.Time       `gorm:"not null" json:"created_at"`
	PaidAt               *time.Time      `json:"paid_at,omitempty"`
}

// TableSessionOpenKey builds the uniqueness claim for an open session.
func TableSessionOpenKey(tenantID, opSessionID uint, tableID string) string {
	return fmt.Sprintf("%d:%d:%s", tenantID, opSessionID, tableID)
}

// IsCounter reports whether this is a walk-up counter bill.
func (ts *TableSession) IsCounter() bool {
	return ts.TableID == CounterTableID
}
