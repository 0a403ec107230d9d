package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DailySummary is the settlement record for one closed business day.
// Exactly one row per (tenant, business date); close-day upserts it so a
// retried close never duplicates or fails on the unique index.
type DailySummary struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	TenantID     uint   `gorm:"not null;uniqueIndex:idx_summary_tenant_date" json:"tenant_id"`
	BusinessDate string `gorm:"type:varchar(10);not null;uniqueIndex:idx_summary_tenant_date" json:"business_date"`
	// TotalOrders counts settled table sessions, not individual order rows.
	TotalOrders       int64           `gorm:"not null" json:"total_orders"`
	TotalRevenue      decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"total_revenue"`
	CounterSessions   int64           `gorm:"not null" json:"counter_sessions"`
	TableSessions     int64           `gorm:"not null" json:"table_sessions"`
	AverageOrderValue decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"average_order_value"`
	ClosedAt          time.Time       `gorm:"not null" json:"closed_at"`
}
