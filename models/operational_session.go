package models

import "time"

// Operational session statuses.
const (
	OpSessionActive = "active"
	OpSessionClosed = "closed"
)

// OperationalSession is one business day for one tenant. At most one row per
// tenant is active: ActiveKey holds the tenant ID while the session is active
// and goes NULL on close, so the unique index admits exactly one claimant.
type OperationalSession struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	TenantID     uint       `gorm:"index;not null" json:"tenant_id"`
	BusinessDate string     `gorm:"type:varchar(10);not null" json:"business_date"`
	Status       string     `gorm:"type:varchar(10);not null;default:'active'" json:"status"`
	ActiveKey    *uint      `gorm:"uniqueIndex" json:"-"`
	CreatedAt    time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"not null" json:"-"`
	ClosedAt     *time.Time `json:"closed_at,omitempty"`
}
