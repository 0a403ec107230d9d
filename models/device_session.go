package models

import "time"

// DeviceSession records one login on one device. Tokens reference it by
// SessionKey; it is never reused across logins so each device can be audited
// and revoked independently.
type DeviceSession struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	SessionKey        string    `gorm:"type:varchar(36);uniqueIndex;not null" json:"session_key"`
	TenantID          uint      `gorm:"index;not null" json:"tenant_id"`
	Role              string    `gorm:"type:varchar(20);not null" json:"role"`
	DeviceFingerprint string    `gorm:"type:varchar(255)" json:"device_fingerprint"`
	LastActiveAt      time.Time `gorm:"not null" json:"last_active_at"`
	IsActive          bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt         time.Time `gorm:"not null" json:"created_at"`
}
