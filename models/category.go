package models

import "time"

type Category struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	TenantID  uint      `gorm:"not null;uniqueIndex:idx_category_tenant_name" json:"tenant_id"`
	Name      string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_category_tenant_name" json:"name"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}
