package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product food types.
const (
	FoodTypeVeg    = "veg"
	FoodTypeNonVeg = "non_veg"
)

// Product is a menu entry. Order creation re-prices items from this row, so
// Price is the only price the system trusts.
type Product struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	TenantID  uint            `gorm:"index;not null" json:"tenant_id"`
	Name      string          `gorm:"type:varchar(255);not null" json:"name"`
	Category  string          `gorm:"type:varchar(100);not null" json:"category"`
	Price     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	FoodType  string          `gorm:"type:varchar(10);not null;default:'veg'" json:"food_type"`
	Available bool            `gorm:"not null;default:true" json:"available"`
	CreatedAt time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time       `gorm:"not null" json:"updated_at"`
}
