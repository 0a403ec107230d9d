package models

import "time"

// Tenant food policies.
const (
	FoodPolicyVeg    = "veg"
	FoodPolicyNonVeg = "non_veg"
	FoodPolicyMixed  = "mixed"
)

// Tenant is one restaurant. Every other row in the system hangs off a tenant
// and every API route is scoped to one by slug.
type Tenant struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	Slug       string `gorm:"type:varchar(50);uniqueIndex;not null" json:"slug"`
	Name       string `gorm:"type:varchar(255);not null" json:"name"`
	FoodPolicy string `gorm:"type:varchar(10);not null;default:'mixed'" json:"food_policy"`

	OwnerPasswordHash string `gorm:"type:varchar(255);not null" json:"-"`
	StaffPinHash      string `gorm:"type:varchar(255);not null" json:"-"`

	// IsSystemOpen caches whether an active operational session exists.
	// The session row is the authority; this flag is for cheap reads only.
	IsSystemOpen      bool `gorm:"not null;default:false" json:"is_system_open"`
	IsAcceptingOrders bool `gorm:"not null;default:true" json:"is_accepting_orders"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}
