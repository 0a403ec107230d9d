package database

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/befoodie/pos-backend/models"
	"github.com/befoodie/pos-backend/utils"
)

// Migrate creates/updates the schema, including the unique claim indexes the
// session invariants rely on.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Tenant{},
		&models.OperationalSession{},
		&models.TableSession{},
		&models.Order{},
		&models.OrderItem{},
		&models.DeviceSession{},
		&models.DailySummary{},
		&models.Product{},
		&models.Category{},
	)
}

// Seed creates the demo tenant with a starter menu when the tenant table is
// empty. Demo credentials: owner password "owner123", staff PIN "1234".
func Seed(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Tenant{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	ownerHash, err := utils.HashSecret("owner123")
	if err != nil {
		return err
	}
	pinHash, err := utils.HashSecret("1234")
	if err != nil {
		return err
	}

	tenant := models.Tenant{
		Slug:              "demo",
		Name:              "BeFoodie Demo",
		FoodPolicy:        models.FoodPolicyMixed,
		OwnerPasswordHash: ownerHash,
		StaffPinHash:      pinHash,
		IsAcceptingOrders: true,
	}
	if err := db.Create(&tenant).Error; err != nil {
		return err
	}

	categories := []string{"Veg Burger", "Non Veg Burger", "French Fries", "Shakes", "Hot Coffee"}
	for _, name := range categories {
		if err := db.Create(&models.Category{TenantID: tenant.ID, Name: name}).Error; err != nil {
			return err
		}
	}

	products := []models.Product{
		{Name: "Classic Veg Burger", Category: "Veg Burger", Price: decimal.NewFromInt(99), FoodType: models.FoodTypeVeg},
		{Name: "Paneer Tikka Burger", Category: "Veg Burger", Price: decimal.NewFromInt(129), FoodType: models.FoodTypeVeg},
		{Name: "Chicken Crunch Burger", Category: "Non Veg Burger", Price: decimal.NewFromInt(149), FoodType: models.FoodTypeNonVeg},
		{Name: "Peri Peri Fries", Category: "French Fries", Price: decimal.NewFromInt(89), FoodType: models.FoodTypeVeg},
		{Name: "Oreo Shake", Category: "Shakes", Price: decimal.NewFromInt(119), FoodType: models.FoodTypeVeg},
		{Name: "Cappuccino", Category: "Hot Coffee", Price: decimal.NewFromInt(79), FoodType: models.FoodTypeVeg},
	}
	for _, product := range products {
		product.TenantID = tenant.ID
		product.Available = true
		if err := db.Create(&product).Error; err != nil {
			return err
		}
	}

	utils.InfoLogger.Printf("Seeded demo tenant with %d products", len(products))
	return nil
}
