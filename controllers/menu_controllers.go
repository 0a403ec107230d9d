package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/befoodie/pos-backend/middlewares"
	"github.com/befoodie/pos-backend/models"
	"github.com/befoodie/pos-backend/realtime"
	"github.com/befoodie/pos-backend/utils"
)

type MenuController struct {
	DB          *gorm.DB
	Broadcaster realtime.Broadcaster
}

func NewMenuController(db *gorm.DB, broadcaster realtime.Broadcaster) *MenuController {
	return &MenuController{DB: db, Broadcaster: broadcaster}
}

// GetMenu -> the tenant's products, for guest menus and the admin screen.
func (mc *MenuController) GetMenu(c *gin.Context) {
	tenant := middlewares.MustTenant(c)

	var products []models.Product
	if err := mc.DB.Where("tenant_id = ?", tenant.ID).
		Order("category, name").Find(&products).Error; err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu", products)
}

// GetCategories -> the tenant's category list.
func (mc *MenuController) GetCategories(c *gin.Context) {
	tenant := middlewares.MustTenant(c)

	var categories []models.Category
	if err := mc.DB.Where("tenant_id = ?", tenant.ID).
		Order("name").Find(&categories).Error; err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Categories", categories)
}

// CreateProduct -> owner adds a menu entry.
func (mc *MenuController) CreateProduct(c *gin.Context) {
	tenant := middlewares.MustTenant(c)

	var req struct {
		Name     string          `json:"name" binding:"required"`
		Category string          `json:"category" binding:"required"`
		Price    decimal.Decimal `json:"price" binding:"required"`
		FoodType string          `json:"food_type"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondErrorCode(c, http.StatusBadRequest, err)
		return
	}
	if req.Price.IsNegative() {
		utils.RespondError(c, utils.NewAppError(utils.KindValidation, "price cannot be negative"))
		return
	}

	product := models.Product{
		TenantID:  tenant.ID,
		Name:      req.Name,
		Category:  req.Category,
		Price:     req.Price,
		FoodType:  req.FoodType,
		Available: true,
	}
	if product.FoodType == "" {
		product.FoodType = models.FoodTypeVeg
	}

	if err := mc.DB.Create(&product).Error; err != nil {
		utils.RespondError(c, err)
		return
	}

	mc.Broadcaster.Publish(tenant.ID, realtime.EventMenuChanged, product)
	utils.RespondJSON(c, http.StatusCreated, "Product created", product)
}

// ToggleProduct -> flip a product's availability.
func (mc *MenuController) ToggleProduct(c *gin.Context) {
	tenant := middlewares.MustTenant(c)

	productID, err := strconv.ParseUint(c.Param("product_id"), 10, 32)
	if err != nil {
		utils.RespondError(c, utils.NewAppError(utils.KindValidation, "invalid product id"))
		return
	}

	var product models.Product
	if err := mc.DB.Where("id = ? AND tenant_id = ?", productID, tenant.ID).
		First(&product).Error; err != nil {
		utils.RespondError(c, utils.NewAppError(utils.KindNotFound, "product not found"))
		return
	}

	product.Available = !product.Available
	if err := mc.DB.Save(&product).Error; err != nil {
		utils.RespondError(c, err)
		return
	}

	mc.Broadcaster.Publish(tenant.ID, realtime.EventMenuChanged, product)
	utils.RespondJSON(c, http.StatusOK, "Product availability updated", product)
}

// UpdateProduct -> owner edits a menu entry. Only the fields present in the
// request change.
func (mc *MenuController) UpdateProduct(c *gin.Context) {
	tenant := middlewares.MustTenant(c)

	productID, err := strconv.ParseUint(c.Param("product_id"), 10, 32)
	if err != nil {
		utils.RespondError(c, utils.NewAppError(utils.KindValidation, "invalid product id"))
		return
	}

	var req struct {
		Name     *string          `json:"name"`
		Category *string          `json:"category"`
		Price    *decimal.Decimal `json:"price"`
		FoodType *string          `json:"food_type"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondErrorCode(c, http.StatusBadRequest, err)
		return
	}

	var product models.Product
	if err := mc.DB.Where("id = ? AND tenant_id = ?", productID, tenant.ID).
		First(&product).Error; err != nil {
		utils.RespondError(c, utils.NewAppError(utils.KindNotFound, "product not found"))
		return
	}

	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Category != nil {
		product.Category = *req.Category
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			utils.RespondError(c, utils.NewAppError(utils.KindValidation, "price cannot be negative"))
			return
		}
		product.Price = *req.Price
	}
	if req.FoodType != nil {
		if *req.FoodType != models.FoodTypeVeg && *req.FoodType != models.FoodTypeNonVeg {
			utils.RespondError(c, utils.NewAppError(utils.KindValidation, "food_type must be veg or non_veg"))
			return
		}
		product.FoodType = *req.FoodType
	}

	if err := mc.DB.Save(&product).Error; err != nil {
		utils.RespondError(c, err)
		return
	}

	mc.Broadcaster.Publish(tenant.ID, realtime.EventMenuChanged, product)
	utils.RespondJSON(c, http.StatusOK, "Product updated", product)
}

// DeleteProduct -> owner removes a menu entry. Existing order items keep
// their denormalized name and price.
func (mc *MenuController) DeleteProduct(c *gin.Context) {
	tenant := middlewares.MustTenant(c)

	productID, err := strconv.ParseUint(c.Param("product_id"), 10, 32)
	if err != nil {
		utils.RespondError(c, utils.NewAppError(utils.KindValidation, "invalid product id"))
		return
	}

	res := mc.DB.Where("id = ? AND tenant_id = ?", productID, tenant.ID).
		Delete(&models.Product{})
	if res.Error != nil {
		utils.RespondError(c, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		utils.RespondError(c, utils.NewAppError(utils.KindNotFound, "product not found"))
		return
	}

	mc.Broadcaster.Publish(tenant.ID, realtime.EventMenuChanged, gin.H{"deleted": productID})
	utils.RespondJSON(c, http.StatusOK, "Product deleted", nil)
}

// CreateCategory -> owner adds a category.
func (mc *MenuController) CreateCategory(c *gin.Context) {
	tenant := middlewares.MustTenant(c)

	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondErrorCode(c, http.StatusBadRequest, err)
		return
	}

	category := models.Category{TenantID: tenant.ID, Name: req.Name}
	if err := mc.DB.Create(&category).Error; err != nil {
		utils.RespondError(c, utils.NewAppError(utils.KindInvariant, "category already exists"))
		return
	}

	mc.Broadcaster.Publish(tenant.ID, realtime.EventMenuChanged, category)
	utils.RespondJSON(c, http.StatusCreated, "Category created", category)
}

// RenameCategory -> rename and re-point the products that use it.
func (mc *MenuController) RenameCategory(c *gin.Context) {
	tenant := middlewares.MustTenant(c)

	var req struct {
		OldName string `json:"old_name" binding:"required"`
		NewName string `json:"new_name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondErrorCode(c, http.StatusBadRequest, err)
		return
	}

	err := mc.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Category{}).
			Where("tenant_id = ? AND name = ?", tenant.ID, req.OldName).
			Update("name", req.NewName)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return utils.NewAppError(utils.KindNotFound, "category not found")
		}
		return tx.Model(&models.Product{}).
			Where("tenant_id = ? AND category = ?", tenant.ID, req.OldName).
			Update("category", req.NewName).Error
	})
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	mc.Broadcaster.Publish(tenant.ID, realtime.EventMenuChanged, gin.H{"renamed": req.NewName})
	utils.RespondJSON(c, http.StatusOK, "Category renamed", nil)
}

// DeleteCategory -> refuse while products still reference it.
func (mc *MenuController) DeleteCategory(c *gin.Context) {
	tenant := middlewares.MustTenant(c)
	name := c.Query("name")

	var count int64
	if err := mc.DB.Model(&models.Product{}).
		Where("tenant_id = ? AND category = ?", tenant.ID, name).
		Count(&count).Error; err != nil {
		utils.RespondError(c, err)
		return
	}
	if count > 0 {
		utils.RespondError(c, utils.NewAppError(utils.KindInvariant, "category is not empty"))
		return
	}

	res := mc.DB.Where("tenant_id = ? AND name = ?", tenant.ID, name).
		Delete(&models.Category{})
	if res.Error != nil {
		utils.RespondError(c, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		utils.RespondError(c, utils.NewAppError(utils.KindNotFound, "category not found"))
		return
	}

	mc.Broadcaster.Publish(tenant.ID, realtime.EventMenuChanged, gin.H{"deleted": name})
	utils.RespondJSON(c, http.StatusOK, "Category deleted", nil)
}
