package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/befoodie/pos-backend/middlewares"
	"github.com/befoodie/pos-backend/models"
	"github.com/befoodie/pos-backend/realtime"
	"github.com/befoodie/pos-backend/services"
	"github.com/befoodie/pos-backend/utils"
)

type AdminController struct {
	DB          *gorm.DB
	Sessions    *services.OperationalSessionService
	Broadcaster realtime.Broadcaster
}

func NewAdminController(db *gorm.DB, sessions *services.OperationalSessionService, broadcaster realtime.Broadcaster) *AdminController {
	return &AdminController{DB: db, Sessions: sessions, Broadcaster: broadcaster}
}

// StartDay -> open a new business day. A second call while a day is open
// fails with already-open so the owner can tell it apart from success.
func (ac *AdminController) StartDay(c *gin.Context) {
	tenant := middlewares.MustTenant(c)

	session, err := ac.Sessions.StartDay(tenant.ID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Business day opened", gin.H{
		"operational_session_id": session.ID,
		"business_date":          session.BusinessDate,
	})
}

// CloseDay -> settle and close the current day. Safe to retry: a repeat call
// returns the summary already written.
func (ac *AdminController) CloseDay(c *gin.Context) {
	tenant := middlewares.MustTenant(c)

	summary, err := ac.Sessions.CloseDay(tenant.ID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Business day closed", summary)
}

// PauseOrders -> toggle order acceptance without closing the day.
func (ac *AdminController) PauseOrders(c *gin.Context) {
	tenant := middlewares.MustTenant(c)

	var req struct {
		IsAcceptingOrders *bool `json:"is_accepting_orders" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondErrorCode(c, http.StatusBadRequest, err)
		return
	}

	if err := ac.DB.Model(&models.Tenant{}).Where("id = ?", tenant.ID).
		Update("is_accepting_orders", *req.IsAcceptingOrders).Error; err != nil {
		utils.RespondError(c, err)
		return
	}

	ac.Broadcaster.Publish(tenant.ID, realtime.EventStatusSnapshot, gin.H{
		"is_accepting_orders": *req.IsAcceptingOrders,
	})
	utils.InfoLogger.Printf("Tenant %s accepting orders: %v", tenant.Slug, *req.IsAcceptingOrders)
	utils.RespondJSON(c, http.StatusOK, "Order acceptance updated", gin.H{
		"is_accepting_orders": *req.IsAcceptingOrders,
	})
}

// UpdateSecurity -> rotate the owner password or the staff PIN. The current
// owner password must be re-verified before a password change.
func (ac *AdminController) UpdateSecurity(c *gin.Context) {
	tenant := middlewares.MustTenant(c)

	var req struct {
		Type        string `json:"type" binding:"required"` // password | pin
		OldPassword string `json:"old_password"`
		NewPassword string `json:"new_password"`
		NewPin      string `json:"new_pin"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondErrorCode(c, http.StatusBadRequest, err)
		return
	}

	updates := map[string]interface{}{}

	switch req.Type {
	case "password":
		if req.OldPassword == "" || req.NewPassword == "" {
			utils.RespondError(c, utils.NewAppError(utils.KindValidation, "missing password fields"))
			return
		}
		if !utils.VerifySecret(req.OldPassword, tenant.OwnerPasswordHash) {
			utils.RespondError(c, utils.NewAppError(utils.KindAuthentication, "incorrect current password"))
			return
		}
		hashed, err := utils.HashSecret(req.NewPassword)
		if err != nil {
			utils.RespondError(c, err)
			return
		}
		updates["owner_password_hash"] = hashed
	case "pin":
		if len(req.NewPin) < 4 {
			utils.RespondError(c, utils.NewAppError(utils.KindValidation, "PIN must be at least 4 characters"))
			return
		}
		hashed, err := utils.HashSecret(req.NewPin)
		if err != nil {
			utils.RespondError(c, err)
			return
		}
		updates["staff_pin_hash"] = hashed
	default:
		utils.RespondError(c, utils.NewAppError(utils.KindValidation, "type must be password or pin"))
		return
	}

	if err := ac.DB.Model(&models.Tenant{}).Where("id = ?", tenant.ID).
		Updates(updates).Error; err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.InfoLogger.Printf("Tenant %s rotated %s credential", tenant.Slug, req.Type)
	utils.RespondJSON(c, http.StatusOK, "Security settings updated", nil)
}

// GetHistory -> daily summaries, newest first.
func (ac *AdminController) GetHistory(c *gin.Context) {
	tenant := middlewares.MustTenant(c)

	summaries, err := ac.Sessions.History(tenant.ID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Daily summaries", summaries)
}
