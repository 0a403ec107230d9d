package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/befoodie/pos-backend/middlewares"
	"github.com/befoodie/pos-backend/services"
	"github.com/befoodie/pos-backend/utils"
)

type AuthController struct {
	DB       *gorm.DB
	Tokens   *utils.TokenCodec
	Devices  *services.DeviceSessionService
	Sessions *services.OperationalSessionService
}

func NewAuthController(db *gorm.DB, tokens *utils.TokenCodec, devices *services.DeviceSessionService, sessions *services.OperationalSessionService) *AuthController {
	return &AuthController{DB: db, Tokens: tokens, Devices: devices, Sessions: sessions}
}

// Login verifies the owner password or staff PIN and issues a capability
// token bound to a fresh device session. Staff logins additionally require an
// open business day; a correct PIN before start-of-day gets a distinct
// "system not yet opened" failure.
func (ac *AuthController) Login(c *gin.Context) {
	tenant := middlewares.MustTenant(c)

	var req struct {
		Role        string `json:"role" binding:"required"`
		Password    string `json:"password"`
		Pin         string `json:"pin"`
		Fingerprint string `json:"device_fingerprint"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondErrorCode(c, http.StatusBadRequest, err)
		return
	}

	// One generic failure for bad credentials; never reveal which field.
	invalidCreds := utils.NewAppError(utils.KindAuthentication, "invalid credentials")

	switch req.Role {
	case utils.RoleOwner:
		if !utils.VerifySecret(req.Password, tenant.OwnerPasswordHash) {
			utils.RespondError(c, invalidCreds)
			return
		}
	case utils.RoleStaff:
		if !utils.VerifySecret(req.Pin, tenant.StaffPinHash) {
			utils.RespondError(c, invalidCreds)
			return
		}
		status, err := ac.Sessions.Status(tenant.ID)
		if err != nil {
			utils.RespondError(c, err)
			return
		}
		if !status.IsSystemOpen {
			utils.RespondError(c, utils.NewAppError(utils.KindAuthentication, "system not yet opened for today"))
			return
		}
	default:
		utils.RespondError(c, utils.NewAppError(utils.KindValidation, "role must be owner or staff"))
		return
	}

	device, err := ac.Devices.Create(tenant.ID, req.Role, req.Fingerprint)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	token, err := ac.Tokens.Sign(req.Role, tenant.ID, tenant.Slug, device.SessionKey)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.InfoLogger.Printf("Login: tenant=%s role=%s device=%s", tenant.Slug, req.Role, device.SessionKey)

	utils.RespondJSON(c, http.StatusOK, "Login successful", gin.H{
		"token": token,
		"role":  req.Role,
	})
}

// Logout revokes the presented token and deactivates its device session.
func (ac *AuthController) Logout(c *gin.Context) {
	claims, ok := middlewares.ClaimsFrom(c)
	if !ok {
		utils.RespondError(c, utils.NewAppError(utils.KindAuthentication, "not logged in"))
		return
	}

	// Revoke the token in whichever form it arrived: header, cookie or query.
	if token := middlewares.TokenFromRequest(c); token != "" {
		utils.BlacklistToken(token, ac.Tokens.TTL())
	}
	if err := ac.Devices.Deactivate(claims.DeviceSessionKey); err != nil {
		utils.ErrorLogger.Printf("deactivating device session %s: %v", claims.DeviceSessionKey, err)
	}

	utils.RespondJSON(c, http.StatusOK, "Logged out", nil)
}

// Status reports authentication and system state for the current tenant.
// A token minted for another tenant reports as unauthenticated here.
func (ac *AuthController) Status(c *gin.Context) {
	tenant := middlewares.MustTenant(c)

	snapshot, err := ac.Sessions.Status(tenant.ID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	authenticated := false
	role := ""
	if claims, ok := middlewares.ClaimsFrom(c); ok {
		authenticated = true
		role = claims.Role
	}

	utils.RespondJSON(c, http.StatusOK, "Auth status", gin.H{
		"authenticated":       authenticated,
		"role":                role,
		"is_system_open":      snapshot.IsSystemOpen,
		"is_accepting_orders": snapshot.IsAcceptingOrders,
		"business_date":       snapshot.BusinessDate,
	})
}

// Heartbeat refreshes the caller's device session explicitly.
func (ac *AuthController) Heartbeat(c *gin.Context) {
	claims, _ := middlewares.ClaimsFrom(c)
	if err := ac.Devices.Heartbeat(claims.DeviceSessionKey); err != nil {
		// A heartbeat failure is logged, never surfaced as a request failure.
		utils.ErrorLogger.Printf("heartbeat for %s: %v", claims.DeviceSessionKey, err)
	}
	utils.RespondJSON(c, http.StatusOK, "Heartbeat", nil)
}
