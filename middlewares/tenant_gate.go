package middlewares

import (
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/befoodie/pos-backend/models"
	"github.com/befoodie/pos-backend/monitoring"
	"github.com/befoodie/pos-backend/services"
	"github.com/befoodie/pos-backend/utils"
)

// Context keys set by the gate.
const (
	CtxTenant = "tenant"
	CtxClaims = "claims"
	CtxRole   = "role"
)

// TenantGate resolves the tenant for every tenant-scoped route and enforces
// that the presented capability token belongs to that tenant and satisfies
// the route's required roles.
type TenantGate struct {
	DB        *gorm.DB
	Tokens    *utils.TokenCodec
	Devices   *services.DeviceSessionService
	CheckMode string // soft | strict device-session validation
}

func NewTenantGate(db *gorm.DB, tokens *utils.TokenCodec, devices *services.DeviceSessionService, checkMode string) *TenantGate {
	return &TenantGate{DB: db, Tokens: tokens, Devices: devices, CheckMode: checkMode}
}

// ResolveTenant loads the tenant named by the :slug route param. Unknown
// slugs are a plain 404; no token is required yet.
func (g *TenantGate) ResolveTenant() gin.HandlerFunc {
	return func(c *gin.Context) {
		slug := c.Param("slug")

		var tenant models.Tenant
		if err := g.DB.Where("slug = ?", slug).First(&tenant).Error; err != nil {
			utils.RespondError(c, utils.NewAppError(utils.KindNotFound, "restaurant not found"))
			c.Abort()
			return
		}

		c.Set(CtxTenant, &tenant)
		c.Next()
	}
}

// TokenFromRequest extracts the capability token however the client sent it:
// Authorization header, cookie, or query parameter (websocket clients cannot
// set headers).
func TokenFromRequest(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		return strings.TrimPrefix(header, "Bearer ")
	}
	if cookie, err := c.Cookie("auth-token"); err == nil {
		return cookie
	}
	return c.Query("token")
}

// RequireRole verifies the token and allows only the listed roles. A token
// minted for another tenant is a cross-tenant violation: denied and logged
// distinctly from a plain role mismatch, never silently reused.
func (g *TenantGate) RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenant := MustTenant(c)

		tokenString := TokenFromRequest(c)
		if tokenString == "" {
			monitoring.AuthDenials.WithLabelValues(utils.KindAuthentication).Inc()
			utils.RespondError(c, utils.NewAppError(utils.KindAuthentication, "missing token"))
			c.Abort()
			return
		}

		claims, err := g.Tokens.Verify(tokenString)
		if err != nil {
			monitoring.AuthDenials.WithLabelValues(utils.KindAuthentication).Inc()
			utils.RespondError(c, utils.NewAppError(utils.KindAuthentication, "invalid or expired token"))
			c.Abort()
			return
		}

		if claims.TenantSlug != tenant.Slug || claims.TenantID != tenant.ID {
			utils.ErrorLogger.Printf("SECURITY cross-tenant token use: token tenant=%s request tenant=%s ip=%s",
				claims.TenantSlug, tenant.Slug, c.ClientIP())
			monitoring.AuthDenials.WithLabelValues(utils.KindAuthorization).Inc()
			utils.RespondError(c, utils.NewAppError(utils.KindAuthorization, "token does not belong to this restaurant"))
			c.Abort()
			return
		}

		allowed := false
		for _, role := range roles {
			if claims.Role == role {
				allowed = true
				break
			}
		}
		if !allowed {
			utils.ErrorLogger.Printf("SECURITY role mismatch: tenant=%s role=%s path=%s",
				tenant.Slug, claims.Role, c.Request.URL.Path)
			monitoring.AuthDenials.WithLabelValues(utils.KindAuthorization).Inc()
			utils.RespondError(c, utils.NewAppError(utils.KindAuthorization, "insufficient role"))
			c.Abort()
			return
		}

		if !g.checkDevice(c, claims.DeviceSessionKey, tenant.Slug) {
			return
		}

		c.Set(CtxClaims, claims)
		c.Set(CtxRole, claims.Role)
		c.Next()
	}
}

// checkDevice validates the device session behind the token. In soft mode a
// stale or unreachable registry only logs; in strict mode it blocks. The
// opportunistic heartbeat never fails the parent request either way.
func (g *TenantGate) checkDevice(c *gin.Context, sessionKey, slug string) bool {
	valid, err := g.Devices.IsValid(sessionKey)
	if err != nil {
		utils.ErrorLogger.Printf("device registry unreachable for tenant %s: %v", slug, err)
		if g.CheckMode == "strict" {
			utils.RespondError(c, utils.NewAppError(utils.KindUnavailable, "device registry unavailable"))
			c.Abort()
			return false
		}
		return true
	}
	if !valid {
		utils.ErrorLogger.Printf("SECURITY invalid device session %s for tenant %s", sessionKey, slug)
		if g.CheckMode == "strict" {
			monitoring.AuthDenials.WithLabelValues(utils.KindAuthentication).Inc()
			utils.RespondError(c, utils.NewAppError(utils.KindAuthentication, "device session expired"))
			c.Abort()
			return false
		}
		return true
	}

	if err := g.Devices.Heartbeat(sessionKey); err != nil {
		utils.ErrorLogger.Printf("heartbeat failed for device session %s: %v", sessionKey, err)
	}
	return true
}

// OptionalAuth attaches claims when a valid same-tenant token is present but
// never blocks. Used by the status endpoint.
func (g *TenantGate) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tenant := MustTenant(c)

		if tokenString := TokenFromRequest(c); tokenString != "" {
			if claims, err := g.Tokens.Verify(tokenString); err == nil &&
				claims.TenantSlug == tenant.Slug && claims.TenantID == tenant.ID {
				c.Set(CtxClaims, claims)
				c.Set(CtxRole, claims.Role)
			}
		}
		c.Next()
	}
}

// MustTenant returns the tenant resolved by ResolveTenant.
func MustTenant(c *gin.Context) *models.Tenant {
	return c.MustGet(CtxTenant).(*models.Tenant)
}

// ClaimsFrom returns the verified claims, if any.
func ClaimsFrom(c *gin.Context) (*utils.CapabilityClaims, bool) {
	value, exists := c.Get(CtxClaims)
	if !exists {
		return nil, false
	}
	claims, ok := value.(*utils.CapabilityClaims)
	return claims, ok
}
