package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/befoodie/pos-backend/middlewares"
	"github.com/befoodie/pos-backend/services"
	"github.com/befoodie/pos-backend/utils"
)

type SessionController struct {
	TableSessions *services.TableSessionService
	Sessions      *services.OperationalSessionService
}

func NewSessionController(tableSessions *services.TableSessionService, sessions *services.OperationalSessionService) *SessionController {
	return &SessionController{TableSessions: tableSessions, Sessions: sessions}
}

// GetAllSessions -> list table sessions for the admin dashboard.
func (sc *SessionController) GetAllSessions(c *gin.Context) {
	tenant := middlewares.MustTenant(c)

	sessions, err := sc.TableSessions.ListSessions(tenant.ID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of table sessions", sessions)
}

// PaySession -> settle a table's bill. Terminal; cascades the bill's orders
// to Paid.
func (sc *SessionController) PaySession(c *gin.Context) {
	tenant := middlewares.MustTenant(c)

	var req struct {
		SessionID string `json:"session_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondErrorCode(c, http.StatusBadRequest, err)
		return
	}

	session, err := sc.TableSessions.MarkPaid(tenant.ID, req.SessionID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Table session paid", session)
}

// SessionStatus -> authoritative poll endpoint for displays; push events are
// only hints to call this again.
func (sc *SessionController) SessionStatus(c *gin.Context) {
	tenant := middlewares.MustTenant(c)

	snapshot, err := sc.Sessions.Status(tenant.ID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Session status", snapshot)
}
