package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/befoodie/pos-backend/middlewares"
	"github.com/befoodie/pos-backend/services"
	"github.com/befoodie/pos-backend/utils"
)

type OrderController struct {
	Orders *services.OrderService
}

func NewOrderController(orders *services.OrderService) *OrderController {
	return &OrderController{Orders: orders}
}

// CreateOrder -> guest devices place an order for a table. No login needed;
// the acceptance gate (open day + not paused) is enforced by the service.
func (oc *OrderController) CreateOrder(c *gin.Context) {
	tenant := middlewares.MustTenant(c)

	var req struct {
		TableID string                      `json:"table_id" binding:"required"`
		Items   []services.OrderItemRequest `json:"items" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondErrorCode(c, http.StatusBadRequest, err)
		return
	}

	order, err := oc.Orders.CreateOrder(tenant.ID, req.TableID, req.Items)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Order created", order)
}

// GetAllOrders -> list orders with their items for kitchen/admin displays.
func (oc *OrderController) GetAllOrders(c *gin.Context) {
	tenant := middlewares.MustTenant(c)

	orders, err := oc.Orders.ListOrders(tenant.ID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of orders", orders)
}

// UpdateOrderStatus -> staff/owner move an order through its lifecycle.
func (oc *OrderController) UpdateOrderStatus(c *gin.Context) {
	tenant := middlewares.MustTenant(c)

	orderID, err := strconv.ParseUint(c.Param("order_id"), 10, 32)
	if err != nil {
		utils.RespondError(c, utils.NewAppError(utils.KindValidation, "invalid order id"))
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondErrorCode(c, http.StatusBadRequest, err)
		return
	}

	order, err := oc.Orders.UpdateStatus(tenant.ID, uint(orderID), req.Status)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Order status updated", order)
}
