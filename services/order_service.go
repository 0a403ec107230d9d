package services

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/befoodie/pos-backend/models"
	"github.com/befoodie/pos-backend/monitoring"
	"github.com/befoodie/pos-backend/realtime"
	"github.com/befoodie/pos-backend/utils"
)

// OrderService owns the order lifecycle: creation behind the acceptance gate
// and the Pending -> Accepted -> Ready -> Served transitions.
type OrderService struct {
	DB            *gorm.DB
	Broadcaster   realtime.Broadcaster
	TableSessions *TableSessionService
}

func NewOrderService(db *gorm.DB, broadcaster realtime.Broadcaster, tableSessions *TableSessionService) *OrderService {
	return &OrderService{DB: db, Broadcaster: broadcaster, TableSessions: tableSessions}
}

// OrderItemRequest is one requested line. Only the product reference and
// quantity are trusted; the price always comes from the catalog.
type OrderItemRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required"`
}

// CreateOrder places an order for a table. Requires an active business day,
// orders not paused, and every item resolvable to an available product. The
// order insert and the table-session total increment commit together.
func (s *OrderService) CreateOrder(tenantID uint, tableID string, items []OrderItemRequest) (*models.Order, error) {
	if len(items) == 0 {
		return nil, utils.NewAppError(utils.KindValidation, "order has no items")
	}

	var tenant models.Tenant
	if err := s.DB.First(&tenant, tenantID).Error; err != nil {
		return nil, err
	}
	if !tenant.IsAcceptingOrders {
		return nil, utils.NewAppError(utils.KindInvariant, "orders are paused")
	}

	// Resolves the active day too; fails with "restaurant closed" otherwise.
	session, err := s.TableSessions.GetOrCreateOpenSession(tenantID, tableID)
	if err != nil {
		return nil, err
	}

	// Re-price server side: unit prices come from the catalog, never the
	// client, and the total is recomputed here.
	total := decimal.Zero
	orderItems := make([]models.OrderItem, 0, len(items))
	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, utils.NewAppError(utils.KindValidation, "item quantity must be positive")
		}
		var product models.Product
		if err := s.DB.Where("id = ? AND tenant_id = ?", item.ProductID, tenantID).
			First(&product).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, utils.NewAppError(utils.KindValidation,
					fmt.Sprintf("unknown product %d", item.ProductID))
			}
			return nil, err
		}
		if !product.Available {
			return nil, utils.NewAppError(utils.KindValidation,
				fmt.Sprintf("product %q is not available", product.Name))
		}
		orderItem := models.OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			UnitPrice: product.Price,
			Quantity:  item.Quantity,
			CreatedAt: time.Now(),
		}
		total = total.Add(orderItem.Subtotal())
		orderItems = append(orderItems, orderItem)
	}

	order := models.Order{
		TenantID:       tenantID,
		TableSessionID: session.ID,
		TableID:        tableID,
		Status:         models.OrderPending,
		TotalPrice:     total,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
		Items:          orderItems,
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&order).Error; err != nil {
			return err
		}
		return s.TableSessions.AppendOrderTotal(tx, session.ID, total)
	})
	if err != nil {
		return nil, err
	}

	monitoring.OrdersCreated.WithLabelValues(tenant.Slug).Inc()
	s.Broadcaster.Publish(tenantID, realtime.EventNewOrder, order)
	utils.InfoLogger.Printf("Order %d created for tenant %d table %s, total %s",
		order.ID, tenantID, tableID, utils.FormatCurrency(total))

	return &order, nil
}

// UpdateStatus applies one staff/owner transition. Illegal moves are rejected
// with an invariant error, never clamped. Paid is not reachable here; it only
// arrives through the table-session cascade.
func (s *OrderService) UpdateStatus(tenantID, orderID uint, newStatus string) (*models.Order, error) {
	if !models.IsValidOrderStatus(newStatus) {
		return nil, utils.NewAppError(utils.KindValidation, fmt.Sprintf("unknown status %q", newStatus))
	}
	if newStatus == models.OrderPaid {
		return nil, utils.NewAppError(utils.KindInvariant, "orders are marked paid by settling their table session")
	}

	var order models.Order
	if err := s.DB.Preload("Items").
		Where("id = ? AND tenant_id = ?", orderID, tenantID).
		First(&order).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, utils.NewAppError(utils.KindNotFound, "order not found")
		}
		return nil, err
	}

	if !models.CanTransition(order.Status, newStatus) {
		return nil, utils.NewAppError(utils.KindInvariant,
			fmt.Sprintf("cannot move order from %s to %s", order.Status, newStatus))
	}

	order.Status = newStatus
	order.UpdatedAt = time.Now()
	if err := s.DB.Save(&order).Error; err != nil {
		return nil, err
	}

	monitoring.OrderTransitions.WithLabelValues(fmt.Sprint(tenantID), newStatus).Inc()
	s.Broadcaster.Publish(tenantID, realtime.EventOrderStatusChanged, order)

	return &order, nil
}

// ListOrders returns the tenant's orders with items, newest first.
func (s *OrderService) ListOrders(tenantID uint) ([]models.Order, error) {
	var orders []models.Order
	err := s.DB.Preload("Items").
		Where("tenant_id = ?", tenantID).
		Order("created_at DESC").
		Find(&orders).Error
	return orders, err
}
