package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/befoodie/pos-backend/models"
	"github.com/befoodie/pos-backend/realtime"
	"github.com/befoodie/pos-backend/utils"
)

func newOrderService(db *gorm.DB) *OrderService {
	tableSessions := NewTableSessionService(db, realtime.NopBroadcaster{})
	return NewOrderService(db, realtime.NopBroadcaster{}, tableSessions)
}

func TestCreateOrderRequiresOpenDay(t *testing.T) {
	db := newTestDB(t)
	tenant := createTenant(t, db, "alpha")
	product := createProduct(t, db, tenant.ID, "Fries", 89)
	svc := newOrderService(db)

	_, err := svc.CreateOrder(tenant.ID, "1", []OrderItemRequest{{ProductID: product.ID, Quantity: 1}})
	assertAppError(t, err, utils.KindInvariant)
}

func TestCreateOrderWhilePaused(t *testing.T) {
	db := newTestDB(t)
	tenant := createTenant(t, db, "alpha")
	product := createProduct(t, db, tenant.ID, "Fries", 89)
	openDay(t, db, tenant.ID)
	require.NoError(t, db.Model(&models.Tenant{}).Where("id = ?", tenant.ID).
		Update("is_accepting_orders", false).Error)
	svc := newOrderService(db)

	_, err := svc.CreateOrder(tenant.ID, "1", []OrderItemRequest{{ProductID: product.ID, Quantity: 1}})
	assertAppError(t, err, utils.KindInvariant)
}

func TestCreateOrderValidation(t *testing.T) {
	db := newTestDB(t)
	tenant := createTenant(t, db, "alpha")
	openDay(t, db, tenant.ID)
	unavailable := createProduct(t, db, tenant.ID, "Gone", 50)
	require.NoError(t, db.Model(unavailable).Update("available", false).Error)
	svc := newOrderService(db)

	_, err := svc.CreateOrder(tenant.ID, "1", nil)
	assertAppError(t, err, utils.KindValidation)

	_, err = svc.CreateOrder(tenant.ID, "1", []OrderItemRequest{{ProductID: 9999, Quantity: 1}})
	assertAppError(t, err, utils.KindValidation)

	_, err = svc.CreateOrder(tenant.ID, "1", []OrderItemRequest{{ProductID: unavailable.ID, Quantity: 1}})
	assertAppError(t, err, utils.KindValidation)

	available := createProduct(t, db, tenant.ID, "Here", 50)
	_, err = svc.CreateOrder(tenant.ID, "1", []OrderItemRequest{{ProductID: available.ID, Quantity: 0}})
	assertAppError(t, err, utils.KindValidation)
}

func TestCreateOrderPricesFromCatalog(t *testing.T) {
	db := newTestDB(t)
	tenant := createTenant(t, db, "alpha")
	openDay(t, db, tenant.ID)
	burger := createProduct(t, db, tenant.ID, "Burger", 99)
	fries := createProduct(t, db, tenant.ID, "Fries", 89)
	svc := newOrderService(db)

	order, err := svc.CreateOrder(tenant.ID, "1", []OrderItemRequest{
		{ProductID: burger.ID, Quantity: 2},
		{ProductID: fries.ID, Quantity: 1},
	})
	require.NoError(t, err)
	assert.Equal(t, models.OrderPending, order.Status)
	require.Len(t, order.Items, 2)
	assert.True(t, order.Items[0].UnitPrice.Equal(decimal.NewFromInt(99)))
	assert.True(t, order.TotalPrice.Equal(decimal.NewFromInt(287)), "total %s", order.TotalPrice)

	var session models.TableSession
	require.NoError(t, db.First(&session, order.TableSessionID).Error)
	assert.True(t, session.TotalAmount.Equal(decimal.NewFromInt(287)))
}

func TestOrdersOnSameTableShareOneBill(t *testing.T) {
	db := newTestDB(t)
	tenant := createTenant(t, db, "alpha")
	openDay(t, db, tenant.ID)
	a := createProduct(t, db, tenant.ID, "A", 100)
	b := createProduct(t, db, tenant.ID, "B", 150)
	svc := newOrderService(db)

	first, err := svc.CreateOrder(tenant.ID, "1", []OrderItemRequest{{ProductID: a.ID, Quantity: 1}})
	require.NoError(t, err)
	second, err := svc.CreateOrder(tenant.ID, "1", []OrderItemRequest{{ProductID: b.ID, Quantity: 1}})
	require.NoError(t, err)

	assert.Equal(t, first.TableSessionID, second.TableSessionID)

	var session models.TableSession
	require.NoError(t, db.First(&session, first.TableSessionID).Error)
	assert.True(t, session.TotalAmount.Equal(decimal.NewFromInt(250)), "total %s", session.TotalAmount)
}

func TestUpdateStatusTransitions(t *testing.T) {
	db := newTestDB(t)
	tenant := createTenant(t, db, "alpha")
	openDay(t, db, tenant.ID)
	product := createProduct(t, db, tenant.ID, "Burger", 99)
	svc := newOrderService(db)

	order, err := svc.CreateOrder(tenant.ID, "1", []OrderItemRequest{{ProductID: product.ID, Quantity: 1}})
	require.NoError(t, err)

	// No skipping forward.
	_, err = svc.UpdateStatus(tenant.ID, order.ID, models.OrderServed)
	assertAppError(t, err, utils.KindInvariant)

	// Paid is only reachable through settlement.
	_, err = svc.UpdateStatus(tenant.ID, order.ID, models.OrderPaid)
	assertAppError(t, err, utils.KindInvariant)

	_, err = svc.UpdateStatus(tenant.ID, order.ID, "Frobnicated")
	assertAppError(t, err, utils.KindValidation)

	for _, status := range []string{models.OrderAccepted, models.OrderReady, models.OrderServed} {
		updated, err := svc.UpdateStatus(tenant.ID, order.ID, status)
		require.NoError(t, err)
		assert.Equal(t, status, updated.Status)
	}

	// Served is terminal for direct updates.
	_, err = svc.UpdateStatus(tenant.ID, order.ID, models.OrderCancelled)
	assertAppError(t, err, utils.KindInvariant)
}

func TestUpdateStatusCancelFromPending(t *testing.T) {
	db := newTestDB(t)
	tenant := createTenant(t, db, "alpha")
	openDay(t, db, tenant.ID)
	product := createProduct(t, db, tenant.ID, "Burger", 99)
	svc := newOrderService(db)

	order, err := svc.CreateOrder(tenant.ID, "1", []OrderItemRequest{{ProductID: product.ID, Quantity: 1}})
	require.NoError(t, err)

	cancelled, err := svc.UpdateStatus(tenant.ID, order.ID, models.OrderCancelled)
	require.NoError(t, err)
	assert.Equal(t, models.OrderCancelled, cancelled.Status)

	_, err = svc.UpdateStatus(tenant.ID, order.ID, models.OrderAccepted)
	assertAppError(t, err, utils.KindInvariant)
}

func TestUpdateStatusWrongTenant(t *testing.T) {
	db := newTestDB(t)
	tenant := createTenant(t, db, "alpha")
	other := createTenant(t, db, "beta")
	openDay(t, db, tenant.ID)
	product := createProduct(t, db, tenant.ID, "Burger", 99)
	svc := newOrderService(db)

	order, err := svc.CreateOrder(tenant.ID, "1", []OrderItemRequest{{ProductID: product.ID, Quantity: 1}})
	require.NoError(t, err)

	_, err = svc.UpdateStatus(other.ID, order.ID, models.OrderAccepted)
	assertAppError(t, err, utils.KindNotFound)
}
