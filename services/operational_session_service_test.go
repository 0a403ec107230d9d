package services

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/befoodie/pos-backend/database"
	"github.com/befoodie/pos-backend/models"
	"github.com/befoodie/pos-backend/realtime"
	"github.com/befoodie/pos-backend/utils"
)

func TestMain(m *testing.M) {
	utils.InitLogger()
	os.Exit(m.Run())
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	// One connection keeps concurrent test writes serialized at the driver.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	return db
}

func createTenant(t *testing.T, db *gorm.DB, slug string) *models.Tenant {
	t.Helper()
	tenant := &models.Tenant{
		Slug:              slug,
		Name:              slug,
		FoodPolicy:        models.FoodPolicyMixed,
		OwnerPasswordHash: "unused",
		StaffPinHash:      "unused",
		IsAcceptingOrders: true,
	}
	require.NoError(t, db.Create(tenant).Error)
	return tenant
}

func createProduct(t *testing.T, db *gorm.DB, tenantID uint, name string, price int64) *models.Product {
	t.Helper()
	product := &models.Product{
		TenantID:  tenantID,
		Name:      name,
		Category:  "Test",
		Price:     decimal.NewFromInt(price),
		FoodType:  models.FoodTypeVeg,
		Available: true,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func assertAppError(t *testing.T, err error, kind string) {
	t.Helper()
	require.Error(t, err)
	appErr, ok := err.(*utils.AppError)
	require.True(t, ok, "expected AppError, got %T: %v", err, err)
	assert.Equal(t, kind, appErr.Kind)
}

func TestStartDayOpensExactlyOnce(t *testing.T) {
	db := newTestDB(t)
	tenant := createTenant(t, db, "alpha")
	svc := NewOperationalSessionService(db, realtime.NopBroadcaster{})

	session, err := svc.StartDay(tenant.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OpSessionActive, session.Status)
	assert.NotNil(t, session.ActiveKey)

	_, err = svc.StartDay(tenant.ID)
	assertAppError(t, err, utils.KindInvariant)

	status, err := svc.Status(tenant.ID)
	require.NoError(t, err)
	assert.True(t, status.IsSystemOpen)
	assert.Equal(t, session.BusinessDate, status.BusinessDate)
}

func TestStartDayConcurrentSingleWinner(t *testing.T) {
	db := newTestDB(t)
	tenant := createTenant(t, db, "alpha")
	svc := NewOperationalSessionService(db, realtime.NopBroadcaster{})

	const callers = 8
	var wg sync.WaitGroup
	results := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.StartDay(tenant.ID)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	wins, conflicts := 0, 0
	for err := range results {
		if err == nil {
			wins++
		} else {
			conflicts++
		}
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, callers-1, conflicts)

	var active int64
	require.NoError(t, db.Model(&models.OperationalSession{}).
		Where("tenant_id = ? AND status = ?", tenant.ID, models.OpSessionActive).
		Count(&active).Error)
	assert.EqualValues(t, 1, active)
}

func TestCloseDayWithoutOpenDay(t *testing.T) {
	db := newTestDB(t)
	tenant := createTenant(t, db, "alpha")
	svc := NewOperationalSessionService(db, realtime.NopBroadcaster{})

	_, err := svc.CloseDay(tenant.ID)
	assertAppError(t, err, utils.KindInvariant)
}

func TestCloseDaySettlesAndSummarizes(t *testing.T) {
	db := newTestDB(t)
	tenant := createTenant(t, db, "alpha")
	svc := NewOperationalSessionService(db, realtime.NopBroadcaster{})

	opSession, err := svc.StartDay(tenant.ID)
	require.NoError(t, err)

	// One table bill still open, one counter bill already settled.
	openKey := models.TableSessionOpenKey(tenant.ID, opSession.ID, "4")
	open := models.TableSession{
		PublicID:             uuid.NewString(),
		TenantID:             tenant.ID,
		OperationalSessionID: opSession.ID,
		TableID:              "4",
		Status:               models.TableSessionOpen,
		OpenKey:              &openKey,
		TotalAmount:          decimal.NewFromInt(250),
		CreatedAt:            time.Now(),
	}
	require.NoError(t, db.Create(&open).Error)

	paidAt := time.Now()
	paid := models.TableSession{
		PublicID:             uuid.NewString(),
		TenantID:             tenant.ID,
		OperationalSessionID: opSession.ID,
		TableID:              models.CounterTableID,
		Status:               models.TableSessionPaid,
		TotalAmount:          decimal.NewFromInt(100),
		CreatedAt:            time.Now(),
		PaidAt:               &paidAt,
	}
	require.NoError(t, db.Create(&paid).Error)

	pending := models.Order{
		TenantID:       tenant.ID,
		TableSessionID: open.ID,
		TableID:        "4",
		Status:         models.OrderPending,
		TotalPrice:     decimal.NewFromInt(250),
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}
	require.NoError(t, db.Create(&pending).Error)

	summary, err := svc.CloseDay(tenant.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, summary.TotalOrders)
	assert.True(t, summary.TotalRevenue.Equal(decimal.NewFromInt(350)), "revenue %s", summary.TotalRevenue)
	assert.EqualValues(t, 1, summary.CounterSessions)
	assert.EqualValues(t, 1, summary.TableSessions)
	assert.True(t, summary.AverageOrderValue.Equal(decimal.NewFromInt(175)), "aov %s", summary.AverageOrderValue)

	// The open bill was force-settled and its order cascaded.
	var settled models.TableSession
	require.NoError(t, db.First(&settled, open.ID).Error)
	assert.Equal(t, models.TableSessionPaid, settled.Status)
	assert.Nil(t, settled.OpenKey)

	var order models.Order
	require.NoError(t, db.First(&order, pending.ID).Error)
	assert.Equal(t, models.OrderPaid, order.Status)

	var closed models.OperationalSession
	require.NoError(t, db.First(&closed, opSession.ID).Error)
	assert.Equal(t, models.OpSessionClosed, closed.Status)
	assert.Nil(t, closed.ActiveKey)

	var reloaded models.Tenant
	require.NoError(t, db.First(&reloaded, tenant.ID).Error)
	assert.False(t, reloaded.IsSystemOpen)
}

func TestCloseDayRetryReturnsExistingSummary(t *testing.T) {
	db := newTestDB(t)
	tenant := createTenant(t, db, "alpha")
	svc := NewOperationalSessionService(db, realtime.NopBroadcaster{})

	_, err := svc.StartDay(tenant.ID)
	require.NoError(t, err)

	first, err := svc.CloseDay(tenant.ID)
	require.NoError(t, err)

	second, err := svc.CloseDay(tenant.ID)
	require.NoError(t, err)
	assert.Equal(t, first.BusinessDate, second.BusinessDate)
	assert.True(t, first.TotalRevenue.Equal(second.TotalRevenue))

	var count int64
	require.NoError(t, db.Model(&models.DailySummary{}).
		Where("tenant_id = ?", tenant.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestCloseDayConcurrentOrderCreation(t *testing.T) {
	db := newTestDB(t)
	tenant := createTenant(t, db, "alpha")
	product := createProduct(t, db, tenant.ID, "Burger", 10)

	opsSvc := NewOperationalSessionService(db, realtime.NopBroadcaster{})
	orderSvc := newOrderService(db)
	_, err := opsSvc.StartDay(tenant.ID)
	require.NoError(t, err)

	const tables = 10
	var wg sync.WaitGroup
	orderErrs := make(chan error, tables)
	for i := 0; i < tables; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := orderSvc.CreateOrder(tenant.ID, fmt.Sprintf("%d", n),
				[]OrderItemRequest{{ProductID: product.ID, Quantity: 1}})
			orderErrs <- err
		}(i)
	}

	summary, closeErr := opsSvc.CloseDay(tenant.ID)
	wg.Wait()
	close(orderErrs)
	require.NoError(t, closeErr)

	accepted := int64(0)
	for err := range orderErrs {
		if err == nil {
			accepted++
		} else {
			assertAppError(t, err, utils.KindInvariant)
		}
	}

	// No open bill survives the close, whichever way each race went: an
	// order either landed before settlement and is counted, or was rejected.
	var openCount int64
	require.NoError(t, db.Model(&models.TableSession{}).
		Where("tenant_id = ? AND status = ?", tenant.ID, models.TableSessionOpen).
		Count(&openCount).Error)
	assert.Zero(t, openCount)

	assert.True(t, summary.TotalRevenue.Equal(decimal.NewFromInt(accepted*10)),
		"revenue %s for %d accepted orders", summary.TotalRevenue, accepted)

	var settledRevenue decimal.Decimal
	row := db.Model(&models.TableSession{}).
		Where("tenant_id = ? AND status = ?", tenant.ID, models.TableSessionPaid).
		Select("COALESCE(SUM(total_amount), 0)").Row()
	require.NoError(t, row.Scan(&settledRevenue))
	assert.True(t, summary.TotalRevenue.Equal(settledRevenue))
}

func TestOrderRejectedAfterDayClosed(t *testing.T) {
	db := newTestDB(t)
	tenant := createTenant(t, db, "alpha")
	product := createProduct(t, db, tenant.ID, "Burger", 10)

	opsSvc := NewOperationalSessionService(db, realtime.NopBroadcaster{})
	orderSvc := newOrderService(db)
	_, err := opsSvc.StartDay(tenant.ID)
	require.NoError(t, err)
	_, err = opsSvc.CloseDay(tenant.ID)
	require.NoError(t, err)

	_, err = orderSvc.CreateOrder(tenant.ID, "1",
		[]OrderItemRequest{{ProductID: product.ID, Quantity: 1}})
	assertAppError(t, err, utils.KindInvariant)
}

func TestDuplicateKeyDetection(t *testing.T) {
	assert.True(t, isDuplicateKey(gorm.ErrDuplicatedKey))
	assert.True(t, isDuplicateKey(errors.New("UNIQUE constraint failed: operational_sessions.active_key")))
	assert.True(t, isDuplicateKey(errors.New("Error 1062 (23000): Duplicate entry '3' for key 'operational_sessions.active_key'")))
	assert.False(t, isDuplicateKey(errors.New("dial tcp 10.0.0.5:3306: connect: connection refused")))
	assert.False(t, isDuplicateKey(gorm.ErrInvalidTransaction))
}

func TestStatusClosedTenant(t *testing.T) {
	db := newTestDB(t)
	tenant := createTenant(t, db, "alpha")
	svc := NewOperationalSessionService(db, realtime.NopBroadcaster{})

	status, err := svc.Status(tenant.ID)
	require.NoError(t, err)
	assert.False(t, status.IsSystemOpen)
	assert.True(t, status.IsAcceptingOrders)
	assert.Empty(t, status.BusinessDate)
}

func TestHistoryNewestFirst(t *testing.T) {
	db := newTestDB(t)
	tenant := createTenant(t, db, "alpha")
	svc := NewOperationalSessionService(db, realtime.NopBroadcaster{})

	for _, date := range []string{"2026-08-29", "2026-08-30"} {
		require.NoError(t, db.Create(&models.DailySummary{
			TenantID:     tenant.ID,
			BusinessDate: date,
			ClosedAt:     time.Now(),
		}).Error)
	}

	summaries, err := svc.History(tenant.ID)
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, "2026-08-30", summaries[0].BusinessDate)
}
