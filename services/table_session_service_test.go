package services

import (
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/befoodie/pos-backend/models"
	"github.com/befoodie/pos-backend/realtime"
	"github.com/befoodie/pos-backend/utils"
)

func openDay(t *testing.T, db *gorm.DB, tenantID uint) *models.OperationalSession {
	t.Helper()
	svc := NewOperationalSessionService(db, realtime.NopBroadcaster{})
	session, err := svc.StartDay(tenantID)
	require.NoError(t, err)
	return session
}

func TestGetOrCreateRequiresOpenDay(t *testing.T) {
	db := newTestDB(t)
	tenant := createTenant(t, db, "alpha")
	svc := NewTableSessionService(db, realtime.NopBroadcaster{})

	_, err := svc.GetOrCreateOpenSession(tenant.ID, "1")
	assertAppError(t, err, utils.KindInvariant)
}

func TestGetOrCreateReusesOpenSession(t *testing.T) {
	db := newTestDB(t)
	tenant := createTenant(t, db, "alpha")
	openDay(t, db, tenant.ID)
	svc := NewTableSessionService(db, realtime.NopBroadcaster{})

	first, err := svc.GetOrCreateOpenSession(tenant.ID, "1")
	require.NoError(t, err)
	assert.NotEmpty(t, first.PublicID)
	assert.Equal(t, models.TableSessionOpen, first.Status)

	second, err := svc.GetOrCreateOpenSession(tenant.ID, "1")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	other, err := svc.GetOrCreateOpenSession(tenant.ID, "2")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, other.ID)
}

func TestGetOrCreateConcurrentSingleRow(t *testing.T) {
	db := newTestDB(t)
	tenant := createTenant(t, db, "alpha")
	openDay(t, db, tenant.ID)
	svc := NewTableSessionService(db, realtime.NopBroadcaster{})

	const callers = 10
	type result struct {
		id  uint
		err error
	}
	var wg sync.WaitGroup
	results := make(chan result, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			session, err := svc.GetOrCreateOpenSession(tenant.ID, "7")
			if err != nil {
				results <- result{err: err}
				return
			}
			results <- result{id: session.ID}
		}()
	}
	wg.Wait()
	close(results)

	seen := map[uint]bool{}
	for res := range results {
		require.NoError(t, res.err)
		seen[res.id] = true
	}
	assert.Len(t, seen, 1)

	var count int64
	require.NoError(t, db.Model(&models.TableSession{}).
		Where("tenant_id = ? AND table_id = ?", tenant.ID, "7").
		Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestAppendOrderTotalConcurrent(t *testing.T) {
	db := newTestDB(t)
	tenant := createTenant(t, db, "alpha")
	openDay(t, db, tenant.ID)
	svc := NewTableSessionService(db, realtime.NopBroadcaster{})

	session, err := svc.GetOrCreateOpenSession(tenant.ID, "3")
	require.NoError(t, err)

	amounts := []int64{10, 20, 30}
	var wg sync.WaitGroup
	errs := make(chan error, len(amounts))
	for _, amount := range amounts {
		wg.Add(1)
		go func(a int64) {
			defer wg.Done()
			errs <- svc.AppendOrderTotal(db, session.ID, decimal.NewFromInt(a))
		}(amount)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	var reloaded models.TableSession
	require.NoError(t, db.First(&reloaded, session.ID).Error)
	assert.True(t, reloaded.TotalAmount.Equal(decimal.NewFromInt(60)), "total %s", reloaded.TotalAmount)
}

func TestAppendOrderTotalOnPaidSession(t *testing.T) {
	db := newTestDB(t)
	tenant := createTenant(t, db, "alpha")
	openDay(t, db, tenant.ID)
	svc := NewTableSessionService(db, realtime.NopBroadcaster{})

	session, err := svc.GetOrCreateOpenSession(tenant.ID, "3")
	require.NoError(t, err)
	_, err = svc.MarkPaid(tenant.ID, session.PublicID)
	require.NoError(t, err)

	err = svc.AppendOrderTotal(db, session.ID, decimal.NewFromInt(10))
	assertAppError(t, err, utils.KindInvariant)
}

func TestMarkPaidCascadesOrdersAndIsTerminal(t *testing.T) {
	db := newTestDB(t)
	tenant := createTenant(t, db, "alpha")
	openDay(t, db, tenant.ID)
	svc := NewTableSessionService(db, realtime.NopBroadcaster{})

	session, err := svc.GetOrCreateOpenSession(tenant.ID, "5")
	require.NoError(t, err)

	served := models.Order{TenantID: tenant.ID, TableSessionID: session.ID, TableID: "5", Status: models.OrderServed}
	cancelled := models.Order{TenantID: tenant.ID, TableSessionID: session.ID, TableID: "5", Status: models.OrderCancelled}
	require.NoError(t, db.Create(&served).Error)
	require.NoError(t, db.Create(&cancelled).Error)

	paid, err := svc.MarkPaid(tenant.ID, session.PublicID)
	require.NoError(t, err)
	assert.Equal(t, models.TableSessionPaid, paid.Status)
	assert.NotNil(t, paid.PaidAt)
	assert.Nil(t, paid.OpenKey)

	var after models.Order
	require.NoError(t, db.First(&after, served.ID).Error)
	assert.Equal(t, models.OrderPaid, after.Status)
	after = models.Order{}
	require.NoError(t, db.First(&after, cancelled.ID).Error)
	assert.Equal(t, models.OrderCancelled, after.Status)

	// Paying again is rejected, and a new bill for the table gets a new row.
	_, err = svc.MarkPaid(tenant.ID, session.PublicID)
	assertAppError(t, err, utils.KindInvariant)

	fresh, err := svc.GetOrCreateOpenSession(tenant.ID, "5")
	require.NoError(t, err)
	assert.NotEqual(t, session.ID, fresh.ID)
}

func TestMarkPaidUnknownSession(t *testing.T) {
	db := newTestDB(t)
	tenant := createTenant(t, db, "alpha")
	svc := NewTableSessionService(db, realtime.NopBroadcaster{})

	_, err := svc.MarkPaid(tenant.ID, "no-such-public-id")
	assertAppError(t, err, utils.KindNotFound)
}

func TestCounterSessions(t *testing.T) {
	db := newTestDB(t)
	tenant := createTenant(t, db, "alpha")
	openDay(t, db, tenant.ID)
	svc := NewTableSessionService(db, realtime.NopBroadcaster{})

	session, err := svc.GetOrCreateOpenSession(tenant.ID, models.CounterTableID)
	require.NoError(t, err)
	assert.True(t, session.IsCounter())
}
