package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/befoodie/pos-backend/models"
	"github.com/befoodie/pos-backend/monitoring"
	"github.com/befoodie/pos-backend/realtime"
	"github.com/befoodie/pos-backend/utils"
)

// OperationalSessionService owns the CLOSED<->ACTIVE business-day state
// machine, one tenant at a time, and the settlement that closes a day.
type OperationalSessionService struct {
	DB          *gorm.DB
	Broadcaster realtime.Broadcaster
	locks       *utils.KeyedMutex
}

func NewOperationalSessionService(db *gorm.DB, broadcaster realtime.Broadcaster) *OperationalSessionService {
	return &OperationalSessionService{
		DB:          db,
		Broadcaster: broadcaster,
		locks:       utils.NewKeyedMutex(),
	}
}

func businessDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// isDuplicateKey reports whether err is a unique-constraint violation, as
// surfaced by the mysql and sqlite drivers.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") || strings.Contains(msg, "UNIQUE constraint")
}

// StartDay opens a new business day. Exactly one of N concurrent calls wins;
// the rest get an already-open invariant error, never a silent no-op. The
// ActiveKey unique index is the authority, the keyed lock just narrows the
// race window.
func (s *OperationalSessionService) StartDay(tenantID uint) (*models.OperationalSession, error) {
	unlock := s.locks.Lock(fmt.Sprintf("ops:%d", tenantID))
	defer unlock()

	var existing models.OperationalSession
	err := s.DB.Where("tenant_id = ? AND status = ?", tenantID, models.OpSessionActive).
		First(&existing).Error
	if err == nil {
		return nil, utils.NewAppError(utils.KindInvariant, "business day already open")
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	activeKey := tenantID
	session := models.OperationalSession{
		TenantID:     tenantID,
		BusinessDate: businessDate(time.Now()),
		Status:       models.OpSessionActive,
		ActiveKey:    &activeKey,
		CreatedAt:    time.Now(),
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&session).Error; err != nil {
			if isDuplicateKey(err) {
				return utils.NewAppError(utils.KindInvariant, "business day already open")
			}
			return err
		}
		// is_system_open is only a read cache of this row's existence
		return tx.Model(&models.Tenant{}).Where("id = ?", tenantID).
			Update("is_system_open", true).Error
	})
	if err != nil {
		return nil, err
	}

	s.Broadcaster.Publish(tenantID, realtime.EventDayOpened, map[string]interface{}{
		"operational_session_id": session.ID,
		"business_date":          session.BusinessDate,
	})
	utils.InfoLogger.Printf("Tenant %d opened business day %s (session %d)",
		tenantID, session.BusinessDate, session.ID)

	return &session, nil
}

// CloseDay settles and closes the active business day. Open table sessions
// are force-settled (marked paid, orders cascaded) in the same transaction
// that upserts the daily summary, so the summary is complete and no revenue
// is dropped. Re-running after the day is closed is a no-op success that
// returns the existing summary.
func (s *OperationalSessionService) CloseDay(tenantID uint) (*models.DailySummary, error) {
	unlock := s.locks.Lock(fmt.Sprintf("ops:%d", tenantID))
	defer unlock()

	var session models.OperationalSession
	err := s.DB.Where("tenant_id = ? AND status = ?", tenantID, models.OpSessionActive).
		First(&session).Error
	if err == gorm.ErrRecordNotFound {
		// Retry after a close that already committed: return the summary of
		// the most recently closed day instead of failing.
		var last models.OperationalSession
		if ferr := s.DB.Where("tenant_id = ? AND status = ?", tenantID, models.OpSessionClosed).
			Order("created_at DESC").First(&last).Error; ferr == nil {
			var summary models.DailySummary
			if serr := s.DB.Where("tenant_id = ? AND business_date = ?", tenantID, last.BusinessDate).
				First(&summary).Error; serr == nil {
				return &summary, nil
			}
		}
		return nil, utils.NewAppError(utils.KindInvariant, "no active business day to close")
	}
	if err != nil {
		return nil, err
	}

	var summary models.DailySummary
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		now := time.Now()

		// Close the session row first. Holding its row lock for the rest of
		// the transaction orders settlement against in-flight table-session
		// creation: a create that committed before this point is visible to
		// the scan below, and one that didn't is rejected by its own
		// active-day re-check.
		res := tx.Model(&models.OperationalSession{}).
			Where("id = ? AND status = ?", session.ID, models.OpSessionActive).
			Updates(map[string]interface{}{
				"status":     models.OpSessionClosed,
				"active_key": nil,
				"closed_at":  now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return utils.NewAppError(utils.KindInvariant, "no active business day to close")
		}

		// Force-settle whatever is still open.
		var openSessions []models.TableSession
		if err := tx.Where("operational_session_id = ? AND status = ?", session.ID, models.TableSessionOpen).
			Find(&openSessions).Error; err != nil {
			return err
		}
		for i := range openSessions {
			openSessions[i].Status = models.TableSessionPaid
			openSessions[i].PaidAt = &now
			openSessions[i].OpenKey = nil
			if err := tx.Save(&openSessions[i]).Error; err != nil {
				return err
			}
			if err := tx.Model(&models.Order{}).
				Where("table_session_id = ? AND status <> ?", openSessions[i].ID, models.OrderCancelled).
				Updates(map[string]interface{}{"status": models.OrderPaid, "updated_at": now}).Error; err != nil {
				return err
			}
		}

		// Aggregate the settled day.
		var totalOrders, counterSessions int64
		if err := tx.Model(&models.TableSession{}).
			Where("operational_session_id = ? AND status = ?", session.ID, models.TableSessionPaid).
			Count(&totalOrders).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.TableSession{}).
			Where("operational_session_id = ? AND status = ? AND table_id = ?",
				session.ID, models.TableSessionPaid, models.CounterTableID).
			Count(&counterSessions).Error; err != nil {
			return err
		}

		var totalRevenue decimal.Decimal
		row := tx.Model(&models.TableSession{}).
			Where("operational_session_id = ? AND status = ?", session.ID, models.TableSessionPaid).
			Select("COALESCE(SUM(total_amount), 0)").Row()
		if err := row.Scan(&totalRevenue); err != nil {
			return err
		}

		avg := decimal.Zero
		if totalOrders > 0 {
			avg = totalRevenue.Div(decimal.NewFromInt(totalOrders)).Round(2)
		}

		summary = models.DailySummary{
			TenantID:          tenantID,
			BusinessDate:      session.BusinessDate,
			TotalOrders:       totalOrders,
			TotalRevenue:      totalRevenue,
			CounterSessions:   counterSessions,
			TableSessions:     totalOrders - counterSessions,
			AverageOrderValue: avg,
			ClosedAt:          now,
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "tenant_id"}, {Name: "business_date"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"total_orders", "total_revenue", "counter_sessions",
				"table_sessions", "average_order_value", "closed_at",
			}),
		}).Create(&summary).Error; err != nil {
			return err
		}

		return tx.Model(&models.Tenant{}).Where("id = ?", tenantID).
			Update("is_system_open", false).Error
	})
	if err != nil {
		return nil, err
	}

	monitoring.DaysClosed.WithLabelValues(fmt.Sprint(tenantID)).Inc()
	s.Broadcaster.Publish(tenantID, realtime.EventDayClosed, summary)
	utils.InfoLogger.Printf("Tenant %d closed business day %s: %d sessions, revenue %s",
		tenantID, summary.BusinessDate, summary.TotalOrders, utils.FormatCurrency(summary.TotalRevenue))

	return &summary, nil
}

// StatusSnapshot is the authoritative poll-side view displays fall back to.
type StatusSnapshot struct {
	IsSystemOpen      bool   `json:"is_system_open"`
	IsAcceptingOrders bool   `json:"is_accepting_orders"`
	BusinessDate      string `json:"business_date,omitempty"`
	ActiveSessionID   uint   `json:"active_operational_session_id,omitempty"`
}

// Status derives the snapshot from the operational session row, not from the
// tenant's cached flag.
func (s *OperationalSessionService) Status(tenantID uint) (*StatusSnapshot, error) {
	var tenant models.Tenant
	if err := s.DB.First(&tenant, tenantID).Error; err != nil {
		return nil, err
	}

	snapshot := &StatusSnapshot{IsAcceptingOrders: tenant.IsAcceptingOrders}

	var session models.OperationalSession
	err := s.DB.Where("tenant_id = ? AND status = ?", tenantID, models.OpSessionActive).
		First(&session).Error
	if err == nil {
		snapshot.IsSystemOpen = true
		snapshot.BusinessDate = session.BusinessDate
		snapshot.ActiveSessionID = session.ID
	} else if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	return snapshot, nil
}

// History lists the tenant's daily summaries, newest first.
func (s *OperationalSessionService) History(tenantID uint) ([]models.DailySummary, error) {
	var summaries []models.DailySummary
	err := s.DB.Where("tenant_id = ?", tenantID).
		Order("business_date DESC").
		Find(&summaries).Error
	return summaries, err
}
