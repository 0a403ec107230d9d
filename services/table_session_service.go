package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/befoodie/pos-backend/models"
	"github.com/befoodie/pos-backend/realtime"
	"github.com/befoodie/pos-backend/utils"
)

// TableSessionService owns per-table billing sessions nested inside the
// active operational session.
type TableSessionService struct {
	DB          *gorm.DB
	Broadcaster realtime.Broadcaster
	locks       *utils.KeyedMutex
}

func NewTableSessionService(db *gorm.DB, broadcaster realtime.Broadcaster) *TableSessionService {
	return &TableSessionService{
		DB:          db,
		Broadcaster: broadcaster,
		locks:       utils.NewKeyedMutex(),
	}
}

// GetOrCreateOpenSession returns the open session for (tenant, table) inside
// the active operational session, creating it on first use. The keyed lock
// plus the OpenKey unique index make the check-or-create atomic: two
// near-simultaneous first orders for an empty table resolve to one row.
func (ts *TableSessionService) GetOrCreateOpenSession(tenantID uint, tableID string) (*models.TableSession, error) {
	var opSession models.OperationalSession
	err := ts.DB.Where("tenant_id = ? AND status = ?", tenantID, models.OpSessionActive).
		First(&opSession).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, utils.NewAppError(utils.KindInvariant, "restaurant is closed, cannot order")
		}
		return nil, err
	}

	unlock := ts.locks.Lock(fmt.Sprintf("table:%d:%d:%s", tenantID, opSession.ID, tableID))
	defer unlock()

	var session models.TableSession
	err = ts.DB.Where(
		"tenant_id = ? AND operational_session_id = ? AND table_id = ? AND status = ?",
		tenantID, opSession.ID, tableID, models.TableSessionOpen,
	).First(&session).Error
	if err == nil {
		return &session, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	openKey := models.TableSessionOpenKey(tenantID, opSession.ID, tableID)
	session = models.TableSession{
		PublicID:             uuid.NewString(),
		TenantID:             tenantID,
		OperationalSessionID: opSession.ID,
		TableID:              tableID,
		Status:               models.TableSessionOpen,
		OpenKey:              &openKey,
		TotalAmount:          decimal.Zero,
		CreatedAt:            time.Now(),
	}
	err = ts.DB.Transaction(func(tx *gorm.DB) error {
		// Re-assert the day is still active while holding its row lock, so
		// this create serializes against a concurrent close-day: either the
		// settlement scan sees this session or the create is rejected.
		res := tx.Model(&models.OperationalSession{}).
			Where("id = ? AND status = ?", opSession.ID, models.OpSessionActive).
			Update("updated_at", time.Now())
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return utils.NewAppError(utils.KindInvariant, "restaurant is closed, cannot order")
		}
		return tx.Create(&session).Error
	})
	if err != nil {
		var appErr *utils.AppError
		if errors.As(err, &appErr) {
			return nil, err
		}
		// Lost the unique claim to a concurrent create; use the winner's row.
		var existing models.TableSession
		if ferr := ts.DB.Where("open_key = ?", openKey).First(&existing).Error; ferr == nil {
			return &existing, nil
		}
		return nil, err
	}

	return &session, nil
}

// AppendOrderTotal adds an order total to the session's running bill.
// A single SQL increment keeps concurrent appends for one table linearizable;
// there is no read-modify-write at this tier.
func (ts *TableSessionService) AppendOrderTotal(tx *gorm.DB, sessionID uint, amount decimal.Decimal) error {
	res := tx.Model(&models.TableSession{}).
		Where("id = ? AND status = ?", sessionID, models.TableSessionOpen).
		UpdateColumn("total_amount", gorm.Expr("total_amount + ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return utils.NewAppError(utils.KindInvariant, "table session is not open")
	}
	return nil
}

// MarkPaid settles the session: open -> paid, terminal. Every order on the
// bill that isn't cancelled cascades to Paid in the same transaction.
func (ts *TableSessionService) MarkPaid(tenantID uint, publicID string) (*models.TableSession, error) {
	var session models.TableSession

	err := ts.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tenant_id = ? AND public_id = ?", tenantID, publicID).
			First(&session).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return utils.NewAppError(utils.KindNotFound, "table session not found")
			}
			return err
		}
		if session.Status == models.TableSessionPaid {
			return utils.NewAppError(utils.KindInvariant, "table session already paid")
		}

		now := time.Now()
		session.Status = models.TableSessionPaid
		session.PaidAt = &now
		session.OpenKey = nil
		if err := tx.Save(&session).Error; err != nil {
			return err
		}

		return tx.Model(&models.Order{}).
			Where("table_session_id = ? AND status <> ?", session.ID, models.OrderCancelled).
			Updates(map[string]interface{}{"status": models.OrderPaid, "updated_at": now}).Error
	})
	if err != nil {
		return nil, err
	}

	ts.Broadcaster.Publish(tenantID, realtime.EventTableSessionChanged, session)
	utils.InfoLogger.Printf("Table session %s (table %s) marked paid, total %s",
		session.PublicID, session.TableID, utils.FormatCurrency(session.TotalAmount))

	return &session, nil
}

// ListSessions returns the tenant's table sessions, newest first.
func (ts *TableSessionService) ListSessions(tenantID uint) ([]models.TableSession, error) {
	var sessions []models.TableSession
	err := ts.DB.Where("tenant_id = ?", tenantID).
		Order("created_at DESC").
		Find(&sessions).Error
	return sessions, err
}
