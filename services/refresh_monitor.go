package services

import (
	"time"

	"gorm.io/gorm"

	"github.com/befoodie/pos-backend/models"
	"github.com/befoodie/pos-backend/realtime"
	"github.com/befoodie/pos-backend/utils"
)

// RefreshMonitor periodically broadcasts a status snapshot to every tenant
// with an open business day. Push delivery is best-effort, so displays that
// missed an event converge from these snapshots (and from plain polling)
// instead of drifting.
type RefreshMonitor struct {
	DB          *gorm.DB
	Sessions    *OperationalSessionService
	Broadcaster realtime.Broadcaster
	Interval    time.Duration
	stopChan    chan struct{}
}

func NewRefreshMonitor(db *gorm.DB, sessions *OperationalSessionService, broadcaster realtime.Broadcaster, interval time.Duration) *RefreshMonitor {
	return &RefreshMonitor{
		DB:          db,
		Sessions:    sessions,
		Broadcaster: broadcaster,
		Interval:    interval,
		stopChan:    make(chan struct{}),
	}
}

func (rm *RefreshMonitor) Start() {
	go func() {
		ticker := time.NewTicker(rm.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				rm.broadcastSnapshots()
			case <-rm.stopChan:
				return
			}
		}
	}()
}

func (rm *RefreshMonitor) Stop() {
	close(rm.stopChan)
}

func (rm *RefreshMonitor) broadcastSnapshots() {
	var tenants []models.Tenant
	if err := rm.DB.Where("is_system_open = ?", true).Find(&tenants).Error; err != nil {
		utils.ErrorLogger.Printf("refresh monitor: listing open tenants: %v", err)
		return
	}

	for _, tenant := range tenants {
		snapshot, err := rm.Sessions.Status(tenant.ID)
		if err != nil {
			utils.ErrorLogger.Printf("refresh monitor: status for tenant %d: %v", tenant.ID, err)
			continue
		}
		rm.Broadcaster.Publish(tenant.ID, realtime.EventStatusSnapshot, snapshot)
	}
}
