package services

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/befoodie/pos-backend/models"
	"github.com/befoodie/pos-backend/utils"
)

// DeviceSessionService is the registry of per-device login sessions. Every
// login creates a fresh row; rows are deactivated on logout or when the idle
// window lapses.
type DeviceSessionService struct {
	DB          *gorm.DB
	IdleTimeout time.Duration
}

func NewDeviceSessionService(db *gorm.DB, idleTimeout time.Duration) *DeviceSessionService {
	return &DeviceSessionService{DB: db, IdleTimeout: idleTimeout}
}

// Create registers a new device session for a successful login.
func (ds *DeviceSessionService) Create(tenantID uint, role, fingerprint string) (*models.DeviceSession, error) {
	session := models.DeviceSession{
		SessionKey:        uuid.NewString(),
		TenantID:          tenantID,
		Role:              role,
		DeviceFingerprint: fingerprint,
		LastActiveAt:      time.Now(),
		IsActive:          true,
		CreatedAt:         time.Now(),
	}
	if err := ds.DB.Create(&session).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

// Heartbeat refreshes the activity timestamp. A failed heartbeat must never
// fail the parent request, so callers log the returned error and move on.
func (ds *DeviceSessionService) Heartbeat(sessionKey string) error {
	return ds.DB.Model(&models.DeviceSession{}).
		Where("session_key = ? AND is_active = ?", sessionKey, true).
		Update("last_active_at", time.Now()).Error
}

// IsValid reports whether the session is active and inside the idle window.
func (ds *DeviceSessionService) IsValid(sessionKey string) (bool, error) {
	var session models.DeviceSession
	if err := ds.DB.Where("session_key = ?", sessionKey).First(&session).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return false, nil
		}
		return false, err
	}
	if !session.IsActive {
		return false, nil
	}
	return time.Since(session.LastActiveAt) < ds.IdleTimeout, nil
}

// Deactivate revokes the session.
func (ds *DeviceSessionService) Deactivate(sessionKey string) error {
	res := ds.DB.Model(&models.DeviceSession{}).
		Where("session_key = ?", sessionKey).
		Update("is_active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return utils.NewAppError(utils.KindNotFound, "device session not found")
	}
	return nil
}
