package main

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/befoodie/pos-backend/config"
	"github.com/befoodie/pos-backend/database"
	"github.com/befoodie/pos-backend/realtime"
	"github.com/befoodie/pos-backend/router"
	"github.com/befoodie/pos-backend/services"
	"github.com/befoodie/pos-backend/utils"
)

func main() {
	utils.InitLogger()

	cfg, err := config.Load()
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := config.InitDB(cfg.DB)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		utils.ErrorLogger.Fatalf("Failed to migrate database: %v", err)
	}
	if err := database.Seed(db); err != nil {
		utils.ErrorLogger.Fatalf("Failed to seed database: %v", err)
	}

	if cfg.App.Env == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	hub := realtime.NewHub()
	devices := services.NewDeviceSessionService(db, cfg.Session.IdleTimeout)
	tokens := utils.NewTokenCodec(cfg.JWT.Secret, cfg.JWT.TTL)

	opSessions := services.NewOperationalSessionService(db, hub)
	monitor := services.NewRefreshMonitor(db, opSessions, hub, cfg.Session.RefreshInterval)
	monitor.Start()
	defer monitor.Stop()

	// Expired blacklist entries are swept hourly so logged-out tokens do not
	// pile up in memory.
	go func() {
		for range time.Tick(time.Hour) {
			utils.CleanupBlacklist()
		}
	}()

	r := router.SetupRouter(db, tokens, hub, devices, cfg.Session.CheckMode)

	utils.InfoLogger.Printf("Server starting on %s", cfg.HTTP.Addr())
	if err := r.Run(cfg.HTTP.Addr()); err != nil {
		utils.ErrorLogger.Fatalf("Server failed: %v", err)
	}
}
