package services

import (
	"time"

	"github.com/nimbusworks/opsdesk/internal/config"
	"github.com/nimbusworks/opsdesk/internal/utils"
	"gorm.io/gorm"
)

// HealthStatus reports the reachability of the backing services.
type HealthStatus struct {
	Status     string `json:"status"`
	Database   string `json:"database"`
	Authorizer string `json:"authorizer"`
	Storage    string `json:"storage"`
}

const (
	healthUp   = "up"
	healthDown = "down"
)

// CheckHealth pings the database, the Authorizer service, and the object
// storage endpoint. Overall status is "ok" only when everything is up.
func CheckHealth(db *gorm.DB, cfg *config.Config) *HealthStatus {
	health := &HealthStatus{
		Status:     "ok",
		Database:   healthUp,
		Authorizer: healthUp,
		Storage:    healthUp,
	}

	sqlDB, err := db.DB()
	if err != nil || sqlDB.Ping() != nil {
		health.Database = healthDown
	}

	if err := utils.PingAuthorizer(cfg.AuthzURL); err != nil {
		health.Authorizer = healthDown
	}

	endpoint := cfg.StorageEndpoint
	if endpoint != "" {
		scheme := "http"
		if cfg.StorageUseSSL {
			scheme = "https"
		}
		if err := utils.PingService(scheme+"://"+endpoint, 1500*time.Millisecond); err != nil {
			health.Storage = healthDown
		}
	}

	if health.Database == healthDown || health.Authorizer == healthDown || health.Storage == healthDown {
		health.Status = "degraded"
	}
	return health
}
