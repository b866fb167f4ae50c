package migration

import (
	analyticsdomain "github.com/fleetflow/fleetflow/internal/analytics/domain"
	eventdomain "github.com/fleetflow/fleetflow/internal/event/domain"
	fleetdomain "github.com/fleetflow/fleetflow/internal/fleet/domain"
	notifdomain "github.com/fleetflow/fleetflow/internal/notification/domain"
	"gorm.io/gorm"
)

// AutoMigrate creates or updates every table the automation core owns.
// It runs on startup so a fresh database is usable without manual setup.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&fleetdomain.Vehicle{},
		&fleetdomain.Driver{},
		&fleetdomain.Trip{},
		&fleetdomain.MaintenanceLog{},
		&fleetdomain.FuelLog{},
		&notifdomain.Notification{},
		&eventdomain.DomainEvent{},
		&analyticsdomain.Summary{},
		&analyticsdomain.AutomationLog{},
	)
}
