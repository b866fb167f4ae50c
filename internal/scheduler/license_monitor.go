package scheduler

import (
	"context"
	"fmt"

	"github.com/fleetflow/fleetflow/internal/event"
	fleetdomain "github.com/fleetflow/fleetflow/internal/fleet/domain"
	notifdomain "github.com/fleetflow/fleetflow/internal/notification/domain"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// licenseMonitor suspends drivers whose license has expired and warns
// about those inside the warning window. The critical notification
// repeats on every run while the license stays expired; the status
// transition itself happens at most once.
func (s *Scheduler) licenseMonitor(ctx context.Context, tx *gorm.DB, run *jobRun) error {
	today := s.clock.Today()

	drivers, err := s.fleetRepo.ListDrivers(ctx, tx)
	if err != nil {
		return err
	}

	for i := range drivers {
		d := drivers[i]
		daysLeft := int(d.LicenseExpiry.Sub(today).Hours() / 24)

		switch {
		case daysLeft <= 0:
			if d.Status != fleetdomain.DriverStatusSuspended && d.Status != fleetdomain.DriverStatusOffDuty {
				if err := s.fleetRepo.UpdateDriverStatus(ctx, tx, d.ID, fleetdomain.DriverStatusSuspended); err != nil {
					return err
				}
			}
			if _, nerr := s.notif.Create(ctx, notifdomain.CreateRequest{
				Type:     notifdomain.TypeCompliance,
				Severity: notifdomain.SeverityCritical,
				Title:    fmt.Sprintf("License Expired - %s", d.FullName),
				Message: fmt.Sprintf(
					"Driver %s's license %s expired on %s. The driver is suspended until renewal.",
					d.FullName, d.LicenseNumber, d.LicenseExpiry.Format("2006-01-02"),
				),
				EntityType: "driver",
				EntityID:   d.ID,
			}); nerr != nil {
				s.log.Warn("failed to create suspension notification",
					zap.String("driver_id", d.ID),
					zap.Error(nerr),
				)
			}
			run.Add(1)

		case daysLeft <= s.cfg.LicenseWarnDays:
			s.bus.Publish(ctx, event.DriverLicenseExpiring, event.Payload{
				"driver_id":      d.ID,
				"driver_name":    d.FullName,
				"days_left":      daysLeft,
				"license_expiry": d.LicenseExpiry.Format("2006-01-02"),
			}, JobLicenseMonitor)
			run.Add(1)
		}
	}

	return nil
}
