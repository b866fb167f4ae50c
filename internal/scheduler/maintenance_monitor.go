package scheduler

import (
	"context"
	"fmt"

	fleetdomain "github.com/fleetflow/fleetflow/internal/fleet/domain"
	notifdomain "github.com/fleetflow/fleetflow/internal/notification/domain"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// maintenanceMonitor creates one scheduled preventive service record per
// vehicle that has driven past the configured interval since its last
// completed service. An existing open auto record suppresses a new one.
func (s *Scheduler) maintenanceMonitor(ctx context.Context, tx *gorm.DB, run *jobRun) error {
	now := s.clock.Now()

	vehicles, err := s.fleetRepo.ListVehicles(ctx, tx)
	if err != nil {
		return err
	}

	for i := range vehicles {
		v := vehicles[i]
		if v.Status == fleetdomain.VehicleStatusRetired {
			continue
		}

		last, err := s.fleetRepo.LastCompletedService(ctx, tx, v.ID)
		if err != nil {
			return err
		}
		lastServiceKM := 0.0
		if last != nil {
			lastServiceKM = last.OdometerAtService
		}

		kmSince := v.OdometerKM - lastServiceKM
		if kmSince < s.cfg.MaintenanceIntervalKM {
			continue
		}

		open, err := s.fleetRepo.HasOpenAutoService(ctx, tx, v.ID)
		if err != nil {
			return err
		}
		if open {
			continue
		}

		record := &fleetdomain.MaintenanceLog{
			ID:                s.genID.Generate().String(),
			VehicleID:         v.ID,
			Description:       fmt.Sprintf("Preventive maintenance due: %.0f km since last service", kmSince),
			MaintenanceType:   fleetdomain.MaintenanceTypeAutoPreventive,
			Status:            fleetdomain.MaintenanceStatusScheduled,
			OdometerAtService: v.OdometerKM,
			ScheduledDate:     now.AddDate(0, 0, 7),
			CreatedAt:         now,
			UpdatedAt:         now,
		}
		if err := s.fleetRepo.InsertMaintenanceLog(ctx, tx, record); err != nil {
			return err
		}

		if _, nerr := s.notif.Create(ctx, notifdomain.CreateRequest{
			Type:     notifdomain.TypeMaintenance,
			Severity: notifdomain.SeverityWarning,
			Title:    fmt.Sprintf("Preventive Maintenance Due - %s", v.RegistrationNumber),
			Message: fmt.Sprintf(
				"Vehicle %s has driven %.0f km since its last service. A preventive service has been scheduled for %s.",
				v.RegistrationNumber, kmSince, record.ScheduledDate.Format("2006-01-02"),
			),
			EntityType: "vehicle",
			EntityID:   v.ID,
		}); nerr != nil {
			s.log.Warn("failed to create maintenance notification",
				zap.String("vehicle_id", v.ID),
				zap.Error(nerr),
			)
		}

		run.Add(1)
	}

	return nil
}
