package scheduler

import (
	"context"

	fleetdomain "github.com/fleetflow/fleetflow/internal/fleet/domain"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// fuelAnomalyScan runs the single-vehicle consumption check over every
// active vehicle. Records processed counts only vehicles actually flagged.
func (s *Scheduler) fuelAnomalyScan(ctx context.Context, tx *gorm.DB, run *jobRun) error {
	vehicles, err := s.fleetRepo.ListVehicles(ctx, tx)
	if err != nil {
		return err
	}

	for i := range vehicles {
		v := vehicles[i]
		if v.Status != fleetdomain.VehicleStatusActive {
			continue
		}

		flagged, err := s.analytics.CheckFuelAnomaly(ctx, v.ID)
		if err != nil {
			s.log.Warn("fuel anomaly check failed",
				zap.String("vehicle_id", v.ID),
				zap.Error(err),
			)
			continue
		}
		if flagged {
			run.Add(1)
		}
	}

	return nil
}
