package scheduler

import (
	"context"

	analyticsdomain "github.com/fleetflow/fleetflow/internal/analytics/domain"
	"gorm.io/gorm"
)

// predictiveMaintenance estimates each vehicle's next service point from
// its trailing 90-day driving pace and writes the prediction fields of
// the current period summary. Vehicles without recent completed trips
// are skipped entirely. Cost fields on the same row are never touched.
func (s *Scheduler) predictiveMaintenance(ctx context.Context, tx *gorm.DB, run *jobRun) error {
	now := s.clock.Now()
	year, month := now.Year(), int(now.Month())
	windowStart := now.AddDate(0, 0, -90)

	vehicles, err := s.fleetRepo.ListVehicles(ctx, tx)
	if err != nil {
		return err
	}

	for i := range vehicles {
		v := vehicles[i]

		distance, err := s.fleetRepo.CompletedTripDistanceBetween(ctx, tx, v.ID, windowStart, now)
		if err != nil {
			return err
		}
		if distance <= 0 {
			continue
		}
		kmPerDay := distance / 90

		last, err := s.fleetRepo.LastCompletedService(ctx, tx, v.ID)
		if err != nil {
			return err
		}
		lastServiceKM := 0.0
		if last != nil {
			lastServiceKM = last.OdometerAtService
		}

		nextServiceKM := lastServiceKM + s.cfg.MaintenanceIntervalKM
		kmRemaining := nextServiceKM - v.OdometerKM
		if kmRemaining < 0 {
			kmRemaining = 0
		}
		predictedDate := now.AddDate(0, 0, int(kmRemaining/kmPerDay))

		summary, err := s.analyticsRepo.FindSummary(ctx, tx, year, month, &v.ID)
		if err != nil {
			return err
		}
		if summary == nil {
			vehicleID := v.ID
			summary = &analyticsdomain.Summary{
				ID:          s.genID.Generate().String(),
				PeriodYear:  year,
				PeriodMonth: month,
				VehicleID:   &vehicleID,
			}
		}
		summary.PredictedNextServiceKM = &nextServiceKM
		summary.PredictedNextServiceDate = &predictedDate
		summary.UpdatedAt = now

		if err := s.analyticsRepo.SaveSummary(ctx, tx, summary); err != nil {
			return err
		}
		run.Add(1)
	}

	return nil
}
