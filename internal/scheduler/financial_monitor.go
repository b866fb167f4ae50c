package scheduler

import (
	"context"
	"fmt"
	"time"

	analyticsdomain "github.com/fleetflow/fleetflow/internal/analytics/domain"
	notifdomain "github.com/fleetflow/fleetflow/internal/notification/domain"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// financialMonitor refreshes the fleet-wide summary for the current month
// and raises the budget alarm when operational cost has crossed the
// ceiling. The alarm repeats on later runs within the month.
func (s *Scheduler) financialMonitor(ctx context.Context, tx *gorm.DB, run *jobRun) error {
	now := s.clock.Now()
	year, month := now.Year(), int(now.Month())
	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	fuelCost, _, err := s.fleetRepo.FuelTotalsBetween(ctx, tx, "", from, to)
	if err != nil {
		return err
	}
	maintCost, err := s.fleetRepo.MaintenanceCostBetween(ctx, tx, "", from, to)
	if err != nil {
		return err
	}
	totalCost := fuelCost + maintCost

	summary, err := s.analyticsRepo.FindSummary(ctx, tx, year, month, nil)
	if err != nil {
		return err
	}
	if summary == nil {
		summary = &analyticsdomain.Summary{
			ID:          s.genID.Generate().String(),
			PeriodYear:  year,
			PeriodMonth: month,
		}
	}
	summary.TotalFuelCost = fuelCost
	summary.TotalMaintenanceCost = maintCost
	summary.TotalOperationalCost = totalCost
	summary.UpdatedAt = now

	if err := s.analyticsRepo.SaveSummary(ctx, tx, summary); err != nil {
		return err
	}
	run.Add(1)

	if totalCost > s.cfg.BudgetMonthly {
		pctOver := (totalCost - s.cfg.BudgetMonthly) / s.cfg.BudgetMonthly * 100
		if _, nerr := s.notif.Create(ctx, notifdomain.CreateRequest{
			Type:     notifdomain.TypeFinancial,
			Severity: notifdomain.SeverityCritical,
			Title:    "Monthly Budget Exceeded",
			Message: fmt.Sprintf(
				"Operational cost for %04d-%02d is %.2f, %.1f%% over the budget of %.2f.",
				year, month, totalCost, pctOver, s.cfg.BudgetMonthly,
			),
		}); nerr != nil {
			s.log.Warn("failed to create budget notification", zap.Error(nerr))
		}
	}

	return nil
}
