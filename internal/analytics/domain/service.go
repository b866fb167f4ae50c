package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	// FindSummary loads the row for the key tuple, nil when absent.
	// A nil vehicleID addresses the fleet-wide row.
	FindSummary(ctx context.Context, db *gorm.DB, year, month int, vehicleID *string) (*Summary, error)
	SaveSummary(ctx context.Context, db *gorm.DB, summary *Summary) error
	InsertAutomationLog(ctx context.Context, db *gorm.DB, log *AutomationLog) error
}

// Service is the cost aggregator plus the fuel anomaly check that the
// fuel-logged handler and the daily scan both use.
type Service interface {
	// RecalculateVehicleCosts recomputes the vehicle's current-month
	// cost fields and then always recomputes the fleet-wide row.
	RecalculateVehicleCosts(ctx context.Context, vehicleID string) (*Summary, error)
	// RecalculateFleetCosts recomputes the fleet-wide row for the period
	// and emits the budget-exceeded notification when the ceiling is
	// crossed. It re-checks on every call: duplicate notifications
	// within a month are accepted so a crossing is never missed.
	RecalculateFleetCosts(ctx context.Context, year, month int) error
	// CheckFuelAnomaly compares the trailing 30-day consumption against
	// the 60-day baseline before it and reports whether an anomaly
	// notification was emitted. Windows without enough data are skipped.
	CheckFuelAnomaly(ctx context.Context, vehicleID string) (bool, error)
}
