package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// TripStats are the per-month trip aggregates the cost aggregator needs.
type TripStats struct {
	Count      int64
	DistanceKM float64
}

// Repository is the transactional read/write surface over the fleet
// entities. Callers own the session: every method takes the *gorm.DB it
// should run against, so jobs can pass their own transaction.
type Repository interface {
	FindVehicle(ctx context.Context, db *gorm.DB, id string) (*Vehicle, error)
	FindDriver(ctx context.Context, db *gorm.DB, id string) (*Driver, error)
	ListVehicles(ctx context.Context, db *gorm.DB) ([]Vehicle, error)
	ListDrivers(ctx context.Context, db *gorm.DB) ([]Driver, error)

	UpdateDriverStatus(ctx context.Context, db *gorm.DB, id string, status DriverStatus) error
	AddVehicleOdometer(ctx context.Context, db *gorm.DB, id string, km float64) error

	// ActiveTripUsing returns a dispatched or in-progress trip already
	// attached to either the vehicle or the driver, nil when free.
	ActiveTripUsing(ctx context.Context, db *gorm.DB, vehicleID, driverID string) (*Trip, error)

	// FuelTotalsBetween sums fuel cost and volume over [from, to).
	// An empty vehicleID means fleet-wide.
	FuelTotalsBetween(ctx context.Context, db *gorm.DB, vehicleID string, from, to time.Time) (cost, liters float64, err error)
	// MaintenanceCostBetween sums maintenance cost by scheduled date over
	// [from, to). An empty vehicleID means fleet-wide.
	MaintenanceCostBetween(ctx context.Context, db *gorm.DB, vehicleID string, from, to time.Time) (float64, error)
	// TripStatsBetween counts trips and sums distance by scheduled
	// departure over [from, to).
	TripStatsBetween(ctx context.Context, db *gorm.DB, vehicleID string, from, to time.Time) (TripStats, error)
	// CompletedTripDistanceBetween sums completed-trip distance by actual
	// departure over [from, to).
	CompletedTripDistanceBetween(ctx context.Context, db *gorm.DB, vehicleID string, from, to time.Time) (float64, error)

	// LastCompletedService returns the completed maintenance record with
	// the highest odometer reading, nil when the vehicle was never
	// serviced.
	LastCompletedService(ctx context.Context, db *gorm.DB, vehicleID string) (*MaintenanceLog, error)
	// HasOpenAutoService reports whether an auto-generated preventive
	// record is still scheduled for the vehicle.
	HasOpenAutoService(ctx context.Context, db *gorm.DB, vehicleID string) (bool, error)
	InsertMaintenanceLog(ctx context.Context, db *gorm.DB, log *MaintenanceLog) error
}
