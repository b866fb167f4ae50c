package repository

import (
	"context"
	"errors"
	"time"

	"github.com/fleetflow/fleetflow/internal/fleet/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindVehicle(ctx context.Context, db *gorm.DB, id string) (*domain.Vehicle, error) {
	var vehicle domain.Vehicle
	err := db.WithContext(ctx).Where("id = ?", id).First(&vehicle).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &vehicle, nil
}

func (r *repo) FindDriver(ctx context.Context, db *gorm.DB, id string) (*domain.Driver, error) {
	var driver domain.Driver
	err := db.WithContext(ctx).Where("id = ?", id).First(&driver).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &driver, nil
}

func (r *repo) ListVehicles(ctx context.Context, db *gorm.DB) ([]domain.Vehicle, error) {
	var vehicles []domain.Vehicle
	if err := db.WithContext(ctx).Order("registration_number").Find(&vehicles).Error; err != nil {
		return nil, err
	}
	return vehicles, nil
}

func (r *repo) ListDrivers(ctx context.Context, db *gorm.DB) ([]domain.Driver, error) {
	var drivers []domain.Driver
	if err := db.WithContext(ctx).Order("employee_id").Find(&drivers).Error; err != nil {
		return nil, err
	}
	return drivers, nil
}

func (r *repo) UpdateDriverStatus(ctx context.Context, db *gorm.DB, id string, status domain.DriverStatus) error {
	return db.WithContext(ctx).Model(&domain.Driver{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": status, "updated_at": time.Now().UTC()}).Error
}

func (r *repo) AddVehicleOdometer(ctx context.Context, db *gorm.DB, id string, km float64) error {
	return db.WithContext(ctx).Model(&domain.Vehicle{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"odometer_km": gorm.Expr("odometer_km + ?", km),
			"updated_at":  time.Now().UTC(),
		}).Error
}

func (r *repo) ActiveTripUsing(ctx context.Context, db *gorm.DB, vehicleID, driverID string) (*domain.Trip, error) {
	var trip domain.Trip
	err := db.WithContext(ctx).
		Where("status IN ?", []domain.TripStatus{domain.TripStatusDispatched, domain.TripStatusInProgress}).
		Where("vehicle_id = ? OR driver_id = ?", vehicleID, driverID).
		First(&trip).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &trip, nil
}

func (r *repo) FuelTotalsBetween(ctx context.Context, db *gorm.DB, vehicleID string, from, to time.Time) (float64, float64, error) {
	var row struct {
		Cost   float64
		Liters float64
	}
	stmt := db.WithContext(ctx).Model(&domain.FuelLog{}).
		Select("COALESCE(SUM(total_cost), 0) AS cost, COALESCE(SUM(quantity_liters), 0) AS liters").
		Where("date >= ? AND date < ?", from, to)
	if vehicleID != "" {
		stmt = stmt.Where("vehicle_id = ?", vehicleID)
	}
	if err := stmt.Scan(&row).Error; err != nil {
		return 0, 0, err
	}
	return row.Cost, row.Liters, nil
}

func (r *repo) MaintenanceCostBetween(ctx context.Context, db *gorm.DB, vehicleID string, from, to time.Time) (float64, error) {
	var cost float64
	stmt := db.WithContext(ctx).Model(&domain.MaintenanceLog{}).
		Select("COALESCE(SUM(cost), 0)").
		Where("scheduled_date >= ? AND scheduled_date < ?", from, to)
	if vehicleID != "" {
		stmt = stmt.Where("vehicle_id = ?", vehicleID)
	}
	if err := stmt.Scan(&cost).Error; err != nil {
		return 0, err
	}
	return cost, nil
}

func (r *repo) TripStatsBetween(ctx context.Context, db *gorm.DB, vehicleID string, from, to time.Time) (domain.TripStats, error) {
	var row struct {
		Count      int64
		DistanceKM float64
	}
	stmt := db.WithContext(ctx).Model(&domain.Trip{}).
		Select("COUNT(id) AS count, COALESCE(SUM(distance_km), 0) AS distance_km").
		Where("scheduled_departure >= ? AND scheduled_departure < ?", from, to)
	if vehicleID != "" {
		stmt = stmt.Where("vehicle_id = ?", vehicleID)
	}
	if err := stmt.Scan(&row).Error; err != nil {
		return domain.TripStats{}, err
	}
	return domain.TripStats{Count: row.Count, DistanceKM: row.DistanceKM}, nil
}

func (r *repo) CompletedTripDistanceBetween(ctx context.Context, db *gorm.DB, vehicleID string, from, to time.Time) (float64, error) {
	var distance float64
	stmt := db.WithContext(ctx).Model(&domain.Trip{}).
		Select("COALESCE(SUM(distance_km), 0)").
		Where("status = ?", domain.TripStatusCompleted).
		Where("actual_departure >= ? AND actual_departure < ?", from, to)
	if vehicleID != "" {
		stmt = stmt.Where("vehicle_id = ?", vehicleID)
	}
	if err := stmt.Scan(&distance).Error; err != nil {
		return 0, err
	}
	return distance, nil
}

func (r *repo) LastCompletedService(ctx context.Context, db *gorm.DB, vehicleID string) (*domain.MaintenanceLog, error) {
	var log domain.MaintenanceLog
	err := db.WithContext(ctx).
		Where("vehicle_id = ? AND status = ?", vehicleID, domain.MaintenanceStatusCompleted).
		Order("odometer_at_service DESC").
		First(&log).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &log, nil
}

func (r *repo) HasOpenAutoService(ctx context.Context, db *gorm.DB, vehicleID string) (bool, error) {
	var count int64
	err := db.WithContext(ctx).Model(&domain.MaintenanceLog{}).
		Where("vehicle_id = ? AND status = ? AND maintenance_type = ?",
			vehicleID, domain.MaintenanceStatusScheduled, domain.MaintenanceTypeAutoPreventive).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repo) InsertMaintenanceLog(ctx context.Context, db *gorm.DB, log *domain.MaintenanceLog) error {
	return db.WithContext(ctx).Create(log).Error
}
