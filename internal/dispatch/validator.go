package dispatch

import (
	"context"
	"fmt"

	"github.com/fleetflow/fleetflow/internal/clock"
	fleetdomain "github.com/fleetflow/fleetflow/internal/fleet/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Result is the outcome of a pre-dispatch check. Valid is true only when
// Errors is empty; every failed rule contributes its own message.
type Result struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// Request names the vehicle/driver pair and cargo weight for a trip that
// is about to be dispatched.
type Request struct {
	VehicleID       string
	DriverID        string
	CargoWeightTons float64
}

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	Clock     clock.Clock
	FleetRepo fleetdomain.Repository
}

type Validator struct {
	db        *gorm.DB
	log       *zap.Logger
	clock     clock.Clock
	fleetRepo fleetdomain.Repository
}

func New(p Params) *Validator {
	return &Validator{
		db:        p.DB,
		log:       p.Log.Named("dispatch.validator"),
		clock:     p.Clock,
		fleetRepo: p.FleetRepo,
	}
}

// Validate runs every applicable rule and collects all failures rather
// than stopping at the first, so the caller can show the full list. Only
// a missing vehicle or driver short-circuits: the remaining rules are
// meaningless without the entity.
func (v *Validator) Validate(ctx context.Context, req Request) (Result, error) {
	var errs []string

	vehicle, err := v.fleetRepo.FindVehicle(ctx, v.db, req.VehicleID)
	if err != nil {
		return Result{}, err
	}
	if vehicle == nil {
		return Result{Errors: []string{fmt.Sprintf("Vehicle %s not found", req.VehicleID)}}, nil
	}

	driver, err := v.fleetRepo.FindDriver(ctx, v.db, req.DriverID)
	if err != nil {
		return Result{}, err
	}
	if driver == nil {
		return Result{Errors: []string{fmt.Sprintf("Driver %s not found", req.DriverID)}}, nil
	}

	if vehicle.Status != fleetdomain.VehicleStatusActive {
		errs = append(errs, fmt.Sprintf(
			"Vehicle %s is not active (status: %s)",
			vehicle.RegistrationNumber, vehicle.Status,
		))
	}

	if vehicle.CapacityTons > 0 && req.CargoWeightTons > vehicle.CapacityTons {
		errs = append(errs, fmt.Sprintf(
			"Cargo weight %.2ft exceeds vehicle capacity %.2ft",
			req.CargoWeightTons, vehicle.CapacityTons,
		))
	}

	today := v.clock.Today()
	if vehicle.InsuranceExpiry != nil && vehicle.InsuranceExpiry.Before(today) {
		errs = append(errs, fmt.Sprintf(
			"Vehicle %s insurance expired on %s",
			vehicle.RegistrationNumber, vehicle.InsuranceExpiry.Format("2006-01-02"),
		))
	}

	if driver.Status == fleetdomain.DriverStatusSuspended {
		errs = append(errs, fmt.Sprintf("Driver %s is suspended", driver.FullName))
	} else if driver.Status != fleetdomain.DriverStatusAvailable {
		errs = append(errs, fmt.Sprintf(
			"Driver %s is not available (status: %s)",
			driver.FullName, driver.Status,
		))
	}

	if driver.LicenseExpiry.Before(today) {
		errs = append(errs, fmt.Sprintf(
			"Driver %s license expired on %s",
			driver.FullName, driver.LicenseExpiry.Format("2006-01-02"),
		))
	}

	active, err := v.fleetRepo.ActiveTripUsing(ctx, v.db, req.VehicleID, req.DriverID)
	if err != nil {
		return Result{}, err
	}
	if active != nil {
		errs = append(errs, fmt.Sprintf(
			"Vehicle or driver is already assigned to active trip %s",
			active.TripNumber,
		))
	}

	if len(errs) > 0 {
		v.log.Info("dispatch validation failed",
			zap.String("vehicle_id", req.VehicleID),
			zap.String("driver_id", req.DriverID),
			zap.Strings("errors", errs),
		)
		return Result{Errors: errs}, nil
	}

	return Result{Valid: true, Errors: []string{}}, nil
}
