package automation

import (
	"context"
	"fmt"

	analyticsdomain "github.com/fleetflow/fleetflow/internal/analytics/domain"
	"github.com/fleetflow/fleetflow/internal/clock"
	"github.com/fleetflow/fleetflow/internal/event"
	fleetdomain "github.com/fleetflow/fleetflow/internal/fleet/domain"
	notifdomain "github.com/fleetflow/fleetflow/internal/notification/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Handlers wires the domain-event subscribers that keep derived state
// (odometers, cost rollups, notifications) in sync with operational
// writes.
type Handlers struct {
	db        *gorm.DB
	log       *zap.Logger
	clock     clock.Clock
	fleetRepo fleetdomain.Repository
	analytics analyticsdomain.Service
	notif     notifdomain.Service
}

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	Clock     clock.Clock
	FleetRepo fleetdomain.Repository
	Analytics analyticsdomain.Service
	Notif     notifdomain.Service
}

func New(p Params) *Handlers {
	return &Handlers{
		db:        p.DB,
		log:       p.Log.Named("automation.handlers"),
		clock:     p.Clock,
		fleetRepo: p.FleetRepo,
		analytics: p.Analytics,
		notif:     p.Notif,
	}
}

// Register attaches every subscriber to the bus. Must run before the bus
// starts.
func (h *Handlers) Register(bus *event.Bus) {
	bus.Register(event.TripDispatched, "log_trip_dispatched", h.onTripDispatched)
	bus.Register(event.TripCompleted, "update_vehicle_odometer", h.onTripCompleted)
	bus.Register(event.FuelLogged, "recalculate_fuel_costs", h.onFuelLogged)
	bus.Register(event.MaintenanceCreated, "recalculate_maintenance_costs", h.onMaintenanceCreated)
	bus.Register(event.ExpenseLogged, "recalculate_fleet_costs", h.onExpenseLogged)
	bus.Register(event.DriverLicenseExpiring, "notify_license_expiring", h.onLicenseExpiring)
}

func (h *Handlers) onTripDispatched(ctx context.Context, p event.Payload) error {
	h.log.Info("trip dispatched",
		zap.String("trip_id", stringField(p, "trip_id")),
		zap.String("vehicle_id", stringField(p, "vehicle_id")),
		zap.String("driver_id", stringField(p, "driver_id")),
	)
	return nil
}

func (h *Handlers) onTripCompleted(ctx context.Context, p event.Payload) error {
	vehicleID := stringField(p, "vehicle_id")
	if vehicleID == "" {
		return fmt.Errorf("trip.completed payload missing vehicle_id")
	}
	distance := floatField(p, "distance_km")
	if distance <= 0 {
		return nil
	}
	return h.fleetRepo.AddVehicleOdometer(ctx, h.db, vehicleID, distance)
}

func (h *Handlers) onFuelLogged(ctx context.Context, p event.Payload) error {
	vehicleID := stringField(p, "vehicle_id")
	if vehicleID == "" {
		return fmt.Errorf("fuel.logged payload missing vehicle_id")
	}
	if _, err := h.analytics.RecalculateVehicleCosts(ctx, vehicleID); err != nil {
		return err
	}
	_, err := h.analytics.CheckFuelAnomaly(ctx, vehicleID)
	return err
}

func (h *Handlers) onMaintenanceCreated(ctx context.Context, p event.Payload) error {
	vehicleID := stringField(p, "vehicle_id")
	if vehicleID == "" {
		return fmt.Errorf("maintenance.created payload missing vehicle_id")
	}
	_, err := h.analytics.RecalculateVehicleCosts(ctx, vehicleID)
	return err
}

func (h *Handlers) onExpenseLogged(ctx context.Context, p event.Payload) error {
	now := h.clock.Now()
	return h.analytics.RecalculateFleetCosts(ctx, now.Year(), int(now.Month()))
}

func (h *Handlers) onLicenseExpiring(ctx context.Context, p event.Payload) error {
	driverID := stringField(p, "driver_id")
	name := stringField(p, "driver_name")
	if name == "" {
		name = driverID
	}
	daysLeft := int(floatField(p, "days_left"))

	severity := notifdomain.SeverityWarning
	msg := fmt.Sprintf("Driver %s's license expires in %d days.", name, daysLeft)
	if daysLeft <= 0 {
		severity = notifdomain.SeverityCritical
		msg = fmt.Sprintf("Driver %s's license has expired.", name)
	}

	_, err := h.notif.Create(ctx, notifdomain.CreateRequest{
		Type:       notifdomain.TypeCompliance,
		Severity:   severity,
		Title:      fmt.Sprintf("License Expiry - %s", name),
		Message:    msg,
		EntityType: "driver",
		EntityID:   driverID,
	})
	return err
}

func stringField(p event.Payload, key string) string {
	if v, ok := p[key].(string); ok {
		return v
	}
	return ""
}

func floatField(p event.Payload, key string) float64 {
	switch v := p[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return 0
}
