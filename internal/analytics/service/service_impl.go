package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/fleetflow/fleetflow/internal/analytics/domain"
	"github.com/fleetflow/fleetflow/internal/clock"
	"github.com/fleetflow/fleetflow/internal/config"
	fleetdomain "github.com/fleetflow/fleetflow/internal/fleet/domain"
	notifdomain "github.com/fleetflow/fleetflow/internal/notification/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Clock     clock.Clock
	Config    config.Config
	FleetRepo fleetdomain.Repository
	Repo      domain.Repository
	Notif     notifdomain.Service
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	clock     clock.Clock
	cfg       config.AutomationConfig
	fleetRepo fleetdomain.Repository
	repo      domain.Repository
	notif     notifdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("analytics.service"),
		genID:     p.GenID,
		clock:     p.Clock,
		cfg:       p.Config.Automation,
		fleetRepo: p.FleetRepo,
		repo:      p.Repo,
		notif:     p.Notif,
	}
}

// monthRange returns [start, end) for a calendar month in UTC.
func monthRange(year, month int) (time.Time, time.Time) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}

func (s *Service) RecalculateVehicleCosts(ctx context.Context, vehicleID string) (*domain.Summary, error) {
	now := s.clock.Now()
	year, month := now.Year(), int(now.Month())
	from, to := monthRange(year, month)

	var summary *domain.Summary
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		fuelCost, liters, err := s.fleetRepo.FuelTotalsBetween(ctx, tx, vehicleID, from, to)
		if err != nil {
			return err
		}
		maintCost, err := s.fleetRepo.MaintenanceCostBetween(ctx, tx, vehicleID, from, to)
		if err != nil {
			return err
		}
		trips, err := s.fleetRepo.TripStatsBetween(ctx, tx, vehicleID, from, to)
		if err != nil {
			return err
		}

		efficiency := 0.0
		if liters > 0 {
			efficiency = trips.DistanceKM / liters
		}

		summary, err = s.repo.FindSummary(ctx, tx, year, month, &vehicleID)
		if err != nil {
			return err
		}
		if summary == nil {
			id := vehicleID
			summary = &domain.Summary{
				ID:          s.genID.Generate().String(),
				PeriodYear:  year,
				PeriodMonth: month,
				VehicleID:   &id,
			}
		}

		// Only the cost/trip field set is owned here; prediction fields
		// written by the predictive engine are carried through untouched.
		summary.TotalFuelCost = fuelCost
		summary.TotalMaintenanceCost = maintCost
		summary.TotalOperationalCost = fuelCost + maintCost
		summary.TotalTrips = trips.Count
		summary.TotalDistanceKM = trips.DistanceKM
		summary.AvgFuelEfficiency = efficiency
		summary.UpdatedAt = now

		return s.repo.SaveSummary(ctx, tx, summary)
	})
	if err != nil {
		return nil, err
	}

	if err := s.RecalculateFleetCosts(ctx, year, month); err != nil {
		return nil, err
	}

	return summary, nil
}

func (s *Service) RecalculateFleetCosts(ctx context.Context, year, month int) error {
	from, to := monthRange(year, month)
	now := s.clock.Now()

	var totalCost float64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		fuelCost, _, err := s.fleetRepo.FuelTotalsBetween(ctx, tx, "", from, to)
		if err != nil {
			return err
		}
		maintCost, err := s.fleetRepo.MaintenanceCostBetween(ctx, tx, "", from, to)
		if err != nil {
			return err
		}
		totalCost = fuelCost + maintCost

		summary, err := s.repo.FindSummary(ctx, tx, year, month, nil)
		if err != nil {
			return err
		}
		if summary == nil {
			summary = &domain.Summary{
				ID:          s.genID.Generate().String(),
				PeriodYear:  year,
				PeriodMonth: month,
			}
		}
		summary.TotalFuelCost = fuelCost
		summary.TotalMaintenanceCost = maintCost
		summary.TotalOperationalCost = totalCost
		summary.UpdatedAt = now

		return s.repo.SaveSummary(ctx, tx, summary)
	})
	if err != nil {
		return err
	}

	// Re-checked on every recalculation so a crossing is never missed;
	// duplicates within a month are tolerated by design.
	if totalCost > s.cfg.BudgetMonthly {
		_, err := s.notif.Create(ctx, notifdomain.CreateRequest{
			Type:     notifdomain.TypeFinancial,
			Severity: notifdomain.SeverityCritical,
			Title:    "Monthly Budget Threshold Exceeded",
			Message: fmt.Sprintf(
				"Total operational cost for %04d-%02d is %.2f, exceeding the threshold of %.2f.",
				year, month, totalCost, s.cfg.BudgetMonthly,
			),
		})
		if err != nil {
			return err
		}
		s.log.Warn("budget threshold exceeded",
			zap.Int("year", year),
			zap.Int("month", month),
			zap.Float64("total_cost", totalCost),
			zap.Float64("threshold", s.cfg.BudgetMonthly),
		)
	}

	return nil
}

func (s *Service) CheckFuelAnomaly(ctx context.Context, vehicleID string) (bool, error) {
	now := s.clock.Now()
	last30 := now.AddDate(0, 0, -30)
	last90 := now.AddDate(0, 0, -90)

	db := s.db

	_, recentLiters, err := s.fleetRepo.FuelTotalsBetween(ctx, db, vehicleID, last30, now)
	if err != nil {
		return false, err
	}
	recentDist, err := s.fleetRepo.CompletedTripDistanceBetween(ctx, db, vehicleID, last30, now)
	if err != nil {
		return false, err
	}
	if recentDist <= 0 || recentLiters <= 0 {
		return false, nil
	}

	_, baselineLiters, err := s.fleetRepo.FuelTotalsBetween(ctx, db, vehicleID, last90, last30)
	if err != nil {
		return false, err
	}
	baselineDist, err := s.fleetRepo.CompletedTripDistanceBetween(ctx, db, vehicleID, last90, last30)
	if err != nil {
		return false, err
	}
	if baselineDist <= 0 || baselineLiters <= 0 {
		return false, nil
	}

	// Consumption expressed as litres per 100 km.
	recentEff := recentLiters / recentDist * 100
	baselineEff := baselineLiters / baselineDist * 100
	deviationPct := math.Abs(recentEff-baselineEff) / baselineEff * 100

	if deviationPct < s.cfg.FuelAnomalyPercent {
		return false, nil
	}

	label := vehicleID
	if vehicle, err := s.fleetRepo.FindVehicle(ctx, db, vehicleID); err == nil && vehicle != nil {
		label = vehicle.RegistrationNumber
	}

	direction := "lower"
	if recentEff > baselineEff {
		direction = "higher"
	}
	_, err = s.notif.Create(ctx, notifdomain.CreateRequest{
		Type:     notifdomain.TypeOperational,
		Severity: notifdomain.SeverityWarning,
		Title:    fmt.Sprintf("Fuel Anomaly - %s", label),
		Message: fmt.Sprintf(
			"Vehicle %s fuel consumption is %.1f%% %s than the 3-month average (%.2f vs %.2f L/100km).",
			label, deviationPct, direction, recentEff, baselineEff,
		),
		EntityType: "vehicle",
		EntityID:   vehicleID,
	})
	if err != nil {
		return false, err
	}

	s.log.Warn("fuel anomaly detected",
		zap.String("vehicle", label),
		zap.Float64("deviation_pct", deviationPct),
	)
	return true, nil
}
