package scheduler

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	analyticsdomain "github.com/fleetflow/fleetflow/internal/analytics/domain"
	analyticsrepo "github.com/fleetflow/fleetflow/internal/analytics/repository"
	analyticsservice "github.com/fleetflow/fleetflow/internal/analytics/service"
	"github.com/fleetflow/fleetflow/internal/clock"
	"github.com/fleetflow/fleetflow/internal/config"
	"github.com/fleetflow/fleetflow/internal/event"
	eventdomain "github.com/fleetflow/fleetflow/internal/event/domain"
	fleetdomain "github.com/fleetflow/fleetflow/internal/fleet/domain"
	fleetrepo "github.com/fleetflow/fleetflow/internal/fleet/repository"
	notifdomain "github.com/fleetflow/fleetflow/internal/notification/domain"
	notifservice "github.com/fleetflow/fleetflow/internal/notification/service"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

type noopBroadcaster struct{}

func (noopBroadcaster) Broadcast(message string) {}

func setupScheduler(t *testing.T) (*Scheduler, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(
		&fleetdomain.Vehicle{},
		&fleetdomain.Driver{},
		&fleetdomain.Trip{},
		&fleetdomain.MaintenanceLog{},
		&fleetdomain.FuelLog{},
		&notifdomain.Notification{},
		&eventdomain.DomainEvent{},
		&analyticsdomain.Summary{},
		&analyticsdomain.AutomationLog{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	fake := clock.NewFakeClock(testNow)
	log := zap.NewNop()
	cfg := config.Config{
		Automation: config.AutomationConfig{
			BudgetMonthly:         500000,
			MaintenanceIntervalKM: 10000,
			LicenseWarnDays:       30,
			FuelAnomalyPercent:    20,
		},
	}

	notifSvc := notifservice.New(notifservice.Params{
		DB:          db,
		Log:         log,
		GenID:       node,
		Clock:       fake,
		Broadcaster: noopBroadcaster{},
	})
	fRepo := fleetrepo.Provide()
	aRepo := analyticsrepo.Provide()
	analyticsSvc := analyticsservice.New(analyticsservice.Params{
		DB:        db,
		Log:       log,
		GenID:     node,
		Clock:     fake,
		Config:    cfg,
		FleetRepo: fRepo,
		Repo:      aRepo,
		Notif:     notifSvc,
	})
	bus := event.New(event.Params{
		DB:    db,
		Log:   log,
		GenID: node,
		Clock: fake,
	})

	s := New(Params{
		DB:            db,
		Log:           log,
		GenID:         node,
		Clock:         fake,
		Config:        cfg,
		FleetRepo:     fRepo,
		AnalyticsRepo: aRepo,
		Analytics:     analyticsSvc,
		Notif:         notifSvc,
		Bus:           bus,
	})
	return s, db
}

func lastAutomationLog(t *testing.T, db *gorm.DB, jobName string) analyticsdomain.AutomationLog {
	t.Helper()
	var row analyticsdomain.AutomationLog
	require.NoError(t, db.Where("job_name = ?", jobName).
		Order("ran_at DESC, id DESC").First(&row).Error)
	return row
}

func seedDriver(t *testing.T, db *gorm.DB, id string, expiry time.Time, status fleetdomain.DriverStatus) {
	t.Helper()
	require.NoError(t, db.Create(&fleetdomain.Driver{
		ID:            id,
		EmployeeID:    "EMP-" + id,
		FullName:      "Driver " + id,
		LicenseNumber: "DL-" + id,
		LicenseExpiry: expiry,
		Status:        status,
		CreatedAt:     testNow,
		UpdatedAt:     testNow,
	}).Error)
}

func seedVehicle(t *testing.T, db *gorm.DB, id string, odometer float64) {
	t.Helper()
	require.NoError(t, db.Create(&fleetdomain.Vehicle{
		ID:                 id,
		RegistrationNumber: "REG-" + id,
		Make:               "Tata",
		Model:              "Prima",
		Year:               2022,
		VIN:                "VIN-" + id,
		FuelType:           fleetdomain.FuelTypeDiesel,
		OdometerKM:         odometer,
		Status:             fleetdomain.VehicleStatusActive,
		CreatedAt:          testNow,
		UpdatedAt:          testNow,
	}).Error)
}

func TestLicenseMonitorSuspendsExpiredDriver(t *testing.T) {
	s, db := setupScheduler(t)
	seedDriver(t, db, "drv-1", testNow.AddDate(0, 0, -5), fleetdomain.DriverStatusAvailable)

	s.RunLicenseMonitor(context.Background())

	var driver fleetdomain.Driver
	require.NoError(t, db.First(&driver, "id = ?", "drv-1").Error)
	assert.Equal(t, fleetdomain.DriverStatusSuspended, driver.Status)

	var notifs []notifdomain.Notification
	require.NoError(t, db.Find(&notifs).Error)
	require.Len(t, notifs, 1)
	assert.Equal(t, notifdomain.TypeCompliance, notifs[0].Type)
	assert.Equal(t, notifdomain.SeverityCritical, notifs[0].Severity)

	row := lastAutomationLog(t, db, JobLicenseMonitor)
	assert.Equal(t, analyticsdomain.RunStatusSuccess, row.Status)
	assert.Equal(t, 1, row.RecordsProcessed)
}

func TestLicenseMonitorRerunNotifiesWithoutRetransition(t *testing.T) {
	s, db := setupScheduler(t)
	seedDriver(t, db, "drv-1", testNow.AddDate(0, 0, -5), fleetdomain.DriverStatusAvailable)

	s.RunLicenseMonitor(context.Background())

	var afterFirst fleetdomain.Driver
	require.NoError(t, db.First(&afterFirst, "id = ?", "drv-1").Error)
	firstUpdate := afterFirst.UpdatedAt

	s.RunLicenseMonitor(context.Background())

	// The alarm repeats while the license stays expired, the status
	// transition does not.
	var notifCount int64
	require.NoError(t, db.Model(&notifdomain.Notification{}).Count(&notifCount).Error)
	assert.Equal(t, int64(2), notifCount)

	var afterSecond fleetdomain.Driver
	require.NoError(t, db.First(&afterSecond, "id = ?", "drv-1").Error)
	assert.Equal(t, fleetdomain.DriverStatusSuspended, afterSecond.Status)
	assert.True(t, afterSecond.UpdatedAt.Equal(firstUpdate), "no redundant status write on rerun")
}

func TestLicenseMonitorPublishesWarningEvent(t *testing.T) {
	s, db := setupScheduler(t)
	seedDriver(t, db, "drv-1", testNow.AddDate(0, 0, 10), fleetdomain.DriverStatusAvailable)

	s.RunLicenseMonitor(context.Background())

	// The warning path goes through the bus; drain it to observe the row.
	s.bus.Start()
	s.bus.Stop()

	var events []eventdomain.DomainEvent
	require.NoError(t, db.Find(&events).Error)
	require.Len(t, events, 1)
	assert.Equal(t, event.DriverLicenseExpiring, events[0].EventType)
	assert.Contains(t, string(events[0].Payload), "drv-1")

	var driver fleetdomain.Driver
	require.NoError(t, db.First(&driver, "id = ?", "drv-1").Error)
	assert.Equal(t, fleetdomain.DriverStatusAvailable, driver.Status)
}

func TestMaintenanceMonitorCreatesOneAutoRecord(t *testing.T) {
	s, db := setupScheduler(t)
	seedVehicle(t, db, "veh-1", 15000)

	s.RunMaintenanceMonitor(context.Background())

	var records []fleetdomain.MaintenanceLog
	require.NoError(t, db.Find(&records).Error)
	require.Len(t, records, 1)
	assert.Equal(t, fleetdomain.MaintenanceTypeAutoPreventive, records[0].MaintenanceType)
	assert.Equal(t, fleetdomain.MaintenanceStatusScheduled, records[0].Status)
	assert.WithinDuration(t, testNow.AddDate(0, 0, 7), records[0].ScheduledDate, time.Second)

	// A second run sees the open record and stays quiet.
	s.RunMaintenanceMonitor(context.Background())
	var count int64
	require.NoError(t, db.Model(&fleetdomain.MaintenanceLog{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestMaintenanceMonitorCountsFromLastCompletedService(t *testing.T) {
	s, db := setupScheduler(t)
	seedVehicle(t, db, "veh-1", 18000)
	completed := testNow.AddDate(0, -2, 0)
	require.NoError(t, db.Create(&fleetdomain.MaintenanceLog{
		ID:                "mnt-1",
		VehicleID:         "veh-1",
		Description:       "full service",
		MaintenanceType:   "scheduled_service",
		Status:            fleetdomain.MaintenanceStatusCompleted,
		OdometerAtService: 12000,
		ScheduledDate:     completed,
		CompletedDate:     &completed,
		CreatedAt:         completed,
		UpdatedAt:         completed,
	}).Error)

	s.RunMaintenanceMonitor(context.Background())

	// 6000 km since last service, under the 10000 km interval.
	var count int64
	require.NoError(t, db.Model(&fleetdomain.MaintenanceLog{}).
		Where("maintenance_type = ?", fleetdomain.MaintenanceTypeAutoPreventive).
		Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestPredictiveMaintenanceWritesOnlyPredictionFields(t *testing.T) {
	s, db := setupScheduler(t)
	seedVehicle(t, db, "veh-1", 8000)

	vehicleID := "veh-1"
	require.NoError(t, db.Create(&analyticsdomain.Summary{
		ID:            "sum-1",
		PeriodYear:    2025,
		PeriodMonth:   6,
		VehicleID:     &vehicleID,
		TotalFuelCost: 12345,
		UpdatedAt:     testNow.AddDate(0, 0, -1),
	}).Error)

	departed := testNow.AddDate(0, 0, -45)
	arrival := departed.Add(10 * time.Hour)
	require.NoError(t, db.Create(&fleetdomain.Trip{
		ID:                 "trip-1",
		TripNumber:         "TRP-001",
		VehicleID:          "veh-1",
		DriverID:           "drv-1",
		DistanceKM:         4500,
		Status:             fleetdomain.TripStatusCompleted,
		ScheduledDeparture: departed,
		ActualDeparture:    &departed,
		ActualArrival:      &arrival,
		CreatedAt:          departed,
		UpdatedAt:          arrival,
	}).Error)

	s.RunPredictiveMaintenance(context.Background())

	var summary analyticsdomain.Summary
	require.NoError(t, db.First(&summary, "id = ?", "sum-1").Error)
	require.NotNil(t, summary.PredictedNextServiceKM)
	// No completed service yet: next service at one interval from zero.
	assert.InDelta(t, 10000, *summary.PredictedNextServiceKM, 0.01)
	require.NotNil(t, summary.PredictedNextServiceDate)
	// 2000 km remaining at 50 km/day pace is 40 days out.
	assert.WithinDuration(t, testNow.AddDate(0, 0, 40), *summary.PredictedNextServiceDate, time.Second)
	assert.InDelta(t, 12345, summary.TotalFuelCost, 0.01, "cost fields must not be clobbered")
}

func TestPredictiveMaintenanceSkipsVehicleWithoutTrips(t *testing.T) {
	s, db := setupScheduler(t)
	seedVehicle(t, db, "veh-1", 8000)

	s.RunPredictiveMaintenance(context.Background())

	var count int64
	require.NoError(t, db.Model(&analyticsdomain.Summary{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)

	row := lastAutomationLog(t, db, JobPredictiveMaintenance)
	assert.Equal(t, analyticsdomain.RunStatusSuccess, row.Status)
	assert.Equal(t, 0, row.RecordsProcessed)
}

func TestFuelAnomalyScanFlagsOnlyAnomalousVehicles(t *testing.T) {
	s, db := setupScheduler(t)
	seedVehicle(t, db, "veh-1", 50000)
	seedVehicle(t, db, "veh-2", 60000)

	seedTripAndFuel := func(vehicleID string, at time.Time, distance, liters float64) {
		arrival := at.Add(6 * time.Hour)
		require.NoError(t, db.Create(&fleetdomain.Trip{
			ID:                 fmt.Sprintf("trip-%s-%d", vehicleID, at.UnixNano()),
			TripNumber:         fmt.Sprintf("TRP-%s-%d", vehicleID, at.UnixNano()),
			VehicleID:          vehicleID,
			DriverID:           "drv-1",
			DistanceKM:         distance,
			Status:             fleetdomain.TripStatusCompleted,
			ScheduledDeparture: at,
			ActualDeparture:    &at,
			ActualArrival:      &arrival,
			CreatedAt:          at,
			UpdatedAt:          arrival,
		}).Error)
		require.NoError(t, db.Create(&fleetdomain.FuelLog{
			ID:             fmt.Sprintf("fuel-%s-%d", vehicleID, at.UnixNano()),
			VehicleID:      vehicleID,
			Date:           at,
			FuelType:       fleetdomain.FuelTypeDiesel,
			QuantityLiters: liters,
			PricePerLiter:  90,
			TotalCost:      liters * 90,
			CreatedAt:      at,
			UpdatedAt:      at,
		}).Error)
	}

	// veh-1 degrades from 10 to 13 L/100km (30% worse).
	seedTripAndFuel("veh-1", testNow.AddDate(0, 0, -60), 1000, 100)
	seedTripAndFuel("veh-1", testNow.AddDate(0, 0, -10), 500, 65)
	// veh-2 stays flat.
	seedTripAndFuel("veh-2", testNow.AddDate(0, 0, -60), 1000, 100)
	seedTripAndFuel("veh-2", testNow.AddDate(0, 0, -10), 500, 50)

	s.RunFuelAnomalyScan(context.Background())

	row := lastAutomationLog(t, db, JobFuelAnomalyScan)
	assert.Equal(t, analyticsdomain.RunStatusSuccess, row.Status)
	assert.Equal(t, 1, row.RecordsProcessed)

	var notifs []notifdomain.Notification
	require.NoError(t, db.Find(&notifs).Error)
	require.Len(t, notifs, 1)
	assert.Contains(t, notifs[0].Title, "REG-veh-1")
}

func TestFinancialMonitorRaisesBudgetAlarm(t *testing.T) {
	s, db := setupScheduler(t)
	s.cfg.BudgetMonthly = 10000
	require.NoError(t, db.Create(&fleetdomain.FuelLog{
		ID:             "fuel-1",
		VehicleID:      "veh-1",
		Date:           testNow.AddDate(0, 0, -2),
		FuelType:       fleetdomain.FuelTypeDiesel,
		QuantityLiters: 100,
		PricePerLiter:  125,
		TotalCost:      12500,
		CreatedAt:      testNow,
		UpdatedAt:      testNow,
	}).Error)

	s.RunFinancialMonitor(context.Background())

	var notifs []notifdomain.Notification
	require.NoError(t, db.Find(&notifs).Error)
	require.Len(t, notifs, 1)
	assert.Equal(t, notifdomain.TypeFinancial, notifs[0].Type)
	assert.Equal(t, notifdomain.SeverityCritical, notifs[0].Severity)
	assert.Contains(t, notifs[0].Message, "25.0%")

	var fleetRow analyticsdomain.Summary
	require.NoError(t, db.Where("vehicle_id IS NULL").First(&fleetRow).Error)
	assert.InDelta(t, 12500, fleetRow.TotalOperationalCost, 0.01)
}

func TestRunJobWritesErrorRowOnFailure(t *testing.T) {
	s, db := setupScheduler(t)

	s.runJob(context.Background(), "failing_job", func(ctx context.Context, tx *gorm.DB, run *jobRun) error {
		run.Add(3)
		return errors.New("backend unavailable")
	})

	row := lastAutomationLog(t, db, "failing_job")
	assert.Equal(t, analyticsdomain.RunStatusError, row.Status)
	assert.Equal(t, 3, row.RecordsProcessed)
	require.NotNil(t, row.ErrorMessage)
	assert.Equal(t, "backend unavailable", *row.ErrorMessage)
}

func TestRunJobRecoversFromPanic(t *testing.T) {
	s, db := setupScheduler(t)

	s.runJob(context.Background(), "panicking_job", func(ctx context.Context, tx *gorm.DB, run *jobRun) error {
		panic("unexpected state")
	})

	row := lastAutomationLog(t, db, "panicking_job")
	assert.Equal(t, analyticsdomain.RunStatusError, row.Status)
	require.NotNil(t, row.ErrorMessage)
	assert.Contains(t, *row.ErrorMessage, "unexpected state")
}

func TestRunJobRollsBackFailedTransaction(t *testing.T) {
	s, db := setupScheduler(t)

	s.runJob(context.Background(), "rollback_job", func(ctx context.Context, tx *gorm.DB, run *jobRun) error {
		if err := tx.Create(&fleetdomain.Vehicle{
			ID:                 "veh-tx",
			RegistrationNumber: "REG-TX",
			Make:               "Tata",
			Model:              "Prima",
			Year:               2022,
			VIN:                "VIN-TX",
			FuelType:           fleetdomain.FuelTypeDiesel,
			Status:             fleetdomain.VehicleStatusActive,
			CreatedAt:          testNow,
			UpdatedAt:          testNow,
		}).Error; err != nil {
			return err
		}
		return errors.New("abort")
	})

	var count int64
	require.NoError(t, db.Model(&fleetdomain.Vehicle{}).Count(&count).Error)
	assert.Equal(t, int64(0), count, "failed job writes must roll back")

	row := lastAutomationLog(t, db, "rollback_job")
	assert.Equal(t, analyticsdomain.RunStatusError, row.Status)
}

func TestRunAllExecutesEveryJob(t *testing.T) {
	s, db := setupScheduler(t)

	s.RunAll(context.Background())

	var rows []analyticsdomain.AutomationLog
	require.NoError(t, db.Find(&rows).Error)
	require.Len(t, rows, 5)
	seen := map[string]bool{}
	for _, row := range rows {
		seen[row.JobName] = true
		assert.Equal(t, analyticsdomain.RunStatusSuccess, row.Status)
	}
	for _, name := range []string{
		JobLicenseMonitor,
		JobMaintenanceMonitor,
		JobPredictiveMaintenance,
		JobFuelAnomalyScan,
		JobFinancialMonitor,
	} {
		assert.True(t, seen[name], name)
	}
}
