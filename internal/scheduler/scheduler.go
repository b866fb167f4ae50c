package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	analyticsdomain "github.com/fleetflow/fleetflow/internal/analytics/domain"
	"github.com/fleetflow/fleetflow/internal/clock"
	"github.com/fleetflow/fleetflow/internal/config"
	"github.com/fleetflow/fleetflow/internal/event"
	fleetdomain "github.com/fleetflow/fleetflow/internal/fleet/domain"
	notifdomain "github.com/fleetflow/fleetflow/internal/notification/domain"
	"github.com/fleetflow/fleetflow/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Job names as they appear in automation_log rows and metric labels.
const (
	JobLicenseMonitor        = "license_monitor"
	JobMaintenanceMonitor    = "maintenance_monitor"
	JobPredictiveMaintenance = "predictive_maintenance"
	JobFuelAnomalyScan       = "fuel_anomaly_scan"
	JobFinancialMonitor      = "financial_monitor"
)

type Params struct {
	fx.In

	DB            *gorm.DB
	Log           *zap.Logger
	GenID         *snowflake.Node
	Clock         clock.Clock
	Config        config.Config
	FleetRepo     fleetdomain.Repository
	AnalyticsRepo analyticsdomain.Repository
	Analytics     analyticsdomain.Service
	Notif         notifdomain.Service
	Bus           *event.Bus
}

// Scheduler owns the daily automation jobs. Each job runs inside one
// transaction and finishes with exactly one automation_log row whether it
// succeeded, failed, or panicked.
type Scheduler struct {
	db            *gorm.DB
	log           *zap.Logger
	genID         *snowflake.Node
	clock         clock.Clock
	cfg           config.AutomationConfig
	fleetRepo     fleetdomain.Repository
	analyticsRepo analyticsdomain.Repository
	analytics     analyticsdomain.Service
	notif         notifdomain.Service
	bus           *event.Bus
}

func New(p Params) *Scheduler {
	return &Scheduler{
		db:            p.DB,
		log:           p.Log.Named("scheduler"),
		genID:         p.GenID,
		clock:         p.Clock,
		cfg:           p.Config.Automation,
		fleetRepo:     p.FleetRepo,
		analyticsRepo: p.AnalyticsRepo,
		analytics:     p.Analytics,
		notif:         p.Notif,
		bus:           p.Bus,
	}
}

// jobRun accumulates the record count a job reports in its log row.
type jobRun struct {
	processed int
}

func (r *jobRun) Add(n int) { r.processed += n }

type jobFunc func(ctx context.Context, tx *gorm.DB, run *jobRun) error

// runJob executes fn inside a transaction, recovers panics, and always
// writes the automation_log row in a separate session so it survives the
// rollback.
func (s *Scheduler) runJob(ctx context.Context, name string, fn jobFunc) {
	s.log.Info("job starting", zap.String("job", name))
	started := time.Now()
	run := &jobRun{}

	err := s.executeInTx(ctx, run, fn)
	elapsed := time.Since(started)

	status := analyticsdomain.RunStatusSuccess
	var errMsg *string
	if err != nil {
		status = analyticsdomain.RunStatusError
		msg := err.Error()
		errMsg = &msg
		s.log.Error("job failed",
			zap.String("job", name),
			zap.Duration("elapsed", elapsed),
			zap.Error(err),
		)
	} else {
		s.log.Info("job finished",
			zap.String("job", name),
			zap.Int("records_processed", run.processed),
			zap.Duration("elapsed", elapsed),
		)
	}

	row := &analyticsdomain.AutomationLog{
		ID:               s.genID.Generate().String(),
		JobName:          name,
		Status:           status,
		RecordsProcessed: run.processed,
		ErrorMessage:     errMsg,
		DurationMS:       elapsed.Milliseconds(),
		RanAt:            s.clock.Now(),
	}
	if logErr := s.analyticsRepo.InsertAutomationLog(ctx, s.db, row); logErr != nil {
		s.log.Error("failed to write automation log",
			zap.String("job", name),
			zap.Error(logErr),
		)
	}

	m := metrics.Scheduler()
	m.IncJobRun(name)
	if err != nil {
		m.IncJobError(name)
	}
	m.ObserveJobDuration(name, elapsed)
	m.AddProcessed(name, run.processed)
}

func (s *Scheduler) executeInTx(ctx context.Context, run *jobRun, fn jobFunc) (err error) {
	defer func() {
		// gorm rolls the transaction back on panic and re-panics;
		// the recovery here turns that into the job's error.
		if r := recover(); r != nil {
			err = fmt.Errorf("job panicked: %v", r)
		}
	}()
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, tx, run)
	})
}

func (s *Scheduler) RunLicenseMonitor(ctx context.Context) {
	s.runJob(ctx, JobLicenseMonitor, s.licenseMonitor)
}

func (s *Scheduler) RunMaintenanceMonitor(ctx context.Context) {
	s.runJob(ctx, JobMaintenanceMonitor, s.maintenanceMonitor)
}

func (s *Scheduler) RunPredictiveMaintenance(ctx context.Context) {
	s.runJob(ctx, JobPredictiveMaintenance, s.predictiveMaintenance)
}

func (s *Scheduler) RunFuelAnomalyScan(ctx context.Context) {
	s.runJob(ctx, JobFuelAnomalyScan, s.fuelAnomalyScan)
}

func (s *Scheduler) RunFinancialMonitor(ctx context.Context) {
	s.runJob(ctx, JobFinancialMonitor, s.financialMonitor)
}

// RunAll executes every job once, in schedule order. Used by manual
// triggers and tests.
func (s *Scheduler) RunAll(ctx context.Context) {
	s.RunLicenseMonitor(ctx)
	s.RunMaintenanceMonitor(ctx)
	s.RunPredictiveMaintenance(ctx)
	s.RunFuelAnomalyScan(ctx)
	s.RunFinancialMonitor(ctx)
}
