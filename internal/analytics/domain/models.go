package domain

import "time"

// Summary is the precomputed monthly rollup, one row per
// (year, month, vehicle) and one fleet-wide row with a NULL vehicle id.
// Cost/trip fields belong to the cost aggregator, prediction fields to
// the predictive engine; neither writer may clobber the other's set.
type Summary struct {
	ID          string  `gorm:"primaryKey;size:36" json:"id"`
	PeriodYear  int     `gorm:"uniqueIndex:ix_analytics_period_vehicle;not null" json:"period_year"`
	PeriodMonth int     `gorm:"uniqueIndex:ix_analytics_period_vehicle;not null" json:"period_month"`
	VehicleID   *string `gorm:"uniqueIndex:ix_analytics_period_vehicle;size:36" json:"vehicle_id,omitempty"`

	TotalFuelCost        float64 `gorm:"default:0" json:"total_fuel_cost"`
	TotalMaintenanceCost float64 `gorm:"default:0" json:"total_maintenance_cost"`
	TotalOperationalCost float64 `gorm:"default:0" json:"total_operational_cost"`
	TotalTrips           int64   `gorm:"default:0" json:"total_trips"`
	TotalDistanceKM      float64 `gorm:"column:total_distance_km;default:0" json:"total_distance_km"`
	AvgFuelEfficiency    float64 `gorm:"default:0" json:"avg_fuel_efficiency"`

	PredictedNextServiceKM   *float64   `gorm:"column:predicted_next_service_km" json:"predicted_next_service_km,omitempty"`
	PredictedNextServiceDate *time.Time `json:"predicted_next_service_date,omitempty"`

	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Summary) TableName() string { return "analytics_summary" }

const (
	RunStatusSuccess = "success"
	RunStatusError   = "error"
)

// AutomationLog records one scheduled-job execution. Exactly one row is
// written per run, success or not.
type AutomationLog struct {
	ID               string    `gorm:"primaryKey;size:36" json:"id"`
	JobName          string    `gorm:"index;not null" json:"job_name"`
	Status           string    `gorm:"not null" json:"status"`
	RecordsProcessed int       `gorm:"default:0" json:"records_processed"`
	ErrorMessage     *string   `json:"error_message,omitempty"`
	DurationMS       int64     `gorm:"column:duration_ms;default:0" json:"duration_ms"`
	RanAt            time.Time `gorm:"index;not null" json:"ran_at"`
}
