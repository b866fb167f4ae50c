package domain

import "time"

type VehicleStatus string

const (
	VehicleStatusActive      VehicleStatus = "active"
	VehicleStatusMaintenance VehicleStatus = "maintenance"
	VehicleStatusRetired     VehicleStatus = "retired"
)

type DriverStatus string

const (
	DriverStatusAvailable DriverStatus = "available"
	DriverStatusOnTrip    DriverStatus = "on_trip"
	DriverStatusOffDuty   DriverStatus = "off_duty"
	DriverStatusSuspended DriverStatus = "suspended"
)

type TripStatus string

const (
	TripStatusScheduled  TripStatus = "scheduled"
	TripStatusDispatched TripStatus = "dispatched"
	TripStatusInProgress TripStatus = "in_progress"
	TripStatusCompleted  TripStatus = "completed"
	TripStatusCancelled  TripStatus = "cancelled"
)

type MaintenanceStatus string

const (
	MaintenanceStatusScheduled  MaintenanceStatus = "scheduled"
	MaintenanceStatusInProgress MaintenanceStatus = "in_progress"
	MaintenanceStatusCompleted  MaintenanceStatus = "completed"
)

// MaintenanceTypeAutoPreventive marks service records created by the
// maintenance monitor rather than by a human.
const MaintenanceTypeAutoPreventive = "preventive_auto"

type FuelType string

const (
	FuelTypeDiesel   FuelType = "diesel"
	FuelTypePetrol   FuelType = "petrol"
	FuelTypeCNG      FuelType = "cng"
	FuelTypeElectric FuelType = "electric"
)

type Vehicle struct {
	ID                 string        `gorm:"primaryKey;size:36" json:"id"`
	RegistrationNumber string        `gorm:"uniqueIndex;not null" json:"registration_number"`
	Make               string        `gorm:"not null" json:"make"`
	Model              string        `gorm:"not null" json:"model"`
	Year               int           `gorm:"not null" json:"year"`
	VIN                string        `gorm:"column:vin;uniqueIndex" json:"vin"`
	FuelType           FuelType      `gorm:"not null" json:"fuel_type"`
	CapacityTons       float64       `gorm:"default:0" json:"capacity_tons"`
	OdometerKM         float64       `gorm:"column:odometer_km;default:0" json:"odometer_km"`
	Status             VehicleStatus `gorm:"default:active" json:"status"`
	InsuranceExpiry    *time.Time    `json:"insurance_expiry,omitempty"`
	CreatedAt          time.Time     `gorm:"not null" json:"created_at"`
	UpdatedAt          time.Time     `gorm:"not null" json:"updated_at"`
}

type Driver struct {
	ID            string       `gorm:"primaryKey;size:36" json:"id"`
	EmployeeID    string       `gorm:"uniqueIndex;not null" json:"employee_id"`
	FullName      string       `gorm:"not null" json:"full_name"`
	Phone         string       `json:"phone"`
	Email         *string      `json:"email,omitempty"`
	LicenseNumber string       `gorm:"uniqueIndex;not null" json:"license_number"`
	LicenseExpiry time.Time    `gorm:"not null" json:"license_expiry"`
	Status        DriverStatus `gorm:"default:available" json:"status"`
	TotalTrips    int          `gorm:"default:0" json:"total_trips"`
	SafetyScore   float64      `gorm:"default:100" json:"safety_score"`
	CreatedAt     time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time    `gorm:"not null" json:"updated_at"`
}

type Trip struct {
	ID                 string     `gorm:"primaryKey;size:36" json:"id"`
	TripNumber         string     `gorm:"uniqueIndex;not null" json:"trip_number"`
	VehicleID          string     `gorm:"index;not null" json:"vehicle_id"`
	DriverID           string     `gorm:"index;not null" json:"driver_id"`
	Origin             string     `json:"origin"`
	Destination        string     `json:"destination"`
	DistanceKM         float64    `gorm:"column:distance_km;default:0" json:"distance_km"`
	CargoDescription   *string    `json:"cargo_description,omitempty"`
	CargoWeightTons    float64    `gorm:"default:0" json:"cargo_weight_tons"`
	Status             TripStatus `gorm:"index;default:scheduled" json:"status"`
	ScheduledDeparture time.Time  `gorm:"not null" json:"scheduled_departure"`
	ScheduledArrival   *time.Time `json:"scheduled_arrival,omitempty"`
	ActualDeparture    *time.Time `json:"actual_departure,omitempty"`
	ActualArrival      *time.Time `json:"actual_arrival,omitempty"`
	FuelConsumedLiters float64    `gorm:"default:0" json:"fuel_consumed_liters"`
	Cost               float64    `gorm:"default:0" json:"cost"`
	Notes              *string    `json:"notes,omitempty"`
	DispatchedBy       *string    `json:"dispatched_by,omitempty"`
	CreatedAt          time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt          time.Time  `gorm:"not null" json:"updated_at"`
}

type MaintenanceLog struct {
	ID                string            `gorm:"primaryKey;size:36" json:"id"`
	VehicleID         string            `gorm:"index;not null" json:"vehicle_id"`
	Description       string            `gorm:"not null" json:"description"`
	MaintenanceType   string            `gorm:"not null" json:"maintenance_type"`
	Status            MaintenanceStatus `gorm:"default:scheduled" json:"status"`
	Cost              float64           `gorm:"default:0" json:"cost"`
	OdometerAtService float64           `gorm:"default:0" json:"odometer_at_service"`
	ScheduledDate     time.Time         `gorm:"not null" json:"scheduled_date"`
	CompletedDate     *time.Time        `json:"completed_date,omitempty"`
	PerformedBy       *string           `json:"performed_by,omitempty"`
	Notes             *string           `json:"notes,omitempty"`
	CreatedAt         time.Time         `gorm:"not null" json:"created_at"`
	UpdatedAt         time.Time         `gorm:"not null" json:"updated_at"`
}

type FuelLog struct {
	ID             string    `gorm:"primaryKey;size:36" json:"id"`
	VehicleID      string    `gorm:"index;not null" json:"vehicle_id"`
	Date           time.Time `gorm:"index;not null" json:"date"`
	FuelType       FuelType  `gorm:"not null" json:"fuel_type"`
	QuantityLiters float64   `gorm:"not null" json:"quantity_liters"`
	PricePerLiter  float64   `gorm:"not null" json:"price_per_liter"`
	TotalCost      float64   `gorm:"not null" json:"total_cost"`
	OdometerKM     float64   `gorm:"column:odometer_km" json:"odometer_km"`
	StationName    *string   `json:"station_name,omitempty"`
	ReceiptNumber  *string   `json:"receipt_number,omitempty"`
	Notes          *string   `json:"notes,omitempty"`
	CreatedAt      time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time `gorm:"not null" json:"updated_at"`
}
