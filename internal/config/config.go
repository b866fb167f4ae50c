package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int

	HTTPAddr string

	Automation AutomationConfig
}

// AutomationConfig is the fixed set of tunable thresholds the automation
// core reads. Each job/check reads its threshold once per run.
type AutomationConfig struct {
	// BudgetMonthly is the fleet-wide monthly operational cost ceiling.
	BudgetMonthly float64
	// MaintenanceIntervalKM is the distance between preventive services.
	MaintenanceIntervalKM float64
	// LicenseWarnDays is how many days before expiry a driver is warned.
	LicenseWarnDays int
	// FuelAnomalyPercent is the efficiency deviation that flags an anomaly.
	FuelAnomalyPercent float64
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		AppName:     getenv("APP_SERVICE", "fleetflow"),
		AppVersion:  getenv("APP_VERSION", "0.1.0"),
		Environment: getenv("ENVIRONMENT", "development"),

		DBType:            getenv("DATABASE_TYPE", "postgres"),
		DBHost:            getenv("DATABASE_HOST", "localhost"),
		DBPort:            getenv("DATABASE_PORT", "5432"),
		DBName:            getenv("DATABASE_NAME", "fleetflow"),
		DBUser:            getenv("DATABASE_USER", "postgres"),
		DBPassword:        getenv("DATABASE_PASSWORD", "postgres"),
		DBSSLMode:         getenv("DATABASE_SSLMODE", "disable"),
		DBMaxIdleConn:     getenvInt("DATABASE_MAX_IDLE_CONN", 5),
		DBMaxOpenConn:     getenvInt("DATABASE_MAX_OPEN_CONN", 25),
		DBConnMaxLifetime: getenvInt("DATABASE_CONN_MAX_LIFETIME", 3600),

		HTTPAddr: getenv("HTTP_ADDR", ":8080"),

		Automation: AutomationConfig{
			BudgetMonthly:         getenvFloat("BUDGET_THRESHOLD_MONTHLY", 500000),
			MaintenanceIntervalKM: getenvFloat("MAINTENANCE_KM_INTERVAL", 10000),
			LicenseWarnDays:       getenvInt("LICENSE_WARN_DAYS", 30),
			FuelAnomalyPercent:    getenvFloat("FUEL_ANOMALY_THRESHOLD_PCT", 20),
		},
	}
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

func getenvFloat(key string, def float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return def
	}
	return parsed
}
