package domain

import "time"

type Type string

const (
	TypeSafety      Type = "safety"
	TypeFinancial   Type = "financial"
	TypeMaintenance Type = "maintenance"
	TypeCompliance  Type = "compliance"
	TypeOperational Type = "operational"
)

type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

type Notification struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	Type       Type      `gorm:"index;not null" json:"type"`
	Severity   Severity  `gorm:"default:info" json:"severity"`
	Title      string    `gorm:"not null" json:"title"`
	Message    string    `gorm:"not null" json:"message"`
	EntityType *string   `json:"entity_type,omitempty"`
	EntityID   *string   `json:"entity_id,omitempty"`
	IsRead     bool      `gorm:"index;default:false" json:"is_read"`
	CreatedAt  time.Time `gorm:"index;not null" json:"created_at"`
}
