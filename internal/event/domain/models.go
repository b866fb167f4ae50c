package domain

import (
	"time"

	"gorm.io/datatypes"
)

// DomainEvent is the append-only audit row written for every publish,
// independent of handler success.
type DomainEvent struct {
	ID          string         `gorm:"primaryKey;size:36" json:"id"`
	EventType   string         `gorm:"index;not null" json:"event_type"`
	Payload     datatypes.JSON `gorm:"not null" json:"payload"`
	TriggeredBy *string        `json:"triggered_by,omitempty"`
	CreatedAt   time.Time      `gorm:"index;not null" json:"created_at"`
}
