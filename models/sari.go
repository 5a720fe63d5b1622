package models

import "time"

// Sari statuses
const (
	SariStatusActive   = "active"
	SariStatusRejected = "rejected"
)

// Sari is a single tracked unit, keyed by its serial number. The current_*
// columns are a snapshot kept in step with the latest movement_log row.
type Sari struct {
	SerialNumber    string     `gorm:"primaryKey;size:64" json:"serialNumber"`
	ItemCode        string     `gorm:"size:64;not null;index" json:"itemCode"`
	Item            *Item      `gorm:"foreignKey:ItemCode;references:ItemCode" json:"item,omitempty"`
	EntryDate       time.Time  `gorm:"not null;index" json:"entryDate"`
	CurrentProcess  string     `gorm:"size:64;index" json:"currentProcess"`
	CurrentLocation string     `gorm:"size:128" json:"currentLocation"`
	CurrentCode     string     `gorm:"size:64" json:"currentCode"`
	LastMovementAt  *time.Time `json:"lastMovementAt"`
	Status          string     `gorm:"size:16;not null;default:'active';index" json:"status"` // active, rejected
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// TableName specifies the table name for the Sari model
func (Sari) TableName() string {
	return "serial_master"
}

// IsRejected reports whether the sari has been soft-deleted
func (s Sari) IsRejected() bool {
	return s.Status == SariStatusRejected
}
