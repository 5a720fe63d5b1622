package models

import "time"

// Movement is an immutable record of a sari moving between production stages
type Movement struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	SerialNumber   string    `gorm:"size:64;not null;index:idx_movement_serial_created,priority:1" json:"serialNumber"`
	MovementDate   time.Time `gorm:"not null;index" json:"movementDate"`
	FromProcess    string    `gorm:"size:64;not null" json:"fromProcess"`
	ToProcess      string    `gorm:"column:done_to_process;size:64;not null;index" json:"toProcess"`
	FromLocation   string    `gorm:"size:128" json:"fromLocation"`
	ToLocation     string    `gorm:"size:128;not null" json:"location"`
	Quality        *string   `gorm:"size:64" json:"quality,omitempty"`
	DocumentNumber *string   `gorm:"size:64" json:"documentNumber,omitempty"`
	Notes          *string   `gorm:"type:text" json:"notes,omitempty"`
	Operator       *string   `gorm:"size:128" json:"operator,omitempty"`
	CreatedAt      time.Time `gorm:"index:idx_movement_serial_created,priority:2" json:"createdAt"`
}

// TableName specifies the table name for the Movement model
func (Movement) TableName() string {
	return "movement_log"
}
