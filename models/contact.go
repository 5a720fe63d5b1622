package models

import "time"

// Contact statuses
const (
	ContactStatusActive   = "active"
	ContactStatusInactive = "inactive"
)

// Customer represents a buyer of finished saris
type Customer struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Name       string    `gorm:"size:128;not null;index" json:"name"`
	Email      *string   `gorm:"size:128;uniqueIndex" json:"email"`
	Phone      *string   `gorm:"size:32;uniqueIndex" json:"phone"`
	Address    string    `gorm:"type:text" json:"address"`
	City       string    `gorm:"size:64" json:"city"`
	State      string    `gorm:"size:64" json:"state"`
	PostalCode string    `gorm:"column:pincode;size:16" json:"pincode"`
	Status     string    `gorm:"size:16;not null;default:'active';index" json:"status"` // active, inactive
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// TableName specifies the table name for the Customer model
func (Customer) TableName() string {
	return "customers"
}

// Supplier represents a vendor of yarn, dyes or job work
type Supplier struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Name       string    `gorm:"size:128;not null;index" json:"name"`
	Email      *string   `gorm:"size:128;uniqueIndex" json:"email"`
	Phone      *string   `gorm:"size:32;uniqueIndex" json:"phone"`
	Address    string    `gorm:"type:text" json:"address"`
	City       string    `gorm:"size:64" json:"city"`
	State      string    `gorm:"size:64" json:"state"`
	PostalCode string    `gorm:"column:pincode;size:16" json:"pincode"`
	Category   string    `gorm:"size:64;not null;default:'general';index" json:"category"`
	Status     string    `gorm:"size:16;not null;default:'active';index" json:"status"` // active, inactive
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// TableName specifies the table name for the Supplier model
func (Supplier) TableName() string {
	return "suppliers"
}
