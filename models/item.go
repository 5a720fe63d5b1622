package models

import "time"

// Item is a design template shared by many saris. Each production stage after
// Entry carries its own label, which becomes a sari's current code when it
// reaches that stage.
type Item struct {
	ItemCode     string    `gorm:"primaryKey;size:64" json:"itemCode"`
	Kora         string    `gorm:"size:64" json:"kora"`
	White        string    `gorm:"size:64" json:"white"`
	SelfDyed     string    `gorm:"column:self_dyed;size:64" json:"selfDyed"`
	ContrastDyed string    `gorm:"column:contrast_dyed;size:64" json:"contrastDyed"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// TableName specifies the table name for the Item model
func (Item) TableName() string {
	return "item_master"
}

// LabelFor returns the item's label for a stage, or "" when the item has none
func (i Item) LabelFor(stage string) string {
	switch stage {
	case "Kora":
		return i.Kora
	case "White":
		return i.White
	case "Self Dyed":
		return i.SelfDyed
	case "Contrast Dyed":
		return i.ContrastDyed
	}
	return ""
}
