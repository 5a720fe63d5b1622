package services

import (
	"context"
	"errors"

	"github.com/kendall-kelly/sari-inventory-api/models"
	"github.com/kendall-kelly/sari-inventory-api/process"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ItemService reads the item (design code) master
type ItemService struct {
	db *gorm.DB
}

// NewItemService creates a new ItemService
func NewItemService(db *gorm.DB) *ItemService {
	return &ItemService{db: db}
}

// List returns every design code ordered by code
func (s *ItemService) List(ctx context.Context) ([]models.Item, error) {
	var items []models.Item
	if err := s.db.WithContext(ctx).Order("item_code ASC").Find(&items).Error; err != nil {
		return nil, FromDB(err, "Failed to fetch design codes")
	}
	return items, nil
}

// NewSyntheticItem builds an item whose stage labels are generated from the code
func NewSyntheticItem(itemCode string) models.Item {
	return models.Item{
		ItemCode:     itemCode,
		Kora:         process.SyntheticCode(process.StageKora, itemCode),
		White:        process.SyntheticCode(process.StageWhite, itemCode),
		SelfDyed:     process.SyntheticCode(process.StageSelfDyed, itemCode),
		ContrastDyed: process.SyntheticCode(process.StageContrastDyed, itemCode),
	}
}

// ensureItem returns the item for itemCode, creating a synthetic one when the
// code has never been seen.
func ensureItem(tx *gorm.DB, itemCode string) (*models.Item, error) {
	item := NewSyntheticItem(itemCode)
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&item).Error; err != nil {
		return nil, err
	}
	var stored models.Item
	if err := tx.Where("item_code = ?", itemCode).First(&stored).Error; err != nil {
		return nil, err
	}
	return &stored, nil
}

// currentCodeFor resolves the label a sari of itemCode carries at stage.
// A missing item or label falls back to the synthetic <STAGE><itemCode> label.
func currentCodeFor(tx *gorm.DB, itemCode, stage string) (string, error) {
	var item models.Item
	err := tx.Where("item_code = ?", itemCode).First(&item).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return process.SyntheticCode(stage, itemCode), nil
	case err != nil:
		return "", err
	}
	return codeFromItem(&item, itemCode, stage), nil
}

func codeFromItem(item *models.Item, itemCode, stage string) string {
	if item != nil {
		if label := item.LabelFor(stage); label != "" {
			return label
		}
	}
	return process.SyntheticCode(stage, itemCode)
}
