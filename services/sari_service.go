package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/kendall-kelly/sari-inventory-api/models"
	"github.com/kendall-kelly/sari-inventory-api/utils"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// SariListFilter holds the query-string filters of the sari list
type SariListFilter struct {
	Search  string
	Process string
	Status  string // active (default), rejected, all
	Page    int
	Limit   int
}

// CreateSariInput is the intake request for a new sari
type CreateSariInput struct {
	SerialNumber    string
	ItemCode        string
	EntryDate       time.Time
	CurrentProcess  string
	CurrentLocation string
}

// UpdateSariInput carries the editable fields of a sari
type UpdateSariInput struct {
	ItemCode        string
	EntryDate       time.Time
	CurrentProcess  string
	CurrentLocation string
}

// SariService handles intake and maintenance of saris
type SariService struct {
	db     *gorm.DB
	cache  *Cache
	logger logrus.FieldLogger
}

// NewSariService creates a new SariService
func NewSariService(db *gorm.DB, cache *Cache, logger logrus.FieldLogger) *SariService {
	return &SariService{db: db, cache: cache, logger: logger}
}

// List returns one page of saris matching filter, newest entries first
func (s *SariService) List(ctx context.Context, filter SariListFilter) ([]models.Sari, utils.Pagination, error) {
	page, limit := utils.NormalizePage(filter.Page, filter.Limit, 20)

	query := s.db.WithContext(ctx).Model(&models.Sari{})
	if filter.Search != "" {
		pattern := utils.LikePattern(filter.Search)
		query = query.Where("(LOWER(serial_number) LIKE ? OR LOWER(item_code) LIKE ?)", pattern, pattern)
	}
	if filter.Process != "" {
		query = query.Where("current_process = ?", filter.Process)
	}
	switch filter.Status {
	case "", models.SariStatusActive:
		query = query.Where("status = ?", models.SariStatusActive)
	case models.SariStatusRejected:
		query = query.Where("status = ?", models.SariStatusRejected)
	case "all":
	default:
		return nil, utils.Pagination{}, ValidationError("INVALID_STATUS", "status must be one of active, rejected, all")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, utils.Pagination{}, FromDB(err, "Failed to count saris")
	}

	var saris []models.Sari
	err := query.Order("entry_date DESC").Order("serial_number ASC").
		Limit(limit).Offset(utils.Offset(page, limit)).
		Find(&saris).Error
	if err != nil {
		return nil, utils.Pagination{}, FromDB(err, "Failed to fetch saris")
	}

	return saris, utils.NewPagination(page, limit, total), nil
}

// Get returns a sari with its item master row
func (s *SariService) Get(ctx context.Context, serialNumber string) (*models.Sari, error) {
	var sari models.Sari
	err := s.db.WithContext(ctx).Preload("Item").
		Where("serial_number = ?", serialNumber).First(&sari).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NotFoundError("SARI_NOT_FOUND", "Sari not found")
	}
	if err != nil {
		return nil, FromDB(err, "Failed to fetch sari")
	}
	return &sari, nil
}

// Create registers a new sari. An unknown item code gets a synthesized item
// master row in the same transaction.
func (s *SariService) Create(ctx context.Context, in CreateSariInput) (*models.Sari, error) {
	in.SerialNumber = strings.TrimSpace(in.SerialNumber)
	in.ItemCode = strings.TrimSpace(in.ItemCode)
	if in.SerialNumber == "" {
		return nil, ValidationError("VALIDATION_ERROR", "Serial number is required")
	}
	if in.ItemCode == "" {
		return nil, ValidationError("VALIDATION_ERROR", "Design code is required")
	}
	if in.EntryDate.IsZero() {
		return nil, ValidationError("VALIDATION_ERROR", "Entry date is required")
	}

	var sari models.Sari
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Sari{}).Where("serial_number = ?", in.SerialNumber).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ConflictError("SARI_EXISTS", "Sari with this serial number already exists")
		}

		item, err := ensureItem(tx, in.ItemCode)
		if err != nil {
			return err
		}

		sari = models.Sari{
			SerialNumber:    in.SerialNumber,
			ItemCode:        in.ItemCode,
			EntryDate:       in.EntryDate,
			CurrentProcess:  in.CurrentProcess,
			CurrentLocation: in.CurrentLocation,
			Status:          models.SariStatusActive,
		}
		if in.CurrentProcess != "" {
			sari.CurrentCode = codeFromItem(item, in.ItemCode, in.CurrentProcess)
		}
		return tx.Omit("Item").Create(&sari).Error
	})
	if err != nil {
		return nil, FromDB(err, "Failed to create sari")
	}

	s.cache.InvalidateDashboard(ctx)
	s.logger.WithFields(logrus.Fields{
		"serial_number": sari.SerialNumber,
		"item_code":     sari.ItemCode,
	}).Info("sari created")
	return &sari, nil
}

// Update edits a sari's descriptive fields. The serial number itself is immutable.
func (s *SariService) Update(ctx context.Context, serialNumber string, in UpdateSariInput) (*models.Sari, error) {
	in.ItemCode = strings.TrimSpace(in.ItemCode)
	if in.ItemCode == "" {
		return nil, ValidationError("VALIDATION_ERROR", "Design code is required")
	}
	if in.EntryDate.IsZero() {
		return nil, ValidationError("VALIDATION_ERROR", "Entry date is required")
	}

	var sari models.Sari
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockSari(tx, serialNumber, &sari); err != nil {
			return err
		}

		item, err := ensureItem(tx, in.ItemCode)
		if err != nil {
			return err
		}

		currentCode := ""
		if in.CurrentProcess != "" {
			currentCode = codeFromItem(item, in.ItemCode, in.CurrentProcess)
		}

		updates := map[string]interface{}{
			"item_code":        in.ItemCode,
			"entry_date":       in.EntryDate,
			"current_process":  in.CurrentProcess,
			"current_location": in.CurrentLocation,
			"current_code":     currentCode,
		}
		if err := tx.Model(&models.Sari{}).Where("serial_number = ?", serialNumber).Updates(updates).Error; err != nil {
			return err
		}
		return tx.Where("serial_number = ?", serialNumber).First(&sari).Error
	})
	if err != nil {
		return nil, FromDB(err, "Failed to update sari")
	}

	s.cache.InvalidateDashboard(ctx)
	return &sari, nil
}

// Delete soft-deletes a sari by marking it rejected. Its movement history is kept.
func (s *SariService) Delete(ctx context.Context, serialNumber string) (*models.Sari, error) {
	var sari models.Sari
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockSari(tx, serialNumber, &sari); err != nil {
			return err
		}
		if sari.IsRejected() {
			return nil
		}
		sari.Status = models.SariStatusRejected
		return tx.Model(&models.Sari{}).Where("serial_number = ?", serialNumber).
			Update("status", models.SariStatusRejected).Error
	})
	if err != nil {
		return nil, FromDB(err, "Failed to delete sari")
	}

	s.cache.InvalidateDashboard(ctx)
	s.logger.WithField("serial_number", serialNumber).Info("sari marked as rejected")
	return &sari, nil
}

// Restore reactivates a rejected sari
func (s *SariService) Restore(ctx context.Context, serialNumber string) (*models.Sari, error) {
	var sari models.Sari
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockSari(tx, serialNumber, &sari); err != nil {
			return err
		}
		sari.Status = models.SariStatusActive
		return tx.Model(&models.Sari{}).Where("serial_number = ?", serialNumber).
			Update("status", models.SariStatusActive).Error
	})
	if err != nil {
		return nil, FromDB(err, "Failed to restore sari")
	}

	s.cache.InvalidateDashboard(ctx)
	return &sari, nil
}
