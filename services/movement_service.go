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
	"gorm.io/gorm/clause"
)

// AcceptMovementInput is a request to move a sari to another stage
type AcceptMovementInput struct {
	SerialNumber   string
	FromProcess    string
	ToProcess      string
	Location       string
	Notes          *string
	Operator       *string
	Quality        *string
	DocumentNumber *string
}

// UpdateMovementInput carries the editable fields of a movement
type UpdateMovementInput struct {
	FromProcess    string
	ToProcess      string
	Location       string
	Notes          *string
	Quality        *string
	DocumentNumber *string
}

// MovementListFilter holds the query-string filters of the movement log
type MovementListFilter struct {
	SerialNumber string
	Process      string
	Date         *time.Time
	Page         int
	Limit        int
}

// AcceptedMovement is the stored movement plus the sari state it produced
type AcceptedMovement struct {
	Movement models.Movement `json:"movement"`
	Sari     models.Sari     `json:"sari"`
}

// MovementSummary aggregates the whole movement log
type MovementSummary struct {
	TotalMovements  int64          `json:"totalMovements"`
	UniqueSaris     int64          `json:"uniqueSaris"`
	ProcessStats    []ProcessCount `json:"processStats"`
	RecentMovements int64          `json:"recentMovements"`
}

// ProcessCount is a count grouped by process name
type ProcessCount struct {
	Process string `json:"process"`
	Count   int64  `json:"count"`
}

// MovementService records movements and keeps sari state in step with them
type MovementService struct {
	db      *gorm.DB
	cache   *Cache
	metrics *Metrics
	logger  logrus.FieldLogger
	now     func() time.Time
}

// NewMovementService creates a new MovementService
func NewMovementService(db *gorm.DB, cache *Cache, metrics *Metrics, logger logrus.FieldLogger) *MovementService {
	return &MovementService{
		db:      db,
		cache:   cache,
		metrics: metrics,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func validateMovement(serialNumber, fromProcess, toProcess, location string) error {
	switch {
	case strings.TrimSpace(serialNumber) == "":
		return ValidationError("VALIDATION_ERROR", "Serial number is required")
	case strings.TrimSpace(fromProcess) == "":
		return ValidationError("VALIDATION_ERROR", "From process is required")
	case strings.TrimSpace(toProcess) == "":
		return ValidationError("VALIDATION_ERROR", "To process is required")
	case strings.TrimSpace(location) == "":
		return ValidationError("VALIDATION_ERROR", "Location is required")
	}
	return nil
}

// lockSari loads a sari for update, mapping a missing row to NotFound
func lockSari(tx *gorm.DB, serialNumber string, dest *models.Sari) error {
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("serial_number = ?", serialNumber).First(dest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NotFoundError("SARI_NOT_FOUND", "Sari with this serial number does not exist")
	}
	return err
}

// Accept records a movement and moves the sari to its destination. Both writes
// happen in one transaction: a failure leaves neither the movement nor the
// sari update behind.
func (s *MovementService) Accept(ctx context.Context, in AcceptMovementInput) (*AcceptedMovement, error) {
	if err := validateMovement(in.SerialNumber, in.FromProcess, in.ToProcess, in.Location); err != nil {
		return nil, err
	}

	var result AcceptedMovement
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var sari models.Sari
		if err := lockSari(tx, in.SerialNumber, &sari); err != nil {
			return err
		}
		if sari.IsRejected() {
			return ConflictError("SARI_REJECTED", "Rejected saris cannot be moved")
		}

		now := s.now()
		movement := models.Movement{
			SerialNumber:   sari.SerialNumber,
			MovementDate:   now,
			FromProcess:    in.FromProcess,
			ToProcess:      in.ToProcess,
			FromLocation:   sari.CurrentLocation,
			ToLocation:     in.Location,
			Quality:        in.Quality,
			DocumentNumber: in.DocumentNumber,
			Notes:          in.Notes,
			Operator:       in.Operator,
			CreatedAt:      now,
		}
		if err := tx.Create(&movement).Error; err != nil {
			return err
		}

		if err := syncSariToMovement(tx, &sari, &movement); err != nil {
			return err
		}

		result = AcceptedMovement{Movement: movement, Sari: sari}
		return nil
	})
	if err != nil {
		return nil, FromDB(err, "Failed to create movement log")
	}

	s.cache.InvalidateDashboard(ctx)
	s.metrics.MovementAccepted(ctx, in.FromProcess, in.ToProcess)
	s.logger.WithFields(logrus.Fields{
		"serial_number": in.SerialNumber,
		"from_process":  in.FromProcess,
		"to_process":    in.ToProcess,
		"movement_id":   result.Movement.ID,
	}).Info("movement accepted")
	return &result, nil
}

// syncSariToMovement copies a movement's destination into the sari's current state
func syncSariToMovement(tx *gorm.DB, sari *models.Sari, movement *models.Movement) error {
	code, err := currentCodeFor(tx, sari.ItemCode, movement.ToProcess)
	if err != nil {
		return err
	}

	movedAt := movement.CreatedAt
	updates := map[string]interface{}{
		"current_process":  movement.ToProcess,
		"current_location": movement.ToLocation,
		"current_code":     code,
		"last_movement_at": movedAt,
	}
	res := tx.Model(&models.Sari{}).Where("serial_number = ?", sari.SerialNumber).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected != 1 {
		return PersistenceError("Failed to update sari state", errors.New("sari row not updated"))
	}

	sari.CurrentProcess = movement.ToProcess
	sari.CurrentLocation = movement.ToLocation
	sari.CurrentCode = code
	sari.LastMovementAt = &movedAt
	return nil
}

// resyncSari points the sari at its latest remaining movement, if any
func resyncSari(tx *gorm.DB, serialNumber string) error {
	var sari models.Sari
	if err := lockSari(tx, serialNumber, &sari); err != nil {
		if IsKind(err, KindNotFound) {
			return nil
		}
		return err
	}

	var latest models.Movement
	err := tx.Where("serial_number = ?", serialNumber).
		Order("created_at DESC").Order("id DESC").
		First(&latest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return syncSariToMovement(tx, &sari, &latest)
}

// List returns one page of the movement log, newest first
func (s *MovementService) List(ctx context.Context, filter MovementListFilter) ([]models.Movement, utils.Pagination, error) {
	page, limit := utils.NormalizePage(filter.Page, filter.Limit, 50)

	query := s.db.WithContext(ctx).Model(&models.Movement{})
	if filter.SerialNumber != "" {
		query = query.Where("LOWER(serial_number) LIKE ?", utils.LikePattern(filter.SerialNumber))
	}
	if filter.Process != "" {
		query = query.Where("(from_process = ? OR done_to_process = ?)", filter.Process, filter.Process)
	}
	if filter.Date != nil {
		start := utils.StartOfDay(*filter.Date)
		query = query.Where("movement_date >= ? AND movement_date < ?", start, start.AddDate(0, 0, 1))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, utils.Pagination{}, FromDB(err, "Failed to count movement logs")
	}

	var movements []models.Movement
	err := query.Order("movement_date DESC").Order("id DESC").
		Limit(limit).Offset(utils.Offset(page, limit)).
		Find(&movements).Error
	if err != nil {
		return nil, utils.Pagination{}, FromDB(err, "Failed to fetch movement logs")
	}

	return movements, utils.NewPagination(page, limit, total), nil
}

// Get returns a single movement
func (s *MovementService) Get(ctx context.Context, id uint) (*models.Movement, error) {
	var movement models.Movement
	err := s.db.WithContext(ctx).First(&movement, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NotFoundError("MOVEMENT_NOT_FOUND", "Movement log not found")
	}
	if err != nil {
		return nil, FromDB(err, "Failed to fetch movement log")
	}
	return &movement, nil
}

// History returns every movement of a sari, newest first
func (s *MovementService) History(ctx context.Context, serialNumber string) ([]models.Movement, error) {
	var movements []models.Movement
	err := s.db.WithContext(ctx).
		Where("serial_number = ?", serialNumber).
		Order("movement_date DESC").Order("id DESC").
		Find(&movements).Error
	if err != nil {
		return nil, FromDB(err, "Failed to fetch sari movement history")
	}
	return movements, nil
}

// Update edits a movement. When the edited movement is the sari's latest, the
// sari's current state follows it in the same transaction.
func (s *MovementService) Update(ctx context.Context, id uint, in UpdateMovementInput) (*models.Movement, error) {
	if err := validateMovement("-", in.FromProcess, in.ToProcess, in.Location); err != nil {
		return nil, err
	}

	var movement models.Movement
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&movement, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NotFoundError("MOVEMENT_NOT_FOUND", "Movement log not found")
			}
			return err
		}

		updates := map[string]interface{}{
			"from_process":    in.FromProcess,
			"done_to_process": in.ToProcess,
			"to_location":     in.Location,
			"notes":           in.Notes,
			"quality":         in.Quality,
			"document_number": in.DocumentNumber,
		}
		if err := tx.Model(&models.Movement{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return err
		}
		if err := tx.First(&movement, id).Error; err != nil {
			return err
		}
		return resyncSari(tx, movement.SerialNumber)
	})
	if err != nil {
		return nil, FromDB(err, "Failed to update movement log")
	}

	s.cache.InvalidateDashboard(ctx)
	return &movement, nil
}

// Delete removes a movement and re-points the sari at its remaining latest movement
func (s *MovementService) Delete(ctx context.Context, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var movement models.Movement
		if err := tx.First(&movement, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NotFoundError("MOVEMENT_NOT_FOUND", "Movement log not found")
			}
			return err
		}
		if err := tx.Delete(&models.Movement{}, id).Error; err != nil {
			return err
		}
		return resyncSari(tx, movement.SerialNumber)
	})
	if err != nil {
		return FromDB(err, "Failed to delete movement log")
	}

	s.cache.InvalidateDashboard(ctx)
	s.logger.WithField("movement_id", id).Warn("movement deleted")
	return nil
}

// Summary aggregates totals over the movement log
func (s *MovementService) Summary(ctx context.Context) (*MovementSummary, error) {
	db := s.db.WithContext(ctx)
	summary := MovementSummary{ProcessStats: []ProcessCount{}}

	if err := db.Model(&models.Movement{}).Count(&summary.TotalMovements).Error; err != nil {
		return nil, FromDB(err, "Failed to fetch movement statistics")
	}
	if err := db.Model(&models.Movement{}).Distinct("serial_number").Count(&summary.UniqueSaris).Error; err != nil {
		return nil, FromDB(err, "Failed to fetch movement statistics")
	}
	err := db.Model(&models.Movement{}).
		Select("done_to_process AS process, COUNT(*) AS count").
		Group("done_to_process").
		Order("count DESC").
		Scan(&summary.ProcessStats).Error
	if err != nil {
		return nil, FromDB(err, "Failed to fetch movement statistics")
	}
	since := s.now().AddDate(0, 0, -7)
	if err := db.Model(&models.Movement{}).Where("movement_date >= ?", since).Count(&summary.RecentMovements).Error; err != nil {
		return nil, FromDB(err, "Failed to fetch movement statistics")
	}

	return &summary, nil
}
