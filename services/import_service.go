package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/bsm/redislock"
	"github.com/kendall-kelly/sari-inventory-api/models"
	"github.com/kendall-kelly/sari-inventory-api/utils"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Import kinds
const (
	ImportItems = "items"
	ImportSaris = "saris"
)

const (
	importLockKey = "sari:import"
	importLockTTL = 2 * time.Minute
)

// RowError reports a CSV row that was not imported
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// ImportResult summarizes one CSV import
type ImportResult struct {
	Kind    string     `json:"kind"`
	Total   int        `json:"total"`
	Created int        `json:"created"`
	Updated int        `json:"updated"`
	Skipped int        `json:"skipped"`
	Errors  []RowError `json:"errors"`
}

// column aliases accepted in CSV headers, first name is canonical
var (
	itemColumns = map[string][]string{
		"item_code":     {"item_code", "design_code"},
		"kora":          {"kora", "kora_code"},
		"white":         {"white", "white_code"},
		"self_dyed":     {"self_dyed", "self", "self_code"},
		"contrast_dyed": {"contrast_dyed", "contrast", "contrast_code"},
	}

	itemLabelColumns = []string{"kora", "white", "self_dyed", "contrast_dyed"}

	sariColumns = map[string][]string{
		"serial_number":    {"serial_number", "serial"},
		"item_code":        {"item_code", "design_code"},
		"entry_date":       {"entry_date"},
		"current_process":  {"current_process"},
		"current_location": {"current_location", "location"},
		"current_code":     {"current_code"},
	}
)

// ImportService loads item and sari master data from CSV
type ImportService struct {
	db      *gorm.DB
	locker  *redislock.Client
	cache   *Cache
	metrics *Metrics
	logger  logrus.FieldLogger
}

// NewImportService creates a new ImportService. locker may be nil, in which
// case concurrent imports are not serialized across instances.
func NewImportService(db *gorm.DB, locker *redislock.Client, cache *Cache, metrics *Metrics, logger logrus.FieldLogger) *ImportService {
	return &ImportService{db: db, locker: locker, cache: cache, metrics: metrics, logger: logger}
}

// csvTable is a parsed CSV file with its header resolved to canonical names
type csvTable struct {
	index map[string]int
	rows  [][]string
}

func (t csvTable) get(row []string, column string) string {
	i, ok := t.index[column]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func readTable(r io.Reader, columns map[string][]string, required ...string) (csvTable, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return csvTable{}, ValidationError("INVALID_CSV", fmt.Sprintf("failed to read CSV: %v", err))
	}
	if len(records) == 0 {
		return csvTable{}, ValidationError("INVALID_CSV", "CSV file is empty")
	}

	headerPos := make(map[string]int)
	for i, h := range records[0] {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		headerPos[h] = i
	}

	index := make(map[string]int)
	for canonical, aliases := range columns {
		for _, alias := range aliases {
			if i, ok := headerPos[alias]; ok {
				index[canonical] = i
				break
			}
		}
	}
	for _, col := range required {
		if _, ok := index[col]; !ok {
			return csvTable{}, ValidationError("INVALID_CSV", fmt.Sprintf("CSV header is missing column %q", col))
		}
	}

	return csvTable{index: index, rows: records[1:]}, nil
}

// withLock runs fn while holding the cluster-wide import lock, when one is configured
func (s *ImportService) withLock(ctx context.Context, fn func() error) error {
	if s.locker == nil {
		return fn()
	}
	lock, err := s.locker.Obtain(ctx, importLockKey, importLockTTL, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return ConflictError("IMPORT_IN_PROGRESS", "Another import is already running")
	}
	if err != nil {
		return UnavailableError("LOCK_UNAVAILABLE", "Could not obtain import lock")
	}
	defer func() {
		if err := lock.Release(context.WithoutCancel(ctx)); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			s.logger.WithError(err).Warn("failed to release import lock")
		}
	}()
	return fn()
}

// ImportItems upserts item master rows. Rows without an item code are reported and skipped.
func (s *ImportService) ImportItems(ctx context.Context, r io.Reader) (*ImportResult, error) {
	table, err := readTable(r, itemColumns, "item_code")
	if err != nil {
		return nil, err
	}

	result := &ImportResult{Kind: ImportItems, Total: len(table.rows), Errors: []RowError{}}
	err = s.withLock(ctx, func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			for i, row := range table.rows {
				code := table.get(row, "item_code")
				if code == "" {
					result.Errors = append(result.Errors, RowError{Row: i + 2, Message: "item_code is required"})
					result.Skipped++
					continue
				}

				var existing int64
				if err := tx.Model(&models.Item{}).Where("item_code = ?", code).Count(&existing).Error; err != nil {
					return err
				}

				item := NewSyntheticItem(code)
				if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&item).Error; err != nil {
					return err
				}

				// only labels present in the row replace stored ones
				labels := map[string]interface{}{}
				for _, column := range itemLabelColumns {
					if v := table.get(row, column); v != "" {
						labels[column] = v
					}
				}
				if len(labels) > 0 {
					if err := tx.Model(&models.Item{}).Where("item_code = ?", code).Updates(labels).Error; err != nil {
						return err
					}
				}
				if existing > 0 {
					result.Updated++
				} else {
					result.Created++
				}
			}
			return nil
		})
	})
	if err != nil {
		return nil, FromDB(err, "Failed to import design codes")
	}

	s.finish(ctx, result)
	return result, nil
}

// ImportSaris creates serial master rows. Serial numbers that already exist are skipped.
func (s *ImportService) ImportSaris(ctx context.Context, r io.Reader) (*ImportResult, error) {
	table, err := readTable(r, sariColumns, "serial_number", "item_code")
	if err != nil {
		return nil, err
	}

	result := &ImportResult{Kind: ImportSaris, Total: len(table.rows), Errors: []RowError{}}
	err = s.withLock(ctx, func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			for i, row := range table.rows {
				line := i + 2
				serial := table.get(row, "serial_number")
				itemCode := table.get(row, "item_code")
				if serial == "" || itemCode == "" {
					result.Errors = append(result.Errors, RowError{Row: line, Message: "serial_number and item_code are required"})
					result.Skipped++
					continue
				}

				entryDate := time.Now().UTC()
				if raw := table.get(row, "entry_date"); raw != "" {
					parsed, ok := utils.ParseDate(raw)
					if !ok {
						result.Errors = append(result.Errors, RowError{Row: line, Message: fmt.Sprintf("invalid entry_date %q", raw)})
						result.Skipped++
						continue
					}
					entryDate = parsed
				}

				var existing int64
				if err := tx.Model(&models.Sari{}).Where("serial_number = ?", serial).Count(&existing).Error; err != nil {
					return err
				}
				if existing > 0 {
					result.Skipped++
					continue
				}

				item, err := ensureItem(tx, itemCode)
				if err != nil {
					return err
				}

				sari := models.Sari{
					SerialNumber:    serial,
					ItemCode:        itemCode,
					EntryDate:       entryDate,
					CurrentProcess:  table.get(row, "current_process"),
					CurrentLocation: table.get(row, "current_location"),
					CurrentCode:     table.get(row, "current_code"),
					Status:          models.SariStatusActive,
				}
				if sari.CurrentCode == "" && sari.CurrentProcess != "" {
					sari.CurrentCode = codeFromItem(item, itemCode, sari.CurrentProcess)
				}
				if err := tx.Omit("Item").Create(&sari).Error; err != nil {
					return err
				}
				result.Created++
			}
			return nil
		})
	})
	if err != nil {
		return nil, FromDB(err, "Failed to import saris")
	}

	s.finish(ctx, result)
	return result, nil
}

func (s *ImportService) finish(ctx context.Context, result *ImportResult) {
	s.cache.InvalidateDashboard(ctx)
	s.metrics.ImportRows(ctx, result.Kind, "created", result.Created)
	s.metrics.ImportRows(ctx, result.Kind, "updated", result.Updated)
	s.metrics.ImportRows(ctx, result.Kind, "skipped", result.Skipped)
	s.logger.WithFields(logrus.Fields{
		"kind":    result.Kind,
		"total":   result.Total,
		"created": result.Created,
		"updated": result.Updated,
		"skipped": result.Skipped,
		"errors":  len(result.Errors),
	}).Info("csv import finished")
}
