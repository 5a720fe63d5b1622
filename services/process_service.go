package services

import (
	"context"
	"errors"
	"time"

	"github.com/kendall-kelly/sari-inventory-api/models"
	"github.com/kendall-kelly/sari-inventory-api/process"
	"github.com/kendall-kelly/sari-inventory-api/utils"
	"gorm.io/gorm"
)

// latestMovementJoin attaches each sari's most recent movement (by created_at,
// then id) or NULLs when it has none.
const latestMovementJoin = `LEFT JOIN movement_log ml ON ml.id = (
	SELECT m2.id FROM movement_log m2
	WHERE m2.serial_number = sm.serial_number
	ORDER BY m2.created_at DESC, m2.id DESC
	LIMIT 1)`

// LiveStatusFilter narrows the live status view
type LiveStatusFilter struct {
	Process string
	Search  string
	Limit   int
}

// ProcessStatistics is the stage-level overview of the floor
type ProcessStatistics struct {
	TotalSaris          int64          `json:"totalSaris"`
	ProcessDistribution []ProcessCount `json:"processDistribution"`
	MovementStats       []ProcessCount `json:"movementStats"`
	RecentActivity      []ProcessCount `json:"recentActivity"`
}

type liveStatusRow struct {
	SerialNumber    string
	ItemCode        string
	CurrentProcess  string
	CurrentLocation string
	EntryDate       time.Time
	MovementDate    *time.Time
	FromProcess     *string
	ToProcess       *string
	ToLocation      *string
	CreatedAt       *time.Time
}

func (r liveStatusRow) snapshot() process.UnitSnapshot {
	return process.UnitSnapshot{
		SerialNumber:    r.SerialNumber,
		ItemCode:        r.ItemCode,
		CurrentProcess:  r.CurrentProcess,
		CurrentLocation: r.CurrentLocation,
		EntryDate:       r.EntryDate,
	}
}

func (r liveStatusRow) latest() *process.LatestMovement {
	if r.CreatedAt == nil {
		return nil
	}
	latest := &process.LatestMovement{CreatedAt: *r.CreatedAt}
	if r.MovementDate != nil {
		latest.MovementDate = *r.MovementDate
	}
	if r.FromProcess != nil {
		latest.FromProcess = *r.FromProcess
	}
	if r.ToProcess != nil {
		latest.ToProcess = *r.ToProcess
	}
	if r.ToLocation != nil {
		latest.ToLocation = *r.ToLocation
	}
	return latest
}

// ProcessService builds the derived process views
type ProcessService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewProcessService creates a new ProcessService
func NewProcessService(db *gorm.DB) *ProcessService {
	return &ProcessService{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// LiveStatus returns the status view of every active sari matching filter
func (s *ProcessService) LiveStatus(ctx context.Context, filter LiveStatusFilter) ([]process.LiveStatus, error) {
	query := s.db.WithContext(ctx).Table("serial_master AS sm").
		Select(`sm.serial_number, sm.item_code, sm.current_process, sm.current_location, sm.entry_date,
			ml.movement_date, ml.from_process, ml.done_to_process AS to_process, ml.to_location, ml.created_at`).
		Joins(latestMovementJoin).
		Where("sm.status = ?", models.SariStatusActive)

	if filter.Process != "" {
		query = query.Where("sm.current_process = ?", filter.Process)
	}
	if filter.Search != "" {
		pattern := utils.LikePattern(filter.Search)
		query = query.Where("(LOWER(sm.serial_number) LIKE ? OR LOWER(sm.item_code) LIKE ?)", pattern, pattern)
	}
	if filter.Limit > 0 {
		_, limit := utils.NormalizePage(1, filter.Limit, filter.Limit)
		query = query.Limit(limit)
	}

	var rows []liveStatusRow
	if err := query.Order("sm.serial_number ASC").Scan(&rows).Error; err != nil {
		return nil, FromDB(err, "Failed to fetch live process status")
	}

	statuses := make([]process.LiveStatus, len(rows))
	for i, row := range rows {
		statuses[i] = process.BuildStatus(row.snapshot(), row.latest())
	}
	return statuses, nil
}

// Statistics returns the stage distribution and movement counts
func (s *ProcessService) Statistics(ctx context.Context) (*ProcessStatistics, error) {
	db := s.db.WithContext(ctx)
	stats := ProcessStatistics{
		ProcessDistribution: []ProcessCount{},
		MovementStats:       []ProcessCount{},
		RecentActivity:      []ProcessCount{},
	}

	active := db.Model(&models.Sari{}).Where("status = ?", models.SariStatusActive)
	if err := active.Count(&stats.TotalSaris).Error; err != nil {
		return nil, FromDB(err, "Failed to fetch process statistics")
	}

	err := db.Model(&models.Sari{}).
		Select("current_process AS process, COUNT(*) AS count").
		Where("status = ?", models.SariStatusActive).
		Group("current_process").
		Order(process.OrderByCase("current_process")).
		Scan(&stats.ProcessDistribution).Error
	if err != nil {
		return nil, FromDB(err, "Failed to fetch process statistics")
	}

	err = db.Model(&models.Movement{}).
		Select("done_to_process AS process, COUNT(*) AS count").
		Group("done_to_process").
		Order(process.OrderByCase("done_to_process")).
		Scan(&stats.MovementStats).Error
	if err != nil {
		return nil, FromDB(err, "Failed to fetch process statistics")
	}

	err = db.Model(&models.Movement{}).
		Select("done_to_process AS process, COUNT(*) AS count").
		Where("created_at >= ?", s.now().Add(-24*time.Hour)).
		Group("done_to_process").
		Order("count DESC").
		Scan(&stats.RecentActivity).Error
	if err != nil {
		return nil, FromDB(err, "Failed to fetch process statistics")
	}

	return &stats, nil
}

// SerialFlow returns the detailed flow of one sari with its full history
func (s *ProcessService) SerialFlow(ctx context.Context, serialNumber string) (*process.SerialFlow, error) {
	db := s.db.WithContext(ctx)

	var sari models.Sari
	err := db.Where("serial_number = ?", serialNumber).First(&sari).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NotFoundError("SARI_NOT_FOUND", "Serial number not found")
	}
	if err != nil {
		return nil, FromDB(err, "Failed to fetch serial process flow")
	}

	var movements []models.Movement
	err = db.Where("serial_number = ?", serialNumber).
		Order("created_at ASC").Order("id ASC").
		Find(&movements).Error
	if err != nil {
		return nil, FromDB(err, "Failed to fetch serial process flow")
	}

	history := make([]process.HistoryEntry, len(movements))
	for i, m := range movements {
		history[i] = process.HistoryEntry{
			ID:             m.ID,
			MovementDate:   m.MovementDate,
			FromProcess:    m.FromProcess,
			ToProcess:      m.ToProcess,
			FromLocation:   m.FromLocation,
			ToLocation:     m.ToLocation,
			Quality:        m.Quality,
			DocumentNumber: m.DocumentNumber,
			Notes:          m.Notes,
			CreatedAt:      m.CreatedAt,
		}
	}

	flow := process.BuildSerialFlow(process.UnitSnapshot{
		SerialNumber:    sari.SerialNumber,
		ItemCode:        sari.ItemCode,
		CurrentProcess:  sari.CurrentProcess,
		CurrentLocation: sari.CurrentLocation,
		EntryDate:       sari.EntryDate,
	}, history)
	return &flow, nil
}
