package services

import (
	"context"
	"fmt"
	"time"

	"github.com/kendall-kelly/sari-inventory-api/models"
	"github.com/kendall-kelly/sari-inventory-api/process"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// Workbook sheet names
const (
	SheetInventory      = "Inventory"
	SheetMovements      = "Movements"
	SheetProcessSummary = "Process Summary"
)

// XLSXContentType is the MIME type of generated workbooks
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const reportURLTTL = time.Hour

// ArchivedReport describes a workbook stored in the report archive
type ArchivedReport struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	Size      int       `json:"size"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// ReportService renders inventory workbooks and archives them
type ReportService struct {
	db     *gorm.DB
	store  ReportStore
	logger logrus.FieldLogger
	now    func() time.Time
}

// NewReportService creates a new ReportService. store may be nil, in which case
// archiving reports Unavailable.
func NewReportService(db *gorm.DB, store ReportStore, logger logrus.FieldLogger) *ReportService {
	return &ReportService{db: db, store: store, logger: logger, now: func() time.Time { return time.Now().UTC() }}
}

// InventoryFilename is the download name of a workbook generated at t
func InventoryFilename(t time.Time) string {
	return fmt.Sprintf("sari-inventory-%s.xlsx", t.UTC().Format("20060102-150405"))
}

// BuildInventoryWorkbook renders saris, movements and the stage summary into a workbook
func (s *ReportService) BuildInventoryWorkbook(ctx context.Context) (*excelize.File, error) {
	db := s.db.WithContext(ctx)

	var saris []models.Sari
	if err := db.Order("serial_number ASC").Find(&saris).Error; err != nil {
		return nil, FromDB(err, "Failed to load saris for report")
	}
	var movements []models.Movement
	if err := db.Order("created_at ASC").Order("id ASC").Find(&movements).Error; err != nil {
		return nil, FromDB(err, "Failed to load movements for report")
	}

	inventory := [][]interface{}{{
		"Serial Number", "Design Code", "Current Code", "Current Process",
		"Current Location", "Entry Date", "Last Movement", "Status", "Progress %",
	}}
	perStage := make(map[string]int64)
	for _, sari := range saris {
		lastMovement := ""
		if sari.LastMovementAt != nil {
			lastMovement = sari.LastMovementAt.UTC().Format(time.RFC3339)
		}
		inventory = append(inventory, []interface{}{
			sari.SerialNumber,
			sari.ItemCode,
			sari.CurrentCode,
			sari.CurrentProcess,
			sari.CurrentLocation,
			sari.EntryDate.UTC().Format("2006-01-02"),
			lastMovement,
			sari.Status,
			process.Progress(sari.CurrentProcess),
		})
		if !sari.IsRejected() {
			perStage[sari.CurrentProcess]++
		}
	}

	movementRows := [][]interface{}{{
		"ID", "Serial Number", "Movement Date", "From Process", "To Process",
		"From Location", "To Location", "Quality", "Document Number", "Notes", "Operator",
	}}
	for _, m := range movements {
		movementRows = append(movementRows, []interface{}{
			m.ID,
			m.SerialNumber,
			m.MovementDate.UTC().Format(time.RFC3339),
			m.FromProcess,
			m.ToProcess,
			m.FromLocation,
			m.ToLocation,
			deref(m.Quality),
			deref(m.DocumentNumber),
			deref(m.Notes),
			deref(m.Operator),
		})
	}

	summary := [][]interface{}{{"Process", "Saris", "Progress %"}}
	for _, stage := range process.Stages() {
		summary = append(summary, []interface{}{stage, perStage[stage], process.Progress(stage)})
	}

	return newWorkbook([]sheetRows{
		{SheetInventory, inventory},
		{SheetMovements, movementRows},
		{SheetProcessSummary, summary},
	})
}

type sheetRows struct {
	name string
	rows [][]interface{}
}

// newWorkbook writes each sheet with a bold header row. The file is closed when
// any sheet fails.
func newWorkbook(sheets []sheetRows) (_ *excelize.File, err error) {
	f := excelize.NewFile()
	defer func() {
		if err != nil {
			_ = f.Close()
		}
	}()

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}

	for i, sheet := range sheets {
		if i == 0 {
			err = f.SetSheetName("Sheet1", sheet.name)
		} else {
			_, err = f.NewSheet(sheet.name)
		}
		if err != nil {
			return nil, err
		}
		if err = writeSheet(f, sheet.name, sheet.rows, header); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func writeSheet(f *excelize.File, sheet string, rows [][]interface{}, headerStyle int) error {
	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &rows[i]); err != nil {
			return err
		}
	}
	if len(rows) == 0 {
		return nil
	}
	last, err := excelize.CoordinatesToCellName(len(rows[0]), 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "A1", last, headerStyle)
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

// InventoryReport renders the workbook to bytes along with its download name
func (s *ReportService) InventoryReport(ctx context.Context) ([]byte, string, error) {
	f, err := s.BuildInventoryWorkbook(ctx)
	if err != nil {
		return nil, "", err
	}
	defer f.Close()

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", PersistenceError("Failed to render report", err)
	}
	return buf.Bytes(), InventoryFilename(s.now()), nil
}

// ArchiveInventoryReport stores a fresh workbook and returns a time-limited download URL
func (s *ReportService) ArchiveInventoryReport(ctx context.Context) (*ArchivedReport, error) {
	if s.store == nil {
		return nil, UnavailableError("STORAGE_UNAVAILABLE", "Report storage is not configured")
	}

	body, filename, err := s.InventoryReport(ctx)
	if err != nil {
		return nil, err
	}

	key := "reports/" + filename
	if err := s.store.Upload(ctx, key, XLSXContentType, body); err != nil {
		return nil, PersistenceError("Failed to archive report", err)
	}
	url, err := s.store.PresignedURL(ctx, key, reportURLTTL)
	if err != nil {
		return nil, PersistenceError("Failed to sign report URL", err)
	}

	s.logger.WithFields(logrus.Fields{"key": key, "size": len(body)}).Info("inventory report archived")
	return &ArchivedReport{
		Key:       key,
		URL:       url,
		Size:      len(body),
		ExpiresAt: s.now().Add(reportURLTTL),
	}, nil
}
