package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/kendall-kelly/sari-inventory-api/models"
	"github.com/kendall-kelly/sari-inventory-api/process"
	"github.com/kendall-kelly/sari-inventory-api/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// LocationCount is a count grouped by location
type LocationCount struct {
	Location string `json:"location"`
	Count    int64  `json:"count"`
}

// DashboardOverview is the headline numbers of the dashboard
type DashboardOverview struct {
	TotalSaris           int64           `json:"totalSaris"`
	ActiveSaris          int64           `json:"activeSaris"`
	RejectedSaris        int64           `json:"rejectedSaris"`
	TotalMovements       int64           `json:"totalMovements"`
	ProcessDistribution  []ProcessCount  `json:"processDistribution"`
	LocationDistribution []LocationCount `json:"locationDistribution"`
	RecentMovements      int64           `json:"recentMovements"`
	NewSarisToday        int64           `json:"newSarisToday"`
	GeneratedAt          time.Time       `json:"generatedAt"`
}

// StageLocationCount counts saris per stage and location
type StageLocationCount struct {
	Process  string `json:"process"`
	Location string `json:"location"`
	Count    int64  `json:"count"`
}

// StageCompletion counts saris sitting at a stage and saris already past it
type StageCompletion struct {
	Process   string `json:"process"`
	InProcess int64  `json:"inProcess"`
	Completed int64  `json:"completed"`
}

// DailyCount is the movement activity of one calendar day (UTC)
type DailyCount struct {
	Date        string `json:"date"`
	Movements   int64  `json:"movements"`
	UniqueSaris int64  `json:"uniqueSaris"`
}

// ProductionFlow is the per-stage view of the floor
type ProductionFlow struct {
	ProcessStages   []StageLocationCount `json:"processStages"`
	CompletionRates []StageCompletion    `json:"completionRates"`
	DailyTrends     []DailyCount         `json:"dailyTrends"`
}

// CodeCount is a count grouped by a design or stage code
type CodeCount struct {
	Code  string `json:"code"`
	Count int64  `json:"count"`
}

// ProcessAge summarizes how long saris at a stage have been in the system
type ProcessAge struct {
	Process string  `json:"process"`
	AvgDays float64 `json:"avgDays"`
	MinDays float64 `json:"minDays"`
	MaxDays float64 `json:"maxDays"`
}

// LocationEfficiency is the share of finished saris at a location
type LocationEfficiency struct {
	Location             string  `json:"location"`
	TotalSaris           int64   `json:"totalSaris"`
	CompletedSaris       int64   `json:"completedSaris"`
	CompletionPercentage float64 `json:"completionPercentage"`
}

// InventoryAnalytics breaks the inventory down by code, age and location
type InventoryAnalytics struct {
	DesignDistribution      []CodeCount          `json:"designDistribution"`
	CurrentCodeDistribution []CodeCount          `json:"currentCodeDistribution"`
	AgeAnalysis             []ProcessAge         `json:"ageAnalysis"`
	LocationEfficiency      []LocationEfficiency `json:"locationEfficiency"`
}

// Activity is one entry of the merged recent-activity feed
type Activity struct {
	ID           string            `json:"id"`
	Type         string            `json:"type"` // movement, new_sari
	Timestamp    time.Time         `json:"timestamp"`
	SerialNumber string            `json:"serialNumber"`
	DesignCode   string            `json:"designCode"`
	Description  string            `json:"description"`
	CreatedAt    *time.Time        `json:"createdAt,omitempty"`
	Details      map[string]string `json:"details"`
}

// ProductionEfficiency is the share of saris that reached the final stage
type ProductionEfficiency struct {
	CompletedSaris int64   `json:"completedSaris"`
	TotalSaris     int64   `json:"totalSaris"`
	CompletionRate float64 `json:"completionRate"`
}

// CycleTime is the mean time between reaching two consecutive stages
type CycleTime struct {
	ProcessPair string  `json:"processPair"`
	AvgHours    float64 `json:"avgHours"`
	Samples     int     `json:"samples"`
}

// RejectionRate is the share of saris that were rejected
type RejectionRate struct {
	RejectedCount int64   `json:"rejectedCount"`
	TotalCount    int64   `json:"totalCount"`
	RejectionRate float64 `json:"rejectionRate"`
}

// PerformanceMetrics is the throughput view over a period
type PerformanceMetrics struct {
	PeriodDays           int                  `json:"periodDays"`
	ProductionEfficiency ProductionEfficiency `json:"productionEfficiency"`
	CycleTimes           []CycleTime          `json:"cycleTimes"`
	DailyThroughput      []DailyCount         `json:"dailyThroughput"`
	RejectionRate        RejectionRate        `json:"rejectionRate"`
}

// SearchSuggestions are type-ahead candidates for the dashboard search box
type SearchSuggestions struct {
	SerialNumbers []string `json:"serialNumbers"`
	DesignCodes   []string `json:"designCodes"`
	Locations     []string `json:"locations"`
}

// Activity types
const (
	ActivityMovement = "movement"
	ActivityNewSari  = "new_sari"
)

const (
	suggestionLimit  = 10
	analyticsTopN    = 10
	minSuggestionLen = 2
	maxPeriodDays    = 365
)

// DashboardService computes dashboard aggregates
type DashboardService struct {
	db    *gorm.DB
	cache *Cache
	now   func() time.Time
}

// NewDashboardService creates a new DashboardService
func NewDashboardService(db *gorm.DB, cache *Cache) *DashboardService {
	return &DashboardService{db: db, cache: cache, now: func() time.Time { return time.Now().UTC() }}
}

func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

func percentage(part, total int64) float64 {
	if total == 0 {
		return 0
	}
	return decimal.NewFromInt(part).
		Div(decimal.NewFromInt(total)).
		Mul(decimal.NewFromInt(100)).
		Round(2).InexactFloat64()
}

func (s *DashboardService) activeSaris(db *gorm.DB) *gorm.DB {
	return db.Model(&models.Sari{}).Where("status = ?", models.SariStatusActive)
}

// Overview returns the headline numbers, served from cache when available
func (s *DashboardService) Overview(ctx context.Context) (*DashboardOverview, error) {
	var cached DashboardOverview
	if s.cache.getJSON(ctx, dashboardOverviewKey, &cached) {
		return &cached, nil
	}

	db := s.db.WithContext(ctx)
	now := s.now()
	overview := DashboardOverview{
		ProcessDistribution:  []ProcessCount{},
		LocationDistribution: []LocationCount{},
		GeneratedAt:          now,
	}

	fail := func(err error) (*DashboardOverview, error) {
		return nil, FromDB(err, "Failed to fetch dashboard overview")
	}

	if err := db.Model(&models.Sari{}).Count(&overview.TotalSaris).Error; err != nil {
		return fail(err)
	}
	if err := s.activeSaris(db).Count(&overview.ActiveSaris).Error; err != nil {
		return fail(err)
	}
	if err := db.Model(&models.Sari{}).Where("status = ?", models.SariStatusRejected).Count(&overview.RejectedSaris).Error; err != nil {
		return fail(err)
	}
	if err := db.Model(&models.Movement{}).Count(&overview.TotalMovements).Error; err != nil {
		return fail(err)
	}

	err := s.activeSaris(db).
		Select("current_process AS process, COUNT(*) AS count").
		Where("current_process <> ''").
		Group("current_process").
		Order("count DESC").
		Scan(&overview.ProcessDistribution).Error
	if err != nil {
		return fail(err)
	}

	err = s.activeSaris(db).
		Select("current_location AS location, COUNT(*) AS count").
		Where("current_location <> ''").
		Group("current_location").
		Order("count DESC").
		Scan(&overview.LocationDistribution).Error
	if err != nil {
		return fail(err)
	}

	if err := db.Model(&models.Movement{}).Where("movement_date >= ?", now.AddDate(0, 0, -7)).Count(&overview.RecentMovements).Error; err != nil {
		return fail(err)
	}

	today := utils.StartOfDay(now)
	err = db.Model(&models.Sari{}).
		Where("entry_date >= ? AND entry_date < ?", today, today.AddDate(0, 0, 1)).
		Count(&overview.NewSarisToday).Error
	if err != nil {
		return fail(err)
	}

	s.cache.setJSON(ctx, dashboardOverviewKey, overview)
	return &overview, nil
}

// ProductionFlow returns per-stage counts and the last 30 days of movement activity
func (s *DashboardService) ProductionFlow(ctx context.Context) (*ProductionFlow, error) {
	db := s.db.WithContext(ctx)
	flow := ProductionFlow{ProcessStages: []StageLocationCount{}}

	err := s.activeSaris(db).
		Select("current_process AS process, current_location AS location, COUNT(*) AS count").
		Where("current_process <> ''").
		Group("current_process, current_location").
		Order(process.OrderByCase("current_process")).
		Order("current_location ASC").
		Scan(&flow.ProcessStages).Error
	if err != nil {
		return nil, FromDB(err, "Failed to fetch production flow statistics")
	}

	perStage := make(map[string]int64)
	for _, row := range flow.ProcessStages {
		perStage[row.Process] += row.Count
	}
	flow.CompletionRates = stageCompletions(perStage)

	trends, err := s.dailyCounts(ctx, 30)
	if err != nil {
		return nil, FromDB(err, "Failed to fetch production flow statistics")
	}
	flow.DailyTrends = trends
	return &flow, nil
}

// stageCompletions counts, for every stage, the saris at it and the saris past it
func stageCompletions(perStage map[string]int64) []StageCompletion {
	stages := process.Stages()
	out := make([]StageCompletion, len(stages))
	for i, name := range stages {
		out[i] = StageCompletion{Process: name, InProcess: perStage[name]}
		for _, later := range stages[i+1:] {
			out[i].Completed += perStage[later]
		}
	}
	return out
}

// dailyCounts groups movements of the last days days by UTC calendar day, newest first
func (s *DashboardService) dailyCounts(ctx context.Context, days int) ([]DailyCount, error) {
	since := utils.StartOfDay(s.now()).AddDate(0, 0, -(days - 1))

	var rows []struct {
		SerialNumber string
		MovementDate time.Time
	}
	err := s.db.WithContext(ctx).Model(&models.Movement{}).
		Select("serial_number, movement_date").
		Where("movement_date >= ?", since).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	type bucket struct {
		movements int64
		saris     map[string]struct{}
	}
	buckets := make(map[string]*bucket)
	for _, row := range rows {
		day := row.MovementDate.UTC().Format("2006-01-02")
		b, ok := buckets[day]
		if !ok {
			b = &bucket{saris: make(map[string]struct{})}
			buckets[day] = b
		}
		b.movements++
		b.saris[row.SerialNumber] = struct{}{}
	}

	out := make([]DailyCount, 0, len(buckets))
	for day, b := range buckets {
		out = append(out, DailyCount{Date: day, Movements: b.movements, UniqueSaris: int64(len(b.saris))})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out, nil
}

// InventoryAnalytics returns code distributions, stage ages and location efficiency
func (s *DashboardService) InventoryAnalytics(ctx context.Context) (*InventoryAnalytics, error) {
	db := s.db.WithContext(ctx)
	analytics := InventoryAnalytics{
		DesignDistribution:      []CodeCount{},
		CurrentCodeDistribution: []CodeCount{},
	}
	fail := func(err error) (*InventoryAnalytics, error) {
		return nil, FromDB(err, "Failed to fetch inventory analytics")
	}

	err := s.activeSaris(db).
		Select("item_code AS code, COUNT(*) AS count").
		Group("item_code").
		Order("count DESC").Order("item_code ASC").
		Limit(analyticsTopN).
		Scan(&analytics.DesignDistribution).Error
	if err != nil {
		return fail(err)
	}

	err = s.activeSaris(db).
		Select("current_code AS code, COUNT(*) AS count").
		Where("current_code <> ''").
		Group("current_code").
		Order("count DESC").Order("current_code ASC").
		Limit(analyticsTopN).
		Scan(&analytics.CurrentCodeDistribution).Error
	if err != nil {
		return fail(err)
	}

	var ages []sariAge
	err = s.activeSaris(db).
		Select("current_process, entry_date").
		Where("current_process <> ''").
		Scan(&ages).Error
	if err != nil {
		return fail(err)
	}
	analytics.AgeAnalysis = ageByProcess(s.now(), ages)

	var locations []struct {
		Location  string
		Total     int64
		Completed int64
	}
	err = s.activeSaris(db).
		Select("current_location AS location, COUNT(*) AS total, "+
			"COUNT(CASE WHEN current_process = ? THEN 1 END) AS completed", process.FinalStage()).
		Where("current_location <> ''").
		Group("current_location").
		Scan(&locations).Error
	if err != nil {
		return fail(err)
	}

	analytics.LocationEfficiency = make([]LocationEfficiency, len(locations))
	for i, loc := range locations {
		analytics.LocationEfficiency[i] = LocationEfficiency{
			Location:             loc.Location,
			TotalSaris:           loc.Total,
			CompletedSaris:       loc.Completed,
			CompletionPercentage: percentage(loc.Completed, loc.Total),
		}
	}
	sort.SliceStable(analytics.LocationEfficiency, func(i, j int) bool {
		a, b := analytics.LocationEfficiency[i], analytics.LocationEfficiency[j]
		if a.CompletionPercentage != b.CompletionPercentage {
			return a.CompletionPercentage > b.CompletionPercentage
		}
		return a.Location < b.Location
	})

	return &analytics, nil
}

type sariAge struct {
	CurrentProcess string
	EntryDate      time.Time
}

func ageByProcess(now time.Time, rows []sariAge) []ProcessAge {
	type acc struct {
		sum, min, max float64
		n             int
	}
	byProcess := make(map[string]*acc)
	for _, row := range rows {
		days := now.Sub(row.EntryDate).Hours() / 24
		a, ok := byProcess[row.CurrentProcess]
		if !ok {
			a = &acc{min: days, max: days}
			byProcess[row.CurrentProcess] = a
		}
		a.sum += days
		a.n++
		if days < a.min {
			a.min = days
		}
		if days > a.max {
			a.max = days
		}
	}

	out := make([]ProcessAge, 0, len(byProcess))
	for name, a := range byProcess {
		out = append(out, ProcessAge{
			Process: name,
			AvgDays: round2(a.sum / float64(a.n)),
			MinDays: round2(a.min),
			MaxDays: round2(a.max),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return stageRank(out[i].Process) < stageRank(out[j].Process) ||
			(stageRank(out[i].Process) == stageRank(out[j].Process) && out[i].Process < out[j].Process)
	})
	return out
}

// stageRank orders known stages by position and unknown names last
func stageRank(name string) int {
	if i := process.IndexOf(name); i >= 0 {
		return i
	}
	return len(process.Stages())
}

// RecentActivities merges the latest movements and intakes, newest first
func (s *DashboardService) RecentActivities(ctx context.Context, limit int) ([]Activity, error) {
	_, limit = utils.NormalizePage(1, limit, 20)
	db := s.db.WithContext(ctx)

	var movements []struct {
		ID           uint
		SerialNumber string
		MovementDate time.Time
		FromProcess  string
		ToProcess    string
		ToLocation   string
		CreatedAt    time.Time
		ItemCode     string
	}
	err := db.Table("movement_log AS ml").
		Select("ml.id, ml.serial_number, ml.movement_date, ml.from_process, ml.done_to_process AS to_process, " +
			"ml.to_location, ml.created_at, sm.item_code").
		Joins("JOIN serial_master sm ON sm.serial_number = ml.serial_number").
		Order("ml.movement_date DESC").Order("ml.id DESC").
		Limit(limit).
		Scan(&movements).Error
	if err != nil {
		return nil, FromDB(err, "Failed to fetch recent activities")
	}

	var saris []models.Sari
	err = db.Order("entry_date DESC").Order("serial_number ASC").Limit(limit).Find(&saris).Error
	if err != nil {
		return nil, FromDB(err, "Failed to fetch recent activities")
	}

	activities := make([]Activity, 0, len(movements)+len(saris))
	for _, m := range movements {
		createdAt := m.CreatedAt
		activities = append(activities, Activity{
			ID:           fmt.Sprintf("movement_%d", m.ID),
			Type:         ActivityMovement,
			Timestamp:    m.MovementDate,
			SerialNumber: m.SerialNumber,
			DesignCode:   m.ItemCode,
			Description:  fmt.Sprintf("Moved from %s to %s at %s", m.FromProcess, m.ToProcess, m.ToLocation),
			CreatedAt:    &createdAt,
			Details: map[string]string{
				"fromProcess": m.FromProcess,
				"toProcess":   m.ToProcess,
				"location":    m.ToLocation,
			},
		})
	}
	for _, sari := range saris {
		activities = append(activities, Activity{
			ID:           "sari_" + sari.SerialNumber,
			Type:         ActivityNewSari,
			Timestamp:    sari.EntryDate,
			SerialNumber: sari.SerialNumber,
			DesignCode:   sari.ItemCode,
			Description:  "New sari added with design code " + sari.ItemCode,
			Details: map[string]string{
				"currentProcess":  sari.CurrentProcess,
				"currentLocation": sari.CurrentLocation,
			},
		})
	}

	sort.SliceStable(activities, func(i, j int) bool {
		return activities[i].Timestamp.After(activities[j].Timestamp)
	})
	if len(activities) > limit {
		activities = activities[:limit]
	}
	return activities, nil
}

// PerformanceMetrics returns completion, cycle-time and throughput figures for
// the last periodDays days.
func (s *DashboardService) PerformanceMetrics(ctx context.Context, periodDays int) (*PerformanceMetrics, error) {
	if periodDays < 1 || periodDays > maxPeriodDays {
		return nil, ValidationError("INVALID_PERIOD", fmt.Sprintf("period must be between 1 and %d days", maxPeriodDays))
	}

	db := s.db.WithContext(ctx)
	metrics := PerformanceMetrics{PeriodDays: periodDays}
	fail := func(err error) (*PerformanceMetrics, error) {
		return nil, FromDB(err, "Failed to fetch performance metrics")
	}

	eff := &metrics.ProductionEfficiency
	if err := s.activeSaris(db).Where("current_process <> ''").Count(&eff.TotalSaris).Error; err != nil {
		return fail(err)
	}
	if err := s.activeSaris(db).Where("current_process = ?", process.FinalStage()).Count(&eff.CompletedSaris).Error; err != nil {
		return fail(err)
	}
	eff.CompletionRate = percentage(eff.CompletedSaris, eff.TotalSaris)

	var reached []stageReached
	err := db.Model(&models.Movement{}).
		Select("serial_number, done_to_process AS to_process, movement_date").
		Where("done_to_process IN ?", process.Stages()).
		Scan(&reached).Error
	if err != nil {
		return fail(err)
	}
	metrics.CycleTimes = cycleTimes(reached)

	throughput, err := s.dailyCounts(ctx, periodDays)
	if err != nil {
		return fail(err)
	}
	metrics.DailyThroughput = throughput

	rr := &metrics.RejectionRate
	if err := db.Model(&models.Sari{}).Count(&rr.TotalCount).Error; err != nil {
		return fail(err)
	}
	if err := db.Model(&models.Sari{}).Where("status = ?", models.SariStatusRejected).Count(&rr.RejectedCount).Error; err != nil {
		return fail(err)
	}
	rr.RejectionRate = percentage(rr.RejectedCount, rr.TotalCount)

	return &metrics, nil
}

type stageReached struct {
	SerialNumber string
	ToProcess    string
	MovementDate time.Time
}

// cycleTimes averages, over saris that reached both, the hours between first
// reaching each stage and first reaching the next one. Intake records no
// movement into Entry, so pairs start at Kora.
func cycleTimes(rows []stageReached) []CycleTime {
	firstReached := make(map[string]map[string]time.Time)
	for _, row := range rows {
		perStage, ok := firstReached[row.SerialNumber]
		if !ok {
			perStage = make(map[string]time.Time)
			firstReached[row.SerialNumber] = perStage
		}
		if t, seen := perStage[row.ToProcess]; !seen || row.MovementDate.Before(t) {
			perStage[row.ToProcess] = row.MovementDate
		}
	}

	stages := process.Stages()[process.IndexOf(process.StageKora):]
	out := make([]CycleTime, 0, len(stages)-1)
	for i := 0; i+1 < len(stages); i++ {
		from, to := stages[i], stages[i+1]
		total := decimal.Zero
		n := 0
		for _, perStage := range firstReached {
			start, okStart := perStage[from]
			end, okEnd := perStage[to]
			if !okStart || !okEnd {
				continue
			}
			total = total.Add(decimal.NewFromFloat(end.Sub(start).Hours()))
			n++
		}
		ct := CycleTime{ProcessPair: from + " to " + to, Samples: n}
		if n > 0 {
			ct.AvgHours = total.Div(decimal.NewFromInt(int64(n))).Round(2).InexactFloat64()
		}
		out = append(out, ct)
	}
	return out
}

// SearchSuggestions returns up to ten serial numbers, design codes and locations
// containing query. Queries shorter than two characters return empty lists.
func (s *DashboardService) SearchSuggestions(ctx context.Context, query string) (*SearchSuggestions, error) {
	out := SearchSuggestions{SerialNumbers: []string{}, DesignCodes: []string{}, Locations: []string{}}
	query = strings.TrimSpace(query)
	if len([]rune(query)) < minSuggestionLen {
		return &out, nil
	}

	db := s.db.WithContext(ctx)
	pattern := utils.LikePattern(query)
	lookups := []struct {
		column string
		dest   *[]string
	}{
		{"serial_number", &out.SerialNumbers},
		{"item_code", &out.DesignCodes},
		{"current_location", &out.Locations},
	}
	for _, l := range lookups {
		err := db.Model(&models.Sari{}).
			Distinct(l.column).
			Where("LOWER("+l.column+") LIKE ?", pattern).
			Order(l.column + " ASC").
			Limit(suggestionLimit).
			Pluck(l.column, l.dest).Error
		if err != nil {
			return nil, FromDB(err, "Failed to fetch search suggestions")
		}
	}
	return &out, nil
}
