package services

import (
	"context"
	"testing"
	"time"

	"github.com/kendall-kelly/sari-inventory-api/models"
	"github.com/kendall-kelly/sari-inventory-api/process"
	"github.com/kendall-kelly/sari-inventory-api/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedFloor(t *testing.T, db *gorm.DB) {
	t.Helper()
	testutil.SeedSari(t, db, "E1", "D1", process.StageKora, "Loom")
	testutil.SeedSari(t, db, "E2", "D1", process.StageWhite, "Bleach")
	testutil.SeedSari(t, db, "E3", "D2", process.StageContrastDyed, "Bleach")
	testutil.SeedSari(t, db, "E4", "D2", process.StageContrastDyed, "Finishing")
	testutil.SeedSari(t, db, "E5", "D3", process.StageKora, "Loom")
	require.NoError(t, db.Model(&models.Sari{}).Where("serial_number = ?", "E5").
		Update("status", models.SariStatusRejected).Error)
}

func TestDashboardOverview(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := NewDashboardService(db, nil)
	seedFloor(t, db)

	now := time.Now().UTC()
	require.NoError(t, db.Create(&models.Movement{
		SerialNumber: "E1", MovementDate: now, FromProcess: "Entry", ToProcess: "Kora", ToLocation: "Loom", CreatedAt: now,
	}).Error)
	require.NoError(t, db.Model(&models.Sari{}).Where("serial_number = ?", "E1").Update("entry_date", now).Error)

	overview, err := svc.Overview(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(5), overview.TotalSaris)
	assert.Equal(t, int64(4), overview.ActiveSaris)
	assert.Equal(t, int64(1), overview.RejectedSaris)
	assert.Equal(t, int64(1), overview.TotalMovements)
	assert.Equal(t, int64(1), overview.RecentMovements)
	assert.Equal(t, int64(1), overview.NewSarisToday)
	assert.Len(t, overview.ProcessDistribution, 3)
	assert.Equal(t, LocationCount{Location: "Bleach", Count: 2}, overview.LocationDistribution[0])
}

func TestDashboardProductionFlow(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := NewDashboardService(db, nil)
	seedFloor(t, db)

	flow, err := svc.ProductionFlow(context.Background())
	require.NoError(t, err)

	require.NotEmpty(t, flow.ProcessStages)
	assert.Equal(t, process.StageKora, flow.ProcessStages[0].Process)
	assert.Equal(t, process.StageContrastDyed, flow.ProcessStages[len(flow.ProcessStages)-1].Process)

	require.Len(t, flow.CompletionRates, 5)
	assert.Equal(t, StageCompletion{Process: "Entry", InProcess: 0, Completed: 4}, flow.CompletionRates[0])
	assert.Equal(t, StageCompletion{Process: "Kora", InProcess: 1, Completed: 3}, flow.CompletionRates[1])
	assert.Equal(t, StageCompletion{Process: "White", InProcess: 1, Completed: 2}, flow.CompletionRates[2])
	assert.Equal(t, StageCompletion{Process: "Contrast Dyed", InProcess: 2, Completed: 0}, flow.CompletionRates[4])
	assert.Empty(t, flow.DailyTrends)
}

func TestDashboardInventoryAnalytics(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := NewDashboardService(db, nil)
	seedFloor(t, db)

	analytics, err := svc.InventoryAnalytics(context.Background())
	require.NoError(t, err)

	require.Len(t, analytics.DesignDistribution, 2)
	assert.Equal(t, CodeCount{Code: "D1", Count: 2}, analytics.DesignDistribution[0])
	assert.Equal(t, CodeCount{Code: "CONTRASTD2", Count: 2}, analytics.CurrentCodeDistribution[0])

	require.Len(t, analytics.AgeAnalysis, 3)
	assert.Equal(t, process.StageKora, analytics.AgeAnalysis[0].Process)
	assert.InDelta(t, 2.0, analytics.AgeAnalysis[0].AvgDays, 0.01)

	require.Len(t, analytics.LocationEfficiency, 3)
	assert.Equal(t, LocationEfficiency{Location: "Finishing", TotalSaris: 1, CompletedSaris: 1, CompletionPercentage: 100}, analytics.LocationEfficiency[0])
	assert.Equal(t, LocationEfficiency{Location: "Bleach", TotalSaris: 2, CompletedSaris: 1, CompletionPercentage: 50}, analytics.LocationEfficiency[1])
	assert.Equal(t, float64(0), analytics.LocationEfficiency[2].CompletionPercentage)
}

func TestDashboardRecentActivities(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := NewDashboardService(db, nil)
	testutil.SeedSari(t, db, "E1", "D1", process.StageKora, "Loom")

	now := time.Now().UTC()
	require.NoError(t, db.Create(&models.Movement{
		SerialNumber: "E1", MovementDate: now, FromProcess: "Entry", ToProcess: "Kora", ToLocation: "Loom", CreatedAt: now,
	}).Error)

	activities, err := svc.RecentActivities(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, activities, 2)
	assert.Equal(t, ActivityMovement, activities[0].Type)
	assert.Equal(t, "Moved from Entry to Kora at Loom", activities[0].Description)
	assert.Equal(t, "D1", activities[0].DesignCode)
	assert.Equal(t, ActivityNewSari, activities[1].Type)
	assert.Equal(t, "sari_E1", activities[1].ID)

	limited, err := svc.RecentActivities(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestDashboardPerformanceMetrics(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := NewDashboardService(db, nil)
	seedFloor(t, db)

	base := time.Now().UTC().Add(-10 * time.Hour)
	require.NoError(t, db.Create(&[]models.Movement{
		{SerialNumber: "E2", MovementDate: base, FromProcess: "Entry", ToProcess: "Kora", ToLocation: "Loom", CreatedAt: base},
		{SerialNumber: "E2", MovementDate: base.Add(3 * time.Hour), FromProcess: "Kora", ToProcess: "White", ToLocation: "Bleach", CreatedAt: base.Add(3 * time.Hour)},
		{SerialNumber: "E3", MovementDate: base, FromProcess: "Entry", ToProcess: "Kora", ToLocation: "Loom", CreatedAt: base},
		{SerialNumber: "E3", MovementDate: base.Add(5 * time.Hour), FromProcess: "Kora", ToProcess: "White", ToLocation: "Bleach", CreatedAt: base.Add(5 * time.Hour)},
	}).Error)

	metrics, err := svc.PerformanceMetrics(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 7, metrics.PeriodDays)
	assert.Equal(t, ProductionEfficiency{CompletedSaris: 2, TotalSaris: 4, CompletionRate: 50}, metrics.ProductionEfficiency)
	assert.Equal(t, RejectionRate{RejectedCount: 1, TotalCount: 5, RejectionRate: 20}, metrics.RejectionRate)

	require.Len(t, metrics.CycleTimes, 3)
	assert.Equal(t, CycleTime{ProcessPair: "Kora to White", AvgHours: 4, Samples: 2}, metrics.CycleTimes[0])
	assert.Equal(t, "White to Self Dyed", metrics.CycleTimes[1].ProcessPair)
	assert.Equal(t, "Self Dyed to Contrast Dyed", metrics.CycleTimes[2].ProcessPair)
	for _, ct := range metrics.CycleTimes {
		assert.NotContains(t, ct.ProcessPair, "Entry")
	}

	require.NotEmpty(t, metrics.DailyThroughput)
	var total int64
	for _, day := range metrics.DailyThroughput {
		total += day.Movements
	}
	assert.Equal(t, int64(4), total)

	_, err = svc.PerformanceMetrics(context.Background(), 0)
	assert.True(t, IsKind(err, KindValidation))
	_, err = svc.PerformanceMetrics(context.Background(), 400)
	assert.True(t, IsKind(err, KindValidation))
}

func TestDashboardSearchSuggestions(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := NewDashboardService(db, nil)
	seedFloor(t, db)
	ctx := context.Background()

	short, err := svc.SearchSuggestions(ctx, "E")
	require.NoError(t, err)
	assert.Empty(t, short.SerialNumbers)
	assert.NotNil(t, short.SerialNumbers)

	byLocation, err := svc.SearchSuggestions(ctx, "lea")
	require.NoError(t, err)
	assert.Equal(t, []string{"Bleach"}, byLocation.Locations)
	assert.Empty(t, byLocation.SerialNumbers)

	byCode, err := svc.SearchSuggestions(ctx, "d2")
	require.NoError(t, err)
	assert.Equal(t, []string{"D2"}, byCode.DesignCodes)
}

func TestStageCompletions_UnknownStagesIgnored(t *testing.T) {
	out := stageCompletions(map[string]int64{"Kora": 3, "Rework": 7})
	assert.Equal(t, int64(3), out[0].Completed)
	assert.Equal(t, int64(3), out[1].InProcess)
	assert.Equal(t, int64(0), out[1].Completed)
}

func TestPercentage(t *testing.T) {
	assert.Equal(t, float64(0), percentage(1, 0))
	assert.Equal(t, 33.33, percentage(1, 3))
	assert.Equal(t, 66.67, percentage(2, 3))
	assert.Equal(t, 1.23, round2(1.234))
}
