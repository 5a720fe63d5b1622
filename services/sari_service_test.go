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

func newSariService(t *testing.T) (*SariService, *gorm.DB) {
	t.Helper()
	db := testutil.NewTestDB(t)
	return NewSariService(db, nil, testutil.NewTestLogger()), db
}

func TestSariCreate_SynthesizesUnknownItem(t *testing.T) {
	svc, db := newSariService(t)

	sari, err := svc.Create(context.Background(), CreateSariInput{
		SerialNumber:    " E9999 ",
		ItemCode:        "D777",
		EntryDate:       time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		CurrentProcess:  process.StageKora,
		CurrentLocation: "Loom Shed",
	})
	require.NoError(t, err)
	assert.Equal(t, "E9999", sari.SerialNumber)
	assert.Equal(t, "KORAD777", sari.CurrentCode)
	assert.Equal(t, models.SariStatusActive, sari.Status)

	var item models.Item
	require.NoError(t, db.First(&item, "item_code = ?", "D777").Error)
	assert.Equal(t, "KORAD777", item.Kora)
	assert.Equal(t, "WHITED777", item.White)
	assert.Equal(t, "SELFD777", item.SelfDyed)
	assert.Equal(t, "CONTRASTD777", item.ContrastDyed)
}

func TestSariCreate_NoCodeAtEntry(t *testing.T) {
	svc, _ := newSariService(t)

	sari, err := svc.Create(context.Background(), CreateSariInput{
		SerialNumber:   "E5",
		ItemCode:       "D5",
		EntryDate:      time.Now(),
		CurrentProcess: process.StageEntry,
	})
	require.NoError(t, err)
	assert.Empty(t, sari.CurrentCode)
}

func TestSariCreate_UsesExistingItemLabels(t *testing.T) {
	svc, db := newSariService(t)
	require.NoError(t, db.Create(&models.Item{ItemCode: "D1", Kora: "K-01", White: "W-01"}).Error)

	sari, err := svc.Create(context.Background(), CreateSariInput{
		SerialNumber:   "E1",
		ItemCode:       "D1",
		EntryDate:      time.Now(),
		CurrentProcess: process.StageWhite,
	})
	require.NoError(t, err)
	assert.Equal(t, "W-01", sari.CurrentCode)

	var item models.Item
	require.NoError(t, db.First(&item, "item_code = ?", "D1").Error)
	assert.Equal(t, "K-01", item.Kora, "existing item must not be overwritten")
}

func TestSariCreate_RejectsDuplicatesAndMissingFields(t *testing.T) {
	svc, db := newSariService(t)
	testutil.SeedSari(t, db, "E1", "D1", process.StageEntry, "Store")
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateSariInput{SerialNumber: "E1", ItemCode: "D1", EntryDate: time.Now()})
	assert.True(t, IsKind(err, KindConflict))

	_, err = svc.Create(ctx, CreateSariInput{ItemCode: "D1", EntryDate: time.Now()})
	assert.True(t, IsKind(err, KindValidation))
	_, err = svc.Create(ctx, CreateSariInput{SerialNumber: "E2", EntryDate: time.Now()})
	assert.True(t, IsKind(err, KindValidation))
	_, err = svc.Create(ctx, CreateSariInput{SerialNumber: "E2", ItemCode: "D1"})
	assert.True(t, IsKind(err, KindValidation))
}

func TestSariList_FiltersByStatusSearchAndProcess(t *testing.T) {
	svc, db := newSariService(t)
	testutil.SeedSari(t, db, "E100", "D1", process.StageKora, "Loom")
	testutil.SeedSari(t, db, "E200", "D2", process.StageWhite, "Bleach")
	testutil.SeedSari(t, db, "E300", "D2", process.StageWhite, "Bleach")
	ctx := context.Background()
	_, err := svc.Delete(ctx, "E300")
	require.NoError(t, err)

	active, page, err := svc.List(ctx, SariListFilter{})
	require.NoError(t, err)
	assert.Len(t, active, 2)
	assert.Equal(t, int64(2), page.Total)

	all, _, err := svc.List(ctx, SariListFilter{Status: "all"})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	rejected, _, err := svc.List(ctx, SariListFilter{Status: models.SariStatusRejected})
	require.NoError(t, err)
	require.Len(t, rejected, 1)
	assert.Equal(t, "E300", rejected[0].SerialNumber)

	searched, _, err := svc.List(ctx, SariListFilter{Search: "d2", Status: "all"})
	require.NoError(t, err)
	assert.Len(t, searched, 2)

	byProcess, _, err := svc.List(ctx, SariListFilter{Process: process.StageKora})
	require.NoError(t, err)
	require.Len(t, byProcess, 1)
	assert.Equal(t, "E100", byProcess[0].SerialNumber)

	_, _, err = svc.List(ctx, SariListFilter{Status: "archived"})
	assert.True(t, IsKind(err, KindValidation))
}

func TestSariGet(t *testing.T) {
	svc, db := newSariService(t)
	testutil.SeedSari(t, db, "E100", "D1", process.StageKora, "Loom")

	sari, err := svc.Get(context.Background(), "E100")
	require.NoError(t, err)
	require.NotNil(t, sari.Item)
	assert.Equal(t, "KORAD1", sari.Item.Kora)

	_, err = svc.Get(context.Background(), "E404")
	assert.True(t, IsKind(err, KindNotFound))
}

func TestSariUpdate_RederivesCurrentCode(t *testing.T) {
	svc, db := newSariService(t)
	testutil.SeedSari(t, db, "E100", "D1", process.StageKora, "Loom")

	updated, err := svc.Update(context.Background(), "E100", UpdateSariInput{
		ItemCode:        "D9",
		EntryDate:       time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		CurrentProcess:  process.StageContrastDyed,
		CurrentLocation: "Finishing",
	})
	require.NoError(t, err)
	assert.Equal(t, "D9", updated.ItemCode)
	assert.Equal(t, "CONTRASTD9", updated.CurrentCode)
	assert.Equal(t, "Finishing", updated.CurrentLocation)

	_, err = svc.Update(context.Background(), "E404", UpdateSariInput{ItemCode: "D1", EntryDate: time.Now()})
	assert.True(t, IsKind(err, KindNotFound))
}

func TestSariDeleteAndRestore(t *testing.T) {
	svc, db := newSariService(t)
	testutil.SeedSari(t, db, "E100", "D1", process.StageKora, "Loom")
	ctx := context.Background()

	deleted, err := svc.Delete(ctx, "E100")
	require.NoError(t, err)
	assert.True(t, deleted.IsRejected())

	again, err := svc.Delete(ctx, "E100")
	require.NoError(t, err, "deleting twice is a no-op")
	assert.True(t, again.IsRejected())

	restored, err := svc.Restore(ctx, "E100")
	require.NoError(t, err)
	assert.Equal(t, models.SariStatusActive, restored.Status)

	_, err = svc.Delete(ctx, "E404")
	assert.True(t, IsKind(err, KindNotFound))
}
