package controllers

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/kendall-kelly/sari-inventory-api/models"
	"github.com/kendall-kelly/sari-inventory-api/process"
	"github.com/kendall-kelly/sari-inventory-api/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func moveBody(serial, from, to, location string) map[string]interface{} {
	return map[string]interface{}{
		"serialNumber": serial,
		"fromProcess":  from,
		"toProcess":    to,
		"location":     location,
	}
}

func TestCreateMovement(t *testing.T) {
	env := newTestEnv(t)
	testutil.SeedSari(t, env.db, "E1", "D1", process.StageKora, "Loom")

	body := moveBody("E1", "Kora", "White", "Bleach House")
	body["quality"] = "A"
	w := env.do(http.MethodPost, "/api/v1/movements", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	data := dataMap(t, w)
	movement := data["movement"].(map[string]interface{})
	assert.Equal(t, "Kora", movement["fromProcess"])
	assert.Equal(t, "White", movement["toProcess"])
	assert.Equal(t, "Loom", movement["fromLocation"])
	assert.Equal(t, "Bleach House", movement["location"])
	assert.Equal(t, "A", movement["quality"])
	assert.Equal(t, testOperator, movement["operator"], "token subject is the default operator")

	sari := data["sari"].(map[string]interface{})
	assert.Equal(t, "White", sari["currentProcess"])
	assert.Equal(t, "Bleach House", sari["currentLocation"])
	assert.Equal(t, "WHITED1", sari["currentCode"])

	var stored models.Sari
	require.NoError(t, env.db.First(&stored, "serial_number = ?", "E1").Error)
	assert.Equal(t, "White", stored.CurrentProcess)
	assert.NotNil(t, stored.LastMovementAt)
}

func TestCreateMovement_ExplicitOperator(t *testing.T) {
	env := newTestEnv(t)
	testutil.SeedSari(t, env.db, "E1", "D1", process.StageKora, "Loom")

	body := moveBody("E1", "Kora", "White", "Bleach")
	body["operator"] = "Ravi"
	w := env.do(http.MethodPost, "/api/v1/movements", body)
	require.Equal(t, http.StatusCreated, w.Code)
	movement := dataMap(t, w)["movement"].(map[string]interface{})
	assert.Equal(t, "Ravi", movement["operator"])
}

func TestCreateMovement_Errors(t *testing.T) {
	env := newTestEnv(t)
	testutil.SeedSari(t, env.db, "E1", "D1", process.StageKora, "Loom")
	testutil.SeedSari(t, env.db, "E2", "D1", process.StageKora, "Loom")
	require.NoError(t, env.db.Model(&models.Sari{}).Where("serial_number = ?", "E2").
		Update("status", models.SariStatusRejected).Error)

	tests := []struct {
		name           string
		body           map[string]interface{}
		expectedStatus int
		expectedError  string
	}{
		{"unknown serial", moveBody("E404", "Kora", "White", "Bleach"), http.StatusNotFound, "SARI_NOT_FOUND"},
		{"missing location", moveBody("E1", "Kora", "White", ""), http.StatusBadRequest, "VALIDATION_ERROR"},
		{"blank to process", moveBody("E1", "Kora", " ", "Bleach"), http.StatusBadRequest, "VALIDATION_ERROR"},
		{"rejected sari", moveBody("E2", "Kora", "White", "Bleach"), http.StatusConflict, "SARI_REJECTED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(http.MethodPost, "/api/v1/movements", tt.body)
			assert.Equal(t, tt.expectedStatus, w.Code, w.Body.String())
			assert.Equal(t, tt.expectedError, errorCode(t, w))
		})
	}

	var count int64
	require.NoError(t, env.db.Model(&models.Movement{}).Count(&count).Error)
	assert.Zero(t, count, "failed requests write nothing")
}

func TestListMovements(t *testing.T) {
	env := newTestEnv(t)
	testutil.SeedSari(t, env.db, "E100", "D1", process.StageKora, "Loom")
	testutil.SeedSari(t, env.db, "E200", "D1", process.StageKora, "Loom")

	for _, serial := range []string{"E100", "E200"} {
		w := env.do(http.MethodPost, "/api/v1/movements", moveBody(serial, "Kora", "White", "Bleach"))
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := env.do(http.MethodGet, "/api/v1/movements?serialNumber=e1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := dataList(t, w)
	require.Len(t, list, 1)
	assert.Equal(t, "E100", list[0].(map[string]interface{})["serialNumber"])

	today := time.Now().UTC().Format("2006-01-02")
	w = env.do(http.MethodGet, "/api/v1/movements?process=White&date="+today, nil)
	assert.Len(t, dataList(t, w), 2)

	w = env.do(http.MethodGet, "/api/v1/movements?date=2020-01-01", nil)
	assert.Empty(t, dataList(t, w))

	w = env.do(http.MethodGet, "/api/v1/movements?date=01/02/2024", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_DATE", errorCode(t, w))

	w = env.do(http.MethodGet, "/api/v1/movements?limit=1", nil)
	response := decode(t, w)
	assert.Len(t, response["data"], 1)
	assert.Equal(t, float64(2), response["pagination"].(map[string]interface{})["pages"])
}

func TestMovementByID_UpdateAndDelete(t *testing.T) {
	env := newTestEnv(t)
	testutil.SeedSari(t, env.db, "E1", "D1", process.StageEntry, "Gate")

	w := env.do(http.MethodPost, "/api/v1/movements", moveBody("E1", "Entry", "Kora", "Loom"))
	require.Equal(t, http.StatusCreated, w.Code)
	w = env.do(http.MethodPost, "/api/v1/movements", moveBody("E1", "Kora", "White", "Bleach"))
	require.Equal(t, http.StatusCreated, w.Code)
	latestID := dataMap(t, w)["movement"].(map[string]interface{})["id"].(float64)
	path := fmt.Sprintf("/api/v1/movements/%d", int(latestID))

	w = env.do(http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "White", dataMap(t, w)["toProcess"])

	w = env.do(http.MethodPut, path, map[string]interface{}{
		"fromProcess": "Kora", "toProcess": "Self Dyed", "location": "Dye House", "notes": "corrected",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "corrected", dataMap(t, w)["notes"])

	var sari models.Sari
	require.NoError(t, env.db.First(&sari, "serial_number = ?", "E1").Error)
	assert.Equal(t, "Self Dyed", sari.CurrentProcess)

	w = env.do(http.MethodDelete, path, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, env.db.First(&sari, "serial_number = ?", "E1").Error)
	assert.Equal(t, "Kora", sari.CurrentProcess, "sari falls back to its remaining latest movement")
	assert.Equal(t, "Loom", sari.CurrentLocation)

	w = env.do(http.MethodGet, path, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "MOVEMENT_NOT_FOUND", errorCode(t, w))

	w = env.do(http.MethodGet, "/api/v1/movements/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_ID", errorCode(t, w))
}

func TestMovementHistoryAndSummary(t *testing.T) {
	env := newTestEnv(t)
	testutil.SeedSari(t, env.db, "E1", "D1", process.StageEntry, "Gate")
	testutil.SeedSari(t, env.db, "E2", "D1", process.StageEntry, "Gate")

	for _, body := range []map[string]interface{}{
		moveBody("E1", "Entry", "Kora", "Loom"),
		moveBody("E1", "Kora", "White", "Bleach"),
		moveBody("E2", "Entry", "Kora", "Loom"),
	} {
		require.Equal(t, http.StatusCreated, env.do(http.MethodPost, "/api/v1/movements", body).Code)
	}

	w := env.do(http.MethodGet, "/api/v1/movements/sari/E1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	history := dataList(t, w)
	require.Len(t, history, 2)
	assert.Equal(t, "White", history[0].(map[string]interface{})["toProcess"], "history is newest first")

	w = env.do(http.MethodGet, "/api/v1/movements/stats/summary", nil)
	require.Equal(t, http.StatusOK, w.Code)
	summary := dataMap(t, w)
	assert.Equal(t, float64(3), summary["totalMovements"])
	assert.Equal(t, float64(2), summary["uniqueSaris"])
	assert.Equal(t, float64(3), summary["recentMovements"])
	stats := summary["processStats"].([]interface{})
	require.NotEmpty(t, stats)
	assert.Equal(t, "Kora", stats[0].(map[string]interface{})["process"])
}
