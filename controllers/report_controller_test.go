package controllers

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/sari-inventory-api/models"
	"github.com/kendall-kelly/sari-inventory-api/process"
	"github.com/kendall-kelly/sari-inventory-api/services"
	"github.com/kendall-kelly/sari-inventory-api/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func uploadCSV(t *testing.T, router *gin.Engine, path, filename, content string) *httptest.ResponseRecorder {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if filename != "" {
		part, err := writer.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestInventoryReportRoute(t *testing.T) {
	env := newTestEnv(t)
	testutil.SeedSari(t, env.db, "E1", "D1", process.StageKora, "Loom")

	w := env.do(http.MethodGet, "/api/v1/reports/inventory", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, services.XLSXContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "sari-inventory-")

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(services.SheetInventory)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestArchiveInventoryReportRoute(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/api/v1/reports/inventory/archive", nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	archived := dataMap(t, w)
	key := archived["key"].(string)
	assert.True(t, strings.HasPrefix(key, "reports/"))
	_, stored := env.store.Object(key)
	assert.True(t, stored)
}

func TestArchiveInventoryReportRoute_NoStorage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := NewRouter(Dependencies{
		DB:     testutil.NewTestDB(t),
		Logger: testutil.NewTestLogger(),
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/reports/inventory/archive", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "STORAGE_UNAVAILABLE", errorCode(t, w))
}

func TestImportRoutes(t *testing.T) {
	env := newTestEnv(t)

	w := uploadCSV(t, env.router, "/api/v1/imports/items", "items.csv",
		"design_code,kora,white,self_dyed,contrast_dyed\nD1,K1,W1,S1,C1\nD2,K2,W2,S2,C2\n")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	result := dataMap(t, w)
	assert.Equal(t, float64(2), result["created"])

	w = uploadCSV(t, env.router, "/api/v1/imports/saris", "saris.csv",
		"serial_number,design_code,entry_date,current_process,current_location\nE1,D1,2024-01-05,White,Bleach\n")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var sari models.Sari
	require.NoError(t, env.db.First(&sari, "serial_number = ?", "E1").Error)
	assert.Equal(t, "W1", sari.CurrentCode)

	tests := []struct {
		name         string
		filename     string
		content      string
		expectedCode string
	}{
		{"missing file", "", "", "MISSING_FILE"},
		{"wrong extension", "items.xlsx", "design_code\nD1\n", "INVALID_FILE_FORMAT"},
		{"empty file", "items.csv", "", "EMPTY_FILE"},
		{"missing required column", "items.csv", "kora,white\nK1,W1\n", "INVALID_CSV"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := uploadCSV(t, env.router, "/api/v1/imports/items", tt.filename, tt.content)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.expectedCode, errorCode(t, w))
		})
	}
}
