package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/sari-inventory-api/config"
	"github.com/kendall-kelly/sari-inventory-api/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestApp builds the application over a private shared-cache SQLite database
func newTestApp(t *testing.T) *app {
	t.Helper()
	gin.SetMode(gin.TestMode)

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	cfg := &config.Config{
		DatabaseURL:    "sqlite://file:" + name + "?mode=memory&cache=shared",
		GoEnv:          "test",
		LogLevel:       "error",
		ServiceName:    "sari-inventory-api-test",
		PhoneRegion:    "IN",
		DBMaxOpenConns: 1,
		DBMaxIdleConns: 1,
	}

	a, err := newApp(context.Background(), cfg, testutil.NewTestLogger())
	require.NoError(t, err)
	t.Cleanup(func() { a.close(context.Background()) })
	return a
}

func TestNewApp(t *testing.T) {
	a := newTestApp(t)
	assert.NotNil(t, a.router)
	assert.Nil(t, a.redis, "redis is optional")

	tables, err := a.db.Migrator().GetTables()
	require.NoError(t, err)
	for _, table := range []string{"item_master", "serial_master", "movement_log", "customers", "suppliers"} {
		assert.Contains(t, tables, table)
	}
}

func TestNewApp_InvalidDatabaseURL(t *testing.T) {
	cfg := &config.Config{DatabaseURL: "oracle://localhost/db", GoEnv: "test"}

	a, err := newApp(context.Background(), cfg, testutil.NewTestLogger())
	assert.Error(t, err)
	assert.Nil(t, a)
}

func TestHealthCheck(t *testing.T) {
	a := newTestApp(t)

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	assert.Equal(t, http.StatusOK, w.Code, "Expected status code 200")

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response), "Response should be valid JSON")
	assert.Equal(t, true, response["success"], "Expected success to be true")
	assert.Equal(t, "Sari Inventory API is running", response["message"], "Expected correct message")
}

// TestHealthCheckResponseFormat tests the exact JSON format
func TestHealthCheckResponseFormat(t *testing.T) {
	a := newTestApp(t)

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Len(t, response, 2, "Response should have exactly 2 fields")
	assert.Contains(t, response, "success")
	assert.Contains(t, response, "message")
}
