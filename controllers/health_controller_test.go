package controllers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthRoute(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/api/v1/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	response := decode(t, w)
	assert.Equal(t, true, response["success"])
	assert.Equal(t, "Sari Inventory API is running", response["message"])
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestDatabaseStatusRoute(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/api/v1/database/status", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	response := decode(t, w)
	assert.Equal(t, true, response["success"])
	assert.Contains(t, response["tables"], "serial_master")
	assert.Contains(t, response["tables"], "movement_log")
	assert.Contains(t, response, "pool")
}

func TestDatabaseStatusRoute_ClosedConnection(t *testing.T) {
	env := newTestEnv(t)
	sqlDB, err := env.db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	w := env.do(http.MethodGet, "/api/v1/database/status", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "DATABASE_CONNECTION_ERROR", errorCode(t, w))
}
