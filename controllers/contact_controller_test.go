package controllers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomerRoutes(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/api/v1/customers", map[string]interface{}{
		"name":    "Meera Textiles",
		"email":   "Sales@Meera.in",
		"phone":   "98765 43210",
		"city":    "Surat",
		"state":   "Gujarat",
		"pincode": "395003",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	customer := dataMap(t, w)
	assert.Equal(t, "sales@meera.in", customer["email"])
	assert.Equal(t, "+919876543210", customer["phone"])
	assert.Equal(t, "395003", customer["pincode"])
	assert.Equal(t, "active", customer["status"])
	path := fmt.Sprintf("/api/v1/customers/%d", int(customer["id"].(float64)))

	w = env.do(http.MethodPost, "/api/v1/customers", map[string]interface{}{"name": "Copy", "email": "sales@meera.in"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "EMAIL_EXISTS", errorCode(t, w))

	w = env.do(http.MethodPost, "/api/v1/customers", map[string]interface{}{"name": "Bad", "phone": "123"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_PHONE", errorCode(t, w))

	w = env.do(http.MethodPost, "/api/v1/customers", map[string]interface{}{"name": "Bad", "status": "deleted"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(t, w))

	w = env.do(http.MethodPut, path, map[string]interface{}{"name": "Meera Sarees", "email": "sales@meera.in"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Meera Sarees", dataMap(t, w)["name"])

	w = env.do(http.MethodGet, "/api/v1/customers?search=sarees", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, dataList(t, w), 1)

	w = env.do(http.MethodDelete, path, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "inactive", dataMap(t, w)["status"])

	w = env.do(http.MethodGet, "/api/v1/customers/stats/summary", nil)
	require.Equal(t, http.StatusOK, w.Code)
	stats := dataMap(t, w)
	assert.Equal(t, float64(1), stats["total"])
	assert.Equal(t, float64(1), stats["inactive"])

	w = env.do(http.MethodGet, "/api/v1/customers/999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "CUSTOMER_NOT_FOUND", errorCode(t, w))
}

func TestSupplierRoutes(t *testing.T) {
	env := newTestEnv(t)

	for _, body := range []map[string]interface{}{
		{"name": "Yarn Co", "category": "yarn", "city": "Surat"},
		{"name": "Dye Works", "category": "dyes", "city": "Surat"},
		{"name": "Loom Spares"},
	} {
		w := env.do(http.MethodPost, "/api/v1/suppliers", body)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	w := env.do(http.MethodGet, "/api/v1/suppliers?category=yarn", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := dataList(t, w)
	require.Len(t, list, 1)
	assert.Equal(t, "Yarn Co", list[0].(map[string]interface{})["name"])

	w = env.do(http.MethodGet, "/api/v1/suppliers/categories/list", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []interface{}{"dyes", "general", "yarn"}, dataList(t, w))

	w = env.do(http.MethodGet, "/api/v1/suppliers/stats/summary", nil)
	require.Equal(t, http.StatusOK, w.Code)
	stats := dataMap(t, w)
	assert.Equal(t, float64(3), stats["total"])
	assert.Len(t, stats["byCategory"], 3)

	w = env.do(http.MethodDelete, "/api/v1/suppliers/999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "SUPPLIER_NOT_FOUND", errorCode(t, w))

	w = env.do(http.MethodGet, "/api/v1/suppliers/0", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
