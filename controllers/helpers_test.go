package controllers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/sari-inventory-api/middleware"
	"github.com/kendall-kelly/sari-inventory-api/services"
	"github.com/kendall-kelly/sari-inventory-api/tests/testutil"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testOperator = "auth0|operator-1"

type testEnv struct {
	router *gin.Engine
	db     *gorm.DB
	store  *services.MockS3Service
}

// newTestEnv builds the full router over an in-memory database. Write routes
// are authenticated as testOperator unless guards are given.
func newTestEnv(t *testing.T, guards ...gin.HandlerFunc) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	if guards == nil {
		guards = []gin.HandlerFunc{
			testutil.MockAuth(testOperator, middleware.WriteScope),
			middleware.RequireScope(middleware.WriteScope),
		}
	}

	db := testutil.NewTestDB(t)
	store := services.NewMockS3Service()
	router := NewRouter(Dependencies{
		DB:          db,
		ReportStore: store,
		PhoneRegion: "IN",
		Logger:      testutil.NewTestLogger(),
		WriteGuards: guards,
	})
	return &testEnv{router: router, db: db, store: store}
}

// readOnlyGuards authenticate every request with a token lacking the write scope
func readOnlyGuards() []gin.HandlerFunc {
	return []gin.HandlerFunc{
		testutil.MockAuth(testOperator, "read:inventory"),
		middleware.RequireScope(middleware.WriteScope),
	}
}

func (e *testEnv) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response), "response should be valid JSON: %s", w.Body.String())
	return response
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	response := decode(t, w)
	errBody, ok := response["error"].(map[string]interface{})
	require.True(t, ok, "expected an error envelope: %s", w.Body.String())
	return errBody["code"].(string)
}

func dataMap(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	data, ok := decode(t, w)["data"].(map[string]interface{})
	require.True(t, ok, "expected an object in data: %s", w.Body.String())
	return data
}

func dataList(t *testing.T, w *httptest.ResponseRecorder) []interface{} {
	t.Helper()
	data, ok := decode(t, w)["data"].([]interface{})
	require.True(t, ok, "expected a list in data: %s", w.Body.String())
	return data
}
