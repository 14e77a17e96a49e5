package api

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"bakery-service/internal/errs"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func testRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	h := NewHandler(nil, nil, nil, nil, nil, nil, nil)
	h.SetupRoutes(router)
	return router
}

func doRequest(router *gin.Engine, method, path string, ownerID string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if ownerID != "" {
		req.Header.Set(ownerHeader, ownerID)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealthEndpointsNeedNoOwner(t *testing.T) {
	router := testRouter()

	assert.Equal(t, http.StatusOK, doRequest(router, http.MethodGet, "/health", "").Code)
	assert.Equal(t, http.StatusOK, doRequest(router, http.MethodGet, "/ready", "").Code)
}

func TestMissingOwnerHeaderIsUnauthorized(t *testing.T) {
	router := testRouter()

	w := doRequest(router, http.MethodGet, "/api/v1/ingredients/"+uuid.NewString(), "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMalformedOwnerHeaderIsRejected(t *testing.T) {
	router := testRouter()

	w := doRequest(router, http.MethodGet, "/api/v1/ingredients/"+uuid.NewString(), "not-a-uuid")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMalformedPathIDIsRejected(t *testing.T) {
	router := testRouter()

	w := doRequest(router, http.MethodGet, "/api/v1/ingredients/abc", uuid.NewString())
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdjustStockRejectsBadDelta(t *testing.T) {
	router := testRouter()

	path := fmt.Sprintf("/api/v1/inventory/ingredients/%s/adjust-stock?quantity_change=lots", uuid.NewString())
	w := doRequest(router, http.MethodPost, path, uuid.NewString())
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReportRejectsMissingDates(t *testing.T) {
	router := testRouter()

	w := doRequest(router, http.MethodGet, "/api/v1/reports/profit-and-loss", uuid.NewString())
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "start_date")
}

func TestReportRejectsUnknownFormat(t *testing.T) {
	router := testRouter()

	path := "/api/v1/reports/profit-and-loss?start_date=2026-08-01&end_date=2026-08-31&output_format=xlsx"
	w := doRequest(router, http.MethodGet, path, uuid.NewString())
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRespondErrorMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		err    error
		status int
	}{
		{fmt.Errorf("ingredient: %w", errs.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("quantity: %w", errs.ErrValidation), http.StatusBadRequest},
		{fmt.Errorf("order number: %w", errs.ErrConflict), http.StatusConflict},
		{fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		respondError(c, tc.err)
		assert.Equal(t, tc.status, w.Code, tc.err.Error())
	}
}
