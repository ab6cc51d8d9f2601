package controllers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/legacy-storefront-api/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminOrders(t *testing.T) {
	app := setupTestApp(t)
	token := testutil.AdminToken(t, app.deps.Config)
	auth := map[string]string{"Authorization": "Bearer " + token}

	for _, e := range []testutil.CheckoutEvent{
		{EventID: "evt_1", SessionID: "cs_test_1", Slug: "retro-mountain-01", Amount: 15000},
		{EventID: "evt_2", SessionID: "cs_test_2", Slug: "puglia-01", Amount: 4200},
	} {
		require.Equal(t, http.StatusOK, app.deliver(t, e).Code)
	}

	t.Run("requires an admin token", func(t *testing.T) {
		w := app.do(http.MethodGet, "/api/v1/admin/orders", nil, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)

		w = app.do(http.MethodGet, "/api/v1/admin/orders", nil, map[string]string{"X-Admin-Secret": testutil.AdminSecret})
		assert.Equal(t, http.StatusUnauthorized, w.Code, "Raw secret is only accepted on delete")
	})

	t.Run("lists orders", func(t *testing.T) {
		w := app.do(http.MethodGet, "/api/v1/admin/orders?limit=1", nil, auth)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		response := decodeBody(t, w)
		assert.Equal(t, float64(2), response["total"])
		assert.Len(t, response["data"].([]interface{}), 1)
	})

	t.Run("rejects bad pagination", func(t *testing.T) {
		w := app.do(http.MethodGet, "/api/v1/admin/orders?limit=-3", nil, auth)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("gets one order with its code and archive link", func(t *testing.T) {
		w := app.do(http.MethodGet, "/api/v1/admin/orders/cs_test_1", nil, auth)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		response := decodeBody(t, w)

		data := response["data"].(map[string]interface{})
		assert.Equal(t, "150.00", data["amount"])
		assert.Equal(t, "EUR", data["currency"])
		assert.Equal(t, "webhooks/evt_1.json", data["archive_key"])
		assert.Contains(t, data["archive_url"], "webhooks/evt_1.json")

		legacy := response["legacy"].(map[string]interface{})
		assert.Equal(t, "cs_test_1", legacy["session_id"])
		assert.NotEmpty(t, legacy["code"])
	})

	t.Run("unknown order", func(t *testing.T) {
		w := app.do(http.MethodGet, "/api/v1/admin/orders/cs_missing", nil, auth)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "ORDER_NOT_FOUND", decodeBody(t, w)["code"])
	})

	t.Run("lists every legacy record including codes", func(t *testing.T) {
		w := app.do(http.MethodGet, "/api/v1/admin/legacy", nil, auth)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, decodeBody(t, w)["data"].([]interface{}), 2)
	})
}

func TestAdminListOrdersHandler(t *testing.T) {
	app := setupTestApp(t)
	controller := NewAdminController(app.deps.Orders, app.deps.Issuer, app.deps.Claims, app.deps.Archive)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/admin/orders", nil)
	testutil.SetMockAdminContext(c, "orders:read")

	controller.ListOrders(c)

	assert.Equal(t, http.StatusOK, w.Code)
	response := decodeBody(t, w)
	assert.Equal(t, float64(0), response["total"])
	assert.Equal(t, float64(defaultPageSize), response["limit"])
}
