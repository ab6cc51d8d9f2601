package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/legacy-storefront-api/services"
	"github.com/kendall-kelly/legacy-storefront-api/tests/testutil"
	"github.com/stretchr/testify/require"
)

type testApp struct {
	deps     *Dependencies
	router   *gin.Engine
	geocoder *services.MockGeocoder
	archive  *services.MockEventArchive
	events   *services.MockEventPublisher
}

func setupTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := testutil.TestConfig()
	db := testutil.NewTestDB(t)
	geocoder := services.NewMockGeocoder()
	archive := services.NewMockEventArchive()
	events := services.NewMockEventPublisher()

	deps := NewDependencies(cfg, db, geocoder, archive, events)
	return &testApp{
		deps:     deps,
		router:   SetupRouter(deps),
		geocoder: geocoder,
		archive:  archive,
		events:   events,
	}
}

func (a *testApp) do(method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case []byte:
		reader = bytes.NewReader(b)
	default:
		raw, _ := json.Marshal(b)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

// deliver posts a signed checkout event to the webhook
func (a *testApp) deliver(t *testing.T, e testutil.CheckoutEvent) *httptest.ResponseRecorder {
	t.Helper()
	payload := e.Payload(t)
	return a.do(http.MethodPost, "/api/v1/webhooks/stripe", payload, map[string]string{
		"Stripe-Signature": testutil.SignPayload(payload, testutil.WebhookSecret),
	})
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response), "Response should be valid JSON: %s", w.Body.String())
	return response
}

func decodeBodyNoFail(b []byte) map[string]interface{} {
	var response map[string]interface{}
	_ = json.Unmarshal(b, &response)
	return response
}

func uintToString(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
