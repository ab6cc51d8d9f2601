package acceptance

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/legacy-storefront-api/controllers"
	"github.com/kendall-kelly/legacy-storefront-api/services"
	"github.com/kendall-kelly/legacy-storefront-api/tests/testutil"
	"github.com/stretchr/testify/suite"
)

// StorefrontAcceptanceTestSuite exercises the public HTTP contract over a real
// listener: a paid checkout becomes an order, a sale and a claimable code.
type StorefrontAcceptanceTestSuite struct {
	suite.Suite
	server  *httptest.Server
	client  *http.Client
	archive *services.MockEventArchive
}

func (suite *StorefrontAcceptanceTestSuite) SetupTest() {
	testutil.RequireTestEnvironment(suite.T())
	gin.SetMode(gin.TestMode)

	db := testutil.NewTestDB(suite.T())
	suite.archive = services.NewMockEventArchive()
	deps := controllers.NewDependencies(testutil.TestConfig(), db, services.NewMockGeocoder(), suite.archive, services.NewMockEventPublisher())
	suite.server = httptest.NewServer(controllers.SetupRouter(deps))
	suite.client = suite.server.Client()
}

func (suite *StorefrontAcceptanceTestSuite) TearDownTest() {
	suite.server.Close()
}

func (suite *StorefrontAcceptanceTestSuite) call(method, path string, body []byte, headers map[string]string) (int, map[string]interface{}) {
	req, err := http.NewRequest(method, suite.server.URL+path, bytes.NewReader(body))
	suite.Require().NoError(err)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := suite.client.Do(req)
	suite.Require().NoError(err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	suite.Require().NoError(err)
	var decoded map[string]interface{}
	if len(raw) > 0 {
		suite.Require().NoError(json.Unmarshal(raw, &decoded), string(raw))
	}
	return resp.StatusCode, decoded
}

func (suite *StorefrontAcceptanceTestSuite) postJSON(path string, body interface{}, headers map[string]string) (int, map[string]interface{}) {
	data, err := json.Marshal(body)
	suite.Require().NoError(err)
	return suite.call(http.MethodPost, path, data, headers)
}

func (suite *StorefrontAcceptanceTestSuite) TestPurchaseToMapJourney() {
	// Checkout completes
	payload := testutil.CheckoutEvent{
		EventID:   "evt_accept_1",
		SessionID: "cs_test_1",
		Slug:      "retro-mountain-01",
		Amount:    15000,
	}.Payload(suite.T())
	status, body := suite.call(http.MethodPost, "/api/v1/webhooks/stripe", payload, map[string]string{
		"Stripe-Signature": testutil.SignPayload(payload, testutil.WebhookSecret),
	})
	suite.Require().Equal(http.StatusOK, status)
	suite.Equal(true, body["received"])
	suite.Equal(false, body["duplicate"])

	// The provider retries
	status, body = suite.call(http.MethodPost, "/api/v1/webhooks/stripe", payload, map[string]string{
		"Stripe-Signature": testutil.SignPayload(payload, testutil.WebhookSecret),
	})
	suite.Require().Equal(http.StatusOK, status)
	suite.Equal(true, body["duplicate"])

	// Stock reflects exactly one sale
	status, body = suite.call(http.MethodGet, "/api/v1/stock/retro-mountain-01?edition=10", nil, nil)
	suite.Require().Equal(http.StatusOK, status)
	stock := body["data"].(map[string]interface{})
	suite.Equal(float64(1), stock["sold_count"])
	suite.Equal(float64(9), stock["remaining"])

	// The operator logs in and reads the order and its code
	status, body = suite.postJSON("/api/v1/legacy/admin/verify", gin.H{"code": testutil.AdminSecret}, nil)
	suite.Require().Equal(http.StatusOK, status)
	auth := map[string]string{"Authorization": "Bearer " + body["token"].(string)}

	status, body = suite.call(http.MethodGet, "/api/v1/admin/orders/cs_test_1", nil, auth)
	suite.Require().Equal(http.StatusOK, status)
	order := body["data"].(map[string]interface{})
	suite.Equal("150.00", order["amount"])
	suite.Equal("EUR", order["currency"])
	suite.NotEmpty(order["archive_url"])
	legacy := body["legacy"].(map[string]interface{})
	code := legacy["code"].(string)
	suite.Regexp(`^[A-Z]+-[0-9]{4}$`, code)

	// The buyer claims the code
	status, body = suite.postJSON("/api/v1/legacy/check", gin.H{"code": code}, nil)
	suite.Require().Equal(http.StatusOK, status)
	suite.Equal(false, body["claimed"])

	status, body = suite.postJSON("/api/v1/legacy/claim", gin.H{
		"code":    code,
		"name":    "Jane",
		"city":    "Paris, France",
		"message": "Pour toujours",
	}, nil)
	suite.Require().Equal(http.StatusOK, status)
	suite.Equal(true, body["claimed"])

	// The map shows the owner but never the code
	status, body = suite.call(http.MethodGet, "/api/v1/legacy", nil, nil)
	suite.Require().Equal(http.StatusOK, status)
	entries := body["data"].([]interface{})
	suite.Require().Len(entries, 1)
	entry := entries[0].(map[string]interface{})
	suite.Equal("Jane", entry["name"])
	suite.Equal("retro-mountain-01", entry["slug"])
	suite.NotContains(entry, "code")
}

func (suite *StorefrontAcceptanceTestSuite) TestAdminEndpointsRequireToken() {
	for _, path := range []string{"/api/v1/admin/orders", "/api/v1/admin/legacy", "/api/v1/admin/orders/cs_test_1"} {
		status, body := suite.call(http.MethodGet, path, nil, nil)
		suite.Equal(http.StatusUnauthorized, status, path)
		suite.Equal(false, body["success"], path)
	}

	status, _ := suite.call(http.MethodGet, "/api/v1/admin/orders", nil, map[string]string{"Authorization": "Bearer " + testutil.AdminSecret})
	suite.Equal(http.StatusUnauthorized, status)
}

func (suite *StorefrontAcceptanceTestSuite) TestWrongAdminSecret() {
	status, body := suite.postJSON("/api/v1/legacy", gin.H{"code": "guess", "adminCheck": true}, nil)
	suite.Equal(http.StatusUnauthorized, status)
	suite.Equal("UNAUTHORIZED", body["code"])
	suite.IsType("", body["error"])
}

func TestStorefrontAcceptanceTestSuite(t *testing.T) {
	suite.Run(t, new(StorefrontAcceptanceTestSuite))
}
