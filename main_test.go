package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/legacy-storefront-api/services"
	"github.com/kendall-kelly/legacy-storefront-api/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDependenciesDefaults(t *testing.T) {
	cfg := testutil.TestConfig()
	db := testutil.NewTestDB(t)

	deps, cleanup, err := buildDependencies(context.Background(), cfg, db)
	require.NoError(t, err)
	defer cleanup()

	assert.IsType(t, services.NopEventArchive{}, deps.Archive, "No bucket means no archive")
	assert.IsType(t, services.NopEventPublisher{}, deps.Events, "No brokers means no publisher")
}

func TestBuildDependenciesWithRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testutil.TestConfig()
	cfg.RedisURL = "redis://" + mr.Addr()

	deps, cleanup, err := buildDependencies(context.Background(), cfg, testutil.NewTestDB(t))
	require.NoError(t, err)
	cleanup()
	assert.NotNil(t, deps.Claims)

	cfg.RedisURL = "::bad::"
	_, cleanup, err = buildDependencies(context.Background(), cfg, testutil.NewTestDB(t))
	assert.Error(t, err)
	cleanup()
}

func TestHealthEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)
	deps, cleanup, err := buildDependencies(context.Background(), testutil.TestConfig(), testutil.NewTestDB(t))
	require.NoError(t, err)
	defer cleanup()

	router := setupRouterForTest(deps)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Legacy Storefront API is running")
}
