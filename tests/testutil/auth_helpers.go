package testutil

import (
	"testing"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/legacy-storefront-api/config"
	"github.com/kendall-kelly/legacy-storefront-api/middleware"
	"github.com/kendall-kelly/legacy-storefront-api/services"
	"github.com/stretchr/testify/require"
)

// AdminToken mints a real admin session token for cfg
func AdminToken(t *testing.T, cfg *config.Config) string {
	t.Helper()

	session, err := services.NewAdminAuth(cfg).IssueToken()
	require.NoError(t, err)
	return session.Token
}

// MockValidatedClaims creates admin claims with the given scopes
func MockValidatedClaims(scope string) *validator.ValidatedClaims {
	return &validator.ValidatedClaims{
		RegisteredClaims: validator.RegisteredClaims{
			Issuer:  "legacy-storefront-api",
			Subject: services.AdminRole,
		},
		CustomClaims: &middleware.CustomClaims{
			Role:  services.AdminRole,
			Scope: scope,
		},
	}
}

// SetMockAdminContext marks c as authenticated by an admin token
func SetMockAdminContext(c *gin.Context, scope string) {
	c.Set("validated_claims", MockValidatedClaims(scope))
	c.Set("admin_via", "token")
}
