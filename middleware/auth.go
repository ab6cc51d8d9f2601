package middleware

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/auth0/go-jwt-middleware/v2"
	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/legacy-storefront-api/config"
)

// AdminSecretHeader carries the raw admin secret on routes that accept it
const AdminSecretHeader = "X-Admin-Secret"

const adminRole = "admin"

// CustomClaims contains the custom data carried by admin session tokens.
type CustomClaims struct {
	Role  string `json:"role"`
	Scope string `json:"scope"`
}

// Validate rejects tokens that were not minted for the admin role.
func (c CustomClaims) Validate(ctx context.Context) error {
	if c.Role != adminRole {
		return errors.New("token does not carry the admin role")
	}
	return nil
}

// HasScope checks whether our claims have a specific scope.
func (c CustomClaims) HasScope(expectedScope string) bool {
	result := strings.Split(c.Scope, " ")
	for i := range result {
		if result[i] == expectedScope {
			return true
		}
	}

	return false
}

// SecretVerifier checks a candidate admin secret
type SecretVerifier interface {
	VerifySecret(candidate string) bool
}

// EnsureAdmin requires a valid admin session token. When allowSecretHeader is
// set, the raw admin secret in X-Admin-Secret is accepted instead.
func EnsureAdmin(cfg *config.Config, secrets SecretVerifier, allowSecretHeader bool) gin.HandlerFunc {
	tokenSecret := []byte(cfg.AdminTokenSecret)
	keyFunc := func(ctx context.Context) (interface{}, error) {
		return tokenSecret, nil
	}

	jwtValidator, err := validator.New(
		keyFunc,
		validator.HS256,
		cfg.AdminTokenIssuer,
		[]string{cfg.AdminTokenAudience},
		validator.WithCustomClaims(
			func() validator.CustomClaims {
				return &CustomClaims{}
			},
		),
		validator.WithAllowedClockSkew(30*time.Second),
	)
	if err != nil {
		log.Fatalf("Failed to set up the admin token validator: %v", err)
	}

	errorHandler := func(w http.ResponseWriter, r *http.Request, err error) {
		log.Printf("Rejected admin request to %s: %v", r.URL.Path, err)
		writeUnauthorized(w)
	}

	middleware := jwtmiddleware.New(
		jwtValidator.ValidateToken,
		jwtmiddleware.WithErrorHandler(errorHandler),
	)

	return func(c *gin.Context) {
		if allowSecretHeader {
			if secret := c.GetHeader(AdminSecretHeader); secret != "" {
				if !secrets.VerifySecret(secret) {
					log.Printf("Rejected admin secret on %s", c.Request.URL.Path)
					writeUnauthorized(c.Writer)
					c.Abort()
					return
				}
				c.Set("admin_via", "secret")
				c.Next()
				return
			}
		}

		passed := false
		var handler http.HandlerFunc = func(w http.ResponseWriter, r *http.Request) {
			passed = true
			token := r.Context().Value(jwtmiddleware.ContextKey{}).(*validator.ValidatedClaims)
			c.Set("validated_claims", token)
			c.Set("admin_via", "token")

			c.Next()
		}

		middleware.CheckJWT(handler).ServeHTTP(c.Writer, c.Request)
		if !passed {
			c.Abort()
		}
	}
}

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	if _, writeErr := w.Write([]byte(`{"success":false,"error":"Accès administrateur requis","code":"UNAUTHORIZED"}`)); writeErr != nil {
		log.Printf("Failed to write error response: %v", writeErr)
	}
}

// GetClaims extracts the validated JWT claims from the Gin context
func GetClaims(c *gin.Context) (*validator.ValidatedClaims, error) {
	claims, exists := c.Get("validated_claims")
	if !exists {
		return nil, &AuthError{Code: "MISSING_CLAIMS", Message: "Claims not found in context"}
	}

	validatedClaims, ok := claims.(*validator.ValidatedClaims)
	if !ok {
		return nil, &AuthError{Code: "INVALID_CLAIMS", Message: "Claims are not in the expected format"}
	}

	return validatedClaims, nil
}

// RequireScope is a middleware that checks if the token has a specific scope
func RequireScope(scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := GetClaims(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "Impossible de lire le jeton",
				"code":    "MISSING_CLAIMS",
			})
			c.Abort()
			return
		}

		customClaims, ok := claims.CustomClaims.(*CustomClaims)
		if !ok || !customClaims.HasScope(scope) {
			c.JSON(http.StatusForbidden, gin.H{
				"success": false,
				"error":   "Permissions insuffisantes",
				"code":    "INSUFFICIENT_SCOPE",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// AuthError represents an authentication error
type AuthError struct {
	Code    string
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}
