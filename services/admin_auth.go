package services

import (
	"crypto/subtle"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/kendall-kelly/legacy-storefront-api/config"
)

// AdminRole is the role claim carried by admin session tokens
const AdminRole = "admin"

// AdminTokenClaims are the claims of an admin session token
type AdminTokenClaims struct {
	Role  string `json:"role"`
	Scope string `json:"scope,omitempty"`
	jwt.RegisteredClaims
}

// AdminSession is returned after a successful admin verification
type AdminSession struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AdminAuth verifies the shared admin secret and mints short-lived session
// tokens so the secret itself never has to be stored client-side.
type AdminAuth struct {
	secret      []byte
	tokenSecret []byte
	issuer      string
	audience    string
	ttl         time.Duration
	now         func() time.Time
}

// NewAdminAuth creates the admin authenticator from configuration
func NewAdminAuth(cfg *config.Config) *AdminAuth {
	return &AdminAuth{
		secret:      []byte(cfg.AdminSecret),
		tokenSecret: []byte(cfg.AdminTokenSecret),
		issuer:      cfg.AdminTokenIssuer,
		audience:    cfg.AdminTokenAudience,
		ttl:         cfg.AdminTokenTTL,
		now:         time.Now,
	}
}

// VerifySecret compares candidate against the admin secret in constant time.
// An unconfigured secret never matches.
func (a *AdminAuth) VerifySecret(candidate string) bool {
	if len(a.secret) == 0 || candidate == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(candidate), a.secret) == 1
}

// Login exchanges the admin secret for a session token
func (a *AdminAuth) Login(candidate string) (*AdminSession, error) {
	if !a.VerifySecret(candidate) {
		return nil, ErrInvalidAdminSecret
	}
	return a.IssueToken()
}

// IssueToken mints an HS256 admin token valid for the configured TTL
func (a *AdminAuth) IssueToken() (*AdminSession, error) {
	now := a.now()
	expiresAt := now.Add(a.ttl)

	claims := AdminTokenClaims{
		Role:  AdminRole,
		Scope: "legacy:admin orders:read",
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    a.issuer,
			Subject:   AdminRole,
			Audience:  jwt.ClaimStrings{a.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.tokenSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign admin token: %w", err)
	}
	return &AdminSession{Token: signed, ExpiresAt: expiresAt}, nil
}
