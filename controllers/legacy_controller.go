package controllers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/legacy-storefront-api/services"
	"github.com/kendall-kelly/legacy-storefront-api/utils"
)

// Submission modes accepted by POST /api/v1/legacy
const (
	ModeCheck = "check"
	ModeClaim = "claim"
	ModeAdmin = "admin"
)

// LegacyRequest is the body of every legacy POST
type LegacyRequest struct {
	Mode       string `json:"mode"`
	CheckOnly  bool   `json:"checkOnly"`
	AdminCheck bool   `json:"adminCheck"`
	Code       string `json:"code"`
	Name       string `json:"name"`
	City       string `json:"city"`
	Message    string `json:"message"`
}

// mode resolves the explicit mode or the legacy boolean flags
func (r LegacyRequest) mode() string {
	switch {
	case r.Mode != "":
		return strings.ToLower(strings.TrimSpace(r.Mode))
	case r.AdminCheck:
		return ModeAdmin
	case r.CheckOnly:
		return ModeCheck
	default:
		return ModeClaim
	}
}

// LegacyController exposes the claim workflow and the public map
type LegacyController struct {
	claims *services.ClaimService
	admin  *services.AdminAuth
}

// NewLegacyController creates a legacy controller
func NewLegacyController(claims *services.ClaimService, admin *services.AdminAuth) *LegacyController {
	return &LegacyController{claims: claims, admin: admin}
}

// ListPublic handles GET /api/v1/legacy
func (lc *LegacyController) ListPublic(c *gin.Context) {
	entries, err := lc.claims.PublicMap(c.Request.Context())
	if err != nil {
		log.Printf("[Legacy] Failed to list public map: %v", err)
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Impossible de charger la carte")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    entries,
	})
}

// Submit handles POST /api/v1/legacy, dispatching on the request mode
func (lc *LegacyController) Submit(c *gin.Context) {
	req, ok := bindLegacyRequest(c)
	if !ok {
		return
	}

	switch req.mode() {
	case ModeCheck:
		lc.check(c, req)
	case ModeClaim:
		lc.claim(c, req)
	case ModeAdmin:
		lc.adminVerify(c, req)
	default:
		respondError(c, http.StatusBadRequest, "INVALID_MODE", "Mode inconnu")
	}
}

// Check handles POST /api/v1/legacy/check
func (lc *LegacyController) Check(c *gin.Context) {
	if req, ok := bindLegacyRequest(c); ok {
		lc.check(c, req)
	}
}

// Claim handles POST /api/v1/legacy/claim
func (lc *LegacyController) Claim(c *gin.Context) {
	if req, ok := bindLegacyRequest(c); ok {
		lc.claim(c, req)
	}
}

// AdminVerify handles POST /api/v1/legacy/admin/verify
func (lc *LegacyController) AdminVerify(c *gin.Context) {
	if req, ok := bindLegacyRequest(c); ok {
		lc.adminVerify(c, req)
	}
}

// Delete handles DELETE /api/v1/legacy/:id (admin only)
func (lc *LegacyController) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, http.StatusBadRequest, "INVALID_ID", "Identifiant invalide")
		return
	}

	deleted, err := lc.claims.Delete(c.Request.Context(), uint(id))
	if err != nil {
		log.Printf("[Legacy] Delete failed for record %d: %v", id, err)
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Suppression impossible")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"deleted": deleted,
	})
}

func bindLegacyRequest(c *gin.Context) (LegacyRequest, bool) {
	var req LegacyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_BODY", "Requête invalide")
		return req, false
	}
	return req, true
}

func (lc *LegacyController) check(c *gin.Context, req LegacyRequest) {
	result, err := lc.claims.Check(c.Request.Context(), req.Code)
	if err != nil {
		respondClaimError(c, err)
		return
	}

	if result.Claimed {
		c.JSON(http.StatusOK, gin.H{
			"success":        true,
			"valid":          true,
			"claimed":        true,
			"alreadyClaimed": true,
			"owner_name":     result.OwnerName,
			"owner_city":     result.OwnerCity,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"valid":   true,
		"claimed": false,
		"slug":    result.Slug,
	})
}

func (lc *LegacyController) claim(c *gin.Context, req LegacyRequest) {
	result, err := lc.claims.Claim(c.Request.Context(), services.ClaimRequest{
		Code:    req.Code,
		Name:    req.Name,
		City:    req.City,
		Message: req.Message,
	})
	if err != nil {
		respondClaimError(c, err)
		return
	}

	rec := result.Record
	if result.AlreadyClaimed {
		c.JSON(http.StatusOK, gin.H{
			"success":        true,
			"alreadyClaimed": true,
			"owner_name":     rec.OwnerName,
			"owner_city":     rec.OwnerCity,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"claimed":    true,
		"id":         rec.ID,
		"lat":        rec.Lat,
		"lng":        rec.Lng,
		"owner_name": rec.OwnerName,
		"owner_city": rec.OwnerCity,
	})
}

func (lc *LegacyController) adminVerify(c *gin.Context, req LegacyRequest) {
	if strings.TrimSpace(req.Code) == "" {
		respondError(c, http.StatusBadRequest, "MISSING_CODE", "Veuillez saisir votre code")
		return
	}

	session, err := lc.admin.Login(req.Code)
	if err != nil {
		if errors.Is(err, services.ErrInvalidAdminSecret) {
			log.Printf("[Legacy] Failed admin verification from %s", c.ClientIP())
			respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Code administrateur invalide")
			return
		}
		log.Printf("[Legacy] Admin token issuance failed: %v", err)
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Erreur interne, réessayez plus tard")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"role":       services.AdminRole,
		"token":      session.Token,
		"expires_at": session.ExpiresAt,
	})
}

func respondClaimError(c *gin.Context, err error) {
	var invalid *utils.ValidationError
	switch {
	case errors.As(err, &invalid):
		respondError(c, http.StatusBadRequest, invalid.Code, invalid.Message)
	case errors.Is(err, services.ErrCodeNotFound):
		respondError(c, http.StatusNotFound, "INVALID_CODE", "Code invalide")
	case errors.Is(err, services.ErrCityNotFound):
		respondError(c, http.StatusBadRequest, "CITY_NOT_FOUND", "Ville introuvable, merci de préciser (ex : Paris, France)")
	case errors.Is(err, services.ErrGeocoderUnavailable):
		respondError(c, http.StatusServiceUnavailable, "GEOCODER_UNAVAILABLE", "Service de localisation indisponible, réessayez plus tard")
	default:
		log.Printf("[Claim] Unexpected error: %v", err)
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Erreur interne, réessayez plus tard")
	}
}
