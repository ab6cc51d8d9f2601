package controllers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/legacy-storefront-api/services"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// AdminController serves the admin-only order and legacy listings
type AdminController struct {
	orders  *services.OrderRecorder
	issuer  *services.LegacyIssuer
	claims  *services.ClaimService
	archive services.EventArchive
}

// NewAdminController creates an admin controller
func NewAdminController(orders *services.OrderRecorder, issuer *services.LegacyIssuer, claims *services.ClaimService, archive services.EventArchive) *AdminController {
	return &AdminController{orders: orders, issuer: issuer, claims: claims, archive: archive}
}

// ListOrders handles GET /api/v1/admin/orders
func (ac *AdminController) ListOrders(c *gin.Context) {
	limit, offset, ok := parsePagination(c)
	if !ok {
		return
	}

	orders, total, err := ac.orders.List(c.Request.Context(), limit, offset)
	if err != nil {
		log.Printf("Failed to list orders: %v", err)
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Impossible de charger les commandes")
		return
	}

	data := make([]OrderResponse, 0, len(orders))
	for _, o := range orders {
		data = append(data, newOrderResponse(o))
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    data,
		"total":   total,
		"limit":   limit,
		"offset":  offset,
	})
}

// GetOrder handles GET /api/v1/admin/orders/:session_id
func (ac *AdminController) GetOrder(c *gin.Context) {
	ctx := c.Request.Context()
	sessionID := c.Param("session_id")

	order, err := ac.orders.Get(ctx, sessionID)
	if errors.Is(err, services.ErrOrderNotFound) {
		respondError(c, http.StatusNotFound, "ORDER_NOT_FOUND", "Commande introuvable")
		return
	}
	if err != nil {
		log.Printf("Failed to load order %s: %v", sessionID, err)
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Impossible de charger la commande")
		return
	}

	resp := newOrderResponse(*order)
	if order.ArchiveKey != nil {
		url, err := ac.archive.PresignedURL(ctx, *order.ArchiveKey)
		if err != nil {
			log.Printf("[Archive] Failed to presign %s: %v", *order.ArchiveKey, err)
		} else {
			resp.ArchiveURL = url
		}
	}

	body := gin.H{
		"success": true,
		"data":    resp,
	}
	if rec, err := ac.issuer.FindBySession(ctx, sessionID); err == nil {
		body["legacy"] = rec
	} else if !errors.Is(err, services.ErrCodeNotFound) {
		log.Printf("[Legacy] Failed to load record for %s: %v", sessionID, err)
	}

	c.JSON(http.StatusOK, body)
}

// ListLegacy handles GET /api/v1/admin/legacy
func (ac *AdminController) ListLegacy(c *gin.Context) {
	records, err := ac.claims.ListAll(c.Request.Context())
	if err != nil {
		log.Printf("[Legacy] Failed to list records: %v", err)
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Impossible de charger les codes")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    records,
	})
}

func parsePagination(c *gin.Context) (limit, offset int, ok bool) {
	limit, offset = defaultPageSize, 0

	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			respondError(c, http.StatusBadRequest, "INVALID_PAGINATION", "Paramètre limit invalide")
			return 0, 0, false
		}
		if n > maxPageSize {
			n = maxPageSize
		}
		limit = n
	}
	if v := c.Query("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			respondError(c, http.StatusBadRequest, "INVALID_PAGINATION", "Paramètre offset invalide")
			return 0, 0, false
		}
		offset = n
	}
	return limit, offset, true
}
