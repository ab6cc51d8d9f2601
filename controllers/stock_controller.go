package controllers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/legacy-storefront-api/services"
)

// StockController exposes sold counts to the storefront
type StockController struct {
	stock *services.StockAdjuster
}

// NewStockController creates a stock controller
func NewStockController(stock *services.StockAdjuster) *StockController {
	return &StockController{stock: stock}
}

// List handles GET /api/v1/stock
func (sc *StockController) List(c *gin.Context) {
	counters, err := sc.stock.List(c.Request.Context())
	if err != nil {
		log.Printf("[Stock] Failed to list counters: %v", err)
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Impossible de charger le stock")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    counters,
	})
}

// Get handles GET /api/v1/stock/:slug?edition=N
func (sc *StockController) Get(c *gin.Context) {
	edition := 0
	if v := c.Query("edition"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			respondError(c, http.StatusBadRequest, "INVALID_EDITION", "Taille d'édition invalide")
			return
		}
		edition = n
	}

	availability, err := sc.stock.Availability(c.Request.Context(), c.Param("slug"), edition)
	if err != nil {
		log.Printf("[Stock] Failed to load %s: %v", c.Param("slug"), err)
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Impossible de charger le stock")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    availability,
	})
}
