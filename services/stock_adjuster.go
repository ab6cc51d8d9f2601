package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kendall-kelly/legacy-storefront-api/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Availability is the storefront view of an artwork's edition
type Availability struct {
	Slug        string `json:"slug"`
	SoldCount   int    `json:"sold_count"`
	EditionSize int    `json:"edition_size,omitempty"`
	Remaining   *int   `json:"remaining,omitempty"` // nil when the edition size is unknown
}

// StockAdjuster maintains per-artwork sold counters
type StockAdjuster struct {
	db *gorm.DB
}

// NewStockAdjuster creates a new stock adjuster
func NewStockAdjuster(db *gorm.DB) *StockAdjuster {
	return &StockAdjuster{db: db}
}

// Increment adds one sale to the slug's counter in a single upsert, so
// concurrent completions for the same artwork never lose an update.
func (s *StockAdjuster) Increment(ctx context.Context, slug string) error {
	slug = strings.TrimSpace(slug)
	if slug == "" || slug == UnknownSlug {
		return ErrUnknownSlug
	}

	counter := models.StockCounter{Slug: slug, SoldCount: 1, UpdatedAt: time.Now()}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "slug"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"sold_count": gorm.Expr("stock_counters.sold_count + ?", 1),
			"updated_at": counter.UpdatedAt,
		}),
	}).Create(&counter).Error
	if err != nil {
		return fmt.Errorf("failed to increment stock for %s: %w", slug, err)
	}
	return nil
}

// SoldCount returns the number of units sold; 0 when no row exists
func (s *StockAdjuster) SoldCount(ctx context.Context, slug string) (int, error) {
	var counter models.StockCounter
	err := s.db.WithContext(ctx).Where("slug = ?", slug).First(&counter).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return counter.SoldCount, nil
}

// Availability computes remaining units against an externally supplied
// edition size. editionSize <= 0 leaves Remaining unset.
func (s *StockAdjuster) Availability(ctx context.Context, slug string, editionSize int) (*Availability, error) {
	sold, err := s.SoldCount(ctx, slug)
	if err != nil {
		return nil, err
	}

	a := &Availability{Slug: slug, SoldCount: sold}
	if editionSize > 0 {
		remaining := editionSize - sold
		if remaining < 0 {
			remaining = 0
		}
		a.EditionSize = editionSize
		a.Remaining = &remaining
	}
	return a, nil
}

// List returns every counter ordered by slug
func (s *StockAdjuster) List(ctx context.Context) ([]models.StockCounter, error) {
	var counters []models.StockCounter
	if err := s.db.WithContext(ctx).Order("slug ASC").Find(&counters).Error; err != nil {
		return nil, err
	}
	return counters, nil
}
