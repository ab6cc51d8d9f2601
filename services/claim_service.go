package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/kendall-kelly/legacy-storefront-api/models"
	"github.com/kendall-kelly/legacy-storefront-api/utils"
	"gorm.io/gorm"
)

// ClaimRequest carries the owner details submitted with a code
type ClaimRequest struct {
	Code    string
	Name    string
	City    string
	Message string
}

// CheckResult is the outcome of a code lookup
type CheckResult struct {
	Claimed   bool
	OwnerName string
	OwnerCity string
	Slug      *string
}

// ClaimResult is the outcome of a claim attempt. When AlreadyClaimed is true
// Record holds the existing owner's data and nothing was written.
type ClaimResult struct {
	AlreadyClaimed bool
	Record         *models.LegacyRecord
}

// ClaimService runs the two-phase claim workflow and the admin map queries
type ClaimService struct {
	db       *gorm.DB
	issuer   *LegacyIssuer
	geocoder Geocoder
	events   EventPublisher
}

// NewClaimService creates a claim service
func NewClaimService(db *gorm.DB, issuer *LegacyIssuer, geocoder Geocoder, events EventPublisher) *ClaimService {
	if events == nil {
		events = NopEventPublisher{}
	}
	return &ClaimService{db: db, issuer: issuer, geocoder: geocoder, events: events}
}

// Check reports whether a code exists and who owns it
func (s *ClaimService) Check(ctx context.Context, code string) (*CheckResult, error) {
	code = utils.NormalizeLegacyCode(code)
	if code == "" {
		return nil, errMissingCode()
	}

	rec, err := s.issuer.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	result := &CheckResult{Claimed: rec.Claimed, Slug: rec.Slug}
	if rec.Claimed {
		result.OwnerName = deref(rec.OwnerName)
		result.OwnerCity = deref(rec.OwnerCity)
	}
	return result, nil
}

// Claim geocodes the city and attaches the owner to the code. At most one
// concurrent claim for a code can succeed; the others observe AlreadyClaimed.
func (s *ClaimService) Claim(ctx context.Context, req ClaimRequest) (*ClaimResult, error) {
	code := utils.NormalizeLegacyCode(req.Code)
	if code == "" {
		return nil, errMissingCode()
	}
	name := strings.TrimSpace(req.Name)
	city := strings.TrimSpace(req.City)
	message := strings.TrimSpace(req.Message)
	if name == "" || city == "" || message == "" {
		return nil, &utils.ValidationError{
			Code:    "MISSING_FIELDS",
			Message: "Le nom, la ville et le message sont obligatoires",
			Err:     ErrMissingClaimFields,
		}
	}

	rec, err := s.issuer.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if rec.Claimed {
		return &ClaimResult{AlreadyClaimed: true, Record: rec}, nil
	}

	point, err := s.geocoder.Geocode(ctx, city)
	if err != nil {
		log.Printf("[Claim] Geocoding failed for record %d: %v", rec.ID, err)
		return nil, err
	}

	now := time.Now()
	result := s.db.WithContext(ctx).
		Model(&models.LegacyRecord{}).
		Where("id = ? AND claimed = ?", rec.ID, false).
		Updates(map[string]interface{}{
			"claimed":       true,
			"owner_name":    name,
			"owner_city":    city,
			"owner_message": message,
			"lat":           point.Lat,
			"lng":           point.Lng,
			"claimed_at":    now,
		})
	if result.Error != nil {
		return nil, fmt.Errorf("failed to claim record %d: %w", rec.ID, result.Error)
	}

	updated, err := s.issuer.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	if result.RowsAffected == 0 {
		log.Printf("[Claim] Record %d was claimed concurrently", rec.ID)
		return &ClaimResult{AlreadyClaimed: true, Record: updated}, nil
	}

	log.Printf("[Claim] Record %d claimed from %s", rec.ID, city)
	if err := s.events.Publish(ctx, EventTypeLegacyClaimed, fmt.Sprint(rec.ID), LegacyClaimedPayload{
		RecordID: rec.ID,
		Slug:     rec.Slug,
		City:     city,
		Lat:      point.Lat,
		Lng:      point.Lng,
	}); err != nil {
		log.Printf("[Events] Failed to publish %s for record %d: %v", EventTypeLegacyClaimed, rec.ID, err)
	}

	return &ClaimResult{Record: updated}, nil
}

// PublicMap lists claimed records for the public map, newest first
func (s *ClaimService) PublicMap(ctx context.Context) ([]models.PublicLegacyEntry, error) {
	var records []models.LegacyRecord
	err := s.db.WithContext(ctx).
		Where("claimed = ?", true).
		Order("created_at DESC").
		Order("id DESC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}

	entries := make([]models.PublicLegacyEntry, 0, len(records))
	for _, r := range records {
		if entry, ok := r.Public(); ok {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

// ListAll returns every record, codes included, for the admin surface
func (s *ClaimService) ListAll(ctx context.Context) ([]models.LegacyRecord, error) {
	var records []models.LegacyRecord
	if err := s.db.WithContext(ctx).Order("created_at DESC").Order("id DESC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// Delete hard-deletes a record, freeing its code. A missing id is not an error.
func (s *ClaimService) Delete(ctx context.Context, id uint) (deleted bool, err error) {
	result := s.db.WithContext(ctx).Delete(&models.LegacyRecord{}, id)
	if result.Error != nil {
		return false, fmt.Errorf("failed to delete record %d: %w", id, result.Error)
	}
	if result.RowsAffected > 0 {
		log.Printf("[Legacy] Record %d deleted by admin", id)
	}
	return result.RowsAffected > 0, nil
}

func errMissingCode() error {
	return &utils.ValidationError{Code: "MISSING_CODE", Message: "Veuillez saisir votre code", Err: ErrMissingCode}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
