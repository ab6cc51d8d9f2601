package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/kendall-kelly/legacy-storefront-api/models"
	"github.com/kendall-kelly/legacy-storefront-api/utils"
	"gorm.io/gorm"
)

// MaxCodeAttempts bounds the search for an unused legacy code
const MaxCodeAttempts = 5

// CodeGenerator produces candidate legacy codes
type CodeGenerator func() (string, error)

// LegacyIssuer mints one legacy code per checkout session
type LegacyIssuer struct {
	db       *gorm.DB
	generate CodeGenerator
}

// NewLegacyIssuer creates an issuer backed by utils.GenerateLegacyCode
func NewLegacyIssuer(db *gorm.DB) *LegacyIssuer {
	return &LegacyIssuer{db: db, generate: utils.GenerateLegacyCode}
}

// WithGenerator replaces the code generator (used by tests to force collisions)
func (i *LegacyIssuer) WithGenerator(gen CodeGenerator) *LegacyIssuer {
	i.generate = gen
	return i
}

// Issue returns the session's legacy record, creating it with a fresh unused
// code if none exists yet. created is false on redelivery. A session whose
// code was deleted by an admin gets ErrCodeRevoked instead of a new code.
func (i *LegacyIssuer) Issue(ctx context.Context, sessionID, slug string) (record *models.LegacyRecord, created bool, err error) {
	if existing, err := i.findBySession(ctx, sessionID); err != nil {
		return nil, false, err
	} else if existing != nil {
		return existing, false, nil
	}

	issued, err := i.wasIssued(ctx, sessionID)
	if err != nil {
		return nil, false, err
	}
	if issued {
		return nil, false, ErrCodeRevoked
	}

	var slugPtr *string
	if s := strings.TrimSpace(slug); s != "" && s != UnknownSlug {
		slugPtr = &s
	}

	for attempt := 1; attempt <= MaxCodeAttempts; attempt++ {
		code, err := i.generate()
		if err != nil {
			return nil, false, fmt.Errorf("failed to generate legacy code: %w", err)
		}

		taken, err := i.codeExists(ctx, code)
		if err != nil {
			return nil, false, err
		}
		if taken {
			log.Printf("[Legacy] Code collision on attempt %d for session %s", attempt, sessionID)
			continue
		}

		rec := &models.LegacyRecord{
			SessionID: sessionID,
			Code:      code,
			Slug:      slugPtr,
			Claimed:   false,
		}
		err = i.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&models.LegacyIssuance{SessionID: sessionID, IssuedAt: time.Now()}).Error; err != nil {
				return err
			}
			return tx.Create(rec).Error
		})
		if err != nil {
			if !utils.IsUniqueViolation(err) {
				return nil, false, fmt.Errorf("failed to insert legacy record: %w", err)
			}
			// Either a concurrent delivery issued for this session, or the
			// code was taken between the check and the insert.
			if existing, findErr := i.findBySession(ctx, sessionID); findErr != nil {
				return nil, false, findErr
			} else if existing != nil {
				return existing, false, nil
			}
			if issued, checkErr := i.wasIssued(ctx, sessionID); checkErr != nil {
				return nil, false, checkErr
			} else if issued {
				return nil, false, ErrCodeRevoked
			}
			continue
		}

		log.Printf("[Legacy] Issued code for session %s", sessionID)
		return rec, true, nil
	}

	return nil, false, ErrCodeSpaceExhausted
}

// FindByCode looks up a record by its normalized code
func (i *LegacyIssuer) FindByCode(ctx context.Context, code string) (*models.LegacyRecord, error) {
	var rec models.LegacyRecord
	err := i.db.WithContext(ctx).Where("code = ?", utils.NormalizeLegacyCode(code)).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCodeNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// FindBySession returns the legacy record for a session or ErrCodeNotFound
func (i *LegacyIssuer) FindBySession(ctx context.Context, sessionID string) (*models.LegacyRecord, error) {
	rec, err := i.findBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrCodeNotFound
	}
	return rec, nil
}

func (i *LegacyIssuer) findBySession(ctx context.Context, sessionID string) (*models.LegacyRecord, error) {
	var rec models.LegacyRecord
	err := i.db.WithContext(ctx).Where("session_id = ?", sessionID).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load legacy record for %s: %w", sessionID, err)
	}
	return &rec, nil
}

func (i *LegacyIssuer) wasIssued(ctx context.Context, sessionID string) (bool, error) {
	var count int64
	if err := i.db.WithContext(ctx).Model(&models.LegacyIssuance{}).Where("session_id = ?", sessionID).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check issuance for %s: %w", sessionID, err)
	}
	return count > 0, nil
}

func (i *LegacyIssuer) codeExists(ctx context.Context, code string) (bool, error) {
	var count int64
	if err := i.db.WithContext(ctx).Model(&models.LegacyRecord{}).Where("code = ?", code).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check legacy code: %w", err)
	}
	return count > 0, nil
}
