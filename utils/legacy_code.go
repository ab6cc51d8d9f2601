package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"
	"strings"
)

const (
	// LegacyCodeMinNumber and LegacyCodeMaxNumber bound the numeric suffix
	LegacyCodeMinNumber = 1000
	LegacyCodeMaxNumber = 9999
)

// LegacyCodeWords is the vocabulary legacy codes are drawn from: film stocks
// and camera makers, short enough to type from a printed certificate.
var LegacyCodeWords = []string{
	"LEICA", "KODAK", "ILFORD", "PORTRA", "EKTAR", "VELVIA", "PROVIA",
	"TRIX", "HASSEL", "ROLLEI", "PENTAX", "NIKON", "CANON", "AGFA",
	"FOMA", "CINE", "LOMO", "ZEISS", "MAMIYA", "FUJI",
}

var legacyCodePattern = regexp.MustCompile(`^[A-Z]+-[0-9]{4}$`)

// GenerateLegacyCode returns a code of the form WORD-NNNN using crypto/rand.
// Uniqueness is not guaranteed; callers check against storage.
func GenerateLegacyCode() (string, error) {
	wordIdx, err := rand.Int(rand.Reader, big.NewInt(int64(len(LegacyCodeWords))))
	if err != nil {
		return "", fmt.Errorf("failed to pick code word: %w", err)
	}
	n, err := rand.Int(rand.Reader, big.NewInt(LegacyCodeMaxNumber-LegacyCodeMinNumber+1))
	if err != nil {
		return "", fmt.Errorf("failed to pick code number: %w", err)
	}
	return fmt.Sprintf("%s-%d", LegacyCodeWords[wordIdx.Int64()], n.Int64()+LegacyCodeMinNumber), nil
}

// NormalizeLegacyCode trims and upper-cases user input so "  art-1234 "
// matches the stored "ART-1234".
func NormalizeLegacyCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// IsLegacyCode reports whether code has the WORD-NNNN shape
func IsLegacyCode(code string) bool {
	return legacyCodePattern.MatchString(code)
}
