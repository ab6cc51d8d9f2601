package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/kendall-kelly/legacy-storefront-api/config"
)

// GeoPoint is a resolved coordinate pair
type GeoPoint struct {
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	DisplayName string  `json:"display_name,omitempty"`
}

// Geocoder resolves free-text place names to coordinates
type Geocoder interface {
	Geocode(ctx context.Context, query string) (*GeoPoint, error)
}

// NominatimGeocoder queries a Nominatim-compatible search endpoint
type NominatimGeocoder struct {
	baseURL   string
	userAgent string
	client    *http.Client
}

type nominatimResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// NewNominatimGeocoder creates a geocoder from the configured endpoint
func NewNominatimGeocoder(cfg *config.Config) *NominatimGeocoder {
	return &NominatimGeocoder{
		baseURL:   strings.TrimRight(cfg.GeocoderURL, "/"),
		userAgent: cfg.GeocoderUserAgent,
		client:    &http.Client{Timeout: cfg.GeocoderTimeout},
	}
}

// Geocode returns the top match for query. No match yields ErrCityNotFound;
// any transport or decoding problem yields ErrGeocoderUnavailable.
func (g *NominatimGeocoder) Geocode(ctx context.Context, query string) (*GeoPoint, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrCityNotFound
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("limit", "1")
	searchURL := fmt.Sprintf("%s/search?%s", g.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGeocoderUnavailable, err)
	}
	req.Header.Set("User-Agent", g.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		log.Printf("[Geocoder] Request failed for %q: %v", query, err)
		return nil, fmt.Errorf("%w: %v", ErrGeocoderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("[Geocoder] Unexpected status %d for %q", resp.StatusCode, query)
		return nil, fmt.Errorf("%w: status %d", ErrGeocoderUnavailable, resp.StatusCode)
	}

	var results []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGeocoderUnavailable, err)
	}
	if len(results) == 0 {
		return nil, ErrCityNotFound
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: bad latitude %q", ErrGeocoderUnavailable, results[0].Lat)
	}
	lng, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: bad longitude %q", ErrGeocoderUnavailable, results[0].Lon)
	}

	return &GeoPoint{Lat: lat, Lng: lng, DisplayName: results[0].DisplayName}, nil
}
