package utils

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

var (
	// Allow alphanumeric, underscore, hyphen, dot - common in transit IDs
	validIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)

	// Detect potentially dangerous characters - more focused on injection patterns
	dangerousPattern = regexp.MustCompile(`[<>]|--|\/\*|\*\/|;.*--`)

	htmlTagPattern = regexp.MustCompile(`<[^>]*>`)
)

// ValidateID validates that an ID is safe and within reasonable limits
func ValidateID(id string) error {
	if id == "" {
		return errors.New("id cannot be empty")
	}
	if len(id) > 100 {
		return errors.New("id too long (max 100 characters)")
	}
	if !validIDPattern.MatchString(id) {
		return errors.New("id contains invalid characters")
	}
	return nil
}

// ValidateQuery validates search query strings
func ValidateQuery(query string) error {
	if query == "" {
		return nil
	}
	if len(query) > 200 {
		return errors.New("query too long (max 200 characters)")
	}
	if dangerousPattern.MatchString(query) {
		return errors.New("query contains invalid characters")
	}
	return nil
}

// ValidateLatitude validates latitude values
func ValidateLatitude(lat float64) error {
	if lat < -90.0 || lat > 90.0 {
		return errors.New("latitude must be between -90 and 90")
	}
	return nil
}

// ValidateLongitude validates longitude values
func ValidateLongitude(lon float64) error {
	if lon < -180.0 || lon > 180.0 {
		return errors.New("longitude must be between -180 and 180")
	}
	return nil
}

// SanitizeInput removes HTML tags and surrounding whitespace.
func SanitizeInput(input string) string {
	return strings.TrimSpace(htmlTagPattern.ReplaceAllString(input, ""))
}

// ValidateAndSanitizeQuery validates and sanitizes a search query
func ValidateAndSanitizeQuery(query string) (string, error) {
	if err := ValidateQuery(query); err != nil {
		return "", err
	}
	return SanitizeInput(query), nil
}

// ParseLocationParams reads a latitude/longitude pair such as fromLat/fromLon.
// ok is false when neither parameter is present.
func ParseLocationParams(params url.Values, latKey, lonKey string, fieldErrors map[string][]string) (lat, lon float64, ok bool) {
	if params.Get(latKey) == "" && params.Get(lonKey) == "" {
		return 0, 0, false
	}

	lat = parseFloatParam(params, latKey, fieldErrors)
	lon = parseFloatParam(params, lonKey, fieldErrors)
	if len(fieldErrors[latKey]) == 0 {
		if err := ValidateLatitude(lat); err != nil {
			fieldErrors[latKey] = append(fieldErrors[latKey], err.Error())
		}
	}
	if len(fieldErrors[lonKey]) == 0 {
		if err := ValidateLongitude(lon); err != nil {
			fieldErrors[lonKey] = append(fieldErrors[lonKey], err.Error())
		}
	}
	return lat, lon, true
}

func parseFloatParam(params url.Values, key string, fieldErrors map[string][]string) float64 {
	val := params.Get(key)
	if val == "" {
		fieldErrors[key] = append(fieldErrors[key], fmt.Sprintf("Missing field %q.", key))
		return 0
	}

	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		fieldErrors[key] = append(fieldErrors[key], fmt.Sprintf("Invalid field value for field %q.", key))
	}
	return f
}
