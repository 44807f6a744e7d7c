package validation

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// MaxCityLength bounds the city query in runes. Real place names stay far below it.
const MaxCityLength = 100

var (
	// ErrCityEmpty is returned when city is empty or whitespace-only after trim.
	ErrCityEmpty = errors.New("city is required")
	// ErrCityTooLong is returned when city exceeds MaxCityLength runes.
	ErrCityTooLong = errors.New("city too long")
	// ErrCityInvalidChars is returned when city contains control characters.
	ErrCityInvalidChars = errors.New("city contains invalid characters")

	// ErrCoordinatesMissing is returned when lat or lon is absent.
	ErrCoordinatesMissing = errors.New("latitude and longitude are required")
	// ErrCoordinatesInvalid is returned when lat or lon is not a finite number.
	ErrCoordinatesInvalid = errors.New("latitude and longitude must be valid numbers")
	// ErrCoordinatesOutOfRange is returned when lat is outside [-90, 90] or lon outside [-180, 180].
	ErrCoordinatesOutOfRange = errors.New("coordinates out of range")
)

// ValidateCity trims the input and enforces non-emptiness, the length bound and
// the absence of control characters. Apostrophes, dots, hyphens and any Unicode
// letters are allowed so names like "Saint-Étienne" or "St. John's" pass through.
func ValidateCity(input string) (string, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return "", ErrCityEmpty
	}
	r := []rune(s)
	if len(r) > MaxCityLength {
		return "", ErrCityTooLong
	}
	for _, c := range r {
		if unicode.IsControl(c) {
			return "", ErrCityInvalidChars
		}
	}
	return s, nil
}

// ParseCoordinates parses the raw lat/lon query values. Both must be present;
// presence is checked before syntax so a single missing value always reports
// ErrCoordinatesMissing.
func ParseCoordinates(latRaw, lonRaw string) (lat, lon float64, err error) {
	latRaw, lonRaw = strings.TrimSpace(latRaw), strings.TrimSpace(lonRaw)
	if latRaw == "" || lonRaw == "" {
		return 0, 0, ErrCoordinatesMissing
	}
	lat, err = parseFinite(latRaw)
	if err != nil {
		return 0, 0, err
	}
	lon, err = parseFinite(lonRaw)
	if err != nil {
		return 0, 0, err
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return 0, 0, ErrCoordinatesOutOfRange
	}
	return lat, lon, nil
}

func parseFinite(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, ErrCoordinatesInvalid
	}
	return v, nil
}
