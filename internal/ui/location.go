package ui

import (
	"context"
	"errors"
	"fmt"

	"github.com/kjstillabower/meteo-gateway/internal/client"
)

var errNoPlace = errors.New("no place found at coordinates")

type reverseGeocoding interface {
	ReverseGeocode(ctx context.Context, lat, lon float64, limit int) ([]client.GeoLocation, error)
}

// OpenWeatherGeocoder resolves positions through the provider's reverse geocoding API.
type OpenWeatherGeocoder struct {
	api reverseGeocoding
}

func NewOpenWeatherGeocoder(api reverseGeocoding) *OpenWeatherGeocoder {
	return &OpenWeatherGeocoder{api: api}
}

// CityAt returns the name of the closest place.
func (g *OpenWeatherGeocoder) CityAt(ctx context.Context, lat, lon float64) (string, error) {
	places, err := g.api.ReverseGeocode(ctx, lat, lon, 1)
	if err != nil {
		return "", fmt.Errorf("reverse geocode: %w", err)
	}
	if len(places) == 0 {
		return "", errNoPlace
	}
	return places[0].Name, nil
}

// FixedLocator reports a position given up front, e.g. on the command line.
type FixedLocator struct {
	Lat, Lon float64
}

func (l FixedLocator) Locate(ctx context.Context) (float64, float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, 0, err
	}
	return l.Lat, l.Lon, nil
}
