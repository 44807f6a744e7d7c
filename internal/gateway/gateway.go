package gateway

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/kjstillabower/meteo-gateway/internal/client"
	"github.com/kjstillabower/meteo-gateway/internal/models"
	"github.com/kjstillabower/meteo-gateway/internal/observability"
	"github.com/kjstillabower/meteo-gateway/internal/validation"
)

const (
	opWeather  = "weather"
	opForecast = "forecast"
)

// Settings is the read-only configuration the gateway is built with.
type Settings struct {
	// CredentialConfigured is false when no provider API key was supplied at startup.
	CredentialConfigured bool
	// Lang selects the calendar date layout of ForecastDay.Date.
	Lang string
	// Location is the time zone forecast timestamps are converted to. Nil means time.Local.
	Location *time.Location
}

// Gateway validates client parameters, calls the provider once per request and
// reshapes the payload. It keeps no state between calls.
type Gateway struct {
	provider   client.WeatherProvider
	configured bool
	dateLayout string
	location   *time.Location
}

// New returns a Gateway backed by provider.
func New(provider client.WeatherProvider, settings Settings) *Gateway {
	loc := settings.Location
	if loc == nil {
		loc = time.Local
	}
	return &Gateway{
		provider:   provider,
		configured: settings.CredentialConfigured,
		dateLayout: DateLayout(settings.Lang),
		location:   loc,
	}
}

// GetCurrentWeather returns current conditions for a city. An upstream 404 is
// reported as KindNotFound; every other upstream failure as KindUpstream.
func (g *Gateway) GetCurrentWeather(ctx context.Context, rawCity string) (models.CurrentWeather, error) {
	city, err := validation.ValidateCity(rawCity)
	if err != nil {
		msg := MsgCityInvalid
		if errors.Is(err, validation.ErrCityEmpty) {
			msg = MsgCityRequired
		}
		return models.CurrentWeather{}, g.fail(ctx, opWeather, KindInvalidRequest, msg, err)
	}
	if !g.configured {
		return models.CurrentWeather{}, g.fail(ctx, opWeather, KindMisconfigured, MsgAPIKeyMissing, nil)
	}

	observability.WeatherQueriesTotal.Inc()
	resp, err := g.provider.CurrentByCity(ctx, city)
	if err != nil {
		if reason, _ := client.ReasonOf(err); reason == client.ReasonNotFound {
			return models.CurrentWeather{}, g.fail(ctx, opWeather, KindNotFound, MsgCityNotFound, err)
		}
		return models.CurrentWeather{}, g.fail(ctx, opWeather, KindUpstream, MsgWeatherUnavailable, err)
	}

	weather, err := mapCurrent(resp)
	if err != nil {
		return models.CurrentWeather{}, g.fail(ctx, opWeather, KindUpstream, MsgWeatherUnavailable, err)
	}
	observability.LoggerFromContext(ctx).Debug("weather served",
		zap.String("city", weather.City), zap.String("country", weather.Country))
	return weather, nil
}

// GetForecast returns at most five daily samples for the given coordinates.
// Upstream failures, 404 included, are all reported as KindUpstream.
func (g *Gateway) GetForecast(ctx context.Context, rawLat, rawLon string) ([]models.ForecastDay, error) {
	lat, lon, err := validation.ParseCoordinates(rawLat, rawLon)
	if err != nil {
		msg := MsgCoordsInvalid
		switch {
		case errors.Is(err, validation.ErrCoordinatesMissing):
			msg = MsgCoordsRequired
		case errors.Is(err, validation.ErrCoordinatesOutOfRange):
			msg = MsgCoordsOutOfRange
		}
		return nil, g.fail(ctx, opForecast, KindInvalidRequest, msg, err)
	}
	if !g.configured {
		return nil, g.fail(ctx, opForecast, KindMisconfigured, MsgAPIKeyMissing, nil)
	}

	observability.ForecastQueriesTotal.Inc()
	resp, err := g.provider.ForecastByCoords(ctx, lat, lon)
	if err != nil {
		return nil, g.fail(ctx, opForecast, KindUpstream, MsgForecastUnavailable, err)
	}

	days, err := g.mapForecast(SelectDaily(resp.List))
	if err != nil {
		return nil, g.fail(ctx, opForecast, KindUpstream, MsgForecastUnavailable, err)
	}
	observability.LoggerFromContext(ctx).Debug("forecast served",
		zap.Float64("lat", lat), zap.Float64("lon", lon), zap.Int("days", len(days)))
	return days, nil
}

func (g *Gateway) fail(ctx context.Context, op string, kind Kind, msg string, cause error) error {
	observability.GatewayErrorsTotal.WithLabelValues(op, kind.String()).Inc()
	logger := observability.LoggerFromContext(ctx)
	switch kind {
	case KindUpstream, KindMisconfigured:
		logger.Warn("gateway request failed", zap.String("operation", op), zap.String("kind", kind.String()), zap.Error(cause))
	default:
		logger.Debug("gateway request rejected", zap.String("operation", op), zap.String("kind", kind.String()), zap.Error(cause))
	}
	return &Error{Op: op, Kind: kind, Message: msg, Err: cause}
}

var errMalformed = errors.New("malformed provider payload")

func mapCurrent(resp client.CurrentResponse) (models.CurrentWeather, error) {
	if resp.Coord == nil || resp.Coord.Lat == nil || resp.Coord.Lon == nil {
		return models.CurrentWeather{}, fmt.Errorf("%w: missing coordinates", errMalformed)
	}
	if len(resp.Weather) == 0 {
		return models.CurrentWeather{}, fmt.Errorf("%w: empty condition list", errMalformed)
	}
	return models.CurrentWeather{
		City:        resp.Name,
		Country:     resp.Sys.Country,
		Temperature: roundInt(resp.Main.Temp),
		FeelsLike:   roundInt(resp.Main.FeelsLike),
		Description: resp.Weather[0].Description,
		Icon:        resp.Weather[0].Icon,
		Humidity:    resp.Main.Humidity,
		WindSpeed:   resp.Wind.Speed,
		Pressure:    resp.Main.Pressure,
		Lat:         *resp.Coord.Lat,
		Lon:         *resp.Coord.Lon,
	}, nil
}

func (g *Gateway) mapForecast(entries []client.ForecastEntry) ([]models.ForecastDay, error) {
	days := make([]models.ForecastDay, 0, len(entries))
	for i, e := range entries {
		if len(e.Weather) == 0 {
			return nil, fmt.Errorf("%w: entry %d has empty condition list", errMalformed, i)
		}
		days = append(days, models.ForecastDay{
			Date:        time.Unix(e.Dt, 0).In(g.location).Format(g.dateLayout),
			Temperature: roundInt(e.Main.Temp),
			Description: e.Weather[0].Description,
			Icon:        e.Weather[0].Icon,
			Humidity:    e.Main.Humidity,
			WindSpeed:   e.Wind.Speed,
		})
	}
	return days, nil
}

// roundInt rounds half away from zero.
func roundInt(v float64) int {
	return int(math.Round(v))
}
