// Command meteo is a terminal front end for the gateway. It searches a city
// given with -city, or resolves -lat/-lon to a city with -locate, or reads
// one city per line from stdin ("/here" uses the -lat/-lon position).
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/kjstillabower/meteo-gateway/internal/apiclient"
	"github.com/kjstillabower/meteo-gateway/internal/client"
	"github.com/kjstillabower/meteo-gateway/internal/observability"
	"github.com/kjstillabower/meteo-gateway/internal/ui"
)

const hereCommand = "/here"

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "load .env: %v\n", err)
	}

	apiURL := flag.String("api", envOr("METEO_API_URL", "http://localhost:3333"), "gateway base URL")
	city := flag.String("city", "", "city to look up")
	locate := flag.Bool("locate", false, "look up the city at -lat/-lon")
	lat := flag.Float64("lat", 0, "latitude used as the device position")
	lon := flag.Float64("lon", 0, "longitude used as the device position")
	lang := flag.String("lang", envOr("WEATHER_LANG", "fr"), "language the gateway answers in; sets date parsing and weekday names")
	timeout := flag.Duration("timeout", 15*time.Second, "per-request timeout")
	flag.Parse()

	logger, err := observability.NewLogger(observability.LoggerOptions{Service: "meteo", Console: true})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = observability.FlushTelemetry(context.Background(), logger) }()

	api, err := apiclient.New(*apiURL, nil)
	if err != nil {
		logger.Fatal("gateway client", zap.Error(err))
	}

	// The position is only known when both flags are given; without one the
	// store reports geolocation as unsupported.
	var locator ui.Locator
	var geocoder ui.Geocoder
	if isFlagSet("lat") && isFlagSet("lon") {
		locator = ui.FixedLocator{Lat: *lat, Lon: *lon}
		apiKey := envOr("OPENWEATHER_API_KEY", os.Getenv("WEATHER_API_KEY"))
		if apiKey == "" {
			logger.Warn("OPENWEATHER_API_KEY not set; reverse geocoding will fail")
		}
		owc, err := client.NewOpenWeatherClient(apiKey, client.Options{
			GeoURL:  os.Getenv("GEO_API_URL"),
			Timeout: *timeout,
		})
		if err != nil {
			logger.Fatal("geocoding client", zap.Error(err))
		}
		geocoder = ui.NewOpenWeatherGeocoder(owc)
	}
	store := ui.NewStore(api, locator, geocoder)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	run := func(action func(context.Context)) {
		reqCtx, cancel := context.WithTimeout(ctx, *timeout)
		defer cancel()
		action(reqCtx)
		if err := ui.Render(os.Stdout, store.State(), *lang); err != nil {
			logger.Error("render", zap.Error(err))
		}
	}

	switch {
	case *locate:
		run(store.UseMyLocation)
		return
	case *city != "":
		run(func(c context.Context) { store.Search(c, *city) })
		return
	}

	fmt.Printf("city (or %s), empty line to quit:\n", hereCommand)
	scanner := bufio.NewScanner(os.Stdin)
	for ctx.Err() == nil && scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			return
		}
		if line == hereCommand {
			run(store.UseMyLocation)
			continue
		}
		run(func(c context.Context) { store.Search(c, line) })
	}
	if err := scanner.Err(); err != nil {
		logger.Error("read stdin", zap.Error(err))
	}
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func isFlagSet(name string) bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}
