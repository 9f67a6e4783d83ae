package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/i474232898/weather-dashboard/internal/weather"
	"github.com/sony/gobreaker"
)

const (
	openMeteoBaseURL    = "https://api.open-meteo.com/v1/forecast"
	openMeteoTimeLayout = "2006-01-02T15:04"
	openMeteoDateLayout = "2006-01-02"
)

var openMeteoHourlyFields = []string{
	"temperature_2m",
	"relative_humidity_2m",
	"wind_speed_10m",
	"precipitation",
}

// OpenMeteoProvider implements weather.Provider for the Open-Meteo hourly forecast API.
type OpenMeteoProvider struct {
	name     string
	baseURL  string
	timezone string
	location *time.Location
	client   *http.Client
	circuit  *gobreaker.CircuitBreaker
}

// NewOpenMeteoProvider creates a provider. An empty baseURL uses the public
// endpoint; timezone is any IANA name and defaults to UTC.
func NewOpenMeteoProvider(cfg HTTPClientConfig, baseURL, timezone string) *OpenMeteoProvider {
	if baseURL == "" {
		baseURL = openMeteoBaseURL
	}
	if timezone == "" {
		timezone = "UTC"
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		log.Printf("WARN: unknown timezone %q for openmeteo; using UTC", timezone)
		timezone, loc = "UTC", time.UTC
	}

	return &OpenMeteoProvider{
		name:     "openmeteo",
		baseURL:  baseURL,
		timezone: timezone,
		location: loc,
		client:   cfg.Client,
		circuit:  newCircuitBreaker("openmeteo", cfg),
	}
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

// Hourly fetches the hourly series for every hour of the days spanned by
// startDate and endDate.
func (p *OpenMeteoProvider) Hourly(ctx context.Context, lat, lng float64, startDate, endDate time.Time) (weather.HourlySeries, error) {
	buildRequest := func(ctx context.Context) (*http.Request, error) {
		values := url.Values{}
		values.Set("latitude", fmt.Sprintf("%f", lat))
		values.Set("longitude", fmt.Sprintf("%f", lng))
		values.Set("hourly", strings.Join(openMeteoHourlyFields, ","))
		values.Set("start_date", startDate.In(p.location).Format(openMeteoDateLayout))
		values.Set("end_date", endDate.In(p.location).Format(openMeteoDateLayout))
		values.Set("timezone", p.timezone)

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	}

	resp, err := doRequest(ctx, p.client, p.circuit, buildRequest)
	if err != nil {
		return weather.HourlySeries{}, err
	}
	defer resp.Body.Close()

	var payload struct {
		Hourly struct {
			Time          []string   `json:"time"`
			Temperature   []*float64 `json:"temperature_2m"`
			Humidity      []*float64 `json:"relative_humidity_2m"`
			WindSpeed     []*float64 `json:"wind_speed_10m"`
			Precipitation []*float64 `json:"precipitation"`
		} `json:"hourly"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return weather.HourlySeries{}, fmt.Errorf("decode openmeteo response: %w", err)
	}

	times := make([]time.Time, 0, len(payload.Hourly.Time))
	for _, raw := range payload.Hourly.Time {
		ts, err := time.ParseInLocation(openMeteoTimeLayout, raw, p.location)
		if err != nil {
			return weather.HourlySeries{}, fmt.Errorf("parse openmeteo time %q: %w", raw, err)
		}
		times = append(times, ts.UTC())
	}

	return weather.HourlySeries{
		Times:         times,
		Temperature:   payload.Hourly.Temperature,
		Humidity:      payload.Hourly.Humidity,
		WindSpeed:     payload.Hourly.WindSpeed,
		Precipitation: payload.Hourly.Precipitation,
		Location:      p.location,
	}, nil
}
