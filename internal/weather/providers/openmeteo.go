package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-daily-summary/internal/weather"
)

// DefaultOpenMeteoURL is the public Open-Meteo API root.
const DefaultOpenMeteoURL = "https://api.open-meteo.com/v1"

// defaultInterval is assumed when the time axis has a single row.
const defaultInterval = int64(time.Hour / time.Second)

// OpenMeteoProvider implements the weather.Provider interface for Open-Meteo.
type OpenMeteoProvider struct {
	name    string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

// NewOpenMeteoProvider creates a provider rooted at baseURL (DefaultOpenMeteoURL if empty).
func NewOpenMeteoProvider(baseURL string, cfg HTTPClientConfig) *OpenMeteoProvider {
	if baseURL == "" {
		baseURL = DefaultOpenMeteoURL
	}
	return &OpenMeteoProvider{
		name:    "openmeteo",
		baseURL: strings.TrimRight(baseURL, "/"),
		httpCfg: cfg,
		circuit: newBreaker("openmeteo", cfg.BreakerTimeout),
	}
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

// FetchHourly requests the hourly variables for loc and converts the JSON
// body into the columnar weather.HourlyResponse.
func (p *OpenMeteoProvider) FetchHourly(ctx context.Context, loc weather.Location) (weather.HourlyResponse, error) {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("latitude", strconv.FormatFloat(loc.Latitude, 'f', -1, 64))
		values.Set("longitude", strconv.FormatFloat(loc.Longitude, 'f', -1, 64))
		values.Set("hourly", strings.Join(weather.HourlyVariables, ","))
		values.Set("timeformat", "unixtime")

		u := fmt.Sprintf("%s/forecast?%s", p.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequest(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return weather.HourlyResponse{}, err
	}
	defer resp.Body.Close()

	var raw struct {
		UTCOffsetSeconds *int64                     `json:"utc_offset_seconds"`
		Hourly           map[string]json.RawMessage `json:"hourly"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		if ctx.Err() != nil {
			return weather.HourlyResponse{}, fmt.Errorf("%w: read body: %w", weather.ErrNetworkFailure, err)
		}
		return weather.HourlyResponse{}, fmt.Errorf("%w: decode body: %v", weather.ErrMalformedResponse, err)
	}

	return decodeHourly(raw.UTCOffsetSeconds, raw.Hourly)
}

func decodeHourly(offset *int64, hourly map[string]json.RawMessage) (weather.HourlyResponse, error) {
	if offset == nil {
		return weather.HourlyResponse{}, fmt.Errorf("%w: utc_offset_seconds missing", weather.ErrMalformedResponse)
	}
	if hourly == nil {
		return weather.HourlyResponse{}, fmt.Errorf("%w: hourly block missing", weather.ErrMalformedResponse)
	}

	var times []int64
	if err := unmarshalField(hourly, "time", &times); err != nil {
		return weather.HourlyResponse{}, err
	}
	if len(times) == 0 {
		return weather.HourlyResponse{}, fmt.Errorf("%w: hourly.time is empty", weather.ErrMalformedResponse)
	}

	interval := defaultInterval
	if len(times) > 1 {
		interval = times[1] - times[0]
	}
	for i := 1; i < len(times); i++ {
		if times[i]-times[i-1] != interval {
			return weather.HourlyResponse{}, fmt.Errorf("%w: hourly.time is not evenly spaced at index %d",
				weather.ErrMalformedResponse, i)
		}
	}

	vars := make([][]float64, 0, len(weather.HourlyVariables))
	for _, name := range weather.HourlyVariables {
		var column []*float64
		if err := unmarshalField(hourly, name, &column); err != nil {
			return weather.HourlyResponse{}, err
		}
		vars = append(vars, toValues(column))
	}

	return weather.HourlyResponse{
		UTCOffsetSeconds: *offset,
		Start:            times[0],
		End:              times[len(times)-1] + interval,
		Interval:         interval,
		Variables:        vars,
	}, nil
}

func unmarshalField(hourly map[string]json.RawMessage, name string, dst interface{}) error {
	data, ok := hourly[name]
	if !ok {
		return fmt.Errorf("%w: hourly.%s missing", weather.ErrMalformedResponse, name)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("%w: hourly.%s: %v", weather.ErrMalformedResponse, name, err)
	}
	return nil
}

// toValues maps null hours to NaN.
func toValues(column []*float64) []float64 {
	out := make([]float64, len(column))
	for i, v := range column {
		if v == nil {
			out[i] = math.NaN()
			continue
		}
		out[i] = *v
	}
	return out
}
