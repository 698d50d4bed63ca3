package weather

import (
	"fmt"
	"math"
)

// maxWeatherCode is the largest WMO weather interpretation code.
const maxWeatherCode = 99

// NewHourlySeries rebuilds the time axis of resp and binds its variable
// arrays by position. Arrays that disagree with the time axis length are
// rejected rather than truncated, before any timestamp is allocated.
func NewHourlySeries(resp HourlyResponse) (HourlySeries, error) {
	n, err := StepCount(resp.Start, resp.End, resp.Interval)
	if err != nil {
		return HourlySeries{}, err
	}

	if len(resp.Variables) < len(HourlyVariables) {
		return HourlySeries{}, fmt.Errorf("%w: got %d hourly variables, want %d",
			ErrMalformedResponse, len(resp.Variables), len(HourlyVariables))
	}
	for i, name := range HourlyVariables {
		if got := int64(len(resp.Variables[i])); got != n {
			return HourlySeries{}, fmt.Errorf("%w: %s has %d values, time axis has %d",
				ErrMalformedResponse, name, got, n)
		}
	}
	if err := checkWeatherCodes(resp.Variables[6]); err != nil {
		return HourlySeries{}, err
	}

	times, err := ReconstructTimestamps(resp.Start, resp.End, resp.Interval, resp.UTCOffsetSeconds)
	if err != nil {
		return HourlySeries{}, err
	}

	return HourlySeries{
		Time:                     times,
		Temperature:              resp.Variables[0],
		RelativeHumidity:         resp.Variables[1],
		PrecipitationProbability: resp.Variables[2],
		Precipitation:            resp.Variables[3],
		WindSpeed:                resp.Variables[4],
		WindDirection:            resp.Variables[5],
		WeatherCode:              resp.Variables[6],
	}, nil
}

// checkWeatherCodes accepts missing hours (NaN) and integral codes in 0..99.
func checkWeatherCodes(codes []float64) error {
	for i, c := range codes {
		if math.IsNaN(c) {
			continue
		}
		if c != math.Trunc(c) || c < 0 || c > maxWeatherCode {
			return fmt.Errorf("%w: %s[%d] = %v is not a weather code",
				ErrMalformedResponse, VarWeatherCode, i, c)
		}
	}
	return nil
}
