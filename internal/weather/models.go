package weather

import (
	"encoding/json"
	"math"
	"time"
)

// Hourly variable identifiers requested from the forecast service.
// The order is significant: HourlyResponse.Variables is aligned with it.
const (
	VarTemperature              = "temperature_2m"
	VarRelativeHumidity         = "relative_humidity_2m"
	VarPrecipitationProbability = "precipitation_probability"
	VarPrecipitation            = "precipitation"
	VarWindSpeed                = "wind_speed_10m"
	VarWindDirection            = "wind_direction_10m"
	VarWeatherCode              = "weather_code"
)

// HourlyVariables lists the requested hourly variables in request order.
var HourlyVariables = []string{
	VarTemperature,
	VarRelativeHumidity,
	VarPrecipitationProbability,
	VarPrecipitation,
	VarWindSpeed,
	VarWindDirection,
	VarWeatherCode,
}

// Location is the place the forecast is requested for.
type Location struct {
	Latitude  float64 `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64 `json:"longitude" validate:"gte=-180,lte=180"`
}

// DefaultLocation is Berlin, the widget's fixed location.
var DefaultLocation = Location{Latitude: 52.52, Longitude: 13.41}

// HourlyResponse is the columnar forecast payload: one shared time axis
// described by Start, End and Interval (unix seconds) and one value array per
// requested variable, in HourlyVariables order.
type HourlyResponse struct {
	UTCOffsetSeconds int64
	Start            int64
	End              int64
	Interval         int64
	Variables        [][]float64
}

// HourlySeries holds the hourly values aligned by index. All slices have the
// same length; index i refers to the same hour everywhere.
type HourlySeries struct {
	Time                     []time.Time
	Temperature              []float64
	RelativeHumidity         []float64
	PrecipitationProbability []float64
	Precipitation            []float64
	WindSpeed                []float64
	WindDirection            []float64
	WeatherCode              []float64
}

// Len returns the number of hours in the series.
func (s HourlySeries) Len() int {
	return len(s.Time)
}

// DayKey is an ISO 8601 calendar date ("2006-01-02").
type DayKey string

// DayBucket lists, in increasing order, the series indices falling on Day.
type DayBucket struct {
	Day     DayKey
	Indices []int
}

// DaySummary is the per-day aggregate shown on a card.
// Aggregates with no valid hourly input are NaN.
type DaySummary struct {
	Day                DayKey  `json:"day"`
	Hours              int     `json:"hours"`
	MaxTemperature     float64 `json:"maxTemperatureC"`
	MeanHumidity       float64 `json:"meanHumidityPercent"`
	TotalPrecipitation float64 `json:"totalPrecipitationMm"`
	MeanWindSpeed      float64 `json:"meanWindSpeedKmh"`
	WeatherCodes       []int   `json:"weatherCodes"`
}

// MarshalJSON encodes NaN aggregates as null.
func (d DaySummary) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Day                DayKey   `json:"day"`
		Hours              int      `json:"hours"`
		MaxTemperature     *float64 `json:"maxTemperatureC"`
		MeanHumidity       *float64 `json:"meanHumidityPercent"`
		TotalPrecipitation *float64 `json:"totalPrecipitationMm"`
		MeanWindSpeed      *float64 `json:"meanWindSpeedKmh"`
		WeatherCodes       []int    `json:"weatherCodes"`
	}{
		Day:                d.Day,
		Hours:              d.Hours,
		MaxTemperature:     finite(d.MaxTemperature),
		MeanHumidity:       finite(d.MeanHumidity),
		TotalPrecipitation: finite(d.TotalPrecipitation),
		MeanWindSpeed:      finite(d.MeanWindSpeed),
		WeatherCodes:       d.WeatherCodes,
	})
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
