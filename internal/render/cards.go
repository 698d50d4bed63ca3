// Package render formats day summaries for display.
package render

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/i474232898/weather-daily-summary/internal/weather"
)

// LoadingText is shown while a widget has not settled.
const LoadingText = "Loading weather data..."

const notAvailable = "n/a"

// Card is the display form of one day.
type Card struct {
	Day           string `json:"day"`
	MaxTemp       string `json:"maxTemp"`
	Humidity      string `json:"humidity"`
	Precipitation string `json:"precipitation"`
	Wind          string `json:"wind"`
	Codes         string `json:"codes"`
}

// NewCard formats d: whole degrees, percent and km/h, precipitation with one decimal.
func NewCard(d weather.DaySummary) Card {
	codes := make([]string, len(d.WeatherCodes))
	for i, c := range d.WeatherCodes {
		codes[i] = strconv.Itoa(c)
	}

	return Card{
		Day:           string(d.Day),
		MaxTemp:       withUnit(formatRounded(d.MaxTemperature), "°C"),
		Humidity:      withUnit(formatRounded(d.MeanHumidity), "%"),
		Precipitation: withUnit(formatOneDecimal(d.TotalPrecipitation), " mm"),
		Wind:          withUnit(formatRounded(d.MeanWindSpeed), " km/h"),
		Codes:         strings.Join(codes, ", "),
	}
}

// Cards formats every day in order.
func Cards(days []weather.DaySummary) []Card {
	cards := make([]Card, 0, len(days))
	for _, d := range days {
		cards = append(cards, NewCard(d))
	}
	return cards
}

// WriteView writes the terminal rendering of v.
func WriteView(w io.Writer, v weather.View) error {
	switch v.State {
	case weather.StateReady:
		for i, c := range Cards(v.Days) {
			if i > 0 {
				if _, err := fmt.Fprintln(w); err != nil {
					return err
				}
			}
			if err := writeCard(w, c); err != nil {
				return err
			}
		}
		return nil
	case weather.StateFailed:
		_, err := fmt.Fprintf(w, "Weather data unavailable (%s): %s\n", v.ErrorKind, v.Error)
		return err
	default:
		_, err := fmt.Fprintln(w, LoadingText)
		return err
	}
}

func writeCard(w io.Writer, c Card) error {
	_, err := fmt.Fprintf(w,
		"%s\n  Temp max:      %s\n  Humidity avg:  %s\n  Rain total:    %s\n  Wind avg:      %s\n  Code(s):       %s\n",
		c.Day, c.MaxTemp, c.Humidity, c.Precipitation, c.Wind, c.Codes)
	return err
}

func withUnit(v, unit string) string {
	if v == notAvailable {
		return v
	}
	return v + unit
}

// RoundHalfUp rounds to the nearest integer, .5 going toward +Inf.
func RoundHalfUp(x float64) float64 {
	return math.Floor(x + 0.5)
}

func formatRounded(x float64) string {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return notAvailable
	}
	r := RoundHalfUp(x)
	if r == 0 {
		r = 0 // drop negative zero
	}
	return strconv.FormatFloat(r, 'f', 0, 64)
}

// formatOneDecimal picks the larger neighbour on exact ties (x.x5 values
// representable in binary are multiples of 0.25).
func formatOneDecimal(x float64) string {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return notAvailable
	}
	if q := x * 4; q == math.Trunc(q) && math.Mod(q, 2) != 0 {
		x = math.Ceil(x*10) / 10
	}
	s := strconv.FormatFloat(x, 'f', 1, 64)
	if s == "-0.0" {
		s = "0.0"
	}
	return s
}
