package weather

import (
	"math"
	"time"
)

const dayKeyLayout = "2006-01-02"

// DayKeyOf returns the UTC calendar date of t. Timestamps produced by
// ReconstructTimestamps already carry the location offset, so no further
// shift is applied here.
func DayKeyOf(t time.Time) DayKey {
	return DayKey(t.UTC().Format(dayKeyLayout))
}

// GroupByDay partitions the indices of times into day buckets. Buckets are
// returned in first-seen order and indices keep their input order.
func GroupByDay(times []time.Time) []DayBucket {
	var buckets []DayBucket
	pos := make(map[DayKey]int)

	for i, ts := range times {
		k := DayKeyOf(ts)
		b, ok := pos[k]
		if !ok {
			b = len(buckets)
			pos[k] = b
			buckets = append(buckets, DayBucket{Day: k})
		}
		buckets[b].Indices = append(buckets[b].Indices, i)
	}
	return buckets
}

// Summarize computes the day aggregates of bucket over series.
// NaN values (missing hours) are skipped.
func Summarize(series HourlySeries, bucket DayBucket) DaySummary {
	maxTemp := math.NaN()
	var sumHum, sumPrecip, sumWind float64
	var nHum, nPrecip, nWind int
	seenCodes := make(map[int]struct{})
	codes := make([]int, 0, 4)

	for _, i := range bucket.Indices {
		if t := series.Temperature[i]; !math.IsNaN(t) && (math.IsNaN(maxTemp) || t > maxTemp) {
			maxTemp = t
		}
		if h := series.RelativeHumidity[i]; !math.IsNaN(h) {
			sumHum += h
			nHum++
		}
		if p := series.Precipitation[i]; !math.IsNaN(p) {
			sumPrecip += p
			nPrecip++
		}
		if w := series.WindSpeed[i]; !math.IsNaN(w) {
			sumWind += w
			nWind++
		}
		if c := series.WeatherCode[i]; !math.IsNaN(c) {
			code := int(c) // integral in 0..99, checked by NewHourlySeries
			if _, dup := seenCodes[code]; !dup {
				seenCodes[code] = struct{}{}
				codes = append(codes, code)
			}
		}
	}

	total := math.NaN()
	if nPrecip > 0 {
		total = sumPrecip
	}

	return DaySummary{
		Day:                bucket.Day,
		Hours:              len(bucket.Indices),
		MaxTemperature:     maxTemp,
		MeanHumidity:       mean(sumHum, nHum),
		TotalPrecipitation: total,
		MeanWindSpeed:      mean(sumWind, nWind),
		WeatherCodes:       codes,
	}
}

func mean(sum float64, n int) float64 {
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}

// SummarizeDays groups series by day and summarizes every bucket, in day order.
func SummarizeDays(series HourlySeries) []DaySummary {
	buckets := GroupByDay(series.Time)
	days := make([]DaySummary, 0, len(buckets))
	for _, b := range buckets {
		days = append(days, Summarize(series, b))
	}
	return days
}

// Summaries runs the whole pipeline from a raw columnar response to day summaries.
func Summaries(resp HourlyResponse) ([]DaySummary, error) {
	series, err := NewHourlySeries(resp)
	if err != nil {
		return nil, err
	}
	return SummarizeDays(series), nil
}
