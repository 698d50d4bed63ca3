package weather

import (
	"fmt"
	"time"
)

// maxTimelineSteps bounds the axis ReconstructTimestamps materialises.
const maxTimelineSteps = 1 << 20

// ReconstructTimestamps expands a (start, end, interval) time axis into
// (end-start)/interval timestamps. Timestamp i is start + i*interval shifted
// by utcOffset seconds and expressed in UTC, so its UTC wall clock is the
// local wall clock of the forecast location.
func ReconstructTimestamps(start, end, interval, utcOffset int64) ([]time.Time, error) {
	n, err := StepCount(start, end, interval)
	if err != nil {
		return nil, err
	}
	if n > maxTimelineSteps {
		return nil, fmt.Errorf("%w: %d steps exceeds the limit of %d", ErrInvalidTimeRange, n, maxTimelineSteps)
	}

	times := make([]time.Time, n)
	for i := int64(0); i < n; i++ {
		times[i] = time.Unix(start+i*interval+utcOffset, 0).UTC()
	}
	return times, nil
}

// StepCount returns the number of timestamps the (start, end, interval) axis
// describes without materialising them.
func StepCount(start, end, interval int64) (int64, error) {
	if interval <= 0 {
		return 0, fmt.Errorf("%w: interval %d must be positive", ErrInvalidTimeRange, interval)
	}
	if end <= start {
		return 0, fmt.Errorf("%w: end %d is not after start %d", ErrInvalidTimeRange, end, start)
	}
	span := end - start
	if span < 0 {
		return 0, fmt.Errorf("%w: span from %d to %d overflows", ErrInvalidTimeRange, start, end)
	}
	if span%interval != 0 {
		return 0, fmt.Errorf("%w: span %d is not a multiple of interval %d", ErrInvalidTimeRange, span, interval)
	}
	return span / interval, nil
}
