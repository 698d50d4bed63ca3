package weather

import (
	"context"
	"time"
)

// Provider abstracts the forecast source (e.g. Open-Meteo). FetchHourly
// performs exactly one outbound request and returns the columnar result for
// the variables in HourlyVariables.
type Provider interface {
	Name() string
	FetchHourly(ctx context.Context, loc Location) (HourlyResponse, error)
}

// Registry is the contract the in-memory widget registry must satisfy.
// Save and Sweep return the widgets they removed so the caller can tear them down.
type Registry interface {
	Save(w *Widget) (evicted []*Widget)
	Get(id string) (*Widget, error)
	Delete(id string) (*Widget, error)
	Sweep(cutoff time.Time) []*Widget
	Len() int
}
