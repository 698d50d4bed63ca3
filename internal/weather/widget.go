package weather

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// State is the lifecycle state of a widget.
type State string

const (
	StateLoading State = "loading"
	StateReady   State = "ready"
	StateFailed  State = "failed"
)

// View is an immutable snapshot of a widget.
type View struct {
	ID        string        `json:"id"`
	State     State         `json:"state"`
	MountedAt time.Time     `json:"mountedAt"`
	Days      []DaySummary  `json:"days,omitempty"`
	Error     string        `json:"error,omitempty"`
	ErrorKind string        `json:"errorKind,omitempty"`
	Elapsed   time.Duration `json:"-"`
}

// Widget runs one fetch-and-aggregate cycle for its lifetime. It starts in
// StateLoading and moves exactly once to StateReady or StateFailed.
type Widget struct {
	id        string
	loc       Location
	provider  Provider
	logger    *zap.Logger
	onSettled func(View)
	mountedAt time.Time

	once sync.Once
	done chan struct{}

	mu      sync.RWMutex
	cancel  context.CancelFunc
	state   State
	days    []DaySummary
	err     error
	elapsed time.Duration
}

// NewWidget creates an unmounted widget. onSettled, if non-nil, is called
// once with the final view.
func NewWidget(id string, provider Provider, loc Location, logger *zap.Logger, onSettled func(View)) *Widget {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Widget{
		id:        id,
		loc:       loc,
		provider:  provider,
		logger:    logger.With(zap.String("widget", id)),
		onSettled: onSettled,
		mountedAt: time.Now().UTC(),
		done:      make(chan struct{}),
		state:     StateLoading,
	}
}

// ID returns the widget identifier.
func (w *Widget) ID() string { return w.id }

// MountedAt returns the creation time of the widget.
func (w *Widget) MountedAt() time.Time { return w.mountedAt }

// Mount starts the fetch. Only the first call has an effect; the fetch runs
// until it completes, ctx ends or the widget is unmounted.
func (w *Widget) Mount(ctx context.Context) {
	w.once.Do(func() {
		fetchCtx, cancel := context.WithCancel(ctx)
		w.mu.Lock()
		w.cancel = cancel
		w.mu.Unlock()

		w.logger.Debug("widget mounted", zap.String("provider", w.provider.Name()))
		go w.run(fetchCtx)
	})
}

func (w *Widget) run(ctx context.Context) {
	defer close(w.done)

	start := time.Now()
	days, err := w.load(ctx)
	if err != nil && errors.Is(ctx.Err(), context.Canceled) {
		err = fmt.Errorf("fetch aborted: %w", context.Canceled)
	}
	w.settle(days, err, time.Since(start))
}

func (w *Widget) load(ctx context.Context) ([]DaySummary, error) {
	resp, err := w.provider.FetchHourly(ctx, w.loc)
	if err != nil {
		return nil, err
	}
	return Summaries(resp)
}

func (w *Widget) settle(days []DaySummary, err error, elapsed time.Duration) {
	w.mu.Lock()
	w.elapsed = elapsed
	if err != nil {
		w.state = StateFailed
		w.err = err
	} else {
		w.state = StateReady
		w.days = days
	}
	w.mu.Unlock()

	if err != nil {
		w.logger.Warn("widget failed", zap.String("kind", ErrorKind(err)), zap.Error(err))
	} else {
		w.logger.Debug("widget ready", zap.Int("days", len(days)), zap.Duration("elapsed", elapsed))
	}

	if w.onSettled != nil {
		w.onSettled(w.View())
	}
}

// Unmount tears the widget down: an in-flight fetch is cancelled and
// Unmount returns once the cycle has settled. A widget that was never
// mounted settles as cancelled and can no longer be mounted.
func (w *Widget) Unmount() {
	w.once.Do(func() {
		w.settle(nil, fmt.Errorf("unmounted before mount: %w", context.Canceled), 0)
		close(w.done)
	})

	w.mu.RLock()
	cancel := w.cancel
	w.mu.RUnlock()
	if cancel != nil {
		cancel()
	}
	<-w.done
}

// Wait blocks until the widget has left StateLoading or ctx ends.
func (w *Widget) Wait(ctx context.Context) error {
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Err returns the failure of a failed widget.
func (w *Widget) Err() error {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.err
}

// View returns a snapshot of the widget.
func (w *Widget) View() View {
	w.mu.RLock()
	defer w.mu.RUnlock()

	v := View{
		ID:        w.id,
		State:     w.state,
		MountedAt: w.mountedAt,
		Days:      w.days,
		ErrorKind: ErrorKind(w.err),
		Elapsed:   w.elapsed,
	}
	if w.err != nil {
		v.Error = w.err.Error()
	}
	return v
}
