package weather

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
)

// fakeProvider returns a canned response. When block is set, FetchHourly
// waits for it to close or for ctx to end.
type fakeProvider struct {
	mu    sync.Mutex
	calls int
	resp  HourlyResponse
	err   error
	block chan struct{}
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) FetchHourly(ctx context.Context, _ Location) (HourlyResponse, error) {
	p.mu.Lock()
	p.calls++
	p.mu.Unlock()

	if p.block != nil {
		select {
		case <-p.block:
		case <-ctx.Done():
			return HourlyResponse{}, fmt.Errorf("%w: %w", ErrNetworkFailure, ctx.Err())
		}
	}
	return p.resp, p.err
}

func (p *fakeProvider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

func twoDayResponse() HourlyResponse {
	return hourlyResponse(dayStart, 48, 0, func(i int) [7]float64 {
		return [7]float64{float64(i % 24), 50, 10, 0.1, 12, 270, 3}
	})
}

func waitSettled(t *testing.T, w *Widget) View {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := w.Wait(ctx); err != nil {
		t.Fatalf("widget did not settle: %v", err)
	}
	return w.View()
}

func TestWidgetReady(t *testing.T) {
	p := &fakeProvider{resp: twoDayResponse()}
	var settled []View
	var mu sync.Mutex
	w := NewWidget("w1", p, DefaultLocation, zaptest.NewLogger(t), func(v View) {
		mu.Lock()
		settled = append(settled, v)
		mu.Unlock()
	})

	if got := w.View().State; got != StateLoading {
		t.Fatalf("initial state = %q, want %q", got, StateLoading)
	}

	w.Mount(context.Background())
	w.Mount(context.Background())
	v := waitSettled(t, w)

	if v.State != StateReady {
		t.Fatalf("state = %q (%s), want %q", v.State, v.Error, StateReady)
	}
	if len(v.Days) != 2 {
		t.Fatalf("got %d days, want 2", len(v.Days))
	}
	if v.Days[0].MaxTemperature != 23 {
		t.Errorf("day 0 max = %v, want 23", v.Days[0].MaxTemperature)
	}
	if v.Error != "" || v.ErrorKind != "" {
		t.Errorf("unexpected error fields: %q %q", v.Error, v.ErrorKind)
	}

	w.Unmount()
	if calls := p.Calls(); calls != 1 {
		t.Fatalf("provider called %d times, want 1", calls)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(settled) != 1 || settled[0].State != StateReady {
		t.Fatalf("onSettled calls = %+v, want one ready view", settled)
	}
}

func TestWidgetFailed(t *testing.T) {
	malformed := twoDayResponse()
	malformed.Variables[2] = malformed.Variables[2][:10]

	tests := []struct {
		name     string
		provider *fakeProvider
		wantKind string
	}{
		{
			name:     "network failure",
			provider: &fakeProvider{err: fmt.Errorf("%w: connection refused", ErrNetworkFailure)},
			wantKind: KindNetworkFailure,
		},
		{
			name:     "malformed response",
			provider: &fakeProvider{resp: malformed},
			wantKind: KindMalformedResponse,
		},
		{
			name:     "invalid time range",
			provider: &fakeProvider{resp: HourlyResponse{Start: dayStart, End: dayStart, Interval: 3600}},
			wantKind: KindInvalidTimeRange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewWidget("w", tt.provider, DefaultLocation, zaptest.NewLogger(t), nil)
			w.Mount(context.Background())
			v := waitSettled(t, w)

			if v.State != StateFailed {
				t.Fatalf("state = %q, want %q", v.State, StateFailed)
			}
			if v.ErrorKind != tt.wantKind {
				t.Errorf("kind = %q, want %q", v.ErrorKind, tt.wantKind)
			}
			if v.Days != nil {
				t.Errorf("days = %v, want none", v.Days)
			}
			if w.Err() == nil || v.Error == "" {
				t.Errorf("failure not reported")
			}
		})
	}
}

func TestWidgetUnmountCancelsFetch(t *testing.T) {
	p := &fakeProvider{resp: twoDayResponse(), block: make(chan struct{})}
	w := NewWidget("w", p, DefaultLocation, zaptest.NewLogger(t), nil)
	w.Mount(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := w.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Wait = %v, want deadline exceeded while loading", err)
	}
	if got := w.View().State; got != StateLoading {
		t.Fatalf("state = %q, want %q", got, StateLoading)
	}

	done := make(chan struct{})
	go func() {
		w.Unmount()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Unmount did not return")
	}

	v := w.View()
	if v.State != StateFailed || v.ErrorKind != KindCanceled {
		t.Fatalf("state = %q kind = %q, want failed/canceled", v.State, v.ErrorKind)
	}
}

func TestWidgetUnmountBeforeMount(t *testing.T) {
	p := &fakeProvider{resp: twoDayResponse()}
	w := NewWidget("w", p, DefaultLocation, zaptest.NewLogger(t), nil)

	w.Unmount()
	w.Mount(context.Background())

	v := w.View()
	if v.State != StateFailed || v.ErrorKind != KindCanceled {
		t.Fatalf("state = %q kind = %q, want failed/canceled", v.State, v.ErrorKind)
	}
	if calls := p.Calls(); calls != 0 {
		t.Fatalf("provider called %d times, want 0", calls)
	}
}

func TestErrorKind(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{fmt.Errorf("x: %w", ErrNetworkFailure), KindNetworkFailure},
		{fmt.Errorf("x: %w", context.DeadlineExceeded), KindNetworkFailure},
		{fmt.Errorf("x: %w", ErrMalformedResponse), KindMalformedResponse},
		{fmt.Errorf("x: %w", ErrInvalidTimeRange), KindInvalidTimeRange},
		{fmt.Errorf("%w: %w", ErrNetworkFailure, context.Canceled), KindCanceled},
		{errors.New("other"), KindUnknown},
	}

	for _, tt := range tests {
		if got := ErrorKind(tt.err); got != tt.want {
			t.Errorf("ErrorKind(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
