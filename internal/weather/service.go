package weather

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Metrics receives widget lifecycle observations.
type Metrics interface {
	ObserveFetch(kind string, elapsed time.Duration, days int)
	SetMountedWidgets(n int)
}

// ServiceOptions configures a Service.
type ServiceOptions struct {
	Location Location
	// WidgetTTL bounds the lifetime of a mounted widget (0 = unlimited).
	WidgetTTL time.Duration
	Logger    *zap.Logger
	Metrics   Metrics
}

// Service mounts widgets against a provider and keeps them in a registry
// until they are unmounted or expire.
type Service struct {
	provider Provider
	registry Registry
	loc      Location
	ttl      time.Duration
	logger   *zap.Logger
	metrics  Metrics

	baseCtx context.Context
	stop    context.CancelFunc
}

// NewService creates a new Service.
func NewService(registry Registry, provider Provider, opts ServiceOptions) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, stop := context.WithCancel(context.Background())
	return &Service{
		provider: provider,
		registry: registry,
		loc:      opts.Location,
		ttl:      opts.WidgetTTL,
		logger:   logger,
		metrics:  opts.Metrics,
		baseCtx:  ctx,
		stop:     stop,
	}
}

// Location returns the location widgets are mounted for.
func (s *Service) Location() Location {
	return s.loc
}

// Mount registers a new widget and starts its fetch. The fetch is bound to
// the service lifetime, not to the caller's request.
func (s *Service) Mount() (*Widget, error) {
	if s.provider == nil {
		return nil, fmt.Errorf("no forecast provider configured")
	}
	if s.baseCtx.Err() != nil {
		return nil, fmt.Errorf("service is shut down")
	}

	w := NewWidget(uuid.NewString(), s.provider, s.loc, s.logger, s.observe)
	evicted := s.registry.Save(w)
	s.teardown(evicted, "evicted")

	w.Mount(s.baseCtx)
	s.logger.Info("widget mounted", zap.String("widget", w.ID()))
	s.reportMounted()
	return w, nil
}

// Get returns a mounted widget.
func (s *Service) Get(id string) (*Widget, error) {
	return s.registry.Get(id)
}

// Unmount removes a widget and tears it down.
func (s *Service) Unmount(id string) error {
	w, err := s.registry.Delete(id)
	if err != nil {
		return err
	}
	w.Unmount()
	s.logger.Info("widget unmounted", zap.String("widget", id))
	s.reportMounted()
	return nil
}

// RenderOnce mounts a throwaway widget bound to ctx, waits for it to settle
// and tears it down. The returned error is the widget failure, if any.
func (s *Service) RenderOnce(ctx context.Context) (View, error) {
	if s.provider == nil {
		return View{}, fmt.Errorf("no forecast provider configured")
	}

	w := NewWidget(uuid.NewString(), s.provider, s.loc, s.logger, s.observe)
	w.Mount(ctx)
	_ = w.Wait(ctx)
	w.Unmount()

	v := w.View()
	if v.State == StateFailed {
		return v, w.Err()
	}
	return v, nil
}

// ReapExpired tears down widgets older than the configured TTL and reports
// how many were removed.
func (s *Service) ReapExpired() int {
	if s.ttl <= 0 {
		return 0
	}
	expired := s.registry.Sweep(time.Now().UTC().Add(-s.ttl))
	s.teardown(expired, "expired")
	if len(expired) > 0 {
		s.reportMounted()
	}
	return len(expired)
}

// Shutdown cancels every in-flight fetch and unmounts all widgets.
func (s *Service) Shutdown() {
	s.stop()
	all := s.registry.Sweep(time.Now().UTC().Add(time.Hour))
	s.teardown(all, "shutdown")
	s.reportMounted()
}

func (s *Service) teardown(widgets []*Widget, reason string) {
	for _, w := range widgets {
		w.Unmount()
		s.logger.Info("widget torn down", zap.String("widget", w.ID()), zap.String("reason", reason))
	}
}

func (s *Service) observe(v View) {
	if s.metrics == nil {
		return
	}
	kind := v.ErrorKind
	if kind == "" {
		kind = "ok"
	}
	s.metrics.ObserveFetch(kind, v.Elapsed, len(v.Days))
}

func (s *Service) reportMounted() {
	if s.metrics != nil {
		s.metrics.SetMountedWidgets(s.registry.Len())
	}
}
