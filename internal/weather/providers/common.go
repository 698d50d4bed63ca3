package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/net/proxy"

	"github.com/i474232898/weather-daily-summary/internal/weather"
)

// HTTPClientConfig bundles the HTTP client and circuit breaker settings.
type HTTPClientConfig struct {
	Client *http.Client
	// BreakerTimeout is how long the circuit stays open before probing again.
	BreakerTimeout time.Duration
}

var (
	errRateLimited  = errors.New("rate limited")
	errServerError  = errors.New("server error")
	errRejected     = errors.New("request rejected")
	errCircuitOpen  = errors.New("circuit breaker open")
	errNoHTTPClient = errors.New("http client not configured")
)

// maxErrorBody bounds how much of an error response is read for its reason.
const maxErrorBody = 4 << 10

// NewHTTPClient builds the outbound client. proxyURL may be empty, an
// http(s) proxy URL or a socks5 URL.
func NewHTTPClient(timeout time.Duration, proxyURL string) (*http.Client, error) {
	client := &http.Client{Timeout: timeout}
	if proxyURL == "" {
		return client, nil
	}

	u, err := url.Parse(proxyURL)
	if err != nil {
		return nil, fmt.Errorf("parse proxy url: %w", err)
	}

	switch u.Scheme {
	case "socks5":
		dialer, err := proxy.FromURL(u, proxy.Direct)
		if err != nil {
			return nil, fmt.Errorf("create socks5 dialer: %w", err)
		}
		cd, ok := dialer.(proxy.ContextDialer)
		if !ok {
			return nil, fmt.Errorf("socks5 dialer does not support contexts")
		}
		client.Transport = &http.Transport{DialContext: cd.DialContext}
	case "http", "https":
		client.Transport = &http.Transport{Proxy: http.ProxyURL(u)}
	default:
		return nil, fmt.Errorf("unsupported proxy scheme %q", u.Scheme)
	}
	return client, nil
}

func newBreaker(name string, timeout time.Duration) *gobreaker.CircuitBreaker {
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    1 * time.Minute,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// Cancellations and 4xx rejections do not trip the circuit.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled) || errors.Is(err, errRejected)
		},
	})
}

// doRequest executes a single request through the circuit breaker. There is
// no retry: the widget fetches once per mount. Every failure wraps
// weather.ErrNetworkFailure; the caller owns the returned body.
func doRequest(
	ctx context.Context,
	cfg HTTPClientConfig,
	cb *gobreaker.CircuitBreaker,
	buildRequest func() (*http.Request, error),
) (*http.Response, error) {
	if cfg.Client == nil {
		return nil, fmt.Errorf("%w: %w", weather.ErrNetworkFailure, errNoHTTPClient)
	}

	req, err := buildRequest()
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %w", weather.ErrNetworkFailure, err)
	}
	req = req.WithContext(ctx)

	result, err := cb.Execute(func() (interface{}, error) {
		resp, execErr := cfg.Client.Do(req)
		if execErr != nil {
			return nil, execErr
		}
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return resp, nil
		}

		defer resp.Body.Close()
		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			return nil, errRateLimited
		case resp.StatusCode >= 500:
			return nil, fmt.Errorf("%w: %d", errServerError, resp.StatusCode)
		default:
			return nil, fmt.Errorf("%w: %d %s", errRejected, resp.StatusCode, errorReason(resp.Body))
		}
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %w: %v", weather.ErrNetworkFailure, errCircuitOpen, err)
		}
		return nil, fmt.Errorf("%w: %w", weather.ErrNetworkFailure, err)
	}

	resp, ok := result.(*http.Response)
	if !ok {
		return nil, fmt.Errorf("unexpected result type from circuit breaker")
	}
	return resp, nil
}

// errorReason extracts the "reason" field Open-Meteo puts in error bodies.
func errorReason(body io.Reader) string {
	var payload struct {
		Reason string `json:"reason"`
	}
	data, err := io.ReadAll(io.LimitReader(body, maxErrorBody))
	if err != nil || json.Unmarshal(data, &payload) != nil || payload.Reason == "" {
		return ""
	}
	return payload.Reason
}
