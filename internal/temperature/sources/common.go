package sources

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/temperature-dashboard/internal/common"
	"github.com/i474232898/temperature-dashboard/internal/temperature"
)

// BackoffConfig controls exponential backoff behaviour.
type BackoffConfig struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// HTTPClientConfig bundles HTTP client and resilience settings.
type HTTPClientConfig struct {
	Client  *http.Client
	Backoff BackoffConfig
}

// DefaultBackoff is used by New for HTTP sources.
var DefaultBackoff = BackoffConfig{
	MaxRetries:      3,
	InitialInterval: 500 * time.Millisecond,
	MaxInterval:     5 * time.Second,
}

var (
	// ErrUnsupportedSource is returned by New for an empty locator.
	ErrUnsupportedSource = errors.New("unsupported data source")

	errRateLimited   = errors.New("rate limited")
	errServerError   = errors.New("server error")
	errUnexpected    = errors.New("unexpected status code")
	errCircuitOpen   = errors.New("circuit breaker open")
	errNoHTTPClient  = errors.New("http client not configured")
	errInvalidConfig = errors.New("invalid backoff configuration")
)

// New picks a Source for the locator: http(s) URLs are fetched with client
// (http.DefaultClient when nil), anything else is read from the local filesystem.
func New(locator string, client *http.Client) (temperature.Source, error) {
	if locator == "" {
		return nil, fmt.Errorf("%w: empty locator", ErrUnsupportedSource)
	}
	if common.IsHTTPURL(locator) {
		if client == nil {
			client = http.DefaultClient
		}
		return NewHTTPSource(locator, HTTPClientConfig{Client: client, Backoff: DefaultBackoff}), nil
	}
	return NewFileSource(locator), nil
}

// doRequestWithResilience executes the HTTP request with retries, exponential backoff,
// and a circuit breaker.
func doRequestWithResilience(
	ctx context.Context,
	cfg HTTPClientConfig,
	cb *gobreaker.CircuitBreaker,
	buildRequest func(ctx context.Context) (*http.Request, error),
) (*http.Response, error) {
	if cfg.Client == nil {
		return nil, errNoHTTPClient
	}
	if cfg.Backoff.MaxRetries < 0 || cfg.Backoff.InitialInterval <= 0 {
		return nil, errInvalidConfig
	}

	var attempt int

	for {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		req, err := buildRequest(ctx)
		if err != nil {
			return nil, err
		}

		result, err := cb.Execute(func() (interface{}, error) {
			resp, execErr := cfg.Client.Do(req)
			if execErr != nil {
				return nil, execErr
			}

			if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				return resp, nil
			}
			resp.Body.Close()

			switch {
			case resp.StatusCode == http.StatusTooManyRequests:
				return nil, errRateLimited
			case resp.StatusCode >= 500:
				return nil, errServerError
			default:
				return nil, fmt.Errorf("%w: %d", errUnexpected, resp.StatusCode)
			}
		})

		if err == nil {
			resp, ok := result.(*http.Response)
			if !ok {
				return nil, fmt.Errorf("unexpected result type from circuit breaker")
			}
			return resp, nil
		}

		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", errCircuitOpen, err)
		}

		// Client errors other than 429 will not improve on retry.
		if errors.Is(err, errUnexpected) || attempt >= cfg.Backoff.MaxRetries {
			return nil, err
		}

		delay := cfg.Backoff.InitialInterval * time.Duration(math.Pow(2, float64(attempt)))
		if delay > cfg.Backoff.MaxInterval && cfg.Backoff.MaxInterval > 0 {
			delay = cfg.Backoff.MaxInterval
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}

		attempt++
	}
}
