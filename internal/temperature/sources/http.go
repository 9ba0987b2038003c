package sources

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/temperature-dashboard/internal/temperature"
)

// HTTPSource downloads the dataset CSV over HTTP with retries and a circuit
// breaker in front of the endpoint.
type HTTPSource struct {
	url     string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewHTTPSource(url string, cfg HTTPClientConfig) *HTTPSource {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "csv-source",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	return &HTTPSource{
		url:     url,
		httpCfg: cfg,
		circuit: cb,
	}
}

func (s *HTTPSource) Name() string {
	return s.url
}

func (s *HTTPSource) Load(ctx context.Context) ([]temperature.RawRow, error) {
	buildRequest := func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "text/csv, text/plain;q=0.9, */*;q=0.5")
		return req, nil
	}

	resp, err := doRequestWithResilience(ctx, s.httpCfg, s.circuit, buildRequest)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", s.url, err)
	}
	defer resp.Body.Close()

	rows, err := ParseCSV(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.url, err)
	}
	return rows, nil
}
