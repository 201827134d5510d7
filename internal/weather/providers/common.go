package providers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker"

	"github.com/i474232898/surf-forecast/internal/metrics"
)

// BackoffConfig controls exponential backoff behaviour.
type BackoffConfig struct {
	MaxRetries      uint64
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// HTTPClientConfig bundles HTTP client and resilience settings.
type HTTPClientConfig struct {
	Client  *http.Client
	Backoff BackoffConfig
}

func defaultHTTPConfig(client *http.Client) HTTPClientConfig {
	return HTTPClientConfig{
		Client: client,
		Backoff: BackoffConfig{
			MaxRetries:      3,
			InitialInterval: 500 * time.Millisecond,
			MaxInterval:     5 * time.Second,
		},
	}
}

var (
	errCircuitOpen   = errors.New("circuit breaker open")
	errNoHTTPClient  = errors.New("http client not configured")
	errInvalidConfig = errors.New("invalid backoff configuration")
	errMissingAPIKey = errors.New("api key is not configured")
)

// ClientRequestError is returned when the provider could not be reached at all.
type ClientRequestError struct {
	Provider string
	Err      error
}

func (e *ClientRequestError) Error() string {
	return fmt.Sprintf("unexpected error when trying to communicate to %s: %v", e.Provider, e.Err)
}

func (e *ClientRequestError) Unwrap() error {
	return e.Err
}

// ResponseError is returned when the provider answered with a non-2xx status.
type ResponseError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("unexpected error returned by the %s service: Error: %s Code: %d", e.Provider, e.Body, e.StatusCode)
}

// retryable reports whether a later attempt may succeed.
func (e *ResponseError) retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

func newCircuitBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
		// A rejected request (bad key, bad coordinates) says nothing about provider health.
		IsSuccessful: func(err error) bool {
			if errors.Is(err, context.Canceled) {
				return true
			}
			var respErr *ResponseError
			if errors.As(err, &respErr) {
				return !respErr.retryable()
			}
			return err == nil
		},
	})
}

// doRequestWithResilience executes the request with retries, exponential backoff
// and a circuit breaker, returning the body of the first successful response.
func doRequestWithResilience(
	ctx context.Context,
	provider string,
	cfg HTTPClientConfig,
	cb *gobreaker.CircuitBreaker,
	buildRequest func(ctx context.Context) (*http.Request, error),
) ([]byte, error) {
	if cfg.Client == nil {
		return nil, errNoHTTPClient
	}
	if cfg.Backoff.InitialInterval <= 0 {
		return nil, errInvalidConfig
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = cfg.Backoff.InitialInterval
	if cfg.Backoff.MaxInterval > 0 {
		bo.MaxInterval = cfg.Backoff.MaxInterval
	}
	bo.MaxElapsedTime = 0

	operation := func() ([]byte, error) {
		req, err := buildRequest(ctx)
		if err != nil {
			return nil, backoff.Permanent(err)
		}

		result, err := cb.Execute(func() (interface{}, error) {
			return doOnce(cfg.Client, provider, req)
		})
		if err == nil {
			body, ok := result.([]byte)
			if !ok {
				return nil, backoff.Permanent(fmt.Errorf("unexpected result type from circuit breaker"))
			}
			return body, nil
		}

		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, backoff.Permanent(fmt.Errorf("%s: %w: %v", provider, errCircuitOpen, err))
		}

		var respErr *ResponseError
		if errors.As(err, &respErr) && !respErr.retryable() {
			return nil, backoff.Permanent(err)
		}
		return nil, err
	}

	return backoff.RetryWithData(operation, backoff.WithContext(backoff.WithMaxRetries(bo, cfg.Backoff.MaxRetries), ctx))
}

func doOnce(client *http.Client, provider string, req *http.Request) ([]byte, error) {
	start := time.Now()
	resp, err := client.Do(req)
	metrics.ProviderLatency.WithLabelValues(provider).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ProviderCallsTotal.WithLabelValues(provider, "error").Inc()
		return nil, &ClientRequestError{Provider: provider, Err: err}
	}
	defer resp.Body.Close()
	metrics.ProviderCallsTotal.WithLabelValues(provider, strconv.Itoa(resp.StatusCode)).Inc()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ClientRequestError{Provider: provider, Err: fmt.Errorf("read body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &ResponseError{Provider: provider, StatusCode: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
