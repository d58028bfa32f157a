package providers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/i474232898/weather-snapshot/internal/weather"
)

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 4 << 20

// HTTPClientConfig bundles the HTTP client and the optional outbound guards.
// A nil Limiter or Circuit disables that guard.
type HTTPClientConfig struct {
	Client  *http.Client
	Limiter *rate.Limiter
	Circuit *gobreaker.CircuitBreaker
}

var (
	errCircuitOpen  = errors.New("circuit breaker open")
	errNoHTTPClient = errors.New("http client not configured")
)

// statusError carries a non-2xx status out of the circuit breaker callback.
type statusError struct {
	code int
}

func (e statusError) Error() string {
	return fmt.Sprintf("unexpected status code %d", e.code)
}

// doGet performs a single GET and returns the body of a 2xx response.
// Every failure is reported as a *weather.NetworkError; nothing is retried.
func doGet(ctx context.Context, cfg HTTPClientConfig, endpoint, rawURL string) ([]byte, error) {
	netErr := func(err error) error {
		var se statusError
		if errors.As(err, &se) {
			return &weather.NetworkError{Endpoint: endpoint, StatusCode: se.code}
		}
		return &weather.NetworkError{Endpoint: endpoint, Err: err}
	}

	if cfg.Client == nil {
		return nil, netErr(errNoHTTPClient)
	}

	if cfg.Limiter != nil {
		if err := cfg.Limiter.Wait(ctx); err != nil {
			return nil, netErr(fmt.Errorf("rate limit wait: %w", err))
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, netErr(err)
	}

	exec := func() (interface{}, error) {
		resp, err := cfg.Client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
			return nil, statusError{code: resp.StatusCode}
		}
		return io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	}

	var result interface{}
	if cfg.Circuit != nil {
		result, err = cfg.Circuit.Execute(exec)
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, netErr(fmt.Errorf("%w: %v", errCircuitOpen, err))
		}
	} else {
		result, err = exec()
	}
	if err != nil {
		// Prefer the context error so cancellation is reported as such.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, netErr(ctxErr)
		}
		return nil, netErr(err)
	}

	body, ok := result.([]byte)
	if !ok {
		return nil, netErr(fmt.Errorf("unexpected result type %T", result))
	}
	return body, nil
}
