package httpclient

import (
	"net/http"
	"time"

	"solvecheck/internal/logging"
)

// DefaultTimeout bounds a single LLM round trip when the caller sets none.
const DefaultTimeout = 60 * time.Second

// New returns an http.Client for outbound LLM calls. Every round trip is
// logged at debug level with its status and latency.
func New(timeout time.Duration, logger logging.Logger) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: &loggingRoundTripper{base: transport(), logger: logging.OrNop(logger)},
	}
}

func transport() http.RoundTripper {
	base, ok := http.DefaultTransport.(*http.Transport)
	if !ok {
		return &http.Transport{Proxy: http.ProxyFromEnvironment}
	}
	return base.Clone()
}

type loggingRoundTripper struct {
	base   http.RoundTripper
	logger logging.Logger
}

func (t *loggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := t.base.RoundTrip(req)
	elapsed := time.Since(start)
	if err != nil {
		t.logger.Debug("%s %s failed after %s: %v", req.Method, req.URL.Redacted(), elapsed, err)
		return nil, err
	}
	t.logger.Debug("%s %s -> %d in %s", req.Method, req.URL.Redacted(), resp.StatusCode, elapsed)
	return resp, nil
}
