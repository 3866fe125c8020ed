package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	htransport "google.golang.org/api/transport/http"

	"github.com/ourdigital/gbp-toolkit/internal/domain"
)

const defaultUserAgent = "gbp-toolkit"

// Config describes one Google REST API, identified by name and version
// (e.g. "mybusiness", "v4").
type Config struct {
	Name    string
	Version string
	// Endpoint overrides the base URL https://{name}.googleapis.com/{version}/.
	Endpoint  string
	UserAgent string
	// RequestsPerSecond paces outgoing requests. Zero disables pacing.
	RequestsPerSecond float64
	Burst             int
	Logger            zerolog.Logger
}

// Service is an authenticated handle on one Google REST API.
type Service struct {
	name      string
	version   string
	basePath  string
	userAgent string
	client    *http.Client
	limiter   *rate.Limiter
	logger    zerolog.Logger
}

// NewService builds the HTTP client from opts (typically
// option.WithTokenSource) the same way generated Google API clients do.
func NewService(ctx context.Context, cfg Config, opts ...option.ClientOption) (*Service, error) {
	if cfg.Name == "" || cfg.Version == "" {
		return nil, fmt.Errorf("service name and version are required")
	}
	hc, _, err := htransport.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s/%s http client: %w", cfg.Name, cfg.Version, err)
	}

	base := cfg.Endpoint
	if base == "" {
		base = fmt.Sprintf("https://%s.googleapis.com/%s/", cfg.Name, cfg.Version)
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}

	s := &Service{
		name:      cfg.Name,
		version:   cfg.Version,
		basePath:  base,
		userAgent: ua,
		client:    hc,
		logger:    cfg.Logger.With().Str("service", cfg.Name+"/"+cfg.Version).Logger(),
	}
	s.limiter = NewLimiter(cfg.RequestsPerSecond, cfg.Burst)
	return s, nil
}

// NewLimiter returns a token bucket pacing requests at rps, or nil when rps
// is not positive.
func NewLimiter(rps float64, burst int) *rate.Limiter {
	if rps <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}

// Name returns the API name, e.g. "mybusiness".
func (s *Service) Name() string { return s.name }

// Version returns the API version, e.g. "v4".
func (s *Service) Version() string { return s.version }

// BasePath returns the base URL requests are resolved against.
func (s *Service) BasePath() string { return s.basePath }

// Do sends a JSON request to path (relative to the base URL) and decodes the
// JSON response into out when out is non-nil. Failed calls are returned as
// *domain.APIError.
func (s *Service) Do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("failed to wait for rate limiter: %w", err)
		}
	}

	u := s.basePath + strings.TrimPrefix(path, "/")
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode %s request body: %w", path, err)
		}
		reqBody = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", s.userAgent)
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	res, err := s.client.Do(req)
	if err != nil {
		s.logger.Debug().Err(err).Str("method", method).Str("path", path).Msg("request failed")
		return &domain.APIError{Message: fmt.Sprintf("%s %s: %v", method, path, err), Err: err}
	}
	defer googleapi.CloseBody(res)

	s.logger.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", res.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("request")

	if err := googleapi.CheckResponse(res); err != nil {
		return NormalizeError(err)
	}
	if out == nil || res.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return &domain.APIError{
			Message:    fmt.Sprintf("failed to decode %s response: %v", path, err),
			StatusCode: res.StatusCode,
			Err:        err,
		}
	}
	return nil
}

// NormalizeError converts a Google API error into a *domain.APIError carrying
// the message, status code and raw body. Other errors are returned unchanged.
func NormalizeError(err error) error {
	if err == nil {
		return nil
	}
	var apiErr *domain.APIError
	if errors.As(err, &apiErr) {
		return err
	}
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return err
	}
	msg := gerr.Message
	if msg == "" {
		msg = http.StatusText(gerr.Code)
	}
	if msg == "" {
		msg = gerr.Error()
	}
	return &domain.APIError{
		Message:    msg,
		StatusCode: gerr.Code,
		Body:       gerr.Body,
		Err:        gerr,
	}
}
