package city

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/worldwise-api/internal/types"
	"github.com/FACorreiaa/worldwise-api/pkg/observability"
)

var _ Repository = (*RepositoryImpl)(nil)

// Repository is the remote city store. Every method performs exactly one round trip.
type Repository interface {
	GetAllCities(ctx context.Context) ([]types.City, error)
	GetCity(ctx context.Context, id types.CityID) (*types.City, error)
	CreateCity(ctx context.Context, params types.CreateCityParams) (*types.City, error)
	DeleteCity(ctx context.Context, id types.CityID) error
}

// RepositoryConfig configures the HTTP store client.
type RepositoryConfig struct {
	BaseURL string
	// Timeout of zero means requests wait for as long as the caller's context allows.
	Timeout    time.Duration
	HTTPClient *http.Client
	Metrics    *observability.Metrics
}

type RepositoryImpl struct {
	logger     *slog.Logger
	baseURL    string
	httpClient *http.Client
	metrics    *observability.Metrics
}

// NewCityRepository returns a client for the city store at cfg.BaseURL.
func NewCityRepository(cfg RepositoryConfig, logger *slog.Logger) (*RepositoryImpl, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("city store base URL is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}

	return &RepositoryImpl{
		logger:     logger,
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient: httpClient,
		metrics:    cfg.Metrics,
	}, nil
}

// GetAllCities retrieves the full city list from the store.
func (r *RepositoryImpl) GetAllCities(ctx context.Context) ([]types.City, error) {
	ctx, span := otel.Tracer("CityRepository").Start(ctx, "GetAllCities")
	defer span.End()

	l := r.logger.With(slog.String("method", "GetAllCities"))

	var cities []types.City
	if err := r.do(ctx, "get_all_cities", http.MethodGet, "/cities", nil, &cities); err != nil {
		l.ErrorContext(ctx, "Failed to fetch cities", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Store request failed")
		return nil, fmt.Errorf("failed to fetch cities: %w", err)
	}

	l.DebugContext(ctx, "Cities fetched", slog.Int("count", len(cities)))
	span.SetAttributes(attribute.Int("results.count", len(cities)))
	span.SetStatus(codes.Ok, "Cities fetched")

	return cities, nil
}

// GetCity retrieves a single city by id.
func (r *RepositoryImpl) GetCity(ctx context.Context, id types.CityID) (*types.City, error) {
	ctx, span := otel.Tracer("CityRepository").Start(ctx, "GetCity", trace.WithAttributes(
		attribute.String("city.id", id.String()),
	))
	defer span.End()

	l := r.logger.With(slog.String("method", "GetCity"), slog.String("city_id", id.String()))

	var city types.City
	if err := r.do(ctx, "get_city", http.MethodGet, "/cities/"+id.String(), nil, &city); err != nil {
		l.ErrorContext(ctx, "Failed to fetch city", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Store request failed")
		return nil, fmt.Errorf("failed to fetch city %s: %w", id, err)
	}

	span.SetStatus(codes.Ok, "City fetched")
	return &city, nil
}

// CreateCity posts a new city and returns the stored record carrying its generated id.
func (r *RepositoryImpl) CreateCity(ctx context.Context, params types.CreateCityParams) (*types.City, error) {
	ctx, span := otel.Tracer("CityRepository").Start(ctx, "CreateCity", trace.WithAttributes(
		attribute.String("city.name", params.CityName),
	))
	defer span.End()

	l := r.logger.With(slog.String("method", "CreateCity"), slog.String("city_name", params.CityName))

	var city types.City
	if err := r.do(ctx, "create_city", http.MethodPost, "/cities", params, &city); err != nil {
		l.ErrorContext(ctx, "Failed to create city", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Store request failed")
		return nil, fmt.Errorf("failed to create city: %w", err)
	}

	l.InfoContext(ctx, "City created", slog.String("city_id", city.ID.String()))
	span.SetAttributes(attribute.String("city.id", city.ID.String()))
	span.SetStatus(codes.Ok, "City created")

	return &city, nil
}

// DeleteCity removes a city from the store. The response body is ignored.
func (r *RepositoryImpl) DeleteCity(ctx context.Context, id types.CityID) error {
	ctx, span := otel.Tracer("CityRepository").Start(ctx, "DeleteCity", trace.WithAttributes(
		attribute.String("city.id", id.String()),
	))
	defer span.End()

	l := r.logger.With(slog.String("method", "DeleteCity"), slog.String("city_id", id.String()))

	if err := r.do(ctx, "delete_city", http.MethodDelete, "/cities/"+id.String(), nil, nil); err != nil {
		l.ErrorContext(ctx, "Failed to delete city", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Store request failed")
		return fmt.Errorf("failed to delete city %s: %w", id, err)
	}

	l.InfoContext(ctx, "City deleted")
	span.SetStatus(codes.Ok, "City deleted")
	return nil
}

// do sends one request. A nil out discards the response body.
func (r *RepositoryImpl) do(ctx context.Context, operation, method, path string, body, out any) (err error) {
	start := time.Now()
	defer func() {
		r.metrics.ObserveStoreRequest(operation, err, time.Since(start))
	}()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, r.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", types.ErrStoreUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: %s %s returned %d: %s",
			statusError(resp.StatusCode), method, path, resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func statusError(status int) error {
	switch status {
	case http.StatusNotFound:
		return types.ErrNotFound
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return types.ErrBadRequest
	case http.StatusConflict:
		return types.ErrConflict
	default:
		return types.ErrStoreUnavailable
	}
}
