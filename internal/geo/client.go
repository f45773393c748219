// Package geo wraps the external geocoding and administrative-unit
// partner API behind a long-TTL cache. The partner returns JSON with an
// "error" field convention: a non-empty error means the request itself
// failed, independent of HTTP status.
package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"takaful/internal/cache"
	"takaful/internal/normalize"
	"takaful/pkg/types"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
)

const (
	geocodeCacheTTL   = 30 * 24 * time.Hour
	hierarchyCacheTTL = 7 * 24 * time.Hour
)

type geocodeResponse struct {
	Error string  `json:"error"`
	Valid bool    `json:"valid"`
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
	Label string  `json:"label"`
}

type nearestUnitResponse struct {
	Error string `json:"error"`
	Found bool   `json:"found"`
	Unit  struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"unit"`
}

type unitResponse struct {
	Error string `json:"error"`
	Unit  struct {
		ID       string `json:"id"`
		Name     string `json:"name"`
		District string `json:"district"`
		Sector   string `json:"sector"`
		City     string `json:"city"`
	} `json:"unit"`
}

type Client struct {
	httpClient *resty.Client
	kv         cache.KV
	logger     *logrus.Logger
	radiusKM   float64
}

func NewClient(baseURL string, radiusKM float64, kv cache.KV, logger *logrus.Logger) *Client {
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(15 * time.Second).
		SetRetryCount(2). // 3 attempts total
		SetRetryWaitTime(1 * time.Second).
		SetRetryMaxWaitTime(3 * time.Second).
		SetRetryAfter(func(c *resty.Client, r *resty.Response) (time.Duration, error) {
			// linear backoff: 1s, 2s, 3s
			return time.Duration(r.Request.Attempt) * time.Second, nil
		}).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			// transport faults only; a non-2xx response is terminal
			return err != nil
		}).
		SetHeader("Accept", "application/json")

	return &Client{
		httpClient: httpClient,
		kv:         kv,
		logger:     logger,
		radiusKM:   radiusKM,
	}
}

// ResolveAddressToUnit geocodes an address and maps the resolved
// coordinates to the nearest enclosing administrative unit. A failed
// geocode yields IsValid false; a valid address with no unit within the
// search radius proceeds with a warning and no unit id. Successful
// geocode responses are cached by exact request string; errors never are.
func (c *Client) ResolveAddressToUnit(ctx context.Context, street, postalCode, city string) types.GeoResolution {
	query := normalize.FormatAddressCanonical(street, postalCode, city) + ", " + types.HomeCountry

	geocoded, err := c.geocode(ctx, query)
	if err != nil {
		return types.GeoResolution{IsValid: false, Error: err.Error()}
	}
	if !geocoded.Valid {
		return types.GeoResolution{IsValid: false, Error: "address did not geocode"}
	}

	resolution := types.GeoResolution{
		IsValid:   true,
		Latitude:  geocoded.Lat,
		Longitude: geocoded.Lon,
	}

	nearest, err := c.nearestUnit(ctx, geocoded.Lat, geocoded.Lon)
	if err != nil {
		resolution.Warning = fmt.Sprintf("unit lookup failed: %v", err)
		return resolution
	}
	if !nearest.Found {
		resolution.Warning = fmt.Sprintf("no administrative unit within %.1f km", c.radiusKM)
		return resolution
	}

	unitID := nearest.Unit.ID
	resolution.LocationUnitID = &unitID
	resolution.LocationUnitName = nearest.Unit.Name
	return resolution
}

func (c *Client) geocode(ctx context.Context, query string) (*geocodeResponse, error) {
	cacheKey := "geo:geocode:" + query
	if cached, err := c.kv.Get(ctx, cacheKey); err == nil {
		var out geocodeResponse
		if err := json.Unmarshal([]byte(cached), &out); err == nil {
			return &out, nil
		}
	}

	var out geocodeResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParam("q", query).
		SetResult(&out).
		Get("/geocode")
	if err != nil {
		return nil, fmt.Errorf("geocode request failed: %w", err)
	}
	if resp.IsError() {
		return nil, &types.ExternalServiceError{
			Service:    "geocoder",
			StatusCode: resp.StatusCode(),
			Message:    resp.String(),
		}
	}
	if out.Error != "" {
		return nil, &types.ExternalServiceError{
			Service:    "geocoder",
			StatusCode: resp.StatusCode(),
			Message:    out.Error,
		}
	}

	if encoded, err := json.Marshal(&out); err == nil {
		if err := c.kv.Set(ctx, cacheKey, string(encoded), geocodeCacheTTL); err != nil {
			c.logger.WithError(err).Debug("geocode cache write failed")
		}
	}

	return &out, nil
}

func (c *Client) nearestUnit(ctx context.Context, lat, lon float64) (*nearestUnitResponse, error) {
	var out nearestUnitResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"lat":       fmt.Sprintf("%f", lat),
			"lon":       fmt.Sprintf("%f", lon),
			"radius_km": fmt.Sprintf("%f", c.radiusKM),
		}).
		SetResult(&out).
		Get("/units/nearest")
	if err != nil {
		return nil, fmt.Errorf("nearest unit request failed: %w", err)
	}
	if resp.IsError() {
		return nil, &types.ExternalServiceError{
			Service:    "unit resolver",
			StatusCode: resp.StatusCode(),
			Message:    resp.String(),
		}
	}
	if out.Error != "" {
		return nil, &types.ExternalServiceError{
			Service:    "unit resolver",
			StatusCode: resp.StatusCode(),
			Message:    out.Error,
		}
	}
	return &out, nil
}

// UnitExists checks that a unit id still resolves with the partner; the
// validated-status transition requires it.
func (c *Client) UnitExists(ctx context.Context, unitID string) (bool, error) {
	_, err := c.Hierarchy(ctx, unitID)
	if err != nil {
		var svcErr *types.ExternalServiceError
		if errors.As(err, &svcErr) && svcErr.StatusCode == http.StatusNotFound {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Hierarchy returns the three-level administrative chain for a unit,
// cached per unit id.
func (c *Client) Hierarchy(ctx context.Context, unitID string) (types.LocationHierarchy, error) {
	cacheKey := "geo:unit:" + unitID
	if cached, err := c.kv.Get(ctx, cacheKey); err == nil {
		var out types.LocationHierarchy
		if err := json.Unmarshal([]byte(cached), &out); err == nil {
			return out, nil
		}
	}

	var out unitResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetResult(&out).
		Get("/units/" + unitID)
	if err != nil {
		return types.LocationHierarchy{}, fmt.Errorf("unit request failed: %w", err)
	}
	if resp.IsError() {
		return types.LocationHierarchy{}, &types.ExternalServiceError{
			Service:    "unit resolver",
			StatusCode: resp.StatusCode(),
			Message:    resp.String(),
		}
	}
	if out.Error != "" {
		return types.LocationHierarchy{}, &types.ExternalServiceError{
			Service:    "unit resolver",
			StatusCode: resp.StatusCode(),
			Message:    out.Error,
		}
	}

	hierarchy := types.LocationHierarchy{
		District: out.Unit.District,
		Sector:   out.Unit.Sector,
		City:     out.Unit.City,
	}

	if encoded, err := json.Marshal(&hierarchy); err == nil {
		if err := c.kv.Set(ctx, cacheKey, string(encoded), hierarchyCacheTTL); err != nil {
			c.logger.WithError(err).Debug("hierarchy cache write failed")
		}
	}

	return hierarchy, nil
}
