package geo

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"takaful/internal/cache"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func newTestServer(t *testing.T, geocodeHits *int) *httptest.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("/geocode", func(w http.ResponseWriter, r *http.Request) {
		if geocodeHits != nil {
			*geocodeHits++
		}
		q := r.URL.Query().Get("q")
		if q == ", France" {
			json.NewEncoder(w).Encode(map[string]any{"error": "empty query"})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"valid": true, "lat": 47.218, "lon": -1.553, "label": q,
		})
	})

	mux.HandleFunc("/units/nearest", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"found": true,
			"unit":  map[string]string{"id": "Q-17", "name": "Bellevue"},
		})
	})

	mux.HandleFunc("/units/Q-17", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"unit": map[string]string{
				"id": "Q-17", "name": "Bellevue",
				"district": "Bellevue", "sector": "Ouest", "city": "Nantes",
			},
		})
	})

	mux.HandleFunc("/units/GONE", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"unknown unit"}`, http.StatusNotFound)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestResolveAddressToUnit(t *testing.T) {
	srv := newTestServer(t, nil)
	c := NewClient(srv.URL, 2, cache.NewMemoryKV(), testLogger())

	res := c.ResolveAddressToUnit(context.Background(), "1 Rue de la Paix", "44000", "Nantes")
	assert.True(t, res.IsValid)
	require.NotNil(t, res.LocationUnitID)
	assert.Equal(t, "Q-17", *res.LocationUnitID)
	assert.Equal(t, "Bellevue", res.LocationUnitName)
	assert.Empty(t, res.Warning)
}

func TestResolveInvalidAddress(t *testing.T) {
	srv := newTestServer(t, nil)
	c := NewClient(srv.URL, 2, cache.NewMemoryKV(), testLogger())

	res := c.ResolveAddressToUnit(context.Background(), "", "", "")
	assert.False(t, res.IsValid)
	assert.Nil(t, res.LocationUnitID)
	assert.NotEmpty(t, res.Error)
}

func TestGeocodeCached(t *testing.T) {
	hits := 0
	srv := newTestServer(t, &hits)
	c := NewClient(srv.URL, 2, cache.NewMemoryKV(), testLogger())

	ctx := context.Background()
	c.ResolveAddressToUnit(ctx, "1 Rue de la Paix", "44000", "Nantes")
	c.ResolveAddressToUnit(ctx, "1 Rue de la Paix", "44000", "Nantes")

	assert.Equal(t, 1, hits, "second resolve should hit the geocode cache")
}

func TestErrorResponsesNotCached(t *testing.T) {
	hits := 0
	srv := newTestServer(t, &hits)
	c := NewClient(srv.URL, 2, cache.NewMemoryKV(), testLogger())

	ctx := context.Background()
	c.ResolveAddressToUnit(ctx, "", "", "")
	c.ResolveAddressToUnit(ctx, "", "", "")

	assert.Equal(t, 2, hits, "error responses must not be cached")
}

func TestUnitExists(t *testing.T) {
	srv := newTestServer(t, nil)
	c := NewClient(srv.URL, 2, cache.NewMemoryKV(), testLogger())

	ctx := context.Background()
	ok, err := c.UnitExists(ctx, "Q-17")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.UnitExists(ctx, "GONE")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHierarchyGroupName(t *testing.T) {
	srv := newTestServer(t, nil)
	c := NewClient(srv.URL, 2, cache.NewMemoryKV(), testLogger())

	h, err := c.Hierarchy(context.Background(), "Q-17")
	require.NoError(t, err)
	assert.Equal(t, "Nantes - Ouest", h.GroupName())
}
