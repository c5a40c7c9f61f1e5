package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/org-admin/internal/config"
)

type memoryGeoCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemoryGeoCache() *memoryGeoCache {
	return &memoryGeoCache{data: map[string][]byte{}}
}

func (c *memoryGeoCache) Get(_ context.Context, key string, dest interface{}) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (c *memoryGeoCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = raw
	return nil
}

func newGeoUpstream(t *testing.T, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/countries/states", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		if r.Method == http.MethodGet {
			_, _ = w.Write([]byte(`{"error":false,"msg":"ok","data":[
				{"name":"Nigeria","iso3":"NGA","iso2":"NG","states":[{"name":"Lagos","state_code":"LA"}]},
				{"name":"Kenya","iso3":"KEN","iso2":"KE","states":[]}]}`))
			return
		}
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Nigeria", body["country"])
		_, _ = w.Write([]byte(`{"error":false,"msg":"ok","data":{"name":"Nigeria","iso3":"NGA",
			"states":[{"name":"Lagos","state_code":"LA"},{"name":"Kano","state_code":"KN"}]}}`))
	})
	mux.HandleFunc("/countries/state/cities", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		if body["state"] != "Lagos" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":true,"msg":"state not found"}`))
			return
		}
		_, _ = w.Write([]byte(`{"error":false,"msg":"ok","data":["Ikeja","Lekki"]}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestGeoService_MapsUpstreamAndCaches(t *testing.T) {
	var hits atomic.Int32
	srv := newGeoUpstream(t, &hits)
	svc := NewGeoService(config.GeoConfig{BaseURL: srv.URL + "/", Timeout: 5 * time.Second, CacheTTL: time.Hour},
		newMemoryGeoCache(), nil, nil)
	ctx := context.Background()

	countries, err := svc.Countries(ctx)
	require.NoError(t, err)
	assert.Equal(t, []Country{{Name: "Nigeria", ISO3: "NGA"}, {Name: "Kenya", ISO3: "KEN"}}, countries)

	again, err := svc.Countries(ctx)
	require.NoError(t, err)
	assert.Equal(t, countries, again)
	assert.Equal(t, int32(1), hits.Load())

	states, err := svc.States(ctx, "Nigeria")
	require.NoError(t, err)
	assert.Equal(t, []State{{Name: "Lagos", StateCode: "LA"}, {Name: "Kano", StateCode: "KN"}}, states)

	cities, err := svc.Cities(ctx, "Nigeria", "Lagos")
	require.NoError(t, err)
	assert.Equal(t, []string{"Ikeja", "Lekki"}, cities)
	assert.Equal(t, int32(3), hits.Load())
}

func TestGeoService_UpstreamFailure(t *testing.T) {
	var hits atomic.Int32
	srv := newGeoUpstream(t, &hits)
	svc := NewGeoService(config.GeoConfig{BaseURL: srv.URL, Timeout: 5 * time.Second}, nil, nil, nil)

	_, err := svc.Cities(context.Background(), "Nigeria", "Atlantis")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUpstream)
}

func TestGeoService_UnreachableUpstream(t *testing.T) {
	svc := NewGeoService(config.GeoConfig{BaseURL: "http://127.0.0.1:1", Timeout: time.Second}, nil, nil, nil)
	_, err := svc.Countries(context.Background())
	assert.ErrorIs(t, err, ErrUpstream)
}
