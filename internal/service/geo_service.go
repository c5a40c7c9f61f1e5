package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/org-admin/internal/config"
	"github.com/spec-kit/org-admin/internal/observability"
)

// ErrUpstream reports a failed or malformed geography API response.
var ErrUpstream = errors.New("geography upstream request failed")

// Country is a country choice for location inputs.
type Country struct {
	Name string `json:"name"`
	ISO3 string `json:"iso3"`
}

// State is a state or province of a country.
type State struct {
	Name      string `json:"name"`
	StateCode string `json:"state_code"`
}

// GeoCache stores decoded upstream responses.
type GeoCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// RedisGeoCache is a GeoCache backed by redis JSON values.
type RedisGeoCache struct {
	client *redis.Client
}

// NewRedisGeoCache wraps client.
func NewRedisGeoCache(client *redis.Client) *RedisGeoCache {
	return &RedisGeoCache{client: client}
}

// Get decodes the cached value into dest. A missing key is not an error.
func (c *RedisGeoCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, err
	}
	return true, nil
}

// Set stores value as JSON with expiration ttl.
func (c *RedisGeoCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, raw, ttl).Err()
}

// GeoService proxies the countriesnow geography API.
type GeoService struct {
	baseURL string
	timeout time.Duration
	ttl     time.Duration
	cache   GeoCache
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewGeoService builds the service. cache may be nil.
func NewGeoService(cfg config.GeoConfig, cache GeoCache, metrics *observability.Metrics, logger *zap.Logger) *GeoService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GeoService{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		timeout: cfg.Timeout,
		ttl:     cfg.CacheTTL,
		cache:   cache,
		metrics: metrics,
		logger:  logger,
	}
}

type countriesResponse struct {
	Error bool   `json:"error"`
	Msg   string `json:"msg"`
	Data  []struct {
		Name string `json:"name"`
		ISO3 string `json:"iso3"`
	} `json:"data"`
}

type statesResponse struct {
	Error bool   `json:"error"`
	Msg   string `json:"msg"`
	Data  struct {
		States []State `json:"states"`
	} `json:"data"`
}

type citiesResponse struct {
	Error bool     `json:"error"`
	Msg   string   `json:"msg"`
	Data  []string `json:"data"`
}

// Countries lists every country with its ISO3 code.
func (s *GeoService) Countries(ctx context.Context) ([]Country, error) {
	var countries []Country
	if s.cached(ctx, "geo:countries", &countries) {
		return countries, nil
	}

	var resp countriesResponse
	if err := s.do(fiber.Get(s.baseURL+"/countries/states"), &resp); err != nil {
		return nil, err
	}
	if resp.Error {
		return nil, fmt.Errorf("%w: %s", ErrUpstream, resp.Msg)
	}

	countries = make([]Country, 0, len(resp.Data))
	for _, c := range resp.Data {
		countries = append(countries, Country{Name: c.Name, ISO3: c.ISO3})
	}
	s.store(ctx, "geo:countries", countries)
	return countries, nil
}

// States lists the states of country.
func (s *GeoService) States(ctx context.Context, country string) ([]State, error) {
	key := "geo:states:" + strings.ToLower(country)
	var states []State
	if s.cached(ctx, key, &states) {
		return states, nil
	}

	var resp statesResponse
	agent := fiber.Post(s.baseURL + "/countries/states").JSON(fiber.Map{"country": country})
	if err := s.do(agent, &resp); err != nil {
		return nil, err
	}
	if resp.Error {
		return nil, fmt.Errorf("%w: %s", ErrUpstream, resp.Msg)
	}

	states = resp.Data.States
	if states == nil {
		states = []State{}
	}
	s.store(ctx, key, states)
	return states, nil
}

// Cities lists the cities of a state.
func (s *GeoService) Cities(ctx context.Context, country, state string) ([]string, error) {
	key := "geo:cities:" + strings.ToLower(country) + ":" + strings.ToLower(state)
	var cities []string
	if s.cached(ctx, key, &cities) {
		return cities, nil
	}

	var resp citiesResponse
	agent := fiber.Post(s.baseURL + "/countries/state/cities").JSON(fiber.Map{"country": country, "state": state})
	if err := s.do(agent, &resp); err != nil {
		return nil, err
	}
	if resp.Error {
		return nil, fmt.Errorf("%w: %s", ErrUpstream, resp.Msg)
	}

	cities = resp.Data
	if cities == nil {
		cities = []string{}
	}
	s.store(ctx, key, cities)
	return cities, nil
}

func (s *GeoService) do(agent *fiber.Agent, out interface{}) error {
	if s.timeout > 0 {
		agent.Timeout(s.timeout)
	}
	code, _, errs := agent.Struct(out)
	if len(errs) > 0 {
		return fmt.Errorf("%w: %v", ErrUpstream, errors.Join(errs...))
	}
	if code != fiber.StatusOK {
		return fmt.Errorf("%w: status %d", ErrUpstream, code)
	}
	return nil
}

func (s *GeoService) cached(ctx context.Context, key string, dest interface{}) bool {
	if s.cache == nil {
		return false
	}
	hit, err := s.cache.Get(ctx, key, dest)
	switch {
	case err != nil:
		s.metrics.RecordCacheLookup("error")
		s.logger.Warn("geo cache read failed", zap.String("key", key), zap.Error(err))
		return false
	case hit:
		s.metrics.RecordCacheLookup("hit")
		return true
	default:
		s.metrics.RecordCacheLookup("miss")
		return false
	}
}

func (s *GeoService) store(ctx context.Context, key string, value interface{}) {
	if s.cache == nil || s.ttl <= 0 {
		return
	}
	if err := s.cache.Set(ctx, key, value, s.ttl); err != nil {
		s.logger.Warn("geo cache write failed", zap.String("key", key), zap.Error(err))
	}
}
