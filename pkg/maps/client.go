package maps

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	pkgerrors "github.com/gabrielmoneiro/mariadoce/pkg/errors"
)

const (
	defaultBaseURL              = "https://api.mapbox.com"
	defaultProfile              = "mapbox/cycling"
	responseBodyReadLimit int64 = 1024
)

var errAPIKeyRequired = errors.New("mapbox api key is required")

// ErrNoRoute is returned when the directions API finds no route between the
// origin and destination. Callers must treat this as "address not validated",
// never as a zero-distance route.
var ErrNoRoute = errors.New("no route found")

// Client wraps the Mapbox geocoding and directions APIs used by the
// storefront address flow.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	profile    string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the configured Mapbox base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// WithProfile overrides the routing profile (mapbox/cycling, mapbox/driving).
func WithProfile(profile string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(profile)
		if trimmed != "" {
			c.profile = trimmed
		}
	}
}

// NewClient builds the Mapbox client given an API key.
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	trimmedKey := strings.TrimSpace(apiKey)
	if trimmedKey == "" {
		return nil, errAPIKeyRequired
	}

	client := &Client{
		apiKey:     trimmedKey,
		baseURL:    defaultBaseURL,
		profile:    defaultProfile,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	return client, nil
}

// Place is one ranked geocoding result.
type Place struct {
	Label string
	Lng   float64
	Lat   float64
}

// ForwardGeocode resolves a free-text query into ranked places, optionally
// filtered to a country code.
func (c *Client) ForwardGeocode(ctx context.Context, query, country string) ([]Place, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "mapbox client not configured")
	}
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "geocode query is required")
	}

	endpoint := fmt.Sprintf("%s/geocoding/v5/mapbox.places/%s.json", strings.TrimRight(c.baseURL, "/"), url.PathEscape(trimmed))
	params := url.Values{}
	params.Set("access_token", c.apiKey)
	params.Set("limit", "5")
	if country = strings.TrimSpace(country); country != "" {
		params.Set("country", strings.ToLower(country))
	}

	var apiResp struct {
		Features []struct {
			PlaceName string    `json:"place_name"`
			Center    []float64 `json:"center"`
		} `json:"features"`
	}
	if err := c.getJSON(ctx, endpoint+"?"+params.Encode(), &apiResp, "forward geocode"); err != nil {
		return nil, err
	}

	places := make([]Place, 0, len(apiResp.Features))
	for _, f := range apiResp.Features {
		if len(f.Center) < 2 {
			continue
		}
		places = append(places, Place{
			Label: f.PlaceName,
			Lng:   f.Center[0],
			Lat:   f.Center[1],
		})
	}
	return places, nil
}

// ReverseGeocode resolves coordinates into a human-readable label.
func (c *Client) ReverseGeocode(ctx context.Context, lng, lat float64) (string, error) {
	if c == nil {
		return "", pkgerrors.New(pkgerrors.CodeDependency, "mapbox client not configured")
	}

	endpoint := fmt.Sprintf("%s/geocoding/v5/mapbox.places/%f,%f.json", strings.TrimRight(c.baseURL, "/"), lng, lat)
	params := url.Values{}
	params.Set("access_token", c.apiKey)
	params.Set("limit", "1")

	var apiResp struct {
		Features []struct {
			PlaceName string `json:"place_name"`
		} `json:"features"`
	}
	if err := c.getJSON(ctx, endpoint+"?"+params.Encode(), &apiResp, "reverse geocode"); err != nil {
		return "", err
	}
	if len(apiResp.Features) == 0 {
		return "", pkgerrors.New(pkgerrors.CodeNotFound, "no place found for coordinates")
	}
	return apiResp.Features[0].PlaceName, nil
}

// RouteDistance returns the best-route distance in meters between two
// coordinate pairs using the configured travel profile.
func (c *Client) RouteDistance(ctx context.Context, originLng, originLat, destLng, destLat float64) (float64, error) {
	if c == nil {
		return 0, pkgerrors.New(pkgerrors.CodeDependency, "mapbox client not configured")
	}

	coordinates := fmt.Sprintf("%f,%f;%f,%f", originLng, originLat, destLng, destLat)
	endpoint := fmt.Sprintf("%s/directions/v5/%s/%s", strings.TrimRight(c.baseURL, "/"), c.profile, url.PathEscape(coordinates))
	params := url.Values{}
	params.Set("access_token", c.apiKey)
	params.Set("alternatives", "false")
	params.Set("geometries", "geojson")
	params.Set("overview", "simplified")
	params.Set("steps", "false")

	var apiResp struct {
		Code   string `json:"code"`
		Routes []struct {
			Distance float64 `json:"distance"`
			Duration float64 `json:"duration"`
		} `json:"routes"`
	}
	if err := c.getJSON(ctx, endpoint+"?"+params.Encode(), &apiResp, "route distance"); err != nil {
		return 0, err
	}

	if apiResp.Code != "Ok" || len(apiResp.Routes) == 0 {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, ErrNoRoute, "route distance lookup")
	}
	return apiResp.Routes[0].Distance, nil
}

func (c *Client) getJSON(ctx context.Context, url string, dest any, op string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build "+op+" request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute "+op+" request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		return pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), op+" request failed")
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode "+op+" response")
	}
	return nil
}
