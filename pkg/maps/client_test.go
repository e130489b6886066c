package maps

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	pkgerrors "github.com/gabrielmoneiro/mariadoce/pkg/errors"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func stubClient(t *testing.T, rt roundTripFunc) *Client {
	t.Helper()
	client, err := NewClient("test-key", WithBaseURL("http://maps.test"), WithHTTPClient(&http.Client{Transport: rt}))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func TestForwardGeocodeRequest(t *testing.T) {
	respBody := `{"features":[{"place_name":"Rua das Flores, 123, São Paulo","center":[-46.63,-23.55]}]}`

	var capturedURL string
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		capturedURL = req.URL.String()
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(respBody)),
			Header:     http.Header{},
		}, nil
	})

	client := stubClient(t, rt)
	places, err := client.ForwardGeocode(context.Background(), "rua das flores 123", "BR")
	if err != nil {
		t.Fatalf("forward geocode: %v", err)
	}

	if !strings.Contains(capturedURL, "/geocoding/v5/mapbox.places/") {
		t.Fatalf("unexpected URL %q", capturedURL)
	}
	if !strings.Contains(capturedURL, "country=br") {
		t.Fatalf("country filter missing from %q", capturedURL)
	}
	if !strings.Contains(capturedURL, "access_token=test-key") {
		t.Fatalf("access token missing from %q", capturedURL)
	}

	if len(places) != 1 {
		t.Fatalf("expected 1 place, got %d", len(places))
	}
	if places[0].Lng != -46.63 || places[0].Lat != -23.55 {
		t.Fatalf("unexpected coordinates %+v", places[0])
	}
}

func TestForwardGeocodeEmptyQuery(t *testing.T) {
	client := stubClient(t, func(*http.Request) (*http.Response, error) {
		t.Fatal("no request expected")
		return nil, nil
	})

	_, err := client.ForwardGeocode(context.Background(), "  ", "BR")
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRouteDistanceOK(t *testing.T) {
	respBody := `{"code":"Ok","routes":[{"distance":5000,"duration":900},{"distance":6200,"duration":840}]}`

	var capturedURL string
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		capturedURL = req.URL.String()
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(respBody)),
			Header:     http.Header{},
		}, nil
	})

	client := stubClient(t, rt)
	distance, err := client.RouteDistance(context.Background(), -46.63, -23.55, -46.60, -23.50)
	if err != nil {
		t.Fatalf("route distance: %v", err)
	}
	if distance != 5000 {
		t.Fatalf("expected first route distance 5000, got %f", distance)
	}
	if !strings.Contains(capturedURL, "/directions/v5/mapbox/cycling/") {
		t.Fatalf("unexpected URL %q", capturedURL)
	}
}

func TestRouteDistanceNoRoute(t *testing.T) {
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(`{"code":"NoRoute","routes":[]}`)),
			Header:     http.Header{},
		}, nil
	})

	client := stubClient(t, rt)
	_, err := client.RouteDistance(context.Background(), 0, 0, 1, 1)
	if err == nil {
		t.Fatal("expected error for missing route")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestRouteDistanceUpstreamFailure(t *testing.T) {
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusTooManyRequests,
			Body:       io.NopCloser(strings.NewReader(`rate limited`)),
			Header:     http.Header{},
		}, nil
	})

	client := stubClient(t, rt)
	_, err := client.RouteDistance(context.Background(), 0, 0, 1, 1)
	if pkgerrors.As(err).Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestNewClientRequiresKey(t *testing.T) {
	if _, err := NewClient("  "); err == nil {
		t.Fatal("expected error for blank api key")
	}
}
